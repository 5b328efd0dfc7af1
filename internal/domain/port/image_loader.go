package port

import "ivision/internal/domain/entity"

// ImageLoader загружает и проверяет изображения
type ImageLoader interface {
	// Load читает изображение с диска
	Load(path string) (*entity.Image, error)

	// FromBytes проверяет изображение из буфера в памяти
	FromBytes(data []byte) (*entity.Image, error)
}
