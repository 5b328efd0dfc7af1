package imageio

import (
	"ivision/internal/domain/entity"
	"ivision/internal/domain/port"
)

// Loader загружает изображения и уменьшает слишком большие.
type Loader struct {
	MaxSide int // 0 отключает уменьшение
}

// NewLoader создаёт загрузчик.
func NewLoader(maxSide int) *Loader {
	return &Loader{MaxSide: maxSide}
}

func (l *Loader) Load(path string) (*entity.Image, error) {
	img, err := Load(path)
	if err != nil {
		return nil, err
	}
	return Downscale(img, l.MaxSide)
}

func (l *Loader) FromBytes(data []byte) (*entity.Image, error) {
	img, err := FromBytes(data)
	if err != nil {
		return nil, err
	}
	return Downscale(img, l.MaxSide)
}

var _ port.ImageLoader = (*Loader)(nil)
