// Package imageio загружает, проверяет и перекодирует изображения
// перед передачей в движки.
package imageio

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io/fs"
	"math"
	"os"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"ivision/internal/domain/entity"
)

// Load читает файл и проверяет, что это изображение поддерживаемого формата.
func Load(path string) (*entity.Image, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", entity.ErrImageNotFound, path)
		}
		return nil, fmt.Errorf("stat image: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s", entity.ErrNotAFile, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	img, err := FromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	img.Path = path

	return img, nil
}

// FromBytes проверяет буфер в памяти. Декодируется только заголовок.
func FromBytes(data []byte) (*entity.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image", entity.ErrUnsupportedFormat)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrUnsupportedFormat, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: empty image", entity.ErrUnsupportedFormat)
	}

	return &entity.Image{
		Data:   data,
		Format: format,
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}

// Decode декодирует изображение полностью.
func Decode(img *entity.Image) (image.Image, error) {
	decoded, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrUnsupportedFormat, err)
	}
	return decoded, nil
}

// Downscale уменьшает изображение так, чтобы длинная сторона не превышала
// maxSide. При maxSide <= 0 или маленьком изображении возвращает исходное.
func Downscale(img *entity.Image, maxSide int) (*entity.Image, error) {
	if maxSide <= 0 || (img.Width <= maxSide && img.Height <= maxSide) {
		return img, nil
	}

	decoded, err := Decode(img)
	if err != nil {
		return nil, err
	}

	width, height := scaledSize(img.Width, img.Height, maxSide)
	resized := resize.Resize(uint(width), uint(height), decoded, resize.Bilinear)

	data, format, err := Encode(resized, img.Format)
	if err != nil {
		return nil, err
	}

	bounds := resized.Bounds()
	return &entity.Image{
		Path:   img.Path,
		Data:   data,
		Format: format,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}

// scaledSize вписывает размеры в maxSide с сохранением пропорций.
// Короткая сторона не бывает меньше 1 пикселя.
func scaledSize(width, height, maxSide int) (int, int) {
	scale := float64(maxSide) / float64(max(width, height))
	w := max(1, int(math.Round(float64(width)*scale)))
	h := max(1, int(math.Round(float64(height)*scale)))
	return w, h
}

// Encode кодирует изображение в JPEG, если исходник был JPEG, иначе в PNG.
func Encode(img image.Image, format string) ([]byte, string, error) {
	var buf bytes.Buffer
	if format == "jpeg" {
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
			return nil, "", fmt.Errorf("encode jpeg: %w", err)
		}
		return buf.Bytes(), "jpeg", nil
	}

	if err := png.Encode(&buf, img); err != nil {
		return nil, "", fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), "png", nil
}

// MIMEType возвращает MIME тип для формата.
func MIMEType(format string) string {
	switch format {
	case "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "bmp":
		return "image/bmp"
	case "tiff":
		return "image/tiff"
	case "webp":
		return "image/webp"
	}
	return "application/octet-stream"
}
