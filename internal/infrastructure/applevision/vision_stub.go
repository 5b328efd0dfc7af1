//go:build !darwin || !cgo

package applevision

import (
	"context"

	"ivision/internal/domain/entity"
)

// DetectText возвращает ошибку, если сборка не для macOS с cgo.
func (e *Engine) DetectText(ctx context.Context, img *entity.Image) ([]entity.TextObservation, error) {
	return nil, entity.ErrEngineUnavailable
}

// RecognizeText возвращает ошибку, если сборка не для macOS с cgo.
func (e *Engine) RecognizeText(ctx context.Context, img *entity.Image, opts entity.OCROptions) (*entity.OCRResult, error) {
	return nil, entity.ErrEngineUnavailable
}

// Classify возвращает ошибку, если сборка не для macOS с cgo.
func (e *Engine) Classify(ctx context.Context, img *entity.Image) ([]entity.Classification, error) {
	return nil, entity.ErrEngineUnavailable
}

// DetectObjects возвращает ошибку, если сборка не для macOS с cgo.
func (e *Engine) DetectObjects(ctx context.Context, img *entity.Image) ([]entity.ObjectObservation, error) {
	return nil, entity.ErrEngineUnavailable
}
