//go:build !onnx

package onnx

import (
	"context"

	"ivision/internal/domain/entity"
)

// Engine заглушка без рантайма onnx.
type Engine struct {
	metadata *Metadata
}

// New проверяет метаданные, сам рантайм в этой сборке недоступен.
func New(modelPath, metadataPath, libraryPath string) (*Engine, error) {
	metadata, err := LoadMetadata(metadataPath)
	if err != nil {
		return nil, err
	}
	return &Engine{metadata: metadata}, nil
}

func (e *Engine) Name() string {
	return Name
}

// Classify возвращает ошибку, если сборка без тега onnx.
func (e *Engine) Classify(ctx context.Context, img *entity.Image) ([]entity.Classification, error) {
	return nil, entity.ErrEngineUnavailable
}

func (e *Engine) Close() error {
	return nil
}
