// Package onnx классифицирует изображения моделью ONNX. Рантайм подключается
// тегом сборки onnx, подготовка входа и разбор выхода работают всегда.
package onnx

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Name имя движка в конфигурации
const Name = "onnx"

// Metadata описывает вход и выход модели.
type Metadata struct {
	InputShape  []int64  `json:"input_shape"`
	OutputShape []int64  `json:"output_shape"`
	Classes     []string `json:"classes"`
	ImageSize   int      `json:"image_size"`
	InputName   string   `json:"input_name"`
	OutputName  string   `json:"output_name"`
	Logits      bool     `json:"logits"` // выход модели без softmax
}

// LoadMetadata читает метаданные модели из JSON файла.
func LoadMetadata(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	var metadata Metadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}
	if metadata.InputName == "" {
		metadata.InputName = "input"
	}
	if metadata.OutputName == "" {
		metadata.OutputName = "output"
	}
	if err := metadata.validate(); err != nil {
		return nil, err
	}

	return &metadata, nil
}

func (m *Metadata) validate() error {
	if len(m.Classes) == 0 {
		return errors.New("metadata: classes are empty")
	}
	if m.ImageSize <= 0 {
		return errors.New("metadata: image_size must be positive")
	}
	if len(m.InputShape) != 4 {
		return fmt.Errorf("metadata: input_shape must be NCHW, got %v", m.InputShape)
	}
	if c := m.InputShape[1]; c != 1 && c != 3 {
		return fmt.Errorf("metadata: input_shape %v must have 1 or 3 channels", m.InputShape)
	}
	if m.InputShape[2] != int64(m.ImageSize) || m.InputShape[3] != int64(m.ImageSize) {
		return fmt.Errorf("metadata: input_shape %v does not match image_size %d", m.InputShape, m.ImageSize)
	}
	return nil
}

// channels количество каналов входа (1 или 3).
func (m *Metadata) channels() int {
	return int(m.InputShape[1])
}
