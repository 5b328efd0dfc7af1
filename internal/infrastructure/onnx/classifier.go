//go:build onnx

package onnx

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"ivision/internal/domain/entity"
	"ivision/internal/domain/port"
	"ivision/internal/infrastructure/imageio"
)

// Engine классификатор на onnxruntime. Сессия с тензорами одна на движок,
// поэтому вызовы сериализуются.
type Engine struct {
	mu           sync.Mutex
	session      *ort.AdvancedSession
	metadata     *Metadata
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
}

// New загружает модель. libraryPath путь к libonnxruntime, пустой означает
// путь по умолчанию.
func New(modelPath, metadataPath, libraryPath string) (*Engine, error) {
	metadata, err := LoadMetadata(metadataPath)
	if err != nil {
		return nil, err
	}

	if libraryPath != "" {
		ort.SetSharedLibraryPath(libraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(metadata.InputShape...))
	if err != nil {
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(metadata.OutputShape...))
	if err != nil {
		inputTensor.Destroy()
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{metadata.InputName}, []string{metadata.OutputName},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &Engine{
		session:      session,
		metadata:     metadata,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
	}, nil
}

func (e *Engine) Name() string {
	return Name
}

// Classify прогоняет изображение через модель.
func (e *Engine) Classify(ctx context.Context, img *entity.Image) ([]entity.Classification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	decoded, err := imageio.Decode(img)
	if err != nil {
		return nil, err
	}
	input := Preprocess(decoded, e.metadata.ImageSize, e.metadata.channels())

	e.mu.Lock()
	defer e.mu.Unlock()

	copy(e.inputTensor.GetData(), input)
	if err := e.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	scores := append([]float32(nil), e.outputTensor.GetData()...)
	if e.metadata.Logits {
		scores = Softmax(scores)
	}
	return Classifications(scores, e.metadata.Classes), nil
}

// Close освобождает сессию и окружение рантайма.
func (e *Engine) Close() error {
	if e.inputTensor != nil {
		e.inputTensor.Destroy()
	}
	if e.outputTensor != nil {
		e.outputTensor.Destroy()
	}
	if e.session != nil {
		e.session.Destroy()
	}
	return ort.DestroyEnvironment()
}

var _ port.Classifier = (*Engine)(nil)
