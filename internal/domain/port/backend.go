package port

import (
	"context"

	"ivision/internal/domain/entity"
)

// Backend движок компьютерного зрения. Конкретный движок реализует
// любое подмножество интерфейсов ниже.
type Backend interface {
	// Name возвращает имя движка для логов и сообщений об ошибках
	Name() string
}

// TextDetector ищет области текста без распознавания
type TextDetector interface {
	DetectText(ctx context.Context, img *entity.Image) ([]entity.TextObservation, error)
}

// TextRecognizer распознаёт текст построчно и по словам
type TextRecognizer interface {
	RecognizeText(ctx context.Context, img *entity.Image, opts entity.OCROptions) (*entity.OCRResult, error)
}

// Classifier возвращает метки классов изображения
type Classifier interface {
	Classify(ctx context.Context, img *entity.Image) ([]entity.Classification, error)
}

// ObjectDetector ищет объекты на изображении
type ObjectDetector interface {
	DetectObjects(ctx context.Context, img *entity.Image) ([]entity.ObjectObservation, error)
}

// Supports проверяет, умеет ли движок выполнять запрос.
func Supports(b Backend, c entity.Capability) bool {
	switch c {
	case entity.CapabilityText:
		_, ok := b.(TextDetector)
		return ok
	case entity.CapabilityOCR:
		_, ok := b.(TextRecognizer)
		return ok
	case entity.CapabilityClassify:
		_, ok := b.(Classifier)
		return ok
	case entity.CapabilityObjects:
		_, ok := b.(ObjectDetector)
		return ok
	}
	return false
}
