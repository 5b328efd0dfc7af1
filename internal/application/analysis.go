package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"ivision/internal/domain/entity"
	"ivision/internal/domain/port"
)

// AnalysisConfig параметры постобработки результатов
type AnalysisConfig struct {
	MinConfidence float64 // записи с меньшей уверенностью отбрасываются
}

// RunOptions параметры одного запроса через Run.
type RunOptions struct {
	OCR   entity.OCROptions
	Words bool // для ocr вернуть слова вместо строк
	TopK  int  // для classify, 0 без ограничения
}

// AnalysisService выполняет один запрос к движку и приводит результат
// к плоским записям.
type AnalysisService struct {
	backend port.Backend
	loader  port.ImageLoader
	cfg     AnalysisConfig
	log     *slog.Logger
}

// NewAnalysisService создаёт сервис поверх движка и загрузчика изображений.
func NewAnalysisService(backend port.Backend, loader port.ImageLoader, cfg AnalysisConfig, log *slog.Logger) *AnalysisService {
	if log == nil {
		log = slog.Default()
	}
	return &AnalysisService{
		backend: backend,
		loader:  loader,
		cfg:     cfg,
		log:     log,
	}
}

// Backend возвращает выбранный движок.
func (s *AnalysisService) Backend() port.Backend {
	return s.backend
}

// Load загружает изображение с диска.
func (s *AnalysisService) Load(path string) (*entity.Image, error) {
	return s.loader.Load(path)
}

// LoadBytes проверяет изображение из памяти.
func (s *AnalysisService) LoadBytes(data []byte) (*entity.Image, error) {
	return s.loader.FromBytes(data)
}

// DetectText возвращает области текста.
func (s *AnalysisService) DetectText(ctx context.Context, img *entity.Image) ([]entity.TextObservation, error) {
	detector, ok := s.backend.(port.TextDetector)
	if !ok {
		return nil, s.unsupported(entity.CapabilityText)
	}

	start := time.Now()
	observations, err := detector.DetectText(ctx, img)
	if err != nil {
		return nil, s.failed(entity.CapabilityText, err)
	}
	observations = s.cleanText(observations, img)
	s.done(entity.CapabilityText, len(observations), start)

	return observations, nil
}

// RecognizeText распознаёт текст. Пустой список языков заменяется на en.
func (s *AnalysisService) RecognizeText(ctx context.Context, img *entity.Image, opts entity.OCROptions) (*entity.OCRResult, error) {
	recognizer, ok := s.backend.(port.TextRecognizer)
	if !ok {
		return nil, s.unsupported(entity.CapabilityOCR)
	}
	if len(opts.Languages) == 0 {
		opts.Languages = entity.DefaultOCROptions().Languages
	}

	start := time.Now()
	result, err := recognizer.RecognizeText(ctx, img, opts)
	if err != nil {
		return nil, s.failed(entity.CapabilityOCR, err)
	}
	if result == nil {
		result = &entity.OCRResult{}
	}
	if result.ImageWidth == 0 || result.ImageHeight == 0 {
		result.ImageWidth, result.ImageHeight = img.Width, img.Height
	}
	result.Lines = s.cleanText(result.Lines, img)
	result.Words = s.cleanText(result.Words, img)
	s.done(entity.CapabilityOCR, len(result.Lines), start)

	return result, nil
}

// Classify возвращает метки, отсортированные по убыванию уверенности.
func (s *AnalysisService) Classify(ctx context.Context, img *entity.Image) ([]entity.Classification, error) {
	classifier, ok := s.backend.(port.Classifier)
	if !ok {
		return nil, s.unsupported(entity.CapabilityClassify)
	}

	start := time.Now()
	labels, err := classifier.Classify(ctx, img)
	if err != nil {
		return nil, s.failed(entity.CapabilityClassify, err)
	}

	cleaned := make([]entity.Classification, 0, len(labels))
	for _, l := range labels {
		l.Confidence = entity.RoundConfidence(l.Confidence)
		if l.Confidence < s.cfg.MinConfidence {
			continue
		}
		cleaned = append(cleaned, l)
	}
	sort.SliceStable(cleaned, func(i, j int) bool {
		return cleaned[i].Confidence > cleaned[j].Confidence
	})
	s.done(entity.CapabilityClassify, len(cleaned), start)

	return cleaned, nil
}

// DetectObjects возвращает найденные объекты.
func (s *AnalysisService) DetectObjects(ctx context.Context, img *entity.Image) ([]entity.ObjectObservation, error) {
	detector, ok := s.backend.(port.ObjectDetector)
	if !ok {
		return nil, s.unsupported(entity.CapabilityObjects)
	}

	start := time.Now()
	objects, err := detector.DetectObjects(ctx, img)
	if err != nil {
		return nil, s.failed(entity.CapabilityObjects, err)
	}

	cleaned := make([]entity.ObjectObservation, 0, len(objects))
	for _, o := range objects {
		o.Confidence = entity.RoundConfidence(o.Confidence)
		o.Box = o.Box.Clamp(img.Width, img.Height)
		if o.Confidence < s.cfg.MinConfidence || o.Box.Empty() {
			continue
		}
		cleaned = append(cleaned, o)
	}
	s.done(entity.CapabilityObjects, len(cleaned), start)

	return cleaned, nil
}

// Run выполняет запрос по его виду и собирает отчёт.
func (s *AnalysisService) Run(ctx context.Context, img *entity.Image, c entity.Capability, opts RunOptions) (*entity.Report, error) {
	report := &entity.Report{Capability: c, ImageWidth: img.Width, ImageHeight: img.Height}

	switch c {
	case entity.CapabilityText:
		text, err := s.DetectText(ctx, img)
		if err != nil {
			return nil, err
		}
		report.Text = text

	case entity.CapabilityOCR:
		result, err := s.RecognizeText(ctx, img, opts.OCR)
		if err != nil {
			return nil, err
		}
		report.Text = result.Lines
		if opts.Words {
			report.Text = result.Words
		}

	case entity.CapabilityClassify:
		labels, err := s.Classify(ctx, img)
		if err != nil {
			return nil, err
		}
		if opts.TopK > 0 && len(labels) > opts.TopK {
			labels = labels[:opts.TopK]
		}
		report.Labels = labels

	case entity.CapabilityObjects:
		objects, err := s.DetectObjects(ctx, img)
		if err != nil {
			return nil, err
		}
		report.Objects = objects

	default:
		return nil, fmt.Errorf("%w: %q", entity.ErrUnsupportedCapability, c)
	}

	return report, nil
}

func (s *AnalysisService) cleanText(observations []entity.TextObservation, img *entity.Image) []entity.TextObservation {
	cleaned := make([]entity.TextObservation, 0, len(observations))
	for _, o := range observations {
		o.Confidence = entity.RoundConfidence(o.Confidence)
		o.Box = o.Box.Clamp(img.Width, img.Height)
		if o.Confidence < s.cfg.MinConfidence || o.Box.Empty() {
			continue
		}
		cleaned = append(cleaned, o)
	}
	return cleaned
}

func (s *AnalysisService) unsupported(c entity.Capability) error {
	return fmt.Errorf("%w: %s does not support %s", entity.ErrUnsupportedCapability, s.backend.Name(), c)
}

func (s *AnalysisService) failed(c entity.Capability, err error) error {
	if errors.Is(err, entity.ErrEngineUnavailable) {
		return fmt.Errorf("%s: %w", s.backend.Name(), err)
	}
	return fmt.Errorf("%s %s request failed: %w", s.backend.Name(), c, err)
}

func (s *AnalysisService) done(c entity.Capability, n int, start time.Time) {
	s.log.Debug("request finished",
		"backend", s.backend.Name(),
		"capability", string(c),
		"results", n,
		"elapsed", time.Since(start),
	)
}
