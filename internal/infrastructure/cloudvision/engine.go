// Package cloudvision выполняет те же запросы через Google Cloud Vision.
package cloudvision

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/cenkalti/backoff/v4"
	gax "github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"ivision/internal/domain/entity"
	"ivision/internal/domain/port"
)

// Name имя движка в конфигурации
const Name = "gcloud"

// Client часть vision.ImageAnnotatorClient, которой пользуется движок.
// Ref: https://pkg.go.dev/cloud.google.com/go/vision/v2/apiv1
type Client interface {
	BatchAnnotateImages(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest, opts ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error)
}

// Engine отправляет одно изображение на запрос.
type Engine struct {
	client Client

	// Пауза между повторами при временных ошибках API.
	backoffDuration time.Duration

	// Максимум результатов для text, classify и objects.
	maxResults int32
}

// New создаёт движок поверх готового клиента.
func New(client Client, backoffDuration time.Duration) *Engine {
	return &Engine{
		client:          client,
		backoffDuration: backoffDuration,
		maxResults:      50,
	}
}

// Dial создаёт клиент Cloud Vision. Пустой credentialsFile означает
// Application Default Credentials.
func Dial(ctx context.Context, credentialsFile string) (*vision.ImageAnnotatorClient, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create cloud vision client: %w", err)
	}
	return client, nil
}

func (e *Engine) Name() string {
	return Name
}

// Close закрывает клиент, если он это поддерживает.
func (e *Engine) Close() error {
	if closer, ok := e.client.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// DetectText ищет слова (TEXT_DETECTION). Первая аннотация содержит весь
// текст целиком и пропускается.
func (e *Engine) DetectText(ctx context.Context, img *entity.Image) ([]entity.TextObservation, error) {
	resp, err := e.annotate(ctx, img, visionpb.Feature_TEXT_DETECTION, nil)
	if err != nil {
		return nil, err
	}
	return textObservations(resp.GetTextAnnotations()), nil
}

// RecognizeText распознаёт документ (DOCUMENT_TEXT_DETECTION) и собирает строки
// из слов по найденным разрывам строк.
func (e *Engine) RecognizeText(ctx context.Context, img *entity.Image, opts entity.OCROptions) (*entity.OCRResult, error) {
	var imageContext *visionpb.ImageContext
	if len(opts.Languages) > 0 {
		imageContext = &visionpb.ImageContext{LanguageHints: opts.Languages}
	}

	resp, err := e.annotate(ctx, img, visionpb.Feature_DOCUMENT_TEXT_DETECTION, imageContext)
	if err != nil {
		return nil, err
	}

	result := documentText(resp.GetFullTextAnnotation())
	result.ImageWidth, result.ImageHeight = img.Width, img.Height
	return result, nil
}

// Classify возвращает метки (LABEL_DETECTION).
func (e *Engine) Classify(ctx context.Context, img *entity.Image) ([]entity.Classification, error) {
	resp, err := e.annotate(ctx, img, visionpb.Feature_LABEL_DETECTION, nil)
	if err != nil {
		return nil, err
	}
	return labels(resp.GetLabelAnnotations()), nil
}

// DetectObjects ищет объекты (OBJECT_LOCALIZATION).
func (e *Engine) DetectObjects(ctx context.Context, img *entity.Image) ([]entity.ObjectObservation, error) {
	resp, err := e.annotate(ctx, img, visionpb.Feature_OBJECT_LOCALIZATION, nil)
	if err != nil {
		return nil, err
	}
	return objects(resp.GetLocalizedObjectAnnotations(), img.Width, img.Height), nil
}

func (e *Engine) annotate(ctx context.Context, img *entity.Image, feature visionpb.Feature_Type, imageContext *visionpb.ImageContext) (*visionpb.AnnotateImageResponse, error) {
	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image:        &visionpb.Image{Content: img.Data},
			Features:     []*visionpb.Feature{{Type: feature, MaxResults: e.maxResults}},
			ImageContext: imageContext,
		}},
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(e.backoffDuration), 4),
		ctx,
	)

	return backoff.RetryWithData(func() (*visionpb.AnnotateImageResponse, error) {
		resp, err := e.client.BatchAnnotateImages(ctx, req)
		if err != nil {
			if ctx.Err() != nil || !retryable(err) {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		if len(resp.GetResponses()) == 0 {
			return nil, backoff.Permanent(errors.New("cloud vision returned no responses"))
		}

		annotation := resp.GetResponses()[0]
		if apiErr := annotation.GetError(); apiErr != nil && apiErr.GetCode() != int32(codes.OK) {
			return nil, backoff.Permanent(fmt.Errorf("cloud vision: %s", apiErr.GetMessage()))
		}
		return annotation, nil
	}, policy)
}

func retryable(err error) bool {
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Internal, codes.Unknown:
		return true
	}
	return false
}

var (
	_ port.TextDetector   = (*Engine)(nil)
	_ port.TextRecognizer = (*Engine)(nil)
	_ port.Classifier     = (*Engine)(nil)
	_ port.ObjectDetector = (*Engine)(nil)
)
