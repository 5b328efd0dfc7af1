// Package openai классифицирует изображения мультимодальной моделью.
package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"ivision/internal/domain/entity"
	"ivision/internal/domain/port"
	"ivision/internal/infrastructure/imageio"
)

// Name имя движка в конфигурации
const Name = "openai"

// DefaultModel модель по умолчанию
const DefaultModel = "gpt-4o"

const classifyPrompt = `Classify the image. Return a JSON object {"labels":[{"label":"...","confidence":0.0}]} with up to %d short lowercase labels ordered by confidence. Confidence is a probability between 0 and 1. Do not include any explanations.`

// Client interface for OpenAI operations
type Client interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Engine классификатор поверх chat completions
type Engine struct {
	client    Client
	model     string
	maxLabels int
}

// New создаёт движок. Пустая модель заменяется на DefaultModel.
func New(client Client, model string) *Engine {
	if model == "" {
		model = DefaultModel
	}
	return &Engine{client: client, model: model, maxLabels: 10}
}

// NewClient создаёт клиента OpenAI по ключу.
func NewClient(apiKey string) *openai.Client {
	return openai.NewClient(apiKey)
}

func (e *Engine) Name() string {
	return Name
}

type labelsResponse struct {
	Labels []entity.Classification `json:"labels"`
}

// Classify отправляет изображение модели и разбирает JSON ответ.
func (e *Engine) Classify(ctx context.Context, img *entity.Image) ([]entity.Classification, error) {
	request := openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are an image classifier. Answer with JSON only.",
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: fmt.Sprintf(classifyPrompt, e.maxLabels)},
					{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{
						URL:    dataURL(img),
						Detail: openai.ImageURLDetailLow,
					}},
				},
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
		Temperature:    0,
		MaxTokens:      500,
	}

	response, err := e.client.CreateChatCompletion(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("classification failed: %w", err)
	}
	if len(response.Choices) == 0 {
		return nil, errors.New("no choices in response")
	}

	return parseLabels(response.Choices[0].Message.Content)
}

func parseLabels(content string) ([]entity.Classification, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var parsed labelsResponse
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("parse labels: %w", err)
	}

	labels := make([]entity.Classification, 0, len(parsed.Labels))
	for _, l := range parsed.Labels {
		l.Label = strings.TrimSpace(l.Label)
		if l.Label == "" {
			continue
		}
		labels = append(labels, l)
	}
	return labels, nil
}

func dataURL(img *entity.Image) string {
	return "data:" + imageio.MIMEType(img.Format) + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

var _ port.Classifier = (*Engine)(nil)
