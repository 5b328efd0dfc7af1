package container

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"ivision/config"
	"ivision/internal/domain/port"
	"ivision/internal/infrastructure/applevision"
	"ivision/internal/infrastructure/cloudvision"
	"ivision/internal/infrastructure/onnx"
	"ivision/internal/infrastructure/openai"
	"ivision/internal/infrastructure/opencv"
)

// Factory создаёт движок по конфигурации.
type Factory func(ctx context.Context, cfg *config.Config) (port.Backend, error)

var factories = map[string]Factory{
	applevision.Name: func(ctx context.Context, cfg *config.Config) (port.Backend, error) {
		return applevision.New(), nil
	},
	cloudvision.Name: func(ctx context.Context, cfg *config.Config) (port.Backend, error) {
		client, err := cloudvision.Dial(ctx, cfg.Google.CredentialsFile)
		if err != nil {
			return nil, err
		}
		return cloudvision.New(client, cfg.Google.Backoff), nil
	},
	opencv.Name: func(ctx context.Context, cfg *config.Config) (port.Backend, error) {
		return opencv.New(), nil
	},
	onnx.Name: func(ctx context.Context, cfg *config.Config) (port.Backend, error) {
		if cfg.ONNX.Model == "" || cfg.ONNX.Metadata == "" {
			return nil, errors.New("onnx backend requires ONNX_MODEL and ONNX_METADATA")
		}
		return onnx.New(cfg.ONNX.Model, cfg.ONNX.Metadata, cfg.ONNX.Library)
	},
	openai.Name: func(ctx context.Context, cfg *config.Config) (port.Backend, error) {
		if cfg.OpenAI.APIKey == "" {
			return nil, errors.New("openai backend requires OPENAI_API_KEY")
		}
		return openai.New(openai.NewClient(cfg.OpenAI.APIKey), cfg.OpenAI.Model), nil
	},
}

// Register добавляет или заменяет движок под именем name.
func Register(name string, factory Factory) {
	factories[strings.ToLower(name)] = factory
}

// Backends перечисляет имена доступных движков.
func Backends() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewBackend создаёт движок по имени из конфигурации.
func NewBackend(ctx context.Context, cfg *config.Config) (port.Backend, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Backend))
	factory, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown backend %q (available: %s)", cfg.Backend, strings.Join(Backends(), ", "))
	}
	return factory(ctx, cfg)
}
