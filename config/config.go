package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultBackend движок по умолчанию
const DefaultBackend = "apple"

type Config struct {
	Backend       string   `yaml:"backend"`
	Languages     []string `yaml:"languages"`
	MaxSide       int      `yaml:"max_side"`       // 0 отключает уменьшение
	MinConfidence float64  `yaml:"min_confidence"` // записи с меньшей уверенностью отбрасываются
	TelegramToken string   `yaml:"telegram_token"`

	Google GoogleConfig `yaml:"google"`
	OpenAI OpenAIConfig `yaml:"openai"`
	ONNX   ONNXConfig   `yaml:"onnx"`
}

type GoogleConfig struct {
	CredentialsFile string        `yaml:"credentials_file"`
	Backoff         time.Duration `yaml:"backoff"`
}

type OpenAIConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type ONNXConfig struct {
	Model    string `yaml:"model"`
	Metadata string `yaml:"metadata"`
	Library  string `yaml:"library"`
}

// Load собирает конфигурацию: значения по умолчанию, затем YAML файл
// (если path не пустой), затем переменные окружения и .env.
func Load(path string) (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{
		Backend:   DefaultBackend,
		Languages: []string{"en"},
		Google:    GoogleConfig{Backoff: 500 * time.Millisecond},
	}

	if path == "" {
		path = os.Getenv("IVISION_CONFIG")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config file not found: %s", path)
		}
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnv() error {
	setString(&c.Backend, "IVISION_BACKEND")
	setString(&c.TelegramToken, "TELEGRAM_TOKEN")
	setString(&c.Google.CredentialsFile, "GOOGLE_APPLICATION_CREDENTIALS")
	setString(&c.OpenAI.APIKey, "OPENAI_API_KEY")
	setString(&c.OpenAI.Model, "OPENAI_MODEL")
	setString(&c.ONNX.Model, "ONNX_MODEL")
	setString(&c.ONNX.Metadata, "ONNX_METADATA")
	setString(&c.ONNX.Library, "ONNX_LIBRARY")

	if v := os.Getenv("IVISION_LANGUAGES"); v != "" {
		c.Languages = SplitList(v)
	}
	if v := os.Getenv("IVISION_MAX_SIDE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("IVISION_MAX_SIDE must be an integer, got: %s", v)
		}
		c.MaxSide = n
	}
	if v := os.Getenv("IVISION_MIN_CONFIDENCE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("IVISION_MIN_CONFIDENCE must be a number, got: %s", v)
		}
		c.MinConfidence = f
	}
	return nil
}

// Validate проверяет диапазоны значений.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Backend) == "" {
		return errors.New("backend is required")
	}
	if c.MaxSide < 0 {
		return fmt.Errorf("max_side must not be negative, got %d", c.MaxSide)
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("min_confidence must be within [0,1], got %v", c.MinConfidence)
	}
	return nil
}

// SplitList разбирает список через запятую, пустые элементы отбрасываются.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
