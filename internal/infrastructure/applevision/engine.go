// Package applevision вызывает Apple Vision через cgo. На других платформах
// собирается заглушка, которая возвращает entity.ErrEngineUnavailable.
package applevision

import "ivision/internal/domain/port"

// Name имя движка в конфигурации
const Name = "apple"

// Engine выполняет запросы Vision синхронно, по одному на вызов.
type Engine struct{}

// New создаёт движок.
func New() *Engine {
	return &Engine{}
}

func (e *Engine) Name() string {
	return Name
}

var (
	_ port.TextDetector   = (*Engine)(nil)
	_ port.TextRecognizer = (*Engine)(nil)
	_ port.Classifier     = (*Engine)(nil)
	_ port.ObjectDetector = (*Engine)(nil)
)
