// Package opencv ищет кандидатов в объекты по контурам (gocv).
// Без тега сборки gocv собирается заглушка.
package opencv

import "ivision/internal/domain/port"

// Name имя движка в конфигурации
const Name = "opencv"

// Engine поиск объектов по контурам
type Engine struct {
	MinAreaRatio   float64 // минимальная площадь кандидата относительно изображения
	MaxAspectRatio float64
	MinAspectRatio float64
	MaxSide        int // изображение уменьшается до этой стороны перед анализом
	MaxObjects     int // сколько крупнейших кандидатов вернуть
}

// New создаёт движок с порогами по умолчанию.
func New() *Engine {
	return &Engine{
		MinAreaRatio:   0.001,
		MinAspectRatio: 0.1,
		MaxAspectRatio: 10.0,
		MaxSide:        1024,
		MaxObjects:     20,
	}
}

func (e *Engine) Name() string {
	return Name
}

var _ port.ObjectDetector = (*Engine)(nil)
