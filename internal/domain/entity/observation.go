package entity

import "math"

// TextObservation найденная строка или слово текста.
type TextObservation struct {
	Box        Box     `json:"box" yaml:"box"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
	Text       string  `json:"text,omitempty" yaml:"text,omitempty"` // пусто при поиске областей текста без распознавания
}

// OCRResult хранит итог распознавания текста.
type OCRResult struct {
	ImageWidth  int               // ширина изображения
	ImageHeight int               // высота изображения
	Lines       []TextObservation // строки в порядке движка
	Words       []TextObservation // слова в порядке движка
}

// Classification метка класса изображения.
type Classification struct {
	Label      string  `json:"label" yaml:"label"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// ObjectObservation найденный объект.
type ObjectObservation struct {
	Box        Box     `json:"box" yaml:"box"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
	Label      string  `json:"label,omitempty" yaml:"label,omitempty"`
}

// RoundConfidence нормирует уверенность в [0,1] и округляет до сотых.
func RoundConfidence(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	v = clamp(v, 0, 1)
	return math.Round(v*100) / 100
}
