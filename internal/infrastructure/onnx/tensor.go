package onnx

import (
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/nfnt/resize"

	"ivision/internal/domain/entity"
)

// Preprocess приводит изображение к квадрату size x size и раскладывает
// пиксели в тензор CHW со значениями 0..1.
func Preprocess(img image.Image, size, channels int) []float32 {
	resized := resize.Resize(uint(size), uint(size), img, resize.Bilinear)
	bounds := resized.Bounds()
	plane := size * size
	out := make([]float32, channels*plane)

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			i := y*size + x
			px := resized.At(bounds.Min.X+x, bounds.Min.Y+y)
			if channels == 1 {
				g := color.GrayModel.Convert(px).(color.Gray)
				out[i] = float32(g.Y) / 255
				continue
			}
			r, g, b, _ := px.RGBA()
			out[i] = float32(r>>8) / 255
			out[plane+i] = float32(g>>8) / 255
			out[2*plane+i] = float32(b>>8) / 255
		}
	}

	return out
}

// Softmax переводит логиты в вероятности.
func Softmax(logits []float32) []float32 {
	if len(logits) == 0 {
		return nil
	}
	maxVal := logits[0]
	for _, v := range logits {
		if v > maxVal {
			maxVal = v
		}
	}

	out := make([]float32, len(logits))
	var sum float64
	for i, v := range logits {
		e := math.Exp(float64(v - maxVal))
		out[i] = float32(e)
		sum += e
	}
	for i := range out {
		out[i] = float32(float64(out[i]) / sum)
	}
	return out
}

// Classifications сопоставляет выходы модели именам классов по убыванию вероятности.
func Classifications(scores []float32, classes []string) []entity.Classification {
	n := min(len(scores), len(classes))
	out := make([]entity.Classification, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, entity.Classification{Label: classes[i], Confidence: float64(scores[i])})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	return out
}
