package entity

import "math"

// Box прямоугольник в пикселях, начало координат в левом верхнем углу
type Box struct {
	Left   float64 `json:"left" yaml:"left"`     // координата X левого верхнего угла
	Top    float64 `json:"top" yaml:"top"`       // координата Y левого верхнего угла
	Width  float64 `json:"width" yaml:"width"`   // ширина в пикселях
	Height float64 `json:"height" yaml:"height"` // высота в пикселях
}

// BoxFromNormalized переводит нормализованный прямоугольник Vision
// (начало координат в левом нижнем углу, значения 0..1) в пиксели.
func BoxFromNormalized(x, y, w, h float64, imageWidth, imageHeight int) Box {
	width := float64(imageWidth)
	height := float64(imageHeight)

	return Box{
		Left:   x * width,
		Top:    height - y*height - h*height,
		Width:  w * width,
		Height: h * height,
	}
}

// BoxFromPoints строит описывающий прямоугольник по набору вершин.
func BoxFromPoints(xs, ys []float64) Box {
	if len(xs) == 0 || len(ys) == 0 {
		return Box{}
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	for _, x := range xs {
		minX = math.Min(minX, x)
		maxX = math.Max(maxX, x)
	}
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, y := range ys {
		minY = math.Min(minY, y)
		maxY = math.Max(maxY, y)
	}

	return Box{Left: minX, Top: minY, Width: maxX - minX, Height: maxY - minY}
}

// Union возвращает прямоугольник, покрывающий оба.
func (b Box) Union(other Box) Box {
	if b.Empty() {
		return other
	}
	if other.Empty() {
		return b
	}
	left := math.Min(b.Left, other.Left)
	top := math.Min(b.Top, other.Top)
	right := math.Max(b.Right(), other.Right())
	bottom := math.Max(b.Bottom(), other.Bottom())

	return Box{Left: left, Top: top, Width: right - left, Height: bottom - top}
}

// Clamp обрезает прямоугольник по границам изображения.
func (b Box) Clamp(imageWidth, imageHeight int) Box {
	left := clamp(b.Left, 0, float64(imageWidth))
	top := clamp(b.Top, 0, float64(imageHeight))
	right := clamp(b.Right(), 0, float64(imageWidth))
	bottom := clamp(b.Bottom(), 0, float64(imageHeight))

	return Box{Left: left, Top: top, Width: right - left, Height: bottom - top}
}

// Right правая граница
func (b Box) Right() float64 {
	return b.Left + b.Width
}

// Bottom нижняя граница
func (b Box) Bottom() float64 {
	return b.Top + b.Height
}

// Center возвращает координаты центра прямоугольника
func (b Box) Center() (x, y float64) {
	return b.Left + b.Width/2, b.Top + b.Height/2
}

// Area площадь в пикселях
func (b Box) Area() float64 {
	return b.Width * b.Height
}

// Empty сообщает, что прямоугольник вырожден.
func (b Box) Empty() bool {
	return b.Width <= 0 || b.Height <= 0
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
