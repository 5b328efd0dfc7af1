package report

import (
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"

	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"

	"ivision/internal/domain/entity"
)

// textColor цвет областей текста, у объектов цвет зависит от метки
var textColor = colorful.Color{R: 0, G: 1, B: 0}

type annotation struct {
	box   entity.Box
	label string
	color color.Color
}

// Annotate рисует прямоугольники записей отчёта поверх изображения.
func Annotate(img image.Image, r *entity.Report) (image.Image, error) {
	if !r.Capability.HasBoxes() {
		return nil, fmt.Errorf("%w: %s has no boxes to draw", entity.ErrUnsupportedCapability, r.Capability)
	}

	dc := gg.NewContextForImage(img)
	dc.SetLineWidth(2)

	for _, a := range annotations(r) {
		dc.SetColor(a.color)
		dc.DrawRectangle(a.box.Left, a.box.Top, a.box.Width, a.box.Height)
		dc.Stroke()

		if a.label == "" {
			continue
		}
		dc.DrawStringAnchored(
			a.label,
			a.box.Left, /* =x */
			a.box.Top,  /* =y */
			0,          /* =ax (align left in x) */
			0,          /* =ay (text sits above the box) */
		)
	}

	return dc.Image(), nil
}

func annotations(r *entity.Report) []annotation {
	var out []annotation
	switch r.Capability {
	case entity.CapabilityObjects:
		for _, o := range r.Objects {
			out = append(out, annotation{
				box:   o.Box,
				label: fmt.Sprintf("%s %.2f", o.Label, o.Confidence),
				color: colorForLabel(o.Label),
			})
		}
	default:
		for _, t := range r.Text {
			out = append(out, annotation{box: t.Box, label: t.Text, color: textColor})
		}
	}
	return out
}

// colorForLabel выбирает оттенок по метке, одинаковые метки рисуются одним цветом.
func colorForLabel(label string) colorful.Color {
	h := fnv.New32a()
	h.Write([]byte(label))
	return colorful.Hsv(float64(h.Sum32()%360), 0.85, 1)
}

// SaveImage сохраняет изображение в PNG или JPEG по расширению файла.
func SaveImage(path string, img image.Image) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return gg.SavePNG(path, img)
	case ".jpg", ".jpeg":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 90}); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
	return fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}
