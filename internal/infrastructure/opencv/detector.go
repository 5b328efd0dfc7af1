//go:build gocv
// +build gocv

package opencv

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sort"

	"gocv.io/x/gocv"

	"ivision/internal/domain/entity"
)

// DetectObjects запускает анализ контуров и возвращает кандидатов в объекты.
// Уверенность равна доле площади прямоугольника, занятой контуром.
func (e *Engine) DetectObjects(ctx context.Context, img *entity.Image) ([]entity.ObjectObservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mat, err := decodeToMat(img.Data)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	// Приводим изображение к стандартному размеру для стабильных порогов.
	scale := 1.0
	if mat.Cols() > e.MaxSide || mat.Rows() > e.MaxSide {
		scale = float64(e.MaxSide) / float64(max(mat.Cols(), mat.Rows()))
		newW := int(float64(mat.Cols()) * scale)
		newH := int(float64(mat.Rows()) * scale)
		resized := gocv.NewMat()
		gocv.Resize(mat, &resized, image.Pt(newW, newH), 0, 0, gocv.InterpolationArea)
		mat.Close()
		mat = resized
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	blur := gocv.NewMat()
	defer blur.Close()
	gocv.GaussianBlur(gray, &blur, image.Pt(5, 5), 0, 0, gocv.BorderDefault)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(blur, &edges, 50, 150)

	contours := gocv.FindContours(edges, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	minArea := int(float64(mat.Cols()*mat.Rows()) * e.MinAreaRatio)
	objects := make([]entity.ObjectObservation, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		c := contours.At(i)
		rect := gocv.BoundingRect(c)
		area := rect.Dx() * rect.Dy()
		if area < minArea || rect.Dy() == 0 {
			continue
		}

		aspect := float64(rect.Dx()) / float64(rect.Dy())
		if aspect < e.MinAspectRatio || aspect > e.MaxAspectRatio {
			continue
		}

		// Координаты возвращаем в масштабе исходного изображения.
		objects = append(objects, entity.ObjectObservation{
			Box: entity.Box{
				Left:   float64(rect.Min.X) / scale,
				Top:    float64(rect.Min.Y) / scale,
				Width:  float64(rect.Dx()) / scale,
				Height: float64(rect.Dy()) / scale,
			},
			Confidence: gocv.ContourArea(c) / float64(area),
			Label:      "object",
		})
	}

	sort.SliceStable(objects, func(i, j int) bool {
		return objects[i].Box.Area() > objects[j].Box.Area()
	})
	if e.MaxObjects > 0 && len(objects) > e.MaxObjects {
		objects = objects[:e.MaxObjects]
	}

	return objects, nil
}

// decodeToMat превращает байты изображения в gocv.Mat.
func decodeToMat(imageData []byte) (gocv.Mat, error) {
	mat, err := gocv.IMDecode(imageData, gocv.IMReadColor)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("failed to decode image: %w", err)
	}
	if mat.Empty() {
		mat.Close()
		return gocv.Mat{}, errors.New("failed to decode image")
	}
	return mat, nil
}
