package applevision

import (
	"encoding/json"
	"errors"
	"fmt"

	"ivision/internal/domain/entity"
)

// nativeObservation результат Vision в нормализованных координатах
// (начало в левом нижнем углу).
type nativeObservation struct {
	X          float64             `json:"x"`
	Y          float64             `json:"y"`
	W          float64             `json:"w"`
	H          float64             `json:"h"`
	Confidence float64             `json:"confidence"`
	Text       string              `json:"text"`
	Label      string              `json:"label"`
	Words      []nativeObservation `json:"words"`
}

type nativeResponse struct {
	Width        int                 `json:"width"`
	Height       int                 `json:"height"`
	Observations []nativeObservation `json:"observations"`
	Error        string              `json:"error"`
}

func parseResponse(raw []byte) (*nativeResponse, error) {
	if len(raw) == 0 {
		return nil, errors.New("vision returned no data")
	}

	var resp nativeResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode vision response: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("vision: %s", resp.Error)
	}
	if resp.Width <= 0 || resp.Height <= 0 {
		return nil, fmt.Errorf("vision: invalid image size %dx%d", resp.Width, resp.Height)
	}

	return &resp, nil
}

func (r *nativeResponse) box(o nativeObservation) entity.Box {
	return entity.BoxFromNormalized(o.X, o.Y, o.W, o.H, r.Width, r.Height)
}

func (r *nativeResponse) textObservations() []entity.TextObservation {
	out := make([]entity.TextObservation, 0, len(r.Observations))
	for _, o := range r.Observations {
		out = append(out, entity.TextObservation{
			Box:        r.box(o),
			Confidence: o.Confidence,
			Text:       o.Text,
		})
	}
	return out
}

// ocrResult раскладывает строки и слова. Уверенность слова равна уверенности строки.
func (r *nativeResponse) ocrResult() *entity.OCRResult {
	result := &entity.OCRResult{
		ImageWidth:  r.Width,
		ImageHeight: r.Height,
		Lines:       r.textObservations(),
	}
	for _, line := range r.Observations {
		for _, w := range line.Words {
			result.Words = append(result.Words, entity.TextObservation{
				Box:        r.box(w),
				Confidence: line.Confidence,
				Text:       w.Text,
			})
		}
	}
	return result
}

func (r *nativeResponse) classifications() []entity.Classification {
	out := make([]entity.Classification, 0, len(r.Observations))
	for _, o := range r.Observations {
		out = append(out, entity.Classification{Label: o.Label, Confidence: o.Confidence})
	}
	return out
}

func (r *nativeResponse) objects() []entity.ObjectObservation {
	out := make([]entity.ObjectObservation, 0, len(r.Observations))
	for _, o := range r.Observations {
		out = append(out, entity.ObjectObservation{
			Box:        r.box(o),
			Confidence: o.Confidence,
			Label:      o.Label,
		})
	}
	return out
}
