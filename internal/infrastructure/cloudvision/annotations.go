package cloudvision

import (
	"strings"

	"cloud.google.com/go/vision/v2/apiv1/visionpb"

	"ivision/internal/domain/entity"
	"ivision/internal/utils"
)

// Cloud Vision не возвращает уверенность для TEXT_DETECTION, в этом случае пишем 1.
const unknownConfidence = 1.0

func textObservations(annotations []*visionpb.EntityAnnotation) []entity.TextObservation {
	if len(annotations) <= 1 {
		return nil
	}
	return utils.Map(annotations[1:], func(a *visionpb.EntityAnnotation) entity.TextObservation {
		return entity.TextObservation{
			Box:        pixelBox(a.GetBoundingPoly().GetVertices()),
			Confidence: confidence(a.GetScore(), a.GetConfidence()),
			Text:       a.GetDescription(),
		}
	})
}

// documentText раскладывает полный текст на слова и строки. Строка
// заканчивается на разрыве EOL_SURE_SPACE или LINE_BREAK либо в конце абзаца.
func documentText(annotation *visionpb.TextAnnotation) *entity.OCRResult {
	result := &entity.OCRResult{}

	blocks := utils.FlatMap(annotation.GetPages(), func(page *visionpb.Page) []*visionpb.Block {
		return page.GetBlocks()
	})
	paragraphs := utils.FlatMap(blocks, func(block *visionpb.Block) []*visionpb.Paragraph {
		return block.GetParagraphs()
	})

	for _, paragraph := range paragraphs {
		var line lineBuilder
		for _, word := range paragraph.GetWords() {
			observation := entity.TextObservation{
				Box:        pixelBox(word.GetBoundingBox().GetVertices()),
				Confidence: float64(word.GetConfidence()),
				Text: utils.Reduce(word.GetSymbols(), func(text string, symbol *visionpb.Symbol) string {
					return text + symbol.GetText()
				}, ""),
			}
			result.Words = append(result.Words, observation)

			brk := lastBreak(word)
			line.add(observation, brk)
			if brk == visionpb.TextAnnotation_DetectedBreak_EOL_SURE_SPACE || brk == visionpb.TextAnnotation_DetectedBreak_LINE_BREAK {
				result.Lines = line.flush(result.Lines)
			}
		}
		result.Lines = line.flush(result.Lines)
	}

	return result
}

type lineBuilder struct {
	text       strings.Builder
	box        entity.Box
	confidence float64
	words      int
}

func (b *lineBuilder) add(word entity.TextObservation, brk visionpb.TextAnnotation_DetectedBreak_BreakType) {
	b.text.WriteString(word.Text)
	switch brk {
	case visionpb.TextAnnotation_DetectedBreak_SPACE, visionpb.TextAnnotation_DetectedBreak_SURE_SPACE:
		b.text.WriteString(" ")
	case visionpb.TextAnnotation_DetectedBreak_HYPHEN:
		b.text.WriteString("-")
	}
	b.box = b.box.Union(word.Box)
	b.confidence += word.Confidence
	b.words++
}

func (b *lineBuilder) flush(lines []entity.TextObservation) []entity.TextObservation {
	if b.words == 0 {
		return lines
	}
	lines = append(lines, entity.TextObservation{
		Box:        b.box,
		Confidence: b.confidence / float64(b.words),
		Text:       strings.TrimSpace(b.text.String()),
	})
	*b = lineBuilder{}
	return lines
}

func lastBreak(word *visionpb.Word) visionpb.TextAnnotation_DetectedBreak_BreakType {
	symbols := word.GetSymbols()
	if len(symbols) == 0 {
		return visionpb.TextAnnotation_DetectedBreak_UNKNOWN
	}
	return symbols[len(symbols)-1].GetProperty().GetDetectedBreak().GetType()
}

func labels(annotations []*visionpb.EntityAnnotation) []entity.Classification {
	annotations = utils.Filter(annotations, func(a *visionpb.EntityAnnotation) bool {
		return a.GetDescription() != ""
	})
	return utils.Map(annotations, func(a *visionpb.EntityAnnotation) entity.Classification {
		return entity.Classification{
			Label:      a.GetDescription(),
			Confidence: confidence(a.GetScore(), a.GetConfidence()),
		}
	})
}

func objects(annotations []*visionpb.LocalizedObjectAnnotation, width, height int) []entity.ObjectObservation {
	return utils.Map(annotations, func(a *visionpb.LocalizedObjectAnnotation) entity.ObjectObservation {
		vertices := a.GetBoundingPoly().GetNormalizedVertices()
		return entity.ObjectObservation{
			Box: entity.BoxFromPoints(
				utils.Map(vertices, func(v *visionpb.NormalizedVertex) float64 { return float64(v.GetX()) * float64(width) }),
				utils.Map(vertices, func(v *visionpb.NormalizedVertex) float64 { return float64(v.GetY()) * float64(height) }),
			),
			Confidence: float64(a.GetScore()),
			Label:      a.GetName(),
		}
	})
}

func pixelBox(vertices []*visionpb.Vertex) entity.Box {
	return entity.BoxFromPoints(
		utils.Map(vertices, func(v *visionpb.Vertex) float64 { return float64(v.GetX()) }),
		utils.Map(vertices, func(v *visionpb.Vertex) float64 { return float64(v.GetY()) }),
	)
}

func confidence(score, legacy float32) float64 {
	switch {
	case score > 0:
		return float64(score)
	case legacy > 0:
		return float64(legacy)
	}
	return unknownConfidence
}
