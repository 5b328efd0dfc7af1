package applevision

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ivision/internal/domain/entity"
)

const ocrFixture = `{
	"width": 200, "height": 100,
	"observations": [{
		"x": 0.1, "y": 0.8, "w": 0.5, "h": 0.1, "confidence": 0.5,
		"text": "Hello world",
		"words": [
			{"x": 0.1, "y": 0.8, "w": 0.2, "h": 0.1, "text": "Hello"},
			{"x": 0.35, "y": 0.8, "w": 0.25, "h": 0.1, "text": "world"}
		]
	}]
}`

func TestParseResponse_OCR(t *testing.T) {
	resp, err := parseResponse([]byte(ocrFixture))
	require.NoError(t, err)

	result := resp.ocrResult()
	require.Equal(t, 200, result.ImageWidth)
	require.Len(t, result.Lines, 1)
	require.Equal(t, "Hello world", result.Lines[0].Text)
	require.InDelta(t, 20, result.Lines[0].Box.Left, 1e-9)
	require.InDelta(t, 10, result.Lines[0].Box.Top, 1e-9)
	require.InDelta(t, 100, result.Lines[0].Box.Width, 1e-9)
	require.InDelta(t, 10, result.Lines[0].Box.Height, 1e-9)

	require.Len(t, result.Words, 2)
	require.Equal(t, "world", result.Words[1].Text)
	require.Equal(t, 0.5, result.Words[1].Confidence)
	require.InDelta(t, 70, result.Words[1].Box.Left, 1e-9)
}

func TestParseResponse_Classifications(t *testing.T) {
	resp, err := parseResponse([]byte(`{"width":1,"height":1,"observations":[{"label":"cat","confidence":0.9}]}`))
	require.NoError(t, err)
	require.Equal(t, []entity.Classification{{Label: "cat", Confidence: 0.9}}, resp.classifications())
}

func TestParseResponse_Objects(t *testing.T) {
	resp, err := parseResponse([]byte(`{"width":10,"height":10,"observations":[{"x":0,"y":0,"w":1,"h":1,"confidence":1,"label":"object"}]}`))
	require.NoError(t, err)
	objects := resp.objects()
	require.Len(t, objects, 1)
	require.Equal(t, entity.Box{Left: 0, Top: 0, Width: 10, Height: 10}, objects[0].Box)
	require.Equal(t, "object", objects[0].Label)
}

func TestParseResponse_Errors(t *testing.T) {
	_, err := parseResponse(nil)
	require.Error(t, err)

	_, err = parseResponse([]byte(`{"error":"failed to load image"}`))
	require.EqualError(t, err, "vision: failed to load image")

	_, err = parseResponse([]byte(`{"width":0,"height":5}`))
	require.Error(t, err)

	_, err = parseResponse([]byte(`not json`))
	require.Error(t, err)
}
