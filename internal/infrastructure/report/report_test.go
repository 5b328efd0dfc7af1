package report

import (
	"bytes"
	"encoding/json"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"ivision/internal/domain/entity"
)

func ocrReport() *entity.Report {
	return &entity.Report{
		Capability: entity.CapabilityOCR,
		Text: []entity.TextObservation{
			{Box: entity.Box{Left: 10, Top: 5, Width: 100, Height: 12.5}, Confidence: 0.99, Text: "Hello world"},
			{Box: entity.Box{Left: 10, Top: 30, Width: 80, Height: 12}, Confidence: 0.5, Text: "second, line"},
		},
	}
}

func TestFormatFromPath(t *testing.T) {
	cases := map[string]Format{
		"out.txt":  FormatText,
		"out.CSV":  FormatCSV,
		"a/b.json": FormatJSON,
		"r.yml":    FormatYAML,
		"r.yaml":   FormatYAML,
	}
	for path, want := range cases {
		got, err := FormatFromPath(path)
		require.NoError(t, err, path)
		require.Equal(t, want, got, path)
	}

	_, err := FormatFromPath("output")
	require.ErrorIs(t, err, ErrUnknownFormat)
	_, err = FormatFromPath("output.xlsx")
	require.ErrorIs(t, err, ErrUnknownFormat)
}

func TestRenderText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, ocrReport(), FormatText))
	require.Equal(t, "Hello world\nsecond, line\n", buf.String())

	buf.Reset()
	require.NoError(t, Render(&buf, &entity.Report{Capability: entity.CapabilityOCR}, FormatText))
	require.Empty(t, buf.String())
}

func TestRenderCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, ocrReport(), FormatCSV))
	want := ",left,top,width,height,confidence,text\n" +
		"0,10,5,100,12.5,0.99,Hello world\n" +
		"1,10,30,80,12,0.5,\"second, line\"\n"
	require.Equal(t, want, buf.String())
}

func TestRenderCSV_Classify(t *testing.T) {
	r := &entity.Report{
		Capability: entity.CapabilityClassify,
		Labels:     []entity.Classification{{Label: "cat", Confidence: 0.9}},
	}
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, r, FormatCSV))
	require.Equal(t, ",label,confidence\n0,cat,0.9\n", buf.String())
}

func TestRenderJSONAndYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, ocrReport(), FormatJSON))

	var decoded []entity.TextObservation
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Equal(t, ocrReport().Text, decoded)

	buf.Reset()
	empty := &entity.Report{Capability: entity.CapabilityObjects}
	require.NoError(t, Render(&buf, empty, FormatJSON))
	require.Equal(t, "[]\n", buf.String())

	buf.Reset()
	require.NoError(t, Render(&buf, ocrReport(), FormatYAML))
	var fromYAML []entity.TextObservation
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &fromYAML))
	require.Equal(t, ocrReport().Text, fromYAML)
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, ocrReport(), FormatTable))
	require.Contains(t, buf.String(), "Hello world")
	require.Contains(t, buf.String(), "0.99")
}

func TestLines_TextDetection(t *testing.T) {
	r := &entity.Report{
		Capability: entity.CapabilityText,
		Text:       []entity.TextObservation{{Box: entity.Box{Left: 1, Top: 2, Width: 3, Height: 4}, Confidence: 1}},
	}
	require.Equal(t, []string{"1,2,3,4 1"}, Lines(r))
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	require.NoError(t, WriteFile(path, ocrReport()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "Hello world\nsecond, line\n", string(data))

	err = WriteFile(filepath.Join(dir, "out"), ocrReport())
	require.ErrorIs(t, err, ErrUnknownFormat)
}

func TestAnnotate(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 200, 100))
	out, err := Annotate(img, ocrReport())
	require.NoError(t, err)
	require.Equal(t, img.Bounds(), out.Bounds())

	// Рамка рисуется зелёным по левой границе прямоугольника.
	_, g, _, _ := out.At(10, 10).RGBA()
	require.NotZero(t, g)

	_, err = Annotate(img, &entity.Report{Capability: entity.CapabilityClassify})
	require.ErrorIs(t, err, entity.ErrUnsupportedCapability)

	dir := t.TempDir()
	require.NoError(t, SaveImage(filepath.Join(dir, "a.png"), out))
	require.NoError(t, SaveImage(filepath.Join(dir, "a.jpg"), out))
	require.ErrorIs(t, SaveImage(filepath.Join(dir, "a.gif"), out), ErrUnknownFormat)
}

func TestColorForLabel(t *testing.T) {
	require.Equal(t, colorForLabel("cat"), colorForLabel("cat"))
	require.True(t, colorForLabel("cat").IsValid())
}
