package main

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"ivision/config"
	"ivision/internal/container"
	"ivision/internal/domain/entity"
	"ivision/internal/domain/port"
	"ivision/internal/infrastructure/report"
)

// fakeBackend отвечает заранее заданными результатами и запоминает
// параметры распознавания.
type fakeBackend struct {
	ocrOpts entity.OCROptions
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) RecognizeText(ctx context.Context, img *entity.Image, opts entity.OCROptions) (*entity.OCRResult, error) {
	f.ocrOpts = opts
	return &entity.OCRResult{
		ImageWidth:  img.Width,
		ImageHeight: img.Height,
		Lines: []entity.TextObservation{
			{Box: entity.Box{Left: 10, Top: 10, Width: 60, Height: 10}, Confidence: 0.95, Text: "Hello world"},
		},
		Words: []entity.TextObservation{
			{Box: entity.Box{Left: 10, Top: 10, Width: 25, Height: 10}, Confidence: 0.95, Text: "Hello"},
			{Box: entity.Box{Left: 40, Top: 10, Width: 30, Height: 10}, Confidence: 0.95, Text: "world"},
		},
	}, nil
}

func (f *fakeBackend) Classify(ctx context.Context, img *entity.Image) ([]entity.Classification, error) {
	return []entity.Classification{
		{Label: "animal", Confidence: 0.8},
		{Label: "cat", Confidence: 0.9},
		{Label: "pet", Confidence: 0.5},
	}, nil
}

// useFakeBackend регистрирует движок fake и возвращает путь к тестовому PNG.
func useFakeBackend(t *testing.T) (*fakeBackend, string) {
	t.Helper()

	backend := &fakeBackend{}
	container.Register("fake", func(ctx context.Context, cfg *config.Config) (port.Backend, error) {
		return backend, nil
	})

	path := filepath.Join(t.TempDir(), "scan.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewGray(image.Rect(0, 0, 100, 50))))
	require.NoError(t, f.Close())

	return backend, path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cobra.EnablePrefixMatching = true
	t.Setenv("IVISION_CONFIG", "")
	t.Setenv("IVISION_BACKEND", "")
	t.Setenv("IVISION_LANGUAGES", "")

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func TestCLI_UnknownOutputSuffix(t *testing.T) {
	_, err := execute(t, "ocr", "image.png", "-o", "result.xyz")
	require.ErrorIs(t, err, report.ErrUnknownFormat)
}

func TestCLI_PrefixMatching(t *testing.T) {
	_, err := execute(t, "cl", "image.png", "--format", "bogus")
	require.ErrorIs(t, err, report.ErrUnknownFormat)
}

func TestCLI_UnknownBackend(t *testing.T) {
	_, err := execute(t, "-b", "nope", "objects", "image.png")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown backend")
}

func TestCLI_AnnotateRejectsClassify(t *testing.T) {
	_, err := execute(t, "annotate", "image.png", "-c", "cl", "-o", "out.png")
	require.Error(t, err)
	require.Contains(t, err.Error(), "no regions")
}

func TestCLI_AnnotateUnknownCapability(t *testing.T) {
	_, err := execute(t, "annotate", "image.png", "-c", "x", "-o", "out.png")
	require.ErrorIs(t, err, entity.ErrUnsupportedCapability)
}

func TestCLI_BotRequiresToken(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "")
	_, err := execute(t, "bot")
	require.EqualError(t, err, "TELEGRAM_TOKEN is required")
}

func TestCLI_OCRToStdout(t *testing.T) {
	backend, path := useFakeBackend(t)

	out, err := execute(t, "-b", "fake", "ocr", path)
	require.NoError(t, err)
	require.Equal(t, "Hello world\n", out)
	require.Equal(t, []string{"en"}, backend.ocrOpts.Languages)
	require.True(t, backend.ocrOpts.LanguageCorrection)
	require.False(t, backend.ocrOpts.Fast)
}

func TestCLI_OAliasRunsOCR(t *testing.T) {
	_, path := useFakeBackend(t)

	out, err := execute(t, "-b", "fake", "o", path)
	require.NoError(t, err)
	require.Equal(t, "Hello world\n", out)
}

func TestCLI_OCRWords(t *testing.T) {
	_, path := useFakeBackend(t)

	out, err := execute(t, "-b", "fake", "ocr", "-w", path)
	require.NoError(t, err)
	require.Equal(t, "Hello\nworld\n", out)
}

func TestCLI_OCRLanguages(t *testing.T) {
	backend, path := useFakeBackend(t)

	_, err := execute(t, "-b", "fake", "ocr", "-l", "de,fr", "-n", "-f", path)
	require.NoError(t, err)
	require.Equal(t, []string{"de", "fr"}, backend.ocrOpts.Languages)
	require.False(t, backend.ocrOpts.LanguageCorrection)
	require.True(t, backend.ocrOpts.Fast)
}

func TestCLI_OCRLanguagesFromConfig(t *testing.T) {
	backend, path := useFakeBackend(t)

	cobra.EnablePrefixMatching = true
	t.Setenv("IVISION_CONFIG", "")
	t.Setenv("IVISION_LANGUAGES", "uk, en")

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"-b", "fake", "ocr", path})
	require.NoError(t, root.Execute())
	require.Equal(t, []string{"uk", "en"}, backend.ocrOpts.Languages)
}

func TestCLI_OCRToCSVFile(t *testing.T) {
	_, path := useFakeBackend(t)
	output := filepath.Join(t.TempDir(), "out.csv")

	out, err := execute(t, "-b", "fake", "ocr", path, "-o", output)
	require.NoError(t, err)
	require.Empty(t, out)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	require.Equal(t, ",left,top,width,height,confidence,text\n0,10,10,60,10,0.95,Hello world\n", string(data))
}

func TestCLI_ClassifyTop(t *testing.T) {
	_, path := useFakeBackend(t)

	out, err := execute(t, "-b", "fake", "classify", "--top", "1", path)
	require.NoError(t, err)
	require.Equal(t, "cat 0.9\n", out)

	out, err = execute(t, "-b", "fake", "classify", "--format", "json", path)
	require.NoError(t, err)
	require.Contains(t, out, `"label": "pet"`)
}

func TestCLI_UnsupportedCapability(t *testing.T) {
	_, path := useFakeBackend(t)

	_, err := execute(t, "-b", "fake", "objects", path)
	require.ErrorIs(t, err, entity.ErrUnsupportedCapability)
}
