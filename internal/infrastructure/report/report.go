// Package report выводит результаты запросов в текстовых форматах и рисует
// найденные области поверх изображения.
package report

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"ivision/internal/domain/entity"
)

// Format формат вывода
type Format string

const (
	FormatText  Format = "text"
	FormatCSV   Format = "csv"
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ErrUnknownFormat формат не распознан
var ErrUnknownFormat = errors.New("could not guess file format")

// ParseFormat разбирает имя формата.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatCSV, FormatTable, FormatJSON, FormatYAML:
		return f, nil
	case "txt":
		return FormatText, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatFromPath угадывает формат по расширению файла.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" || ext == string(FormatTable) {
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	return ParseFormat(ext)
}

// WriteFile сохраняет отчёт в файл, формат определяется расширением.
func WriteFile(path string, r *entity.Report) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := Render(f, r, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Render пишет отчёт в w.
func Render(w io.Writer, r *entity.Report, format Format) error {
	switch format {
	case FormatText:
		return renderText(w, r)
	case FormatCSV:
		return renderCSV(w, r)
	case FormatTable:
		return renderTable(w, r)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records(r))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records(r)); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// records возвращает срез записей нужного вида, пустой вместо nil.
func records(r *entity.Report) any {
	switch r.Capability {
	case entity.CapabilityClassify:
		if r.Labels == nil {
			return []entity.Classification{}
		}
		return r.Labels
	case entity.CapabilityObjects:
		if r.Objects == nil {
			return []entity.ObjectObservation{}
		}
		return r.Objects
	}
	if r.Text == nil {
		return []entity.TextObservation{}
	}
	return r.Text
}

// Lines возвращает по строке на запись: текст, метку или прямоугольник.
func Lines(r *entity.Report) []string {
	var lines []string
	switch r.Capability {
	case entity.CapabilityClassify:
		for _, l := range r.Labels {
			lines = append(lines, fmt.Sprintf("%s %s", l.Label, formatFloat(l.Confidence)))
		}
	case entity.CapabilityObjects:
		for _, o := range r.Objects {
			lines = append(lines, fmt.Sprintf("%s %s %s", o.Label, formatBox(o.Box), formatFloat(o.Confidence)))
		}
	default:
		for _, t := range r.Text {
			if t.Text != "" {
				lines = append(lines, t.Text)
				continue
			}
			lines = append(lines, fmt.Sprintf("%s %s", formatBox(t.Box), formatFloat(t.Confidence)))
		}
	}
	return lines
}

func renderText(w io.Writer, r *entity.Report) error {
	lines := Lines(r)
	if len(lines) == 0 {
		return nil
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}

func header(r *entity.Report) []string {
	switch r.Capability {
	case entity.CapabilityClassify:
		return []string{"label", "confidence"}
	case entity.CapabilityObjects:
		return []string{"left", "top", "width", "height", "confidence", "label"}
	}
	return []string{"left", "top", "width", "height", "confidence", "text"}
}

func rows(r *entity.Report) [][]string {
	var out [][]string
	switch r.Capability {
	case entity.CapabilityClassify:
		for _, l := range r.Labels {
			out = append(out, []string{l.Label, formatFloat(l.Confidence)})
		}
	case entity.CapabilityObjects:
		for _, o := range r.Objects {
			out = append(out, append(boxCells(o.Box), formatFloat(o.Confidence), o.Label))
		}
	default:
		for _, t := range r.Text {
			out = append(out, append(boxCells(t.Box), formatFloat(t.Confidence), t.Text))
		}
	}
	return out
}

// renderCSV пишет CSV с заголовком и колонкой индекса, как pandas to_csv.
func renderCSV(w io.Writer, r *entity.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{""}, header(r)...)); err != nil {
		return err
	}
	for i, row := range rows(r) {
		if err := cw.Write(append([]string{strconv.Itoa(i)}, row...)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func renderTable(w io.Writer, r *entity.Report) error {
	table := tablewriter.NewWriter(w)
	table.Header(toAny(header(r))...)
	for _, row := range rows(r) {
		if err := table.Append(toAny(row)...); err != nil {
			return err
		}
	}
	return table.Render()
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func boxCells(b entity.Box) []string {
	return []string{formatFloat(b.Left), formatFloat(b.Top), formatFloat(b.Width), formatFloat(b.Height)}
}

func formatBox(b entity.Box) string {
	return strings.Join(boxCells(b), ",")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
