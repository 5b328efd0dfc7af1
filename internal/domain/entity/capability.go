package entity

import (
	"fmt"
	"sort"
	"strings"
)

// Capability вид запроса к движку
type Capability string

const (
	CapabilityText     Capability = "text"     // области текста без распознавания
	CapabilityOCR      Capability = "ocr"      // распознавание текста
	CapabilityClassify Capability = "classify" // классификация изображения
	CapabilityObjects  Capability = "objects"  // поиск объектов
)

// Capabilities перечисляет все поддерживаемые запросы.
func Capabilities() []Capability {
	return []Capability{CapabilityText, CapabilityOCR, CapabilityClassify, CapabilityObjects}
}

// HasBoxes сообщает, возвращает ли запрос прямоугольники.
func (c Capability) HasBoxes() bool {
	return c != CapabilityClassify
}

// capabilityAliases короткие имена, которые важнее поиска по префиксу.
var capabilityAliases = map[string]Capability{
	"o": CapabilityOCR,
}

// ParseCapability принимает полное имя, короткий алиас или однозначный префикс.
func ParseCapability(s string) (Capability, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", fmt.Errorf("%w: empty name", ErrUnsupportedCapability)
	}
	if c, ok := capabilityAliases[s]; ok {
		return c, nil
	}

	var matches []string
	for _, c := range Capabilities() {
		if string(c) == s {
			return c, nil
		}
		if strings.HasPrefix(string(c), s) {
			matches = append(matches, string(c))
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedCapability, s)
	case 1:
		return Capability(matches[0]), nil
	default:
		sort.Strings(matches)
		return "", fmt.Errorf("%w: %q is ambiguous (%s)", ErrUnsupportedCapability, s, strings.Join(matches, ", "))
	}
}
