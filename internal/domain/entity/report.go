package entity

// Report результат одного запроса в плоском виде для вывода.
type Report struct {
	Capability  Capability
	ImageWidth  int
	ImageHeight int
	Text        []TextObservation   // text и ocr: строки или слова
	Labels      []Classification    // classify
	Objects     []ObjectObservation // objects
}

// Len количество записей в отчёте
func (r *Report) Len() int {
	switch r.Capability {
	case CapabilityClassify:
		return len(r.Labels)
	case CapabilityObjects:
		return len(r.Objects)
	}
	return len(r.Text)
}
