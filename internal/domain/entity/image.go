package entity

// Image загруженное и проверенное изображение.
type Image struct {
	Path   string // путь к файлу, пусто для буфера в памяти
	Data   []byte // закодированные байты изображения
	Format string // jpeg, png, gif, bmp, tiff, webp
	Width  int
	Height int
}

// OCROptions параметры распознавания текста
type OCROptions struct {
	Languages          []string // языки документа, по умолчанию en
	LanguageCorrection bool     // языковая коррекция
	Fast               bool     // быстрый режим вместо точного
}

// DefaultOCROptions возвращает параметры по умолчанию.
func DefaultOCROptions() OCROptions {
	return OCROptions{
		Languages:          []string{"en"},
		LanguageCorrection: true,
	}
}
