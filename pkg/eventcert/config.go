package eventcert

import (
	"fmt"
	"os"
)

type OutputFormat string

const (
	OutputPDF OutputFormat = "pdf"
	OutputPNG OutputFormat = "png"
)

func (f OutputFormat) IsValid() bool {
	return f == OutputPDF || f == OutputPNG
}

func (f OutputFormat) ContentType() string {
	if f == OutputPNG {
		return "image/png"
	}
	return MimeTypePDF
}

func (f OutputFormat) Extension() string {
	if f == OutputPNG {
		return ".png"
	}
	return ".pdf"
}

type Config struct {
	// A path to json where it store font name and path to the font file
	FontMetadataPath string
	// Directory where the temporary files are stored during processing, the files are removed after each render
	TmpDir string
	// Default output when a render does not ask for one
	OutputFormat OutputFormat
	// Locale of long dates written by the {{EVENT_DATE}} and {{ISSUED_DATE}} tokens
	Locale Locale
	// Raster scale for png output, the logical coordinate space is unaffected
	PixelRatio float64
	// Upper bound of concurrent renders in a batch, 0 means derive from GOMAXPROCS
	MaxWorkers  int
	EmbedQRCode bool
	// fmt pattern receiving the certificate number, e.g. "https://example.com/verify/%s"
	QrURLPattern string
	// Prefix of minted certificate numbers
	NumberPrefix string
}

func NewDefaultConfig() *Config {
	cfg := Config{
		FontMetadataPath: "font_metadata.json",
		TmpDir:           fmt.Sprintf("%s/eventhub/render/tmp", os.TempDir()),
		OutputFormat:     OutputPDF,
		Locale:           LocaleEnglish,
		PixelRatio:       1,
		NumberPrefix:     DefaultNumberPrefix,
	}

	// 0755 mean owner can read, write and execute
	if err := os.MkdirAll(cfg.TmpDir, 0755); err != nil {
		fmt.Printf("Error creating tmp directory: %v\n", err)
	}

	return &cfg
}
