package eventcert

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// 5 MB, the same limit the admin panel enforces on flyers and templates.
const MaxUploadSize = 5 * 1024 * 1024

const MimeTypePDF = "application/pdf"

var (
	BackgroundMimeTypes = []string{"image/jpeg", "image/jpg", "image/png", "image/gif"}
	TemplateMimeTypes   = []string{"image/jpeg", "image/jpg", "image/png", "image/gif", MimeTypePDF}
)

type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ValidateBackground checks an upload meant to become a composer background.
func ValidateBackground(up Upload) error {
	_, err := validateUpload(up, BackgroundMimeTypes)
	return err
}

// ValidateTemplateUpload checks a certificate template upload, which may also be a PDF.
func ValidateTemplateUpload(up Upload) error {
	contentType, err := validateUpload(up, TemplateMimeTypes)
	if err != nil {
		return err
	}

	if contentType == MimeTypePDF {
		pages, err := PDFPageCount(up.Data)
		if err != nil {
			return &ValidationError{Field: "file", Message: "the PDF file could not be read"}
		}
		if pages < 1 {
			return &ValidationError{Field: "file", Message: "the PDF file has no pages"}
		}
	}

	return nil
}

// DetectContentType returns the normalized content type of an accepted upload.
func DetectContentType(up Upload) string {
	if ct := normalizeMimeType(up.ContentType); ct != "" {
		return ct
	}
	return normalizeMimeType(mimetype.Detect(up.Data).String())
}

func validateUpload(up Upload, allowed []string) (string, error) {
	if len(up.Data) == 0 {
		return "", &ValidationError{Field: "file", Message: "file is required"}
	}

	if len(up.Data) > MaxUploadSize {
		return "", &ValidationError{Field: "file", Message: fmt.Sprintf("file must not be larger than %d MB", MaxUploadSize/1024/1024)}
	}

	detected := normalizeMimeType(mimetype.Detect(up.Data).String())
	declared := normalizeMimeType(up.ContentType)
	if declared == "" {
		declared = detected
	}

	if !slices.Contains(allowed, declared) {
		return "", &ValidationError{Field: "file", Message: fmt.Sprintf("file must be one of: %s", strings.Join(allowed, ", "))}
	}

	if detected != declared {
		return "", &ValidationError{Field: "file", Message: "file content does not match its type"}
	}

	return declared, nil
}

func normalizeMimeType(ct string) string {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if ct == "image/jpg" {
		return "image/jpeg"
	}
	return ct
}
