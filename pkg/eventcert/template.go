package eventcert

import "fmt"

// Default logical canvas, landscape.
const (
	DefaultCanvasWidth  = 800
	DefaultCanvasHeight = 600
)

// Background references an uploaded image or PDF. Data is only populated while the
// background travels between the upload and the storage, or when it is handed to the renderer.
type Background struct {
	Ref         string `json:"ref"`
	ContentType string `json:"contentType"`
	Filename    string `json:"filename,omitempty"`
	Data        []byte `json:"-"`
}

func (b *Background) IsPDF() bool {
	return b != nil && b.ContentType == MimeTypePDF
}

type CertificateTemplate struct {
	Name       string          `json:"name"`
	Fields     []TemplateField `json:"fields"`
	Background *Background     `json:"background,omitempty"`
	CanvasSize Size            `json:"canvasSize"`
}

func NewTemplate(name string) CertificateTemplate {
	return CertificateTemplate{
		Name:       name,
		Fields:     []TemplateField{},
		CanvasSize: Size{Width: DefaultCanvasWidth, Height: DefaultCanvasHeight},
	}
}

// Canvas returns the canvas size, falling back to the default when unset.
func (t CertificateTemplate) Canvas() Size {
	if t.CanvasSize.Width <= 0 || t.CanvasSize.Height <= 0 {
		return Size{Width: DefaultCanvasWidth, Height: DefaultCanvasHeight}
	}
	return t.CanvasSize
}

func (t CertificateTemplate) Clone() CertificateTemplate {
	out := t
	out.Fields = make([]TemplateField, len(t.Fields))
	copy(out.Fields, t.Fields)
	if t.Background != nil {
		bg := *t.Background
		if t.Background.Data != nil {
			bg.Data = append([]byte(nil), t.Background.Data...)
		}
		out.Background = &bg
	}
	return out
}

func (t CertificateTemplate) FieldIndex(id string) int {
	for i := range t.Fields {
		if t.Fields[i].ID == id {
			return i
		}
	}
	return -1
}

func (t CertificateTemplate) Validate() error {
	seen := make(map[string]struct{}, len(t.Fields))
	for i, f := range t.Fields {
		if f.ID == "" {
			return &ValidationError{Field: fmt.Sprintf("fields[%d].id", i), Message: "field id is required"}
		}
		if _, dup := seen[f.ID]; dup {
			return &ValidationError{Field: fmt.Sprintf("fields[%d].id", i), Message: fmt.Sprintf("duplicate field id %q", f.ID)}
		}
		seen[f.ID] = struct{}{}

		if !f.Kind.IsValid() {
			return &ValidationError{Field: fmt.Sprintf("fields[%d].kind", i), Message: fmt.Sprintf("unknown field kind %q", f.Kind)}
		}
	}
	return nil
}
