package eventcert

import "github.com/google/uuid"

type FieldKind string

const (
	FieldKindText      FieldKind = "text"
	FieldKindImage     FieldKind = "image"
	FieldKindDate      FieldKind = "date"
	FieldKindSignature FieldKind = "signature"
)

func (k FieldKind) IsValid() bool {
	switch k {
	case FieldKindText, FieldKindImage, FieldKindDate, FieldKindSignature:
		return true
	}
	return false
}

// Text kinds are drawn as glyphs, the other kinds as pixels inside their size box.
func (k FieldKind) IsText() bool {
	return k == FieldKindText || k == FieldKindDate
}

type FontWeight string

const (
	FontWeightNormal  FontWeight = "normal"
	FontWeightBold    FontWeight = "bold"
	FontWeightLighter FontWeight = "lighter"
)

type TextAlign string

const (
	TextAlignLeft   TextAlign = "left"
	TextAlignCenter TextAlign = "center"
	TextAlignRight  TextAlign = "right"
)

// Position is in logical canvas px.
type Position struct {
	X float64 `json:"x" form:"x"`
	Y float64 `json:"y" form:"y"`
}

func (p Position) Add(dx, dy float64) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

type Size struct {
	Width  float64 `json:"width" form:"width"`
	Height float64 `json:"height" form:"height"`
}

// Style holds the optional per field overrides as authored. Zero values mean "use the default".
type Style struct {
	FontSize   float64    `json:"fontSize,omitempty"`
	FontFamily string     `json:"fontFamily,omitempty"`
	FontWeight FontWeight `json:"fontWeight,omitempty"`
	Color      string     `json:"color,omitempty"`
	TextAlign  TextAlign  `json:"textAlign,omitempty"`
}

// ResolvedStyle is a Style where every member is populated.
type ResolvedStyle struct {
	FontSize   float64
	FontFamily string
	FontWeight FontWeight
	Color      string
	TextAlign  TextAlign
}

const (
	DefaultFontSize   = 16
	DefaultFontFamily = "Arial"
	DefaultColor      = "#000000"
)

var defaultStyles = map[FieldKind]ResolvedStyle{
	FieldKindText:      {FontSize: DefaultFontSize, FontFamily: DefaultFontFamily, FontWeight: FontWeightNormal, Color: DefaultColor, TextAlign: TextAlignLeft},
	FieldKindDate:      {FontSize: DefaultFontSize, FontFamily: DefaultFontFamily, FontWeight: FontWeightNormal, Color: DefaultColor, TextAlign: TextAlignLeft},
	FieldKindImage:     {FontSize: DefaultFontSize, FontFamily: DefaultFontFamily, FontWeight: FontWeightNormal, Color: DefaultColor, TextAlign: TextAlignLeft},
	FieldKindSignature: {FontSize: DefaultFontSize, FontFamily: DefaultFontFamily, FontWeight: FontWeightNormal, Color: DefaultColor, TextAlign: TextAlignLeft},
}

var defaultSizes = map[FieldKind]Size{
	FieldKindText:      {Width: 200, Height: 30},
	FieldKindDate:      {Width: 200, Height: 30},
	FieldKindImage:     {Width: 100, Height: 100},
	FieldKindSignature: {Width: 150, Height: 60},
}

var defaultContents = map[FieldKind]string{
	FieldKindText:      "Text",
	FieldKindDate:      "{{EVENT_DATE}}",
	FieldKindImage:     "",
	FieldKindSignature: "",
}

// DefaultPosition is where new fields are dropped on the canvas.
var DefaultPosition = Position{X: 100, Y: 100}

func DefaultStyleFor(kind FieldKind) ResolvedStyle {
	if s, ok := defaultStyles[kind]; ok {
		return s
	}
	return defaultStyles[FieldKindText]
}

type TemplateField struct {
	ID       string    `json:"id"`
	Kind     FieldKind `json:"kind"`
	Content  string    `json:"content"`
	Position Position  `json:"position"`
	Size     Size      `json:"size"`
	Style    Style     `json:"style"`
}

// NewField makes a field of the given kind with the kind defaults and a fresh id.
func NewField(kind FieldKind) TemplateField {
	return TemplateField{
		ID:       uuid.NewString(),
		Kind:     kind,
		Content:  defaultContents[kind],
		Position: DefaultPosition,
		Size:     defaultSizes[kind],
	}
}

func (f TemplateField) ResolvedStyle() ResolvedStyle {
	rs := DefaultStyleFor(f.Kind)
	if f.Style.FontSize > 0 {
		rs.FontSize = f.Style.FontSize
	}
	if f.Style.FontFamily != "" {
		rs.FontFamily = f.Style.FontFamily
	}
	switch f.Style.FontWeight {
	case FontWeightNormal, FontWeightBold, FontWeightLighter:
		rs.FontWeight = f.Style.FontWeight
	}
	if f.Style.Color != "" {
		rs.Color = f.Style.Color
	}
	switch f.Style.TextAlign {
	case TextAlignLeft, TextAlignCenter, TextAlignRight:
		rs.TextAlign = f.Style.TextAlign
	}
	return rs
}

// AlignedLeft returns the left edge of a text run of the given width anchored at x.
func AlignedLeft(x, width float64, align TextAlign) float64 {
	switch align {
	case TextAlignCenter:
		return x - width/2
	case TextAlignRight:
		return x - width
	default:
		return x
	}
}

type Preset string

const (
	PresetText              Preset = "text"
	PresetParticipantName   Preset = "participant_name"
	PresetEventName         Preset = "event_name"
	PresetEventDate         Preset = "event_date"
	PresetCertificateNumber Preset = "certificate_number"
	PresetSignature         Preset = "signature"
	PresetImage             Preset = "image"
)

type presetDef struct {
	kind    FieldKind
	content string
	style   Style
}

var presets = map[Preset]presetDef{
	PresetText:              {kind: FieldKindText, content: "Text"},
	PresetParticipantName:   {kind: FieldKindText, content: "{{PARTICIPANT_NAME}}", style: Style{FontSize: 32, FontWeight: FontWeightBold}},
	PresetEventName:         {kind: FieldKindText, content: "{{EVENT_NAME}}", style: Style{FontSize: 20}},
	PresetEventDate:         {kind: FieldKindDate, content: "{{EVENT_DATE}}"},
	PresetCertificateNumber: {kind: FieldKindText, content: "{{CERTIFICATE_NUMBER}}", style: Style{FontSize: 12}},
	PresetSignature:         {kind: FieldKindSignature},
	PresetImage:             {kind: FieldKindImage},
}

func (p Preset) IsValid() bool {
	_, ok := presets[p]
	return ok
}

// NewPresetField builds the field for a preset. ok is false for unknown presets.
func NewPresetField(p Preset) (TemplateField, bool) {
	def, ok := presets[p]
	if !ok {
		return TemplateField{}, false
	}
	f := NewField(def.kind)
	if def.content != "" {
		f.Content = def.content
	}
	f.Style = def.style
	return f, true
}
