package eventcert

import "fmt"

// HitPadding is added on every side of a text field's rendered box when hit-testing.
const HitPadding = 3

// StylePatch holds style members to overwrite. Nil members are left untouched.
type StylePatch struct {
	FontSize   *float64    `json:"fontSize"`
	FontFamily *string     `json:"fontFamily"`
	FontWeight *FontWeight `json:"fontWeight"`
	Color      *string     `json:"color"`
	TextAlign  *TextAlign  `json:"textAlign"`
}

// FieldPatch is a partial change merged into a field by UpdateField.
type FieldPatch struct {
	Content  *string     `json:"content"`
	Position *Position   `json:"position"`
	Size     *Size       `json:"size"`
	Style    *StylePatch `json:"style"`
}

func (p FieldPatch) apply(f *TemplateField) {
	if p.Content != nil {
		f.Content = *p.Content
	}
	if p.Position != nil {
		f.Position = *p.Position
	}
	if p.Size != nil {
		f.Size = *p.Size
	}
	if s := p.Style; s != nil {
		if s.FontSize != nil {
			f.Style.FontSize = *s.FontSize
		}
		if s.FontFamily != nil {
			f.Style.FontFamily = *s.FontFamily
		}
		if s.FontWeight != nil {
			f.Style.FontWeight = *s.FontWeight
		}
		if s.Color != nil {
			f.Style.Color = *s.Color
		}
		if s.TextAlign != nil {
			f.Style.TextAlign = *s.TextAlign
		}
	}
}

type dragState struct {
	fieldID string
	// field position when the drag began
	origin Position
	// pointer position when the drag began
	pointer Position
}

// Composer is an editing session over one template. It owns the selection, hover and drag
// state and is not safe for concurrent use.
type Composer struct {
	template CertificateTemplate
	measurer TextMeasurer

	selected string
	hovered  string
	drag     *dragState
}

// NewComposer starts a session on a copy of tpl. A nil measurer falls back to ApproxMeasurer.
func NewComposer(tpl CertificateTemplate, measurer TextMeasurer) *Composer {
	if measurer == nil {
		measurer = ApproxMeasurer{}
	}
	t := tpl.Clone()
	if t.Fields == nil {
		t.Fields = []TemplateField{}
	}
	t.CanvasSize = t.Canvas()
	return &Composer{template: t, measurer: measurer}
}

// LoadBackground replaces the background after validating the upload. On error nothing changes.
// The returned background has no Ref until the caller stores the bytes and calls SetBackgroundRef.
func (c *Composer) LoadBackground(up Upload) (*Background, error) {
	if err := ValidateBackground(up); err != nil {
		return nil, err
	}
	c.template.Background = &Background{
		ContentType: DetectContentType(up),
		Filename:    up.Filename,
		Data:        up.Data,
	}
	return c.template.Background, nil
}

func (c *Composer) SetBackgroundRef(ref string) {
	if c.template.Background == nil {
		c.template.Background = &Background{}
	}
	c.template.Background.Ref = ref
}

func (c *Composer) RemoveBackground() {
	c.template.Background = nil
}

func (c *Composer) Background() *Background {
	return c.template.Background
}

func (c *Composer) SetName(name string) {
	c.template.Name = name
}

func (c *Composer) SetCanvasSize(size Size) error {
	if size.Width <= 0 || size.Height <= 0 {
		return &ValidationError{Field: "canvasSize", Message: "canvas width and height must be positive"}
	}
	c.template.CanvasSize = size
	return nil
}

// AddField appends a field with the kind defaults and returns its id.
func (c *Composer) AddField(kind FieldKind) (string, error) {
	if !kind.IsValid() {
		return "", &ValidationError{Field: "kind", Message: fmt.Sprintf("unknown field kind %q", kind)}
	}
	f := NewField(kind)
	c.template.Fields = append(c.template.Fields, f)
	return f.ID, nil
}

func (c *Composer) AddPreset(p Preset) (string, error) {
	f, ok := NewPresetField(p)
	if !ok {
		return "", &ValidationError{Field: "preset", Message: fmt.Sprintf("unknown preset %q", p)}
	}
	c.template.Fields = append(c.template.Fields, f)
	return f.ID, nil
}

// InsertField appends a field authored elsewhere, keeping its id. A missing id is generated.
func (c *Composer) InsertField(f TemplateField) (string, error) {
	if !f.Kind.IsValid() {
		return "", &ValidationError{Field: "kind", Message: fmt.Sprintf("unknown field kind %q", f.Kind)}
	}
	if f.ID == "" {
		f.ID = NewField(f.Kind).ID
	}
	if c.template.FieldIndex(f.ID) >= 0 {
		return "", &ValidationError{Field: "id", Message: fmt.Sprintf("duplicate field id %q", f.ID)}
	}
	c.template.Fields = append(c.template.Fields, f)
	return f.ID, nil
}

func (c *Composer) Field(id string) (TemplateField, bool) {
	i := c.template.FieldIndex(id)
	if i < 0 {
		return TemplateField{}, false
	}
	return c.template.Fields[i], true
}

func (c *Composer) Fields() []TemplateField {
	out := make([]TemplateField, len(c.template.Fields))
	copy(out, c.template.Fields)
	return out
}

// Select marks id as the single selected field. Unknown ids are ignored.
func (c *Composer) Select(id string) bool {
	if c.template.FieldIndex(id) < 0 {
		return false
	}
	c.selected = id
	return true
}

func (c *Composer) Deselect() {
	c.selected = ""
}

func (c *Composer) Selected() (string, bool) {
	return c.selected, c.selected != ""
}

// Hover records the field under the pointer, if any, and returns it.
func (c *Composer) Hover(p Position) (string, bool) {
	id, ok := c.HitTest(p)
	c.hovered = id
	return id, ok
}

func (c *Composer) Hovered() (string, bool) {
	return c.hovered, c.hovered != ""
}

// UpdateField merges patch into the field. It returns false, changing nothing, when id is unknown.
func (c *Composer) UpdateField(id string, patch FieldPatch) bool {
	i := c.template.FieldIndex(id)
	if i < 0 {
		return false
	}
	patch.apply(&c.template.Fields[i])
	if c.drag != nil && c.drag.fieldID == id && patch.Position != nil {
		// an explicit move wins over the drag in progress
		c.drag = nil
	}
	return true
}

// DeleteField removes the field and every piece of session state that points at it.
func (c *Composer) DeleteField(id string) bool {
	i := c.template.FieldIndex(id)
	if i < 0 {
		return false
	}
	c.template.Fields = append(c.template.Fields[:i], c.template.Fields[i+1:]...)
	if c.selected == id {
		c.selected = ""
	}
	if c.hovered == id {
		c.hovered = ""
	}
	if c.drag != nil && c.drag.fieldID == id {
		c.drag = nil
	}
	return true
}

// BeginDrag starts moving field id with the pointer at p. A drag still in progress is cancelled
// first. The dragged field becomes the selection.
func (c *Composer) BeginDrag(id string, p Position) bool {
	c.CancelDrag()

	i := c.template.FieldIndex(id)
	if i < 0 {
		return false
	}
	c.drag = &dragState{fieldID: id, origin: c.template.Fields[i].Position, pointer: p}
	c.selected = id
	return true
}

// DragTo moves the dragged field so the grab offset stays fixed: F0 + (P - P0).
func (c *Composer) DragTo(p Position) (Position, bool) {
	if c.drag == nil {
		return Position{}, false
	}
	i := c.template.FieldIndex(c.drag.fieldID)
	if i < 0 {
		c.drag = nil
		return Position{}, false
	}
	pos := c.drag.origin.Add(p.X-c.drag.pointer.X, p.Y-c.drag.pointer.Y)
	c.template.Fields[i].Position = pos
	return pos, true
}

// EndDrag commits the tracked position and returns it.
func (c *Composer) EndDrag() (Position, bool) {
	if c.drag == nil {
		return Position{}, false
	}
	id := c.drag.fieldID
	c.drag = nil

	f, ok := c.Field(id)
	if !ok {
		return Position{}, false
	}
	return f.Position, true
}

// CancelDrag puts the dragged field back where the drag began.
func (c *Composer) CancelDrag() {
	if c.drag == nil {
		return
	}
	if i := c.template.FieldIndex(c.drag.fieldID); i >= 0 {
		c.template.Fields[i].Position = c.drag.origin
	}
	c.drag = nil
}

func (c *Composer) Dragging() (string, bool) {
	if c.drag == nil {
		return "", false
	}
	return c.drag.fieldID, true
}

// Bounds returns the box a field occupies on the canvas as left, top, right, bottom.
// Text kinds use the measured width of their content, not the nominal size.
func (c *Composer) Bounds(f TemplateField) (left, top, right, bottom float64) {
	if !f.Kind.IsText() {
		return f.Position.X, f.Position.Y, f.Position.X + f.Size.Width, f.Position.Y + f.Size.Height
	}
	style := f.ResolvedStyle()
	width := c.measurer.MeasureText(f.Content, style)
	left = AlignedLeft(f.Position.X, width, style.TextAlign)
	return left, f.Position.Y - style.FontSize, left + width, f.Position.Y
}

// HitTest returns the topmost field under p.
func (c *Composer) HitTest(p Position) (string, bool) {
	for i := len(c.template.Fields) - 1; i >= 0; i-- {
		f := c.template.Fields[i]
		left, top, right, bottom := c.Bounds(f)
		if f.Kind.IsText() {
			left, top, right, bottom = left-HitPadding, top-HitPadding, right+HitPadding, bottom+HitPadding
		}
		if p.X >= left && p.X <= right && p.Y >= top && p.Y <= bottom {
			return f.ID, true
		}
	}
	return "", false
}

// Serialize snapshots the template. A field being dragged is reported at its committed position.
func (c *Composer) Serialize() CertificateTemplate {
	out := c.template.Clone()
	if c.drag != nil {
		if i := out.FieldIndex(c.drag.fieldID); i >= 0 {
			out.Fields[i].Position = c.drag.origin
		}
	}
	return out
}
