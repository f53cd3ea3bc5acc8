package eventcert

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"time"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"github.com/tdewolff/canvas/renderers/rasterizer"
)

/*
 * tdewolff/canvas puts the origin at the bottom-left corner. Templates are authored from the
 * top-left corner like the browser canvas, so every y coordinate is flipped at the drawing step.
 */

var borderColor = color.RGBA{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff}

type RenderOptions struct {
	// Empty means the configured default
	Format OutputFormat
	// Raster scale for png output only, 0 means the configured default
	PixelRatio float64
}

type RenderInput struct {
	Template    *CertificateTemplate
	Participant Participant
	Event       Event
	// Number already assigned to the (participant, event) pair, a new one is minted when empty
	CertificateNumber string
	// Zero means now
	IssuedAt time.Time
	// Background bytes, required when Template.Background is set
	Background []byte
	// Image and signature field contents are keys of Assets
	Assets map[string][]byte
}

// RenderedField is where and how one field ended up on the document.
type RenderedField struct {
	ID       string        `json:"id"`
	Kind     FieldKind     `json:"kind"`
	Text     string        `json:"text"`
	Position Position      `json:"position"`
	Size     Size          `json:"size"`
	Style    ResolvedStyle `json:"style"`
}

type Document struct {
	Format            OutputFormat    `json:"format"`
	ContentType       string          `json:"contentType"`
	Data              []byte          `json:"-"`
	Fields            []RenderedField `json:"fields"`
	CertificateNumber string          `json:"certificateNumber"`
	IssuedAt          time.Time       `json:"issuedAt"`
}

type RendererOption func(*Renderer)

func WithNumberGenerator(g NumberGenerator) RendererOption {
	return func(r *Renderer) {
		r.numbers = g
	}
}

func WithClock(now func() time.Time) RendererOption {
	return func(r *Renderer) {
		r.now = now
	}
}

// Renderer produces certificate documents. It is safe for concurrent use and never mutates its inputs.
type Renderer struct {
	cfg     Config
	fonts   *FontLoader
	numbers NumberGenerator
	now     func() time.Time
}

func NewRenderer(cfg Config, fonts *FontLoader, opts ...RendererOption) *Renderer {
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = OutputPDF
	}
	if cfg.PixelRatio <= 0 {
		cfg.PixelRatio = 1
	}
	r := &Renderer{
		cfg:     cfg,
		fonts:   fonts,
		numbers: NewNumberGenerator(cfg.NumberPrefix),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Renderer) Config() Config {
	return r.cfg
}

// Layout substitutes tokens and resolves styles without drawing anything.
func (r *Renderer) Layout(tpl *CertificateTemplate, values TokenValues) []RenderedField {
	out := make([]RenderedField, 0, len(tpl.Fields))
	for _, f := range tpl.Fields {
		rf := RenderedField{
			ID:       f.ID,
			Kind:     f.Kind,
			Text:     f.Content,
			Position: f.Position,
			Size:     f.Size,
			Style:    f.ResolvedStyle(),
		}
		if f.Kind.IsText() {
			rf.Text = Substitute(f.Content, values)
		}
		out = append(out, rf)
	}
	return out
}

func (r *Renderer) Render(ctx context.Context, in RenderInput, opts RenderOptions) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if in.Template == nil {
		return nil, ErrTemplateNotFound
	}
	if err := in.Template.Validate(); err != nil {
		return nil, err
	}

	format := opts.Format
	if format == "" {
		format = r.cfg.OutputFormat
	}
	if !format.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	ratio := opts.PixelRatio
	if ratio <= 0 {
		ratio = r.cfg.PixelRatio
	}

	tpl := in.Template
	bg := tpl.Background
	if bg != nil && len(in.Background) == 0 {
		return nil, fmt.Errorf("background %s %w", bg.Ref, ErrNotFound)
	}
	if bg.IsPDF() && format != OutputPDF {
		return nil, fmt.Errorf("%w: a pdf background can only be rendered to pdf", ErrUnsupportedFormat)
	}

	issuedAt := in.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = r.now()
	}
	number := in.CertificateNumber
	if number == "" {
		var err error
		if number, err = r.numbers(issuedAt); err != nil {
			return nil, err
		}
	}

	fields := r.Layout(tpl, TokenValuesFor(in.Participant, in.Event, number, issuedAt, r.cfg.Locale))
	size := tpl.Canvas()

	c := canvas.New(pxToMM(size.Width), pxToMM(size.Height))
	canvasCtx := canvas.NewContext(c)

	switch {
	case bg == nil:
		drawPlainBackground(canvasCtx, size)
	case !bg.IsPDF():
		img, err := decodeImage(in.Background)
		if err != nil {
			return nil, fmt.Errorf("unreadable background: %w", err)
		}
		drawImageBox(canvasCtx, size, fitBox(img, size.Width, size.Height), Position{}, size)
	}

	for _, f := range fields {
		if err := r.drawField(canvasCtx, size, f, in.Assets); err != nil {
			return nil, fmt.Errorf("failed to draw field %s: %w", f.ID, err)
		}
	}

	if r.cfg.EmbedQRCode && r.cfg.QrURLPattern != "" {
		qr, err := GenerateQRCode(fmt.Sprintf(r.cfg.QrURLPattern, number), QRCodeSize*imageDensity)
		if err != nil {
			return nil, err
		}
		at := Position{X: size.Width - qrCodeMargin - QRCodeSize, Y: size.Height - qrCodeMargin - QRCodeSize}
		drawImageBox(canvasCtx, size, qr, at, Size{Width: QRCodeSize, Height: QRCodeSize})
	}

	data, err := r.flatten(c, format, ratio)
	if err != nil {
		return nil, err
	}

	if bg.IsPDF() {
		if data, err = StampPDF(r.cfg.TmpDir, in.Background, data); err != nil {
			return nil, err
		}
	}
	if format == OutputPDF {
		data = PinPDFMetadata(data, issuedAt)
	}

	return &Document{
		Format:            format,
		ContentType:       format.ContentType(),
		Data:              data,
		Fields:            fields,
		CertificateNumber: number,
		IssuedAt:          issuedAt,
	}, nil
}

func (r *Renderer) flatten(c *canvas.Canvas, format OutputFormat, ratio float64) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case OutputPNG:
		img := rasterizer.Draw(c, canvas.DPI(DPI*ratio), canvas.DefaultColorSpace)
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("failed to encode png: %w", err)
		}
	default:
		p := pdf.New(&buf, c.W, c.H, nil)
		c.RenderTo(p)
		if err := p.Close(); err != nil {
			return nil, fmt.Errorf("failed to write pdf: %w", err)
		}
	}

	return buf.Bytes(), nil
}

func (r *Renderer) drawField(ctx *canvas.Context, size Size, f RenderedField, assets map[string][]byte) error {
	if f.Kind.IsText() {
		if f.Text == "" {
			return nil
		}
		face, err := r.fonts.Face(f.Style)
		if err != nil {
			return err
		}
		text := canvas.NewTextLine(face, f.Text, canvasAlign(f.Style.TextAlign))
		// NewTextLine puts the baseline on the given point, aligned horizontally around it
		ctx.DrawText(pxToMM(f.Position.X), pxToMM(size.Height-f.Position.Y), text)
		return nil
	}

	if f.Text == "" {
		return nil
	}
	data, ok := assets[f.Text]
	if !ok {
		return fmt.Errorf("asset %s %w", f.Text, ErrNotFound)
	}
	img, err := decodeImage(data)
	if err != nil {
		return err
	}
	drawImageBox(ctx, size, fitBox(img, f.Size.Width, f.Size.Height), f.Position, f.Size)
	return nil
}

func canvasAlign(align TextAlign) canvas.TextAlign {
	switch align {
	case TextAlignCenter:
		return canvas.Center
	case TextAlignRight:
		return canvas.Right
	default:
		return canvas.Left
	}
}

// drawImageBox draws img stretched over the box whose top-left corner is at.
func drawImageBox(ctx *canvas.Context, canvasSize Size, img image.Image, at Position, box Size) {
	dpmm := float64(img.Bounds().Dx()) / pxToMM(box.Width)
	ctx.DrawImage(pxToMM(at.X), pxToMM(canvasSize.Height-at.Y-box.Height), img, canvas.DPMM(dpmm))
}

func drawPlainBackground(ctx *canvas.Context, size Size) {
	w, h := pxToMM(size.Width), pxToMM(size.Height)

	ctx.SetFillColor(canvas.White)
	ctx.SetStrokeColor(canvas.Transparent)
	ctx.DrawPath(0, 0, canvas.Rectangle(w, h))

	inset := pxToMM(8)
	ctx.SetFillColor(canvas.Transparent)
	ctx.SetStrokeColor(borderColor)
	ctx.SetStrokeWidth(pxToMM(2))
	ctx.DrawPath(inset, inset, canvas.Rectangle(w-2*inset, h-2*inset))
}
