package controller

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"

	"github.com/SeakMengs/EventHub/internal/util"
	"github.com/SeakMengs/EventHub/pkg/eventcert"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func TestMain(m *testing.M) {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := util.RegisterCustomValidations(v); err != nil {
			panic(err)
		}
	}
	os.Exit(m.Run())
}

func event(t *testing.T, eventType EventType, data any) TemplateChangeEvent {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("failed to marshal event data: %v", err)
	}
	return TemplateChangeEvent{Type: eventType, Data: raw}
}

func pngUpload(t *testing.T) *eventcert.Upload {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := range 4 {
		for y := range 4 {
			img.Set(x, y, color.RGBA{R: uint8(x * 60), G: uint8(y * 60), B: 0x80, A: 0xff})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return &eventcert.Upload{Filename: "bg.png", ContentType: "image/png", Data: buf.Bytes()}
}

func newSession(upload *eventcert.Upload) *builderSession {
	return &builderSession{
		composer: eventcert.NewComposer(eventcert.NewTemplate("Workshop"), eventcert.ApproxMeasurer{}),
		upload:   upload,
	}
}

func TestBuilderSessionReplay(t *testing.T) {
	s := newSession(pngUpload(t))

	events := []TemplateChangeEvent{
		event(t, EventFieldAdd, map[string]any{"id": "name", "preset": "participant_name"}),
		event(t, EventFieldAdd, map[string]any{"id": "date", "kind": "date", "position": map[string]any{"x": 300, "y": 400}}),
		event(t, EventFieldUpdate, map[string]any{"id": "name", "content": "Awarded to {{PARTICIPANT_NAME}}", "style": map[string]any{"color": "#112233", "textAlign": "center"}}),
		event(t, EventFieldMove, map[string]any{
			"id":   "name",
			"from": map[string]any{"x": 110, "y": 90},
			"path": []map[string]any{{"x": 150, "y": 120}},
			"to":   map[string]any{"x": 210, "y": 140},
		}),
		event(t, EventFieldRemove, map[string]any{"id": "date"}),
		event(t, EventBackgroundUpdate, map[string]any{}),
		event(t, EventSettingsUpdate, map[string]any{"name": "Workshop 2026", "canvasSize": map[string]any{"width": 1000, "height": 700}}),
	}

	if err := s.apply(events); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tpl := s.composer.Serialize()
	if tpl.Name != "Workshop 2026" || tpl.CanvasSize != (eventcert.Size{Width: 1000, Height: 700}) {
		t.Errorf("settings not applied: %+v", tpl)
	}
	if len(tpl.Fields) != 1 || tpl.Fields[0].ID != "name" {
		t.Fatalf("expected only the name field, got %+v", tpl.Fields)
	}

	name := tpl.Fields[0]
	if name.Content != "Awarded to {{PARTICIPANT_NAME}}" {
		t.Errorf("unexpected content %q", name.Content)
	}
	if name.Style.Color != "#112233" || name.Style.TextAlign != eventcert.TextAlignCenter {
		t.Errorf("unexpected style %+v", name.Style)
	}
	// preset fields start at the default position, moved by the pointer delta (100, 50)
	expected := eventcert.DefaultPosition.Add(100, 50)
	if name.Position != expected {
		t.Errorf("expected position %+v, got %+v", expected, name.Position)
	}
	if _, dragging := s.composer.Dragging(); dragging {
		t.Errorf("expected the drag to be committed")
	}

	bg := s.composer.Background()
	if bg == nil || bg.ContentType != "image/png" || bg.Ref != "" || len(bg.Data) == 0 {
		t.Errorf("expected an unsaved png background, got %+v", bg)
	}
}

func TestBuilderSessionRejects(t *testing.T) {
	tests := []struct {
		name       string
		upload     *eventcert.Upload
		events     []TemplateChangeEvent
		validation bool
	}{
		{
			name:       "Unknown event",
			events:     []TemplateChangeEvent{{Type: "field:explode", Data: json.RawMessage(`{}`)}},
			validation: true,
		},
		{
			name:       "Add without kind",
			events:     []TemplateChangeEvent{event(t, EventFieldAdd, map[string]any{"content": "x"})},
			validation: true,
		},
		{
			name:   "Add with unknown kind",
			events: []TemplateChangeEvent{event(t, EventFieldAdd, map[string]any{"kind": "video"})},
		},
		{
			name:   "Invalid color",
			events: []TemplateChangeEvent{event(t, EventFieldAdd, map[string]any{"kind": "text", "style": map[string]any{"color": "red"}})},
		},
		{
			name:       "Update unknown field",
			events:     []TemplateChangeEvent{event(t, EventFieldUpdate, map[string]any{"id": "missing", "content": "x"})},
			validation: true,
		},
		{
			name:       "Move unknown field",
			events:     []TemplateChangeEvent{event(t, EventFieldMove, map[string]any{"id": "missing", "from": map[string]any{"x": 0, "y": 0}, "to": map[string]any{"x": 1, "y": 1}})},
			validation: true,
		},
		{
			name:   "Move without target",
			events: []TemplateChangeEvent{event(t, EventFieldAdd, map[string]any{"id": "a", "kind": "text"}), event(t, EventFieldMove, map[string]any{"id": "a", "from": map[string]any{"x": 0, "y": 0}})},
		},
		{
			name:       "Background without file",
			events:     []TemplateChangeEvent{event(t, EventBackgroundUpdate, map[string]any{})},
			validation: true,
		},
		{
			name:       "Background not an image",
			upload:     &eventcert.Upload{Filename: "bg.png", ContentType: "image/png", Data: []byte("definitely not a png")},
			events:     []TemplateChangeEvent{event(t, EventBackgroundUpdate, map[string]any{})},
			validation: true,
		},
		{
			name:   "Zero canvas",
			events: []TemplateChangeEvent{event(t, EventSettingsUpdate, map[string]any{"canvasSize": map[string]any{"width": 0, "height": 100}})},
		},
		{
			name:       "Malformed payload",
			events:     []TemplateChangeEvent{{Type: EventFieldRemove, Data: json.RawMessage(`"nope"`)}},
			validation: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSession(tt.upload)
			err := s.apply(tt.events)
			if err == nil {
				t.Fatalf("expected an error")
			}
			if tt.validation && !eventcert.IsValidationError(err) {
				t.Errorf("expected a validation error, got %v", err)
			}
			if !tt.validation && !errors.As(err, new(validator.ValidationErrors)) {
				t.Errorf("expected validator errors, got %v", err)
			}
			if got := util.StatusCodeFromError(err); got != 400 {
				t.Errorf("expected status 400, got %d", got)
			}
		})
	}
}
