package main

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/SeakMengs/EventHub/internal/config"
	"github.com/SeakMengs/EventHub/pkg/eventcert"
	"go.uber.org/zap"
)

const testTemplate = `{
	"name": "Workshop",
	"canvasSize": {"width": 400, "height": 300},
	"fields": [
		{"id": "name", "kind": "text", "content": "{{PARTICIPANT_NAME}}", "position": {"x": 200, "y": 150}},
		{"id": "number", "kind": "text", "content": "{{CERTIFICATE_NUMBER}}", "position": {"x": 20, "y": 280}}
	]
}`

func writeFixtures(t *testing.T) (options, config.CertificateConfig) {
	t.Helper()
	dir := t.TempDir()

	tplPath := filepath.Join(dir, "template.json")
	if err := os.WriteFile(tplPath, []byte(testTemplate), 0644); err != nil {
		t.Fatal(err)
	}
	csvPath := filepath.Join(dir, "participants.csv")
	csv := "name,email\nJane Doe,jane@example.com\n,skipped@example.com\nJohn Roe,john@example.com\n"
	if err := os.WriteFile(csvPath, []byte(csv), 0644); err != nil {
		t.Fatal(err)
	}

	opts := options{
		TemplatePath:     tplPath,
		ParticipantsPath: csvPath,
		OutputDir:        filepath.Join(dir, "out"),
		Format:           string(eventcert.OutputPDF),
		Event:            eventcert.Event{Title: "Go Workshop", Date: time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)},
	}
	cfg := config.CertificateConfig{FONT_METADATA_PATH: filepath.Join(dir, "missing.json")}
	return opts, cfg
}

func TestRunWritesFiles(t *testing.T) {
	opts, cfg := writeFixtures(t)

	s, err := run(context.Background(), cfg, opts, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Rendered != 2 || s.Failed != 0 || len(s.Files) != 2 {
		t.Fatalf("expected 2 rendered files, got %+v", s)
	}

	for _, f := range s.Files {
		base := filepath.Base(f)
		if !strings.HasPrefix(base, "Jane_Doe_") && !strings.HasPrefix(base, "John_Roe_") {
			t.Errorf("unexpected file name %s", base)
		}
		data, err := os.ReadFile(f)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.HasPrefix(string(data), "%PDF") {
			t.Errorf("expected a pdf in %s", base)
		}
	}
}

func TestRunZip(t *testing.T) {
	opts, cfg := writeFixtures(t)
	opts.Zip = true

	s, err := run(context.Background(), cfg, opts, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Files) != 1 {
		t.Fatalf("expected a single archive, got %v", s.Files)
	}

	zr, err := zip.OpenReader(s.Files[0])
	if err != nil {
		t.Fatalf("invalid zip: %v", err)
	}
	defer zr.Close()
	if len(zr.File) != 2 {
		t.Errorf("expected 2 entries, got %d", len(zr.File))
	}
}

func TestRunRejects(t *testing.T) {
	tests := []struct {
		name   string
		modify func(t *testing.T, opts *options)
	}{
		{
			name: "Missing template",
			modify: func(t *testing.T, opts *options) {
				opts.TemplatePath = filepath.Join(t.TempDir(), "nope.json")
			},
		},
		{
			name: "Broken template",
			modify: func(t *testing.T, opts *options) {
				if err := os.WriteFile(opts.TemplatePath, []byte("{"), 0644); err != nil {
					t.Fatal(err)
				}
			},
		},
		{
			name: "Background that is not an image",
			modify: func(t *testing.T, opts *options) {
				opts.BackgroundPath = opts.ParticipantsPath
			},
		},
		{
			name: "Missing asset",
			modify: func(t *testing.T, opts *options) {
				tpl := `{"name":"x","fields":[{"id":"logo","kind":"image","content":"logo.png"}]}`
				if err := os.WriteFile(opts.TemplatePath, []byte(tpl), 0644); err != nil {
					t.Fatal(err)
				}
				opts.AssetsDir = t.TempDir()
			},
		},
		{
			name: "No participants",
			modify: func(t *testing.T, opts *options) {
				if err := os.WriteFile(opts.ParticipantsPath, []byte("name,email\n"), 0644); err != nil {
					t.Fatal(err)
				}
			},
		},
		{
			name: "Unknown format",
			modify: func(t *testing.T, opts *options) {
				opts.Format = "gif"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, cfg := writeFixtures(t)
			tt.modify(t, &opts)
			s, err := run(context.Background(), cfg, opts, zap.NewNop().Sugar())
			if err == nil && s.Failed == 0 {
				t.Errorf("expected a failure, got %+v", s)
			}
		})
	}
}

func TestDocumentFilename(t *testing.T) {
	doc := &eventcert.Document{Format: eventcert.OutputPNG, CertificateNumber: "CERT-2026-AAAAAAAAAA"}

	if got := documentFilename(eventcert.Participant{ID: "p1", Name: "Jane O'Neil / QA"}, doc); got != "Jane_O_Neil_QA_CERT-2026-AAAAAAAAAA.png" {
		t.Errorf("unexpected filename %s", got)
	}
	if got := documentFilename(eventcert.Participant{ID: "p1", Name: "!!!"}, doc); got != "p1_CERT-2026-AAAAAAAAAA.png" {
		t.Errorf("unexpected filename %s", got)
	}
}
