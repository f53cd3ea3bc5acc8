// Command render produces certificates offline from a template file and a participants CSV.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	appcontext "github.com/SeakMengs/EventHub/internal/app_context"
	"github.com/SeakMengs/EventHub/internal/config"
	"github.com/SeakMengs/EventHub/internal/env"
	"github.com/SeakMengs/EventHub/internal/util"
	"github.com/SeakMengs/EventHub/pkg/eventcert"
	"go.uber.org/zap"
)

func init() {
	env.LoadEnv()
}

type options struct {
	TemplatePath     string
	ParticipantsPath string
	BackgroundPath   string
	AssetsDir        string
	OutputDir        string
	Format           string
	Zip              bool
	Event            eventcert.Event
}

type summary struct {
	Rendered int
	Failed   int
	Files    []string
}

func main() {
	var (
		opts      options
		eventDate string
	)
	flag.StringVar(&opts.TemplatePath, "template", "", "template json file (required)")
	flag.StringVar(&opts.ParticipantsPath, "participants", "", "csv with name, email and registration_number columns (required)")
	flag.StringVar(&opts.BackgroundPath, "background", "", "background image or pdf, overrides the template background")
	flag.StringVar(&opts.AssetsDir, "assets", ".", "directory that image and signature field contents are relative to")
	flag.StringVar(&opts.OutputDir, "out", "certificates", "output directory")
	flag.StringVar(&opts.Format, "format", "", "pdf or png, defaults to CERT_OUTPUT_FORMAT")
	flag.BoolVar(&opts.Zip, "zip", false, "write a single certificates.zip instead of loose files")
	flag.StringVar(&opts.Event.Title, "event", "", "event title")
	flag.StringVar(&eventDate, "date", "", "event date as YYYY-MM-DD, defaults to today")
	flag.StringVar(&opts.Event.Location, "location", "", "event location")
	flag.Parse()

	cfg := config.GetConfig()
	logger := util.NewLogger(cfg.ENV)
	defer logger.Sync()

	if opts.TemplatePath == "" || opts.ParticipantsPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	opts.Event.Date = time.Now()
	if eventDate != "" {
		d, err := time.Parse(time.DateOnly, eventDate)
		if err != nil {
			logger.Fatalf("Invalid -date %q: %v", eventDate, err)
		}
		opts.Event.Date = d
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s, err := run(ctx, cfg.Certificate, opts, logger)
	if err != nil {
		logger.Fatal(err)
	}

	logger.Infof("Rendered %d certificates into %s, %d failed", s.Rendered, opts.OutputDir, s.Failed)
	if s.Failed > 0 {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.CertificateConfig, opts options, logger *zap.SugaredLogger) (summary, error) {
	var s summary

	renderer, _, err := appcontext.NewRenderer(cfg, logger)
	if err != nil {
		return s, err
	}

	tpl, err := loadTemplate(opts.TemplatePath)
	if err != nil {
		return s, err
	}

	var background []byte
	if opts.BackgroundPath != "" {
		background, err = os.ReadFile(opts.BackgroundPath)
		if err != nil {
			return s, fmt.Errorf("failed to read background: %w", err)
		}
		up := eventcert.Upload{Filename: filepath.Base(opts.BackgroundPath), Data: background}
		if err := eventcert.ValidateTemplateUpload(up); err != nil {
			return s, err
		}
		tpl.Background = &eventcert.Background{Ref: up.Filename, ContentType: eventcert.DetectContentType(up), Filename: up.Filename}
	} else if tpl.Background != nil {
		return s, fmt.Errorf("template references background %q, pass it with -background", tpl.Background.Ref)
	}

	if err := tpl.Validate(); err != nil {
		return s, err
	}

	assets, err := loadAssets(tpl, opts.AssetsDir)
	if err != nil {
		return s, err
	}

	records, err := eventcert.ReadCSV(opts.ParticipantsPath)
	if err != nil {
		return s, err
	}
	rows, err := eventcert.ParseCSVToMap(records)
	if err != nil {
		return s, err
	}
	participants := eventcert.ParticipantsFromCSV(rows, time.Now())
	if len(participants) == 0 {
		return s, fmt.Errorf("no participants with a name in %s", opts.ParticipantsPath)
	}

	inputs := make([]eventcert.RenderInput, len(participants))
	for i, p := range participants {
		inputs[i] = eventcert.RenderInput{
			Template:    tpl,
			Participant: p,
			Event:       opts.Event,
			Background:  background,
			Assets:      assets,
		}
	}

	results := renderer.RenderAll(ctx, inputs, eventcert.RenderOptions{Format: eventcert.OutputFormat(opts.Format)})

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return s, err
	}

	entries := make([]eventcert.ZipEntry, 0, len(results))
	for _, res := range results {
		p := participants[res.Index]
		if !res.OK() {
			s.Failed++
			logger.Errorf("Failed to render certificate of %s: %s", p.Name, util.GenerateErrorMessagesAsString(res.Err, nil))
			continue
		}
		s.Rendered++
		entries = append(entries, eventcert.ZipEntry{
			Name:     documentFilename(p, res.Document),
			Data:     res.Document.Data,
			Modified: res.Document.IssuedAt,
		})
	}

	if opts.Zip {
		name := filepath.Join(opts.OutputDir, "certificates.zip")
		f, err := os.Create(name)
		if err != nil {
			return s, err
		}
		defer f.Close()
		if err := eventcert.WriteZip(f, entries); err != nil {
			return s, err
		}
		s.Files = append(s.Files, name)
		return s, f.Close()
	}

	used := make(map[string]bool, len(entries))
	for _, e := range entries {
		name := eventcert.UniqueName(used, e.Name)
		path := filepath.Join(opts.OutputDir, name)
		if err := os.WriteFile(path, e.Data, 0644); err != nil {
			return s, err
		}
		s.Files = append(s.Files, path)
	}

	return s, nil
}

func loadTemplate(path string) (*eventcert.CertificateTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template: %w", err)
	}

	tpl := eventcert.NewTemplate("")
	if err := json.Unmarshal(data, &tpl); err != nil {
		return nil, &eventcert.ValidationError{Field: "template", Message: err.Error()}
	}
	return &tpl, nil
}

// loadAssets reads the file behind every non text field.
func loadAssets(tpl *eventcert.CertificateTemplate, dir string) (map[string][]byte, error) {
	assets := make(map[string][]byte)
	for _, f := range tpl.Fields {
		if f.Kind.IsText() || f.Content == "" {
			continue
		}
		if _, ok := assets[f.Content]; ok {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, f.Content))
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.ID, err)
		}
		assets[f.Content] = data
	}
	return assets, nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func documentFilename(p eventcert.Participant, doc *eventcert.Document) string {
	base := strings.Trim(unsafeFilenameChars.ReplaceAllString(p.Name, "_"), "_")
	if base == "" {
		base = p.ID
	}
	return base + "_" + doc.CertificateNumber + doc.Format.Extension()
}
