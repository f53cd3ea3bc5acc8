package eventcert

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
)

// Get font weight of canvas type
func canvasFontStyle(weight FontWeight) canvas.FontStyle {
	switch weight {
	case FontWeightBold:
		return canvas.FontBold
	case FontWeightLighter:
		return canvas.FontLight
	default:
		return canvas.FontRegular
	}
}

func weightFromSubfamily(subfamily string) FontWeight {
	s := strings.ToLower(subfamily)
	switch {
	case strings.Contains(s, "bold"), strings.Contains(s, "black"), strings.Contains(s, "heavy"):
		return FontWeightBold
	case strings.Contains(s, "light"), strings.Contains(s, "thin"):
		return FontWeightLighter
	default:
		return FontWeightNormal
	}
}

type FontMetadata struct {
	Name   string     `json:"name"`
	Weight FontWeight `json:"weight,omitempty"`
	Path   string     `json:"path"`
}

func getFontMetadataByPath(fontPath string) (*FontMetadata, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	font, err := sfnt.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	name, err := font.Name(nil, sfnt.NameIDFamily)
	if err != nil {
		return nil, fmt.Errorf("retrieving font name: %w", err)
	}

	// Subfamily is optional, "Regular" is assumed when missing
	subfamily, _ := font.Name(nil, sfnt.NameIDSubfamily)

	return &FontMetadata{
		Name:   name,
		Weight: weightFromSubfamily(subfamily),
		Path:   fontPath,
	}, nil
}

// Scan through the directory to process .ttf and .otf files.
func ScanFontDir(dir string) ([]FontMetadata, error) {
	var fonts []FontMetadata

	err := filepath.Walk(dir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(info.Name()))
		if ext != ".ttf" && ext != ".otf" {
			return nil
		}

		meta, err := getFontMetadataByPath(path)
		if err != nil {
			log.Printf("Skipping %q: %v", path, err)
			return nil
		}

		fonts = append(fonts, *meta)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return fonts, nil
}

// List the available font family and its path. A missing metadata file is not an error,
// the loader then only serves the embedded fallback fonts.
func GetAvailableFonts(path string) ([]*FontMetadata, error) {
	var fonts []*FontMetadata

	if path == "" {
		path = "font_metadata.json"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fonts, nil
		}
		return fonts, fmt.Errorf("error reading %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &fonts); err != nil {
		return fonts, fmt.Errorf("error unmarshalling font metadata: %w", err)
	}

	for _, f := range fonts {
		if f.Weight == "" {
			f.Weight = FontWeightNormal
		}
	}

	return fonts, nil
}

// FontLoader resolves a family name and weight to a loaded canvas font family.
// It is safe for concurrent use.
type FontLoader struct {
	AvailableFonts []*FontMetadata

	mu       sync.Mutex
	families map[string]*canvas.FontFamily
}

func NewFontLoader(cfg Config) (*FontLoader, error) {
	fonts, err := GetAvailableFonts(cfg.FontMetadataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load font metadata: %w", err)
	}

	return &FontLoader{
		AvailableFonts: fonts,
		families:       make(map[string]*canvas.FontFamily),
	}, nil
}

// Exact weight first, then any face of the family.
func (fl *FontLoader) GetAvailableFontMetadataByName(fontName string, weight FontWeight) (*FontMetadata, error) {
	var sameFamily *FontMetadata
	for _, font := range fl.AvailableFonts {
		if !strings.EqualFold(font.Name, fontName) {
			continue
		}
		if font.Weight == weight {
			return font, nil
		}
		if sameFamily == nil {
			sameFamily = font
		}
	}
	if sameFamily != nil {
		return sameFamily, nil
	}
	return nil, fmt.Errorf("font %s %w", fontName, ErrNotFound)
}

// LoadFont returns a family holding exactly the style derived from weight. Unknown families
// resolve to the embedded Go fonts.
func (fl *FontLoader) LoadFont(fontName string, weight FontWeight) (*canvas.FontFamily, canvas.FontStyle, error) {
	style := canvasFontStyle(weight)
	key := strings.ToLower(fontName) + "/" + string(weight)

	fl.mu.Lock()
	defer fl.mu.Unlock()

	if family, ok := fl.families[key]; ok {
		return family, style, nil
	}

	family := canvas.NewFontFamily(fontName)

	fontMetadata, err := fl.GetAvailableFontMetadataByName(fontName, weight)
	if err == nil {
		if err := family.LoadFontFile(fontMetadata.Path, style); err != nil {
			return nil, style, fmt.Errorf("failed to load font file %s: %w", fontMetadata.Path, err)
		}
	} else {
		fallback := goregular.TTF
		if weight == FontWeightBold {
			fallback = gobold.TTF
		}
		if err := family.LoadFont(fallback, 0, style); err != nil {
			return nil, style, fmt.Errorf("failed to load fallback font: %w", err)
		}
	}

	fl.families[key] = family
	return family, style, nil
}

// Face builds the font face for a resolved style, size in px (1px = 1pt at 72 DPI).
func (fl *FontLoader) Face(style ResolvedStyle) (*canvas.FontFace, error) {
	family, fontStyle, err := fl.LoadFont(style.FontFamily, style.FontWeight)
	if err != nil {
		return nil, err
	}
	return family.Face(style.FontSize, canvas.Hex(style.Color), fontStyle, canvas.FontNormal), nil
}
