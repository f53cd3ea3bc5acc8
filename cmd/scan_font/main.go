package main

import (
	"encoding/json"
	"flag"
	"os"

	"github.com/SeakMengs/EventHub/internal/util"
	"github.com/SeakMengs/EventHub/pkg/eventcert"
)

func main() {
	fontDir := flag.String("dir", "fonts", "directory holding .ttf and .otf files")
	outputFile := flag.String("out", "font_metadata.json", "metadata file read by the renderer")
	flag.Parse()

	logger := util.NewLogger("development")
	defer logger.Sync()

	fonts, err := eventcert.ScanFontDir(*fontDir)
	if err != nil {
		logger.Fatalf("Failed to scan font directory: %v", err)
	}

	data, err := json.MarshalIndent(fonts, "", "  ")
	if err != nil {
		logger.Fatalf("Failed to marshal JSON: %v", err)
	}

	if err := os.WriteFile(*outputFile, data, 0644); err != nil {
		logger.Fatalf("Failed to write JSON file: %v", err)
	}

	logger.Infof("Saved metadata for %d fonts to %q", len(fonts), *outputFile)
}
