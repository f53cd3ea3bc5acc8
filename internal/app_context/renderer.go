package appcontext

import (
	"fmt"
	"path/filepath"

	"github.com/SeakMengs/EventHub/internal/config"
	"github.com/SeakMengs/EventHub/internal/util"
	"github.com/SeakMengs/EventHub/pkg/eventcert"
	"go.uber.org/zap"
)

// NewRenderer builds the certificate renderer. The returned measurer shares its font cache.
func NewRenderer(cfg config.CertificateConfig, logger *zap.SugaredLogger) (*eventcert.Renderer, *eventcert.FontMeasurer, error) {
	rc := eventcert.NewDefaultConfig()
	if cfg.FONT_METADATA_PATH != "" {
		rc.FontMetadataPath = cfg.FONT_METADATA_PATH
	}

	if locale := eventcert.Locale(cfg.LOCALE); locale.IsSupported() {
		rc.Locale = locale
	} else if cfg.LOCALE != "" {
		logger.Warnf("Unsupported certificate locale %q, falling back to %s", cfg.LOCALE, rc.Locale)
	}

	if cfg.OUTPUT_FORMAT != "" {
		format := eventcert.OutputFormat(cfg.OUTPUT_FORMAT)
		if !format.IsValid() {
			return nil, nil, fmt.Errorf("%w: %q", eventcert.ErrUnsupportedFormat, cfg.OUTPUT_FORMAT)
		}
		rc.OutputFormat = format
	}

	if cfg.PIXEL_RATIO > 0 {
		rc.PixelRatio = cfg.PIXEL_RATIO
	}
	rc.MaxWorkers = cfg.MAX_WORKERS
	rc.EmbedQRCode = cfg.EMBED_QR_CODE
	rc.QrURLPattern = cfg.VERIFY_URL_PATTERN
	if cfg.NUMBER_PREFIX != "" {
		rc.NumberPrefix = cfg.NUMBER_PREFIX
	}

	rc.TmpDir = filepath.Join(util.GetTempDir(), "render")

	fonts, err := eventcert.NewFontLoader(*rc)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load fonts: %w", err)
	}
	logger.Debugf("Loaded %d fonts from %s", len(fonts.AvailableFonts), rc.FontMetadataPath)

	return eventcert.NewRenderer(*rc, fonts), eventcert.NewFontMeasurer(fonts), nil
}
