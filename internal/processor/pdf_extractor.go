package processor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jobai-go/internal/config"
	"jobai-go/internal/logger"
	"jobai-go/internal/parser"
)

// BuildPDFExtractor returns the engine named by pdf.engine. Eino is the default.
func BuildPDFExtractor(ctx context.Context, cfg *config.Config) (PDFExtractor, error) {
	engine := strings.ToLower(strings.TrimSpace(cfg.PDF.Engine))

	switch engine {
	case parser.EngineLedongthuc:
		logger.Info().Str("engine", engine).Msg("using lightweight PDF text extractor")
		return parser.NewLedongthucPDFTextExtractor(), nil
	case "", parser.EngineEino:
		logger.Info().Str("engine", parser.EngineEino).Msg("using Eino PDF text extractor")
		opts := []parser.EinoPDFOption{
			parser.WithEinoLogger(logger.Logger.With().Str("component", "pdf_eino").Logger()),
		}
		if cfg.PDF.TimeoutSeconds > 0 {
			opts = append(opts, parser.WithEinoTimeout(time.Duration(cfg.PDF.TimeoutSeconds)*time.Second))
		}
		return parser.NewEinoPDFTextExtractor(ctx, opts...)
	default:
		return nil, fmt.Errorf("unknown pdf engine %q (want %s or %s)", cfg.PDF.Engine, parser.EngineEino, parser.EngineLedongthuc)
	}
}
