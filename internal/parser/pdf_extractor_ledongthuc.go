package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog"

	"jobai-go/internal/logger"
)

// PDF engine names accepted by pdf.engine.
const (
	EngineEino       = "eino"
	EngineLedongthuc = "ledongthuc"
)

// MetaPageCount is the metadata key both engines use for the number of pages read.
const MetaPageCount = "page_count"

// LedongthucPDFTextExtractor reads plain text page by page with github.com/ledongthuc/pdf.
// It has no parser state and is safe for concurrent use.
type LedongthucPDFTextExtractor struct {
	logger zerolog.Logger
}

// NewLedongthucPDFTextExtractor creates the lightweight extractor.
func NewLedongthucPDFTextExtractor() *LedongthucPDFTextExtractor {
	return &LedongthucPDFTextExtractor{
		logger: logger.Logger.With().Str("component", "pdf_ledongthuc").Logger(),
	}
}

// ExtractFromFile reads a PDF from disk.
func (l *LedongthucPDFTextExtractor) ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", nil, fmt.Errorf("failed to open PDF file %s: %w", filePath, err)
	}
	return l.ExtractTextFromBytes(ctx, data, filePath, map[string]interface{}{
		"source_file_path": filePath,
		"extraction_time":  time.Now().Format(time.RFC3339),
	})
}

// ExtractTextFromReader buffers the stream, the library needs an io.ReaderAt.
func (l *LedongthucPDFTextExtractor) ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string, options interface{}) (string, map[string]interface{}, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read PDF data for URI %s: %w", uri, err)
	}
	return l.ExtractTextFromBytes(ctx, data, uri, options)
}

// ExtractTextFromBytes extracts the text of every non-null page, one page per block.
func (l *LedongthucPDFTextExtractor) ExtractTextFromBytes(ctx context.Context, data []byte, uri string, options interface{}) (string, map[string]interface{}, error) {
	meta := metaFromOptions(options)
	startTime := time.Now()

	pdfReader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", meta, fmt.Errorf("failed to create PDF reader for URI %s: %w", uri, err)
	}

	numPages := pdfReader.NumPage()
	var sb strings.Builder
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", meta, err
		}
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			l.logger.Warn().Err(err).Str("uri", uri).Int("page", i).Msg("skipping unreadable page")
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	fullContent := sb.String()
	duration := time.Since(startTime)
	meta["processing_duration_ms"] = duration.Milliseconds()
	meta[MetaPageCount] = numPages
	meta["text_length"] = len(fullContent)
	meta["engine"] = EngineLedongthuc

	if strings.TrimSpace(fullContent) == "" {
		return "", meta, fmt.Errorf("URI %s: %w", uri, ErrEmptyDocument)
	}

	l.logger.Info().Str("uri", uri).Int("pages", numPages).Int("chars", len(fullContent)).Dur("duration", duration).Msg("PDF text extracted")
	return fullContent, meta, nil
}
