package parser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoParser "github.com/cloudwego/eino/components/document/parser"
	"github.com/rs/zerolog"

	"jobai-go/internal/logger"
)

// ErrEmptyDocument is returned when a PDF yields no non-whitespace text, typically an
// image-only scan.
var ErrEmptyDocument = errors.New("document contains no extractable text")

const defaultParseTimeout = 30 * time.Second

// EinoPDFTextExtractor extracts text with the Eino PDF parser.
type EinoPDFTextExtractor struct {
	parser  *pdf.PDFParser
	logger  zerolog.Logger
	timeout time.Duration
}

// EinoPDFOption configures an EinoPDFTextExtractor.
type EinoPDFOption func(*EinoPDFTextExtractor)

// WithEinoLogger sets a custom logger.
func WithEinoLogger(l zerolog.Logger) EinoPDFOption {
	return func(e *EinoPDFTextExtractor) {
		e.logger = l
	}
}

// WithEinoTimeout bounds a single Parse call.
func WithEinoTimeout(d time.Duration) EinoPDFOption {
	return func(e *EinoPDFTextExtractor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// NewEinoPDFTextExtractor creates the extractor. The parser returns one document per
// page so the page count is known.
func NewEinoPDFTextExtractor(ctx context.Context, options ...EinoPDFOption) (*EinoPDFTextExtractor, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{
		ToPages: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Eino PDF parser: %w", err)
	}

	extractor := &EinoPDFTextExtractor{
		parser:  p,
		logger:  logger.Logger.With().Str("component", "pdf_eino").Logger(),
		timeout: defaultParseTimeout,
	}
	for _, option := range options {
		option(extractor)
	}
	return extractor, nil
}

// ExtractFromFile reads a PDF from disk.
func (e *EinoPDFTextExtractor) ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", nil, fmt.Errorf("failed to open PDF file %s: %w", filePath, err)
	}
	defer file.Close()

	if fileInfo, err := file.Stat(); err == nil {
		e.logger.Debug().Str("path", filePath).Int64("size_bytes", fileInfo.Size()).Msg("processing PDF file")
	}

	extraMeta := map[string]interface{}{
		"source_file_path": filePath,
		"extraction_time":  time.Now().Format(time.RFC3339),
	}
	return e.ExtractTextFromReader(ctx, file, filePath, extraMeta)
}

// ExtractTextFromReader parses the stream and concatenates the pages, each followed by
// a newline.
func (e *EinoPDFTextExtractor) ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string, options interface{}) (string, map[string]interface{}, error) {
	extraMeta := metaFromOptions(options)

	startTime := time.Now()
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	docs, err := e.parser.Parse(ctx, reader,
		einoParser.WithURI(uri),
		einoParser.WithExtraMeta(extraMeta),
	)
	duration := time.Since(startTime)
	if err != nil {
		e.logger.Error().Err(err).Str("uri", uri).Dur("duration", duration).Msg("eino PDF parse failed")
		return "", extraMeta, fmt.Errorf("eino PDF parser failed for URI %s: %w", uri, err)
	}
	if len(docs) == 0 {
		return "", extraMeta, fmt.Errorf("eino PDF parser returned no documents for URI %s: %w", uri, ErrEmptyDocument)
	}

	var sb strings.Builder
	for _, doc := range docs {
		sb.WriteString(doc.Content)
		sb.WriteString("\n")
	}
	fullContent := sb.String()

	finalMetadata := make(map[string]interface{})
	if docs[0].MetaData != nil {
		for k, v := range docs[0].MetaData {
			finalMetadata[k] = v
		}
	}
	for k, v := range extraMeta {
		finalMetadata[k] = v
	}
	finalMetadata["processing_duration_ms"] = duration.Milliseconds()
	finalMetadata[MetaPageCount] = len(docs)
	finalMetadata["text_length"] = len(fullContent)
	finalMetadata["engine"] = EngineEino

	if strings.TrimSpace(fullContent) == "" {
		return "", finalMetadata, fmt.Errorf("URI %s: %w", uri, ErrEmptyDocument)
	}

	e.logger.Info().Str("uri", uri).Int("pages", len(docs)).Int("chars", len(fullContent)).Dur("duration", duration).Msg("PDF text extracted")
	return fullContent, finalMetadata, nil
}

// ExtractTextFromBytes wraps data in a reader.
func (e *EinoPDFTextExtractor) ExtractTextFromBytes(ctx context.Context, data []byte, uri string, options interface{}) (string, map[string]interface{}, error) {
	return e.ExtractTextFromReader(ctx, bytes.NewReader(data), uri, options)
}

// metaFromOptions accepts either a metadata map or an arbitrary value, which is kept
// under "original_options".
func metaFromOptions(options interface{}) map[string]interface{} {
	if options == nil {
		return make(map[string]interface{})
	}
	if meta, ok := options.(map[string]interface{}); ok {
		out := make(map[string]interface{}, len(meta))
		for k, v := range meta {
			out[k] = v
		}
		return out
	}
	return map[string]interface{}{"original_options": options}
}
