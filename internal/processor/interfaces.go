package processor

import (
	"context"
	"io"

	"jobai-go/internal/storage"
	"jobai-go/internal/storage/models"
	"jobai-go/internal/types"
)

//
// PDF
//

// PDFExtractor turns a PDF into plain text plus engine metadata.
type PDFExtractor interface {
	// ExtractFromFile reads a PDF from disk.
	ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error)

	// ExtractTextFromReader reads a PDF from reader. uri is only used for logs and
	// metadata; options, when a map, is copied into the returned metadata.
	ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string, options interface{}) (string, map[string]interface{}, error)

	// ExtractTextFromBytes is ExtractTextFromReader over an in-memory PDF.
	ExtractTextFromBytes(ctx context.Context, data []byte, uri string, options interface{}) (string, map[string]interface{}, error)
}

//
// Persistence sinks, each optional
//

// ResultCache caches combined responses by file MD5.
type ResultCache interface {
	// GetCachedResult returns (nil, nil) on a miss.
	GetCachedResult(ctx context.Context, fileMD5 string) (*types.ExtractionResponse, error)
	CacheResult(ctx context.Context, fileMD5 string, resp *types.ExtractionResponse) error
	MarkProcessed(ctx context.Context, fileMD5, submissionUUID string) (bool, error)
	// SubmissionForMD5 returns the submission that first produced fileMD5, or "".
	SubmissionForMD5(ctx context.Context, fileMD5 string) (string, error)
}

// FileStore keeps original PDFs and result JSON.
type FileStore interface {
	UploadResumeFile(ctx context.Context, submissionUUID, fileExt string, data []byte) (string, error)
	UploadResultJSON(ctx context.Context, submissionUUID string, data []byte) (string, error)
	DownloadFile(ctx context.Context, objectKey string) ([]byte, error)
}

// RecordStore writes the extraction audit row.
type RecordStore interface {
	SaveExtractionRecord(ctx context.Context, rec *models.ExtractionRecord) error
}

// EventPublisher announces finished extractions.
type EventPublisher interface {
	PublishExtracted(ctx context.Context, event storage.ExtractionEvent) error
}

// ResultSink writes a local copy of each result.
type ResultSink interface {
	Save(ctx context.Context, submissionID, originalFilename string, resp *types.ExtractionResponse) (string, error)
}

var (
	_ ResultCache    = (*storage.Redis)(nil)
	_ FileStore      = (*storage.MinIO)(nil)
	_ RecordStore    = (*storage.MySQL)(nil)
	_ EventPublisher = (*storage.RabbitMQ)(nil)
	_ ResultSink     = (*storage.JSONSink)(nil)
)
