package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"jobai-go/internal/config"
	"jobai-go/internal/constants"
	"jobai-go/internal/logger"
	"jobai-go/internal/metrics"
	"jobai-go/internal/processor"
	"jobai-go/internal/storage"
	"jobai-go/internal/tracing"
)

// ErrWorkerUnavailable means the queue consumer cannot start without RabbitMQ and MinIO.
var ErrWorkerUnavailable = errors.New("extraction worker needs RabbitMQ and MinIO")

const healthCheckTimeout = 2 * time.Second

// Endpoints listed by the banner.
var endpoints = []string{
	"GET /api/v1/health",
	"POST /api/v1/extract-resume",
	"POST /api/v1/extract-text",
	"POST /api/v1/submit-resume",
	"GET /api/v1/extractions/:submission_uuid",
}

// ResumeHandler serves the extraction endpoints and runs the queue consumer.
type ResumeHandler struct {
	cfg       *config.Config
	storage   *storage.Storage
	processor *processor.ResumeProcessor
}

// NewResumeHandler creates a handler. storage may be nil when no backend is configured.
func NewResumeHandler(cfg *config.Config, storage *storage.Storage, processorModule *processor.ResumeProcessor) *ResumeHandler {
	return &ResumeHandler{
		cfg:       cfg,
		storage:   storage,
		processor: processorModule,
	}
}

// ExtractionStatusResponse is the body of GET /api/v1/extractions/:submission_uuid.
type ExtractionStatusResponse struct {
	SubmissionUUID   string          `json:"submission_uuid"`
	Status           string          `json:"status"`
	OriginalFilename string          `json:"original_filename"`
	CachedFrom       string          `json:"cached_from,omitempty"`
	ErrorMessage     string          `json:"error_message,omitempty"`
	DurationMS       int64           `json:"duration_ms"`
	CreatedAt        time.Time       `json:"created_at"`
	Result           json.RawMessage `json:"result,omitempty"`
}

// TextExtractionRequest is the body of POST /api/v1/extract-text.
type TextExtractionRequest struct {
	Text string `json:"text"`
}

// HandleIndex returns the service banner.
// GET /
func (h *ResumeHandler) HandleIndex(ctx context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, utils.H{
		"service":        constants.ServiceName,
		"parser_version": constants.ParserVersion,
		"endpoints":      endpoints,
	})
}

// HandleHealth reports liveness and which backends are available. With ?deep=true each
// backend is pinged and any failure turns the response into a 503.
// GET /api/v1/health
func (h *ResumeHandler) HandleHealth(ctx context.Context, c *app.RequestContext) {
	body := utils.H{
		"status":     "ok",
		"service":    constants.ServiceName,
		"components": h.storage.Status(),
		"pdf_engine": h.cfg.PDF.Engine,
	}

	status := consts.StatusOK
	if c.Query("deep") == "true" {
		pingCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
		defer cancel()
		checks := h.storage.Check(pingCtx)
		for _, result := range checks {
			if result != "ok" && result != "disabled" {
				status = consts.StatusServiceUnavailable
				body["status"] = "degraded"
			}
		}
		body["checks"] = checks
	}
	c.JSON(status, body)
}

// HandleGetExtraction returns the audit row and stored result for a submission.
// GET /api/v1/extractions/:submission_uuid
func (h *ResumeHandler) HandleGetExtraction(ctx context.Context, c *app.RequestContext) {
	if h.storage == nil || h.storage.MySQL == nil {
		c.JSON(consts.StatusServiceUnavailable, utils.H{"error": "extraction records need MySQL"})
		return
	}

	submissionUUID := c.Param("submission_uuid")
	if _, err := uuid.Parse(submissionUUID); err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "submission_uuid must be a UUID"})
		return
	}

	rec, err := h.storage.MySQL.GetExtractionRecord(ctx, submissionUUID)
	if errors.Is(err, storage.ErrRecordNotFound) {
		c.JSON(consts.StatusNotFound, utils.H{"error": "no extraction for this submission", "submission_uuid": submissionUUID})
		return
	}
	if err != nil {
		h.writeError(ctx, c, submissionUUID, err)
		return
	}

	resp := ExtractionStatusResponse{
		SubmissionUUID:   rec.SubmissionUUID,
		Status:           rec.Status,
		OriginalFilename: rec.OriginalFilename,
		CachedFrom:       rec.CachedFrom,
		ErrorMessage:     rec.ErrorMessage,
		DurationMS:       rec.DurationMS,
		CreatedAt:        rec.CreatedAt,
	}
	if len(rec.ResultJSON) > 0 {
		resp.Result = json.RawMessage(rec.ResultJSON)
	}
	c.JSON(consts.StatusOK, resp)
}

// HandleExtractResume extracts a multipart-uploaded PDF.
// POST /api/v1/extract-resume
func (h *ResumeHandler) HandleExtractResume(ctx context.Context, c *app.RequestContext) {
	data, filename, ok := h.readUpload(ctx, c)
	if !ok {
		return
	}

	submissionUUID := uuid.NewString()
	resp, err := h.processor.ProcessPDF(ctx, processor.ExtractionRequest{
		SubmissionUUID: submissionUUID,
		Filename:       filename,
		Data:           data,
		Source:         metrics.SourcePDF,
	})
	if err != nil {
		h.writeError(ctx, c, submissionUUID, err)
		return
	}

	c.Header("X-Submission-UUID", submissionUUID)
	c.JSON(consts.StatusOK, resp)
}

// SubmitResponse is returned by the asynchronous upload endpoint.
type SubmitResponse struct {
	SubmissionUUID string `json:"submission_uuid"`
	ObjectKey      string `json:"object_key"`
	Status         string `json:"status"`
}

// HandleSubmitResume stores an uploaded PDF and queues it for the extraction worker.
// POST /api/v1/submit-resume
func (h *ResumeHandler) HandleSubmitResume(ctx context.Context, c *app.RequestContext) {
	if h.storage == nil || h.storage.MinIO == nil || h.storage.RabbitMQ == nil {
		c.JSON(consts.StatusServiceUnavailable, utils.H{"error": ErrWorkerUnavailable.Error()})
		return
	}

	data, filename, ok := h.readUpload(ctx, c)
	if !ok {
		return
	}

	submissionUUID := uuid.NewString()
	objectKey, err := h.storage.MinIO.UploadResumeFile(ctx, submissionUUID, filepath.Ext(filename), data)
	if err != nil {
		h.writeError(ctx, c, submissionUUID, processor.NewStoreError(submissionUUID, err.Error()))
		return
	}

	msg := storage.ExtractionRequestMessage{
		SubmissionUUID:   submissionUUID,
		ObjectKey:        objectKey,
		OriginalFilename: filename,
		RequestedAt:      time.Now(),
	}
	if err := h.storage.RabbitMQ.PublishExtractionRequest(ctx, msg); err != nil {
		h.writeError(ctx, c, submissionUUID, processor.NewPublishError(submissionUUID, err.Error()))
		return
	}

	logger.FromContext(ctx).Info().
		Str("submission_uuid", submissionUUID).
		Str("object_key", objectKey).
		Msg("resume queued for extraction")

	c.JSON(consts.StatusAccepted, SubmitResponse{
		SubmissionUUID: submissionUUID,
		ObjectKey:      objectKey,
		Status:         "QUEUED",
	})
}

// readUpload validates and reads the multipart "file" field. It writes the error response
// itself and reports ok=false on failure.
func (h *ResumeHandler) readUpload(ctx context.Context, c *app.RequestContext) ([]byte, string, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "multipart field \"file\" is required"})
		return nil, "", false
	}

	maxBytes := h.cfg.Upload.MaxBytes()
	if err := processor.ValidateUpload(fileHeader.Filename, fileHeader.Size, maxBytes); err != nil {
		h.writeError(ctx, c, "", err)
		return nil, "", false
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.writeError(ctx, c, "", fmt.Errorf("open uploaded file: %w", err))
		return nil, "", false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		h.writeError(ctx, c, "", fmt.Errorf("read uploaded file: %w", err))
		return nil, "", false
	}
	return data, fileHeader.Filename, true
}

// HandleExtractText runs the extraction core over a JSON body.
// POST /api/v1/extract-text
func (h *ResumeHandler) HandleExtractText(ctx context.Context, c *app.RequestContext) {
	var req TextExtractionRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "body must be JSON of the form {\"text\": \"...\"}"})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "text must not be empty"})
		return
	}

	resp, err := h.processor.ProcessText(ctx, req.Text)
	if err != nil {
		h.writeError(ctx, c, "", err)
		return
	}
	c.JSON(consts.StatusOK, resp)
}

// writeError maps pipeline errors onto status codes.
func (h *ResumeHandler) writeError(ctx context.Context, c *app.RequestContext, submissionUUID string, err error) {
	status := statusFor(err)
	body := utils.H{"error": err.Error()}
	if submissionUUID != "" {
		body["submission_uuid"] = submissionUUID
	}

	level := zerolog.WarnLevel
	if status >= consts.StatusInternalServerError {
		level = zerolog.ErrorLevel
		// Internal details stay in the log.
		body["error"] = "resume extraction failed"
	}
	tracing.RecordHTTPError(trace.SpanFromContext(ctx), err, status)
	logger.FromContext(ctx).WithLevel(level).Err(err).Int("status", status).Str("submission_uuid", submissionUUID).Msg("extraction request failed")

	c.JSON(status, body)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, processor.ErrEmptyDocument), errors.Is(err, processor.ErrInputTooShort):
		return consts.StatusUnprocessableEntity
	case processor.IsClientError(err):
		return consts.StatusBadRequest
	default:
		return consts.StatusInternalServerError
	}
}

// StartExtractionConsumer declares the extraction queue and consumes it until ctx is
// cancelled. The returned channel closes once every worker has stopped.
func (h *ResumeHandler) StartExtractionConsumer(ctx context.Context) (<-chan struct{}, error) {
	if h.storage == nil || h.storage.RabbitMQ == nil || h.storage.MinIO == nil {
		return nil, ErrWorkerUnavailable
	}

	mq := h.storage.RabbitMQ
	rc := h.cfg.RabbitMQ
	if err := mq.EnsureQueue(rc.ExtractionQueue, true); err != nil {
		return nil, fmt.Errorf("ensure extraction queue: %w", err)
	}
	if err := mq.BindQueue(rc.ExtractionQueue, rc.ResumeEventsExchange, rc.ExtractionRoutingKey); err != nil {
		return nil, fmt.Errorf("bind extraction queue: %w", err)
	}

	logger.Info().
		Str("queue", rc.ExtractionQueue).
		Str("exchange", rc.ResumeEventsExchange).
		Str("routing_key", rc.ExtractionRoutingKey).
		Int("workers", rc.ConsumerWorkers).
		Msg("extraction consumer ready")

	return mq.StartConsumer(ctx, rc.ExtractionQueue, rc.PrefetchCount, rc.ConsumerWorkers, h.processor.HandleExtractionMessage)
}
