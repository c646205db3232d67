package processor

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"jobai-go/internal/constants"
	"jobai-go/internal/keywords"
	"jobai-go/internal/logger"
	"jobai-go/internal/metrics"
	"jobai-go/internal/parser"
	"jobai-go/internal/storage"
	"jobai-go/internal/storage/models"
	"jobai-go/internal/tracing"
	"jobai-go/internal/types"
	"jobai-go/pkg/utils"
)

var tracer = otel.Tracer("processor")

// ExtractionRequest is one PDF to extract.
type ExtractionRequest struct {
	SubmissionUUID string // generated when empty
	Filename       string
	Data           []byte
	Source         string // metrics.SourcePDF or metrics.SourceWorker

	// OriginalObjectKey is set when the PDF is already in object storage, so it is not
	// uploaded again.
	OriginalObjectKey string
}

// ResumeService is the extraction pipeline used by the HTTP handler, the worker and the CLI.
type ResumeService interface {
	ProcessPDF(ctx context.Context, req ExtractionRequest) (*types.ExtractionResponse, error)
	ProcessText(ctx context.Context, text string) (*types.ExtractionResponse, error)
}

var _ ResumeService = (*ResumeProcessor)(nil)

// ProcessText runs the extraction core over plain text. Nothing is persisted.
func (rp *ResumeProcessor) ProcessText(ctx context.Context, text string) (*types.ExtractionResponse, error) {
	start := rp.Clock()
	ctx, span := tracer.Start(ctx, "ProcessText")
	defer span.End()

	resp, err := rp.extract(ctx, text)
	if err != nil {
		rp.observe(metrics.SourceText, err, start)
		recordSpanError(span, err)
		return nil, err
	}
	rp.observe(metrics.SourceText, nil, start)
	return resp, nil
}

// ProcessPDF validates the upload, serves it from the result cache when possible,
// extracts text, assembles the record and keywords, then persists the result to every
// configured sink. Sink failures are logged and never fail the request.
func (rp *ResumeProcessor) ProcessPDF(ctx context.Context, req ExtractionRequest) (*types.ExtractionResponse, error) {
	start := rp.Clock()
	if req.SubmissionUUID == "" {
		req.SubmissionUUID = uuid.NewString()
	}
	if req.Source == "" {
		req.Source = metrics.SourcePDF
	}
	ctx = logger.WithSubmissionUUID(ctx, req.SubmissionUUID)
	log := logger.FromContext(ctx)

	ctx, span := tracer.Start(ctx, "ProcessPDF",
		trace.WithAttributes(
			attribute.String("submission_uuid", req.SubmissionUUID),
			attribute.String("original_filename", tracing.SafeAttributeValue("filename", req.Filename, tracing.DefaultMaxLength)),
			attribute.Int("file.size", len(req.Data)),
			attribute.String("extraction.source", req.Source),
		))
	defer span.End()

	if rp.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, rp.Timeout)
		defer cancel()
	}

	if err := ValidateUpload(req.Filename, int64(len(req.Data)), rp.MaxUploadBytes); err != nil {
		err = withSubmission(err, req.SubmissionUUID)
		rp.observe(req.Source, err, start)
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		return nil, err
	}

	fileMD5 := utils.CalculateMD5(req.Data)
	span.SetAttributes(attribute.String("file.md5", fileMD5))

	if cached := rp.cachedResult(ctx, fileMD5); cached != nil {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		rp.persistCached(ctx, req, fileMD5, cached, start)
		metrics.ObserveExtraction(req.Source, metrics.OutcomeCached, rp.Clock().Sub(start))
		log.Info().Str("md5", fileMD5).Msg("served extraction from result cache")
		return cached, nil
	}

	text, err := rp.extractText(ctx, req)
	if err != nil {
		rp.observe(req.Source, err, start)
		recordSpanError(span, err)
		rp.saveFailure(ctx, req, fileMD5, err, start)
		return nil, err
	}

	resp, err := rp.extract(ctx, text)
	if err != nil {
		err = withSubmission(err, req.SubmissionUUID)
		rp.observe(req.Source, err, start)
		recordSpanError(span, err)
		rp.saveFailure(ctx, req, fileMD5, err, start)
		return nil, err
	}

	rp.persist(ctx, req, fileMD5, resp, start)

	rp.observe(req.Source, nil, start)
	log.Info().
		Str("md5", fileMD5).
		Int("skills", len(resp.Skills.AllSkills)).
		Float64("total_years", resp.Experience.TotalYears).
		Int64("duration_ms", rp.Clock().Sub(start).Milliseconds()).
		Msg("resume extracted")
	return resp, nil
}

// ProcessStoredPDF downloads a PDF from object storage and runs ProcessPDF on it.
func (rp *ResumeProcessor) ProcessStoredPDF(ctx context.Context, msg storage.ExtractionRequestMessage) (*types.ExtractionResponse, error) {
	if rp.Files == nil {
		return nil, NewDownloadError(msg.SubmissionUUID, "object storage is not configured")
	}

	dctx, span := tracer.Start(ctx, "DownloadResume",
		trace.WithAttributes(attribute.String("minio.object_key", tracing.SafeObjectKey(msg.ObjectKey))))
	data, err := rp.Files.DownloadFile(dctx, msg.ObjectKey)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeObjectStore)
		span.End()
		return nil, NewDownloadError(msg.SubmissionUUID, err.Error())
	}
	span.End()

	filename := msg.OriginalFilename
	if filename == "" {
		filename = filepath.Base(msg.ObjectKey)
	}
	return rp.ProcessPDF(ctx, ExtractionRequest{
		SubmissionUUID:    msg.SubmissionUUID,
		Filename:          filename,
		Data:              data,
		Source:            metrics.SourceWorker,
		OriginalObjectKey: msg.ObjectKey,
	})
}

// extract runs Assemble and the keyword generator.
func (rp *ResumeProcessor) extract(ctx context.Context, text string) (*types.ExtractionResponse, error) {
	record, err := rp.Assemble(ctx, text)
	if err != nil {
		return nil, err
	}

	_, span := tracer.Start(ctx, "GenerateKeywords")
	kw := keywords.Generate(record)
	span.SetAttributes(
		attribute.String("experience_level", kw.ExperienceLevel),
		attribute.Int("job_titles", len(kw.JobTitles)),
	)
	span.End()

	return types.NewExtractionResponse(record, kw), nil
}

func (rp *ResumeProcessor) extractText(ctx context.Context, req ExtractionRequest) (string, error) {
	if rp.PDFExtractor == nil {
		return "", NewParseError(req.SubmissionUUID, errors.New("no PDF extractor configured"))
	}

	ctx, span := tracer.Start(ctx, "ExtractPDFText",
		trace.WithAttributes(attribute.String("pdf.engine", rp.PDFEngine)))
	defer span.End()

	text, meta, err := rp.PDFExtractor.ExtractTextFromBytes(ctx, req.Data, req.Filename, nil)
	if err != nil {
		err = NewParseError(req.SubmissionUUID, err)
		tracing.RecordError(span, err, tracing.ErrorTypeParse)
		return "", err
	}
	span.SetAttributes(attribute.Int("text.length", len(text)))
	if pages, ok := meta[parser.MetaPageCount].(int); ok {
		span.SetAttributes(attribute.Int("pdf.pages", pages))
	}
	return text, nil
}

func (rp *ResumeProcessor) cachedResult(ctx context.Context, fileMD5 string) *types.ExtractionResponse {
	if rp.Cache == nil {
		return nil
	}
	resp, err := rp.Cache.GetCachedResult(ctx, fileMD5)
	if err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("md5", fileMD5).Msg("result cache lookup failed")
		metrics.SinkFailed("redis")
		return nil
	}
	return resp
}

// persist writes resp to every configured sink.
func (rp *ResumeProcessor) persist(ctx context.Context, req ExtractionRequest, fileMD5 string, resp *types.ExtractionResponse, start time.Time) {
	ctx, span := tracer.Start(ctx, "PersistResult")
	defer span.End()
	log := logger.FromContext(ctx)

	resultJSON, err := json.Marshal(resp)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode extraction result")
		return
	}

	originalKey := req.OriginalObjectKey
	var resultKey string
	if rp.Files != nil {
		if originalKey == "" {
			if originalKey, err = rp.Files.UploadResumeFile(ctx, req.SubmissionUUID, filepath.Ext(req.Filename), req.Data); err != nil {
				rp.sinkFailed(ctx, "minio", NewStoreError(req.SubmissionUUID, err.Error()))
			}
		}
		if resultKey, err = rp.Files.UploadResultJSON(ctx, req.SubmissionUUID, resultJSON); err != nil {
			rp.sinkFailed(ctx, "minio", NewStoreError(req.SubmissionUUID, err.Error()))
		}
	}

	if rp.Cache != nil {
		if err := rp.Cache.CacheResult(ctx, fileMD5, resp); err != nil {
			rp.sinkFailed(ctx, "redis", err)
		}
		if _, err := rp.Cache.MarkProcessed(ctx, fileMD5, req.SubmissionUUID); err != nil {
			rp.sinkFailed(ctx, "redis", err)
		}
	}

	rp.saveSuccess(ctx, req, fileMD5, resp, resultJSON, storedResult{originalKey: originalKey, resultKey: resultKey}, start)

	if rp.Sink != nil {
		if path, err := rp.Sink.Save(ctx, req.SubmissionUUID, req.Filename, resp); err != nil {
			rp.sinkFailed(ctx, "json_sink", err)
		} else {
			log.Debug().Str("path", path).Msg("result written to local sink")
		}
	}

	rp.publishExtracted(ctx, req, fileMD5, resp, storedResult{resultKey: resultKey})
}

// storedResult locates a result in object storage. cachedFrom is set when the result
// belongs to an earlier submission of the same file.
type storedResult struct {
	originalKey string
	resultKey   string
	cachedFrom  string
}

// persistCached gives a cache hit its own audit row and event. The result JSON and the
// cache entry already exist, so object storage and Redis are not written again.
func (rp *ResumeProcessor) persistCached(ctx context.Context, req ExtractionRequest, fileMD5 string, resp *types.ExtractionResponse, start time.Time) {
	if rp.Records == nil && rp.Events == nil {
		return
	}
	ctx, span := tracer.Start(ctx, "PersistCachedResult")
	defer span.End()

	stored := storedResult{originalKey: req.OriginalObjectKey}
	if rp.Cache != nil {
		first, err := rp.Cache.SubmissionForMD5(ctx, fileMD5)
		if err != nil {
			rp.sinkFailed(ctx, "redis", err)
		}
		if first != "" && rp.Files != nil {
			stored.resultKey = storage.ResultObjectKey(first)
		}
		// A redelivered submission reuses its own result.
		if first != req.SubmissionUUID {
			stored.cachedFrom = first
		}
	}
	span.SetAttributes(attribute.String("cached_from", stored.cachedFrom))

	resultJSON, err := json.Marshal(resp)
	if err != nil {
		logger.FromContext(ctx).Error().Err(err).Msg("failed to encode cached extraction result")
		return
	}

	rp.saveSuccess(ctx, req, fileMD5, resp, resultJSON, stored, start)
	rp.publishExtracted(ctx, req, fileMD5, resp, stored)
}

func (rp *ResumeProcessor) saveSuccess(ctx context.Context, req ExtractionRequest, fileMD5 string, resp *types.ExtractionResponse, resultJSON []byte, stored storedResult, start time.Time) {
	if rp.Records == nil {
		return
	}
	rec := rp.newRecord(req, fileMD5, models.StatusSucceeded, start)
	rec.OriginalFilePath = stored.originalKey
	rec.ResultPath = stored.resultKey
	rec.CachedFrom = stored.cachedFrom
	rec.TotalYears = resp.Experience.TotalYears
	rec.ExperienceLevel = resp.SearchKeywords.ExperienceLevel
	rec.CandidateName = utils.StringValue(resp.ContactInfo.Name)
	rec.SkillsJSON = utils.ConvertArrayToJSON(resp.Skills.AllSkills)
	rec.JobTitlesJSON = utils.ConvertArrayToJSON(resp.SearchKeywords.JobTitles)
	rec.ResultJSON = resultJSON
	if err := rp.Records.SaveExtractionRecord(ctx, rec); err != nil {
		rp.sinkFailed(ctx, "mysql", NewStoreError(req.SubmissionUUID, err.Error()))
	}
}

func (rp *ResumeProcessor) publishExtracted(ctx context.Context, req ExtractionRequest, fileMD5 string, resp *types.ExtractionResponse, stored storedResult) {
	if rp.Events == nil {
		return
	}
	event := storage.ExtractionEvent{
		SubmissionUUID:   req.SubmissionUUID,
		Source:           req.Source,
		OriginalFilename: req.Filename,
		FileMD5:          fileMD5,
		ResultObjectKey:  stored.resultKey,
		CachedFrom:       stored.cachedFrom,
		ExperienceLevel:  resp.SearchKeywords.ExperienceLevel,
		TotalYears:       resp.Experience.TotalYears,
		PrimarySkills:    resp.SearchKeywords.PrimarySkills,
		JobTitles:        resp.SearchKeywords.JobTitles,
		ExtractedAt:      rp.Clock(),
	}
	if err := rp.Events.PublishExtracted(ctx, event); err != nil {
		rp.sinkFailed(ctx, "rabbitmq", NewPublishError(req.SubmissionUUID, err.Error()))
	}
}

// saveFailure writes an audit row for a request that failed after validation.
func (rp *ResumeProcessor) saveFailure(ctx context.Context, req ExtractionRequest, fileMD5 string, cause error, start time.Time) {
	if rp.Records == nil {
		return
	}
	status := models.StatusFailed
	if IsClientError(cause) {
		status = models.StatusRejected
	}
	rec := rp.newRecord(req, fileMD5, status, start)
	rec.ErrorMessage = cause.Error()
	if err := rp.Records.SaveExtractionRecord(ctx, rec); err != nil {
		rp.sinkFailed(ctx, "mysql", err)
	}
}

func (rp *ResumeProcessor) newRecord(req ExtractionRequest, fileMD5, status string, start time.Time) *models.ExtractionRecord {
	return &models.ExtractionRecord{
		SubmissionUUID:   req.SubmissionUUID,
		Source:           req.Source,
		OriginalFilename: req.Filename,
		FileMD5:          fileMD5,
		PDFEngine:        rp.PDFEngine,
		Status:           status,
		ParserVersion:    constants.ParserVersion,
		DurationMS:       rp.Clock().Sub(start).Milliseconds(),
	}
}

func (rp *ResumeProcessor) sinkFailed(ctx context.Context, sink string, err error) {
	metrics.SinkFailed(sink)
	logger.FromContext(ctx).Warn().Err(err).Str("sink", sink).Msg("best-effort persistence failed")
}

func (rp *ResumeProcessor) observe(source string, err error, start time.Time) {
	outcome := metrics.OutcomeSuccess
	switch {
	case err == nil:
	case IsClientError(err):
		outcome = metrics.OutcomeRejected
	default:
		outcome = metrics.OutcomeFailed
	}
	metrics.ObserveExtraction(source, outcome, rp.Clock().Sub(start))
}

func recordSpanError(span trace.Span, err error) {
	switch {
	case IsClientError(err):
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
	case errors.Is(err, context.DeadlineExceeded):
		tracing.RecordError(span, err, tracing.ErrorTypeTimeout)
	case errors.Is(err, ErrParseTextFailed):
		tracing.RecordError(span, err, tracing.ErrorTypeParse)
	default:
		tracing.RecordError(span, err, tracing.ErrorTypeInternal)
	}
}

// withSubmission stamps the submission UUID onto an ExtractionError that lacks one.
func withSubmission(err error, submissionUUID string) error {
	var ee *ExtractionError
	if errors.As(err, &ee) && ee.SubmissionUUID == "" {
		ee.SubmissionUUID = submissionUUID
	}
	return err
}
