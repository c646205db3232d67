package processor

import (
	"context"
	"encoding/json"
	"errors"

	"jobai-go/internal/logger"
	"jobai-go/internal/metrics"
	"jobai-go/internal/storage"
)

// HandleExtractionMessage is the storage.MessageHandler for extraction requests.
//
//   - malformed or incomplete messages are dropped
//   - bad input (not a PDF, too large, empty, too little text) is acked, retrying cannot help
//   - PDFs that fail to parse are dropped
//   - anything else (download, timeout) is requeued
func (rp *ResumeProcessor) HandleExtractionMessage(ctx context.Context, body []byte) storage.Disposition {
	disposition := rp.handleExtractionMessage(ctx, body)
	metrics.WorkerMessage(disposition.String())
	return disposition
}

func (rp *ResumeProcessor) handleExtractionMessage(ctx context.Context, body []byte) storage.Disposition {
	var msg storage.ExtractionRequestMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		logger.Ctx(ctx).Error().Err(err).Msg("malformed extraction request")
		return storage.Drop
	}
	if msg.SubmissionUUID == "" || msg.ObjectKey == "" {
		logger.Ctx(ctx).Error().Str("submission_uuid", msg.SubmissionUUID).Msg("extraction request missing submission_uuid or object_key")
		return storage.Drop
	}

	ctx = logger.WithSubmissionUUID(ctx, msg.SubmissionUUID)
	log := logger.FromContext(ctx)

	_, err := rp.ProcessStoredPDF(ctx, msg)
	switch {
	case err == nil:
		return storage.Ack
	case IsClientError(err):
		log.Warn().Err(err).Msg("extraction request rejected")
		return storage.Ack
	case errors.Is(err, ErrParseTextFailed):
		log.Error().Err(err).Msg("unparseable PDF, dropping")
		return storage.Drop
	default:
		log.Error().Err(err).Msg("extraction failed, requeueing")
		return storage.Requeue
	}
}
