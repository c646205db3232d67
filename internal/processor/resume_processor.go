package processor

import (
	"context"
	"fmt"
	"time"
	"unicode"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"jobai-go/internal/config"
	"jobai-go/internal/logger"
	"jobai-go/internal/parser"
	"jobai-go/internal/storage"
	"jobai-go/internal/tracing"
	"jobai-go/internal/types"
)

const (
	// MinResumeChars is the minimum number of non-whitespace characters Assemble accepts.
	MinResumeChars = 100
	// PreviewLength is the number of characters kept in raw_text_preview.
	PreviewLength = 1000
)

// Components groups the collaborators; everything except PDFExtractor is optional.
type Components struct {
	PDFExtractor PDFExtractor

	Cache   ResultCache
	Files   FileStore
	Records RecordStore
	Events  EventPublisher
	Sink    ResultSink
}

// Settings holds plain configuration.
type Settings struct {
	Parallel       bool
	MaxUploadBytes int64
	Timeout        time.Duration
	PDFEngine      string
	Clock          func() time.Time
	Logger         *zerolog.Logger
}

// ResumeProcessor assembles records from resume text and runs the extraction pipeline.
// It is safe for concurrent use.
type ResumeProcessor struct {
	Components
	Settings

	experience *parser.ExperienceExtractor
}

// NewResumeProcessorV2 builds a processor from explicit components and settings.
func NewResumeProcessorV2(comp *Components, set *Settings, opts ...SettingOpt) *ResumeProcessor {
	if comp == nil {
		comp = &Components{}
	}
	if set == nil {
		set = &Settings{Parallel: true}
	}
	for _, opt := range opts {
		opt(set)
	}

	if set.Logger == nil {
		set.Logger = &logger.Logger
	}
	if set.Clock == nil {
		set.Clock = time.Now
	}
	if set.MaxUploadBytes <= 0 {
		set.MaxUploadBytes = DefaultMaxUploadBytes
	}

	rp := &ResumeProcessor{
		Components: *comp,
		Settings:   *set,
		experience: parser.NewExperienceExtractor(parser.WithClock(set.Clock)),
	}

	if rp.PDFExtractor == nil {
		rp.Logger.Warn().Msg("ResumeProcessor has no PDF extractor; only text extraction is available")
	}
	return rp
}

// CreateProcessor applies option lists to fresh Components and Settings.
func CreateProcessor(ctx context.Context, compOpts []ComponentOpt, setOpts []SettingOpt) (*ResumeProcessor, error) {
	comp := &Components{}
	for _, opt := range compOpts {
		opt(comp)
	}
	set := &Settings{Parallel: true}
	return NewResumeProcessorV2(comp, set, setOpts...), nil
}

// CreateProcessorFromConfig builds the PDF extractor named by cfg and wires every
// available backend of storageManager.
func CreateProcessorFromConfig(ctx context.Context, cfg *config.Config, storageManager *storage.Storage) (*ResumeProcessor, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}

	extractor, err := BuildPDFExtractor(ctx, cfg)
	if err != nil {
		return nil, err
	}

	l := logger.Logger.With().Str("component", "processor").Logger()
	return CreateProcessor(ctx,
		[]ComponentOpt{
			WithcompPdfextractor(extractor),
			WithcompStorage(storageManager),
		},
		[]SettingOpt{
			WithsetParallel(cfg.Extraction.Parallel),
			WithsetMaxUploadBytes(cfg.Upload.MaxBytes()),
			WithsetTimeout(config.GetDuration(cfg.Extraction.Timeout, 0)),
			WithsetPDFEngine(cfg.PDF.Engine),
			WithsetLogger(&l),
		},
	)
}

// Assemble runs the six field extractors over text and returns a fresh record.
func (rp *ResumeProcessor) Assemble(ctx context.Context, text string) (*types.ResumeRecord, error) {
	ctx, span := tracer.Start(ctx, "ResumeProcessor.Assemble",
		trace.WithAttributes(
			attribute.Int("text.length", len(text)),
			attribute.String("text.excerpt", tracing.SafeResumeContent(text)),
			attribute.Bool("extraction.parallel", rp.Parallel),
		))
	defer span.End()

	if n := countNonSpace(text); n < MinResumeChars {
		return nil, NewValidationError("", ErrInputTooShort,
			fmt.Sprintf("%d non-whitespace characters, need %d", n, MinResumeChars))
	}

	record := &types.ResumeRecord{
		RawTextPreview: parser.TruncateRunes(text, PreviewLength),
	}

	// Each task writes a distinct field of record.
	tasks := []func(){
		func() { record.ContactInfo = parser.ExtractContactInfo(text) },
		func() { record.Skills = parser.ExtractSkills(text) },
		func() { record.Experience = rp.experience.Extract(text) },
		func() { record.Education = parser.ExtractEducation(text) },
		func() { record.Projects = parser.ExtractProjects(text) },
		func() { record.JobPreferences = parser.ExtractJobPreferences(text) },
	}

	if !rp.Parallel {
		for _, task := range tasks {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			task()
		}
		return record, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, task := range tasks {
		task := task
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			task()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return record, nil
}

func countNonSpace(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
