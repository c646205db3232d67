package processor

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"jobai-go/internal/config"
	"jobai-go/internal/keywords"
	"jobai-go/internal/parser"
	"jobai-go/internal/storage"
	"jobai-go/internal/storage/models"
	"jobai-go/internal/types"
)

const sampleResume = `Jane Doe
jane.doe@example.com | +1 555 123 4567
Experience
Senior Backend Engineer
Jan 2018 - Dec 2020
Built payment services in Python and Docker backed by PostgreSQL.
Skills
Python, Docker, PostgreSQL, Kubernetes
`

var fixedNow = time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)

// MockPDFExtractor returns canned text and counts calls.
type MockPDFExtractor struct {
	text  string
	err   error
	mu    sync.Mutex
	calls int
}

func (m *MockPDFExtractor) ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error) {
	return m.ExtractTextFromBytes(ctx, nil, filePath, nil)
}

func (m *MockPDFExtractor) ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string, options interface{}) (string, map[string]interface{}, error) {
	return m.ExtractTextFromBytes(ctx, nil, uri, options)
}

func (m *MockPDFExtractor) ExtractTextFromBytes(ctx context.Context, data []byte, uri string, options interface{}) (string, map[string]interface{}, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.err != nil {
		return "", nil, m.err
	}
	return m.text, map[string]interface{}{parser.MetaPageCount: 2, "source_uri": uri}, nil
}

func (m *MockPDFExtractor) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockCache is an in-memory ResultCache.
type MockCache struct {
	mu        sync.Mutex
	results   map[string]*types.ExtractionResponse
	processed map[string]string
	getErr    error
}

func newMockCache() *MockCache {
	return &MockCache{
		results:   make(map[string]*types.ExtractionResponse),
		processed: make(map[string]string),
	}
}

func (m *MockCache) GetCachedResult(ctx context.Context, fileMD5 string) (*types.ExtractionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.results[fileMD5], nil
}

func (m *MockCache) CacheResult(ctx context.Context, fileMD5 string, resp *types.ExtractionResponse) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[fileMD5] = resp
	return nil
}

func (m *MockCache) MarkProcessed(ctx context.Context, fileMD5, submissionUUID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.processed[fileMD5]; ok {
		return false, nil
	}
	m.processed[fileMD5] = submissionUUID
	return true, nil
}

func (m *MockCache) SubmissionForMD5(ctx context.Context, fileMD5 string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.processed[fileMD5], nil
}

// MockFiles is an in-memory FileStore.
type MockFiles struct {
	mu          sync.Mutex
	objects     map[string][]byte
	uploadErr   error
	downloadErr error
}

func newMockFiles() *MockFiles {
	return &MockFiles{objects: make(map[string][]byte)}
}

func (m *MockFiles) UploadResumeFile(ctx context.Context, submissionUUID, fileExt string, data []byte) (string, error) {
	if m.uploadErr != nil {
		return "", m.uploadErr
	}
	key := storage.ResumeObjectKey(submissionUUID, fileExt)
	m.mu.Lock()
	m.objects[key] = data
	m.mu.Unlock()
	return key, nil
}

func (m *MockFiles) UploadResultJSON(ctx context.Context, submissionUUID string, data []byte) (string, error) {
	if m.uploadErr != nil {
		return "", m.uploadErr
	}
	key := storage.ResultObjectKey(submissionUUID)
	m.mu.Lock()
	m.objects[key] = data
	m.mu.Unlock()
	return key, nil
}

func (m *MockFiles) DownloadFile(ctx context.Context, objectKey string) ([]byte, error) {
	if m.downloadErr != nil {
		return nil, m.downloadErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[objectKey]
	if !ok {
		return nil, errors.New("object not found")
	}
	return data, nil
}

// MockRecords collects audit rows.
type MockRecords struct {
	mu   sync.Mutex
	rows []*models.ExtractionRecord
}

func (m *MockRecords) SaveExtractionRecord(ctx context.Context, rec *models.ExtractionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, rec)
	return nil
}

func (m *MockRecords) Rows() []*models.ExtractionRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*models.ExtractionRecord(nil), m.rows...)
}

// MockEvents collects published events.
type MockEvents struct {
	mu     sync.Mutex
	events []storage.ExtractionEvent
	err    error
}

func (m *MockEvents) PublishExtracted(ctx context.Context, event storage.ExtractionEvent) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

// MockSink records saved submissions.
type MockSink struct {
	mu    sync.Mutex
	saved []string
}

func (m *MockSink) Save(ctx context.Context, submissionID, originalFilename string, resp *types.ExtractionResponse) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, submissionID)
	return "output/" + submissionID + ".json", nil
}

type testRig struct {
	processor *ResumeProcessor
	extractor *MockPDFExtractor
	cache     *MockCache
	files     *MockFiles
	records   *MockRecords
	events    *MockEvents
	sink      *MockSink
}

func newTestRig(t *testing.T, text string) *testRig {
	t.Helper()
	r := &testRig{
		extractor: &MockPDFExtractor{text: text},
		cache:     newMockCache(),
		files:     newMockFiles(),
		records:   &MockRecords{},
		events:    &MockEvents{},
		sink:      &MockSink{},
	}
	rp, err := CreateProcessor(context.Background(),
		[]ComponentOpt{
			WithcompPdfextractor(r.extractor),
			WithcompCache(r.cache),
			WithcompFiles(r.files),
			WithcompRecords(r.records),
			WithcompEvents(r.events),
			WithcompSink(r.sink),
		},
		[]SettingOpt{
			WithsetClock(func() time.Time { return fixedNow }),
			WithsetPDFEngine(parser.EngineLedongthuc),
			WithsetTimeout(5 * time.Second),
			WithsetLogger(nil),
		},
	)
	require.NoError(t, err)
	r.processor = rp
	return r
}

func newTextProcessor(parallel bool) *ResumeProcessor {
	return NewResumeProcessorV2(nil, nil,
		WithsetParallel(parallel),
		WithsetClock(func() time.Time { return fixedNow }),
		WithsetLogger(nil),
	)
}

func TestAssemble(t *testing.T) {
	rp := newTextProcessor(true)

	record, err := rp.Assemble(context.Background(), sampleResume)
	require.NoError(t, err)

	require.NotNil(t, record.ContactInfo.Email)
	assert.Equal(t, "jane.doe@example.com", *record.ContactInfo.Email)
	require.NotNil(t, record.ContactInfo.Name)
	assert.Equal(t, "Jane Doe", *record.ContactInfo.Name)
	assert.True(t, record.Skills.Contains("Python"))
	assert.True(t, record.Skills.Contains("Docker"))
	assert.Equal(t, 3.0, record.Experience.TotalYears)
	assert.Equal(t, sampleResume, record.RawTextPreview)
}

func TestAssemble_ParallelMatchesSequential(t *testing.T) {
	parallel, err := newTextProcessor(true).Assemble(context.Background(), sampleResume)
	require.NoError(t, err)
	sequential, err := newTextProcessor(false).Assemble(context.Background(), sampleResume)
	require.NoError(t, err)

	assert.Equal(t, sequential, parallel)
}

func TestAssemble_InputTooShort(t *testing.T) {
	rp := newTextProcessor(true)

	// Whitespace does not count toward the minimum.
	text := strings.Repeat("a ", MinResumeChars-1)
	_, err := rp.Assemble(context.Background(), text)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInputTooShort)
	assert.True(t, IsClientError(err))

	_, err = rp.Assemble(context.Background(), strings.Repeat("a ", MinResumeChars))
	assert.NoError(t, err)
}

func TestAssemble_PreviewTruncatedToRunes(t *testing.T) {
	rp := newTextProcessor(false)
	text := strings.Repeat("é", PreviewLength+50)

	record, err := rp.Assemble(context.Background(), text)
	require.NoError(t, err)

	assert.Equal(t, PreviewLength, len([]rune(record.RawTextPreview)))
}

func TestAssemble_CanceledContext(t *testing.T) {
	for _, parallel := range []bool{true, false} {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := newTextProcessor(parallel).Assemble(ctx, sampleResume)
		assert.ErrorIs(t, err, context.Canceled, "parallel=%v", parallel)
	}
}

func TestProcessText(t *testing.T) {
	rp := newTextProcessor(true)

	resp, err := rp.ProcessText(context.Background(), sampleResume)
	require.NoError(t, err)

	assert.Equal(t, keywords.LevelMid, resp.SearchKeywords.ExperienceLevel)
	assert.Contains(t, resp.SearchKeywords.PrimarySkills, "Python")
	assert.NotEmpty(t, resp.SearchKeywords.JobTitles)
	assert.Equal(t, sampleResume, resp.RawTextPreview)
}

func TestProcessPDF_PersistsToEverySink(t *testing.T) {
	rig := newTestRig(t, sampleResume)
	pdf := []byte("%PDF-1.4 fake resume")

	resp, err := rig.processor.ProcessPDF(context.Background(), ExtractionRequest{
		SubmissionUUID: "sub-1",
		Filename:       "Jane_Doe.PDF",
		Data:           pdf,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.ContactInfo.Email)
	assert.Equal(t, "jane.doe@example.com", *resp.ContactInfo.Email)
	assert.Equal(t, 1, rig.extractor.Calls())

	assert.Contains(t, rig.files.objects, "resume/sub-1/original.pdf")
	assert.Contains(t, rig.files.objects, "resume/sub-1/extraction.json")
	assert.Len(t, rig.cache.results, 1)
	assert.Len(t, rig.cache.processed, 1)
	assert.Equal(t, []string{"sub-1"}, rig.sink.saved)

	rows := rig.records.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, models.StatusSucceeded, rows[0].Status)
	assert.Equal(t, "Jane Doe", rows[0].CandidateName)
	assert.Equal(t, 3.0, rows[0].TotalYears)
	assert.Equal(t, "resume/sub-1/extraction.json", rows[0].ResultPath)
	assert.Equal(t, parser.EngineLedongthuc, rows[0].PDFEngine)

	require.Len(t, rig.events.events, 1)
	event := rig.events.events[0]
	assert.Equal(t, "sub-1", event.SubmissionUUID)
	assert.Equal(t, keywords.LevelMid, event.ExperienceLevel)
	assert.Equal(t, fixedNow, event.ExtractedAt)
}

func TestProcessPDF_GeneratesSubmissionUUID(t *testing.T) {
	rig := newTestRig(t, sampleResume)

	_, err := rig.processor.ProcessPDF(context.Background(), ExtractionRequest{
		Filename: "resume.pdf",
		Data:     []byte("%PDF"),
	})
	require.NoError(t, err)

	require.Len(t, rig.sink.saved, 1)
	assert.Len(t, rig.sink.saved[0], 36)
}

func TestProcessPDF_CacheHitSkipsExtraction(t *testing.T) {
	rig := newTestRig(t, sampleResume)
	req := ExtractionRequest{Filename: "resume.pdf", Data: []byte("%PDF same bytes")}

	first, err := rig.processor.ProcessPDF(context.Background(), req)
	require.NoError(t, err)
	second, err := rig.processor.ProcessPDF(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, rig.extractor.Calls())

	rows := rig.records.Rows()
	require.Len(t, rows, 2)
	assert.Empty(t, rows[0].CachedFrom)
	assert.Equal(t, rows[0].SubmissionUUID, rows[1].CachedFrom)
	assert.NotEqual(t, rows[0].SubmissionUUID, rows[1].SubmissionUUID)
	assert.Len(t, rig.sink.saved, 1)
}

func TestProcessStoredPDF_CacheHitIsAudited(t *testing.T) {
	rig := newTestRig(t, sampleResume)
	pdf := []byte("%PDF queued twice")
	firstKey := storage.ResumeObjectKey("11111111-1111-1111-1111-111111111111", ".pdf")
	secondKey := storage.ResumeObjectKey("22222222-2222-2222-2222-222222222222", ".pdf")
	rig.files.objects[firstKey] = pdf
	rig.files.objects[secondKey] = pdf

	for _, msg := range []storage.ExtractionRequestMessage{
		{SubmissionUUID: "11111111-1111-1111-1111-111111111111", ObjectKey: firstKey},
		{SubmissionUUID: "22222222-2222-2222-2222-222222222222", ObjectKey: secondKey},
	} {
		_, err := rig.processor.ProcessStoredPDF(context.Background(), msg)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, rig.extractor.Calls())

	rows := rig.records.Rows()
	require.Len(t, rows, 2)
	second := rows[1]
	assert.Equal(t, "22222222-2222-2222-2222-222222222222", second.SubmissionUUID)
	assert.Equal(t, models.StatusSucceeded, second.Status)
	assert.Equal(t, "11111111-1111-1111-1111-111111111111", second.CachedFrom)
	assert.Equal(t, secondKey, second.OriginalFilePath)
	assert.Equal(t, storage.ResultObjectKey("11111111-1111-1111-1111-111111111111"), second.ResultPath)
	assert.Equal(t, rows[0].ResultJSON, second.ResultJSON)
	assert.Equal(t, "Jane Doe", second.CandidateName)

	require.Len(t, rig.events.events, 2)
	assert.Equal(t, "22222222-2222-2222-2222-222222222222", rig.events.events[1].SubmissionUUID)
	assert.Equal(t, "11111111-1111-1111-1111-111111111111", rig.events.events[1].CachedFrom)

	// Only the first submission's result is uploaded.
	assert.Len(t, rig.files.objects, 3)
}

func TestProcessStoredPDF_RedeliveredSubmissionNotMarkedCached(t *testing.T) {
	rig := newTestRig(t, sampleResume)
	key := storage.ResumeObjectKey("sub-r", ".pdf")
	rig.files.objects[key] = []byte("%PDF redelivered")
	msg := storage.ExtractionRequestMessage{SubmissionUUID: "sub-r", ObjectKey: key}

	_, err := rig.processor.ProcessStoredPDF(context.Background(), msg)
	require.NoError(t, err)
	_, err = rig.processor.ProcessStoredPDF(context.Background(), msg)
	require.NoError(t, err)

	rows := rig.records.Rows()
	require.Len(t, rows, 2)
	assert.Empty(t, rows[1].CachedFrom)
	assert.Equal(t, storage.ResultObjectKey("sub-r"), rows[1].ResultPath)
}

func TestProcessPDF_RecordsPageCount(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	rig := newTestRig(t, sampleResume)
	_, err := rig.processor.ProcessPDF(context.Background(), ExtractionRequest{Filename: "resume.pdf", Data: []byte("%PDF pages")})
	require.NoError(t, err)

	var pages attribute.Value
	for _, span := range recorder.Ended() {
		if span.Name() != "ExtractPDFText" {
			continue
		}
		for _, kv := range span.Attributes() {
			if kv.Key == "pdf.pages" {
				pages = kv.Value
			}
		}
	}
	assert.Equal(t, int64(2), pages.AsInt64())
}

func TestProcessPDF_CacheErrorFallsThrough(t *testing.T) {
	rig := newTestRig(t, sampleResume)
	rig.cache.getErr = errors.New("redis down")

	resp, err := rig.processor.ProcessPDF(context.Background(), ExtractionRequest{Filename: "resume.pdf", Data: []byte("%PDF")})

	require.NoError(t, err)
	assert.NotNil(t, resp)
	assert.Equal(t, 1, rig.extractor.Calls())
}

func TestProcessPDF_ValidationErrors(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
		want     error
	}{
		{"not a pdf", "resume.docx", []byte("data"), ErrUnsupportedFileType},
		{"empty", "resume.pdf", nil, ErrEmptyUpload},
		{"too large", "resume.pdf", make([]byte, 11), ErrFileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rig := newTestRig(t, sampleResume)
			rig.processor.MaxUploadBytes = 10

			_, err := rig.processor.ProcessPDF(context.Background(), ExtractionRequest{
				SubmissionUUID: "sub-v",
				Filename:       tt.filename,
				Data:           tt.data,
			})

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, IsClientError(err))
			assert.Contains(t, err.Error(), "sub-v")
			assert.Zero(t, rig.extractor.Calls())
			assert.Empty(t, rig.records.Rows())
		})
	}
}

func TestProcessPDF_EmptyDocumentRejected(t *testing.T) {
	rig := newTestRig(t, "")
	rig.extractor.err = parser.ErrEmptyDocument

	_, err := rig.processor.ProcessPDF(context.Background(), ExtractionRequest{Filename: "scan.pdf", Data: []byte("%PDF")})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyDocument)
	assert.True(t, IsClientError(err))

	rows := rig.records.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, models.StatusRejected, rows[0].Status)
	assert.Empty(t, rig.events.events)
}

func TestProcessPDF_ParseFailure(t *testing.T) {
	rig := newTestRig(t, "")
	rig.extractor.err = errors.New("xref table broken")

	_, err := rig.processor.ProcessPDF(context.Background(), ExtractionRequest{Filename: "broken.pdf", Data: []byte("%PDF")})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParseTextFailed)
	assert.False(t, IsClientError(err))
	assert.Contains(t, err.Error(), "xref table broken")

	rows := rig.records.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, models.StatusFailed, rows[0].Status)
}

func TestProcessPDF_ShortTextRejected(t *testing.T) {
	rig := newTestRig(t, "Jane Doe\nPython")

	_, err := rig.processor.ProcessPDF(context.Background(), ExtractionRequest{Filename: "short.pdf", Data: []byte("%PDF")})

	assert.ErrorIs(t, err, ErrInputTooShort)
	rows := rig.records.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, models.StatusRejected, rows[0].Status)
}

func TestProcessPDF_SinkFailuresDoNotFailRequest(t *testing.T) {
	rig := newTestRig(t, sampleResume)
	rig.files.uploadErr = errors.New("bucket unavailable")
	rig.events.err = errors.New("channel closed")

	resp, err := rig.processor.ProcessPDF(context.Background(), ExtractionRequest{Filename: "resume.pdf", Data: []byte("%PDF")})

	require.NoError(t, err)
	require.NotNil(t, resp)
	rows := rig.records.Rows()
	require.Len(t, rows, 1)
	assert.Empty(t, rows[0].ResultPath)
	assert.Len(t, rig.sink.saved, 1)
}

func TestProcessPDF_NoBackends(t *testing.T) {
	extractor := &MockPDFExtractor{text: sampleResume}
	rp := NewResumeProcessorV2(&Components{PDFExtractor: extractor}, nil, WithsetLogger(nil))

	resp, err := rp.ProcessPDF(context.Background(), ExtractionRequest{Filename: "resume.pdf", Data: []byte("%PDF")})

	require.NoError(t, err)
	assert.True(t, resp.Skills.Contains("Python"))
}

func TestProcessPDF_NoExtractor(t *testing.T) {
	rp := newTextProcessor(true)

	_, err := rp.ProcessPDF(context.Background(), ExtractionRequest{Filename: "resume.pdf", Data: []byte("%PDF")})

	assert.ErrorIs(t, err, ErrParseTextFailed)
}

func TestProcessStoredPDF_SkipsOriginalUpload(t *testing.T) {
	rig := newTestRig(t, sampleResume)
	key := storage.ResumeObjectKey("sub-w", ".pdf")
	rig.files.objects[key] = []byte("%PDF stored")

	resp, err := rig.processor.ProcessStoredPDF(context.Background(), storage.ExtractionRequestMessage{
		SubmissionUUID: "sub-w",
		ObjectKey:      key,
	})
	require.NoError(t, err)
	require.NotNil(t, resp)

	rows := rig.records.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, key, rows[0].OriginalFilePath)
	assert.Equal(t, "original.pdf", rows[0].OriginalFilename)
	assert.Equal(t, "worker", rows[0].Source)
	assert.Len(t, rig.files.objects, 2)
}

func TestBuildPDFExtractor(t *testing.T) {
	cfg := &config.Config{}
	cfg.PDF.Engine = " Ledongthuc "

	extractor, err := BuildPDFExtractor(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &parser.LedongthucPDFTextExtractor{}, extractor)

	cfg.PDF.Engine = "tika"
	_, err = BuildPDFExtractor(context.Background(), cfg)
	assert.Error(t, err)
}

func TestCreateProcessorFromConfig_NilConfig(t *testing.T) {
	_, err := CreateProcessorFromConfig(context.Background(), nil, nil)
	assert.Error(t, err)
}

func TestWithcompStorage_SkipsNilBackends(t *testing.T) {
	comp := &Components{}
	WithcompStorage(&storage.Storage{})(comp)

	assert.Nil(t, comp.Cache)
	assert.Nil(t, comp.Files)
	assert.Nil(t, comp.Records)
	assert.Nil(t, comp.Events)
	assert.Nil(t, comp.Sink)
}
