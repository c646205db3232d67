package processor

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobai-go/internal/storage"
)

func requestBody(t *testing.T, msg storage.ExtractionRequestMessage) []byte {
	t.Helper()
	body, err := json.Marshal(msg)
	require.NoError(t, err)
	return body
}

func TestHandleExtractionMessage(t *testing.T) {
	key := storage.ResumeObjectKey("sub-q", ".pdf")

	tests := []struct {
		name  string
		text  string
		setup func(r *testRig)
		body  func(t *testing.T) []byte
		want  storage.Disposition
	}{
		{
			name: "success",
			text: sampleResume,
			body: func(t *testing.T) []byte {
				return requestBody(t, storage.ExtractionRequestMessage{SubmissionUUID: "sub-q", ObjectKey: key, OriginalFilename: "cv.pdf"})
			},
			want: storage.Ack,
		},
		{
			name: "malformed json",
			text: sampleResume,
			body: func(t *testing.T) []byte { return []byte("{not json") },
			want: storage.Drop,
		},
		{
			name: "missing object key",
			text: sampleResume,
			body: func(t *testing.T) []byte {
				return requestBody(t, storage.ExtractionRequestMessage{SubmissionUUID: "sub-q"})
			},
			want: storage.Drop,
		},
		{
			name: "not a pdf is acked",
			text: sampleResume,
			body: func(t *testing.T) []byte {
				return requestBody(t, storage.ExtractionRequestMessage{SubmissionUUID: "sub-q", ObjectKey: key, OriginalFilename: "cv.docx"})
			},
			want: storage.Ack,
		},
		{
			name: "too little text is acked",
			text: "Jane Doe",
			body: func(t *testing.T) []byte {
				return requestBody(t, storage.ExtractionRequestMessage{SubmissionUUID: "sub-q", ObjectKey: key})
			},
			want: storage.Ack,
		},
		{
			name:  "unparseable pdf is dropped",
			setup: func(r *testRig) { r.extractor.err = errors.New("invalid header") },
			body: func(t *testing.T) []byte {
				return requestBody(t, storage.ExtractionRequestMessage{SubmissionUUID: "sub-q", ObjectKey: key})
			},
			want: storage.Drop,
		},
		{
			name:  "download failure is requeued",
			text:  sampleResume,
			setup: func(r *testRig) { r.files.downloadErr = errors.New("connection reset") },
			body: func(t *testing.T) []byte {
				return requestBody(t, storage.ExtractionRequestMessage{SubmissionUUID: "sub-q", ObjectKey: key})
			},
			want: storage.Requeue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rig := newTestRig(t, tt.text)
			rig.files.objects[key] = []byte("%PDF queued")
			if tt.setup != nil {
				tt.setup(rig)
			}

			got := rig.processor.HandleExtractionMessage(context.Background(), tt.body(t))

			assert.Equal(t, tt.want, got, "got %s", got)
		})
	}
}

func TestHandleExtractionMessage_NoObjectStore(t *testing.T) {
	rp := NewResumeProcessorV2(&Components{PDFExtractor: &MockPDFExtractor{text: sampleResume}}, nil, WithsetLogger(nil))
	body := requestBody(t, storage.ExtractionRequestMessage{SubmissionUUID: "sub-q", ObjectKey: "resume/sub-q/original.pdf"})

	assert.Equal(t, storage.Requeue, rp.HandleExtractionMessage(context.Background(), body))
}
