package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"jobai-go/internal/types"
)

// savedResult is the on-disk envelope written by JSONSink.
type savedResult struct {
	Filename    string                    `json:"filename"`
	ProcessedAt time.Time                 `json:"processed_at"`
	Data        *types.ExtractionResponse `json:"data"`
}

// JSONSink writes each extraction to its own file under a directory.
type JSONSink struct {
	dir string
	now func() time.Time
}

// NewJSONSink creates dir if needed.
func NewJSONSink(dir string) (*JSONSink, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir %s: %w", dir, err)
	}
	return &JSONSink{dir: dir, now: time.Now}, nil
}

// Save writes resp as resume_data_<timestamp>_<id>.json and returns the path.
// submissionID keeps files from the same second apart.
func (s *JSONSink) Save(_ context.Context, submissionID, originalFilename string, resp *types.ExtractionResponse) (string, error) {
	now := s.now()
	name := fmt.Sprintf("resume_data_%s", now.Format("20060102_150405"))
	if submissionID != "" {
		short := submissionID
		if len(short) > 8 {
			short = short[:8]
		}
		name += "_" + short
	}
	path := filepath.Join(s.dir, name+".json")

	data, err := json.MarshalIndent(savedResult{
		Filename:    originalFilename,
		ProcessedAt: now,
		Data:        resp,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
