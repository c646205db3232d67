package parser

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// findTestPDFFiles looks for fixture PDFs in the usual testdata directories.
func findTestPDFFiles() []string {
	searchDirs := []string{
		"testdata",
		"../testdata",
		"../../testdata",
	}

	var foundFiles []string
	for _, dir := range searchDirs {
		files, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, file := range files {
			if !file.IsDir() && strings.HasSuffix(strings.ToLower(file.Name()), ".pdf") {
				foundFiles = append(foundFiles, filepath.Join(dir, file.Name()))
			}
		}
	}
	return foundFiles
}

func TestNewEinoPDFTextExtractor(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	extractor, err := NewEinoPDFTextExtractor(ctx)
	require.NoError(t, err)
	require.NotNil(t, extractor.parser)
	assert.Equal(t, defaultParseTimeout, extractor.timeout)

	var buf bytes.Buffer
	custom := zerolog.New(&buf)
	extractor, err = NewEinoPDFTextExtractor(ctx, WithEinoLogger(custom), WithEinoTimeout(3*time.Second))
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, extractor.timeout)
}

func TestPDFExtractors_InvalidData(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	eino, err := NewEinoPDFTextExtractor(ctx)
	require.NoError(t, err)

	extractors := map[string]interface {
		ExtractTextFromBytes(context.Context, []byte, string, interface{}) (string, map[string]interface{}, error)
	}{
		EngineEino:       eino,
		EngineLedongthuc: NewLedongthucPDFTextExtractor(),
	}

	for name, ex := range extractors {
		t.Run(name, func(t *testing.T) {
			text, _, err := ex.ExtractTextFromBytes(ctx, []byte("this is not a pdf"), "junk.pdf", nil)
			assert.Error(t, err)
			assert.Empty(t, text)
		})
	}
}

func TestPDFExtractors_NonExistentFile(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	eino, err := NewEinoPDFTextExtractor(ctx)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "missing.pdf")

	_, _, err = eino.ExtractFromFile(ctx, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open PDF file")

	_, _, err = NewLedongthucPDFTextExtractor().ExtractFromFile(ctx, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open PDF file")
}

func TestPDFExtractors_Fixtures(t *testing.T) {
	files := findTestPDFFiles()
	if len(files) == 0 {
		t.Skip("no fixture PDFs found, skipping")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	eino, err := NewEinoPDFTextExtractor(ctx)
	require.NoError(t, err)

	for _, f := range files {
		t.Run(filepath.Base(f), func(t *testing.T) {
			text, meta, err := eino.ExtractFromFile(ctx, f)
			require.NoError(t, err)
			assert.NotEmpty(t, strings.TrimSpace(text))
			assert.Equal(t, f, meta["source_file_path"])
			assert.Equal(t, EngineEino, meta["engine"])
			assert.Greater(t, meta[MetaPageCount], 0)

			text, meta, err = NewLedongthucPDFTextExtractor().ExtractFromFile(ctx, f)
			if err != nil {
				t.Logf("ledongthuc could not read %s: %v", f, err)
				return
			}
			assert.NotEmpty(t, strings.TrimSpace(text))
			assert.Equal(t, EngineLedongthuc, meta["engine"])
			assert.Greater(t, meta[MetaPageCount], 0)
		})
	}
}

func TestMetaFromOptions(t *testing.T) {
	assert.Empty(t, metaFromOptions(nil))

	in := map[string]interface{}{"k": "v"}
	out := metaFromOptions(in)
	out["extra"] = 1
	assert.Equal(t, "v", out["k"])
	assert.NotContains(t, in, "extra")

	assert.Equal(t, map[string]interface{}{"original_options": 42}, metaFromOptions(42))
}
