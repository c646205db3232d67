package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"jobai-go/internal/config"
	"jobai-go/internal/logger"
	"jobai-go/internal/metrics"
	"jobai-go/internal/processor"
	"jobai-go/internal/storage"
	"jobai-go/internal/types"
)

func main() {
	var (
		inputPath    string
		outputPath   string
		configPath   string
		engine       string
		sampleConfig string
		textInput    bool
	)
	pflag.StringVarP(&inputPath, "file", "f", "", "Resume to extract (PDF, or plain text with --text)")
	pflag.StringVarP(&outputPath, "output", "o", "", "Write the JSON result here instead of stdout")
	pflag.StringVarP(&configPath, "config", "c", "", "Path to config file")
	pflag.StringVar(&engine, "engine", "", "PDF engine: eino or ledongthuc (overrides pdf.engine)")
	pflag.StringVar(&sampleConfig, "sample-config", "", "Write a sample config to this path and exit")
	pflag.BoolVar(&textInput, "text", false, "Treat the input file as plain text")
	pflag.Parse()

	if sampleConfig != "" {
		if err := config.CreateSampleConfig(sampleConfig); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write sample config: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "sample config written to %s\n", sampleConfig)
		return
	}

	if inputPath == "" {
		fmt.Fprintln(os.Stderr, "usage: jobai-cli -f resume.pdf [-o out.json] [--text] [-c config.yaml] [--engine eino|ledongthuc]")
		pflag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	// Logs go to stderr so stdout stays valid JSON.
	logger.Logger = logger.New(logger.Config(cfg.Logger), os.Stderr)
	if engine != "" {
		cfg.PDF.Engine = engine
	}

	resp, err := run(context.Background(), cfg, inputPath, textInput)
	if err != nil {
		logger.Error().Err(err).Str("file", inputPath).Msg("extraction failed")
		os.Exit(1)
	}

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to encode result")
	}

	if outputPath == "" {
		fmt.Println(string(out))
		return
	}
	if err := os.WriteFile(outputPath, append(out, '\n'), 0o644); err != nil {
		logger.Fatal().Err(err).Str("path", outputPath).Msg("failed to write result")
	}
	logger.Info().Str("path", outputPath).Msg("result written")
}

func run(ctx context.Context, cfg *config.Config, inputPath string, textInput bool) (*types.ExtractionResponse, error) {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", inputPath, err)
	}

	compOpts := []processor.ComponentOpt{}
	if cfg.Output.Enabled {
		sink, err := storage.NewJSONSink(cfg.Output.Dir)
		if err != nil {
			return nil, err
		}
		compOpts = append(compOpts, processor.WithcompSink(sink))
	}
	if !textInput {
		extractor, err := processor.BuildPDFExtractor(ctx, cfg)
		if err != nil {
			return nil, err
		}
		compOpts = append(compOpts, processor.WithcompPdfextractor(extractor))
	}

	rp, err := processor.CreateProcessor(ctx, compOpts, []processor.SettingOpt{
		processor.WithsetParallel(cfg.Extraction.Parallel),
		processor.WithsetMaxUploadBytes(cfg.Upload.MaxBytes()),
		processor.WithsetTimeout(config.GetDuration(cfg.Extraction.Timeout, 0)),
		processor.WithsetPDFEngine(cfg.PDF.Engine),
	})
	if err != nil {
		return nil, err
	}

	if textInput {
		return rp.ProcessText(ctx, string(data))
	}
	return rp.ProcessPDF(ctx, processor.ExtractionRequest{
		Filename: filepath.Base(inputPath),
		Data:     data,
		Source:   metrics.SourcePDF,
	})
}
