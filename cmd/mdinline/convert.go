package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/alnah/go-mdinline"
	"github.com/alnah/go-mdinline/internal/config"
	"github.com/alnah/go-mdinline/internal/fileutil"
	"github.com/alnah/go-mdinline/internal/hints"
	"github.com/alnah/go-mdinline/internal/yamlutil"
	"go.uber.org/zap"
)

// stdioPath stands for stdin as input and stdout as output.
const stdioPath = "-"

// maxInputSize caps how much is read from a single input.
const maxInputSize = 32 << 20

// Sentinel errors for CLI operations.
var (
	ErrUsage            = errors.New("invalid usage")
	ErrNoInput          = errors.New("no input specified")
	ErrReadInput        = errors.New("failed to read input")
	ErrWriteOutput      = errors.New("failed to write output")
	ErrInvalidImageBase = errors.New("invalid image base")
	ErrStdoutMultiple   = errors.New("--stdout needs exactly one input file")
)

// runConvertCmd parses convert flags and runs the conversion.
func runConvertCmd(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseConvertFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	return runConvert(ctx, positional, flags, env)
}

// runConvert orchestrates the conversion process.
func runConvert(ctx context.Context, positionalArgs []string, flags *convertFlags, env *Environment) error {
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	envCfg := loadEnvConfig()
	if !flags.common.quiet {
		warnUnknownEnvVars(env.Stderr)
	}

	cfg, err := loadConfig(flags.common, envCfg)
	if err != nil {
		return err
	}
	applyEnvConfig(envCfg, cfg)
	mergeFlags(flags, cfg)
	if err := validateConfig(cfg); err != nil {
		return err
	}
	if err := validateImageBase(cfg.Render.ImageBaseURL); err != nil {
		return err
	}

	inputPath, err := resolveInputPath(positionalArgs, cfg)
	if err != nil {
		return err
	}

	outputPath := resolveOutputDir(flags.output.path, cfg)
	toStdout := flags.output.stdout || (inputPath == stdioPath && (outputPath == "" || outputPath == stdioPath))

	log, err := newLogger(logLevel(flags.common, cfg.Log.Level), toStdout, env)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	if data, err := yamlutil.Marshal(cfg); err == nil {
		log.Debug("effective config", zap.ByteString("yaml", data))
	}

	conv, err := newConverter(cfg, log)
	if err != nil {
		return err
	}

	params := &conversionParams{
		font:         fontFromConfig(cfg.Font),
		preview:      cfg.Render.Preview,
		reflow:       cfg.Render.Reflow,
		standalone:   cfg.Output.Standalone,
		imageBaseURL: cfg.Render.ImageBaseURL,
	}

	if inputPath == stdioPath {
		content, err := readInput(env.Stdin)
		if err != nil {
			return err
		}
		if toStdout {
			return convertToWriter(ctx, conv, content, "", params, env.Stdout)
		}
		return convertToFile(ctx, conv, content, "", params, outputPath)
	}

	files, err := discoverFiles(inputPath, outputPath)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: no markdown files found in %s", ErrNoInput, inputPath)
	}

	if flags.output.stdout {
		if len(files) != 1 {
			return fmt.Errorf("%w: found %d files in %s", ErrStdoutMultiple, len(files), inputPath)
		}
		content, err := readFile(files[0].InputPath)
		if err != nil {
			return err
		}
		return convertToWriter(ctx, conv, content, titleFromPath(files[0].InputPath), params, env.Stdout)
	}

	workers := flags.workers
	if !flags.set["workers"] && envCfg.Workers > 0 {
		workers = envCfg.Workers
	}
	workers = resolveWorkers(workers)
	log.Debug("converting", zap.Int("files", len(files)), zap.Int("workers", workers))

	results := convertBatch(ctx, conv, files, params, workers)
	return reportResults(results, flags.common, env)
}

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(flags *convertFlags, cfg *config.Config) {
	set := flags.set

	if set["font-family"] {
		cfg.Font.Family = flags.font.family
	}
	if set["font-size"] {
		cfg.Font.Size = flags.font.size
	}
	if set["line-height"] {
		cfg.Font.LineHeight = config.LineHeight(strings.TrimSpace(flags.font.lineHeight))
	}
	if set["letter-spacing"] {
		cfg.Font.LetterSpacing = flags.font.letterSpacing
	}

	mergeThemeFlags(flags.theme, set, cfg)

	if set["preview"] {
		cfg.Render.Preview = flags.render.preview
	}
	if set["reflow"] {
		cfg.Render.Reflow = flags.render.reflow
	}
	if set["standalone"] {
		cfg.Output.Standalone = flags.render.standalone
	}
	if set["image-base-url"] {
		cfg.Render.ImageBaseURL = flags.render.imageBaseURL
	}
}

// resolveInputPath picks the positional argument or input.defaultDir.
func resolveInputPath(args []string, cfg *config.Config) (string, error) {
	switch {
	case len(args) > 1:
		return "", fmt.Errorf("%w: expected one input, got %d", ErrUsage, len(args))
	case len(args) == 1:
		return args[0], nil
	case cfg.Input.DefaultDir != "":
		return cfg.Input.DefaultDir, nil
	default:
		return "", fmt.Errorf("%w%s", ErrNoInput, hints.ForNoInput())
	}
}

// resolveOutputDir picks --output, then output.defaultDir.
func resolveOutputDir(flagOutput string, cfg *config.Config) string {
	if flagOutput != "" {
		return flagOutput
	}
	return cfg.Output.DefaultDir
}

// readInput reads at most maxInputSize bytes from r.
func readInput(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxInputSize+1))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadInput, err)
	}
	if len(data) > maxInputSize {
		return "", fmt.Errorf("%w: input exceeds %d bytes", ErrReadInput, maxInputSize)
	}
	return string(data), nil
}

// convertToWriter converts markdown and writes the HTML to w.
func convertToWriter(ctx context.Context, conv CLIConverter, markdown, title string, params *conversionParams, w io.Writer) error {
	result, err := conv.Convert(ctx, params.input(markdown, title))
	if err != nil {
		return err
	}
	if _, err := w.Write(result.HTML); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return nil
}

// convertToFile converts markdown and writes the HTML to path atomically.
func convertToFile(ctx context.Context, conv CLIConverter, markdown, title string, params *conversionParams, path string) error {
	result, err := conv.Convert(ctx, params.input(markdown, title))
	if err != nil {
		return err
	}
	return writeOutput(path, result.HTML)
}

// writeOutput writes content to path atomically.
func writeOutput(path string, content []byte) error {
	if err := fileutil.WriteFileAtomic(path, content); err != nil {
		return fmt.Errorf("%w: %v%s", ErrWriteOutput, err, hints.ForOutputDirectory())
	}
	return nil
}

// titleFromPath derives a document title from a file name.
func titleFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Compile-time interface implementation check.
var _ CLIConverter = (*mdinline.Converter)(nil)
