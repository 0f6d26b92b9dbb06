package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// reflowSuffix is inserted before the extension of re-flowed files.
const reflowSuffix = ".reflow"

// runReflowCmd rewrites an existing HTML document into the inline subset.
func runReflowCmd(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseReflowFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return fmt.Errorf("%w: reflow expects one HTML file or -", ErrUsage)
	}
	inputPath := positional[0]
	if inputPath != stdioPath && !isHTMLExt(filepath.Ext(inputPath)) {
		return fmt.Errorf("%w: reflow expects .html or .htm, got %q", ErrUsage, filepath.Ext(inputPath))
	}

	envCfg := loadEnvConfig()
	cfg, err := loadConfig(flags.common, envCfg)
	if err != nil {
		return err
	}
	applyEnvConfig(envCfg, cfg)
	mergeThemeFlags(flags.theme, flags.set, cfg)
	if err := validateConfig(cfg); err != nil {
		return err
	}

	outputPath := flags.output.path
	toStdout := flags.output.stdout || outputPath == stdioPath || (inputPath == stdioPath && outputPath == "")
	if !toStdout && outputPath == "" {
		outputPath = reflowOutputPath(inputPath)
	}

	log, err := newLogger(logLevel(flags.common, cfg.Log.Level), toStdout, env)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	conv, err := newConverter(cfg, log)
	if err != nil {
		return err
	}

	content, err := readSource(inputPath, env)
	if err != nil {
		return err
	}

	out, err := conv.Reflow(ctx, content, !flags.noSanitize)
	if err != nil {
		return err
	}

	if toStdout {
		if _, err := fmt.Fprint(env.Stdout, out); err != nil {
			return fmt.Errorf("%w: %v", ErrWriteOutput, err)
		}
		return nil
	}
	if err := writeOutput(outputPath, []byte(out)); err != nil {
		return err
	}
	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Created %s\n", outputPath)
	}
	return nil
}

// reflowOutputPath places the result next to the input: page.html -> page.reflow.html.
func reflowOutputPath(inputPath string) string {
	ext := filepath.Ext(inputPath)
	return strings.TrimSuffix(inputPath, ext) + reflowSuffix + ext
}

// isHTMLExt reports whether ext (with dot) is an HTML extension.
func isHTMLExt(ext string) bool {
	switch strings.ToLower(ext) {
	case ".html", ".htm":
		return true
	}
	return false
}

// readSource reads a named file, or stdin for "-".
func readSource(path string, env *Environment) (string, error) {
	if path == stdioPath {
		return readInput(env.Stdin)
	}
	return readFile(path)
}
