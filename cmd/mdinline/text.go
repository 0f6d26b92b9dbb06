package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alnah/go-mdinline"
)

// runTextCmd prints the plain-text rendering of a Markdown or HTML file.
func runTextCmd(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseTextFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return fmt.Errorf("%w: text expects one file or -", ErrUsage)
	}
	inputPath := positional[0]

	envCfg := loadEnvConfig()
	cfg, err := loadConfig(flags.common, envCfg)
	if err != nil {
		return err
	}
	applyEnvConfig(envCfg, cfg)

	toStdout := flags.output.path == "" || flags.output.path == stdioPath || flags.output.stdout
	log, err := newLogger(logLevel(flags.common, cfg.Log.Level), toStdout, env)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	content, err := readSource(inputPath, env)
	if err != nil {
		return err
	}

	var text string
	if isHTMLInput(inputPath, content) {
		text, err = mdinline.PlainText(content)
		if err != nil {
			return err
		}
	} else {
		conv, err := mdinline.NewConverter(mdinline.WithLogger(log))
		if err != nil {
			return err
		}
		result, err := conv.Convert(ctx, mdinline.Input{Markdown: content, Preview: true})
		if err != nil {
			return err
		}
		text = result.Text
	}

	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	if toStdout {
		if _, err := fmt.Fprint(env.Stdout, text); err != nil {
			return fmt.Errorf("%w: %v", ErrWriteOutput, err)
		}
		return nil
	}
	return writeOutput(flags.output.path, []byte(text))
}

// isHTMLInput decides how to read the input: by extension for files,
// by a leading tag for stdin.
func isHTMLInput(path, content string) bool {
	if path == stdioPath {
		return strings.HasPrefix(strings.TrimSpace(content), "<")
	}
	return isHTMLExt(filepath.Ext(path))
}
