package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/alnah/go-mdinline"
	"go.uber.org/multierr"
)

// CLIConverter is the interface for the conversion service.
// *mdinline.Converter is safe for concurrent use, so workers share one.
type CLIConverter interface {
	Convert(ctx context.Context, input mdinline.Input) (*mdinline.ConvertResult, error)
}

// conversionParams groups the per-file input settings shared by a batch.
type conversionParams struct {
	font         *mdinline.Font
	preview      bool
	reflow       bool
	standalone   bool
	imageBaseURL string
}

// input builds the conversion input for one document.
func (p *conversionParams) input(markdown, title string) mdinline.Input {
	return mdinline.Input{
		Markdown:     markdown,
		Font:         p.font,
		Preview:      p.preview,
		Reflow:       p.reflow,
		ImageBaseURL: p.imageBaseURL,
		Standalone:   p.standalone,
		Title:        title,
	}
}

// ConversionResult holds the outcome of a single conversion.
type ConversionResult struct {
	InputPath  string
	OutputPath string
	Err        error
	Duration   time.Duration
}

// convertBatch processes files concurrently with the given number of workers.
// Results are returned in the order of files.
func convertBatch(ctx context.Context, conv CLIConverter, files []FileToConvert, params *conversionParams, workers int) []ConversionResult {
	if len(files) == 0 {
		return nil
	}

	concurrency := max(1, min(workers, len(files)))

	results := make([]ConversionResult, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = ConversionResult{
						InputPath: files[idx].InputPath,
						Err:       ctx.Err(),
					}
					continue
				}
				results[idx] = convertFile(ctx, conv, files[idx], params)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// convertFile processes a single file and returns the result.
func convertFile(ctx context.Context, conv CLIConverter, f FileToConvert, params *conversionParams) ConversionResult {
	start := time.Now()
	result := ConversionResult{
		InputPath:  f.InputPath,
		OutputPath: f.OutputPath,
	}

	content, err := readFile(f.InputPath)
	if err == nil {
		err = convertToFile(ctx, conv, content, titleFromPath(f.InputPath), params, f.OutputPath)
	}
	result.Err = err
	result.Duration = time.Since(start)
	return result
}

// readFile reads a discovered input file.
func readFile(path string) (string, error) {
	f, err := os.Open(path) // #nosec G304 -- discovered path
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadInput, err)
	}
	defer func() { _ = f.Close() }()
	return readInput(f)
}

// batchError reports failed conversions; Unwrap exposes every cause.
type batchError struct {
	failed int
	err    error
}

func (e *batchError) Error() string {
	return fmt.Sprintf("%d conversion(s) failed", e.failed)
}

func (e *batchError) Unwrap() error { return e.err }

// ResultSummary holds the count of succeeded and failed conversions.
type ResultSummary struct {
	Succeeded int
	Failed    int
}

// countResults tallies succeeded and failed conversions.
func countResults(results []ConversionResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// reportResults prints per-file outcomes and returns a batchError wrapping
// every failure, or nil.
func reportResults(results []ConversionResult, common commonFlags, env *Environment) error {
	summary := countResults(results)
	var errs error

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", r.InputPath, r.Err))
			continue
		}

		if common.quiet {
			continue
		}

		if common.verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", r.InputPath, r.OutputPath, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !common.quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	if errs != nil {
		return &batchError{failed: summary.Failed, err: errs}
	}
	return nil
}
