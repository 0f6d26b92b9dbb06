// Package mdinline converts Markdown to HTML whose styling is carried
// entirely by inline style attributes, for pasting into rich-text editors
// that strip <style> blocks, classes and most structural tags.
//
// # Quick Start
//
// Create a converter and convert markdown:
//
//	conv, err := mdinline.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := conv.Convert(ctx, mdinline.Input{
//	    Markdown: "# Hello\n\nWorld",
//	    Font:     mdinline.DefaultFont(),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("output.html", result.HTML, 0644)
//
// The result holds the HTML (result.HTML) and a plain-text rendering
// (result.Text) for the clipboard's text flavor.
//
// # Conversion Pipeline
//
// The conversion process follows these stages:
//
//  1. Markdown preprocessing (line normalization, ==highlight== syntax)
//  2. Markdown to HTML via Goldmark with custom node renderers: lists become
//     flat indented sections, code blocks become highlighted cards
//  3. Image source rewriting against Input.ImageBaseURL
//  4. Font post-processing: family, size, line height and letter spacing are
//     forced onto every text element (skipped with Input.Preview)
//  5. Optional re-flow, which removes any remaining table and list tags
//
// # Configuration
//
// Use functional options to customize the converter:
//
//	conv, err := mdinline.NewConverter(
//	    mdinline.WithTheme("ocean"),
//	    mdinline.WithCodeStyle("github"),
//	    mdinline.WithAssetPath("/path/to/custom/assets"),
//	    mdinline.WithLogger(logger),
//	)
//
// Per-conversion options are passed via Input:
//
//	result, err := conv.Convert(ctx, mdinline.Input{
//	    Markdown:     content,
//	    Font:         &mdinline.Font{Family: "serif", Size: 15, LineHeight: "1.8"},
//	    ImageBaseURL: "https://cdn.example.com/post/",
//	    Reflow:       true,
//	})
//
// # Re-flowing Existing HTML
//
// Converter.Reflow rewrites HTML produced elsewhere into the same subset:
//
//	out, err := conv.Reflow(ctx, pasted, true) // sanitize untrusted input
//
// # Custom Themes
//
// Override built-in themes using AssetLoader:
//
//	loader, err := mdinline.NewAssetLoader("/path/to/assets")
//	conv, err := mdinline.NewConverter(mdinline.WithAssetLoader(loader))
//
// Asset directory structure:
//
//	assets/
//	└── themes/
//	    └── custom.yaml
//
// Theme files set any subset of the palette; missing colors come from the
// default theme. Colors must be hex, rgb[a](), hsl[a]() or a named color.
//
// # Concurrency
//
// A Converter is safe for concurrent use: every conversion builds its own
// render state.
package mdinline
