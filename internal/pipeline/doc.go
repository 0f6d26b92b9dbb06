// Package pipeline implements the Markdown-to-platform-HTML pipeline.
//
// The stages, in the order the root mdinline package runs them:
//   - Markdown preprocessing (line normalization, ==highlight== placeholders)
//   - Markdown to inline-styled HTML via Goldmark, with a custom node
//     renderer, a per-call RenderContext for list numbering and indentation,
//     and chroma highlighting with inline styles
//   - image source rewriting against a base URL or directory
//   - the inline-style post-processor forcing font settings onto the markup
//   - the re-flow converter rewriting arbitrary HTML into sections and
//     paragraphs, without tables, lists or class-based styling
//
// The paste target strips <style> blocks, external stylesheets and most
// structural tags, so every stage emits inline style attributes only.
// Classes and data-mdi* attributes appear solely as markers that let a
// later pass recognize markup produced by an earlier one.
//
// Post-processing and re-flow are pure functions on strings. Markdown
// rendering builds its state per call, so a GoldmarkConverter may be
// shared between goroutines.
package pipeline
