package pipeline

import (
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestRewriteImageSources - Main Function Tests
// ---------------------------------------------------------------------------

func TestRewriteImageSources(t *testing.T) {
	t.Parallel()

	// Use a consistent test directory based on OS
	sourceDir := "/docs"
	if runtime.GOOS == "windows" {
		sourceDir = `C:\docs`
	}

	tests := []struct {
		name         string
		html         string
		sourceDir    string
		wantContains []string
		wantExcludes []string
	}{
		{
			name:         "relative image with dot slash",
			html:         `<img src="./images/logo.png">`,
			sourceDir:    sourceDir,
			wantContains: []string{`src="file://`},
		},
		{
			name:         "relative image without dot slash",
			html:         `<img src="images/logo.png">`,
			sourceDir:    sourceDir,
			wantContains: []string{`src="file://`},
		},
		{
			name:         "absolute path unchanged",
			html:         `<img src="/abs/logo.png">`,
			sourceDir:    sourceDir,
			wantContains: []string{`src="/abs/logo.png"`},
		},
		{
			name:         "http URL unchanged",
			html:         `<img src="https://example.com/logo.png">`,
			sourceDir:    sourceDir,
			wantContains: []string{`src="https://example.com/logo.png"`},
		},
		{
			name:         "data URI unchanged",
			html:         `<img src="data:image/png;base64,ABC123">`,
			sourceDir:    sourceDir,
			wantContains: []string{`src="data:image/png;base64,ABC123"`},
		},
		{
			name:         "file URL unchanged",
			html:         `<img src="file:///already/absolute.png">`,
			sourceDir:    sourceDir,
			wantContains: []string{`src="file:///already/absolute.png"`},
		},
		{
			name:         "empty sourceDir returns unchanged",
			html:         `<img src="./logo.png">`,
			sourceDir:    "",
			wantContains: []string{`src="./logo.png"`},
		},
		{
			name:         "anchor link unchanged",
			html:         `<a href="#section">Link</a>`,
			sourceDir:    sourceDir,
			wantContains: []string{`href="#section"`},
		},
		{
			name:         "relative link NOT rewritten (only images are assets)",
			html:         `<a href="./other.md">Link</a>`,
			sourceDir:    sourceDir,
			wantContains: []string{`href="./other.md"`},
		},
		{
			name:         "external link unchanged",
			html:         `<a href="https://example.com">External</a>`,
			sourceDir:    sourceDir,
			wantContains: []string{`href="https://example.com"`},
		},
		{
			name:         "protocol-relative URL unchanged",
			html:         `<img src="//cdn.example.com/logo.png">`,
			sourceDir:    sourceDir,
			wantContains: []string{`src="//cdn.example.com/logo.png"`},
		},
		{
			name:         "video source NOT rewritten",
			html:         `<video src="./video.mp4"></video>`,
			sourceDir:    sourceDir,
			wantContains: []string{`src="./video.mp4"`},
		},
		{
			name:         "audio source NOT rewritten",
			html:         `<audio src="./audio.mp3"></audio>`,
			sourceDir:    sourceDir,
			wantContains: []string{`src="./audio.mp3"`},
		},
		{
			name:         "multiple images rewritten",
			html:         `<img src="./a.png"><img src="./b.png">`,
			sourceDir:    sourceDir,
			wantContains: []string{`file://`},
		},
		{
			name:         "nested elements rewritten",
			html:         `<div><p><img src="./nested.png"></p></div>`,
			sourceDir:    sourceDir,
			wantContains: []string{`src="file://`},
		},
		{
			name:         "script src NOT rewritten (security)",
			html:         `<script src="./script.js"></script>`,
			sourceDir:    sourceDir,
			wantContains: []string{`src="./script.js"`},
		},
		{
			name:         "empty src attribute unchanged",
			html:         `<img src="">`,
			sourceDir:    sourceDir,
			wantContains: []string{`src=""`},
		},
		{
			name:         "image without src unchanged",
			html:         `<img alt="no src">`,
			sourceDir:    sourceDir,
			wantContains: []string{`alt="no src"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := RewriteImageSources(tt.html, tt.sourceDir)
			if err != nil {
				t.Fatalf("RewriteImageSources() error = %v", err)
			}

			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("RewriteImageSources() = %q, want to contain %q", got, want)
				}
			}

			for _, exclude := range tt.wantExcludes {
				if strings.Contains(got, exclude) {
					t.Errorf("RewriteImageSources() = %q, should not contain %q", got, exclude)
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRewriteImageSources_PathTraversal - Security Tests
// ---------------------------------------------------------------------------

func TestRewriteImageSources_PathTraversal(t *testing.T) {
	t.Parallel()

	sourceDir := "/docs"
	if runtime.GOOS == "windows" {
		sourceDir = `C:\docs`
	}

	tests := []struct {
		name         string
		html         string
		wantContains string
	}{
		{
			name:         "parent directory traversal blocked",
			html:         `<img src="../../../etc/passwd">`,
			wantContains: `src="../../../etc/passwd"`,
		},
		{
			name:         "double dot in middle blocked",
			html:         `<img src="images/../../../etc/passwd">`,
			wantContains: `src="images/../../../etc/passwd"`,
		},
		{
			name:         "valid subdirectory allowed",
			html:         `<img src="./images/logo.png">`,
			wantContains: `src="file://`,
		},
		{
			name:         "nested valid path allowed",
			html:         `<img src="images/sub/deep/file.png">`,
			wantContains: `src="file://`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := RewriteImageSources(tt.html, sourceDir)
			if err != nil {
				t.Fatalf("RewriteImageSources() error = %v", err)
			}

			if !strings.Contains(got, tt.wantContains) {
				t.Errorf("RewriteImageSources() = %q, want to contain %q", got, tt.wantContains)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRewriteImageSources_Fragment - Fragment Round Trip
// ---------------------------------------------------------------------------

func TestRewriteImageSources_Fragment(t *testing.T) {
	t.Parallel()

	sourceDir := "/docs"
	if runtime.GOOS == "windows" {
		sourceDir = `C:\docs`
	}

	html := `<p>Hello</p><img src="./logo.png"><p>World</p>`

	got, err := RewriteImageSources(html, sourceDir)
	if err != nil {
		t.Fatalf("RewriteImageSources() error = %v", err)
	}

	if strings.Contains(got, "<html>") || strings.Contains(got, "<body>") {
		t.Error("Fragment should not be wrapped in <html><body>")
	}

	// Original structure preserved
	if !strings.Contains(got, "<p>Hello</p>") {
		t.Error("Fragment should preserve content")
	}

	// Image rewritten
	if !strings.Contains(got, `src="file://`) {
		t.Error("Image path should be rewritten")
	}
}

// ---------------------------------------------------------------------------
// TestRewriteImageSources_AttributePreservation - Attribute Handling
// ---------------------------------------------------------------------------

func TestRewriteImageSources_PreservesAttributes(t *testing.T) {
	t.Parallel()

	sourceDir := "/docs"
	if runtime.GOOS == "windows" {
		sourceDir = `C:\docs`
	}

	html := `<img src="./logo.png" alt="Logo" class="logo" width="100">`

	got, err := RewriteImageSources(html, sourceDir)
	if err != nil {
		t.Fatalf("RewriteImageSources() error = %v", err)
	}

	// All attributes should be preserved
	checks := []string{`alt="Logo"`, `class="logo"`, `width="100"`, `src="file://`}
	for _, check := range checks {
		if !strings.Contains(got, check) {
			t.Errorf("Should contain %q, got %q", check, got)
		}
	}
}

// ---------------------------------------------------------------------------
// TestRewriteImageSources_URLEncoding - Special Characters
// ---------------------------------------------------------------------------

func TestRewriteImageSources_URLEncoding(t *testing.T) {
	t.Parallel()

	sourceDir := "/docs"
	if runtime.GOOS == "windows" {
		sourceDir = `C:\docs`
	}

	tests := []struct {
		name         string
		html         string
		wantContains string
	}{
		{
			name:         "path with spaces encoded",
			html:         `<img src="./my images/logo.png">`,
			wantContains: `my%20images`,
		},
		{
			name:         "path with special chars encoded",
			html:         `<img src="./docs/file#1.png">`,
			wantContains: `file%231.png`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := RewriteImageSources(tt.html, sourceDir)
			if err != nil {
				t.Fatalf("RewriteImageSources() error = %v", err)
			}

			if !strings.Contains(got, tt.wantContains) {
				t.Errorf("RewriteImageSources() = %q, want to contain %q", got, tt.wantContains)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRewriteImageSources_BaseURL - Image Host Base
// ---------------------------------------------------------------------------

func TestRewriteImageSources_BaseURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		html string
		base string
		want string
	}{
		{
			name: "relative source joined to base path",
			html: `<img src="img/a.png">`,
			base: "https://cdn.example.com/post",
			want: `src="https://cdn.example.com/post/img/a.png"`,
		},
		{
			name: "base with trailing slash",
			html: `<img src="./a.png">`,
			base: "https://cdn.example.com/post/",
			want: `src="https://cdn.example.com/post/a.png"`,
		},
		{
			name: "parent reference resolved",
			html: `<img src="../shared/a.png">`,
			base: "https://cdn.example.com/post/2024/",
			want: `src="https://cdn.example.com/post/shared/a.png"`,
		},
		{
			name: "absolute source untouched",
			html: `<img src="https://other.example.com/a.png">`,
			base: "https://cdn.example.com/",
			want: `src="https://other.example.com/a.png"`,
		},
		{
			name: "inline style kept",
			html: `<img src="a.png" style="max-width:100%;">`,
			base: "http://localhost:8080",
			want: `src="http://localhost:8080/a.png" style="max-width:100%;"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := RewriteImageSources(tt.html, tt.base)
			if err != nil {
				t.Fatalf("RewriteImageSources() error = %v", err)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("RewriteImageSources() = %q, want to contain %q", got, tt.want)
			}
		})
	}
}

func TestRewriteImageSources_InvalidBaseURL(t *testing.T) {
	t.Parallel()

	if _, err := RewriteImageSources(`<img src="a.png">`, "http://[::1"); err == nil {
		t.Error("RewriteImageSources() with malformed base URL should return an error")
	}
}

// ---------------------------------------------------------------------------
// TestIsRelativePath - Helper Function Tests
// ---------------------------------------------------------------------------

func TestIsRelativePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want bool
	}{
		// Relative paths (should return true)
		{"./image.png", true},
		{"images/logo.png", true},
		{"../parent.png", true},
		{"file.png", true},
		{"sub/dir/file.png", true},

		// Non-relative paths (should return false)
		{"", false},
		{"http://example.com/img.png", false},
		{"https://example.com/img.png", false},
		{"file:///abs/path.png", false},
		{"data:image/png;base64,ABC", false},
		{"//cdn.example.com/img.png", false},
		{"#anchor", false},
		{"/absolute/path.png", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			if got := isRelativePath(tt.path); got != tt.want {
				t.Errorf("isRelativePath(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestIsPathUnderDir - Security Helper Tests
// ---------------------------------------------------------------------------

func TestIsPathUnderDir(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		absPath string
		dir     string
		want    bool
	}{
		{
			name:    "direct child",
			absPath: "/docs/image.png",
			dir:     "/docs",
			want:    true,
		},
		{
			name:    "nested child",
			absPath: "/docs/images/logo.png",
			dir:     "/docs",
			want:    true,
		},
		{
			name:    "parent directory",
			absPath: "/etc/passwd",
			dir:     "/docs",
			want:    false,
		},
		{
			name:    "sibling directory",
			absPath: "/other/file.png",
			dir:     "/docs",
			want:    false,
		},
		{
			name:    "dir with trailing slash",
			absPath: "/docs/image.png",
			dir:     "/docs/",
			want:    true,
		},
		{
			name:    "similar prefix but different dir",
			absPath: "/docs-other/image.png",
			dir:     "/docs",
			want:    false,
		},
		{
			name:    "exact match",
			absPath: "/docs",
			dir:     "/docs",
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// Normalize paths for the current OS
			absPath := filepath.FromSlash(tt.absPath)
			dir := filepath.FromSlash(tt.dir)

			if got := isPathUnderDir(absPath, dir); got != tt.want {
				t.Errorf("isPathUnderDir(%q, %q) = %v, want %v", absPath, dir, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestPathToFileURL - URL Generation Tests
// ---------------------------------------------------------------------------

func TestPathToFileURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		absPath string
		want    string
	}{
		{
			name:    "unix path",
			absPath: "/docs/images/logo.png",
			want:    "file:///docs/images/logo.png",
		},
		{
			name:    "path with spaces",
			absPath: "/docs/my images/logo.png",
			want:    "file:///docs/my%20images/logo.png",
		},
		{
			name:    "path with unicode",
			absPath: "/docs/日本語/logo.png",
			want:    "file:///docs/%E6%97%A5%E6%9C%AC%E8%AA%9E/logo.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// Skip Windows-specific path tests on Unix
			if runtime.GOOS == "windows" && !strings.Contains(tt.absPath, ":") {
				// On Windows, we need drive letters, skip Unix-style tests
				t.Skip("Unix path test skipped on Windows")
			}

			got := pathToFileURL(tt.absPath)
			if got != tt.want {
				t.Errorf("pathToFileURL(%q) = %q, want %q", tt.absPath, got, tt.want)
			}
		})
	}
}
