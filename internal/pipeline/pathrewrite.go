package pipeline

import (
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// RewriteImageSources resolves relative image sources against base.
// If base is empty, returns the HTML unchanged.
//
// base may be:
//   - an absolute http(s) URL, typically the image host the paste target
//     can fetch from: "img/a.png" becomes "https://cdn.example.com/post/img/a.png"
//   - a local directory, for the editor preview: "img/a.png" becomes a file:// URL,
//     provided the resolved path stays inside that directory
//
// Absolute URLs, data: URIs, protocol-relative URLs and anchors are left alone.
func RewriteImageSources(htmlContent, base string) (string, error) {
	if base == "" {
		return htmlContent, nil
	}

	resolve, err := newSourceResolver(base)
	if err != nil {
		return "", err
	}

	doc, err := parseFragment(htmlContent)
	if err != nil {
		return "", err
	}

	rewriteImages(doc, resolve)

	return renderChildren(doc)
}

// newSourceResolver returns a function mapping a relative source to its
// rewritten form, or "" when the source must be left as is.
func newSourceResolver(base string) (func(string) string, error) {
	if strings.HasPrefix(base, "http://") || strings.HasPrefix(base, "https://") {
		baseURL, err := url.Parse(base)
		if err != nil {
			return nil, err
		}
		// Without a trailing slash the last path segment would be replaced.
		if !strings.HasSuffix(baseURL.Path, "/") {
			baseURL.Path += "/"
		}
		return func(src string) string {
			ref, err := url.Parse(src)
			if err != nil {
				return ""
			}
			return baseURL.ResolveReference(ref).String()
		}, nil
	}

	absDir, err := filepath.Abs(base)
	if err != nil {
		return nil, err
	}
	return func(src string) string {
		absPath := filepath.Join(absDir, filepath.FromSlash(src))
		if !isPathUnderDir(absPath, absDir) {
			return ""
		}
		return pathToFileURL(absPath)
	}, nil
}

// rewriteImages traverses the DOM and rewrites img[src].
func rewriteImages(n *html.Node, resolve func(string) string) {
	if n.Type == html.ElementNode && n.Data == "img" {
		if src, ok := getAttr(n, "src"); ok && isRelativePath(src) {
			if rewritten := resolve(src); rewritten != "" {
				setAttr(n, "src", rewritten)
			}
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rewriteImages(c, resolve)
	}
}

// isRelativePath returns true if the path should be rewritten.
func isRelativePath(path string) bool {
	if path == "" {
		return false
	}

	lower := strings.ToLower(path)
	for _, prefix := range []string{"http://", "https://", "file://", "data:", "//", "#", "/"} {
		if strings.HasPrefix(lower, prefix) {
			return false
		}
	}

	return !filepath.IsAbs(path)
}

// isPathUnderDir checks if absPath is under dir (prevents path traversal).
func isPathUnderDir(absPath, dir string) bool {
	cleanPath := filepath.Clean(absPath)
	cleanDir := filepath.Clean(dir)

	if !strings.HasSuffix(cleanDir, string(filepath.Separator)) {
		cleanDir += string(filepath.Separator)
	}

	return strings.HasPrefix(cleanPath+string(filepath.Separator), cleanDir)
}

// pathToFileURL converts an absolute path to a file:// URL.
func pathToFileURL(absPath string) string {
	u := url.URL{
		Scheme: "file",
		Path:   filepath.ToSlash(absPath),
	}
	return u.String()
}
