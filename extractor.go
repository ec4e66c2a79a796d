package docsearch

// PageInfo holds metadata extracted from a stored HTML file.
type PageInfo struct {
	Title string

	// Route is the file's base name.
	Route string

	// ContentHash is the hex SHA-256 digest of the file bytes.
	ContentHash string

	// IndexedBody is the plain-text body with control and quote characters
	// collapsed to spaces.
	IndexedBody string

	// Snippet is a short description of the page, empty when none could be
	// derived.
	Snippet string
}

// Sanitizer neutralizes active content in a stored HTML file.
type Sanitizer interface {
	// Sanitize rewrites the file at path in place. On failure the file is
	// left untouched.
	Sanitize(path string) error
}

// Extractor reads metadata from a stored HTML file without modifying it.
type Extractor interface {
	Extract(path string) (*PageInfo, error)
}

// Summarizer produces a short description of an HTML page.
type Summarizer interface {
	Summarize(html string) (string, error)
}

// Instrumenter adds the behavior-logging script reference to a stored page.
type Instrumenter interface {
	Instrument(path string) error
}
