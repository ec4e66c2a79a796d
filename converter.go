package docsearch

// Converter converts HTML to plain text.
type Converter interface {
	// Convert renders the text content of html. Hyperlinks contribute their
	// text only, images are dropped and lines are not wrapped.
	Convert(html string) (string, error)
}
