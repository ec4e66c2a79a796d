package fs

import (
	"fmt"
	"html"
	"os"

	"github.com/fwojciec/docsearch"
)

// DefaultInstrumentationSrc is the script that logs reader behavior inside
// stored pages.
const DefaultInstrumentationSrc = "/assets/js/neurone-iframe-util.js"

// Ensure Instrumenter implements docsearch.Instrumenter at compile time.
var _ docsearch.Instrumenter = (*Instrumenter)(nil)

// Instrumenter appends a script reference to the end of stored pages.
type Instrumenter struct {
	src string
}

// NewInstrumenter creates an Instrumenter referencing src.
func NewInstrumenter(src string) *Instrumenter {
	return &Instrumenter{src: src}
}

// Instrument appends the script tag to the file at path.
func (i *Instrumenter) Instrument(path string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		return docsearch.Errorf(docsearch.EINTEGRITY, "failed to open %s: %v", path, err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "<script src=\"%s\"></script>\n", html.EscapeString(i.src)); err != nil {
		return docsearch.Errorf(docsearch.EUNAVAILABLE, "failed to append script to %s: %v", path, err)
	}
	return nil
}
