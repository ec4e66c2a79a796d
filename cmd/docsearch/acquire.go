package main

import (
	"fmt"
	"io"

	"github.com/fwojciec/docsearch"
)

// Run executes the acquire command.
func (c *AcquireCmd) Run(deps *Dependencies) error {
	a, err := deps.Acquisition.Acquire(deps.Ctx, c.request())
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docsearch.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Acquired %s\n", a.Document.Name)
	printAcquisition(deps.Stdout, deps.Stderr, a)
	return nil
}

// Run executes the preview command.
func (c *PreviewCmd) Run(deps *Dependencies) error {
	a, err := deps.Acquisition.Preview(deps.Ctx, c.request())
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docsearch.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Preview of %s\n", a.Document.URL)
	printAcquisition(deps.Stdout, deps.Stderr, a)
	return nil
}

func printAcquisition(stdout, stderr io.Writer, a *docsearch.Acquisition) {
	d := a.Document
	fmt.Fprintf(stdout, "  title:   %s\n", d.Title)
	fmt.Fprintf(stdout, "  route:   %s\n", d.Route)
	fmt.Fprintf(stdout, "  hash:    %s\n", d.ContentHash)
	if d.SearchSnippet != "" {
		fmt.Fprintf(stdout, "  snippet: %s\n", truncate(d.SearchSnippet, snippetPreview))
	}
	for _, w := range a.Warnings {
		fmt.Fprintf(stderr, "warning: %s\n", w)
	}
}
