package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/docsearch"
	dshttp "github.com/fwojciec/docsearch/http"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	var filter docsearch.DocumentFilter
	if c.Locale != "" {
		filter.Locale = &c.Locale
	}
	docs, err := deps.Documents.FindDocuments(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docsearch.ErrorMessage(err))
		return err
	}

	if len(docs) == 0 {
		fmt.Fprintln(deps.Stdout, "No documents found. Use 'docsearch acquire' to add one.")
		return nil
	}

	for _, d := range docs {
		fmt.Fprintf(deps.Stdout, "%s  %s  %s  %s\n", d.Name, d.Locale, d.URL, d.Title)
	}
	return nil
}

// Run executes the show command.
func (c *ShowCmd) Run(deps *Dependencies) error {
	d, err := deps.Documents.FindDocumentByName(deps.Ctx, c.Name)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docsearch.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "name:      %s\n", d.Name)
	fmt.Fprintf(deps.Stdout, "title:     %s\n", d.Title)
	fmt.Fprintf(deps.Stdout, "url:       %s\n", d.URL)
	if d.MaskedURL != "" {
		fmt.Fprintf(deps.Stdout, "masked:    %s\n", d.MaskedURL)
	}
	fmt.Fprintf(deps.Stdout, "locale:    %s\n", d.Locale)
	fmt.Fprintf(deps.Stdout, "route:     %s\n", dshttp.RouteURL(d.Route))
	fmt.Fprintf(deps.Stdout, "relevant:  %t\n", d.Relevant)
	if len(d.Tags) > 0 {
		fmt.Fprintf(deps.Stdout, "tags:      %s\n", strings.Join(d.Tags, ", "))
	}
	if len(d.Keywords) > 0 {
		fmt.Fprintf(deps.Stdout, "keywords:  %s\n", strings.Join(d.Keywords, ", "))
	}
	fmt.Fprintf(deps.Stdout, "hash:      %s\n", d.ContentHash)
	fmt.Fprintf(deps.Stdout, "date:      %s\n", d.Date.Format("2006-01-02 15:04:05"))

	body := d.IndexedBody
	if !c.Full {
		body = truncate(body, snippetPreview)
	}
	fmt.Fprintf(deps.Stdout, "\n%s\n", body)
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
