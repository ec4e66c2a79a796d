package main

import (
	"fmt"

	"github.com/fwojciec/docsearch"
	dshttp "github.com/fwojciec/docsearch/http"
)

// snippetPreview bounds snippets and highlights printed to the terminal.
const snippetPreview = 160

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	res, err := deps.Search.Search(deps.Ctx, &docsearch.Query{
		Query:    c.Query,
		Page:     c.Page,
		PageSize: c.Size,
		Locale:   c.Locale,
		Tags:     c.Tags,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docsearch.ErrorMessage(err))
		return err
	}

	if len(res.Hits) == 0 {
		fmt.Fprintf(deps.Stdout, "No documents match %q.\n", c.Query)
		return nil
	}

	fmt.Fprintf(deps.Stdout, "%d result(s)\n", res.Total)
	for _, h := range res.Hits {
		fmt.Fprintf(deps.Stdout, "\n%s  %s\n", h.ID, h.Title)
		if route := res.Routes[h.ID]; route != "" {
			fmt.Fprintf(deps.Stdout, "  %s\n", dshttp.RouteURL(route))
		}
		for _, s := range res.Highlights[h.ID] {
			fmt.Fprintf(deps.Stdout, "  ... %s\n", truncate(s, snippetPreview))
		}
	}
	return nil
}

// Run executes the refresh command.
func (c *RefreshCmd) Run(deps *Dependencies) error {
	if err := deps.Search.Regenerate(deps.Ctx); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docsearch.ErrorMessage(err))
		return err
	}
	fmt.Fprintln(deps.Stdout, "index regenerated")
	return nil
}
