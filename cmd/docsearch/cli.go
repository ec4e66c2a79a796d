package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/fwojciec/docsearch"
)

// SchemaSetter adds missing field definitions to the external index.
type SchemaSetter interface {
	SetupSchema(ctx context.Context) ([]string, error)
}

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
	Config *Config

	Documents   docsearch.DocumentService
	Index       docsearch.Index
	Search      docsearch.SearchService
	Acquisition docsearch.AcquisitionService

	// Schema is nil when the embedded index is in use.
	Schema SchemaSetter

	// Metrics serves the Prometheus registry.
	Metrics http.Handler
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config string `short:"c" type:"path" help:"YAML configuration file"`

	Serve       ServeCmd       `cmd:"" help:"Serve the HTTP API and cached pages"`
	Acquire     AcquireCmd     `cmd:"" help:"Download, store and index a web page"`
	Preview     PreviewCmd     `cmd:"" help:"Download a page into the preview slot without storing it"`
	Delete      DeleteCmd      `cmd:"" help:"Delete a document, its files and its index entry"`
	Search      SearchCmd      `cmd:"" help:"Search indexed documents"`
	Refresh     RefreshCmd     `cmd:"" help:"Rebuild the index from stored documents"`
	List        ListCmd        `cmd:"" help:"List stored documents"`
	Show        ShowCmd        `cmd:"" help:"Show a stored document"`
	SetupSchema SetupSchemaCmd `cmd:"" name:"setup-schema" help:"Add missing field definitions to the Solr core"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr         string `help:"Bind address (defaults to DOCSEARCH_ADDR)"`
	NoRegenerate bool   `name:"no-regenerate" help:"Skip rebuilding the index at startup"`
}

// RequestFlags are the page metadata accepted by acquire and preview.
type RequestFlags struct {
	Name      string   `arg:"" help:"Document name"`
	URL       string   `arg:"" help:"Page URL"`
	Title     string   `short:"t" help:"Document title (defaults to the page title)"`
	Locale    string   `short:"l" help:"Document locale"`
	Tags      []string `short:"T" name:"tag" help:"Tag (repeatable)"`
	Keywords  []string `short:"k" name:"keyword" help:"Keyword (repeatable)"`
	Relevant  bool     `short:"r" help:"Mark the document as relevant"`
	MaskedURL string   `name:"masked-url" help:"URL shown to readers instead of the source"`
	Snippet   string   `short:"s" help:"Search snippet (defaults to the page summary)"`
}

func (f *RequestFlags) request() *docsearch.AcquireRequest {
	return &docsearch.AcquireRequest{
		URL:           f.URL,
		Name:          f.Name,
		Title:         f.Title,
		Locale:        f.Locale,
		Relevant:      f.Relevant,
		Tags:          f.Tags,
		Keywords:      f.Keywords,
		MaskedURL:     f.MaskedURL,
		SearchSnippet: f.Snippet,
	}
}

// AcquireCmd is the "acquire" subcommand.
type AcquireCmd struct {
	RequestFlags `embed:""`
}

// PreviewCmd is the "preview" subcommand.
type PreviewCmd struct {
	RequestFlags `embed:""`
}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	Name string `arg:"" help:"Document name"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Query  string   `arg:"" help:"Search terms"`
	Page   int      `short:"p" default:"0" help:"Result page (0-based)"`
	Size   int      `short:"n" default:"10" help:"Results per page"`
	Locale string   `short:"l" help:"Restrict to locale"`
	Tags   []string `short:"T" name:"tag" help:"Require tag (repeatable)"`
}

// RefreshCmd is the "refresh" subcommand.
type RefreshCmd struct{}

// ListCmd is the "list" subcommand.
type ListCmd struct {
	Locale string `short:"l" help:"Only documents with this locale"`
}

// ShowCmd is the "show" subcommand.
type ShowCmd struct {
	Name string `arg:"" help:"Document name"`
	Full bool   `help:"Show the full indexed body"`
}

// SetupSchemaCmd is the "setup-schema" subcommand.
type SetupSchemaCmd struct{}
