package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/docsearch"
	"github.com/fwojciec/docsearch/acquire"
	"github.com/fwojciec/docsearch/fs"
	"github.com/fwojciec/docsearch/goquery"
	"github.com/fwojciec/docsearch/htmltomarkdown"
	dshttp "github.com/fwojciec/docsearch/http"
	"github.com/fwojciec/docsearch/leveldb"
	"github.com/fwojciec/docsearch/mongo"
	dsprom "github.com/fwojciec/docsearch/prometheus"
	"github.com/fwojciec/docsearch/readability"
	"github.com/fwojciec/docsearch/rod"
	"github.com/fwojciec/docsearch/search"
	dsslog "github.com/fwojciec/docsearch/slog"
	"github.com/fwojciec/docsearch/solr"
	"github.com/fwojciec/docsearch/sqlite"
	"github.com/fwojciec/docsearch/trafilatura"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Config overrides the environment when set before calling Run().
	Config *Config

	// Stores opened by Run. Only one of SQLite and Mongo is set.
	SQLite  *sqlite.DB
	Mongo   *mongo.DB
	LevelDB *leveldb.Index

	// Browser renders root pages when DOCSEARCH_BROWSER is set.
	Browser *rod.Fetcher

	// Tracing is flushed on Close.
	Tracing *sdktrace.TracerProvider

	// Services for end-to-end testing.
	DocumentService docsearch.DocumentService
	Index           docsearch.Index
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if m.Tracing != nil {
		keep(m.Tracing.Shutdown(context.Background()))
	}
	if m.Browser != nil {
		keep(m.Browser.Close())
	}
	if m.LevelDB != nil {
		keep(m.LevelDB.Close())
	}
	if m.SQLite != nil {
		keep(m.SQLite.Close())
	}
	if m.Mongo != nil {
		keep(m.Mongo.Close())
	}
	return firstErr
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("docsearch"),
		kong.Description("Acquire web pages and search them."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'docsearch --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	cfg := m.Config
	if cfg == nil {
		if cfg, err = LoadConfig(cli.Config); err != nil {
			return err
		}
	}
	deps.Config = cfg
	deps.Logger = NewLogger(cfg.Env, stderr)
	defer m.Close()

	if m.Tracing, err = newTracerProvider(cfg.Trace, stderr); err != nil {
		return err
	}

	if err := m.openStore(ctx, cfg); err != nil {
		fmt.Fprintln(stderr, "Hint: Set DOCSEARCH_DB to use a different database")
		return err
	}
	deps.Documents = m.DocumentService

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := dsprom.NewMetrics(reg)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}
	deps.Metrics = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})

	if err := m.openIndex(cfg, deps); err != nil {
		fmt.Fprintln(stderr, "Hint: Set DOCSEARCH_SOLR_HOST or DOCSEARCH_INDEX_PATH")
		return err
	}
	index := dsprom.NewIndex(dsslog.NewLoggingIndex(m.Index, deps.Logger), metrics)
	deps.Index = index

	searchSvc := search.NewService(m.DocumentService, index, search.WithLogger(deps.Logger))
	deps.Search = searchSvc

	// Only commands that download need the fetch pipeline.
	switch strings.Fields(kongCtx.Command())[0] {
	case "serve", "acquire", "preview", "delete":
		acq, err := m.acquisitionService(cfg, deps.Logger, searchSvc)
		if err != nil {
			return err
		}
		deps.Acquisition = dsprom.NewAcquisitionService(
			dsslog.NewLoggingAcquisitionService(acq, deps.Logger),
			metrics,
		)
	}

	return kongCtx.Run(deps)
}

func (m *Main) openStore(ctx context.Context, cfg *Config) error {
	if cfg.IsMongo() {
		m.Mongo = mongo.NewDB(cfg.DB, cfg.MongoDatabase)
		if err := m.Mongo.Open(ctx); err != nil {
			m.Mongo = nil
			return fmt.Errorf("failed to open database %q: %w", cfg.MongoDatabase, err)
		}
		m.DocumentService = mongo.NewDocumentService(m.Mongo)
		return nil
	}

	m.SQLite = sqlite.NewDB(cfg.DB)
	if err := m.SQLite.Open(); err != nil {
		m.SQLite = nil
		return fmt.Errorf("failed to open database at %q: %w", cfg.DB, err)
	}
	m.DocumentService = sqlite.NewDocumentService(m.SQLite)
	return nil
}

func (m *Main) openIndex(cfg *Config, deps *Dependencies) error {
	if m.Index != nil {
		return nil
	}
	if cfg.Solr.Host != "" {
		client := solr.NewClient(solr.HostURL(cfg.Solr.Host, cfg.Solr.Port), cfg.Solr.Core)
		m.Index = client
		deps.Schema = client
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.IndexPath), 0755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}
	idx, err := leveldb.Open(cfg.IndexPath)
	if err != nil {
		return err
	}
	m.LevelDB = idx
	m.Index = idx
	return nil
}

func (m *Main) acquisitionService(cfg *Config, logger *slog.Logger, searchSvc docsearch.SearchService) (*acquire.Service, error) {
	limiter := dshttp.NewHostLimiter(cfg.Fetch.RPS, 1)
	fetcher := dsslog.NewLoggingFetcher(
		dshttp.NewFetcher(dshttp.WithTimeout(cfg.Fetch.Timeout), dshttp.WithLimiter(limiter)),
		logger,
	)

	opts := []fs.Option{
		fs.WithConcurrency(cfg.Fetch.AssetConcurrency),
		fs.WithLogger(logger),
	}
	if cfg.Fetch.Browser {
		browser, err := rod.NewFetcher(rod.WithTimeout(cfg.Fetch.Timeout))
		if err != nil {
			return nil, fmt.Errorf("failed to start browser (Chrome or Chromium must be installed): %w", err)
		}
		m.Browser = browser
		opts = append(opts, fs.WithPageFetcher(dsslog.NewLoggingFetcher(browser, logger)))
	}

	downloader := fs.NewDownloader(cfg.Assets, fetcher, goquery.NewAssetLinker(), opts...)
	if err := downloader.Init(); err != nil {
		return nil, fmt.Errorf("failed to prepare asset directory %q: %w", cfg.Assets, err)
	}

	svc := &acquire.Service{
		Documents:  m.DocumentService,
		Downloader: dsslog.NewLoggingDownloader(downloader, logger),
		Sanitizer:  goquery.NewSanitizer(),
		Extractor: goquery.NewExtractor(
			htmltomarkdown.NewConverter(),
			goquery.WithSummarizer(trafilatura.NewSummarizer(), readability.NewSummarizer()),
		),
		Instrumenter: fs.NewInstrumenter(cfg.InstrumentationSrc),
		Search:       searchSvc,
		Logger:       logger,
		Tracer:       m.Tracing.Tracer(acquire.TracerName),
	}
	if cfg.Fetch.Retry {
		svc.RetryDelays = acquire.DefaultRetryDelays()
	}
	return svc, nil
}
