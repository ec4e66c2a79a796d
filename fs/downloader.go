package fs

import (
	"context"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/fwojciec/docsearch"
	"golang.org/x/sync/errgroup"
)

// Storage areas under the asset root.
const (
	IndexableArea = "downloadedDocs"
	PreviewArea   = "previewDocs"

	// PreviewSlot is the single reusable directory of the preview area.
	PreviewSlot = "currentDocument"
)

// DefaultConcurrency is the number of assets fetched in parallel.
const DefaultConcurrency = 4

// embedPattern matches comment-widget hosts whose references are stripped
// from downloaded pages.
var embedPattern = regexp.MustCompile(`(https?://)(\w+)(.disqus.com)`)

// Ensure Downloader implements docsearch.Downloader at compile time.
var _ docsearch.Downloader = (*Downloader)(nil)

// Downloader mirrors pages and their direct assets under an asset root.
// Files are written to "<target>.tmp" and renamed onto the target only
// after the whole page was retrieved.
type Downloader struct {
	root         string
	pageFetcher  docsearch.Fetcher
	assetFetcher docsearch.Fetcher
	linker       docsearch.AssetLinker
	concurrency  int
	logger       *slog.Logger
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithPageFetcher retrieves root pages with f instead of the asset fetcher,
// e.g. to render them in a browser.
func WithPageFetcher(f docsearch.Fetcher) Option {
	return func(d *Downloader) {
		d.pageFetcher = f
	}
}

// WithConcurrency sets how many assets are fetched in parallel.
func WithConcurrency(n int) Option {
	return func(d *Downloader) {
		d.concurrency = max(n, 1)
	}
}

// WithLogger reports skipped assets to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Downloader) {
		d.logger = logger
	}
}

// NewDownloader creates a Downloader storing files under root.
func NewDownloader(root string, fetcher docsearch.Fetcher, linker docsearch.AssetLinker, opts ...Option) *Downloader {
	d := &Downloader{
		root:         root,
		pageFetcher:  fetcher,
		assetFetcher: fetcher,
		linker:       linker,
		concurrency:  DefaultConcurrency,
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Init creates the storage areas.
func (d *Downloader) Init() error {
	for _, area := range []string{IndexableArea, PreviewArea} {
		if err := os.MkdirAll(filepath.Join(d.root, area), 0o755); err != nil {
			return docsearch.Errorf(docsearch.EUNAVAILABLE, "failed to create %s: %v", area, err)
		}
	}
	return nil
}

// Download implements docsearch.Downloader.
func (d *Downloader) Download(ctx context.Context, name, sourceURL string, indexable bool) (*docsearch.DownloadResult, error) {
	area, slot := PreviewArea, PreviewSlot
	if indexable {
		if err := validateName(name); err != nil {
			return nil, err
		}
		area, slot = IndexableArea, name
	}

	target := filepath.Join(d.root, area, slot)
	staging := target + ".tmp"
	for _, dir := range []string{target, staging} {
		if err := os.RemoveAll(dir); err != nil {
			return nil, docsearch.Errorf(docsearch.EUNAVAILABLE, "failed to clear %s: %v", dir, err)
		}
	}

	res, err := d.pageFetcher.Fetch(ctx, sourceURL)
	if err != nil {
		return nil, err
	}

	rootRel, err := d.mirror(ctx, res, staging)
	if err != nil {
		_ = os.RemoveAll(staging)
		return nil, err
	}

	if err := os.Rename(staging, target); err != nil {
		_ = os.RemoveAll(staging)
		return nil, docsearch.Errorf(docsearch.EUNAVAILABLE, "failed to move download into place: %v", err)
	}

	fullPath, err := filepath.Abs(filepath.Join(target, filepath.FromSlash(rootRel)))
	if err != nil {
		return nil, err
	}
	return &docsearch.DownloadResult{
		RootURL:  res.URL,
		Route:    path.Join(area, slot, rootRel),
		FullPath: fullPath,
	}, nil
}

// mirror writes the page in res and its assets below dir and returns the
// page's relative path.
func (d *Downloader) mirror(ctx context.Context, res *docsearch.Resource, dir string) (string, error) {
	html := embedPattern.ReplaceAllString(string(toUTF8(res.Body, res.ContentType)), "")

	rootRel, err := MirrorPath(res.URL, true)
	if err != nil {
		return "", err
	}

	assets, err := d.linker.FindAssets(html, res.URL)
	if err != nil {
		return "", err
	}

	var mu sync.Mutex
	local := make(map[string]string)
	written := map[string]bool{rootRel: true}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)
	for _, asset := range assets {
		rel, err := MirrorPath(asset.URL, false)
		if err != nil {
			continue
		}

		mu.Lock()
		dup := written[rel]
		written[rel] = true
		mu.Unlock()
		if dup {
			continue
		}

		g.Go(func() error {
			ar, err := d.assetFetcher.Fetch(gctx, asset.URL)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				d.logger.Warn("skipping asset", "url", asset.URL, "err", err)
				return nil
			}
			if err := writeFile(dir, rel, ar.Body); err != nil {
				d.logger.Warn("skipping asset", "url", asset.URL, "err", err)
				return nil
			}
			mu.Lock()
			local[asset.URL] = relativeRef(rootRel, rel)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	rewritten, err := d.linker.RewriteAssets(html, res.URL, local)
	if err != nil {
		return "", err
	}

	if err := writeFile(dir, rootRel, []byte(rewritten)); err != nil {
		return "", err
	}
	return rootRel, nil
}

// Remove implements docsearch.Downloader.
func (d *Downloader) Remove(ctx context.Context, name string) error {
	if err := validateName(name); err != nil {
		return err
	}

	target := filepath.Join(d.root, IndexableArea, name)
	if _, err := os.Stat(target); os.IsNotExist(err) {
		return docsearch.Errorf(docsearch.ENOTFOUND, "no files stored for document %q", name)
	}
	if err := os.RemoveAll(target); err != nil {
		return docsearch.Errorf(docsearch.EUNAVAILABLE, "failed to remove %s: %v", target, err)
	}
	return nil
}

func writeFile(dir, rel string, data []byte) error {
	full := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return docsearch.Errorf(docsearch.EUNAVAILABLE, "failed to create directory for %s: %v", rel, err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return docsearch.Errorf(docsearch.EUNAVAILABLE, "failed to write %s: %v", rel, err)
	}
	return nil
}

// validateName rejects names that cannot be used as a single directory.
func validateName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.HasSuffix(name, ".tmp") {
		return docsearch.Errorf(docsearch.EINVALID, "invalid document name %q", name)
	}
	return nil
}
