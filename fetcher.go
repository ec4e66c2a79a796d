package docsearch

import "context"

// UserAgent is sent with every outbound page and asset request.
const UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/60.0.3112.113 Safari/537.36"

// Resource is a single retrieved network resource.
type Resource struct {
	// URL is the final URL after redirects.
	URL string

	// ContentType is the value of the Content-Type response header, if any.
	ContentType string

	Body []byte
}

// Fetcher retrieves a single resource.
type Fetcher interface {
	// Fetch retrieves the resource at url. The context controls timeout and
	// cancellation. Deadline expiry is reported as ETIMEOUT, network and
	// protocol failures as EUNAVAILABLE.
	Fetch(ctx context.Context, url string) (*Resource, error)

	// Close releases resources held by the fetcher.
	Close() error
}

// DownloadResult locates the root file of a downloaded page.
type DownloadResult struct {
	// RootURL is the final URL of the root resource.
	RootURL string

	// Route is the slash-separated path of the root file relative to the
	// asset root.
	Route string

	// FullPath is the absolute filesystem path of the root file.
	FullPath string
}

// Downloader mirrors a page and its direct assets onto local storage.
type Downloader interface {
	// Download clears any previous copy for name (or the preview slot when
	// indexable is false) and retrieves sourceURL plus the assets it
	// references into that location. A failed clear aborts before any
	// network request.
	Download(ctx context.Context, name, sourceURL string, indexable bool) (*DownloadResult, error)

	// Remove deletes the stored copy for name.
	// Returns ENOTFOUND if nothing is stored for name.
	Remove(ctx context.Context, name string) error
}

// Asset is a resource referenced by a page.
type Asset struct {
	// Ref is the reference exactly as written in the page.
	Ref string

	// URL is Ref resolved against the page URL.
	URL string
}

// AssetLinker finds and rewrites the asset references of an HTML page.
type AssetLinker interface {
	// FindAssets returns the downloadable assets referenced by html,
	// resolved against baseURL, without duplicates.
	FindAssets(html, baseURL string) ([]Asset, error)

	// RewriteAssets replaces references listed in local (keyed by resolved
	// URL) with their local relative paths.
	RewriteAssets(html, baseURL string, local map[string]string) (string, error)
}

// DomainLimiter throttles requests per domain.
type DomainLimiter interface {
	// Wait blocks until a request to domain is allowed or ctx is done.
	Wait(ctx context.Context, domain string) error
}
