package mock

import (
	"context"

	"github.com/fwojciec/docsearch"
)

var _ docsearch.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of docsearch.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (*docsearch.Resource, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (*docsearch.Resource, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}

var _ docsearch.Downloader = (*Downloader)(nil)

// Downloader is a mock implementation of docsearch.Downloader.
type Downloader struct {
	DownloadFn func(ctx context.Context, name, sourceURL string, indexable bool) (*docsearch.DownloadResult, error)
	RemoveFn   func(ctx context.Context, name string) error
}

func (d *Downloader) Download(ctx context.Context, name, sourceURL string, indexable bool) (*docsearch.DownloadResult, error) {
	return d.DownloadFn(ctx, name, sourceURL, indexable)
}

func (d *Downloader) Remove(ctx context.Context, name string) error {
	return d.RemoveFn(ctx, name)
}

var _ docsearch.AssetLinker = (*AssetLinker)(nil)

// AssetLinker is a mock implementation of docsearch.AssetLinker.
type AssetLinker struct {
	FindAssetsFn    func(html, baseURL string) ([]docsearch.Asset, error)
	RewriteAssetsFn func(html, baseURL string, local map[string]string) (string, error)
}

func (a *AssetLinker) FindAssets(html, baseURL string) ([]docsearch.Asset, error) {
	return a.FindAssetsFn(html, baseURL)
}

func (a *AssetLinker) RewriteAssets(html, baseURL string, local map[string]string) (string, error) {
	return a.RewriteAssetsFn(html, baseURL, local)
}
