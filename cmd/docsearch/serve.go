package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fwojciec/docsearch"
	dshttp "github.com/fwojciec/docsearch/http"
)

// Run executes the serve command. It blocks until the context is done or
// the process receives SIGINT or SIGTERM.
func (c *ServeCmd) Run(deps *Dependencies) error {
	ctx, stop := signal.NotifyContext(deps.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !c.NoRegenerate {
		// A stale index still serves; readers see it until the next refresh.
		if err := deps.Search.Regenerate(ctx); err != nil {
			deps.Logger.Warn("index not regenerated at startup", "err", docsearch.ErrorMessage(err))
		}
	}

	addr := c.Addr
	if addr == "" {
		addr = deps.Config.Addr
	}
	assets, err := filepath.Abs(deps.Config.Assets)
	if err != nil {
		return fmt.Errorf("failed to resolve asset root: %w", err)
	}

	s := dshttp.NewServer()
	s.Addr = addr
	s.AssetsDir = assets
	s.MetricsHandler = deps.Metrics
	s.Logger = deps.Logger
	s.AcquisitionService = deps.Acquisition
	s.SearchService = deps.Search
	s.DocumentService = deps.Documents

	if err := s.Open(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", err)
		return err
	}
	fmt.Fprintf(deps.Stdout, "Listening on %s\n", s.URL())

	<-ctx.Done()

	deps.Logger.Info("shutting down")
	return s.Close()
}
