package prometheus_test

import (
	"context"
	"testing"

	"github.com/fwojciec/docsearch"
	"github.com/fwojciec/docsearch/mock"
	dsprom "github.com/fwojciec/docsearch/prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMetrics(t *testing.T) (*dsprom.Metrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m, err := dsprom.NewMetrics(reg)
	require.NoError(t, err)
	return m, reg
}

func TestNewMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	_, err := dsprom.NewMetrics(reg)
	require.NoError(t, err)

	_, err = dsprom.NewMetrics(reg)
	assert.Error(t, err)
}

func TestIndex(t *testing.T) {
	t.Parallel()

	m, reg := setupMetrics(t)
	inner := &mock.Index{
		SearchFn: func(_ context.Context, _ *docsearch.Query) (*docsearch.IndexResponse, error) {
			return &docsearch.IndexResponse{}, nil
		},
		CommitFn: func(_ context.Context) error {
			return docsearch.Errorf(docsearch.EUNAVAILABLE, "solr down")
		},
	}
	idx := dsprom.NewIndex(inner, m)
	ctx := context.Background()

	_, err := idx.Search(ctx, &docsearch.Query{Query: "rain"})
	require.NoError(t, err)
	_, err = idx.Search(ctx, &docsearch.Query{Query: "snow"})
	require.NoError(t, err)
	assert.Error(t, idx.Commit(ctx))

	count, err := testutil.GatherAndCount(reg, "docsearch_operations_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	series, err := testutil.GatherAndCount(reg, "docsearch_operation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, series)
}

func TestAcquisitionService(t *testing.T) {
	t.Parallel()

	m, reg := setupMetrics(t)
	inner := &mock.AcquisitionService{
		AcquireFn: func(_ context.Context, _ *docsearch.AcquireRequest) (*docsearch.Acquisition, error) {
			return &docsearch.Acquisition{
				Document: &docsearch.Document{Name: "Rainbow"},
				Warnings: []string{"index not updated: solr down"},
			}, nil
		},
		DeleteFn: func(_ context.Context, _ string) ([]string, error) {
			return nil, docsearch.Errorf(docsearch.EINVALID, "document name required")
		},
	}
	svc := dsprom.NewAcquisitionService(inner, m)
	ctx := context.Background()

	_, err := svc.Acquire(ctx, &docsearch.AcquireRequest{Name: "Rainbow", URL: "https://example.com"})
	require.NoError(t, err)
	_, err = svc.Delete(ctx, "")
	require.Error(t, err)

	warnings, err := testutil.GatherAndCount(reg, "docsearch_acquisition_warnings_total")
	require.NoError(t, err)
	assert.Equal(t, 1, warnings)
	ops, err := testutil.GatherAndCount(reg, "docsearch_operations_total")
	require.NoError(t, err)
	assert.Equal(t, 2, ops)
}
