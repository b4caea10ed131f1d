package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	// Call Init multiple times to test idempotency.
	Init()
	Init()

	require.NotNil(t, crawlRunsTotal)
	require.NotNil(t, framesRenderedTotal)
	require.NotNil(t, httpRequestsTotal)
}

func TestObserveCrawl(t *testing.T) {
	Init()
	beforeOK := testutil.ToFloat64(crawlRunsTotal.WithLabelValues(StatusSuccess))
	beforeFail := testutil.ToFloat64(crawlRunsTotal.WithLabelValues(StatusFailure))

	ObserveCrawl(StatusSuccess, 71, 250*time.Millisecond)
	ObserveCrawl(StatusFailure, 0, 0)

	assert.InDelta(t, beforeOK+1, testutil.ToFloat64(crawlRunsTotal.WithLabelValues(StatusSuccess)), 1e-9)
	assert.InDelta(t, beforeFail+1, testutil.ToFloat64(crawlRunsTotal.WithLabelValues(StatusFailure)), 1e-9)
	// A failed run leaves the last successful count in place.
	assert.InDelta(t, 71, testutil.ToFloat64(crawlRecordsParsed), 1e-9)
	assert.Positive(t, testutil.CollectAndCount(crawlFetchDurationSeconds))
}

func TestObserveCounters(t *testing.T) {
	Init()
	before := testutil.ToFloat64(framesRenderedTotal.WithLabelValues("min-max"))
	ObserveFrame("min-max")
	ObserveFrame("min-max")
	assert.InDelta(t, before+2, testutil.ToFloat64(framesRenderedTotal.WithLabelValues("min-max")), 1e-9)

	beforeArtifacts := testutil.ToFloat64(artifactsWrittenTotal.WithLabelValues("csv"))
	ObserveArtifact("csv")
	assert.InDelta(t, beforeArtifacts+1, testutil.ToFloat64(artifactsWrittenTotal.WithLabelValues("csv")), 1e-9)

	beforeAnalysis := testutil.ToFloat64(analysisRunsTotal.WithLabelValues(StatusSuccess))
	ObserveAnalysis(StatusSuccess)
	assert.InDelta(t, beforeAnalysis+1, testutil.ToFloat64(analysisRunsTotal.WithLabelValues(StatusSuccess)), 1e-9)
}
