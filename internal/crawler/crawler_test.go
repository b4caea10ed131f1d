package crawler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/sealevel/internal/hash/sha256"
	"github.com/JakeFAU/sealevel/internal/id/uuid"
	pubmemory "github.com/JakeFAU/sealevel/internal/publisher/memory"
	"github.com/JakeFAU/sealevel/internal/sealevel"
	"github.com/JakeFAU/sealevel/internal/storage"
	"github.com/JakeFAU/sealevel/internal/storage/memory"
)

const tideBody = `{"tide":{"data":[{"code":"QUB","yearData":[
	["2024","1.410","1.750","1.520","0.880","0.650"],
	["2023","***","1.740","1.510","0.870","0.640"],
	["2022","1.380","1.720","1.500","0.860","***"]
]}]}}`

type fakeFetcher struct {
	resp    sealevel.FetchResponse
	err     error
	request sealevel.FetchRequest
	calls   int
}

func (f *fakeFetcher) Fetch(_ context.Context, req sealevel.FetchRequest) (sealevel.FetchResponse, error) {
	f.calls++
	f.request = req
	if f.err != nil {
		return sealevel.FetchResponse{}, f.err
	}
	return f.resp, nil
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, string, any) (string, error) {
	return "", errors.New("topic deleted")
}

func testConfig() Config {
	return Config{
		Endpoint:    "https://www.hko.gov.hk/cis/aws/tide/yearly_TIDE.xml",
		UserAgent:   "test-agent",
		Referer:     "https://www.hko.gov.hk/en/cis/yearlyTide.htm",
		StationCode: "QUB",
		StationName: "Quarry Bay",
		DataSource:  "Hong Kong Observatory (HKO)",
		DataURL:     "https://www.hko.gov.hk/en/cis/yearlyTide.htm?stn=QUB",
		Units:       "meters above Chart Datum",
		Note:        "note",
		Topic:       "sealevel-runs",
	}
}

func okFetcher(body string) *fakeFetcher {
	return &fakeFetcher{resp: sealevel.FetchResponse{
		URL:        "https://www.hko.gov.hk/cis/aws/tide/yearly_TIDE.xml",
		StatusCode: http.StatusOK,
		Body:       []byte(body),
		Duration:   20 * time.Millisecond,
	}}
}

func TestCrawler_Run_WritesArtifacts(t *testing.T) {
	t.Parallel()

	fetcher := okFetcher(tideBody)
	store := memory.NewBlobStore()
	pub := pubmemory.New()
	clock := clockwork.NewFakeClockAt(time.Date(2025, 9, 18, 16, 32, 25, 0, time.UTC))

	c := New(testConfig(), fetcher, store, pub, sha256.New(), uuid.Static("run-1"), clock, zap.NewNop())
	result, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, fetcher.calls)
	assert.Equal(t, "test-agent", fetcher.request.Headers.Get("User-Agent"))
	assert.Equal(t, "https://www.hko.gov.hk/en/cis/yearlyTide.htm", fetcher.request.Headers.Get("Referer"))
	assert.Equal(t, "run-1", fetcher.request.RunID)

	assert.Equal(t, "run-1", result.RunID)
	assert.Equal(t, 3, result.Dataset.Len())
	assert.Equal(t, 2022, result.Dataset.Records[0].Year)
	assert.Len(t, result.PayloadSHA256, 64)

	assert.Equal(t, []string{
		"HKO_QUB_MeanSeaLevel_Simple_20250918_163225.csv",
		"HKO_QUB_SeaLevel_Data_20250918_163225.csv",
		"HKO_QUB_SeaLevel_Metadata_20250918_163225.json",
	}, store.Paths())

	full, ok := store.Object("HKO_QUB_SeaLevel_Data_20250918_163225.csv")
	require.True(t, ok)
	assert.Equal(t, "Year,Mean_Sea_Level_m,Mean_Higher_High_Water_m,Mean_Lower_High_Water_m,"+
		"Mean_Higher_Low_Water_m,Mean_Lower_Low_Water_m\n"+
		"2022,1.38,1.72,1.5,0.86,\n"+
		"2023,,1.74,1.51,0.87,0.64\n"+
		"2024,1.41,1.75,1.52,0.88,0.65\n", string(full))
	assert.Equal(t, sealevel.ContentTypeCSV, store.ContentType("HKO_QUB_SeaLevel_Data_20250918_163225.csv"))

	simple, ok := store.Object("HKO_QUB_MeanSeaLevel_Simple_20250918_163225.csv")
	require.True(t, ok)
	assert.Equal(t, "Year,Mean_Sea_Level_m\n2022,1.38\n2024,1.41\n", string(simple))

	metaJSON, ok := store.Object("HKO_QUB_SeaLevel_Metadata_20250918_163225.json")
	require.True(t, ok)
	var meta Metadata
	require.NoError(t, json.Unmarshal(metaJSON, &meta))
	assert.Equal(t, 3, meta.TotalRecords)
	assert.Equal(t, "2022-2024", meta.YearRange)
	assert.Equal(t, "2025-09-18T16:32:25Z", meta.DownloadDate)
	assert.Equal(t, "QUB", meta.StationCode)

	msgs := pub.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "sealevel-runs", msgs[0].Topic)
	var note map[string]any
	require.NoError(t, json.Unmarshal(msgs[0].Data, &note))
	assert.Equal(t, "run-1", note["run_id"])
	assert.Equal(t, "2022-2024", note["year_range"])
	assert.InDelta(t, 3, note["total_records"], 0)
	assert.Len(t, note["artifacts"], 3)
}

func TestCrawler_Run_NoTopicSkipsPublish(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Topic = ""
	pub := pubmemory.New()
	c := New(cfg, okFetcher(tideBody), memory.NewBlobStore(), pub, nil, uuid.Static("r"), clockwork.NewFakeClock(), nil)

	result, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pub.Messages())
	assert.Empty(t, result.PayloadSHA256)
}

func TestCrawler_Run_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		fetcher *fakeFetcher
		want    error
	}{
		{"fetch error", &fakeFetcher{err: errors.New("status 503")}, nil},
		{"malformed", okFetcher(`not json`), ErrMalformedPayload},
		{"station missing", okFetcher(`{"tide":{"data":[{"code":"TBT","yearData":[]}]}}`), ErrStationNotFound},
		{"empty station", okFetcher(`{"tide":{"data":[{"code":"QUB","yearData":[]}]}}`), sealevel.ErrEmptyDataset},
		{"duplicate year", okFetcher(`{"tide":{"data":[{"code":"QUB","yearData":[
			["2024","1","1","1","1","1"],["2024","1","1","1","1","1"]]}]}}`), sealevel.ErrDuplicateYear},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := memory.NewBlobStore()
			c := New(testConfig(), tt.fetcher, store, pubmemory.New(), nil, uuid.Static("r"), clockwork.NewFakeClock(), zap.NewNop())
			_, err := c.Run(context.Background())
			require.Error(t, err)
			if tt.want != nil {
				require.ErrorIs(t, err, tt.want)
			}
			assert.Empty(t, store.Paths(), "no artifacts on failure")
		})
	}
}

func TestCrawler_Run_StoreFailure(t *testing.T) {
	t.Parallel()

	store := new(storage.MockBlobStore)
	store.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("disk full")).Once()

	c := New(testConfig(), okFetcher(tideBody), store, nil, nil, uuid.Static("r"), clockwork.NewFakeClock(), zap.NewNop())
	_, err := c.Run(context.Background())
	require.ErrorContains(t, err, "disk full")
	store.AssertNumberOfCalls(t, "PutObject", 1)
}

func TestCrawler_Run_PublishFailure(t *testing.T) {
	t.Parallel()

	c := New(testConfig(), okFetcher(tideBody), memory.NewBlobStore(), failingPublisher{}, nil,
		uuid.Static("r"), clockwork.NewFakeClock(), zap.NewNop())
	_, err := c.Run(context.Background())
	require.ErrorContains(t, err, "topic deleted")
}
