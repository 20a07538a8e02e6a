package imagesearch

import (
	"context"
	"testing"

	"github.com/Laisky/errors/v2"
	"github.com/stretchr/testify/require"
)

type stubEngine struct {
	name      string
	available bool
	results   []Result
	err       error
	calls     int
}

func (e *stubEngine) Name() string    { return e.name }
func (e *stubEngine) Available() bool { return e.available }

func (e *stubEngine) SearchImages(ctx context.Context, query string, maxResults int) ([]Result, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return e.results, nil
}

func successResults(n int) []Result {
	results := make([]Result, 0, n)
	for i := 0; i < n; i++ {
		results = append(results, Result{
			URL:    "https://example.com/a.jpg",
			Title:  "a",
			Source: "https://example.com",
			Status: StatusSuccess,
		})
	}
	return results
}

func TestManagerEmptyQuery(t *testing.T) {
	engine := &stubEngine{name: "stub", available: true, results: successResults(1)}
	m := NewManager([]Engine{engine})

	for _, query := range []string{"", "   ", "\t\n"} {
		results := m.SearchImages(context.Background(), query, 10)
		require.Len(t, results, 1)
		require.Equal(t, StatusFailed, results[0].Status)
		require.NotEmpty(t, results[0].Error)
	}
	require.Zero(t, engine.calls, "no engine call for empty query")
}

func TestManagerClampsMaxResults(t *testing.T) {
	engine := &stubEngine{name: "stub", available: true, results: successResults(50)}
	m := NewManager([]Engine{engine})

	results := m.SearchImages(context.Background(), "cats", 100)
	require.Len(t, results, MaxResultsCap)
	for _, r := range results {
		require.Equal(t, StatusSuccess, r.Status)
	}
}

func TestManagerDropsUnavailableEngines(t *testing.T) {
	browser := &stubEngine{name: "browser", available: false}
	fallback := &stubEngine{name: "scrape", available: true, results: successResults(2)}
	m := NewManager([]Engine{browser, fallback})

	require.Equal(t, []string{"scrape"}, m.AvailableEngines())

	results := m.SearchImages(context.Background(), "dogs", 5)
	require.Len(t, results, 2)
	require.Zero(t, browser.calls)
	require.Equal(t, 1, fallback.calls)
}

func TestManagerFallsThroughOnError(t *testing.T) {
	first := &stubEngine{name: "browser", available: true, err: errors.New("driver crashed")}
	second := &stubEngine{name: "scrape", available: true, results: successResults(1)}
	m := NewManager([]Engine{first, second})

	results := m.SearchImages(context.Background(), "sunset", 5)
	require.Equal(t, 1, first.calls)
	require.Equal(t, 1, second.calls)
	require.Equal(t, StatusSuccess, results[0].Status)
}

func TestManagerFallsThroughOnZeroSuccess(t *testing.T) {
	// "available but returned zero successful entries" is treated the
	// same as unavailable.
	first := &stubEngine{name: "browser", available: true, results: []Result{FailureResult("nothing")}}
	second := &stubEngine{name: "scrape", available: true, results: successResults(3)}
	m := NewManager([]Engine{first, second})

	results := m.SearchImages(context.Background(), "sunset", 5)
	require.Equal(t, 1, first.calls)
	require.Equal(t, 1, second.calls)
	require.Len(t, results, 3)
}

func TestManagerAllExhausted(t *testing.T) {
	first := &stubEngine{name: "browser", available: true, err: errors.New("boom")}
	second := &stubEngine{name: "scrape", available: true, results: nil}
	m := NewManager([]Engine{first, second})

	results := m.SearchImages(context.Background(), "sunset", 5)
	require.Len(t, results, 1)
	require.Equal(t, StatusFailed, results[0].Status)
}

func TestManagerNoEngines(t *testing.T) {
	m := NewManager(nil)
	results := m.SearchImages(context.Background(), "sunset", 5)
	require.Len(t, results, 1)
	require.Equal(t, StatusFailed, results[0].Status)
}

func TestManagerDefaultMaxResults(t *testing.T) {
	engine := &stubEngine{name: "stub", available: true, results: successResults(15)}
	m := NewManager([]Engine{engine})

	results := m.SearchImages(context.Background(), "cats", 0)
	require.Len(t, results, defaultMaxResults)
}

func TestManagerConfiguredDefaultMaxResults(t *testing.T) {
	engine := &stubEngine{name: "stub", available: true, results: successResults(15)}
	m := NewManager([]Engine{engine}, WithDefaultMaxResults(3))

	results := m.SearchImages(context.Background(), "cats", 0)
	require.Len(t, results, 3)

	// out-of-range overrides fall back to the built-in default
	m = NewManager([]Engine{engine}, WithDefaultMaxResults(MaxResultsCap+1))
	results = m.SearchImages(context.Background(), "cats", 0)
	require.Len(t, results, defaultMaxResults)
}
