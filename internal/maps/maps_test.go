package maps

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"ticketplan/internal/seats"
	"ticketplan/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTicketAPI struct {
	listCalls atomic.Int32
	mapCalls  atomic.Int32
	buyCalls  atomic.Int32
}

func (f *fakeTicketAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /map", func(w http.ResponseWriter, r *http.Request) {
		f.listCalls.Add(1)
		_ = json.NewEncoder(w).Encode([]string{"m213", "m654"})
	})
	mux.HandleFunc("GET /map/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mapCalls.Add(1)
		if r.PathValue("id") == "missing" {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "MAP_NOT_FOUND", Message: "map missing not found"})
			return
		}
		_ = json.NewEncoder(w).Encode([][]int{{0, 1}, {1, 0}})
	})
	mux.HandleFunc("POST /map/{id}/ticket", func(w http.ResponseWriter, r *http.Request) {
		f.buyCalls.Add(1)
		var req PurchaseRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		_ = json.NewEncoder(w).Encode(PurchaseResponse{Success: req.X == 0, Message: "done", TicketID: "t-1"})
	})
	return mux
}

func newTestClient(t *testing.T, store cache.Service) (*Client, *fakeTicketAPI) {
	t.Helper()
	api := &fakeTicketAPI{}
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)
	return NewClient(ClientConfig{BaseURL: srv.URL + "/", Timeout: 2 * time.Second}, store, srv.Client()), api
}

func TestClient_CachesGets(t *testing.T) {
	t.Parallel()
	c, api := newTestClient(t, cache.NewMemoryService())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ids, err := c.MapIDs(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"m213", "m654"}, ids)

		matrix, err := c.SeatMatrix(ctx, "m213")
		require.NoError(t, err)
		assert.Equal(t, [][]int{{0, 1}, {1, 0}}, matrix)
	}

	assert.EqualValues(t, 1, api.listCalls.Load())
	assert.EqualValues(t, 1, api.mapCalls.Load())
}

func TestClient_CacheExpiresLazily(t *testing.T) {
	t.Parallel()
	now := time.Now()
	store := cache.NewMemoryService().WithClock(func() time.Time { return now })
	c, api := newTestClient(t, store)
	ctx := context.Background()

	_, err := c.SeatMatrix(ctx, "m213")
	require.NoError(t, err)

	now = now.Add(5 * time.Minute)
	_, err = c.SeatMatrix(ctx, "m213")
	require.NoError(t, err)
	assert.EqualValues(t, 2, api.mapCalls.Load())

	// The list keeps its longer TTL.
	_, err = c.MapIDs(ctx)
	require.NoError(t, err)
	now = now.Add(9 * time.Minute)
	_, err = c.MapIDs(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, api.listCalls.Load())
}

func TestClient_ClearCache(t *testing.T) {
	t.Parallel()
	c, api := newTestClient(t, cache.NewMemoryService())
	ctx := context.Background()

	_, _ = c.MapIDs(ctx)
	_, _ = c.SeatMatrix(ctx, "m213")

	require.NoError(t, c.ClearCacheEntry(ctx, c.CacheKey("/map/m213")))
	_, _ = c.MapIDs(ctx)
	_, _ = c.SeatMatrix(ctx, "m213")
	assert.EqualValues(t, 1, api.listCalls.Load())
	assert.EqualValues(t, 2, api.mapCalls.Load())

	require.NoError(t, c.ClearCache(ctx))
	_, _ = c.MapIDs(ctx)
	assert.EqualValues(t, 2, api.listCalls.Load())
}

func TestClient_PurchaseIsNeverCached(t *testing.T) {
	t.Parallel()
	c, api := newTestClient(t, cache.NewMemoryService())
	ctx := context.Background()

	ok, err := c.PurchaseTicket(ctx, "m213", PurchaseRequest{X: 0, Y: 1})
	require.NoError(t, err)
	assert.True(t, ok.Success)
	assert.Equal(t, "t-1", ok.TicketID)

	rejected, err := c.PurchaseTicket(ctx, "m213", PurchaseRequest{X: 1, Y: 1})
	require.NoError(t, err)
	assert.False(t, rejected.Success)

	assert.EqualValues(t, 2, api.buyCalls.Load())
}

func TestClient_APIError(t *testing.T) {
	t.Parallel()
	c, _ := newTestClient(t, cache.NewMemoryService())

	_, err := c.SeatMatrix(context.Background(), "missing")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.HTTPStatus())
	assert.Equal(t, "MAP_NOT_FOUND", apiErr.Code)
	assert.Equal(t, "map missing not found", apiErr.APIMessage())
}

func TestClient_TransportError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := NewClient(ClientConfig{BaseURL: srv.URL}, nil, nil)

	_, err := c.PurchaseTicket(context.Background(), "m1", PurchaseRequest{})
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestMockLoader(t *testing.T) {
	t.Parallel()
	m := NewMockLoader(MockConfig{ReservedRatio: 0.3, SuccessRatio: 0.9, Seed: 1})
	ctx := context.Background()

	ids, err := m.MapIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, MockMapIDs, ids)

	matrix, err := m.SeatMatrix(ctx, "m654")
	require.NoError(t, err)
	require.Len(t, matrix, 50)
	assert.Len(t, matrix[0], 80)

	reserved := 0
	for _, row := range matrix {
		for _, v := range row {
			reserved += v
		}
	}
	ratio := float64(reserved) / 4000
	assert.InDelta(t, 0.3, ratio, 0.05)

	rows, cols := MockSize("unknown")
	assert.Equal(t, 20, rows)
	assert.Equal(t, 30, cols)
}

func TestMockLoader_PurchaseOutcomes(t *testing.T) {
	t.Parallel()
	always := NewMockLoader(MockConfig{SuccessRatio: 1, Seed: 3})
	resp, err := always.PurchaseTicket(context.Background(), "m1", PurchaseRequest{X: 2, Y: 5})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "Ticket purchased successfully for seat (2, 5)", resp.Message)
	assert.Contains(t, resp.TicketID, "_2_5")

	never := NewMockLoader(MockConfig{SuccessRatio: 0, Seed: 3})
	resp, err = never.PurchaseTicket(context.Background(), "m1", PurchaseRequest{})
	require.NoError(t, err)
	assert.False(t, resp.Success)
}

func TestMockLoader_LatencyHonoursContext(t *testing.T) {
	t.Parallel()
	m := NewMockLoader(MockConfig{MapLatency: time.Hour, Seed: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.SeatMatrix(ctx, "m213")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDirectory(t *testing.T) {
	t.Parallel()
	d := NewDirectory(NewMockLoader(MockConfig{Seed: 9}))
	ctx := context.Background()

	assert.Equal(t, "ورزشگاه آزادی", d.DisplayName("m213"))
	assert.Equal(t, "Stadium m999", d.DisplayName("m999"))

	salons, err := d.ListSalons(ctx)
	require.NoError(t, err)
	require.Len(t, salons, len(MockMapIDs))
	assert.Equal(t, Salon{ID: "m654", Name: "ورزشگاه انقلاب", MapID: "m654", Image: "assets/salons/salon-2.webp"}, salons[1])

	m, err := d.SeatMap(ctx, "m2002")
	require.NoError(t, err)
	assert.Equal(t, 15, m.Rows)
	assert.Equal(t, 25, m.Columns)
	assert.Equal(t, "ورزشگاه شهید شیرودی", m.Name)
}

type raggedLoader struct{ Loader }

func (raggedLoader) SeatMatrix(context.Context, string) ([][]int, error) {
	return [][]int{{0, 0}, {0}}, nil
}

func TestDirectory_RejectsRaggedMatrix(t *testing.T) {
	t.Parallel()
	d := NewDirectory(raggedLoader{})
	_, err := d.SeatMap(context.Background(), "m1")
	assert.ErrorIs(t, err, seats.ErrRaggedSeatMap)
}
