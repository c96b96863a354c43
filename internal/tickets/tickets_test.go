package tickets

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ticketplan/internal/maps"
	"ticketplan/internal/notifications"
	"ticketplan/pkg/cache"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededService(t *testing.T, publisher notifications.EventPublisher) (Service, Repository) {
	t.Helper()
	repo := NewMemoryRepository()
	ctx := context.Background()
	require.NoError(t, repo.SaveMap(ctx, &SeatMapRecord{ID: "m1", Name: "One", Rows: 2, Columns: 3, Seats: [][]int{{0, 1, 0}, {0, 0, 0}}}))
	require.NoError(t, repo.SaveMap(ctx, &SeatMapRecord{ID: "m2", Name: "Two", Rows: 1, Columns: 1, Seats: [][]int{{0}}}))
	return NewService(repo, cache.NewMemoryService(), NewLocalSeatClaimer(), publisher), repo
}

func TestService_ListAndGet(t *testing.T) {
	t.Parallel()
	svc, _ := seededService(t, nil)
	ctx := context.Background()

	ids, err := svc.ListMaps(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2"}, ids)

	seats, err := svc.GetSeatMap(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 1, 0}, {0, 0, 0}}, seats)

	_, err = svc.GetSeatMap(ctx, "nope")
	assert.ErrorIs(t, err, ErrMapNotFound)
}

func TestService_PurchaseInvalidatesSeatMap(t *testing.T) {
	t.Parallel()
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		key, _ := msg.Key.Encode()
		if string(key) != "m1" {
			return errors.New("unexpected partition key " + string(key))
		}
		return nil
	})
	publisher := notifications.NewKafkaPurchaseProducerWithClient(producer, "ticketplan.purchases")
	t.Cleanup(func() { _ = publisher.Close() })

	svc, repo := seededService(t, publisher)
	ctx := context.Background()

	_, err := svc.GetSeatMap(ctx, "m1")
	require.NoError(t, err)

	res, err := svc.PurchaseTicket(ctx, "m1", 2, 1)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "Ticket purchased successfully for seat (2, 1)", res.Message)
	assert.NotEmpty(t, res.TicketID)

	seats, err := svc.GetSeatMap(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, 1, seats[1][2])

	n, err := repo.CountTickets(ctx, "m1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestService_PurchaseRejections(t *testing.T) {
	t.Parallel()
	svc, _ := seededService(t, nil)
	ctx := context.Background()

	res, err := svc.PurchaseTicket(ctx, "m1", 1, 0)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "Seat (1, 0) is already sold", res.Message)

	_, err = svc.PurchaseTicket(ctx, "m1", 5, 0)
	assert.ErrorIs(t, err, ErrSeatOutOfRange)

	_, err = svc.PurchaseTicket(ctx, "nope", 0, 0)
	assert.ErrorIs(t, err, ErrMapNotFound)
}

func TestService_ConcurrentBuyersOfOneSeat(t *testing.T) {
	t.Parallel()
	svc, repo := seededService(t, nil)
	ctx := context.Background()

	var sold atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.PurchaseTicket(ctx, "m2", 0, 0)
			if err == nil && res.Success {
				sold.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, sold.Load())
	n, err := repo.CountTickets(ctx, "m2")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestLocalSeatClaimer(t *testing.T) {
	t.Parallel()
	c := NewLocalSeatClaimer()
	ctx := context.Background()

	release, err := c.Claim(ctx, "m1", 0, 0)
	require.NoError(t, err)

	_, err = c.Claim(ctx, "m1", 0, 0)
	assert.ErrorIs(t, err, ErrSeatClaimed)

	other, err := c.Claim(ctx, "m1", 1, 0)
	require.NoError(t, err)
	other()

	release()
	release()
	again, err := c.Claim(ctx, "m1", 0, 0)
	require.NoError(t, err)
	again()
}

func TestService_SeedMaps(t *testing.T) {
	t.Parallel()
	repo := NewMemoryRepository()
	svc := NewService(repo, nil, nil, nil)
	ctx := context.Background()

	loader := maps.NewMockLoader(maps.MockConfig{ReservedRatio: 0.3, Seed: 5})
	subset := &subsetLoader{MockLoader: loader, ids: []string{"m213", "m2002"}}

	n, err := svc.SeedMaps(ctx, subset, false)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = svc.SeedMaps(ctx, subset, false)
	require.NoError(t, err)
	assert.Zero(t, n)

	m, err := repo.FindMap(ctx, "m2002")
	require.NoError(t, err)
	assert.Equal(t, 15, m.Rows)
	assert.Equal(t, 25, m.Columns)
	assert.Equal(t, "ورزشگاه شهید شیرودی", m.Name)
}

type subsetLoader struct {
	*maps.MockLoader
	ids []string
}

func (l *subsetLoader) MapIDs(context.Context) ([]string, error) {
	return l.ids, nil
}

// The HTTP loader must be able to talk to this API unchanged.
func TestTicketAPI_ServesMapClient(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)
	svc, _ := seededService(t, nil)
	engine := gin.New()
	SetupTicketRoutes(engine, NewController(svc))
	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)

	client := maps.NewClient(maps.ClientConfig{BaseURL: srv.URL, Timeout: 2 * time.Second}, cache.NewMemoryService(), srv.Client())
	ctx := context.Background()

	ids, err := client.MapIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2"}, ids)

	matrix, err := client.SeatMatrix(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 1, 0}, {0, 0, 0}}, matrix)

	res, err := client.PurchaseTicket(ctx, "m1", maps.PurchaseRequest{X: 0, Y: 0})
	require.NoError(t, err)
	assert.True(t, res.Success)

	res, err = client.PurchaseTicket(ctx, "m1", maps.PurchaseRequest{X: 0, Y: 0})
	require.NoError(t, err)
	assert.False(t, res.Success)

	_, err = client.SeatMatrix(ctx, "missing")
	var apiErr *maps.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "MAP_NOT_FOUND", apiErr.Code)
	assert.NotEmpty(t, apiErr.Timestamp)
}
