package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func TestToastQueue_DefaultDurationsAndIDs(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{now: time.UnixMilli(1_700_000_000_000)}
	q := NewToastQueue(0, 0).WithClock(clock.Now)

	q.ShowSuccess("ok")
	q.ShowError("bad")

	active := q.Active()
	require.Len(t, active, 2)
	assert.Equal(t, "toast-1-1700000000000", active[0].ID)
	assert.Equal(t, "toast-2-1700000000000", active[1].ID)
	assert.Equal(t, ToastTypeSuccess, active[0].Type)
	assert.Equal(t, int64(5000), active[0].Duration)
	assert.Equal(t, int64(8000), active[1].Duration)
}

func TestToastQueue_LazyExpiry(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{now: time.Unix(0, 0)}
	q := NewToastQueue(5*time.Second, 8*time.Second).WithClock(clock.Now)

	q.ShowSuccess("ok")
	q.ShowError("bad")
	sticky := q.Show(ToastTypeError, "stays", 0)

	clock.now = clock.now.Add(5 * time.Second)
	active := q.Active()
	require.Len(t, active, 2)
	assert.Equal(t, "bad", active[0].Message)

	clock.now = clock.now.Add(time.Hour)
	active = q.Active()
	require.Len(t, active, 1)
	assert.Equal(t, sticky.ID, active[0].ID)
	assert.True(t, active[0].Sticky())
}

func TestToastQueue_Dismiss(t *testing.T) {
	t.Parallel()
	q := NewToastQueue(0, 0)
	a := q.Show(ToastTypeSuccess, "a", time.Minute)
	q.Show(ToastTypeSuccess, "b", time.Minute)

	assert.True(t, q.Dismiss(a.ID))
	assert.False(t, q.Dismiss(a.ID))
	require.Len(t, q.Active(), 1)

	q.Clear()
	assert.Empty(t, q.Active())
}

type recordingSink struct {
	errors    []string
	successes []string
}

func (s *recordingSink) ShowSuccess(m string) { s.successes = append(s.successes, m) }
func (s *recordingSink) ShowError(m string)   { s.errors = append(s.errors, m) }

type statusErr struct {
	status int
	msg    string
}

func (e *statusErr) Error() string      { return fmt.Sprintf("status %d", e.status) }
func (e *statusErr) HTTPStatus() int    { return e.status }
func (e *statusErr) APIMessage() string { return e.msg }

func TestErrorHandler_StatusMessages(t *testing.T) {
	t.Parallel()
	sink := &recordingSink{}
	h := NewErrorHandler(sink)

	msg := h.Handle(fmt.Errorf("load: %w", &statusErr{status: 404, msg: "map m9 not found"}), "Loading seat map")
	assert.Equal(t, "Loading seat map: The requested resource was not found. (map m9 not found)", msg)
	assert.Equal(t, []string{msg}, sink.errors)

	assert.Equal(t, "Too many requests. Please wait and try again.", Describe(&statusErr{status: 429}))
	assert.Equal(t, "An error occurred: 418 I'm a teapot", Describe(&statusErr{status: 418}))
}

func TestErrorHandler_NetworkAndPlainErrors(t *testing.T) {
	t.Parallel()
	netErr := &url.Error{Op: "Get", URL: "http://x/map", Err: errors.New("dial tcp: refused")}
	assert.Equal(t, "Network error: "+netErr.Error(), Describe(netErr))
	assert.Equal(t, "boom", Describe(errors.New("boom")))
	assert.Equal(t, unexpectedErrorMessage, Describe(nil))

	// A nil sink only formats.
	assert.Equal(t, "ctx: boom", NewErrorHandler(nil).Handle(errors.New("boom"), "ctx"))
}

func TestKafkaPurchaseProducer_Publish(t *testing.T) {
	t.Parallel()
	cfg := mocks.NewTestConfig()
	cfg.Producer.Return.Successes = true
	mock := mocks.NewSyncProducer(t, cfg)

	event := NewBatchCompletedEvent("plan-1", "m213", 3, 1, []string{"(2, 1): sold out"})

	mock.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "purchases" {
			return fmt.Errorf("unexpected topic %q", msg.Topic)
		}
		key, _ := msg.Key.Encode()
		if string(key) != "m213" {
			return fmt.Errorf("unexpected key %q", key)
		}
		return nil
	})

	p := NewKafkaPurchaseProducerWithClient(mock, "purchases")
	require.NoError(t, p.PublishPurchaseEvent(context.Background(), event))
	require.NoError(t, p.Close())
}

func TestKafkaPurchaseProducer_SendFailure(t *testing.T) {
	t.Parallel()
	cfg := mocks.NewTestConfig()
	cfg.Producer.Return.Successes = true
	mock := mocks.NewSyncProducer(t, cfg)
	mock.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewKafkaPurchaseProducerWithClient(mock, "purchases")
	err := p.PublishPurchaseEvent(context.Background(), NewTicketIssuedEvent("m1", "t-1", 0, 4))

	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}

func TestPurchaseEvent_JSON(t *testing.T) {
	t.Parallel()
	e := NewTicketIssuedEvent("m1", "t-1", 0, 4)
	data, err := e.ToJSON()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "TICKET_ISSUED", decoded["type"])
	assert.EqualValues(t, 0, decoded["x"])
	assert.EqualValues(t, 4, decoded["y"])
	assert.NotContains(t, decoded, "plan_id")
	assert.Equal(t, "m1", e.GetPartitionKey())
}
