package eventbus

import (
	"bytes"
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type created struct {
	id int64
}

type deleted struct {
	id int64
}

type notifier interface {
	Notify() string
}

type pinged struct{}

func (pinged) Notify() string { return "ping" }

func quietLogger(buf *bytes.Buffer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(buf)
	log.SetLevel(logrus.DebugLevel)
	return log
}

func TestPublish_MatchingHandlerOnly(t *testing.T) {
	t.Parallel()

	bus := NewEventPublisher(quietLogger(&bytes.Buffer{}))
	var got []int64
	bus.Subscribe(func(e *created) { got = append(got, e.id) })
	bus.Subscribe(func(e *deleted) { t.Error("should not be called") })

	bus.Publish(&created{id: 7})
	require.Equal(t, []int64{7}, got)
}

func TestPublish_NoSubscribersIsLogged(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	bus := NewEventPublisher(quietLogger(&buf))
	bus.Subscribe(func(e *created) {})
	bus.Publish(&deleted{id: 1})
	require.Contains(t, buf.String(), "no matching subscribers")
}

func TestPublish_PanicIsRecovered(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	bus := NewEventPublisher(quietLogger(&buf))
	called := false
	bus.Subscribe(func(e *created) { panic("boom") })
	bus.Subscribe(func(e *created) { called = true })

	require.NotPanics(t, func() { bus.Publish(&created{}) })
	require.True(t, called)
	require.Contains(t, buf.String(), "panicked")
}

func TestPublishE(t *testing.T) {
	t.Parallel()

	bus := NewEventPublisher(nil)
	require.ErrorIs(t, bus.PublishE(&created{}), ErrNoSubscribers)

	failure := errors.New("handler failed")
	bus.Subscribe(func(e *created) error { return failure })
	bus.Subscribe(func(e *created) error { return nil })
	bus.Subscribe(func(e *created) (int, error) { return 0, nil })

	err := bus.PublishE(&created{})
	require.ErrorIs(t, err, failure)
	require.ErrorIs(t, err, ErrInvalidHandlerReturn)
}

func TestMatchSignature(t *testing.T) {
	t.Parallel()

	require.True(t, MatchSignature(func(e *created) {}, []any{&created{}}))
	require.False(t, MatchSignature(func(e *created) {}, []any{&deleted{}}))
	require.False(t, MatchSignature(func(e *created) {}, []any{}))
	require.False(t, MatchSignature(func(e *created) {}, []any{&created{}, &created{}}))
	require.True(t, MatchSignature(func(ctx context.Context, e *created) {}, []any{context.Background(), &created{}}))
	require.True(t, MatchSignature(func(n notifier) {}, []any{pinged{}}))
	require.True(t, MatchSignature(func(e *created) {}, []any{nil}))
	require.False(t, MatchSignature(func(e created) {}, []any{nil}))
	require.False(t, MatchSignature("not a func", []any{}))
}

func TestPublish_NilArgument(t *testing.T) {
	t.Parallel()

	bus := NewEventPublisher(nil)
	got := &created{id: 1}
	bus.Subscribe(func(e *created) { got = e })
	bus.Publish(nil)
	require.Nil(t, got)
}

func TestSubscriptionLifecycle(t *testing.T) {
	t.Parallel()

	bus := NewEventPublisher(nil)
	onCreate := func(e *created) {}
	onDelete := func(e *deleted) {}
	bus.Subscribe(onCreate)
	bus.Subscribe(onDelete)
	require.Equal(t, 2, bus.SubscribersCount())

	bus.Unsubscribe(onCreate)
	require.Equal(t, 1, bus.SubscribersCount())

	bus.Clear()
	require.Zero(t, bus.SubscribersCount())
	require.Panics(t, func() { bus.Subscribe(42) })
}
