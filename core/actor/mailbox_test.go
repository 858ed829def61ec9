package actor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestMailbox[M any](t *testing.T, h func(M), capacity int, opts ...Option) *mailbox[M] {
	t.Helper()
	return newMailbox[M](syncState[M]{s: StateFunc[M](h)}, capacity, newOptions(opts))
}

func TestMailbox_keep_alive_payload_is_fatal(t *testing.T) {
	mb := newTestMailbox[int](t, func(int) {}, 1)
	mb.keepAlive <- struct{}{}

	require.PanicsWithValue(t, ErrKeepAliveProtocol, func() {
		mb.run(t.Context())
	})
	require.Equal(t, Running, mb.Status())
}

func TestMailbox_status_and_state_dropped(t *testing.T) {
	mb := newTestMailbox[int](t, func(int) {}, 2)
	h := newHandle(mb)

	require.NoError(t, h.Send(t.Context(), 1))
	h.Release()

	mb.run(t.Context())

	require.Equal(t, Terminated, mb.Status())
	require.Nil(t, mb.state)
	require.True(t, mb.sealed)
	select {
	case <-mb.done:
	default:
		t.Fatal("done not closed")
	}
}

func TestMailbox_on_close_waits_for_all_senders(t *testing.T) {
	var got []int
	mb := newTestMailbox[int](t, func(v int) { got = append(got, v) }, 4, WithShutdownPolicy(ShutdownOnClose))
	require.Nil(t, mb.keepAlive)

	h := newHandle(mb)
	w := h.Downgrade()
	require.NoError(t, h.Send(t.Context(), 1))
	h.Release()
	require.NoError(t, w.Send(t.Context(), 2))
	w.Release()

	mb.run(context.Background())
	require.Equal(t, []int{1, 2}, got)
	require.Equal(t, Terminated, mb.Status())
}

func TestMailbox_handle_counts(t *testing.T) {
	mb := newTestMailbox[int](t, func(int) {}, 1)

	h := newHandle(mb)
	c := h.Clone()
	w := h.Downgrade()
	w2 := w.Clone()
	require.EqualValues(t, 2, mb.strong.Load())
	require.EqualValues(t, 4, mb.senders.Load())

	w.Release()
	w2.Release()
	w2.Release()
	require.EqualValues(t, 2, mb.strong.Load())
	require.EqualValues(t, 2, mb.senders.Load())

	c.Release()
	require.EqualValues(t, 1, mb.strong.Load())
	select {
	case <-mb.stopping:
		t.Fatal("stopping closed while a strong handle is alive")
	default:
	}

	h.Release()
	require.EqualValues(t, 0, mb.strong.Load())
	<-mb.stopping
}

func TestMailbox_strong_count_revived_after_last_release(t *testing.T) {
	mb := newTestMailbox[int](t, func(int) {}, 1)
	h := newHandle(mb)
	h.Release()

	// A clone racing the last release takes the count 0 -> 1 -> 0 again.
	mb.acquire(true)
	require.NotPanics(t, func() { mb.release(true) })
	require.EqualValues(t, 0, mb.strong.Load())
}

type handleReport struct {
	strong, weak int
}

type recordingMetrics struct {
	ActorMetrics
	reports    []handleReport
	terminated bool
}

func (m *recordingMetrics) HandlesAlive(_ string, strong, weak int) {
	m.reports = append(m.reports, handleReport{strong, weak})
}

func (m *recordingMetrics) Terminated(string, string, int) { m.terminated = true }

func TestMailbox_no_handle_reports_after_termination(t *testing.T) {
	rec := &recordingMetrics{ActorMetrics: NopActorMetrics()}
	mb := newTestMailbox[int](t, func(int) {}, 1, WithMetrics(rec))
	h := newHandle(mb)
	w := h.Downgrade()

	h.Release()
	mb.run(t.Context())
	require.True(t, rec.terminated)

	n := len(rec.reports)
	w.Release()
	require.Len(t, rec.reports, n)
}

type typedMsg struct{}

func (typedMsg) MsgType() string { return "typed" }

type plainMsg struct{}

func TestMsgTypeOf(t *testing.T) {
	require.Equal(t, "typed", msgTypeOf(typedMsg{}))
	require.Equal(t, "github.com/codewandler/actorkit/core/actor.plainMsg", msgTypeOf(plainMsg{}))
	require.Equal(t, "github.com/codewandler/actorkit/core/actor.plainMsg", msgTypeOf(&plainMsg{}))
	require.Equal(t, "int", msgTypeOf(1))
	require.Equal(t, "<nil>", msgTypeOf(nil))
}
