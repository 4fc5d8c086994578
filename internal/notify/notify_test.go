package notify

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHubDeliversToTopicSubscribers(t *testing.T) {
	t.Parallel()
	h := NewHub()
	a, cancelA := h.Subscribe("kpi")
	defer cancelA()
	other, cancelOther := h.Subscribe("other")
	defer cancelOther()

	h.Topic("kpi").Publish(Dirty)

	select {
	case m := <-a:
		require.Equal(t, TypeDirty, m.Type)
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive message")
	}
	select {
	case m := <-other:
		t.Fatalf("unexpected delivery on other topic: %v", m)
	default:
	}
}

func TestHubPublishNeverBlocks(t *testing.T) {
	t.Parallel()
	h := NewHub()
	_, cancel := h.Subscribe("kpi")
	defer cancel()
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			h.Broadcast("kpi", Dirty)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a full subscriber")
	}
}

func TestHubCancelClosesAndUnregisters(t *testing.T) {
	t.Parallel()
	h := NewHub()
	ch, cancel := h.Subscribe("kpi")
	require.Equal(t, 1, h.Subscribers("kpi"))
	cancel()
	cancel()
	require.Equal(t, 0, h.Subscribers("kpi"))
	_, ok := <-ch
	require.False(t, ok)
}

func TestDecode(t *testing.T) {
	m, ok := Decode([]byte(`{"type":"dirty"}`))
	require.True(t, ok)
	require.Equal(t, Dirty, m)
	_, ok = Decode([]byte(`not json`))
	require.False(t, ok)
	_, ok = Decode([]byte(`{}`))
	require.False(t, ok)
}

func TestNoopIsSilent(t *testing.T) {
	var n Notifier = Noop{}
	require.NoError(t, n.Publish(Dirty))
	ch, cancel := n.Subscribe()
	defer cancel()
	select {
	case <-ch:
		t.Fatal("noop delivered a message")
	default:
	}
}

func TestRemoteRoundTrip(t *testing.T) {
	t.Parallel()
	hub := NewHub()
	mux := http.NewServeMux()
	mux.HandleFunc("/events/{topic}", func(w http.ResponseWriter, r *http.Request) {
		topic := r.PathValue("topic")
		if r.Method == http.MethodPost {
			body, _ := io.ReadAll(r.Body)
			m, ok := Decode(body)
			if !ok {
				http.Error(w, "bad message", http.StatusBadRequest)
				return
			}
			hub.Broadcast(topic, m)
			w.WriteHeader(http.StatusNoContent)
			return
		}
		flusher := w.(http.Flusher)
		w.Header().Set("Content-Type", "text/event-stream")
		ch, cancel := hub.Subscribe(topic)
		defer cancel()
		w.WriteHeader(http.StatusOK)
		flusher.Flush()
		for {
			select {
			case <-r.Context().Done():
				return
			case m := <-ch:
				fmt.Fprintf(w, "data: {\"type\":%q}\n\n", m.Type)
				flusher.Flush()
			}
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	r := NewRemote(srv.URL, "kpi", srv.Client())
	ch, cancel := r.Subscribe()
	defer cancel()

	require.Eventually(t, func() bool { return hub.Subscribers("kpi") == 1 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, r.Publish(Dirty))

	select {
	case m := <-ch:
		require.Equal(t, TypeDirty, m.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("remote subscriber did not receive message")
	}
}

func TestRemoteReconnectsAfterDrop(t *testing.T) {
	t.Parallel()
	hub := NewHub()
	var conns atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /events/{topic}", func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		if conns.Add(1) == 1 {
			fmt.Fprint(w, "data: {\"type\":\"dirty\"}\n\n")
			flusher.Flush()
			return
		}
		ch, cancel := hub.Subscribe(r.PathValue("topic"))
		defer cancel()
		flusher.Flush()
		for {
			select {
			case <-r.Context().Done():
				return
			case m := <-ch:
				fmt.Fprintf(w, "data: {\"type\":%q}\n\n", m.Type)
				flusher.Flush()
			}
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	r := NewRemote(srv.URL, "kpi", srv.Client())
	r.retry = 20 * time.Millisecond
	ch, cancel := r.Subscribe()

	select {
	case m := <-ch:
		require.Equal(t, TypeDirty, m.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("no message before the drop")
	}

	require.Eventually(t, func() bool { return hub.Subscribers("kpi") == 1 }, 2*time.Second, 10*time.Millisecond)
	require.GreaterOrEqual(t, conns.Load(), int32(2))
	hub.Broadcast("kpi", Message{Type: "refresh"})

	select {
	case m, ok := <-ch:
		require.True(t, ok, "channel closed after the drop")
		require.Equal(t, "refresh", m.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("no message after reconnect")
	}

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}
