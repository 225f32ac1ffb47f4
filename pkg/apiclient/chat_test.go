package apiclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatPollerFetchesAndAdvancesCursor(t *testing.T) {
	var (
		mu       sync.Mutex
		requests []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests = append(requests, r.URL.RawQuery)
		count := len(requests)
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if count == 1 {
			_, _ = w.Write([]byte(`{"data":[{"id":"m1","message":"salom","createdAt":"2026-08-27T10:00:00Z"}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, &fakeSession{token: "t"}, &fakeNavigator{location: "/chat"})

	var (
		gotMu sync.Mutex
		got   []ChatMessage
	)
	poller, err := NewChatPoller(ChatPollerParams{
		Client:   client,
		Logger:   testLogger(),
		Path:     "/api/v1/contact/chat",
		Interval: 10 * time.Millisecond,
		OnMessages: func(messages []ChatMessage) {
			gotMu.Lock()
			got = append(got, messages...)
			gotMu.Unlock()
		},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err = poller.Run(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	gotMu.Lock()
	defer gotMu.Unlock()
	require.Len(t, got, 1)
	assert.Equal(t, "salom", got[0].Message)

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(requests), 2)
	assert.Equal(t, "", requests[0], "first cycle fetches the whole thread")
	assert.Contains(t, requests[1], "since=", "later cycles fetch the delta")
}

func TestChatPollerStopsOnCancel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, &fakeSession{token: "t"}, &fakeNavigator{location: "/chat"})
	poller, err := NewChatPoller(ChatPollerParams{
		Client:     client,
		Logger:     testLogger(),
		Path:       "/api/v1/contact/chat",
		Interval:   time.Hour,
		OnMessages: func([]ChatMessage) {},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- poller.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after cancel")
	}
}

func TestChatPollerDefaultsToThirtySeconds(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	client := newTestClient(t, server.URL, &fakeSession{}, &fakeNavigator{})
	poller, err := NewChatPoller(ChatPollerParams{
		Client:     client,
		Logger:     testLogger(),
		Path:       "/api/v1/contact/chat",
		OnMessages: func([]ChatMessage) {},
	})
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, poller.poller.Interval())
}

func TestChatPollerSignalsUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
	}))
	defer server.Close()

	session := &fakeSession{token: "expired"}
	nav := &fakeNavigator{location: "/chat"}
	client := newTestClient(t, server.URL, session, nav)

	fired := make(chan struct{}, 1)
	poller, err := NewChatPoller(ChatPollerParams{
		Client:     client,
		Logger:     testLogger(),
		Path:       "/api/v1/contact/chat",
		Interval:   time.Hour,
		OnMessages: func([]ChatMessage) {},
		OnUnauthorized: func() {
			select {
			case fired <- struct{}{}:
			default:
			}
		},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = poller.Run(ctx) }()

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("unauthorized hook never fired")
	}
	cancel()
	assert.True(t, session.cleared)
	assert.Equal(t, "/login", nav.Location())
}
