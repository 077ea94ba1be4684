package xapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/buger/jsonparser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newThreadFixture(t *testing.T, handler http.Handler) *ThreadOrchestrator {
	t.Helper()
	client, _ := newTestClient(t, handler)
	return NewThreadOrchestrator(client, time.Millisecond)
}

func threadItems(n int) []ThreadItem {
	items := make([]ThreadItem, n)
	for i := range items {
		items[i] = ThreadItem{Text: fmt.Sprintf("tweet number %d", i+1)}
	}
	return items
}

func TestPostThread_ReplyChain(t *testing.T) {
	var requests int32
	var replyIDs []string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&requests, 1)
		body, _ := io.ReadAll(r.Body)
		replyTo, err := jsonparser.GetString(body, "reply", "in_reply_to_tweet_id")
		if err != nil {
			replyTo = ""
		}
		replyIDs = append(replyIDs, replyTo)
		fmt.Fprintf(w, `{"data":{"id":"id-%d"}}`, n)
	})

	result, err := newThreadFixture(t, handler).PostThread(context.Background(), threadItems(3))
	require.NoError(t, err)
	require.NoError(t, result.Err)

	assert.Equal(t, -1, result.FailedIndex)
	require.Len(t, result.Posted, 3)
	assert.Equal(t, "id-1", result.Posted[0].TweetID)
	assert.Equal(t, "id-3", result.Posted[2].TweetID)
	assert.Equal(t, []ItemState{StateSucceeded, StateSucceeded, StateSucceeded}, result.States)

	// First tweet stands alone, each later tweet replies to its predecessor.
	assert.Equal(t, []string{"", "id-1", "id-2"}, replyIDs)
}

func TestPostThread_StopsAtFirstFailure(t *testing.T) {
	var requests int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&requests, 1)
		if n == 3 {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("boom"))
			return
		}
		fmt.Fprintf(w, `{"data":{"id":"id-%d"}}`, n)
	})

	result, err := newThreadFixture(t, handler).PostThread(context.Background(), threadItems(4))
	require.NoError(t, err)

	require.Len(t, result.Posted, 2)
	assert.Equal(t, 2, result.FailedIndex)
	assert.Equal(t, []ItemState{StateSucceeded, StateSucceeded, StateFailed, StatePending}, result.States)

	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "tweet 3 of 4 failed")

	var remoteErr *RemoteError
	require.True(t, errors.As(result.Err, &remoteErr))
	assert.Equal(t, http.StatusInternalServerError, remoteErr.Status)

	// The item after the failure is never attempted.
	assert.Equal(t, int32(3), atomic.LoadInt32(&requests))
}

func TestPostThread_RejectsEmptyAndOversized(t *testing.T) {
	var requests int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
	})
	orchestrator := newThreadFixture(t, handler)

	_, err := orchestrator.PostThread(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one tweet")

	_, err = orchestrator.PostThread(context.Background(), threadItems(26))
	require.Error(t, err)

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Contains(t, err.Error(), "maximum of 25")

	assert.Equal(t, int32(0), atomic.LoadInt32(&requests))
}

func TestPostThread_BadImageStopsBeforeUpload(t *testing.T) {
	var requests int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&requests, 1)
		fmt.Fprintf(w, `{"data":{"id":"id-%d"}}`, n)
	})

	items := threadItems(2)
	items[1].ImagePath = "/nonexistent/image.png"

	result, err := newThreadFixture(t, handler).PostThread(context.Background(), items)
	require.NoError(t, err)

	require.Len(t, result.Posted, 1)
	assert.Equal(t, 1, result.FailedIndex)
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "file not found")
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests))
}

func TestPostThread_CancelledBetweenItems(t *testing.T) {
	var requests int32
	ctx, cancel := context.WithCancel(context.Background())
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&requests, 1)
		if n == 1 {
			cancel()
		}
		fmt.Fprintf(w, `{"data":{"id":"id-%d"}}`, n)
	})

	client, _ := newTestClient(t, handler)
	orchestrator := NewThreadOrchestrator(client, time.Hour)

	result, err := orchestrator.PostThread(ctx, threadItems(3))
	require.NoError(t, err)

	require.Len(t, result.Posted, 1)
	assert.Equal(t, 1, result.FailedIndex)
	require.Error(t, result.Err)
	assert.True(t, errors.Is(result.Err, context.Canceled))
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests))
}

func TestNewThreadOrchestrator_DefaultDelay(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	orchestrator := NewThreadOrchestrator(client, 0)
	assert.Equal(t, DefaultInterPostDelay, orchestrator.delay)
}

func TestItemStateString(t *testing.T) {
	assert.Equal(t, "pending", StatePending.String())
	assert.Equal(t, "in_flight", StateInFlight.String())
	assert.Equal(t, "succeeded", StateSucceeded.String())
	assert.Equal(t, "failed", StateFailed.String())
}
