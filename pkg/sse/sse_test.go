package sse_test

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/pkg/sse"
)

func TestBrokerStreamsPublishedEvents(t *testing.T) {
	b := sse.NewBroker()
	srv := httptest.NewServer(http.HandlerFunc(b.Serve))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	require.Eventually(t, func() bool { return b.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, b.Publish(sse.Event{Name: "NEW_ORDER", Data: []byte(`{"orderId":7}`)}))

	reader := bufio.NewReader(resp.Body)
	var lines []string
	for len(lines) < 2 {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	assert.Equal(t, []string{"event: NEW_ORDER", `data: {"orderId":7}`}, lines)

	cancel()
	require.Eventually(t, func() bool { return b.Subscribers() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestPublishWithoutSubscribers(t *testing.T) {
	assert.Zero(t, sse.NewBroker().Publish(sse.Event{Data: []byte("x")}))
}
