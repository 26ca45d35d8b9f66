package llmstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/procdocs/internal/core/ports/driven"
)

type sseEvent struct {
	name string
	data string
}

// ==== SSE Tests ====

func TestSSE_ParsesEvents(t *testing.T) {
	input := ": keepalive\n" +
		"event: delta\ndata: {\"a\":1}\n\n" +
		"data: line1\ndata: line2\n\n" +
		"data: [DONE]\n\n"

	var got []sseEvent
	err := SSE(strings.NewReader(input), func(event, data string) (bool, error) {
		got = append(got, sseEvent{event, data})
		return data == "[DONE]", nil
	})

	require.NoError(t, err)
	assert.Equal(t, []sseEvent{
		{"delta", `{"a":1}`},
		{"", "line1\nline2"},
		{"", "[DONE]"},
	}, got)
}

func TestSSE_DispatchesTrailingEvent(t *testing.T) {
	var got []string
	err := SSE(strings.NewReader("data: last"), func(_, data string) (bool, error) {
		got = append(got, data)
		return true, nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"last"}, got)
}

func TestSSE_IncompleteStream(t *testing.T) {
	err := SSE(strings.NewReader("data: partial\n\n"), func(_, _ string) (bool, error) {
		return false, nil
	})

	assert.ErrorIs(t, err, ErrIncomplete)
}

func TestSSE_CallbackError(t *testing.T) {
	boom := errors.New("boom")
	err := SSE(strings.NewReader("data: x\n\n"), func(_, _ string) (bool, error) {
		return false, boom
	})

	assert.ErrorIs(t, err, boom)
}

// ==== Lines Tests ====

func TestLines_SkipsBlankLines(t *testing.T) {
	var got []string
	err := Lines(strings.NewReader("{\"a\":1}\n\n  \n{\"done\":true}\n"), func(line []byte) (bool, error) {
		got = append(got, string(line))
		return strings.Contains(string(line), "done"), nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{`{"a":1}`, `{"done":true}`}, got)
}

func TestLines_IncompleteStream(t *testing.T) {
	err := Lines(strings.NewReader("{}\n"), func(_ []byte) (bool, error) { return false, nil })

	assert.ErrorIs(t, err, ErrIncomplete)
}

// ==== Delivery Tests ====

func TestToken_SkipsEmptyContent(t *testing.T) {
	out := make(chan driven.StreamEvent, 1)

	require.NoError(t, Token(context.Background(), out, ""))
	assert.Empty(t, out)
}

func TestToken_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Token(ctx, make(chan driven.StreamEvent), "hi")

	assert.ErrorIs(t, err, context.Canceled)
}

func TestFail_SendsErrorEvent(t *testing.T) {
	out := make(chan driven.StreamEvent, 1)
	boom := errors.New("boom")

	err := Fail(context.Background(), out, boom)

	assert.Equal(t, boom, err)
	ev := <-out
	assert.Equal(t, driven.StreamError, ev.Type)
	assert.Equal(t, boom, ev.Err)
}

func TestFail_CancelledContextSkipsEvent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := make(chan driven.StreamEvent, 1)

	err := Fail(ctx, out, errors.New("boom"))

	assert.Error(t, err)
	assert.Empty(t, out)
}

// ==== Client Tests ====

func TestNewClient_StreamOutlivesHeaderTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		w.WriteHeader(http.StatusOK)
		flusher.Flush()
		for i := 0; i < 3; i++ {
			time.Sleep(50 * time.Millisecond)
			fmt.Fprintf(w, "token-%d\n", i)
			flusher.Flush()
		}
	}))
	defer server.Close()

	client := NewClient(40 * time.Millisecond)
	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "token-0\ntoken-1\ntoken-2\n", string(body))
}

func TestNewClient_HeaderTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(30 * time.Millisecond)
	_, err := client.Get(server.URL)
	require.Error(t, err)
}
