// Package llmstream holds the plumbing shared by the streaming LLM adapters:
// delivering events to the consumer and reading provider response streams.
package llmstream

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/procdocs/internal/core/ports/driven"
)

// maxLineSize bounds a single stream line.
const maxLineSize = 1 << 20

// NewClient returns an HTTP client for streaming calls. headerTimeout bounds
// the wait for response headers; the body is read until ctx is done.
func NewClient(headerTimeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = headerTimeout
	return &http.Client{Transport: transport}
}

// ErrIncomplete is returned when a stream ends without a completion marker.
var ErrIncomplete = errors.New("stream ended before completion")

// Token delivers a text delta. It returns ctx.Err() once the consumer is gone.
func Token(ctx context.Context, out chan<- driven.StreamEvent, content string) error {
	if content == "" {
		return nil
	}
	return send(ctx, out, driven.StreamEvent{Type: driven.StreamToken, Content: content})
}

// Done delivers the completion event.
func Done(ctx context.Context, out chan<- driven.StreamEvent) error {
	return send(ctx, out, driven.StreamEvent{Type: driven.StreamDone})
}

// Fail delivers err as an error event unless the context is already
// cancelled, and returns err.
func Fail(ctx context.Context, out chan<- driven.StreamEvent, err error) error {
	if ctx.Err() == nil {
		_ = send(ctx, out, driven.StreamEvent{Type: driven.StreamError, Err: err})
	}
	return err
}

func send(ctx context.Context, out chan<- driven.StreamEvent, ev driven.StreamEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case out <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// StatusError reads a failed response body into an error.
func StatusError(provider string, resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return fmt.Errorf("%s error (status %d): failed to read response", provider, resp.StatusCode)
	}
	return fmt.Errorf("%s error (status %d): %s", provider, resp.StatusCode, strings.TrimSpace(string(body)))
}

// Lines calls fn for each non-blank line of r. Used for NDJSON streams.
func Lines(r io.Reader, fn func(line []byte) (stop bool, err error)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), maxLineSize)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		stop, err := fn(line)
		if err != nil || stop {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return ErrIncomplete
}

// SSE calls fn for each server-sent event in r with its event name and
// joined data lines. Comments and retry fields are ignored.
func SSE(r io.Reader, fn func(event, data string) (stop bool, err error)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), maxLineSize)

	var event string
	var data []string
	dispatch := func() (bool, error) {
		if len(data) == 0 {
			event = ""
			return false, nil
		}
		stop, err := fn(event, strings.Join(data, "\n"))
		event, data = "", data[:0]
		return stop, err
	}

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			stop, err := dispatch()
			if err != nil || stop {
				return err
			}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}
		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "event":
			event = value
		case "data":
			data = append(data, value)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	stop, err := dispatch()
	if err != nil || stop {
		return err
	}
	return ErrIncomplete
}
