package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/procdocs/internal/adapters/driving/tui"
	"github.com/custodia-labs/procdocs/internal/core/domain"
)

// ==== Ask Command Tests ====

func TestAskCmd_StreamsAnswerAndSources(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("ask", "How do I request leave?")

	require.NoError(t, err)
	assert.Equal(t, "How do I request leave?", ts.chat.lastReq.Message)
	assert.Equal(t, cliOwner, ts.chat.lastReq.OwnerID)
	assert.Empty(t, ts.chat.lastReq.SessionID)

	assert.Contains(t, out, "Submit the form to HR.\n")
	assert.Contains(t, out, "Sources:")
	assert.Contains(t, out, "[1] HR Leave Policy (HR)")
	assert.Contains(t, out, "https://example.com/leave")
	assert.Contains(t, out, "Session: session-1")
	assert.NotContains(t, out, "\x1b[", "output to a buffer must not be styled")
}

func TestAskCmd_ContinuesSession(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("ask", "--session", "session-1", "And sick leave?")

	require.NoError(t, err)
	assert.Equal(t, "session-1", ts.chat.lastReq.SessionID)
}

func TestAskCmd_ErrorEvent(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.chat.events = []domain.ChatEvent{
		{Type: domain.EventSession, SessionID: "s"},
		{Type: domain.EventError, Message: "Error: provider failed"},
	}

	_, err := execute("ask", "q")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Error: provider failed")
}

func TestAskCmd_ChatRejected(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.chat.err = domain.ErrLLMUnavailable

	_, err := execute("ask", "q")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestAskCmd_StreamWithoutDone(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.chat.events = []domain.ChatEvent{
		{Type: domain.EventSession, SessionID: "s"},
		{Type: domain.EventChunk, Content: "partial"},
	}

	_, err := execute("ask", "q")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
}

func TestAskCmd_NoSources(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.chat.events = []domain.ChatEvent{
		{Type: domain.EventSession, SessionID: "s"},
		{Type: domain.EventChunk, Content: "I could not find that."},
		{Type: domain.EventSources, Sources: []domain.Source{}},
		{Type: domain.EventDone},
	}

	out, err := execute("ask", "q")

	require.NoError(t, err)
	assert.NotContains(t, out, "Sources:")
}

// ==== Renderer Tests ====

func TestRenderer_PlainForNonTerminal(t *testing.T) {
	r := newRenderer(new(bytes.Buffer))

	assert.False(t, r.styled)
	assert.Equal(t, "Sources:", r.render(r.styles.Title, "Sources:"))
}

func TestPrintSources(t *testing.T) {
	buf := new(bytes.Buffer)
	r := newRenderer(buf)

	printSources(buf, r, []domain.Source{
		{Title: "A", Category: "HR", SourceURL: "https://a"},
		{Title: "B", Category: "Finance"},
	})

	out := buf.String()
	assert.Contains(t, out, "[1] A (HR)\n      https://a\n")
	assert.Contains(t, out, "[2] B (Finance)\n")
}

func TestIsTerminal_NonFile(t *testing.T) {
	assert.False(t, isTerminal(new(bytes.Buffer)))
}

// ==== Chat Command Tests ====

func TestChatCmd_RunsTUI(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	original := runChatTUI
	defer func() { runChatTUI = original }()

	var gotSession string
	runChatTUI = func(_ context.Context, ports *tui.Ports, sessionID string) error {
		gotSession = sessionID
		assert.Equal(t, ts.chat, ports.Chat)
		return nil
	}

	_, err := execute("chat", "--session", "abc")

	require.NoError(t, err)
	assert.Equal(t, "abc", gotSession)
}

func TestChatCmd_TUIError(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	original := runChatTUI
	defer func() { runChatTUI = original }()
	runChatTUI = func(context.Context, *tui.Ports, string) error {
		return errors.New("no tty")
	}

	_, err := execute("chat")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "TUI error: no tty")
}

func TestChatCmd_RecoversPanic(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	original := runChatTUI
	defer func() { runChatTUI = original }()
	runChatTUI = func(context.Context, *tui.Ports, string) error {
		panic("boom")
	}

	_, err := execute("chat")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat UI panic: boom")
}
