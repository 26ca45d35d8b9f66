package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/procdocs/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/procdocs/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/procdocs/internal/core/domain"
)

// mockChat is a hand-written driving.ChatOrchestrator.
type mockChat struct {
	events   []domain.ChatEvent
	err      error
	received domain.ChatRequest
}

func (m *mockChat) Chat(_ context.Context, req domain.ChatRequest) (<-chan domain.ChatEvent, error) {
	m.received = req
	if m.err != nil {
		return nil, m.err
	}
	ch := make(chan domain.ChatEvent, len(m.events))
	for _, ev := range m.events {
		ch <- ev
	}
	close(ch)
	return ch, nil
}

func (m *mockChat) History(_ context.Context, _ string) ([]domain.ChatMessage, error) {
	return nil, nil
}

func newTestApp(t *testing.T, chat *mockChat) *App {
	t.Helper()
	app, err := NewApp(&Ports{Chat: chat})
	require.NoError(t, err)
	app.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return app
}

func typeText(app *App, text string) {
	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

// drive runs a command and feeds its messages back until the stream ends.
func drive(app *App, cmd tea.Cmd) {
	for cmd != nil {
		msg := cmd()
		if msg == nil {
			return
		}
		_, cmd = app.Update(msg)
	}
}

// ==== Construction Tests ====

func TestNewApp(t *testing.T) {
	t.Run("requires chat service", func(t *testing.T) {
		_, err := NewApp(&Ports{})
		assert.ErrorIs(t, err, ErrMissingChatService)
	})

	t.Run("nil ports", func(t *testing.T) {
		_, err := NewApp(nil)
		assert.ErrorIs(t, err, ErrMissingChatService)
	})

	t.Run("creates app", func(t *testing.T) {
		app, err := NewApp(&Ports{Chat: &mockChat{}})
		require.NoError(t, err)
		assert.NotNil(t, app.Init())
		assert.Equal(t, "Loading...", app.View())
	})
}

func TestApp_WithSession(t *testing.T) {
	app := newTestApp(t, &mockChat{})
	app.WithSession("s-9")

	assert.Equal(t, "s-9", app.SessionID())
}

// ==== Chat Flow Tests ====

func TestApp_SendStreamsAnswer(t *testing.T) {
	chat := &mockChat{events: []domain.ChatEvent{
		{Type: domain.EventSession, SessionID: "s-1"},
		{Type: domain.EventChunk, Content: "Submit the "},
		{Type: domain.EventChunk, Content: "leave form [1]."},
		{Type: domain.EventSources, Sources: []domain.Source{
			{DocumentID: "d1", Title: "Leave Policy", Category: "HR", SourceURL: "https://drive/x"},
		}},
		{Type: domain.EventDone},
	}}
	app := newTestApp(t, chat)

	typeText(app, "How do I book leave?")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, status.StateThinking, app.status.State())
	require.Len(t, app.turns, 2)
	assert.Empty(t, app.input.Value())

	drive(app, app.ask("How do I book leave?"))

	assert.Equal(t, "How do I book leave?", chat.received.Message)
	assert.Equal(t, tuiOwner, chat.received.OwnerID)
	assert.Equal(t, "s-1", app.SessionID())
	assert.Equal(t, status.StateReady, app.status.State())

	answer := app.turns[len(app.turns)-1]
	assert.Equal(t, "Submit the leave form [1].", answer.content)
	require.Len(t, answer.sources, 1)
	assert.Nil(t, app.events)

	view := app.View()
	assert.Contains(t, view, "Leave Policy")
	assert.Contains(t, view, "You")
}

func TestApp_SendIgnoresBlankInput(t *testing.T) {
	app := newTestApp(t, &mockChat{})

	typeText(app, "   ")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Empty(t, app.turns)
}

func TestApp_SessionContinues(t *testing.T) {
	chat := &mockChat{events: []domain.ChatEvent{
		{Type: domain.EventSession, SessionID: "s-1"},
		{Type: domain.EventDone},
	}}
	app := newTestApp(t, chat)

	drive(app, app.ask("first"))
	drive(app, app.ask("second"))

	assert.Equal(t, "s-1", chat.received.SessionID)
}

func TestApp_ErrorEvent(t *testing.T) {
	chat := &mockChat{events: []domain.ChatEvent{
		{Type: domain.EventSession, SessionID: "s-1"},
		{Type: domain.EventError, Message: "Error: generation failed"},
	}}
	app := newTestApp(t, chat)
	typeText(app, "q")
	app.Update(tea.KeyMsg{Type: tea.KeyEnter})

	drive(app, app.ask("q"))

	assert.Equal(t, status.StateError, app.status.State())
	assert.Equal(t, "Error: generation failed", app.turns[len(app.turns)-1].err)
	assert.Contains(t, app.View(), "generation failed")
}

func TestApp_RejectedQuestion(t *testing.T) {
	app := newTestApp(t, &mockChat{err: domain.ErrLLMUnavailable})
	typeText(app, "q")
	app.Update(tea.KeyMsg{Type: tea.KeyEnter})

	drive(app, app.ask("q"))

	assert.Equal(t, status.StateError, app.status.State())
	assert.Contains(t, app.turns[len(app.turns)-1].err, "LLM service unavailable")
}

func TestApp_StreamClosedWhileBusyMarksStopped(t *testing.T) {
	app := newTestApp(t, &mockChat{})
	typeText(app, "q")
	app.Update(tea.KeyMsg{Type: tea.KeyEnter})

	app.Update(messages.StreamClosed{})

	assert.True(t, app.turns[len(app.turns)-1].stopped)
	assert.Equal(t, status.StateReady, app.status.State())
}

// ==== Key Handling Tests ====

func TestApp_CancelStopsStream(t *testing.T) {
	app := newTestApp(t, &mockChat{})
	typeText(app, "q")
	app.Update(tea.KeyMsg{Type: tea.KeyEnter})

	cancelled := false
	app.Update(messages.StreamStarted{
		Events: make(chan domain.ChatEvent),
		Cancel: func() { cancelled = true },
	})
	app.Update(tea.KeyMsg{Type: tea.KeyEsc})

	assert.True(t, cancelled)
}

func TestApp_BusyIgnoresSend(t *testing.T) {
	app := newTestApp(t, &mockChat{})
	typeText(app, "q")
	app.Update(tea.KeyMsg{Type: tea.KeyEnter})

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Len(t, app.turns, 2)
}

func TestApp_NewSessionClearsTranscript(t *testing.T) {
	app := newTestApp(t, &mockChat{}).WithSession("s-1")
	app.turns = []turn{{role: domain.RoleUser, content: "hi"}}

	app.Update(tea.KeyMsg{Type: tea.KeyCtrlN})

	assert.Empty(t, app.turns)
	assert.Empty(t, app.SessionID())
}

func TestApp_NewLineInsertsBreak(t *testing.T) {
	app := newTestApp(t, &mockChat{})
	typeText(app, "line one")

	app.Update(tea.KeyMsg{Type: tea.KeyEnter, Alt: true})
	typeText(app, "line two")

	assert.Equal(t, "line one\nline two", app.input.Value())
	assert.Empty(t, app.turns)
}

func TestApp_QuitCancelsStream(t *testing.T) {
	app := newTestApp(t, &mockChat{})
	cancelled := false
	app.cancel = func() { cancelled = true }

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.True(t, cancelled)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

// ==== Rendering Tests ====

func TestApp_EmptyTranscriptHint(t *testing.T) {
	app := newTestApp(t, &mockChat{})
	assert.Contains(t, app.View(), "Ask how something is done")
}

func TestWaitForEvent_NilChannel(t *testing.T) {
	assert.Nil(t, waitForEvent(nil))
}

func TestApp_StreamFailedWithoutTurn(t *testing.T) {
	app := newTestApp(t, &mockChat{})

	app.Update(messages.StreamFailed{Err: errors.New("boom")})

	require.Len(t, app.turns, 1)
	assert.Equal(t, "boom", app.turns[0].err)
}
