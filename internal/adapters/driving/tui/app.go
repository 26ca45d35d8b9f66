package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/procdocs/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/procdocs/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/procdocs/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/procdocs/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/procdocs/internal/core/domain"
)

// tuiOwner is recorded as the owner of sessions started from the TUI.
const tuiOwner = "tui"

// Layout constants.
const (
	inputHeight   = 3
	inputChrome   = 2 // input border
	headerHeight  = 1
	statusHeight  = 1
	maxInputChars = 4000
)

// turn is one rendered entry of the transcript.
type turn struct {
	role    domain.Role
	content string
	sources []domain.Source
	err     string
	stopped bool
}

// App is the chat application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	input      textarea.Model
	transcript viewport.Model
	spinner    spinner.Model
	status     *status.Bar

	turns     []turn
	sessionID string

	// events and cancel belong to the in-flight question.
	events <-chan domain.ChatEvent
	cancel context.CancelFunc

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a chat TUI with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	input := textarea.New()
	input.Placeholder = "Ask about a company process..."
	input.ShowLineNumbers = false
	input.CharLimit = maxInputChars
	input.SetHeight(inputHeight)
	input.KeyMap.InsertNewline.SetEnabled(false)
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = s.AssistantLabel

	return &App{
		ports:      ports,
		ctx:        context.Background(),
		styles:     s,
		keymap:     km,
		input:      input,
		transcript: viewport.New(80, 20),
		spinner:    spin,
		status:     status.NewBar(s, km),
	}, nil
}

// WithContext sets the context questions run under.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// WithSession continues an existing session.
func (a *App) WithSession(id string) *App {
	a.sessionID = id
	a.status.SetSession(id)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		tea.SetWindowTitle("procdocs - Process Assistant"),
	)
}

// Update implements tea.Model.
//
//nolint:gocyclo // central message handler
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.StreamStarted:
		a.events = msg.Events
		a.cancel = msg.Cancel
		return a, waitForEvent(msg.Events)

	case messages.StreamFailed:
		a.finishStream()
		a.lastAnswer().err = msg.Err.Error()
		a.status.SetState(status.StateError)
		a.status.SetMessage(msg.Err.Error())
		a.refresh()
		return a, nil

	case messages.ChatEvent:
		a.handleEvent(msg.Event)
		a.refresh()
		return a, waitForEvent(a.events)

	case messages.StreamClosed:
		if a.status.Busy() {
			a.lastAnswer().stopped = true
			a.status.SetState(status.StateReady)
		}
		a.finishStream()
		a.refresh()
		return a, nil

	case spinner.TickMsg:
		if !a.status.Busy() {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		a.status.SetSpinner(a.spinner.View())
		return a, cmd
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch {
	case keymap.Matches(key, a.keymap.Quit):
		a.finishStream()
		return a, tea.Quit

	case keymap.Matches(key, a.keymap.ScrollUp), keymap.Matches(key, a.keymap.ScrollDown):
		var cmd tea.Cmd
		a.transcript, cmd = a.transcript.Update(msg)
		return a, cmd

	case a.status.Busy():
		if keymap.Matches(key, a.keymap.Cancel) && a.cancel != nil {
			a.cancel()
		}
		return a, nil

	case keymap.Matches(key, a.keymap.NewSession):
		a.turns = nil
		a.sessionID = ""
		a.status.Clear()
		a.refresh()
		return a, nil

	case keymap.Matches(key, a.keymap.NewLine):
		a.input.InsertString("\n")
		return a, nil

	case keymap.Matches(key, a.keymap.Send):
		question := strings.TrimSpace(a.input.Value())
		if question == "" {
			return a, nil
		}
		a.input.Reset()
		a.turns = append(a.turns,
			turn{role: domain.RoleUser, content: question},
			turn{role: domain.RoleAssistant},
		)
		a.status.SetState(status.StateThinking)
		a.status.SetMessage("")
		a.refresh()
		return a, tea.Batch(a.ask(question), a.spinner.Tick)
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) handleEvent(ev domain.ChatEvent) {
	answer := a.lastAnswer()
	switch ev.Type {
	case domain.EventSession:
		a.sessionID = ev.SessionID
		a.status.SetSession(ev.SessionID)
	case domain.EventChunk:
		answer.content += ev.Content
		a.status.SetState(status.StateStreaming)
	case domain.EventSources:
		answer.sources = ev.Sources
	case domain.EventDone:
		a.status.SetState(status.StateReady)
	case domain.EventError:
		answer.err = ev.Message
		a.status.SetState(status.StateError)
		a.status.SetMessage(ev.Message)
	}
}

// ask starts a chat turn in the background.
func (a *App) ask(question string) tea.Cmd {
	ctx, cancel := context.WithCancel(a.ctx)
	req := domain.ChatRequest{SessionID: a.sessionID, OwnerID: tuiOwner, Message: question}
	chat := a.ports.Chat

	return func() tea.Msg {
		events, err := chat.Chat(ctx, req)
		if err != nil {
			cancel()
			return messages.StreamFailed{Err: err}
		}
		return messages.StreamStarted{Events: events, Cancel: cancel}
	}
}

// waitForEvent reads the next event from the stream.
func waitForEvent(events <-chan domain.ChatEvent) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return messages.StreamClosed{}
		}
		return messages.ChatEvent{Event: ev}
	}
}

func (a *App) finishStream() {
	if a.cancel != nil {
		a.cancel()
	}
	a.cancel = nil
	a.events = nil
}

// lastAnswer returns the assistant turn being filled.
func (a *App) lastAnswer() *turn {
	if len(a.turns) == 0 || a.turns[len(a.turns)-1].role != domain.RoleAssistant {
		a.turns = append(a.turns, turn{role: domain.RoleAssistant})
	}
	return &a.turns[len(a.turns)-1]
}

func (a *App) resize(width, height int) {
	a.width = width
	a.height = height
	a.ready = true

	a.input.SetWidth(width - inputChrome - 2)
	a.transcript.Width = width
	a.transcript.Height = max(height-headerHeight-statusHeight-inputHeight-inputChrome, 1)
	a.status.SetWidth(width)
	a.refresh()
}

func (a *App) refresh() {
	a.transcript.SetContent(a.renderTranscript())
	a.transcript.GotoBottom()
}

func (a *App) renderTranscript() string {
	if len(a.turns) == 0 {
		return a.styles.Muted.Render("Ask how something is done at the company. Answers cite the process documents they come from.")
	}

	body := lipgloss.NewStyle().Width(max(a.width-2, 20))
	var b strings.Builder
	for i := range a.turns {
		t := &a.turns[i]
		if i > 0 {
			b.WriteString("\n\n")
		}
		if t.role == domain.RoleUser {
			b.WriteString(a.styles.UserLabel.Render("You"))
			b.WriteString("\n")
			b.WriteString(body.Render(t.content))
			continue
		}

		b.WriteString(a.styles.AssistantLabel.Render("Assistant"))
		b.WriteString("\n")
		if t.content != "" {
			b.WriteString(body.Render(t.content))
		}
		if t.stopped {
			b.WriteString(a.styles.Muted.Render(" (stopped)"))
		}
		if t.err != "" {
			b.WriteString("\n")
			b.WriteString(a.styles.Error.Render(t.err))
		}
		if len(t.sources) > 0 {
			b.WriteString("\n")
			b.WriteString(a.renderSources(t.sources))
		}
	}
	return b.String()
}

func (a *App) renderSources(sources []domain.Source) string {
	lines := []string{a.styles.Muted.Render("Sources:")}
	for i, src := range sources {
		line := fmt.Sprintf("  [%d] %s %s", i+1,
			a.styles.SourceTitle.Render(src.Title),
			a.styles.Muted.Render("("+src.Category+")"))
		if src.SourceURL != "" {
			line += " " + a.styles.Link.Render(src.SourceURL)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Loading..."
	}

	header := a.styles.Title.Render("procdocs") + a.styles.Muted.Render("  process assistant")
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		a.transcript.View(),
		a.styles.InputField.Render(a.input.View()),
		a.status.View(),
	)
}

// SessionID returns the active session.
func (a *App) SessionID() string {
	return a.sessionID
}

// Run starts the chat TUI and blocks until the user quits.
func Run(ctx context.Context, ports *Ports, sessionID string) error {
	app, err := NewApp(ports)
	if err != nil {
		return err
	}
	app.WithContext(ctx).WithSession(sessionID)

	_, err = tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
