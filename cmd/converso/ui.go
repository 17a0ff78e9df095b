package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/go-go-golems/converso/pkg/conversation"
	"github.com/go-go-golems/converso/pkg/store"
)

type errMsg error

// states:
// - user input
// - user moving around messages
// - waiting for the reply to commit
// - showing error
type State string

const (
	StateUserInput    State = "user_input"
	StateMovingAround State = "moving_around"
	StateCompleting   State = "completing"
	StateError        State = "error"
)

type sendResultMsg struct {
	err error
}

type sessionsLoadedMsg struct {
	err error
}

type sessionSelectedMsg struct {
	err error
}

type completionStartedMsg struct{}

type completionDoneMsg struct {
	Fallback bool
}

type refreshMessagesMsg struct {
	GoToBottom bool
}

type model struct {
	manager   conversation.Manager
	directory *conversation.Directory

	viewport viewport.Model
	textArea textarea.Model
	help     help.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer

	// currently selected message, always valid while browsing
	selectedIdx int
	// non-empty while the textarea holds a message being rewritten
	editingTurnID string

	err         error
	keyMap      KeyMap
	style       *Style
	width       int
	height      int
	showSidebar bool

	state        State
	quitReceived bool
}

func initialModel(manager conversation.Manager, directory *conversation.Directory) model {
	ret := model{
		manager:     manager,
		directory:   directory,
		style:       DefaultStyles(),
		keyMap:      DefaultKeyMap,
		viewport:    viewport.New(0, 0),
		help:        help.New(),
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot)),
		showSidebar: true,
	}

	ret.textArea = textarea.New()
	ret.textArea.Placeholder = "Say something..."
	ret.textArea.Focus()
	ret.state = StateUserInput

	ret.updateKeyBindings()

	return ret
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.refreshSessions())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keyMap.Quit):
			m.quitReceived = true
			return m, tea.Quit

		case key.Matches(msg, m.keyMap.DismissError):
			if m.state == StateError {
				m.err = nil
				m.state = StateUserInput
				cmds = append(cmds, m.textArea.Focus())
				m.updateKeyBindings()
			}
			return m, tea.Batch(cmds...)

		case key.Matches(msg, m.keyMap.UnfocusMessage):
			if m.state == StateUserInput {
				m.textArea.Blur()
				m.editingTurnID = ""
				m.state = StateMovingAround
				m.selectedIdx = len(m.manager.Turns()) - 1
				m.updateKeyBindings()
			}

		case key.Matches(msg, m.keyMap.FocusMessage):
			if m.state == StateMovingAround {
				cmd = m.textArea.Focus()
				cmds = append(cmds, cmd)
				m.state = StateUserInput
				m.updateKeyBindings()
			}

		case key.Matches(msg, m.keyMap.SelectNextMessage):
			if m.selectedIdx < len(m.manager.Turns())-1 {
				m.selectedIdx++
				m.viewport.SetContent(m.messageView())
			}

		case key.Matches(msg, m.keyMap.SelectPrevMessage):
			if m.selectedIdx > 0 {
				m.selectedIdx--
				m.viewport.SetContent(m.messageView())
			}

		case key.Matches(msg, m.keyMap.EditMessage):
			if m.state == StateMovingAround {
				cmd = m.startEditing()
				cmds = append(cmds, cmd)
			}

		case key.Matches(msg, m.keyMap.SubmitMessage):
			if m.state == StateUserInput {
				cmd = m.submit()
				cmds = append(cmds, cmd)
			}

		case key.Matches(msg, m.keyMap.NewSession):
			cmds = append(cmds, m.newSession())

		case key.Matches(msg, m.keyMap.NextSession):
			cmds = append(cmds, m.switchSession(1))

		case key.Matches(msg, m.keyMap.PrevSession):
			cmds = append(cmds, m.switchSession(-1))

		case key.Matches(msg, m.keyMap.ToggleSidebar):
			m.showSidebar = !m.showSidebar
			m.recomputeSize()

		default:
			switch m.state {
			case StateUserInput:
				m.textArea, cmd = m.textArea.Update(msg)
				cmds = append(cmds, cmd)
			case StateMovingAround, StateCompleting, StateError:
				m.viewport, cmd = m.viewport.Update(msg)
				cmds = append(cmds, cmd)
			}
			return m, tea.Batch(cmds...)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recomputeSize()

	case errMsg:
		m.setError(msg)
		return m, nil

	case sendResultMsg:
		m.editingTurnID = ""
		if msg.err != nil {
			m.setError(msg.err)
		} else {
			m.state = StateUserInput
			m.textArea.SetValue("")
			cmds = append(cmds, m.textArea.Focus())
			m.updateKeyBindings()
		}
		cmds = append(cmds, func() tea.Msg {
			return refreshMessagesMsg{GoToBottom: true}
		})
		if m.quitReceived {
			cmds = append(cmds, tea.Quit)
		}

	case sessionsLoadedMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		// pick up the most recent session when nothing is selected yet
		if _, ok := m.directory.ActiveID(); !ok {
			if sessions := m.directory.Sessions(); len(sessions) > 0 {
				cmds = append(cmds, m.selectSession(sessions[0].ID))
			}
		}

	case sessionSelectedMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.selectedIdx = len(m.manager.Turns()) - 1
		cmds = append(cmds, func() tea.Msg {
			return refreshMessagesMsg{GoToBottom: true}
		})

	case completionStartedMsg:
		cmds = append(cmds, m.spinner.Tick)

	case completionDoneMsg:

	case spinner.TickMsg:
		if m.state == StateCompleting {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case refreshMessagesMsg:
		m.viewport.SetContent(m.messageView())
		m.recomputeSize()
		if msg.GoToBottom {
			m.viewport.GotoBottom()
		}

	default:
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *model) updateKeyBindings() {
	m.keyMap.SelectNextMessage.SetEnabled(m.state == StateMovingAround)
	m.keyMap.SelectPrevMessage.SetEnabled(m.state == StateMovingAround)
	m.keyMap.FocusMessage.SetEnabled(m.state == StateMovingAround)
	m.keyMap.EditMessage.SetEnabled(m.state == StateMovingAround)
	m.keyMap.UnfocusMessage.SetEnabled(m.state == StateUserInput)
	m.keyMap.SubmitMessage.SetEnabled(m.state == StateUserInput)

	m.keyMap.NewSession.SetEnabled(m.state != StateCompleting)
	m.keyMap.NextSession.SetEnabled(m.state != StateCompleting)
	m.keyMap.PrevSession.SetEnabled(m.state != StateCompleting)

	m.keyMap.DismissError.SetEnabled(m.state == StateError)
}

func (m *model) recomputeSize() {
	headerHeight := lipgloss.Height(m.headerView())
	textAreaHeight := lipgloss.Height(m.textAreaView())
	helpViewHeight := lipgloss.Height(m.help.View(m.keyMap))

	newHeight := m.height - textAreaHeight - headerHeight - helpViewHeight
	if newHeight < 0 {
		newHeight = 0
	}
	m.viewport.Width = m.contentWidth()
	m.viewport.Height = newHeight
	m.viewport.YPosition = headerHeight + 1

	h, _ := m.style.SelectedMessage.GetFrameSize()
	m.textArea.SetWidth(clampWidth(m.contentWidth() - h))

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(clampWidth(m.contentWidth()-h-m.style.SelectedMessage.GetHorizontalPadding())),
	)
	if err == nil {
		m.renderer = renderer
	}

	m.viewport.SetContent(m.messageView())
	m.viewport.GotoBottom()
}

func (m model) headerView() string {
	title := "no chat selected"
	if activeID, ok := m.directory.ActiveID(); ok {
		sessions := m.directory.Sessions()
		for idx, session := range sessions {
			if session.ID == activeID {
				title = fmt.Sprintf("%s (%d/%d)", session.Title, idx+1, len(sessions))
				break
			}
		}
	}
	return m.style.Header.Render("converso: " + title)
}

func (m model) messageView() string {
	ret := ""

	w, _ := m.style.SelectedMessage.GetFrameSize()
	contentWidth := clampWidth(m.contentWidth() - w - m.style.SelectedMessage.GetHorizontalPadding())

	for idx, turn := range m.manager.Turns() {
		v := m.renderTurn(turn, contentWidth)
		style := m.style.UnselectedMessage
		if idx == m.selectedIdx && m.state == StateMovingAround {
			style = m.style.SelectedMessage
		}
		ret += style.Width(m.contentWidth() - m.style.SelectedMessage.GetHorizontalPadding()).Render(v)
		ret += "\n"
	}

	return ret
}

// renderTurn renders assistant turns as markdown and user turns as wrapped
// plain text.
func (m model) renderTurn(turn store.Turn, width int) string {
	if turn.Role == store.RoleAssistant && m.renderer != nil {
		rendered, err := m.renderer.Render(turn.Content)
		if err == nil {
			return strings.TrimRight(rendered, "\n")
		}
	}
	return wordwrap.String(fmt.Sprintf("[%s]: %s", turn.Role, turn.Content), width)
}

func (m model) textAreaView() string {
	if m.err != nil {
		w, _ := m.style.ErrorMessage.GetFrameSize()
		v := wordwrap.String(m.err.Error(), clampWidth(m.contentWidth()-w))
		return m.style.ErrorMessage.Render(v)
	}

	if m.state == StateCompleting {
		return m.style.UnselectedMessage.Render(m.spinner.View() + " waiting for reply...")
	}

	v := m.textArea.View()
	if m.state == StateUserInput {
		return m.style.FocusedMessage.Render(v)
	}
	return m.style.UnselectedMessage.Render(v)
}

func (m model) View() string {
	main := m.viewport.View() + "\n" + m.textAreaView()
	if m.showSidebar {
		main = lipgloss.JoinHorizontal(lipgloss.Top, m.sidebarView(), main)
	}
	return m.headerView() + "\n" +
		main + "\n" +
		m.help.View(m.keyMap)
}

const sidebarWidth = 24

// contentWidth is the width available to the chat column.
func (m model) contentWidth() int {
	w := m.width
	if m.showSidebar {
		w -= sidebarWidth
	}
	return clampWidth(w)
}

func (m model) sidebarView() string {
	activeID, _ := m.directory.ActiveID()

	lines := []string{m.style.SidebarHeader.Render("Chats")}
	for _, session := range m.directory.Sessions() {
		title := session.Title
		if title == "" {
			title = session.ID
		}
		title = truncateTitle(title, sidebarWidth-6)
		if session.ID == activeID {
			lines = append(lines, m.style.SidebarActive.Render("> "+title))
		} else {
			lines = append(lines, m.style.SidebarItem.Render("  "+title))
		}
	}

	return m.style.Sidebar.
		Width(sidebarWidth - 2).
		Height(m.viewport.Height).
		Render(strings.Join(lines, "\n"))
}

func truncateTitle(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// submit commits the textarea content, either as a new message or as an edit
// of a previously selected user turn.
func (m *model) submit() tea.Cmd {
	text := m.textArea.Value()
	if strings.TrimSpace(text) == "" {
		return nil
	}

	m.state = StateCompleting
	m.updateKeyBindings()

	editingTurnID := m.editingTurnID
	manager := m.manager
	return func() tea.Msg {
		ctx := context.Background()
		if editingTurnID != "" {
			return sendResultMsg{err: manager.EditUserMessage(ctx, editingTurnID, text)}
		}
		return sendResultMsg{err: manager.SendUserMessage(ctx, text)}
	}
}

// startEditing loads the selected user turn into the textarea. Assistant
// turns cannot be edited.
func (m *model) startEditing() tea.Cmd {
	turns := m.manager.Turns()
	if m.selectedIdx < 0 || m.selectedIdx >= len(turns) {
		return nil
	}
	turn := turns[m.selectedIdx]
	if turn.Role != store.RoleUser {
		return nil
	}

	m.editingTurnID = turn.ID
	m.textArea.SetValue(turn.Content)
	m.state = StateUserInput
	m.updateKeyBindings()
	return m.textArea.Focus()
}

func (m model) refreshSessions() tea.Cmd {
	directory := m.directory
	return func() tea.Msg {
		_, err := directory.ListSessions(context.Background())
		return sessionsLoadedMsg{err: err}
	}
}

func (m *model) newSession() tea.Cmd {
	directory := m.directory
	return func() tea.Msg {
		session, err := directory.CreateSession(context.Background(), conversation.DefaultSessionTitle)
		if err != nil {
			return sessionSelectedMsg{err: err}
		}
		return sessionSelectedMsg{err: directory.SelectSession(context.Background(), session.ID)}
	}
}

func (m model) selectSession(sessionID string) tea.Cmd {
	directory := m.directory
	return func() tea.Msg {
		return sessionSelectedMsg{err: directory.SelectSession(context.Background(), sessionID)}
	}
}

// switchSession selects the session adjacent to the active one in the
// directory's newest-first ordering.
func (m *model) switchSession(offset int) tea.Cmd {
	sessions := m.directory.Sessions()
	if len(sessions) == 0 {
		return nil
	}

	target := 0
	if activeID, ok := m.directory.ActiveID(); ok {
		for idx, session := range sessions {
			if session.ID == activeID {
				target = idx + offset
				break
			}
		}
	}
	if target < 0 || target >= len(sessions) {
		return nil
	}

	return m.selectSession(sessions[target].ID)
}

func clampWidth(w int) int {
	if w < 10 {
		return 10
	}
	return w
}

func (m *model) setError(err error) {
	m.err = err
	m.state = StateError
	m.updateKeyBindings()
}
