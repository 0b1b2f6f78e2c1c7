package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"moia/internal/chat"
	"moia/internal/contextmgr"
	"moia/internal/defaults"
	"moia/internal/i18n"
	"moia/internal/session"
)

// focusArea 当前键盘焦点
// focusArea is where keyboard input goes
type focusArea int

const (
	focusInput focusArea = iota
	focusSidebar
)

// --- Tea Messages ---

// sendDoneMsg 发送已结束（成功、失败或取消）
// sendDoneMsg means a send settled (success, failure or cancel)
type sendDoneMsg struct{}

// refreshDoneMsg 会话目录刷新完成
// refreshDoneMsg means a directory refresh settled
type refreshDoneMsg struct{ err error }

// openDoneMsg 打开会话完成
// openDoneMsg means opening a conversation settled
type openDoneMsg struct {
	id  string
	err error
}

// removeDoneMsg 删除会话完成
// removeDoneMsg means a delete settled
type removeDoneMsg struct {
	id  string
	err error
}

// repaintMsg forces a re-read of shared state, used after the background
// refresh that follows a first reply.
type repaintMsg struct{}

// Deps carries the coordination core the TUI renders.
type Deps struct {
	Session    *session.Session
	Directory  *session.Directory
	Controller *session.Controller
	Tokenizer  *contextmgr.Tokenizer
}

// App Bubble Tea 主 Model
// App is the main Bubble Tea model
type App struct {
	deps Deps

	// 布局 / Layout
	width  int
	height int

	// 组件 / Components
	chatView viewport.Model
	input    textarea.Model

	// 状态 / State
	focus      focusArea
	selected   int // sidebar cursor
	attachMode bool
	status     string
	lastError  string

	theme  Theme
	keys   KeyMap
	locale *i18n.I18n
}

// NewApp 创建 TUI 应用
// NewApp creates a new TUI application
func NewApp(deps Deps) App {
	ta := textarea.New()
	ta.Placeholder = i18n.T("input.placeholder")
	ta.CharLimit = 8192
	ta.SetHeight(3)
	ta.Focus()

	return App{
		deps:   deps,
		input:  ta,
		theme:  DarkTheme(),
		keys:   DefaultKeyMap(),
		locale: i18n.Global(),
		status: i18n.T("status.ready"),
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, a.refreshCmd())
}

// --- Commands ---

func (a App) refreshCmd() tea.Cmd {
	d := a.deps.Directory
	return func() tea.Msg {
		return refreshDoneMsg{err: d.Refresh(context.Background())}
	}
}

func (a App) sendCmd(text string) tea.Cmd {
	c := a.deps.Controller
	return func() tea.Msg {
		// Send blocks until the request settles; a second Enter reaches
		// Update on the UI goroutine and cancels through the controller.
		_ = c.Send(context.Background(), text)
		return sendDoneMsg{}
	}
}

func (a App) openCmd(id string) tea.Cmd {
	d := a.deps.Directory
	return func() tea.Msg {
		return openDoneMsg{id: id, err: d.Select(context.Background(), id)}
	}
}

func (a App) removeCmd(id string) tea.Cmd {
	d := a.deps.Directory
	return func() tea.Msg {
		return removeDoneMsg{id: id, err: d.Remove(context.Background(), id)}
	}
}

// repaintLater re-reads shared state once the fire-and-forget refresh
// after a first reply has had time to land.
func repaintLater() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(time.Time) tea.Msg {
		return repaintMsg{}
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			a.deps.Controller.Cancel()
			return a, tea.Quit

		case "tab":
			if a.focus == focusInput {
				a.focus = focusSidebar
				a.input.Blur()
			} else {
				a.focus = focusInput
				a.input.Focus()
			}
			return a, nil

		case "ctrl+n":
			a.deps.Session.StartNew()
			a.selected = 0
			a.status = a.locale.T("status.new")
			a.syncChat()
			return a, nil

		case "ctrl+v":
			enabled := !a.deps.Session.VisionEnabled()
			a.deps.Session.SetVision(enabled)
			if enabled {
				a.status = a.locale.T("status.vision_on")
			} else {
				a.status = a.locale.T("status.vision_off")
			}
			return a, nil

		case "ctrl+o":
			a.attachMode = true
			a.focus = focusInput
			a.input.Focus()
			a.input.Reset()
			a.input.Placeholder = a.locale.T("input.attach")
			return a, nil

		case "ctrl+d":
			if id := a.deleteTarget(); id != "" {
				return a, a.removeCmd(id)
			}
			return a, nil

		case "esc":
			if a.attachMode {
				a.exitAttachMode()
				return a, nil
			}

		case "enter":
			return a.handleEnter()

		case "up":
			if a.focus == focusSidebar {
				if a.selected > 0 {
					a.selected--
				}
				return a, nil
			}

		case "down":
			if a.focus == focusSidebar {
				if a.selected < len(a.deps.Directory.Conversations())-1 {
					a.selected++
				}
				return a, nil
			}

		case "pgup":
			a.chatView.HalfViewUp()
			return a, nil

		case "pgdown":
			a.chatView.HalfViewDown()
			return a, nil
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.relayout()
		return a, nil

	case sendDoneMsg:
		a.status = a.locale.T("status.ready")
		a.syncChat()
		return a, repaintLater()

	case refreshDoneMsg:
		if msg.err != nil {
			a.lastError = msg.err.Error()
		}
		a.clampSelection()
		return a, nil

	case openDoneMsg:
		if msg.err != nil {
			a.lastError = a.locale.T("error.load", msg.err)
		} else {
			a.status = a.locale.T("status.ready")
		}
		a.syncChat()
		return a, nil

	case removeDoneMsg:
		if msg.err != nil {
			a.lastError = a.locale.T("error.delete", msg.err)
		}
		a.clampSelection()
		a.syncChat()
		return a, nil

	case repaintMsg:
		a.clampSelection()
		a.syncChat()
		return a, nil
	}

	if a.focus == focusInput {
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return a, tea.Batch(cmds...)
}

// handleEnter dispatches the Enter key: attach path entry, sidebar open,
// or the send/cancel toggle.
func (a App) handleEnter() (tea.Model, tea.Cmd) {
	if a.attachMode {
		path := strings.TrimSpace(a.input.Value())
		a.exitAttachMode()
		if path == "" {
			return a, nil
		}
		if !a.deps.Session.VisionEnabled() {
			// Attachments only travel with vision mode on.
			a.deps.Session.SetVision(true)
			a.status = a.locale.T("status.vision_on")
		}
		if err := a.deps.Session.Attachments().AddFiles(path); err != nil {
			a.lastError = a.locale.T("error.attach", err)
		}
		return a, nil
	}

	if a.focus == focusSidebar {
		convs := a.deps.Directory.Conversations()
		if a.selected < len(convs) {
			a.status = a.locale.T("status.loading")
			return a, a.openCmd(convs[a.selected].ID)
		}
		return a, nil
	}

	if a.deps.Controller.InFlight() {
		a.deps.Controller.Cancel()
		a.status = a.locale.T("status.cancelled")
		return a, nil
	}

	text := strings.TrimSpace(a.input.Value())
	if text == "" && a.deps.Session.Attachments().Count() == 0 {
		return a, nil
	}
	a.input.Reset()
	a.lastError = ""
	a.status = a.locale.T("status.sending")
	cmd := a.sendCmd(text)
	a.syncChatWithEcho(text)
	return a, cmd
}

// deleteTarget picks what ctrl+d removes: the sidebar selection when the
// sidebar has focus, otherwise the open conversation.
func (a App) deleteTarget() string {
	if a.focus == focusSidebar {
		convs := a.deps.Directory.Conversations()
		if a.selected < len(convs) {
			return convs[a.selected].ID
		}
		return ""
	}
	return a.deps.Session.ConversationID()
}

func (a *App) exitAttachMode() {
	a.attachMode = false
	a.input.Reset()
	a.input.Placeholder = a.locale.T("input.placeholder")
}

func (a *App) clampSelection() {
	if n := len(a.deps.Directory.Conversations()); a.selected >= n && n > 0 {
		a.selected = n - 1
	} else if n == 0 {
		a.selected = 0
	}
}

func (a *App) relayout() {
	mainWidth := a.width - a.sidebarWidth()
	panelHeight := a.height - 7
	if panelHeight < 3 {
		panelHeight = 3
	}
	a.chatView = viewport.New(mainWidth, panelHeight)
	a.input.SetWidth(mainWidth - 4)
	a.syncChat()
}

func (a *App) syncChat() {
	snap := a.deps.Session.Snapshot()
	content := RenderTranscript(snap.Messages, a.chatView.Width, a.theme)
	a.chatView.SetContent(content)
	a.chatView.GotoBottom()
}

// syncChatWithEcho paints the outgoing message before the controller's own
// echo lands, so the transcript never appears to lag the keystroke.
func (a *App) syncChatWithEcho(text string) {
	snap := a.deps.Session.Snapshot()
	msgs := snap.Messages
	if text != "" {
		msgs = append(msgs, chat.NewUserText(text))
	}
	content := RenderTranscript(msgs, a.chatView.Width, a.theme)
	a.chatView.SetContent(content)
	a.chatView.GotoBottom()
}

// --- Rendering ---

func (a App) View() string {
	if a.width == 0 || a.height == 0 {
		return "Initializing..."
	}

	sidebar := a.renderSidebar(a.sidebarWidth(), a.height-1)
	chatPanel := a.chatView.View()
	inputBox := a.theme.InputStyle.Width(a.chatView.Width).Render(a.input.View())
	main := lipgloss.JoinVertical(lipgloss.Left, chatPanel, inputBox)

	body := main
	if a.sidebarWidth() > 0 {
		body = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, main)
	}

	return lipgloss.JoinVertical(lipgloss.Left, body, a.renderStatusBar(a.width))
}

func (a App) sidebarWidth() int {
	if a.width < 80 {
		return 0
	}
	w := a.width * 25 / 100
	if w < 22 {
		w = 22
	}
	if w > 36 {
		w = 36
	}
	return w
}

func (a App) renderSidebar(width, height int) string {
	if width == 0 {
		return ""
	}
	var parts []string
	parts = append(parts, a.theme.TitleStyle.Render(" "+a.locale.T("panel.conversations")))
	parts = append(parts, "")

	convs := a.deps.Directory.Conversations()
	switch {
	case a.deps.Directory.Loading():
		parts = append(parts, a.theme.MutedStyle.Render("  "+a.locale.T("conv.loading")))
	case len(convs) == 0:
		parts = append(parts, a.theme.MutedStyle.Render("  "+a.locale.T("conv.empty")))
	default:
		activeID := a.deps.Session.ConversationID()
		for i, cv := range convs {
			title := cv.Title
			if strings.TrimSpace(title) == "" {
				title = a.locale.T("conv.untitled")
			}
			if lipgloss.Width(title) > width-6 {
				title = truncate(title, width-6)
			}
			line := "  " + title
			if cv.ID == activeID {
				line = "· " + title
			}
			if a.focus == focusSidebar && i == a.selected {
				line = a.theme.SelectedStyle.Render(line)
			}
			parts = append(parts, line)
		}
	}

	content := strings.Join(parts, "\n")
	return a.theme.SidebarStyle.Width(width).Height(height).Render(content)
}

func (a App) renderStatusBar(width int) string {
	snap := a.deps.Session.Snapshot()

	status := a.status
	if a.lastError != "" {
		status = a.theme.ErrorStyle.Render(a.lastError)
	}

	var right []string
	if a.deps.Tokenizer != nil {
		right = append(right, a.locale.T("status.tokens", a.deps.Tokenizer.Count(snap.Messages)))
	}
	if snap.VisionEnabled {
		right = append(right, a.theme.VisionOnStyle.Render(a.locale.T("status.vision_on")))
	}
	if n := len(snap.Attachments); n > 0 {
		right = append(right, a.locale.T("status.attachments", n))
	}
	right = append(right, a.theme.MutedStyle.Render(defaults.Disclaimer))

	left := " " + status
	rightStr := strings.Join(right, " · ") + " "

	gap := width - lipgloss.Width(left) - lipgloss.Width(rightStr)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + rightStr
	return a.theme.StatusBarStyle.Width(width).Render(bar)
}

func truncate(s string, max int) string {
	if max < 1 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

// Run 启动 Bubble Tea TUI
// Run starts the Bubble Tea TUI application
func Run(deps Deps) error {
	app := NewApp(deps)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
