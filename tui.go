package main

import (
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"murmur/gesture"
	"murmur/session"
)

type tickMsg time.Time

type pane int

const (
	paneHistory pane = iota
	panePinned
)

const noticeTTL = 3 * time.Second

type tuiModel struct {
	ctl      *session.Controller
	gestures *gesture.Interpreter

	width, height int
	frame         int
	pane          pane
	cursor        int
	notice        string
	noticeAt      time.Time
	statusLine    string // "[flac | local (auto)]"
	wheelDX       float64
}

var (
	tuiProgram *tea.Program
	tuiMu      sync.Mutex
)

var (
	recStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	busyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
	idleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	modeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	bufferStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
	itemStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	helpKeyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("239")).Bold(true)
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func NewTUIProgram(ctl *session.Controller, statusLine string) *tea.Program {
	m := tuiModel{
		ctl:        ctl,
		gestures:   gesture.New(),
		statusLine: statusLine,
	}
	return tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
}

func tuiSend(msg tea.Msg) {
	tuiMu.Lock()
	p := tuiProgram
	tuiMu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

func tuiTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m tuiModel) Init() tea.Cmd {
	return tuiTick()
}

// toggleCmd runs the toggle off the update loop; stopping a recording blocks
// on the encoder.
func (m tuiModel) toggleCmd() tea.Cmd {
	ctl := m.ctl
	return func() tea.Msg {
		ctl.ToggleRecording()
		return RefreshMsg{}
	}
}

func (m tuiModel) paneItems() []session.TranscriptItem {
	if m.pane == panePinned {
		return m.ctl.Pinned()
	}
	return m.ctl.History()
}

func (m *tuiModel) clampCursor() {
	n := len(m.paneItems())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		m.frame++
		if m.notice != "" && time.Since(m.noticeAt) > noticeTTL {
			m.notice = ""
		}
		return m, tuiTick()

	case RefreshMsg:
		m.clampCursor()

	case NoticeMsg:
		m.notice = msg.Text
		m.noticeAt = time.Now()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)
	}
	return m, nil
}

func (m tuiModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "r", " ", "space":
		return m, m.toggleCmd()

	case "m":
		if m.ctl.Mode() == session.ModeReplace {
			m.ctl.SetMode(session.ModeAppend)
		} else {
			m.ctl.SetMode(session.ModeReplace)
		}

	case "p":
		m.ctl.PinBuffer()

	case "c":
		m.ctl.ClearBuffer()

	case "tab":
		if m.pane == paneHistory {
			m.pane = panePinned
		} else {
			m.pane = paneHistory
		}
		m.cursor = 0

	case "up", "k":
		m.cursor--
		m.clampCursor()

	case "down", "j":
		m.cursor++
		m.clampCursor()

	case "enter":
		items := m.paneItems()
		if m.cursor < len(items) {
			id := items[m.cursor].ID
			if m.pane == panePinned {
				m.ctl.SelectPinned(id)
			} else {
				m.ctl.SelectHistory(id)
			}
		}

	case "d":
		if m.pane == panePinned {
			items := m.paneItems()
			if m.cursor < len(items) {
				m.ctl.RemovePinned(items[m.cursor].ID)
				m.clampCursor()
			}
		}
	}
	return m, nil
}

// handleMouse feeds horizontal drags and wheel motion to the gesture
// interpreter. A wheel notch counts as 25 cells of travel so two quick
// notches cross the threshold.
func (m *tuiModel) handleMouse(msg tea.MouseMsg) {
	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonLeft:
			m.gestures.DragStart(float64(msg.X))
		case tea.MouseButtonWheelLeft:
			m.wheelDX -= 25
			m.applyWheel()
		case tea.MouseButtonWheelRight:
			m.wheelDX += 25
			m.applyWheel()
		case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
			m.wheelDX = 0
		}
	case tea.MouseActionRelease:
		if msg.Button == tea.MouseButtonLeft {
			if mode, ok := m.gestures.DragEnd(float64(msg.X)); ok {
				m.ctl.SetMode(mode)
			}
		}
	}
}

func (m *tuiModel) applyWheel() {
	if mode, ok := m.gestures.Wheel(m.wheelDX, 0); ok {
		m.ctl.SetMode(mode)
		m.wheelDX = 0
	}
}

func modeLabel(mode session.Mode) string {
	if mode == session.ModeAppend {
		return "append"
	}
	return "replace"
}

func (m tuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	const leftWidth = 46

	var left []string

	switch m.ctl.State() {
	case session.StateRecording:
		left = append(left, recStyle.Render("● REC"))
	case session.StateTranscribing:
		spin := spinnerFrames[m.frame%len(spinnerFrames)]
		left = append(left, busyStyle.Render(spin+" transcribing"))
	default:
		left = append(left, idleStyle.Render("○ STANDBY"))
	}

	left = append(left, modeStyle.Render(fmt.Sprintf("mode: %s %s", modeLabel(m.ctl.Mode()), m.statusLine)))
	left = append(left, "")

	left = append(left, titleStyle.Render("Buffer"))
	buffer := m.ctl.Buffer()
	if buffer == "" {
		left = append(left, idleStyle.Render("(empty)"))
	} else {
		for _, line := range wrapText(buffer, leftWidth-2) {
			left = append(left, bufferStyle.Render(line))
		}
	}

	if m.notice != "" {
		left = append(left, "", noticeStyle.Render(m.notice))
	}

	left = append(left, "")
	left = append(left,
		helpKeyStyle.Render("Ctrl+Shift+Space")+helpStyle.Render(" or ")+
			helpKeyStyle.Render("r")+helpStyle.Render(" record"))
	left = append(left, helpStyle.Render("m mode · p pin · c clear · tab pane"))
	left = append(left, helpStyle.Render("enter insert · d unpin · q quit"))
	left = append(left, helpStyle.Render("murmur "+version))

	rightWidth := m.width - leftWidth - 1
	if rightWidth < 20 {
		rightWidth = 20
	}

	var right []string
	right = append(right, m.renderList("History", m.ctl.History(), m.pane == paneHistory, rightWidth)...)
	right = append(right, "")
	right = append(right, m.renderList("Pinned", m.ctl.Pinned(), m.pane == panePinned, rightWidth)...)

	leftPanel := lipgloss.NewStyle().
		Width(leftWidth).
		Height(m.height).
		PaddingLeft(1).
		Render(strings.Join(left, "\n"))
	rightPanel := lipgloss.NewStyle().
		Width(rightWidth).
		Height(m.height).
		PaddingLeft(1).
		Render(strings.Join(right, "\n"))

	return lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, rightPanel)
}

func (m tuiModel) renderList(title string, items []session.TranscriptItem, focused bool, width int) []string {
	head := title
	if focused {
		head += " *"
	}
	lines := []string{titleStyle.Render(head)}
	if len(items) == 0 {
		lines = append(lines, idleStyle.Render("(none)"))
		return lines
	}
	for i, it := range items {
		marker := "  "
		style := itemStyle
		if focused && i == m.cursor {
			marker = "> "
			style = cursorStyle
		}
		text := it.Text
		if limit := width - 4; limit > 4 && len(text) > limit {
			text = text[:limit-1] + "…"
		}
		lines = append(lines, marker+style.Render(text))
	}
	return lines
}

func wrapText(text string, width int) []string {
	if len(text) == 0 {
		return []string{""}
	}
	if width <= 0 {
		width = 1
	}

	var lines []string
	for len(text) > width {
		splitAt := width
		for i := width; i > 0; i-- {
			if text[i] == ' ' {
				splitAt = i
				break
			}
		}
		lines = append(lines, text[:splitAt])
		text = strings.TrimLeft(text[splitAt:], " ")
	}
	if len(text) > 0 {
		lines = append(lines, text)
	}
	return lines
}
