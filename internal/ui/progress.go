// Package ui renders live batch progress in the terminal.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"jsfuzz/internal/driver"
)

// Rows beyond this are folded into a summary line.
const maxRows = 16

type progressModel struct {
	title   string
	events  <-chan driver.Event
	spinner spinner.Model
	prog    progress.Model
	items   []caseItem
	settled int
	counts  map[string]int
	width   int
	done    bool
}

type caseItem struct {
	seed   uint64
	status string
	stage  driver.Stage
	detail string
}

type eventMsg driver.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders the progress of
// count cases. It quits when events is closed.
func NewProgressModel(title string, count int, events <-chan driver.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		items:   make([]caseItem, max(count, 0)),
		counts:  make(map[string]int),
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(driver.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		pm, cmd := m.prog.Update(msg)
		m.prog = pm.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := fmt.Sprintf("%s (%d/%d)", m.title, m.settled, len(m.items))
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	statusWidth := 14
	nameWidth := max(m.width-statusWidth-4, 20)

	shown := 0
	for _, item := range m.items {
		// Settled cases with an ordinary verdict are only counted.
		if item.status == "" || item.status == "ok" || item.status == "exception" {
			continue
		}
		if shown == maxRows {
			break
		}
		shown++
		name := fmt.Sprintf("seed %d", item.seed)
		if item.detail != "" {
			name += "  " + item.detail
		}
		statusStyled := styleStatus(item.status).Render(fmt.Sprintf("%14s", item.status))
		fmt.Fprintf(&b, "  %s %s\n", statusStyled, truncate(name, nameWidth))
	}
	if shown > 0 {
		b.WriteString("\n")
	}

	b.WriteString("  " + m.summary() + "\n\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")
	return b.String()
}

func (m *progressModel) summary() string {
	parts := make([]string, 0, len(verdictOrder))
	for _, v := range verdictOrder {
		if n := m.counts[v]; n > 0 {
			parts = append(parts, styleStatus(v).Render(fmt.Sprintf("%s %d", v, n)))
		}
	}
	if len(parts) == 0 {
		return "no verdicts yet"
	}
	return strings.Join(parts, "  ")
}

var verdictOrder = []string{"ok", "exception", "timeout", "syntax-error", "crash", "error"}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev driver.Event) tea.Cmd {
	if ev.Case < 0 || ev.Case >= len(m.items) {
		return nil
	}
	item := &m.items[ev.Case]
	item.seed = ev.Seed
	switch ev.Status {
	case driver.StatusQueued:
		item.status = "queued"
		return nil
	case driver.StatusWorking:
		item.status = stageLabel(ev.Stage)
		item.stage = ev.Stage
	case driver.StatusDone:
		item.status = ev.Verdict
		m.settle(ev.Verdict)
	case driver.StatusError:
		item.status = "error"
		if ev.Err != nil {
			item.detail = ev.Err.Error()
		}
		m.settle("error")
	}

	total := 0.0
	for _, it := range m.items {
		total += progressFromStatus(it)
	}
	return m.prog.SetPercent(total / float64(len(m.items)))
}

func (m *progressModel) settle(label string) {
	m.settled++
	m.counts[label]++
}

func progressFromStatus(it caseItem) float64 {
	switch it.status {
	case "", "queued":
		return 0
	case "generating", "checking", "storing":
		switch it.stage {
		case driver.StageGenerate:
			return 0.2
		case driver.StageCheck:
			return 0.5
		case driver.StageStore:
			return 0.9
		}
		return 0
	default:
		return 1
	}
}

func stageLabel(stage driver.Stage) string {
	switch stage {
	case driver.StageGenerate:
		return "generating"
	case driver.StageCheck:
		return "checking"
	case driver.StageStore:
		return "storing"
	default:
		return "working"
	}
}

func styleStatus(status string) lipgloss.Style {
	switch status {
	case "ok":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case "exception", "timeout":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	case "syntax-error", "crash", "error":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case "generating", "checking", "storing":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
