package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	overlay "github.com/rmhubbert/bubbletea-overlay"
	"github.com/spf13/cobra"

	"github.com/joshuapare/binalloc/alloc"
	"github.com/joshuapare/binalloc/internal/logger"
	"github.com/joshuapare/binalloc/pkg/malloc"
)

var (
	watchGoroutines int
	watchInterval   time.Duration
)

func init() {
	cmd := newWatchCmd()
	cmd.Flags().IntVarP(&watchGoroutines, "goroutines", "g", 4, "Number of background workers")
	cmd.Flags().DurationVar(&watchInterval, "interval", 250*time.Millisecond, "Refresh interval")
	rootCmd.AddCommand(cmd)
}

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Show live allocator counters while a workload runs",
		Long: `The watch command starts a background alloc/free workload against the
default heap and renders the allocator counters as they change.

Example:
  binallocctl watch
  binallocctl watch -g 16 --interval 1s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch()
		},
	}
	return cmd
}

func runWatch() error {
	if err := malloc.Err(); err != nil {
		return err
	}
	if watchInterval <= 0 {
		return fmt.Errorf("interval must be positive, got %v", watchInterval)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := newWorkload(watchGoroutines, 0)
	done := make(chan error, 1)
	go func() { done <- w.run(ctx) }()

	m := newWatchModel(w, watchInterval)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()

	cancel()
	if werr := <-done; werr != nil {
		logger.Warn("watch workload finished with errors", "error", werr)
	}
	if err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

type tickMsg time.Time

type copiedMsg struct{ err error }

// watchModel is the bubbletea model for the live counters view.
type watchModel struct {
	keys     KeyMap
	help     help.Model
	work     *workload
	interval time.Duration

	cur, prev alloc.Stats
	rate      float64 // allocation requests per second over the last tick
	peak      float64

	showHelp bool
	status   string
	width    int
}

func newWatchModel(w *workload, interval time.Duration) watchModel {
	return watchModel{
		keys:     DefaultKeyMap(),
		help:     help.New(),
		work:     w,
		interval: interval,
		cur:      malloc.Stats(),
	}
}

func (m watchModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func copyReport(report string) tea.Cmd {
	return func() tea.Msg {
		return copiedMsg{err: clipboard.WriteAll(report)}
	}
}

func (m watchModel) Init() tea.Cmd {
	return m.tick()
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		m.prev, m.cur = m.cur, malloc.Stats()
		m.rate = float64(m.cur.AllocRequests-m.prev.AllocRequests) / m.interval.Seconds()
		if m.rate > m.peak {
			m.peak = m.rate
		}
		return m, m.tick()

	case copiedMsg:
		if msg.err != nil {
			logger.Warn("clipboard copy failed", "error", msg.err)
			m.status = errorStyle.Render("copy failed: " + msg.err.Error())
		} else {
			m.status = "report copied to clipboard"
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			if m.showHelp && msg.String() == "esc" {
				m.showHelp = false
				return m, nil
			}
			return m, tea.Quit
		case key.Matches(msg, m.keys.Pause):
			m.work.paused.Store(!m.work.paused.Load())
			return m, nil
		case key.Matches(msg, m.keys.Copy):
			return m, copyReport(m.cur.String())
		case key.Matches(msg, m.keys.Reset):
			m.peak = m.rate
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			m.help.ShowAll = m.showHelp
			return m, nil
		}
	}
	return m, nil
}

func (m watchModel) View() string {
	if m.showHelp {
		return overlay.New(
			panel(helpPaneStyle.Render(m.help.View(m.keys))),
			panel(m.renderMain()),
			overlay.Center,
			overlay.Center,
			0,
			0,
		).View()
	}
	return m.renderMain()
}

func (m watchModel) renderMain() string {
	title := headerStyle.Render("binalloc live counters")

	state := rateStyle.Render("running")
	if m.work.paused.Load() {
		state = pausedStyle.Render("paused")
	}

	status := m.status
	if status == "" {
		status = m.help.ShortHelpView(m.keys.ShortHelp())
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		paneStyle.Render(renderCounters(m.cur)),
		paneStyle.Render(renderRates(m.rate, m.peak, state)),
		statusStyle.Render(status),
	)
}

func renderCounters(s alloc.Stats) string {
	rows := []struct {
		label string
		value string
	}{
		{"arena bytes", fmt.Sprintf("%s (%s)", humanize.Comma(int64(s.ArenaBytes)), humanize.IBytes(s.ArenaBytes))},
		{"mmap bytes", fmt.Sprintf("%s (%s)", humanize.Comma(int64(s.MappedBytes)), humanize.IBytes(s.MappedBytes))},
		{"blocks carved", humanize.Comma(int64(s.Blocks))},
		{"allocation requests", humanize.Comma(int64(s.AllocRequests))},
		{"free requests", humanize.Comma(int64(s.FreeRequests))},
		{"free blocks", humanize.Comma(int64(s.FreeBlocks))},
		{"rejected frees", humanize.Comma(int64(s.RejectedFrees))},
	}

	var b strings.Builder
	for i, r := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(labelStyle.Render(r.label))
		b.WriteString(valueStyle.Render(r.value))
	}
	return b.String()
}

func renderRates(rate, peak float64, state string) string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		labelStyle.Render("workload")+state,
		labelStyle.Render("allocs/s")+valueStyle.Render(humanize.Comma(int64(rate))),
		labelStyle.Render("peak allocs/s")+valueStyle.Render(humanize.Comma(int64(peak))),
	)
}

// panel is a static tea.Model used as an overlay layer.
type panel string

func (p panel) Init() tea.Cmd                       { return nil }
func (p panel) Update(tea.Msg) (tea.Model, tea.Cmd) { return p, nil }
func (p panel) View() string                        { return string(p) }
