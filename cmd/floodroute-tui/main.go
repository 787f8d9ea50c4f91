// Command floodroute-tui is a live dashboard that subscribes to a running
// floodroute-server's status broadcast and renders the latest tick.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/floodroute/pkg/statuspub"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			MarginLeft(2).
			MarginTop(1)

	statsBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(1, 2).
			MarginRight(2)

	warnBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#FFAA00")).
			Padding(1, 2)

	degradedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFAA00")).Bold(true)
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")).Bold(true)
	staleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1).
			MarginLeft(2)
)

type statusMsg statuspub.Status
type subErrMsg error
type tickMsg time.Time

type model struct {
	sub       *statuspub.Subscriber
	statusCh  chan statuspub.Status
	errCh     chan error
	latest    statuspub.Status
	haveTick  bool
	connected bool
	lastErr   error
	width     int
}

func initialModel(sub *statuspub.Subscriber) model {
	return model{
		sub:       sub,
		statusCh:  make(chan statuspub.Status, 16),
		errCh:     make(chan error, 1),
		connected: true,
	}
}

func (m model) Init() tea.Cmd {
	go m.recvLoop()
	return tea.Batch(waitForStatus(m.statusCh), waitForErr(m.errCh), clockTick())
}

func (m model) recvLoop() {
	for {
		st, err := m.sub.Recv()
		if err != nil {
			m.errCh <- err
			return
		}
		m.statusCh <- st
	}
}

func waitForStatus(ch chan statuspub.Status) tea.Cmd {
	return func() tea.Msg { return statusMsg(<-ch) }
}

func waitForErr(ch chan error) tea.Cmd {
	return func() tea.Msg { return subErrMsg(<-ch) }
}

func clockTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case statusMsg:
		m.latest = statuspub.Status(msg)
		m.haveTick = true
		m.connected = true
		return m, waitForStatus(m.statusCh)

	case subErrMsg:
		m.lastErr = msg
		m.connected = false
		return m, waitForErr(m.errCh)

	case tickMsg:
		return m, clockTick()
	}
	return m, nil
}

func (m model) View() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("floodroute — live hazard status"))
	s.WriteString("\n\n")

	if !m.haveTick {
		s.WriteString(statsBoxStyle.Render("waiting for first tick..."))
		s.WriteString("\n\n")
		s.WriteString(helpStyle.Render("q to quit"))
		return s.String()
	}

	age := time.Since(m.latest.At).Round(time.Second)
	ageLine := okStyle.Render(fmt.Sprintf("%s ago", age))
	if age > 2*30*time.Minute {
		ageLine = staleStyle.Render(fmt.Sprintf("%s ago (stale)", age))
	}

	statsContent := fmt.Sprintf(`Tick:            %d
Last tick:       %s
Scheduler:       %s
Edges updated:   %d
Scouts ingested: %d
Scouts rejected: %d
Fusion duration: %s`,
		m.latest.Tick,
		ageLine,
		schedulerLabel(m.latest.SchedulerPaused),
		m.latest.EdgesUpdated,
		m.latest.ScoutsIngested,
		m.latest.ScoutsRejected,
		m.latest.FusionDuration,
	)
	statsBox := statsBoxStyle.Render(statsContent)

	warnContent := "no route warnings"
	if m.latest.LastRouteWarn != "" {
		warnContent = degradedStyle.Render(m.latest.LastRouteWarn)
	}
	if !m.connected {
		warnContent += "\n\n" + staleStyle.Render(fmt.Sprintf("subscriber disconnected: %v", m.lastErr))
	}
	warnBox := warnBoxStyle.Render(warnContent)

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, statsBox, warnBox))
	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("q to quit"))
	return s.String()
}

func schedulerLabel(paused bool) string {
	if paused {
		return degradedStyle.Render("paused (backpressure)")
	}
	return okStyle.Render("running")
}

func main() {
	addr := flag.String("addr", "tcp://127.0.0.1:9095", "floodroute-server statuspub PUB address to subscribe to")
	flag.Parse()

	sub, err := statuspub.NewSubscriber(*addr)
	if err != nil {
		log.Fatalf("failed to connect to status publisher at %s: %v", *addr, err)
	}
	defer sub.Close()

	p := tea.NewProgram(initialModel(sub), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("tui exited with error: %v", err)
	}
}
