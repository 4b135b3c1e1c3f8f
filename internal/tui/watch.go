package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/aquaclean/internal/client"
	"github.com/muurk/aquaclean/internal/protocol"
)

// DefaultWatchInterval is how often the dashboard polls the appliance.
const DefaultWatchInterval = 5 * time.Second

// Messages for async operations
type statusMsg struct {
	params  protocol.SystemParameters
	pending []client.Tentative
	err     error
}

type identMsg struct {
	ident protocol.DeviceIdentification
	err   error
}

type commandMsg struct {
	action string
	err    error
}

type tickMsg time.Time

// watchKeyMap defines key bindings for the watch dashboard
type watchKeyMap struct {
	Refresh key.Binding
	Lid     key.Binding
	Rear    key.Binding
	Front   key.Binding
	Dryer   key.Binding
	Flush   key.Binding
	Quit    key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k watchKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Refresh, k.Lid, k.Rear, k.Front, k.Dryer, k.Flush, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k watchKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Refresh, k.Lid, k.Rear},
		{k.Front, k.Dryer, k.Flush, k.Quit},
	}
}

func newWatchKeyMap() watchKeyMap {
	return watchKeyMap{
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Lid:     key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "lid")),
		Rear:    key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "rear wash")),
		Front:   key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "front wash")),
		Dryer:   key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "dryer")),
		Flush:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "flush")),
		Quit:    key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q", "quit")),
	}
}

// WatchModel is the live appliance dashboard. It polls the appliance for a
// fresh status snapshot on an interval and renders the parameters, marking
// optimistically toggled values until the next real read confirms them.
type WatchModel struct {
	client   *client.Client
	nickname string
	interval time.Duration

	spin spinner.Model
	help help.Model
	keys watchKeyMap

	ident    protocol.DeviceIdentification
	hasIdent bool

	params     protocol.SystemParameters
	pending    []client.Tentative
	hasStatus  bool
	refreshing bool
	lastUpdate time.Time
	lastErr    error
	lastAction string

	Width  int
	Height int
}

// NewWatchModel creates a dashboard for one connected appliance.
func NewWatchModel(c *client.Client, nickname string, interval time.Duration) WatchModel {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	return WatchModel{
		client:     c,
		nickname:   nickname,
		interval:   interval,
		spin:       s,
		help:       help.New(),
		keys:       newWatchKeyMap(),
		refreshing: true,
	}
}

// Init kicks off identification and the first status poll.
func (m WatchModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.fetchIdent(), m.fetchStatus())
}

// fetchIdent requests the appliance identity in the background.
func (m WatchModel) fetchIdent() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		ident, err := c.Identify(context.Background())
		return identMsg{ident: ident, err: err}
	}
}

// fetchStatus requests a fresh status snapshot in the background.
func (m WatchModel) fetchStatus() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		_, err := c.ReadStatus(context.Background())
		params, pending := c.State().Snapshot()
		return statusMsg{params: params, pending: pending, err: err}
	}
}

// runCommand performs a toggle or flush in the background.
func (m WatchModel) runCommand(action string, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return commandMsg{action: action, err: fn(context.Background())}
	}
}

// scheduleTick arms the next poll.
func (m WatchModel) scheduleTick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages for the dashboard.
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case identMsg:
		if msg.err == nil {
			m.ident = msg.ident
			m.hasIdent = true
		}
		return m, nil

	case statusMsg:
		m.refreshing = false
		m.lastErr = msg.err
		if msg.err == nil {
			m.params = msg.params
			m.pending = msg.pending
			m.hasStatus = true
			m.lastUpdate = time.Now()
		}
		return m, m.scheduleTick()

	case tickMsg:
		m.refreshing = true
		return m, m.fetchStatus()

	case commandMsg:
		m.lastAction = msg.action
		m.lastErr = msg.err
		// Reflect the optimistic toggle immediately
		m.params, m.pending = m.client.State().Snapshot()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Refresh):
			m.refreshing = true
			return m, m.fetchStatus()

		case key.Matches(msg, m.keys.Lid):
			return m, m.runCommand("toggle lid", m.client.ToggleLid)

		case key.Matches(msg, m.keys.Rear):
			return m, m.runCommand("toggle rear wash", m.client.ToggleAnalShower)

		case key.Matches(msg, m.keys.Front):
			return m, m.runCommand("toggle front wash", m.client.ToggleLadyShower)

		case key.Matches(msg, m.keys.Dryer):
			return m, m.runCommand("toggle dryer", m.client.ToggleDryer)

		case key.Matches(msg, m.keys.Flush):
			return m, m.runCommand("flush", m.client.TriggerFlush)
		}
	}

	return m, nil
}

// View renders the dashboard.
func (m WatchModel) View() string {
	content := m.buildContent()
	helpText := m.help.View(m.keys)
	return RenderApplicationContainer(content, helpText, m.Width, m.Height)
}

func (m WatchModel) buildContent() string {
	var b strings.Builder

	title := "Appliance Status"
	if m.nickname != "" {
		title = m.nickname
	}
	b.WriteString(RenderTitle(title))
	b.WriteString("\n")

	if m.hasIdent {
		b.WriteString(SubtitleStyle.Render(fmt.Sprintf("%s  %s  %s",
			m.ident.Description, m.ident.SerialNumber, m.ident.FirmwareVersion)))
		b.WriteString("\n")
	}

	if !m.hasStatus {
		b.WriteString("\n")
		b.WriteString(m.spin.View())
		b.WriteString(" Waiting for first status read...\n")
	} else {
		b.WriteString(m.renderParameters())
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatusLine())

	return b.String()
}

// tentativeSet builds a lookup for parameters awaiting confirmation.
func (m WatchModel) tentativeSet() map[client.Tentative]bool {
	set := make(map[client.Tentative]bool, len(m.pending))
	for _, t := range m.pending {
		set[t] = true
	}
	return set
}

func (m WatchModel) renderParameters() string {
	tentative := m.tentativeSet()
	var b strings.Builder

	onOff := func(label string, on bool, t client.Tentative) {
		b.WriteString(LabelStyle.Render(label))
		value := "off"
		style := OffStyle
		if on {
			value = "on"
			style = OnStyle
		}
		if tentative[t] {
			b.WriteString(TentativeStyle.Render(value + " (pending)"))
		} else {
			b.WriteString(style.Render(value))
		}
		b.WriteString("\n")
	}

	flag := func(label string, on bool) {
		b.WriteString(LabelStyle.Render(label))
		if on {
			b.WriteString(WarningStyle.Render("yes"))
		} else {
			b.WriteString(OffStyle.Render("no"))
		}
		b.WriteString("\n")
	}

	onOff("Rear wash", m.params.AnalShowerRunning, client.TentativeAnalShower)
	onOff("Front wash", m.params.LadyShowerRunning, client.TentativeLadyShower)
	onOff("Dryer", m.params.DryerRunning, client.TentativeDryer)
	onOff("Lid open", m.params.LidOpen, client.TentativeLid)

	b.WriteString(LabelStyle.Render("User sitting"))
	if m.params.UserIsSitting {
		b.WriteString(OnStyle.Render("yes"))
	} else {
		b.WriteString(OffStyle.Render("no"))
	}
	b.WriteString("\n")

	b.WriteString(LabelStyle.Render("Water temperature"))
	b.WriteString(fmt.Sprintf("%d°C\n", m.params.WaterTemperature))

	b.WriteString(LabelStyle.Render("Spray intensity"))
	b.WriteString(fmt.Sprintf("%d/5\n", m.params.SprayIntensity))

	b.WriteString(LabelStyle.Render("Spray position"))
	b.WriteString(fmt.Sprintf("%d/5\n", m.params.SprayPosition))

	b.WriteString(LabelStyle.Render("Active profile"))
	b.WriteString(fmt.Sprintf("%d\n", m.params.ActiveUserProfile))

	flag("Descaling needed", m.params.DescalingNeeded)
	flag("Maintenance needed", m.params.MaintenanceNeeded)

	return b.String()
}

func (m WatchModel) renderStatusLine() string {
	var parts []string

	if m.refreshing {
		parts = append(parts, m.spin.View()+" refreshing")
	} else if !m.lastUpdate.IsZero() {
		parts = append(parts, fmt.Sprintf("updated %s", m.lastUpdate.Format("15:04:05")))
	}

	if m.lastAction != "" && m.lastErr == nil {
		parts = append(parts, m.lastAction+" ok")
	}

	if m.lastErr != nil {
		parts = append(parts, RenderError(m.lastErr.Error()))
	}

	return StatusBarStyle.Render(strings.Join(parts, "  "))
}
