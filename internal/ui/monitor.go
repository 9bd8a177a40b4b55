package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fossabot/rodbus/modbus"
)

// Table selects which of the four Modbus data tables the monitor polls.
type Table string

// The four data tables.
const (
	TableCoils            Table = "coils"
	TableDiscreteInputs   Table = "discrete"
	TableHoldingRegisters Table = "holding"
	TableInputRegisters   Table = "input"
)

// ParseTable maps a CLI string onto a Table.
func ParseTable(s string) (Table, error) {
	switch Table(s) {
	case TableCoils, TableDiscreteInputs, TableHoldingRegisters, TableInputRegisters:
		return Table(s), nil
	default:
		return "", fmt.Errorf("unknown table %q (expected coils, discrete, holding, or input)", s)
	}
}

// MonitorConfig describes what the monitor polls and how often.
type MonitorConfig struct {
	Session  modbus.Session
	Endpoint string // For the header only
	Table    Table
	Range    modbus.AddressRange
	Interval time.Duration
}

// row is one rendered address/value pair.
type row struct {
	address uint16
	value   string
	on      bool
}

// pollResultMsg delivers one poll outcome into the tea loop.
type pollResultMsg struct {
	rows []row
	err  error
}

// tickMsg schedules the next poll.
type tickMsg time.Time

// monitorModel is the Bubble Tea model for the live monitor.
type monitorModel struct {
	cfg      MonitorConfig
	spin     spinner.Model
	rows     []row
	err      error
	polls    int
	lastPoll time.Time
	width    int
	quitting bool
}

func newMonitorModel(cfg MonitorConfig) monitorModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(PrimaryColor)
	return monitorModel{
		cfg:   cfg,
		spin:  s,
		width: GetTerminalWidth(),
	}
}

// Init implements tea.Model
func (m monitorModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.poll())
}

// poll reads the configured span once. It runs outside the tea loop.
func (m monitorModel) poll() tea.Cmd {
	cfg := m.cfg
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Session.Timeout()+time.Second)
		defer cancel()

		switch cfg.Table {
		case TableCoils, TableDiscreteInputs:
			var values []modbus.Indexed[bool]
			var err error
			if cfg.Table == TableCoils {
				values, err = cfg.Session.ReadCoils(ctx, cfg.Range)
			} else {
				values, err = cfg.Session.ReadDiscreteInputs(ctx, cfg.Range)
			}
			if err != nil {
				return pollResultMsg{err: err}
			}
			rows := make([]row, len(values))
			for i, v := range values {
				state := "OFF"
				if v.Value {
					state = "ON"
				}
				rows[i] = row{address: v.Index, value: state, on: v.Value}
			}
			return pollResultMsg{rows: rows}

		default:
			var values []modbus.Indexed[modbus.RegisterValue]
			var err error
			if cfg.Table == TableHoldingRegisters {
				values, err = cfg.Session.ReadHoldingRegisters(ctx, cfg.Range)
			} else {
				values, err = cfg.Session.ReadInputRegisters(ctx, cfg.Range)
			}
			if err != nil {
				return pollResultMsg{err: err}
			}
			rows := make([]row, len(values))
			for i, v := range values {
				rows[i] = row{
					address: v.Index,
					value:   fmt.Sprintf("%5d  0x%04X", v.Value.Uint16(), v.Value.Uint16()),
					on:      v.Value != 0,
				}
			}
			return pollResultMsg{rows: rows}
		}
	}
}

// Update implements tea.Model
func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		if m.width > MaxContentWidth {
			m.width = MaxContentWidth
		}
		return m, nil

	case pollResultMsg:
		m.polls++
		m.lastPoll = time.Now()
		m.err = msg.err
		if msg.err == nil {
			m.rows = msg.rows
		}
		return m, tea.Tick(m.cfg.Interval, func(t time.Time) tea.Msg {
			return tickMsg(t)
		})

	case tickMsg:
		return m, m.poll()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model
func (m monitorModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(TitleStyle.Render("rodbus monitor"))
	b.WriteString("\n")
	b.WriteString(SubtitleStyle.Render(fmt.Sprintf(
		"%s  unit %d  %s %d..%d  every %s",
		m.cfg.Endpoint,
		uint8(m.cfg.Session.UnitID()),
		m.cfg.Table,
		m.cfg.Range.Start,
		int(m.cfg.Range.Start)+int(m.cfg.Range.Count)-1,
		m.cfg.Interval,
	)))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(ErrorBannerStyle.Render("poll failed: " + m.err.Error()))
		b.WriteString("\n\n")
	}

	if len(m.rows) > 0 {
		var table strings.Builder
		table.WriteString(HeaderRowStyle.Render(fmt.Sprintf("%-10s %s", "ADDRESS", "VALUE")))
		table.WriteString("\n")
		table.WriteString(RenderDivider(24))
		table.WriteString("\n")
		for _, r := range m.rows {
			style := OffStyle
			if r.on {
				style = OnStyle
			}
			table.WriteString(CellStyle.Render(fmt.Sprintf("%-10d ", r.address)))
			table.WriteString(style.Render(r.value))
			table.WriteString("\n")
		}
		b.WriteString(TableBorderStyle(m.width).Render(table.String()))
		b.WriteString("\n")
	} else if m.err == nil {
		b.WriteString(SubtitleStyle.Render(m.spin.View() + " waiting for first poll..."))
		b.WriteString("\n")
	}

	footer := fmt.Sprintf("%s polls: %d", m.spin.View(), m.polls)
	if !m.lastPoll.IsZero() {
		footer += "  last: " + m.lastPoll.Format("15:04:05")
	}
	footer += "  (q to quit)"
	b.WriteString("\n")
	b.WriteString(FooterStyle.Render(footer))
	b.WriteString("\n")

	return b.String()
}

// RunMonitor runs the live monitor until the user quits.
func RunMonitor(cfg MonitorConfig) error {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	p := tea.NewProgram(newMonitorModel(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
