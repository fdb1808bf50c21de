package main

import (
	"encoding/json"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zerovacancy/zerovacancy/domain/autocomplete"
	"github.com/zerovacancy/zerovacancy/domain/locations"
)

// stateMsg carries a controller snapshot into the update loop.
type stateMsg autocomplete.State

// pick is the committed suggestion.
type pick struct {
	Location locations.Location `json:"location"`
	Text     string             `json:"text"`
}

type styles struct {
	title   lipgloss.Style
	group   lipgloss.Style
	item    lipgloss.Style
	active  lipgloss.Style
	muted   lipgloss.Style
	loading lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C5CFF")),
		group:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")).PaddingLeft(1),
		item:    lipgloss.NewStyle().PaddingLeft(3),
		active:  lipgloss.NewStyle().PaddingLeft(1).Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#7C5CFF")),
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		loading: lipgloss.NewStyle().Foreground(lipgloss.Color("#22C1A4")),
	}
}

// model adapts the autocomplete controller to bubbletea. The controller
// publishes from its timer goroutine, so snapshots are funnelled through
// updates and read back one message at a time.
type model struct {
	input   textinput.Model
	ctrl    *autocomplete.Controller
	updates chan autocomplete.State
	state   autocomplete.State
	picked  *pick
	styles  styles
}

func newModel(filter autocomplete.FilterFunc, opts ...autocomplete.Option) model {
	ti := textinput.New()
	ti.Placeholder = "City or zip code"
	ti.CharLimit = 64
	ti.Width = 40
	ti.Focus()

	m := model{
		input:   ti,
		updates: make(chan autocomplete.State, 16),
		picked:  &pick{},
		styles:  defaultStyles(),
	}

	picked := m.picked
	opts = append(opts, autocomplete.WithOnSelect(func(loc locations.Location, text string) {
		*picked = pick{Location: loc, Text: text}
	}))
	m.ctrl = autocomplete.NewController(filter, opts...)
	m.state = m.ctrl.State()

	updates := m.updates
	m.ctrl.Subscribe(func(s autocomplete.State) {
		select {
		case updates <- s:
		default:
			// The loop is behind; it rereads State() on the next message.
		}
	})
	return m
}

func (m model) waitForState() tea.Msg {
	s, ok := <-m.updates
	if !ok {
		return nil
	}
	return stateMsg(s)
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForState)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stateMsg:
		m.state = m.ctrl.State()
		return m, m.waitForState

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyDown:
			m.ctrl.Key(autocomplete.KeyArrowDown)
			m.state = m.ctrl.State()
			return m, nil
		case tea.KeyUp:
			m.ctrl.Key(autocomplete.KeyArrowUp)
			m.state = m.ctrl.State()
			return m, nil
		case tea.KeyEsc:
			if !m.ctrl.Key(autocomplete.KeyEscape) {
				return m, tea.Quit
			}
			m.state = m.ctrl.State()
			return m, nil
		case tea.KeyEnter:
			m.ctrl.Key(autocomplete.KeyEnter)
			m.state = m.ctrl.State()
			if _, ok := m.Picked(); ok {
				m.input.SetValue(m.state.Text)
				return m, tea.Quit
			}
			return m, nil
		}
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != before {
		m.ctrl.Input(v)
		m.state = m.ctrl.State()
	}
	return m, cmd
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render("Find creators near your property"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	if m.state.Loading {
		b.WriteString(m.styles.loading.Render("  searching…"))
	}
	b.WriteString("\n")

	const help = "\n↑/↓ move · enter pick · esc close · ctrl+c quit\n"
	s := m.state.Suggestions
	if !m.state.Visible {
		b.WriteString(m.styles.muted.Render(help))
		return b.String()
	}
	if s.Len() == 0 {
		b.WriteString(m.styles.muted.Render("\n  no matches\n"))
		b.WriteString(m.styles.muted.Render(help))
		return b.String()
	}

	idx := 0
	row := func(label string) {
		if idx == m.state.Active {
			b.WriteString(m.styles.active.Render("› " + label))
		} else {
			b.WriteString(m.styles.item.Render(label))
		}
		b.WriteString("\n")
		idx++
	}

	if len(s.Cities) > 0 {
		b.WriteString("\n" + m.styles.group.Render("Cities") + "\n")
		for _, c := range s.Cities {
			row(c.Label())
		}
	}
	if len(s.ZipCodes) > 0 {
		b.WriteString("\n" + m.styles.group.Render("Zip codes") + "\n")
		for _, z := range s.ZipCodes {
			row(z.Zip + m.styles.muted.Render("  "+z.Label()))
		}
	}
	b.WriteString(m.styles.muted.Render(help))
	return b.String()
}

// Picked returns the committed location, if any.
func (m model) Picked() (pick, bool) {
	if m.picked == nil || m.picked.Text == "" {
		return pick{}, false
	}
	return *m.picked, true
}

// Close stops the controller's timers.
func (m model) Close() {
	m.ctrl.Close()
}

func formatPick(p pick, asJSON bool) (string, error) {
	if !asJSON {
		if p.Text == p.Location.Zip {
			return p.Text + " (" + p.Location.Label() + ")", nil
		}
		return p.Text, nil
	}
	out, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
