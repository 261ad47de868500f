package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/okian/cardwise/internal/domain/profile"
	"github.com/okian/cardwise/internal/domain/wizard"
)

// advancedMsg carries the outcome of Session.Advance back into Update.
type advancedMsg struct {
	tr  wizard.Transition
	err error
}

// Model drives one wizard session in the terminal.
type Model struct {
	ctx     context.Context
	session *wizard.Session
	steps   []profile.StepInfo
	styles  Styles

	// stepNum is the step m.inputs were built for.
	stepNum int
	inputs  []textinput.Model
	focus   int
	spinner spinner.Model
	busy    bool
	err     error
	width   int
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithStyles overrides the default styles.
func WithStyles(s Styles) ModelOption { return func(m *Model) { m.styles = s } }

// WithContext sets the context submissions run under.
func WithContext(ctx context.Context) ModelOption {
	return func(m *Model) {
		if ctx != nil {
			m.ctx = ctx
		}
	}
}

// NewModel returns a model editing session.
func NewModel(session *wizard.Session, opts ...ModelOption) Model {
	m := Model{
		ctx:     context.Background(),
		session: session,
		steps:   profile.Steps(),
		styles:  DefaultStyles(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.loadStep()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) step() profile.StepInfo {
	st, _ := profile.StepByNumber(m.stepNum)
	return st
}

// loadStep builds one input per field of the current step, prefilled from
// the draft.
func (m *Model) loadStep() {
	v := m.session.View()
	m.stepNum = v.Step
	st, _ := profile.StepByNumber(v.Step)
	m.inputs = make([]textinput.Model, len(st.Fields))
	for i, f := range st.Fields {
		in := textinput.New()
		in.Prompt = "› "
		in.CharLimit = 256
		in.Placeholder = placeholder(f)
		if val, err := profile.Value(v.Draft, f.Path); err == nil {
			in.SetValue(display(val))
		}
		m.inputs[i] = in
	}
	m.focus = 0
	if len(m.inputs) > 0 {
		m.inputs[0].Focus()
	}
}

func placeholder(f profile.FieldInfo) string {
	switch f.Kind {
	case profile.KindEnum:
		return "←/→ to choose"
	case profile.KindEnumSet:
		return "comma separated"
	case profile.KindNumber:
		return "0"
	}
	return ""
}

// display formats a field value for editing.
func display(v any) string {
	switch x := v.(type) {
	case profile.Number:
		return x.String()
	case []profile.PremiumService:
		parts := make([]string, len(x))
		for i, s := range x {
			parts[i] = string(s)
		}
		return strings.Join(parts, ",")
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

// encode turns an input into the JSON value the draft accepts for f.
func encode(f profile.FieldInfo, text string) (json.RawMessage, error) {
	text = strings.TrimSpace(text)
	if f.Kind != profile.KindEnumSet {
		return json.Marshal(text)
	}
	items := []string{}
	for _, part := range strings.Split(text, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return json.Marshal(items)
}

// commit writes every input of the current step in one atomic update.
func (m *Model) commit() error {
	st := m.step()
	values := make(map[string]json.RawMessage, len(st.Fields))
	for i, f := range st.Fields {
		raw, err := encode(f, m.inputs[i].Value())
		if err != nil {
			return err
		}
		values[f.Path] = raw
	}
	return m.session.SetFields(values)
}

func (m *Model) move(delta int) {
	if len(m.inputs) == 0 {
		return
	}
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + delta + len(m.inputs)) % len(m.inputs)
	m.inputs[m.focus].Focus()
}

// cycle steps an enum input through its options.
func (m *Model) cycle(delta int) bool {
	st := m.step()
	if m.focus >= len(st.Fields) {
		return false
	}
	f := st.Fields[m.focus]
	if f.Kind != profile.KindEnum || len(f.Options) == 0 {
		return false
	}
	cur := slices.IndexFunc(f.Options, func(o profile.Option) bool { return o.Value == m.inputs[m.focus].Value() })
	next := (cur + delta + len(f.Options)) % len(f.Options)
	if cur < 0 && delta < 0 {
		next = len(f.Options) - 1
	}
	m.inputs[m.focus].SetValue(f.Options[next].Value)
	return true
}

func (m Model) advance() tea.Cmd {
	ctx, s := m.ctx, m.session
	return func() tea.Msg {
		tr, err := s.Advance(ctx)
		return advancedMsg{tr: tr, err: err}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case advancedMsg:
		m.busy = false
		m.err = msg.err
		if msg.err == nil && len(msg.tr.Violations) == 0 && !msg.tr.Submit {
			m.loadStep()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateInput(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.busy {
		return m, nil
	}

	state := m.session.State()
	if state == wizard.Done {
		switch msg.String() {
		case "q", "esc", "enter":
			return m, tea.Quit
		case "ctrl+r", "r":
			m.err = m.session.Reset()
			m.loadStep()
		}
		return m, nil
	}

	switch msg.String() {
	case "tab", "down":
		m.move(1)
		return m, nil
	case "shift+tab", "up":
		m.move(-1)
		return m, nil
	case "left":
		if m.cycle(-1) {
			return m, nil
		}
	case "right":
		if m.cycle(1) {
			return m, nil
		}
	case "esc", "ctrl+b":
		if err := m.commit(); err != nil {
			m.err = err
			return m, nil
		}
		m.err = m.session.Retreat()
		m.loadStep()
		return m, nil
	case "ctrl+r":
		m.err = m.session.Reset()
		m.loadStep()
		return m, nil
	case "enter":
		if err := m.commit(); err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.busy = true
		if m.stepNum == profile.TotalSteps {
			return m, tea.Batch(m.advance(), m.spinner.Tick)
		}
		return m, m.advance()
	}

	return m.updateInput(msg)
}

func (m Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if len(m.inputs) == 0 {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	v := m.session.View()
	var sb strings.Builder

	if v.State == wizard.Done && v.Results != nil {
		sb.WriteString(RenderResults(*v.Results, m.styles))
		sb.WriteString(m.styles.Help.Render("r: start over • q: quit"))
		return sb.String()
	}

	st := m.step()
	sb.WriteString(m.styles.Title.Render(fmt.Sprintf("Step %d of %d: %s", m.stepNum, v.TotalSteps, st.Title)))
	sb.WriteString("\n")
	sb.WriteString(m.styles.Muted.Render(st.Description))
	sb.WriteString("\n\n")

	for i, f := range st.Fields {
		label := m.styles.Label
		if i == m.focus {
			label = m.styles.Focused
		}
		sb.WriteString(label.Render(f.Label))
		sb.WriteString(m.inputs[i].View())
		sb.WriteString("\n")
		if i == m.focus && len(f.Options) > 0 {
			sb.WriteString(m.styles.Muted.Render("  " + optionHint(f.Options)))
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n")
	if !m.busy {
		sb.WriteString(RenderViolations(m.stepNum, v.Violations, m.styles))
	}

	switch {
	case m.busy && m.stepNum == v.TotalSteps:
		sb.WriteString(m.spinner.View() + " Finding your cards...\n")
	case m.busy:
		sb.WriteString(m.styles.Muted.Render("Checking...") + "\n")
	case m.err != nil:
		sb.WriteString(m.styles.Error.Render(errorText(m.err)))
		sb.WriteString("\n")
	}

	next := "enter: next"
	if m.stepNum == v.TotalSteps {
		next = "enter: get recommendations"
	}
	sb.WriteString(m.styles.Help.Render(next + " • tab/↑↓: move • esc: back • ctrl+r: reset • ctrl+c: quit"))
	return sb.String()
}

func optionHint(opts []profile.Option) string {
	parts := make([]string, len(opts))
	for i, o := range opts {
		parts[i] = o.Value
	}
	return strings.Join(parts, " | ")
}

func errorText(err error) string {
	if errors.Is(err, profile.ErrInvalidValue) {
		return "Invalid value: " + err.Error()
	}
	return err.Error()
}

// Run starts the terminal wizard for session and blocks until the user
// quits or ctx is done.
func Run(ctx context.Context, session *wizard.Session, opts ...tea.ProgramOption) error {
	m := NewModel(session, WithContext(ctx))
	opts = append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, opts...)
	_, err := tea.NewProgram(m, opts...).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
