// ABOUTME: Interactive TUI wizard for connecting an X developer app.
// ABOUTME: 4-step bubbletea model collecting the OAuth 1.0a keys and access tokens.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/2389-research/riddleking/internal/publisher"
)

// Step represents the current wizard step.
type Step int

const (
	StepAPIKey Step = iota
	StepAPISecret
	StepAccessToken
	StepAccessSecret
	StepValidating
	StepDone
	StepFailed
)

const inputCount = 4

var stepLabels = [inputCount]string{"API Key", "API Secret", "Access Token", "Access Token Secret"}

// validationResultMsg carries the result of an async validation attempt.
type validationResultMsg struct {
	err error
}

// ValidateFn is the function signature for credential validation.
type ValidateFn func(ctx context.Context, apiURL string, creds publisher.Credentials) error

// cancelHolder shares a cancel function across bubbletea model copies.
// This MUST be stored as a pointer field on SetupModel so that value-receiver
// methods (required by tea.Model) can store the cancel func and have it
// visible to all copies of the model.
type cancelHolder struct {
	cancel context.CancelFunc
}

// SetupModel is the bubbletea model for the setup wizard.
type SetupModel struct {
	step          Step
	apiURL        string
	inputs        [inputCount]textinput.Model
	spinner       spinner.Model
	validateFn    ValidateFn
	cancelCtx     *cancelHolder
	validationErr error
	quitting      bool
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	brandStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// NewSetupModel creates a new setup wizard model, pre-filling with existing
// credentials. apiURL is where validation requests go; empty means the X API.
func NewSetupModel(apiURL string, creds publisher.Credentials) SetupModel {
	values := [inputCount]string{creds.APIKey, creds.APISecret, creds.AccessToken, creds.AccessSecret}
	placeholders := [inputCount]string{"consumer key", "consumer secret", "access token", "access token secret"}

	var inputs [inputCount]textinput.Model
	for i := range inputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.Width = 50
		if Step(i) == StepAPISecret || Step(i) == StepAccessSecret {
			in.EchoMode = textinput.EchoPassword
		}
		if values[i] != "" {
			in.SetValue(values[i])
		}
		inputs[i] = in
	}
	inputs[0].Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot

	return SetupModel{
		step:       StepAPIKey,
		apiURL:     apiURL,
		inputs:     inputs,
		spinner:    s,
		validateFn: ValidateConnection,
		cancelCtx:  &cancelHolder{},
	}
}

// Init implements tea.Model.
func (m SetupModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m SetupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEscape:
			m.quitting = true
			if m.cancelCtx.cancel != nil {
				m.cancelCtx.cancel()
			}
			return m, tea.Quit
		}

		switch m.step {
		case StepAPIKey, StepAPISecret, StepAccessToken, StepAccessSecret:
			return m.updateInput(msg)
		case StepFailed:
			return m.updateFailed(msg)
		}

	case validationResultMsg:
		m.cancelCtx.cancel = nil
		if msg.err == nil {
			m.step = StepDone
			return m, tea.Quit
		}
		m.validationErr = msg.err
		m.step = StepFailed
		return m, nil

	case spinner.TickMsg:
		if m.step == StepValidating {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m SetupModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	idx := int(m.step)

	if msg.Type == tea.KeyEnter {
		// Pasted keys often carry stray whitespace.
		m.inputs[idx].SetValue(strings.TrimSpace(m.inputs[idx].Value()))

		// Every credential is required
		if m.inputs[idx].Value() == "" {
			return m, nil
		}

		m.inputs[idx].Blur()

		if m.step == StepAccessSecret {
			m.step = StepValidating
			return m, tea.Batch(m.startValidation(), m.spinner.Tick)
		}
		m.step++
		m.inputs[int(m.step)].Focus()
		return m, textinput.Blink
	}

	// Forward to the active input
	var cmd tea.Cmd
	m.inputs[idx], cmd = m.inputs[idx].Update(msg)
	return m, cmd
}

func (m SetupModel) updateFailed(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyRunes && len(msg.Runes) > 0 {
		switch msg.Runes[0] {
		case 'r':
			m.step = StepValidating
			m.validationErr = nil
			return m, tea.Batch(m.startValidation(), m.spinner.Tick)
		case 's':
			m.step = StepDone
			return m, tea.Quit
		case 'q':
			m.quitting = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m SetupModel) startValidation() tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelCtx.cancel = cancel
	apiURL := m.apiURL
	creds := m.Result()
	fn := m.validateFn
	return func() tea.Msg {
		return validationResultMsg{err: fn(ctx, apiURL, creds)}
	}
}

// View implements tea.Model.
func (m SetupModel) View() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(brandStyle.Render("   🧩 RIDDLE KING"))
	b.WriteString(titleStyle.Render(" - Setup"))
	b.WriteString("\n\n")
	b.WriteString("Connect the X account riddles are posted to.\n\n")

	switch m.step {
	case StepAPIKey, StepAPISecret, StepAccessToken, StepAccessSecret:
		idx := int(m.step)
		m.writeEntered(&b, idx)
		if idx > 0 {
			b.WriteString("\n")
		}
		b.WriteString(stepStyle.Render(fmt.Sprintf("Step %d of %d: %s", idx+1, inputCount, stepLabels[idx])))
		b.WriteString("\n")
		b.WriteString(m.inputs[idx].View())
		b.WriteString("\n")

	case StepValidating:
		m.writeEntered(&b, inputCount)
		b.WriteString("\n")
		b.WriteString(m.spinner.View())
		b.WriteString(" Validating credentials...")
		b.WriteString("\n")

	case StepDone:
		b.WriteString(successStyle.Render("✓ Connected!"))
		b.WriteString("\n")

	case StepFailed:
		errMsg := "unknown error"
		if m.validationErr != nil {
			errMsg = m.validationErr.Error()
		}
		b.WriteString(errorStyle.Render(fmt.Sprintf("✗ Validation failed: %s", errMsg)))
		b.WriteString("\n\n")
		b.WriteString(promptStyle.Render("[r]etry  [s]ave anyway  [q]uit"))
		b.WriteString("\n")
	}

	return b.String()
}

// writeEntered summarises the first n values, masking secrets.
func (m SetupModel) writeEntered(b *strings.Builder, n int) {
	for i := 0; i < n; i++ {
		val := m.inputs[i].Value()
		if Step(i) == StepAPISecret || Step(i) == StepAccessSecret {
			val = strings.Repeat("*", len(val))
		}
		fmt.Fprintf(b, "  %s: %s\n", stepLabels[i], val)
	}
}

// Result returns the entered credentials.
func (m SetupModel) Result() publisher.Credentials {
	return publisher.Credentials{
		APIKey:       m.inputs[StepAPIKey].Value(),
		APISecret:    m.inputs[StepAPISecret].Value(),
		AccessToken:  m.inputs[StepAccessToken].Value(),
		AccessSecret: m.inputs[StepAccessSecret].Value(),
	}
}

// ShouldSave returns true if the wizard completed (via validation success or
// "save anyway") and the user did not cancel with Ctrl+C, Escape, or 'q'.
func (m SetupModel) ShouldSave() bool {
	return m.step == StepDone && !m.quitting
}
