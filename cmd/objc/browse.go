package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/wippyai/objc-runtime/errors"
	"github.com/wippyai/objc-runtime/object"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	methodStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// pageSize bounds how many methods are drawn around the cursor.
const pageSize = 20

var browseCmd = &cobra.Command{
	Use:   "browse <Class>",
	Short: "Pick methods of a class and send them interactively",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
			return errors.Unsupported(errors.PhaseConfig, "browse needs an interactive terminal")
		}
		classSide, _ := cmd.Flags().GetBool("class")

		m, err := newBrowseModel(current.reg, args[0], classSide)
		if err != nil {
			return err
		}
		defer m.close()

		_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
		return err
	},
}

func init() {
	browseCmd.Flags().Bool("class", false, "browse class methods instead of a new instance")
}

type browseState int

const (
	stateSelect browseState = iota
	stateInput
	stateResult
)

type browseModel struct {
	err       error
	reg       *object.Registry
	target    *object.Object
	className string
	result    string
	failed    bool
	rows      []methodRow
	inputs    []textinput.Model
	selected  int
	focusIdx  int
	state     browseState
}

type sendResultMsg struct {
	err    error
	result string
	failed bool
}

func newBrowseModel(reg *object.Registry, className string, classSide bool) (*browseModel, error) {
	rows, err := methodRows(reg, className, classSide)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.MethodNotFound("any method", className)
	}

	target, err := callTarget(reg, className, !classSide)
	if err != nil {
		return nil, err
	}
	return &browseModel{
		reg:       reg,
		target:    target,
		className: className,
		rows:      rows,
		state:     stateSelect,
	}, nil
}

func (m *browseModel) close() {
	_ = m.target.Release()
}

func (m *browseModel) Init() tea.Cmd {
	return nil
}

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state != stateInput {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelect && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelect && m.selected < len(m.rows)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelect:
				m.prepareInputs()
				if len(m.inputs) == 0 {
					return m, m.send
				}
				m.state = stateInput
				return m, textinput.Blink

			case stateInput:
				return m, m.send

			case stateResult:
				m.reset()
			}
			return m, nil

		case "tab":
			if m.state == stateInput && len(m.inputs) > 1 {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}
			return m, nil

		case "esc":
			m.reset()
			return m, nil
		}

	case sendResultMsg:
		m.result = msg.result
		m.failed = msg.failed
		m.err = msg.err
		m.state = stateResult
		return m, nil
	}

	if m.state == stateInput {
		cmds := make([]tea.Cmd, len(m.inputs))
		for i := range m.inputs {
			m.inputs[i], cmds[i] = m.inputs[i].Update(msg)
		}
		return m, tea.Batch(cmds...)
	}
	return m, nil
}

func (m *browseModel) reset() {
	m.state = stateSelect
	m.inputs = nil
	m.result = ""
	m.failed = false
	m.err = nil
}

func (m *browseModel) prepareInputs() {
	row := m.rows[m.selected]
	m.inputs = make([]textinput.Model, len(row.params))
	for i, p := range row.params {
		ti := textinput.New()
		ti.Placeholder = p
		ti.Prompt = fmt.Sprintf("arg%d: ", i)
		ti.Width = 40
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

func (m *browseModel) send() tea.Msg {
	row := m.rows[m.selected]
	raw := make([]string, len(m.inputs))
	for i, input := range m.inputs {
		raw[i] = input.Value()
	}

	res, err := invoke(m.reg, m.target, row.name, raw)
	if err != nil {
		return sendResultMsg{err: err}
	}
	if res.Failed() {
		return sendResultMsg{result: describe(m.reg, res.OutError), failed: true}
	}
	return sendResultMsg{result: describe(m.reg, res.Value)}
}

func (m *browseModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("objc"))
	b.WriteString(" ")
	b.WriteString(m.target.String())
	b.WriteString("\n\n")

	switch m.state {
	case stateSelect:
		b.WriteString("Select a method to send:\n\n")
		start, end := window(m.selected, len(m.rows))
		for i := start; i < end; i++ {
			line := m.formatRow(m.rows[i])
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter send • q quit"))

	case stateInput:
		row := m.rows[m.selected]
		b.WriteString(fmt.Sprintf("Sending %s\n\n", methodStyle.Render(row.selector)))
		for i, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString(" ")
			b.WriteString(typeStyle.Render(row.params[i]))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter send • esc back"))

	case stateResult:
		row := m.rows[m.selected]
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", methodStyle.Render(row.selector)))
		switch {
		case m.err != nil:
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		case m.failed:
			b.WriteString(errorStyle.Render("error: " + m.result))
		default:
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func (m *browseModel) formatRow(r methodRow) string {
	return methodStyle.Render(r.name) + " " + typeStyle.Render(r.signature)
}

// window returns the visible row range keeping the cursor in view.
func window(cursor, n int) (int, int) {
	if n <= pageSize {
		return 0, n
	}
	start := cursor - pageSize/2
	if start < 0 {
		start = 0
	}
	if start > n-pageSize {
		start = n - pageSize
	}
	return start, start + pageSize
}
