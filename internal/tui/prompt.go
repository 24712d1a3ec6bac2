// Package tui provides the small interactive prompts used by the config
// editor and the doctor command.
package tui

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			MarginBottom(1).
			Render

	itemStyle = lipgloss.NewStyle().
			PaddingLeft(2).
			Render

	selectedItemStyle = lipgloss.NewStyle().
				PaddingLeft(1).
				Foreground(lipgloss.Color("#FF6B6B")).
				Background(lipgloss.Color("#3C3C3C")).
				Bold(true).
				Render

	helpStyle = lipgloss.NewStyle().
			Faint(true).
			Italic(true).
			MarginTop(1).
			Render

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#7D56F4")).
				Bold(true).
				Render

	inputValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#4B4B4B")).
			Padding(0, 1).
			Render
)

// SelectOne shows a vertical picker and returns the chosen option.
func SelectOne(title string, options []string) (string, error) {
	if len(options) == 0 {
		return "", fmt.Errorf("no options")
	}
	m := &selectModel{
		title:   title,
		options: options,
	}
	p := tea.NewProgram(m, tea.WithInput(os.Stdin), tea.WithOutput(os.Stdout), tea.WithMouseCellMotion())
	out, err := p.Run()
	if err != nil {
		return "", err
	}
	result := out.(*selectModel)
	if result.canceled {
		return "", fmt.Errorf("aborted")
	}
	return result.choice, nil
}

// InputWithDefault reads one line, falling back to def when left empty.
func InputWithDefault(prompt, def string) (string, error) {
	m := &inputModel{
		title: prompt,
		value: def,
	}
	p := tea.NewProgram(m, tea.WithInput(os.Stdin), tea.WithOutput(os.Stdout), tea.WithMouseCellMotion())
	out, err := p.Run()
	if err != nil {
		return "", err
	}
	result := out.(*inputModel)
	if result.canceled {
		return "", fmt.Errorf("aborted")
	}
	line := strings.TrimSpace(result.value)
	if line == "" && def != "" {
		return def, nil
	}
	return line, nil
}

// Confirm shows a Yes/No picker with def preselected.
func Confirm(prompt string, def bool) (bool, error) {
	choices := []string{"Yes", "No"}
	cursor := 1
	if def {
		cursor = 0
	}
	m := &confirmModel{
		title:   prompt,
		options: choices,
		cursor:  cursor,
	}
	p := tea.NewProgram(m, tea.WithInput(os.Stdin), tea.WithOutput(os.Stdout), tea.WithMouseCellMotion())
	out, err := p.Run()
	if err != nil {
		return false, err
	}
	result := out.(*confirmModel)
	if result.canceled {
		return false, fmt.Errorf("aborted")
	}
	return result.choice == "Yes", nil
}

// --- Models ---

type selectModel struct {
	title    string
	options  []string
	cursor   int
	choice   string
	canceled bool
}

func (m *selectModel) Init() tea.Cmd { return nil }

func (m *selectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.canceled = true
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.options)-1 {
				m.cursor++
			}
		case "enter":
			m.choice = m.options[m.cursor]
			return m, tea.Quit
		}
	case tea.MouseMsg:
		if msg.Type == tea.MouseRelease {
			// Rows above the options: title line plus one blank line.
			clickY := msg.Y - 2
			if clickY >= 0 && clickY < len(m.options) {
				m.cursor = clickY
				m.choice = m.options[m.cursor]
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m *selectModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle(m.title) + "\n\n")
	for i, o := range m.options {
		if i == m.cursor {
			b.WriteString(selectedItemStyle("→ "+o) + "\n")
		} else {
			b.WriteString(itemStyle("  "+o) + "\n")
		}
	}
	b.WriteString("\n" + helpStyle("↑/↓ move • Enter select • q/esc cancel • 🖱️ click to select"))
	return b.String()
}

type inputModel struct {
	title    string
	value    string
	canceled bool
}

func (m *inputModel) Init() tea.Cmd { return nil }

func (m *inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.canceled = true
			return m, tea.Quit
		case "enter":
			return m, tea.Quit
		case "backspace":
			if len(m.value) > 0 {
				runes := []rune(m.value)
				m.value = string(runes[:len(runes)-1])
			}
		default:
			if len(msg.Runes) > 0 {
				m.value += string(msg.Runes)
			}
		}
	}
	return m, nil
}

func (m *inputModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle(m.title) + "\n\n")
	displayValue := m.value
	if displayValue == "" {
		displayValue = " "
	}
	b.WriteString(inputPromptStyle("> ") + inputValueStyle(displayValue) + "\n")
	b.WriteString("\n" + helpStyle("Type to edit • Enter confirm • esc cancel"))
	return b.String()
}

type confirmModel struct {
	title    string
	options  []string
	cursor   int
	choice   string
	canceled bool
}

func (m *confirmModel) Init() tea.Cmd { return nil }

func (m *confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.canceled = true
			return m, tea.Quit
		case "left", "h", "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "right", "l", "down", "j":
			if m.cursor < len(m.options)-1 {
				m.cursor++
			}
		case "enter":
			m.choice = m.options[m.cursor]
			return m, tea.Quit
		}
	case tea.MouseMsg:
		if msg.Type == tea.MouseRelease {
			clickY := msg.Y - 2
			if clickY >= 0 && clickY < len(m.options) {
				m.cursor = clickY
				m.choice = m.options[m.cursor]
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m *confirmModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle(m.title) + "\n\n")
	for i, o := range m.options {
		if i == m.cursor {
			b.WriteString(selectedItemStyle("→ "+o) + "\n")
		} else {
			b.WriteString(itemStyle("  "+o) + "\n")
		}
	}
	b.WriteString("\n" + helpStyle("←/→ move • Enter confirm • q/esc cancel • 🖱️ click"))
	return b.String()
}
