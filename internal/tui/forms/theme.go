// ABOUTME: huh theme shared by every form in the terminal UI
// ABOUTME: Emerald accents on slate to match the rest of the styles package

package forms

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/fuelwise/fuelwise-cli/internal/fleet"
)

// Theme returns the form theme
func Theme() *huh.Theme {
	t := huh.ThemeBase()

	emerald := lipgloss.Color("#10B981")
	emeraldLight := lipgloss.Color("#34D399")
	lime := lipgloss.Color("#84CC16")
	gray := lipgloss.Color("#94A3B8")
	grayLight := lipgloss.Color("#E2E8F0")
	red := lipgloss.Color("#F87171")
	slate := lipgloss.Color("#334155")

	t.Group.Title = lipgloss.NewStyle().
		Foreground(emerald).
		Bold(true).
		MarginBottom(1)
	t.Group.Description = lipgloss.NewStyle().
		Foreground(gray).
		MarginBottom(1)

	t.Focused.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(emerald)
	t.Focused.Title = lipgloss.NewStyle().
		Foreground(emeraldLight).
		Bold(true)
	t.Focused.Description = lipgloss.NewStyle().
		Foreground(gray)
	t.Focused.ErrorIndicator = lipgloss.NewStyle().
		Foreground(red).
		SetString(" *")
	t.Focused.ErrorMessage = lipgloss.NewStyle().
		Foreground(red)

	t.Focused.SelectSelector = lipgloss.NewStyle().
		Foreground(emerald).
		SetString("> ")
	t.Focused.Option = lipgloss.NewStyle().
		Foreground(grayLight)
	t.Focused.SelectedOption = lipgloss.NewStyle().
		Foreground(emerald).
		Bold(true)
	t.Focused.NextIndicator = lipgloss.NewStyle().
		Foreground(emerald).
		MarginLeft(1).
		SetString("→")
	t.Focused.PrevIndicator = lipgloss.NewStyle().
		Foreground(emerald).
		MarginRight(1).
		SetString("←")

	t.Focused.TextInput.Cursor = lipgloss.NewStyle().
		Foreground(lime)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().
		Foreground(gray)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().
		Foreground(emerald)
	t.Focused.TextInput.Text = lipgloss.NewStyle().
		Foreground(grayLight)

	t.Focused.FocusedButton = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(emerald).
		Padding(0, 2).
		MarginRight(1)
	t.Focused.BlurredButton = lipgloss.NewStyle().
		Foreground(gray).
		Background(slate).
		Padding(0, 2).
		MarginRight(1)

	t.Blurred = t.Focused
	t.Blurred.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.HiddenBorder()).
		BorderLeft(true)
	t.Blurred.Title = lipgloss.NewStyle().
		Foreground(gray)
	t.Blurred.SelectSelector = lipgloss.NewStyle().
		Foreground(gray).
		SetString("  ")
	t.Blurred.Option = lipgloss.NewStyle().
		Foreground(gray)

	return t
}

// fieldError picks one field's message out of a validation error.
// Nil when err is nil or reports nothing for field.
func fieldError(err error, field string) error {
	fe, ok := fleet.AsFieldErrors(err)
	if !ok {
		return nil
	}
	if msg, bad := fe[field]; bad {
		return errors.New(msg)
	}
	return nil
}

// step forwards msg to form and keeps the returned form
func step(form *huh.Form, msg tea.Msg) (*huh.Form, tea.Cmd) {
	model, cmd := form.Update(msg)
	if f, ok := model.(*huh.Form); ok {
		form = f
	}
	return form, cmd
}
