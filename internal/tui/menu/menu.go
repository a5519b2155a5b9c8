// ABOUTME: Navigation menu shown on the dashboard
// ABOUTME: huh select embedded as a bubbletea model that reports the chosen action

package menu

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/fuelwise/fuelwise-cli/internal/tui/forms"
)

// Action is a menu entry
type Action int

const (
	ActionDashboard Action = iota
	ActionVehicles
	ActionLogout
	ActionQuit
)

// SelectedMsg is sent when an entry is chosen
type SelectedMsg struct {
	Action Action
}

type option struct {
	label       string
	description string
	value       Action
}

var options = []option{
	{label: "Dashboard", description: "Panel de control", value: ActionDashboard},
	{label: "Vehículos", description: "Gestión de vehículos", value: ActionVehicles},
	{label: "Cerrar sesión", description: "Salir de la cuenta", value: ActionLogout},
	{label: "Salir", description: "Cerrar la aplicación", value: ActionQuit},
}

// Menu is the dashboard navigation menu
type Menu struct {
	form     *huh.Form
	selected Action
}

// New creates the menu with the cursor on entry
func New(entry Action) *Menu {
	m := &Menu{selected: entry}
	m.form = m.build()
	return m
}

func (m *Menu) build() *huh.Form {
	opts := make([]huh.Option[Action], 0, len(options))
	for _, o := range options {
		opts = append(opts, huh.NewOption(o.label+" · "+o.description, o.value))
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[Action]().
				Title("Menú").
				Options(opts...).
				Value(&m.selected),
		),
	).WithTheme(forms.Theme()).WithShowHelp(false)
}

// Init implements tea.Model
func (m *Menu) Init() tea.Cmd {
	return m.form.Init()
}

// Update implements tea.Model
func (m *Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := m.form.Update(msg)
	if f, ok := model.(*huh.Form); ok {
		m.form = f
	}
	if m.form.State == huh.StateCompleted {
		chosen := m.selected
		m.form = m.build()
		return m, tea.Batch(m.form.Init(), func() tea.Msg { return SelectedMsg{Action: chosen} })
	}
	return m, cmd
}

// View implements tea.Model
func (m *Menu) View() string {
	return m.form.View()
}

// String returns the label of an action
func (a Action) String() string {
	for _, o := range options {
		if o.value == a {
			return o.label
		}
	}
	return "unknown"
}
