// ABOUTME: Vehicle registry screen with search, filters, pagination and actions
// ABOUTME: Filtering happens on the loaded list; create, edit and export are gated by permissions

package vehicles

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fuelwise/fuelwise-cli/internal/export"
	"github.com/fuelwise/fuelwise-cli/internal/fleet"
	"github.com/fuelwise/fuelwise-cli/internal/roles"
	"github.com/fuelwise/fuelwise-cli/internal/tui/icons"
	"github.com/fuelwise/fuelwise-cli/internal/tui/styles"
	"github.com/fuelwise/fuelwise-cli/internal/tui/widgets"
)

// Screen texts
const (
	PageTitle      = "Gestión de Vehículos"
	AllTypes       = "Todos los tipos"
	AllStatuses    = "Todos los estados"
	SearchHint     = "Buscar por nombre, placa, marca o modelo..."
	EmptyFleet     = "No hay vehículos registrados aún."
	EmptyFleetHint = "Registra tu primer vehículo con la tecla n (Nuevo vehículo)."
	NoMatches      = "No se encontraron vehículos con los filtros actuales."
	FooterNote     = "Sistema de Control de Combustible • © 2025"
)

// NewVehicleMsg asks to open the create form
type NewVehicleMsg struct{}

// EditVehicleMsg asks to open the edit form
type EditVehicleMsg struct {
	Vehicle fleet.Vehicle
}

// ExportMsg asks to export the filtered list
type ExportMsg struct {
	Format export.Format
}

// RefreshMsg asks to reload types and vehicles
type RefreshMsg struct{}

// BackMsg asks to leave the screen
type BackMsg struct{}

// Model is the vehicle registry screen
type Model struct {
	perms    roles.Permissions
	vehicles []fleet.Vehicle
	types    []fleet.VehicleType
	typeIdx  fleet.TypeIndex
	filter   fleet.Filter
	page     int
	loaded   bool

	search    textinput.Model
	searching bool
	table     table.Model

	width  int
	height int
}

// New creates the screen for a user with perms
func New(perms roles.Permissions, width, height int) *Model {
	search := textinput.New()
	search.Placeholder = SearchHint
	search.Prompt = icons.Search.String() + " "
	search.CharLimit = 64

	t := table.New(
		table.WithColumns(columns(width)),
		table.WithFocused(true),
		table.WithHeight(fleet.DefaultPageSize),
	)
	s := table.DefaultStyles()
	s.Header = styles.TableHeader
	s.Selected = styles.TableSelected
	t.SetStyles(s)

	return &Model{
		perms:  perms,
		page:   1,
		search: search,
		table:  t,
		width:  width,
		height: height,
	}
}

// columns sizes the table to width, giving the slack to the name column
func columns(width int) []table.Column {
	cols := []table.Column{
		{Title: export.Headers[0], Width: 18},
		{Title: export.Headers[1], Width: 9},
		{Title: export.Headers[2], Width: 10},
		{Title: export.Headers[3], Width: 10},
		{Title: export.Headers[4], Width: 14},
		{Title: export.Headers[5], Width: 16},
		{Title: export.Headers[6], Width: 14},
		{Title: export.Headers[7], Width: 13},
	}
	used := 0
	for _, c := range cols {
		used += c.Width + 2
	}
	if extra := width - used - 8; extra > 0 {
		cols[0].Width += extra
	}
	return cols
}

// SetData replaces the loaded list and keeps the current filters
func (m *Model) SetData(types []fleet.VehicleType, vehicles []fleet.Vehicle) {
	m.types = types
	m.typeIdx = fleet.IndexTypes(types)
	m.vehicles = vehicles
	m.loaded = true
	m.refresh()
}

// SetPermissions updates the action gates
func (m *Model) SetPermissions(p roles.Permissions) {
	m.perms = p
}

// SetSize updates the screen dimensions
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetColumns(columns(width))
}

// Vehicles returns the full loaded list
func (m *Model) Vehicles() []fleet.Vehicle {
	return m.vehicles
}

// Types returns the loaded vehicle types
func (m *Model) Types() []fleet.VehicleType {
	return m.types
}

// TypeIndex returns the loaded types by id
func (m *Model) TypeIndex() fleet.TypeIndex {
	return m.typeIdx
}

// Filter returns the active filter
func (m *Model) Filter() fleet.Filter {
	return m.filter
}

// Filtered returns the loaded list narrowed by the active filter
func (m *Model) Filtered() []fleet.Vehicle {
	return m.filter.Apply(m.vehicles)
}

// Page returns the current 1-based page
func (m *Model) Page() int {
	return m.page
}

// Searching reports whether the search box has focus
func (m *Model) Searching() bool {
	return m.searching
}

// Selected returns the vehicle under the cursor
func (m *Model) Selected() (fleet.Vehicle, bool) {
	rows := fleet.Paginate(m.Filtered(), m.page, fleet.DefaultPageSize)
	i := m.table.Cursor()
	if i < 0 || i >= len(rows) {
		return fleet.Vehicle{}, false
	}
	return rows[i], true
}

// SetFilter replaces the filter and goes back to the first page
func (m *Model) SetFilter(f fleet.Filter) {
	m.filter = f
	m.search.SetValue(f.Term)
	m.page = 1
	m.refresh()
}

// SetPage moves to page, clamped to the available pages
func (m *Model) SetPage(page int) {
	m.page = fleet.ClampPage(page, len(m.Filtered()), fleet.DefaultPageSize)
	m.refresh()
}

// refresh rebuilds the table rows for the current page
func (m *Model) refresh() {
	filtered := m.Filtered()
	m.page = fleet.ClampPage(m.page, len(filtered), fleet.DefaultPageSize)
	pageItems := fleet.Paginate(filtered, m.page, fleet.DefaultPageSize)

	rows := make([]table.Row, 0, len(pageItems))
	for _, v := range pageItems {
		rows = append(rows, table.Row{
			orNA(v.Name),
			orNA(v.Plate),
			orNA(v.Brand),
			orNA(v.Model),
			orNA(m.typeIdx.Name(v.TypeID)),
			orNA(v.Availability),
			strconv.FormatFloat(v.FuelPerKm, 'f', -1, 64),
			strconv.FormatFloat(v.FuelCapacity, 'f', -1, 64),
		})
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(0, len(rows)-1))
	}
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

// nextType cycles the type filter through "all" and every loaded type
func (m *Model) nextType() {
	f := m.filter
	if len(m.types) == 0 {
		f.TypeID = 0
		m.SetFilter(f)
		return
	}
	next := 0
	if f.TypeID == 0 {
		next = m.types[0].ID
	} else {
		for i, t := range m.types {
			if t.ID == f.TypeID && i+1 < len(m.types) {
				next = m.types[i+1].ID
			}
		}
	}
	f.TypeID = next
	m.SetFilter(f)
}

// nextStatus cycles the availability filter through "all" and each state
func (m *Model) nextStatus() {
	f := m.filter
	switch f.Availability {
	case "":
		f.Availability = string(fleet.Availabilities[0])
	default:
		f.Availability = ""
		for i, a := range fleet.Availabilities {
			if string(a) == m.filter.Availability && i+1 < len(fleet.Availabilities) {
				f.Availability = string(fleet.Availabilities[i+1])
			}
		}
	}
	m.SetFilter(f)
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.searching {
		switch key.String() {
		case "enter", "esc":
			m.searching = false
			m.search.Blur()
			m.table.Focus()
			return m, nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		if term := m.search.Value(); term != m.filter.Term {
			f := m.filter
			f.Term = term
			m.filter = f
			m.page = 1
			m.refresh()
		}
		return m, cmd
	}

	switch key.String() {
	case "/":
		m.searching = true
		m.table.Blur()
		return m, m.search.Focus()
	case "t":
		m.nextType()
		return m, nil
	case "s":
		m.nextStatus()
		return m, nil
	case "0":
		m.SetFilter(fleet.Filter{})
		return m, nil
	case "right", "]":
		m.SetPage(m.page + 1)
		return m, nil
	case "left", "[":
		m.SetPage(m.page - 1)
		return m, nil
	case "r":
		return m, func() tea.Msg { return RefreshMsg{} }
	case "esc", "b":
		return m, func() tea.Msg { return BackMsg{} }
	case "n":
		if m.perms.CanCreateVehicles {
			return m, func() tea.Msg { return NewVehicleMsg{} }
		}
		return m, nil
	case "e", "enter":
		if !m.perms.CanCreateVehicles {
			return m, nil
		}
		if v, ok := m.Selected(); ok {
			return m, func() tea.Msg { return EditVehicleMsg{Vehicle: v} }
		}
		return m, nil
	case "c":
		if m.perms.CanExportVehicles {
			return m, func() tea.Msg { return ExportMsg{Format: export.CSV} }
		}
		return m, nil
	case "p":
		if m.perms.CanExportVehicles {
			return m, func() tea.Msg { return ExportMsg{Format: export.PDF} }
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View implements tea.Model
func (m *Model) View() string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render(icons.Vehicle.String() + " " + PageTitle))
	sb.WriteString("\n")
	sb.WriteString(m.toolbar())
	sb.WriteString("\n\n")
	sb.WriteString(m.search.View())
	sb.WriteString("\n")
	sb.WriteString(m.filters())
	sb.WriteString("\n\n")

	switch {
	case !m.loaded:
		sb.WriteString(styles.Subtitle.Render("Cargando vehículos..."))
	case len(m.vehicles) == 0:
		sb.WriteString(styles.Subtitle.Render(EmptyFleet))
		sb.WriteString(widgets.VisibleIf(m.perms.CanCreateVehicles, func() string {
			return "\n" + styles.Help.Render(EmptyFleetHint)
		}))
	case len(m.Filtered()) == 0:
		sb.WriteString(styles.Subtitle.Render(NoMatches))
	default:
		sb.WriteString(m.table.View())
		sb.WriteString("\n")
		sb.WriteString(m.pagination())
		sb.WriteString(m.detail())
	}

	sb.WriteString("\n\n")
	sb.WriteString(lipgloss.NewStyle().Foreground(styles.Muted).Render(FooterNote))
	return sb.String()
}

// toolbar lists the actions the user may take
func (m *Model) toolbar() string {
	var actions []string
	actions = append(actions, widgets.VisibleIf(m.perms.CanCreateVehicles, func() string {
		return styles.KeyStyle.Render("n") + " " + icons.Add.String() + " Nuevo vehículo"
	}))
	actions = append(actions, widgets.VisibleIf(m.perms.CanExportVehicles, func() string {
		return styles.KeyStyle.Render("c") + " " + icons.Export.String() + " Exportar a CSV  " +
			styles.KeyStyle.Render("p") + " " + icons.Export.String() + " Exportar a PDF"
	}))

	var shown []string
	for _, a := range actions {
		if a != "" {
			shown = append(shown, a)
		}
	}
	return strings.Join(shown, "   ")
}

// filters describes the active filters
func (m *Model) filters() string {
	typeLabel := AllTypes
	if m.filter.TypeID != 0 {
		typeLabel = orNA(m.typeIdx.Name(m.filter.TypeID))
	}
	statusLabel := AllStatuses
	if m.filter.Availability != "" {
		statusLabel = m.filter.Availability
	}
	return fmt.Sprintf("%s %s %s   %s %s",
		icons.Filter.String(),
		styles.KeyStyle.Render("t"), typeLabel,
		styles.KeyStyle.Render("s"), statusLabel,
	)
}

// pagination renders the row window and page position when there is more than one page
func (m *Model) pagination() string {
	n := len(m.Filtered())
	pages := fleet.Pages(n, fleet.DefaultPageSize)
	if pages <= 1 {
		return ""
	}
	from, to := fleet.Window(m.page, n, fleet.DefaultPageSize)
	return styles.Subtitle.Render(fmt.Sprintf("Mostrando %d a %d de %d vehículos    Página %d de %d", from, to, n, m.page, pages))
}

// detail shows the selected vehicle with its availability chip and tank gauge
func (m *Model) detail() string {
	v, ok := m.Selected()
	if !ok {
		return ""
	}
	return fmt.Sprintf("\n%s %s  %s  %s %s",
		icons.Vehicle.String(),
		styles.ValueStyle.Render(orNA(v.Name)),
		widgets.AvailabilityBadge(v.Availability),
		icons.Tank.String(),
		widgets.TankGauge(v.FuelCapacity, 20),
	)
}
