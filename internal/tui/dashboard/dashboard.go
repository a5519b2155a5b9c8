// ABOUTME: Dashboard component with the signed-in user card and fleet KPIs
// ABOUTME: Fleet figures only render for users allowed to view vehicles

package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fuelwise/fuelwise-cli/internal/fleet"
	"github.com/fuelwise/fuelwise-cli/internal/session"
	"github.com/fuelwise/fuelwise-cli/internal/tui/icons"
	"github.com/fuelwise/fuelwise-cli/internal/tui/styles"
	"github.com/fuelwise/fuelwise-cli/internal/tui/widgets"
)

// Placeholders shown when the profile lacks a name or email
const (
	DefaultName  = "Usuario"
	DefaultEmail = "usuario@ejemplo.com"
)

// Dashboard displays the welcome panel
type Dashboard struct {
	session  session.Session
	vehicles []fleet.Vehicle
	loaded   bool
	width    int
	height   int
}

// New creates a dashboard for the given session
func New(s session.Session, width, height int) *Dashboard {
	return &Dashboard{session: s, width: width, height: height}
}

// SetVehicles supplies the fleet used for the KPI row
func (d *Dashboard) SetVehicles(vehicles []fleet.Vehicle) {
	d.vehicles = vehicles
	d.loaded = true
}

// SetSession refreshes the user card
func (d *Dashboard) SetSession(s session.Session) {
	d.session = s
}

// SetSize updates the dashboard dimensions
func (d *Dashboard) SetSize(width, height int) {
	d.width = width
	d.height = height
}

// DisplayName returns the profile name or the placeholder
func DisplayName(p *session.Profile) string {
	if p == nil || strings.TrimSpace(p.Name) == "" {
		return DefaultName
	}
	return p.Name
}

// DisplayEmail returns the profile email or the placeholder
func DisplayEmail(p *session.Profile) string {
	if p == nil || strings.TrimSpace(p.Email) == "" {
		return DefaultEmail
	}
	return p.Email
}

// View renders the dashboard
func (d *Dashboard) View() string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render("Dashboard"))
	sb.WriteString("\n")
	sb.WriteString("Bienvenido. Aquí irá el contenido de la app.")
	sb.WriteString("\n\n")

	p := d.session.Profile
	name := DisplayName(p)
	avatar := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(styles.Primary).
		Bold(true).
		Padding(0, 1).
		Render(strings.ToUpper(string([]rune(name)[:1])))
	sb.WriteString(fmt.Sprintf("%s  %s\n", avatar, styles.ValueStyle.Render(name)))
	sb.WriteString(fmt.Sprintf("    %s\n", styles.Subtitle.UnsetMarginBottom().Render(DisplayEmail(p))))
	sb.WriteString(fmt.Sprintf("    %s %s\n", icons.User.String(), d.session.Identity().String()))

	perms := d.session.Permissions()
	sb.WriteString(widgets.VisibleIf(perms.CanViewVehicles, func() string {
		if !d.loaded {
			return "\n" + styles.Subtitle.Render("Cargando vehículos...")
		}
		return "\n" + styles.Title.Render(icons.Vehicle.String()+" Flota") + "\n" + widgets.SummaryBlocks(d.vehicles, d.width)
	}))

	return lipgloss.NewStyle().
		Width(d.width).
		Render(sb.String())
}
