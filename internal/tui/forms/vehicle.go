// ABOUTME: Create and edit vehicle form as a bubbletea model
// ABOUTME: Every field is checked inline and the whole form again before it is submitted

package forms

import (
	"sort"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/fuelwise/fuelwise-cli/internal/fleet"
	"github.com/fuelwise/fuelwise-cli/internal/tui/styles"
)

// MsgPlateTaken replaces a backend plate conflict on the plate field
const MsgPlateTaken = "La placa ya está registrada. Por favor, use una placa diferente."

// VehicleSubmittedMsg carries a validated vehicle. ID is zero when creating.
type VehicleSubmittedMsg struct {
	ID    int
	Input fleet.VehicleInput
}

// VehicleCancelledMsg is sent when the form is closed without saving
type VehicleCancelledMsg struct{}

// Vehicle is the create/edit form
type Vehicle struct {
	form      *huh.Form
	values    fleet.VehicleForm
	editingID int
	existing  []fleet.Vehicle
	types     []fleet.VehicleType
	errs      fleet.FieldErrors
	serverErr string
	busy      bool
}

// NewVehicle creates the form. editing is nil for a new vehicle; existing
// is the loaded list used for the duplicate plate check.
func NewVehicle(types []fleet.VehicleType, existing []fleet.Vehicle, editing *fleet.Vehicle) *Vehicle {
	v := &Vehicle{types: types, existing: existing}
	if editing != nil {
		v.editingID = editing.ID
		v.values = fleet.FormFromVehicle(*editing)
		if a, ok := fleet.NormalizeAvailability(v.values.Availability); ok {
			v.values.Availability = string(a)
		}
	}
	if v.values.TypeID == "" {
		v.values.TypeID = v.defaultType()
	}
	if v.values.Availability == "" {
		v.values.Availability = string(fleet.Available)
	}
	v.form = v.build()
	return v
}

// sortedTypes returns the types ordered by name, the order of the type select
func (v *Vehicle) sortedTypes() []fleet.VehicleType {
	types := append([]fleet.VehicleType(nil), v.types...)
	sort.SliceStable(types, func(i, j int) bool { return types[i].Name < types[j].Name })
	return types
}

// defaultType preselects the first type shown so the select starts valid
func (v *Vehicle) defaultType() string {
	types := v.sortedTypes()
	if len(types) == 0 {
		return ""
	}
	return strconv.Itoa(types[0].ID)
}

// Editing reports whether the form edits an existing vehicle
func (v *Vehicle) Editing() bool {
	return v.editingID != 0
}

// Title is the heading of the form
func (v *Vehicle) Title() string {
	if v.Editing() {
		return "Editar Vehículo"
	}
	return "Registrar Vehículo"
}

// check validates one field by running the full form rules with s in place
func (v *Vehicle) check(field string, set func(*fleet.VehicleForm, string)) func(string) error {
	return func(s string) error {
		form := v.values
		set(&form, s)
		_, err := fleet.PrepareVehicle(form, v.existing, v.editingID)
		return fieldError(err, field)
	}
}

func (v *Vehicle) build() *huh.Form {
	plate := huh.Field(huh.NewInput().
		Title("Placa").
		Placeholder("Ej. ABC-1234").
		CharLimit(8).
		Value(&v.values.Plate).
		Validate(v.check("placa", func(f *fleet.VehicleForm, s string) { f.Plate = s })))
	if v.Editing() {
		// the plate identifies the vehicle and cannot change
		plate = huh.NewNote().Title("Placa").Description(v.values.Plate)
	}

	typeOptions := make([]huh.Option[string], 0, len(v.types))
	for _, t := range v.sortedTypes() {
		typeOptions = append(typeOptions, huh.NewOption(t.Name, strconv.Itoa(t.ID)))
	}
	statusOptions := make([]huh.Option[string], 0, len(fleet.Availabilities))
	for _, a := range fleet.Availabilities {
		statusOptions = append(statusOptions, huh.NewOption(string(a), string(a)))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Nombre del Vehículo").
				Placeholder("Ej. Camión de Carga").
				Value(&v.values.Name).
				Validate(v.check("nombre", func(f *fleet.VehicleForm, s string) { f.Name = s })),
			plate,
			huh.NewInput().
				Title("Marca").
				Placeholder("Ej. Volvo").
				Value(&v.values.Brand).
				Validate(v.check("marca", func(f *fleet.VehicleForm, s string) { f.Brand = s })),
			huh.NewInput().
				Title("Modelo").
				Placeholder("Ej. FH16").
				Value(&v.values.Model).
				Validate(v.check("modelo", func(f *fleet.VehicleForm, s string) { f.Model = s })),
		).Title(v.Title()),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Tipo de maquinaria").
				Options(typeOptions...).
				Value(&v.values.TypeID).
				Validate(v.check("tipoMaquinariaId", func(f *fleet.VehicleForm, s string) { f.TypeID = s })),
			huh.NewSelect[string]().
				Title("Estado del vehículo").
				Options(statusOptions...).
				Value(&v.values.Availability).
				Validate(v.check("disponible", func(f *fleet.VehicleForm, s string) { f.Availability = s })),
			huh.NewInput().
				Title("Consumo de combustible (L/Km)").
				Placeholder("Ej. 0.35").
				Value(&v.values.FuelPerKm).
				Validate(v.check("consumoCombustibleKm", func(f *fleet.VehicleForm, s string) { f.FuelPerKm = s })),
			huh.NewInput().
				Title("Capacidad del tanque (L)").
				Placeholder("Ej. 500").
				Value(&v.values.FuelCapacity).
				Validate(v.check("capacidadCombustible", func(f *fleet.VehicleForm, s string) { f.FuelCapacity = s })),
		).Title("Operación"),
	).WithTheme(Theme()).WithShowHelp(false)
}

// Init implements tea.Model
func (v *Vehicle) Init() tea.Cmd {
	return v.form.Init()
}

// Update implements tea.Model
func (v *Vehicle) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if v.busy {
		return v, nil
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			return v, func() tea.Msg { return VehicleCancelledMsg{} }
		case "ctrl+l":
			return v, v.clear()
		}
	}

	var cmd tea.Cmd
	v.form, cmd = step(v.form, msg)
	if v.form.State == huh.StateCompleted {
		return v, v.submit()
	}
	return v, cmd
}

func (v *Vehicle) submit() tea.Cmd {
	in, err := fleet.PrepareVehicle(v.values, v.existing, v.editingID)
	if fe, ok := fleet.AsFieldErrors(err); ok {
		v.errs = fe
		v.form = v.build()
		return v.form.Init()
	}
	v.errs = nil
	v.serverErr = ""
	v.busy = true
	id := v.editingID
	return func() tea.Msg { return VehicleSubmittedMsg{ID: id, Input: in} }
}

// clear empties the form; when editing the plate is kept
func (v *Vehicle) clear() tea.Cmd {
	plate := ""
	if v.Editing() {
		plate = v.values.Plate
	}
	v.values = fleet.VehicleForm{
		Plate:        plate,
		TypeID:       v.defaultType(),
		Availability: string(fleet.Available),
	}
	v.errs = nil
	v.serverErr = ""
	v.form = v.build()
	return v.form.Init()
}

// SetServerError reopens the form after the backend rejected it. Messages
// mentioning the plate are shown on the plate field.
func (v *Vehicle) SetServerError(message string) tea.Cmd {
	v.busy = false
	v.errs = nil
	v.serverErr = ""
	if strings.Contains(strings.ToLower(message), "placa") {
		v.errs = fleet.FieldErrors{"placa": MsgPlateTaken}
	} else {
		v.serverErr = message
	}
	v.form = v.build()
	return v.form.Init()
}

// Errors returns the field errors from the last submission
func (v *Vehicle) Errors() fleet.FieldErrors {
	return v.errs
}

// ServerError returns the form-level error from the last submission
func (v *Vehicle) ServerError() string {
	return v.serverErr
}

// View implements tea.Model
func (v *Vehicle) View() string {
	if v.busy {
		return styles.Subtitle.Render("Guardando...")
	}

	var sb strings.Builder
	sb.WriteString(v.form.View())

	if len(v.errs) > 0 {
		keys := make([]string, 0, len(v.errs))
		for k := range v.errs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteString("\n")
		for _, k := range keys {
			sb.WriteString(styles.FieldError.Render("• " + v.errs[k]))
			sb.WriteString("\n")
		}
	}
	if v.serverErr != "" {
		sb.WriteString("\n")
		sb.WriteString(styles.ErrorBanner.Render(v.serverErr))
	}
	return sb.String()
}
