// ABOUTME: Vehicle commands for the fuelwise CLI
// ABOUTME: List, search, create and update fleet vehicles and list machinery types

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fuelwise/fuelwise-cli/internal/export"
	"github.com/fuelwise/fuelwise-cli/internal/fleet"
	"github.com/fuelwise/fuelwise-cli/internal/roles"
	"github.com/spf13/cobra"
)

var (
	filterTerm   string
	filterType   int
	filterStatus string
	listPage     int
	serverSearch bool

	vehicleID   int
	vehicleForm fleet.VehicleForm
)

var vehiclesCmd = &cobra.Command{
	Use:     "vehicles",
	Aliases: []string{"vehiculos"},
	Short:   "Manage fleet vehicles",
}

var vehiclesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List vehicles, optionally filtered and paged",
	Long: `List fleet vehicles. Filters match locally like the TUI:
--term searches name, plate, brand and model; --type and --status narrow further.

Exit codes:
  0 - Listed
  1 - Not signed in or not allowed
  2 - Error (connectivity, invalid input)`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runVehiclesList(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var vehiclesSearchCmd = &cobra.Command{
	Use:   "search [term]",
	Short: "Search vehicles on the server",
	Long: `Search vehicles with the API search endpoints.

With a positional term the path search is used; otherwise --term, --type and
--status are sent as query parameters.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		serverSearch = len(args) == 0
		if len(args) == 1 {
			filterTerm = args[0]
		}
		exitCode := runVehiclesSearch(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var vehiclesTypesCmd = &cobra.Command{
	Use:   "types",
	Short: "List machinery types",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runVehicleTypes(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var vehiclesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a vehicle",
	Long: `Register a vehicle. Every field is required; the plate must look like ABC-1234
and may not already exist in the fleet.

Exit codes:
  0 - Created
  1 - Invalid input, not signed in or not allowed
  2 - Error (connectivity, server rejection)`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		vehicleID = 0
		exitCode := runVehicleSave(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var vehiclesUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Edit a vehicle; omitted fields keep their current value",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := strconv.Atoi(args[0])
		if err != nil || id <= 0 {
			fmt.Fprintf(os.Stdout, "Error: invalid vehicle id %q\n", args[0])
			os.Exit(2)
		}
		vehicleID = id

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runVehicleSave(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(vehiclesCmd)
	vehiclesCmd.AddCommand(vehiclesListCmd, vehiclesSearchCmd, vehiclesTypesCmd, vehiclesCreateCmd, vehiclesUpdateCmd)

	for _, c := range []*cobra.Command{vehiclesListCmd, vehiclesSearchCmd} {
		addFilterFlags(c)
	}
	vehiclesListCmd.Flags().IntVar(&listPage, "page", 0, "Page to show, 10 vehicles per page (0 shows all)")

	for _, c := range []*cobra.Command{vehiclesCreateCmd, vehiclesUpdateCmd} {
		c.Flags().StringVar(&vehicleForm.Name, "name", "", "Vehicle name")
		c.Flags().StringVar(&vehicleForm.Plate, "plate", "", "Plate, e.g. ABC-1234")
		c.Flags().StringVar(&vehicleForm.Brand, "brand", "", "Brand")
		c.Flags().StringVar(&vehicleForm.Model, "model", "", "Model")
		c.Flags().StringVar(&vehicleForm.TypeID, "type", "", "Machinery type id")
		c.Flags().StringVar(&vehicleForm.Availability, "status", "", "Disponible, En Mantenimiento or No Disponible")
		c.Flags().StringVar(&vehicleForm.FuelPerKm, "fuel-per-km", "", "Fuel consumption per km")
		c.Flags().StringVar(&vehicleForm.FuelCapacity, "capacity", "", "Fuel capacity in liters")
	}
}

func addFilterFlags(c *cobra.Command) {
	c.Flags().StringVar(&filterTerm, "term", "", "Match name, plate, brand or model")
	c.Flags().IntVar(&filterType, "type", 0, "Machinery type id")
	c.Flags().StringVar(&filterStatus, "status", "", "Disponible, En Mantenimiento or No Disponible")
}

func currentFilter() fleet.Filter {
	return fleet.Filter{Term: filterTerm, TypeID: filterType, Availability: filterStatus}
}

func canView(p roles.Permissions) bool   { return p.CanViewVehicles }
func canCreate(p roles.Permissions) bool { return p.CanCreateVehicles }
func canExport(p roles.Permissions) bool { return p.CanExportVehicles }

// vehicleRecord is the JSON shape of one vehicle
type vehicleRecord struct {
	fleet.Vehicle
	TypeName string `json:"tipoMaquinaria,omitempty"`
}

// vehicleList is the JSON shape of a listing
type vehicleList struct {
	Total    int             `json:"total"`
	Page     int             `json:"page,omitempty"`
	Pages    int             `json:"pages,omitempty"`
	Vehicles []vehicleRecord `json:"vehicles"`
}

func newVehicleList(vehicles []fleet.Vehicle, idx fleet.TypeIndex) vehicleList {
	out := vehicleList{Total: len(vehicles), Vehicles: make([]vehicleRecord, 0, len(vehicles))}
	for _, v := range vehicles {
		out.Vehicles = append(out.Vehicles, vehicleRecord{Vehicle: v, TypeName: idx.Name(v.TypeID)})
	}
	return out
}

// runVehiclesList loads the fleet, filters it locally and returns exit code
func runVehiclesList(ctx context.Context, w io.Writer) int {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	defer a.Close()

	if _, code := a.authorize(w, canView); code != 0 {
		return code
	}
	types, vehicles, err := a.loadFleet(ctx)
	if err != nil {
		return fail(w, err)
	}

	filtered := currentFilter().Apply(vehicles)
	idx := fleet.IndexTypes(types)
	shown := filtered
	page := 0
	if listPage > 0 {
		page = fleet.ClampPage(listPage, len(filtered), fleet.DefaultPageSize)
		shown = fleet.Paginate(filtered, page, fleet.DefaultPageSize)
	}

	out := newVehicleList(shown, idx)
	out.Total = len(filtered)
	if page > 0 {
		out.Page = page
		out.Pages = fleet.Pages(len(filtered), fleet.DefaultPageSize)
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(out))
	} else {
		fmt.Fprintln(w, formatVehiclesHuman(out, idx, len(vehicles)))
	}
	return 0
}

// runVehiclesSearch queries the search endpoints and returns exit code
func runVehiclesSearch(ctx context.Context, w io.Writer) int {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	defer a.Close()

	if _, code := a.authorize(w, canView); code != 0 {
		return code
	}

	var vehicles []fleet.Vehicle
	if serverSearch {
		vehicles, err = a.client.SearchVehicles(ctx, currentFilter())
	} else {
		vehicles, err = a.client.SearchVehiclesByTerm(ctx, strings.TrimSpace(filterTerm))
	}
	if err != nil {
		return fail(w, err)
	}
	types, err := a.client.VehicleTypes(ctx)
	if err != nil {
		a.log.Sugar().Warnw("types unavailable for search output", "error", err)
	}

	idx := fleet.IndexTypes(types)
	out := newVehicleList(vehicles, idx)
	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(out))
	} else {
		fmt.Fprintln(w, formatVehiclesHuman(out, idx, len(vehicles)))
	}
	return 0
}

// runVehicleTypes prints the machinery types and returns exit code
func runVehicleTypes(ctx context.Context, w io.Writer) int {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	defer a.Close()

	if _, code := a.authorize(w, nil); code != 0 {
		return code
	}
	types, err := a.client.VehicleTypes(ctx)
	if err != nil {
		return fail(w, err)
	}
	slices.SortFunc(types, func(x, y fleet.VehicleType) int { return x.ID - y.ID })

	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(types))
		return 0
	}
	if len(types) == 0 {
		fmt.Fprintln(w, "No hay tipos de maquinaria.")
		return 0
	}
	rows := make([][]string, 0, len(types))
	for _, t := range types {
		rows = append(rows, []string{strconv.Itoa(t.ID), t.Name})
	}
	fmt.Fprintln(w, renderTable([]string{"ID", "Tipo"}, rows))
	return 0
}

// runVehicleSave creates a vehicle, or updates vehicleID when set, and returns exit code
func runVehicleSave(ctx context.Context, w io.Writer) int {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	defer a.Close()

	if _, code := a.authorize(w, canCreate); code != 0 {
		return code
	}
	existing, err := a.client.Vehicles(ctx)
	if err != nil {
		return fail(w, err)
	}

	form := vehicleForm
	if vehicleID != 0 {
		i := slices.IndexFunc(existing, func(v fleet.Vehicle) bool { return v.ID == vehicleID })
		if i < 0 {
			fmt.Fprintf(w, "Error: vehículo %d no encontrado\n", vehicleID)
			return 1
		}
		form = mergeForm(fleet.FormFromVehicle(existing[i]), vehicleForm)
	}

	input, err := fleet.PrepareVehicle(form, existing, vehicleID)
	if err != nil {
		if errs, ok := fleet.AsFieldErrors(err); ok {
			fmt.Fprint(w, formatFieldErrors(errs))
			return 1
		}
		return fail(w, err)
	}

	var saved *fleet.Vehicle
	if vehicleID == 0 {
		saved, err = a.client.CreateVehicle(ctx, input)
	} else {
		saved, err = a.client.UpdateVehicle(ctx, vehicleID, input)
	}
	if err != nil {
		return fail(w, err)
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(saved))
	} else if vehicleID == 0 {
		fmt.Fprintf(w, "Vehículo creado correctamente (id %d).\n", saved.ID)
	} else {
		fmt.Fprintf(w, "Vehículo actualizado correctamente (id %d).\n", saved.ID)
	}
	return 0
}

// mergeForm overlays the non-empty fields of changes onto base
func mergeForm(base, changes fleet.VehicleForm) fleet.VehicleForm {
	pick := func(cur, next string) string {
		if strings.TrimSpace(next) != "" {
			return next
		}
		return cur
	}
	return fleet.VehicleForm{
		Name:         pick(base.Name, changes.Name),
		Plate:        pick(base.Plate, changes.Plate),
		Brand:        pick(base.Brand, changes.Brand),
		Model:        pick(base.Model, changes.Model),
		TypeID:       pick(base.TypeID, changes.TypeID),
		Availability: pick(base.Availability, changes.Availability),
		FuelPerKm:    pick(base.FuelPerKm, changes.FuelPerKm),
		FuelCapacity: pick(base.FuelCapacity, changes.FuelCapacity),
	}
}

// formatFieldErrors lists validation failures, one per line, sorted by field
func formatFieldErrors(errs fleet.FieldErrors) string {
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	slices.Sort(fields)

	var b strings.Builder
	b.WriteString("Error: datos inválidos\n")
	for _, f := range fields {
		fmt.Fprintf(&b, "  %s: %s\n", f, errs[f])
	}
	return b.String()
}

// formatVehiclesHuman renders a listing as a table with a count line
func formatVehiclesHuman(out vehicleList, idx fleet.TypeIndex, fleetSize int) string {
	if fleetSize == 0 {
		return "No hay vehículos registrados."
	}
	if out.Total == 0 {
		return "Ningún vehículo coincide con los filtros."
	}

	vehicles := make([]fleet.Vehicle, 0, len(out.Vehicles))
	for _, r := range out.Vehicles {
		vehicles = append(vehicles, r.Vehicle)
	}
	report := export.Report{Vehicles: vehicles, Types: idx}

	summary := fmt.Sprintf("%d vehículos", out.Total)
	if out.Pages > 1 {
		from, to := fleet.Window(out.Page, out.Total, fleet.DefaultPageSize)
		summary = fmt.Sprintf("Mostrando %d a %d de %d vehículos    Página %d de %d", from, to, out.Total, out.Page, out.Pages)
	}
	return renderTable(export.Headers, report.Rows()) + "\n" + summary
}

// renderTable draws rows with a plain border so output stays readable when piped
func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		String()
}
