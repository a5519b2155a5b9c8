// ABOUTME: Root bubbletea model for the TUI application
// ABOUTME: Follows the router for the active screen and reacts to session changes from any source

package tui

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/common-nighthawk/go-figure"
	"github.com/fuelwise/fuelwise-cli/internal/client"
	"github.com/fuelwise/fuelwise-cli/internal/credential"
	"github.com/fuelwise/fuelwise-cli/internal/export"
	"github.com/fuelwise/fuelwise-cli/internal/fleet"
	"github.com/fuelwise/fuelwise-cli/internal/router"
	"github.com/fuelwise/fuelwise-cli/internal/session"
	"github.com/fuelwise/fuelwise-cli/internal/tui/dashboard"
	"github.com/fuelwise/fuelwise-cli/internal/tui/forms"
	"github.com/fuelwise/fuelwise-cli/internal/tui/icons"
	"github.com/fuelwise/fuelwise-cli/internal/tui/menu"
	"github.com/fuelwise/fuelwise-cli/internal/tui/styles"
	"github.com/fuelwise/fuelwise-cli/internal/tui/vehicles"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Screen represents the current TUI screen
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenRegister
	ScreenForgot
	ScreenDashboard
	ScreenVehicles
	ScreenVehicleForm
	ScreenAccessDenied
)

// Layout constants
const (
	minTerminalWidth = 80 // Minimum width the frame is drawn at
	panelPadding     = 4  // Total horizontal padding from panel borders (2 each side)
)

// successBannerTTL is how long a success banner stays up
const successBannerTTL = 3500 * time.Millisecond

// User-facing texts
const (
	appTitle          = "FuelWise"
	msgUnexpected     = "Error inesperado"
	msgBadLogin       = "Respuesta inválida del servidor"
	msgExpiredLogin   = "La sesión recibida ya expiró"
	msgInvalidLogin   = "La sesión recibida no es válida"
	msgForgotSent     = "Si la cuenta existe, te enviamos un enlace de recuperación."
	msgTypesFailed    = "No se pudieron cargar los tipos de maquinaria"
	msgVehiclesFailed = "No se pudieron cargar los vehículos"
	msgDenied         = "No tienes permisos para acceder a la gestión de vehículos."
)

// Options wires the App to the rest of the program
type Options struct {
	Session   *session.Manager
	Router    *router.Router
	Client    *client.Client
	History   *export.History
	ExportDir string
	Log       *zap.Logger
	Now       func() time.Time
}

// externalChangeMsg is sent when the session or route changed outside Update
type externalChangeMsg struct{}

// loginDoneMsg is sent when a sign-in attempt finishes
type loginDoneMsg struct {
	err error
}

// forgotDoneMsg is sent when a recovery request finishes
type forgotDoneMsg struct {
	err error
}

// logoutDoneMsg is sent when sign-out finishes
type logoutDoneMsg struct {
	err error
}

// fleetLoadedMsg carries the vehicle types and vehicles
type fleetLoadedMsg struct {
	types       []fleet.VehicleType
	vehicles    []fleet.Vehicle
	typesErr    error
	vehiclesErr error
}

// vehicleSavedMsg is sent when a create or update finishes
type vehicleSavedMsg struct {
	created bool
	err     error
}

// exportDoneMsg is sent when an export file has been written or failed
type exportDoneMsg struct {
	format export.Format
	path   string
	err    error
}

// bannerExpiredMsg hides the success banner it was scheduled for
type bannerExpiredMsg struct {
	seq int
}

// App is the root model for the TUI
type App struct {
	opts   Options
	log    *zap.Logger
	screen Screen
	route  string
	width  int
	height int

	// Screen models
	login  *forms.Login
	forgot *forms.Forgot
	dash   *dashboard.Dashboard
	menu   *menu.Menu
	list   *vehicles.Model
	vform  *forms.Vehicle

	// Loaded data shared by the dashboard and the vehicle list
	types      []fleet.VehicleType
	vehicles   []fleet.Vehicle
	lastUpdate time.Time

	forgotSent bool
	errBanner  string
	okBanner   string
	okSeq      int

	changes     chan struct{}
	done        chan struct{}
	unsubscribe func()
	startCmd    tea.Cmd
}

// New creates the App and subscribes it to session and route changes.
// Call Close when the program exits.
func New(opts Options) *App {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	a := &App{
		opts:    opts,
		log:     opts.Log.Named("tui"),
		changes: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	a.unsubscribe = opts.Session.Subscribe(func(session.Session) { a.poke() })
	opts.Router.OnChange(func(string) { a.poke() })

	start := router.Login
	if opts.Session.Get().IsAuthenticated {
		start = router.Dashboard
	}
	a.startCmd = a.navigate(start)
	return a
}

// Close stops the change bridge and the session subscription
func (a *App) Close() {
	select {
	case <-a.done:
	default:
		close(a.done)
	}
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
}

// poke records that something changed; extra pokes coalesce
func (a *App) poke() {
	select {
	case a.changes <- struct{}{}:
	default:
	}
}

// wait delivers the next external change as a message
func (a *App) wait() tea.Cmd {
	changes, done := a.changes, a.done
	return func() tea.Msg {
		select {
		case <-changes:
			return externalChangeMsg{}
		case <-done:
			return nil
		}
	}
}

// Screen returns the active screen
func (a *App) Screen() Screen {
	return a.screen
}

// Route returns the path the active screen belongs to
func (a *App) Route() string {
	return a.route
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.startCmd, a.wait())
}

// navigate asks the router for path and shows wherever it lands
func (a *App) navigate(path string) tea.Cmd {
	return a.enter(a.opts.Router.Navigate(path))
}

// enter builds the screen for an already resolved path
func (a *App) enter(path string) tea.Cmd {
	a.route = path
	a.errBanner = ""
	s := a.opts.Session.Get()

	switch path {
	case router.Register:
		a.screen = ScreenRegister
		return nil

	case router.Forgot:
		a.screen = ScreenForgot
		a.forgotSent = false
		a.forgot = forms.NewForgot()
		return a.forgot.Init()

	case router.Dashboard:
		a.screen = ScreenDashboard
		a.dash = dashboard.New(s, a.paneWidth(), a.contentHeight())
		a.menu = menu.New(menu.ActionDashboard)
		cmds := []tea.Cmd{a.menu.Init()}
		if s.Permissions().CanViewVehicles {
			cmds = append(cmds, a.loadFleet())
		}
		return tea.Batch(cmds...)

	case router.Vehicles:
		perms := s.Permissions()
		if !perms.CanViewVehicles {
			a.screen = ScreenAccessDenied
			a.log.Info("vehicle list denied", zap.String("role", s.Identity().String()))
			return nil
		}
		a.screen = ScreenVehicles
		a.list = vehicles.New(perms, a.paneWidth(), a.contentHeight())
		return a.loadFleet()

	default:
		a.screen = ScreenLogin
		username := ""
		if a.login != nil {
			username = a.login.Username()
		}
		a.login = forms.NewLogin(username)
		return a.login.Init()
	}
}

// protected reports whether the active screen needs a session
func (a *App) protected() bool {
	r, _ := router.Lookup(a.route)
	return r.Protected
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.dash != nil {
			a.dash.SetSize(a.paneWidth(), a.contentHeight())
		}
		if a.list != nil {
			a.list.SetSize(a.paneWidth(), a.contentHeight())
		}
		return a, a.forward(msg)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "ctrl+x":
			if a.protected() {
				return a, a.signOut()
			}
		}
		return a.updateScreen(msg)

	case externalChangeMsg:
		return a, tea.Batch(a.syncExternal(), a.wait())

	case forms.LoginSubmittedMsg:
		return a, a.signIn(msg.Request)

	case loginDoneMsg:
		if msg.err != nil {
			a.log.Info("sign-in failed", zap.Error(msg.err))
			a.errBanner = loginMessage(msg.err)
			if a.login != nil {
				return a, a.login.Reset()
			}
			return a, nil
		}
		return a, a.navigate(a.opts.Router.AfterLogin())

	case forms.ForgotSubmittedMsg:
		return a, a.requestReset(msg.Request)

	case forgotDoneMsg:
		if a.forgot == nil {
			return a, nil
		}
		if msg.err != nil {
			a.errBanner = client.Message(msg.err)
			return a, a.forgot.Reset(false)
		}
		a.errBanner = ""
		a.forgotSent = true
		return a, a.forgot.Reset(true)

	case logoutDoneMsg:
		if msg.err != nil {
			a.log.Error("sign-out failed", zap.Error(msg.err))
		}
		return a, nil

	case menu.SelectedMsg:
		return a.handleMenu(msg.Action)

	case fleetLoadedMsg:
		return a.handleFleetLoaded(msg)

	case vehicles.NewVehicleMsg:
		return a, a.openForm(nil)

	case vehicles.EditVehicleMsg:
		v := msg.Vehicle
		return a, a.openForm(&v)

	case vehicles.ExportMsg:
		return a, a.exportList(msg.Format)

	case vehicles.RefreshMsg:
		return a, a.loadFleet()

	case vehicles.BackMsg:
		return a, a.navigate(router.Dashboard)

	case forms.VehicleSubmittedMsg:
		return a, a.saveVehicle(msg)

	case forms.VehicleCancelledMsg:
		a.closeForm()
		return a, nil

	case vehicleSavedMsg:
		return a.handleVehicleSaved(msg)

	case exportDoneMsg:
		return a.handleExportDone(msg)

	case bannerExpiredMsg:
		if msg.seq == a.okSeq {
			a.okBanner = ""
		}
		return a, nil
	}

	// huh forms need their internal messages
	return a, a.forward(msg)
}

// forward hands a non-key message to the active form
func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.screen {
	case ScreenLogin:
		if a.login != nil {
			_, cmd = a.login.Update(msg)
		}
	case ScreenForgot:
		if a.forgot != nil {
			_, cmd = a.forgot.Update(msg)
		}
	case ScreenDashboard:
		if a.menu != nil {
			_, cmd = a.menu.Update(msg)
		}
	case ScreenVehicleForm:
		if a.vform != nil {
			_, cmd = a.vform.Update(msg)
		}
	}
	return cmd
}

func (a *App) updateScreen(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.screen {
	case ScreenLogin:
		return a.updateLogin(msg)
	case ScreenRegister:
		return a.updateRegister(msg)
	case ScreenForgot:
		return a.updateForgot(msg)
	case ScreenDashboard:
		return a.updateDashboard(msg)
	case ScreenVehicles:
		return a.updateVehicles(msg)
	case ScreenVehicleForm:
		if a.vform == nil {
			return a, nil
		}
		_, cmd := a.vform.Update(msg)
		return a, cmd
	case ScreenAccessDenied:
		return a.updateDenied(msg)
	}
	return a, nil
}

func (a *App) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.login == nil {
		return a, nil
	}
	if !a.login.Busy() {
		switch msg.String() {
		case "ctrl+f":
			return a, a.navigate(router.Forgot)
		case "ctrl+r":
			return a, a.navigate(router.Register)
		}
	}
	_, cmd := a.login.Update(msg)
	return a, cmd
}

func (a *App) updateRegister(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter", "b":
		return a, a.navigate(router.Login)
	case "q":
		return a, tea.Quit
	}
	return a, nil
}

func (a *App) updateForgot(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.forgot == nil {
		return a, nil
	}
	if msg.String() == "esc" {
		return a, a.navigate(router.Login)
	}
	_, cmd := a.forgot.Update(msg)
	return a, cmd
}

func (a *App) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "v":
		return a, a.navigate(router.Vehicles)
	case "r":
		if a.opts.Session.Get().Permissions().CanViewVehicles {
			return a, a.loadFleet()
		}
		return a, nil
	case "x":
		a.errBanner = ""
		return a, nil
	}
	if a.menu == nil {
		return a, nil
	}
	_, cmd := a.menu.Update(msg)
	return a, cmd
}

func (a *App) updateVehicles(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.list == nil {
		return a, nil
	}
	if !a.list.Searching() {
		switch msg.String() {
		case "q":
			return a, tea.Quit
		case "x":
			a.errBanner = ""
			return a, nil
		}
	}
	_, cmd := a.list.Update(msg)
	return a, cmd
}

func (a *App) updateDenied(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "esc", "enter", "b":
		return a, a.navigate(router.Dashboard)
	}
	return a, nil
}

func (a *App) handleMenu(action menu.Action) (tea.Model, tea.Cmd) {
	switch action {
	case menu.ActionVehicles:
		return a, a.navigate(router.Vehicles)
	case menu.ActionLogout:
		return a, a.signOut()
	case menu.ActionQuit:
		return a, tea.Quit
	default:
		return a, a.navigate(router.Dashboard)
	}
}

// syncExternal brings the screen in line with the session and the router
func (a *App) syncExternal() tea.Cmd {
	s := a.opts.Session.Get()
	path := a.opts.Router.Current()
	if a.protected() && !s.IsAuthenticated && path == a.route {
		path = a.opts.Router.Navigate(a.route)
	}
	if path != a.route {
		return a.enter(path)
	}
	if a.dash != nil {
		a.dash.SetSession(s)
	}
	if a.list != nil {
		a.list.SetPermissions(s.Permissions())
	}
	return nil
}

// signIn calls the backend and stores the session
func (a *App) signIn(req fleet.LoginRequest) tea.Cmd {
	c, mgr := a.opts.Client, a.opts.Session
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), client.DefaultTimeout)
		defer cancel()
		resp, err := c.Login(ctx, req)
		if err != nil {
			return loginDoneMsg{err: err}
		}
		return loginDoneMsg{err: mgr.Login(ctx, resp.Token, resp.Profile)}
	}
}

// loginMessage turns a sign-in failure into the banner text
func loginMessage(err error) string {
	switch {
	case errors.Is(err, client.ErrInvalidLoginResponse):
		return msgBadLogin
	case errors.Is(err, session.ErrExpired):
		return msgExpiredLogin
	case errors.Is(err, credential.ErrNoExpiry), errors.Is(err, credential.ErrMalformed):
		return msgInvalidLogin
	}
	if fe, ok := fleet.AsFieldErrors(err); ok {
		msgs := make([]string, 0, len(fe))
		for _, field := range slices.Sorted(maps.Keys(fe)) {
			msgs = append(msgs, fe[field])
		}
		return strings.Join(msgs, " · ")
	}
	if msg := client.Message(err); msg != "" {
		return msg
	}
	return msgUnexpected
}

func (a *App) requestReset(req fleet.ForgotPasswordRequest) tea.Cmd {
	c := a.opts.Client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), client.DefaultTimeout)
		defer cancel()
		return forgotDoneMsg{err: c.ForgotPassword(ctx, req)}
	}
}

func (a *App) signOut() tea.Cmd {
	mgr := a.opts.Session
	return func() tea.Msg {
		return logoutDoneMsg{err: mgr.Logout(context.Background())}
	}
}

// loadFleet fetches types and vehicles concurrently. Both calls run to
// completion so one failure still shows the other half.
func (a *App) loadFleet() tea.Cmd {
	c := a.opts.Client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), client.DefaultTimeout)
		defer cancel()

		var msg fleetLoadedMsg
		var g errgroup.Group
		g.Go(func() error {
			msg.types, msg.typesErr = c.VehicleTypes(ctx)
			return msg.typesErr
		})
		g.Go(func() error {
			msg.vehicles, msg.vehiclesErr = c.Vehicles(ctx)
			return msg.vehiclesErr
		})
		_ = g.Wait()
		return msg
	}
}

// loadMessage prefers the backend message over the generic fallback
func loadMessage(err error, fallback string) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

func (a *App) handleFleetLoaded(msg fleetLoadedMsg) (tea.Model, tea.Cmd) {
	var problems []string
	if msg.typesErr != nil {
		a.log.Warn("loading vehicle types failed", zap.Error(msg.typesErr))
		if !errors.Is(msg.typesErr, client.ErrUnauthorized) {
			problems = append(problems, loadMessage(msg.typesErr, msgTypesFailed))
		}
	} else {
		a.types = msg.types
	}
	if msg.vehiclesErr != nil {
		a.log.Warn("loading vehicles failed", zap.Error(msg.vehiclesErr))
		if !errors.Is(msg.vehiclesErr, client.ErrUnauthorized) {
			problems = append(problems, loadMessage(msg.vehiclesErr, msgVehiclesFailed))
		}
	} else {
		a.vehicles = msg.vehicles
		for _, v := range msg.vehicles {
			if _, ok := fleet.NormalizeAvailability(v.Availability); !ok && v.Availability != "" {
				a.log.Debug("unrecognized availability", zap.Int("id", v.ID), zap.String("value", v.Availability))
			}
		}
	}
	if len(problems) > 0 {
		a.errBanner = strings.Join(problems, " · ")
	}
	a.lastUpdate = a.opts.Now()

	if a.dash != nil && a.screen == ScreenDashboard {
		a.dash.SetVehicles(a.vehicles)
	}
	if a.list != nil {
		a.list.SetData(a.types, a.vehicles)
	}
	return a, nil
}

func (a *App) openForm(editing *fleet.Vehicle) tea.Cmd {
	if !a.opts.Session.Get().Permissions().CanCreateVehicles {
		return nil
	}
	a.vform = forms.NewVehicle(a.types, a.vehicles, editing)
	a.screen = ScreenVehicleForm
	return a.vform.Init()
}

func (a *App) closeForm() {
	a.vform = nil
	a.screen = ScreenVehicles
}

func (a *App) saveVehicle(msg forms.VehicleSubmittedMsg) tea.Cmd {
	c := a.opts.Client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), client.DefaultTimeout)
		defer cancel()
		if msg.ID == 0 {
			_, err := c.CreateVehicle(ctx, msg.Input)
			return vehicleSavedMsg{created: true, err: err}
		}
		_, err := c.UpdateVehicle(ctx, msg.ID, msg.Input)
		return vehicleSavedMsg{err: err}
	}
}

func (a *App) handleVehicleSaved(msg vehicleSavedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		a.log.Info("saving vehicle failed", zap.Bool("created", msg.created), zap.Error(msg.err))
		if a.vform == nil {
			a.errBanner = client.Message(msg.err)
			return a, nil
		}
		return a, a.vform.SetServerError(client.Message(msg.err))
	}
	a.closeForm()
	text := "✅ Vehículo actualizado correctamente."
	if msg.created {
		text = "✅ Vehículo creado correctamente."
	}
	return a, tea.Batch(a.flash(text), a.loadFleet())
}

func (a *App) exportList(f export.Format) tea.Cmd {
	if a.list == nil || !a.opts.Session.Get().Permissions().CanExportVehicles {
		return nil
	}
	report := export.Report{
		Vehicles: a.list.Filtered(),
		Types:    a.list.TypeIndex(),
		Now:      a.opts.Now(),
	}
	dir, history, log := a.opts.ExportDir, a.opts.History, a.log
	return func() tea.Msg {
		path, err := export.Save(dir, f, report)
		if err == nil && history != nil {
			entry := export.Entry{Path: path, Format: f, Rows: len(report.Vehicles), At: report.Now}
			if herr := history.Add(entry); herr != nil {
				log.Warn("recording export failed", zap.Error(herr))
			}
		}
		return exportDoneMsg{format: f, path: path, err: err}
	}
}

func (a *App) handleExportDone(msg exportDoneMsg) (tea.Model, tea.Cmd) {
	label := strings.ToUpper(string(msg.format))
	if msg.err != nil {
		a.log.Error("export failed", zap.String("format", string(msg.format)), zap.Error(msg.err))
		a.errBanner = fmt.Sprintf("❌ Error al exportar %s.", label)
		return a, nil
	}
	a.log.Info("exported vehicles", zap.String("path", msg.path))
	return a, a.flash(fmt.Sprintf("✅ %s exportado correctamente. %s", label, msg.path))
}

// flash shows a success banner that clears itself
func (a *App) flash(text string) tea.Cmd {
	a.okSeq++
	seq := a.okSeq
	a.okBanner = text
	return tea.Tick(successBannerTTL, func(time.Time) tea.Msg {
		return bannerExpiredMsg{seq: seq}
	})
}

// View implements tea.Model
func (a *App) View() string {
	var content string

	switch a.screen {
	case ScreenLogin:
		content = a.viewAuth(a.viewLogin())
	case ScreenRegister:
		content = a.viewAuth(a.viewRegister())
	case ScreenForgot:
		content = a.viewAuth(a.viewForgot())
	case ScreenDashboard:
		content = a.viewDashboard()
	case ScreenVehicles:
		content = a.viewVehicles()
	case ScreenVehicleForm:
		content = a.viewVehicleForm()
	case ScreenAccessDenied:
		content = a.viewDenied()
	}

	return a.wrapWithFrame(a.viewBanners() + content)
}

// viewBanners renders the success and error banners above the screen
func (a *App) viewBanners() string {
	var sb strings.Builder
	if a.okBanner != "" {
		sb.WriteString(styles.SuccessBanner.Render(a.okBanner))
		sb.WriteString("\n")
	}
	if a.errBanner != "" {
		sb.WriteString(styles.ErrorBanner.Render(a.errBanner + "  " + styles.Help.UnsetMarginTop().Render("(x cerrar)")))
		sb.WriteString("\n")
	}
	return sb.String()
}

// viewAuth centers a sign-in card under the banner
func (a *App) viewAuth(card string) string {
	banner := lipgloss.NewStyle().
		Foreground(styles.Primary).
		Render(figure.NewFigure(appTitle, "cybermedium", true).String())
	body := lipgloss.JoinVertical(lipgloss.Center,
		banner,
		styles.Subtitle.Render("Sistema de Control de Combustible"),
		styles.ActivePanel.Width(56).Render(card),
	)
	return lipgloss.PlaceHorizontal(max(a.width, minTerminalWidth)-panelPadding, lipgloss.Center, body)
}

func (a *App) viewLogin() string {
	if a.login == nil {
		return ""
	}
	return a.login.View() + "\n" + styles.Help.Render("Ctrl+F ¿Olvidaste tu contraseña?  ·  Ctrl+R Register")
}

func (a *App) viewRegister() string {
	return styles.Title.Render("Crear cuenta") + "\n" +
		styles.Subtitle.Render("Aquí irá tu formulario de registro. (Placeholder)") + "\n" +
		styles.KeyStyle.Render("Enter") + " Volver al login"
}

func (a *App) viewForgot() string {
	if a.forgot == nil {
		return ""
	}
	var sb strings.Builder
	if a.forgotSent {
		sb.WriteString(styles.SuccessBanner.Render(msgForgotSent))
		sb.WriteString("\n")
	}
	sb.WriteString(a.forgot.View())
	sb.WriteString("\n")
	sb.WriteString(styles.Help.Render("Esc Volver al login"))
	return sb.String()
}

// viewDashboard renders the dashboard with the navigation menu under it
func (a *App) viewDashboard() string {
	var panes []string
	if a.dash != nil {
		panes = append(panes, styles.ActivePanel.Width(a.contentWidth()).Render(a.dash.View()))
	}
	if a.menu != nil {
		panes = append(panes, styles.Panel.Width(a.contentWidth()).Render(a.menu.View()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, panes...)
}

func (a *App) viewVehicles() string {
	if a.list == nil {
		return ""
	}
	return styles.ActivePanel.Width(a.contentWidth()).Render(a.list.View())
}

func (a *App) viewVehicleForm() string {
	if a.vform == nil {
		return ""
	}
	title := icons.Add.String() + " " + a.vform.Title()
	if a.vform.Editing() {
		title = icons.Edit.String() + " " + a.vform.Title()
	}
	return styles.ActivePanel.Width(min(a.contentWidth(), 72)).Render(
		styles.Title.Render(title) + "\n" + a.vform.View(),
	)
}

func (a *App) viewDenied() string {
	return styles.Panel.Width(a.contentWidth()).Render(
		styles.StatusCritical.Render(icons.Lock.String()+" Acceso Denegado") + "\n\n" +
			styles.Subtitle.Render(msgDenied),
	)
}

// contentWidth is the width inside the frame
func (a *App) contentWidth() int {
	return max(a.width, minTerminalWidth) - panelPadding
}

// paneWidth is the width inside a panel's border and padding
func (a *App) paneWidth() int {
	return a.contentWidth() - 2*panelPadding
}

// contentHeight calculates the height available for screen content
func (a *App) contentHeight() int {
	// Header, footer, two separating newlines and the panel border+padding
	return max(0, a.height-8)
}

// renderHeader creates the header bar with app branding and the signed-in user
func (a *App) renderHeader() string {
	width := max(a.width, minTerminalWidth)

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	contextStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	leftText := fmt.Sprintf(" %s %s", icons.App.String(), titleStyle.Render(appTitle))

	rightText := ""
	if s := a.opts.Session.Get(); s.IsAuthenticated && a.protected() {
		who := dashboard.DisplayName(s.Profile) + " • " + s.Identity().String()
		rightText = contextStyle.Render(icons.User.String()+" "+who) + " "
	}

	leftWidth := lipgloss.Width(leftText)
	rightWidth := lipgloss.Width(rightText)
	fillWidth := max(0, width-4-leftWidth-rightWidth) // -4 for ╭─ and ─╮

	header := "╭─" + leftText + strings.Repeat("─", fillWidth) + rightText + "─╮"
	return borderStyle.Render(header)
}

// shortcuts lists the keyboard hints for the active screen
func (a *App) shortcuts() []string {
	switch a.screen {
	case ScreenLogin:
		return []string{"Enter Entrar", "Ctrl+F Recuperar", "Ctrl+R Registro", "Ctrl+C Salir"}
	case ScreenRegister:
		return []string{"Enter Volver", "q Salir"}
	case ScreenForgot:
		return []string{"Enter Enviar", "Esc Volver", "Ctrl+C Salir"}
	case ScreenDashboard:
		return []string{"↑↓ Navegar", "Enter Abrir", "v Vehículos", "r Actualizar", "Ctrl+X Cerrar sesión", "q Salir"}
	case ScreenVehicles:
		if a.list != nil && a.list.Searching() {
			return []string{"Enter Aplicar", "Esc Terminar búsqueda"}
		}
		keys := []string{"/ Buscar", "t Tipo", "s Estado", "←→ Página", "r Actualizar", "Esc Volver"}
		perms := a.opts.Session.Get().Permissions()
		if perms.CanCreateVehicles {
			keys = append(keys, "n Nuevo", "e Editar")
		}
		if perms.CanExportVehicles {
			keys = append(keys, "c CSV", "p PDF")
		}
		return append(keys, "q Salir")
	case ScreenVehicleForm:
		return []string{"Tab Siguiente", "Enter Confirmar", "Ctrl+L Limpiar", "Esc Cancelar"}
	case ScreenAccessDenied:
		return []string{"Esc Volver", "q Salir"}
	}
	return nil
}

// renderFooter creates the footer with keyboard shortcuts and status
func (a *App) renderFooter() string {
	width := max(a.width, minTerminalWidth)

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	keyStyle := lipgloss.NewStyle().Foreground(styles.Primary)
	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	statusStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	shortcuts := a.shortcuts()
	var styledShortcuts []string
	for _, s := range shortcuts {
		parts := strings.SplitN(s, " ", 2)
		if len(parts) == 2 {
			styledShortcuts = append(styledShortcuts, keyStyle.Render(parts[0])+" "+labelStyle.Render(parts[1]))
		} else {
			styledShortcuts = append(styledShortcuts, s)
		}
	}

	leftText := " " + strings.Join(styledShortcuts, "  ")
	leftPlainText := " " + strings.Join(shortcuts, "  ")

	rightText := ""
	rightPlainText := ""
	if !a.lastUpdate.IsZero() && (a.screen == ScreenDashboard || a.screen == ScreenVehicles) {
		status := "Actualizado " + a.formatTimeSince(a.lastUpdate)
		rightText = statusStyle.Render(status) + " "
		rightPlainText = status + " "
	}

	fillWidth := max(0, width-4-lipgloss.Width(leftPlainText)-lipgloss.Width(rightPlainText)) // -4 for ╰─ and ─╯

	footer := "╰─" + leftText + strings.Repeat("─", fillWidth) + rightText + "─╯"
	return borderStyle.Render(footer)
}

// formatTimeSince formats the time elapsed since t in human-readable form
func (a *App) formatTimeSince(t time.Time) string {
	d := a.opts.Now().Sub(t)

	if d < time.Minute {
		secs := int(d.Seconds())
		if secs < 5 {
			return "ahora"
		}
		return fmt.Sprintf("hace %ds", secs)
	}

	if d < time.Hour {
		return fmt.Sprintf("hace %dm", int(d.Minutes()))
	}

	return fmt.Sprintf("hace %dh", int(d.Hours()))
}

// wrapWithFrame wraps content with header and footer
func (a *App) wrapWithFrame(content string) string {
	var sb strings.Builder

	sb.WriteString(a.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(content)
	sb.WriteString("\n")
	sb.WriteString(a.renderFooter())

	return sb.String()
}

// Run starts the TUI and blocks until the user quits
func Run(opts Options) error {
	app := New(opts)
	defer app.Close()

	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
