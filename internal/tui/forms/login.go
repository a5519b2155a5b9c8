// ABOUTME: Sign-in and password recovery forms as bubbletea models
// ABOUTME: Fields are checked with the fleet request validators before anything is submitted

package forms

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/fuelwise/fuelwise-cli/internal/fleet"
	"github.com/fuelwise/fuelwise-cli/internal/tui/styles"
)

// LoginSubmittedMsg carries a validated sign-in request
type LoginSubmittedMsg struct {
	Request fleet.LoginRequest
}

// Login is the sign-in form
type Login struct {
	form     *huh.Form
	username string
	password string
	busy     bool
}

// NewLogin creates the sign-in form, prefilling username
func NewLogin(username string) *Login {
	l := &Login{username: username}
	l.form = l.build()
	return l
}

func (l *Login) build() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Usuario").
				Placeholder("Username").
				Value(&l.username).
				Validate(func(s string) error {
					return fieldError(fleet.LoginRequest{Username: s, Password: "-"}.Validate(), "username")
				}),
			huh.NewInput().
				Title("Contraseña").
				Placeholder("Password").
				EchoMode(huh.EchoModePassword).
				Value(&l.password).
				Validate(func(s string) error {
					return fieldError(fleet.LoginRequest{Username: "---", Password: s}.Validate(), "password")
				}),
		).Title("Iniciar sesión"),
	).WithTheme(Theme()).WithShowHelp(false)
}

// Init implements tea.Model
func (l *Login) Init() tea.Cmd {
	return l.form.Init()
}

// Update implements tea.Model
func (l *Login) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if l.busy {
		return l, nil
	}
	var cmd tea.Cmd
	l.form, cmd = step(l.form, msg)
	if l.form.State == huh.StateCompleted {
		l.busy = true
		req := fleet.LoginRequest{Username: strings.TrimSpace(l.username), Password: l.password}
		return l, func() tea.Msg { return LoginSubmittedMsg{Request: req} }
	}
	return l, cmd
}

// Reset rebuilds the form after a failed attempt, keeping the username
func (l *Login) Reset() tea.Cmd {
	l.busy = false
	l.password = ""
	l.form = l.build()
	return l.form.Init()
}

// Username returns the typed username
func (l *Login) Username() string {
	return strings.TrimSpace(l.username)
}

// Busy reports whether a submission is outstanding
func (l *Login) Busy() bool {
	return l.busy
}

// View implements tea.Model
func (l *Login) View() string {
	if l.busy {
		return styles.Subtitle.Render("Entrando...")
	}
	return l.form.View()
}

// ForgotSubmittedMsg carries a validated recovery request
type ForgotSubmittedMsg struct {
	Request fleet.ForgotPasswordRequest
}

// Forgot is the password recovery form
type Forgot struct {
	form       *huh.Form
	identifier string
	busy       bool
}

// NewForgot creates the recovery form
func NewForgot() *Forgot {
	f := &Forgot{}
	f.form = f.build()
	return f
}

func (f *Forgot) build() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Usuario o correo").
				Placeholder("Username o correo").
				Value(&f.identifier).
				Validate(func(s string) error {
					req := fleet.ForgotPasswordRequest{Identifier: s}
					return fieldError(req.Validate(), "identifier")
				}),
		).Title("Recuperar contraseña").
			Description("Escribe tu usuario o correo."),
	).WithTheme(Theme()).WithShowHelp(false)
}

// Init implements tea.Model
func (f *Forgot) Init() tea.Cmd {
	return f.form.Init()
}

// Update implements tea.Model
func (f *Forgot) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if f.busy {
		return f, nil
	}
	var cmd tea.Cmd
	f.form, cmd = step(f.form, msg)
	if f.form.State == huh.StateCompleted {
		f.busy = true
		req := fleet.ForgotPasswordRequest{Identifier: strings.TrimSpace(f.identifier)}
		return f, func() tea.Msg { return ForgotSubmittedMsg{Request: req} }
	}
	return f, cmd
}

// Reset rebuilds the form. clear drops the typed identifier.
func (f *Forgot) Reset(clear bool) tea.Cmd {
	f.busy = false
	if clear {
		f.identifier = ""
	}
	f.form = f.build()
	return f.form.Init()
}

// View implements tea.Model
func (f *Forgot) View() string {
	if f.busy {
		return styles.Subtitle.Render("Enviando...")
	}
	return f.form.View()
}
