// ABOUTME: Session commands for the fuelwise CLI
// ABOUTME: login, logout, whoami and forgot-password share the persisted session with the TUI

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fuelwise/fuelwise-cli/internal/credential"
	"github.com/fuelwise/fuelwise-cli/internal/fleet"
	"github.com/fuelwise/fuelwise-cli/internal/roles"
	"github.com/fuelwise/fuelwise-cli/internal/session"
	"github.com/spf13/cobra"
)

var (
	loginUsername    string
	loginPassword    string
	forgotIdentifier string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the fleet API",
	Long: `Sign in and persist the session for later commands and the TUI.

The password is read from --password or FUELWISE_PASSWORD.

Exit codes:
  0 - Signed in
  1 - Invalid input or rejected credentials
  2 - Error (connectivity, invalid response)`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if loginPassword == "" {
			loginPassword = os.Getenv("FUELWISE_PASSWORD")
		}
		exitCode := runLogin(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the current session",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runLogout(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user, role and permissions",
	Long: `Show the signed-in user.

Exit codes:
  0 - A session is active
  1 - No active session`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runWhoami(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var forgotCmd = &cobra.Command{
	Use:   "forgot-password <username-or-email>",
	Short: "Request a password recovery link",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		forgotIdentifier = args[0]
		exitCode := runForgot(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, forgotCmd)
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password")
}

// whoami is the JSON shape of a session
type whoami struct {
	Authenticated bool              `json:"authenticated"`
	Name          string            `json:"name,omitempty"`
	Email         string            `json:"email,omitempty"`
	Role          string            `json:"role,omitempty"`
	ExpiresAt     *time.Time        `json:"expiresAt,omitempty"`
	Permissions   roles.Permissions `json:"permissions"`
}

func describeSession(sess session.Session) whoami {
	out := whoami{Authenticated: sess.IsAuthenticated}
	if !sess.IsAuthenticated {
		return out
	}
	out.Permissions = sess.Permissions()
	out.Role = sess.Identity().String()
	if p := sess.Profile; p != nil {
		out.Name = p.Name
		out.Email = p.Email
	}
	if claims, err := credential.Parse(sess.Credential); err == nil {
		if exp, ok := claims.Expiry(); ok {
			out.ExpiresAt = &exp
		}
	}
	return out
}

// runLogin signs in and returns exit code
func runLogin(ctx context.Context, w io.Writer) int {
	req := fleet.LoginRequest{Username: strings.TrimSpace(loginUsername), Password: loginPassword}
	if err := req.Validate(); err != nil {
		return fail(w, err)
	}

	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	defer a.Close()

	resp, err := a.client.Login(ctx, req)
	if err != nil {
		return fail(w, err)
	}
	if err := a.session.Login(ctx, resp.Token, resp.Profile); err != nil {
		return fail(w, err)
	}

	info := describeSession(a.session.Get())
	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(info))
	} else {
		fmt.Fprintf(w, "Sesión iniciada como %s\n", formatWhoamiHuman(info))
	}
	return 0
}

// runLogout ends the session and returns exit code
func runLogout(ctx context.Context, w io.Writer) int {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	defer a.Close()

	if err := a.session.Logout(ctx); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(whoami{}))
	} else {
		fmt.Fprintln(w, "Sesión cerrada.")
	}
	return 0
}

// runWhoami prints the current session and returns exit code
func runWhoami(ctx context.Context, w io.Writer) int {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	defer a.Close()

	info := describeSession(a.session.Get())
	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(info))
	} else if info.Authenticated {
		fmt.Fprintln(w, formatWhoamiHuman(info))
	} else {
		fmt.Fprintln(w, "No hay sesión activa.")
	}
	if !info.Authenticated {
		return 1
	}
	return 0
}

// runForgot requests a recovery link and returns exit code
func runForgot(ctx context.Context, w io.Writer) int {
	req := fleet.ForgotPasswordRequest{Identifier: strings.TrimSpace(forgotIdentifier)}
	if err := req.Validate(); err != nil {
		return fail(w, err)
	}

	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	defer a.Close()

	if err := a.client.ForgotPassword(ctx, req); err != nil {
		return fail(w, err)
	}
	fmt.Fprintln(w, "Si la cuenta existe, te enviamos un enlace de recuperación.")
	return 0
}

// formatWhoamiHuman formats a session for human readability
func formatWhoamiHuman(info whoami) string {
	name := info.Name
	if name == "" {
		name = info.Email
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\n", name, info.Role)
	if info.Email != "" {
		fmt.Fprintf(&b, "Correo:      %s\n", info.Email)
	}
	if info.ExpiresAt != nil {
		fmt.Fprintf(&b, "Expira:      %s\n", info.ExpiresAt.Local().Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(&b, "Ver flota:   %s\n", yesNo(info.Permissions.CanViewVehicles))
	fmt.Fprintf(&b, "Registrar:   %s\n", yesNo(info.Permissions.CanCreateVehicles))
	fmt.Fprintf(&b, "Exportar:    %s", yesNo(info.Permissions.CanExportVehicles))
	return b.String()
}

func yesNo(ok bool) string {
	if ok {
		return "sí"
	}
	return "no"
}
