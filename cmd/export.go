// ABOUTME: Export commands for the fuelwise CLI
// ABOUTME: Writes the filtered fleet as CSV or PDF and lists recent exports

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

	"github.com/fuelwise/fuelwise-cli/internal/export"
	"github.com/fuelwise/fuelwise-cli/internal/fleet"
	"github.com/spf13/cobra"
)

var (
	exportFormat export.Format
	exportDir    string
	exportNow    = time.Now
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the fleet as CSV or PDF",
}

func newExportFormatCmd(f export.Format) *cobra.Command {
	c := &cobra.Command{
		Use:   string(f),
		Short: fmt.Sprintf("Export the filtered fleet as %s", strings.ToUpper(string(f))),
		Long: fmt.Sprintf(`Export the vehicles matching --term, --type and --status as %s.
The file is named vehiculos_YYYY-MM-DD.%s and written to --dir.

Exit codes:
  0 - Exported
  1 - Not signed in or not allowed
  2 - Error (connectivity, write failure)`, strings.ToUpper(string(f)), f),
		Run: func(cmd *cobra.Command, args []string) {
			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			exportFormat = f
			exitCode := runExport(ctx, os.Stdout)
			if exitCode != 0 {
				os.Exit(exitCode)
			}
		},
	}
	addFilterFlags(c)
	c.Flags().StringVar(&exportDir, "dir", "", "Output directory (overrides FUELWISE_EXPORT_DIR)")
	return c
}

var exportHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent exports",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runExportHistory(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.AddCommand(newExportFormatCmd(export.CSV), newExportFormatCmd(export.PDF), exportHistoryCmd)
}

// runExport writes the filtered fleet and returns exit code
func runExport(ctx context.Context, w io.Writer) int {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	defer a.Close()

	if _, code := a.authorize(w, canExport); code != 0 {
		return code
	}
	types, vehicles, err := a.loadFleet(ctx)
	if err != nil {
		return fail(w, err)
	}

	dir := exportDir
	if dir == "" {
		dir = a.cfg.ExportDir
	}
	report := export.Report{
		Vehicles: currentFilter().Apply(vehicles),
		Types:    fleet.IndexTypes(types),
		Now:      exportNow(),
	}
	path, err := export.Save(dir, exportFormat, report)
	if err != nil {
		fmt.Fprintf(w, "Error: no se pudo exportar %s: %v\n", strings.ToUpper(string(exportFormat)), err)
		return 2
	}

	entry := export.Entry{Path: path, Format: exportFormat, Rows: len(report.Vehicles), At: report.Now}
	if err := a.history.Add(entry); err != nil {
		a.log.Sugar().Warnw("record export history", "path", path, "error", err)
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(entry))
	} else {
		fmt.Fprintf(w, "%s exportado correctamente: %s (%d vehículos)\n", strings.ToUpper(string(exportFormat)), path, entry.Rows)
	}
	return 0
}

// runExportHistory prints recent exports and returns exit code
func runExportHistory(ctx context.Context, w io.Writer) int {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	if err := ctx.Err(); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	entries, err := export.NewHistory(cfg.ConfigDir).Load()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if IsJSONOutput() {
		if entries == nil {
			entries = []export.Entry{}
		}
		fmt.Fprintln(w, formatJSON(entries))
		return 0
	}
	fmt.Fprintln(w, formatHistoryHuman(entries))
	return 0
}

// formatHistoryHuman lists exports newest first
func formatHistoryHuman(entries []export.Entry) string {
	if len(entries) == 0 {
		return "No hay exportaciones recientes."
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.At.Local().Format("2006-01-02 15:04"),
			strings.ToUpper(string(e.Format)),
			fmt.Sprintf("%d", e.Rows),
			e.Path,
		})
	}
	return renderTable([]string{"Fecha", "Formato", "Filas", "Archivo"}, rows)
}
