package main

import (
	"fmt"
	"os"

	"github.com/fentz26/todo/internal/tasks"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show where tasks are stored",
	Args:  cobra.NoArgs,
	RunE:  runInfo,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all tasks as JSON or YAML",
	Example: `  todo export --format yaml
  todo export -o backup.json`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the data file",
	Long: `Validate the data file against its schema and look for problems the
commands never create themselves: duplicate ids, self-dependencies,
dependency cycles and recurring tasks without a due date. Dependencies on
removed tasks are reported as warnings.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

var (
	exportFormat string
	exportOutput string
)

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "json or yaml")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write to a file instead of stdout")
}

func runInfo(cmd *cobra.Command, args []string) error {
	info, err := env.svc.Info()
	if err != nil {
		return err
	}
	env.out.Info(info)
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	format, err := tasks.ParseFormat(exportFormat)
	if err != nil {
		return err
	}

	if exportOutput == "" {
		_, err := env.svc.Export(cmd.OutOrStdout(), format)
		return err
	}

	f, err := os.Create(exportOutput)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	n, err := env.svc.Export(f, format)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close export file: %w", cerr)
	}
	if err != nil {
		return err
	}
	env.out.Success("Exported %d tasks to %s", n, exportOutput)
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	report, err := env.svc.Check()
	if err != nil {
		return err
	}
	env.out.Report(report)
	if !report.OK() {
		return fmt.Errorf("%s has problems", env.cfg.DataFile)
	}
	return nil
}
