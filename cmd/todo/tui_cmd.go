package main

import (
	"fmt"

	"github.com/fentz26/todo/internal/models"
	"github.com/fentz26/todo/internal/tui"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse tasks interactively",
	Long: `Browse tasks in a full-screen list.

  enter  toggle done        d  dependencies and details
  f      cycle status filter  /  fuzzy filter
  r      refresh            q  quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	app := tui.New(env.svc, models.DateOf(env.svc.Now()))
	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
