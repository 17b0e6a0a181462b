package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/fentz26/todo/internal/audit"
	"github.com/fentz26/todo/internal/config"
	"github.com/fentz26/todo/internal/display"
	"github.com/fentz26/todo/internal/logging"
	"github.com/fentz26/todo/internal/models"
	"github.com/fentz26/todo/internal/store"
	"github.com/fentz26/todo/internal/tasks"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "todo",
	Short: "todo - a personal task tracker",
	Long: `todo keeps a prioritized, tagged task list in a single JSON file.

Tasks can depend on each other (a task is blocked until everything it
depends on is done) and can repeat daily, weekly or monthly: completing a
recurring task schedules the next occurrence.`,
	Example: `  todo add "Fix login bug" --project Backend --priority high --due "next friday"
  todo add "Review PR" --due "in 3 days" --depends-on 3fa2
  todo list --status pending --sort due
  todo done 3fa2`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

var (
	configPath string
	dataFile   string
	verbose    bool
)

// env holds the collaborators built for the running command.
var env struct {
	cfg    *config.Config
	logger *log.Logger
	svc    *tasks.Service
	out    *display.Printer
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	rootCmd.PersistentFlags().StringVarP(&dataFile, "file", "f", "", "data file (overrides data_file and TODO_DATA_FILE)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")

	rootCmd.AddCommand(addCmd, doneCmd, undoneCmd, removeCmd, editCmd, clearCmd, recurCmd, clearRecurCmd)
	rootCmd.AddCommand(listCmd, searchCmd, showCmd, depsCmd, statsCmd, tagsCmd, projectsCmd)
	rootCmd.AddCommand(infoCmd, exportCmd, checkCmd, tuiCmd)
}

func setup(cmd *cobra.Command, _ []string) error {
	skipCommands := map[string]bool{
		"help":       true,
		"completion": true,
	}
	if skipCommands[cmd.Name()] {
		return nil
	}

	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if dataFile != "" {
		cfg.DataFile = dataFile
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	logger := logging.New(cfg.LogLevel, cmd.ErrOrStderr())
	repo, err := store.New(cfg.DataFile)
	if err != nil {
		return err
	}
	priority, err := models.ParsePriority(cfg.DefaultPriority)
	if err != nil {
		return err
	}

	svc := tasks.NewService(repo, audit.NewRecorder(logger), logger, tasks.Options{
		DefaultPriority: priority,
		DueSoonDays:     cfg.DueSoonDays,
		FuzzyTags:       cfg.FuzzyTags,
	})
	logger.Debug("data file", "path", repo.Location(), "config", path)

	env.cfg = cfg
	env.logger = logger
	env.svc = svc
	env.out = display.New(cmd.OutOrStdout(), models.DateOf(svc.Now()), cfg.DueSoonDays)
	return nil
}

// confirm asks a yes/no question on the command's input. Anything other
// than y or yes counts as no.
func confirm(cmd *cobra.Command, question string) (bool, error) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", question)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
