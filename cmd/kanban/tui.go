package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jask/kanban/internal/modal"
	"github.com/jask/kanban/internal/tui"
)

func newTUICmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the board in the terminal (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, f)
		},
	}
}

func runTUI(cmd *cobra.Command, f *rootFlags) error {
	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}
	e, err := openEnv(cmd.Context(), f, tuiLogFile(cfg))
	if err != nil {
		return err
	}
	defer e.Close()

	app := tui.New(e.store, modal.New(), e.persister)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	detach := app.Attach(p)
	defer detach()
	if _, err := p.Run(); err != nil {
		return err
	}
	return e.saved()
}
