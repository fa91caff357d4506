package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jask/kanban/internal/service"
	"github.com/jask/kanban/internal/storage"
)

func newExportCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write the board snapshot to a file or stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, f, func(e *env) error {
				m := &service.MaintenanceService{Storage: e.backend, Key: e.cfg.Storage.Key}
				data, err := m.Export(cmd.Context())
				if errors.Is(err, storage.ErrNotFound) {
					// nothing saved yet: export the demo board
					data, err = e.store.Snapshot()
				}
				if err != nil {
					return err
				}
				if len(args) == 0 || args[0] == "-" {
					_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
					return err
				}
				if err := os.WriteFile(args[0], data, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", args[0], err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "exported %d tasks to %s\n", e.store.TaskCount(), args[0])
				return nil
			})
		},
	}
}

func newImportCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Replace the board with a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read snapshot: %w", err)
			}
			return withEnv(cmd, f, func(e *env) error {
				if err := e.store.Restore(data); err != nil {
					return fmt.Errorf("import: %w", err)
				}
				if err := e.saved(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d columns, %d tasks\n", len(e.store.Labels()), e.store.TaskCount())
				return nil
			})
		},
	}
}

func newResetCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete the saved board; the demo board is used on next start",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, f, func(e *env) error {
				m := &service.MaintenanceService{Storage: e.backend, Key: e.cfg.Storage.Key}
				if err := m.Reset(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "board reset")
				return nil
			})
		},
	}
}
