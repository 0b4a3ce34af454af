package main

import (
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/DaveTheCamper/regionmap/handle"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <file>",
	Short: "Save the memory map of the process for later inspection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		layout, err := newLayout()
		if err != nil {
			return err
		}

		layout.Reset()
		if layout.Error() {
			if err := layout.Err(); err != nil {
				return err
			}
			return errors.New("process has no mappings")
		}

		if err := writeSnapshotFile(args[0], layout.Raw()); err != nil {
			return err
		}

		slog.Info("wrote snapshot", "filename", args[0], "bytes", len(layout.Raw()))
		return nil
	},
}

func writeSnapshotFile(filename string, data []byte) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}

	if err := handle.WriteSnapshot(f, data); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
}
