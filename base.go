package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var baseCache string

var baseCmd = &cobra.Command{
	Use:   "base <module>",
	Short: "Print the base address of a loaded module",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		moduleList, err := dumpModules()
		if err != nil {
			return err
		}

		m, ok := moduleList.find(args[0])
		if !ok {
			return fmt.Errorf("module %q not loaded", args[0])
		}

		fmt.Printf("%#x\n", m.Base)

		if baseCache != "" {
			if err := saveCache(baseCache, m.Base); err != nil {
				return err
			}
			slog.Info("wrote base address", "filename", baseCache, "module", m.Name)
		}

		return nil
	},
}

func saveCache(filename string, address uint64) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprint(f, address); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

func init() {
	baseCmd.Flags().StringVar(&baseCache, "cache", "", "also write the base address to this file")
	rootCmd.AddCommand(baseCmd)
}
