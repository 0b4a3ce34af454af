package main

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	ps "github.com/mitchellh/go-ps"
	"github.com/spf13/cobra"

	"github.com/DaveTheCamper/regionmap/handle"
	"github.com/DaveTheCamper/regionmap/procmaps"
)

var (
	rootPID         int
	rootProcessName string
	rootSnapshot    string
	rootAbsoluteEnd bool
	rootFormat      string
	rootVerbose     bool
)

var rootCmd = &cobra.Command{
	Use:          "regionmap",
	Short:        "Inspect the memory map and loaded modules of a process",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(rootVerbose)
		switch rootFormat {
		case formatText, formatYAML:
			return nil
		default:
			return fmt.Errorf("unknown output format %q", rootFormat)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().IntVarP(&rootPID, "pid", "p", 0, "process id to inspect (default: regionmap itself)")
	rootCmd.PersistentFlags().StringVarP(&rootProcessName, "process", "n", "", "executable name of the process to inspect")
	rootCmd.PersistentFlags().StringVar(&rootSnapshot, "snapshot", "", "read regions from a snapshot file instead of a live process")
	rootCmd.PersistentFlags().BoolVar(&rootAbsoluteEnd, "absolute-end", true, "report segment ends as start+length instead of the raw length")
	rootCmd.PersistentFlags().StringVarP(&rootFormat, "format", "o", formatText, "output format: text or yaml")
	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "enable debug logging")
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	w := os.Stderr

	slog.SetDefault(slog.New(
		tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.TimeOnly,
			NoColor:    !isatty.IsTerminal(w.Fd()),
		}),
	))
}

func findProcessByName(name string) (ps.Process, error) {
	processes, err := ps.Processes()
	if err != nil {
		return nil, err
	}

	for _, process := range processes {
		if process.Executable() == name || path.Base(process.Executable()) == name {
			return process, nil
		}
	}

	return nil, fmt.Errorf("no process named %q", name)
}

func targetPID() (int, error) {
	switch {
	case rootProcessName != "":
		process, err := findProcessByName(rootProcessName)
		if err != nil {
			return 0, err
		}
		slog.Debug("resolved process", "name", rootProcessName, "pid", process.Pid(), "ppid", process.PPid())
		return process.Pid(), nil
	case rootPID != 0:
		return rootPID, nil
	default:
		return os.Getpid(), nil
	}
}

func newLayout() (*procmaps.MemoryMappingLayout, error) {
	opts := []procmaps.Option{
		procmaps.WithLogger(slog.Default()),
		procmaps.WithAbsoluteEnd(rootAbsoluteEnd),
	}

	if rootSnapshot != "" {
		data, err := loadSnapshot(rootSnapshot)
		if err != nil {
			return nil, err
		}
		return procmaps.NewUnpopulated(append(opts, procmaps.WithAPI(handle.NewSnapshotAPI(data)))...), nil
	}

	pid, err := targetPID()
	if err != nil {
		return nil, err
	}
	return procmaps.NewUnpopulated(append(opts, procmaps.WithPID(pid))...), nil
}

func loadSnapshot(filename string) ([]byte, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return handle.ReadSnapshot(f)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}
