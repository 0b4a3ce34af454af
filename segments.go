package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/DaveTheCamper/regionmap/procmaps"
)

var segmentsCmd = &cobra.Command{
	Use:   "segments",
	Short: "List every mapping of the process",
	RunE: func(cmd *cobra.Command, args []string) error {
		layout, err := newLayout()
		if err != nil {
			return err
		}

		layout.Reset()
		if layout.Error() && layout.Err() != nil {
			return layout.Err()
		}

		if err := writeSegments(os.Stdout, layout, rootFormat); err != nil {
			return err
		}
		return layout.Err()
	},
}

type yamlSegment struct {
	Start      string `yaml:"start"`
	End        string `yaml:"end"`
	Offset     string `yaml:"offset"`
	Protection string `yaml:"protection"`
	Name       string `yaml:"name,omitempty"`
}

func writeSegments(w io.Writer, layout *procmaps.MemoryMappingLayout, format string) error {
	var segments []yamlSegment
	segment := procmaps.NewSegment(procmaps.MaxPathLength)
	for layout.Next(segment) {
		if format == formatYAML {
			segments = append(segments, yamlSegment{
				Start:      fmt.Sprintf("%#x", segment.Start),
				End:        fmt.Sprintf("%#x", segment.End),
				Offset:     fmt.Sprintf("%#x", segment.Offset),
				Protection: segment.Protection.String(),
				Name:       segment.Name(),
			})
			continue
		}

		if _, err := fmt.Fprintf(w, "%016x-%016x %s %08x %s\n",
			segment.Start, segment.End, segment.Protection, segment.Offset, segment.Name()); err != nil {
			return err
		}
	}

	if format != formatYAML {
		return nil
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(segments); err != nil {
		return err
	}
	return enc.Close()
}

func init() {
	rootCmd.AddCommand(segmentsCmd)
}
