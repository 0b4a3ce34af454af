package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/DaveTheCamper/regionmap/procmaps"
)

var modulesCmd = &cobra.Command{
	Use:   "modules",
	Short: "List the modules loaded in the process",
	RunE: func(cmd *cobra.Command, args []string) error {
		moduleList, err := dumpModules()
		if err != nil {
			return err
		}

		return moduleList.write(os.Stdout, rootFormat)
	},
}

func dumpModules() (ModuleList, error) {
	layout, err := newLayout()
	if err != nil {
		return ModuleList{}, err
	}

	var modules []procmaps.LoadedModule
	layout.DumpListOfModules(&modules)
	if layout.Error() {
		if err := layout.Err(); err != nil {
			return ModuleList{}, err
		}
	}

	moduleList := createNewModuleList(rootAbsoluteEnd)
	for i := range modules {
		moduleList.addModule(&modules[i])
	}
	return moduleList, nil
}

func init() {
	rootCmd.AddCommand(modulesCmd)
}
