package main

import (
	"fmt"
	"io"
	"path"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/DaveTheCamper/regionmap/procmaps"
)

const (
	formatText = "text"
	formatYAML = "yaml"
)

type RegionProcess struct {
	Beg        uint64
	End        uint64
	Size       uint64
	Executable bool
	Writable   bool
}

type ModuleProcess struct {
	Name       string
	Base       uint64
	RegionSize uint64
	Regions    []RegionProcess
}

type ModuleList struct {
	List      []ModuleProcess
	TotalSize uint64

	absoluteEnd bool
}

func createNewModuleList(absoluteEnd bool) ModuleList {
	moduleList := ModuleList{
		List:        []ModuleProcess{},
		TotalSize:   0,
		absoluteEnd: absoluteEnd,
	}

	return moduleList
}

// rangeSize undoes the raw-length encoding of End when absolute ends are off.
func (module *ModuleList) rangeSize(r procmaps.AddressRange) uint64 {
	if module.absoluteEnd {
		return r.End - r.Beg
	}
	return r.End
}

func (module *ModuleList) addModule(m *procmaps.LoadedModule) {
	process := ModuleProcess{
		Name: m.Name(),
		Base: m.BaseAddress(),
	}

	for _, r := range m.Ranges() {
		size := module.rangeSize(r)
		end := r.End
		if !module.absoluteEnd {
			end = r.Beg + r.End
		}
		process.Regions = append(process.Regions, RegionProcess{
			Beg:        r.Beg,
			End:        end,
			Size:       size,
			Executable: r.Executable,
			Writable:   r.Writable,
		})
		process.RegionSize += size
	}

	module.List = append(module.List, process)
	module.TotalSize += process.RegionSize
}

// find matches a module by full path or by file name.
func (module *ModuleList) find(name string) (ModuleProcess, bool) {
	for _, m := range module.List {
		if m.Name == name || path.Base(m.Name) == name {
			return m, true
		}
	}
	return ModuleProcess{}, false
}

func flags(executable, writable bool) string {
	s := []byte("--")
	if writable {
		s[0] = 'w'
	}
	if executable {
		s[1] = 'x'
	}
	switch {
	case executable:
		return color.GreenString("%s", s)
	case writable:
		return color.YellowString("%s", s)
	default:
		return string(s)
	}
}

func (module *ModuleList) writeText(w io.Writer) error {
	for _, m := range module.List {
		if _, err := fmt.Fprintf(w, "%s base=%#x size=%d\n", color.CyanString("%s", m.Name), m.Base, m.RegionSize); err != nil {
			return err
		}
		for _, r := range m.Regions {
			if _, err := fmt.Fprintf(w, "  %016x-%016x %s\n", r.Beg, r.End, flags(r.Executable, r.Writable)); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintf(w, "%d modules, %d bytes mapped\n", len(module.List), module.TotalSize)
	return err
}

type yamlRegion struct {
	Range      string `yaml:"range"`
	Size       uint64 `yaml:"size"`
	Executable bool   `yaml:"executable,omitempty"`
	Writable   bool   `yaml:"writable,omitempty"`
}

type yamlModule struct {
	Name    string       `yaml:"name"`
	Base    string       `yaml:"base"`
	Size    uint64       `yaml:"size"`
	Regions []yamlRegion `yaml:"regions"`
}

type yamlModuleList struct {
	Modules   []yamlModule `yaml:"modules"`
	TotalSize uint64       `yaml:"total_size"`
}

func (module *ModuleList) writeYAML(w io.Writer) error {
	out := yamlModuleList{TotalSize: module.TotalSize, Modules: []yamlModule{}}
	for _, m := range module.List {
		ym := yamlModule{Name: m.Name, Base: fmt.Sprintf("%#x", m.Base), Size: m.RegionSize}
		for _, r := range m.Regions {
			ym.Regions = append(ym.Regions, yamlRegion{
				Range:      fmt.Sprintf("%#x-%#x", r.Beg, r.End),
				Size:       r.Size,
				Executable: r.Executable,
				Writable:   r.Writable,
			})
		}
		out.Modules = append(out.Modules, ym)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return err
	}
	return enc.Close()
}

func (module *ModuleList) write(w io.Writer, format string) error {
	if format == formatYAML {
		return module.writeYAML(w)
	}
	return module.writeText(w)
}
