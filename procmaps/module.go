package procmaps

// AddressRange is one mapped range of a module.
type AddressRange struct {
	Beg        uint64
	End        uint64
	Executable bool
	Writable   bool
}

// LoadedModule groups the mappings backed by one file.
type LoadedModule struct {
	name        string
	baseAddress uint64
	ranges      []AddressRange
}

// Set resets m to an empty module called name loaded at baseAddress.
func (m *LoadedModule) Set(name string, baseAddress uint64) {
	m.Clear()
	m.name = name
	m.baseAddress = baseAddress
}

func (m *LoadedModule) Clear() {
	m.name = ""
	m.baseAddress = 0
	m.ranges = nil
}

func (m *LoadedModule) AddAddressRange(beg, end uint64, executable, writable bool) {
	m.ranges = append(m.ranges, AddressRange{
		Beg:        beg,
		End:        end,
		Executable: executable,
		Writable:   writable,
	})
}

// ContainsAddress reports whether addr falls in one of the ranges of m.
func (m *LoadedModule) ContainsAddress(addr uint64) bool {
	for _, r := range m.ranges {
		if r.Beg <= addr && addr < r.End {
			return true
		}
	}
	return false
}

func (m *LoadedModule) Name() string           { return m.name }
func (m *LoadedModule) BaseAddress() uint64    { return m.baseAddress }
func (m *LoadedModule) Ranges() []AddressRange { return m.ranges }

// ListOfModules is a cached module list of one process.
type ListOfModules struct {
	modules     []LoadedModule
	initialized bool
}

// Init replaces the list with a fresh dump of layout.
func (l *ListOfModules) Init(layout *MemoryMappingLayout) {
	l.Clear()
	layout.DumpListOfModules(&l.modules)
	l.initialized = true
}

func (l *ListOfModules) Clear() {
	l.modules = l.modules[:0]
	l.initialized = false
}

func (l *ListOfModules) Initialized() bool       { return l.initialized }
func (l *ListOfModules) Len() int                { return len(l.modules) }
func (l *ListOfModules) Modules() []LoadedModule { return l.modules }

// FindModuleForAddress returns the module containing addr and the offset of
// addr from the module base.
func (l *ListOfModules) FindModuleForAddress(addr uint64) (*LoadedModule, uint64, bool) {
	for i := range l.modules {
		m := &l.modules[i]
		if m.ContainsAddress(addr) {
			return m, addr - m.baseAddress, true
		}
	}
	return nil, 0, false
}
