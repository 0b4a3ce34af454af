package procmaps

// DumpListOfModules takes a fresh snapshot and appends one LoadedModule per
// distinct file name to modules. Existing entries are left alone. Anonymous
// mappings are skipped, and a failed snapshot appends nothing.
//
// Names are the coalescing key. The first segment carrying a name fixes the
// module base at start-offset, except for the very first segment of the
// map, whose start is taken as zero: a non-PIE main binary is mapped at its
// link address.
func (l *MemoryMappingLayout) DumpListOfModules(modules *[]LoadedModule) {
	l.Reset()

	segment := NewSegment(l.opts.nameCapacity)
	index := make(map[string]int)
	for i := 0; l.Next(segment); i++ {
		name := segment.Name()
		if name == "" {
			continue
		}
		idx, ok := index[name]
		if !ok {
			var start uint64
			if i != 0 {
				start = segment.Start
			}
			var m LoadedModule
			m.Set(name, start-segment.Offset)
			*modules = append(*modules, m)
			idx = len(*modules) - 1
			index[name] = idx
		}
		segment.AddAddressRanges(&(*modules)[idx])
	}

	l.opts.logger.Debug("dumped module list", "pid", l.opts.pid, "modules", len(index))
}

// MemoryRangeIsAvailable reports whether no mapping of a fresh snapshot
// intersects [beg, end]. If the snapshot fails the range is assumed free.
func (l *MemoryMappingLayout) MemoryRangeIsAvailable(beg, end uint64) bool {
	l.Reset()
	if l.Error() {
		return true
	}
	var segment Segment
	for l.Next(&segment) {
		if segment.Length == 0 {
			continue
		}
		last := segment.Start + segment.Length - 1
		if !(last < beg || end < segment.Start) {
			return false
		}
	}
	return true
}
