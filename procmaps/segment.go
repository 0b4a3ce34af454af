package procmaps

import (
	"bytes"

	"github.com/DaveTheCamper/regionmap/handle"
)

// Protection is the set of access rights of a segment.
type Protection uint8

const (
	ProtectionRead Protection = 1 << iota
	ProtectionWrite
	ProtectionExecute
	ProtectionShared
)

// String formats p the way /proc/<pid>/maps does, e.g. "r-xp".
func (p Protection) String() string {
	b := []byte("---p")
	if p&ProtectionRead != 0 {
		b[0] = 'r'
	}
	if p&ProtectionWrite != 0 {
		b[1] = 'w'
	}
	if p&ProtectionExecute != 0 {
		b[2] = 'x'
	}
	if p&ProtectionShared != 0 {
		b[3] = 's'
	}
	return string(b)
}

func protectionOf(rec handle.RegionRecord) Protection {
	var p Protection
	if rec.Prot&handle.ProtRead != 0 {
		p |= ProtectionRead
	}
	if rec.Prot&handle.ProtWrite != 0 {
		p |= ProtectionWrite
	}
	if rec.Prot&handle.ProtExec != 0 {
		p |= ProtectionExecute
	}
	if rec.Mapping == handle.MappingShared {
		p |= ProtectionShared
	}
	return p
}

// Segment is one mapping decoded by MemoryMappingLayout.Next. The caller
// owns Filename; its length is the capacity available for the name,
// terminating NUL included. A nil Filename skips name decoding.
type Segment struct {
	Start      uint64
	End        uint64
	Offset     uint64
	Length     uint64
	Protection Protection
	Filename   []byte
}

// NewSegment returns a segment that decodes names into a buffer of size
// nameCapacity.
func NewSegment(nameCapacity int) *Segment {
	return &Segment{Filename: make([]byte, nameCapacity)}
}

func (s *Segment) IsReadable() bool   { return s.Protection&ProtectionRead != 0 }
func (s *Segment) IsWritable() bool   { return s.Protection&ProtectionWrite != 0 }
func (s *Segment) IsExecutable() bool { return s.Protection&ProtectionExecute != 0 }
func (s *Segment) IsShared() bool     { return s.Protection&ProtectionShared != 0 }

// Name returns the decoded file name, or "" for anonymous mappings.
func (s *Segment) Name() string {
	if i := bytes.IndexByte(s.Filename, 0); i >= 0 {
		return string(s.Filename[:i])
	}
	return string(s.Filename)
}

// AddAddressRanges adds the range of s to module.
func (s *Segment) AddAddressRanges(module *LoadedModule) {
	module.AddAddressRange(s.Start, s.End, s.IsExecutable(), s.IsWritable())
}

// copyName stores at most len(s.Filename)-1 bytes of name, stopping at the
// first NUL, and always terminates the result.
func (s *Segment) copyName(name []byte) {
	if len(s.Filename) == 0 {
		return
	}
	n := min(len(name), len(s.Filename)-1)
	clear(s.Filename[:n+1])
	if i := bytes.IndexByte(name[:n], 0); i >= 0 {
		n = i
	}
	copy(s.Filename, name[:n])
}
