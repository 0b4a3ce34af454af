package handle

import (
	"encoding/binary"
)

// Prot is the protection bitmask of a VM region record.
type Prot uint32

const (
	ProtRead Prot = 1 << iota
	ProtWrite
	ProtExec
)

// MappingType tells whether a region is private to the process.
type MappingType uint32

const (
	MappingPrivate MappingType = iota
	MappingShared
)

// Layout of a packed VM region record. All fields are little endian.
//
//	0  size      uint64  total record size including the name area
//	8  start     uint64
//	16 length    uint64
//	24 prot      uint32
//	28 mapping   uint32
//	32 offset    uint64
//	40 name      NUL terminated, padded to recordAlign
const (
	offSize    = 0
	offStart   = 8
	offLength  = 16
	offProt    = 24
	offMapping = 28
	offOffset  = 32

	RegionHeaderSize = 40

	recordAlign = 8
)

// Region is one VM region of a process.
type Region struct {
	Start   uint64
	Length  uint64
	Offset  uint64
	Prot    Prot
	Mapping MappingType
	Name    string
}

// RecordSize returns the number of bytes r occupies once encoded.
func (r Region) RecordSize() int {
	return RegionHeaderSize + align(len(r.Name)+1, recordAlign)
}

// AppendRegion appends the packed record of r to dst.
func AppendRegion(dst []byte, r Region) []byte {
	size := r.RecordSize()
	var hdr [RegionHeaderSize]byte
	binary.LittleEndian.PutUint64(hdr[offSize:], uint64(size))
	binary.LittleEndian.PutUint64(hdr[offStart:], r.Start)
	binary.LittleEndian.PutUint64(hdr[offLength:], r.Length)
	binary.LittleEndian.PutUint32(hdr[offProt:], uint32(r.Prot))
	binary.LittleEndian.PutUint32(hdr[offMapping:], uint32(r.Mapping))
	binary.LittleEndian.PutUint64(hdr[offOffset:], r.Offset)
	dst = append(dst, hdr[:]...)
	dst = append(dst, r.Name...)
	for pad := size - RegionHeaderSize - len(r.Name); pad > 0; pad-- {
		dst = append(dst, 0)
	}
	return dst
}

// EncodeRegions packs regions back to back.
func EncodeRegions(regions []Region) []byte {
	n := 0
	for _, r := range regions {
		n += r.RecordSize()
	}
	buf := make([]byte, 0, n)
	for _, r := range regions {
		buf = AppendRegion(buf, r)
	}
	return buf
}

// RegionRecord is a view of one packed record inside a larger buffer.
// Name aliases the buffer and includes the NUL padding.
type RegionRecord struct {
	Size    uint64
	Start   uint64
	Length  uint64
	Prot    Prot
	Mapping MappingType
	Offset  uint64
	Name    []byte
}

// DecodeRegion decodes the record at the front of b. It reports false if b
// cannot hold the header or the declared size is out of range.
func DecodeRegion(b []byte) (RegionRecord, bool) {
	if len(b) < RegionHeaderSize {
		return RegionRecord{}, false
	}
	rec := RegionRecord{
		Size:    binary.LittleEndian.Uint64(b[offSize:]),
		Start:   binary.LittleEndian.Uint64(b[offStart:]),
		Length:  binary.LittleEndian.Uint64(b[offLength:]),
		Prot:    Prot(binary.LittleEndian.Uint32(b[offProt:])),
		Mapping: MappingType(binary.LittleEndian.Uint32(b[offMapping:])),
		Offset:  binary.LittleEndian.Uint64(b[offOffset:]),
	}
	if rec.Size < RegionHeaderSize || rec.Size > uint64(len(b)) {
		return rec, false
	}
	rec.Name = b[RegionHeaderSize:rec.Size]
	return rec, true
}

// NameString returns the record name up to its first NUL.
func (rec RegionRecord) NameString() string {
	for i, c := range rec.Name {
		if c == 0 {
			return string(rec.Name[:i])
		}
	}
	return string(rec.Name)
}

// DecodeRegions decodes a whole buffer. It stops at the first malformed
// record and returns what was decoded so far together with ok=false.
func DecodeRegions(b []byte) (regions []Region, ok bool) {
	for len(b) > 0 {
		rec, valid := DecodeRegion(b)
		if !valid {
			return regions, false
		}
		regions = append(regions, Region{
			Start:   rec.Start,
			Length:  rec.Length,
			Offset:  rec.Offset,
			Prot:    rec.Prot,
			Mapping: rec.Mapping,
			Name:    rec.NameString(),
		})
		b = b[rec.Size:]
	}
	return regions, true
}

// fill copies encoded into buf with the kernel's partial-fill semantics.
func fill(buf, encoded []byte) (int, int, error) {
	if len(buf) < len(encoded) {
		return 0, len(encoded), ErrNoSpace
	}
	return copy(buf, encoded), len(encoded), nil
}

func align(n, a int) int {
	return (n + a - 1) &^ (a - 1)
}
