package handle

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppendRegionLayout(t *testing.T) {
	r := Region{
		Start:   0x7f0000001000,
		Length:  0x3000,
		Offset:  0x2000,
		Prot:    ProtRead | ProtExec,
		Mapping: MappingShared,
		Name:    "libc.so",
	}
	b := AppendRegion(nil, r)

	require.Len(t, b, RegionHeaderSize+8)
	require.Equal(t, r.RecordSize(), len(b))
	require.Equal(t, uint64(len(b)), binary.LittleEndian.Uint64(b[0:]))
	require.Equal(t, r.Start, binary.LittleEndian.Uint64(b[8:]))
	require.Equal(t, r.Length, binary.LittleEndian.Uint64(b[16:]))
	require.Equal(t, uint32(ProtRead|ProtExec), binary.LittleEndian.Uint32(b[24:]))
	require.Equal(t, uint32(MappingShared), binary.LittleEndian.Uint32(b[28:]))
	require.Equal(t, r.Offset, binary.LittleEndian.Uint64(b[32:]))
	require.Equal(t, "libc.so\x00", string(b[RegionHeaderSize:]))
}

func TestRecordSizeAlignment(t *testing.T) {
	tests := []struct {
		name string
		want int
	}{
		{"", RegionHeaderSize + 8},
		{"1234567", RegionHeaderSize + 8},
		{"12345678", RegionHeaderSize + 16},
		{"/usr/lib/x86_64-linux-gnu/libm.so.6", RegionHeaderSize + 40},
	}
	for _, tt := range tests {
		size := Region{Name: tt.name}.RecordSize()
		require.Equal(t, tt.want, size, tt.name)
		require.Zero(t, size%recordAlign)
	}
}

func TestDecodeRegions(t *testing.T) {
	regions := []Region{
		{Start: 0x1000, Length: 0x1000, Prot: ProtRead, Name: "/bin/true"},
		{Start: 0x2000, Length: 0x2000, Prot: ProtRead | ProtWrite},
		{Start: 0x4000, Length: 0x1000, Offset: 0x1000, Prot: ProtExec, Mapping: MappingShared, Name: "[vdso]"},
	}
	got, ok := DecodeRegions(EncodeRegions(regions))
	require.True(t, ok)
	require.Equal(t, regions, got)
}

func TestDecodeRegionRejectsBadSize(t *testing.T) {
	b := EncodeRegions([]Region{{Start: 0x1000, Length: 0x1000, Name: "x"}})

	_, ok := DecodeRegion(b[:RegionHeaderSize-1])
	require.False(t, ok)

	bad := append([]byte(nil), b...)
	binary.LittleEndian.PutUint64(bad, 8)
	_, ok = DecodeRegion(bad)
	require.False(t, ok)

	binary.LittleEndian.PutUint64(bad, uint64(len(bad)+1))
	_, ok = DecodeRegion(bad)
	require.False(t, ok)

	regions, ok := DecodeRegions(append(b, bad...))
	require.False(t, ok)
	require.Len(t, regions, 1)
}

func TestFillPartialSemantics(t *testing.T) {
	encoded := EncodeRegions([]Region{{Start: 0x1000, Length: 0x1000}})

	n, required, err := fill(make([]byte, 4), encoded)
	require.ErrorIs(t, err, ErrNoSpace)
	require.Zero(t, n)
	require.Equal(t, len(encoded), required)

	buf := make([]byte, len(encoded)+16)
	n, required, err = fill(buf, encoded)
	require.NoError(t, err)
	require.Equal(t, len(encoded), n)
	require.Equal(t, len(encoded), required)
	require.Equal(t, encoded, buf[:n])
}
