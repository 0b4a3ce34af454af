package handle

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleMaps = `55d0c4a00000-55d0c4a02000 r--p 00000000 08:02 1837321                    /usr/bin/cat
55d0c4a02000-55d0c4a07000 r-xp 00002000 08:02 1837321                    /usr/bin/cat
55d0c5b9e000-55d0c5bbf000 rw-p 00000000 00:00 0                          [heap]
7f3a1c000000-7f3a1c021000 rw-s 00000000 00:05 42                         /dev/shm/my file (deleted)
7f3a1e7f1000-7f3a1e7f3000 rw-p 00000000 00:00 0 
ffffffffff600000-ffffffffff601000 --xp 00000000 00:00 0                  [vsyscall]
`

func TestParseMaps(t *testing.T) {
	regions, err := ParseMaps([]byte(sampleMaps))
	require.NoError(t, err)
	require.Equal(t, []Region{
		{Start: 0x55d0c4a00000, Length: 0x2000, Prot: ProtRead, Name: "/usr/bin/cat"},
		{Start: 0x55d0c4a02000, Length: 0x5000, Offset: 0x2000, Prot: ProtRead | ProtExec, Name: "/usr/bin/cat"},
		{Start: 0x55d0c5b9e000, Length: 0x21000, Prot: ProtRead | ProtWrite, Name: "[heap]"},
		{Start: 0x7f3a1c000000, Length: 0x21000, Prot: ProtRead | ProtWrite, Mapping: MappingShared, Name: "/dev/shm/my file (deleted)"},
		{Start: 0x7f3a1e7f1000, Length: 0x2000, Prot: ProtRead | ProtWrite},
		{Start: 0xffffffffff600000, Length: 0x1000, Prot: ProtExec, Name: "[vsyscall]"},
	}, regions)
}

func TestParseMapsErrors(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"too few fields", "00400000-00452000 r-xp 00000000 08:02"},
		{"no dash", "00400000 r-xp 00000000 08:02 173521 /bin/x"},
		{"bad start", "zz-00452000 r-xp 00000000 08:02 173521 /bin/x"},
		{"bad end", "00400000-zz r-xp 00000000 08:02 173521 /bin/x"},
		{"end below start", "00452000-00400000 r-xp 00000000 08:02 173521 /bin/x"},
		{"short perms", "00400000-00452000 rx 00000000 08:02 173521 /bin/x"},
		{"bad offset", "00400000-00452000 r-xp 0x0g 08:02 173521 /bin/x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMaps([]byte(tt.line + "\n"))
			require.Error(t, err)
			require.Contains(t, err.Error(), "maps line 1")
		})
	}
}

func TestParseMapsEmpty(t *testing.T) {
	regions, err := ParseMaps(nil)
	require.NoError(t, err)
	require.Empty(t, regions)
}
