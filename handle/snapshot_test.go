package handle

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTrip(t *testing.T) {
	data := EncodeRegions([]Region{
		{Start: 0x400000, Length: 0x1000, Prot: ProtRead | ProtExec, Name: "/usr/bin/app"},
		{Start: 0x7f0000000000, Length: 0x21000, Prot: ProtRead | ProtWrite},
	})

	var buf bytes.Buffer
	require.NoError(t, WriteSnapshot(&buf, data))
	require.Equal(t, snapshotMagic, buf.String()[:4])

	got, err := ReadSnapshot(&buf)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestSnapshotEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSnapshot(&buf, nil))

	got, err := ReadSnapshot(&buf)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestReadSnapshotRejects(t *testing.T) {
	data := EncodeRegions([]Region{{Start: 0x1000, Length: 0x1000, Name: "x"}})
	var good bytes.Buffer
	require.NoError(t, WriteSnapshot(&good, data))

	tests := []struct {
		name  string
		input []byte
	}{
		{"short header", good.Bytes()[:8]},
		{"bad magic", append([]byte("XXXX"), good.Bytes()[4:]...)},
		{"bad version", func() []byte {
			b := append([]byte(nil), good.Bytes()...)
			b[4] = 9
			return b
		}()},
		{"size mismatch", func() []byte {
			b := append([]byte(nil), good.Bytes()...)
			b[8]++
			return b
		}()},
		{"truncated stream", good.Bytes()[:snapshotHeaderSize+6]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadSnapshot(bytes.NewReader(tt.input))
			require.Error(t, err)
		})
	}
}

func TestReadSnapshotRejectsMalformedRecords(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSnapshot(&buf, []byte{1, 2, 3}))

	_, err := ReadSnapshot(&buf)
	require.ErrorIs(t, err, ErrBadSnapshot)
}

func TestSnapshotAPI(t *testing.T) {
	data := EncodeRegions([]Region{{Start: 0x1000, Length: 0x1000, Name: "libz.so"}})
	api := NewSnapshotAPI(data)

	_, err := api.Open(Type(99), 1, 0)
	require.ErrorIs(t, err, ErrInvalidType)

	h, err := api.Open(TypeProcess, 1234, FlagCloseOnExec)
	require.NoError(t, err)

	n, required, err := api.Query(h, nil, QueryVMRegions)
	require.ErrorIs(t, err, ErrNoSpace)
	require.Zero(t, n)
	require.Equal(t, len(data), required)

	buf := make([]byte, required)
	n, required, err = api.Query(h, buf, QueryVMRegions)
	require.NoError(t, err)
	require.Equal(t, len(data), n)
	require.Equal(t, len(data), required)
	require.Equal(t, data, buf)

	_, _, err = api.Query(h, buf, Query(42))
	require.ErrorIs(t, err, ErrInvalidQuery)

	require.NoError(t, api.Close(h))
	require.ErrorIs(t, api.Close(h), ErrInvalidHandle)

	_, _, err = api.Query(h, buf, QueryVMRegions)
	require.ErrorIs(t, err, ErrInvalidHandle)
}
