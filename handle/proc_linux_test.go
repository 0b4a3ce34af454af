//go:build linux

package handle

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProcAPISelf(t *testing.T) {
	api := Default()

	h, err := api.Open(TypeProcess, os.Getpid(), FlagCloseOnExec)
	require.NoError(t, err)
	defer func() { require.NoError(t, api.Close(h)) }()

	_, required, err := api.Query(h, nil, QueryVMRegions)
	require.ErrorIs(t, err, ErrNoSpace)
	require.Positive(t, required)

	buf := make([]byte, required+64*1024)
	n, required, err := api.Query(h, buf, QueryVMRegions)
	require.NoError(t, err)
	require.GreaterOrEqual(t, n, required)

	regions, ok := DecodeRegions(buf[:n])
	require.True(t, ok)
	require.NotEmpty(t, regions)

	exe, err := os.Executable()
	require.NoError(t, err)

	found := false
	for _, r := range regions {
		if filepath.Base(r.Name) == filepath.Base(exe) && r.Prot&ProtExec != 0 {
			found = true
		}
	}
	require.True(t, found, "executable %s not mapped", exe)
}

func TestProcAPIErrors(t *testing.T) {
	api := Default()

	_, err := api.Open(Type(7), os.Getpid(), 0)
	require.ErrorIs(t, err, ErrInvalidType)

	_, err = api.Open(TypeProcess, -1, 0)
	require.ErrorIs(t, err, ErrNotFound)

	h, err := api.Open(TypeProcess, os.Getpid(), FlagCloseOnExec)
	require.NoError(t, err)
	_, _, err = api.Query(h, nil, Query(42))
	require.ErrorIs(t, err, ErrInvalidQuery)
	require.NoError(t, api.Close(h))

	_, _, err = api.Query(-1, nil, QueryVMRegions)
	require.ErrorIs(t, err, ErrInvalidHandle)
}
