//go:build linux

package handle

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// procAPI answers queries from /proc/<pid>/maps. The handle is the file
// descriptor of the maps file; every query re-reads it from the start so a
// retry sees the current layout.
type procAPI struct{}

func defaultAPI() API {
	return procAPI{}
}

func (procAPI) Open(typ Type, id int, flags Flags) (Handle, error) {
	if typ != TypeProcess {
		return -1, ErrInvalidType
	}
	mode := unix.O_RDONLY
	if flags&FlagCloseOnExec != 0 {
		mode |= unix.O_CLOEXEC
	}
	fd, err := unix.Open(fmt.Sprintf("/proc/%d/maps", id), mode, 0)
	if err != nil {
		if errors.Is(err, unix.ENOENT) {
			return -1, fmt.Errorf("pid %d: %w", id, ErrNotFound)
		}
		return -1, fmt.Errorf("open maps of pid %d: %w", id, err)
	}
	return Handle(fd), nil
}

func (procAPI) Query(h Handle, buf []byte, q Query) (int, int, error) {
	if q != QueryVMRegions {
		return 0, 0, ErrInvalidQuery
	}
	if h < 0 {
		return 0, 0, ErrInvalidHandle
	}
	text, err := preadAll(int(h))
	if err != nil {
		return 0, 0, fmt.Errorf("read maps: %w", err)
	}
	regions, err := ParseMaps(text)
	if err != nil {
		return 0, 0, err
	}
	return fill(buf, EncodeRegions(regions))
}

func (procAPI) Close(h Handle) error {
	if h < 0 {
		return ErrInvalidHandle
	}
	return unix.Close(int(h))
}

func preadAll(fd int) ([]byte, error) {
	var (
		out   []byte
		off   int64
		chunk = make([]byte, 4096)
	)
	for {
		n, err := unix.Pread(fd, chunk, off)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return out, nil
		}
		out = append(out, chunk[:n]...)
		off += int64(n)
	}
}
