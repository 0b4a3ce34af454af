package handle

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
)

const (
	snapshotMagic   = "RGNS"
	snapshotVersion = 1

	snapshotHeaderSize = 16
)

// WriteSnapshot stores a packed region buffer to w. The header is followed by
// the zstd compressed records.
func WriteSnapshot(w io.Writer, regions []byte) error {
	var hdr [snapshotHeaderSize]byte
	copy(hdr[:4], snapshotMagic)
	binary.LittleEndian.PutUint32(hdr[4:], snapshotVersion)
	binary.LittleEndian.PutUint64(hdr[8:], uint64(len(regions)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}

	enc, err := zstd.NewWriter(w)
	if err != nil {
		return err
	}
	if _, err := enc.Write(regions); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// ReadSnapshot loads a region buffer written by WriteSnapshot and checks that
// every record in it is well formed.
func ReadSnapshot(r io.Reader) ([]byte, error) {
	var hdr [snapshotHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrBadSnapshot, err)
	}
	if string(hdr[:4]) != snapshotMagic {
		return nil, fmt.Errorf("%w: magic %q", ErrBadSnapshot, hdr[:4])
	}
	if v := binary.LittleEndian.Uint32(hdr[4:]); v != snapshotVersion {
		return nil, fmt.Errorf("%w: version %d", ErrBadSnapshot, v)
	}
	size := binary.LittleEndian.Uint64(hdr[8:])

	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, dec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSnapshot, err)
	}
	if uint64(buf.Len()) != size {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrBadSnapshot, size, buf.Len())
	}
	if _, ok := DecodeRegions(buf.Bytes()); !ok {
		return nil, fmt.Errorf("%w: malformed region record", ErrBadSnapshot)
	}
	return buf.Bytes(), nil
}

// SnapshotAPI replays a saved region buffer as if it came from the kernel.
// Any process id opens the same snapshot.
type SnapshotAPI struct {
	data []byte

	mu   sync.Mutex
	next Handle
	open map[Handle]struct{}
}

// NewSnapshotAPI returns an API that answers QueryVMRegions with data.
func NewSnapshotAPI(data []byte) *SnapshotAPI {
	return &SnapshotAPI{data: data, open: make(map[Handle]struct{})}
}

func (s *SnapshotAPI) Open(typ Type, _ int, _ Flags) (Handle, error) {
	if typ != TypeProcess {
		return -1, ErrInvalidType
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.open[s.next] = struct{}{}
	return s.next, nil
}

func (s *SnapshotAPI) Query(h Handle, buf []byte, q Query) (int, int, error) {
	if q != QueryVMRegions {
		return 0, 0, ErrInvalidQuery
	}
	s.mu.Lock()
	_, ok := s.open[h]
	s.mu.Unlock()
	if !ok {
		return 0, 0, ErrInvalidHandle
	}
	return fill(buf, s.data)
}

func (s *SnapshotAPI) Close(h Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.open[h]; !ok {
		return ErrInvalidHandle
	}
	delete(s.open, h)
	return nil
}
