// Package procmaps enumerates the memory mappings of a process and groups
// them into loaded modules.
//
// A MemoryMappingLayout holds one snapshot of the process layout as a packed
// buffer of region records. Reset takes a new snapshot, Next walks it one
// segment at a time and DumpListOfModules folds it into LoadedModule values.
// A layout is not safe for concurrent use.
package procmaps

import (
	"errors"
	"fmt"

	"github.com/DaveTheCamper/regionmap/handle"
)

var (
	ErrCorruptRecord  = errors.New("corrupt region record")
	ErrTooManyRetries = errors.New("region query did not settle")
)

// maxQueryAttempts bounds the grow-and-retry loop of Reset.
const maxQueryAttempts = 64

// MemoryMappingLayout is a snapshot of the memory map of one process.
type MemoryMappingLayout struct {
	opts    options
	data    []byte
	current int
	err     error
}

// New returns a layout populated with the current memory map.
func New(opts ...Option) *MemoryMappingLayout {
	l := NewUnpopulated(opts...)
	l.Reset()
	return l
}

// NewUnpopulated returns a layout that holds no snapshot until Reset is
// called.
func NewUnpopulated(opts ...Option) *MemoryMappingLayout {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	if o.api == nil {
		o.api = handle.Default()
	}
	return &MemoryMappingLayout{opts: o}
}

// Reset discards the current snapshot and queries a fresh one. Failures are
// not returned: the buffer is left empty, Error reports true and Err holds
// the cause.
func (l *MemoryMappingLayout) Reset() {
	l.data = l.data[:0]
	l.current = 0
	l.err = nil

	api, pid, logger := l.opts.api, l.opts.pid, l.opts.logger

	h, err := api.Open(handle.TypeProcess, pid, handle.FlagCloseOnExec)
	if err != nil {
		l.fail(fmt.Errorf("open process %d: %w", pid, err))
		return
	}
	defer func() {
		if err := api.Close(h); err != nil {
			logger.Warn("close process handle", "pid", pid, "err", err)
		}
	}()

	// The region set may grow between queries; keep going until it fits.
	count, filled := 0, 0
	for attempt := 0; ; attempt++ {
		if attempt == maxQueryAttempts {
			l.data = l.data[:0]
			l.fail(fmt.Errorf("query regions of %d: %w after %d attempts", pid, ErrTooManyRetries, attempt))
			return
		}

		l.data = resize(l.data, count)
		n, required, err := api.Query(h, l.data, handle.QueryVMRegions)
		count = max(required, 0)
		if err != nil {
			if !errors.Is(err, handle.ErrNoSpace) {
				l.data = l.data[:0]
				l.fail(fmt.Errorf("query regions of %d: %w", pid, err))
				return
			}
			logger.Debug("region buffer too small", "capacity", len(l.data), "required", required)
			continue
		}

		filled = n
		if filled >= count {
			break
		}
	}

	l.data = l.data[:min(filled, len(l.data))]
	logger.Debug("memory map snapshot", "pid", pid, "bytes", len(l.data))
}

// Error reports whether the last Reset failed to produce any data.
func (l *MemoryMappingLayout) Error() bool {
	return len(l.data) == 0
}

// Err returns the reason the last Reset failed, or why iteration stopped
// early on a malformed record.
func (l *MemoryMappingLayout) Err() error {
	return l.err
}

// Raw returns the packed region records of the current snapshot. The slice
// is only valid until the next Reset.
func (l *MemoryMappingLayout) Raw() []byte {
	return l.data
}

// Next decodes the next region into segment. It returns false once the
// snapshot is exhausted; only Reset starts a new walk.
//
// segment.End is the raw length field of the record unless the layout was
// built WithAbsoluteEnd.
func (l *MemoryMappingLayout) Next(segment *Segment) bool {
	if l.current >= len(l.data) {
		return false
	}
	rec, ok := handle.DecodeRegion(l.data[l.current:])
	if !ok {
		l.err = fmt.Errorf("%w at offset %d: size %d, %d bytes left", ErrCorruptRecord, l.current, rec.Size, len(l.data)-l.current)
		l.opts.logger.Warn("stopping memory map walk", "err", l.err)
		l.current = len(l.data)
		return false
	}

	segment.Start = rec.Start
	segment.Length = rec.Length
	segment.End = rec.Length
	if l.opts.absoluteEnd {
		segment.End = rec.Start + rec.Length
	}
	segment.Offset = rec.Offset
	segment.Protection = protectionOf(rec)
	segment.copyName(rec.Name)

	l.current += int(rec.Size)
	return true
}

func (l *MemoryMappingLayout) fail(err error) {
	l.err = err
	l.opts.logger.Warn("memory map snapshot failed", "pid", l.opts.pid, "err", err)
}

func resize(b []byte, n int) []byte {
	if n <= cap(b) {
		return b[:n]
	}
	return make([]byte, n)
}
