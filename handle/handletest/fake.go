// Package handletest provides a scripted handle.API for tests.
package handletest

import (
	"github.com/DaveTheCamper/regionmap/handle"
)

// Result is a canned answer for one Query call.
type Result struct {
	Filled   int
	Required int
	Err      error
}

// Fake is an in-memory handle.API. Queries are answered from Data with the
// same partial-fill rules as the kernel unless a scripted Result is pending.
// It is not safe for concurrent use.
type Fake struct {
	// Data is the packed region buffer returned by queries.
	Data []byte
	// OpenErr, when set, is returned by every Open.
	OpenErr error
	// Results are consumed one per Query before falling back to Data.
	Results []Result
	// OnQuery runs before each Query is answered; call counts from 0.
	OnQuery func(call int, f *Fake)

	// Capacities records len(buf) of every Query call.
	Capacities []int
	Opens      int
	Closes     int

	next handle.Handle
	open map[handle.Handle]struct{}
}

var _ handle.API = (*Fake)(nil)

// New returns a Fake serving the given regions.
func New(regions ...handle.Region) *Fake {
	f := &Fake{open: make(map[handle.Handle]struct{})}
	f.SetRegions(regions...)
	return f
}

// SetRegions replaces the served layout.
func (f *Fake) SetRegions(regions ...handle.Region) {
	f.Data = handle.EncodeRegions(regions)
}

// OpenHandles returns the number of handles not yet closed.
func (f *Fake) OpenHandles() int {
	return len(f.open)
}

func (f *Fake) Open(typ handle.Type, _ int, _ handle.Flags) (handle.Handle, error) {
	if f.OpenErr != nil {
		return -1, f.OpenErr
	}
	if typ != handle.TypeProcess {
		return -1, handle.ErrInvalidType
	}
	if f.open == nil {
		f.open = make(map[handle.Handle]struct{})
	}
	f.Opens++
	f.next++
	f.open[f.next] = struct{}{}
	return f.next, nil
}

func (f *Fake) Query(h handle.Handle, buf []byte, q handle.Query) (int, int, error) {
	call := len(f.Capacities)
	f.Capacities = append(f.Capacities, len(buf))
	if _, ok := f.open[h]; !ok {
		return 0, 0, handle.ErrInvalidHandle
	}
	if q != handle.QueryVMRegions {
		return 0, 0, handle.ErrInvalidQuery
	}
	if f.OnQuery != nil {
		f.OnQuery(call, f)
	}
	if len(f.Results) > 0 {
		r := f.Results[0]
		f.Results = f.Results[1:]
		if r.Err == nil {
			copy(buf, f.Data[:min(r.Filled, len(f.Data))])
		}
		return r.Filled, r.Required, r.Err
	}
	if len(buf) < len(f.Data) {
		return 0, len(f.Data), handle.ErrNoSpace
	}
	return copy(buf, f.Data), len(f.Data), nil
}

func (f *Fake) Close(h handle.Handle) error {
	if _, ok := f.open[h]; !ok {
		return handle.ErrInvalidHandle
	}
	delete(f.open, h)
	f.Closes++
	return nil
}
