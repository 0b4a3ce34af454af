// Package handle abstracts the kernel handle interface used to inspect a
// process: open a handle to it, query its VM regions into a caller buffer,
// close the handle.
//
// Region data is returned in a packed, self-describing binary layout (see
// Region). Backends exist for Linux (procfs), Windows and for replaying a
// saved snapshot.
package handle

// Handle is an opaque reference to an open kernel object.
type Handle int

// Type selects the kind of object Open refers to.
type Type int

const (
	TypeProcess Type = iota + 1
)

// Flags modify how a handle is opened.
type Flags uint32

const (
	FlagCloseOnExec Flags = 1 << iota
)

// Query selects the information returned by API.Query.
type Query int

const (
	QueryVMRegions Query = iota + 1
)

// API is the minimal open/query/close surface of a process handle.
type API interface {
	// Open returns a handle to the object of type typ identified by id.
	Open(typ Type, id int, flags Flags) (Handle, error)

	// Query writes up to len(buf) bytes of the requested information into buf.
	// It returns the number of bytes written and the number of bytes the
	// complete answer requires. If buf is too small, err is ErrNoSpace and
	// required is still valid.
	Query(h Handle, buf []byte, q Query) (filled, required int, err error)

	// Close releases h.
	Close(h Handle) error
}

// Default returns the API backed by the host operating system.
func Default() API {
	return defaultAPI()
}
