package procmaps

import (
	"io"
	"log/slog"
	"os"

	"github.com/DaveTheCamper/regionmap/handle"
)

// MaxPathLength is the default capacity of the name buffer DumpListOfModules
// decodes segment names into.
const MaxPathLength = 4096

type options struct {
	api          handle.API
	pid          int
	logger       *slog.Logger
	absoluteEnd  bool
	nameCapacity int
}

// Option configures a MemoryMappingLayout.
type Option func(*options)

func defaultOptions() options {
	return options{
		pid:          os.Getpid(),
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		nameCapacity: MaxPathLength,
	}
}

// WithAPI sets the handle API regions are queried through. The default is
// handle.Default().
func WithAPI(api handle.API) Option {
	return func(o *options) {
		o.api = api
	}
}

// WithPID selects the process to inspect. The default is the calling process.
func WithPID(pid int) Option {
	return func(o *options) {
		o.pid = pid
	}
}

// WithLogger sets the logger used to report snapshot failures and retries.
// If nil is passed, output is discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		}
		o.logger = logger
	}
}

// WithAbsoluteEnd makes Segment.End hold start+length instead of the raw
// length field of the region record.
func WithAbsoluteEnd(enabled bool) Option {
	return func(o *options) {
		o.absoluteEnd = enabled
	}
}

// WithNameCapacity sets the name buffer size used by DumpListOfModules,
// terminating NUL included. Values below 1 select MaxPathLength.
func WithNameCapacity(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = MaxPathLength
		}
		o.nameCapacity = n
	}
}
