// Package stoptheworld suspends every other thread of the process while a
// callback inspects it.
//
// No suspension mechanism exists on this platform yet: the default Impl
// returns without running the callback.
package stoptheworld

// SuspendedThreads lists the threads stopped for the duration of a callback.
type SuspendedThreads interface {
	ThreadCount() int
	ThreadID(i int) int
}

// Callback runs while the world is stopped.
type Callback func(threads SuspendedThreads, arg any)

// Impl performs the suspension. Replace it to provide a real implementation.
var Impl = func(cb Callback, arg any) {}

// StopTheWorld suspends all other threads, runs cb and resumes them.
func StopTheWorld(cb Callback, arg any) {
	if Impl != nil {
		Impl(cb, arg)
	}
}

// ThreadList is a SuspendedThreads backed by a slice of thread ids.
type ThreadList []int

func (t ThreadList) ThreadCount() int   { return len(t) }
func (t ThreadList) ThreadID(i int) int { return t[i] }
