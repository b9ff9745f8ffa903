package chunkmgr

import "sync/atomic"

// AbortHandle marks an in-flight chunk load as cancelled. Cancellation is
// cooperative: the manager flips the flag and the loader is expected to check
// it before posting a ready chunk. The handle is safe to share across
// goroutines; it is the only piece of manager state that ever crosses one.
type AbortHandle struct {
	aborted atomic.Bool
}

// NewAbortHandle constructs a handle in the not-aborted state.
func NewAbortHandle() *AbortHandle {
	return &AbortHandle{}
}

// Abort marks the load as cancelled.
func (h *AbortHandle) Abort() {
	h.aborted.Store(true)
}

// Aborted reports whether the load has been cancelled.
func (h *AbortHandle) Aborted() bool {
	return h.aborted.Load()
}
