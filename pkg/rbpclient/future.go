package rbpclient

import "context"

// Future is the per-operation sink target: the Read/Write/RMW methods
// create one internally for each op and return the value its Wait
// method yields. Since reply delivery is synchronous with dispatch completion
// (there is no callback thread), a Future is normally already resolved
// by the time the caller reaches Wait — the channel only matters if
// Wait is somehow called before Dispatch finishes.
type Future struct {
	done chan struct{}
	data []uint32
	err  error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) resolve(data []uint32, err error) {
	f.data = data
	f.err = err
	close(f.done)
}

// Wait blocks until the operation resolves, returning its reply
// payload (empty for WRITE/NI_WRITE) and any target-reported error.
func (f *Future) Wait(ctx context.Context) ([]uint32, error) {
	select {
	case <-f.done:
		return f.data, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
