// Package loader services chunk load requests off the world goroutine.
// A small worker pool consults the save store, falls back to the
// generator, and posts finished payloads back on a channel the world
// drains. Requests carry an abort handle so retracted loads can be
// dropped before the expensive work, or at worst before the post.
package loader

import (
	"log"
	"sync"

	"voxelgate.dev/internal/persistence/chunkdb"
	"voxelgate.dev/internal/sim/chunkmgr"
	"voxelgate.dev/internal/sim/coords"
	"voxelgate.dev/internal/sim/terrain"
)

type Request struct {
	CC    coords.Chunk
	Abort *chunkmgr.AbortHandle
}

type Loader struct {
	store *chunkdb.Store // nil means generate-only
	seed  int64
	out   chan<- chunkmgr.ReadyChunk

	reqs chan Request
	wg   sync.WaitGroup
	once sync.Once

	logger *log.Logger
}

func New(store *chunkdb.Store, seed int64, workers int, out chan<- chunkmgr.ReadyChunk, logger *log.Logger) *Loader {
	if workers < 1 {
		workers = 1
	}
	l := &Loader{
		store:  store,
		seed:   seed,
		out:    out,
		reqs:   make(chan Request, 1024),
		logger: logger,
	}
	l.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer l.wg.Done()
			l.work()
		}()
	}
	return l
}

// Enqueue hands a load request to the pool. Blocks if the queue is
// full, which backpressures the world's effect drain.
func (l *Loader) Enqueue(r Request) {
	l.reqs <- r
}

// Close drains the queue and stops the workers. The caller must not
// Enqueue afterwards.
func (l *Loader) Close() {
	l.once.Do(func() {
		close(l.reqs)
		l.wg.Wait()
	})
}

func (l *Loader) work() {
	for r := range l.reqs {
		if r.Abort.Aborted() {
			continue
		}
		rc := l.load(r.CC)
		// A retraction may have landed while we were loading. The
		// world also tolerates a stale post, so this check is only
		// an optimization.
		if r.Abort.Aborted() {
			continue
		}
		l.out <- rc
	}
}

func (l *Loader) load(cc coords.Chunk) chunkmgr.ReadyChunk {
	if l.store != nil {
		ch, err := l.store.Get(cc)
		if err != nil {
			if l.logger != nil {
				l.logger.Printf("chunkdb read (%d,%d,%d): %v; regenerating", cc.X, cc.Y, cc.Z, err)
			}
		} else if ch != nil {
			return chunkmgr.ReadyChunk{CC: cc, Payload: ch, Persisted: true}
		}
	}
	return chunkmgr.ReadyChunk{CC: cc, Payload: terrain.Generate(l.seed, cc), Persisted: false}
}
