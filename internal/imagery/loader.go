package imagery

import (
	"context"
	"image"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Texture is a decoded photo ready for upload.
type Texture struct {
	ID    string
	Image *image.RGBA
	Err   error
}

type request struct {
	id, url string
	gen     uint64
}

// Loader decodes photo urls on worker goroutines. Request and Ready never
// block, so both are safe to call from the frame loop.
type Loader struct {
	Size int
	// Fetch resolves a url to image bytes. NewLoader sets FetchData.
	Fetch  func(ctx context.Context, ref string) ([]byte, error)
	logger *slog.Logger

	mu      sync.Mutex
	queue   []request
	gens    map[string]uint64
	next    uint64
	results []Texture
	wake    chan struct{}
}

func NewLoader(size int, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		Size:   size,
		Fetch:  FetchData,
		logger: logger,
		gens:   make(map[string]uint64),
		wake:   make(chan struct{}, 1),
	}
}

// Request queues a decode. A later request for the same id supersedes it.
func (l *Loader) Request(id, url string) {
	l.mu.Lock()
	l.next++
	l.gens[id] = l.next
	l.queue = append(l.queue, request{id: id, url: url, gen: l.next})
	l.mu.Unlock()
	l.signal()
}

// Forget drops pending work and undelivered results for id.
func (l *Loader) Forget(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.gens, id)
	l.queue = slices.DeleteFunc(l.queue, func(r request) bool { return r.id == id })
	l.results = slices.DeleteFunc(l.results, func(t Texture) bool { return t.ID == id })
}

// Ready hands over every texture finished since the last call.
func (l *Loader) Ready() []Texture {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.results
	l.results = nil
	return out
}

// Pending is the number of queued requests not yet picked up by a worker.
func (l *Loader) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

func (l *Loader) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Loader) take() (request, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return request{}, false
	}
	r := l.queue[0]
	l.queue = l.queue[1:]
	if len(l.queue) > 0 {
		l.signal()
	}
	return r, true
}

func (l *Loader) deliver(r request, t Texture) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.gens[r.id] != r.gen {
		return
	}
	delete(l.gens, r.id)
	l.results = append(l.results, t)
}

// Run processes requests on n workers until ctx is done.
func (l *Loader) Run(ctx context.Context, n int) error {
	if n < 1 {
		n = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	for range n {
		g.Go(func() error {
			for {
				r, ok := l.take()
				if !ok {
					select {
					case <-ctx.Done():
						return nil
					case <-l.wake:
						continue
					}
				}
				l.deliver(r, l.load(ctx, r))
			}
		})
	}
	return g.Wait()
}

func (l *Loader) load(ctx context.Context, r request) Texture {
	t := Texture{ID: r.id}
	raw, err := l.Fetch(ctx, r.url)
	if err == nil {
		var img image.Image
		if img, err = Decode(raw); err == nil {
			t.Image = Fit(img, l.Size)
		}
	}
	if err != nil {
		l.logger.Warn("photo decode failed", "id", r.id, "err", err)
		t.Err = err
	}
	return t
}
