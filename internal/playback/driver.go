package playback

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/paulmach/orb"
	"go.uber.org/zap"
)

// DefaultInterval is the delay between frames.
const DefaultInterval = 10 * time.Millisecond

// Sink receives the animated overlay.
type Sink interface {
	Trace(ls orb.LineString)
	Flush() error
}

// Options configures a Driver.
type Options struct {
	// Clock drives the ticker; nil means the wall clock.
	Clock clock.Clock
	// Interval between frames; zero means DefaultInterval.
	Interval time.Duration
	// Post runs a frame on the owner's event loop. nil runs it on the ticker
	// goroutine, which is only safe when nothing else touches the sink.
	Post   func(func())
	Logger *zap.SugaredLogger
}

// Driver plays an Animation once into a Sink. Start, Stop and the posted frame
// closures are expected to run on the same loop goroutine.
type Driver struct {
	anim     *Animation
	sink     Sink
	clock    clock.Clock
	interval time.Duration
	post     func(func())
	logger   *zap.SugaredLogger

	started  bool
	stopped  atomic.Bool
	rendered atomic.Int64
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewDriver prepares a playback of anim into sink. Nothing is drawn until Start.
func NewDriver(anim *Animation, sink Sink, opts Options) *Driver {
	d := &Driver{
		anim:     anim,
		sink:     sink,
		clock:    opts.Clock,
		interval: opts.Interval,
		post:     opts.Post,
		logger:   opts.Logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	d.rendered.Store(-1)
	if d.clock == nil {
		d.clock = clock.New()
	}
	if d.interval <= 0 {
		d.interval = DefaultInterval
	}
	if d.post == nil {
		d.post = func(f func()) { f() }
	}
	if d.logger == nil {
		d.logger = zap.NewNop().Sugar()
	}
	return d
}

// Start draws frame 0 immediately and schedules the rest, one per tick.
// Calling Start again has no effect.
func (d *Driver) Start() {
	if d.started {
		return
	}
	d.started = true
	d.render(0)

	last := d.anim.Frames() - 1
	if last == 0 {
		close(d.done)
		return
	}
	ticker := d.clock.Ticker(d.interval)
	go d.run(ticker, last)
}

func (d *Driver) run(ticker *clock.Ticker, last int) {
	defer close(d.done)
	defer ticker.Stop()
	for i := 1; i <= last; i++ {
		select {
		case <-d.stop:
			return
		case <-ticker.C:
		}
		frame := i
		d.post(func() { d.render(frame) })
	}
	d.logger.Debugw("playback finished", "frames", last+1)
}

func (d *Driver) render(i int) {
	if d.stopped.Load() {
		return
	}
	d.sink.Trace(d.anim.Frame(i))
	if err := d.sink.Flush(); err != nil {
		d.logger.Warnw("flushing playback frame", "frame", i, "error", err)
	}
	d.rendered.Store(int64(i))
}

// Stop ends playback early. Frames already posted but not yet run are dropped.
func (d *Driver) Stop() {
	d.stopOnce.Do(func() {
		d.stopped.Store(true)
		close(d.stop)
	})
}

// Done is closed once the last frame has been posted or playback was stopped.
func (d *Driver) Done() <-chan struct{} {
	return d.done
}

// Rendered returns the index of the last frame drawn, or -1 before Start.
func (d *Driver) Rendered() int {
	return int(d.rendered.Load())
}

// Animation returns the frames being played.
func (d *Driver) Animation() *Animation {
	return d.anim
}
