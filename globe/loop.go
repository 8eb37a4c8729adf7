package globe

import "time"

// DefaultFrameInterval approximates a 60 Hz display refresh.
const DefaultFrameInterval = 16 * time.Millisecond

// Loop serializes all state mutations onto one goroutine, giving the
// same run-to-completion guarantee a browser event loop provides: a
// posted callback finishes before the next one starts, so no partial
// state is ever observable. A frame tick drives the coalesced zoom
// refresh.
type Loop struct {
	tasks   chan func()
	quit    chan struct{}
	done    chan struct{}
	onFrame func()
	frame   time.Duration
}

// NewLoop creates a loop that calls onFrame once per frame interval.
func NewLoop(frame time.Duration, onFrame func()) *Loop {
	if frame <= 0 {
		frame = DefaultFrameInterval
	}
	return &Loop{
		tasks:   make(chan func(), 64),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
		onFrame: onFrame,
		frame:   frame,
	}
}

// Start launches the loop goroutine.
func (l *Loop) Start() {
	go l.run()
}

func (l *Loop) run() {
	defer close(l.done)
	ticker := time.NewTicker(l.frame)
	defer ticker.Stop()

	for {
		select {
		case fn := <-l.tasks:
			fn()
		case <-ticker.C:
			if l.onFrame != nil {
				l.onFrame()
			}
		case <-l.quit:
			// Drain anything already queued before shutting down.
			for {
				select {
				case fn := <-l.tasks:
					fn()
				default:
					return
				}
			}
		}
	}
}

// Post queues fn without waiting for it to run.
func (l *Loop) Post(fn func()) {
	select {
	case l.tasks <- fn:
	case <-l.quit:
	}
}

// Call runs fn on the loop and waits for it to finish.
func (l *Loop) Call(fn func()) {
	doneCh := make(chan struct{})
	l.Post(func() {
		fn()
		close(doneCh)
	})
	select {
	case <-doneCh:
	case <-l.done:
	}
}

// Stop shuts the loop down after draining queued tasks.
func (l *Loop) Stop() {
	close(l.quit)
	<-l.done
}
