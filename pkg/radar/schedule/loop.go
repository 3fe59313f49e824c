package schedule

import (
	"sync"
	"sync/atomic"
	"time"
)

// Loop is a [Scheduler] backed by a single goroutine.
type Loop struct {
	work      chan func()
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewLoop starts a loop goroutine. Call Close to stop it.
func NewLoop() *Loop {
	l := &Loop{
		work: make(chan func(), 256),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *Loop) run() {
	defer close(l.done)
	for {
		select {
		case fn := <-l.work:
			fn()
		case <-l.quit:
			return
		}
	}
}

func (l *Loop) post(fn func()) bool {
	select {
	case <-l.quit:
		return false
	default:
	}
	select {
	case l.work <- fn:
		return true
	case <-l.quit:
		return false
	}
}

// Do runs fn on the loop and waits for it. After Close it returns without
// running fn.
func (l *Loop) Do(fn func()) {
	finished := make(chan struct{})
	if !l.post(func() {
		defer close(finished)
		fn()
	}) {
		return
	}
	select {
	case <-finished:
	case <-l.done:
	}
}

// Every implements [Scheduler].
func (l *Loop) Every(d time.Duration, fn func() bool) Cancel {
	if d <= 0 {
		d = FrameInterval
	}
	var stopped atomic.Bool
	stop := make(chan struct{})
	var once sync.Once
	cancel := func() {
		stopped.Store(true)
		once.Do(func() { close(stop) })
	}

	ticker := time.NewTicker(d)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.post(func() {
					if stopped.Load() {
						return
					}
					if !fn() {
						cancel()
					}
				})
			case <-stop:
				return
			case <-l.quit:
				return
			}
		}
	}()
	return cancel
}

// After implements [Scheduler].
func (l *Loop) After(d time.Duration, fn func()) Cancel {
	var stopped atomic.Bool
	t := time.AfterFunc(d, func() {
		l.post(func() {
			if stopped.Swap(true) {
				return
			}
			fn()
		})
	})
	return func() {
		stopped.Store(true)
		t.Stop()
	}
}

// Now implements [Scheduler].
func (l *Loop) Now() time.Time { return time.Now() }

// Close stops the loop. Pending work is dropped.
func (l *Loop) Close() {
	l.closeOnce.Do(func() { close(l.quit) })
	<-l.done
}
