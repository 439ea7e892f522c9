package engine

import "time"

// imageTickInterval paces the synthetic clock of still images.
const imageTickInterval = 20 * time.Millisecond

// imageClock times media the backend does not: a still image is shown for a
// fixed duration, advancing only while playing.
type imageClock struct {
	duration int
	elapsed  time.Duration
	since    time.Time
	running  bool
}

func (c *imageClock) reset(duration int) {
	*c = imageClock{duration: duration}
}

func (c *imageClock) run(running bool, now time.Time) {
	if running == c.running {
		return
	}
	if c.running {
		c.elapsed += now.Sub(c.since)
	}
	c.running = running
	c.since = now
}

// position in milliseconds, never past the duration.
func (c *imageClock) position(now time.Time) int {
	elapsed := c.elapsed
	if c.running {
		elapsed += now.Sub(c.since)
	}
	return min(int(elapsed/time.Millisecond), c.duration)
}

func (c *imageClock) seek(ms int, now time.Time) {
	c.elapsed = time.Duration(max(0, min(ms, c.duration))) * time.Millisecond
	c.since = now
}

// syncImageClock follows the state: the clock advances while playing and the
// ticker runs while running. The lock must be held.
func (e *Engine) syncImageClock() {
	e.image.run(e.hasImage && e.state == Playing, e.now())

	if e.hasImage && e.state.IsRunning() && !e.quit.Load() {
		e.startTicker()
	} else {
		e.stopTicker()
	}
}

func (e *Engine) startTicker() {
	if e.ticker != nil {
		return
	}
	e.ticker = time.NewTicker(imageTickInterval)
	e.wakeOwner()
}

func (e *Engine) stopTicker() {
	if e.ticker == nil {
		return
	}
	e.ticker.Stop()
	e.ticker = nil
}

// imageTick advances a still image and asks the backend to stop it once its
// duration has elapsed, which ends the file like any other.
func (e *Engine) imageTick() {
	var stop bool

	e.update(func() []Notification {
		if !e.hasImage || !e.state.IsRunning() {
			return nil
		}

		var notes []Notification
		pos := e.image.position(e.now())
		if pos != e.position {
			notes = e.setPosition(pos)
		}
		if pos >= e.image.duration && !e.imageEnded {
			e.imageEnded = true
			stop = true
		}
		return notes
	})

	if stop {
		e.send(commandRequest{args: []string{"stop"}})
	}
}
