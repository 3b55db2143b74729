package anim

import "github.com/Faultbox/jointmorph/pkg/math"

// UpdateFlags report what happened during the last FrameCtrl.Update.
type UpdateFlags uint8

const (
	HasStopped UpdateFlags = 1 << iota
	HasLooped
)

// onceEndEpsilon keeps a finished Once clock just inside its last frame.
const onceEndEpsilon = 0.001

// FrameCtrl is an animation clock measured in frames.
type FrameCtrl struct {
	LoopMode         LoopMode
	StartFrame       float32
	EndFrame         float32
	RepeatStartFrame float32
	Speed            float32
	CurrentTime      float32
	Flags            UpdateFlags
}

// NewFrameCtrl returns a clock initialised with Init(endFrame).
func NewFrameCtrl(endFrame float32) FrameCtrl {
	var c FrameCtrl
	c.Init(endFrame)
	return c
}

// Init resets the clock to frame zero of a repeating clip ending at endFrame.
// Every other field, StartFrame included, returns to its default.
func (c *FrameCtrl) Init(endFrame float32) {
	c.LoopMode = LoopRepeat
	c.StartFrame = 0
	c.EndFrame = endFrame
	c.RepeatStartFrame = 0
	c.Speed = 1
	c.CurrentTime = 0
	c.Flags = 0
}

// Configure prepares the clock to play a clip of the given duration.
// endFrame < 0 means "use duration". The clock starts at startFrame when
// playing forward and at EndFrame otherwise.
//
// startFrame only positions CurrentTime: StartFrame itself stays at zero
// because Init runs after it would have been assigned. Callers that need a
// different lower bound must set StartFrame after Configure.
func (c *FrameCtrl) Configure(loop LoopMode, speed, startFrame, endFrame, duration float32, modify bool) {
	if !modify {
		c.Init(0)
	}

	if endFrame >= 0 {
		c.Init(endFrame)
	} else {
		c.Init(duration)
	}
	c.LoopMode = loop
	c.Speed = speed
	if speed > 0 {
		c.CurrentTime = startFrame
	} else {
		c.CurrentTime = c.EndFrame
	}
	c.RepeatStartFrame = c.CurrentTime
}

// Update advances the clock by delta frames scaled by Speed and applies the
// loop mode. Flags only describe this call.
func (c *FrameCtrl) Update(delta float32) {
	c.Flags = 0

	if c.Speed == 0 {
		return
	}

	c.CurrentTime += c.Speed * delta

	switch c.LoopMode {
	case LoopOnce:
		if c.CurrentTime < c.StartFrame {
			c.CurrentTime = c.StartFrame
			c.stop()
		}
		if c.CurrentTime >= c.EndFrame {
			c.CurrentTime = c.EndFrame - onceEndEpsilon
			if c.CurrentTime < c.StartFrame {
				c.CurrentTime = c.StartFrame
			}
			c.stop()
		}

	case LoopOnceAndReset:
		if c.CurrentTime < c.StartFrame || c.CurrentTime >= c.EndFrame {
			c.CurrentTime = c.StartFrame
			c.stop()
		}

	case LoopRepeat:
		if c.CurrentTime < c.StartFrame || c.CurrentTime >= c.EndFrame {
			c.CurrentTime = c.repeatTime(c.CurrentTime)
			c.Flags |= HasLooped
		}

	case LoopMirroredOnce:
		if c.CurrentTime >= c.EndFrame {
			c.CurrentTime = c.EndFrame - (c.CurrentTime - c.EndFrame)
			c.Speed = -c.Speed
		}
		if c.CurrentTime < c.StartFrame {
			c.CurrentTime = c.StartFrame - (c.CurrentTime - c.StartFrame)
			c.CurrentTime = math.Clamp(c.CurrentTime, c.StartFrame, c.EndFrame)
			c.stop()
		}

	case LoopMirroredRepeat:
		if c.EndFrame <= c.StartFrame {
			c.CurrentTime = c.StartFrame
			return
		}
		pass := math.Pass(c.CurrentTime, c.StartFrame, c.EndFrame)
		if pass%2 != 0 {
			c.Speed = -c.Speed
		}
		// Pass 1 only bounced off EndFrame; anything further crossed StartFrame.
		if pass >= 2 || pass < 0 {
			c.Flags |= HasLooped
		}
		c.CurrentTime = math.Mirror(c.CurrentTime, c.StartFrame, c.EndFrame)
	}
}

// repeatTime wraps t back into the playable range. Running off the end
// restarts at RepeatStartFrame; running off the start (reverse playback)
// restarts just below RepeatStartFrame. When that span is empty the whole
// [StartFrame, EndFrame) range is used, and an empty range holds StartFrame.
func (c *FrameCtrl) repeatTime(t float32) float32 {
	switch {
	case t >= c.EndFrame:
		lo := c.RepeatStartFrame
		if c.EndFrame-lo <= 0 {
			lo = c.StartFrame
		}
		return math.Wrap(t, lo, c.EndFrame)
	case t < c.StartFrame:
		hi := c.RepeatStartFrame
		if hi-c.StartFrame <= 0 {
			hi = c.EndFrame
		}
		return math.Wrap(t, c.StartFrame, hi)
	default:
		return t
	}
}

func (c *FrameCtrl) stop() {
	c.Speed = 0
	c.Flags |= HasStopped
}

// ApplyLoopMode maps an arbitrary frame through the loop rule without
// touching the clock.
func (c *FrameCtrl) ApplyLoopMode(t float32) float32 {
	switch c.LoopMode {
	case LoopOnce:
		last := c.EndFrame - onceEndEpsilon
		if last < c.StartFrame {
			last = c.StartFrame
		}
		return math.Clamp(t, c.StartFrame, last)
	case LoopOnceAndReset:
		if t < c.StartFrame || t >= c.EndFrame {
			return c.StartFrame
		}
		return t
	case LoopRepeat:
		return c.repeatTime(t)
	case LoopMirroredOnce:
		if t >= c.EndFrame {
			t = c.EndFrame - (t - c.EndFrame)
		}
		return math.Clamp(t, c.StartFrame, c.EndFrame)
	case LoopMirroredRepeat:
		return math.Mirror(t, c.StartFrame, c.EndFrame)
	default:
		return t
	}
}

// HasStopped reports whether the last Update reached a terminal bound.
func (c *FrameCtrl) HasStopped() bool {
	return c.Flags&HasStopped != 0
}

// HasLooped reports whether the last Update wrapped or bounced back.
func (c *FrameCtrl) HasLooped() bool {
	return c.Flags&HasLooped != 0
}

// Duration returns EndFrame - StartFrame.
func (c *FrameCtrl) Duration() float32 {
	return c.EndFrame - c.StartFrame
}

// CheckPass reports whether advancing the clock by delta frames from its
// current time would pass frame. Repeating clocks account for the wrap.
func (c *FrameCtrl) CheckPass(frame, delta float32) bool {
	step := c.Speed * delta
	if step == 0 {
		return false
	}

	from := c.CurrentTime
	to := from + step

	if c.LoopMode == LoopRepeat {
		wrapped := c.repeatTime(to)
		if step > 0 && to >= c.EndFrame {
			return (frame >= from && frame < c.EndFrame) || frame < wrapped
		}
		if step < 0 && to < c.StartFrame {
			return (frame <= from && frame >= c.StartFrame) || frame > wrapped
		}
	}

	if step > 0 {
		return frame >= from && frame < to
	}
	return frame <= from && frame > to
}
