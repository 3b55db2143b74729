package anim

import "github.com/Faultbox/jointmorph/pkg/model"

// PlayOptions configures how a player starts a clip.
type PlayOptions struct {
	Loop       LoopMode // LoopInherit uses the clip's own mode
	Speed      float32
	StartFrame float32
	EndFrame   float32 // < 0 plays to the clip's duration
	Modify     bool    // keep the running clock and only swap the clip
}

// DefaultPlayOptions plays a clip forward from frame zero with its own loop
// mode.
func DefaultPlayOptions() PlayOptions {
	return PlayOptions{
		Loop:     LoopInherit,
		Speed:    1,
		EndFrame: -1,
	}
}

// Player is the common surface of the single-clip players.
type Player interface {
	// Play advances the clock and reports whether playback has finished.
	Play(delta float32) bool
	// Entry applies the clip to inst at the current time.
	Entry(inst *model.Instance)
	// Controller returns the player's clock.
	Controller() *FrameCtrl
}

// BasePlayer binds one clip to a FrameCtrl. The concrete players embed it
// and add the kind-specific Entry.
type BasePlayer[C Clip] struct {
	Ctrl FrameCtrl
	clip C
}

// Start binds clip. Unless opts.Modify is set the clock is reconfigured for
// the clip; with Modify the running clock is kept as is. clip must not be nil.
func (p *BasePlayer[C]) Start(clip C, opts PlayOptions) {
	p.clip = clip
	if opts.Modify {
		return
	}

	h := clip.Header()
	loop := opts.Loop
	if loop == LoopInherit {
		loop = h.LoopMode
	}
	p.Ctrl.Configure(loop, opts.Speed, opts.StartFrame, opts.EndFrame, h.Duration, false)
}

// Play advances the clock by delta frames. It returns true only when the
// clock stopped on this update and its speed is zero.
func (p *BasePlayer[C]) Play(delta float32) bool {
	p.Ctrl.Update(delta)
	return p.Ctrl.HasStopped() && p.Ctrl.Speed == 0
}

// Clip returns the bound clip.
func (p *BasePlayer[C]) Clip() C {
	return p.clip
}

// Controller implements Player.
func (p *BasePlayer[C]) Controller() *FrameCtrl {
	return &p.Ctrl
}
