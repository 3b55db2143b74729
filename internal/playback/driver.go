// Package playback drives players and blenders frame by frame.
package playback

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/jointmorph/internal/config"
	"github.com/Faultbox/jointmorph/internal/logger"
	"github.com/Faultbox/jointmorph/pkg/anim"
	"github.com/Faultbox/jointmorph/pkg/model"
)

// Options controls the frame loop.
type Options struct {
	FPS      float32 // frames per second of wall time in realtime mode
	Frames   int     // frames to run, 0 runs until every player stops
	Realtime bool    // pace frames with a ticker and scale delta by elapsed time
}

// OptionsFromConfig builds driver options from the playback config.
func OptionsFromConfig(cfg config.PlaybackConfig) Options {
	return Options{
		FPS:      cfg.FPS,
		Frames:   cfg.Frames,
		Realtime: cfg.Realtime,
	}
}

type binding struct {
	name   string
	player anim.Player
	inst   *model.Instance
	done   bool
}

// Driver ticks every bound player once per frame, applies it to its
// instance and recomputes the instance pose.
type Driver struct {
	opts     Options
	bindings []*binding
	frame    int
	log      *zap.Logger

	// OnFrame runs after each frame with the frame number, starting at 1.
	OnFrame func(frame int)
}

// New creates a Driver.
func New(opts Options) *Driver {
	if opts.FPS <= 0 {
		opts.FPS = 30
	}
	return &Driver{
		opts: opts,
		log:  logger.Named("playback"),
	}
}

// Add binds player to inst. Several players may share an instance; they
// are applied in the order they were added.
func (d *Driver) Add(name string, player anim.Player, inst *model.Instance) {
	d.bindings = append(d.bindings, &binding{name: name, player: player, inst: inst})
}

// Frame returns the number of frames stepped so far.
func (d *Driver) Frame() int {
	return d.frame
}

// Done reports whether the named player has finished.
func (d *Driver) Done(name string) bool {
	for _, b := range d.bindings {
		if b.name == name {
			return b.done
		}
	}
	return false
}

// Finished reports whether every bound player has finished.
func (d *Driver) Finished() bool {
	for _, b := range d.bindings {
		if !b.done {
			return false
		}
	}
	return len(d.bindings) > 0
}

// Step advances every player by delta frames, applies it and recomputes
// the affected instances. It returns Finished.
func (d *Driver) Step(delta float32) bool {
	d.frame++

	for _, b := range d.bindings {
		if b.player.Play(delta) && !b.done {
			b.done = true
			d.log.Info("player finished",
				zap.String("player", b.name),
				zap.Int("frame", d.frame),
				zap.Float32("time", b.player.Controller().CurrentTime))
		}
	}

	var calced []*model.Instance
	for _, b := range d.bindings {
		b.player.Entry(b.inst)
		if !containsInstance(calced, b.inst) {
			calced = append(calced, b.inst)
		}
	}
	for _, inst := range calced {
		inst.CalcAnim()
	}

	if d.OnFrame != nil {
		d.OnFrame(d.frame)
	}
	return d.Finished()
}

func containsInstance(list []*model.Instance, inst *model.Instance) bool {
	for _, v := range list {
		if v == inst {
			return true
		}
	}
	return false
}

// Run steps frames until the frame budget is spent, every player has
// finished, or ctx is cancelled. Cancellation is checked between frames and
// returns ctx.Err(). In realtime mode frames are paced at FPS and delta
// follows wall time; otherwise each frame advances by exactly one.
func (d *Driver) Run(ctx context.Context) error {
	if len(d.bindings) == 0 {
		return nil
	}

	d.log.Info("starting playback",
		zap.Int("players", len(d.bindings)),
		zap.Float32("fps", d.opts.FPS),
		zap.Int("frames", d.opts.Frames),
		zap.Bool("realtime", d.opts.Realtime))

	var (
		ticker *time.Ticker
		tick   <-chan time.Time
	)
	if d.opts.Realtime {
		ticker = time.NewTicker(time.Duration(float64(time.Second) / float64(d.opts.FPS)))
		defer ticker.Stop()
		tick = ticker.C
	}

	start := d.frame
	last := time.Now()
	for {
		if d.opts.Frames > 0 && d.frame-start >= d.opts.Frames {
			break
		}

		delta := float32(1)
		if tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case now := <-tick:
				delta = float32(now.Sub(last).Seconds()) * d.opts.FPS
				last = now
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		if d.Step(delta) && d.opts.Frames <= 0 {
			break
		}
	}

	d.log.Info("playback finished", zap.Int("frames", d.frame-start))
	return nil
}
