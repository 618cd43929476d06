// Package loop schedules frames. A Scheduler calls a step function once per
// tick until the step fails, the user quits or the context is cancelled.
package loop

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Faultbox/wiresphere/internal/engine/input"
	"github.com/Faultbox/wiresphere/internal/logger"
)

// StepFunc renders one frame.
type StepFunc func() error

// Scheduler decides when step runs. Run returns the first step error
// unchanged, or nil when scheduling stopped for any other reason.
type Scheduler interface {
	Run(ctx context.Context, step StepFunc) error
}

// ResizeFunc is called with the new drawable size before the next step.
type ResizeFunc func(width, height int) error

// Config holds refresh loop settings.
type Config struct {
	// VSync means present already blocks on the display refresh.
	VSync bool
	// FPSLimit caps the frame rate when VSync is off. Zero is uncapped.
	FPSLimit int
	// MaxFrames stops the loop after this many steps. Zero runs until quit.
	MaxFrames uint64
}

// RefreshLoop is the production scheduler. It polls window input each
// iteration and leaves pacing to the backend's present unless a frame
// limit applies.
type RefreshLoop struct {
	config   Config
	input    *input.Input
	onResize ResizeFunc
	limiter  *rate.Limiter
	log      *zap.Logger
	now      func() time.Time
}

// NewRefreshLoop creates a loop reading events from in. onResize may be nil.
func NewRefreshLoop(in *input.Input, cfg Config, onResize ResizeFunc) *RefreshLoop {
	l := &RefreshLoop{
		config:   cfg,
		input:    in,
		onResize: onResize,
		log:      logger.Named("loop"),
		now:      time.Now,
	}
	if !cfg.VSync && cfg.FPSLimit > 0 {
		l.limiter = rate.NewLimiter(rate.Limit(cfg.FPSLimit), 1)
	}
	return l
}

// Limited reports whether frames are paced by the rate limiter.
func (l *RefreshLoop) Limited() bool { return l.limiter != nil }

// Run implements Scheduler.
func (l *RefreshLoop) Run(ctx context.Context, step StepFunc) error {
	var frames uint64
	fpsFrames := 0
	fpsTimer := l.now()
	lastTime := fpsTimer

	l.log.Info("starting frame loop",
		zap.Bool("vsync", l.config.VSync),
		zap.Int("fpsLimit", l.config.FPSLimit),
		zap.Uint64("maxFrames", l.config.MaxFrames),
	)

	for {
		if ctx.Err() != nil {
			l.log.Info("frame loop cancelled", zap.Uint64("frames", frames))
			return nil
		}

		if l.input.Update() {
			l.log.Info("quit requested", zap.Uint64("frames", frames))
			return nil
		}
		if w, h, ok := l.input.Resized(); ok && l.onResize != nil {
			if err := l.onResize(w, h); err != nil {
				return err
			}
		}

		if !l.pace(ctx) {
			l.log.Info("frame loop cancelled", zap.Uint64("frames", frames))
			return nil
		}

		if err := step(); err != nil {
			return err
		}
		frames++

		now := l.now()
		dt := now.Sub(lastTime)
		lastTime = now
		fpsFrames++
		if now.Sub(fpsTimer) >= time.Second {
			l.log.Debug("fps", zap.Int("count", fpsFrames), zap.Duration("dt", dt))
			fpsFrames = 0
			fpsTimer = now
		}

		if l.config.MaxFrames > 0 && frames >= l.config.MaxFrames {
			l.log.Info("frame limit reached", zap.Uint64("frames", frames))
			return nil
		}
	}
}

// pace blocks until the limiter grants the next frame. It returns false if
// ctx ends first.
func (l *RefreshLoop) pace(ctx context.Context) bool {
	if l.limiter == nil {
		return true
	}
	r := l.limiter.Reserve()
	d := r.Delay()
	if d == 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		r.Cancel()
		return false
	case <-t.C:
		return true
	}
}

// ErrNoTicks is returned by FixedTicks with a negative count.
var ErrNoTicks = errors.New("loop: tick count must not be negative")

// FixedTicks runs step exactly N times with no input and no pacing.
type FixedTicks struct {
	N int
}

// Run implements Scheduler.
func (f FixedTicks) Run(ctx context.Context, step StepFunc) error {
	if f.N < 0 {
		return ErrNoTicks
	}
	for i := 0; i < f.N; i++ {
		if ctx.Err() != nil {
			return nil
		}
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

var (
	_ Scheduler = (*RefreshLoop)(nil)
	_ Scheduler = FixedTicks{}
)
