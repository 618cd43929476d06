// Package renderer drives the per-frame work: it advances the rotation,
// uploads the new transform and records and submits one render pass.
//
// The Driver does not schedule itself. Any scheduler calls Step once per
// tick; see package loop.
package renderer

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/wiresphere/internal/engine/gpu"
	"github.com/Faultbox/wiresphere/internal/engine/scene"
	"github.com/Faultbox/wiresphere/internal/logger"
	"github.com/Faultbox/wiresphere/pkg/math"
)

// DefaultAngleStep is the rotation added per frame, in radians. It is not
// scaled by elapsed time, so the apparent speed follows the refresh rate.
const DefaultAngleStep = 0.01

// DefaultClearColor is the dark gray the frame is cleared to.
var DefaultClearColor = gpu.Color{R: 0.1, G: 0.1, B: 0.1, A: 1.0}

// ErrHalted is returned by Step after a previous step failed.
var ErrHalted = errors.New("renderer: halted after device error")

// State is the driver lifecycle state.
type State int

const (
	// StateIdle means no frame has been submitted yet.
	StateIdle State = iota
	// StateRunning means the last step submitted and presented a frame.
	StateRunning
	// StateHalted means a step failed; further steps return ErrHalted.
	StateHalted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateHalted:
		return "halted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Config holds frame driver settings.
type Config struct {
	AngleStep  float64
	ClearColor gpu.Color
}

// DefaultConfig returns the default step and clear color.
func DefaultConfig() Config {
	return Config{
		AngleStep:  DefaultAngleStep,
		ClearColor: DefaultClearColor,
	}
}

// Driver renders the sphere one frame at a time. It holds references to
// the scene's resources but does not own them.
type Driver struct {
	config  Config
	device  gpu.Device
	queue   gpu.Queue
	surface gpu.Surface
	scene   *scene.Sphere
	log     *zap.Logger

	state  State
	angle  float64
	frames uint64
}

// New creates a driver in the idle state.
func New(dev gpu.Device, surface gpu.Surface, s *scene.Sphere, cfg Config) *Driver {
	return &Driver{
		config:  cfg,
		device:  dev,
		queue:   dev.Queue(),
		surface: surface,
		scene:   s,
		log:     logger.Named("renderer"),
	}
}

// NextAngle returns the angle after one step.
func NextAngle(angle, step float64) float64 {
	return angle + step
}

// Transform returns the model matrix for an angle.
func Transform(angle float64) math.Mat4 {
	return math.RotateY(angle)
}

// State returns the current lifecycle state.
func (d *Driver) State() State { return d.state }

// Angle returns the rotation of the last rendered frame.
func (d *Driver) Angle() float64 { return d.angle }

// Frames returns the number of frames submitted.
func (d *Driver) Frames() uint64 { return d.frames }

// Step renders one frame. Any device error halts the driver; later calls
// return ErrHalted.
func (d *Driver) Step() error {
	if d.state == StateHalted {
		return ErrHalted
	}
	if d.state == StateIdle {
		d.state = StateRunning
		d.log.Debug("frame driver running", zap.Float64("angleStep", d.config.AngleStep))
	}

	d.angle = NextAngle(d.angle, d.config.AngleStep)

	if err := d.render(Transform(d.angle)); err != nil {
		d.state = StateHalted
		return err
	}
	d.frames++
	return nil
}

// render uploads m and submits one pass drawing the whole index buffer.
func (d *Driver) render(m math.Mat4) error {
	res := d.scene.Resources()

	res.StageTransform(m)
	if err := res.CommitTransform(d.queue); err != nil {
		return gpu.Submit("write transform", err)
	}

	view, err := d.surface.CurrentView()
	if err != nil {
		return gpu.Submit("acquire surface view", err)
	}
	defer view.Release()

	encoder, err := d.device.CreateCommandEncoder()
	if err != nil {
		return gpu.Submit("create command encoder", err)
	}
	defer encoder.Release()

	pass, err := encoder.BeginRenderPass(gpu.RenderPassDesc{
		Label:      "Sphere Pass",
		View:       view,
		ClearColor: d.config.ClearColor,
	})
	if err != nil {
		return gpu.Submit("begin render pass", err)
	}
	pass.SetPipeline(d.scene.Pipeline())
	pass.SetBindGroup(0, d.scene.Bindings())
	pass.SetVertexBuffer(0, res.VertexBuffer())
	pass.SetIndexBuffer(res.IndexBuffer(), gpu.IndexFormatUint16)
	pass.DrawIndexed(res.IndexCount())
	if err := pass.End(); err != nil {
		return gpu.Submit("end render pass", err)
	}

	cmd, err := encoder.Finish()
	if err != nil {
		return gpu.Submit("finish command encoder", err)
	}
	defer cmd.Release()

	if err := d.queue.Submit(cmd); err != nil {
		return gpu.Submit("submit", err)
	}
	if err := d.surface.Present(); err != nil {
		return gpu.Submit("present", err)
	}
	return nil
}
