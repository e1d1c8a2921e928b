// Package drive wires operator commands through per-axis rate limiters
// into a mecanum drive. Wheel mixing and field-centric rotation are left
// to the CartesianDrive implementation.
package drive

import (
	"fmt"
	"reflect"

	"github.com/lowc1012/drivetrain-limiter/internal/clock"
	"github.com/lowc1012/drivetrain-limiter/internal/log"
	"github.com/lowc1012/drivetrain-limiter/internal/ratelimiter"
	"go.uber.org/zap"
)

// Axis names a limited drive axis.
type Axis string

const (
	AxisY        Axis = "y"
	AxisX        Axis = "x"
	AxisRotation Axis = "rotation"
)

// Axes lists the limited axes in reporting order.
var Axes = []Axis{AxisY, AxisX, AxisRotation}

// Inversion marks which motors spin backwards for a positive command.
type Inversion struct {
	FrontLeft  bool
	FrontRight bool
	RearLeft   bool
	RearRight  bool
}

// Config holds the per-axis limits, in command units per second.
type Config struct {
	MaxYAcceleration      float64
	MaxXAcceleration      float64
	MaxRotateAcceleration float64
	Filter                ratelimiter.Type
	Inverted              Inversion
}

// Motors are the four mecanum wheel controllers.
type Motors struct {
	FrontLeft  MotorController
	FrontRight MotorController
	RearLeft   MotorController
	RearRight  MotorController
}

func (m Motors) all() []MotorController {
	return []MotorController{m.FrontLeft, m.FrontRight, m.RearLeft, m.RearRight}
}

// AxisState is what one axis was asked for and what it was given.
type AxisState struct {
	Input  float64
	Output float64
	// Branch is the limiter branch taken; empty for filters without one.
	Branch string
}

// Command is a cartesian command after limiting, as handed to the drive.
type Command struct {
	Time         float64
	Y            AxisState
	X            AxisState
	Rotation     AxisState
	Heading      float64
	FieldCentric bool
	Limited      bool
}

// Axis returns the state of the named axis.
func (c Command) Axis(a Axis) AxisState {
	switch a {
	case AxisX:
		return c.X
	case AxisRotation:
		return c.Rotation
	default:
		return c.Y
	}
}

// Subsystem owns the drive hardware and one filter per axis. It is driven
// from a single control loop and is not safe for concurrent use.
type Subsystem struct {
	motors Motors
	drive  CartesianDrive
	gyro   Gyro
	clock  clock.Clock

	y        ratelimiter.Filter
	x        ratelimiter.Filter
	rotation ratelimiter.Filter
}

// NewSubsystem configures motor inversion, zeroes the gyro and creates the
// axis filters. Hardware given as a nil interface or a typed nil pointer
// is rejected.
func NewSubsystem(cfg Config, motors Motors, drv CartesianDrive, gyro Gyro, clk clock.Clock) (*Subsystem, error) {
	for _, m := range motors.all() {
		if isNil(m) {
			return nil, fmt.Errorf("drive: all four motors are required")
		}
	}
	if isNil(drv) || isNil(gyro) {
		return nil, fmt.Errorf("drive: cartesian drive and gyro are required")
	}

	y, err := ratelimiter.New(cfg.Filter, cfg.MaxYAcceleration, clk)
	if err != nil {
		return nil, fmt.Errorf("drive: y axis: %w", err)
	}
	x, err := ratelimiter.New(cfg.Filter, cfg.MaxXAcceleration, clk)
	if err != nil {
		return nil, fmt.Errorf("drive: x axis: %w", err)
	}
	rotation, err := ratelimiter.New(cfg.Filter, cfg.MaxRotateAcceleration, clk)
	if err != nil {
		return nil, fmt.Errorf("drive: rotation axis: %w", err)
	}
	if clk == nil {
		// passthrough filters accept a nil clock but commands are still timestamped
		clk = clock.NewMonotonic()
	}

	motors.FrontLeft.SetInverted(cfg.Inverted.FrontLeft)
	motors.FrontRight.SetInverted(cfg.Inverted.FrontRight)
	motors.RearLeft.SetInverted(cfg.Inverted.RearLeft)
	motors.RearRight.SetInverted(cfg.Inverted.RearRight)

	gyro.Reset()

	log.Logger().Info("Drive subsystem ready",
		zap.Stringer("filter", cfg.Filter),
		zap.Float64("maxY", cfg.MaxYAcceleration),
		zap.Float64("maxX", cfg.MaxXAcceleration),
		zap.Float64("maxRotate", cfg.MaxRotateAcceleration))

	return &Subsystem{
		motors:   motors,
		drive:    drv,
		gyro:     gyro,
		clock:    clk,
		y:        y,
		x:        x,
		rotation: rotation,
	}, nil
}

// Stop sets every motor to zero. The axis filters are reset as well so the
// next command ramps up from rest.
func (s *Subsystem) Stop() {
	for _, m := range s.motors.all() {
		m.Set(0)
	}
	s.y.Reset(0)
	s.x.Reset(0)
	s.rotation.Reset(0)
	log.Logger().Debug("Drive stopped")
}

// DriveForward sets all motors to the same speed.
func (s *Subsystem) DriveForward(speed float64) {
	for _, m := range s.motors.all() {
		m.Set(speed)
	}
}

func (s *Subsystem) SetFrontLeftSpeed(speed float64) {
	s.motors.FrontLeft.Set(speed)
}

func (s *Subsystem) SetFrontRightSpeed(speed float64) {
	s.motors.FrontRight.Set(speed)
}

func (s *Subsystem) SetRearLeftSpeed(speed float64) {
	s.motors.RearLeft.Set(speed)
}

func (s *Subsystem) SetRearRightSpeed(speed float64) {
	s.motors.RearRight.Set(speed)
}

// Orientation returns the current heading in degrees.
func (s *Subsystem) Orientation() float64 {
	return s.gyro.Angle()
}

// DriveCartesian drives robot-relative with every axis rate limited.
func (s *Subsystem) DriveCartesian(ySpeed, xSpeed, rotation float64) Command {
	return s.send(s.limit(ySpeed, xSpeed, rotation), 0, false)
}

// DriveCartesianNoRateLimit drives robot-relative, bypassing the filters.
func (s *Subsystem) DriveCartesianNoRateLimit(ySpeed, xSpeed, rotation float64) Command {
	return s.send(raw(ySpeed, xSpeed, rotation), 0, false)
}

// DriveCartesianFieldCentric drives relative to the field with every axis
// rate limited.
func (s *Subsystem) DriveCartesianFieldCentric(ySpeed, xSpeed, rotation float64) Command {
	return s.send(s.limit(ySpeed, xSpeed, rotation), s.Orientation(), true)
}

// DriveCartesianFieldCentricNoRateLimit drives relative to the field,
// bypassing the filters.
func (s *Subsystem) DriveCartesianFieldCentricNoRateLimit(ySpeed, xSpeed, rotation float64) Command {
	return s.send(raw(ySpeed, xSpeed, rotation), s.Orientation(), true)
}

// Snapshot returns the last limited output of every axis.
func (s *Subsystem) Snapshot() map[Axis]float64 {
	return map[Axis]float64{
		AxisY:        s.y.Value(),
		AxisX:        s.x.Value(),
		AxisRotation: s.rotation.Value(),
	}
}

func (s *Subsystem) limit(ySpeed, xSpeed, rotation float64) Command {
	return Command{
		Y:        apply(s.y, ySpeed),
		X:        apply(s.x, xSpeed),
		Rotation: apply(s.rotation, rotation),
		Limited:  true,
	}
}

func (s *Subsystem) send(c Command, heading float64, fieldCentric bool) Command {
	c.Time = s.clock.Seconds()
	c.Heading = heading
	c.FieldCentric = fieldCentric
	s.drive.DriveCartesian(c.Y.Output, c.X.Output, c.Rotation.Output, heading)
	return c
}

func raw(ySpeed, xSpeed, rotation float64) Command {
	return Command{
		Y:        AxisState{Input: ySpeed, Output: ySpeed},
		X:        AxisState{Input: xSpeed, Output: xSpeed},
		Rotation: AxisState{Input: rotation, Output: rotation},
	}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Func, reflect.Chan, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func apply(f ratelimiter.Filter, input float64) AxisState {
	if l, ok := f.(*ratelimiter.AccelerationLimiter); ok {
		sample := l.CalculateSample(input)
		return AxisState{Input: input, Output: sample.Output, Branch: sample.Transition.String()}
	}
	return AxisState{Input: input, Output: f.Calculate(input)}
}
