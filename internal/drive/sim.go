package drive

import "sync"

// SimMotor is an in-memory MotorController.
type SimMotor struct {
	mu       sync.Mutex
	speed    float64
	inverted bool
}

func (m *SimMotor) Set(speed float64) {
	m.mu.Lock()
	m.speed = speed
	m.mu.Unlock()
}

func (m *SimMotor) SetInverted(inverted bool) {
	m.mu.Lock()
	m.inverted = inverted
	m.mu.Unlock()
}

// Speed returns the last commanded speed.
func (m *SimMotor) Speed() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.speed
}

func (m *SimMotor) Inverted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inverted
}

// SimGyro is a Gyro whose heading is set by hand.
type SimGyro struct {
	mu    sync.Mutex
	angle float64
}

func (g *SimGyro) Angle() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.angle
}

func (g *SimGyro) Reset() {
	g.SetAngle(0)
}

func (g *SimGyro) SetAngle(degrees float64) {
	g.mu.Lock()
	g.angle = degrees
	g.mu.Unlock()
}

// CartesianCall is one DriveCartesian invocation.
type CartesianCall struct {
	YSpeed    float64
	XSpeed    float64
	Rotation  float64
	GyroAngle float64
}

// MaxRecordedCalls bounds the history kept by a RecordingDrive.
const MaxRecordedCalls = 1024

// RecordingDrive is a CartesianDrive that only remembers what it was told.
// It keeps the most recent MaxRecordedCalls calls.
type RecordingDrive struct {
	mu    sync.Mutex
	calls []CartesianCall
}

func (d *RecordingDrive) DriveCartesian(ySpeed, xSpeed, rotation, gyroAngle float64) {
	d.mu.Lock()
	if len(d.calls) == MaxRecordedCalls {
		copy(d.calls, d.calls[1:])
		d.calls = d.calls[:MaxRecordedCalls-1]
	}
	d.calls = append(d.calls, CartesianCall{ySpeed, xSpeed, rotation, gyroAngle})
	d.mu.Unlock()
}

// Calls returns a copy of the retained calls, oldest first.
func (d *RecordingDrive) Calls() []CartesianCall {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]CartesianCall(nil), d.calls...)
}

// Last returns the most recent call, if any.
func (d *RecordingDrive) Last() (CartesianCall, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.calls) == 0 {
		return CartesianCall{}, false
	}
	return d.calls[len(d.calls)-1], true
}

// SimHardware bundles a full set of simulated drive hardware.
type SimHardware struct {
	Motors [4]*SimMotor
	Gyro   *SimGyro
	Drive  *RecordingDrive
}

// NewSimHardware creates fresh simulated hardware.
func NewSimHardware() *SimHardware {
	return &SimHardware{
		Motors: [4]*SimMotor{{}, {}, {}, {}},
		Gyro:   &SimGyro{},
		Drive:  &RecordingDrive{},
	}
}

// MotorSet returns the motors in front-left, front-right, rear-left,
// rear-right order.
func (h *SimHardware) MotorSet() Motors {
	return Motors{
		FrontLeft:  h.Motors[0],
		FrontRight: h.Motors[1],
		RearLeft:   h.Motors[2],
		RearRight:  h.Motors[3],
	}
}
