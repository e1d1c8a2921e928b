package drive

// MotorController is a single speed controller, driven with a normalized
// command in [-1, 1].
type MotorController interface {
	Set(speed float64)
	SetInverted(inverted bool)
}

// Gyro reports the platform heading in degrees.
type Gyro interface {
	Angle() float64
	Reset()
}

// CartesianDrive mixes a cartesian command onto the wheels. gyroAngle is
// the heading in degrees used for field-centric rotation; 0 drives
// robot-relative.
type CartesianDrive interface {
	DriveCartesian(ySpeed, xSpeed, rotation, gyroAngle float64)
}
