package control

import "math"

// PID drives the relative temperature error e = (Target - T)/Target to zero.
// The controller output u is a heating rate in 1/fs, applied as
// λ² = 1 + u·dt.
type PID struct {
	Kp       float64
	Ki       float64
	Kd       float64
	Target   float64
	integral float64
	prevErr  float64
	first    bool
}

func NewPID(kp, ki, kd, target float64) *PID {
	return &PID{
		Kp:     kp,
		Ki:     ki,
		Kd:     kd,
		Target: target,
		first:  true,
	}
}

func (p *PID) Scale(T, t, dt float64) float64 {
	if p.Target <= 0 || T <= 0 || dt <= 0 {
		return 1
	}
	err := (p.Target - T) / p.Target

	derivative := 0.0
	if !p.first {
		derivative = (err - p.prevErr) / dt
	}
	p.first = false
	p.integral += err * dt
	p.prevErr = err

	u := p.Kp*err + p.Ki*p.integral + p.Kd*derivative
	return math.Sqrt(math.Max(0, 1+u*dt))
}

func (p *PID) Reset() {
	p.integral, p.prevErr, p.first = 0, 0, true
}
