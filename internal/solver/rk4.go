package solver

// RK4 is a classic fourth-order Runge-Kutta stepper. Scratch buffers are
// reused across steps to keep the inner loop allocation-free.
type RK4 struct {
	k1, k2, k3, k4 State
	scratch        State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make(State, n)
		r.k2 = make(State, n)
		r.k3 = make(State, n)
		r.k4 = make(State, n)
		r.scratch = make(State, n)
	}
}

func (r *RK4) Step(dyn Dynamics, x State, t, dt float64) State {
	n := len(x)
	r.ensureScratch(n)

	copy(r.k1, dyn.Derivative(x, t))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k1[i]
	}
	copy(r.k2, dyn.Derivative(r.scratch, t+dt*0.5))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k2[i]
	}
	copy(r.k3, dyn.Derivative(r.scratch, t+dt*0.5))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*r.k3[i]
	}
	copy(r.k4, dyn.Derivative(r.scratch, t+dt))

	result := make(State, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt6*(r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])
	}
	return result
}
