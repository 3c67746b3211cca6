package epidemic

// Compartments holds the population fractions of an SIR state.
type Compartments struct {
	S float64 `json:"s"`
	I float64 `json:"i"`
	R float64 `json:"r"`
}

// Derivatives returns dS/dt, dI/dt and dR/dt for contact rate beta and
// recovery rate gamma.
func Derivatives(c Compartments, beta, gamma float64) Compartments {
	infections := beta * c.S * c.I
	recoveries := gamma * c.I
	return Compartments{
		S: -infections,
		I: infections - recoveries,
		R: recoveries,
	}
}

// Step advances c by one unit of time with an explicit Euler step.
func Step(c Compartments, beta, gamma float64) Compartments {
	d := Derivatives(c, beta, gamma)
	return Compartments{S: c.S + d.S, I: c.I + d.I, R: c.R + d.R}
}
