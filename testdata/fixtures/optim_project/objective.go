package optim

// SphereFunction is the convex objective sum(x_i^2) with minimum at the origin.
type SphereFunction struct{}

// Evaluate returns the objective value at x.
func (SphereFunction) Evaluate(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return sum
}

// Gradient writes the objective gradient at x into grad.
func (SphereFunction) Gradient(x []float64, grad []float64) {
	for i, v := range x {
		grad[i] = 2 * v
	}
}

// RosenbrockFunction is the generalized Rosenbrock objective with minimum at
// the all-ones point.
type RosenbrockFunction struct {
	Dim int
}

// Evaluate returns the objective value at x.
func (f RosenbrockFunction) Evaluate(x []float64) float64 {
	var sum float64
	for i := 0; i < f.Dim-1; i++ {
		a := x[i+1] - x[i]*x[i]
		b := 1 - x[i]
		sum += 100*a*a + b*b
	}
	return sum
}

// Gradient writes the objective gradient at x into grad.
func (f RosenbrockFunction) Gradient(x []float64, grad []float64) {
	for i := range grad {
		grad[i] = 0
	}
	for i := 0; i < f.Dim-1; i++ {
		a := x[i+1] - x[i]*x[i]
		grad[i] += -400*x[i]*a - 2*(1-x[i])
		grad[i+1] += 200 * a
	}
}
