// Package optim contains gradient-descent update rules and objective
// functions. It is scanned by capform's tests: the update rules cover the
// interesting method shapes (matching prefixes at several trailing arities,
// wrong leading types, missing methods, shapes past the probe ceiling, and
// an ambiguous promotion from equal-depth embedding).
package optim

// VanillaUpdate applies a plain gradient step.
type VanillaUpdate struct{}

// Update moves iterate one step along the negative gradient.
func (VanillaUpdate) Update(iterate []float64, stepSize float64, gradient []float64) {
	for i := range iterate {
		iterate[i] -= stepSize * gradient[i]
	}
}

// NesterovUpdate applies a gradient step with Nesterov momentum.
type NesterovUpdate struct {
	Momentum float64

	velocity []float64
}

// Initialize sizes the velocity buffer before the first step.
func (u *NesterovUpdate) Initialize(n int) {
	u.velocity = make([]float64, n)
}

// Update performs a look-ahead momentum step.
func (u *NesterovUpdate) Update(iterate []float64, stepSize float64, gradient []float64) {
	for i := range iterate {
		prev := u.velocity[i]
		u.velocity[i] = u.Momentum*u.velocity[i] - stepSize*gradient[i]
		iterate[i] += -u.Momentum*prev + (1+u.Momentum)*u.velocity[i]
	}
}

// ClippedUpdate applies a gradient step with per-call clipping bounds.
type ClippedUpdate struct{}

// Update clamps each gradient component to [lo, hi] before stepping.
func (ClippedUpdate) Update(iterate []float64, stepSize float64, gradient []float64, lo, hi float64) {
	for i := range iterate {
		g := gradient[i]
		if g < lo {
			g = lo
		}
		if g > hi {
			g = hi
		}
		iterate[i] -= stepSize * g
	}
}

// TracedUpdate records step labels. Its Update takes a tag, not a gradient.
type TracedUpdate struct {
	tags []string
}

// Update appends the label for the current step.
func (u *TracedUpdate) Update(tag string) {
	u.tags = append(u.tags, tag)
}

// momentumCore carries a plain momentum step.
type momentumCore struct{}

// Update moves iterate one momentum-weighted step.
func (momentumCore) Update(iterate []float64, stepSize float64, gradient []float64) {
	for i := range iterate {
		iterate[i] -= 0.9 * stepSize * gradient[i]
	}
}

// rmsCore carries a root-mean-square scaled step.
type rmsCore struct{}

// Update moves iterate one RMS-scaled step.
func (rmsCore) Update(iterate []float64, stepSize float64, gradient []float64) {
	for i := range iterate {
		iterate[i] -= stepSize * gradient[i] / (1 + gradient[i]*gradient[i])
	}
}

// BlendedUpdate embeds both cores at equal depth. The promoted Update is
// ambiguous, so BlendedUpdate has no Update method of its own.
type BlendedUpdate struct {
	momentumCore
	rmsCore
}

// ConstantStep has no Update method at all.
type ConstantStep struct{}

// Step returns the fixed step size.
func (ConstantStep) Step() float64 { return 0.01 }

// ExhaustiveUpdate takes nine trailing tuning knobs, past the probe ceiling.
type ExhaustiveUpdate struct{}

// Update applies a step controlled by nine schedule parameters.
func (ExhaustiveUpdate) Update(iterate []float64, stepSize float64, gradient []float64, a, b, c, d, e, f, g, h, i float64) {
	_ = []float64{a, b, c, d, e, f, g, h, i}
	for j := range iterate {
		iterate[j] -= stepSize * gradient[j]
	}
}
