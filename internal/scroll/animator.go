package scroll

import "time"

// Scroller reads and writes the vertical scroll position of a page.
type Scroller interface {
	ScrollOffset() (float64, error)
	ScrollTo(offset float64) error
}

// Plan describes a single animated scroll between two offsets.
type Plan struct {
	Start    float64
	Target   float64
	Duration time.Duration
	Steps    int
}

const defaultSteps = 60

// Animator moves a page between scroll offsets along an ease-in-out
// cubic curve sampled at fixed intervals.
type Animator struct {
	Steps int
	Sleep func(time.Duration)
}

// NewAnimator creates an Animator with default settings.
func NewAnimator() *Animator {
	return &Animator{
		Steps: defaultSteps,
		Sleep: time.Sleep,
	}
}

// Animate scrolls from the current offset to target over duration.
// A negative target is clamped to 0; a non-positive duration falls
// back to one second. Exactly Steps+1 positions are issued; the last
// one is forced to the exact target so rounding cannot drift.
func (a *Animator) Animate(s Scroller, target float64, duration time.Duration) error {
	if target < 0 {
		target = 0
	}
	if duration <= 0 {
		duration = time.Second
	}

	start, err := s.ScrollOffset()
	if err != nil {
		return err
	}

	plan := Plan{
		Start:    start,
		Target:   target,
		Duration: duration,
		Steps:    a.Steps,
	}
	return a.run(s, plan)
}

func (a *Animator) run(s Scroller, plan Plan) error {
	interval := plan.Duration / time.Duration(plan.Steps)

	for i := 0; i <= plan.Steps; i++ {
		t := float64(i) / float64(plan.Steps)
		offset := lerp(plan.Start, plan.Target, EaseInOutCubic(t))
		if i == plan.Steps {
			offset = plan.Target
		}
		if err := s.ScrollTo(offset); err != nil {
			return err
		}
		if i < plan.Steps {
			a.Sleep(interval)
		}
	}
	return nil
}

// TargetOffset computes the absolute scroll offset that places an
// element with the given viewport-relative top in the upper middle of
// the viewport, rather than flush at the top. Never negative.
func TargetOffset(current, boxTop, viewportHeight float64) float64 {
	target := current + boxTop - viewportHeight/4
	if target < 0 {
		return 0
	}
	return target
}

// lerp performs linear interpolation between a and b
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// EaseInOutCubic applies smooth easing function
func EaseInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - pow(-2*t+2, 3)/2
}

// pow calculates x^n
func pow(x float64, n int) float64 {
	result := 1.0
	for i := 0; i < n; i++ {
		result *= x
	}
	return result
}
