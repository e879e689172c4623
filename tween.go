package village3d

import "time"

type TweenState int

const (
	TweenIdle TweenState = iota
	TweenRunning
	TweenCompleted
)

func (s TweenState) String() string {
	switch s {
	case TweenIdle:
		return "idle"
	case TweenRunning:
		return "running"
	case TweenCompleted:
		return "completed"
	}
	return "unknown"
}

// Tween interpolates one Vector3 over wall-clock time and writes the result into
// the bound value on every Update.
type Tween struct {
	value     *Vector3
	start     Vector3
	target    Vector3
	startTime time.Time
	duration  time.Duration
	easing    EasingFunc
	state     TweenState
}

func NewTween(value *Vector3) *Tween {
	return &Tween{value: value, easing: EaseCubicInOut}
}

// Start begins interpolating from the bound value's current contents towards
// target. A running interpolation is replaced.
func (t *Tween) Start(target Vector3, now time.Time, duration time.Duration, easing EasingFunc) {
	if easing == nil {
		easing = EaseCubicInOut
	}
	if duration < 0 {
		duration = 0
	}
	t.start = *t.value
	t.target = target
	t.startTime = now
	t.duration = duration
	t.easing = easing
	t.state = TweenRunning
}

// Stop freezes the tween at whatever value it last wrote.
func (t *Tween) Stop() {
	if t.state == TweenRunning {
		t.state = TweenIdle
	}
}

// Value returns the interpolated value at now without touching the bound value.
func (t *Tween) Value(now time.Time) Vector3 {
	if t.state == TweenIdle {
		return *t.value
	}
	return t.start.Lerp(t.target, t.easing(t.progress(now)))
}

func (t *Tween) progress(now time.Time) float64 {
	if t.duration <= 0 {
		return 1
	}
	elapsed := now.Sub(t.startTime)
	if elapsed <= 0 {
		return 0
	}
	if elapsed >= t.duration {
		return 1
	}
	return float64(elapsed) / float64(t.duration)
}

// Update advances the tween to now and writes the result into the bound value.
// After completion the value holds exactly at the target and further calls are
// no-ops.
func (t *Tween) Update(now time.Time) Vector3 {
	if t.state != TweenRunning {
		return *t.value
	}
	if t.progress(now) >= 1 {
		*t.value = t.target
		t.state = TweenCompleted
		return t.target
	}
	*t.value = t.Value(now)
	return *t.value
}

func (t *Tween) State() TweenState {
	return t.state
}

func (t *Tween) Target() Vector3 {
	return t.target
}
