package village3d

import (
	"log/slog"
	"time"
)

// TransitionController animates the camera position and the look-at target
// independently towards a CameraTarget.
type TransitionController struct {
	position *Tween
	lookAt   *Tween
	easing   EasingFunc
}

// NewTransitionController binds the controller to the live camera position and
// the live look-at target. Both are mutated in place by Tick.
func NewTransitionController(position, lookAt *Vector3) *TransitionController {
	return &TransitionController{
		position: NewTween(position),
		lookAt:   NewTween(lookAt),
		easing:   EaseCubicInOut,
	}
}

func (tc *TransitionController) SetEasing(easing EasingFunc) {
	if easing == nil {
		easing = EaseCubicInOut
	}
	tc.easing = easing
}

// BeginTransition cancels any running transition and starts a new one from the
// current interpolated values, so a retarget never snaps.
func (tc *TransitionController) BeginTransition(target CameraTarget, duration time.Duration, now time.Time) {
	tc.position.Update(now)
	tc.lookAt.Update(now)
	tc.position.Stop()
	tc.lookAt.Stop()

	tc.position.Start(target.Position, now, duration, tc.easing)
	tc.lookAt.Start(target.LookAt, now, duration, tc.easing)
	slog.Debug("Camera transition started", "position", target.Position, "lookAt", target.LookAt, "duration", duration)
}

// Tick advances both interpolations to now.
func (tc *TransitionController) Tick(now time.Time) {
	tc.position.Update(now)
	tc.lookAt.Update(now)
}

// Running reports whether either axis is still interpolating.
func (tc *TransitionController) Running() bool {
	return tc.position.State() == TweenRunning || tc.lookAt.State() == TweenRunning
}

func (tc *TransitionController) PositionState() TweenState {
	return tc.position.State()
}

func (tc *TransitionController) LookAtState() TweenState {
	return tc.lookAt.State()
}

// Target returns the destination of the most recent transition.
func (tc *TransitionController) Target() CameraTarget {
	return CameraTarget{Position: tc.position.Target(), LookAt: tc.lookAt.Target()}
}
