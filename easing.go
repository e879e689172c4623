package village3d

import "fmt"

// EasingFunc maps linear progress in [0,1] to eased progress.
type EasingFunc func(k float64) float64

func EaseLinear(k float64) float64 {
	return clampUnit(k)
}

func EaseQuadraticInOut(k float64) float64 {
	k = clampUnit(k)
	if k < 0.5 {
		return 2 * k * k
	}
	k = -2*k + 2
	return 1 - k*k/2
}

// EaseCubicInOut accelerates through the first half and decelerates
// symmetrically through the second.
func EaseCubicInOut(k float64) float64 {
	k = clampUnit(k)
	if k < 0.5 {
		return 4 * k * k * k
	}
	k = -2*k + 2
	return 1 - k*k*k/2
}

// ParseEasing looks up an easing curve by its config name.
func ParseEasing(name string) (EasingFunc, error) {
	switch name {
	case "", "cubic-in-out":
		return EaseCubicInOut, nil
	case "quadratic-in-out":
		return EaseQuadraticInOut, nil
	case "linear":
		return EaseLinear, nil
	}
	return nil, fmt.Errorf("unknown easing %q", name)
}
