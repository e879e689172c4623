package village3d

import (
	"errors"
	"fmt"
)

// ItemID selects a point of interest. Zero is the home view.
type ItemID int

const HomeItem ItemID = 0

// Token is the zero-padded label fragment that authored node names carry for id.
func (id ItemID) Token() string {
	return fmt.Sprintf("%02d", int(id))
}

// CameraTarget is the destination state of a camera transition.
type CameraTarget struct {
	Position Vector3 `yaml:"position"`
	LookAt   Vector3 `yaml:"look_at"`
}

var ErrPointNotFound = errors.New("point of interest not found")

// ResolveMode selects how the camera position of a point of interest is found.
type ResolveMode int

const (
	// ModeDirect reads the camera position from a CAMPOS marker.
	ModeDirect ResolveMode = iota
	// ModeDerived places the camera between a fixed center and the anchor.
	ModeDerived
)

func (m ResolveMode) String() string {
	switch m {
	case ModeDirect:
		return "direct"
	case ModeDerived:
		return "derived"
	}
	return fmt.Sprintf("ResolveMode(%d)", int(m))
}

func ParseResolveMode(s string) (ResolveMode, error) {
	switch s {
	case "direct", "":
		return ModeDirect, nil
	case "derived":
		return ModeDerived, nil
	}
	return 0, fmt.Errorf("unknown resolve mode %q", s)
}

type ResolverConfig struct {
	Mode ResolveMode
	// Scale converts asset units to world units.
	Scale float64
	// LookAtOffset is added to the scaled anchor position.
	LookAtOffset Vector3
	// Home is returned for HomeItem.
	Home CameraTarget
	// Center and Closeness drive ModeDerived.
	Center    Vector3
	Closeness float64
}

type Resolver struct {
	cfg ResolverConfig
}

func NewResolver(cfg ResolverConfig) *Resolver {
	cfg.Closeness = clampUnit(cfg.Closeness)
	return &Resolver{cfg: cfg}
}

func (r *Resolver) Config() ResolverConfig {
	return r.cfg
}

// Resolve converts an item id into a camera target using the index. When a
// marker is missing the affected vector stays at zero and the returned error
// wraps ErrPointNotFound; the target is still returned so callers can choose
// how to degrade.
func (r *Resolver) Resolve(id ItemID, idx *SpatialIndex) (CameraTarget, error) {
	if id == HomeItem {
		return r.cfg.Home, nil
	}
	token := id.Token()

	var target CameraTarget
	var missing []Marker

	anchor, ok := idx.Last(token, string(MarkerAnchor))
	if ok {
		target.LookAt = anchor.Position.Scale(r.cfg.Scale).Add(r.cfg.LookAtOffset)
	} else {
		missing = append(missing, MarkerAnchor)
	}

	switch r.cfg.Mode {
	case ModeDerived:
		if ok {
			target.Position = Derive(r.cfg.Center, target.LookAt, r.cfg.Closeness)
		}
	default:
		if campos, found := idx.Last(token, string(MarkerCamPos)); found {
			target.Position = campos.Position.Scale(r.cfg.Scale)
		} else {
			missing = append(missing, MarkerCamPos)
		}
	}

	if len(missing) > 0 {
		return target, fmt.Errorf("item %s: missing %v: %w", token, missing, ErrPointNotFound)
	}
	return target, nil
}

// Derive returns center + k*(lookAt - center).
func Derive(center, lookAt Vector3, k float64) Vector3 {
	return center.Lerp(lookAt, k)
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
