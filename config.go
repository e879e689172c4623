package village3d

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Asset      AssetConfig      `yaml:"asset"`
	Markers    []Marker         `yaml:"markers"`
	Resolver   ResolverSpec     `yaml:"resolver"`
	Home       CameraTarget     `yaml:"home"`
	Transition TransitionConfig `yaml:"transition"`
	Controls   ControlsConfig   `yaml:"controls"`
	Window     WindowConfig     `yaml:"window"`
	View       ViewConfig       `yaml:"view"`
}

type AssetConfig struct {
	Path    string `yaml:"path"`
	AuxPath string `yaml:"aux_path"`
	// Scale is applied uniformly to the loaded asset root and to resolved
	// points of interest.
	Scale float64 `yaml:"scale"`
	Watch bool    `yaml:"watch"`
}

type ResolverSpec struct {
	Mode         string  `yaml:"mode"`
	LookAtOffset Vector3 `yaml:"look_at_offset"`
	Center       Vector3 `yaml:"center"`
	Closeness    float64 `yaml:"closeness"`
}

type TransitionConfig struct {
	DurationMS int    `yaml:"duration_ms"`
	Easing     string `yaml:"easing"`
	Fallback   string `yaml:"fallback"`
}

type ControlsConfig struct {
	MinDistance    float64 `yaml:"min_distance"`
	MaxDistance    float64 `yaml:"max_distance"`
	MinPolarDeg    float64 `yaml:"min_polar_deg"`
	MaxPolarDeg    float64 `yaml:"max_polar_deg"`
	RotateSpeed    float64 `yaml:"rotate_speed"`
	ZoomSpeed      float64 `yaml:"zoom_speed"`
	FieldOfViewDeg float64 `yaml:"fov_deg"`
}

type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

type ViewConfig struct {
	Background string  `yaml:"background"`
	FogNear    float64 `yaml:"fog_near"`
	FogFar     float64 `yaml:"fog_far"`
	ShowLabels bool    `yaml:"show_labels"`

	// Screenshots taken with P are written here as WebP.
	ScreenshotDir   string  `yaml:"screenshot_dir"`
	ScreenshotScale float64 `yaml:"screenshot_scale"`
}

// DefaultConfig matches the village scene: the asset is authored at 1/0.03 of
// world size and the camera starts above and in front of the origin.
func DefaultConfig() Config {
	return Config{
		Asset: AssetConfig{
			Path:    "models/map_collection.glb",
			AuxPath: "models/draco/",
			Scale:   0.03,
		},
		Markers: []Marker{MarkerAnchor, MarkerCamPos, MarkerGlow},
		Resolver: ResolverSpec{
			Mode:      ModeDirect.String(),
			Center:    NewVector3(0, 3, 3),
			Closeness: 0.5,
		},
		Home: CameraTarget{
			Position: NewVector3(0, 3, 3),
			LookAt:   Vector3{},
		},
		Transition: TransitionConfig{
			DurationMS: 2000,
			Easing:     "cubic-in-out",
			Fallback:   FallbackKeep.String(),
		},
		Controls: ControlsConfig{
			MinDistance:    0.1,
			MaxDistance:    50,
			MinPolarDeg:    0,
			MaxPolarDeg:    180,
			RotateSpeed:    0.005,
			ZoomSpeed:      0.1,
			FieldOfViewDeg: 75,
		},
		Window: WindowConfig{
			Width:  640,
			Height: 480,
			Title:  "village3d",
		},
		View: ViewConfig{
			Background:      "#bbb4c2",
			FogNear:         1,
			FogFar:          18,
			ShowLabels:      true,
			ScreenshotDir:   "screenshots",
			ScreenshotScale: 1,
		},
	}
}

// LoadConfig reads a YAML file over the defaults. Fields missing from the file
// keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: load %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Asset.Scale <= 0 {
		errs = append(errs, fmt.Errorf("asset.scale must be positive, got %v", c.Asset.Scale))
	}
	if _, err := ParseResolveMode(c.Resolver.Mode); err != nil {
		errs = append(errs, fmt.Errorf("resolver.mode: %w", err))
	}
	if c.Resolver.Closeness < 0 || c.Resolver.Closeness > 1 {
		errs = append(errs, fmt.Errorf("resolver.closeness must be within [0,1], got %v", c.Resolver.Closeness))
	}
	if c.Transition.DurationMS < 0 {
		errs = append(errs, fmt.Errorf("transition.duration_ms must not be negative"))
	}
	if _, err := ParseEasing(c.Transition.Easing); err != nil {
		errs = append(errs, fmt.Errorf("transition.easing: %w", err))
	}
	if _, err := ParseFallbackPolicy(c.Transition.Fallback); err != nil {
		errs = append(errs, fmt.Errorf("transition.fallback: %w", err))
	}
	if c.View.ScreenshotScale <= 0 || c.View.ScreenshotScale > 1 {
		errs = append(errs, fmt.Errorf("view.screenshot_scale must be within (0,1], got %v", c.View.ScreenshotScale))
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height))
	}
	return errors.Join(errs...)
}

// ResolverConfig converts the YAML resolver settings. Validate must have passed.
func (c Config) ResolverConfig() ResolverConfig {
	mode, _ := ParseResolveMode(c.Resolver.Mode)
	return ResolverConfig{
		Mode:         mode,
		Scale:        c.Asset.Scale,
		LookAtOffset: c.Resolver.LookAtOffset,
		Home:         c.Home,
		Center:       c.Resolver.Center,
		Closeness:    c.Resolver.Closeness,
	}
}

func (c Config) TransitionDuration() time.Duration {
	return time.Duration(c.Transition.DurationMS) * time.Millisecond
}
