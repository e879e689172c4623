package village3d

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// FallbackPolicy decides what SelectItem does when a point of interest cannot be
// resolved.
type FallbackPolicy int

const (
	// FallbackKeep leaves the camera where it is.
	FallbackKeep FallbackPolicy = iota
	// FallbackHome moves to the home view.
	FallbackHome
	// FallbackZero moves to the partially resolved target, with missing parts at
	// the origin.
	FallbackZero
)

func (p FallbackPolicy) String() string {
	switch p {
	case FallbackKeep:
		return "keep"
	case FallbackHome:
		return "home"
	case FallbackZero:
		return "zero"
	}
	return fmt.Sprintf("FallbackPolicy(%d)", int(p))
}

func ParseFallbackPolicy(s string) (FallbackPolicy, error) {
	switch s {
	case "keep", "":
		return FallbackKeep, nil
	case "home":
		return FallbackHome, nil
	case "zero":
		return FallbackZero, nil
	}
	return 0, fmt.Errorf("unknown fallback policy %q", s)
}

// SceneContext owns everything the point of interest navigation needs: the
// scene graph, camera, orbit controls, spatial index and transitions. It is not
// safe for concurrent use; all calls must come from the frame loop.
type SceneContext struct {
	cfg      Config
	loader   AssetLoader
	scene    *Scene
	camera   *Camera
	controls *OrbitControls
	resolver *Resolver
	trans    *TransitionController
	driver   *FrameDriver
	fallback FallbackPolicy
	now      func() time.Time

	index      *SpatialIndex
	assetSlot  int
	pending    <-chan LoadResult
	loads      int
	loadErr    error
	selected   ItemID
	onLoadErr  func(error)
	onLoaded   func(*SpatialIndex)
	cancelLoad context.CancelFunc
}

type Option func(*SceneContext)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(sc *SceneContext) {
		sc.now = now
	}
}

// WithLoadErrorHandler is called on the frame loop when an asset load fails.
func WithLoadErrorHandler(fn func(error)) Option {
	return func(sc *SceneContext) {
		sc.onLoadErr = fn
	}
}

// WithLoadedHandler is called on the frame loop after a load completed and the
// index was rebuilt.
func WithLoadedHandler(fn func(*SpatialIndex)) Option {
	return func(sc *SceneContext) {
		sc.onLoaded = fn
	}
}

func NewSceneContext(cfg Config, loader AssetLoader, renderer Renderer, opts ...Option) (*SceneContext, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	easing, _ := ParseEasing(cfg.Transition.Easing)
	fallback, _ := ParseFallbackPolicy(cfg.Transition.Fallback)

	cam := NewCamera(cfg.Home.Position.X, cfg.Home.Position.Y, cfg.Home.Position.Z)
	cam.Aspect = float64(cfg.Window.Width) / float64(cfg.Window.Height)
	if cfg.Controls.FieldOfViewDeg > 0 {
		cam.FOV = cfg.Controls.FieldOfViewDeg
	}

	controls := NewOrbitControls(cam)
	controls.Target = cfg.Home.LookAt
	controls.MinDistance = cfg.Controls.MinDistance
	if cfg.Controls.MaxDistance > 0 {
		controls.MaxDistance = cfg.Controls.MaxDistance
	}
	if cfg.Controls.MaxPolarDeg > cfg.Controls.MinPolarDeg {
		controls.SetPolarLimitsDegrees(cfg.Controls.MinPolarDeg, cfg.Controls.MaxPolarDeg)
	}

	trans := NewTransitionController(&cam.Position, &controls.Target)
	trans.SetEasing(easing)

	sc := &SceneContext{
		cfg:       cfg,
		loader:    loader,
		scene:     NewScene(),
		camera:    cam,
		controls:  controls,
		resolver:  NewResolver(cfg.ResolverConfig()),
		trans:     trans,
		fallback:  fallback,
		now:       time.Now,
		index:     &SpatialIndex{},
		assetSlot: -1,
	}
	sc.driver = &FrameDriver{Transitions: trans, Controls: controls, Renderer: renderer}
	for _, o := range opts {
		o(sc)
	}
	return sc, nil
}

// InitializeScene places the camera at the home view and starts loading the
// configured asset in the background. Frames keep rendering while it loads.
func (sc *SceneContext) InitializeScene(ctx context.Context) {
	sc.camera.Position = sc.cfg.Home.Position
	sc.controls.Target = sc.cfg.Home.LookAt
	sc.camera.LookAt(sc.controls.Target)
	sc.startLoad(ctx)
}

// Reload starts a fresh load of the asset. The current index stays in use until
// the new load completes.
func (sc *SceneContext) Reload(ctx context.Context) {
	slog.Info("Reloading asset", "path", sc.cfg.Asset.Path)
	sc.startLoad(ctx)
}

func (sc *SceneContext) startLoad(ctx context.Context) {
	if sc.cancelLoad != nil {
		sc.cancelLoad()
	}
	ctx, cancel := context.WithCancel(ctx)
	sc.cancelLoad = cancel
	sc.pending = LoadAsync(ctx, sc.loader, sc.cfg.Asset.Path, sc.cfg.Asset.AuxPath)
}

// SelectItem resolves id and starts a transition to it. When the point cannot be
// found the fallback policy decides the camera's behaviour and the lookup error
// is returned.
func (sc *SceneContext) SelectItem(id ItemID, duration time.Duration) error {
	target, err := sc.resolver.Resolve(id, sc.index)
	if err != nil {
		if !errors.Is(err, ErrPointNotFound) {
			return err
		}
		slog.Warn("Point of interest not found", "item", int(id), "fallback", sc.fallback.String(), "error", err)
		switch sc.fallback {
		case FallbackKeep:
			return err
		case FallbackHome:
			target = sc.cfg.Home
		}
	}
	sc.selected = id
	sc.trans.BeginTransition(target, duration, sc.now())
	slog.Info("Camera animation started", "item", int(id), "position", target.Position, "lookAt", target.LookAt)
	return err
}

// OnFrame picks up a finished asset load, then advances transitions, updates the
// controls and renders. The frame duration is not used: transitions are timed by
// the context's clock, so a dropped frame cannot stretch them.
func (sc *SceneContext) OnFrame(_ time.Duration) {
	sc.drainLoad()
	sc.driver.OnFrame(sc.now())
}

func (sc *SceneContext) drainLoad() {
	if sc.pending == nil {
		return
	}
	var res LoadResult
	select {
	case r, ok := <-sc.pending:
		sc.pending = nil
		if !ok {
			return
		}
		res = r
	default:
		return
	}

	if res.Err == nil && res.Root == nil {
		res.Err = fmt.Errorf("load asset %s: %w", res.Path, ErrEmptyAsset)
	}
	if res.Err != nil {
		sc.loadErr = res.Err
		slog.Error("Asset load failed", "path", res.Path, "error", res.Err)
		if sc.onLoadErr != nil {
			sc.onLoadErr(res.Err)
		}
		return
	}

	res.Root.SetUniformScale(sc.cfg.Asset.Scale)
	sc.assetSlot = sc.scene.Replace(sc.assetSlot, res.Root)
	sc.index = BuildSpatialIndex(res.Root, sc.cfg.Markers...)
	sc.loads++
	sc.loadErr = nil
	slog.Info("Asset loaded", "path", res.Path, "markers", sc.index.Len(), "duration", res.Duration)
	if sc.onLoaded != nil {
		sc.onLoaded(sc.index)
	}
}

func (sc *SceneContext) Camera() *Camera {
	return sc.camera
}

func (sc *SceneContext) Controls() *OrbitControls {
	return sc.controls
}

func (sc *SceneContext) Transitions() *TransitionController {
	return sc.trans
}

func (sc *SceneContext) Scene() *Scene {
	return sc.scene
}

func (sc *SceneContext) Config() Config {
	return sc.cfg
}

func (sc *SceneContext) Index() *SpatialIndex {
	return sc.index
}

// Loaded reports whether at least one asset load has completed.
func (sc *SceneContext) Loaded() bool {
	return sc.loads > 0
}

// Loading reports whether a load is in flight.
func (sc *SceneContext) Loading() bool {
	return sc.pending != nil
}

func (sc *SceneContext) LoadErr() error {
	return sc.loadErr
}

func (sc *SceneContext) Selected() ItemID {
	return sc.selected
}

// WorldMarker is an indexed marker converted to world units.
type WorldMarker struct {
	Label    string
	Position Vector3
}

// Markers returns every indexed marker in world units.
func (sc *SceneContext) Markers() []WorldMarker {
	entries := sc.index.Entries()
	out := make([]WorldMarker, 0, len(entries))
	for _, e := range entries {
		out = append(out, WorldMarker{Label: e.Label, Position: e.Position.Scale(sc.cfg.Asset.Scale)})
	}
	return out
}

// Highlights returns the GLOW markers of the selected item in world units. The
// home view has none.
func (sc *SceneContext) Highlights() []Vector3 {
	if sc.selected == HomeItem {
		return nil
	}
	var out []Vector3
	for _, e := range sc.index.Query(sc.selected.Token(), string(MarkerGlow)) {
		out = append(out, e.Position.Scale(sc.cfg.Asset.Scale))
	}
	return out
}

// Close cancels an in-flight load.
func (sc *SceneContext) Close() {
	if sc.cancelLoad != nil {
		sc.cancelLoad()
		sc.cancelLoad = nil
	}
}
