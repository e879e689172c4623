package village3d

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chanLoader hands out whatever the test sends, one root per Load call.
type chanLoader struct {
	roots chan *Node
	errs  chan error
}

func newChanLoader() *chanLoader {
	return &chanLoader{roots: make(chan *Node, 4), errs: make(chan error, 4)}
}

func (l *chanLoader) Load(ctx context.Context, path, auxPath string) (*Node, error) {
	select {
	case r := <-l.roots:
		return r, nil
	case err := <-l.errs:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type countingRenderer struct {
	calls int
	last  Vector3
}

func (r *countingRenderer) Render(cam *Camera) {
	r.calls++
	r.last = cam.Position
}

type sceneFixture struct {
	sc       *SceneContext
	loader   *chanLoader
	renderer *countingRenderer
	clock    *fakeClock
}

func newSceneFixture(t *testing.T, mutate func(*Config), opts ...Option) *sceneFixture {
	t.Helper()
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	f := &sceneFixture{
		loader:   newChanLoader(),
		renderer: &countingRenderer{},
		clock:    newFakeClock(),
	}
	sc, err := NewSceneContext(cfg, f.loader, f.renderer, append([]Option{WithClock(f.clock.Now)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(sc.Close)
	f.sc = sc
	sc.InitializeScene(context.Background())
	return f
}

// frameUntil runs frames without advancing the clock until cond holds.
func (f *sceneFixture) frameUntil(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, func() bool {
		f.sc.OnFrame(0)
		return cond()
	}, 5*time.Second, time.Millisecond)
}

func (f *sceneFixture) load(t *testing.T, root *Node) {
	t.Helper()
	loads := f.sc.loads
	f.loader.roots <- root
	f.frameUntil(t, func() bool { return f.sc.loads > loads })
}

func (f *sceneFixture) settle(d time.Duration) {
	f.clock.Advance(d)
	f.sc.OnFrame(d)
}

func scaled(v Vector3) Vector3 {
	return v.Scale(0.03)
}

func TestNewSceneContextRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Asset.Scale = 0
	_, err := NewSceneContext(cfg, newChanLoader(), nil)
	assert.ErrorContains(t, err, "asset.scale")
}

func TestSceneStartsAtHome(t *testing.T) {
	f := newSceneFixture(t, nil)

	f.sc.OnFrame(0)

	assert.Equal(t, NewVector3(0, 3, 3), f.sc.Camera().Position)
	assert.Equal(t, Vector3{}, f.sc.Controls().Target)
	assert.True(t, f.sc.Loading())
	assert.False(t, f.sc.Loaded())
	assert.Equal(t, 1, f.renderer.calls)
}

func TestSelectBeforeLoadKeepsCamera(t *testing.T) {
	f := newSceneFixture(t, nil)

	err := f.sc.SelectItem(1, time.Second)
	assert.ErrorIs(t, err, ErrPointNotFound)

	f.settle(time.Second)
	assert.Equal(t, NewVector3(0, 3, 3), f.sc.Camera().Position)
	assert.Equal(t, HomeItem, f.sc.Selected())
	assert.False(t, f.sc.Transitions().Running())
}

func TestSelectItemAfterLoad(t *testing.T) {
	var loaded *SpatialIndex
	f := newSceneFixture(t, nil, WithLoadedHandler(func(idx *SpatialIndex) { loaded = idx }))

	f.load(t, villageRoot())
	require.True(t, f.sc.Loaded())
	assert.False(t, f.sc.Loading())
	assert.Same(t, f.sc.Index(), loaded)
	assert.Equal(t, 5, f.sc.Index().Len())

	asset := f.sc.Scene().Child(0)
	require.NotNil(t, asset)
	assert.Equal(t, NewVector3(0.03, 0.03, 0.03), asset.Scale)

	require.NoError(t, f.sc.SelectItem(1, time.Second))
	assert.Equal(t, ItemID(1), f.sc.Selected())

	f.settle(500 * time.Millisecond)
	assert.True(t, f.sc.Transitions().Running())
	mid := f.sc.Camera().Position
	assertVecInDelta(t, NewVector3(0, 3, 3).Lerp(scaled(NewVector3(150, 60, 0)), 0.5), mid)

	f.settle(500 * time.Millisecond)
	assert.Equal(t, scaled(NewVector3(150, 60, 0)), f.sc.Camera().Position)
	assert.Equal(t, scaled(NewVector3(100, 10, -50)), f.sc.Controls().Target)
	assert.Equal(t, f.sc.Controls().Target, f.sc.Camera().Target())
	assert.Equal(t, f.sc.Camera().Position, f.renderer.last)
	assert.False(t, f.sc.Transitions().Running())
}

func TestSelectHomeReturnsToHomeView(t *testing.T) {
	f := newSceneFixture(t, nil)
	f.load(t, villageRoot())

	require.NoError(t, f.sc.SelectItem(3, time.Second))
	f.settle(time.Second)
	require.NoError(t, f.sc.SelectItem(HomeItem, time.Second))
	f.settle(time.Second)

	assert.Equal(t, NewVector3(0, 3, 3), f.sc.Camera().Position)
	assert.Equal(t, Vector3{}, f.sc.Controls().Target)
}

func TestSceneFallbackPolicies(t *testing.T) {
	testCases := []struct {
		fallback   string
		wantPos    Vector3
		wantLookAt Vector3
	}{
		{"keep", scaled(NewVector3(150, 60, 0)), scaled(NewVector3(100, 10, -50))},
		{"home", NewVector3(0, 3, 3), Vector3{}},
		{"zero", Vector3{}, Vector3{}},
	}
	for _, tc := range testCases {
		t.Run(tc.fallback, func(t *testing.T) {
			f := newSceneFixture(t, func(c *Config) { c.Transition.Fallback = tc.fallback })
			f.load(t, villageRoot())
			require.NoError(t, f.sc.SelectItem(1, time.Second))
			f.settle(time.Second)

			err := f.sc.SelectItem(42, time.Second)
			assert.ErrorIs(t, err, ErrPointNotFound)
			f.settle(time.Second)

			assert.Equal(t, tc.wantPos, f.sc.Camera().Position)
			assert.Equal(t, tc.wantLookAt, f.sc.Controls().Target)
		})
	}
}

func TestSceneLoadFailure(t *testing.T) {
	var handled error
	f := newSceneFixture(t, nil, WithLoadErrorHandler(func(err error) { handled = err }))
	boom := errors.New("corrupt file")

	f.loader.errs <- boom
	f.frameUntil(t, func() bool { return f.sc.LoadErr() != nil })

	assert.ErrorIs(t, f.sc.LoadErr(), boom)
	assert.ErrorIs(t, handled, boom)
	assert.False(t, f.sc.Loaded())
	assert.Zero(t, f.sc.Index().Len())

	// the frame loop keeps going and a reload can recover
	f.sc.Reload(context.Background())
	f.load(t, villageRoot())
	assert.NoError(t, f.sc.LoadErr())
	assert.True(t, f.sc.Loaded())
}

func TestSceneDerivedTargetNearAnchor(t *testing.T) {
	f := newSceneFixture(t, func(c *Config) {
		c.Resolver.Mode = ModeDerived.String()
		c.Resolver.Closeness = 0.995
	})
	f.load(t, villageRoot())
	want, err := NewResolver(f.sc.Config().ResolverConfig()).Resolve(1, f.sc.Index())
	require.NoError(t, err)
	require.Less(t, want.Position.DistanceTo(want.LookAt), f.sc.Controls().MinDistance)

	require.NoError(t, f.sc.SelectItem(1, time.Second))
	f.settle(time.Second)
	f.settle(time.Second)

	assert.Equal(t, want.Position, f.sc.Camera().Position)
	assert.Equal(t, want.LookAt, f.sc.Controls().Target)
}

func TestSceneLoaderWithoutRoot(t *testing.T) {
	var handled error
	cfg := DefaultConfig()
	sc, err := NewSceneContext(cfg, AssetLoaderFunc(func(context.Context, string, string) (*Node, error) {
		return nil, nil
	}), nil, WithLoadErrorHandler(func(err error) { handled = err }))
	require.NoError(t, err)
	t.Cleanup(sc.Close)
	sc.InitializeScene(context.Background())

	require.Eventually(t, func() bool {
		assert.NotPanics(t, func() { sc.OnFrame(0) })
		return sc.LoadErr() != nil
	}, 5*time.Second, time.Millisecond)

	assert.ErrorIs(t, sc.LoadErr(), ErrEmptyAsset)
	assert.ErrorIs(t, handled, ErrEmptyAsset)
	assert.False(t, sc.Loaded())
	assert.Empty(t, sc.Scene().Root().Children)
}

func TestSceneReloadReplacesAsset(t *testing.T) {
	f := newSceneFixture(t, nil)
	f.load(t, villageRoot())

	moved := NewNode("village", Vector3{})
	moved.AddChild(NewNode("POI_01_ANCHOR", NewVector3(1, 1, 1)))
	moved.AddChild(NewNode("POI_01_CAMPOS", NewVector3(2, 2, 2)))

	f.sc.Reload(context.Background())
	f.load(t, moved)

	assert.Len(t, f.sc.Scene().Root().Children, 1)
	assert.Same(t, moved, f.sc.Scene().Child(0))
	assert.Equal(t, 2, f.sc.Index().Len())

	require.NoError(t, f.sc.SelectItem(1, time.Second))
	f.settle(time.Second)
	assertVecInDelta(t, scaled(NewVector3(2, 2, 2)), f.sc.Camera().Position)

	err := f.sc.SelectItem(3, time.Second)
	assert.ErrorIs(t, err, ErrPointNotFound, "the old asset's points are gone")
}

func TestSceneMarkersAndHighlights(t *testing.T) {
	f := newSceneFixture(t, nil)
	f.load(t, villageRoot())

	markers := f.sc.Markers()
	require.Len(t, markers, 5)
	assert.Equal(t, "POI_01_ANCHOR", markers[0].Label)
	assert.Equal(t, scaled(NewVector3(100, 10, -50)), markers[0].Position)

	assert.Nil(t, f.sc.Highlights())

	require.NoError(t, f.sc.SelectItem(3, time.Second))
	assert.Equal(t, []Vector3{scaled(NewVector3(-30, 0, 21))}, f.sc.Highlights())

	require.NoError(t, f.sc.SelectItem(1, time.Second))
	assert.Empty(t, f.sc.Highlights())
}

func TestSceneRendersEveryFrame(t *testing.T) {
	f := newSceneFixture(t, nil)
	for i := 0; i < 10; i++ {
		f.settle(time.Second / 60)
	}
	assert.Equal(t, 10, f.renderer.calls)
}

func TestParseFallbackPolicy(t *testing.T) {
	for _, p := range []FallbackPolicy{FallbackKeep, FallbackHome, FallbackZero} {
		got, err := ParseFallbackPolicy(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
	_, err := ParseFallbackPolicy("explode")
	assert.Error(t, err)
}
