package view

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/smasonuk/village3d"
)

var digitKeys = []ebiten.Key{
	ebiten.KeyDigit0, ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3, ebiten.KeyDigit4,
	ebiten.KeyDigit5, ebiten.KeyDigit6, ebiten.KeyDigit7, ebiten.KeyDigit8, ebiten.KeyDigit9,
}

// Game hosts a SceneContext in an ebiten window. Digits select points of
// interest, left drag orbits, the wheel zooms, R reloads the asset and P saves
// a screenshot.
type Game struct {
	scene   *village3d.SceneContext
	world   *World
	ctx     context.Context
	watcher *village3d.Watcher

	rotateSpeed  float64
	zoomSpeed    float64
	duration     time.Duration
	lastX, lastY int
	dragged      bool
	capture      bool
	status       string
}

// NewGame builds the scene context with the ebiten world as its renderer.
func NewGame(ctx context.Context, cfg village3d.Config, loader village3d.AssetLoader) (*Game, error) {
	world := NewWorld(nil, cfg)
	sc, err := village3d.NewSceneContext(cfg, loader, world,
		village3d.WithLoadErrorHandler(func(err error) {
			slog.Error("Scene has no points of interest", "error", err)
		}),
	)
	if err != nil {
		return nil, err
	}
	world.SetSource(sc)

	g := &Game{
		scene:       sc,
		world:       world,
		ctx:         ctx,
		rotateSpeed: cfg.Controls.RotateSpeed,
		zoomSpeed:   cfg.Controls.ZoomSpeed,
		duration:    cfg.TransitionDuration(),
	}

	if cfg.Asset.Watch {
		w, err := village3d.NewWatcher(cfg.Asset.Path)
		if err != nil {
			return nil, fmt.Errorf("watch %s: %w", cfg.Asset.Path, err)
		}
		g.watcher = w
	}

	sc.InitializeScene(ctx)
	return g, nil
}

func (g *Game) Scene() *village3d.SceneContext {
	return g.scene
}

func (g *Game) Update() error {
	g.handleKeys()
	g.handleMouse()
	g.handleWatcher()

	g.scene.OnFrame(time.Second / time.Duration(ebiten.TPS()))
	return nil
}

func (g *Game) handleKeys() {
	for i, k := range digitKeys {
		if !inpututil.IsKeyJustPressed(k) {
			continue
		}
		err := g.scene.SelectItem(village3d.ItemID(i), g.duration)
		switch {
		case errors.Is(err, village3d.ErrPointNotFound):
			g.status = fmt.Sprintf("item %02d not found", i)
		case err != nil:
			g.status = err.Error()
		default:
			g.status = fmt.Sprintf("item %02d", i)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.scene.Reload(g.ctx)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.capture = true
	}
}

func (g *Game) handleMouse() {
	controls := g.scene.Controls()
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.dragged = true
		g.lastX, g.lastY = ebiten.CursorPosition()
	}
	if g.dragged {
		x, y := ebiten.CursorPosition()
		controls.Rotate(-float64(x-g.lastX)*g.rotateSpeed, -float64(y-g.lastY)*g.rotateSpeed)
		g.lastX, g.lastY = x, y
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		g.dragged = false
	}
	if _, wy := ebiten.Wheel(); wy != 0 {
		controls.Zoom(1 - wy*g.zoomSpeed)
	}
}

func (g *Game) handleWatcher() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case name, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			slog.Info("Asset changed", "path", name)
			g.scene.Reload(g.ctx)
		case err, ok := <-g.watcher.Errors:
			if !ok {
				g.watcher = nil
				return
			}
			slog.Warn("Asset watcher error", "error", err)
		default:
			return
		}
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.world.PaintObjects(screen)
	if g.capture {
		g.capture = false
		g.screenshot(screen)
	}

	status := g.status
	switch {
	case g.scene.LoadErr() != nil:
		status = "load failed: " + g.scene.LoadErr().Error()
	case g.scene.Loading() && !g.scene.Loaded():
		status = "loading..."
	}
	ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %0.2f  markers: %d  %s", ebiten.ActualFPS(), g.scene.Index().Len(), status))
}

func (g *Game) screenshot(screen *ebiten.Image) {
	img := image.NewRGBA(screen.Bounds())
	screen.ReadPixels(img.Pix)
	vc := g.scene.Config().View
	path, err := saveScreenshot(vc.ScreenshotDir, img, vc.ScreenshotScale, time.Now())
	if err != nil {
		slog.Error("Screenshot failed", "error", err)
		g.status = "screenshot failed"
		return
	}
	slog.Info("Screenshot saved", "path", path)
	g.status = "saved " + path
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	cfg := g.scene.Config()
	return cfg.Window.Width, cfg.Window.Height
}

// Close stops the watcher and any in-flight load.
func (g *Game) Close() error {
	g.scene.Close()
	if g.watcher != nil {
		return g.watcher.Close()
	}
	return nil
}
