package village3d

import "time"

// Renderer draws the scene as seen from the camera. It is called once per frame.
type Renderer interface {
	Render(cam *Camera)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(cam *Camera)

func (f RendererFunc) Render(cam *Camera) {
	f(cam)
}

// FrameDriver runs the per-frame sequence: advance transitions, reconcile the
// orbit controls, then render.
type FrameDriver struct {
	Transitions *TransitionController
	Controls    *OrbitControls
	Renderer    Renderer
}

func (fd *FrameDriver) OnFrame(now time.Time) {
	if fd.Transitions != nil {
		fd.Transitions.Tick(now)
	}
	if fd.Controls != nil {
		fd.Controls.Update()
	}
	if fd.Renderer != nil && fd.Controls != nil {
		fd.Renderer.Render(fd.Controls.Camera())
	}
}
