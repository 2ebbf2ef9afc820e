package window

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/go-gl/glfw/v3.3/glfw"
)

type Key int

const (
	KeyNone Key = iota
	KeyToggle
	KeyScatter
	KeyAssemble
	KeyDismiss
	KeyQuit
)

var keymap = map[glfw.Key]Key{
	glfw.KeySpace:  KeyToggle,
	glfw.KeyS:      KeyScatter,
	glfw.KeyT:      KeyAssemble,
	glfw.KeyEnter:  KeyDismiss,
	glfw.KeyEscape: KeyQuit,
	glfw.KeyQ:      KeyQuit,
}

// Window is a GLFW window with a 4.1 core context made current on the
// calling thread, which must stay locked for its lifetime.
type Window struct {
	win *glfw.Window

	mu      sync.Mutex
	keys    []Key
	dropped []string
}

func New(title string, width, height int) (*Window, error) {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialise glfw: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Samples, 4)

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	win.MakeContextCurrent()
	glfw.SwapInterval(1)

	w := &Window{win: win}
	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		if k, ok := keymap[key]; ok {
			w.mu.Lock()
			w.keys = append(w.keys, k)
			w.mu.Unlock()
		}
	})
	win.SetDropCallback(func(_ *glfw.Window, names []string) {
		w.mu.Lock()
		w.dropped = append(w.dropped, names...)
		w.mu.Unlock()
	})
	return w, nil
}

// GetSize returns the framebuffer size in pixels.
func (w *Window) GetSize() (int, int) {
	return w.win.GetFramebufferSize()
}

// PixelRatio is framebuffer pixels per window coordinate.
func (w *Window) PixelRatio() float32 {
	fw, _ := w.win.GetFramebufferSize()
	ww, _ := w.win.GetSize()
	if ww == 0 {
		return 1
	}
	return float32(fw) / float32(ww)
}

func (w *Window) ShouldClose() bool {
	return w.win.ShouldClose()
}

func (w *Window) Close() {
	w.win.SetShouldClose(true)
}

func (w *Window) SwapBuffers() {
	w.win.SwapBuffers()
}

func (w *Window) PollEvents() {
	glfw.PollEvents()
}

// Time is seconds since the window was created.
func (w *Window) Time() float64 {
	return glfw.GetTime()
}

// TakeKeys returns key presses since the last call.
func (w *Window) TakeKeys() []Key {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := w.keys
	w.keys = nil
	return out
}

// TakeDropped returns paths of files dropped on the window since the last call.
func (w *Window) TakeDropped() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := w.dropped
	w.dropped = nil
	return out
}

func (w *Window) Destroy() {
	w.win.Destroy()
	glfw.Terminate()
}
