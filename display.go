package vkframe

import (
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Window is the part of the windowing system the backend needs: the
// instance extensions for presenting, a native surface and the current
// framebuffer size in pixels.
type Window interface {
	RequiredInstanceExtensions() []string
	CreateSurface(instance vk.Instance) (vk.Surface, error)
	FramebufferSize() (width, height int)
}

// InitGLFW initializes glfw and points the Vulkan loader at it.
// It must be called from the main thread before any other call.
func InitGLFW() error {
	if err := glfw.Init(); err != nil {
		return errors.Wrap(err, "glfw init")
	}
	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())
	if err := vk.Init(); err != nil {
		glfw.Terminate()
		return errors.Wrap(err, "vulkan loader init")
	}
	return nil
}

// TerminateGLFW shuts glfw down. Call it last, from the main thread.
func TerminateGLFW() {
	glfw.Terminate()
}

// GLFWWindow adapts a glfw window created with the NoAPI client hint.
type GLFWWindow struct {
	*glfw.Window
}

// NewGLFWWindow opens a resizable window without a GL context.
func NewGLFWWindow(width, height int, title string) (*GLFWWindow, error) {
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	w, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create window")
	}
	return &GLFWWindow{Window: w}, nil
}

func (w *GLFWWindow) RequiredInstanceExtensions() []string {
	return w.GetRequiredInstanceExtensions()
}

func (w *GLFWWindow) CreateSurface(instance vk.Instance) (vk.Surface, error) {
	ptr, err := w.CreateWindowSurface(instance, nil)
	if err != nil {
		return vk.NullSurface, errors.Wrap(err, "create window surface")
	}
	return vk.SurfaceFromPointer(ptr), nil
}

func (w *GLFWWindow) FramebufferSize() (int, int) {
	return w.GetFramebufferSize()
}

// Attach forwards framebuffer resizes to ctx.
func (w *GLFWWindow) Attach(ctx *Context) {
	w.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		ctx.OnWindowResize()
	})
}
