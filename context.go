package vkframe

import (
	"runtime"

	vk "github.com/vulkan-go/vulkan"
)

// Context owns every object of the backend. There is one per window and
// it is passed explicitly to whatever needs the device.
//
// All methods must be called from the thread that called Init.
type Context struct {
	cfg    Config
	drv    driver
	window Window

	instance  *Instance
	surface   vk.Surface
	physical  *PhysicalDeviceInfo
	device    *LogicalDevice
	swapchain *Swapchain
	frames    *FrameScheduler

	// fatal receives driver failures raised on the frame path.
	fatal func(error)
}

// New returns an uninitialized context for window.
func New(cfg Config, window Window) *Context {
	return newContext(cfg, window, vkDriver{})
}

func newContext(cfg Config, window Window, drv driver) *Context {
	return &Context{
		cfg:     cfg,
		drv:     drv,
		window:  window,
		surface: vk.NullSurface,
		fatal: func(err error) {
			Fatal(err)
		},
	}
}

// Init creates the instance, surface, device, swapchain and frame slots.
// Configuration problems come back as errors wrapping one of the package
// sentinels; the caller is expected to pass them to Fatal. On failure
// everything created so far is released.
func (c *Context) Init() (err error) {
	defer func() {
		if err != nil {
			c.Shutdown()
		}
	}()
	defer checkErr(&err)

	if err := c.cfg.Validate(); err != nil {
		return err
	}

	c.instance, err = newInstance(c.drv, c.cfg, c.window.RequiredInstanceExtensions())
	if err != nil {
		return err
	}
	c.surface, err = c.window.CreateSurface(c.instance.Handle)
	if err != nil {
		return err
	}
	c.physical, err = selectPhysicalDevice(c.drv, c.instance.Handle, c.surface)
	if err != nil {
		return err
	}
	c.device, err = newLogicalDevice(c.drv, c.physical, c.cfg)
	if err != nil {
		return err
	}

	c.swapchain = newSwapchain(c.device, c.surface, c.window, c.cfg)
	c.swapchain.Invalidate()

	c.frames, err = newFrameScheduler(c.device, c.swapchain, c.cfg.ClearColor)
	if err != nil {
		return err
	}
	Logger().Info("vkframe: context ready",
		"device", c.physical.Name,
		"swapchain", c.swapchain.State(),
		"samples", c.swapchain.Samples,
		"framesInFlight", FramesInFlight)
	return nil
}

// Shutdown waits for the GPU and destroys everything in reverse creation
// order. It is safe on a partially initialized context and to call twice.
func (c *Context) Shutdown() {
	if c.device != nil && c.device.Handle != nil {
		if ret := c.drv.DeviceWaitIdle(c.device.Handle); isError(ret) {
			Logger().Warn("vkframe: wait idle on shutdown", "err", NewError(ret))
		}
	}
	if c.frames != nil {
		c.frames.destroy()
		c.frames = nil
	}
	if c.swapchain != nil {
		c.swapchain.Destroy()
		c.swapchain = nil
	}
	if c.device != nil {
		c.device.Destroy()
		c.device = nil
	}
	if c.instance != nil {
		if c.surface != vk.NullSurface {
			c.drv.DestroySurface(c.instance.Handle, c.surface)
			c.surface = vk.NullSurface
		}
		c.instance.Destroy()
		c.instance = nil
		Logger().Info("vkframe: shut down")
	}
}

// guard turns an error panic from the frame path into a call of the fatal
// hook. Assertion panics and runtime errors keep unwinding.
func (c *Context) guard() {
	v := recover()
	if v == nil {
		return
	}
	err, ok := v.(error)
	if _, rt := v.(runtime.Error); !ok || rt {
		panic(v)
	}
	c.fatal(err)
}

func (c *Context) mustInit() {
	if c.frames == nil {
		panic(ErrNotInitialized)
	}
}

// BeginFrame opens the next frame. When it returns false nothing may be
// recorded, but EndFrame must still be called.
func (c *Context) BeginFrame() (ok bool) {
	c.mustInit()
	defer c.guard()
	return c.frames.BeginFrame()
}

// EndFrame submits and presents the open frame.
func (c *Context) EndFrame() {
	c.mustInit()
	defer c.guard()
	c.frames.EndFrame()
}

// CommandBuffer is the open frame's command buffer, already inside the main
// render pass. It is nil when no frame is being recorded.
func (c *Context) CommandBuffer() vk.CommandBuffer {
	if c.frames == nil || !c.frames.Recording() {
		return nil
	}
	return c.frames.Slot().Cmd
}

// Execute records fn into a one-shot command buffer on role and waits for
// the GPU to finish it.
func (c *Context) Execute(role QueueRole, fn func(cmd vk.CommandBuffer)) {
	c.mustInit()
	defer c.guard()
	c.device.Execute(role, fn)
}

// OnWindowResize schedules a swapchain rebuild before the next acquire.
func (c *Context) OnWindowResize() {
	if c.swapchain != nil {
		c.swapchain.OnWindowResize()
	}
}

// SetVerticalSync changes the requested vsync setting. It takes effect at
// the next swapchain rebuild.
func (c *Context) SetVerticalSync(enabled bool) {
	c.cfg.VSync = enabled
	if c.swapchain != nil {
		c.swapchain.SetVerticalSync(enabled)
	}
}

// CurrentFrame is the frame slot index in [0, FramesInFlight), for callers
// keeping their own per-frame resources.
func (c *Context) CurrentFrame() int {
	if c.frames == nil {
		return 0
	}
	return c.frames.CurrentFrame()
}

func (c *Context) Swapchain() *Swapchain {
	return c.swapchain
}

func (c *Context) Device() *LogicalDevice {
	return c.device
}

func (c *Context) PhysicalDevice() *PhysicalDeviceInfo {
	return c.physical
}

func (c *Context) Config() Config {
	return c.cfg
}

// Stats returns the frame counters.
func (c *Context) Stats() FrameStats {
	if c.frames == nil {
		return FrameStats{}
	}
	return c.frames.Stats()
}

// SetFatalHandler replaces what happens when a driver call on the frame
// path fails. The default logs and exits. A nil fn restores the default.
func (c *Context) SetFatalHandler(fn func(error)) {
	if fn == nil {
		fn = func(err error) { Fatal(err) }
	}
	c.fatal = fn
}
