package vkframe

import (
	"fmt"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// SwapchainState tracks the rebuild state machine.
type SwapchainState int

const (
	SwapchainUninitialized SwapchainState = iota
	SwapchainValid
	// SwapchainSuspended means the last Invalidate computed a zero extent,
	// usually a minimized window. Nothing can be rendered until it grows.
	SwapchainSuspended
	SwapchainDestroyed
)

func (s SwapchainState) String() string {
	switch s {
	case SwapchainUninitialized:
		return "uninitialized"
	case SwapchainValid:
		return "valid"
	case SwapchainSuspended:
		return "suspended"
	case SwapchainDestroyed:
		return "destroyed"
	}
	return fmt.Sprintf("SwapchainState(%d)", int(s))
}

// defaultImageCount is used when the surface reports no upper bound.
const defaultImageCount = 3

// SwapchainImage is one driver-owned presentable image and the resources
// built on it.
type SwapchainImage struct {
	Image       vk.Image
	View        vk.ImageView
	Framebuffer vk.Framebuffer
}

// Swapchain is the negotiated set of presentable images together with the
// shared MSAA and depth targets and the main render pass. Everything except
// the requested settings is rebuilt wholesale by Invalidate.
type Swapchain struct {
	Handle      vk.Swapchain
	Format      vk.SurfaceFormat
	PresentMode vk.PresentMode
	Extent      vk.Extent2D
	Images      []SwapchainImage
	RenderPass  vk.RenderPass
	Samples     vk.SampleCountFlagBits
	DepthFormat vk.Format

	// Color is the shared multisampled target, nil when Samples is 1.
	Color *Attachment
	Depth *Attachment

	dev        *LogicalDevice
	drv        driver
	surface    vk.Surface
	window     Window
	preferred  vk.Format
	extraUsage vk.ImageUsageFlagBits

	state         SwapchainState
	vsync         bool
	appliedVsync  bool
	resizePending bool
	outOfDate     bool
	invalidations int
}

func newSwapchain(dev *LogicalDevice, surface vk.Surface, window Window, cfg Config) *Swapchain {
	s := &Swapchain{
		Handle:      vk.NullSwapchain,
		Samples:     ChooseSampleCount(dev.physical.Properties.Limits, cfg.MSAASamples),
		DepthFormat: dev.physical.DepthFormat,
		dev:         dev,
		drv:         dev.drv,
		surface:     surface,
		window:      window,
		preferred:   cfg.preferredFormat(),
		vsync:       cfg.VSync,
	}
	if cfg.TransferDst {
		s.extraUsage = vk.ImageUsageTransferDstBit
	}
	return s
}

// State returns the current state of the rebuild state machine.
func (s *Swapchain) State() SwapchainState {
	return s.state
}

// Invalidations counts completed rebuilds, including the first build.
func (s *Swapchain) Invalidations() int {
	return s.invalidations
}

// OnWindowResize records that the window changed size. The rebuild happens
// at the next Invalidate; repeated calls collapse into one.
func (s *Swapchain) OnWindowResize() {
	s.resizePending = true
}

// SetVerticalSync requests FIFO presentation on or off. Frames already
// submitted are unaffected; the mode changes at the next Invalidate.
func (s *Swapchain) SetVerticalSync(enabled bool) {
	s.vsync = enabled
}

// VerticalSync reports the requested setting.
func (s *Swapchain) VerticalSync() bool {
	return s.vsync
}

// NeedsInvalidate reports whether a present failure, a resize or a vsync
// change is waiting to be applied.
func (s *Swapchain) NeedsInvalidate() bool {
	return s.outOfDate || s.resizePending || s.vsync != s.appliedVsync
}

// Viewport covers the whole swapchain extent.
func (s *Swapchain) Viewport() vk.Viewport {
	return vk.Viewport{
		Width:    float32(s.Extent.Width),
		Height:   float32(s.Extent.Height),
		MinDepth: 0.0,
		MaxDepth: 1.0,
	}
}

// RenderArea is the full-extent rectangle used by the main render pass.
func (s *Swapchain) RenderArea() vk.Rect2D {
	return vk.Rect2D{Extent: s.Extent}
}

// Invalidate waits for the device to go idle and rebuilds the swapchain and
// every resource depending on it. A zero extent leaves the swapchain
// suspended with its old handle kept for the next attempt.
func (s *Swapchain) Invalidate() {
	drv, dev := s.drv, s.dev
	phys := dev.physical.Handle

	dev.WaitIdle()
	s.destroyDynamic()

	caps, ret := drv.SurfaceCapabilities(phys, s.surface)
	orPanic(errors.Wrap(NewError(ret), "surface capabilities"))
	formats, ret := drv.SurfaceFormats(phys, s.surface)
	orPanic(errors.Wrap(NewError(ret), "surface formats"))
	modes, ret := drv.SurfacePresentModes(phys, s.surface)
	orPanic(errors.Wrap(NewError(ret), "surface present modes"))

	format, err := ChooseSurfaceFormat(formats, s.preferred)
	orPanic(err)
	mode := ChoosePresentMode(modes, s.vsync)
	width, height := s.window.FramebufferSize()
	extent := ChooseExtent(caps, width, height)

	s.resizePending = false
	s.outOfDate = false
	s.appliedVsync = s.vsync
	if extent.Width == 0 || extent.Height == 0 {
		if s.state != SwapchainSuspended {
			Logger().Info("vulkan: swapchain suspended, surface has zero extent")
		}
		s.state = SwapchainSuspended
		return
	}

	imageCount := ChooseImageCount(caps)
	usage, err := chooseImageUsage(caps.SupportedUsageFlags, s.extraUsage)
	orPanic(err)

	info := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          s.surface,
		MinImageCount:    imageCount,
		ImageFormat:      format.Format,
		ImageColorSpace:  format.ColorSpace,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage:       usage,
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     chooseTransform(caps),
		CompositeAlpha:   ChooseCompositeAlpha(caps.SupportedCompositeAlpha),
		PresentMode:      mode,
		Clipped:          vk.True,
		OldSwapchain:     s.Handle,
	}
	graphics, present := dev.Family(RoleGraphics), dev.Family(RolePresent)
	if graphics != present {
		info.ImageSharingMode = vk.SharingModeConcurrent
		info.QueueFamilyIndexCount = 2
		info.PQueueFamilyIndices = []uint32{graphics, present}
	}

	handle, ret := drv.CreateSwapchain(dev.Handle, &info)
	orPanic(errors.Wrap(NewError(ret), "create swapchain"))
	if s.Handle != vk.NullSwapchain {
		drv.DestroySwapchain(dev.Handle, s.Handle)
	}
	s.Handle = handle
	s.Format = format
	s.PresentMode = mode
	s.Extent = extent

	images, ret := drv.SwapchainImages(dev.Handle, handle)
	orPanic(errors.Wrap(NewError(ret), "swapchain images"))
	dev.Execute(RoleGraphics, func(cmd vk.CommandBuffer) {
		drv.CmdPipelineBarrier(cmd,
			vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit),
			vk.PipelineStageFlags(vk.PipelineStageBottomOfPipeBit),
			presentBarriers(images))
	})

	orPanic(s.buildTargets(images))
	s.state = SwapchainValid
	s.invalidations++

	Logger().Info("vulkan: swapchain built",
		"extent", fmt.Sprintf("%dx%d", extent.Width, extent.Height),
		"images", len(images),
		"rebuild", s.invalidations)
	Logger().Debug("vulkan: swapchain rebuilt",
		"format", format.Format,
		"colorSpace", format.ColorSpace,
		"presentMode", mode,
		"extent", fmt.Sprintf("%dx%d", extent.Width, extent.Height),
		"images", len(images),
		"samples", s.Samples)
}

// buildTargets creates the shared attachments, the render pass and the
// per-image views and framebuffers.
func (s *Swapchain) buildTargets(images []vk.Image) error {
	dev := s.dev
	var err error
	if s.Samples != vk.SampleCount1Bit {
		s.Color, err = newAttachment(dev, s.Format.Format, s.Extent, s.Samples,
			vk.ImageUsageColorAttachmentBit|vk.ImageUsageTransientAttachmentBit,
			vk.ImageAspectColorBit)
		if err != nil {
			return errors.Wrap(err, "msaa color target")
		}
	}
	s.Depth, err = newAttachment(dev, s.DepthFormat, s.Extent, s.Samples,
		vk.ImageUsageDepthStencilAttachmentBit, depthAspect(s.DepthFormat))
	if err != nil {
		return errors.Wrap(err, "depth target")
	}
	s.RenderPass, err = newMainRenderPass(dev, s.Format.Format, s.DepthFormat, s.Samples)
	if err != nil {
		return err
	}

	s.Images = make([]SwapchainImage, 0, len(images))
	for _, image := range images {
		view, err := newImageView(dev, image, s.Format.Format, vk.ImageAspectColorBit)
		if err != nil {
			return err
		}
		s.Images = append(s.Images, SwapchainImage{Image: image, View: view})
		fb, err := newFramebuffer(dev, s.RenderPass, framebufferViews(view, s.Color, s.Depth), s.Extent)
		if err != nil {
			return err
		}
		s.Images[len(s.Images)-1].Framebuffer = fb
	}
	return nil
}

// destroyDynamic releases everything Invalidate rebuilds except the
// swapchain handle itself, which is handed to the next create call.
func (s *Swapchain) destroyDynamic() {
	drv, dev := s.drv, s.dev.Handle
	for _, img := range s.Images {
		if img.Framebuffer != nil {
			drv.DestroyFramebuffer(dev, img.Framebuffer)
		}
		if img.View != nil {
			drv.DestroyImageView(dev, img.View)
		}
	}
	s.Images = nil
	s.Color.destroy(s.dev)
	s.Color = nil
	s.Depth.destroy(s.dev)
	s.Depth = nil
	if s.RenderPass != nil {
		drv.DestroyRenderPass(dev, s.RenderPass)
		s.RenderPass = nil
	}
}

// Acquire asks for the next presentable image, signaling sem when it is
// ready. Suboptimal counts as acquired. Out of date rebuilds the swapchain
// and returns false; the caller must skip the frame.
func (s *Swapchain) Acquire(sem vk.Semaphore) (uint32, bool) {
	index, ret := s.drv.AcquireNextImage(s.dev.Handle, s.Handle, vk.MaxUint64, sem)
	switch ret {
	case vk.Success:
		return index, true
	case vk.Suboptimal:
		s.outOfDate = true
		return index, true
	case vk.ErrorOutOfDate:
		Logger().Debug("vulkan: acquire reported out of date")
		s.Invalidate()
		return 0, false
	}
	orPanic(errors.Wrap(NewError(ret), "acquire next image"))
	return 0, false
}

// Present queues image index for display once wait is signaled. Suboptimal
// and out of date mark the swapchain for rebuild before the next Acquire.
func (s *Swapchain) Present(queue vk.Queue, index uint32, wait vk.Semaphore) {
	ret := s.drv.QueuePresent(queue, &vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{wait},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{s.Handle},
		PImageIndices:      []uint32{index},
	})
	switch ret {
	case vk.Success:
	case vk.Suboptimal, vk.ErrorOutOfDate:
		s.outOfDate = true
	default:
		orPanic(errors.Wrap(NewError(ret), "present"))
	}
}

// Destroy releases the swapchain and everything built on it. The device
// must be idle.
func (s *Swapchain) Destroy() {
	if s == nil || s.state == SwapchainDestroyed {
		return
	}
	s.destroyDynamic()
	if s.Handle != vk.NullSwapchain {
		s.drv.DestroySwapchain(s.dev.Handle, s.Handle)
		s.Handle = vk.NullSwapchain
	}
	s.state = SwapchainDestroyed
}

// ChooseSurfaceFormat picks preferred in the sRGB non-linear color space when
// the surface offers it, otherwise the first reported format. A lone
// undefined entry means the surface accepts anything.
func ChooseSurfaceFormat(formats []vk.SurfaceFormat, preferred vk.Format) (vk.SurfaceFormat, error) {
	if len(formats) == 0 {
		return vk.SurfaceFormat{}, ErrNoSurfaceFormat
	}
	if len(formats) == 1 && formats[0].Format == vk.FormatUndefined {
		return vk.SurfaceFormat{
			Format:     preferred,
			ColorSpace: vk.ColorSpaceSrgbNonlinear,
		}, nil
	}
	for _, f := range formats {
		if f.Format == preferred && f.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return f, nil
		}
	}
	return formats[0], nil
}

// ChoosePresentMode returns FIFO when vsync is on. Otherwise it prefers
// mailbox, then immediate, and falls back to FIFO, which every surface
// supports.
func ChoosePresentMode(modes []vk.PresentMode, vsync bool) vk.PresentMode {
	if vsync {
		return vk.PresentModeFifo
	}
	immediate := false
	for _, m := range modes {
		switch m {
		case vk.PresentModeMailbox:
			return m
		case vk.PresentModeImmediate:
			immediate = true
		}
	}
	if immediate {
		return vk.PresentModeImmediate
	}
	return vk.PresentModeFifo
}

// ChooseExtent uses the surface's current extent unless it is the special
// value meaning the window decides, in which case the framebuffer size is
// clamped into the supported range.
func ChooseExtent(caps vk.SurfaceCapabilities, fbWidth, fbHeight int) vk.Extent2D {
	if caps.CurrentExtent.Width != vk.MaxUint32 {
		return caps.CurrentExtent
	}
	return vk.Extent2D{
		Width:  clampUint32(fbWidth, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clampUint32(fbHeight, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

func clampUint32(v int, lo, hi uint32) uint32 {
	switch {
	case v < 0 || uint64(v) < uint64(lo):
		return lo
	case uint64(v) > uint64(hi):
		return hi
	}
	return uint32(v)
}

// ChooseImageCount asks for one image more than the minimum, within the
// reported bounds. A maximum of zero means unbounded and caps the choice at
// three.
func ChooseImageCount(caps vk.SurfaceCapabilities) uint32 {
	lo, hi := caps.MinImageCount, caps.MaxImageCount
	if hi == 0 {
		hi = defaultImageCount
	}
	if hi < lo {
		hi = lo
	}
	count := lo + 1
	if count > hi {
		count = hi
	}
	return count
}

var compositeAlphaOrder = []vk.CompositeAlphaFlagBits{
	vk.CompositeAlphaOpaqueBit,
	vk.CompositeAlphaPreMultipliedBit,
	vk.CompositeAlphaPostMultipliedBit,
	vk.CompositeAlphaInheritBit,
}

// ChooseCompositeAlpha returns the first supported mode, opaque first.
func ChooseCompositeAlpha(supported vk.CompositeAlphaFlags) vk.CompositeAlphaFlagBits {
	for _, bit := range compositeAlphaOrder {
		if supported&vk.CompositeAlphaFlags(bit) != 0 {
			return bit
		}
	}
	return vk.CompositeAlphaOpaqueBit
}

func chooseTransform(caps vk.SurfaceCapabilities) vk.SurfaceTransformFlagBits {
	if vk.SurfaceTransformFlagBits(caps.SupportedTransforms)&vk.SurfaceTransformIdentityBit != 0 {
		return vk.SurfaceTransformIdentityBit
	}
	return caps.CurrentTransform
}

// chooseImageUsage intersects the requested usage with what the surface
// supports. Color attachment usage is mandatory.
func chooseImageUsage(supported vk.ImageUsageFlags, extra vk.ImageUsageFlagBits) (vk.ImageUsageFlags, error) {
	color := vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit)
	if supported&color == 0 {
		return 0, ErrUnsupportedUsage
	}
	usage := color
	if extra != 0 {
		if supported&vk.ImageUsageFlags(extra) == vk.ImageUsageFlags(extra) {
			usage |= vk.ImageUsageFlags(extra)
		} else {
			Logger().Warn("vulkan: surface lacks requested image usage", "usage", extra)
		}
	}
	return usage, nil
}
