package vkframe

import (
	"time"

	"github.com/loov/hrtime"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// FrameStats are counters kept by the FrameScheduler.
type FrameStats struct {
	// Frames counts frames that were submitted and presented.
	Frames uint64
	// Skipped counts frames BeginFrame did not open for recording.
	Skipped uint64
	// Invalidations counts swapchain builds, the first one included.
	Invalidations int
	// LastFenceWait is how long the last BeginFrame blocked on its slot fence.
	LastFenceWait time.Duration
	// LastFrameTime is the CPU time from BeginFrame to the end of EndFrame of
	// the last presented frame.
	LastFrameTime time.Duration
}

// FrameScheduler rotates through FramesInFlight slots, bounding how far the
// CPU runs ahead of the GPU.
type FrameScheduler struct {
	dev       *LogicalDevice
	drv       driver
	swapchain *Swapchain
	slots     [FramesInFlight]FrameSlot

	current    int
	imageIndex uint32
	inFrame    bool
	aborted    bool
	clear      []vk.ClearValue

	frameStart time.Duration
	stats      FrameStats
}

func newFrameScheduler(dev *LogicalDevice, swapchain *Swapchain, clearColor [4]float32) (*FrameScheduler, error) {
	slots, err := newFrameSlots(dev)
	if err != nil {
		return nil, err
	}
	return &FrameScheduler{
		dev:       dev,
		drv:       dev.drv,
		swapchain: swapchain,
		slots:     slots,
		clear: []vk.ClearValue{
			vk.NewClearValue(clearColor[:]),
			vk.NewClearDepthStencil(1.0, 0),
		},
	}, nil
}

// CurrentFrame is the slot index in [0, FramesInFlight).
func (f *FrameScheduler) CurrentFrame() int {
	return f.current
}

// Slot returns the synchronization objects of the current slot.
func (f *FrameScheduler) Slot() *FrameSlot {
	return &f.slots[f.current]
}

// ImageIndex is the swapchain image acquired by the open frame.
func (f *FrameScheduler) ImageIndex() uint32 {
	return f.imageIndex
}

// Recording reports whether a frame is open and its command buffer accepts
// commands.
func (f *FrameScheduler) Recording() bool {
	return f.inFrame && !f.aborted
}

// Stats returns a snapshot of the frame counters.
func (f *FrameScheduler) Stats() FrameStats {
	s := f.stats
	s.Invalidations = f.swapchain.Invalidations()
	return s
}

// BeginFrame waits for the current slot to come back from the GPU, applies
// any pending swapchain rebuild and acquires an image. On success the slot
// command buffer is recording inside the main render pass. It returns false
// when the frame has to be skipped; EndFrame must still be called.
func (f *FrameScheduler) BeginFrame() bool {
	if f.inFrame {
		panic("vkframe: BeginFrame called while a frame is open")
	}
	f.inFrame = true
	// Stays set until the render pass is open, so EndFrame submits nothing
	// after a failure the fatal hook survived.
	f.aborted = true
	f.frameStart = hrtime.Now()

	drv, dev := f.drv, f.dev.Handle
	slot := &f.slots[f.current]
	fences := []vk.Fence{slot.Fence}

	waitStart := hrtime.Now()
	orPanic(errors.Wrap(NewError(drv.WaitForFences(dev, fences, vk.MaxUint64)), "wait frame fence"))
	f.stats.LastFenceWait = hrtime.Since(waitStart)

	sc := f.swapchain
	if sc.State() == SwapchainSuspended || sc.NeedsInvalidate() {
		sc.Invalidate()
	}
	if sc.State() != SwapchainValid {
		return false
	}
	index, ok := sc.Acquire(slot.ImageAvailable)
	if !ok {
		return false
	}
	// The image is ours: the next submission from this slot will signal
	// the fence again.
	orPanic(errors.Wrap(NewError(drv.ResetFences(dev, fences)), "reset frame fence"))
	f.imageIndex = index

	orPanic(NewError(drv.ResetCommandBuffer(slot.Cmd)))
	orPanic(NewError(drv.BeginCommandBuffer(slot.Cmd, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	})))
	drv.CmdBeginRenderPass(slot.Cmd, &vk.RenderPassBeginInfo{
		SType:           vk.StructureTypeRenderPassBeginInfo,
		RenderPass:      sc.RenderPass,
		Framebuffer:     sc.Images[index].Framebuffer,
		RenderArea:      sc.RenderArea(),
		ClearValueCount: uint32(len(f.clear)),
		PClearValues:    f.clear,
	})
	f.aborted = false
	return true
}

// EndFrame closes the render pass, submits the slot command buffer and
// presents. After an aborted BeginFrame it only closes the frame.
func (f *FrameScheduler) EndFrame() {
	if !f.inFrame {
		panic("vkframe: EndFrame called without BeginFrame")
	}
	f.inFrame = false
	if f.aborted {
		f.stats.Skipped++
		return
	}

	drv := f.drv
	slot := &f.slots[f.current]
	drv.CmdEndRenderPass(slot.Cmd)
	orPanic(errors.Wrap(NewError(drv.EndCommandBuffer(slot.Cmd)), "end frame command buffer"))

	ret := drv.QueueSubmit(f.dev.Queue(RoleGraphics), []vk.SubmitInfo{{
		SType:              vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{slot.ImageAvailable},
		PWaitDstStageMask: []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{slot.Cmd},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{slot.RenderComplete},
	}}, slot.Fence)
	orPanic(errors.Wrap(NewError(ret), "submit frame"))

	f.swapchain.Present(f.dev.Queue(RolePresent), f.imageIndex, slot.RenderComplete)
	f.current = (f.current + 1) % FramesInFlight
	f.stats.Frames++
	f.stats.LastFrameTime = hrtime.Since(f.frameStart)
}

func (f *FrameScheduler) destroy() {
	destroyFrameSlots(f.dev, &f.slots)
}
