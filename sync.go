package vkframe

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// FrameSlot is one of the FramesInFlight rotating sets of synchronization
// objects and the command buffer recorded against them.
type FrameSlot struct {
	// Fence is signaled when the last submission from this slot finished.
	// It is created signaled so the first wait returns at once.
	Fence vk.Fence
	// ImageAvailable is signaled by Acquire.
	ImageAvailable vk.Semaphore
	// RenderComplete is signaled by the slot's submission and waited on by
	// Present.
	RenderComplete vk.Semaphore
	Cmd            vk.CommandBuffer
}

func newFrameSlots(d *LogicalDevice) (slots [FramesInFlight]FrameSlot, err error) {
	drv := d.drv
	defer func() {
		if err != nil {
			destroyFrameSlots(d, &slots)
		}
	}()

	cmds, err := allocateCommandBuffers(drv, d.Handle, d.Pools(RoleGraphics).Resettable, FramesInFlight)
	if err != nil {
		return slots, err
	}
	for i := range slots {
		slot := &slots[i]
		slot.Cmd = cmds[i]

		fence, ret := drv.CreateFence(d.Handle, true)
		if err := NewError(ret); err != nil {
			return slots, errors.Wrapf(err, "frame %d fence", i)
		}
		slot.Fence = fence

		sem, ret := drv.CreateSemaphore(d.Handle)
		if err := NewError(ret); err != nil {
			return slots, errors.Wrapf(err, "frame %d image semaphore", i)
		}
		slot.ImageAvailable = sem

		sem, ret = drv.CreateSemaphore(d.Handle)
		if err := NewError(ret); err != nil {
			return slots, errors.Wrapf(err, "frame %d render semaphore", i)
		}
		slot.RenderComplete = sem
	}
	return slots, nil
}

func destroyFrameSlots(d *LogicalDevice, slots *[FramesInFlight]FrameSlot) {
	drv := d.drv
	var cmds []vk.CommandBuffer
	for i := range slots {
		slot := &slots[i]
		if slot.Cmd != nil {
			cmds = append(cmds, slot.Cmd)
		}
		if slot.Fence != nil {
			drv.DestroyFence(d.Handle, slot.Fence)
		}
		if slot.ImageAvailable != vk.NullSemaphore {
			drv.DestroySemaphore(d.Handle, slot.ImageAvailable)
		}
		if slot.RenderComplete != vk.NullSemaphore {
			drv.DestroySemaphore(d.Handle, slot.RenderComplete)
		}
		*slot = FrameSlot{}
	}
	if len(cmds) > 0 {
		drv.FreeCommandBuffers(d.Handle, d.Pools(RoleGraphics).Resettable, cmds)
	}
}
