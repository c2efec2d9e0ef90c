package vkframe

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// CommandPools is the pair of pools kept for one queue family. Per-frame
// buffers come from Resettable; one-shot buffers come from Transient. The two
// never share buffers, so freeing a one-shot buffer cannot disturb a frame
// still in flight.
type CommandPools struct {
	Family     uint32
	Resettable vk.CommandPool
	Transient  vk.CommandPool
}

func newCommandPools(drv driver, dev vk.Device, family uint32) (CommandPools, error) {
	pools := CommandPools{Family: family}
	pool, ret := drv.CreateCommandPool(dev, &vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: family,
		// ResetCommandBufferBit allows command buffers to be reset individually.
		Flags: vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	})
	if err := NewError(ret); err != nil {
		return pools, errors.Wrapf(err, "resettable pool for family %d", family)
	}
	pools.Resettable = pool

	pool, ret = drv.CreateCommandPool(dev, &vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: family,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateTransientBit),
	})
	if err := NewError(ret); err != nil {
		drv.DestroyCommandPool(dev, pools.Resettable)
		return pools, errors.Wrapf(err, "transient pool for family %d", family)
	}
	pools.Transient = pool
	return pools, nil
}

func (p CommandPools) destroy(drv driver, dev vk.Device) {
	if p.Transient != nil {
		drv.DestroyCommandPool(dev, p.Transient)
	}
	if p.Resettable != nil {
		drv.DestroyCommandPool(dev, p.Resettable)
	}
}

func allocateCommandBuffers(drv driver, dev vk.Device, pool vk.CommandPool, count int) ([]vk.CommandBuffer, error) {
	buffers, ret := drv.AllocateCommandBuffers(dev, &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: uint32(count),
	})
	if err := NewError(ret); err != nil {
		return nil, errors.Wrap(err, "allocate command buffers")
	}
	return buffers, nil
}
