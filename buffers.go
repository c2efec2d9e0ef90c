package vkframe

import (
	"unsafe"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Buffer is a buffer bound to its own allocation.
type Buffer struct {
	Handle vk.Buffer
	Memory vk.DeviceMemory
	Size   vk.DeviceSize
}

// NewBuffer creates a buffer of size bytes in memory with the given
// properties. Buffers used by both the transfer and the graphics family are
// shared concurrently when the two differ.
func NewBuffer(d *LogicalDevice, size int, usage vk.BufferUsageFlagBits, props vk.MemoryPropertyFlagBits) (b *Buffer, err error) {
	drv := d.drv
	b = &Buffer{Size: vk.DeviceSize(size)}
	defer func() {
		if err != nil {
			b.Destroy(d)
			b = nil
		}
	}()

	info := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        b.Size,
		Usage:       vk.BufferUsageFlags(usage),
		SharingMode: vk.SharingModeExclusive,
	}
	graphics, transfer := d.Family(RoleGraphics), d.Family(RoleTransfer)
	if graphics != transfer {
		info.SharingMode = vk.SharingModeConcurrent
		info.QueueFamilyIndexCount = 2
		info.PQueueFamilyIndices = []uint32{graphics, transfer}
	}
	handle, ret := drv.CreateBuffer(d.Handle, &info)
	if err := NewError(ret); err != nil {
		return b, errors.Wrap(err, "create buffer")
	}
	b.Handle = handle

	req := drv.BufferMemoryRequirements(d.Handle, handle)
	typeIndex, ok := FindMemoryType(d.physical.MemoryProperties, req.MemoryTypeBits, props)
	if !ok {
		return b, errors.Wrapf(ErrNoMemoryType, "buffer of %d bytes", size)
	}
	mem, ret := drv.AllocateMemory(d.Handle, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  req.Size,
		MemoryTypeIndex: typeIndex,
	})
	if err := NewError(ret); err != nil {
		return b, errors.Wrap(err, "allocate buffer memory")
	}
	b.Memory = mem
	if err := NewError(drv.BindBufferMemory(d.Handle, handle, mem)); err != nil {
		return b, errors.Wrap(err, "bind buffer memory")
	}
	return b, nil
}

// Write copies data to the start of a host-visible, host-coherent buffer.
func (b *Buffer) Write(d *LogicalDevice, data []byte) error {
	if vk.DeviceSize(len(data)) > b.Size {
		return errors.Errorf("vkframe: write of %d bytes into %d byte buffer", len(data), b.Size)
	}
	if len(data) == 0 {
		return nil
	}
	ptr, ret := d.drv.MapMemory(d.Handle, b.Memory, vk.DeviceSize(len(data)))
	if err := NewError(ret); err != nil {
		return errors.Wrap(err, "map buffer memory")
	}
	copy(unsafe.Slice((*byte)(ptr), len(data)), data)
	d.drv.UnmapMemory(d.Handle, b.Memory)
	return nil
}

// Destroy releases the buffer and its memory.
func (b *Buffer) Destroy(d *LogicalDevice) {
	if b == nil {
		return
	}
	if b.Handle != nil {
		d.drv.DestroyBuffer(d.Handle, b.Handle)
		b.Handle = nil
	}
	if b.Memory != nil {
		d.drv.FreeMemory(d.Handle, b.Memory)
		b.Memory = nil
	}
}

// UploadBuffer copies data into dst, typically device-local, through a
// host-visible staging buffer and a one-shot transfer. It returns once the
// copy has completed on the GPU.
func UploadBuffer(d *LogicalDevice, dst *Buffer, data []byte) (err error) {
	defer checkErr(&err)
	if vk.DeviceSize(len(data)) > dst.Size {
		return errors.Errorf("vkframe: upload of %d bytes into %d byte buffer", len(data), dst.Size)
	}
	if len(data) == 0 {
		return nil
	}
	staging, err := NewBuffer(d, len(data), vk.BufferUsageTransferSrcBit,
		vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)
	if err != nil {
		return errors.Wrap(err, "staging buffer")
	}
	defer staging.Destroy(d)
	if err := staging.Write(d, data); err != nil {
		return err
	}

	d.Execute(RoleTransfer, func(cmd vk.CommandBuffer) {
		d.drv.CmdCopyBuffer(cmd, staging.Handle, dst.Handle, []vk.BufferCopy{{
			Size: vk.DeviceSize(len(data)),
		}})
	})
	return nil
}

// UploadBuffer copies data into dst on the transfer queue and waits for it.
func (c *Context) UploadBuffer(dst *Buffer, data []byte) error {
	if c.device == nil {
		return ErrNotInitialized
	}
	return UploadBuffer(c.device, dst, data)
}
