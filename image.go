package vkframe

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Attachment is a device-local image with its memory and a single view,
// used for the shared MSAA color and depth targets.
type Attachment struct {
	Image  vk.Image
	Memory vk.DeviceMemory
	View   vk.ImageView
	Format vk.Format
}

func newAttachment(d *LogicalDevice, format vk.Format, extent vk.Extent2D, samples vk.SampleCountFlagBits,
	usage vk.ImageUsageFlagBits, aspect vk.ImageAspectFlagBits) (a *Attachment, err error) {

	drv := d.drv
	a = &Attachment{Format: format}
	defer func() {
		if err != nil {
			a.destroy(d)
			a = nil
		}
	}()

	image, ret := drv.CreateImage(d.Handle, &vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Format:    format,
		Extent: vk.Extent3D{
			Width:  extent.Width,
			Height: extent.Height,
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       samples,
		Tiling:        vk.ImageTilingOptimal,
		Usage:         vk.ImageUsageFlags(usage),
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	})
	if err := NewError(ret); err != nil {
		return a, errors.Wrap(err, "create attachment image")
	}
	a.Image = image

	req := drv.ImageMemoryRequirements(d.Handle, image)
	typeIndex, ok := FindMemoryType(d.physical.MemoryProperties, req.MemoryTypeBits, vk.MemoryPropertyDeviceLocalBit)
	if !ok {
		return a, errors.Wrap(ErrNoMemoryType, "attachment image")
	}
	mem, ret := drv.AllocateMemory(d.Handle, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  req.Size,
		MemoryTypeIndex: typeIndex,
	})
	if err := NewError(ret); err != nil {
		return a, errors.Wrap(err, "allocate attachment memory")
	}
	a.Memory = mem
	if err := NewError(drv.BindImageMemory(d.Handle, image, mem)); err != nil {
		return a, errors.Wrap(err, "bind attachment memory")
	}

	view, err := newImageView(d, image, format, aspect)
	if err != nil {
		return a, err
	}
	a.View = view
	return a, nil
}

func (a *Attachment) destroy(d *LogicalDevice) {
	if a == nil {
		return
	}
	if a.View != nil {
		d.drv.DestroyImageView(d.Handle, a.View)
		a.View = nil
	}
	if a.Image != nil {
		d.drv.DestroyImage(d.Handle, a.Image)
		a.Image = nil
	}
	if a.Memory != nil {
		d.drv.FreeMemory(d.Handle, a.Memory)
		a.Memory = nil
	}
}

func newImageView(d *LogicalDevice, image vk.Image, format vk.Format, aspect vk.ImageAspectFlagBits) (vk.ImageView, error) {
	view, ret := d.drv.CreateImageView(d.Handle, &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(aspect),
			LevelCount: 1,
			LayerCount: 1,
		},
	})
	if err := NewError(ret); err != nil {
		return nil, errors.Wrap(err, "create image view")
	}
	return view, nil
}

func depthAspect(format vk.Format) vk.ImageAspectFlagBits {
	switch format {
	case vk.FormatD32SfloatS8Uint, vk.FormatD24UnormS8Uint:
		return vk.ImageAspectDepthBit | vk.ImageAspectStencilBit
	}
	return vk.ImageAspectDepthBit
}

// presentBarriers moves freshly fetched swapchain images from undefined into
// the presentable layout.
func presentBarriers(images []vk.Image) []vk.ImageMemoryBarrier {
	barriers := make([]vk.ImageMemoryBarrier, 0, len(images))
	for _, image := range images {
		barriers = append(barriers, vk.ImageMemoryBarrier{
			SType:               vk.StructureTypeImageMemoryBarrier,
			OldLayout:           vk.ImageLayoutUndefined,
			NewLayout:           vk.ImageLayoutPresentSrc,
			SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
			DstQueueFamilyIndex: vk.QueueFamilyIgnored,
			Image:               image,
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				LevelCount: 1,
				LayerCount: 1,
			},
		})
	}
	return barriers
}
