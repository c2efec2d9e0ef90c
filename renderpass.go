package vkframe

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Attachment slots of the main render pass. With multisampling the pass
// renders into the shared MSAA target and resolves into the swapchain image;
// without it the swapchain image is the color target.
const (
	attachmentColor   = 0
	attachmentDepth   = 1
	attachmentResolve = 2
)

func newMainRenderPass(d *LogicalDevice, colorFormat, depthFormat vk.Format, samples vk.SampleCountFlagBits) (vk.RenderPass, error) {
	msaa := samples != vk.SampleCount1Bit

	colorFinal := vk.ImageLayoutPresentSrc
	colorStore := vk.AttachmentStoreOpStore
	if msaa {
		colorFinal = vk.ImageLayoutColorAttachmentOptimal
		colorStore = vk.AttachmentStoreOpDontCare
	}
	attachments := []vk.AttachmentDescription{
		attachmentColor: {
			Format:         colorFormat,
			Samples:        samples,
			LoadOp:         vk.AttachmentLoadOpClear,
			StoreOp:        colorStore,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    colorFinal,
		},
		attachmentDepth: {
			Format:         depthFormat,
			Samples:        samples,
			LoadOp:         vk.AttachmentLoadOpClear,
			StoreOp:        vk.AttachmentStoreOpDontCare,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    vk.ImageLayoutDepthStencilAttachmentOptimal,
		},
	}

	colorRefs := []vk.AttachmentReference{{
		Attachment: attachmentColor,
		Layout:     vk.ImageLayoutColorAttachmentOptimal,
	}}
	depthRef := vk.AttachmentReference{
		Attachment: attachmentDepth,
		Layout:     vk.ImageLayoutDepthStencilAttachmentOptimal,
	}
	subpass := vk.SubpassDescription{
		PipelineBindPoint:       vk.PipelineBindPointGraphics,
		ColorAttachmentCount:    1,
		PColorAttachments:       colorRefs,
		PDepthStencilAttachment: &depthRef,
	}
	if msaa {
		attachments = append(attachments, vk.AttachmentDescription{
			Format:         colorFormat,
			Samples:        vk.SampleCount1Bit,
			LoadOp:         vk.AttachmentLoadOpDontCare,
			StoreOp:        vk.AttachmentStoreOpStore,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    vk.ImageLayoutPresentSrc,
		})
		subpass.PResolveAttachments = []vk.AttachmentReference{{
			Attachment: attachmentResolve,
			Layout:     vk.ImageLayoutColorAttachmentOptimal,
		}}
	}

	stages := vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit | vk.PipelineStageEarlyFragmentTestsBit)
	dependencies := []vk.SubpassDependency{{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  stages,
		DstStageMask:  stages,
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit | vk.AccessDepthStencilAttachmentWriteBit),
	}}

	pass, ret := d.drv.CreateRenderPass(d.Handle, &vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: uint32(len(dependencies)),
		PDependencies:   dependencies,
	})
	if err := NewError(ret); err != nil {
		return nil, errors.Wrap(err, "create render pass")
	}
	return pass, nil
}

// framebufferViews orders the views of one swapchain image to match the
// attachment slots of the main render pass.
func framebufferViews(imageView vk.ImageView, color, depth *Attachment) []vk.ImageView {
	if color == nil {
		return []vk.ImageView{imageView, depth.View}
	}
	return []vk.ImageView{color.View, depth.View, imageView}
}

func newFramebuffer(d *LogicalDevice, pass vk.RenderPass, views []vk.ImageView, extent vk.Extent2D) (vk.Framebuffer, error) {
	fb, ret := d.drv.CreateFramebuffer(d.Handle, &vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      pass,
		AttachmentCount: uint32(len(views)),
		PAttachments:    views,
		Width:           extent.Width,
		Height:          extent.Height,
		Layers:          1,
	})
	if err := NewError(ret); err != nil {
		return nil, errors.Wrap(err, "create framebuffer")
	}
	return fb, nil
}
