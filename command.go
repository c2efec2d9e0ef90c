package vkframe

import (
	"fmt"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// CommandSession is an open one-shot recording bound to one queue role.
// At most one session is open per device.
type CommandSession struct {
	Role QueueRole
	Cmd  vk.CommandBuffer

	dev  *LogicalDevice
	pool vk.CommandPool
}

// BeginOneShot allocates a buffer from the transient pool of role and begins
// recording it for a single submission. It panics if a session is already
// open.
func (d *LogicalDevice) BeginOneShot(role QueueRole) *CommandSession {
	if d.session != nil {
		panic(fmt.Sprintf("vkframe: one-shot session on %s opened while %s session is still open",
			role, d.session.Role))
	}
	pool := d.Pools(role).Transient
	buffers, err := allocateCommandBuffers(d.drv, d.Handle, pool, 1)
	orPanic(err)
	s := &CommandSession{
		Role: role,
		Cmd:  buffers[0],
		dev:  d,
		pool: pool,
	}
	ret := d.drv.BeginCommandBuffer(s.Cmd, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	})
	if err := NewError(ret); err != nil {
		d.drv.FreeCommandBuffers(d.Handle, pool, buffers)
		orPanic(errors.Wrap(err, "begin one-shot buffer"))
	}
	d.session = s
	return s
}

// End submits the recorded buffer on the queue of the session role, blocks
// until the GPU has finished it, then frees the buffer.
func (s *CommandSession) End() {
	d := s.dev
	if d.session != s {
		panic("vkframe: one-shot session ended twice")
	}
	defer s.release()

	orPanic(errors.Wrap(NewError(d.drv.EndCommandBuffer(s.Cmd)), "end one-shot buffer"))
	ret := d.drv.QueueSubmit(d.Queue(s.Role), []vk.SubmitInfo{{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{s.Cmd},
	}}, d.oneShotFence)
	orPanic(errors.Wrapf(NewError(ret), "submit one-shot buffer on %s", s.Role))

	fences := []vk.Fence{d.oneShotFence}
	orPanic(NewError(d.drv.WaitForFences(d.Handle, fences, vk.MaxUint64)))
	orPanic(NewError(d.drv.ResetFences(d.Handle, fences)))
}

func (s *CommandSession) release() {
	s.dev.drv.FreeCommandBuffers(s.dev.Handle, s.pool, []vk.CommandBuffer{s.Cmd})
	s.dev.session = nil
}

// Execute records through fn into a one-shot buffer on role and runs it to
// completion before returning.
func (d *LogicalDevice) Execute(role QueueRole, fn func(cmd vk.CommandBuffer)) {
	s := d.BeginOneShot(role)
	recorded := false
	defer func() {
		if !recorded {
			s.release()
		}
	}()
	fn(s.Cmd)
	recorded = true
	s.End()
}
