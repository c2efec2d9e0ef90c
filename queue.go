package vkframe

import (
	"fmt"
	"slices"

	vk "github.com/vulkan-go/vulkan"
)

// QueueRole is a class of GPU work. Roles may alias onto one family.
type QueueRole int

const (
	RoleGraphics QueueRole = iota
	RoleTransfer
	RoleCompute
	RolePresent

	numQueueRoles
)

func (r QueueRole) String() string {
	switch r {
	case RoleGraphics:
		return "graphics"
	case RoleTransfer:
		return "transfer"
	case RoleCompute:
		return "compute"
	case RolePresent:
		return "present"
	}
	return fmt.Sprintf("QueueRole(%d)", int(r))
}

// QueueFamily is the capability summary of one queue family.
type QueueFamily struct {
	Index   uint32
	Flags   vk.QueueFlags
	Count   uint32
	Present bool
}

func (q QueueFamily) has(bits vk.QueueFlagBits) bool {
	return q.Flags&vk.QueueFlags(bits) == vk.QueueFlags(bits)
}

func (q QueueFamily) lacks(bits vk.QueueFlagBits) bool {
	return q.Flags&vk.QueueFlags(bits) == 0
}

// QueueIndices maps every role onto a queue family index.
type QueueIndices struct {
	Graphics uint32
	Transfer uint32
	Compute  uint32
	Present  uint32
}

// Index returns the family index for role.
func (q QueueIndices) Index(role QueueRole) uint32 {
	switch role {
	case RoleTransfer:
		return q.Transfer
	case RoleCompute:
		return q.Compute
	case RolePresent:
		return q.Present
	}
	return q.Graphics
}

// Unique returns the distinct family indices in ascending order.
func (q QueueIndices) Unique() []uint32 {
	var out []uint32
	for _, idx := range []uint32{q.Graphics, q.Transfer, q.Compute, q.Present} {
		if !slices.Contains(out, idx) {
			out = append(out, idx)
		}
	}
	slices.Sort(out)
	return out
}

// ResolveQueueRoles assigns families to the four roles. The graphics role
// needs a family with graphics, transfer and compute together; a missing one
// or a surface nobody presents to is an error. Transfer and compute fall back
// to the graphics family when no dedicated family exists.
func ResolveQueueRoles(families []QueueFamily) (QueueIndices, error) {
	var idx QueueIndices
	const unified = vk.QueueGraphicsBit | vk.QueueTransferBit | vk.QueueComputeBit

	graphics := -1
	for i, f := range families {
		if f.has(unified) {
			graphics = i
			break
		}
	}
	if graphics < 0 {
		return idx, ErrNoUnifiedQueue
	}
	idx.Graphics = families[graphics].Index

	idx.Transfer = idx.Graphics
	transferFound := false
	for _, f := range families {
		if f.has(vk.QueueTransferBit) && f.lacks(vk.QueueGraphicsBit) && f.lacks(vk.QueueComputeBit) {
			idx.Transfer = f.Index
			transferFound = true
			break
		}
	}
	if !transferFound {
		Logger().Warn("vulkan: no dedicated transfer family, using graphics family", "family", idx.Graphics)
	}

	idx.Compute = idx.Graphics
	computeFound := false
	for _, f := range families {
		if f.has(vk.QueueComputeBit|vk.QueueTransferBit) && f.lacks(vk.QueueGraphicsBit) {
			idx.Compute = f.Index
			computeFound = true
			break
		}
	}
	if !computeFound {
		Logger().Warn("vulkan: no dedicated compute family, using graphics family", "family", idx.Graphics)
	}

	present := -1
	if families[graphics].Present {
		present = graphics
	}
	for i := 0; present < 0 && i < len(families); i++ {
		if families[i].Present && families[i].has(vk.QueueGraphicsBit) {
			present = i
		}
	}
	for i := 0; present < 0 && i < len(families); i++ {
		if families[i].Present {
			present = i
		}
	}
	if present < 0 {
		return idx, ErrNoPresentQueue
	}
	idx.Present = families[present].Index
	return idx, nil
}
