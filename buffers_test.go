package vkframe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func (f *fakeDriver) memory(name string) []byte {
	for p, n := range f.names {
		if n == name {
			return f.mapped[p]
		}
	}
	return nil
}

func TestBufferWrite(t *testing.T) {
	drv := newFakeDriver()
	dev := newTestDevice(t, drv, testConfig())

	b, err := NewBuffer(dev, 64, vk.BufferUsageVertexBufferBit,
		vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)
	require.NoError(t, err)
	assert.Contains(t, drv.calls, "AllocateMemory memory0 type=1")

	require.NoError(t, b.Write(dev, []byte("vertex")))
	assert.Equal(t, []byte("vertex"), drv.memory("memory0")[:6])
	assert.Error(t, b.Write(dev, make([]byte, 65)))

	b.Destroy(dev)
	assert.Contains(t, drv.calls, "DestroyBuffer buffer0")
	assert.Contains(t, drv.calls, "FreeMemory memory0")
	assert.True(t, b.Handle == vk.NullBuffer)
}

func TestUploadBufferStagesThroughTransfer(t *testing.T) {
	drv := newFakeDriver()
	drv.gpus[0].families = []vk.QueueFamilyProperties{
		{QueueFlags: vk.QueueFlags(vk.QueueGraphicsBit | vk.QueueComputeBit | vk.QueueTransferBit), QueueCount: 1},
		{QueueFlags: vk.QueueFlags(vk.QueueTransferBit), QueueCount: 1},
	}
	drv.gpus[0].present = []bool{true, false}
	dev := newTestDevice(t, drv, testConfig())

	dst, err := NewBuffer(dev, 256, vk.BufferUsageTransferDstBit|vk.BufferUsageVertexBufferBit,
		vk.MemoryPropertyDeviceLocalBit)
	require.NoError(t, err)
	assert.Contains(t, drv.calls, "AllocateMemory memory0 type=0")
	drv.resetCalls()

	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	require.NoError(t, UploadBuffer(dev, dst, data))
	assert.Equal(t, data, drv.memory("memory1")[:len(data)])

	copyAt := drv.indexOf("CmdCopyBuffer buffer1 buffer0", 0)
	require.GreaterOrEqual(t, copyAt, 0)
	assert.Less(t, drv.indexOf("MapMemory memory1", 0), copyAt)
	submit := drv.indexOf("QueueSubmit queue1 fence0", copyAt)
	assert.Greater(t, submit, copyAt)
	assert.Greater(t, drv.indexOf("DestroyBuffer buffer1", submit), submit)
	assert.Greater(t, drv.indexOf("FreeMemory memory1", submit), submit)
	assert.Equal(t, [][]vk.BufferCopy{{{Size: 8}}}, drv.copies)
	assert.Empty(t, drv.violations)

	assert.Error(t, UploadBuffer(dev, dst, make([]byte, 300)))
	require.NoError(t, UploadBuffer(dev, dst, nil))
}

func TestUploadBufferSubmitFailure(t *testing.T) {
	drv := newFakeDriver()
	dev := newTestDevice(t, drv, testConfig())
	dst, err := NewBuffer(dev, 16, vk.BufferUsageTransferDstBit, vk.MemoryPropertyDeviceLocalBit)
	require.NoError(t, err)

	drv.fail["QueueSubmit"] = vk.ErrorOutOfDeviceMemory
	err = UploadBuffer(dev, dst, []byte{1})
	require.Error(t, err)
	assert.Contains(t, drv.calls, "DestroyBuffer buffer1")
	assert.Nil(t, dev.session)
}

func TestNewBufferNoMemoryType(t *testing.T) {
	drv := newFakeDriver()
	dev := newTestDevice(t, drv, testConfig())

	_, err := NewBuffer(dev, 16, vk.BufferUsageUniformBufferBit, vk.MemoryPropertyLazilyAllocatedBit)
	assert.ErrorIs(t, err, ErrNoMemoryType)
	assert.Contains(t, drv.calls, "DestroyBuffer buffer0")
	assert.Empty(t, drv.callsWith("AllocateMemory"))
}
