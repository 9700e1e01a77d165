// Package triangle draws a spinning triangle. It shows the two buffer
// wrappers (a staged device local buffer for static geometry and a host
// bound buffer per frame slot for the uniform block) and how per frame
// resources follow the frame ring.
package triangle

import (
	"context"
	"time"

	"github.com/celer/vkexamples/internal/base"
	"github.com/celer/vkexamples/internal/config"
	"github.com/celer/vkexamples/internal/examples"
	"github.com/celer/vkexamples/internal/geometry"
	"github.com/celer/vkexamples/vkg"
	vk "github.com/vulkan-go/vulkan"
	lin "github.com/xlab/linmath"
)

const (
	name         = "triangle"
	pipelineName = "triangle"
	// radians per second
	spinRate = 1.0
)

func init() {
	examples.Register(Example{})
}

type Example struct{}

func (Example) Name() string {
	return name
}

func (Example) Description() string {
	return "vertex, index and uniform buffers with per frame fences and semaphores"
}

func (Example) Run(ctx context.Context, cfg *config.Config) error {
	return base.Run(ctx, cfg, name, func(b *base.AppBase) error {
		m, err := newModule(b)
		if err != nil {
			return err
		}
		b.AddGraphicsModule(m)
		return nil
	})
}

// frameData is rewritten only once the slot's fence has signaled, so the GPU
// never reads a uniform block the CPU is updating
type frameData struct {
	ubo           *geometry.UBO
	buffer        *vkg.HostBoundBuffer
	descriptorSet *vkg.DescriptorSet
}

type module struct {
	app *base.AppBase

	vertices   *vkg.StagedBoundBuffer
	indices    *vkg.StagedBoundBuffer
	indexType  vk.IndexType
	indexCount int

	frames []frameData

	descriptorSetLayout *vkg.DescriptorSetLayout
	descriptorPool      *vkg.DescriptorPool
	pipelineLayout      *vkg.PipelineLayout

	start time.Time
}

func newModule(b *base.AppBase) (m *module, err error) {
	m = &module{app: b, start: time.Now()}
	defer func() {
		if err != nil {
			m.Destroy()
		}
	}()

	vertexData, indexData := geometry.Triangle()
	m.indexType = indexData.IndexType()
	m.indexCount = len(indexData)

	// static geometry lives in device local memory, each buffer is uploaded
	// once through its own host visible staging buffer which is then released
	m.vertices, err = b.Device.CreateStagedBoundBuffer(vertexData)
	if err != nil {
		return nil, err
	}
	m.indices, err = b.Device.CreateStagedBoundBuffer(indexData)
	if err != nil {
		return nil, err
	}
	for _, s := range []*vkg.StagedBoundBuffer{m.vertices, m.indices} {
		err = s.Upload(b.GraphicsCommandPool, b.GraphicsQueue)
		if err != nil {
			return nil, err
		}
		s.FreeStaging()
	}

	// the layout says binding 0 holds the uniform block read by the vertex shader
	ubo := geometry.NewUBO(lin.Vec3{2, 2, 2})
	dsl := b.Device.NewDescriptorSetLayout()
	dsl.AddDescriptor(ubo.Descriptor())
	m.descriptorSetLayout, err = b.Device.CreateDescriptorSetLayout(dsl)
	if err != nil {
		return nil, err
	}

	slots := b.NumFrameSlots()
	dpool := b.Device.NewDescriptorPool()
	dpool.AddLayout(dsl, slots)
	m.descriptorPool, err = b.Device.CreateDescriptorPool(dpool, slots)
	if err != nil {
		return nil, err
	}

	// one uniform buffer and descriptor set per frame slot
	m.frames = make([]frameData, slots)
	for i := range m.frames {
		f := &m.frames[i]
		f.ubo = geometry.NewUBO(lin.Vec3{2, 2, 2})
		f.buffer, err = b.Device.CreateHostBoundBuffer(f.ubo)
		if err != nil {
			return nil, err
		}
		f.descriptorSet, err = m.descriptorPool.AllocateOne(m.descriptorSetLayout)
		if err != nil {
			return nil, err
		}
		f.descriptorSet.AddBuffer(0, vk.DescriptorTypeUniformBuffer, f.buffer.HostBuffer, 0)
		f.descriptorSet.Write()
	}

	m.pipelineLayout, err = b.Device.CreatePipelineLayout(m.descriptorSetLayout)
	if err != nil {
		return nil, err
	}

	gc := b.CreateGraphicsPipelineConfig()
	gc.AddVertexDescriptor(vertexData)
	err = gc.AddShaderStageFromFile(b.Config.ShaderPath("color.vert.spv"), "main", vk.ShaderStageVertexBit)
	if err != nil {
		return nil, err
	}
	err = gc.AddShaderStageFromFile(b.Config.ShaderPath("color.frag.spv"), "main", vk.ShaderStageFragmentBit)
	if err != nil {
		gc.Destroy()
		return nil, err
	}
	// both faces are drawn, the triangle is seen from behind for half a turn
	gc.SetCullMode(vk.CullModeNone)
	gc.SetPipelineLayout(m.pipelineLayout)
	b.AddGraphicsPipelineConfig(pipelineName, gc)

	return m, nil
}

func (m *module) NewFrame(_ *base.AppBase) {}

func (m *module) PostFrame() {}

func (m *module) CreateCommandBuffers(frame *vkg.FrameContext) ([]vk.CommandBuffer, error) {
	f := &m.frames[frame.Slot]

	f.ubo.Model.Identity()
	f.ubo.Spin(float32(time.Since(m.start).Seconds() * spinRate))
	f.ubo.SetPerspective(frame.Extent)
	err := f.buffer.Map()
	if err != nil {
		return nil, err
	}

	cmd, err := m.app.Secondary(m, frame)
	if err != nil {
		return nil, err
	}

	cmd.CmdBindGraphicsPipeline(m.app.GraphicsPipelines[pipelineName])
	cmd.CmdBindVertexBuffers(m.vertices.VKBuffer())
	cmd.CmdBindIndexBuffer(m.indices.VKBuffer(), m.indexType)
	cmd.CmdBindDescriptorSets(vk.PipelineBindPointGraphics, m.pipelineLayout, 0, f.descriptorSet)
	cmd.CmdDrawIndexed(m.indexCount, 1)

	err = cmd.End()
	if err != nil {
		return nil, err
	}
	return []vk.CommandBuffer{cmd.VK()}, nil
}

func (m *module) Destroy() {
	for _, f := range m.frames {
		if f.buffer != nil {
			f.buffer.Destroy()
		}
	}
	m.frames = nil

	if m.pipelineLayout != nil {
		m.pipelineLayout.Destroy()
	}
	if m.descriptorPool != nil {
		m.descriptorPool.Destroy()
	}
	if m.descriptorSetLayout != nil {
		m.descriptorSetLayout.Destroy()
	}
	if m.indices != nil {
		m.indices.Destroy()
	}
	if m.vertices != nil {
		m.vertices.Destroy()
	}
}
