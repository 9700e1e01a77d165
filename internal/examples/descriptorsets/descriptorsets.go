// Package descriptorsets draws two cubes from the same vertex data, each with
// its own uniform block bound through its own descriptor set.
package descriptorsets

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
	name         = "descriptorsets"
	pipelineName = "descriptorsets"
	poolName     = "descriptorsets-host"
	poolSize     = 1024 * 1024
)

var eye = lin.Vec3{0, 4, 2.5}

func init() {
	examples.Register(Example{})
}

type Example struct{}

func (Example) Name() string {
	return name
}

func (Example) Description() string {
	return "two cubes with their own uniform buffers and descriptor sets"
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

// object is a cube placed at offset that spins at rate radians per second
type object struct {
	offset lin.Vec3
	rate   float32

	// indexed by frame slot
	ubos    []*geometry.UBO
	buffers []*vkg.BufferResource
	sets    []*vkg.DescriptorSet
}

var objects = []struct {
	offset lin.Vec3
	rate   float32
}{
	{offset: lin.Vec3{-0.9, 0, 0}, rate: 1},
	{offset: lin.Vec3{0.9, 0, 0}, rate: -0.6},
}

// model translates to offset after spinning about z
func model(offset lin.Vec3, angle float32) lin.Mat4x4 {
	var identity, spin, translate, m lin.Mat4x4
	identity.Identity()
	spin.Rotate(&identity, 0, 0, 1, angle)
	translate.Translate(offset[0], offset[1], offset[2])
	m.Mult(&translate, &spin)
	return m
}

// descriptorCount is how many uniform descriptors the pool must hold, one per
// object for every frame slot
func descriptorCount(objects, slots int) int {
	return objects * slots
}

type module struct {
	app *base.AppBase

	pool       *vkg.BufferResourcePool
	vertices   *vkg.BufferResource
	indices    *vkg.BufferResource
	indexType  vk.IndexType
	indexCount int

	objects []*object

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

	// a single host visible pool holds geometry and uniform blocks alike
	m.pool, err = b.ResourceManager.AllocateBufferPoolWithOptions(poolName, poolSize,
		vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit,
		vk.BufferUsageVertexBufferBit|vk.BufferUsageIndexBufferBit|vk.BufferUsageUniformBufferBit,
		vk.SharingModeExclusive)
	if err != nil {
		return nil, err
	}

	vertexData, indexData := geometry.Cube()
	m.vertices, err = m.pool.StageBuffer(vertexData, 0, nil, nil)
	if err != nil {
		return nil, err
	}
	m.indices, err = m.pool.StageBuffer(indexData, 0, nil, nil)
	if err != nil {
		return nil, err
	}
	m.indexType = indexData.IndexType()
	m.indexCount = len(indexData)

	dsl := b.Device.NewDescriptorSetLayout()
	dsl.AddDescriptor(geometry.NewUBO(eye).Descriptor())
	m.descriptorSetLayout, err = b.Device.CreateDescriptorSetLayout(dsl)
	if err != nil {
		return nil, err
	}

	slots := b.NumFrameSlots()
	count := descriptorCount(len(objects), slots)
	dpool := b.Device.NewDescriptorPool()
	dpool.AddLayout(dsl, count)
	m.descriptorPool, err = b.Device.CreateDescriptorPool(dpool, count)
	if err != nil {
		return nil, err
	}

	for _, o := range objects {
		obj := &object{offset: o.offset, rate: o.rate}
		m.objects = append(m.objects, obj)
		err = m.bindObject(obj, slots)
		if err != nil {
			return nil, err
		}
	}

	m.pipelineLayout, err = b.Device.CreatePipelineLayout(m.descriptorSetLayout)
	if err != nil {
		return nil, err
	}

	gc := b.CreateGraphicsPipelineConfig()
	gc.AddVertexDescriptor(vertexData)
	err = gc.AddShaderStageFromFile(b.Config.ShaderPath("color.vert.spv"), "main", vk.ShaderStageVertexBit)
	if err == nil {
		err = gc.AddShaderStageFromFile(b.Config.ShaderPath("color.frag.spv"), "main", vk.ShaderStageFragmentBit)
	}
	if err != nil {
		gc.Destroy()
		return nil, err
	}
	gc.SetPipelineLayout(m.pipelineLayout)
	b.AddGraphicsPipelineConfig(pipelineName, gc)

	return m, nil
}

// bindObject gives obj a uniform buffer and descriptor set per frame slot
func (m *module) bindObject(obj *object, slots int) error {
	sets, err := m.descriptorPool.Allocate(repeat(m.descriptorSetLayout, slots)...)
	if err != nil {
		return err
	}
	obj.sets = sets

	for i := 0; i < slots; i++ {
		ubo := geometry.NewUBO(eye)
		buf, err := m.pool.AllocateFor(ubo)
		if err != nil {
			return err
		}
		obj.ubos = append(obj.ubos, ubo)
		obj.buffers = append(obj.buffers, buf)

		sets[i].AddBuffer(0, vk.DescriptorTypeUniformBuffer, &buf.Buffer, 0)
		sets[i].Write()
	}
	return nil
}

func repeat(l *vkg.DescriptorSetLayout, n int) []*vkg.DescriptorSetLayout {
	layouts := make([]*vkg.DescriptorSetLayout, n)
	for i := range layouts {
		layouts[i] = l
	}
	return layouts
}

func (m *module) NewFrame(_ *base.AppBase) {}

func (m *module) PostFrame() {}

func (m *module) CreateCommandBuffers(frame *vkg.FrameContext) ([]vk.CommandBuffer, error) {
	elapsed := float32(time.Since(m.start).Seconds())

	cmd, err := m.app.Secondary(m, frame)
	if err != nil {
		return nil, err
	}

	cmd.CmdBindGraphicsPipeline(m.app.GraphicsPipelines[pipelineName])
	cmd.CmdBindVertexBuffers(m.vertices.VKBuffer)
	cmd.CmdBindIndexBuffer(m.indices.VKBuffer, m.indexType)

	for _, obj := range m.objects {
		ubo := obj.ubos[frame.Slot]
		ubo.Model = model(obj.offset, elapsed*obj.rate)
		ubo.SetPerspective(frame.Extent)
		copy(obj.buffers[frame.Slot].Bytes(), ubo.Bytes())

		// same pipeline and geometry, only the bound set changes between draws
		cmd.CmdBindDescriptorSets(vk.PipelineBindPointGraphics, m.pipelineLayout, 0, obj.sets[frame.Slot])
		cmd.CmdDrawIndexed(m.indexCount, 1)
	}

	err = cmd.End()
	if err != nil {
		return nil, err
	}
	return []vk.CommandBuffer{cmd.VK()}, nil
}

func (m *module) Destroy() {
	if m.pipelineLayout != nil {
		m.pipelineLayout.Destroy()
	}
	if m.descriptorPool != nil {
		m.descriptorPool.Destroy()
	}
	if m.descriptorSetLayout != nil {
		m.descriptorSetLayout.Destroy()
	}
	if m.pool != nil {
		m.pool.Destroy()
	}
	m.objects = nil
}
