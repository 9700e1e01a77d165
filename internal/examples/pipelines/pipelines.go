// Package pipelines renders one cube through three graphics pipelines that
// share a layout but differ in fragment shader and rasterization state.
package pipelines

import (
	"context"
	"time"
	"unsafe"

	"github.com/celer/vkexamples/internal/base"
	"github.com/celer/vkexamples/internal/config"
	"github.com/celer/vkexamples/internal/examples"
	"github.com/celer/vkexamples/internal/geometry"
	"github.com/celer/vkexamples/vkg"
	"github.com/sirupsen/logrus"
	vk "github.com/vulkan-go/vulkan"
	lin "github.com/xlab/linmath"
)

const (
	name         = "pipelines"
	meshPoolName = "pipelines-mesh"
	uboPoolName  = "pipelines-ubo"
	stagingSize  = 4 * 1024 * 1024
	meshPoolSize = 1024 * 1024
	uboPoolSize  = 256 * 1024
)

func init() {
	examples.Register(Example{})
}

type Example struct{}

func (Example) Name() string {
	return name
}

func (Example) Description() string {
	return "phong, toon and wireframe pipelines side by side with push constant lighting"
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

// variant is one of the pipelines drawn side by side
type variant struct {
	name     string
	fragment string
	mode     vk.PolygonMode
}

// variants lists the pipelines left to right. Line rasterization needs the
// fillModeNonSolid feature, without it the wireframe slot falls back to phong.
func variants(fillModeNonSolid bool) []variant {
	wire := variant{name: "wireframe", fragment: "phong.frag.spv", mode: vk.PolygonModeLine}
	if !fillModeNonSolid {
		wire.mode = vk.PolygonModeFill
	}
	return []variant{
		{name: "phong", fragment: "phong.frag.spv", mode: vk.PolygonModeFill},
		{name: "toon", fragment: "toon.frag.spv", mode: vk.PolygonModeFill},
		wire,
	}
}

// columns splits extent into n side by side regions, the last one absorbs
// the remainder of the division
func columns(extent vk.Extent2D, n int) []vk.Rect2D {
	if n <= 0 {
		return nil
	}
	width := extent.Width / uint32(n)
	rects := make([]vk.Rect2D, n)
	for i := range rects {
		rects[i] = vk.Rect2D{
			Offset: vk.Offset2D{X: int32(uint32(i) * width)},
			Extent: vk.Extent2D{Width: width, Height: extent.Height},
		}
	}
	rects[n-1].Extent.Width = extent.Width - uint32(n-1)*width
	return rects
}

// light is pushed to the fragment stage, both vectors are padded to vec4
type light struct {
	Direction [4]float32
	Color     [4]float32
}

const lightSize = int(unsafe.Sizeof(light{}))

func (l *light) Bytes() []byte {
	return vkg.ToBytes(unsafe.Pointer(l), lightSize)
}

type frameData struct {
	ubo           *geometry.UBO
	buffer        *vkg.BufferResource
	descriptorSet *vkg.DescriptorSet
}

type module struct {
	app *base.AppBase
	log *logrus.Entry

	variants []variant

	vertices   *vkg.BufferResource
	indices    *vkg.BufferResource
	indexType  vk.IndexType
	indexCount int

	meshPool *vkg.BufferResourcePool
	uboPool  *vkg.BufferResourcePool
	frames   []frameData

	descriptorSetLayout *vkg.DescriptorSetLayout
	descriptorPool      *vkg.DescriptorPool
	pipelineLayout      *vkg.PipelineLayout

	light light
	start time.Time
}

func newModule(b *base.AppBase) (m *module, err error) {
	m = &module{
		app:   b,
		log:   b.Log(),
		start: time.Now(),
		light: light{
			Direction: [4]float32{-0.4, -0.6, -1, 0},
			Color:     [4]float32{1, 0.95, 0.85, 1},
		},
	}
	defer func() {
		if err != nil {
			m.Destroy()
		}
	}()

	nonSolid := b.Device.EnabledFeatures.FillModeNonSolid == vk.True
	if !nonSolid {
		m.log.Warn("fillModeNonSolid unsupported, drawing the wireframe column filled")
	}
	m.variants = variants(nonSolid)

	err = m.createMesh()
	if err != nil {
		return nil, err
	}
	err = m.createDescriptors()
	if err != nil {
		return nil, err
	}

	m.pipelineLayout, err = b.Device.CreatePipelineLayoutWithPushConstants(
		[]*vkg.DescriptorSetLayout{m.descriptorSetLayout},
		[]vk.PushConstantRange{vkg.PushConstantRange(vk.ShaderStageFragmentBit, 0, lightSize)},
	)
	if err != nil {
		return nil, err
	}

	for _, v := range m.variants {
		err = m.addPipeline(v)
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *module) createMesh() error {
	rm := m.app.ResourceManager
	if !rm.HasStagingPool() {
		_, err := rm.AllocateStagingPool(stagingSize)
		if err != nil {
			return err
		}
	}

	var err error
	m.meshPool, err = rm.AllocateDeviceVertexAndIndexBufferPool(meshPoolName, meshPoolSize)
	if err != nil {
		return err
	}

	cmd, err := m.app.GraphicsCommandPool.AllocateBuffer(vk.CommandBufferLevelPrimary)
	if err != nil {
		return err
	}
	defer m.app.GraphicsCommandPool.FreeBuffer(cmd)

	vertexData, indexData := geometry.LitCube(lin.Vec3{0.8, 0.3, 0.2})
	m.vertices, err = m.meshPool.StageBuffer(vertexData, 0, cmd, m.app.GraphicsQueue)
	if err != nil {
		return err
	}
	m.indices, err = m.meshPool.StageBuffer(indexData, 0, cmd, m.app.GraphicsQueue)
	if err != nil {
		return err
	}
	m.indexType = indexData.IndexType()
	m.indexCount = len(indexData)
	return nil
}

func (m *module) createDescriptors() error {
	b := m.app
	var err error

	ubo := geometry.NewUBO(lin.Vec3{0, 3, 2})
	dsl := b.Device.NewDescriptorSetLayout()
	dsl.AddDescriptor(ubo.Descriptor())
	m.descriptorSetLayout, err = b.Device.CreateDescriptorSetLayout(dsl)
	if err != nil {
		return err
	}

	slots := b.NumFrameSlots()
	dpool := b.Device.NewDescriptorPool()
	dpool.AddPoolSize(vk.DescriptorTypeUniformBuffer, slots)
	m.descriptorPool, err = b.Device.CreateDescriptorPool(dpool, slots)
	if err != nil {
		return err
	}

	m.uboPool, err = b.ResourceManager.AllocateHostUniformBufferPool(uboPoolName, uboPoolSize)
	if err != nil {
		return err
	}
	err = m.uboPool.Map()
	if err != nil {
		return err
	}

	m.frames = make([]frameData, slots)
	for i := range m.frames {
		f := &m.frames[i]
		f.ubo = geometry.NewUBO(lin.Vec3{0, 3, 2})
		f.buffer, err = m.uboPool.AllocateFor(f.ubo)
		if err != nil {
			return err
		}
		f.descriptorSet, err = m.descriptorPool.AllocateOne(m.descriptorSetLayout)
		if err != nil {
			return err
		}
		f.descriptorSet.AddBuffer(0, vk.DescriptorTypeUniformBuffer, &f.buffer.Buffer, 0)
		f.descriptorSet.Write()
	}
	return nil
}

func (m *module) addPipeline(v variant) error {
	b := m.app
	gc := b.CreateGraphicsPipelineConfig()
	gc.AddVertexDescriptor(geometry.LitVertexData{})
	err := gc.AddShaderStageFromFile(b.Config.ShaderPath("lit.vert.spv"), "main", vk.ShaderStageVertexBit)
	if err == nil {
		err = gc.AddShaderStageFromFile(b.Config.ShaderPath(v.fragment), "main", vk.ShaderStageFragmentBit)
	}
	if err != nil {
		gc.Destroy()
		return err
	}
	gc.SetPolygonMode(v.mode)
	gc.SetCullMode(vk.CullModeNone)
	// each pipeline draws into its own column, set while recording
	gc.SetDynamicState(vk.DynamicStateViewport, vk.DynamicStateScissor)
	gc.SetPipelineLayout(m.pipelineLayout)
	b.AddGraphicsPipelineConfig(v.name, gc)
	return nil
}

func (m *module) NewFrame(_ *base.AppBase) {}

func (m *module) PostFrame() {}

func (m *module) CreateCommandBuffers(frame *vkg.FrameContext) ([]vk.CommandBuffer, error) {
	rects := columns(frame.Extent, len(m.variants))
	f := &m.frames[frame.Slot]

	f.ubo.Model.Identity()
	f.ubo.Spin(float32(time.Since(m.start).Seconds()))
	f.ubo.SetPerspective(rects[0].Extent)
	copy(f.buffer.Bytes(), f.ubo.Bytes())
	err := f.buffer.Flush()
	if err != nil {
		return nil, err
	}

	cmd, err := m.app.Secondary(m, frame)
	if err != nil {
		return nil, err
	}

	cmd.CmdBindVertexBuffers(m.vertices.VKBuffer)
	cmd.CmdBindIndexBuffer(m.indices.VKBuffer, m.indexType)
	cmd.CmdBindDescriptorSets(vk.PipelineBindPointGraphics, m.pipelineLayout, 0, f.descriptorSet)
	cmd.CmdPushConstants(m.pipelineLayout, vk.ShaderStageFragmentBit, 0, m.light.Bytes())

	for i, v := range m.variants {
		r := rects[i]
		vk.CmdSetViewport(cmd.VK(), 0, 1, []vk.Viewport{{
			X:        float32(r.Offset.X),
			Y:        float32(r.Offset.Y),
			Width:    float32(r.Extent.Width),
			Height:   float32(r.Extent.Height),
			MinDepth: 0,
			MaxDepth: 1,
		}})
		vk.CmdSetScissor(cmd.VK(), 0, 1, []vk.Rect2D{r})
		cmd.CmdBindGraphicsPipeline(m.app.GraphicsPipelines[v.name])
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
	// pools destroy the buffers still allocated from them
	if m.uboPool != nil {
		m.uboPool.Destroy()
	}
	if m.meshPool != nil {
		m.meshPool.Destroy()
	}
	m.frames = nil
}
