// Package texture uploads a generated image into device local memory and
// samples it on a spinning quad.
package texture

import (
	"context"
	"image"
	"image/color"
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
	name         = "texture"
	pipelineName = "texture"

	meshPoolName    = "texture-mesh"
	uboPoolName     = "texture-ubo"
	texturePoolName = "texture-images"

	stagingSize     = 4 * 1024 * 1024
	meshPoolSize    = 64 * 1024
	uboPoolSize     = 64 * 1024
	texturePoolSize = 4 * 1024 * 1024

	textureSize = 256
	checkers    = 8
)

var eye = lin.Vec3{0, -1.3, 1.1}

var (
	light = color.RGBA{R: 0xf0, G: 0xe6, B: 0xd2, A: 0xff}
	dark  = color.RGBA{R: 0x2a, G: 0x4b, B: 0x7c, A: 0xff}
)

func init() {
	examples.Register(Example{})
}

type Example struct{}

func (Example) Name() string {
	return name
}

func (Example) Description() string {
	return "a staged texture sampled through a combined image sampler"
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

// Checkerboard returns a size by size image of cells by cells squares
// alternating between a and b, starting with a in the top left
func Checkerboard(size, cells int, a, b color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	if cells <= 0 {
		cells = 1
	}
	cell := size / cells
	if cell == 0 {
		cell = 1
	}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := a
			if (x/cell+y/cell)%2 == 1 {
				c = b
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

type frameData struct {
	ubo           *geometry.UBO
	buffer        *vkg.BufferResource
	descriptorSet *vkg.DescriptorSet
}

type module struct {
	app *base.AppBase

	meshPool    *vkg.BufferResourcePool
	uboPool     *vkg.BufferResourcePool
	texturePool *vkg.ImageResourcePool

	vertices   *vkg.BufferResource
	indices    *vkg.BufferResource
	indexType  vk.IndexType
	indexCount int

	texture     *vkg.ImageResource
	textureView *vkg.ImageView
	sampler     *vkg.Sampler

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

	rm := b.ResourceManager
	if !rm.HasStagingPool() {
		_, err = rm.AllocateStagingPool(stagingSize)
		if err != nil {
			return nil, err
		}
	}

	cmd, err := b.GraphicsCommandPool.AllocateBuffer(vk.CommandBufferLevelPrimary)
	if err != nil {
		return nil, err
	}
	defer b.GraphicsCommandPool.FreeBuffer(cmd)

	err = m.createMesh(cmd)
	if err != nil {
		return nil, err
	}
	err = m.createTexture(cmd)
	if err != nil {
		return nil, err
	}
	err = m.createDescriptors()
	if err != nil {
		return nil, err
	}

	m.pipelineLayout, err = b.Device.CreatePipelineLayout(m.descriptorSetLayout)
	if err != nil {
		return nil, err
	}

	gc := b.CreateGraphicsPipelineConfig()
	gc.AddVertexDescriptor(geometry.TexVertexData{})
	err = gc.AddShaderStageFromFile(b.Config.ShaderPath("texture.vert.spv"), "main", vk.ShaderStageVertexBit)
	if err == nil {
		err = gc.AddShaderStageFromFile(b.Config.ShaderPath("texture.frag.spv"), "main", vk.ShaderStageFragmentBit)
	}
	if err != nil {
		gc.Destroy()
		return nil, err
	}
	gc.SetCullMode(vk.CullModeNone)
	gc.SetPipelineLayout(m.pipelineLayout)
	b.AddGraphicsPipelineConfig(pipelineName, gc)

	return m, nil
}

func (m *module) createMesh(cmd *vkg.CommandBuffer) error {
	var err error
	m.meshPool, err = m.app.ResourceManager.AllocateDeviceVertexAndIndexBufferPool(meshPoolName, meshPoolSize)
	if err != nil {
		return err
	}

	vertexData, indexData := geometry.Quad()
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

func (m *module) createTexture(cmd *vkg.CommandBuffer) error {
	var err error
	m.texturePool, err = m.app.ResourceManager.AllocateDeviceTexturePool(texturePoolName, texturePoolSize)
	if err != nil {
		return err
	}

	// the copy goes through the staging pool and leaves the image ready for sampling
	m.texture, err = m.texturePool.StageTextureFromImage(Checkerboard(textureSize, checkers, light, dark), cmd, m.app.GraphicsQueue)
	if err != nil {
		return err
	}
	m.textureView, err = m.texture.CreateImageView()
	if err != nil {
		return err
	}
	// nearest filtering keeps the checker edges sharp
	m.sampler, err = m.app.Device.CreateSampler(vk.FilterNearest, vk.SamplerAddressModeRepeat)
	return err
}

func (m *module) createDescriptors() error {
	b := m.app
	var err error

	dsl := b.Device.NewDescriptorSetLayout()
	dsl.AddDescriptor(geometry.NewUBO(eye).Descriptor())
	dsl.AddDescriptor(&vkg.Descriptor{
		Binding:     1,
		Type:        vk.DescriptorTypeCombinedImageSampler,
		ShaderStage: vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
	})
	m.descriptorSetLayout, err = b.Device.CreateDescriptorSetLayout(dsl)
	if err != nil {
		return err
	}

	slots := b.NumFrameSlots()
	dpool := b.Device.NewDescriptorPool()
	dpool.AddLayout(dsl, slots)
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
		f.ubo = geometry.NewUBO(eye)
		f.buffer, err = m.uboPool.AllocateFor(f.ubo)
		if err != nil {
			return err
		}
		f.descriptorSet, err = m.descriptorPool.AllocateOne(m.descriptorSetLayout)
		if err != nil {
			return err
		}
		f.descriptorSet.AddBuffer(0, vk.DescriptorTypeUniformBuffer, &f.buffer.Buffer, 0)
		f.descriptorSet.AddCombinedImageSampler(1, vk.ImageLayoutShaderReadOnlyOptimal, m.textureView.VKImageView, m.sampler.VKSampler)
		f.descriptorSet.Write()
	}
	return nil
}

func (m *module) NewFrame(_ *base.AppBase) {}

func (m *module) PostFrame() {}

func (m *module) CreateCommandBuffers(frame *vkg.FrameContext) ([]vk.CommandBuffer, error) {
	f := &m.frames[frame.Slot]

	f.ubo.Model.Identity()
	f.ubo.Spin(float32(time.Since(m.start).Seconds() * 0.5))
	f.ubo.SetPerspective(frame.Extent)
	copy(f.buffer.Bytes(), f.ubo.Bytes())

	cmd, err := m.app.Secondary(m, frame)
	if err != nil {
		return nil, err
	}

	cmd.CmdBindGraphicsPipeline(m.app.GraphicsPipelines[pipelineName])
	cmd.CmdBindVertexBuffers(m.vertices.VKBuffer)
	cmd.CmdBindIndexBuffer(m.indices.VKBuffer, m.indexType)
	cmd.CmdBindDescriptorSets(vk.PipelineBindPointGraphics, m.pipelineLayout, 0, f.descriptorSet)
	cmd.CmdDrawIndexed(m.indexCount, 1)

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
	if m.sampler != nil {
		m.sampler.Destroy()
	}
	if m.textureView != nil {
		m.textureView.Destroy()
	}
	if m.texturePool != nil {
		m.texturePool.Destroy()
	}
	if m.uboPool != nil {
		m.uboPool.Destroy()
	}
	if m.meshPool != nil {
		m.meshPool.Destroy()
	}
	m.frames = nil
}
