package overlay

import (
	"image"
	"unsafe"

	"github.com/celer/vkexamples/internal/base"
	"github.com/celer/vkexamples/vkg"
	"github.com/cockroachdb/errors"
	"github.com/inkyblackness/imgui-go/v4"
	vk "github.com/vulkan-go/vulkan"
	lin "github.com/xlab/linmath"
)

const (
	// PipelineName is the graphics pipeline the overlay registers
	PipelineName = "overlay"

	vertexPoolName = "overlay-vdata"
	fontPoolName   = "overlay-fonts"
)

type projection struct {
	Proj lin.Mat4x4
}

func (p *projection) Bytes() []byte {
	return vkg.ToBytes(unsafe.Pointer(&p.Proj[0]), int(unsafe.Sizeof(projection{})))
}

// orthographic maps pixel coordinates of extent to clip space
func orthographic(extent vk.Extent2D) lin.Mat4x4 {
	m := lin.Mat4x4{
		{2.0, 0.0, 0.0, 0.0},
		{0.0, 2.0, 0.0, 0.0},
		{0.0, 0.0, 1.0, 0.0},
		{-1, -1, 0.0, 1.0},
	}
	if extent.Width > 0 {
		m[0][0] /= float32(extent.Width)
	}
	if extent.Height > 0 {
		m[1][1] /= float32(extent.Height)
	}
	return m
}

// slotData is owned by one frame slot and only rewritten once its fence signaled
type slotData struct {
	ubo           *vkg.BufferResource
	descriptorSet *vkg.DescriptorSet
	transient     []*vkg.BufferResource
}

func (s *slotData) freeTransient() {
	for _, b := range s.transient {
		b.Free()
	}
	s.transient = s.transient[:0]
}

// renderer draws imgui draw data into secondary command buffers
type renderer struct {
	app    *base.AppBase
	module base.GraphicsModule

	vertexPool *vkg.BufferResourcePool
	slots      []slotData

	pipelineLayout      *vkg.PipelineLayout
	descriptorPool      *vkg.DescriptorPool
	descriptorSetLayout *vkg.DescriptorSetLayout

	font        *vkg.ImageResource
	fontView    *vkg.ImageView
	fontSampler *vkg.Sampler

	poolSize uint64
}

type drawVertex struct{}

func (drawVertex) GetBindingDescription() vk.VertexInputBindingDescription {
	vertexSize, _, _, _ := imgui.VertexBufferLayout()
	return vk.VertexInputBindingDescription{
		Binding:   0,
		Stride:    uint32(vertexSize),
		InputRate: vk.VertexInputRateVertex,
	}
}

func (drawVertex) GetAttributeDescriptions() []vk.VertexInputAttributeDescription {
	_, pos, uv, col := imgui.VertexBufferLayout()
	return []vk.VertexInputAttributeDescription{
		{Binding: 0, Location: 0, Format: vk.FormatR32g32Sfloat, Offset: uint32(pos)},
		{Binding: 0, Location: 1, Format: vk.FormatR32g32Sfloat, Offset: uint32(uv)},
		{Binding: 0, Location: 2, Format: vk.FormatR8g8b8a8Unorm, Offset: uint32(col)},
	}
}

func newRenderer(app *base.AppBase, module base.GraphicsModule, poolSize uint64) *renderer {
	return &renderer{app: app, module: module, poolSize: poolSize}
}

func (r *renderer) init(fonts imgui.FontAtlas) error {
	rm := r.app.ResourceManager
	if !rm.HasStagingPool() {
		_, err := rm.AllocateStagingPool(32 * 1024 * 1024)
		if err != nil {
			return err
		}
	}

	err := r.createBuffers()
	if err != nil {
		return err
	}
	err = r.createFontTexture(fonts)
	if err != nil {
		return err
	}
	err = r.createDescriptorSets()
	if err != nil {
		return err
	}
	return r.createGraphicsPipeline()
}

func (r *renderer) createBuffers() error {
	slots := r.app.NumFrameSlots()
	uboSize := uint64(unsafe.Sizeof(projection{}))

	var err error
	r.vertexPool, err = r.app.ResourceManager.AllocateHostVertexAndIndexBufferPool(vertexPoolName, r.poolSize+uint64(slots)*(uboSize+256))
	if err != nil {
		return errors.Wrap(err, "unable to allocate overlay vertex pool")
	}
	err = r.vertexPool.Map()
	if err != nil {
		return err
	}

	r.slots = make([]slotData, slots)
	for i := range r.slots {
		r.slots[i].ubo, err = r.vertexPool.AllocateBuffer(uboSize, vk.BufferUsageUniformBufferBit)
		if err != nil {
			return errors.Wrap(err, "unable to allocate buffer for overlay projection")
		}
	}
	return nil
}

func (r *renderer) createFontTexture(fonts imgui.FontAtlas) error {
	tex := fonts.TextureDataRGBA32()

	tpool, err := r.app.ResourceManager.AllocateDeviceTexturePool(fontPoolName, uint64(tex.Width*tex.Height*4)+1024*1024)
	if err != nil {
		return err
	}

	cmd, err := r.app.GraphicsCommandPool.AllocateBuffer(vk.CommandBufferLevelPrimary)
	if err != nil {
		return err
	}
	defer r.app.GraphicsCommandPool.FreeBuffer(cmd)

	img := image.NewRGBA(image.Rect(0, 0, tex.Width, tex.Height))
	copy(img.Pix, unsafe.Slice((*byte)(tex.Pixels), tex.Width*tex.Height*4))

	r.font, err = tpool.StageTextureFromImage(img, cmd, r.app.GraphicsQueue)
	if err != nil {
		return err
	}

	r.fontView, err = r.font.CreateImageView()
	if err != nil {
		return err
	}

	r.fontSampler, err = r.app.Device.CreateSampler(vk.FilterLinear, vk.SamplerAddressModeRepeat)
	return err
}

func (r *renderer) createDescriptorSets() error {
	slots := len(r.slots)

	dpool := r.app.Device.NewDescriptorPool()
	dpool.AddPoolSize(vk.DescriptorTypeUniformBuffer, slots)
	dpool.AddPoolSize(vk.DescriptorTypeCombinedImageSampler, slots)
	_, err := r.app.Device.CreateDescriptorPool(dpool, slots)
	if err != nil {
		return err
	}
	r.descriptorPool = dpool

	dsl := r.app.Device.NewDescriptorSetLayout()
	dsl.AddBinding(vk.DescriptorSetLayoutBinding{
		Binding:         0,
		DescriptorType:  vk.DescriptorTypeUniformBuffer,
		DescriptorCount: 1,
		StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit),
	})
	dsl.AddBinding(vk.DescriptorSetLayoutBinding{
		Binding:         1,
		DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
		DescriptorCount: 1,
		StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
	})
	_, err = r.app.Device.CreateDescriptorSetLayout(dsl)
	if err != nil {
		return err
	}
	r.descriptorSetLayout = dsl

	for i := range r.slots {
		s := &r.slots[i]
		s.descriptorSet, err = dpool.AllocateOne(dsl)
		if err != nil {
			return err
		}
		s.descriptorSet.AddBuffer(0, vk.DescriptorTypeUniformBuffer, &s.ubo.Buffer, 0)
		s.descriptorSet.AddCombinedImageSampler(1, vk.ImageLayoutShaderReadOnlyOptimal, r.fontView.VKImageView, r.fontSampler.VKSampler)
		s.descriptorSet.Write()
	}

	r.pipelineLayout, err = r.app.Device.CreatePipelineLayout(dsl)
	return err
}

func (r *renderer) createGraphicsPipeline() error {
	gc := r.app.CreateGraphicsPipelineConfig()

	gc.AddVertexDescriptor(drawVertex{})
	gc.AddBlendAttachment(vk.PipelineColorBlendAttachmentState{
		ColorWriteMask:      vk.ColorComponentFlags(vk.ColorComponentRBit | vk.ColorComponentGBit | vk.ColorComponentBBit | vk.ColorComponentABit),
		SrcColorBlendFactor: vk.BlendFactorSrcAlpha,
		DstColorBlendFactor: vk.BlendFactorOneMinusSrcAlpha,
		ColorBlendOp:        vk.BlendOpAdd,
		SrcAlphaBlendFactor: vk.BlendFactorOne,
		DstAlphaBlendFactor: vk.BlendFactorZero,
		AlphaBlendOp:        vk.BlendOpAdd,
		BlendEnable:         vk.True,
	})
	err := gc.AddShaderStageFromFile(r.app.Config.ShaderPath("overlay.vert.spv"), "main", vk.ShaderStageVertexBit)
	if err != nil {
		return err
	}
	err = gc.AddShaderStageFromFile(r.app.Config.ShaderPath("overlay.frag.spv"), "main", vk.ShaderStageFragmentBit)
	if err != nil {
		return err
	}
	gc.SetDynamicState(vk.DynamicStateViewport, vk.DynamicStateScissor)
	gc.SetCullMode(vk.CullModeNone)
	gc.SetDepth(false, false)
	gc.SetPipelineLayout(r.pipelineLayout)

	r.app.AddGraphicsPipelineConfig(PipelineName, gc)
	return nil
}

// clipScissor converts an imgui clip rectangle into a scissor clamped to the framebuffer
func clipScissor(clip imgui.Vec4, extent vk.Extent2D) (vk.Rect2D, bool) {
	x0, y0 := clip.X, clip.Y
	x1, y1 := clip.Z, clip.W
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > float32(extent.Width) {
		x1 = float32(extent.Width)
	}
	if y1 > float32(extent.Height) {
		y1 = float32(extent.Height)
	}
	if x1 <= x0 || y1 <= y0 {
		return vk.Rect2D{}, false
	}
	return vk.Rect2D{
		Offset: vk.Offset2D{X: int32(x0), Y: int32(y0)},
		Extent: vk.Extent2D{Width: uint32(x1 - x0), Height: uint32(y1 - y0)},
	}, true
}

func (r *renderer) render(frame *vkg.FrameContext, drawData imgui.DrawData) ([]vk.CommandBuffer, error) {
	s := &r.slots[frame.Slot]
	s.freeTransient()

	proj := projection{Proj: orthographic(frame.Extent)}
	copy(s.ubo.Bytes(), proj.Bytes())
	err := s.ubo.Flush()
	if err != nil {
		return nil, err
	}

	indexType := vk.IndexTypeUint16
	if imgui.IndexBufferLayout() == 4 {
		indexType = vk.IndexTypeUint32
	}

	pipeline, ok := r.app.GraphicsPipelines[PipelineName]
	if !ok {
		return nil, errors.Newf("pipeline %q has not been created", PipelineName)
	}

	var buffers []vk.CommandBuffer
	for _, list := range drawData.CommandLists() {
		vertexData, vertexDataSize := list.VertexBuffer()
		indexData, indexDataSize := list.IndexBuffer()
		if vertexDataSize == 0 || indexDataSize == 0 {
			continue
		}

		vbuff, err := r.vertexPool.AllocateBuffer(uint64(vertexDataSize), vk.BufferUsageVertexBufferBit)
		if err != nil {
			return nil, errors.Wrap(err, "unable to allocate overlay vertex buffer")
		}
		s.transient = append(s.transient, vbuff)

		ibuff, err := r.vertexPool.AllocateBuffer(uint64(indexDataSize), vk.BufferUsageIndexBufferBit)
		if err != nil {
			return nil, errors.Wrap(err, "unable to allocate overlay index buffer")
		}
		s.transient = append(s.transient, ibuff)

		copy(vbuff.Bytes(), unsafe.Slice((*byte)(vertexData), vertexDataSize))
		copy(ibuff.Bytes(), unsafe.Slice((*byte)(indexData), indexDataSize))
		if err := vbuff.Flush(); err != nil {
			return nil, err
		}
		if err := ibuff.Flush(); err != nil {
			return nil, err
		}

		cmd, err := r.app.Secondary(r.module, frame)
		if err != nil {
			return nil, err
		}

		cmd.CmdSetViewport(frame.Extent)
		cmd.CmdBindGraphicsPipeline(pipeline)
		cmd.CmdBindDescriptorSets(vk.PipelineBindPointGraphics, r.pipelineLayout, 0, s.descriptorSet)
		cmd.CmdBindVertexBuffers(vbuff.VKBuffer)
		cmd.CmdBindIndexBuffer(ibuff.VKBuffer, indexType)

		var offset int
		for _, dc := range list.Commands() {
			if dc.HasUserCallback() {
				dc.CallUserCallback(list)
			} else if scissor, visible := clipScissor(dc.ClipRect(), frame.Extent); visible {
				vk.CmdSetScissor(cmd.VK(), 0, 1, []vk.Rect2D{scissor})
				vk.CmdDrawIndexed(cmd.VK(), uint32(dc.ElementCount()), 1, uint32(offset), 0, 0)
			}
			offset += dc.ElementCount()
		}

		err = cmd.End()
		if err != nil {
			return nil, err
		}
		buffers = append(buffers, cmd.VK())
	}

	return buffers, nil
}

func (r *renderer) destroy() {
	for i := range r.slots {
		r.slots[i].freeTransient()
		if r.slots[i].ubo != nil {
			r.slots[i].ubo.Free()
		}
	}

	if r.fontSampler != nil {
		r.fontSampler.Destroy()
	}
	if r.fontView != nil {
		r.fontView.Destroy()
	}
	if r.font != nil {
		r.font.Destroy()
	}

	if r.pipelineLayout != nil {
		r.pipelineLayout.Destroy()
	}
	if r.descriptorPool != nil {
		r.descriptorPool.Destroy()
	}
	if r.descriptorSetLayout != nil {
		r.descriptorSetLayout.Destroy()
	}
}
