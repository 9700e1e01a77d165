// Package multithreading records the draws of many cubes from a pool of
// goroutines. Every worker owns a command pool per frame slot and fills one
// secondary command buffer per frame, the primary buffer executes them all.
package multithreading

import (
	"context"
	"math"
	"runtime"
	"time"
	"unsafe"

	"github.com/celer/vkexamples/internal/base"
	"github.com/celer/vkexamples/internal/config"
	"github.com/celer/vkexamples/internal/examples"
	"github.com/celer/vkexamples/internal/geometry"
	"github.com/celer/vkexamples/internal/overlay"
	"github.com/celer/vkexamples/vkg"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"
	"github.com/vulkan-go/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"
	"golang.org/x/sync/errgroup"
)

const (
	name         = "multithreading"
	pipelineName = "multithreading"
	meshPoolName = "multithreading-mesh"
	stagingSize  = 4 * 1024 * 1024
	meshPoolSize = 256 * 1024

	// spacing between neighbouring cubes
	spacing = 1.5
)

func init() {
	examples.Register(Example{})
}

type Example struct{}

func (Example) Name() string {
	return name
}

func (Example) Description() string {
	return "secondary command buffers recorded in parallel by a pool of goroutines"
}

func (Example) Run(ctx context.Context, cfg *config.Config) error {
	return base.Run(ctx, cfg, name, func(b *base.AppBase) error {
		m, err := newModule(b)
		if err != nil {
			return err
		}
		b.AddGraphicsModule(m)

		if cfg.Multithreading.Overlay {
			ov, err := overlay.New(b)
			if err != nil {
				return err
			}
			ov.AddUI(m)
			// drawn after the cubes, and offered input first
			b.AddGraphicsModule(ov)
			b.AddInputModule(ov)
		}
		b.AddInputModule(m)
		return nil
	})
}

// span is the half open range of objects a worker records
type span struct {
	start, end int
}

func (s span) len() int {
	return s.end - s.start
}

// partition splits n objects into w contiguous spans, the first n%w spans
// get one extra object
func partition(n, w int) []span {
	if w <= 0 {
		return nil
	}
	spans := make([]span, w)
	size, extra := n/w, n%w
	start := 0
	for i := range spans {
		end := start + size
		if i < extra {
			end++
		}
		spans[i] = span{start: start, end: end}
		start = end
	}
	return spans
}

// workerCount resolves the configured worker count, 0 means one per CPU.
// There is never more than one worker per object.
func workerCount(configured, objects int) int {
	w := configured
	if w <= 0 {
		w = runtime.NumCPU()
	}
	if objects > 0 && w > objects {
		w = objects
	}
	if w < 1 {
		w = 1
	}
	return w
}

// gridPositions lays n objects out on a square grid in the xy plane centered
// on the origin
func gridPositions(n int) []mgl32.Vec3 {
	if n <= 0 {
		return nil
	}
	side := int(math.Ceil(math.Sqrt(float64(n))))
	offset := float32(side-1) * spacing / 2
	positions := make([]mgl32.Vec3, n)
	for i := range positions {
		x, y := i%side, i/side
		positions[i] = mgl32.Vec3{float32(x)*spacing - offset, float32(y)*spacing - offset, 0}
	}
	return positions
}

// pushConstants is the per draw block read by the vertex shader
type pushConstants struct {
	MVP   mgl32.Mat4
	Color mgl32.Vec4
}

const pushConstantsSize = int(unsafe.Sizeof(pushConstants{}))

func (p *pushConstants) Bytes() []byte {
	return vkg.ToBytes(unsafe.Pointer(p), pushConstantsSize)
}

type object struct {
	position mgl32.Vec3
	axis     mgl32.Vec3
	speed    float32
	color    mgl32.Vec4
}

// model spins the object around its axis then moves it into place
func (o *object) model(t float32) mgl32.Mat4 {
	return mgl32.Translate3D(o.position.X(), o.position.Y(), o.position.Z()).
		Mul4(mgl32.HomogRotate3D(t*o.speed, o.axis)).
		Mul4(mgl32.Scale3D(0.5, 0.5, 0.5))
}

func newObjects(n int) []object {
	positions := gridPositions(n)
	objects := make([]object, n)
	for i := range objects {
		f := float32(i)
		objects[i] = object{
			position: positions[i],
			axis:     mgl32.Vec3{float32(math.Sin(float64(f))), float32(math.Cos(float64(f))), 1}.Normalize(),
			speed:    0.5 + float32(i%7)*0.25,
			color: mgl32.Vec4{
				0.5 + 0.5*float32(math.Sin(float64(f)*0.37)),
				0.5 + 0.5*float32(math.Sin(float64(f)*0.53+2)),
				0.5 + 0.5*float32(math.Sin(float64(f)*0.71+4)),
				1,
			},
		}
	}
	return objects
}

// camera returns a view projection that frames a grid of n objects
func camera(n int, extent vk.Extent2D) mgl32.Mat4 {
	side := math.Ceil(math.Sqrt(float64(n)))
	distance := float32(side*spacing*1.2 + 2)
	view := mgl32.LookAtV(mgl32.Vec3{0, -distance * 0.6, distance}, mgl32.Vec3{}, mgl32.Vec3{0, 0, 1})
	proj := mgl32.Perspective(mgl32.DegToRad(45), geometry.Aspect(extent), 0.1, distance*3)
	// vulkan clip space y points down
	proj[5] *= -1
	return proj.Mul4(view)
}

type worker struct {
	span  span
	pools base.FramePools
}

type module struct {
	base.NopInput

	app *base.AppBase
	log *logrus.Entry

	objects []object
	workers []*worker

	meshPool   *vkg.BufferResourcePool
	vertices   *vkg.BufferResource
	indices    *vkg.BufferResource
	indexType  vk.IndexType
	indexCount int

	pipelineLayout *vkg.PipelineLayout

	paused    bool
	elapsed   float32
	lastFrame time.Time
	frameTime time.Duration
}

func newModule(b *base.AppBase) (m *module, err error) {
	cfg := b.Config.Multithreading
	m = &module{
		app:     b,
		log:     b.Log(),
		objects: newObjects(cfg.Objects),
	}
	defer func() {
		if err != nil {
			m.Destroy()
		}
	}()

	slots := b.NumFrameSlots()
	for _, s := range partition(len(m.objects), workerCount(cfg.Workers, len(m.objects))) {
		pools, err := base.NewFramePools(b.Device, b.GraphicsQueue.QueueFamily, slots)
		if err != nil {
			return nil, err
		}
		m.workers = append(m.workers, &worker{span: s, pools: pools})
	}
	m.log.WithFields(logrus.Fields{
		"workers": len(m.workers),
		"objects": len(m.objects),
	}).Info("recording in parallel")

	err = m.createMesh()
	if err != nil {
		return nil, err
	}

	m.pipelineLayout, err = b.Device.CreatePipelineLayoutWithPushConstants(nil,
		[]vk.PushConstantRange{vkg.PushConstantRange(vk.ShaderStageVertexBit, 0, pushConstantsSize)})
	if err != nil {
		return nil, err
	}

	gc := b.CreateGraphicsPipelineConfig()
	gc.AddVertexDescriptor(geometry.VertexData{})
	err = gc.AddShaderStageFromFile(b.Config.ShaderPath("instanced.vert.spv"), "main", vk.ShaderStageVertexBit)
	if err == nil {
		err = gc.AddShaderStageFromFile(b.Config.ShaderPath("instanced.frag.spv"), "main", vk.ShaderStageFragmentBit)
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

	vertexData, indexData := geometry.Cube()
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

func (m *module) NewFrame(_ *base.AppBase) {
	now := time.Now()
	if !m.lastFrame.IsZero() {
		m.frameTime = now.Sub(m.lastFrame)
		if !m.paused {
			m.elapsed += float32(m.frameTime.Seconds())
		}
	}
	m.lastFrame = now
}

func (m *module) PostFrame() {}

func (m *module) CreateCommandBuffers(frame *vkg.FrameContext) ([]vk.CommandBuffer, error) {
	viewProj := camera(len(m.objects), frame.Extent)
	pipeline := m.app.GraphicsPipelines[pipelineName]
	buffers := make([]vk.CommandBuffer, len(m.workers))

	var g errgroup.Group
	for i, w := range m.workers {
		i, w := i, w
		if w.span.len() == 0 {
			continue
		}
		g.Go(func() error {
			cmd, err := m.record(w, frame, pipeline, viewProj)
			if err != nil {
				return err
			}
			buffers[i] = cmd.VK()
			return nil
		})
	}
	err := g.Wait()
	if err != nil {
		return nil, err
	}

	// workers without objects leave a gap
	ret := buffers[:0]
	for _, b := range buffers {
		if b != nil {
			ret = append(ret, b)
		}
	}
	return ret, nil
}

// record fills one secondary command buffer with the draws of w's objects,
// it only touches state owned by w
func (m *module) record(w *worker, frame *vkg.FrameContext, pipeline *vkg.GraphicsPipeline, viewProj mgl32.Mat4) (*vkg.CommandBuffer, error) {
	pool := w.pools[frame.Slot]
	// the slot fence has signaled, nothing recorded from this pool is pending
	err := pool.Reset()
	if err != nil {
		return nil, err
	}
	cmd, err := pool.Next()
	if err != nil {
		return nil, err
	}
	err = cmd.BeginContinueRenderPass(frame.RenderPass, frame.Framebuffer)
	if err != nil {
		return nil, err
	}

	cmd.CmdBindGraphicsPipeline(pipeline)
	cmd.CmdBindVertexBuffers(m.vertices.VKBuffer)
	cmd.CmdBindIndexBuffer(m.indices.VKBuffer, m.indexType)

	var pc pushConstants
	for i := w.span.start; i < w.span.end; i++ {
		o := &m.objects[i]
		pc.MVP = viewProj.Mul4(o.model(m.elapsed))
		pc.Color = o.color
		cmd.CmdPushConstants(m.pipelineLayout, vk.ShaderStageVertexBit, 0, pc.Bytes())
		cmd.CmdDrawIndexed(m.indexCount, 1)
	}

	return cmd, cmd.End()
}

func (m *module) Destroy() {
	for _, w := range m.workers {
		w.pools.Destroy()
	}
	m.workers = nil
	if m.pipelineLayout != nil {
		m.pipelineLayout.Destroy()
	}
	if m.meshPool != nil {
		m.meshPool.Destroy()
	}
}

// KeyChange toggles the animation with the space bar
func (m *module) KeyChange(key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) bool {
	if key == glfw.KeySpace && action == glfw.Press {
		m.paused = !m.paused
		return true
	}
	return false
}
