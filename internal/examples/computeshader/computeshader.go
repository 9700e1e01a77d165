// Package computeshader renders the Mandelbrot set with a compute shader on a
// headless device and writes the result as a PNG.
package computeshader

import (
	"context"
	"image"
	"image/png"
	"os"
	"time"
	"unsafe"

	"github.com/celer/vkexamples/internal/config"
	"github.com/celer/vkexamples/internal/examples"
	"github.com/celer/vkexamples/internal/logging"
	"github.com/celer/vkexamples/vkg"
	"github.com/cockroachdb/errors"
	"github.com/docker/go-units"
	"github.com/sirupsen/logrus"
	vk "github.com/vulkan-go/vulkan"
)

const (
	name     = "computeshader"
	poolName = "compute"
	// pixels are written as vec4 of float32
	pixelSize = 16
	// large images take a while on integrated GPUs
	dispatchTimeout = time.Minute
)

func init() {
	examples.Register(Example{})
}

type Example struct{}

func (Example) Name() string {
	return name
}

func (Example) Description() string {
	return "headless compute shader rendering the mandelbrot set to a PNG"
}

func (Example) Run(ctx context.Context, cfg *config.Config) error {
	log := logging.WithExample(name)

	start := time.Now()
	img, err := Render(ctx, cfg)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"size":     img.Bounds().Size(),
		"duration": time.Since(start),
	}).Info("rendered")

	err = writePNG(cfg.Compute.Output, img)
	if err != nil {
		return err
	}
	log.WithField("output", cfg.Compute.Output).Info("image written")
	return nil
}

// dispatchGroups is the number of workgroups of size wg needed to cover dim
// invocations
func dispatchGroups(dim, wg int) int {
	if wg <= 0 {
		return 0
	}
	return (dim + wg - 1) / wg
}

// ErrWorkgroupTooLarge is returned when the configured square workgroup
// exceeds the device's compute limits
var ErrWorkgroupTooLarge = errors.New("workgroup size exceeds device limits")

func checkWorkgroup(wg int, limits vk.PhysicalDeviceLimits) error {
	if wg <= 0 {
		return errors.Newf("workgroup size must be positive, got %d", wg)
	}
	size := uint32(wg)
	if size > limits.MaxComputeWorkGroupSize[0] || size > limits.MaxComputeWorkGroupSize[1] {
		return errors.Wrapf(ErrWorkgroupTooLarge, "%d exceeds max group size %dx%d",
			wg, limits.MaxComputeWorkGroupSize[0], limits.MaxComputeWorkGroupSize[1])
	}
	if size*size > limits.MaxComputeWorkGroupInvocations {
		return errors.Wrapf(ErrWorkgroupTooLarge, "%dx%d invocations exceed %d",
			wg, wg, limits.MaxComputeWorkGroupInvocations)
	}
	return nil
}

// params is pushed to the shader so invocations past the image edge can bail out
type params struct {
	Width  uint32
	Height uint32
}

const paramsSize = int(unsafe.Sizeof(params{}))

func (p *params) Bytes() []byte {
	return vkg.ToBytes(unsafe.Pointer(p), paramsSize)
}

// workgroupSpecialization feeds size to the shader's local_size_x_id = 0 and
// local_size_y_id = 1 constants
func workgroupSpecialization(size *uint32) *vk.SpecializationInfo {
	entries := []vk.SpecializationMapEntry{
		{ConstantID: 0, Offset: 0, Size: 4},
		{ConstantID: 1, Offset: 0, Size: 4},
	}
	return &vk.SpecializationInfo{
		MapEntryCount: uint32(len(entries)),
		PMapEntries:   entries,
		DataSize:      4,
		PData:         unsafe.Pointer(size),
	}
}

// Render runs the shader over a cfg.Compute.Width by cfg.Compute.Height grid
// and returns the pixels it wrote
func Render(ctx context.Context, cfg *config.Config) (*image.RGBA, error) {
	width, height := cfg.Compute.Width, cfg.Compute.Height
	log := logging.WithExample(name)

	err := vkg.InitializeForComputeOnly()
	if err != nil {
		return nil, err
	}

	app := vkg.App{Name: name, EngineName: "vkg"}
	if cfg.Vulkan.Validation {
		err = app.EnableDebugging()
		if err != nil {
			log.WithError(err).Warn("validation layer unavailable, continuing without it")
		}
	}

	instance, err := app.CreateInstance()
	if err != nil {
		return nil, err
	}
	defer instance.Destroy()

	if len(app.EnabledExtensions) > 0 {
		err = instance.UseDefaultDebugCallback()
		if err != nil {
			log.WithError(err).Warn("unable to install debug callback")
		}
	}

	devices, err := instance.PhysicalDevices()
	if err != nil {
		return nil, err
	}
	pdevice, err := vkg.SelectPhysicalDevice(devices, cfg.Vulkan.DeviceIndex, func(p *vkg.PhysicalDevice) bool {
		qf, err := p.QueueFamilies()
		return err == nil && len(qf.FilterCompute()) > 0
	})
	if err != nil {
		return nil, err
	}

	limits := pdevice.VKPhysicalDeviceProperties.Limits
	limits.Deref()
	err = checkWorkgroup(cfg.Compute.WorkgroupSize, limits)
	if err != nil {
		return nil, errors.Wrapf(err, "device %s", pdevice.DeviceName)
	}

	families, err := pdevice.QueueFamilies()
	if err != nil {
		return nil, err
	}
	computeFamily := families.FilterCompute()[0]

	device, err := pdevice.CreateLogicalDevice(vkg.QueueFamilySlice{computeFamily})
	if err != nil {
		return nil, err
	}
	defer device.Destroy()

	log.WithFields(logrus.Fields{
		"device": pdevice.DeviceName,
		"family": computeFamily.Index,
	}).Info("selected compute device")

	queue := device.GetQueue(computeFamily)

	rm := device.CreateResourceManager()
	defer rm.Destroy()

	size := uint64(width * height * pixelSize)
	log.WithField("buffer", units.BytesSize(float64(size))).Debug("allocating storage")

	pool, err := rm.AllocateBufferPoolWithOptions(poolName, size,
		vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit,
		vk.BufferUsageStorageBufferBit, vk.SharingModeExclusive)
	if err != nil {
		return nil, err
	}
	storage, err := pool.AllocateBuffer(size, vk.BufferUsageStorageBufferBit)
	if err != nil {
		return nil, err
	}

	dsl := device.NewDescriptorSetLayout()
	dsl.AddBinding(vk.DescriptorSetLayoutBinding{
		Binding:         0,
		DescriptorType:  vk.DescriptorTypeStorageBuffer,
		DescriptorCount: 1,
		StageFlags:      vk.ShaderStageFlags(vk.ShaderStageComputeBit),
	})
	dsl, err = device.CreateDescriptorSetLayout(dsl)
	if err != nil {
		return nil, err
	}
	defer dsl.Destroy()

	dpool := device.NewDescriptorPool()
	dpool.AddPoolSize(vk.DescriptorTypeStorageBuffer, 1)
	dpool, err = device.CreateDescriptorPool(dpool, 1)
	if err != nil {
		return nil, err
	}
	defer dpool.Destroy()

	dset, err := dpool.AllocateOne(dsl)
	if err != nil {
		return nil, err
	}
	dset.AddBuffer(0, vk.DescriptorTypeStorageBuffer, &storage.Buffer, 0)
	dset.Write()

	layout, err := device.CreatePipelineLayoutWithPushConstants(
		[]*vkg.DescriptorSetLayout{dsl},
		[]vk.PushConstantRange{vkg.PushConstantRange(vk.ShaderStageComputeBit, 0, paramsSize)},
	)
	if err != nil {
		return nil, err
	}
	defer layout.Destroy()

	shader, err := device.LoadShaderModuleFromFile(cfg.ShaderPath("mandelbrot.comp.spv"))
	if err != nil {
		return nil, err
	}
	defer shader.Destroy()

	wg := uint32(cfg.Compute.WorkgroupSize)
	pipeline := &vkg.ComputePipeline{}
	pipeline.SetShaderStage("main", shader)
	pipeline.VKPipelineShaderStageCreateInfo.PSpecializationInfo = []vk.SpecializationInfo{*workgroupSpecialization(&wg)}
	pipeline.SetPipelineLayout(layout)

	err = device.CreateComputePipelines(nil, pipeline)
	if err != nil {
		return nil, err
	}
	defer pipeline.Destroy()

	cpool, err := device.CreateCommandPool(computeFamily)
	if err != nil {
		return nil, err
	}
	defer cpool.Destroy()

	cmd, err := cpool.AllocateBuffer(vk.CommandBufferLevelPrimary)
	if err != nil {
		return nil, err
	}
	defer cpool.FreeBuffer(cmd)

	err = cmd.BeginOneTime()
	if err != nil {
		return nil, err
	}
	p := params{Width: uint32(width), Height: uint32(height)}
	cmd.CmdBindComputePipeline(pipeline)
	cmd.CmdBindDescriptorSets(vk.PipelineBindPointCompute, layout, 0, dset)
	cmd.CmdPushConstants(layout, vk.ShaderStageComputeBit, 0, p.Bytes())
	cmd.CmdDispatch(dispatchGroups(width, cfg.Compute.WorkgroupSize), dispatchGroups(height, cfg.Compute.WorkgroupSize), 1)
	err = cmd.End()
	if err != nil {
		return nil, err
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	fence, err := device.CreateFence()
	if err != nil {
		return nil, err
	}
	defer fence.Destroy()

	err = queue.SubmitWithFence(fence, cmd)
	if err != nil {
		return nil, err
	}
	err = device.WaitForFences(true, dispatchTimeout, fence)
	if err != nil {
		return nil, errors.Wrap(err, "waiting for dispatch")
	}

	err = pool.Map()
	if err != nil {
		return nil, err
	}
	return pixelsToImage(storage.Bytes(), width, height)
}

// pixelsToImage converts vec4 float pixels to 8 bit RGBA, clamping each
// channel to [0,1]
func pixelsToImage(data []byte, width, height int) (*image.RGBA, error) {
	n := width * height
	if len(data) < n*pixelSize {
		return nil, errors.Newf("have %d bytes for %dx%d pixels", len(data), width, height)
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	if n == 0 {
		return img, nil
	}

	channels := unsafe.Slice((*float32)(unsafe.Pointer(&data[0])), n*4)
	for y := 0; y < height; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < width*4; x++ {
			row[x] = toByte(channels[y*width*4+x])
		}
	}
	return img, nil
}

func toByte(v float32) uint8 {
	switch {
	case v != v || v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating output")
	}
	err = png.Encode(f, img)
	if err != nil {
		f.Close()
		return errors.Wrapf(err, "encoding %s", path)
	}
	return f.Close()
}
