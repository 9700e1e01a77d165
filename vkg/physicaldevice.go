package vkg

import (
	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

type VKPresentModes []vk.PresentMode

func (v VKPresentModes) Filter(f vk.PresentMode) VKPresentModes {
	ret := make(VKPresentModes, 0)
	for _, s := range v {
		if f == s {
			ret = append(ret, s)
		}
	}
	return ret
}

type VKSurfaceFormats []vk.SurfaceFormat

func (v VKSurfaceFormats) Filter(f func(f vk.SurfaceFormat) bool) VKSurfaceFormats {
	ret := make(VKSurfaceFormats, 0)
	for _, s := range v {
		if f(s) {
			ret = append(ret, s)
		}
	}
	return ret
}

type PhysicalDevice struct {
	Index                      int
	DeviceName                 string
	VKPhysicalDevice           vk.PhysicalDevice
	VKPhysicalDeviceProperties vk.PhysicalDeviceProperties
}

func (p *PhysicalDevice) GetSurfacePresentModes(surface vk.Surface) (VKPresentModes, error) {
	var count uint32
	err := vk.Error(vk.GetPhysicalDeviceSurfacePresentModes(p.VKPhysicalDevice, surface, &count, nil))
	if err != nil {
		return nil, errors.Wrap(err, "querying present modes")
	}

	f := make([]vk.PresentMode, count)
	err = vk.Error(vk.GetPhysicalDeviceSurfacePresentModes(p.VKPhysicalDevice, surface, &count, f))
	if err != nil {
		return nil, errors.Wrap(err, "querying present modes")
	}
	return f[:count], nil
}

func (p *PhysicalDevice) GetSurfaceFormats(surface vk.Surface) (VKSurfaceFormats, error) {
	var count uint32
	err := vk.Error(vk.GetPhysicalDeviceSurfaceFormats(p.VKPhysicalDevice, surface, &count, nil))
	if err != nil {
		return nil, errors.Wrap(err, "querying surface formats")
	}

	f := make([]vk.SurfaceFormat, count)
	err = vk.Error(vk.GetPhysicalDeviceSurfaceFormats(p.VKPhysicalDevice, surface, &count, f))
	if err != nil {
		return nil, errors.Wrap(err, "querying surface formats")
	}
	for i := range f {
		f[i].Deref()
	}
	return f[:count], nil
}

func (p *PhysicalDevice) GetSurfaceCapabilities(surface vk.Surface) (*vk.SurfaceCapabilities, error) {
	var caps vk.SurfaceCapabilities
	err := vk.Error(vk.GetPhysicalDeviceSurfaceCapabilities(p.VKPhysicalDevice, surface, &caps))
	if err != nil {
		return nil, errors.Wrap(err, "querying surface capabilities")
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()
	return &caps, nil
}

func (p *PhysicalDevice) String() string {
	return p.DeviceName
}

func (p *PhysicalDevice) QueueFamilies() (QueueFamilySlice, error) {
	var queueFamilyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(p.VKPhysicalDevice, &queueFamilyCount, nil)
	if queueFamilyCount == 0 {
		return nil, nil
	}

	queues := make([]vk.QueueFamilyProperties, queueFamilyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(p.VKPhysicalDevice, &queueFamilyCount, queues)

	ret := make(QueueFamilySlice, queueFamilyCount)
	for i, queue := range queues {
		ret[i] = &QueueFamily{Index: i, PhysicalDevice: p, VKQueueFamilyProperties: queue}
		ret[i].VKQueueFamilyProperties.Deref()
	}
	return ret, nil
}

type CreateDeviceOptions struct {
	EnabledExtensions []string
	EnabledLayers     []string
	// Features to enable, every supported feature is enabled when nil
	Features *vk.PhysicalDeviceFeatures
}

func (p *PhysicalDevice) CreateLogicalDeviceWithOptions(qfs QueueFamilySlice, options *CreateDeviceOptions) (*Device, error) {
	// a queue family may only be requested once
	seen := make(map[int]bool)
	queueCreateInfos := make([]vk.DeviceQueueCreateInfo, 0, len(qfs))
	for _, q := range qfs {
		if seen[q.Index] {
			continue
		}
		seen[q.Index] = true
		queueCreateInfos = append(queueCreateInfos, vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: uint32(q.Index),
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		})
	}

	features := p.VKPhysicalDeviceFeatures()
	if options != nil && options.Features != nil {
		features = *options.Features
	}

	deviceCreateInfo := vk.DeviceCreateInfo{
		SType:                vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount: uint32(len(queueCreateInfos)),
		PQueueCreateInfos:    queueCreateInfos,
		PEnabledFeatures:     []vk.PhysicalDeviceFeatures{features},
	}

	if options != nil {
		if len(options.EnabledExtensions) > 0 {
			deviceCreateInfo.EnabledExtensionCount = uint32(len(options.EnabledExtensions))
			deviceCreateInfo.PpEnabledExtensionNames = safeStrings(options.EnabledExtensions)
		}
		if len(options.EnabledLayers) > 0 {
			deviceCreateInfo.EnabledLayerCount = uint32(len(options.EnabledLayers))
			deviceCreateInfo.PpEnabledLayerNames = safeStrings(options.EnabledLayers)
		}
	}

	var ldevice vk.Device
	err := vk.Error(vk.CreateDevice(p.VKPhysicalDevice, &deviceCreateInfo, nil, &ldevice))
	if err != nil {
		return nil, errors.Wrapf(err, "creating logical device on %s", p.DeviceName)
	}

	return &Device{
		PhysicalDevice:  p,
		VKDevice:        ldevice,
		EnabledFeatures: features,
	}, nil
}

func (p *PhysicalDevice) CreateLogicalDevice(qfs QueueFamilySlice) (*Device, error) {
	return p.CreateLogicalDeviceWithOptions(qfs, nil)
}

func (p *PhysicalDevice) VKPhysicalDeviceFeatures() vk.PhysicalDeviceFeatures {
	var deviceFeatures vk.PhysicalDeviceFeatures
	vk.GetPhysicalDeviceFeatures(p.VKPhysicalDevice, &deviceFeatures)
	deviceFeatures.Deref()
	return deviceFeatures
}

type MemoryTypeSlice []vk.MemoryType

func (m MemoryTypeSlice) Filter(f func(properties vk.MemoryPropertyFlagBits) bool) MemoryTypeSlice {
	res := make(MemoryTypeSlice, 0)
	for i := range m {
		if f(vk.MemoryPropertyFlagBits(m[i].PropertyFlags)) {
			res = append(res, m[i])
		}
	}
	return res
}

func (m MemoryTypeSlice) NumHostCoherent() int {
	return len(m.Filter(func(properties vk.MemoryPropertyFlagBits) bool {
		return properties&vk.MemoryPropertyHostCoherentBit != 0
	}))
}

func (m MemoryTypeSlice) NumHostVisibleAndCoherent() int {
	want := vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit
	return len(m.Filter(func(properties vk.MemoryPropertyFlagBits) bool {
		return properties&want == want
	}))
}

func (m MemoryTypeSlice) NumHostVisible() int {
	return len(m.Filter(func(properties vk.MemoryPropertyFlagBits) bool {
		return properties&vk.MemoryPropertyHostVisibleBit != 0
	}))
}

func (m MemoryTypeSlice) NumDeviceLocal() int {
	return len(m.Filter(func(properties vk.MemoryPropertyFlagBits) bool {
		return properties&vk.MemoryPropertyDeviceLocalBit != 0
	}))
}

func (p *PhysicalDevice) MemoryTypes() MemoryTypeSlice {
	mp := p.VKPhysicalDeviceMemoryProperties()
	ret := make(MemoryTypeSlice, 0, mp.MemoryTypeCount)
	for i := uint32(0); i < mp.MemoryTypeCount; i++ {
		mt := mp.MemoryTypes[i]
		mt.Deref()
		ret = append(ret, mt)
	}
	return ret
}

func (p *PhysicalDevice) MemoryHeaps() []vk.MemoryHeap {
	mp := p.VKPhysicalDeviceMemoryProperties()
	ret := make([]vk.MemoryHeap, 0, mp.MemoryHeapCount)
	for i := uint32(0); i < mp.MemoryHeapCount; i++ {
		mh := mp.MemoryHeaps[i]
		mh.Deref()
		ret = append(ret, mh)
	}
	return ret
}

func (p *PhysicalDevice) VKPhysicalDeviceMemoryProperties() vk.PhysicalDeviceMemoryProperties {
	var memoryProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(p.VKPhysicalDevice, &memoryProperties)
	memoryProperties.Deref()
	return memoryProperties
}

// selectMemoryType returns the index of the first type allowed by memoryTypeBits
// that has every requested property. See VkPhysicalDeviceMemoryProperties.
func selectMemoryType(types []vk.MemoryType, memoryTypeBits uint32, properties vk.MemoryPropertyFlagBits) (uint32, error) {
	for i, mt := range types {
		if i >= 32 {
			break
		}
		if memoryTypeBits&(1<<uint(i)) != 0 &&
			vk.MemoryPropertyFlagBits(mt.PropertyFlags)&properties == properties {
			return uint32(i), nil
		}
	}
	return 0, errors.Wrapf(ErrNoSuitableMemoryType, "type bits %032b properties %s",
		memoryTypeBits, MemoryPropertyString(vk.MemoryPropertyFlags(properties)))
}

func (p *PhysicalDevice) FindMemoryType(memoryTypeBits uint32, properties vk.MemoryPropertyFlagBits) (uint32, error) {
	return selectMemoryType(p.MemoryTypes(), memoryTypeBits, properties)
}

func (p *PhysicalDevice) SupportedExtensions() ([]vk.ExtensionProperties, error) {
	var count uint32
	err := vk.Error(vk.EnumerateDeviceExtensionProperties(p.VKPhysicalDevice, "", &count, nil))
	if err != nil {
		return nil, errors.Wrap(err, "enumerating device extensions")
	}

	ext := make([]vk.ExtensionProperties, count)
	err = vk.Error(vk.EnumerateDeviceExtensionProperties(p.VKPhysicalDevice, "", &count, ext))
	if err != nil {
		return nil, errors.Wrap(err, "enumerating device extensions")
	}
	for i := range ext {
		ext[i].Deref()
	}
	return ext, nil
}

// SupportedExtensionNames returns the names of the device extensions
func (p *PhysicalDevice) SupportedExtensionNames() ([]string, error) {
	ext, err := p.SupportedExtensions()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(ext))
	for i := range ext {
		names[i] = vk.ToString(ext[i].ExtensionName[:])
	}
	return names, nil
}

// SelectPhysicalDevice returns devices[index] when index is in range and the
// device is suitable, otherwise the first suitable device
func SelectPhysicalDevice(devices []*PhysicalDevice, index int, suitable func(*PhysicalDevice) bool) (*PhysicalDevice, error) {
	if suitable == nil {
		suitable = func(*PhysicalDevice) bool { return true }
	}
	if index >= 0 {
		if index < len(devices) && suitable(devices[index]) {
			return devices[index], nil
		}
		log.WithField("index", index).Warn("requested device is missing or unsuitable, picking the first suitable device")
	}
	for _, d := range devices {
		if suitable(d) {
			return d, nil
		}
	}
	return nil, ErrNoDevice
}
