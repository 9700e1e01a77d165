package vkg

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	vk "github.com/vulkan-go/vulkan"
)

// ValidationLayer is the Khronos validation layer enabled by EnableDebugging
const ValidationLayer = "VK_LAYER_KHRONOS_validation"

// DebugReportExtension is required for the debug report callback
const DebugReportExtension = "VK_EXT_debug_report"

// InitializeForComputeOnly initializes Vulkan for a compute based task, it doesn't
// enable any graphics capabilties.
func InitializeForComputeOnly() error {
	err := vk.SetDefaultGetInstanceProcAddr()
	if err != nil {
		return errors.Wrap(err, "loading vulkan")
	}
	return errors.Wrap(vk.Init(), "initializing vulkan")
}

// Version is used to specify versions of components
type Version struct {
	Major int
	Minor int
	Patch int
}

// VKVersion returns a Vulkan compatible version representation
func (v *Version) VKVersion() uint32 {
	return vk.MakeVersion(v.Major, v.Minor, v.Patch)
}

// App is used to provide information about this specific application to Vulkan
type App struct {
	// Name the name of the application
	Name string
	// Engine the name of the engine associated with the application
	EngineName string
	// Version the version of the application
	Version Version
	// APIVersion the expected minimum version of the Vulkan API (i.e. 1.0.0)
	APIVersion Version

	EnabledLayers     []string
	EnabledExtensions []string
}

func enumerateNames(count func(*uint32) vk.Result, fill func(*uint32) ([]string, vk.Result)) ([]string, error) {
	var n uint32
	err := vk.Error(count(&n))
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	names, res := fill(&n)
	if err := vk.Error(res); err != nil {
		return nil, err
	}
	return names, nil
}

// SupportedLayers returns a list of supported instance layers. Vulkan must
// have been initialized first.
func SupportedLayers() ([]string, error) {
	names, err := enumerateNames(
		func(n *uint32) vk.Result { return vk.EnumerateInstanceLayerProperties(n, nil) },
		func(n *uint32) ([]string, vk.Result) {
			props := make([]vk.LayerProperties, *n)
			res := vk.EnumerateInstanceLayerProperties(n, props)
			names := make([]string, 0, len(props))
			for _, layer := range props[:*n] {
				layer.Deref()
				names = append(names, vk.ToString(layer.LayerName[:]))
			}
			return names, res
		})
	return names, errors.Wrap(err, "enumerating instance layers")
}

// SupportedExtensions returns a list of supported instance extensions. Vulkan
// must have been initialized first.
func SupportedExtensions() ([]string, error) {
	names, err := enumerateNames(
		func(n *uint32) vk.Result { return vk.EnumerateInstanceExtensionProperties("", n, nil) },
		func(n *uint32) ([]string, vk.Result) {
			props := make([]vk.ExtensionProperties, *n)
			res := vk.EnumerateInstanceExtensionProperties("", n, props)
			names := make([]string, 0, len(props))
			for _, ext := range props[:*n] {
				ext.Deref()
				names = append(names, vk.ToString(ext.ExtensionName[:]))
			}
			return names, res
		})
	return names, errors.Wrap(err, "enumerating instance extensions")
}

func contains(list []string, s string) bool {
	for _, l := range list {
		if l == s {
			return true
		}
	}
	return false
}

// EnableDebugging enables the validation layer and the debug report extension
// when the loader provides them
func (a *App) EnableDebugging() error {
	_, err := a.EnableLayer(ValidationLayer)
	if err != nil {
		return err
	}
	exts, err := SupportedExtensions()
	if err != nil {
		return err
	}
	if !contains(exts, DebugReportExtension) {
		return errors.Newf("extension %q not supported", DebugReportExtension)
	}
	a.EnableExtension(DebugReportExtension)
	return nil
}

// EnableLayer enables a specific layer if the loader supports it
func (a *App) EnableLayer(layer string) (*App, error) {
	layers, err := SupportedLayers()
	if err != nil {
		return a, err
	}
	if !contains(layers, layer) {
		return a, errors.Newf("layer %q not found", layer)
	}
	if !contains(a.EnabledLayers, layer) {
		a.EnabledLayers = append(a.EnabledLayers, layer)
	}
	return a, nil
}

// EnableExtension enables an extension for use by the application, it is not
// checked against the supported extensions
func (a *App) EnableExtension(extension string) *App {
	if !contains(a.EnabledExtensions, extension) {
		a.EnabledExtensions = append(a.EnabledExtensions, extension)
	}
	return a
}

// VKApplicationInfo creates a structure representing this application in a Vulkan friendly format
func (a *App) VKApplicationInfo() vk.ApplicationInfo {
	api := a.APIVersion
	if api.Major < 1 {
		api = Version{Major: 1}
	}
	return vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         api.VKVersion(),
		ApplicationVersion: a.Version.VKVersion(),
		PApplicationName:   safeString(a.Name),
		PEngineName:        safeString(a.EngineName),
	}
}

// CreateInstance creates an the Vulkan Instance
func (a *App) CreateInstance() (*Instance, error) {
	appInfo := a.VKApplicationInfo()

	extensions := safeStrings(a.EnabledExtensions)
	layers := safeStrings(a.EnabledLayers)

	createInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        &appInfo,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     layers,
	}

	instance := &Instance{}
	err := vk.Error(vk.CreateInstance(&createInfo, nil, &instance.VKInstance))
	if err != nil {
		return nil, errors.Wrap(err, "creating instance")
	}
	err = vk.InitInstance(instance.VKInstance)
	if err != nil {
		return nil, errors.Wrap(err, "initializing instance")
	}

	log.WithFields(logrus.Fields{
		"layers":     a.EnabledLayers,
		"extensions": a.EnabledExtensions,
	}).Debug("created instance")

	return instance, nil
}

// Instance is an instance of the Vulkan subsystem
type Instance struct {
	// VKInstance is the native Vulkan instance object
	VKInstance      vk.Instance
	debugCallback   vk.DebugReportCallback
	hasDebugHandler bool
}

// PhysicalDevices returns a list of physical devices known to Vulkan
func (i *Instance) PhysicalDevices() ([]*PhysicalDevice, error) {
	var deviceCount uint32
	err := vk.Error(vk.EnumeratePhysicalDevices(i.VKInstance, &deviceCount, nil))
	if err != nil {
		return nil, errors.Wrap(err, "enumerating physical devices")
	}
	if deviceCount == 0 {
		return nil, nil
	}

	devices := make([]vk.PhysicalDevice, deviceCount)
	err = vk.Error(vk.EnumeratePhysicalDevices(i.VKInstance, &deviceCount, devices))
	if err != nil {
		return nil, errors.Wrap(err, "enumerating physical devices")
	}

	ret := make([]*PhysicalDevice, deviceCount)
	for n, device := range devices[:deviceCount] {
		ret[n] = &PhysicalDevice{Index: n, VKPhysicalDevice: device}
		vk.GetPhysicalDeviceProperties(device, &ret[n].VKPhysicalDeviceProperties)
		ret[n].VKPhysicalDeviceProperties.Deref()
		ret[n].DeviceName = vk.ToString(ret[n].VKPhysicalDeviceProperties.DeviceName[:])
	}
	return ret, nil
}

// UseDefaultDebugCallback routes validation messages to the package logger
func (i *Instance) UseDefaultDebugCallback() error {
	return i.SetDebugCallback(DefaultDebugCallback)
}

// SetDebugCallback installs callback for every report type, replacing any earlier one
func (i *Instance) SetDebugCallback(callback vk.DebugReportCallbackFunc) error {
	i.destroyDebugCallback()
	flags := vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit |
		vk.DebugReportInformationBit | vk.DebugReportDebugBit
	var debugCallback vk.DebugReportCallback
	err := vk.Error(vk.CreateDebugReportCallback(i.VKInstance, &vk.DebugReportCallbackCreateInfo{
		SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags:       vk.DebugReportFlags(flags),
		PfnCallback: callback,
	}, nil, &debugCallback))
	if err != nil {
		return errors.Wrap(err, "creating debug report callback")
	}
	i.debugCallback = debugCallback
	i.hasDebugHandler = true
	return nil
}

func (i *Instance) destroyDebugCallback() {
	if i.hasDebugHandler {
		vk.DestroyDebugReportCallback(i.VKInstance, i.debugCallback, nil)
		i.hasDebugHandler = false
	}
}

// debugReportLevel maps the most severe report flag to a log level
func debugReportLevel(flags vk.DebugReportFlags) logrus.Level {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		return logrus.ErrorLevel
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit|vk.DebugReportPerformanceWarningBit) != 0:
		return logrus.WarnLevel
	case flags&vk.DebugReportFlags(vk.DebugReportDebugBit) != 0:
		return logrus.DebugLevel
	}
	return logrus.InfoLevel
}

// DefaultDebugCallback logs validation messages with the layer and message code as fields
func DefaultDebugCallback(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType,
	object uint64, location uint, messageCode int32, pLayerPrefix string,
	pMessage string, pUserData unsafe.Pointer) vk.Bool32 {

	entry := log.WithFields(logrus.Fields{
		"layer": pLayerPrefix,
		"code":  messageCode,
	})
	switch debugReportLevel(flags) {
	case logrus.ErrorLevel:
		entry.Error(pMessage)
	case logrus.WarnLevel:
		entry.Warn(pMessage)
	case logrus.DebugLevel:
		entry.Debug(pMessage)
	default:
		entry.Info(pMessage)
	}
	return vk.Bool32(vk.False)
}

func (i *Instance) Destroy() {
	i.destroyDebugCallback()
	vk.DestroyInstance(i.VKInstance, nil)
}
