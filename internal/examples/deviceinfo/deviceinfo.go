// Package deviceinfo prints what the Vulkan loader and every physical device
// support. It needs no window.
package deviceinfo

import (
	"context"
	"fmt"
	"io"
	"reflect"

	"github.com/celer/vkexamples/internal/config"
	"github.com/celer/vkexamples/internal/examples"
	"github.com/celer/vkexamples/vkg"
	"github.com/docker/go-units"
	vk "github.com/vulkan-go/vulkan"
)

const name = "deviceinfo"

const rule = "-----------------------------"

func init() {
	examples.Register(Example{})
}

type Example struct{}

func (Example) Name() string {
	return name
}

func (Example) Description() string {
	return "lists instance extensions, layers and the capabilities of each physical device"
}

func (Example) Run(ctx context.Context, _ *config.Config) error {
	return Report(examples.Output(ctx))
}

// printer remembers the first write error so a report can be written
// without checking every line
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) list(title string, items []string) {
	p.printf("%s\n%s\n", title, rule)
	for _, item := range items {
		p.printf("\t%s\n", item)
	}
	p.printf("\n")
}

// Report loads Vulkan without a window and writes the capabilities of the
// instance and every physical device to w
func Report(w io.Writer) error {
	err := vkg.InitializeForComputeOnly()
	if err != nil {
		return err
	}

	p := &printer{w: w}

	extensions, err := vkg.SupportedExtensions()
	if err != nil {
		return err
	}
	p.list("Extensions", extensions)

	layers, err := vkg.SupportedLayers()
	if err != nil {
		return err
	}
	p.list("Layers", layers)

	app := &vkg.App{Name: name, EngineName: "vkg"}
	instance, err := app.CreateInstance()
	if err != nil {
		return err
	}
	defer instance.Destroy()

	devices, err := instance.PhysicalDevices()
	if err != nil {
		return err
	}
	for _, d := range devices {
		err = reportDevice(p, d)
		if err != nil {
			return err
		}
	}
	return p.err
}

func reportDevice(p *printer, d *vkg.PhysicalDevice) error {
	p.printf("%d: %s\n%s\n", d.Index, d.DeviceName, rule)

	families, err := d.QueueFamilies()
	if err != nil {
		return err
	}
	p.printf("\n\tQueue Families\n")
	for _, qf := range families {
		p.printf("\t\t%s\n", qf)
	}
	p.printf("\t\t%d graphics, %d compute, %d transfer\n",
		len(families.FilterGraphics()), len(families.FilterCompute()), len(families.FilterTransfer()))

	p.printf("\n\tFeatures\n")
	for _, f := range featureLines(d.VKPhysicalDeviceFeatures()) {
		p.printf("\t\t%s\n", f)
	}

	types := d.MemoryTypes()
	p.printf("\n\tMemory Types\n\t\tHeap\tFlags\n")
	for _, mt := range types {
		p.printf("\t\t%d\t%s\n", mt.HeapIndex, vkg.MemoryPropertyString(mt.PropertyFlags))
	}
	p.printf("\t\t%s\n", memorySummary(types))

	p.printf("\n\tMemory Heaps\n")
	for _, h := range d.MemoryHeaps() {
		p.printf("\t\t%s\n", heapLine(h))
	}

	extensions, err := d.SupportedExtensions()
	if err != nil {
		return err
	}
	p.printf("\n\tDevice Extensions\n")
	for _, ext := range extensions {
		ext.Deref()
		p.printf("\t\t%s (%d)\n", vk.ToString(ext.ExtensionName[:]), ext.SpecVersion)
	}
	p.printf("\n")
	return p.err
}

// featureLines lists every boolean feature as "name true|false" in
// declaration order, features must already be dereferenced
func featureLines(features vk.PhysicalDeviceFeatures) []string {
	tf := reflect.TypeOf(features)
	vf := reflect.ValueOf(features)
	lines := make([]string, 0, tf.NumField())
	for i := 0; i < tf.NumField(); i++ {
		sf := tf.Field(i)
		if sf.Anonymous || !sf.IsExported() || sf.Type.Kind() != reflect.Uint32 {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s %v", sf.Name, vf.Field(i).Uint() == uint64(vk.True)))
	}
	return lines
}

func memorySummary(types vkg.MemoryTypeSlice) string {
	return fmt.Sprintf("%d device local, %d host visible, %d host coherent, %d host visible and coherent",
		types.NumDeviceLocal(), types.NumHostVisible(), types.NumHostCoherent(), types.NumHostVisibleAndCoherent())
}

func heapLine(h vk.MemoryHeap) string {
	return fmt.Sprintf("%s\t%s", units.BytesSize(float64(h.Size)), vkg.MemoryHeapString(h.Flags))
}
