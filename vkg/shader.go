package vkg

import (
	"encoding/binary"
	"os"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

// spirvMagic is the first word of every SPIR-V module
const spirvMagic = 0x07230203

type ShaderModule struct {
	Device         *Device
	Description    string
	VKShaderModule vk.ShaderModule
}

// spirvWords converts a SPIR-V binary into the words Vulkan expects
func spirvWords(data []byte) ([]uint32, error) {
	if len(data) < 4 || len(data)%4 != 0 {
		return nil, errors.Newf("spir-v code size %d is not a non-zero multiple of 4", len(data))
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	if words[0] != spirvMagic {
		return nil, errors.Newf("bad spir-v magic number 0x%08x", words[0])
	}
	return words, nil
}

func (d *Device) LoadShaderModuleFromFile(file string) (*ShaderModule, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrap(err, "reading shader")
	}
	m, err := d.LoadShaderModule(data)
	if err != nil {
		return nil, errors.Wrapf(err, "loading shader %s", file)
	}
	m.Description = file
	return m, nil
}

// LoadShaderModule creates a shader module from compiled SPIR-V
func (d *Device) LoadShaderModule(data []byte) (*ShaderModule, error) {
	code, err := spirvWords(data)
	if err != nil {
		return nil, err
	}
	var module vk.ShaderModule
	err = vk.Error(vk.CreateShaderModule(d.VKDevice, &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(data)),
		PCode:    code,
	}, nil, &module))
	if err != nil {
		return nil, errors.Wrap(err, "creating shader module")
	}
	return &ShaderModule{VKShaderModule: module, Device: d}, nil
}

func (s *ShaderModule) VKPipelineShaderStageCreateInfo(stage vk.ShaderStageFlagBits, entryPoint string) vk.PipelineShaderStageCreateInfo {
	return vk.PipelineShaderStageCreateInfo{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  stage,
		Module: s.VKShaderModule,
		PName:  safeString(entryPoint),
	}
}

func (s *ShaderModule) Destroy() {
	if s.VKShaderModule != vk.NullShaderModule {
		vk.DestroyShaderModule(s.Device.VKDevice, s.VKShaderModule, nil)
		s.VKShaderModule = vk.NullShaderModule
	}
}
