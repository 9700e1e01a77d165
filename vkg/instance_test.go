package vkg

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	vk "github.com/vulkan-go/vulkan"
)

func TestDebugReportLevel(t *testing.T) {
	tests := []struct {
		flags vk.DebugReportFlagBits
		want  logrus.Level
	}{
		{vk.DebugReportErrorBit, logrus.ErrorLevel},
		{vk.DebugReportWarningBit, logrus.WarnLevel},
		{vk.DebugReportPerformanceWarningBit, logrus.WarnLevel},
		{vk.DebugReportInformationBit, logrus.InfoLevel},
		{vk.DebugReportDebugBit, logrus.DebugLevel},
		{vk.DebugReportErrorBit | vk.DebugReportDebugBit, logrus.ErrorLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, debugReportLevel(vk.DebugReportFlags(tt.flags)), "flags %b", tt.flags)
	}
}

func TestAppEnableExtensionDeduplicates(t *testing.T) {
	a := &App{}
	a.EnableExtension("VK_KHR_surface").EnableExtension("VK_KHR_surface").EnableExtension(DebugReportExtension)
	assert.Equal(t, []string{"VK_KHR_surface", DebugReportExtension}, a.EnabledExtensions)
}

func TestVKApplicationInfoDefaultsAPIVersion(t *testing.T) {
	a := &App{Name: "test", Version: Version{Major: 0, Minor: 2}}
	info := a.VKApplicationInfo()
	assert.Equal(t, vk.MakeVersion(1, 0, 0), info.ApiVersion)
	assert.Equal(t, vk.MakeVersion(0, 2, 0), info.ApplicationVersion)
	assert.Equal(t, "test\x00", info.PApplicationName)
	assert.Zero(t, a.APIVersion.Major)
}
