package vkg

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrInsufficientPoolSpace is returned when a resource pool has no room left for an allocation
	ErrInsufficientPoolSpace = errors.New("insufficient storage space in resource pool")
	// ErrNoStagingPool is returned when a staged upload is attempted before AllocateStagingPool
	ErrNoStagingPool = errors.Newf("no resource pool named '%s' for staging resources", StagingPoolName)
	// ErrNoSuitableMemoryType is returned when no memory type satisfies the requested properties
	ErrNoSuitableMemoryType = errors.New("no matching memory type found")
	// ErrNoDevice is returned when Vulkan reports no usable physical device
	ErrNoDevice = errors.New("no suitable physical device found")
	// ErrNoCommandRecorder is returned by PrepareToDraw when MakeCommandBuffer is unset
	ErrNoCommandRecorder = errors.New("no function to make command buffers has been configured")
)
