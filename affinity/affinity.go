// File: affinity/affinity.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral API for CPU affinity. Platform-specific implementations are located
// in separate files (affinity_linux.go, affinity_stub.go) guarded by build tags.

package affinity

import (
	"fmt"

	"github.com/momentics/hioload-pump/api"
)

// SetAffinity pins the current OS thread to a given logical CPU.
// Callers must hold the thread with runtime.LockOSThread first.
// On unsupported platforms returns api.ErrNotSupported.
func SetAffinity(cpuID int) error {
	if cpuID < 0 {
		return fmt.Errorf("affinity: cpu %d: %w", cpuID, api.ErrInvalidArgument)
	}
	return setAffinityPlatform(cpuID)
}
