// control/platform.go
// Author: momentics <momentics@gmail.com>
//
// Platform debug probe integrations.

package control

import (
	"runtime"

	"github.com/momentics/hioload-pump/api"
)

// RegisterPlatformProbes sets platform debug probes on dp.
func RegisterPlatformProbes(dp api.Debug) {
	dp.RegisterProbe("platform.cpus", func() any {
		return runtime.NumCPU()
	})
	dp.RegisterProbe("platform.gomaxprocs", func() any {
		return runtime.GOMAXPROCS(0)
	})
	dp.RegisterProbe("platform.os", func() any {
		return runtime.GOOS + "/" + runtime.GOARCH
	})
}
