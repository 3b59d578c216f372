// Package diagnostics collects host information for probe output and failure reports
package diagnostics

import (
	"context"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/tphakala/lvacfs-go/internal/cpuspec"
	"github.com/tphakala/lvacfs-go/internal/errors"
	"github.com/tphakala/lvacfs-go/internal/logger"
)

// HostInfo is a snapshot of the machine the module runs on.
type HostInfo struct {
	OS              string          `json:"os"`
	Architecture    string          `json:"arch"`
	Platform        string          `json:"platform,omitempty"`
	PlatformVersion string          `json:"platform_version,omitempty"`
	KernelVersion   string          `json:"kernel_version,omitempty"`
	Uptime          time.Duration   `json:"uptime"`
	CPU             cpuspec.CPUSpec `json:"cpu"`
	MemoryTotal     uint64          `json:"memory_total"`
	MemoryAvailable uint64          `json:"memory_available"`
	MemoryUsed      float64         `json:"memory_used_percent"`
	SwapUsed        float64         `json:"swap_used_percent"`
	GoVersion       string          `json:"go_version"`
}

// GetLogger returns the diagnostics module logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("diagnostics")
}

// CollectHostInfo gathers host, CPU and memory information.
// Host and memory lookups that fail leave their fields empty; only a failure of
// every source is returned as an error.
func CollectHostInfo(ctx context.Context) (HostInfo, error) {
	info := HostInfo{
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
		CPU:          cpuspec.GetCPUSpec(),
		GoVersion:    runtime.Version(),
	}

	var errs []error
	if hi, err := host.InfoWithContext(ctx); err == nil {
		info.Platform = hi.Platform
		info.PlatformVersion = hi.PlatformVersion
		info.KernelVersion = hi.KernelVersion
		info.Uptime = time.Duration(hi.Uptime) * time.Second //nolint:gosec // G115: uptime in seconds fits int64
	} else {
		errs = append(errs, err)
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		info.MemoryTotal = vm.Total
		info.MemoryAvailable = vm.Available
		info.MemoryUsed = vm.UsedPercent
	} else {
		errs = append(errs, err)
	}

	if sw, err := mem.SwapMemoryWithContext(ctx); err == nil {
		info.SwapUsed = sw.UsedPercent
	} else {
		errs = append(errs, err)
	}

	if len(errs) == 3 {
		return info, errors.New(errors.Join(errs...)).
			Component("diagnostics").
			Category(errors.CategorySystem).
			Operation("collect_host_info").
			Build()
	}
	for _, err := range errs {
		GetLogger().Debug("host information partially unavailable", logger.Error(err))
	}
	return info, nil
}

// cpuPercent samples total CPU utilization over interval.
func cpuPercent(ctx context.Context, interval time.Duration) (float64, bool) {
	pct, err := cpu.PercentWithContext(ctx, interval, false)
	if err != nil || len(pct) == 0 {
		return 0, false
	}
	return pct[0], true
}
