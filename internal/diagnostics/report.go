package diagnostics

import (
	"fmt"
	"io"
	"strings"

	"github.com/labstack/gommon/bytes"
)

// WriteHostInfo writes info as aligned "key: value" lines.
func WriteHostInfo(w io.Writer, info *HostInfo) error {
	lines := [][2]string{
		{"os", info.OS + "/" + info.Architecture},
		{"platform", strings.TrimSpace(info.Platform + " " + info.PlatformVersion)},
		{"kernel", info.KernelVersion},
		{"uptime", info.Uptime.String()},
		{"cpu", info.CPU.BrandName},
		{"cores", fmt.Sprintf("%d physical, %d logical", info.CPU.PhysicalCores, info.CPU.LogicalCores)},
		{"simd", strings.Join(info.CPU.SIMD, " ")},
		{"memory", formatMemory(info)},
		{"swap used", fmt.Sprintf("%.1f%%", info.SwapUsed)},
		{"go", info.GoVersion},
	}

	for _, l := range lines {
		if l[1] == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, "%-10s %s\n", l[0]+":", l[1]); err != nil {
			return err
		}
	}
	return nil
}

func formatMemory(info *HostInfo) string {
	if info.MemoryTotal == 0 {
		return ""
	}
	//nolint:gosec // G115: memory sizes fit int64
	return fmt.Sprintf("%s total, %s available (%.1f%% used)",
		bytes.Format(int64(info.MemoryTotal)),
		bytes.Format(int64(info.MemoryAvailable)),
		info.MemoryUsed)
}
