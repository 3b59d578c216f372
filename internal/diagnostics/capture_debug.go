package diagnostics

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/labstack/gommon/bytes"

	"github.com/tphakala/lvacfs-go/internal/conf"
	"github.com/tphakala/lvacfs-go/internal/logger"
)

const debugSeparator = "======== DEBUG INFO START ========"

// CaptureSystemInfo builds a debug report for a failed capture run and writes it
// next to the config file when one exists. status is marshaled as JSON.
func CaptureSystemInfo(ctx context.Context, errorMessage string, status any) string {
	var info strings.Builder

	info.WriteString(debugSeparator + "\n")
	fmt.Fprintf(&info, "Error Occurred: %s\n", errorMessage)

	if pct, ok := cpuPercent(ctx, time.Second); ok {
		fmt.Fprintf(&info, "CPU Utilization: %.2f%%\n", pct)
	}

	if host, err := CollectHostInfo(ctx); err == nil {
		info.WriteString("\nHost:\n")
		_ = WriteHostInfo(&info, &host)
	}

	if status != nil {
		if data, err := json.MarshalIndent(status, "", "  "); err == nil {
			info.WriteString("\nEngine Status:\n")
			info.Write(data)
			info.WriteString("\n")
		}
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	//nolint:gosec // G115: runtime memory counters fit int64
	fmt.Fprintf(&info, "Go Runtime: Alloc = %s, TotalAlloc = %s, Sys = %s, NumGC = %d, Goroutines = %d\n",
		bytes.Format(int64(m.Alloc)), bytes.Format(int64(m.TotalAlloc)), bytes.Format(int64(m.Sys)),
		m.NumGC, runtime.NumGoroutine())

	info.WriteString(strings.ReplaceAll(debugSeparator, "START", "END") + "\n")

	report := info.String()
	writeDebugFile(report)
	return report
}

// writeDebugFile stores report as debug_<timestamp>.txt in the config directory.
func writeDebugFile(report string) {
	configPath, err := conf.FindConfigFile()
	if err != nil {
		GetLogger().Debug("no config directory for debug report", logger.Error(err))
		return
	}

	name := fmt.Sprintf("debug_%s.txt", time.Now().Format("2006-01-02_15-04-05"))
	path := filepath.Join(filepath.Dir(configPath), name)
	if err := os.WriteFile(path, []byte(report), 0o600); err != nil {
		GetLogger().Warn("failed to write debug report", logger.String("path", path), logger.Error(err))
		return
	}
	GetLogger().Info("debug information written", logger.String("path", path))
}
