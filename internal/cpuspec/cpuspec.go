// Package cpuspec reports the host CPU model and the SIMD extensions relevant to
// the capture-processing module.
package cpuspec

import (
	"runtime"

	"github.com/klauspost/cpuid/v2"
)

// CPUSpec contains information about CPU specifications
type CPUSpec struct {
	BrandName     string   `json:"brand_name"`
	Vendor        string   `json:"vendor"`
	PhysicalCores int      `json:"physical_cores"`
	LogicalCores  int      `json:"logical_cores"`
	SIMD          []string `json:"simd,omitempty"`
}

// simdFeatures lists the vector extensions reported by probe, in display order.
var simdFeatures = []struct {
	name string
	id   cpuid.FeatureID
}{
	{"sse4.2", cpuid.SSE42},
	{"avx", cpuid.AVX},
	{"avx2", cpuid.AVX2},
	{"fma3", cpuid.FMA3},
	{"avx512f", cpuid.AVX512F},
	{"asimd", cpuid.ASIMD},
	{"fp16", cpuid.FPHP},
}

// GetCPUSpec returns the specification of the host CPU
func GetCPUSpec() CPUSpec {
	spec := CPUSpec{
		BrandName:     cpuid.CPU.BrandName,
		Vendor:        cpuid.CPU.VendorString,
		PhysicalCores: cpuid.CPU.PhysicalCores,
		LogicalCores:  cpuid.CPU.LogicalCores,
	}
	if spec.BrandName == "" {
		// cpuid cannot read a brand string on most ARM cores
		spec.BrandName = runtime.GOARCH
	}
	if spec.LogicalCores == 0 {
		spec.LogicalCores = runtime.NumCPU()
	}

	for _, f := range simdFeatures {
		if cpuid.CPU.Supports(f.id) {
			spec.SIMD = append(spec.SIMD, f.name)
		}
	}
	return spec
}

// HasSIMD reports whether the named extension was detected.
func (c CPUSpec) HasSIMD(name string) bool {
	for _, s := range c.SIMD {
		if s == name {
			return true
		}
	}
	return false
}
