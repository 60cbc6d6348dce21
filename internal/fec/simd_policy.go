package fec

import (
	"sync"

	"golang.org/x/sys/cpu"
)

// simdPolicy tags the GF kernel strategy chosen for this process. Chosen
// once from detected CPU features and cached; hot-path code branches on the
// cached tag rather than re-probing features per call.
type simdPolicy int

const (
	simdPolicyScalar simdPolicy = iota
	simdPolicyWide
)

var (
	simdPolicyOnce   sync.Once
	simdPolicyCached simdPolicy
)

// detectSIMDPolicy inspects CPU features via golang.org/x/sys/cpu and picks
// a policy. This is the pure-Go stand-in for the AVX-512/AVX2/SSE2/NEON
// carry-less-multiply dispatch table: without CGO or hand-written assembly
// this process cannot verify compiles, the widened table-batched kernel is
// the closest faithful rendition available.
func detectSIMDPolicy() simdPolicy {
	if cpu.X86.HasAVX2 || cpu.X86.HasSSE2 || cpu.ARM64.HasASIMD {
		return simdPolicyWide
	}
	return simdPolicyScalar
}

// activeSIMDPolicy returns the process-wide cached policy tag.
func activeSIMDPolicy() simdPolicy {
	simdPolicyOnce.Do(func() {
		simdPolicyCached = detectSIMDPolicy()
	})
	return simdPolicyCached
}

// simdPolicyName is used by telemetry to report which policy is active.
func simdPolicyName() string {
	switch activeSIMDPolicy() {
	case simdPolicyWide:
		return "wide"
	default:
		return "scalar"
	}
}
