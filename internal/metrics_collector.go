package internal

import (
	"sync"
)

// GlobalMetricsCollector aggregates metrics that span connections: flow
// throughput samples feeding Jain's fairness index across concurrent
// streams of a single test run.
type GlobalMetricsCollector struct {
	flowThroughputs []float64
	flowMutex       sync.Mutex
}

var globalMetricsCollector *GlobalMetricsCollector
var globalMetricsCollectorOnce sync.Once

// GetGlobalMetricsCollector returns the process-wide metrics collector.
func GetGlobalMetricsCollector() *GlobalMetricsCollector {
	globalMetricsCollectorOnce.Do(func() {
		globalMetricsCollector = &GlobalMetricsCollector{
			flowThroughputs: make([]float64, 0),
		}
	})
	return globalMetricsCollector
}

// RecordFlowThroughput records throughput for a flow for fairness calculation.
func (gmc *GlobalMetricsCollector) RecordFlowThroughput(throughput float64) {
	gmc.flowMutex.Lock()
	defer gmc.flowMutex.Unlock()

	if len(gmc.flowThroughputs) >= 100 {
		gmc.flowThroughputs = gmc.flowThroughputs[1:]
	}
	gmc.flowThroughputs = append(gmc.flowThroughputs, throughput)
}

// GetFairnessIndex computes Jain's Fairness Index over recorded flows:
// (sum(x))^2 / (n * sum(x^2)), in [1/n, 1], 1 meaning perfectly fair.
func (gmc *GlobalMetricsCollector) GetFairnessIndex() float64 {
	gmc.flowMutex.Lock()
	defer gmc.flowMutex.Unlock()

	n := len(gmc.flowThroughputs)
	if n == 0 {
		return 0
	}
	var sum, sumSq float64
	for _, x := range gmc.flowThroughputs {
		sum += x
		sumSq += x * x
	}
	if sumSq == 0 {
		return 0
	}
	return (sum * sum) / (float64(n) * sumSq)
}

// EnhanceMetricsMap folds in the cross-connection fairness index when it is
// above zero, i.e. when any recorded flow has nonzero throughput (a single
// such flow yields an index of 1).
func EnhanceMetricsMap(metricsMap map[string]interface{}) map[string]interface{} {
	gmc := GetGlobalMetricsCollector()
	if fairnessIndex := gmc.GetFairnessIndex(); fairnessIndex > 0 {
		metricsMap["FairnessIndex"] = fairnessIndex
	}
	return metricsMap
}
