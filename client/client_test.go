package client

import (
	"testing"
)

func TestCalcPercentiles(t *testing.T) {
	tests := []struct {
		name     string
		data     []float64
		expected struct {
			p50, p95, p99 float64
		}
	}{
		{
			name: "simple data",
			data: []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
			expected: struct {
				p50, p95, p99 float64
			}{p50: 6, p95: 10, p99: 10}, // Исправленные ожидаемые значения
		},
		{
			name: "single value",
			data: []float64{42},
			expected: struct {
				p50, p95, p99 float64
			}{p50: 42, p95: 42, p99: 42},
		},
		{
			name: "empty data",
			data: []float64{},
			expected: struct {
				p50, p95, p99 float64
			}{p50: 0, p95: 0, p99: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p50, p95, p99 := calcPercentiles(tt.data)
			
			if p50 != tt.expected.p50 {
				t.Errorf("calcPercentiles() p50 = %v, want %v", p50, tt.expected.p50)
			}
			if p95 != tt.expected.p95 {
				t.Errorf("calcPercentiles() p95 = %v, want %v", p95, tt.expected.p95)
			}
			if p99 != tt.expected.p99 {
				t.Errorf("calcPercentiles() p99 = %v, want %v", p99, tt.expected.p99)
			}
		})
	}
}

func TestSecureFloat64(t *testing.T) {
	// Тестируем, что функция возвращает значения в диапазоне [0, 1)
	for i := 0; i < 100; i++ {
		val := secureFloat64()
		if val < 0 || val >= 1 {
			t.Errorf("secureFloat64() = %v, want value in range [0, 1)", val)
		}
	}
}

func TestMetricsToMapFEC(t *testing.T) {
	m := &Metrics{
		Success:              10,
		BytesSent:            12000,
		FECPacketsSent:       100,
		FECRepairPacketsSent: 15,
		FECRedundancyBytes:   18000,
		FECRecovered:         12,
		FECRecoveryEvents:    3,
		FECUseCXX:            true,
	}

	result := m.ToMap()

	if result["FECPacketsSent"] != int64(100) {
		t.Errorf("FECPacketsSent = %v, want 100", result["FECPacketsSent"])
	}
	if result["FECRecovered"] != int64(12) {
		t.Errorf("FECRecovered = %v, want 12", result["FECRecovered"])
	}
	if result["FECUseCXX"] != true {
		t.Errorf("FECUseCXX = %v, want true", result["FECUseCXX"])
	}
}

func TestTimePoint(t *testing.T) {
	tp := TimePoint{
		Time:  1.5,
		Value: 42.0,
	}
	
	if tp.Time != 1.5 {
		t.Errorf("TimePoint.Time = %v, want %v", tp.Time, 1.5)
	}
	if tp.Value != 42.0 {
		t.Errorf("TimePoint.Value = %v, want %v", tp.Value, 42.0)
	}
}
