package internal

import (
	"fmt"
	"os"
	"time"
)

// ExportPrometheusMetrics экспортирует метрики в Prometheus text exposition format
func ExportPrometheusMetrics(cfg TestConfig, metrics map[string]interface{}, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create prometheus file: %w", err)
	}
	defer file.Close()

	// Заголовок с HELP и TYPE
	file.WriteString("# HELP quic_test_duration_seconds Test duration in seconds\n")
	file.WriteString("# TYPE quic_test_duration_seconds gauge\n")
	
	file.WriteString("# HELP quic_test_connections_total Number of connections\n")
	file.WriteString("# TYPE quic_test_connections_total gauge\n")
	
	file.WriteString("# HELP quic_test_bytes_sent_total Total bytes sent\n")
	file.WriteString("# TYPE quic_test_bytes_sent_total counter\n")
	
	file.WriteString("# HELP quic_test_packets_sent_total Total packets sent\n")
	file.WriteString("# TYPE quic_test_packets_sent_total counter\n")
	
	file.WriteString("# HELP quic_test_errors_total Total errors\n")
	file.WriteString("# TYPE quic_test_errors_total counter\n")
	
	file.WriteString("# HELP quic_test_latency_p50_ms Latency p50 in milliseconds\n")
	file.WriteString("# TYPE quic_test_latency_p50_ms gauge\n")
	
	file.WriteString("# HELP quic_test_latency_p95_ms Latency p95 in milliseconds\n")
	file.WriteString("# TYPE quic_test_latency_p95_ms gauge\n")
	
	file.WriteString("# HELP quic_test_latency_p99_ms Latency p99 in milliseconds\n")
	file.WriteString("# TYPE quic_test_latency_p99_ms gauge\n")
	
	file.WriteString("# HELP quic_test_jitter_ms Jitter in milliseconds\n")
	file.WriteString("# TYPE quic_test_jitter_ms gauge\n")
	
	file.WriteString("# HELP quic_test_throughput_mbps Throughput in Mbps\n")
	file.WriteString("# TYPE quic_test_throughput_mbps gauge\n")
	
	file.WriteString("# HELP quic_test_packet_loss_percent Packet loss percentage\n")
	file.WriteString("# TYPE quic_test_packet_loss_percent gauge\n")
	
	file.WriteString("# HELP quic_test_retransmission_rate_percent Retransmission rate percentage\n")
	file.WriteString("# TYPE quic_test_retransmission_rate_percent gauge\n")

	// Базовые метрики (используем функции из schema.go)
	bytesSent := getInt64(metrics, "BytesSent")
	success := getInt(metrics, "Success")
	errors := getInt(metrics, "Errors")
	
	durationSec := float64(cfg.Duration.Seconds())
	if durationSec == 0 {
		durationSec = 60.0 // default
	}
	
	rttP50 := getFloat64(metrics, "RTTP50Ms")
	rttP95 := getFloat64(metrics, "RTTP95Ms")
	rttP99 := getFloat64(metrics, "RTTP99Ms")
	jitter := getFloat64(metrics, "JitterMs")
	throughputMbps := getFloat64(metrics, "ThroughputMbps")
	packetLoss := getFloat64(metrics, "PacketLoss") * 100
	retransmissionRate := getFloat64(metrics, "RetransmissionRate") * 100

	// Записываем метрики
	file.WriteString(fmt.Sprintf("quic_test_duration_seconds{cc=\"%s\"} %.2f\n", cfg.CongestionControl, durationSec))
	file.WriteString(fmt.Sprintf("quic_test_connections_total{cc=\"%s\"} %d\n", cfg.CongestionControl, cfg.Connections))
	file.WriteString(fmt.Sprintf("quic_test_bytes_sent_total{cc=\"%s\"} %d\n", cfg.CongestionControl, bytesSent))
	file.WriteString(fmt.Sprintf("quic_test_packets_sent_total{cc=\"%s\"} %d\n", cfg.CongestionControl, success))
	file.WriteString(fmt.Sprintf("quic_test_errors_total{cc=\"%s\"} %d\n", cfg.CongestionControl, errors))
	file.WriteString(fmt.Sprintf("quic_test_latency_p50_ms{cc=\"%s\"} %.3f\n", cfg.CongestionControl, rttP50))
	file.WriteString(fmt.Sprintf("quic_test_latency_p95_ms{cc=\"%s\"} %.3f\n", cfg.CongestionControl, rttP95))
	file.WriteString(fmt.Sprintf("quic_test_latency_p99_ms{cc=\"%s\"} %.3f\n", cfg.CongestionControl, rttP99))
	file.WriteString(fmt.Sprintf("quic_test_jitter_ms{cc=\"%s\"} %.3f\n", cfg.CongestionControl, jitter))
	file.WriteString(fmt.Sprintf("quic_test_throughput_mbps{cc=\"%s\"} %.3f\n", cfg.CongestionControl, throughputMbps))
	file.WriteString(fmt.Sprintf("quic_test_packet_loss_percent{cc=\"%s\"} %.3f\n", cfg.CongestionControl, packetLoss))
	file.WriteString(fmt.Sprintf("quic_test_retransmission_rate_percent{cc=\"%s\"} %.3f\n", cfg.CongestionControl, retransmissionRate))

	// Метрики FEC, если кодирование было включено для этого прогона
	if cfg.FECEnabled {
		file.WriteString("\n# FEC specific metrics\n")
		file.WriteString("# HELP quic_fec_redundancy_ratio Configured FEC redundancy ratio\n")
		file.WriteString("# TYPE quic_fec_redundancy_ratio gauge\n")
		file.WriteString("# HELP quic_fec_packets_sent_total Total packets protected by FEC\n")
		file.WriteString("# TYPE quic_fec_packets_sent_total counter\n")
		file.WriteString("# HELP quic_fec_repair_packets_sent_total Total repair symbols sent\n")
		file.WriteString("# TYPE quic_fec_repair_packets_sent_total counter\n")
		file.WriteString("# HELP quic_fec_redundancy_bytes_total Total bytes spent on repair symbols\n")
		file.WriteString("# TYPE quic_fec_redundancy_bytes_total counter\n")
		file.WriteString("# HELP quic_fec_recovered_total Packets recovered via FEC decoding\n")
		file.WriteString("# TYPE quic_fec_recovered_total counter\n")
		file.WriteString("# HELP quic_fec_recovery_events_total Number of generations that required recovery\n")
		file.WriteString("# TYPE quic_fec_recovery_events_total counter\n")

		packetsSent := getInt64(metrics, "FECPacketsSent")
		repairSent := getInt64(metrics, "FECRepairPacketsSent")
		redundancyBytes := getInt64(metrics, "FECRedundancyBytes")
		recovered := getInt64(metrics, "FECRecovered")
		recoveryEvents := getInt64(metrics, "FECRecoveryEvents")

		file.WriteString(fmt.Sprintf("quic_fec_redundancy_ratio{cc=\"%s\"} %.4f\n", cfg.CongestionControl, cfg.FECRedundancy))
		file.WriteString(fmt.Sprintf("quic_fec_packets_sent_total{cc=\"%s\"} %d\n", cfg.CongestionControl, packetsSent))
		file.WriteString(fmt.Sprintf("quic_fec_repair_packets_sent_total{cc=\"%s\"} %d\n", cfg.CongestionControl, repairSent))
		file.WriteString(fmt.Sprintf("quic_fec_redundancy_bytes_total{cc=\"%s\"} %d\n", cfg.CongestionControl, redundancyBytes))
		file.WriteString(fmt.Sprintf("quic_fec_recovered_total{cc=\"%s\"} %d\n", cfg.CongestionControl, recovered))
		file.WriteString(fmt.Sprintf("quic_fec_recovery_events_total{cc=\"%s\"} %d\n", cfg.CongestionControl, recoveryEvents))
	}

	file.WriteString(fmt.Sprintf("\n# Timestamp: %s\n", time.Now().Format(time.RFC3339)))
	
	return nil
}

