package internal

import (
	"fmt"
	"time"
)

// TestConfig описывает параметры теста для клиента и сервера.
type TestConfig struct {
	Mode         string        // Режим работы: server | client | test
	Addr         string        // Адрес для подключения или прослушивания
	Streams      int           // Количество потоков на соединение
	Connections  int           // Количество соединений
	Duration     time.Duration // Длительность теста
	PacketSize   int           // Размер пакета (байт)
	Rate         int           // Частота отправки пакетов (в секунду)
	ReportPath   string        // Путь к файлу для отчёта
	ReportFormat string        // Формат отчёта: csv | md | json
	CertPath     string        // Путь к TLS-сертификату
	KeyPath      string        // Путь к TLS-ключу
	Pattern      string        // Шаблон данных: random | zeroes | increment
	NoTLS        bool          // Отключить TLS
	Prometheus   bool          // Экспортировать метрики Prometheus

	// --- Эмуляция плохих сетей ---
	EmulateLoss    float64        // вероятность потери пакета (0..1)
	EmulateLatency time.Duration  // дополнительная задержка
	EmulateDup     float64        // вероятность дублирования пакета (0..1)

	// --- Профилирование и мониторинг ---
	PprofAddr string // Адрес для pprof (например, :6060)

	// --- SLA проверки ---
	SlaRttP95 time.Duration // SLA: максимальный RTT p95
	SlaLoss   float64       // SLA: максимальная потеря пакетов

	// --- QUIC тюнинг ---
	CongestionControl     string        // Алгоритм управления перегрузкой (информационно, применяется FEC-режимом)
	MaxIdleTimeout        time.Duration // Максимальное время простоя соединения
	HandshakeTimeout      time.Duration // Таймаут handshake
	KeepAlive             time.Duration // Интервал keep-alive
	MaxStreams            int64         // Максимальное количество потоков
	MaxStreamData         int64         // Максимальный размер данных потока
	Enable0RTT            bool          // Включить 0-RTT
	EnableKeyUpdate       bool          // Включить key update
	EnableDatagrams       bool          // Включить datagrams
	MaxIncomingStreams    int64         // Максимальное количество входящих потоков
	MaxIncomingUniStreams int64         // Максимальное количество входящих unidirectional потоков

	// --- Forward Error Correction ---
	FECEnabled    bool    // Включить FEC-кодирование потоков
	FECRedundancy float64 // Уровень избыточности FEC (0..1)
}

// Validate проверяет базовую непротиворечивость конфигурации теста.
func (cfg TestConfig) Validate() error {
	if cfg.Connections <= 0 {
		return fmt.Errorf("connections должно быть положительным, получено %d", cfg.Connections)
	}
	if cfg.Streams <= 0 {
		return fmt.Errorf("streams должно быть положительным, получено %d", cfg.Streams)
	}
	if cfg.PacketSize <= 0 {
		return fmt.Errorf("packet-size должен быть положительным, получено %d", cfg.PacketSize)
	}
	if cfg.Rate <= 0 {
		return fmt.Errorf("rate должен быть положительным, получено %d", cfg.Rate)
	}

	switch cfg.CongestionControl {
	case "", "cubic", "bbr", "reno":
	default:
		return fmt.Errorf("неизвестный алгоритм управления перегрузкой: %s", cfg.CongestionControl)
	}

	if cfg.MaxIdleTimeout < 0 {
		return fmt.Errorf("max-idle-timeout не может быть отрицательным")
	}
	if cfg.HandshakeTimeout < 0 {
		return fmt.Errorf("handshake-timeout не может быть отрицательным")
	}
	if cfg.KeepAlive < 0 {
		return fmt.Errorf("keep-alive не может быть отрицательным")
	}
	if cfg.MaxStreams < 0 {
		return fmt.Errorf("max-streams не может быть отрицательным")
	}
	if cfg.MaxStreamData < 0 {
		return fmt.Errorf("max-stream-data не может быть отрицательным")
	}
	if cfg.MaxIncomingStreams < 0 {
		return fmt.Errorf("max-incoming-streams не может быть отрицательным")
	}
	if cfg.MaxIncomingUniStreams < 0 {
		return fmt.Errorf("max-incoming-uni-streams не может быть отрицательным")
	}

	return nil
}