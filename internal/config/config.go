package config

import (
	"flag"
	"time"
)

// Config holds instance-level configuration for the service.
type Config struct {
	ListenAddr            string
	MaxReceiveMessageSize int

	BufferSize      int
	FloatPrecision  int
	MaxQueue        int
	OutputFile      string
	LogLevel        string
	GracefulTimeout time.Duration
}

// RegisterFlags registers CLI flags and returns a reader that captures them after flag.Parse().
func RegisterFlags() func() Config {
	listenAddr := flag.String("listenAddr", "localhost:4317", "The listen address")
	maxRecv := flag.Int("maxReceiveMessageSize", 16*1024*1024, "The max message size in bytes the server can receive")

	bufferSize := flag.Int("bufferSize", 4096, "Encoder buffer capacity in bytes; records that do not fit are dropped")
	floatPrecision := flag.Int("floatPrecision", 3, "Digits after the decimal point for double-valued attributes")
	maxQueue := flag.Int("maxQueue", 100_000, "Max ingestion queue size")
	outputFile := flag.String("outputFile", "", "Append JSON lines to this file instead of stdout")
	logLevel := flag.String("logLevel", "info", "Log level: debug|info|warn|error")
	graceful := flag.Duration("gracefulTimeout", 10*time.Second, "Graceful shutdown timeout")

	return func() Config {
		return Config{
			ListenAddr:            *listenAddr,
			MaxReceiveMessageSize: *maxRecv,
			BufferSize:            *bufferSize,
			FloatPrecision:        *floatPrecision,
			MaxQueue:              *maxQueue,
			OutputFile:            *outputFile,
			LogLevel:              *logLevel,
			GracefulTimeout:       *graceful,
		}
	}
}
