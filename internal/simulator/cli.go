package simulator

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/okian/pitwall/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	// Initialize the logger first
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "simulator_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the simulator.
func ShowHelp() {
	os.Stdout.WriteString(`Pitwall Session Simulator
=========================

Serves a scripted RMonitor timing session over websocket for exercising
the pitwall client without live timing hardware.

Usage:
  go run cmd/simulator/main.go [options]

Options:
  -addr string
        Listen address for the websocket server (default ":50000")
  -cars int
        Number of cars in the field (default 8)
  -classes int
        Number of car classes (default 2)
  -qual-ticks int
        Ticks spent in the qualifying session (default 20)
  -race-laps int
        Laps in the race session (default 30)
  -tick duration
        Interval between update bursts (default 1s)
  -probe-every int
        Send a liveness probe every N ticks (default 5)
  -notice-every int
        Send an informational banner every N ticks (default 15)
  -log string
        Log file for simulator output (default: simulator_log_TIMESTAMP.log)
  -verbose
        Log every record received from clients
  -help
        Show this help message

Examples:
  # Serve the default session
  go run cmd/simulator/main.go

  # A big field ticking fast
  go run cmd/simulator/main.go -cars 24 -classes 4 -tick 250ms

  # Point the client at it
  PITWALL_SERVER_URL=ws://127.0.0.1:50000/stream go run cmd/main.go
`)
}
