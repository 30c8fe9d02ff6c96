package simulator

import "time"

// Config holds configuration for the session simulator.
type Config struct {
	Addr        string        // Listen address for the websocket server
	Cars        int           // Number of cars in the field
	Classes     int           // Number of car classes
	QualTicks   int           // Ticks spent in the qualifying session
	RaceLaps    int           // Laps in the race session
	Tick        time.Duration // Interval between update bursts
	ProbeEveryN int           // Send a liveness probe every N ticks
	NoticeEvery int           // Send an informational banner every N ticks
	LogFile     string        // Log file for simulator output
	Verbose     bool          // Enable verbose logging
}

// Stats holds simulator statistics.
type Stats struct {
	ClientsServed     int
	FramesSent        int
	ProbesSent        int
	PongsReceived     int
	RecordsFromClient int
	StartTime         time.Time
}
