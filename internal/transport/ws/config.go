package ws

import "time"

// Config holds per-connection limits and keepalive timings
type Config struct {
	// MessagesPerSecond and Burst bound inbound frames per connection
	MessagesPerSecond float64
	Burst             int

	SendBufferSize  int
	MaxMessageBytes int64

	PingInterval time.Duration
	PongWait     time.Duration
	WriteWait    time.Duration
}

// DefaultConfig returns the default connection settings.
// Canvas submissions are the largest frames; 4 MiB holds a base64 800x600 RGBA buffer.
func DefaultConfig() Config {
	return Config{
		MessagesPerSecond: 30,
		Burst:             60,
		SendBufferSize:    256,
		MaxMessageBytes:   4 << 20,
		PingInterval:      30 * time.Second,
		PongWait:          time.Minute,
		WriteWait:         10 * time.Second,
	}
}
