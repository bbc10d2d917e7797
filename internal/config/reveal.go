package config

import "time"

// RevealConfig holds the default timing for reveal sequences.  Requests
// may override each value.
type RevealConfig struct {
	Speed             time.Duration
	ShuffleCount      int
	PauseBetweenSeats time.Duration
	SpeedMultiplier   float64
}

func LoadRevealConfig() RevealConfig {
	cfg := RevealConfig{
		Speed:             envDur("REVEAL_SPEED", time.Second),
		ShuffleCount:      envInt("REVEAL_SHUFFLE_COUNT", 5),
		PauseBetweenSeats: envDur("REVEAL_PAUSE_BETWEEN_SEATS", 200*time.Millisecond),
		SpeedMultiplier:   envFloat("REVEAL_SPEED_MULTIPLIER", 1),
	}
	if cfg.Speed <= 0 {
		cfg.Speed = time.Second
	}
	if cfg.ShuffleCount < 0 {
		cfg.ShuffleCount = 0
	}
	if cfg.SpeedMultiplier <= 0 {
		cfg.SpeedMultiplier = 1
	}
	return cfg
}
