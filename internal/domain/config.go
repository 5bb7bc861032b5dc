package domain

import (
	"fmt"
	"time"
)

// Config holds the complete Kite configuration.
type Config struct {
	// Simulation drives the generator core.
	Simulation SimulationConfig `json:"simulation"`

	// Output settings for the daily dataset files.
	Output OutputConfig `json:"output"`

	// Archive is the optional database sink for generated data.
	Archive RepositoryConfig `json:"archive"`

	// EventBus settings for the replay publisher.
	EventBus EventBusConfig `json:"eventBus"`

	// Checkpoint settings for replay resume.
	Checkpoint CheckpointConfig `json:"checkpoint"`

	// Server is the replay status HTTP surface.
	Server ServerConfig `json:"server"`

	// Logging settings.
	Logging LoggingConfig `json:"logging"`
}

// SimulationConfig holds the run parameters and model constants for one
// generation run. The model constants carry defaults matching the
// reference dataset; the run parameters come from the CLI.
type SimulationConfig struct {
	StartDate time.Time `json:"startDate"`
	Days      int       `json:"days"`
	Customers int       `json:"customers"`
	Terminals int       `json:"terminals"`
	Seed      int64     `json:"seed"`

	// Geography. Customers and terminals are scattered over discs
	// around the center.
	CenterLat        float64 `json:"centerLat"`
	CenterLon        float64 `json:"centerLon"`
	CustomerRadiusKM float64 `json:"customerRadiusKm"`
	TerminalRadiusKM float64 `json:"terminalRadiusKm"`

	// Proximity radii and fallback sample sizes.
	NearRadiusKM float64 `json:"nearRadiusKm"`
	FarRadiusKM  float64 `json:"farRadiusKm"`
	NearFallback int     `json:"nearFallback"`
	FarFallback  int     `json:"farFallback"`

	// Legitimate traffic model.
	LegitRate        float64 `json:"legitRate"` // Poisson mean per customer-day
	LegitAmountMu    float64 `json:"legitAmountMu"`
	LegitAmountSigma float64 `json:"legitAmountSigma"`
	LegitAmountCap   float64 `json:"legitAmountCap"`

	// Stolen-card burst model.
	CompromiseRate   float64 `json:"compromiseRate"` // per customer-day
	BurstMinSize     int     `json:"burstMinSize"`
	BurstMaxSize     int     `json:"burstMaxSize"`
	BurstWindowSecs  int     `json:"burstWindowSecs"`
	FraudAmountMu    float64 `json:"fraudAmountMu"`
	FraudAmountSigma float64 `json:"fraudAmountSigma"`
	FraudAmountMin   float64 `json:"fraudAmountMin"`
	FraudAmountMax   float64 `json:"fraudAmountMax"`
}

// Validate checks the run parameters before any generation begins.
func (c SimulationConfig) Validate() error {
	if c.StartDate.IsZero() {
		return fmt.Errorf("%w: start date is required", ErrParameter)
	}
	if c.Days <= 0 {
		return fmt.Errorf("%w: days must be positive, got %d", ErrParameter, c.Days)
	}
	if c.Customers <= 0 {
		return fmt.Errorf("%w: customers must be positive, got %d", ErrConfiguration, c.Customers)
	}
	if c.Terminals <= 0 {
		return fmt.Errorf("%w: terminals must be positive, got %d", ErrConfiguration, c.Terminals)
	}
	if c.NearRadiusKM <= 0 || c.FarRadiusKM <= 0 {
		return fmt.Errorf("%w: proximity radii must be positive", ErrConfiguration)
	}
	if c.BurstMinSize < 1 || c.BurstMaxSize < c.BurstMinSize {
		return fmt.Errorf("%w: burst size range [%d,%d] is invalid", ErrConfiguration, c.BurstMinSize, c.BurstMaxSize)
	}
	return nil
}

// OutputConfig holds dataset file output settings.
type OutputConfig struct {
	Dir string `json:"dir"`
}

// ServerConfig holds HTTP server settings for the replay status surface.
type ServerConfig struct {
	Host         string `json:"host"`
	Port         int    `json:"port"`
	ReadTimeout  int    `json:"readTimeout"`  // seconds
	WriteTimeout int    `json:"writeTimeout"` // seconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // json, text
}

// DefaultConfig returns the default configuration. The simulation
// defaults reproduce the reference dataset: Chicago center, 50 km
// customer disc, 70 km terminal disc, and the documented traffic and
// fraud model constants.
func DefaultConfig() *Config {
	return &Config{
		Simulation: SimulationConfig{
			Days:      7,
			Customers: 5000,
			Terminals: 1200,
			Seed:      123,

			CenterLat:        41.8781,
			CenterLon:        -87.6298,
			CustomerRadiusKM: 50,
			TerminalRadiusKM: 70,

			NearRadiusKM: 10,
			FarRadiusKM:  35,
			NearFallback: 10,
			FarFallback:  20,

			LegitRate:        0.15,
			LegitAmountMu:    3.4,
			LegitAmountSigma: 0.9,
			LegitAmountCap:   5000,

			CompromiseRate:   0.000086,
			BurstMinSize:     2,
			BurstMaxSize:     5,
			BurstWindowSecs:  120,
			FraudAmountMu:    3.8,
			FraudAmountSigma: 0.7,
			FraudAmountMin:   50,
			FraudAmountMax:   8000,
		},
		Output: OutputConfig{
			Dir: "./data/daily",
		},
		Archive: RepositoryConfig{
			Driver:     "none",
			SQLitePath: "./kite.db",
		},
		EventBus: EventBusConfig{
			Type:              "channel",
			ChannelBufferSize: 1000,
		},
		Checkpoint: CheckpointConfig{
			Type: "memory",
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8081,
			ReadTimeout:  30,
			WriteTimeout: 30,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
