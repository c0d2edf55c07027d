package core

import (
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/jo-hoe/trademate/internal/export"
	"github.com/jo-hoe/trademate/internal/report"

	"gopkg.in/yaml.v3"
)

type Database struct {
	Type             string `yaml:"type"`
	ConnectionString string `yaml:"connectionString"`
}

type Preview struct {
	Type       string `yaml:"type"`
	Address    string `yaml:"address"`
	TTLSeconds int    `yaml:"ttlSeconds"`
}

func (p Preview) TTL() time.Duration {
	return time.Duration(p.TTLSeconds) * time.Second
}

type Export struct {
	Scale           float64 `yaml:"scale"`
	JPEGQuality     int     `yaml:"jpegQuality"`
	PageWidthMm     float64 `yaml:"pageWidthMm"`
	PageHeightMm    float64 `yaml:"pageHeightMm"`
	MarginMm        float64 `yaml:"marginMm"`
	Timezone        string  `yaml:"timezone"`
	TimestampFormat string  `yaml:"timestampFormat"`
}

func (e Export) Geometry() export.PageGeometry {
	return export.PageGeometry{WidthMm: e.PageWidthMm, HeightMm: e.PageHeightMm, MarginMm: e.MarginMm}
}

// Location resolves the timezone; LoadConfig has already rejected unknown names.
func (e Export) Location() *time.Location {
	loc, err := time.LoadLocation(e.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// MetricConfig is one configured line of the key metrics panel.
type MetricConfig struct {
	Label string `yaml:"label"`
	Value string `yaml:"value"`
	Trend string `yaml:"trend"`
}

type Report struct {
	SurfaceWidth     float64        `yaml:"surfaceWidth"`
	PreparedFor      string         `yaml:"preparedFor"`
	LogoURL          string         `yaml:"logoUrl"`
	AllowCrossOrigin bool           `yaml:"allowCrossOrigin"`
	SeedSamples      bool           `yaml:"seedSamples"`
	Metrics          []MetricConfig `yaml:"metrics"`
}

// ReportMetrics converts the configured metrics, falling back to the defaults when none are set.
func (r Report) ReportMetrics() []report.Metric {
	if len(r.Metrics) == 0 {
		return report.DefaultMetrics
	}
	metrics := make([]report.Metric, len(r.Metrics))
	for i, m := range r.Metrics {
		metrics[i] = report.Metric{Label: m.Label, Value: m.Value}
		switch m.Trend {
		case "up":
			metrics[i].Trend = report.TrendUp
		case "down":
			metrics[i].Trend = report.TrendDown
		}
	}
	return metrics
}

type ServiceConfig struct {
	Port     int      `yaml:"port"`
	Database Database `yaml:"database"`
	Preview  Preview  `yaml:"preview"`
	Export   Export   `yaml:"export"`
	Report   Report   `yaml:"report"`
}

// DefaultConfig returns the configuration used for every field a config file leaves out.
func DefaultConfig() *ServiceConfig {
	return &ServiceConfig{
		Port: 8080,
		Database: Database{
			Type:             "sqlite",
			ConnectionString: "file:trademate.db",
		},
		Preview: Preview{
			Type:       "memory",
			Address:    "localhost:6379",
			TTLSeconds: 300,
		},
		Export: Export{
			Scale:           export.DefaultScale,
			JPEGQuality:     export.DefaultJPEGQuality,
			PageWidthMm:     export.A4Portrait.WidthMm,
			PageHeightMm:    export.A4Portrait.HeightMm,
			MarginMm:        export.A4Portrait.MarginMm,
			Timezone:        "UTC",
			TimestampFormat: export.DefaultTimestampFormat,
		},
		Report: Report{
			SurfaceWidth: report.DefaultWidth,
			PreparedFor:  report.DefaultPreparedFor,
			SeedSamples:  true,
		},
	}
}

// LoadConfig loads configuration from the specified YAML file on top of DefaultConfig
func LoadConfig(configPath string) (*ServiceConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	config := DefaultConfig()
	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", configPath, err)
	}

	return config, nil
}

// Validate checks every value a run depends on.
func (c *ServiceConfig) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.Database.Type == "" {
		return fmt.Errorf("database type is empty")
	}

	switch c.Preview.Type {
	case "memory":
	case "redis":
		if c.Preview.Address == "" {
			return fmt.Errorf("redis preview store needs an address")
		}
	default:
		return fmt.Errorf("unknown preview type %q", c.Preview.Type)
	}
	if c.Preview.TTLSeconds <= 0 {
		return fmt.Errorf("preview ttlSeconds must be positive, got %d", c.Preview.TTLSeconds)
	}

	if c.Export.Scale <= 0 {
		return fmt.Errorf("export scale must be positive, got %v", c.Export.Scale)
	}
	if c.Export.JPEGQuality < 1 || c.Export.JPEGQuality > 100 {
		return fmt.Errorf("export jpegQuality must be within 1..100, got %d", c.Export.JPEGQuality)
	}
	if !c.Export.Geometry().Valid() {
		return fmt.Errorf("page %vx%vmm with %vmm margins leaves no usable area",
			c.Export.PageWidthMm, c.Export.PageHeightMm, c.Export.MarginMm)
	}
	if _, err := time.LoadLocation(c.Export.Timezone); err != nil {
		return fmt.Errorf("unknown timezone %q: %w", c.Export.Timezone, err)
	}
	if c.Export.TimestampFormat == "" {
		return fmt.Errorf("export timestampFormat is empty")
	}

	if c.Report.SurfaceWidth <= 0 {
		return fmt.Errorf("report surfaceWidth must be positive, got %v", c.Report.SurfaceWidth)
	}
	for i, m := range c.Report.Metrics {
		if m.Label == "" {
			return fmt.Errorf("metric at index %d has empty label", i)
		}
		switch m.Trend {
		case "", "up", "down", "flat":
		default:
			return fmt.Errorf("metric %q has unknown trend %q", m.Label, m.Trend)
		}
	}

	return nil
}
