package config

import (
	"fmt"
	"time"

	"github.com/elevated-systems/renewable-assessor/pkg/assessor/common"
	"github.com/elevated-systems/renewable-assessor/pkg/assessor/wind"
)

// Config holds all configuration for the renewable assessor.
type Config struct {
	NREL            NRELAPIConfig          `yaml:"nrel"`
	ElectricityMaps ElectricityMapsConfig  `yaml:"electricityMaps"`
	WindAtlas       WindAtlasConfig        `yaml:"windAtlas"`
	Solar           SolarConfig            `yaml:"solar"`
	Wind            WindConfig             `yaml:"wind"`
	Store           StoreConfig            `yaml:"store"`
	Server          ServerConfig           `yaml:"server"`
}

// NRELAPIConfig holds settings for the NREL PVWatts and utility-rate APIs.
type NRELAPIConfig struct {
	APIKey          string        `yaml:"apiKey"`
	PVWattsURL      string        `yaml:"pvwattsUrl"`
	UtilityRatesURL string        `yaml:"utilityRatesUrl"`
	Timeout         time.Duration `yaml:"timeout"`
}

// ElectricityMapsConfig holds settings for the carbon-intensity API.
type ElectricityMapsConfig struct {
	APIKey      string        `yaml:"apiKey"`
	URL         string        `yaml:"url"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxRetries  int           `yaml:"maxRetries"`
	RetryDelay  time.Duration `yaml:"retryDelay"`
	RateLimit   int           `yaml:"rateLimit"`
	CacheTTL    time.Duration `yaml:"cacheTTL"`
	MaxCacheAge time.Duration `yaml:"maxCacheAge"`
}

// WindAtlasConfig holds settings for the wind time-series API.
type WindAtlasConfig struct {
	URL           string        `yaml:"url"`
	Timeout       time.Duration `yaml:"timeout"`
	DefaultHeight int           `yaml:"defaultHeight"` // meters above ground
}

// SolarConfig holds the solar financial assumptions.
type SolarConfig struct {
	PanelEfficiency float64 `yaml:"panelEfficiency"`
	CostPerKWUSD    float64 `yaml:"costPerKW"`
}

// WindConfig holds turbine presets and the wind financial assumptions.
type WindConfig struct {
	DefaultPreset       string               `yaml:"defaultPreset"`
	InstallationCostUSD float64              `yaml:"installationCost"`
	PresetsPath         string               `yaml:"presetsPath"`
	Presets             []wind.TurbinePreset `yaml:"presets"`
}

// StoreConfig holds assessment-history persistence settings.
type StoreConfig struct {
	Path          string        `yaml:"path"`
	RetentionDays int           `yaml:"retentionDays"`
	ReuseRadiusKm float64       `yaml:"reuseRadiusKm"`
	ReuseMaxAge   time.Duration `yaml:"reuseMaxAge"`
}

// ServerConfig holds HTTP serving settings.
type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowedOrigins"`
	MetricsEnabled bool     `yaml:"metricsEnabled"`
}

// Preset returns the turbine preset with the given name, falling back to
// the built-in presets when the name is not in the configured list.
func (c *WindConfig) Preset(name string) (wind.TurbinePreset, error) {
	if name == "" {
		name = c.DefaultPreset
	}
	for _, p := range c.Presets {
		if p.Name == name {
			return p, nil
		}
	}
	switch name {
	case wind.ResidentialTurbine.Name:
		return wind.ResidentialTurbine, nil
	case wind.UtilityTurbine.Name:
		return wind.UtilityTurbine, nil
	}
	return wind.TurbinePreset{}, fmt.Errorf("unknown turbine preset: %s", name)
}

// Validate performs validation of the configuration.
func (c *Config) Validate() error {
	if c.NREL.APIKey == "" {
		return fmt.Errorf("NREL API key is required")
	}
	if c.ElectricityMaps.APIKey == "" {
		return fmt.Errorf("ElectricityMaps API key is required")
	}
	if c.Solar.PanelEfficiency <= 0 || c.Solar.PanelEfficiency > 1 {
		return fmt.Errorf("panel efficiency must be in (0,1], got %f", c.Solar.PanelEfficiency)
	}
	if c.Solar.CostPerKWUSD <= 0 {
		return fmt.Errorf("cost per kW must be positive, got %f", c.Solar.CostPerKWUSD)
	}
	if c.Wind.InstallationCostUSD <= 0 {
		return fmt.Errorf("wind installation cost must be positive, got %f", c.Wind.InstallationCostUSD)
	}
	for i, p := range c.Wind.Presets {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("invalid turbine preset at index %d: %v", i, err)
		}
	}
	if _, err := c.Wind.Preset(c.Wind.DefaultPreset); err != nil {
		return fmt.Errorf("invalid default preset: %v", err)
	}
	if c.Store.ReuseRadiusKm < 0 {
		return fmt.Errorf("reuse radius must not be negative, got %f", c.Store.ReuseRadiusKm)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	return nil
}

// Defaults applied by the loader when the environment does not override
// them.
var defaultSolarConfig = SolarConfig{
	PanelEfficiency: common.DefaultPanelEfficiency,
	CostPerKWUSD:    common.DefaultCostPerKW,
}
