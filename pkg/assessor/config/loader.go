package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
	"k8s.io/klog/v2"

	"github.com/elevated-systems/renewable-assessor/pkg/assessor/common"
	"github.com/elevated-systems/renewable-assessor/pkg/assessor/wind"
)

// LoadFromEnv loads configuration from environment variables, reading the
// optional turbine-preset file when WIND_PRESETS_PATH is set.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		NREL: NRELAPIConfig{
			APIKey:          os.Getenv("NREL_API_KEY"),
			PVWattsURL:      getEnvOrDefault("NREL_PVWATTS_URL", "https://developer.nrel.gov/api/pvwatts/v8.json"),
			UtilityRatesURL: getEnvOrDefault("NREL_UTILITY_RATES_URL", "https://developer.nrel.gov/api/utility_rates/v3.json"),
			Timeout:         getDurationOrDefault("NREL_TIMEOUT", 10*time.Second),
		},
		ElectricityMaps: ElectricityMapsConfig{
			APIKey:      os.Getenv("ELECTRICITY_MAPS_API_KEY"),
			URL:         getEnvOrDefault("ELECTRICITY_MAPS_URL", "https://api.electricitymap.org/v3/carbon-intensity/latest"),
			Timeout:     getDurationOrDefault("ELECTRICITY_MAPS_TIMEOUT", 10*time.Second),
			MaxRetries:  getIntOrDefault("ELECTRICITY_MAPS_MAX_RETRIES", 3),
			RetryDelay:  getDurationOrDefault("ELECTRICITY_MAPS_RETRY_DELAY", 1*time.Second),
			RateLimit:   getIntOrDefault("ELECTRICITY_MAPS_RATE_LIMIT", 10),
			CacheTTL:    getDurationOrDefault("ELECTRICITY_MAPS_CACHE_TTL", 5*time.Minute),
			MaxCacheAge: getDurationOrDefault("ELECTRICITY_MAPS_MAX_CACHE_AGE", 1*time.Hour),
		},
		WindAtlas: WindAtlasConfig{
			URL:           getEnvOrDefault("WIND_ATLAS_URL", "http://windatlas.xyz/api/wind/"),
			Timeout:       getDurationOrDefault("WIND_ATLAS_TIMEOUT", 30*time.Second),
			DefaultHeight: getIntOrDefault("WIND_ATLAS_DEFAULT_HEIGHT", 100),
		},
		Solar: SolarConfig{
			PanelEfficiency: getFloatOrDefault("SOLAR_PANEL_EFFICIENCY", defaultSolarConfig.PanelEfficiency),
			CostPerKWUSD:    getFloatOrDefault("SOLAR_COST_PER_KW", defaultSolarConfig.CostPerKWUSD),
		},
		Wind: WindConfig{
			DefaultPreset:       getEnvOrDefault("WIND_DEFAULT_PRESET", wind.ResidentialTurbine.Name),
			InstallationCostUSD: getFloatOrDefault("WIND_INSTALLATION_COST", common.DefaultWindInstallationCost),
			PresetsPath:         os.Getenv("WIND_PRESETS_PATH"),
		},
		Store: StoreConfig{
			Path:          getEnvOrDefault("STORE_PATH", "data/assessments.db"),
			RetentionDays: getIntOrDefault("STORE_RETENTION_DAYS", 90),
			ReuseRadiusKm: getFloatOrDefault("STORE_REUSE_RADIUS_KM", 50),
			ReuseMaxAge:   getDurationOrDefault("STORE_REUSE_MAX_AGE", 24*time.Hour),
		},
		Server: ServerConfig{
			Port:           getIntOrDefault("SERVER_PORT", 8000),
			AllowedOrigins: getSliceOrDefault("SERVER_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
			MetricsEnabled: getBoolOrDefault("METRICS_ENABLED", true),
		},
	}

	if cfg.Wind.PresetsPath != "" {
		if err := loadTurbinePresets(cfg, cfg.Wind.PresetsPath); err != nil {
			return nil, fmt.Errorf("failed to load turbine presets: %v", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %v", err)
	}

	klog.V(2).InfoS("Loaded configuration",
		"pvwattsURL", cfg.NREL.PVWattsURL,
		"defaultPreset", cfg.Wind.DefaultPreset,
		"reuseRadiusKm", cfg.Store.ReuseRadiusKm,
		"serverPort", cfg.Server.Port)

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if strValue := os.Getenv(key); strValue != "" {
		if value, err := strconv.Atoi(strValue); err == nil {
			return value
		}
		klog.V(2).InfoS("Invalid integer value, using default",
			"key", key,
			"value", strValue,
			"default", defaultValue)
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if strValue := os.Getenv(key); strValue != "" {
		if value, err := strconv.ParseFloat(strValue, 64); err == nil {
			return value
		}
		klog.V(2).InfoS("Invalid float value, using default",
			"key", key,
			"value", strValue,
			"default", defaultValue)
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if strValue := os.Getenv(key); strValue != "" {
		if value, err := strconv.ParseBool(strValue); err == nil {
			return value
		}
		klog.V(2).InfoS("Invalid boolean value, using default",
			"key", key,
			"value", strValue,
			"default", defaultValue)
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if strValue := os.Getenv(key); strValue != "" {
		if value, err := time.ParseDuration(strValue); err == nil {
			return value
		}
		klog.V(2).InfoS("Invalid duration value, using default",
			"key", key,
			"value", strValue,
			"default", defaultValue)
	}
	return defaultValue
}

func getSliceOrDefault(key string, defaultValue []string) []string {
	if strValue := os.Getenv(key); strValue != "" {
		parts := strings.Split(strValue, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}

func loadTurbinePresets(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read turbine presets file: %v", err)
	}

	presets := &WindConfig{}
	if err := yaml.Unmarshal(data, presets); err != nil {
		return fmt.Errorf("failed to parse turbine presets: %v", err)
	}

	cfg.Wind.Presets = presets.Presets
	return nil
}
