package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt             = 180.0
	DefaultRuntime        = 6 * 3600.0
	DefaultOutputInterval = 3600.0
	DefaultNumParticles   = 10
	DefaultRK45Tolerance  = 1e-5
	DefaultRK45MinDt      = 1e-3
)

type Config struct {
	Flow           string        `yaml:"flow"`
	Kernel         string        `yaml:"kernel"`
	Dt             float64       `yaml:"dt"`
	Runtime        float64       `yaml:"runtime"`
	OutputInterval float64       `yaml:"output_interval"`
	Recovery       string        `yaml:"recovery"`
	Backend        string        `yaml:"backend"`
	Release        ReleaseConfig `yaml:"release"`
	Halo           HaloConfig    `yaml:"halo"`
	RK45           RK45Config    `yaml:"rk45"`
}

// ReleaseConfig places NumParticles evenly along the line between the
// start and end coordinates.
type ReleaseConfig struct {
	NumParticles int     `yaml:"num_particles"`
	LonStart     float64 `yaml:"lon_start"`
	LonEnd       float64 `yaml:"lon_end"`
	LatStart     float64 `yaml:"lat_start"`
	LatEnd       float64 `yaml:"lat_end"`
	DepthStart   float64 `yaml:"depth_start"`
	DepthEnd     float64 `yaml:"depth_end"`
}

type HaloConfig struct {
	Zonal      bool `yaml:"zonal"`
	Meridional bool `yaml:"meridional"`
	Size       int  `yaml:"size"`
}

type RK45Config struct {
	Tolerance float64 `yaml:"tolerance"`
	MinDt     float64 `yaml:"min_dt"`
	MaxDt     float64 `yaml:"max_dt"`
}

func DefaultConfig() *Config {
	return &Config{
		Flow:           "stationary_eddy",
		Kernel:         "RK4",
		Dt:             DefaultDt,
		Runtime:        DefaultRuntime,
		OutputInterval: DefaultOutputInterval,
		Recovery:       "none",
		Backend:        "parallel",
		Release: ReleaseConfig{
			NumParticles: DefaultNumParticles,
			LonStart:     12000, LonEnd: 21000,
			LatStart: 12500, LatEnd: 12500,
		},
		RK45: RK45Config{
			Tolerance: DefaultRK45Tolerance,
			MinDt:     DefaultRK45MinDt,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
