package config

var Presets = map[string]map[string]*Config{
	"stationary_eddy": {
		"single": {
			Flow: "stationary_eddy", Kernel: "RK4", Dt: 180, Runtime: 6 * 3600, OutputInterval: 3600,
			Release: ReleaseConfig{NumParticles: 1, LonStart: 12000, LonEnd: 12000, LatStart: 12500, LatEnd: 12500},
		},
		"transect": {
			Flow: "stationary_eddy", Kernel: "RK4", Dt: 180, Runtime: 6 * 3600, OutputInterval: 3600,
			Release: ReleaseConfig{NumParticles: 10, LonStart: 12000, LonEnd: 21000, LatStart: 12500, LatEnd: 12500},
		},
		"adaptive": {
			Flow: "stationary_eddy", Kernel: "RK45", Dt: 180, Runtime: 6 * 3600, OutputInterval: 3600,
			Release: ReleaseConfig{NumParticles: 10, LonStart: 12000, LonEnd: 21000, LatStart: 12500, LatEnd: 12500},
			RK45:    RK45Config{Tolerance: 1e-5, MinDt: 1e-3},
		},
	},
	"moving_eddy": {
		"transect": {
			Flow: "moving_eddy", Kernel: "RK4", Dt: 180, Runtime: 6 * 3600, OutputInterval: 3600,
			Release: ReleaseConfig{NumParticles: 10, LonStart: 12000, LonEnd: 21000, LatStart: 12500, LatEnd: 12500},
		},
	},
	"decaying_eddy": {
		"transect": {
			Flow: "decaying_eddy", Kernel: "RK4", Dt: 180, Runtime: 6 * 3600, OutputInterval: 3600,
			Release: ReleaseConfig{NumParticles: 10, LonStart: 12000, LonEnd: 21000, LatStart: 12500, LatEnd: 12500},
		},
	},
	"moving_eddies": {
		"pair": {
			Flow: "moving_eddies", Kernel: "RK4", Dt: 1800, Runtime: 7 * 86400, OutputInterval: 86400,
			Release: ReleaseConfig{NumParticles: 2, LonStart: 3.3, LonEnd: 3.3, LatStart: 46.0, LatEnd: 47.8},
			Recovery: "delete",
		},
	},
	"periodic": {
		"drift": {
			Flow: "periodic", Kernel: "RK4", Dt: 3600, Runtime: 86400, OutputInterval: 86400,
			Release: ReleaseConfig{NumParticles: 1, LonStart: 0.5, LonEnd: 0.5, LatStart: 0.5, LatEnd: 0.5},
			Halo:    HaloConfig{Zonal: true, Meridional: true},
		},
	},
}

func GetPreset(flow, preset string) *Config {
	flowPresets, ok := Presets[flow]
	if !ok {
		return nil
	}
	cfg, ok := flowPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(flow string) []string {
	flowPresets, ok := Presets[flow]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(flowPresets))
	for name := range flowPresets {
		names = append(names, name)
	}
	return names
}
