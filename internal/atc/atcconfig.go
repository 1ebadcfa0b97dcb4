package atc

// Config carries the telemetry gate thresholds and the deterministic seed
// for radio and personality draws. Zero values are replaced by defaults,
// so a partial YAML file is fine.
type Config struct {
	TakeoffAGLFt        float64 `yaml:"takeoff_agl_ft"`
	CruiseWithinFt      float64 `yaml:"cruise_within_ft"`
	TODBaseNM           float64 `yaml:"tod_base_nm"`
	TODPerThousandFtNM  float64 `yaml:"tod_per_thousand_ft_nm"`
	TODFloorFt          float64 `yaml:"tod_floor_ft"`
	ApproachAdvisoryMSL float64 `yaml:"approach_advisory_msl_ft"`
	FinalMSLFt          float64 `yaml:"final_msl_ft"`
	LandingSpeedKt      float64 `yaml:"landing_speed_kt"`
	ParkSpeedKt         float64 `yaml:"park_speed_kt"`
	Seed                int64   `yaml:"seed"`
}

func DefaultConfig() Config {
	return Config{
		TakeoffAGLFt:        100,
		CruiseWithinFt:      1000,
		TODBaseNM:           10,
		TODPerThousandFtNM:  3,
		TODFloorFt:          3000,
		ApproachAdvisoryMSL: 10000,
		FinalMSLFt:          3000,
		LandingSpeedKt:      60,
		ParkSpeedKt:         2,
		Seed:                1,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TakeoffAGLFt == 0 {
		c.TakeoffAGLFt = d.TakeoffAGLFt
	}
	if c.CruiseWithinFt == 0 {
		c.CruiseWithinFt = d.CruiseWithinFt
	}
	if c.TODBaseNM == 0 {
		c.TODBaseNM = d.TODBaseNM
	}
	if c.TODPerThousandFtNM == 0 {
		c.TODPerThousandFtNM = d.TODPerThousandFtNM
	}
	if c.TODFloorFt == 0 {
		c.TODFloorFt = d.TODFloorFt
	}
	if c.ApproachAdvisoryMSL == 0 {
		c.ApproachAdvisoryMSL = d.ApproachAdvisoryMSL
	}
	if c.FinalMSLFt == 0 {
		c.FinalMSLFt = d.FinalMSLFt
	}
	if c.LandingSpeedKt == 0 {
		c.LandingSpeedKt = d.LandingSpeedKt
	}
	if c.ParkSpeedKt == 0 {
		c.ParkSpeedKt = d.ParkSpeedKt
	}
	if c.Seed == 0 {
		c.Seed = d.Seed
	}
	return c
}
