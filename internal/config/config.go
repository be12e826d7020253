package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"liftlab/domain/experiment"
	"liftlab/internal/errors"
)

// Load reads analysis thresholds from an optional config file and LIFTLAB_*
// environment variables, layered over the documented defaults. The result
// is a plain value object: callers hand it to each component explicitly so
// no process-wide state survives the call.
func Load() (experiment.AnalysisConfig, error) {
	return LoadFrom("")
}

// LoadFrom loads configuration, optionally from an explicit file path
func LoadFrom(path string) (experiment.AnalysisConfig, error) {
	// Best effort: a local .env is a developer convenience, not a requirement
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("LIFTLAB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return experiment.AnalysisConfig{}, errors.Wrapf(err, "reading config file %s", path)
		}
	} else {
		v.SetConfigName("liftlab")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			// Missing file is fine; defaults plus env cover everything
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return experiment.AnalysisConfig{}, errors.Wrap(err, "reading config file")
			}
		}
	}

	var cfg experiment.AnalysisConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return experiment.AnalysisConfig{}, errors.Wrap(err, "unmarshaling analysis config")
	}
	if err := cfg.Validate(); err != nil {
		return experiment.AnalysisConfig{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := experiment.DefaultConfig()
	v.SetDefault("alpha", defaults.Alpha)
	v.SetDefault("power", defaults.Power)
	v.SetDefault("baseline_conversion", defaults.BaselineConversion)
	v.SetDefault("minimum_detectable_effect", defaults.MinimumDetectableEffect)
	v.SetDefault("expected_split", defaults.ExpectedSplit)
	v.SetDefault("balance_threshold", defaults.BalanceThreshold)
	v.SetDefault("srm_alpha", defaults.SRMAlpha)
	v.SetDefault("practical_significance_threshold", defaults.PracticalSignificanceThreshold)
	v.SetDefault("min_segment_n", defaults.MinSegmentN)
	v.SetDefault("expected_daily_traffic", defaults.ExpectedDailyTraffic)
}
