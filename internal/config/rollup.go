package config

import (
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// RollupConfig holds the business rules of the monthly rollup that operators
// tune without a deploy.
type RollupConfig struct {
	InternalCompanyTokens []string      `mapstructure:"internalCompanyTokens"`
	UnknownCompanyValues  []string      `mapstructure:"unknownCompanyValues"`
	RequiredDocumentKeys  []string      `mapstructure:"requiredDocumentKeys"`
	RegulatoryCategory    string        `mapstructure:"regulatoryCategory"`
	MedicalAptitudeValue  string        `mapstructure:"medicalAptitudeValue"`
	CacheTTL              time.Duration `mapstructure:"cacheTTL"`
}

func DefaultRollupConfig() RollupConfig {
	return RollupConfig{
		InternalCompanyTokens: []string{"sgtm"},
		UnknownCompanyValues:  []string{"unknown", "n/a"},
		RequiredDocumentKeys: []string{
			"contrat",
			"assurance",
			"cnss",
			"plan_hse",
			"liste_personnel",
			"aptitude_medicale",
		},
		RegulatoryCategory:   "sst",
		MedicalAptitudeValue: "apte",
		CacheTTL:             15 * time.Minute,
	}
}

type RollupConfigHolder struct {
	current atomic.Value // holds RollupConfig
}

// NewRollupConfigHolder loads rollup.yml from the standard locations and
// watches it for changes.
func NewRollupConfigHolder(log *zap.Logger) (*RollupConfigHolder, error) {
	return LoadRollupConfig(log, "/var/lib/hsekpi/config", "/etc/hsekpi", ".")
}

// NewStaticRollupConfigHolder returns a holder that never reloads.
func NewStaticRollupConfigHolder(cfg RollupConfig) *RollupConfigHolder {
	holder := &RollupConfigHolder{}
	holder.current.Store(normalizeRollupConfig(cfg))
	return holder
}

func LoadRollupConfig(log *zap.Logger, paths ...string) (*RollupConfigHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("config.rollup")

	v := viper.New()
	v.SetConfigName("rollup")
	v.SetConfigType("yml")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	v.SetEnvPrefix("HSEKPI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultRollupConfig()
	v.SetDefault("rollup.internalCompanyTokens", defaults.InternalCompanyTokens)
	v.SetDefault("rollup.unknownCompanyValues", defaults.UnknownCompanyValues)
	v.SetDefault("rollup.requiredDocumentKeys", defaults.RequiredDocumentKeys)
	v.SetDefault("rollup.regulatoryCategory", defaults.RegulatoryCategory)
	v.SetDefault("rollup.medicalAptitudeValue", defaults.MedicalAptitudeValue)
	v.SetDefault("rollup.cacheTTL", defaults.CacheTTL)

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileFound = false
	}

	var cfg RollupConfig
	if err := v.UnmarshalKey("rollup", &cfg); err != nil {
		return nil, err
	}
	cfg = normalizeRollupConfig(cfg)
	if err := validateRollupConfig(cfg); err != nil {
		return nil, err
	}

	holder := &RollupConfigHolder{}
	holder.current.Store(cfg)

	if !fileFound {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated RollupConfig
		if err := v.UnmarshalKey("rollup", &updated); err != nil {
			log.Warn("rollup config reload failed", zap.Error(err))
			return
		}
		updated = normalizeRollupConfig(updated)
		if err := validateRollupConfig(updated); err != nil {
			log.Warn("invalid rollup config ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("rollup config reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

func (h *RollupConfigHolder) Get() RollupConfig {
	if h == nil {
		return DefaultRollupConfig()
	}
	return h.current.Load().(RollupConfig)
}

func normalizeRollupConfig(cfg RollupConfig) RollupConfig {
	cfg.InternalCompanyTokens = normalizeTokens(cfg.InternalCompanyTokens)
	cfg.UnknownCompanyValues = normalizeTokens(cfg.UnknownCompanyValues)
	cfg.RequiredDocumentKeys = normalizeTokens(cfg.RequiredDocumentKeys)
	cfg.RegulatoryCategory = strings.ToLower(strings.TrimSpace(cfg.RegulatoryCategory))
	cfg.MedicalAptitudeValue = strings.ToLower(strings.TrimSpace(cfg.MedicalAptitudeValue))
	return cfg
}

func validateRollupConfig(cfg RollupConfig) error {
	if len(cfg.RequiredDocumentKeys) == 0 {
		return errors.New("rollup.requiredDocumentKeys cannot be empty")
	}
	if cfg.MedicalAptitudeValue == "" {
		return errors.New("rollup.medicalAptitudeValue cannot be empty")
	}
	if cfg.CacheTTL <= 0 {
		return errors.New("rollup.cacheTTL must be positive")
	}
	return nil
}

func normalizeTokens(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		value = strings.ToLower(strings.TrimSpace(value))
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
