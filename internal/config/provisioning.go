package config

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	minBcryptCost = 10
	maxBcryptCost = 14
)

// ProvisioningConfig carries the tunables of the registration flow.
type ProvisioningConfig struct {
	DefaultStyle   string          `mapstructure:"defaultStyle"`
	DefaultCountry string          `mapstructure:"defaultCountry"`
	AdminRole      string          `mapstructure:"adminRole"`
	BcryptCost     int             `mapstructure:"bcryptCost"`
	Timeout        time.Duration   `mapstructure:"timeout"`
	RateLimit      RateLimitConfig `mapstructure:"rateLimit"`
}

// RateLimitConfig bounds registration attempts per client within a fixed window.
type RateLimitConfig struct {
	Window time.Duration `mapstructure:"window"`
	Max    int           `mapstructure:"max"`
}

func DefaultProvisioningConfig() ProvisioningConfig {
	return ProvisioningConfig{
		DefaultStyle:   "Casual",
		DefaultCountry: "España",
		AdminRole:      "admin",
		BcryptCost:     12,
		Timeout:        10 * time.Second,
		RateLimit: RateLimitConfig{
			Window: 15 * time.Minute,
			Max:    100,
		},
	}
}

type ProvisioningConfigHolder struct {
	current atomic.Value // holds ProvisioningConfig
}

// NewStaticProvisioningConfig returns a holder that never reloads.
func NewStaticProvisioningConfig(cfg ProvisioningConfig) *ProvisioningConfigHolder {
	holder := &ProvisioningConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewProvisioningConfigHolder(log *zap.Logger) (*ProvisioningConfigHolder, error) {
	log = log.Named("config.provisioning")
	v := viper.New()

	v.SetConfigName("provisioning")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/atelier/config")
	v.AddConfigPath("/etc/atelier")
	v.AddConfigPath(".")

	v.SetEnvPrefix("ATELIER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setProvisioningDefaults(v)

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		fileFound = false
	}

	cfg, err := decodeProvisioning(v)
	if err != nil {
		return nil, err
	}
	if err := validateProvisioningConfig(cfg); err != nil {
		return nil, err
	}

	holder := NewStaticProvisioningConfig(cfg)
	if !fileFound {
		log.Info("provisioning config file not found, using defaults")
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		holder.reload(v, log, e.Name)
	})

	return holder, nil
}

func setProvisioningDefaults(v *viper.Viper) {
	defaults := DefaultProvisioningConfig()
	v.SetDefault("provisioning.defaultStyle", defaults.DefaultStyle)
	v.SetDefault("provisioning.defaultCountry", defaults.DefaultCountry)
	v.SetDefault("provisioning.adminRole", defaults.AdminRole)
	v.SetDefault("provisioning.bcryptCost", defaults.BcryptCost)
	v.SetDefault("provisioning.timeout", defaults.Timeout)
	v.SetDefault("provisioning.rateLimit.window", defaults.RateLimit.Window)
	v.SetDefault("provisioning.rateLimit.max", defaults.RateLimit.Max)
}

// reload swaps in the file's current contents. Invalid files keep the
// previous config.
func (h *ProvisioningConfigHolder) reload(v *viper.Viper, log *zap.Logger, file string) {
	updated, err := decodeProvisioning(v)
	if err != nil {
		log.Warn("reload failed", zap.Error(err))
		return
	}
	if err := validateProvisioningConfig(updated); err != nil {
		log.Warn("invalid config ignored", zap.Error(err))
		return
	}
	h.current.Store(updated)
	log.Info("reloaded", zap.String("file", file))
}

// decodeProvisioning unmarshals the whole tree. UnmarshalKey on a nested key
// drops the defaults of sibling keys the file leaves out.
func decodeProvisioning(v *viper.Viper) (ProvisioningConfig, error) {
	var file struct {
		Provisioning ProvisioningConfig `mapstructure:"provisioning"`
	}
	if err := v.Unmarshal(&file); err != nil {
		return ProvisioningConfig{}, err
	}
	return file.Provisioning, nil
}

func (h *ProvisioningConfigHolder) Get() ProvisioningConfig {
	return h.current.Load().(ProvisioningConfig)
}

func validateProvisioningConfig(cfg ProvisioningConfig) error {
	if strings.TrimSpace(cfg.DefaultStyle) == "" {
		return errors.New("provisioning.defaultStyle cannot be empty")
	}
	if strings.TrimSpace(cfg.DefaultCountry) == "" {
		return errors.New("provisioning.defaultCountry cannot be empty")
	}
	if strings.TrimSpace(cfg.AdminRole) == "" {
		return errors.New("provisioning.adminRole cannot be empty")
	}
	if cfg.BcryptCost < minBcryptCost || cfg.BcryptCost > maxBcryptCost {
		return fmt.Errorf("provisioning.bcryptCost must be between %d and %d", minBcryptCost, maxBcryptCost)
	}
	if cfg.Timeout <= 0 {
		return errors.New("provisioning.timeout must be positive")
	}
	if cfg.RateLimit.Window <= 0 || cfg.RateLimit.Max <= 0 {
		return errors.New("provisioning.rateLimit window and max must be positive")
	}
	return nil
}
