package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/leadfunnel/internal/funnel"
	"github.com/mesh-intelligence/leadfunnel/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	cfgKeyBackend       = "backend"
	cfgKeyDataDir       = "data_dir"
	cfgKeySyncStrategy  = "sync_strategy"
	cfgKeyBatchSize     = "batch_size"
	cfgKeyBatchInterval = "batch_interval"
	cfgKeyOrigin        = "origin"
	cfgKeyBrand         = "brand"
	cfgKeyCountry       = "country"
	cfgKeyRegion        = "region"
	cfgKeyCity          = "city"
	cfgKeyIPAddress     = "ip_address"
	cfgKeyUserAgent     = "user_agent"
)

// settings is the resolved contents of config.yaml.
type settings struct {
	Backend       string
	DataDir       string
	SyncStrategy  string
	BatchSize     int
	BatchInterval int
	Origin        string
	Brand         string
	Location      types.Location
	IPAddress     string
	UserAgent     string
}

// configFile is the structure init writes to config.yaml.
type configFile struct {
	Backend      string `yaml:"backend"`
	DataDir      string `yaml:"data_dir,omitempty"`
	SyncStrategy string `yaml:"sync_strategy"`
	Origin       string `yaml:"origin"`
	Brand        string `yaml:"brand"`
	Country      string `yaml:"country"`
	Region       string `yaml:"region"`
	City         string `yaml:"city"`
}

// loadSettings reads config.yaml from configDir with Viper. A missing file
// yields the defaults. Origin, brand and location can also come from
// FUNNEL_ORIGIN, FUNNEL_BRAND, FUNNEL_COUNTRY, FUNNEL_REGION, FUNNEL_CITY.
func loadSettings(configDir string) (settings, error) {
	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendSQLite)
	v.SetDefault(cfgKeySyncStrategy, types.SyncImmediate)
	v.SetDefault(cfgKeyOrigin, funnel.DefaultOrigin)
	v.SetDefault(cfgKeyBrand, funnel.DefaultBrand)
	v.SetDefault(cfgKeyCountry, funnel.DefaultLocation.Country)
	v.SetDefault(cfgKeyRegion, funnel.DefaultLocation.Region)
	v.SetDefault(cfgKeyCity, funnel.DefaultLocation.City)
	v.SetDefault(cfgKeyIPAddress, funnel.DefaultIPAddress)
	v.SetDefault(cfgKeyUserAgent, funnel.DefaultUserAgent)

	v.SetEnvPrefix("FUNNEL")
	for _, key := range []string{cfgKeyOrigin, cfgKeyBrand, cfgKeyCountry, cfgKeyRegion, cfgKeyCity} {
		if err := v.BindEnv(key); err != nil {
			return settings{}, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return settings{}, fmt.Errorf("read config: %w", err)
		}
	}

	return settings{
		Backend:       v.GetString(cfgKeyBackend),
		DataDir:       v.GetString(cfgKeyDataDir),
		SyncStrategy:  v.GetString(cfgKeySyncStrategy),
		BatchSize:     v.GetInt(cfgKeyBatchSize),
		BatchInterval: v.GetInt(cfgKeyBatchInterval),
		Origin:        v.GetString(cfgKeyOrigin),
		Brand:         v.GetString(cfgKeyBrand),
		Location: types.Location{
			Country: v.GetString(cfgKeyCountry),
			Region:  v.GetString(cfgKeyRegion),
			City:    v.GetString(cfgKeyCity),
		},
		IPAddress: v.GetString(cfgKeyIPAddress),
		UserAgent: v.GetString(cfgKeyUserAgent),
	}, nil
}

// storeConfig returns the backend configuration for dataDir.
func (s settings) storeConfig(dataDir string) types.Config {
	return types.Config{
		Backend:       s.Backend,
		DataDir:       dataDir,
		SyncStrategy:  s.SyncStrategy,
		BatchSize:     s.BatchSize,
		BatchInterval: s.BatchInterval,
	}
}

// writeConfigIfMissing creates config.yaml with default values. An existing
// file is left alone.
func writeConfigIfMissing(configDir, dataDir string) (bool, error) {
	path := filepath.Join(configDir, configFileExt)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	cfg := configFile{
		Backend:      types.BackendSQLite,
		DataDir:      dataDir,
		SyncStrategy: types.SyncImmediate,
		Origin:       funnel.DefaultOrigin,
		Brand:        funnel.DefaultBrand,
		Country:      funnel.DefaultLocation.Country,
		Region:       funnel.DefaultLocation.Region,
		City:         funnel.DefaultLocation.City,
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}

	header := []byte("# funnel configuration\n")
	if err := os.WriteFile(path, append(header, data...), 0o644); err != nil {
		return false, err
	}
	return true, nil
}
