// Package config loads the table storage core's tunable parameters: the
// per-table row-group capacity and a backend page size. Tables consume only
// the row-group capacity (table.NewFromConfig); the page size is loaded but
// not read by the table or storage packages, whose backend uses the fixed
// storage.PageSize. Nothing in the table storage core reads environment
// variables or files directly; it only ever sees the already-loaded
// TableConfig.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// TableConfig holds the tunables a table is constructed with. Defaults
// match the original engine's compiled-in constants.
type TableConfig struct {
	Storage struct {
		TuplesPerRowGroup uint32 `mapstructure:"tuples_per_row_group"`
		PageSize          int    `mapstructure:"page_size"`
	} `mapstructure:"storage"`
}

// DefaultTableConfig returns the built-in defaults, used when no config file
// is supplied.
func DefaultTableConfig() *TableConfig {
	cfg := &TableConfig{}
	cfg.Storage.TuplesPerRowGroup = 1000
	cfg.Storage.PageSize = 4096
	return cfg
}

// Load reads a YAML config file at path, falling back to built-in defaults
// for any field the file omits.
func Load(path string) (*TableConfig, error) {
	cfg := DefaultTableConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("storage.tuples_per_row_group", cfg.Storage.TuplesPerRowGroup)
	v.SetDefault("storage.page_size", cfg.Storage.PageSize)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	if cfg.Storage.TuplesPerRowGroup == 0 {
		return nil, fmt.Errorf("config: storage.tuples_per_row_group must be positive")
	}
	return cfg, nil
}
