package cmd

import (
	"fmt"

	"github.com/nodegraph/modelresolver/internal/config"
	"github.com/nodegraph/modelresolver/internal/core"
)

// loadConfig loads the config, providing a user-friendly error. Validation
// happens later, in core.New.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// loadCore loads the config and wires a Core from it. Callers own the
// returned Core and must Close it.
func loadCore() (*core.Core, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	c, err := core.New(cfg, nil)
	if err != nil {
		return nil, fmt.Errorf("initializing resolver: %w", err)
	}
	return c, nil
}
