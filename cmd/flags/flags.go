// Package flags holds the state shared by all studentsct commands.
package flags

import (
	"fmt"
	"math/rand"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cpsolver/studentsct/pkg/sectioning/config"
)

type Globals struct {
	Verbose    bool
	Properties string
	Set        []string
	Seed       int64

	Logger *zap.Logger
}

func (g *Globals) AddFlags(fs *pflag.FlagSet) {
	fs.BoolVarP(&g.Verbose, "verbose", "v", false, "Enable verbose logging")
	fs.StringVarP(&g.Properties, "properties", "p", "", "YAML file with solver properties")
	fs.StringArrayVar(&g.Set, "set", nil, "Override a property, as key=value (repeatable)")
	fs.Int64Var(&g.Seed, "seed", 0, "Seed for candidate sampling; runs repeat exactly with Sectioning.Workers=1")
}

// Init builds the logger and seeds the sampler.
func (g *Globals) Init() error {
	cfg := zap.NewProductionConfig()
	if g.Verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	g.Logger = logger
	if g.Seed != 0 {
		rand.Seed(g.Seed) //nolint:staticcheck // SA1019: the sampler draws from the global source
	}
	return nil
}

func (g *Globals) Sync() {
	if g.Logger != nil {
		_ = g.Logger.Sync()
	}
}

// LoadProperties reads the properties file, if any, and applies the
// --set overrides on top.
func (g *Globals) LoadProperties() (*config.Properties, error) {
	p := config.NewProperties()
	if g.Properties != "" {
		var err error
		if p, err = config.Load(g.Properties); err != nil {
			return nil, err
		}
	}
	if err := p.SetAll(g.Set); err != nil {
		return nil, err
	}
	return p, nil
}
