package main

import (
	"log/slog"
	"strings"
	"time"

	"github.com/go-opt/relaves"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Solver backends.
const (
	backendBnb   = "bnb"
	backendCbc   = "cbc"
	backendCplex = "cplex"
	backendGpx   = "gpx"
)

// Literal parameter sets used when no parameter file is given or it cannot
// be read.
const (
	fallbackReales = "reales"
	fallbackPrueba = "prueba"
)

// Config holds the settings of a run.
type Config struct {
	ParamsFile string
	Fallback   string

	OutputFile   string
	IncludeZeros bool
	ZeroTol      float64
	MpsFile      string

	Backend    string
	SolverPath string
	TimeLimit  time.Duration
	Gap        float64
	MaxNodes   int

	Options relaves.Options

	LogLevel slog.Level
	NoColor  bool
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("relavesrun", pflag.ContinueOnError)

	fs.String("config", "", "optional configuration file (yaml, json or toml)")

	fs.String("params.file", "parametros_reales.xlsx", "parameter workbook, or a .yaml/.json parameter file")
	fs.String("params.fallback", fallbackReales, "literal set used when the parameter file is absent or unreadable: reales|prueba")

	fs.String("output.file", "solution.xlsx", "solution workbook, empty to skip export")
	fs.Bool("output.include_zeros", true, "write zero values to the solution grid")
	fs.Float64("output.zero_tol", 1e-12, "magnitude below which a value is zero")
	fs.String("output.mps", "", "write the model to this MPS file before solving")

	fs.String("solver.backend", backendCbc, "solver: bnb|cbc|cplex|gpx")
	fs.String("solver.path", "", "solver executable for cbc and cplex, default from PATH")
	fs.Duration("solver.time_limit", 10*time.Minute, "time limit, 0 for none")
	fs.Float64("solver.gap", 0, "relative optimality gap at which to stop")
	fs.Int("solver.max_nodes", 0, "node limit of the bnb backend, 0 for its default")

	fs.String("model.external_water", "residual", "external water: residual|gated")
	fs.String("model.emissions", "daily", "emissions excess: daily|annual")
	fs.String("model.big_m", "product", "big-M of the demand linkage: product|global")
	fs.Bool("model.pump_cap", true, "cap pumping by the water in the pond")
	fs.Bool("model.annual_link", false, "add the annual emissions link row")

	fs.String("log.level", "info", "log level: debug|info|warn|error")
	fs.Bool("log.no_color", false, "disable colored log output")

	return fs
}

// loadConfig reads the settings from args, RELAVES_* environment variables
// and the optional configuration file, in that order of precedence.
// In case of failure, function returns an error.
func loadConfig(args []string) (*Config, error) {
	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, errors.Wrap(err, "failed to parse flags")
	}

	v := viper.New()
	v.SetEnvPrefix("RELAVES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, errors.Wrap(err, "failed to bind flags")
	}

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read configuration file %s", file)
		}
	}

	cfg := &Config{
		ParamsFile:   v.GetString("params.file"),
		Fallback:     strings.ToLower(v.GetString("params.fallback")),
		OutputFile:   v.GetString("output.file"),
		IncludeZeros: v.GetBool("output.include_zeros"),
		ZeroTol:      v.GetFloat64("output.zero_tol"),
		MpsFile:      v.GetString("output.mps"),
		Backend:      strings.ToLower(v.GetString("solver.backend")),
		SolverPath:   v.GetString("solver.path"),
		TimeLimit:    v.GetDuration("solver.time_limit"),
		Gap:          v.GetFloat64("solver.gap"),
		MaxNodes:     v.GetInt("solver.max_nodes"),
		NoColor:      v.GetBool("log.no_color"),
	}

	var err error
	opts := relaves.DefaultOptions()
	if opts.ExternalWater, err = relaves.ParseWaterMode(v.GetString("model.external_water")); err != nil {
		return nil, err
	}
	if opts.Emissions, err = relaves.ParseEmissionsMode(v.GetString("model.emissions")); err != nil {
		return nil, err
	}
	if opts.BigM, err = relaves.ParseBigMMode(v.GetString("model.big_m")); err != nil {
		return nil, err
	}
	opts.PumpCap = v.GetBool("model.pump_cap")
	opts.AnnualEmissionsLink = v.GetBool("model.annual_link")
	cfg.Options = opts

	if err = cfg.LogLevel.UnmarshalText([]byte(v.GetString("log.level"))); err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", v.GetString("log.level"))
	}

	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that the flag types do not.
// In case of failure, function returns an error.
func (c *Config) Validate() error {
	switch c.Fallback {
	case fallbackReales, fallbackPrueba:
	default:
		return errors.Errorf("unknown params.fallback %q, want %s or %s", c.Fallback, fallbackReales, fallbackPrueba)
	}
	switch c.Backend {
	case backendBnb, backendCbc, backendCplex, backendGpx:
	default:
		return errors.Errorf("unknown solver.backend %q", c.Backend)
	}
	if c.TimeLimit < 0 {
		return errors.Errorf("solver.time_limit %s is negative", c.TimeLimit)
	}
	if c.Gap < 0 {
		return errors.Errorf("solver.gap %g is negative", c.Gap)
	}
	if c.MaxNodes < 0 {
		return errors.Errorf("solver.max_nodes %d is negative", c.MaxNodes)
	}
	if c.ZeroTol < 0 {
		return errors.Errorf("output.zero_tol %g is negative", c.ZeroTol)
	}
	return nil
}
