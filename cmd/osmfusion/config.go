package main

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	envPrefix = "OSMFUSION"
)

// Config holds conflation settings collected from flags, environment variables (OSMFUSION_*) and config file
type Config struct {
	MapFile      string
	MatchesFile  string
	OutFile      string
	ColorsFile   string
	GeoJSONFile  string
	RulesFile    string
	RoutingFile  string
	Geographic   bool
	Tolerance    float64
	Verbose      bool
	JSONLogs     bool
	AlignMethod  string
	AlignRefFile string
	AlignTgtFile string
	AlignSamples int
}

// loadConfig binds command flags to viper and reads optional config file
func loadConfig(cmd *cobra.Command) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	err := v.BindPFlags(cmd.Flags())
	if err != nil {
		return nil, errors.Wrap(err, "Can't bind flags")
	}
	if configFile := v.GetString("config"); configFile != "" {
		v.SetConfigFile(configFile)
		err = v.ReadInConfig()
		if err != nil {
			return nil, errors.Wrapf(err, "Can't read config file '%s'", configFile)
		}
	}
	cfg := &Config{
		MapFile:      v.GetString("map"),
		MatchesFile:  v.GetString("matches"),
		OutFile:      v.GetString("out"),
		ColorsFile:   v.GetString("colors"),
		GeoJSONFile:  v.GetString("geojson"),
		RulesFile:    v.GetString("rules"),
		RoutingFile:  v.GetString("routing"),
		Geographic:   v.GetBool("geographic"),
		Tolerance:    v.GetFloat64("tolerance"),
		Verbose:      v.GetBool("verbose"),
		JSONLogs:     v.GetBool("json-logs"),
		AlignMethod:  v.GetString("align-method"),
		AlignRefFile: v.GetString("align-reference"),
		AlignTgtFile: v.GetString("align-target"),
		AlignSamples: v.GetInt("align-samples"),
	}
	return cfg, cfg.validate()
}

func (cfg *Config) validate() error {
	if cfg.MapFile == "" {
		return errors.New("lanelet map file must be provided (--map)")
	}
	if cfg.MatchesFile == "" {
		return errors.New("matches file must be provided (--matches)")
	}
	if cfg.OutFile == "" {
		return errors.New("output file must be provided (--out)")
	}
	if cfg.AlignMethod != "" && (cfg.AlignRefFile == "" || cfg.AlignTgtFile == "") {
		return errors.New("alignment requires both --align-reference and --align-target")
	}
	return nil
}
