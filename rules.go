package osmfusion

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"
)

// TransferRule copies value of OSM key Source to lanelet attribute Target
type TransferRule struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`
}

// Rules describes which OSM keys are conflated and how
type Rules struct {
	HighwayKey  string                  `yaml:"highway_key"`
	LanesKey    string                  `yaml:"lanes_key"`
	ShoulderKey string                  `yaml:"shoulder_key"`
	Transfers   []TransferRule          `yaml:"transfers"`
	Classes     map[string]LaneletClass `yaml:"classes"`
}

// DefaultRules returns rules used when no rules file is provided
func DefaultRules() *Rules {
	return &Rules{
		HighwayKey:  "highway",
		LanesKey:    "lanes",
		ShoulderKey: "shoulder",
		Transfers: []TransferRule{
			{Source: "maxspeed", Target: "speed_limit"},
			{Source: "name", Target: "road_name"},
			{Source: "oneway", Target: "one_way"},
			{Source: "surface", Target: "road_surface"},
			{Source: "lane_markings", Target: "lane_markings"},
		},
		Classes: defaultLaneletClasses(),
	}
}

// LoadRules reads YAML rules file. Fields missing in the file are taken from DefaultRules
func LoadRules(fileName string) (*Rules, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, errors.Wrap(err, "Can't read rules file")
	}
	rules, err := parseRules(data)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't parse rules file '%s'", fileName)
	}
	return rules, nil
}

func parseRules(data []byte) (*Rules, error) {
	parsed := Rules{}
	err := yaml.Unmarshal(data, &parsed)
	if err != nil {
		return nil, err
	}
	rules := DefaultRules()
	if parsed.HighwayKey != "" {
		rules.HighwayKey = parsed.HighwayKey
	}
	if parsed.LanesKey != "" {
		rules.LanesKey = parsed.LanesKey
	}
	if parsed.ShoulderKey != "" {
		rules.ShoulderKey = parsed.ShoulderKey
	}
	if parsed.Transfers != nil {
		rules.Transfers = parsed.Transfers
	}
	for highway, class := range parsed.Classes {
		rules.Classes[highway] = class
	}
	return rules, rules.Validate()
}

// Validate checks that every key is set
func (rules *Rules) Validate() error {
	if rules.HighwayKey == "" || rules.LanesKey == "" || rules.ShoulderKey == "" {
		return fmt.Errorf("highway, lanes and shoulder keys must be set")
	}
	for i, rule := range rules.Transfers {
		if rule.Source == "" || rule.Target == "" {
			return fmt.Errorf("transfer rule %d: source and target must be set", i)
		}
	}
	return nil
}

// Keys returns OSM keys to detect changes for: highway key, transfer sources, lanes key and shoulder key
func (rules *Rules) Keys() []string {
	keys := []string{}
	seen := make(map[string]struct{})
	add := func(key string) {
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	add(rules.HighwayKey)
	for _, rule := range rules.Transfers {
		add(rule.Source)
	}
	add(rules.LanesKey)
	add(rules.ShoulderKey)
	return keys
}
