package osmfusion

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Conflator runs conflation pass over the lanelet map
type Conflator struct {
	m         *Map
	geom      GeometryPort
	rules     *Rules
	logger    zerolog.Logger
	tolerance float64
}

func (c *Conflator) String() string {
	transfers := make([]string, 0, len(c.rules.Transfers))
	for _, rule := range c.rules.Transfers {
		transfers = append(transfers, rule.Source+"->"+rule.Target)
	}
	return fmt.Sprintf(`
Conflation parameters:
	highway_key: '%s'
	lanes_key: '%s'
	shoulder_key: '%s'
	transfers: '%s'
	split_tolerance: %f
	`,
		c.rules.HighwayKey,
		c.rules.LanesKey,
		c.rules.ShoulderKey,
		strings.Join(transfers, ","),
		c.tolerance,
	)
}

// NewConflator creates conflator for the given map
func NewConflator(m *Map, options ...func(*Conflator)) *Conflator {
	c := &Conflator{
		m:         m,
		geom:      PlanarGeometry{},
		rules:     DefaultRules(),
		logger:    zerolog.Nop(),
		tolerance: DefaultSplitTolerance,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

func WithGeometry(geom GeometryPort) func(*Conflator) {
	return func(c *Conflator) {
		c.geom = geom
	}
}

func WithRules(rules *Rules) func(*Conflator) {
	return func(c *Conflator) {
		c.rules = rules
	}
}

func WithLogger(logger zerolog.Logger) func(*Conflator) {
	return func(c *Conflator) {
		c.logger = logger
	}
}

// WithTolerance sets distance to snap split points to existing curve vertices
func WithTolerance(tolerance float64) func(*Conflator) {
	return func(c *Conflator) {
		c.tolerance = tolerance
	}
}

// Result is an outcome of conflation pass
type Result struct {
	// Map is a filtered copy of the conflated map without deleted lanelets
	Map *Map
	// Colors holds lane check class for every lanelet touched by matches
	Colors []ColorAssignment
	// Deleted holds lanelets considered as wrong ones
	Deleted []LaneletID
	// Diagnostics holds non-fatal issues (ambiguous pruning, unparsable values)
	Diagnostics []error
	// Splits is number of curves split during the pass
	Splits int
}

// Conflate transfers OSM attributes of matches to lanelets. Map and matches are mutated in place
func (c *Conflator) Conflate(matches []*Match) (*Result, error) {
	cache := NewSplitCache()
	splitter := NewSplitter(c.m, c.geom, cache, c.tolerance)
	validator := NewLaneValidator(c.m, c.geom, c.logger)
	keys := c.rules.Keys()
	for i, match := range matches {
		if len(match.Target) == 0 || len(match.Reference) == 0 {
			c.logger.Debug().Int("match", i).Msg("Empty polyline, skipping match")
			continue
		}
		err := c.conflateMatch(i, match, keys, splitter, validator)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't conflate match %d", i)
		}
	}
	res := &Result{
		Map:         FilterMap(c.m, validator.Deleted),
		Colors:      validator.Colors,
		Deleted:     validator.Deleted,
		Diagnostics: validator.Diagnostics,
		Splits:      cache.Len(),
	}
	c.logger.Info().
		Int("matches", len(matches)).
		Int("splits", res.Splits).
		Int("colored", len(res.Colors)).
		Int("deleted", len(res.Deleted)).
		Int("diagnostics", len(res.Diagnostics)).
		Msg("Conflation done")
	return res, nil
}

func (c *Conflator) conflateMatch(idx int, match *Match, keys []string, splitter *Splitter, validator *LaneValidator) error {
	changes := DetectTagChanges(match.Target, keys)
	toReferenceOrder(match, changes)
	byKey := make(map[string]TagChanges, len(changes))
	for _, tc := range changes {
		byKey[tc.Key] = tc
	}
	merged := MergePoints(changePoints(changes)...)
	c.logger.Debug().Int("match", idx).Int("change_points", len(merged)).Bool("same_direction", match.SameDirection()).Msg("Processing match")

	err := splitter.SplitLanelets(match, merged)
	if err != nil {
		return errors.Wrap(err, "Can't split lanelets")
	}

	highway := byKey[c.rules.HighwayKey]
	err = SetTypeLocation(c.m, match, segmentIndices(match, highway.Points, c.geom), highway.Values, c.rules.Classes)
	if err != nil {
		return errors.Wrap(err, "Can't set subtype and location")
	}
	for _, rule := range c.rules.Transfers {
		tc := byKey[rule.Source]
		err = TransferAttribute(c.m, match, rule.Target, segmentIndices(match, tc.Points, c.geom), tc.Values)
		if err != nil {
			return errors.Wrapf(err, "Can't transfer '%s' to '%s'", rule.Source, rule.Target)
		}
	}

	err = validator.Check(idx, match, byKey[c.rules.LanesKey], byKey[c.rules.ShoulderKey])
	if err != nil {
		return errors.Wrap(err, "Can't check lanes")
	}
	return nil
}
