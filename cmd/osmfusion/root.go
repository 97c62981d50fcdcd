package main

import (
	"os"
	"time"

	"github.com/LdDl/osmfusion"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "osmfusion",
		Short:         "Conflation of OpenStreetMap attributes onto lanelet maps",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newConflateCommand())
	return root
}

func newConflateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "conflate",
		Short: "Transfer OSM tags to lanelets and check lanes",
		Long: `Reads lanelet map and matches between map polylines and OSM ways,
splits lanelets where OSM tags change, transfers tags and removes lanelets
which do not agree with OSM number of lanes.

Environment Variables:
  OSMFUSION_<FLAG>    - Every flag could be set by environment variable, e.g. OSMFUSION_ALIGN_METHOD`,
		Example: `  osmfusion conflate --map map.osm --matches matches.geojson --out out.osm
  osmfusion conflate --map map.osm --matches matches.geojson --out out.osm --colors colors.csv --geojson colors.geojson
  osmfusion conflate --map map.osm --matches matches.geojson --out out.osm --align-method Umeyama --align-reference ref.geojson --align-target gps.geojson`,
		RunE: runConflate,
	}
	cmd.Flags().String("config", "", "YAML config file with flag values")
	cmd.Flags().String("map", "", "Lanelet map file (.osm or .osm.pbf)")
	cmd.Flags().String("matches", "", "GeoJSON file with matches. Reference segments are in the frame of the input map")
	cmd.Flags().String("out", "", "Output lanelet map file (.osm)")
	cmd.Flags().String("colors", "", "Optional CSV file for lane check result")
	cmd.Flags().String("geojson", "", "Optional GeoJSON file for lane check result")
	cmd.Flags().String("rules", "", "Optional YAML file with conflation rules")
	cmd.Flags().String("routing", "", "Optional CSV file for routing graph of the conflated map")
	cmd.Flags().Bool("geographic", true, "Treat GeoJSON coordinates as WGS84 longitude/latitude")
	cmd.Flags().Float64("tolerance", osmfusion.DefaultSplitTolerance, "Distance to snap split points to existing vertices")
	cmd.Flags().String("align-method", "", "Align map before conflation: ICP or Umeyama")
	cmd.Flags().String("align-reference", "", "GeoJSON polyline of the map used for alignment")
	cmd.Flags().String("align-target", "", "GeoJSON polyline (e.g. GPS trajectory) to align the map to")
	cmd.Flags().Int("align-samples", osmfusion.DefaultAlignSamples, "Number of interpolated points for Umeyama method")
	cmd.Flags().BoolP("verbose", "v", false, "Verbose output")
	cmd.Flags().Bool("json-logs", false, "Write logs as JSON")
	return cmd
}

func runConflate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	var logger zerolog.Logger
	if cfg.JSONLogs {
		logger = osmfusion.NewJSONLogger(os.Stderr, cfg.Verbose)
	} else {
		logger = osmfusion.NewLogger(os.Stderr, cfg.Verbose)
	}

	rules := osmfusion.DefaultRules()
	if cfg.RulesFile != "" {
		rules, err = osmfusion.LoadRules(cfg.RulesFile)
		if err != nil {
			return err
		}
	}

	st := time.Now()
	m, err := osmfusion.ReadLaneletMap(cfg.MapFile)
	if err != nil {
		return err
	}
	logger.Info().Str("file", cfg.MapFile).Int("lanelets", len(m.Lanelets())).Dur("elapsed", time.Since(st)).Msg("Lanelet map loaded")

	var alignment *osmfusion.Alignment
	if cfg.AlignMethod != "" {
		alignment, err = estimateAlignment(m, cfg, logger)
		if err != nil {
			return err
		}
		err = osmfusion.TransformMap(m, alignment.Transform)
		if err != nil {
			return errors.Wrap(err, "Can't transform map")
		}
	}
	osmfusion.RemoveGeneratedTags(m)

	// Reference segments of matches are digitized along the source map, so they follow it onto the target
	matches, err := osmfusion.ReadMatches(cfg.MatchesFile, m, cfg.Geographic)
	if err != nil {
		return err
	}
	if alignment != nil {
		err = osmfusion.TransformMatches(matches, alignment.Transform)
		if err != nil {
			return errors.Wrap(err, "Can't transform matches")
		}
	}
	logger.Info().Str("file", cfg.MatchesFile).Int("matches", len(matches)).Msg("Matches loaded")

	conflator := osmfusion.NewConflator(m,
		osmfusion.WithRules(rules),
		osmfusion.WithLogger(logger),
		osmfusion.WithTolerance(cfg.Tolerance),
	)
	logger.Debug().Msg(conflator.String())
	st = time.Now()
	res, err := conflator.Conflate(matches)
	if err != nil {
		return err
	}
	logger.Info().Dur("elapsed", time.Since(st)).Msg("Conflation finished")
	for _, diag := range res.Diagnostics {
		logger.Warn().Err(diag).Msg("Diagnostic")
	}

	err = osmfusion.WriteLaneletMap(res.Map, cfg.OutFile)
	if err != nil {
		return err
	}
	logger.Info().Str("file", cfg.OutFile).Int("lanelets", len(res.Map.Lanelets())).Msg("Conflated map written")

	if cfg.ColorsFile != "" {
		err = osmfusion.ExportColorsCSV(m, res, cfg.ColorsFile)
		if err != nil {
			return errors.Wrap(err, "Can't export colors")
		}
	}
	if cfg.GeoJSONFile != "" {
		err = osmfusion.ExportGeoJSON(m, res, cfg.GeoJSONFile)
		if err != nil {
			return errors.Wrap(err, "Can't export GeoJSON")
		}
	}
	if cfg.RoutingFile != "" {
		st = time.Now()
		rg, err := osmfusion.BuildRoutingGraph(res.Map, osmfusion.PlanarGeometry{}, true)
		if err != nil {
			return err
		}
		logger.Info().Int("edges", rg.Edges).Int("isolated", len(rg.Isolated)).Dur("elapsed", time.Since(st)).Msg("Routing graph prepared")
		err = rg.ExportToCSV(res.Map, cfg.RoutingFile)
		if err != nil {
			return errors.Wrap(err, "Can't export routing graph")
		}
	}
	return nil
}

func estimateAlignment(m *osmfusion.Map, cfg *Config, logger zerolog.Logger) (*osmfusion.Alignment, error) {
	reference, err := osmfusion.ReadPolyline(cfg.AlignRefFile, m, cfg.Geographic)
	if err != nil {
		return nil, errors.Wrap(err, "Can't read alignment reference")
	}
	target, err := osmfusion.ReadPolyline(cfg.AlignTgtFile, m, cfg.Geographic)
	if err != nil {
		return nil, errors.Wrap(err, "Can't read alignment target")
	}
	aligner := osmfusion.NewAligner(
		osmfusion.WithAlignLogger(logger),
		osmfusion.WithSamples(cfg.AlignSamples),
	)
	// Transformation of target onto map polyline: its inverse moves the map onto target
	alignment, err := aligner.Align(osmfusion.AlignMethod(cfg.AlignMethod), target, reference)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("method", string(alignment.Method)).Float64("scale", alignment.Scale).Str("transform", alignment.Transform.String()).Msg("Alignment estimated")
	return alignment, nil
}
