package cli

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rshade/openfootprint/internal/carbon"
	"github.com/rshade/openfootprint/internal/logging"
)

// Outbound CarbonKit request budget.
const (
	carbonKitRatePerSecond = 2
	carbonKitBurst         = 1
)

// footprintResult is the output of every footprint subcommand.
type footprintResult struct {
	Source      carbon.Source            `json:"source"`
	KgCO2e      float64                  `json:"kg_co2e"`
	Text        string                   `json:"text"`
	Equivalency carbon.EquivalencyOutput `json:"equivalency"`
}

func newFootprintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "footprint",
		Short: "Compute the carbon footprint of travel, stays and meals",
		Long: `Computes footprints in kg CO2e. Hotel stays and meals use fixed factors;
flights are calculated by the CarbonKit great circle methodology configured
under provider.*.`,
	}
	cmd.AddCommand(newFootprintHotelCmd(), newFootprintMealCmd(), newFootprintFlightCmd(), newFootprintConvertCmd())
	return cmd
}

// footprintFlags are shared by every footprint subcommand.
type footprintFlags struct {
	weight float64
	output string
}

func (f *footprintFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.weight, "weight", 1, "share of the footprint to attribute, e.g. 0.5 for a shared room")
	addOutputFlag(cmd, &f.output)
}

func newFootprintHotelCmd() *cobra.Command {
	var (
		flags  footprintFlags
		nights float64
	)
	cmd := &cobra.Command{
		Use:     "hotel",
		Short:   "Footprint of a hotel stay",
		Example: `  openfootprint footprint hotel --nights 3`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			src := carbon.Source{Kind: carbon.SourceHotel, Nights: nights, Weight: flags.weight}
			return runFootprint(cmd, carbon.NewCalculator(nil), src, flags.output)
		},
	}
	cmd.Flags().Float64Var(&nights, "nights", 1, "number of room nights")
	flags.register(cmd)
	return cmd
}

func newFootprintMealCmd() *cobra.Command {
	var (
		flags footprintFlags
		kg    float64
	)
	cmd := &cobra.Command{
		Use:     "meal",
		Short:   "Footprint of a meal by food mass",
		Example: `  openfootprint footprint meal --kg 0.4`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			src := carbon.Source{Kind: carbon.SourceMeal, MassKg: kg, Weight: flags.weight}
			return runFootprint(cmd, carbon.NewCalculator(nil), src, flags.output)
		},
	}
	cmd.Flags().Float64Var(&kg, "kg", 0, "food mass in kilograms")
	_ = cmd.MarkFlagRequired("kg")
	flags.register(cmd)
	return cmd
}

func newFootprintFlightCmd() *cobra.Command {
	var (
		flags    footprintFlags
		from, to string
		endpoint string
	)
	cmd := &cobra.Command{
		Use:   "flight",
		Short: "Footprint of a one-way flight for one passenger",
		Example: `  # Paris to New York
  openfootprint footprint flight --from 48.8566,2.3522 --to 40.7128,-74.0060`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			origin, err := parseCoordinates(from)
			if err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			dest, err := parseCoordinates(to)
			if err != nil {
				return fmt.Errorf("--to: %w", err)
			}
			provider := newFlightProvider(cmd, endpoint)
			src := carbon.Source{Kind: carbon.SourceFlight, From: origin, To: dest, Weight: flags.weight}
			return runFootprint(cmd, carbon.NewCalculator(provider), src, flags.output)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "origin as latitude,longitude")
	cmd.Flags().StringVar(&to, "to", "", "destination as latitude,longitude")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "CarbonKit calculation URL (overrides provider.carbonkit_url)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	flags.register(cmd)
	return cmd
}

func newFootprintConvertCmd() *cobra.Command {
	var (
		flags footprintFlags
		value float64
		unit  string
	)
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert an emission amount to kg CO2e",
		Long: `Normalizes an amount in g, kg, t or lb of CO2e, CO2, CH4 or N2O to kg CO2e.
Methane and nitrous oxide are weighted by their global warming potential.`,
		Example: `  openfootprint footprint convert --value 12 --unit "kg CH4"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			kg, err := carbon.NormalizeToKgCO2e(value, unit)
			if err != nil {
				return err
			}
			src := carbon.Source{Kind: carbon.SourceCO2e, KgCO2e: kg, Weight: flags.weight}
			return runFootprint(cmd, carbon.NewCalculator(nil), src, flags.output)
		},
	}
	cmd.Flags().Float64Var(&value, "value", 0, "emitted amount")
	cmd.Flags().StringVar(&unit, "unit", "kg CO2e", "unit of the amount")
	_ = cmd.MarkFlagRequired("value")
	flags.register(cmd)
	return cmd
}

// newFlightProvider builds the CarbonKit client from the provider config,
// caching responses in the file cache when it is enabled.
func newFlightProvider(cmd *cobra.Command, endpoint string) *carbon.CarbonKit {
	cfg := effectiveConfig(cmd)
	log := logging.FromContext(cmd.Context())
	if endpoint == "" {
		endpoint = cfg.Provider.CarbonKitURL
	}

	opts := []carbon.CarbonKitOption{
		carbon.WithHTTPClient(&http.Client{Timeout: cfg.Provider.Timeout}),
		carbon.WithRateLimit(carbonKitRatePerSecond, carbonKitBurst),
		carbon.WithLogger(logging.ComponentLogger(*log, "carbonkit")),
	}
	if responses, err := openCache(cfg); err == nil {
		opts = append(opts, carbon.WithResponseCache(responses))
	} else {
		log.Debug().Err(err).Msg("carbonkit responses are not cached")
	}
	return carbon.NewCarbonKit(endpoint, cfg.Provider.Username, cfg.Provider.Password, opts...)
}

func runFootprint(cmd *cobra.Command, calc *carbon.Calculator, src carbon.Source, output string) error {
	format, err := resolveOutputFormat(output)
	if err != nil {
		return err
	}
	kg, err := calc.Compute(cmd.Context(), src)
	if err != nil {
		return err
	}
	res := footprintResult{Source: src, KgCO2e: kg, Text: carbon.FormatKg(kg)}
	if eq, eqErr := carbon.Equivalencies(kg); eqErr == nil {
		res.Equivalency = eq
	} else {
		res.Equivalency = carbon.EquivalencyOutput{IsEmpty: true}
	}

	switch format {
	case outputJSON:
		return writeJSON(cmd.OutOrStdout(), res)
	case outputNDJSON:
		return writeNDJSON(cmd.OutOrStdout(), []footprintResult{res})
	}
	cmd.Printf("%s footprint: %s\n", src.Kind, res.Text)
	if !res.Equivalency.IsEmpty && res.Equivalency.DisplayText != "" {
		cmd.Println(res.Equivalency.DisplayText)
	}
	return nil
}

// parseCoordinates reads "lat,lng" in decimal degrees.
func parseCoordinates(s string) (carbon.Coordinates, error) {
	lat, lng, ok := strings.Cut(s, ",")
	if !ok {
		return carbon.Coordinates{}, fmt.Errorf("%q is not latitude,longitude", s)
	}
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil || la < -90 || la > 90 {
		return carbon.Coordinates{}, fmt.Errorf("latitude %q must be a number between -90 and 90", lat)
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if err != nil || lo < -180 || lo > 180 {
		return carbon.Coordinates{}, fmt.Errorf("longitude %q must be a number between -180 and 180", lng)
	}
	return carbon.Coordinates{Latitude: la, Longitude: lo}, nil
}
