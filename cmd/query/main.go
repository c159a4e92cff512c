// Command query runs one climate query from the terminal and prints the
// table, summaries, forecasts and insight.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/rs/zerolog"

	"github.com/climatelens/climatelens/internal/chart"
	"github.com/climatelens/climatelens/internal/climate"
	"github.com/climatelens/climatelens/internal/climate/power"
	"github.com/climatelens/climatelens/internal/config"
	"github.com/climatelens/climatelens/internal/dashboard"
	"github.com/climatelens/climatelens/internal/forecast"
	"github.com/climatelens/climatelens/internal/narrator"
	"github.com/climatelens/climatelens/internal/narrator/gemini"
	"github.com/climatelens/climatelens/internal/provider/resilience"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().
		Timestamp().
		Logger()

	if err := run(os.Args[1:], os.Stdout, log); err != nil {
		log.Error().Err(err).Msg("query failed")
		os.Exit(1)
	}
}

type options struct {
	lat, lon   float64
	start, end string
	params     string
	resolution string
	strategy   string
	horizon    int
	narrate    bool
	asJSON     bool
	chartPath  string
	verbose    bool
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	fs.Float64Var(&o.lat, "lat", 28.6, "latitude")
	fs.Float64Var(&o.lon, "lon", 77.2, "longitude")
	fs.StringVar(&o.start, "start", "", "first period, YYYYMMDD or YYYYMM (required)")
	fs.StringVar(&o.end, "end", "", "last period, YYYYMMDD or YYYYMM (required)")
	fs.StringVar(&o.params, "params", "", "comma separated parameter codes (default: catalog defaults)")
	fs.StringVar(&o.resolution, "resolution", string(climate.ResolutionDaily), "daily or monthly")
	fs.StringVar(&o.strategy, "strategy", string(forecast.KindTrend), "forecast strategy: trend or smoothing")
	fs.IntVar(&o.horizon, "horizon", 0, "forecast periods (0 uses the strategy default)")
	fs.BoolVar(&o.narrate, "narrate", false, "ask for a written insight")
	fs.BoolVar(&o.asJSON, "json", false, "print the report as JSON")
	fs.StringVar(&o.chartPath, "chart", "", "write a PNG line chart to this path")
	fs.BoolVar(&o.verbose, "v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.start == "" || o.end == "" {
		return o, fmt.Errorf("-start and -end are required")
	}
	return o, nil
}

func run(args []string, out io.Writer, log zerolog.Logger) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}
	if !opts.verbose {
		log = log.Level(zerolog.InfoLevel)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	catalog, err := cfg.Catalog()
	if err != nil {
		return err
	}

	httpCfg := resilience.DefaultClientConfig(power.ProviderName)
	httpCfg.Timeout = cfg.PowerTimeout
	httpCfg.Logger = log
	fetcher := power.NewClient(power.ClientConfig{
		BaseURL:    cfg.PowerBaseURL,
		HTTPClient: resilience.NewClient(httpCfg),
		Logger:     log,
	})

	var generator narrator.TextGenerator
	if opts.narrate && cfg.GeminiAPIKey != "" {
		generator = gemini.NewClient(gemini.ClientConfig{
			APIKey:  cfg.GeminiAPIKey,
			BaseURL: cfg.GeminiBaseURL,
			Model:   cfg.GeminiModel,
			Logger:  log,
		})
	}

	service := dashboard.NewService(dashboard.Config{
		Fetcher:   fetcher,
		Narrator:  narrator.New(narrator.Config{Generator: generator, Catalog: catalog, Logger: log}),
		Catalog:   catalog,
		Community: cfg.PowerCommunity,
		Logger:    log,
	})

	params := catalog.DefaultParameters()
	if opts.params != "" {
		params = strings.Split(strings.ToUpper(opts.params), ",")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := service.Run(ctx, dashboard.Request{
		Query: climate.Query{
			Latitude:   opts.lat,
			Longitude:  opts.lon,
			Start:      opts.start,
			End:        opts.end,
			Parameters: params,
			Resolution: climate.Resolution(opts.resolution),
		},
		Strategy: forecast.Kind(opts.strategy),
		Horizon:  opts.horizon,
		Narrate:  opts.narrate,
	})
	if err != nil {
		return err
	}

	if opts.chartPath != "" {
		if err := writeChart(opts.chartPath, report, catalog); err != nil {
			return err
		}
		log.Info().Str("path", opts.chartPath).Msg("chart written")
	}

	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return printReport(out, report, catalog)
}

func writeChart(path string, report *dashboard.Report, catalog climate.Catalog) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return chart.Series(f, chart.SeriesInput{
		Table:     report.Table,
		Forecasts: report.Forecasts,
		Catalog:   catalog,
	})
}

func printReport(out io.Writer, report *dashboard.Report, catalog climate.Catalog) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "PERIOD")
	for _, code := range report.Table.Parameters {
		fmt.Fprintf(tw, "\t%s", code)
	}
	fmt.Fprintln(tw)
	for _, row := range report.Table.Rows {
		fmt.Fprint(tw, row.Period)
		for _, code := range report.Table.Parameters {
			fmt.Fprintf(tw, "\t%s", row.Values[code])
		}
		fmt.Fprintln(tw)
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "PARAMETER\tMEAN\tMIN\tMAX\tLATEST\tTREND")
	for _, s := range report.Summaries {
		unit := catalog.Unit(s.Parameter)
		fmt.Fprintf(tw, "%s\t%.2f %s\t%.2f\t%.2f\t%s\t%s\n",
			catalog.Label(s.Parameter), s.Mean, unit, s.Min, s.Max, s.Latest, s.Trend())
	}
	fmt.Fprintln(tw)

	for _, f := range report.Forecasts {
		if len(f.Points) == 0 {
			continue
		}
		fmt.Fprintf(tw, "FORECAST %s (%s)\n", f.Parameter, f.Strategy)
		for _, p := range f.Points {
			fmt.Fprintf(tw, "%s\t%.2f\n", p.Period, p.Value)
		}
		fmt.Fprintln(tw)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, n := range report.Notices {
		fmt.Fprintf(out, "note: %s\n", n.Message)
	}
	if report.Insight != nil {
		fmt.Fprintf(out, "\n%s\n", report.Insight.Text)
	}
	return nil
}
