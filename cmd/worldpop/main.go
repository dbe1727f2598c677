package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"worldpop/internal/config"
	"worldpop/internal/metrics"
	"worldpop/internal/metrics/datadog"
	"worldpop/internal/metrics/prompush"

	// register all backends with the storage factory.
	_ "worldpop/internal/storage/all"
)

// main is the entry point of the worldpop binary. It resolves the pipeline
// configuration, optionally installs a metrics backend and runs the cleaning
// pipeline once.
func main() {
	var (
		cfgPath  string
		fl       flagOverrides
		validate bool
		verbose  bool
	)

	flag.StringVar(&cfgPath, "config", "", "pipeline config path (.json, .yaml or .yml); optional")
	flag.StringVar(&fl.input, "input", "", "input CSV path or http(s) URL (overrides config and WORLDPOP_INPUT)")
	flag.StringVar(&fl.output, "output", "", "cleaned CSV path (overrides config and WORLDPOP_OUTPUT)")
	flag.StringVar(&fl.chartsDir, "charts-dir", "", "directory for chart files (overrides config and WORLDPOP_CHARTS_DIR)")
	flag.BoolVar(&fl.noCharts, "no-charts", false, "skip chart rendering")
	flag.StringVar(&fl.metricsBackend, "metrics-backend", "", "metrics backend: none, pushgateway or datadog (overrides env METRICS_BACKEND)")
	flag.StringVar(&fl.pushgatewayURL, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.StringVar(&fl.datadogAddr, "datadog-addr", "", "DogStatsD address (overrides env DD_AGENT_ADDR)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	flag.BoolVar(&verbose, "v", false, "enable verbose logs")

	flag.Parse()

	p, err := resolvePipeline(cfgPath, fl, os.Getenv)
	if err != nil {
		fatalf("config: %v", err)
	}

	issues := config.ValidatePipeline(p)
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		fatalf("configuration is invalid")
	}
	if validate {
		log.Printf("configuration is valid")
		os.Exit(0)
	}

	flush := setupMetrics(p, verbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	if verbose {
		log.Printf("pipeline: job=%s input=%s output=%s charts=%t", p.Job, p.Source.Location(), p.Storage.Path, p.Charts.Enabled)
	}

	sum, err := run(ctx, p, os.Stdout, verbose)
	flush()
	if err != nil {
		fatalf("%v", err)
	}

	log.Printf("done: loaded=%d skipped=%d dropped=%d unmatched_region=%d written=%d charts=%d in %s",
		sum.Loaded, sum.Skipped, sum.Dropped, sum.Unmatched, sum.Written, len(sum.Charts),
		time.Since(start).Truncate(time.Millisecond))
}

// flagOverrides holds the command-line values that take precedence over the
// config file. Empty strings mean "not set".
type flagOverrides struct {
	input          string
	output         string
	chartsDir      string
	noCharts       bool
	metricsBackend string
	pushgatewayURL string
	datadogAddr    string
}

// resolvePipeline builds the effective pipeline. Precedence, highest first:
// flag, config file, environment, built-in default.
func resolvePipeline(cfgPath string, fl flagOverrides, getenv func(string) string) (config.Pipeline, error) {
	p := config.Default()
	applyEnv(&p, getenv)

	if cfgPath != "" {
		var err error
		if p, err = config.LoadWith(p, cfgPath); err != nil {
			return config.Pipeline{}, err
		}
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setInput(&p.Source, fl.input)
	set(&p.Storage.Path, fl.output)
	set(&p.Charts.Dir, fl.chartsDir)
	set(&p.Metrics.Backend, fl.metricsBackend)
	set(&p.Metrics.PushgatewayURL, fl.pushgatewayURL)
	set(&p.Metrics.Datadog.Addr, fl.datadogAddr)
	if fl.noCharts {
		p.Charts.Enabled = false
	}
	return p, nil
}

// applyEnv copies 12-factor style environment settings onto p.
func applyEnv(p *config.Pipeline, getenv func(string) string) {
	for k, dst := range map[string]*string{
		"WORLDPOP_OUTPUT":     &p.Storage.Path,
		"WORLDPOP_CHARTS_DIR": &p.Charts.Dir,
		"METRICS_BACKEND":     &p.Metrics.Backend,
		"PUSHGATEWAY_URL":     &p.Metrics.PushgatewayURL,
		"DD_AGENT_ADDR":       &p.Metrics.Datadog.Addr,
	} {
		if v := getenv(k); v != "" {
			*dst = v
		}
	}
	setInput(&p.Source, getenv("WORLDPOP_INPUT"))
	p.Report.Preview = getenvInt(getenv, "WORLDPOP_PREVIEW_ROWS", p.Report.Preview)
}

// setInput points the source at v. An http(s) URL selects the http kind;
// anything else is a local path.
func setInput(src *config.Source, v string) {
	switch {
	case v == "":
	case strings.HasPrefix(v, "http://"), strings.HasPrefix(v, "https://"):
		src.Kind = "http"
		src.HTTP.URL = v
	default:
		src.Kind = "file"
		src.File.Path = v
	}
}

// getenvInt returns the integer value of k, or def when unset or malformed.
func getenvInt(getenv func(string) string, k string, def int) int {
	if s := getenv(k); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return def
}

// setupMetrics installs the configured metrics backend and returns a function
// that flushes it. A backend that fails to initialize leaves the nop backend
// in place; metrics never fail the run.
func setupMetrics(p config.Pipeline, verbose bool) func() {
	var (
		b   metrics.Backend
		err error
	)
	switch p.Metrics.Backend {
	case "pushgateway":
		b, err = newPushBackend(p.Job, p.Metrics.PushgatewayURL)
		if err == nil {
			log.Printf("metrics: backend=pushgateway url=%s job_name=%s", p.Metrics.PushgatewayURL, p.Job)
		}
	case "datadog":
		b, err = newDatadogBackend(datadog.Config{
			Addr:       p.Metrics.Datadog.Addr,
			Namespace:  p.Metrics.Datadog.Namespace,
			GlobalTags: p.Metrics.Datadog.Tags,
		})
		if err == nil {
			log.Printf("metrics: backend=datadog addr=%s", p.Metrics.Datadog.Addr)
		}
	case "", "none":
		if verbose {
			log.Printf("metrics: disabled")
		}
		return func() {}
	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", p.Metrics.Backend)
		return func() {}
	}
	if err != nil {
		log.Printf("metrics: init %s backend: %v; using nop", p.Metrics.Backend, err)
		return func() {}
	}

	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}
}

// Backend constructors are variables so tests can avoid the network.
var (
	newPushBackend = func(job, url string) (metrics.Backend, error) {
		return prompush.NewBackend(job, url)
	}
	newDatadogBackend = func(cfg datadog.Config) (metrics.Backend, error) {
		return datadog.NewBackend(cfg)
	}
)

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
