// Package main wires the worldpop pipeline end-to-end: load the CSV, rename
// and clean columns, attach regions, print the report, render charts and
// persist the cleaned table. This file keeps the CLI layer thin; every stage
// lives in an internal package and is reached through small seams.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"worldpop/internal/chart"
	"worldpop/internal/config"
	"worldpop/internal/datasource"
	"worldpop/internal/datasource/file"
	"worldpop/internal/datasource/httpds"
	"worldpop/internal/metrics"
	"worldpop/internal/parser"
	csvparser "worldpop/internal/parser/csv"
	"worldpop/internal/region"
	"worldpop/internal/report"
	"worldpop/internal/schema"
	"worldpop/internal/storage"
	"worldpop/internal/table"
	"worldpop/internal/transformer"
	"worldpop/internal/transformer/builtin"
)

// logSampleLimit caps how many individual drops and misses are logged.
const logSampleLimit = 3

// summary is the outcome of one run.
type summary struct {
	Loaded    int // rows read from the source
	Skipped   int // malformed rows skipped by a lenient parser
	Dropped   int // rows removed by the required-field filter
	Unmatched int // rows whose country has no region
	Written   int // rows persisted
	Bytes     int64
	Digest    uint64
	Charts    []string // chart files written
}

// Function variables used to introduce test seams.
var (
	newRepositoryFn = storage.New
	openSourceFn    = openSource
	renderChartFn   = chart.Render
)

// step is one named stage of the transformation chain.
type step struct {
	name string
	transformer.Transformer
}

// run executes the pipeline once. Report tables go to out; logs go to the
// standard logger. Chart failures are logged and skipped; every other failure
// aborts the run.
func run(ctx context.Context, p config.Pipeline, out io.Writer, verbose bool) (summary, error) {
	var sum summary
	pr := report.NewPrinter(out)

	// 1) Load.
	var t *table.Table
	err := timed(p.Job, "load", func() error {
		var err error
		t, sum.Skipped, err = load(ctx, p)
		return err
	})
	if err != nil {
		return sum, err
	}
	sum.Loaded = t.Len()
	metrics.RecordRow(p.Job, "loaded", int64(sum.Loaded))
	metrics.RecordRow(p.Job, "skipped", int64(sum.Skipped))
	log.Printf("load: source=%s rows=%d columns=%d skipped=%d", p.Source.Location(), t.Len(), len(t.Columns), sum.Skipped)

	pr.Section("Raw data preview")
	pr.Rows(t.Head(p.Report.Preview), t.Columns...)
	pr.Section("Raw data info")
	pr.Info(t.Len(), report.Info(t))

	// 2) Rename, clean, enrich.
	hooks := &transformHooks{}
	steps, err := buildTransformers(p.Transform, hooks)
	if err != nil {
		return sum, err
	}
	cleaned := false
	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if s.name == "region" && !cleaned {
			printCleaned(pr, t)
			cleaned = true
		}
		_ = timed(p.Job, s.name, func() error {
			t = s.Apply(t)
			return nil
		})
		metrics.RecordTableSize(p.Job, s.name, t.Len())
		if verbose {
			log.Printf("%s: rows=%d columns=%d", s.name, t.Len(), len(t.Columns))
		}
	}
	sum.Dropped, sum.Unmatched = hooks.dropped, hooks.unmatched
	metrics.RecordRow(p.Job, "dropped", int64(sum.Dropped))
	metrics.RecordRow(p.Job, "unmatched_region", int64(sum.Unmatched))
	log.Printf("require: dropped=%d", sum.Dropped)
	log.Printf("region: unmatched=%d", sum.Unmatched)

	if !cleaned {
		printCleaned(pr, t)
	}
	pr.Section("Region preview")
	pr.Rows(t.Head(p.Report.Preview), schema.Country, schema.Region, schema.MedianAge)

	// 3) Report.
	var ageByRegion []report.Group
	_ = timed(p.Job, "report", func() error {
		ageByRegion = printReport(pr, t, p.Report)
		return pr.Err()
	})
	if err := pr.Err(); err != nil {
		return sum, fmt.Errorf("report: %w", err)
	}

	// 4) Charts.
	if p.Charts.Enabled {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		_ = timed(p.Job, "charts", func() error {
			sum.Charts = renderCharts(p.Charts, t, ageByRegion)
			return nil
		})
	}

	// 5) Persist.
	if err := ctx.Err(); err != nil {
		return sum, err
	}
	err = timed(p.Job, "persist", func() error {
		res, err := persist(ctx, p.Storage, t)
		sum.Written, sum.Bytes, sum.Digest = res.Rows, res.Bytes, res.Digest
		return err
	})
	if err != nil {
		return sum, err
	}
	metrics.RecordRow(p.Job, "written", int64(sum.Written))
	log.Printf("persist: path=%s rows=%d bytes=%s xxh3=%016x",
		p.Storage.Path, sum.Written, humanize.Bytes(uint64(sum.Bytes)), sum.Digest)

	return sum, nil
}

// load opens the configured source and parses it.
func load(ctx context.Context, p config.Pipeline) (*table.Table, int, error) {
	ps, err := newParser(p.Parser)
	if err != nil {
		return nil, 0, fmt.Errorf("load: %w", err)
	}
	rc, err := openSourceFn(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("load: %w", err)
	}
	defer rc.Close()

	t, skipped, err := ps.Parse(rc)
	if err != nil {
		return nil, skipped, fmt.Errorf("load %s: %w", p.Source.Location(), err)
	}
	return t, skipped, nil
}

func newParser(cfg config.Parser) (parser.Parser, error) {
	switch cfg.Kind {
	case "csv":
		return csvparser.NewParser(csvparser.Options{
			Comma:   cfg.Options.Rune("comma", ','),
			Lenient: cfg.Options.Bool("lenient", false),
		}), nil
	default:
		return nil, fmt.Errorf("unsupported parser.kind=%s", cfg.Kind)
	}
}

func openSource(ctx context.Context, p config.Pipeline) (io.ReadCloser, error) {
	var src datasource.Source
	switch p.Source.Kind {
	case "file":
		src = file.NewLocal(p.Source.File.Path)
	case "http":
		cfg := httpds.Config{URL: p.Source.HTTP.URL, MaxRetries: p.Source.HTTP.Retries}
		if p.Source.HTTP.Timeout != "" {
			d, err := time.ParseDuration(p.Source.HTTP.Timeout)
			if err != nil {
				return nil, fmt.Errorf("source.http.timeout: %w", err)
			}
			cfg.Timeout = d
		}
		hs, err := httpds.New(cfg)
		if err != nil {
			return nil, err
		}
		src = hs
	default:
		return nil, fmt.Errorf("unsupported source.kind=%s", p.Source.Kind)
	}
	return src.Open(ctx)
}

// transformHooks collects counts reported by the transformers.
type transformHooks struct {
	dropped   int
	unmatched int
}

func (h *transformHooks) onDrop(r table.Record) {
	h.dropped++
	if h.dropped <= logSampleLimit {
		log.Printf("require: drop country=%s", report.FormatValue(r.Get(schema.Country)))
	}
	if h.dropped == logSampleLimit+1 {
		log.Printf("require: ... additional drops suppressed ...")
	}
}

func (h *transformHooks) onMiss(country string) {
	h.unmatched++
	if h.unmatched <= logSampleLimit {
		log.Printf("region: no region for country=%q", country)
	}
	if h.unmatched == logSampleLimit+1 {
		log.Printf("region: ... additional misses suppressed ...")
	}
}

// buildTransformers turns the configured transform list into named steps.
func buildTransformers(ts []config.Transform, h *transformHooks) ([]step, error) {
	steps := make([]step, 0, len(ts))
	for _, t := range ts {
		var tr transformer.Transformer
		switch t.Kind {
		case "rename":
			m := schema.Renames()
			for k, v := range t.Options.StringMap("map") {
				m[k] = v
			}
			tr = builtin.Rename{Map: m}
		case "normalize":
			missing := t.Options.StringSlice("missing")
			if missing == nil {
				missing = schema.MissingTokens()
			}
			tr = builtin.Normalize{Missing: missing}
		case "percent":
			tr = builtin.Percent{
				Columns: orDefault(t.Options.StringSlice("columns"), schema.PercentColumns()),
				Strip:   t.Options.StringSlice("strip"),
			}
		case "coerce":
			tr = builtin.Coerce{
				Columns:   orDefault(t.Options.StringSlice("columns"), schema.NumericColumns()),
				Thousands: t.Options.Bool("thousands", false),
			}
		case "require":
			tr = builtin.Require{
				Fields: orDefault(t.Options.StringSlice("fields"), schema.RequiredColumns()),
				OnDrop: h.onDrop,
			}
		case "region":
			l, err := loadLookup(t.Options.String("lookup_path", ""))
			if err != nil {
				return nil, err
			}
			tr = region.Enrich{Lookup: l, OnMiss: h.onMiss}
		case "ratio":
			tr = builtin.Ratio{
				Target:      t.Options.String("target", schema.PopulationCalc),
				Numerator:   t.Options.String("numerator", schema.Population),
				Denominator: t.Options.String("denominator", schema.LandArea),
			}
		default:
			return nil, fmt.Errorf("unsupported transformer.kind=%s", t.Kind)
		}
		steps = append(steps, step{name: t.Kind, Transformer: tr})
	}
	return steps, nil
}

func orDefault(v, def []string) []string {
	if v == nil {
		return def
	}
	return v
}

// loadLookup returns the embedded region table, or the one at path.
func loadLookup(path string) (*region.Lookup, error) {
	if path == "" {
		return region.Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("region lookup: %w", err)
	}
	defer f.Close()
	l, err := region.Decode(f)
	if err != nil {
		return nil, err
	}
	log.Printf("region: lookup=%s countries=%d regions=%s", path, l.Len(), strings.Join(l.Regions(), ","))
	return l, nil
}

// printReport prints the aggregates in a fixed order and returns the mean
// median age per region for charting.
func printReport(pr *report.Printer, t *table.Table, rc config.Report) []report.Group {
	pr.Section("Mean population by region")
	pr.Groups(schema.Region, "mean "+schema.Population, report.GroupMean(t, schema.Region, schema.Population))

	pr.Section(fmt.Sprintf("Top %d by density", rc.Top))
	pr.Rows(report.TopN(t, schema.Density, rc.Top), schema.Country, schema.Density)

	pr.Section(fmt.Sprintf("Bottom %d by land area", rc.Bottom))
	pr.Rows(report.BottomN(t, schema.LandArea, rc.Bottom), schema.Country, schema.LandArea)

	age := report.GroupMean(t, schema.Region, schema.MedianAge)
	pr.Section("Mean median age by region")
	pr.Groups(schema.Region, "mean "+schema.MedianAge, age)

	if t.Has(schema.PopulationCalc) {
		pr.Section("Population per km² (calculated)")
		pr.Rows(t.Head(rc.Preview), schema.Country, schema.Population, schema.LandArea, schema.PopulationCalc)
	}
	return age
}

// printCleaned prints the overview and descriptive statistics of the cleaned
// table. It runs before region enrichment, so Region and derived columns are
// not described.
func printCleaned(pr *report.Printer, t *table.Table) {
	pr.Section("Cleaned data info")
	pr.Info(t.Len(), report.Info(t))

	num, txt := report.Describe(t)
	pr.Section("Describe: numeric columns")
	pr.Numeric(num)
	if len(txt) > 0 {
		pr.Section("Describe: text columns")
		pr.Text(txt)
	}
}

// renderCharts writes both charts and returns the paths written. Failures
// are logged and never abort the run.
func renderCharts(c config.Charts, t *table.Table, ageByRegion []report.Group) []string {
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		log.Printf("charts: warning: create %s: %v", c.Dir, err)
		return nil
	}

	var written []string
	for _, job := range []struct {
		name string
		spec chart.Spec
	}{
		{"population_top10", chart.PopulationSpec(report.TopN(t, schema.Population, c.Top))},
		{"median_age_by_region", chart.MedianAgeSpec(ageByRegion)},
	} {
		path := filepath.Join(c.Dir, job.name+"."+c.Format)
		if err := renderChartFn(job.spec, path); err != nil {
			log.Printf("charts: warning: %s: %v", path, err)
			continue
		}
		log.Printf("charts: wrote %s", path)
		written = append(written, path)
	}
	return written
}

// persist writes t through the configured storage backend.
func persist(ctx context.Context, s config.Storage, t *table.Table) (storage.Result, error) {
	repo, err := newRepositoryFn(ctx, storage.Config{Kind: s.Kind, Path: s.Path, BOM: s.BOM})
	if errors.Is(err, storage.ErrUnsupportedKind) {
		return storage.Result{}, fmt.Errorf("persist: init repo: %w (registered: %s)", err, strings.Join(storage.ListKinds(), ", "))
	}
	if err != nil {
		return storage.Result{}, fmt.Errorf("persist: init repo: %w", err)
	}
	defer repo.Close()

	res, err := repo.Write(ctx, t)
	if err != nil {
		return res, fmt.Errorf("persist: %w", err)
	}
	return res, nil
}

// timed runs fn and records it as a pipeline step.
func timed(job, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	metrics.RecordStep(job, name, err, time.Since(start))
	return err
}
