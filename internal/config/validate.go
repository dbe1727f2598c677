package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a finding worth surfacing that does not block
	// execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding for a Pipeline.
//
// Path is a dotted path into the config (e.g. "storage.path",
// "transform[4].options.fields"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidatePipeline performs static validation of a Pipeline. It does not
// mutate the pipeline; callers decide whether warnings are fatal.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it is used for metrics labeling and identifying runs",
		})
	}
	issues = append(issues, validateSource(p.Source)...)
	issues = append(issues, validateParser(p.Parser)...)
	issues = append(issues, validateTransforms(p.Transform)...)
	issues = append(issues, validateStorage(p.Storage, p.Source)...)
	issues = append(issues, validateReport(p.Report)...)
	issues = append(issues, validateCharts(p.Charts)...)
	issues = append(issues, validateMetrics(p.Metrics)...)

	return issues
}

func validateSource(s Source) []Issue {
	var issues []Issue

	switch strings.TrimSpace(s.Kind) {
	case "":
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.kind",
			Message:  "source.kind must not be empty",
		})
	case "file":
		if strings.TrimSpace(s.File.Path) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.file.path",
				Message:  "file source requires a non-empty path",
			})
		}
	case "http":
		u, err := url.Parse(strings.TrimSpace(s.HTTP.URL))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.http.url",
				Message:  fmt.Sprintf("http source requires an absolute http(s) url, got %q", s.HTTP.URL),
			})
		}
		if s.HTTP.Timeout != "" {
			if d, err := time.ParseDuration(s.HTTP.Timeout); err != nil || d <= 0 {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     "source.http.timeout",
					Message:  fmt.Sprintf("timeout must be a positive duration, got %q", s.HTTP.Timeout),
				})
			}
		}
		if s.HTTP.Retries < 0 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.http.retries",
				Message:  "retries must be >= 0",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.kind",
			Message:  fmt.Sprintf("unsupported source kind %q; expected \"file\" or \"http\"", s.Kind),
		})
	}
	return issues
}

func validateParser(p Parser) []Issue {
	var issues []Issue

	switch strings.TrimSpace(p.Kind) {
	case "":
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.kind",
			Message:  "parser.kind must not be empty",
		})
	case "csv":
		if c := p.Options.String("comma", ""); c != "" && len([]rune(c)) != 1 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "parser.options.comma",
				Message:  fmt.Sprintf("comma must be a single character, got %q", c),
			})
		}
		if p.Options.Bool("lenient", false) {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "parser.options.lenient",
				Message:  "lenient parsing skips malformed rows instead of failing the run",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.kind",
			Message:  fmt.Sprintf("unsupported parser kind %q; only \"csv\" is available", p.Kind),
		})
	}
	return issues
}

// listOptions names the []string option each transform kind cannot do without.
var listOptions = map[string]string{
	"percent": "columns",
	"coerce":  "columns",
	"require": "fields",
}

func validateTransforms(ts []Transform) []Issue {
	var issues []Issue

	if len(ts) == 0 {
		return append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "transform",
			Message:  "no transforms configured; the raw table will be written as-is",
		})
	}

	seen := map[string]int{}
	for i, t := range ts {
		path := fmt.Sprintf("transform[%d]", i)
		kind := strings.TrimSpace(t.Kind)
		if kind == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".kind",
				Message:  "transform kind must not be empty",
			})
			continue
		}

		switch kind {
		case "rename", "normalize", "region":
		case "percent", "coerce", "require":
			key := listOptions[kind]
			if t.Options.Any(key) != nil && len(t.Options.StringSlice(key)) == 0 {
				issues = append(issues, Issue{
					Severity: SeverityWarning,
					Path:     fmt.Sprintf("%s.options.%s", path, key),
					Message:  fmt.Sprintf("%s transform has an empty %s list; it will do nothing", kind, key),
				})
			}
		case "ratio":
			for _, key := range []string{"target", "numerator", "denominator"} {
				if strings.TrimSpace(t.Options.String(key, "")) == "" {
					issues = append(issues, Issue{
						Severity: SeverityError,
						Path:     fmt.Sprintf("%s.options.%s", path, key),
						Message:  fmt.Sprintf("ratio transform requires %s", key),
					})
				}
			}
		default:
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".kind",
				Message:  fmt.Sprintf("unknown transform kind %q", t.Kind),
			})
			continue
		}

		if prev, dup := seen[kind]; dup && kind != "coerce" && kind != "percent" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     path + ".kind",
				Message:  fmt.Sprintf("%s already configured at transform[%d]", kind, prev),
			})
		}
		seen[kind] = i
	}

	if r, ok := seen["region"]; ok {
		if n, ok := seen["rename"]; ok && n > r {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     fmt.Sprintf("transform[%d].kind", n),
				Message:  "rename runs after region; a source Continent column would replace the derived Region",
			})
		}
	}

	return issues
}

func validateStorage(s Storage, src Source) []Issue {
	var issues []Issue

	if strings.TrimSpace(s.Kind) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.kind",
			Message:  "storage.kind must not be empty",
		})
	} else if s.Kind != "csv" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; ensure a matching backend is registered", s.Kind),
		})
	}

	if strings.TrimSpace(s.Path) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.path",
			Message:  "storage.path must not be empty",
		})
	} else if src.Kind == "file" && src.File.Path != "" && filepath.Clean(s.Path) == filepath.Clean(src.File.Path) {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.path",
			Message:  "storage.path equals the input path; the source would be overwritten",
		})
	}
	return issues
}

func validateReport(r Report) []Issue {
	var issues []Issue
	for path, v := range map[string]int{
		"report.preview": r.Preview,
		"report.top":     r.Top,
		"report.bottom":  r.Bottom,
	} {
		if v < 0 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path,
				Message:  fmt.Sprintf("%s must not be negative, got %d", path, v),
			})
		}
	}
	return issues
}

// chartFormats are the extensions gonum/plot can save.
var chartFormats = map[string]struct{}{
	"png": {}, "svg": {}, "pdf": {}, "jpg": {}, "jpeg": {}, "eps": {}, "tif": {}, "tiff": {},
}

func validateCharts(c Charts) []Issue {
	var issues []Issue
	if !c.Enabled {
		return issues
	}
	if strings.TrimSpace(c.Dir) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "charts.dir",
			Message:  "charts.dir must not be empty when charts are enabled",
		})
	}
	if _, ok := chartFormats[strings.ToLower(c.Format)]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "charts.format",
			Message:  fmt.Sprintf("unsupported chart format %q", c.Format),
		})
	}
	switch {
	case c.Top < 0:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "charts.top",
			Message:  "charts.top must not be negative",
		})
	case c.Top == 0:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "charts.top",
			Message:  "charts.top is zero; the population chart will be skipped",
		})
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	var issues []Issue
	switch m.Backend {
	case "", "none":
	case "pushgateway":
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.pushgateway_url",
				Message:  "pushgateway backend requires a gateway URL",
			})
		}
	case "datadog":
		if strings.TrimSpace(m.Datadog.Addr) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.datadog.addr",
				Message:  "datadog backend requires an agent address",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; use none, pushgateway or datadog", m.Backend),
		})
	}
	return issues
}
