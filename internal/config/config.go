// Package config defines the configuration model of the worldpop pipeline.
// A pipeline file is JSON or YAML; both decode into the same Pipeline struct.
// Fields omitted from a file keep the values of Default, so an empty file
// reproduces the standard cleaning run.
//
// Example (YAML, trimmed):
//
//	job: worldpop
//	source: { kind: file, file: { path: world_population.csv } }
//	parser: { kind: csv, options: { lenient: false } }
//	transform:
//	  - { kind: rename }
//	  - { kind: require, options: { fields: [Country, Population_2023] } }
//	storage: { kind: csv, path: world_population_clean.csv, bom: true }
//	charts: { enabled: true, dir: charts, format: png }
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"worldpop/internal/schema"
)

// Pipeline is the top-level object decoded from a pipeline file.
type Pipeline struct {
	// Job names the run; it labels metrics and log lines.
	Job string `json:"job" yaml:"job"`

	// Source describes where input data comes from.
	Source Source `json:"source" yaml:"source"`

	// Parser configures how raw bytes are turned into a table.
	Parser Parser `json:"parser" yaml:"parser"`

	// Transform lists the ordered cleaning and enrichment steps. The options
	// shape is defined by each transform kind.
	Transform []Transform `json:"transform" yaml:"transform"`

	// Storage describes where the cleaned table is written.
	Storage Storage `json:"storage" yaml:"storage"`

	Report  Report  `json:"report" yaml:"report"`
	Charts  Charts  `json:"charts" yaml:"charts"`
	Metrics Metrics `json:"metrics" yaml:"metrics"`
}

// Source identifies the data source. Kinds: "file", "http".
type Source struct {
	Kind string     `json:"kind" yaml:"kind"`
	File SourceFile `json:"file" yaml:"file"`
	HTTP SourceHTTP `json:"http" yaml:"http"`
}

// Location returns the path or URL the active kind reads from.
func (s Source) Location() string {
	if s.Kind == "http" {
		return s.HTTP.URL
	}
	return s.File.Path
}

// SourceFile holds configuration for the "file" source kind.
type SourceFile struct {
	// Path is the local filesystem path to the input file.
	Path string `json:"path" yaml:"path"`
}

// SourceHTTP holds configuration for the "http" source kind.
type SourceHTTP struct {
	URL string `json:"url" yaml:"url"`

	// Timeout is a Go duration string ("30s"); empty uses the client default.
	Timeout string `json:"timeout" yaml:"timeout"`

	// Retries is the number of extra attempts on 429, 5xx and transport errors.
	Retries int `json:"retries" yaml:"retries"`
}

// Parser selects how to parse the raw source. Current kind: "csv".
//
// CSV options: comma (string), lenient (bool).
type Parser struct {
	Kind    string  `json:"kind" yaml:"kind"`
	Options Options `json:"options" yaml:"options"`
}

// Transform defines a single step of the transformation chain.
//
// Kinds and their options:
//
//	rename     map (object): extra source → canonical names, merged over the built-in table
//	normalize  missing ([]string): sentinel tokens read as missing
//	percent    columns ([]string), strip ([]string)
//	coerce     columns ([]string), thousands (bool): accept "1,234,567" groups
//	require    fields ([]string)
//	region     lookup_path (string): JSON country → region file replacing the embedded table
//	ratio      target, numerator, denominator (string)
type Transform struct {
	Kind    string  `json:"kind" yaml:"kind"`
	Options Options `json:"options" yaml:"options"`
}

// Storage selects the sink used to persist the cleaned table.
type Storage struct {
	// Kind selects the registered backend. Current value: "csv".
	Kind string `json:"kind" yaml:"kind"`

	// Path is the destination file.
	Path string `json:"path" yaml:"path"`

	// BOM prefixes the output with a UTF-8 byte order mark.
	BOM bool `json:"bom" yaml:"bom"`
}

// Report controls the console report.
type Report struct {
	// Preview is the number of rows shown in table previews.
	Preview int `json:"preview" yaml:"preview"`
	// Top is the length of the densest-countries list.
	Top int `json:"top" yaml:"top"`
	// Bottom is the length of the smallest-land-area list.
	Bottom int `json:"bottom" yaml:"bottom"`
}

// Charts controls chart rendering.
type Charts struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	// Dir receives the chart files; it is created if needed.
	Dir string `json:"dir" yaml:"dir"`
	// Format is the file extension: png, svg, pdf, jpg, eps or tif.
	Format string `json:"format" yaml:"format"`
	// Top is the number of countries in the population chart.
	Top int `json:"top" yaml:"top"`
}

// Metrics selects the metrics backend.
type Metrics struct {
	// Backend is one of "none", "pushgateway", "datadog".
	Backend        string  `json:"backend" yaml:"backend"`
	PushgatewayURL string  `json:"pushgateway_url" yaml:"pushgateway_url"`
	Datadog        Datadog `json:"datadog" yaml:"datadog"`
}

// Datadog configures the DogStatsD backend.
type Datadog struct {
	Addr      string   `json:"addr" yaml:"addr"`
	Namespace string   `json:"namespace" yaml:"namespace"`
	Tags      []string `json:"tags" yaml:"tags"`
}

// Default returns the standard pipeline: rename headers, normalize text,
// coerce percentages and numbers, drop incomplete rows, attach regions and
// derive population per km².
func Default() Pipeline {
	return Pipeline{
		Job:       "worldpop",
		Source:    Source{Kind: "file", File: SourceFile{Path: "world_population.csv"}},
		Parser:    Parser{Kind: "csv", Options: Options{}},
		Transform: DefaultTransforms(),
		Storage: Storage{
			Kind: "csv",
			Path: "world_population_clean.csv",
			BOM:  true,
		},
		Report:  Report{Preview: 5, Top: 10, Bottom: 5},
		Charts:  Charts{Enabled: true, Dir: "charts", Format: "png", Top: 10},
		Metrics: Metrics{Backend: "none"},
	}
}

// DefaultTransforms returns the standard transformation chain.
func DefaultTransforms() []Transform {
	return []Transform{
		{Kind: "rename", Options: Options{}},
		{Kind: "normalize", Options: Options{"missing": schema.MissingTokens()}},
		{Kind: "percent", Options: Options{"columns": schema.PercentColumns()}},
		{Kind: "coerce", Options: Options{"columns": schema.NumericColumns()}},
		{Kind: "require", Options: Options{"fields": schema.RequiredColumns()}},
		{Kind: "region", Options: Options{}},
		{Kind: "ratio", Options: Options{
			"target":      schema.PopulationCalc,
			"numerator":   schema.Population,
			"denominator": schema.LandArea,
		}},
	}
}

// Load reads a pipeline file over Default. See LoadWith.
func Load(path string) (Pipeline, error) { return LoadWith(Default(), path) }

// LoadWith reads a pipeline file over base. Files ending in .yaml or .yml are
// decoded as YAML, anything else as JSON. Keys absent from the file keep the
// values of base; a file without a transform list keeps base's chain.
func LoadWith(base Pipeline, path string) (Pipeline, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Pipeline{}, fmt.Errorf("read config %s: %w", path, err)
	}
	p, err := DecodeWith(base, b, filepath.Ext(path))
	if err != nil {
		return Pipeline{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return p, nil
}

// Decode decodes b over Default. ext selects the format as in LoadWith.
func Decode(b []byte, ext string) (Pipeline, error) { return DecodeWith(Default(), b, ext) }

// DecodeWith decodes b over base.
func DecodeWith(base Pipeline, b []byte, ext string) (Pipeline, error) {
	p := base
	chain := p.Transform
	// Decoding into a populated slice would merge elements index by index.
	p.Transform = nil

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
			return Pipeline{}, err
		}
	default:
		if len(bytes.TrimSpace(b)) > 0 {
			dec := json.NewDecoder(bytes.NewReader(b))
			dec.DisallowUnknownFields()
			if err := dec.Decode(&p); err != nil {
				return Pipeline{}, err
			}
		}
	}

	if len(p.Transform) == 0 {
		p.Transform = chain
	}
	return p, nil
}

// Options is a small helper to fetch typed values from decoded option maps.
// It performs only minimal type coercion and returns the provided default
// when a key is absent or of an unexpected type.
type Options map[string]any

// String returns the string value for key or def if key is missing or not a string.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def if key is missing or not a bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Rune returns the first rune of a string value for key, or def if key is
// missing or empty. Used for single-character settings such as a delimiter.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			return []rune(s)[0]
		}
	}
	return def
}

// StringMap returns a map[string]string for key when the value is an object
// whose values are strings. Non-string values are ignored. Returns an empty map
// when the key is missing or the value is not an object.
func (o Options) StringMap(key string) map[string]string {
	res := map[string]string{}
	if v, ok := o[key]; ok {
		switch m := v.(type) {
		case map[string]any:
			for k, vv := range m {
				if s, ok := vv.(string); ok {
					res[k] = s
				}
			}
		case map[string]string:
			for k, s := range m {
				res[k] = s
			}
		}
	}
	return res
}

// StringSlice returns a []string for key when the value is an array of
// strings. Returns nil when the key is missing or the value is not an array.
func (o Options) StringSlice(key string) []string {
	if v, ok := o[key]; ok {
		switch vv := v.(type) {
		case []any:
			out := make([]string, 0, len(vv))
			for _, x := range vv {
				if s, ok := x.(string); ok {
					out = append(out, s)
				}
			}
			return out
		case []string:
			return vv
		}
	}
	return nil
}

// Any returns the raw value for key.
func (o Options) Any(key string) any {
	if v, ok := o[key]; ok {
		return v
	}
	return nil
}

// UnmarshalJSON decodes a null "options" object to a non-nil, empty map.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}

// UnmarshalYAML mirrors UnmarshalJSON for YAML documents.
func (o *Options) UnmarshalYAML(n *yaml.Node) error {
	var tmp map[string]any
	if err := n.Decode(&tmp); err != nil {
		return err
	}
	if tmp == nil {
		tmp = map[string]any{}
	}
	*o = Options(tmp)
	return nil
}
