package normalize

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v2"

	"finsight/pkg/models"
)

// Alias binds a metric code to the label patterns that map onto it. Patterns
// are matched case- and accent-insensitively as substrings.
type Alias struct {
	Code     string   `yaml:"code"`
	Patterns []string `yaml:"patterns"`
}

// AliasFile is the YAML override format: extra aliases are prepended to the
// built-in dictionary so deployments can extend it without forking the code.
type AliasFile struct {
	Aliases []Alias `yaml:"aliases"`
}

type pattern struct {
	text  string // folded
	code  string
	order int // declaration position, tiebreak for equal length
}

// Dictionary resolves raw labels to canonical metric codes. Build once, share
// freely: it is read-only after construction.
type Dictionary struct {
	patterns []pattern // sorted longest-first
	metrics  map[string]models.MetricDefinition
}

// NewDictionary builds the dictionary from the built-in catalogue and aliases.
func NewDictionary() *Dictionary {
	return newDictionary(DefaultMetrics(), defaultAliases)
}

// NewDictionaryWithOverrides loads extra aliases from a YAML file and layers
// them over the defaults. Override patterns win ties against built-ins.
func NewDictionaryWithOverrides(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading alias overrides: %w", err)
	}
	var f AliasFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing alias overrides: %w", err)
	}
	merged := append(append([]Alias{}, f.Aliases...), defaultAliases...)
	return newDictionary(DefaultMetrics(), merged), nil
}

func newDictionary(metrics []models.MetricDefinition, aliases []Alias) *Dictionary {
	d := &Dictionary{metrics: make(map[string]models.MetricDefinition, len(metrics))}
	for _, m := range metrics {
		d.metrics[m.Code] = m
	}
	order := 0
	for _, a := range aliases {
		for _, p := range a.Patterns {
			d.patterns = append(d.patterns, pattern{text: Fold(p), code: a.Code, order: order})
			order++
		}
	}
	// Longest pattern first; declaration order breaks ties deterministically.
	sort.SliceStable(d.patterns, func(i, j int) bool {
		if len(d.patterns[i].text) != len(d.patterns[j].text) {
			return len(d.patterns[i].text) > len(d.patterns[j].text)
		}
		return d.patterns[i].order < d.patterns[j].order
	})
	return d
}

// Match resolves a raw label to its metric definition. The first (most
// specific) matching pattern wins; ok is false when nothing matches.
func (d *Dictionary) Match(label string) (models.MetricDefinition, bool) {
	folded := Fold(label)
	if folded == "" {
		return models.MetricDefinition{}, false
	}
	for _, p := range d.patterns {
		if strings.Contains(folded, p.text) {
			if def, ok := d.metrics[p.code]; ok {
				return def, true
			}
			// Alias pointing at a code outside the catalogue still maps.
			return models.MetricDefinition{Code: p.code}, true
		}
	}
	return models.MetricDefinition{}, false
}

// Metrics returns the catalogue entries, in no particular order.
func (d *Dictionary) Metrics() []models.MetricDefinition {
	out := make([]models.MetricDefinition, 0, len(d.metrics))
	for _, m := range d.metrics {
		out = append(out, m)
	}
	return out
}

// Metric looks up one catalogue entry by code.
func (d *Dictionary) Metric(code string) (models.MetricDefinition, bool) {
	m, ok := d.metrics[code]
	return m, ok
}

var accentFold = strings.NewReplacer(
	"á", "a", "à", "a", "ä", "a", "â", "a",
	"é", "e", "è", "e", "ë", "e", "ê", "e",
	"í", "i", "ì", "i", "ï", "i", "î", "i",
	"ó", "o", "ò", "o", "ö", "o", "ô", "o",
	"ú", "u", "ù", "u", "ü", "u", "û", "u",
	"ñ", "n", "ç", "c",
)

// Fold lowercases, strips the accents that show up in Spanish statement
// labels, and collapses runs of whitespace to single spaces.
func Fold(s string) string {
	s = accentFold.Replace(strings.ToLower(strings.TrimSpace(s)))
	return strings.Join(strings.Fields(s), " ")
}

// SectionFor normalizes a balance-side label to asset/liability/equity.
// Accepts the usual Spanish and English spellings plus the "pn" abbreviation
// for patrimonio neto.
func SectionFor(label string) (models.Section, bool) {
	folded := Fold(label)
	switch {
	case folded == "pn":
		return models.SectionEquity, true
	case strings.Contains(folded, "patrimonio"), strings.Contains(folded, "equity"), strings.Contains(folded, "fondos propios"):
		return models.SectionEquity, true
	case strings.Contains(folded, "pasivo"), strings.Contains(folded, "liabilit"):
		return models.SectionLiability, true
	case strings.Contains(folded, "activo"), strings.Contains(folded, "asset"):
		return models.SectionAsset, true
	}
	return "", false
}
