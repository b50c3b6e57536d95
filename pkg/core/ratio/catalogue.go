package ratio

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"finsight/pkg/models"
)

// Formula is one declarative catalogue entry. Each side sums the amounts of
// its metric codes within the period; there is no other combine mode.
type Formula struct {
	ID          string          `yaml:"id"`
	Name        string          `yaml:"name"`
	Category    models.Category `yaml:"category"`
	Numerator   []string        `yaml:"numerator"`
	Denominator []string        `yaml:"denominator"`
	Unit        string          `yaml:"unit"`
}

// CatalogueFile is the YAML override format: extra formulas are appended to
// the built-in catalogue.
type CatalogueFile struct {
	Formulas []Formula `yaml:"formulas"`
}

// DefaultCatalogue returns the standard formula set: liquidity, leverage,
// profitability and activity ratios, plus the cash-quality and debt-coverage
// formulas the dashboard tracks.
func DefaultCatalogue() []Formula {
	return []Formula{
		// Liquidity
		{ID: "current_ratio", Name: "Current ratio", Category: models.CategoryBalance,
			Numerator: []string{"current_assets_total"}, Denominator: []string{"current_liabilities_total"}, Unit: "x"},
		{ID: "quick_ratio", Name: "Quick ratio", Category: models.CategoryBalance,
			Numerator: []string{"cash_equivalents", "short_term_investments", "accounts_receivable"}, Denominator: []string{"current_liabilities_total"}, Unit: "x"},
		{ID: "cash_ratio", Name: "Cash ratio", Category: models.CategoryBalance,
			Numerator: []string{"cash_equivalents"}, Denominator: []string{"current_liabilities_total"}, Unit: "x"},

		// Leverage
		{ID: "debt_equity", Name: "Debt to equity", Category: models.CategoryBalance,
			Numerator: []string{"liabilities_total"}, Denominator: []string{"equity_total"}, Unit: "x"},
		{ID: "debt_assets", Name: "Debt to assets", Category: models.CategoryBalance,
			Numerator: []string{"liabilities_total"}, Denominator: []string{"assets_total"}, Unit: "x"},
		{ID: "equity_assets", Name: "Equity to assets", Category: models.CategoryBalance,
			Numerator: []string{"equity_total"}, Denominator: []string{"assets_total"}, Unit: "x"},

		// Profitability
		{ID: "roe", Name: "Return on equity", Category: models.CategoryPyG,
			Numerator: []string{"net_income"}, Denominator: []string{"equity_total"}, Unit: "%"},
		{ID: "roa", Name: "Return on assets", Category: models.CategoryPyG,
			Numerator: []string{"net_income"}, Denominator: []string{"assets_total"}, Unit: "%"},
		{ID: "net_margin", Name: "Net margin", Category: models.CategoryPyG,
			Numerator: []string{"net_income"}, Denominator: []string{"revenue_total"}, Unit: "%"},

		// Activity
		{ID: "asset_turnover", Name: "Asset turnover", Category: models.CategoryOperational,
			Numerator: []string{"revenue_total"}, Denominator: []string{"assets_total"}, Unit: "x"},

		// Cash quality and coverage
		{ID: "fco_quality", Name: "Operating cash flow quality", Category: models.CategoryCashflow,
			Numerator: []string{"cfo_total"}, Denominator: []string{"net_income"}, Unit: "x"},
		{ID: "debt_coverage", Name: "Debt coverage", Category: models.CategoryDebt,
			Numerator: []string{"cfo_total"}, Denominator: []string{"debt_total"}, Unit: "x"},
	}
}

// LoadCatalogue layers formulas from a YAML file over the defaults. A file
// formula with an existing ID replaces the built-in one.
func LoadCatalogue(path string) ([]Formula, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading formula catalogue: %w", err)
	}
	var f CatalogueFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing formula catalogue: %w", err)
	}
	merged := DefaultCatalogue()
	index := map[string]int{}
	for i, formula := range merged {
		index[formula.ID] = i
	}
	for _, override := range f.Formulas {
		if i, ok := index[override.ID]; ok {
			merged[i] = override
		} else {
			merged = append(merged, override)
		}
	}
	return merged, nil
}
