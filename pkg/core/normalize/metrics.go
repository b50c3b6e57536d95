package normalize

import "finsight/pkg/models"

// DefaultMetrics is the built-in canonical metric catalogue. The persistence
// collaborator may serve a larger catalogue; this one is the floor every
// deployment starts from.
func DefaultMetrics() []models.MetricDefinition {
	return []models.MetricDefinition{
		// Balance sheet (stocks)
		{Code: "cash_equivalents", Name: "Cash and equivalents", Category: models.CategoryBalance, ValueKind: models.ValueKindStock, DefaultUnit: "EUR"},
		{Code: "short_term_investments", Name: "Short-term investments", Category: models.CategoryBalance, ValueKind: models.ValueKindStock, DefaultUnit: "EUR"},
		{Code: "accounts_receivable", Name: "Accounts receivable", Category: models.CategoryBalance, ValueKind: models.ValueKindStock, DefaultUnit: "EUR"},
		{Code: "inventory", Name: "Inventory", Category: models.CategoryBalance, ValueKind: models.ValueKindStock, DefaultUnit: "EUR"},
		{Code: "current_assets_total", Name: "Total current assets", Category: models.CategoryBalance, ValueKind: models.ValueKindStock, DefaultUnit: "EUR"},
		{Code: "noncurrent_assets_total", Name: "Total non-current assets", Category: models.CategoryBalance, ValueKind: models.ValueKindStock, DefaultUnit: "EUR"},
		{Code: "assets_total", Name: "Total assets", Category: models.CategoryBalance, ValueKind: models.ValueKindStock, DefaultUnit: "EUR"},
		{Code: "current_liabilities_total", Name: "Total current liabilities", Category: models.CategoryBalance, ValueKind: models.ValueKindStock, DefaultUnit: "EUR"},
		{Code: "noncurrent_liabilities_total", Name: "Total non-current liabilities", Category: models.CategoryBalance, ValueKind: models.ValueKindStock, DefaultUnit: "EUR"},
		{Code: "liabilities_total", Name: "Total liabilities", Category: models.CategoryBalance, ValueKind: models.ValueKindStock, DefaultUnit: "EUR"},
		{Code: "equity_total", Name: "Total equity", Category: models.CategoryBalance, ValueKind: models.ValueKindStock, DefaultUnit: "EUR"},

		// Profit & loss (flows)
		{Code: "revenue_total", Name: "Total revenue", Category: models.CategoryPyG, ValueKind: models.ValueKindFlow, DefaultUnit: "EUR"},
		{Code: "cost_of_sales", Name: "Cost of sales", Category: models.CategoryPyG, ValueKind: models.ValueKindFlow, DefaultUnit: "EUR"},
		{Code: "personnel_costs", Name: "Personnel costs", Category: models.CategoryPyG, ValueKind: models.ValueKindFlow, DefaultUnit: "EUR"},
		{Code: "operating_expenses", Name: "Operating expenses", Category: models.CategoryPyG, ValueKind: models.ValueKindFlow, DefaultUnit: "EUR"},
		{Code: "ebitda", Name: "EBITDA", Category: models.CategoryPyG, ValueKind: models.ValueKindFlow, DefaultUnit: "EUR"},
		{Code: "depreciation_amortization", Name: "Depreciation and amortization", Category: models.CategoryPyG, ValueKind: models.ValueKindFlow, DefaultUnit: "EUR"},
		{Code: "operating_income", Name: "Operating income", Category: models.CategoryPyG, ValueKind: models.ValueKindFlow, DefaultUnit: "EUR"},
		{Code: "interest_expense", Name: "Interest expense", Category: models.CategoryPyG, ValueKind: models.ValueKindFlow, DefaultUnit: "EUR"},
		{Code: "tax_expense", Name: "Income tax expense", Category: models.CategoryPyG, ValueKind: models.ValueKindFlow, DefaultUnit: "EUR"},
		{Code: "net_income", Name: "Net income", Category: models.CategoryPyG, ValueKind: models.ValueKindFlow, DefaultUnit: "EUR"},

		// Cash flow (flows)
		{Code: "cfo_total", Name: "Cash from operations", Category: models.CategoryCashflow, ValueKind: models.ValueKindFlow, DefaultUnit: "EUR"},
		{Code: "cfi_total", Name: "Cash from investing", Category: models.CategoryCashflow, ValueKind: models.ValueKindFlow, DefaultUnit: "EUR"},
		{Code: "cff_total", Name: "Cash from financing", Category: models.CategoryCashflow, ValueKind: models.ValueKindFlow, DefaultUnit: "EUR"},
		{Code: "capex", Name: "Capital expenditure", Category: models.CategoryCashflow, ValueKind: models.ValueKindFlow, DefaultUnit: "EUR"},
		{Code: "net_cash_change", Name: "Net change in cash", Category: models.CategoryCashflow, ValueKind: models.ValueKindFlow, DefaultUnit: "EUR"},

		// Debt schedule
		{Code: "debt_total", Name: "Total financial debt", Category: models.CategoryDebt, ValueKind: models.ValueKindStock, DefaultUnit: "EUR"},
		{Code: "debt_short_term", Name: "Short-term debt", Category: models.CategoryDebt, ValueKind: models.ValueKindStock, DefaultUnit: "EUR"},
		{Code: "debt_long_term", Name: "Long-term debt", Category: models.CategoryDebt, ValueKind: models.ValueKindStock, DefaultUnit: "EUR"},
		{Code: "debt_service", Name: "Debt service", Category: models.CategoryDebt, ValueKind: models.ValueKindFlow, DefaultUnit: "EUR"},

		// Operational
		{Code: "variable_costs", Name: "Variable costs", Category: models.CategoryOperational, ValueKind: models.ValueKindFlow, DefaultUnit: "EUR"},
		{Code: "fixed_costs", Name: "Fixed costs", Category: models.CategoryOperational, ValueKind: models.ValueKindFlow, DefaultUnit: "EUR"},
		{Code: "headcount", Name: "Headcount", Category: models.CategoryOperational, ValueKind: models.ValueKindStock, DefaultUnit: "people"},
	}
}

// defaultAliases maps metric codes to case/accent-insensitive substring
// patterns. More specific (longer) patterns are always tried first, so
// "activo no corriente" can never be absorbed by "activo corriente" or a bare
// "activo". Declaration order is the tiebreak for equal-length patterns.
var defaultAliases = []Alias{
	{Code: "current_assets_total", Patterns: []string{"activo corriente", "activos corrientes", "total current assets", "current assets"}},
	{Code: "noncurrent_assets_total", Patterns: []string{"activo no corriente", "activos no corrientes", "total non-current assets", "non-current assets", "noncurrent assets"}},
	{Code: "assets_total", Patterns: []string{"total activo", "activo total", "total assets", "activo"}},
	{Code: "current_liabilities_total", Patterns: []string{"pasivo corriente", "pasivos corrientes", "total current liabilities", "current liabilities"}},
	{Code: "noncurrent_liabilities_total", Patterns: []string{"pasivo no corriente", "pasivos no corrientes", "total non-current liabilities", "non-current liabilities"}},
	{Code: "liabilities_total", Patterns: []string{"total pasivo", "pasivo total", "total liabilities", "pasivo"}},
	{Code: "equity_total", Patterns: []string{"patrimonio neto", "fondos propios", "total equity", "shareholders equity", "patrimonio"}},
	{Code: "cash_equivalents", Patterns: []string{"efectivo y equivalentes", "tesoreria", "efectivo", "cash and equivalents", "caja"}},
	{Code: "short_term_investments", Patterns: []string{"inversiones financieras temporales", "inversiones a corto plazo", "short-term investments"}},
	{Code: "accounts_receivable", Patterns: []string{"deudores comerciales", "clientes por ventas", "cuentas por cobrar", "accounts receivable", "deudores", "clientes"}},
	{Code: "inventory", Patterns: []string{"existencias", "inventario", "inventories", "inventory"}},

	{Code: "revenue_total", Patterns: []string{"importe neto de la cifra de negocios", "ingresos por ventas", "cifra de negocios", "ingresos", "ventas", "revenue", "sales"}},
	{Code: "cost_of_sales", Patterns: []string{"coste de ventas", "costo de ventas", "aprovisionamientos", "cost of sales", "cost of goods sold"}},
	{Code: "personnel_costs", Patterns: []string{"gastos de personal", "sueldos y salarios", "personnel costs", "staff costs"}},
	{Code: "operating_expenses", Patterns: []string{"otros gastos de explotacion", "gastos de explotacion", "gastos operativos", "operating expenses"}},
	{Code: "ebitda", Patterns: []string{"resultado bruto de explotacion", "ebitda"}},
	{Code: "depreciation_amortization", Patterns: []string{"amortizacion del inmovilizado", "amortizaciones", "amortizacion", "depreciacion", "depreciation", "amortization"}},
	{Code: "operating_income", Patterns: []string{"resultado de explotacion", "resultado operativo", "operating income", "operating profit", "ebit"}},
	{Code: "interest_expense", Patterns: []string{"gastos financieros", "intereses", "interest expense"}},
	{Code: "tax_expense", Patterns: []string{"impuesto sobre beneficios", "impuesto de sociedades", "impuestos", "income tax"}},
	{Code: "net_income", Patterns: []string{"resultado del ejercicio", "beneficio neto", "resultado neto", "net income", "net profit"}},

	{Code: "cfo_total", Patterns: []string{"flujos de efectivo de las actividades de explotacion", "flujo de caja operativo", "flujo operativo", "cash from operations", "operating cash flow"}},
	{Code: "cfi_total", Patterns: []string{"flujos de efectivo de las actividades de inversion", "flujo de caja de inversion", "cash from investing", "investing cash flow"}},
	{Code: "cff_total", Patterns: []string{"flujos de efectivo de las actividades de financiacion", "flujo de caja de financiacion", "cash from financing", "financing cash flow"}},
	{Code: "capex", Patterns: []string{"inversiones en inmovilizado", "capex", "capital expenditure"}},
	{Code: "net_cash_change", Patterns: []string{"variacion neta de efectivo", "net change in cash"}},

	{Code: "debt_short_term", Patterns: []string{"deuda a corto plazo", "deudas a corto plazo", "short-term debt"}},
	{Code: "debt_long_term", Patterns: []string{"deuda a largo plazo", "deudas a largo plazo", "long-term debt"}},
	{Code: "debt_total", Patterns: []string{"deuda financiera total", "deuda financiera", "total debt", "deuda"}},
	{Code: "debt_service", Patterns: []string{"servicio de la deuda", "debt service", "cuota prestamo"}},

	{Code: "variable_costs", Patterns: []string{"costes variables", "costos variables", "variable costs"}},
	{Code: "fixed_costs", Patterns: []string{"costes fijos", "costos fijos", "fixed costs"}},
	{Code: "headcount", Patterns: []string{"numero de empleados", "plantilla", "headcount", "empleados"}},
}
