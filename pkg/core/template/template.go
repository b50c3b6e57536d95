// Package template generates the downloadable CSV skeletons that guide users
// toward the supported upload schema. Static output, not part of the
// ingestion pipeline proper.
package template

import (
	"encoding/csv"
	"fmt"
	"strings"

	"finsight/pkg/models"
)

var headers = []string{"Concepto", "Periodo", "Año", "Importe", "Sección", "Moneda", "Notas"}

var samples = map[models.Category][][]string{
	models.CategoryPyG: {
		{"Ingresos por ventas", "2024-01", "2024", "125000.50", "", "EUR", ""},
		{"Coste de ventas", "2024-01", "2024", "-48000", "", "EUR", ""},
		{"Gastos de personal", "2024-01", "2024", "-31000", "", "EUR", ""},
		{"Resultado neto", "2024-01", "2024", "22000", "", "EUR", ""},
	},
	models.CategoryBalance: {
		{"Activo Corriente", "", "2024", "850000", "activo", "EUR", ""},
		{"Activo No Corriente", "", "2024", "1200000", "activo", "EUR", ""},
		{"Pasivo Corriente", "", "2024", "420000", "pasivo", "EUR", ""},
		{"Patrimonio Neto", "", "2024", "1630000", "pn", "EUR", ""},
	},
	models.CategoryCashflow: {
		{"Flujo de caja operativo", "", "2024", "95000", "", "EUR", ""},
		{"Flujo de caja de inversión", "", "2024", "-40000", "", "EUR", ""},
		{"Flujo de caja de financiación", "", "2024", "-20000", "", "EUR", ""},
	},
	models.CategoryDebt: {
		{"Deuda a corto plazo", "", "2024", "120000", "", "EUR", ""},
		{"Deuda a largo plazo", "", "2024", "480000", "", "EUR", ""},
		{"Servicio de la deuda", "", "2024", "65000", "", "EUR", ""},
	},
}

// Export builds the CSV skeleton for one document category: the supported
// headers plus a few sample rows.
func Export(category models.Category) (string, error) {
	rows, ok := samples[category]
	if !ok {
		return "", fmt.Errorf("no template for category %q", category)
	}
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write(headers); err != nil {
		return "", err
	}
	if err := w.WriteAll(rows); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Categories lists the categories a template exists for.
func Categories() []models.Category {
	return []models.Category{
		models.CategoryPyG,
		models.CategoryBalance,
		models.CategoryCashflow,
		models.CategoryDebt,
	}
}
