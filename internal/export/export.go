// Package export renders items as tab-separated rows for pasting into a
// spreadsheet.
package export

import (
	"strings"

	"github.com/idilsaglam/quickcollect/internal/model"
)

var (
	HeaderEN = []string{"Title", "Price", "Stock", "Description", "Remarks"}
	HeaderZH = []string{"标题", "价格", "库存", "文案", "备注"}
)

// HeaderFor returns the column labels for a locale; unknown locales get English.
func HeaderFor(locale string) []string {
	switch strings.ToLower(locale) {
	case "zh", "zh-cn", "cn":
		return HeaderZH
	default:
		return HeaderEN
	}
}

// Exporter controls labels and single-row newline handling.
// The zero value behaves like ExportAll/ExportOne.
type Exporter struct {
	Header []string
	// FlattenSingle applies the bulk newline flattening to single rows too.
	FlattenSingle bool
}

var std = Exporter{}

// ExportAll renders a header row followed by one row per item.
func ExportAll(items []model.Item) string { return std.All(items) }

// ExportOne renders a single row without a header. Newlines in the
// description are kept and empty remarks stay empty.
func ExportOne(item model.Item) string { return std.One(item) }

func (e Exporter) All(items []model.Item) string {
	header := e.Header
	if len(header) == 0 {
		header = HeaderEN
	}
	lines := make([]string, 0, len(items)+1)
	lines = append(lines, strings.Join(header, "\t"))
	for _, it := range items {
		lines = append(lines, strings.Join([]string{
			it.Title,
			orZero(it.Price),
			orZero(it.Stock),
			flatten(it.Description),
			orDash(it.Remarks),
		}, "\t"))
	}
	return strings.Join(lines, "\n")
}

func (e Exporter) One(it model.Item) string {
	desc := it.Description
	remarks := it.Remarks
	if e.FlattenSingle {
		desc = flatten(desc)
		remarks = orDash(remarks)
	}
	return strings.Join([]string{
		it.Title,
		orZero(it.Price),
		orZero(it.Stock),
		desc,
		remarks,
	}, "\t")
}

func flatten(s string) string { return strings.ReplaceAll(s, "\n", " ") }

func orZero(a model.Amount) string {
	if a == "" {
		return "0"
	}
	return string(a)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
