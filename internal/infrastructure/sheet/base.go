package sheet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Column layout of the price base workbook (first sheet): article in the
// second column, name in the third, unit price in the fourth, warehouse
// quantity in the fifth.
const (
	colArticle  = 1
	colName     = 2
	colPrice    = 3
	colQuantity = 4
)

// Item is one row of the price base.
type Item struct {
	Article  string
	Name     string
	Price    string
	Quantity string
}

// Format renders the reply the lookup bot sends for one matching row.
func (i Item) Format() string {
	return fmt.Sprintf(
		"📌 Наименование: %s\n💰 Цена за штуку: %s руб.\n📦 Количество на складе: %s",
		i.Name, i.Price, i.Quantity,
	)
}

// Base is the in-memory snapshot of the xlsx price base.
type Base struct {
	items []Item
}

// Load reads the first sheet of the workbook. Article cells are normalized
// in memory, the file itself is left untouched.
func Load(path string) (*Base, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open price base: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("price base has no sheets")
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read price base rows: %w", err)
	}

	base := &Base{}
	for _, row := range rows {
		if len(row) <= colArticle || strings.TrimSpace(row[colArticle]) == "" {
			continue
		}
		base.items = append(base.items, Item{
			Article:  strings.TrimSpace(row[colArticle]),
			Name:     cell(row, colName),
			Price:    FormatPrice(cell(row, colPrice)),
			Quantity: cellOr(row, colQuantity, "Не указано"),
		})
	}
	return base, nil
}

func (b *Base) Len() int {
	return len(b.items)
}

// Search matches the normalized query as a substring of the normalized
// article or name, the way the original base was queried.
func (b *Base) Search(query string) []Item {
	needle := NormalizeArticle(query)
	if needle == "" {
		return nil
	}

	var hits []Item
	for _, item := range b.items {
		if strings.Contains(NormalizeArticle(item.Article), needle) ||
			strings.Contains(NormalizeArticle(item.Name), needle) {
			hits = append(hits, item)
		}
	}
	return hits
}

// NormalizeArticle strips spaces and lowers the case so lookups survive the
// inconsistent spacing found in the base.
func NormalizeArticle(article string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(article), " ", ""))
}

// FormatPrice renders a numeric cell with two decimals and a comma decimal
// separator; non-numeric cells pass through unchanged.
func FormatPrice(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "Не указана"
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil {
		return raw
	}
	return strings.Replace(fmt.Sprintf("%.2f", value), ".", ",", 1)
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

func cellOr(row []string, idx int, fallback string) string {
	if v := cell(row, idx); v != "" {
		return v
	}
	return fallback
}
