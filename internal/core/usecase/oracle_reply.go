package usecase

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/akozyrev/article-pricer/internal/core/domain"
)

// The oracle answers with free text; there is no structured envelope and no
// request identifier. Parsing is best effort: an unparseable reply counts as
// a definitive "not found".
const oracleNotFoundMarker = "Артикул не найден"

var (
	oracleNameExpr  = regexp.MustCompile(`Наименование:\s*(.*)`)
	oraclePriceExpr = regexp.MustCompile(`Цена за штуку:\s*([\d.,]+)`)
	oracleStockExpr = regexp.MustCompile(`Количество на складе:\s*(\d+)`)
)

// ParseOracleReply extracts a price answer from raw oracle text. The second
// return value is false when the reply carries no unit price, which the
// engine treats as "not found".
func ParseOracleReply(text string) (domain.PriceInfo, bool) {
	var info domain.PriceInfo

	if strings.Contains(text, oracleNotFoundMarker) {
		return info, false
	}

	if m := oracleNameExpr.FindStringSubmatch(text); m != nil {
		info.Name = strings.TrimSpace(m[1])
	}

	m := oraclePriceExpr.FindStringSubmatch(text)
	if m == nil {
		return info, false
	}
	price, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil {
		return info, false
	}
	info.UnitPrice = price

	if m := oracleStockExpr.FindStringSubmatch(text); m != nil {
		if stock, err := strconv.Atoi(m[1]); err == nil {
			info.Stock = &stock
		}
	}

	return info, true
}
