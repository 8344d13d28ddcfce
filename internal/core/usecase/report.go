package usecase

import (
	"fmt"
	"strings"

	"github.com/akozyrev/article-pricer/internal/core/domain"
)

// BuildReport formats a finalized job into the quote text sent back to the
// requester. It never mutates the job. The second return value is false when
// no item was priced by either source, in which case nothing is delivered.
func BuildReport(job *domain.Job, discountPercent float64) (string, bool) {
	if job.PricedCount() == 0 {
		return "", false
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📎 [Ссылка на пост](%s)\n\n", postLink(job.Request))

	var totalSum, totalDiscountSum float64
	discountFactor := 1 - discountPercent/100

	oraclePriced := itemsWithStatus(job, domain.ItemPricedByOracle)
	catalogPriced := itemsWithStatus(job, domain.ItemPricedByCatalog)
	unresolved := itemsWithStatus(job, domain.ItemUnresolved)

	if len(oraclePriced) > 0 {
		b.WriteString("✅ Расценены следующие артикулы:\n\n")
		for _, item := range oraclePriced {
			writePricedItem(&b, item, item.Oracle, discountPercent, discountFactor, &totalSum, &totalDiscountSum)
		}
	}

	if len(catalogPriced) > 0 {
		b.WriteString("🌐 Расценены по каталогу:\n\n")
		for _, item := range catalogPriced {
			writePricedItem(&b, item, item.Catalog, discountPercent, discountFactor, &totalSum, &totalDiscountSum)
		}
	}

	if len(unresolved) > 0 {
		b.WriteString("🚫 Не расценены следующие артикулы:\n")
		for _, item := range unresolved {
			fmt.Fprintf(&b, "• %s\n", item.Article)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "💵 Общая сумма: %.2f\n", totalSum)
	fmt.Fprintf(&b, "💳 Общая сумма со скидкой: %.2f\n", totalDiscountSum)

	return b.String(), true
}

func writePricedItem(
	b *strings.Builder,
	item *domain.LineItem,
	price *domain.PriceInfo,
	discountPercent, discountFactor float64,
	totalSum, totalDiscountSum *float64,
) {
	lineTotal := price.UnitPrice * item.Quantity
	discounted := lineTotal * discountFactor
	*totalSum += lineTotal
	*totalDiscountSum += discounted

	name := price.Name
	if name == "" {
		name = "Не указано"
	}
	stockInfo := ""
	if price.Stock != nil {
		stockInfo = fmt.Sprintf(" (%d на складе)", *price.Stock)
	}

	fmt.Fprintf(b, "🔹 Артикул: %s\n", item.Article)
	fmt.Fprintf(b, "🏷️ Наименование: %s\n", name)
	fmt.Fprintf(b, "📦 Запрошенное количество: %s%s\n", formatQuantity(item.Quantity), stockInfo)
	fmt.Fprintf(b, "💰 Цена за единицу: %.2f\n", price.UnitPrice)
	fmt.Fprintf(b, "🧮 Итого по позиции: %.2f\n", lineTotal)
	fmt.Fprintf(b, "🎁 Со скидкой %s%%: %.2f\n\n", formatQuantity(discountPercent), discounted)
}

func itemsWithStatus(job *domain.Job, status domain.ItemStatus) []*domain.LineItem {
	var out []*domain.LineItem
	for _, item := range job.Items {
		if item.Status == status {
			out = append(out, item)
		}
	}
	return out
}

// formatQuantity drops trailing zeros so "3" is not printed as "3.000000".
func formatQuantity(q float64) string {
	s := fmt.Sprintf("%.3f", q)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

func postLink(req domain.SourceRequest) string {
	// t.me/c links use the internal channel id, without the -100 prefix
	// Telegram puts on supergroup/channel chat ids.
	chat := req.ChatID
	if chat < 0 {
		chat = -chat
		const marker = int64(1000000000000)
		if chat > marker {
			chat = chat % marker
		}
	}
	return fmt.Sprintf("https://t.me/c/%d/%d", chat, req.MessageID)
}
