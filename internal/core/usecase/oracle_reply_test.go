package usecase

import "testing"

func TestParseOracleReplyFull(t *testing.T) {
	info, found := ParseOracleReply("11Y-60-28712\nНаименование: Фильтр масляный\nЦена за штуку: 1250.50\nКоличество на складе: 14")
	if !found {
		t.Fatalf("expected a priced reply")
	}
	if info.Name != "Фильтр масляный" {
		t.Fatalf("unexpected name %q", info.Name)
	}
	if info.UnitPrice != 1250.50 {
		t.Fatalf("unexpected price %v", info.UnitPrice)
	}
	if info.Stock == nil || *info.Stock != 14 {
		t.Fatalf("unexpected stock %v", info.Stock)
	}
}

func TestParseOracleReplyCommaDecimal(t *testing.T) {
	info, found := ParseOracleReply("Цена за штуку: 99,90")
	if !found {
		t.Fatalf("expected a priced reply")
	}
	if info.UnitPrice != 99.90 {
		t.Fatalf("unexpected price %v", info.UnitPrice)
	}
	if info.Stock != nil {
		t.Fatalf("stock must be nil when absent, got %v", *info.Stock)
	}
}

func TestParseOracleReplyNotFoundMarker(t *testing.T) {
	// The marker wins even when other fields are present.
	_, found := ParseOracleReply("Артикул не найден\nЦена за штуку: 10.00")
	if found {
		t.Fatalf("not-found marker must suppress pricing")
	}
}

func TestParseOracleReplyUnparseable(t *testing.T) {
	cases := []string{
		"",
		"случайный текст без полей",
		"Наименование: Болт",
		"Цена за штуку: дорого",
	}
	for _, text := range cases {
		if _, found := ParseOracleReply(text); found {
			t.Fatalf("reply %q must not be treated as priced", text)
		}
	}
}
