package common

import (
	"strings"
	"testing"
)

func TestGenerateTrxNo(t *testing.T) {
	trx := GenerateTrxNo()
	if len(trx) != 7 {
		t.Errorf("Expected length 7, got %d", len(trx))
	}

	for _, char := range trx {
		if !strings.ContainsRune(codeCharacters, char) {
			t.Errorf("Invalid character found: %c", char)
		}
	}
}

func TestGenerateReferralCode(t *testing.T) {
	code := GenerateReferralCode("alexd")
	if !strings.HasPrefix(code, "ALEXD") {
		t.Errorf("Expected code to start with ALEXD, got %s", code)
	}
	if len(code) != len("ALEXD")+4 {
		t.Errorf("Expected 4-char suffix, got %s", code)
	}

	// Non-alphanumeric usernames still produce a usable code.
	code = GenerateReferralCode("___")
	if !strings.HasPrefix(code, "REF") {
		t.Errorf("Expected fallback REF prefix, got %s", code)
	}

	// Long usernames are truncated to keep codes short.
	code = GenerateReferralCode("averylongusername")
	if len(code) > 12 {
		t.Errorf("Expected at most 12 chars, got %s", code)
	}
}

func TestPaginateResponse(t *testing.T) {
	total := int64(100)
	page := 1
	limit := 10
	data := []string{"item1", "item2"}

	res := PaginateResponse(data, total, page, limit, "")

	if res.CurrentPage != 1 {
		t.Errorf("Expected CurrentPage 1, got %d", res.CurrentPage)
	}
	if res.LastPage != 10 {
		t.Errorf("Expected LastPage 10, got %d", res.LastPage)
	}
	if res.NextPage != 2 {
		t.Errorf("Expected NextPage 2, got %d", res.NextPage)
	}
	if res.PrevPage != 0 {
		t.Errorf("Expected PrevPage 0, got %d", res.PrevPage)
	}
	if res.Count != 100 {
		t.Errorf("Expected Count 100, got %d", res.Count)
	}

	// Last page has no next.
	page = 10
	res = PaginateResponse(data, total, page, limit, "")
	if res.NextPage != 0 {
		t.Errorf("Expected NextPage 0 for last page, got %d", res.NextPage)
	}

	// Middle page has both neighbours.
	page = 5
	res = PaginateResponse(data, total, page, limit, "")
	if res.PrevPage != 4 {
		t.Errorf("Expected PrevPage 4, got %d", res.PrevPage)
	}
	if res.NextPage != 6 {
		t.Errorf("Expected NextPage 6, got %d", res.NextPage)
	}
}
