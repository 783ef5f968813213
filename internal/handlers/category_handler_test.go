package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"fundledger/internal/ledger"
)

func TestListCategories(t *testing.T) {
	r := gin.New()
	r.GET("/categories", ListCategories)

	rec := doRequest(r, "GET", "/categories", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	cats := parseJSON(t, rec)["categories"].([]interface{})
	if len(cats) != len(ledger.Categories) {
		t.Fatalf("expected %d categories, got %d", len(ledger.Categories), len(cats))
	}
	for i, raw := range cats {
		cat := raw.(map[string]interface{})
		if cat["code"] != string(ledger.Categories[i]) {
			t.Errorf("categories[%d].code = %v, want %s", i, cat["code"], ledger.Categories[i])
		}
		if cat["label"] == "" {
			t.Errorf("categories[%d] has no label", i)
		}
	}
}
