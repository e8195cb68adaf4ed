package postgres

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"mezgeb/internal/core/entity"
	"mezgeb/internal/core/id"
)

type mockInvoice struct {
	entity.Document
	CustomerName string          `db:"customer_name" json:"customerName"`
	Subtotal     decimal.Decimal `db:"subtotal" json:"subtotal"`
	Internal     string          `db:"-" json:"-"`
	NoTag        string
}

func TestExtractDBColumns_EmbeddedDocument(t *testing.T) {
	cols := ExtractDBColumns[mockInvoice]()

	expectedCols := []string{
		"id", "tenant_id", "deletion_mark", "version",
		"created_at", "updated_at", "created_by", "updated_by",
		"number", "seq_value", "year", "date", "comment",
		"customer_name", "subtotal",
	}

	for _, expected := range expectedCols {
		assert.Contains(t, cols, expected)
	}

	assert.NotContains(t, cols, "-")
	assert.NotContains(t, cols, "Internal")
	assert.NotContains(t, cols, "NoTag")
}

func TestStructToMap_EmbeddedDocument(t *testing.T) {
	doc := mockInvoice{
		Document:     entity.NewDocument("tenant-1"),
		CustomerName: "Abebe Trading",
		Subtotal:     decimal.RequireFromString("115.00"),
		Internal:     "skip me",
	}
	doc.Number = "ABC-CS-2025-0001"
	doc.SeqValue = 1
	doc.Year = 2025

	m := StructToMap(doc)

	assert.Equal(t, doc.ID, m["id"])
	assert.Equal(t, "tenant-1", m["tenant_id"])
	assert.Equal(t, "ABC-CS-2025-0001", m["number"])
	assert.Equal(t, int64(1), m["seq_value"])
	assert.Equal(t, 2025, m["year"])
	assert.Equal(t, "Abebe Trading", m["customer_name"])
	assert.Equal(t, doc.Subtotal, m["subtotal"])

	_, hasInternal := m["Internal"]
	assert.False(t, hasInternal)
}

func TestStructToMap_PointerAndNonStruct(t *testing.T) {
	doc := &mockInvoice{Document: entity.NewDocument("tenant-2")}
	doc.ID = id.New()

	m := StructToMap(doc)
	assert.Equal(t, doc.ID, m["id"])

	assert.Nil(t, StructToMap(42))
}
