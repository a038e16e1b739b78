package profile //nolint:testpackage // Needs access to unexported fields

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProducts() []Product {
	return []Product{
		{Name: "Bolt", Unit: "box", Price: 5},
		{Name: "Nut", Unit: "kg", Price: 2.5},
		{Name: "Washer", Unit: "packet", Price: 1},
	}
}

func TestNewDraft_ProductsNeverNil(t *testing.T) {
	d := NewDraft()

	assert.NotNil(t, d.Products)
	assert.Empty(t, d.Products)
}

func TestNormalize_RepairsNilProducts(t *testing.T) {
	var d Draft
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Acme"}`), &d))

	d.Normalize()

	assert.NotNil(t, d.Products)
}

func TestApplyExtraction_BusinessReplacesScalarsOnly(t *testing.T) {
	d := NewDraft()
	d.Products = sampleProducts()
	d.Phone = "1112223333"
	d.SourceFilename = "session_20240101_120000.json"

	fields := &Draft{
		PersonName: "Ravi Kumar",
		Name:       "Acme Traders",
		City:       "Pune",
		Category:   "Retail",
	}
	d.ApplyExtraction(fields, PhaseBusiness)

	assert.Equal(t, "Acme Traders", d.Name)
	assert.Equal(t, "Pune", d.City)
	// Scalars not present in the result are overwritten too: the business
	// phase replaces the whole scalar set.
	assert.Empty(t, d.Phone)
	// Products untouched, session attribution preserved.
	assert.Equal(t, sampleProducts(), d.Products)
	assert.Equal(t, "session_20240101_120000.json", d.SourceFilename)
}

func TestApplyExtraction_ProductsReplacedWholesale(t *testing.T) {
	d := NewDraft()
	d.Name = "Acme Traders"
	d.Products = sampleProducts()

	fields := &Draft{Products: []Product{{Name: "Hinge", Unit: "pcs", Price: 12}}}
	d.ApplyExtraction(fields, PhaseProducts)

	assert.Equal(t, "Acme Traders", d.Name, "scalars must survive the products phase")
	require.Len(t, d.Products, 1)
	assert.Equal(t, "Hinge", d.Products[0].Name)
}

func TestApplyExtraction_EmptyProductListClears(t *testing.T) {
	d := NewDraft()
	d.Products = sampleProducts()

	d.ApplyExtraction(NewDraft(), PhaseProducts)

	assert.NotNil(t, d.Products)
	assert.Empty(t, d.Products)
}

func TestAddProduct_AppendsBlank(t *testing.T) {
	d := NewDraft()
	d.Products = sampleProducts()

	idx := d.AddProduct()

	assert.Equal(t, 3, idx)
	require.Len(t, d.Products, 4)
	assert.Equal(t, Product{}, d.Products[3])
}

func TestRemoveProduct_ShiftsTailDown(t *testing.T) {
	d := NewDraft()
	d.Products = sampleProducts()

	require.NoError(t, d.RemoveProduct(1))

	require.Len(t, d.Products, 2)
	assert.Equal(t, "Bolt", d.Products[0].Name)
	assert.Equal(t, "Washer", d.Products[1].Name)
}

func TestRemoveProduct_OutOfBounds(t *testing.T) {
	d := NewDraft()
	d.Products = sampleProducts()

	assert.ErrorIs(t, d.RemoveProduct(3), ErrIndexOutOfRange)
	assert.ErrorIs(t, d.RemoveProduct(-1), ErrIndexOutOfRange)
	assert.Len(t, d.Products, 3, "failed removal must not alter the list")
}

func TestUpdateProductField_ParsesPrice(t *testing.T) {
	d := NewDraft()
	d.Products = []Product{{Name: "Bolt", Unit: "box", Price: 5}}

	require.NoError(t, d.UpdateProductField(0, "price", "7.5"))

	assert.Equal(t, Product{Name: "Bolt", Unit: "box", Price: 7.5}, d.Products[0])
}

func TestUpdateProductField_PermissivePriceDefaultsToZero(t *testing.T) {
	d := NewDraft()
	d.AddProduct()

	require.NoError(t, d.UpdateProductField(0, "price", "not a number"))
	assert.Zero(t, d.Products[0].Price)

	require.NoError(t, d.UpdateProductField(0, "price", "-4"))
	assert.Zero(t, d.Products[0].Price)
}

func TestUpdateProductField_GrowsSparseIndex(t *testing.T) {
	d := NewDraft()

	require.NoError(t, d.UpdateProductField(2, "name", "Hinge"))

	require.Len(t, d.Products, 3)
	assert.Equal(t, "Hinge", d.Products[2].Name)
	assert.Equal(t, Product{}, d.Products[0])
}

func TestUpdateProductField_NegativeIndex(t *testing.T) {
	d := NewDraft()

	assert.ErrorIs(t, d.UpdateProductField(-1, "name", "x"), ErrIndexOutOfRange)
}

func TestUpdateProductField_UnknownField(t *testing.T) {
	d := NewDraft()
	d.AddProduct()

	assert.ErrorIs(t, d.UpdateProductField(0, "color", "red"), ErrUnknownField)
}

func TestSetField(t *testing.T) {
	d := NewDraft()

	require.NoError(t, d.SetField("name", "Acme Traders"))
	require.NoError(t, d.SetField("phone", "9876543210"))

	assert.Equal(t, "Acme Traders", d.Name)
	assert.Equal(t, "9876543210", d.Phone)

	assert.ErrorIs(t, d.SetField("nope", "x"), ErrUnknownField)
}

func TestSummaryText(t *testing.T) {
	d := NewDraft()
	assert.Equal(t, "No products", d.SummaryText())

	d.Products = sampleProducts()
	assert.Equal(t, "Bolt, Nut, Washer", d.SummaryText())

	// Unnamed entries are skipped.
	d.Products = []Product{{Unit: "kg"}, {Name: "Nut"}}
	assert.Equal(t, "Nut", d.SummaryText())
}

func TestFieldConfidence(t *testing.T) {
	assert.Equal(t, ConfidenceLow, FieldConfidence(""))
	assert.Equal(t, ConfidenceLow, FieldConfidence("-"))
	assert.Equal(t, ConfidenceLow, FieldConfidence("No products"))
	assert.Equal(t, ConfidenceMed, FieldConfidence("Pune"))
	assert.Equal(t, ConfidenceMed, FieldConfidence("ok"))
	assert.Equal(t, ConfidenceHigh, FieldConfidence("14 MG Road, Bengaluru"))
}

func TestSessionFilename_RoundTrip(t *testing.T) {
	ts := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	name := NewSessionFilename(ts)

	assert.Equal(t, "session_20240101_120000.json", name)
	assert.Equal(t, "Jan 1, 2024 12:00", DisplayDate(name))
}

func TestDisplayDate_MalformedDegradesGracefully(t *testing.T) {
	for _, name := range []string{
		"notes.json",
		"session_2024_120000.json",
		"session_20240101_120000.txt",
		"session_99999999_999999.json",
		"",
	} {
		assert.Equal(t, "Unknown date", DisplayDate(name), "filename: %q", name)
	}
}

func TestDraft_JSONShape(t *testing.T) {
	d := NewDraft()
	d.Name = "Acme"
	d.Products = []Product{{Name: "Bolt", Unit: "box", Price: 5, Quantity: 1}}
	d.SourceFilename = "session_20240101_120000.json"

	raw, err := json.Marshal(d)
	require.NoError(t, err)

	assert.Contains(t, string(raw), `"gstNumber"`)
	assert.NotContains(t, string(raw), "SourceFilename", "source filename is never persisted")

	var back Draft
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, d.Name, back.Name)
	assert.Equal(t, d.Products, back.Products)
}
