package extractors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFinance_ParsesAmountAndVendor(t *testing.T) {
	extractor := NewFinance()
	shared := &Shared{Query: "I spent $25 at McDonald's", OwnerID: "owner-1"}

	component, err := extractor.CreateComponent(context.Background(),
		map[string]interface{}{"raw": "I spent $25 at McDonald's"}, shared)
	assert.NoError(t, err)
	assert.Equal(t, 25.0, component["amount"])
	assert.Equal(t, "USD", component["currency"])
	assert.Equal(t, "McDonald's", component["vendor"])
}

func TestFinance_StructuredFieldsWin(t *testing.T) {
	extractor := NewFinance()
	shared := &Shared{Query: "dinner was 30 euros at Luigi's", OwnerID: "owner-1"}

	component, err := extractor.CreateComponent(context.Background(), map[string]interface{}{
		"raw":      "dinner was 30 euros at Luigi's",
		"amount":   32.5,
		"currency": "eur",
		"vendor":   "Luigi's Trattoria",
		"category": "dining",
	}, shared)
	assert.NoError(t, err)
	assert.Equal(t, 32.5, component["amount"])
	assert.Equal(t, "EUR", component["currency"])
	assert.Equal(t, "Luigi's Trattoria", component["vendor"])
	assert.Equal(t, "dining", component["category"])
}

func TestFinance_CurrencyWords(t *testing.T) {
	extractor := NewFinance()

	cases := map[string]string{
		"paid 12 bucks at Subway":        "USD",
		"spent 40 pounds at Tesco":       "GBP",
		"it cost 1,250.75 euros at IKEA": "EUR",
	}
	for raw, want := range cases {
		component, err := extractor.CreateComponent(context.Background(),
			map[string]interface{}{"raw": raw}, &Shared{Query: raw})
		assert.NoError(t, err)
		assert.Equal(t, want, component["currency"], "raw: %s", raw)
	}
}

func TestFinance_DefaultsWhenNothingMatches(t *testing.T) {
	extractor := NewFinance()
	shared := &Shared{Query: "bought some groceries"}

	component, err := extractor.CreateComponent(context.Background(),
		map[string]interface{}{"raw": "bought some groceries"}, shared)
	assert.NoError(t, err)
	assert.Equal(t, 0.0, component["amount"])
	assert.Equal(t, "USD", component["currency"])
}
