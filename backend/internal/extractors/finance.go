package extractors

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"lifegraph/backend/internal/graph"
)

// financeExtractor normalizes expense statements into amount, currency and
// vendor fields
type financeExtractor struct{}

// NewFinance creates the finance extractor
func NewFinance() Extractor {
	return &financeExtractor{}
}

func (f *financeExtractor) Kind() Kind {
	return KindFinance
}

var (
	amountPattern = regexp.MustCompile(`([$€£])?\s?(\d+(?:,\d{3})*(?:\.\d{1,2})?)\s?(dollars|bucks|euros|pounds|usd|eur|gbp)?`)
	vendorPattern = regexp.MustCompile(`\b(?:at|from|to)\s+((?:[A-Z][\w'&.-]*)(?:\s+[A-Z][\w'&.-]*)*)`)
)

var currencySymbols = map[string]string{
	"$": "USD", "€": "EUR", "£": "GBP",
	"dollars": "USD", "bucks": "USD", "usd": "USD",
	"euros": "EUR", "eur": "EUR",
	"pounds": "GBP", "gbp": "GBP",
}

func (f *financeExtractor) CreateComponent(ctx context.Context, data map[string]interface{}, shared *Shared) (graph.Component, error) {
	raw := stringField(data, "raw", stringField(data, "original_query_part", shared.Query))

	component := graph.Component{
		"amount":   0.0,
		"currency": "USD",
		"vendor":   "",
	}

	if amount, ok := floatField(data, "amount"); ok {
		component["amount"] = amount
	} else if match := amountPattern.FindStringSubmatch(raw); match != nil {
		cleaned := strings.ReplaceAll(match[2], ",", "")
		if amount, err := strconv.ParseFloat(cleaned, 64); err == nil {
			component["amount"] = amount
		}
		if symbol := match[1]; symbol != "" {
			component["currency"] = currencySymbols[symbol]
		} else if word := strings.ToLower(match[3]); word != "" {
			component["currency"] = currencySymbols[word]
		}
	}

	if currency := stringField(data, "currency", ""); currency != "" {
		component["currency"] = strings.ToUpper(currency)
	}

	if vendor := stringField(data, "vendor", ""); vendor != "" {
		component["vendor"] = vendor
	} else if match := vendorPattern.FindStringSubmatch(raw); match != nil {
		component["vendor"] = match[1]
	}

	if category := stringField(data, "category", ""); category != "" {
		component["category"] = category
	}
	if date := stringField(data, "date", ""); date != "" {
		component["date"] = date
	}

	return component, nil
}
