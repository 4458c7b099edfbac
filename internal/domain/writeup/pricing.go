package writeup

import "github.com/shopspring/decimal"

// DefaultVATRate is the UK standard rate.
var DefaultVATRate = decimal.NewFromFloat(0.20)

// PricedItem is the VAT breakdown of one authorized item.
type PricedItem struct {
	SourceKey string          `json:"sourceKey"`
	Label     string          `json:"label"`
	Net       decimal.Decimal `json:"net"`
	VAT       decimal.Decimal `json:"vat"`
	Gross     decimal.Decimal `json:"gross"`
}

// PricingSummary totals authorized work.
type PricingSummary struct {
	Items []PricedItem    `json:"items"`
	Net   decimal.Decimal `json:"net"`
	VAT   decimal.Decimal `json:"vat"`
	Gross decimal.Decimal `json:"gross"`
}

// PriceAuthorizedItems computes net, VAT and gross per VHC item and in total.
// Amounts are rounded half away from zero to pence per item; totals are the
// sum of the rounded item amounts so lines always add up.
func PriceAuthorizedItems(items []AuthorizedItem, vatRate decimal.Decimal) PricingSummary {
	summary := PricingSummary{
		Items: make([]PricedItem, 0, len(items)),
		Net:   decimal.Zero,
		VAT:   decimal.Zero,
		Gross: decimal.Zero,
	}
	for _, item := range items {
		if !item.IsVHC() {
			continue
		}
		label := item.DisplayLabel()
		if label == "" {
			continue
		}
		net := item.PartsCost.Add(item.LabourCost).Round(2)
		vat := net.Mul(vatRate).Round(2)
		gross := net.Add(vat)

		summary.Items = append(summary.Items, PricedItem{
			SourceKey: item.SourceKey(),
			Label:     label,
			Net:       net,
			VAT:       vat,
			Gross:     gross,
		})
		summary.Net = summary.Net.Add(net)
		summary.VAT = summary.VAT.Add(vat)
		summary.Gross = summary.Gross.Add(gross)
	}
	return summary
}
