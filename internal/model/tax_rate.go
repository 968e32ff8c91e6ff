package model

import "github.com/shopspring/decimal"

// TaxRate categories (Austrian VAT)
const (
	TaxRateStandard20 = "standard_20"
	TaxRateReduced10  = "reduced_10"
	TaxRateReduced13  = "reduced_13"
	TaxRateZero       = "zero"
)

var taxRatePercents = map[string]int64{
	TaxRateStandard20: 20,
	TaxRateReduced10:  10,
	TaxRateReduced13:  13,
	TaxRateZero:       0,
}

func ValidTaxRate(rate string) bool {
	_, ok := taxRatePercents[rate]
	return ok
}

// TaxRatePercent returns the rate in percent; unknown categories count as 0.
func TaxRatePercent(rate string) decimal.Decimal {
	return decimal.NewFromInt(taxRatePercents[rate])
}
