package payroll

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TaxPolicy computes income tax withheld from a monthly gross salary.
type TaxPolicy interface {
	Name() string
	Compute(gross decimal.Decimal) decimal.Decimal
}

const (
	TaxPolicyPAYE = "paye"
	TaxPolicyFlat = "flat"
)

// NewTaxPolicy builds the policy named by configuration.
func NewTaxPolicy(name string, flatRate decimal.Decimal) (TaxPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", TaxPolicyPAYE:
		return PAYEPolicy{}, nil
	case TaxPolicyFlat:
		if flatRate.IsNegative() || flatRate.GreaterThan(decimal.NewFromInt(1)) {
			return nil, fmt.Errorf("flat tax rate must be between 0 and 1, got %s", flatRate)
		}
		return FlatRatePolicy{Rate: flatRate}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownTaxPolicy, name)
}

type payeBand struct {
	above decimal.Decimal
	base  decimal.Decimal
	rate  decimal.Decimal
}

// Monthly resident bands, highest first.
var payeBands = []payeBand{
	{above: decimal.NewFromInt(410_000), base: decimal.NewFromInt(25_000), rate: decimal.RequireFromString("0.30")},
	{above: decimal.NewFromInt(335_000), base: decimal.NewFromInt(10_000), rate: decimal.RequireFromString("0.20")},
	{above: decimal.NewFromInt(235_000), base: decimal.Zero, rate: decimal.RequireFromString("0.10")},
}

var (
	payeSurchargeThreshold = decimal.NewFromInt(10_000_000)
	payeSurchargeRate      = decimal.RequireFromString("0.10")
)

// PAYEPolicy applies the Uganda PAYE monthly schedule for residents.
type PAYEPolicy struct{}

func (PAYEPolicy) Name() string { return TaxPolicyPAYE }

func (PAYEPolicy) Compute(gross decimal.Decimal) decimal.Decimal {
	if !gross.IsPositive() {
		return decimal.Zero
	}

	tax := decimal.Zero
	for _, band := range payeBands {
		if gross.GreaterThan(band.above) {
			tax = band.base.Add(gross.Sub(band.above).Mul(band.rate))
			break
		}
	}

	if gross.GreaterThan(payeSurchargeThreshold) {
		tax = tax.Add(gross.Sub(payeSurchargeThreshold).Mul(payeSurchargeRate))
	}

	return tax.Round(2)
}

// FlatRatePolicy withholds a fixed share of gross.
type FlatRatePolicy struct {
	Rate decimal.Decimal
}

func (FlatRatePolicy) Name() string { return TaxPolicyFlat }

func (p FlatRatePolicy) Compute(gross decimal.Decimal) decimal.Decimal {
	if !gross.IsPositive() {
		return decimal.Zero
	}
	return gross.Mul(p.Rate).Round(2)
}
