package usecases

import (
	"strings"

	"github.com/shopspring/decimal"
	"mountainshares.backend/internal/domain/entities"
	domainerrors "mountainshares.backend/internal/domain/errors"
)

var (
	loadingFeeRate    = decimal.RequireFromString("0.02")
	processingFeeRate = decimal.RequireFromString("0.029")
	processingFixed   = decimal.RequireFromString("0.30")

	// Regional buffer: never below 0.5%, plus surcharges for non-US cards
	// and non-USD presentment.
	regionalBaseRate   = decimal.RequireFromString("0.005")
	nonUSCardSurcharge = decimal.RequireFromString("0.015")
	nonUSDSurcharge    = decimal.RequireFromString("0.01")

	defaultTokenPrice = decimal.NewFromInt(1)
)

// QuoteInput describes a prospective purchase for pricing.
type QuoteInput struct {
	Quantity    decimal.Decimal
	TokenPrice  decimal.Decimal
	CardCountry string
	Currency    string
}

// FeeQuoteUsecase prices a token purchase: subtotal plus loading, regional
// and card processing fees. Every fee is ceiled to whole cents so the quoted
// total always covers the real cost.
type FeeQuoteUsecase struct{}

func NewFeeQuoteUsecase() *FeeQuoteUsecase {
	return &FeeQuoteUsecase{}
}

func (u *FeeQuoteUsecase) Quote(in QuoteInput) (*entities.PurchaseQuote, error) {
	if !in.Quantity.IsPositive() {
		return nil, domainerrors.BadRequest("quantity must be positive")
	}
	price := in.TokenPrice
	if price.IsZero() {
		price = defaultTokenPrice
	}
	if price.IsNegative() {
		return nil, domainerrors.BadRequest("token price must be positive")
	}

	subtotal := in.Quantity.Mul(price).Round(moneyPlaces)
	loading := ceilCents(subtotal.Mul(loadingFeeRate))
	regional := ceilCents(subtotal.Mul(u.regionalRate(in.CardCountry, in.Currency)))
	processing := ceilCents(subtotal.Add(loading).Add(regional).Mul(processingFeeRate).Add(processingFixed))

	return &entities.PurchaseQuote{
		Quantity:      in.Quantity,
		TokenPrice:    price,
		Subtotal:      subtotal,
		LoadingFee:    loading,
		ProcessingFee: processing,
		RegionalFee:   regional,
		Total:         subtotal.Add(loading).Add(regional).Add(processing),
	}, nil
}

func (u *FeeQuoteUsecase) regionalRate(cardCountry, currency string) decimal.Decimal {
	rate := regionalBaseRate
	if cardCountry != "" && !strings.EqualFold(cardCountry, "US") {
		rate = rate.Add(nonUSCardSurcharge)
	}
	if currency != "" && !strings.EqualFold(currency, "usd") {
		rate = rate.Add(nonUSDSurcharge)
	}
	return rate
}

func ceilCents(d decimal.Decimal) decimal.Decimal {
	return d.Shift(moneyPlaces).Ceil().Shift(-moneyPlaces)
}
