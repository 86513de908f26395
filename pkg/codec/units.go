package codec

import (
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// WeiDecimals is the fixed-point scale used for price, quantity and leverage.
const WeiDecimals = 18

// ToWei converts a human decimal amount ("1601", "0.01") to its 1e18-scaled integer.
// Amounts with more than 18 fractional digits or negative amounts are rejected.
func ToWei(field, amount string) (*uint256.Int, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, newError(ErrMalformedInteger, field, amount)
	}
	scaled := d.Shift(WeiDecimals)
	if scaled.IsNegative() || !scaled.IsInteger() {
		return nil, newError(ErrMalformedInteger, field, amount)
	}
	v, overflow := uint256.FromBig(scaled.BigInt())
	if overflow {
		return nil, newError(ErrValueOverflow, field, amount)
	}
	return v, nil
}

// ToWeiString is ToWei rendered back to base 10, the form order records carry.
func ToWeiString(field, amount string) (string, error) {
	v, err := ToWei(field, amount)
	if err != nil {
		return "", err
	}
	return v.Dec(), nil
}

// FromWei renders a 1e18-scaled integer as a plain decimal string.
func FromWei(v *uint256.Int) string {
	return decimal.NewFromBigInt(v.ToBig(), -WeiDecimals).String()
}
