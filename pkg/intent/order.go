package intent

import (
	"fmt"

	"github.com/uhyunpark/perpsign/pkg/codec"
)

type OrderType string

const (
	OrderTypeMarket OrderType = "MARKET"
	OrderTypeLimit  OrderType = "LIMIT"
)

type TimeInForce string

const (
	TimeInForceGTT TimeInForce = "GTT" // good till time
	TimeInForceIOC TimeInForce = "IOC" // immediate or cancel
	TimeInForceFOK TimeInForce = "FOK" // fill or kill
)

// Flag bits, ascending: ioc, postOnly, reduceOnly, isBuy, orderbookOnly.
const (
	bitIOC = iota
	bitPostOnly
	bitReduceOnly
	bitIsBuy
	bitOrderbookOnly
)

// Order is an intent-venue order. Numeric fields are base-10 integers; Price,
// Quantity and Leverage are in 1e18 fixed point and Expiration is unix milliseconds.
// Maker is the 0x-prefixed chain address of the signer and Market the symbol
// the MarketResolver maps to an object id.
type Order struct {
	Market        string
	IsBuy         bool
	ReduceOnly    bool
	PostOnly      bool
	OrderbookOnly bool
	IOC           bool
	OrderType     OrderType
	TimeInForce   TimeInForce
	Price         string
	Quantity      string
	Leverage      string
	Salt          string
	Expiration    string
	Maker         string
}

// Flags packs the boolean attributes into one byte.
func (o *Order) Flags() byte {
	return codec.PackFlags(
		codec.Flag{Set: o.IOC, Bit: bitIOC},
		codec.Flag{Set: o.PostOnly, Bit: bitPostOnly},
		codec.Flag{Set: o.ReduceOnly, Bit: bitReduceOnly},
		codec.Flag{Set: o.IsBuy, Bit: bitIsBuy},
		codec.Flag{Set: o.OrderbookOnly, Bit: bitOrderbookOnly},
	)
}

// Side is the venue's textual side.
func (o *Order) Side() string {
	if o.IsBuy {
		return "BUY"
	}
	return "SELL"
}

// Validate checks the fields that do not take part in the hash.
// An empty order type or time in force is accepted and left to the venue's defaults.
func (o *Order) Validate() error {
	if o.Market == "" {
		return fmt.Errorf("order market is empty")
	}
	switch o.OrderType {
	case "", OrderTypeMarket, OrderTypeLimit:
	default:
		return fmt.Errorf("unknown order type %q", o.OrderType)
	}
	switch o.TimeInForce {
	case "", TimeInForceGTT, TimeInForceIOC, TimeInForceFOK:
	default:
		return fmt.Errorf("unknown time in force %q", o.TimeInForce)
	}
	return nil
}
