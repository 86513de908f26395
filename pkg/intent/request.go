package intent

import (
	"encoding/json"

	"github.com/uhyunpark/perpsign/pkg/codec"
)

// ClientID identifies this library in order requests.
const ClientID = "perpsign-go"

// OrderRequest is the body the venue accepts for a signed order.
type OrderRequest struct {
	OrderbookOnly  bool        `json:"orderbookOnly"`
	Symbol         string      `json:"symbol"`
	Price          string      `json:"price"`
	Quantity       string      `json:"quantity"`
	TriggerPrice   string      `json:"triggerPrice"`
	Leverage       string      `json:"leverage"`
	UserAddress    string      `json:"userAddress"`
	OrderType      OrderType   `json:"orderType"`
	Side           string      `json:"side"`
	ReduceOnly     bool        `json:"reduceOnly"`
	Salt           json.Number `json:"salt"`
	Expiration     json.Number `json:"expiration"`
	OrderSignature string      `json:"orderSignature"`
	TimeInForce    TimeInForce `json:"timeInForce"`
	PostOnly       bool        `json:"postOnly"`
	CancelOnRevert bool        `json:"cancelOnRevert"`
	ClientID       string      `json:"clientId"`
}

// NewOrderRequest pairs an order with its signature. Salt and expiration are
// sent as JSON numbers.
func NewOrderRequest(o *Order, signature string) (*OrderRequest, error) {
	if _, err := codec.ParseUint("salt", o.Salt); err != nil {
		return nil, err
	}
	if _, err := codec.ParseUint("expiration", o.Expiration); err != nil {
		return nil, err
	}

	orderType, tif := o.OrderType, o.TimeInForce
	if orderType == "" {
		orderType = OrderTypeLimit
	}
	if tif == "" {
		tif = TimeInForceGTT
	}

	return &OrderRequest{
		OrderbookOnly:  o.OrderbookOnly,
		Symbol:         o.Market,
		Price:          o.Price,
		Quantity:       o.Quantity,
		TriggerPrice:   "0",
		Leverage:       o.Leverage,
		UserAddress:    o.Maker,
		OrderType:      orderType,
		Side:           o.Side(),
		ReduceOnly:     o.ReduceOnly,
		Salt:           json.Number(o.Salt),
		Expiration:     json.Number(o.Expiration),
		OrderSignature: signature,
		TimeInForce:    tif,
		PostOnly:       o.PostOnly,
		ClientID:       ClientID,
	}, nil
}

// CancelRequest is the body for cancelling orders by hash.
type CancelRequest struct {
	Symbol          string   `json:"symbol"`
	OrderHashes     []string `json:"orderHashes"`
	ParentAddress   string   `json:"parentAddress"`
	CancelSignature string   `json:"cancelSignature"`
}

// OrderResponse is the part of the venue's order reply the signer cares about.
type OrderResponse struct {
	Hash string `json:"hash"`
}
