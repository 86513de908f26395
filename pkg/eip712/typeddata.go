package eip712

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

var typedDataTypes = apitypes.Types{
	"EIP712Domain": []apitypes.Type{
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint128"},
		{Name: "verifyingContract", Type: "address"},
	},
	"Order": []apitypes.Type{
		{Name: "flags", Type: "bytes8"},
		{Name: "quantity", Type: "uint128"},
		{Name: "price", Type: "uint128"},
		{Name: "triggerPrice", Type: "uint128"},
		{Name: "leverage", Type: "uint128"},
		{Name: "maker", Type: "address"},
		{Name: "expiration", Type: "uint128"},
	},
}

// TypedData returns the order as eth_signTypedData_v4 input, for wallets that sign
// structured data themselves. Only salts below 2^60 fit the bytes8 member.
func (e *Encoder) TypedData(order *Order) (apitypes.TypedData, error) {
	flags, err := order.FlagsWord()
	if err != nil {
		return apitypes.TypedData{}, err
	}

	return apitypes.TypedData{
		Types:       typedDataTypes,
		PrimaryType: "Order",
		Domain: apitypes.TypedDataDomain{
			Name:              e.domain.Name,
			Version:           e.domain.Version,
			ChainId:           (*math.HexOrDecimal256)(e.domain.ChainID),
			VerifyingContract: e.domain.VerifyingContract,
		},
		Message: apitypes.TypedDataMessage{
			"flags":        hexutil.Encode(flags),
			"quantity":     order.Quantity,
			"price":        order.Price,
			"triggerPrice": order.triggerPrice(),
			"leverage":     order.Leverage,
			"maker":        order.Maker,
			"expiration":   order.Expiration,
		},
	}, nil
}

// TypedDataJSON renders TypedData for MetaMask-style wallets.
func (e *Encoder) TypedDataJSON(order *Order) (string, error) {
	td, err := e.TypedData(order)
	if err != nil {
		return "", err
	}
	b, err := json.MarshalIndent(td, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(b), nil
}
