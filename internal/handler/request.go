package handler

import (
	"github.com/apollodao/cw-dex-sub000/pkg/amm"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// parseOptionalAmount returns nil for an empty string.
func parseOptionalAmount(s string) (*uint256.Int, error) {
	if s == "" {
		return nil, nil
	}
	v, err := amm.ParseAmount(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// assetView is an asset as the API reports it. Display is the amount in
// whole units and is only set when the asset's precision is known.
type assetView struct {
	ID      amm.AssetIdentity `json:"id"`
	Amount  string            `json:"amount"`
	Display string            `json:"display,omitempty"`
}

func viewAsset(a amm.Asset, precisions amm.PrecisionTable) assetView {
	v := assetView{ID: a.ID, Amount: a.Amount.Dec()}
	if prec, ok := precisions[a.ID]; ok {
		v.Display = scaled(&a.Amount, prec)
	}
	return v
}

func viewAssets(assets []amm.Asset, precisions amm.PrecisionTable) []assetView {
	out := make([]assetView, len(assets))
	for i := range assets {
		out[i] = viewAsset(assets[i], precisions)
	}
	return out
}

// scaled renders v / 10^prec without rounding.
func scaled(v *uint256.Int, prec uint8) string {
	return decimal.NewFromBigInt(v.ToBig(), -int32(prec)).String()
}
