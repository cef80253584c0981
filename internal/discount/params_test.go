package discount

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeParamsPercent(t *testing.T) {
	p, err := DecodeParams(KindPercentage, json.RawMessage(`{"bps":1500}`))
	require.NoError(t, err)
	require.NotNil(t, p.Percent)
	require.Equal(t, int32(1500), p.Percent.Bps)
}

func TestDecodeParamsRejectsZeroPercent(t *testing.T) {
	_, err := DecodeParams(KindPercentage, json.RawMessage(`{"bps":0}`))
	require.ErrorIs(t, err, ErrInvalidParams)
}

func TestDecodeParamsBuyXPayYNeedsExactlyOneMode(t *testing.T) {
	_, err := DecodeParams(KindBuyXPayY, json.RawMessage(`{"buyQty":2}`))
	require.ErrorIs(t, err, ErrInvalidParams)

	_, err = DecodeParams(KindBuyXPayY, json.RawMessage(`{"buyQty":2,"payAmount":55,"payQty":1}`))
	require.ErrorIs(t, err, ErrInvalidParams)

	p, err := DecodeParams(KindBuyXPayY, json.RawMessage(`{"buyQty":2,"payAmount":55}`))
	require.NoError(t, err)
	require.NotNil(t, p.BuyXPayY.PayAmount)
}

func TestDecodeParamsVolumeRules(t *testing.T) {
	_, err := DecodeParams(KindVolume, json.RawMessage(`{"rules":[]}`))
	require.ErrorIs(t, err, ErrInvalidParams)

	p, err := DecodeParams(KindVolume, json.RawMessage(`{"rules":[{"minQty":5,"discountBps":500}]}`))
	require.NoError(t, err)
	require.Len(t, p.Volume.Rules, 1)
}

func TestDecodeParamsGiftNeedsProduct(t *testing.T) {
	_, err := DecodeParams(KindFreeGift, json.RawMessage(`{"condition":"min_order_amount"}`))
	require.ErrorIs(t, err, ErrInvalidParams)
}

func TestDecodeParamsUnknownKind(t *testing.T) {
	_, err := DecodeParams(Kind("mystery"), nil)
	require.ErrorIs(t, err, ErrInvalidParams)
}
