package core

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDispatcher(t *testing.T) *DispatchStrategy {
	scenario, err := NewScenario(DefaultConfig())
	require.NoError(t, err)
	require.NotNil(t, scenario.Dispatcher())

	return scenario.Dispatcher()
}

// roundTrip renders a result the way it goes on the wire.
func roundTrip(t *testing.T, v interface{}) map[string]interface{} {
	bts, err := json.Marshal(v)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(bts, &out))

	return out
}

func TestDispatchLiterals(t *testing.T) {
	d := newTestDispatcher(t)

	cases := []struct {
		method string
		params []interface{}
		result interface{}
	}{
		{"eth_chainId", nil, "0xc7"},
		{"net_version", nil, "199"},
		{"eth_blockNumber", nil, "0x2"},
		{"eth_getBalance", []interface{}{testSafeOwner, "latest"}, "0xde0b6b3a7640000"},
		{"eth_getTransactionCount", []interface{}{testSafeOwner, "latest"}, "0x1"},
		{"eth_getCode", []interface{}{testSafeAddress, "latest"}, "0x60806040"},
		{"eth_getCode", []interface{}{common.HexToAddress(testSafeAddress).Hex(), "latest"}, "0x60806040"},
		{"eth_getCode", []interface{}{testTokenAddress, "latest"}, "0x"},
		{"eth_getCode", nil, "0x"},
		{"eth_gasPrice", nil, "0x3b9aca00"},
		{"eth_maxPriorityFeePerGas", nil, "0x77359400"},
		{"eth_estimateGas", []interface{}{map[string]interface{}{"to": testTokenAddress}}, "0x5208"},
		{"eth_syncing", nil, false},
		{"net_listening", nil, true},
		{"web3_clientVersion", nil, "chainsim/" + Version},
		{"eth_subscribe", []interface{}{"newHeads"}, "0x1"},
		{"totally_unknown", nil, "0x1"},
		{"", nil, "0x1"},
	}

	for _, c := range cases {
		assert.Equal(t, c.result, d.Dispatch(c.method, c.params), c.method)
	}
}

func TestDispatchCall(t *testing.T) {
	d := newTestDispatcher(t)

	name := d.Dispatch("eth_call", []interface{}{map[string]interface{}{"to": testTokenAddress, "data": "0x06fdde03"}, "latest"})
	assert.Equal(t, "Mock Token", unpack(t, stringType, name.(string)))

	// newer clients send "input" instead of "data"
	symbol := d.Dispatch("eth_call", []interface{}{map[string]interface{}{"to": testTokenAddress, "input": "0x95d89b41"}})
	assert.Equal(t, "MCK", unpack(t, stringType, symbol.(string)))

	assert.Equal(t, "0x", d.Dispatch("eth_call", []interface{}{map[string]interface{}{"to": "0x000000000000000000000000000000000000dead", "data": "0x06fdde03"}}))
	assert.Equal(t, "0x", d.Dispatch("eth_call", []interface{}{map[string]interface{}{"data": "0x06fdde03"}}))
	assert.Equal(t, "0x", d.Dispatch("eth_call", []interface{}{"garbage"}))
	assert.Equal(t, "0x", d.Dispatch("eth_call", nil))
}

func TestDispatchReceiptEchoesHash(t *testing.T) {
	d := newTestDispatcher(t)

	receipt := roundTrip(t, d.Dispatch("eth_getTransactionReceipt", []interface{}{"0xdeadbeef"}))

	assert.Equal(t, "0xdeadbeef", receipt["transactionHash"])
	assert.Equal(t, "0x1", receipt["status"])
	assert.Equal(t, "0x2", receipt["blockNumber"])
	assert.Equal(t, d.blockHash.Hex(), receipt["blockHash"])
}

func TestDispatchSendRawTransaction(t *testing.T) {
	d := newTestDispatcher(t)

	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	to := common.HexToAddress(testTokenAddress)
	tx, err := types.SignNewTx(key, types.LatestSignerForChainID(big.NewInt(199)), &types.DynamicFeeTx{
		ChainID:   big.NewInt(199),
		Nonce:     1,
		GasTipCap: big.NewInt(2000000000),
		GasFeeCap: big.NewInt(3000000000),
		Gas:       21000,
		To:        &to,
		Value:     big.NewInt(1),
	})
	require.NoError(t, err)

	raw, err := tx.MarshalBinary()
	require.NoError(t, err)

	rawHex := hexutil.Encode(raw)
	assert.Equal(t, tx.Hash().Hex(), d.Dispatch("eth_sendRawTransaction", []interface{}{rawHex}))
	assert.Equal(t, tx.Hash().Hex(), d.Dispatch("eth_sendRawTransaction", []interface{}{rawHex}))

	// without the 0x prefix it does not look like a transaction
	assert.Equal(t, PlaceholderTxHash, d.Dispatch("eth_sendRawTransaction", []interface{}{common.Bytes2Hex(raw)}))
	assert.Equal(t, PlaceholderTxHash, d.Dispatch("eth_sendRawTransaction", []interface{}{"0x"}))
	assert.Equal(t, PlaceholderTxHash, d.Dispatch("eth_sendRawTransaction", []interface{}{42}))
	assert.Equal(t, PlaceholderTxHash, d.Dispatch("eth_sendRawTransaction", nil))
	assert.Len(t, PlaceholderTxHash, 66)
}

func TestDispatchBlockIsConsistent(t *testing.T) {
	d := newTestDispatcher(t)

	bts, err := json.Marshal(d.Dispatch("eth_getBlockByNumber", []interface{}{"latest", false}))
	require.NoError(t, err)

	var header types.Header
	require.NoError(t, json.Unmarshal(bts, &header))

	var block map[string]interface{}
	require.NoError(t, json.Unmarshal(bts, &block))

	assert.Equal(t, uint64(2), header.Number.Uint64())
	assert.Equal(t, header.Hash().Hex(), block["hash"])
	assert.Equal(t, "0x2", block["number"])
	assert.Len(t, block["hash"], 66)
	assert.Len(t, block["parentHash"], 66)
	assert.Len(t, block["stateRoot"], 66)
	assert.Len(t, block["miner"], 42)
	assert.Len(t, block["nonce"], 18)
	assert.Len(t, block["logsBloom"], 2+512)
	assert.Equal(t, []interface{}{}, block["transactions"])

	// any block tag gets the same head
	again, err := json.Marshal(d.Dispatch("eth_getBlockByNumber", []interface{}{"0x1", true}))
	require.NoError(t, err)
	assert.Equal(t, string(bts), string(again))
}

func TestDispatchFeeHistory(t *testing.T) {
	d := newTestDispatcher(t)

	history := roundTrip(t, d.Dispatch("eth_feeHistory", []interface{}{"0x1", "latest", []interface{}{50}}))

	assert.Equal(t, "0x2", history["oldestBlock"])
	assert.Equal(t, []interface{}{"0x3b9aca00", "0x3b9aca00"}, history["baseFeePerGas"])
	assert.Equal(t, []interface{}{0.5}, history["gasUsedRatio"])
	assert.Equal(t, []interface{}{[]interface{}{"0x77359400"}}, history["reward"])
}

func TestDispatchDeterministic(t *testing.T) {
	d := newTestDispatcher(t)
	other := newTestDispatcher(t)

	for method := range methodTable {
		params := []interface{}{map[string]interface{}{"to": testTokenAddress, "data": "0x70a08231"}, "latest"}

		first, err := json.Marshal(d.Dispatch(string(method), params))
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			again, err := json.Marshal(d.Dispatch(string(method), params))
			require.NoError(t, err)
			assert.Equal(t, string(first), string(again), method)

			fresh, err := json.Marshal(other.Dispatch(string(method), params))
			require.NoError(t, err)
			assert.Equal(t, string(first), string(fresh), method)
		}
	}
}

func TestIsKnownMethod(t *testing.T) {
	assert.True(t, IsKnownMethod("eth_call"))
	assert.True(t, IsKnownMethod("eth_getTransactionReceipt"))
	assert.False(t, IsKnownMethod("eth_getLogs"))
}
