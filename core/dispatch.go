package core

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

type Method string

const (
	MethodChainId               Method = "eth_chainId"
	MethodNetVersion            Method = "net_version"
	MethodNetListening          Method = "net_listening"
	MethodClientVersion         Method = "web3_clientVersion"
	MethodSyncing               Method = "eth_syncing"
	MethodAccounts              Method = "eth_accounts"
	MethodBlockNumber           Method = "eth_blockNumber"
	MethodGetBalance            Method = "eth_getBalance"
	MethodGetTransactionCount   Method = "eth_getTransactionCount"
	MethodGetCode               Method = "eth_getCode"
	MethodGasPrice              Method = "eth_gasPrice"
	MethodMaxPriorityFeePerGas  Method = "eth_maxPriorityFeePerGas"
	MethodFeeHistory            Method = "eth_feeHistory"
	MethodGetBlockByNumber      Method = "eth_getBlockByNumber"
	MethodEstimateGas           Method = "eth_estimateGas"
	MethodCall                  Method = "eth_call"
	MethodSendRawTransaction    Method = "eth_sendRawTransaction"
	MethodGetTransactionReceipt Method = "eth_getTransactionReceipt"
)

// DefaultResult answers every method outside methodTable.
const DefaultResult = "0x1"

// PlaceholderTxHash is returned by eth_sendRawTransaction when the payload is not hex.
const PlaceholderTxHash = "0xabababababababababababababababababababababababababababababababab"

type methodHandler func(d *DispatchStrategy, params []interface{}) interface{}

var methodTable = map[Method]methodHandler{
	MethodChainId:               (*DispatchStrategy).ethChainId,
	MethodNetVersion:            (*DispatchStrategy).netVersion,
	MethodNetListening:          (*DispatchStrategy).netListening,
	MethodClientVersion:         (*DispatchStrategy).web3ClientVersion,
	MethodSyncing:               (*DispatchStrategy).ethSyncing,
	MethodAccounts:              (*DispatchStrategy).ethAccounts,
	MethodBlockNumber:           (*DispatchStrategy).ethBlockNumber,
	MethodGetBalance:            (*DispatchStrategy).ethGetBalance,
	MethodGetTransactionCount:   (*DispatchStrategy).ethGetTransactionCount,
	MethodGetCode:               (*DispatchStrategy).ethGetCode,
	MethodGasPrice:              (*DispatchStrategy).ethGasPrice,
	MethodMaxPriorityFeePerGas:  (*DispatchStrategy).ethMaxPriorityFeePerGas,
	MethodFeeHistory:            (*DispatchStrategy).ethFeeHistory,
	MethodGetBlockByNumber:      (*DispatchStrategy).ethGetBlockByNumber,
	MethodEstimateGas:           (*DispatchStrategy).ethEstimateGas,
	MethodCall:                  (*DispatchStrategy).ethCall,
	MethodSendRawTransaction:    (*DispatchStrategy).ethSendRawTransaction,
	MethodGetTransactionReceipt: (*DispatchStrategy).ethGetTransactionReceipt,
}

// IsKnownMethod reports whether method has its own entry in the dispatch table.
func IsKnownMethod(method string) bool {
	_, ok := methodTable[Method(method)]
	return ok
}

// DispatchStrategy synthesizes successful results for every call.
type DispatchStrategy struct {
	chain       ChainConfig
	safeAddress string
	balance     string
	router      *CallRouter
	header      *types.Header
	blockHash   common.Hash
}

func newDispatchStrategy(chain ChainConfig, safeAddress string, router *CallRouter) *DispatchStrategy {
	balance, _ := parseBig(chain.Balance)
	if balance == nil {
		balance = new(big.Int)
	}

	header := newBlockHeader(chain)

	return &DispatchStrategy{
		chain:       chain,
		safeAddress: strings.ToLower(safeAddress),
		balance:     hexutil.EncodeBig(balance),
		router:      router,
		header:      header,
		blockHash:   header.Hash(),
	}
}

// Dispatch resolves one call. Unknown methods get DefaultResult.
func (d *DispatchStrategy) Dispatch(method string, params []interface{}) interface{} {
	handler, ok := methodTable[Method(method)]
	if !ok {
		return DefaultResult
	}

	return handler(d, params)
}

func (d *DispatchStrategy) handle(body []byte) *Reply {
	return respondEach(body, func(call *RequestData) *JsonRpcResponse {
		return NewSuccessResponse(call.ID, d.Dispatch(call.Method, call.Params))
	})
}

func (d *DispatchStrategy) ethChainId([]interface{}) interface{} {
	return hexutil.EncodeUint64(d.chain.ChainID)
}

func (d *DispatchStrategy) netVersion([]interface{}) interface{} {
	return strconv.FormatUint(d.chain.ChainID, 10)
}

func (d *DispatchStrategy) netListening([]interface{}) interface{} {
	return true
}

func (d *DispatchStrategy) web3ClientVersion([]interface{}) interface{} {
	return "chainsim/" + Version
}

func (d *DispatchStrategy) ethSyncing([]interface{}) interface{} {
	return false
}

func (d *DispatchStrategy) ethAccounts([]interface{}) interface{} {
	return []string{}
}

func (d *DispatchStrategy) ethBlockNumber([]interface{}) interface{} {
	return hexutil.EncodeUint64(d.chain.BlockNumber)
}

func (d *DispatchStrategy) ethGetBalance([]interface{}) interface{} {
	return d.balance
}

func (d *DispatchStrategy) ethGetTransactionCount([]interface{}) interface{} {
	return hexutil.EncodeUint64(d.chain.TransactionCount)
}

func (d *DispatchStrategy) ethGetCode(params []interface{}) interface{} {
	if addr, ok := stringParam(params, 0); ok && strings.ToLower(addr) == d.safeAddress {
		return d.chain.SafeCode
	}

	return emptyReturn
}

func (d *DispatchStrategy) ethGasPrice([]interface{}) interface{} {
	return hexutil.EncodeUint64(d.chain.GasPrice)
}

func (d *DispatchStrategy) ethMaxPriorityFeePerGas([]interface{}) interface{} {
	return hexutil.EncodeUint64(d.chain.MaxPriorityFeePerGas)
}

// ethFeeHistory always reports a single block sample ending at the head.
func (d *DispatchStrategy) ethFeeHistory([]interface{}) interface{} {
	baseFee := hexutil.EncodeUint64(d.chain.GasPrice)

	return map[string]interface{}{
		"oldestBlock":   hexutil.EncodeUint64(d.chain.BlockNumber),
		"baseFeePerGas": []string{baseFee, baseFee},
		"gasUsedRatio":  []float64{0.5},
		"reward":        [][]string{{hexutil.EncodeUint64(d.chain.MaxPriorityFeePerGas)}},
	}
}

// ethGetBlockByNumber returns the head block whatever number or tag is asked for.
func (d *DispatchStrategy) ethGetBlockByNumber([]interface{}) interface{} {
	h := d.header

	return map[string]interface{}{
		"number":           (*hexutil.Big)(h.Number),
		"hash":             d.blockHash,
		"parentHash":       h.ParentHash,
		"nonce":            h.Nonce,
		"mixHash":          h.MixDigest,
		"sha3Uncles":       h.UncleHash,
		"logsBloom":        h.Bloom,
		"transactionsRoot": h.TxHash,
		"stateRoot":        h.Root,
		"receiptsRoot":     h.ReceiptHash,
		"miner":            h.Coinbase,
		"difficulty":       (*hexutil.Big)(h.Difficulty),
		"totalDifficulty":  (*hexutil.Big)(h.Difficulty),
		"extraData":        hexutil.Bytes(h.Extra),
		"size":             hexutil.Uint64(h.Size()),
		"gasLimit":         hexutil.Uint64(h.GasLimit),
		"gasUsed":          hexutil.Uint64(h.GasUsed),
		"timestamp":        hexutil.Uint64(h.Time),
		"baseFeePerGas":    (*hexutil.Big)(h.BaseFee),
		"transactions":     []string{},
		"uncles":           []string{},
	}
}

func (d *DispatchStrategy) ethEstimateGas([]interface{}) interface{} {
	return hexutil.EncodeUint64(d.chain.GasEstimate)
}

func (d *DispatchStrategy) ethCall(params []interface{}) interface{} {
	if len(params) == 0 {
		return emptyReturn
	}

	call, ok := params[0].(map[string]interface{})
	if !ok {
		return emptyReturn
	}

	to, _ := call["to"].(string)
	data, _ := call["input"].(string)
	if data == "" {
		data, _ = call["data"].(string)
	}

	if to == "" || data == "" {
		return emptyReturn
	}

	return d.router.ResolveCallHex(to, data)
}

// ethSendRawTransaction returns keccak256 of the raw payload, which is the
// transaction hash for a well formed signed transaction.
func (d *DispatchStrategy) ethSendRawTransaction(params []interface{}) interface{} {
	raw, ok := stringParam(params, 0)
	if !ok {
		return PlaceholderTxHash
	}

	bts, err := hexutil.Decode(raw)
	if err != nil || len(bts) == 0 {
		return PlaceholderTxHash
	}

	return crypto.Keccak256Hash(bts).Hex()
}

func (d *DispatchStrategy) ethGetTransactionReceipt(params []interface{}) interface{} {
	var txHash interface{}
	if len(params) > 0 {
		txHash = params[0]
	}

	gasUsed := hexutil.EncodeUint64(d.chain.GasEstimate)

	return map[string]interface{}{
		"transactionHash":   txHash,
		"transactionIndex":  "0x0",
		"blockHash":         d.blockHash,
		"blockNumber":       hexutil.EncodeUint64(d.chain.BlockNumber),
		"cumulativeGasUsed": gasUsed,
		"gasUsed":           gasUsed,
		"effectiveGasPrice": hexutil.EncodeUint64(d.chain.GasPrice),
		"contractAddress":   nil,
		"logs":              []interface{}{},
		"logsBloom":         types.Bloom{},
		"type":              "0x2",
		"status":            "0x1",
	}
}

func stringParam(params []interface{}, i int) (string, bool) {
	if len(params) <= i {
		return "", false
	}

	s, ok := params[i].(string)
	return s, ok
}

func newBlockHeader(chain ChainConfig) *types.Header {
	number := new(big.Int).SetUint64(chain.BlockNumber)

	// genesis has no parent
	var parentHash common.Hash
	if number.Sign() > 0 {
		parent := new(big.Int).Sub(number, common.Big1)
		parentHash = crypto.Keccak256Hash(common.LeftPadBytes(parent.Bytes(), 32))
	}

	return &types.Header{
		ParentHash:  parentHash,
		UncleHash:   types.EmptyUncleHash,
		Root:        types.EmptyRootHash,
		TxHash:      types.EmptyRootHash,
		ReceiptHash: types.EmptyRootHash,
		Difficulty:  new(big.Int),
		Number:      number,
		GasLimit:    chain.GasLimit,
		Time:        chain.BlockTimestamp,
		Extra:       []byte{},
		BaseFee:     new(big.Int).SetUint64(chain.GasPrice),
	}
}
