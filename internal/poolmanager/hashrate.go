package poolmanager

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	gethmath "github.com/ethereum/go-ethereum/common/math"
)

// hashrateBytes is the wire width of a submitted hashrate: a 32-byte
// unsigned integer (spec.md §6 "Hashrate submission format").
const hashrateBytes = 32

// encodeHashrate renders a hashes/second count as "0x" followed by exactly
// 64 lowercase hex digits, zero-padded on the left, using the same
// big-endian padding helper go-ethereum uses to encode EVM words
// (spec.md §4.2 step 3).
func encodeHashrate(hashesPerSecond uint64) string {
	padded := gethmath.PaddedBigBytes(new(big.Int).SetUint64(hashesPerSecond), hashrateBytes)
	return hexutil.Encode(padded)
}
