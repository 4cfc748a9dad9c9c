package poolmanager

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

// difficultyDividend is 0xffff left-shifted by 240 bits — the 256-bit
// value 0xffff000...0 (spec.md §4.3 "Difficulty derivation").
var difficultyDividend = func() *uint256.Int {
	v := uint256.NewInt(0xffff)
	return v.Lsh(v, 240)
}()

// deriveDifficulty computes floor(dividend / boundary) as a float64. The
// division happens in 256-bit arithmetic (via holiman/uint256, the same
// fixed-width 256-bit integer library go-ethereum uses for EVM words) so the
// quotient is exact up to the point of the final float64 conversion; for
// very easy boundaries that conversion loses precision, matching the
// original C++ implementation (spec.md §9).
func deriveDifficulty(boundary [32]byte) float64 {
	divisor := new(uint256.Int).SetBytes32(boundary[:])
	if divisor.IsZero() {
		return 0
	}
	quotient := new(uint256.Int).Div(difficultyDividend, divisor)
	f, _ := new(big.Float).SetInt(quotient.ToBig()).Float64()
	return f
}

// formatDifficultyLog renders a difficulty the way spec.md §6 requires:
// "<d>K megahash" with d = difficulty/1e9 to two fractional digits.
func formatDifficultyLog(difficulty float64) string {
	return fmt.Sprintf("%.2fK megahash", difficulty/1e9)
}
