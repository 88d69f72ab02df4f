package format

import (
	"math"
	"strconv"
)

var suffixes = []string{"", "K", "M", "B", "T"}

// Abbreviate renders n with two decimals and a magnitude suffix, dividing by
// 1000 while |n| >= 1000. Values past the trillions keep the T suffix with a
// larger numeral.
func Abbreviate(n float64) string {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return strconv.FormatFloat(n, 'f', 2, 64)
	}

	magnitude := 0
	for math.Abs(n) >= 1000 && magnitude < len(suffixes)-1 {
		n /= 1000
		magnitude++
	}

	return strconv.FormatFloat(n, 'f', 2, 64) + suffixes[magnitude]
}
