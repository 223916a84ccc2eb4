// Package numbers holds the integer operations served behind the auth gate.
// The functions are pure: they never modify their input.
package numbers

import (
	"errors"
	"math"
	"math/big"
	"slices"
)

type SearchResult struct {
	Found bool `json:"found"`
	Index int  `json:"index"`
}

// Sort returns an ascending copy of values.
func Sort(values []int) []int {
	sorted := make([]int, len(values))
	copy(sorted, values)
	slices.Sort(sorted)
	return sorted
}

// FilterEven keeps elements divisible by 2 in their original order.
func FilterEven(values []int) []int {
	even := make([]int, 0, len(values))
	for _, v := range values {
		if v%2 == 0 {
			even = append(even, v)
		}
	}
	return even
}

// Sum adds values exactly. Intermediate totals may leave the int range;
// only a final total that does not fit yields ErrSumOverflow.
func Sum(values []int) (int, error) {
	total := new(big.Int)
	var term big.Int
	for _, v := range values {
		total.Add(total, term.SetInt64(int64(v)))
	}
	if total.Cmp(minInt) < 0 || total.Cmp(maxInt) > 0 {
		return 0, ErrSumOverflow
	}
	return int(total.Int64()), nil
}

var (
	minInt = big.NewInt(math.MinInt)
	maxInt = big.NewInt(math.MaxInt)
)

func Max(values []int) (int, error) {
	if len(values) == 0 {
		return 0, ErrEmptyInput
	}
	return slices.Max(values), nil
}

// BinarySearch assumes values is sorted ascending and reports the first
// midpoint that equals target. Unsorted input gives an unspecified answer.
func BinarySearch(values []int, target int) SearchResult {
	left, right := 0, len(values)-1
	for left <= right {
		mid := left + (right-left)/2
		switch {
		case values[mid] == target:
			return SearchResult{Found: true, Index: mid}
		case values[mid] < target:
			left = mid + 1
		default:
			right = mid - 1
		}
	}
	return SearchResult{Found: false, Index: -1}
}

var (
	ErrEmptyInput  = errors.New("numbers must not be empty")
	ErrSumOverflow = errors.New("sum is out of range")
)
