package brackets

import "math/bits"

const maxRegionSeeds = 16

// ncaaSeedOrder is the top-to-bottom seed order of a 16-team region.
var ncaaSeedOrder = []int{1, 16, 8, 9, 5, 12, 4, 13, 6, 11, 3, 14, 7, 10, 2, 15}

// seedOrder returns the slot order of seeds 1..size for the opening round. Consecutive
// pairs meet each other, lower seed first. Smaller regions reuse the 16-team order
// restricted to their seeds, so favourites stay apart for as long as possible.
func seedOrder(size int) []int {
	order := make([]int, 0, size)
	for _, s := range ncaaSeedOrder {
		if s <= size {
			order = append(order, s)
		}
	}
	for i := 0; i+1 < len(order); i += 2 {
		if order[i] > order[i+1] {
			order[i], order[i+1] = order[i+1], order[i]
		}
	}
	return order
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

func log2(n int) int {
	return bits.Len(uint(n)) - 1
}
