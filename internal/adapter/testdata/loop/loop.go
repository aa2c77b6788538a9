package loop

// Sum adds the integers in [0, n).
func Sum(n int) int {
	total := 0
	for i := 0; i < n; i++ {
		total += i
	}

	return total
}
