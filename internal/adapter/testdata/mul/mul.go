package mul

// Mul squares x.
func Mul(x int) int {
	return x * x
}
