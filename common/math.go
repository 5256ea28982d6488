package common

// Min returns the minimum of two numbers
func Min(a int, b int) int {
	if a <= b {
		return a
	}
	return b
}

// Max returns the maximum of two number
func Max(a int, b int) int {
	if a >= b {
		return a
	}
	return b
}

// Log2Floor computes n where the leading bit of a is at position n
func Log2Floor(a int) int {
	res := 0
	for i := a; i > 1; i /= 2 {
		res++
	}
	return res
}

// Log2Ceil computes the smallest n such that a <= 2^n
func Log2Ceil(a int) int {
	res := Log2Floor(a)
	if a > 1<<res {
		res++
	}
	return res
}

// NextPowerOfTwo returns the smallest power of two larger or equal to a
func NextPowerOfTwo(a int) int {
	return 1 << Log2Ceil(a)
}
