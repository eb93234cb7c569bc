package rectpack

import "golang.org/x/exp/constraints"

// abs 返回整数的绝对值
func abs[T constraints.Signed](x T) T {
	if x >= 0 {
		return x
	}
	return -x
}

// nextPowerOfTwo 返回不小于 n 的最小的 2 的幂。n <= 1 时返回 1。
func nextPowerOfTwo[T constraints.Integer](n T) T {
	p := T(1)
	for p < n {
		p <<= 1
	}
	return p
}
