package omath

import "math"

// Mean ...
func Mean(nums []float64) float64 {
	count := float64(len(nums))
	if count == 0 {
		return 0
	}
	var sum float64
	for _, v := range nums {
		sum += v
	}
	return sum / count
}

// Variance ...
func Variance(nums []float64) (variance float64) {
	count := float64(len(nums))
	if count == 0 {
		return 0.0
	}
	mean := Mean(nums)

	for _, number := range nums {
		variance += math.Pow(number-mean, 2)
	}
	return variance / count
}

// StandardDeviation ...
func StandardDeviation(nums []float64) float64 {
	return math.Sqrt(Variance(nums))
}

// Max returns the largest value in nums, or zero if nums is empty.
func Max(nums []float64) (max float64) {
	for i, v := range nums {
		if i == 0 || v > max {
			max = v
		}
	}
	return max
}
