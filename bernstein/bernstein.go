// Package bernstein evaluates Bernstein basis polynomials and the smooth-step
// blend built from them.
package bernstein

import (
	"math"

	"gonum.org/v1/gonum/stat/combin"
)

// Polynomial returns the Bernstein basis polynomial C(n,i) * t^i * (1-t)^(n-i).
// t is not clamped. Indices outside [0, n] have a zero binomial coefficient
// and return 0 without evaluating the powers.
func Polynomial(t float64, n, i int) float64 {
	if n < 0 || i < 0 || i > n {
		return 0
	}
	return float64(combin.Binomial(n, i)) * math.Pow(t, float64(i)) * math.Pow(1-t, float64(n-i))
}

// Derivative returns dB(n,i)/dt using the recursive identity
// n * (B(n-1,i-1) - B(n-1,i)).
func Derivative(t float64, n, i int) float64 {
	return float64(n) * (Polynomial(t, n-1, i-1) - Polynomial(t, n-1, i))
}

// ProductRuleDerivative is the closed-form product-rule derivative of
// Polynomial. It divides through by t and (1-t), so it is only defined
// for t strictly inside (0, 1).
func ProductRuleDerivative(t float64, n, i int) float64 {
	if n < 0 || i < 0 || i > n {
		return 0
	}
	return float64(combin.Binomial(n, i)) *
		math.Pow(t, float64(i-1)) * math.Pow(1-t, float64(n-i-1)) *
		(-float64(n-i)*t + float64(i)*(1-t))
}

// Blend is the quartic smooth step B4,3 + B4,4 = 4t^3 - 3t^4.
// It is 0 at t=0 and 1 at t=1 with zero slope at both ends.
func Blend(ratio float64) float64 {
	return Polynomial(ratio, 4, 3) + Polynomial(ratio, 4, 4)
}

// BlendDerivative returns dBlend/dratio.
func BlendDerivative(ratio float64) float64 {
	return Derivative(ratio, 4, 3) + Derivative(ratio, 4, 4)
}
