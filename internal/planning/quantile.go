package planning

import (
	"math"

	"github.com/andresuchdata/demandcast/internal/faults"
)

// Acklam's rational approximation of the inverse standard normal CDF.
// Absolute error is below 1.15e-9 over the full open interval.
var (
	invNormA = [6]float64{-3.969683028665376e+01, 2.209460984245205e+02, -2.759285104469687e+02,
		1.383577518672690e+02, -3.066479806614716e+01, 2.506628277459239e+00}
	invNormB = [5]float64{-5.447609879822406e+01, 1.615858368580409e+02, -1.556989798598866e+02,
		6.680131188771972e+01, -1.328068155288572e+01}
	invNormC = [6]float64{-7.784894002430293e-03, -3.223964580411365e-01, -2.400758277161838e+00,
		-2.549732539343734e+00, 4.374664141464968e+00, 2.938163982698783e+00}
	invNormD = [4]float64{7.784695709041462e-03, 3.224671290700398e-01, 2.445134137142996e+00,
		3.754408661907416e+00}
)

const invNormTail = 0.02425

// InverseNormalCDF maps a probability p in (0,1) to the z-score with
// Phi(z) = p.
func InverseNormalCDF(p float64) (float64, error) {
	if p <= 0.0 || p >= 1.0 {
		return 0, faults.New(faults.InputValidation, "serviceLevel must be strictly between 0 and 1")
	}

	a, b, c, d := invNormA, invNormB, invNormC, invNormD

	if p < invNormTail {
		q := math.Sqrt(-2.0 * math.Log(p))
		return (((((c[0]*q+c[1])*q+c[2])*q+c[3])*q+c[4])*q + c[5]) /
			((((d[0]*q+d[1])*q+d[2])*q+d[3])*q + 1.0), nil
	}
	if p > 1.0-invNormTail {
		q := math.Sqrt(-2.0 * math.Log(1.0-p))
		return -(((((c[0]*q+c[1])*q+c[2])*q+c[3])*q+c[4])*q + c[5]) /
			((((d[0]*q+d[1])*q+d[2])*q+d[3])*q + 1.0), nil
	}

	q := p - 0.5
	r := q * q
	return (((((a[0]*r+a[1])*r+a[2])*r+a[3])*r+a[4])*r + a[5]) * q /
		(((((b[0]*r+b[1])*r+b[2])*r+b[3])*r+b[4])*r + 1.0), nil
}
