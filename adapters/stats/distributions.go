package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Distribution helpers shared by every test in this package. All p-values
// and critical values come from gonum's distuv rather than hand-rolled CDF
// approximations.

// normalQuantile returns the standard normal quantile for probability p
func normalQuantile(p float64) float64 {
	return distuv.UnitNormal.Quantile(p)
}

// normalCDF returns the standard normal CDF at x
func normalCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

// twoSidedNormalPValue converts a z statistic into a two-sided p-value
func twoSidedNormalPValue(z float64) float64 {
	return 2 * distuv.UnitNormal.Survival(math.Abs(z))
}

// twoSidedTPValue converts a t statistic into a two-sided p-value under
// Student's t with df degrees of freedom.
func twoSidedTPValue(t, df float64) float64 {
	if df <= 0 {
		return 1.0
	}
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return 2 * (1 - tDist.CDF(math.Abs(t)))
}

// tQuantile returns Student's t quantile for probability p and df degrees
// of freedom.
func tQuantile(p, df float64) float64 {
	if df <= 0 {
		return normalQuantile(p)
	}
	return distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.Quantile(p)
}

// chiSquarePValue returns the upper-tail probability of a chi-square
// statistic with df degrees of freedom.
func chiSquarePValue(chiSquare float64, df float64) float64 {
	if df <= 0 || chiSquare <= 0 {
		return 1.0
	}
	chiDist := distuv.ChiSquared{K: df}
	return chiDist.Survival(chiSquare)
}
