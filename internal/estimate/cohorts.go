package estimate

import "strconv"

// SplitShares divides 100% across n cohorts. Every cohort gets the floor of
// the even split and the last one absorbs the remainder.
func SplitShares(n int) []int {
	if n <= 0 {
		return nil
	}
	per := 100 / n
	shares := make([]int, n)
	for i := range shares {
		shares[i] = per
	}
	shares[n-1] = 100 - per*(n-1)
	return shares
}

// CohortID is the stable key of the cohort at zero-based position i.
func CohortID(i int) string {
	return strconv.Itoa(i + 1)
}

// DefaultCohortName is the name given to a cohort nobody has renamed.
func DefaultCohortName(i int) string {
	return "Cohort " + strconv.Itoa(i+1)
}
