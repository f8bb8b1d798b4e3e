// Package analytics computes the market metrics shown by the dashboard:
// daily, cumulative, yearly and monthly returns, volatility, sector averages
// and the pairwise return correlation matrix.
//
// Undefined values (a division by a zero price, too few points for a
// statistic) are reported as invalid domain.NullFloat64 values and never
// abort a computation. Statistics use gonum's stat package; volatility is the
// sample (N-1) standard deviation.
//
// Memo adds content-addressed caching on top of Engine.Compute.
package analytics
