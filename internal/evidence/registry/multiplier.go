package registry

// Residential assessment levels changed over time. The multiplier converts an
// assessed total back to the market value the assessor implied.
const defaultMarketMultiplier = 10.0

var marketMultipliers = map[int]float64{
	2006: 6.25,
	2007: 6.25,
	2008: 6.25,
}

// MarketMultiplier returns the assessed-to-market factor for a tax year.
func MarketMultiplier(year int) float64 {
	if m, ok := marketMultipliers[year]; ok {
		return m
	}
	return defaultMarketMultiplier
}
