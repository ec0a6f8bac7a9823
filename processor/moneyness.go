package processor

// InBand reports whether a strike falls within the symmetric percentage band
// around the underlying spot price. Both band boundaries are inclusive. A
// zero or negative spot degenerates to an empty band and excludes every
// strike.
func InBand(spot, strike, bandPercent float64) bool {
	if spot <= 0 {
		return false
	}
	lower := spot * (1 - bandPercent/100)
	upper := spot * (1 + bandPercent/100)
	return strike >= lower && strike <= upper
}
