package services

import "time"

// RangesOverlap reports whether two half-open date ranges [aStart, aEnd)
// and [bStart, bEnd) share at least one day. Back-to-back stays, where one
// checks out the day the other checks in, do not overlap.
func RangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// OverlapChecker answers whether a candidate range conflicts with an
// active reservation for the accommodation. excludeID lets a date update
// ignore the reservation's own occupancy.
type OverlapChecker interface {
	HasOverlap(accommodationID uint, start, end time.Time, excludeID uint) (bool, error)
}
