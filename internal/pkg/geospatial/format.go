package geospatial

import "strconv"

// DistancePlaceholder is shown for distances that cannot be displayed.
const DistancePlaceholder = "—"

// FormatDistance renders meters as a short display string. Values of a
// kilometer or more are shown in km (1 decimal from 10 km, else 2); smaller
// values in m (0 decimals from 100 m, 1 from 10 m, else 2).
func FormatDistance(meters float64) string {
	if !isFinite(meters) {
		return DistancePlaceholder
	}

	if meters >= 1000 {
		km := meters / 1000
		prec := 2
		if km >= 10 {
			prec = 1
		}
		return strconv.FormatFloat(km, 'f', prec, 64) + " km"
	}

	prec := 2
	switch {
	case meters >= 100:
		prec = 0
	case meters >= 10:
		prec = 1
	}
	return strconv.FormatFloat(meters, 'f', prec, 64) + " m"
}
