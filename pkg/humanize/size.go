// Package humanize formats byte counts for the release UI and the
// plan table.
package humanize

var units = []string{"B", "KB", "MB", "GB", "TB"}

// Size reduces a byte count to a value under 1024 and the matching
// binary unit, for rendering with a %.2f%s verb.
func Size(i int64) (float64, string) {
	v := float64(i)

	for _, u := range units[:len(units)-1] {
		if v < 1024 {
			return v, u
		}

		v /= 1024
	}

	return v, units[len(units)-1]
}
