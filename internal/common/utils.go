package common

import (
	"strconv"
	"strings"
)

// FormatCoord renders a coordinate with the shortest exact decimal form.
func FormatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// LatLon joins coordinates as "lat,lon", the form most providers accept.
func LatLon(lat, lon float64) string {
	return FormatCoord(lat) + "," + FormatCoord(lon)
}

// JoinNonEmpty joins the non-empty parts with sep.
func JoinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
