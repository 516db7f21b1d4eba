package validate

import "strings"

func Required(value string) bool {
	return strings.TrimSpace(value) != ""
}

func LatLon(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
