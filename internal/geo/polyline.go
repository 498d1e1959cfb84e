package geo

// DecodePolyline converts a Google encoded polyline string into points at the
// standard 1e-5 precision used by driving-directions responses.
func DecodePolyline(encoded string) []Point {
	const precision = 1e-5

	var points []Point
	index, lat, lon := 0, 0, 0

	for index < len(encoded) {
		var ok bool
		var delta int

		if delta, index, ok = decodeVarint(encoded, index); !ok {
			return points
		}
		lat += delta

		if delta, index, ok = decodeVarint(encoded, index); !ok {
			return points
		}
		lon += delta

		points = append(points, Point{
			Lat: float64(lat) * precision,
			Lon: float64(lon) * precision,
		})
	}

	return points
}

// decodeVarint reads one zigzag-encoded value starting at index, returning the
// signed delta and the next read position. ok is false on truncated input.
func decodeVarint(encoded string, index int) (int, int, bool) {
	shift, result := 0, 0
	for {
		if index >= len(encoded) {
			return 0, index, false
		}
		b := int(encoded[index]) - 63
		index++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}

	if result&1 != 0 {
		return -(result >> 1), index, true
	}
	return result >> 1, index, true
}
