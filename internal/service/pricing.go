package service

import "math"

// Campus pricing: flat base plus a per-kilometer rate on the
// straight-line distance, with a floor.
const (
	baseFare    = 20.0
	perKmRate   = 8.0
	minimumFare = 30.0
)

// QuoteFare prices a ride once at request time. The fare is fixed for
// the life of the session; the ledger entry copies it at acceptance.
func QuoteFare(pickupLat, pickupLng, destLat, destLng float64) float64 {
	km := haversineKm(pickupLat, pickupLng, destLat, destLng)

	fare := baseFare + km*perKmRate
	if fare < minimumFare {
		fare = minimumFare
	}

	return math.Round(fare*100) / 100
}

// haversineKm returns the great-circle distance in kilometers.
func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusKm = 6371.0

	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

func isValidLatitude(lat float64) bool {
	return lat >= -90 && lat <= 90
}

func isValidLongitude(lng float64) bool {
	return lng >= -180 && lng <= 180
}
