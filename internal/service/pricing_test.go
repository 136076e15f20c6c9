package service

import "testing"

func TestQuoteFare_ShortHopChargesMinimum(t *testing.T) {
	t.Parallel()

	// Two points a few hundred meters apart on campus.
	fare := QuoteFare(12.9716, 77.5946, 12.9720, 77.5950)
	if fare != minimumFare {
		t.Errorf("expected minimum fare %.2f, got %.2f", minimumFare, fare)
	}
}

func TestQuoteFare_GrowsWithDistance(t *testing.T) {
	t.Parallel()

	short := QuoteFare(12.9716, 77.5946, 12.9352, 77.6245)
	long := QuoteFare(12.9716, 77.5946, 12.8452, 77.6602)
	if long <= short {
		t.Errorf("longer trip must cost more: short %.2f, long %.2f", short, long)
	}
}

func TestQuoteFare_Deterministic(t *testing.T) {
	t.Parallel()

	a := QuoteFare(12.9716, 77.5946, 12.9352, 77.6245)
	b := QuoteFare(12.9716, 77.5946, 12.9352, 77.6245)
	if a != b {
		t.Errorf("same route must price identically, got %.2f and %.2f", a, b)
	}
}

func TestCoordinateValidation(t *testing.T) {
	t.Parallel()

	if isValidLatitude(91) || isValidLatitude(-91) {
		t.Error("latitude outside [-90, 90] must be invalid")
	}
	if isValidLongitude(181) || isValidLongitude(-181) {
		t.Error("longitude outside [-180, 180] must be invalid")
	}
	if !isValidLatitude(0) || !isValidLongitude(0) {
		t.Error("origin must be valid")
	}
}
