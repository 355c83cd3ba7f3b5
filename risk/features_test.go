package risk

import (
	"reflect"
	"testing"
)

func TestShipmentFeatureRowAppliesDefaults(t *testing.T) {
	t.Parallel()

	row := shipmentFeatureRow(ShipmentRecord{})

	expected := []float64{1000, 0, 0, 0, 0, 0, 3, 2, 2, 50, 6, 2}
	if !reflect.DeepEqual(row, expected) {
		t.Fatalf("default feature row mismatch:\n got %v\nwant %v", row, expected)
	}
	if len(row) != len(ShipmentFeatureColumns) {
		t.Fatalf("row has %d columns, layout declares %d", len(row), len(ShipmentFeatureColumns))
	}
}

func TestShipmentFeatureRowOneHotEncoding(t *testing.T) {
	t.Parallel()

	cases := []struct {
		carrier string
		hot     int // index into the one-hot block, -1 for none
	}{
		{CarrierDHL, 0},
		{CarrierFedEx, 1},
		{CarrierUPS, 2},
		{CarrierMaersk, 3},
		{CarrierMSC, 4},
		{"RegionalExpress", -1},
		{"", -1},
		{"dhl", -1}, // vocabulary matching is case-sensitive
	}

	for _, tc := range cases {
		row := shipmentFeatureRow(ShipmentRecord{Carrier: tc.carrier})
		oneHot := row[1:6]
		for i, v := range oneHot {
			want := 0.0
			if i == tc.hot {
				want = 1.0
			}
			if v != want {
				t.Errorf("carrier %q: one-hot[%d] = %v, want %v", tc.carrier, i, v, want)
			}
		}
	}
}

func TestShipmentFeatureRowParsesCreatedDate(t *testing.T) {
	t.Parallel()

	// 2024-01-01 was a Monday; the day-of-week column uses Monday=0.
	row := shipmentFeatureRow(ShipmentRecord{CreatedDate: "2024-01-01"})
	if row[10] != 1 {
		t.Errorf("month = %v, want 1", row[10])
	}
	if row[11] != 0 {
		t.Errorf("day_of_week = %v, want 0 (Monday)", row[11])
	}

	// 2024-06-09 was a Sunday.
	row = shipmentFeatureRow(ShipmentRecord{CreatedDate: "2024-06-09T12:30:00Z"})
	if row[10] != 6 {
		t.Errorf("month = %v, want 6", row[10])
	}
	if row[11] != 6 {
		t.Errorf("day_of_week = %v, want 6 (Sunday)", row[11])
	}

	// Unparseable dates fall back to the fixed placeholders.
	row = shipmentFeatureRow(ShipmentRecord{CreatedDate: "last tuesday"})
	if row[10] != 6 || row[11] != 2 {
		t.Errorf("malformed date: month=%v day=%v, want placeholders 6 and 2", row[10], row[11])
	}
}

func TestExtractShipmentFeaturesDeterministic(t *testing.T) {
	t.Parallel()

	records := []ShipmentRecord{
		{DistanceKm: f64(500), Carrier: CarrierDHL, WeatherRisk: f64(1), RouteComplexity: f64(1)},
		{DistanceKm: f64(8000), Carrier: CarrierMSC, CreatedDate: "2024-03-15"},
	}

	first, err := ExtractShipmentFeatures(records)
	if err != nil {
		t.Fatalf("ExtractShipmentFeatures returned error: %v", err)
	}
	second, err := ExtractShipmentFeatures(records)
	if err != nil {
		t.Fatalf("ExtractShipmentFeatures returned error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical inputs produced different feature matrices")
	}
}

func TestExtractShipmentFeaturesEmptyBatch(t *testing.T) {
	t.Parallel()

	_, err := ExtractShipmentFeatures(nil)
	assertValidationError(t, err)
}

func TestExtractPerformanceFeaturesDefaults(t *testing.T) {
	t.Parallel()

	rows, err := ExtractPerformanceFeatures([]SupplierPerformanceRecord{{}})
	if err != nil {
		t.Fatalf("ExtractPerformanceFeatures returned error: %v", err)
	}

	expected := []float64{85, 8.5, 5, 8, 9, 100, 10000, 24, 0}
	if !reflect.DeepEqual(rows[0], expected) {
		t.Fatalf("default performance row mismatch:\n got %v\nwant %v", rows[0], expected)
	}
	if len(rows[0]) != len(PerformanceFeatureColumns) {
		t.Fatalf("row has %d columns, layout declares %d", len(rows[0]), len(PerformanceFeatureColumns))
	}
}

func TestExtractPerformanceFeaturesEmptyBatch(t *testing.T) {
	t.Parallel()

	_, err := ExtractPerformanceFeatures([]SupplierPerformanceRecord{})
	assertValidationError(t, err)
}

func f64(v float64) *float64 { return &v }

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	if _, ok := err.(*ValidationError); !ok {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}
}
