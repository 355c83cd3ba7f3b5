package risk

// Feature extraction for the risk-intelligence models.
//
// Both extractors are pure: an identical input record always yields an
// identical feature row, and missing optional fields never raise. Only a
// malformed batch shape (an empty batch) is an error. The column layouts
// below are fixed; the scaler and the regression model both depend on the
// training and inference layouts being byte-for-byte identical.

// ShipmentFeatureColumns is the fixed feature layout for delay prediction.
var ShipmentFeatureColumns = []string{
	"distance_km",
	"carrier_DHL",
	"carrier_FedEx",
	"carrier_UPS",
	"carrier_Maersk",
	"carrier_MSC",
	"route_complexity",
	"weather_risk",
	"priority_level",
	"supplier_risk_score",
	"month",
	"day_of_week",
}

// PerformanceFeatureColumns is the fixed feature layout for supplier anomaly
// detection.
var PerformanceFeatureColumns = []string{
	"on_time_delivery_rate",
	"quality_score",
	"cost_variance",
	"communication_score",
	"compliance_score",
	"order_volume",
	"avg_order_value",
	"partnership_duration_months",
	"dispute_count",
}

// ExtractShipmentFeatures encodes a batch of shipment records into the fixed
// shipment feature layout.
func ExtractShipmentFeatures(records []ShipmentRecord) ([][]float64, error) {
	if len(records) == 0 {
		return nil, validationErrorf("empty shipment batch: at least one record is required")
	}

	rows := make([][]float64, len(records))
	for i, record := range records {
		rows[i] = shipmentFeatureRow(record)
	}
	return rows, nil
}

func shipmentFeatureRow(record ShipmentRecord) []float64 {
	resolved := record.resolve()

	row := make([]float64, 0, len(ShipmentFeatureColumns))
	row = append(row, resolved.DistanceKm)
	for _, carrier := range carrierVocabulary {
		if resolved.Carrier == carrier {
			row = append(row, 1)
		} else {
			row = append(row, 0)
		}
	}
	row = append(row,
		resolved.RouteComplexity,
		resolved.WeatherRisk,
		resolved.PriorityLevel,
		resolved.SupplierRiskScore,
		resolved.Month,
		resolved.DayOfWeek,
	)
	return row
}

// ExtractPerformanceFeatures encodes a batch of supplier performance records
// into the fixed performance feature layout.
func ExtractPerformanceFeatures(records []SupplierPerformanceRecord) ([][]float64, error) {
	if len(records) == 0 {
		return nil, validationErrorf("empty supplier batch: at least one record is required")
	}

	rows := make([][]float64, len(records))
	for i, record := range records {
		resolved := record.resolve()
		rows[i] = []float64{
			resolved.OnTimeDeliveryRate,
			resolved.QualityScore,
			resolved.CostVariance,
			resolved.CommunicationScore,
			resolved.ComplianceScore,
			resolved.OrderVolume,
			resolved.AvgOrderValue,
			resolved.PartnershipDurationMonths,
			resolved.DisputeCount,
		}
	}
	return rows, nil
}
