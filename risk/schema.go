package risk

import (
	"time"
)

// Carrier is one of the fixed carrier vocabulary values used for one-hot
// encoding. Any other value is treated as unknown and produces all-zero
// indicator columns.
type Carrier = string

const (
	CarrierDHL    Carrier = "DHL"
	CarrierFedEx  Carrier = "FedEx"
	CarrierUPS    Carrier = "UPS"
	CarrierMaersk Carrier = "Maersk"
	CarrierMSC    Carrier = "MSC"
)

// carrierVocabulary fixes both the one-hot column order and the set of
// recognised carriers. Training and inference must agree on this order.
var carrierVocabulary = []Carrier{CarrierDHL, CarrierFedEx, CarrierUPS, CarrierMaersk, CarrierMSC}

// Shipment field defaults. Every optional field resolves to exactly one of
// these values in both the training and inference paths; there is no other
// defaulting anywhere in the package.
const (
	defaultDistanceKm        = 1000.0
	defaultRouteComplexity   = 3.0
	defaultWeatherRisk       = 2.0
	defaultPriorityLevel     = 2.0
	defaultSupplierRiskScore = 50.0
	defaultGeopoliticalRisk  = 2.0

	// Placeholders used when created_date is absent. These are fixed values,
	// not inferred from the current time.
	defaultMonth     = 6.0
	defaultDayOfWeek = 2.0
)

// Supplier performance field defaults.
const (
	defaultOnTimeDeliveryRate    = 85.0
	defaultQualityScore          = 8.5
	defaultCostVariance          = 5.0
	defaultCommunicationScore    = 8.0
	defaultComplianceScore       = 9.0
	defaultOrderVolume           = 100.0
	defaultAvgOrderValue         = 10000.0
	defaultPartnershipMonths     = 24.0
	defaultDisputeCount          = 0.0
)

// ShipmentRecord is the raw shipment mapping handed in by the transport
// layer. All fields are optional; pointers distinguish "absent" from zero.
type ShipmentRecord struct {
	DistanceKm        *float64 `json:"distance_km,omitempty"`
	Carrier           string   `json:"carrier,omitempty"`
	RouteComplexity   *float64 `json:"route_complexity,omitempty"`
	WeatherRisk       *float64 `json:"weather_risk,omitempty"`
	PriorityLevel     *float64 `json:"priority_level,omitempty"`
	SupplierRiskScore *float64 `json:"supplier_risk_score,omitempty"`
	CreatedDate       string   `json:"created_date,omitempty"`
	GeopoliticalRisk  *float64 `json:"geopolitical_risk,omitempty"`

	// ActualDelayHours is the training target. It is ignored by Predict and
	// required by Fit.
	ActualDelayHours *float64 `json:"actual_delay_hours,omitempty"`
}

// resolvedShipment is a ShipmentRecord with every default applied.
type resolvedShipment struct {
	DistanceKm        float64
	Carrier           string
	RouteComplexity   float64
	WeatherRisk       float64
	PriorityLevel     float64
	SupplierRiskScore float64
	GeopoliticalRisk  float64
	Month             float64
	DayOfWeek         float64
}

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// resolve applies the shipment schema defaults. The date placeholders use the
// Monday=0 day-of-week convention.
func (r ShipmentRecord) resolve() resolvedShipment {
	resolved := resolvedShipment{
		DistanceKm:        orDefault(r.DistanceKm, defaultDistanceKm),
		Carrier:           r.Carrier,
		RouteComplexity:   orDefault(r.RouteComplexity, defaultRouteComplexity),
		WeatherRisk:       orDefault(r.WeatherRisk, defaultWeatherRisk),
		PriorityLevel:     orDefault(r.PriorityLevel, defaultPriorityLevel),
		SupplierRiskScore: orDefault(r.SupplierRiskScore, defaultSupplierRiskScore),
		GeopoliticalRisk:  orDefault(r.GeopoliticalRisk, defaultGeopoliticalRisk),
		Month:             defaultMonth,
		DayOfWeek:         defaultDayOfWeek,
	}

	if r.CreatedDate != "" {
		if created, ok := parseCreatedDate(r.CreatedDate); ok {
			resolved.Month = float64(created.Month())
			resolved.DayOfWeek = float64((int(created.Weekday()) + 6) % 7)
		}
	}

	return resolved
}

func parseCreatedDate(value string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SupplierPerformanceRecord is the raw supplier mapping handed in by the
// transport layer.
type SupplierPerformanceRecord struct {
	SupplierID                string   `json:"supplier_id,omitempty"`
	SupplierName              string   `json:"supplier_name,omitempty"`
	OnTimeDeliveryRate        *float64 `json:"on_time_delivery_rate,omitempty"`
	QualityScore              *float64 `json:"quality_score,omitempty"`
	CostVariance              *float64 `json:"cost_variance,omitempty"`
	CommunicationScore        *float64 `json:"communication_score,omitempty"`
	ComplianceScore           *float64 `json:"compliance_score,omitempty"`
	OrderVolume               *float64 `json:"order_volume,omitempty"`
	AvgOrderValue             *float64 `json:"avg_order_value,omitempty"`
	PartnershipDurationMonths *float64 `json:"partnership_duration_months,omitempty"`
	DisputeCount              *float64 `json:"dispute_count,omitempty"`
}

type resolvedPerformance struct {
	OnTimeDeliveryRate        float64
	QualityScore              float64
	CostVariance              float64
	CommunicationScore        float64
	ComplianceScore           float64
	OrderVolume               float64
	AvgOrderValue             float64
	PartnershipDurationMonths float64
	DisputeCount              float64
}

func (r SupplierPerformanceRecord) resolve() resolvedPerformance {
	return resolvedPerformance{
		OnTimeDeliveryRate:        orDefault(r.OnTimeDeliveryRate, defaultOnTimeDeliveryRate),
		QualityScore:              orDefault(r.QualityScore, defaultQualityScore),
		CostVariance:              orDefault(r.CostVariance, defaultCostVariance),
		CommunicationScore:        orDefault(r.CommunicationScore, defaultCommunicationScore),
		ComplianceScore:           orDefault(r.ComplianceScore, defaultComplianceScore),
		OrderVolume:               orDefault(r.OrderVolume, defaultOrderVolume),
		AvgOrderValue:             orDefault(r.AvgOrderValue, defaultAvgOrderValue),
		PartnershipDurationMonths: orDefault(r.PartnershipDurationMonths, defaultPartnershipMonths),
		DisputeCount:              orDefault(r.DisputeCount, defaultDisputeCount),
	}
}
