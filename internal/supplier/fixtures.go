package supplier

import "time"

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

// Fixtures returns the demo catalog used when no database is configured.
func Fixtures() []Supplier {
	created := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	return []Supplier{
		{
			ID: 1, Name: "Acme Industrial Supply", Category: "Industrial Equipment", Subcategory: "Heavy Machinery",
			Description: "Heavy equipment and spare parts for manufacturing plants.",
			Location:    "Chicago, USA", Region: "North America",
			Rating: 4.8, ReliabilityScore: 95, QualityScore: 92, DeliveryScore: 90, CommunicationScore: 88,
			ComplianceStatus: ComplianceCompliant, Status: StatusActive, ContactEmail: "sales@acme-industrial.example",
			Certifications: []Certification{
				{Name: "ISO 9001:2015", Valid: true, ExpiresAt: date(2026, 12, 31)},
				{Name: "ISO 14001", Valid: true, ExpiresAt: date(2026, 6, 30)},
			},
			Products: []Product{
				{Name: "Hydraulic Press", Category: "Machinery", LeadTime: "6 weeks", MinOrderQuantity: 1, UnitPrice: 45000},
				{Name: "Conveyor Belt", Category: "Machinery", LeadTime: "3 weeks", MinOrderQuantity: 5, UnitPrice: 1200},
			},
			RiskFactors: []RiskFactor{{Category: "Financial", Level: "low", Description: "Stable revenue over five years"}},
			Performance: []MonthlyMetric{
				{Month: "2024-01", OnTimeDelivery: 96, QualityRating: 4.7, ResponseTime: 4, CostVariance: -1.2},
				{Month: "2024-02", OnTimeDelivery: 94, QualityRating: 4.8, ResponseTime: 5, CostVariance: 0.4},
			},
			CreatedAt: created,
		},
		{
			ID: 2, Name: "Global Electronics Ltd", Category: "Electronics", Subcategory: "Components",
			Description: "Semiconductors, sensors and PCB assemblies.",
			Location:    "Shenzhen, China", Region: "Asia",
			Rating: 4.2, ReliabilityScore: 82, QualityScore: 85, DeliveryScore: 78, CommunicationScore: 80,
			ComplianceStatus: ComplianceReview, Status: StatusActive, ContactEmail: "orders@globalelec.example",
			Certifications: []Certification{
				{Name: "ISO 9001:2015", Valid: true, ExpiresAt: date(2025, 11, 30)},
				{Name: "RoHS", Valid: true},
			},
			Products: []Product{
				{Name: "Microcontroller Unit", Category: "Components", LeadTime: "4 weeks", MinOrderQuantity: 500, UnitPrice: 2.35},
				{Name: "Temperature Sensor", Category: "Components", LeadTime: "2 weeks", MinOrderQuantity: 1000, UnitPrice: 0.85},
			},
			RiskFactors: []RiskFactor{
				{Category: "Geopolitical", Level: "medium", Description: "Export controls on selected components"},
				{Category: "Logistics", Level: "medium", Description: "Port congestion during peak season"},
			},
			CreatedAt: created,
		},
		{
			ID: 3, Name: "Green Packaging Co", Category: "Packaging", Subcategory: "Sustainable Materials",
			Description: "Recycled and compostable packaging solutions.",
			Location:    "Rotterdam, Netherlands", Region: "Europe",
			Rating: 4.6, ReliabilityScore: 90, QualityScore: 88, DeliveryScore: 93, CommunicationScore: 91,
			ComplianceStatus: ComplianceCompliant, Status: StatusActive, ContactEmail: "hello@greenpack.example",
			Certifications: []Certification{
				{Name: "FSC Chain of Custody", Valid: true, ExpiresAt: date(2026, 3, 31)},
				{Name: "ISO 14001:2015", Valid: true, ExpiresAt: date(2026, 9, 30)},
			},
			Products: []Product{
				{Name: "Corrugated Box", Category: "Boxes", LeadTime: "1 week", MinOrderQuantity: 1000, UnitPrice: 0.42},
				{Name: "Compostable Mailer", Category: "Mailers", LeadTime: "2 weeks", MinOrderQuantity: 500, UnitPrice: 0.31},
			},
			RiskFactors: []RiskFactor{{Category: "Capacity", Level: "low", Description: "Second plant opening in Q3"}},
			CreatedAt:   created,
		},
		{
			ID: 4, Name: "Precision Metals Inc", Category: "Raw Materials", Subcategory: "Metals",
			Description: "Aluminium and steel sheet, bar and custom alloys.",
			Location:    "Pittsburgh, USA", Region: "North America",
			Rating: 3.9, ReliabilityScore: 74, QualityScore: 80, DeliveryScore: 70, CommunicationScore: 72,
			ComplianceStatus: ComplianceNonCompliant, Status: StatusActive, ContactEmail: "supply@precisionmetals.example",
			Certifications: []Certification{
				{Name: "ISO 9001:2008", Valid: false, ExpiresAt: date(2023, 8, 31)},
			},
			Products: []Product{
				{Name: "Steel Beams", Category: "Steel", LeadTime: "5 weeks", MinOrderQuantity: 10, UnitPrice: 15},
				{Name: "Aluminium Sheet", Category: "Aluminium", LeadTime: "3 weeks", MinOrderQuantity: 50, UnitPrice: 38.5},
			},
			RiskFactors: []RiskFactor{
				{Category: "Compliance", Level: "high", Description: "Quality certificate lapsed"},
				{Category: "Financial", Level: "medium", Description: "Rising energy costs"},
			},
			CreatedAt: created,
		},
		{
			ID: 5, Name: "Nordic Office Solutions", Category: "Office Supplies", Subcategory: "Furniture",
			Description: "Ergonomic office furniture and workplace supplies.",
			Location:    "Stockholm, Sweden", Region: "Europe",
			Rating: 4.4, ReliabilityScore: 88, QualityScore: 90, DeliveryScore: 85, CommunicationScore: 94,
			ComplianceStatus: ComplianceCompliant, Status: StatusActive, ContactEmail: "b2b@nordicoffice.example",
			Certifications: []Certification{
				{Name: "ISO 9001:2015", Valid: true, ExpiresAt: date(2027, 2, 28)},
				{Name: "Nordic Swan Ecolabel", Valid: true},
			},
			Products: []Product{
				{Name: "Ergonomic Chair", Category: "Seating", LeadTime: "2 weeks", MinOrderQuantity: 10, UnitPrice: 289},
				{Name: "Standing Desk", Category: "Desks", LeadTime: "3 weeks", MinOrderQuantity: 5, UnitPrice: 540},
			},
			RiskFactors: []RiskFactor{{Category: "Logistics", Level: "low", Description: "Regional warehouse network"}},
			CreatedAt:   created,
		},
		{
			ID: 6, Name: "TechParts Direct", Category: "Electronics", Subcategory: "Cables & Connectors",
			Description: "Cables, connectors and networking hardware.",
			Location:    "Bangalore, India", Region: "Asia",
			Rating: 4.0, ReliabilityScore: 79, QualityScore: 76, DeliveryScore: 81, CommunicationScore: 77,
			ComplianceStatus: ComplianceReview, Status: StatusInactive, ContactEmail: "sales@techparts.example",
			Certifications: []Certification{
				{Name: "CE Marking", Valid: true},
				{Name: "UL Listed", Valid: true, ExpiresAt: date(2025, 12, 31)},
			},
			Products: []Product{
				{Name: "Cat6 Cable", Category: "Cables", LeadTime: "1 week", MinOrderQuantity: 100, UnitPrice: 3.2},
				{Name: "RJ45 Connector", Category: "Connectors", LeadTime: "1 week", MinOrderQuantity: 1000, UnitPrice: 0.12},
			},
			RiskFactors: []RiskFactor{{Category: "Quality", Level: "medium", Description: "Two returned batches last quarter"}},
			CreatedAt:   created,
		},
	}
}
