package main

import (
	"database/sql"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/noah-isme/backend-procure/internal/compliance"
	"github.com/noah-isme/backend-procure/internal/supplier"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	seedSuppliers(db)
	seedComplianceItems(db, time.Now().UTC())

	log.Println("Seeding completed successfully!")
}

func seedSuppliers(db *sql.DB) {
	log.Println("Seeding suppliers...")
	for _, s := range supplier.Fixtures() {
		certs := mustJSON(s.Certifications)
		products := mustJSON(s.Products)
		risks := mustJSON(s.RiskFactors)
		perf := mustJSON(s.Performance)

		// JSON columns go over the wire as text; lib/pq would send []byte as bytea.
		_, err := db.Exec(`
			INSERT INTO suppliers (id, name, description, category, subcategory, location, region, rating,
				reliability_score, quality_score, delivery_score, communication_score, compliance_status, status,
				contact_email, certifications, products, risk_factors, performance)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16::jsonb,$17::jsonb,$18::jsonb,$19::jsonb)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				description = EXCLUDED.description,
				rating = EXCLUDED.rating,
				compliance_status = EXCLUDED.compliance_status,
				certifications = EXCLUDED.certifications,
				products = EXCLUDED.products,
				risk_factors = EXCLUDED.risk_factors,
				performance = EXCLUDED.performance
		`, s.ID, s.Name, s.Description, s.Category, s.Subcategory, s.Location, s.Region, s.Rating,
			s.ReliabilityScore, s.QualityScore, s.DeliveryScore, s.CommunicationScore, s.ComplianceStatus, s.Status,
			s.ContactEmail, certs, products, risks, perf)
		if err != nil {
			log.Printf("Failed to seed supplier %s: %v", s.Name, err)
			continue
		}
		log.Printf("Seeded supplier %d %s", s.ID, s.Name)
	}
}

func seedComplianceItems(db *sql.DB, now time.Time) {
	log.Println("Seeding compliance items...")
	for _, it := range compliance.FixtureItems(now) {
		_, err := db.Exec(`
			INSERT INTO compliance_items (id, supplier_id, document_type, file_name, checksum, status,
				expires_at, category, last_checked, notes)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
			ON CONFLICT (id) DO NOTHING
		`, it.ID, it.SupplierID, it.DocumentType, it.FileName, it.Checksum, it.Status,
			it.ExpiresAt, it.Category, it.LastChecked, it.Notes)
		if err != nil {
			log.Printf("Failed to seed compliance item %s: %v", it.ID, err)
		}
	}
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		log.Fatalf("encode fixture: %v", err)
	}
	if string(data) == "null" {
		return "[]"
	}
	return string(data)
}
