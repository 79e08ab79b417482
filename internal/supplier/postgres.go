package supplier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// supplierIDLock keys the advisory lock that serialises id assignment.
const supplierIDLock = 7_301_001

const supplierColumns = `id, name, description, category, subcategory, location, region, rating,
reliability_score, quality_score, delivery_score, communication_score, compliance_status, status,
contact_email, certifications, products, risk_factors, performance, created_at`

// PostgresStore persists suppliers with pgx. Nested collections are stored as jsonb.
type PostgresStore struct {
	Pool *pgxpool.Pool
}

// Add implements Store. The advisory lock is scoped to the transaction so
// concurrent inserts never compute the same max+1.
func (p PostgresStore) Add(ctx context.Context, s Supplier) (out Supplier, err error) {
	tx, err := p.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Supplier{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()
	if _, err = tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, supplierIDLock); err != nil {
		return Supplier{}, fmt.Errorf("lock supplier ids: %w", err)
	}
	if err = tx.QueryRow(ctx, `SELECT COALESCE(MAX(id), 0) + 1 FROM suppliers`).Scan(&s.ID); err != nil {
		return Supplier{}, fmt.Errorf("next supplier id: %w", err)
	}
	certs, products, risks, perf, err := encodeNested(s)
	if err != nil {
		return Supplier{}, err
	}
	row := tx.QueryRow(ctx, `
INSERT INTO suppliers (id, name, description, category, subcategory, location, region, rating,
  reliability_score, quality_score, delivery_score, communication_score, compliance_status, status,
  contact_email, certifications, products, risk_factors, performance)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
RETURNING `+supplierColumns,
		s.ID, s.Name, s.Description, s.Category, s.Subcategory, s.Location, s.Region, s.Rating,
		s.ReliabilityScore, s.QualityScore, s.DeliveryScore, s.CommunicationScore, s.ComplianceStatus, s.Status,
		s.ContactEmail, certs, products, risks, perf)
	out, err = scanSupplier(row)
	if err != nil {
		return Supplier{}, fmt.Errorf("insert supplier: %w", err)
	}
	return out, nil
}

// GetByID implements Store.
func (p PostgresStore) GetByID(ctx context.Context, id int) (Supplier, error) {
	row := p.Pool.QueryRow(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE id = $1`, id)
	s, err := scanSupplier(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Supplier{}, ErrNotFound
	}
	return s, err
}

// List implements Store.
func (p PostgresStore) List(ctx context.Context) ([]Supplier, error) {
	rows, err := p.Pool.Query(ctx, `SELECT `+supplierColumns+` FROM suppliers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Supplier
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// UpdateComplianceStatus implements Store.
func (p PostgresStore) UpdateComplianceStatus(ctx context.Context, id int, status string) error {
	tag, err := p.Pool.Exec(ctx, `UPDATE suppliers SET compliance_status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func encodeNested(s Supplier) (certs, products, risks, perf []byte, err error) {
	if certs, err = json.Marshal(nonNil(s.Certifications)); err != nil {
		return
	}
	if products, err = json.Marshal(nonNil(s.Products)); err != nil {
		return
	}
	if risks, err = json.Marshal(nonNil(s.RiskFactors)); err != nil {
		return
	}
	perf, err = json.Marshal(nonNil(s.Performance))
	return
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}

func scanSupplier(row pgx.Row) (Supplier, error) {
	var (
		s                            Supplier
		certs, products, risks, perf []byte
	)
	err := row.Scan(&s.ID, &s.Name, &s.Description, &s.Category, &s.Subcategory, &s.Location, &s.Region,
		&s.Rating, &s.ReliabilityScore, &s.QualityScore, &s.DeliveryScore, &s.CommunicationScore,
		&s.ComplianceStatus, &s.Status, &s.ContactEmail, &certs, &products, &risks, &perf, &s.CreatedAt)
	if err != nil {
		return Supplier{}, err
	}
	for _, f := range []struct {
		raw []byte
		dst any
	}{{certs, &s.Certifications}, {products, &s.Products}, {risks, &s.RiskFactors}, {perf, &s.Performance}} {
		if len(f.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(f.raw, f.dst); err != nil {
			return Supplier{}, fmt.Errorf("decode supplier %d: %w", s.ID, err)
		}
	}
	return s, nil
}
