package compliance

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var itemColumns = []string{
	"id", "supplier_id", "document_type", "file_name", "checksum", "status",
	"expires_at", "category", "last_checked", "notes",
}

// PostgresStore persists compliance items with pgx.
type PostgresStore struct {
	Pool *pgxpool.Pool
}

// Create implements Store.
func (p PostgresStore) Create(ctx context.Context, it Item) error {
	query, args, err := psql.Insert("compliance_items").Columns(itemColumns...).Values(
		it.ID, it.SupplierID, it.DocumentType, it.FileName, it.Checksum, it.Status,
		it.ExpiresAt, it.Category, it.LastChecked, it.Notes,
	).ToSql()
	if err != nil {
		return err
	}
	_, err = p.Pool.Exec(ctx, query, args...)
	return err
}

// Get implements Store.
func (p PostgresStore) Get(ctx context.Context, id string) (Item, error) {
	query, args, err := psql.Select(itemColumns...).From("compliance_items").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return Item{}, err
	}
	it, err := scanItem(p.Pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Item{}, ErrNotFound
	}
	return it, err
}

// List implements Store.
func (p PostgresStore) List(ctx context.Context, f Filter) ([]Item, error) {
	builder := psql.Select(itemColumns...).From("compliance_items").OrderBy("created_at", "id")
	if f.SupplierID != 0 {
		builder = builder.Where(sq.Eq{"supplier_id": f.SupplierID})
	}
	if f.Status != "" {
		builder = builder.Where(sq.Eq{"status": f.Status})
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := p.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// Update implements Store.
func (p PostgresStore) Update(ctx context.Context, it Item) error {
	query, args, err := psql.Update("compliance_items").
		Set("status", it.Status).
		Set("expires_at", it.ExpiresAt).
		Set("category", it.Category).
		Set("last_checked", it.LastChecked).
		Set("notes", it.Notes).
		Where(sq.Eq{"id": it.ID}).
		ToSql()
	if err != nil {
		return err
	}
	tag, err := p.Pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanItem(row pgx.Row) (Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.SupplierID, &it.DocumentType, &it.FileName, &it.Checksum, &it.Status,
		&it.ExpiresAt, &it.Category, &it.LastChecked, &it.Notes)
	return it, err
}
