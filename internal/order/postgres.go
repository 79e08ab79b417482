package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var orderColumns = []string{
	"id", "supplier_id", "supplier_name", "order_date", "delivery_date", "payment_terms", "items",
	"subtotal", "tax", "shipping", "grand_total", "status", "notes", "version", "created_at", "updated_at",
}

// PostgresStore persists orders with pgx. Line items are stored as jsonb.
type PostgresStore struct {
	Pool *pgxpool.Pool
}

// Create implements Store.
func (p PostgresStore) Create(ctx context.Context, o Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}
	query, args, err := psql.Insert("orders").Columns(orderColumns...).Values(
		o.ID, o.SupplierID, o.SupplierName, o.OrderDate, o.DeliveryDate, o.PaymentTerms, items,
		o.Subtotal, o.Tax, o.Shipping, o.GrandTotal, o.Status, o.Notes, o.Version, o.CreatedAt, o.UpdatedAt,
	).ToSql()
	if err != nil {
		return err
	}
	_, err = p.Pool.Exec(ctx, query, args...)
	return err
}

// Get implements Store.
func (p PostgresStore) Get(ctx context.Context, id string) (Order, error) {
	query, args, err := psql.Select(orderColumns...).From("orders").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return Order{}, err
	}
	o, err := scanOrder(p.Pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	return o, err
}

// List implements Store.
func (p PostgresStore) List(ctx context.Context, f ListFilter) ([]Order, int, error) {
	where := sq.And{}
	if f.Status != "" {
		where = append(where, sq.Eq{"status": f.Status})
	}
	if f.SupplierID != 0 {
		where = append(where, sq.Eq{"supplier_id": f.SupplierID})
	}

	countQuery, countArgs, err := psql.Select("COUNT(*)").From("orders").Where(where).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := p.Pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	builder := psql.Select(orderColumns...).From("orders").Where(where).OrderBy("created_at DESC")
	if f.Limit > 0 {
		builder = builder.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		builder = builder.Offset(uint64(f.Offset))
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := p.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, o)
	}
	return out, total, rows.Err()
}

// UpdateStatus implements Store. The version predicate makes the write a
// compare-and-swap, so concurrent updates cannot silently overwrite each other.
func (p PostgresStore) UpdateStatus(ctx context.Context, id, status string, expectedVersion *int, at time.Time) (Order, error) {
	builder := psql.Update("orders").
		Set("status", status).
		Set("version", sq.Expr("version + 1")).
		Set("updated_at", at).
		Where(sq.Eq{"id": id})
	if expectedVersion != nil {
		builder = builder.Where(sq.Eq{"version": *expectedVersion})
	}
	query, args, err := builder.Suffix("RETURNING " + strings.Join(orderColumns, ", ")).ToSql()
	if err != nil {
		return Order{}, err
	}
	o, err := scanOrder(p.Pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		if _, getErr := p.Get(ctx, id); getErr != nil {
			return Order{}, getErr
		}
		return Order{}, ErrVersionConflict
	}
	return o, err
}

func scanOrder(row pgx.Row) (Order, error) {
	var (
		o     Order
		items []byte
	)
	err := row.Scan(&o.ID, &o.SupplierID, &o.SupplierName, &o.OrderDate, &o.DeliveryDate, &o.PaymentTerms, &items,
		&o.Subtotal, &o.Tax, &o.Shipping, &o.GrandTotal, &o.Status, &o.Notes, &o.Version, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return Order{}, err
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &o.Items); err != nil {
			return Order{}, fmt.Errorf("decode order %s items: %w", o.ID, err)
		}
	}
	return o, nil
}
