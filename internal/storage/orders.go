package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/ordertrail/ordertrail/internal/common"
	"github.com/ordertrail/ordertrail/internal/model"
)

// OrderFilter narrows ListOrders results. Zero values mean "no filter".
type OrderFilter struct {
	Status string
	Vendor string
	Search string // matches order number or customer name, substring
	Limit  int
	Offset int
}

// CreateOrder inserts a new order and its items in one transaction. A
// uniqueness violation on order_number is reported as
// common.ErrDuplicateEntry so the caller can fall back to an update.
func (s *SQLiteStorage) CreateOrder(ctx context.Context, order *model.Order) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateOrder(order); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO orders (id, order_number, vendor, customer_name, status, location, expected_date, notes, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, order.ID, order.OrderNumber, order.Vendor, order.CustomerName, order.Status,
			order.Location, order.ExpectedDate, order.Notes, order.CreatedAt, order.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: order number %s", common.ErrDuplicateEntry, order.OrderNumber)
			}
			return fmt.Errorf("failed to insert order: %w", err)
		}

		return insertItemsTx(ctx, tx, order.ID, order.Items)
	})
}

// UpdateOrder rewrites the order row. When replaceItems is true all owned
// items are deleted and the order's item list inserted in the same
// transaction; when false the existing items are left untouched.
func (s *SQLiteStorage) UpdateOrder(ctx context.Context, order *model.Order, replaceItems bool) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateOrder(order); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE orders
			SET order_number = ?, vendor = ?, customer_name = ?, status = ?,
			    location = ?, expected_date = ?, notes = ?, updated_at = ?
			WHERE id = ?
		`, order.OrderNumber, order.Vendor, order.CustomerName, order.Status,
			order.Location, order.ExpectedDate, order.Notes, order.UpdatedAt, order.ID)
		if err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check update result: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("%w: order %s", common.ErrNotFound, order.ID)
		}

		if !replaceItems {
			return nil
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = ?`, order.ID); err != nil {
			return fmt.Errorf("failed to delete order items: %w", err)
		}
		return insertItemsTx(ctx, tx, order.ID, order.Items)
	})
}

// GetOrder retrieves an order with its items by internal id.
func (s *SQLiteStorage) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return s.getOrderBy(ctx, "id = ?", id)
}

// GetOrderByNumber retrieves an order with its items by its natural key.
func (s *SQLiteStorage) GetOrderByNumber(ctx context.Context, orderNumber string) (*model.Order, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(orderNumber, "orderNumber"); err != nil {
		return nil, err
	}
	return s.getOrderBy(ctx, "order_number = ?", orderNumber)
}

func (s *SQLiteStorage) getOrderBy(ctx context.Context, where string, arg any) (*model.Order, error) {
	order, err := scanOrder(s.db.QueryRowContext(ctx, `
		SELECT id, order_number, vendor, customer_name, status, location, expected_date, notes, created_at, updated_at
		FROM orders
		WHERE `+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	items, err := s.getItems(ctx, s.db, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

// ListOrders returns the filtered page of orders, newest first, plus the
// total count matching the filter.
func (s *SQLiteStorage) ListOrders(ctx context.Context, filter OrderFilter) ([]model.Order, int, error) {
	if err := validateContext(ctx); err != nil {
		return nil, 0, err
	}

	where, args := buildOrderFilter(filter)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, order_number, vendor, customer_name, status, location, expected_date, notes, created_at, updated_at
		FROM orders` + where + `
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`
	rows, err := s.db.QueryContext(ctx, query, append(args, limit, filter.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var orders []model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate orders: %w", err)
	}

	for i := range orders {
		items, err := s.getItems(ctx, s.db, orders[i].ID)
		if err != nil {
			return nil, 0, err
		}
		orders[i].Items = items
	}

	return orders, total, nil
}

// DeleteOrder removes an order; owned items cascade.
func (s *SQLiteStorage) DeleteOrder(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: order %s", common.ErrNotFound, id)
	}
	return nil
}

func buildOrderFilter(filter OrderFilter) (string, []any) {
	var clauses []string
	var args []any

	if filter.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Vendor != "" {
		clauses = append(clauses, "vendor = ?")
		args = append(args, filter.Vendor)
	}
	if filter.Search != "" {
		clauses = append(clauses, "(order_number LIKE ? OR customer_name LIKE ?)")
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func insertItemsTx(ctx context.Context, tx *sql.Tx, orderID string, items []model.OrderItem) error {
	for _, item := range items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, item_name, quantity, price, currency)
			VALUES (?, ?, ?, ?, ?, ?)
		`, item.ID, orderID, item.ItemName, item.Quantity, item.Price, item.Currency)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStorage) getItems(ctx context.Context, q queryable, orderID string) ([]model.OrderItem, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, order_id, item_name, quantity, price, currency
		FROM order_items
		WHERE order_id = ?
		ORDER BY rowid
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := []model.OrderItem{}
	for rows.Next() {
		var item model.OrderItem
		var name sql.NullString
		if err := rows.Scan(&item.ID, &item.OrderID, &name, &item.Quantity, &item.Price, &item.Currency); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		item.ItemName = name.String
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate order items: %w", err)
	}

	return items, nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*model.Order, error) {
	var order model.Order
	var vendor, customer, location, expected, notes sql.NullString
	if err := row.Scan(&order.ID, &order.OrderNumber, &vendor, &customer, &order.Status,
		&location, &expected, &notes, &order.CreatedAt, &order.UpdatedAt); err != nil {
		return nil, err
	}
	order.Vendor = vendor.String
	order.CustomerName = customer.String
	order.Location = location.String
	order.ExpectedDate = expected.String
	order.Notes = notes.String
	return &order, nil
}

// isUniqueViolation reports whether err is a SQLite unique constraint error.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
