package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ordertrail/ordertrail/internal/model"
)

// CountByLabel is one bucket of a grouped count.
type CountByLabel struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Stats is the dashboard summary over persisted orders.
type Stats struct {
	TotalOrders        int            `json:"total_orders"`
	OrdersByStatus     []CountByLabel `json:"orders_by_status"`
	OrdersByVendor     []CountByLabel `json:"orders_by_vendor"`
	RecentOrders       []model.Order  `json:"recent_orders"`
	PendingDelivery    int            `json:"pending_delivery"`
	DeliveredThisMonth int            `json:"delivered_this_month"`
}

// GetStats computes the dashboard summary.
func (s *SQLiteStorage) GetStats(ctx context.Context) (*Stats, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	stats := &Stats{}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&stats.TotalOrders); err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	byStatus, err := s.groupedCount(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, err
	}
	stats.OrdersByStatus = byStatus

	byVendor, err := s.groupedCount(ctx, `SELECT vendor, COUNT(*) FROM orders GROUP BY vendor ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, err
	}
	stats.OrdersByVendor = byVendor

	recent, _, err := s.ListOrders(ctx, OrderFilter{Limit: 5})
	if err != nil {
		return nil, err
	}
	stats.RecentOrders = recent

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM orders WHERE status != ?
	`, model.StatusDelivered).Scan(&stats.PendingDelivery)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending orders: %w", err)
	}

	monthStart := time.Now().UTC().Format("2006-01") + "-01"
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM orders WHERE status = ? AND updated_at >= ?
	`, model.StatusDelivered, monthStart).Scan(&stats.DeliveredThisMonth)
	if err != nil {
		return nil, fmt.Errorf("failed to count delivered orders: %w", err)
	}

	return stats, nil
}

func (s *SQLiteStorage) groupedCount(ctx context.Context, query string) ([]CountByLabel, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to run grouped count: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := []CountByLabel{}
	for rows.Next() {
		var label sql.NullString
		var count int
		if err := rows.Scan(&label, &count); err != nil {
			return nil, fmt.Errorf("failed to scan grouped count: %w", err)
		}
		counts = append(counts, CountByLabel{Label: label.String, Count: count})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate grouped count: %w", err)
	}

	return counts, nil
}
