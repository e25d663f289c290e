package repositories

import (
	"fmt"

	"estate_backend/internal/models"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

// DashboardStats - сводка для админ-панели
type DashboardStats struct {
	PropertiesByStatus    map[string]int64 `json:"properties_by_status"`
	UsersByRole           map[string]int64 `json:"users_by_role"`
	InquiriesByStatus     map[string]int64 `json:"inquiries_by_status"`
	ConsultationsByStatus map[string]int64 `json:"consultations_by_status"`
	PublishedPosts        int64            `json:"published_posts"`
	PendingOutboxEvents   int64            `json:"pending_outbox_events"`
	FailedOutboxEvents    int64            `json:"failed_outbox_events"`
}

type StatsRepository interface {
	Dashboard(db *gorm.DB) (*DashboardStats, error)
}

type statsRepository struct{}

func NewStatsRepository() StatsRepository {
	return &statsRepository{}
}

type groupCount struct {
	Label string `db:"label"`
	Count int64  `db:"count"`
}

// sqlxFromGorm оборачивает пул gorm; закрывать его нельзя
func sqlxFromGorm(db *gorm.DB) (*sqlx.DB, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	driver := db.Dialector.Name()
	if driver == "sqlite" {
		driver = "sqlite3"
	}
	return sqlx.NewDb(sqlDB, driver), nil
}

func groupBy(x *sqlx.DB, table, column string) (map[string]int64, error) {
	var rows []groupCount
	query := fmt.Sprintf("SELECT %s AS label, COUNT(*) AS count FROM %s GROUP BY %s", column, table, column)
	if err := x.Select(&rows, query); err != nil {
		return nil, fmt.Errorf("failed to count %s by %s: %w", table, column, err)
	}
	result := make(map[string]int64, len(rows))
	for _, row := range rows {
		result[row.Label] = row.Count
	}
	return result, nil
}

func countWhere(x *sqlx.DB, table, column string, value interface{}) (int64, error) {
	var count int64
	query := x.Rebind(fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = ?", table, column))
	if err := x.Get(&count, query, value); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return count, nil
}

func (r *statsRepository) Dashboard(db *gorm.DB) (*DashboardStats, error) {
	x, err := sqlxFromGorm(db)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{}
	if stats.PropertiesByStatus, err = groupBy(x, "properties", "status"); err != nil {
		return nil, err
	}
	if stats.UsersByRole, err = groupBy(x, "users", "role"); err != nil {
		return nil, err
	}
	if stats.InquiriesByStatus, err = groupBy(x, "inquiries", "status"); err != nil {
		return nil, err
	}
	if stats.ConsultationsByStatus, err = groupBy(x, "consultations", "status"); err != nil {
		return nil, err
	}
	if stats.PublishedPosts, err = countWhere(x, "blog_posts", "status", string(models.BlogStatusPublished)); err != nil {
		return nil, err
	}
	if stats.PendingOutboxEvents, err = countWhere(x, "outbox_events", "status", string(models.OutboxStatusPending)); err != nil {
		return nil, err
	}
	if stats.FailedOutboxEvents, err = countWhere(x, "outbox_events", "status", string(models.OutboxStatusFailed)); err != nil {
		return nil, err
	}
	return stats, nil
}
