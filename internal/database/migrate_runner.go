package database

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"timebank/internal/middleware"

	"gorm.io/gorm"
)

// appliedMigration is one row of migration_logs.
type appliedMigration struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255;not null"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

func (appliedMigration) TableName() string { return "migration_logs" }

// Migrator applies and reverts a fixed, version-ordered set of SQL migrations.
type Migrator struct {
	db  *gorm.DB
	set []Migration
}

// NewMigrator returns a Migrator over the embedded migrations.
func NewMigrator(db *gorm.DB) *Migrator {
	return &Migrator{db: db, set: GetMigrations()}
}

// Applied lists recorded versions in ascending order. A database that was
// never migrated has none.
func (m *Migrator) Applied(ctx context.Context) ([]int, error) {
	var versions []int
	err := m.db.WithContext(ctx).Model(&appliedMigration{}).Order("version").Pluck("version", &versions).Error
	switch {
	case err == nil:
		return versions, nil
	case errors.Is(err, gorm.ErrRecordNotFound), noLogTable(err):
		return []int{}, nil
	default:
		return nil, fmt.Errorf("read migration_logs: %w", err)
	}
}

// Pending returns the migrations not yet recorded. Recorded versions this
// binary does not know about are an error.
func (m *Migrator) Pending(ctx context.Context) ([]Migration, error) {
	applied, err := m.Applied(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkKnownVersions(applied, m.set); err != nil {
		return nil, err
	}
	var out []Migration
	for _, mig := range m.set {
		if !slices.Contains(applied, mig.Version) {
			out = append(out, mig)
		}
	}
	return out, nil
}

// Up runs every pending migration, each in its own transaction, and reports
// how many ran.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	if err := m.db.WithContext(ctx).AutoMigrate(&appliedMigration{}); err != nil {
		return 0, fmt.Errorf("create migration_logs: %w", err)
	}
	pending, err := m.Pending(ctx)
	if err != nil {
		return 0, err
	}
	for i, mig := range pending {
		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(mig.UpScript).Error; err != nil {
				return fmt.Errorf("migration %s: %w", mig.String(), err)
			}
			return tx.Create(&appliedMigration{Version: mig.Version, Name: mig.Name}).Error
		})
		if err != nil {
			return i, err
		}
		middleware.Logger.InfoContext(ctx, "migration applied", "version", mig.Version, "name", mig.Name)
	}
	return len(pending), nil
}

// Down reverts the newest recorded migration. It returns nil, nil when there
// is nothing to revert.
func (m *Migrator) Down(ctx context.Context) (*Migration, error) {
	applied, err := m.Applied(ctx)
	if err != nil || len(applied) == 0 {
		return nil, err
	}
	latest := applied[len(applied)-1]
	idx := slices.IndexFunc(m.set, func(mig Migration) bool { return mig.Version == latest })
	if idx < 0 {
		return nil, fmt.Errorf("no down script for migration %06d", latest)
	}
	mig := m.set[idx]

	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(mig.DownScript).Error; err != nil {
			return fmt.Errorf("revert %s: %w", mig.String(), err)
		}
		return tx.Delete(&appliedMigration{}, "version = ?", mig.Version).Error
	})
	if err != nil {
		return nil, err
	}
	middleware.Logger.InfoContext(ctx, "migration reverted", "version", mig.Version, "name", mig.Name)
	return &mig, nil
}

// RunMigrations applies the pending embedded migrations.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	_, err := NewMigrator(db).Up(ctx)
	return err
}

// RollbackLatest reverts the newest applied embedded migration.
func RollbackLatest(ctx context.Context, db *gorm.DB) (*Migration, error) {
	return NewMigrator(db).Down(ctx)
}

func noLogTable(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "no such table") ||
		(strings.Contains(msg, "relation") && strings.Contains(msg, "does not exist"))
}

func checkKnownVersions(applied []int, set []Migration) error {
	var unknown []string
	for _, v := range applied {
		if !slices.ContainsFunc(set, func(mig Migration) bool { return mig.Version == v }) {
			unknown = append(unknown, fmt.Sprintf("%06d", v))
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("database has migrations this build does not ship: %s", strings.Join(unknown, ", "))
	}
	return nil
}
