package infra

import (
	"context"
	"fmt"

	"github.com/Ayush3323/crm-backend/migrations"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

// Migrate runs a goose command (up, down, status, ...) against db using the
// embedded SQL migrations. Only postgres is supported; mysql uses AutoMigrate.
func Migrate(ctx context.Context, db *gorm.DB, command string, args ...string) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect(DriverPostgres); err != nil {
		return err
	}
	if err := goose.RunContext(ctx, command, sqlDB, ".", args...); err != nil {
		return fmt.Errorf("migrate %s: %w", command, err)
	}
	return nil
}
