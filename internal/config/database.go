package config

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"temple_pass/internal/models"
)

// InitDB opens PostgreSQL through the lib/pq driver, hands the pool to GORM
// and migrates the schema.
func InitDB(s Settings) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		s.DBHost, s.DBUser, s.DBPassword, s.DBName, s.DBPort, s.DBSSLMode, s.DBTimezone,
	)

	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.AutoMigrate(&models.User{}, &models.Route{}, &models.Waypoint{}, &models.TimeRestriction{}, &models.TimeSlot{}, &models.Pass{})
	if err != nil {
		return nil, fmt.Errorf("auto-migration failed: %w", err)
	}
	logrus.WithFields(logrus.Fields{"host": s.DBHost, "db": s.DBName}).Info("Database connected and migrated")

	return db, nil
}
