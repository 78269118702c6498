package store

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"temple_pass/internal/models"
	"temple_pass/internal/traffic"
)

// dryRunDB builds statements against the postgres dialect without a server.
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	sqlDB, err := sql.Open("postgres", "host=127.0.0.1 dbname=temple_pass sslmode=disable")
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)
	return db
}

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil, "x"))

	err := translate(fmt.Errorf("query: %w", gorm.ErrRecordNotFound), "route 4")
	assert.ErrorIs(t, err, traffic.ErrNotFound)
	assert.Contains(t, err.Error(), "route 4")

	err = translate(&pq.Error{Code: "23505", Message: "duplicate key"}, "create route")
	assert.ErrorIs(t, err, traffic.ErrConflict)

	boom := errors.New("connection reset")
	err = translate(boom, "find routes")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, traffic.ErrNotFound)
	assert.NotErrorIs(t, err, traffic.ErrConflict)
}

func TestSlotQueryDayWindowIsHalfOpen(t *testing.T) {
	db := dryRunDB(t)
	from := time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC)
	next := from.AddDate(0, 0, 1)

	var slots []models.TimeSlot
	stmt := slotQuery(db, traffic.SlotQuery{RouteID: 3, From: from, Before: next}).Find(&slots).Statement
	query := stmt.SQL.String()

	assert.Contains(t, query, "start_time >= $2")
	assert.Contains(t, query, "start_time < $3")
	assert.NotContains(t, query, "start_time <=")
	assert.Equal(t, uint(3), stmt.Vars[0])
	assert.Equal(t, from, stmt.Vars[1])
	assert.Equal(t, next, stmt.Vars[2])
}

func TestSlotQueryInclusiveWindow(t *testing.T) {
	db := dryRunDB(t)
	at := time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)

	var slots []models.TimeSlot
	stmt := slotQuery(db, traffic.SlotQuery{From: at.Add(-time.Hour), To: at.Add(time.Hour)}).Find(&slots).Statement
	query := stmt.SQL.String()

	assert.Contains(t, query, "start_time >= $1")
	assert.Contains(t, query, "start_time <= $2")
	assert.NotContains(t, query, "start_time < $")
}
