package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/fleetops/distance-report/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&tripRow{}, &reportRow{}))
	return db
}

func trip(vehicle, date, distance string, count int) model.TripRecord {
	return model.TripRecord{
		Area:            "North",
		VehicleNumber:   vehicle,
		TankerType:      "Water",
		TransporterName: "Acme",
		ReportDate:      date,
		TripDistance:    distance,
		TripCount:       count,
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestTripRepository_UpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewTripRepository(newTestDB(t))

	batch := []model.TripRecord{
		trip("DL1AB1234", "05-07-2025", "10.00 km", 1),
		trip("DL1AB1234", "06-07-2025", "11.00 km", 2),
	}
	stored, err := repo.UpsertMany(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 2, stored)

	batch[1].TripDistance = "42.00 km"
	stored, err = repo.UpsertMany(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 2, stored)

	records, err := repo.List(ctx, model.TripFilter{})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "42.00 km", records[1].TripDistance)
}

func TestTripRepository_UpsertKeepsLastWithinBatch(t *testing.T) {
	ctx := context.Background()
	repo := NewTripRepository(newTestDB(t))

	stored, err := repo.UpsertMany(ctx, []model.TripRecord{
		trip("DL1AB1234", "05-07-2025", "10.00 km", 1),
		trip("DL1AB1234", "05-07-2025", "99.00 km", 7),
	})

	require.NoError(t, err)
	assert.Equal(t, 1, stored)
	records, err := repo.List(ctx, model.TripFilter{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "99.00 km", records[0].TripDistance)
	assert.Equal(t, 7, records[0].TripCount)
}

func TestTripRepository_UpsertRejectsNonCanonicalDate(t *testing.T) {
	repo := NewTripRepository(newTestDB(t))

	_, err := repo.UpsertMany(context.Background(), []model.TripRecord{trip("DL1AB1234", "2025-07-05", "1 km", 1)})

	require.Error(t, err)
}

func TestTripRepository_ListFiltersAndOrdersByCalendarDay(t *testing.T) {
	ctx := context.Background()
	repo := NewTripRepository(newTestDB(t))

	south := trip("DL9ZZ0001", "20-07-2025", "3 km", 1)
	south.Area = "South"
	_, err := repo.UpsertMany(ctx, []model.TripRecord{
		trip("DL1AB1234", "02-08-2025", "1 km", 1),
		trip("DL1AB1234", "15-07-2025", "2 km", 1),
		trip("DL1AB1234", "30-06-2025", "9 km", 1),
		south,
	})
	require.NoError(t, err)

	records, err := repo.List(ctx, model.TripFilter{DateFrom: day(2025, time.July, 1), DateTo: day(2025, time.August, 2)})
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "15-07-2025", records[0].ReportDate)
	assert.Equal(t, "02-08-2025", records[1].ReportDate)
	assert.Equal(t, "DL9ZZ0001", records[2].VehicleNumber)

	records, err = repo.List(ctx, model.TripFilter{Areas: []string{"South"}, Vehicles: []string{" DL9ZZ0001 ", ""}})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "20-07-2025", records[0].ReportDate)
}

func TestTripRepository_UpdateGetDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewTripRepository(newTestDB(t))

	_, err := repo.UpsertMany(ctx, []model.TripRecord{
		trip("DL1AB1234", "05-07-2025", "10.00 km", 1),
		trip("DL1AB1234", "06-07-2025", "11.00 km", 2),
	})
	require.NoError(t, err)
	records, err := repo.List(ctx, model.TripFilter{})
	require.NoError(t, err)

	edited := records[0]
	edited.TripDistance = "15.00 km"
	edited.ReportDate = "07-07-2025"
	updated, err := repo.Update(ctx, edited)
	require.NoError(t, err)
	assert.Equal(t, "07-07-2025", updated.ReportDate)

	got, err := repo.Get(ctx, edited.ID)
	require.NoError(t, err)
	assert.Equal(t, "15.00 km", got.TripDistance)

	clash := records[1]
	clash.ReportDate = "07-07-2025"
	_, err = repo.Update(ctx, clash)
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	missing := trip("DL1AB1234", "09-07-2025", "1 km", 1)
	missing.ID = uuid.New()
	_, err = repo.Update(ctx, missing)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repo.Delete(ctx, edited.ID))
	_, err = repo.Get(ctx, edited.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	require.ErrorIs(t, repo.Delete(ctx, edited.ID), gorm.ErrRecordNotFound)
}

func TestTripRepository_Distinct(t *testing.T) {
	ctx := context.Background()
	repo := NewTripRepository(newTestDB(t))

	blank := trip("DL9ZZ0001", "05-07-2025", "1 km", 1)
	blank.Area = ""
	blank.TransporterName = "Beta"
	_, err := repo.UpsertMany(ctx, []model.TripRecord{
		trip("DL1AB1234", "05-07-2025", "1 km", 1),
		trip("DL1AB1234", "06-07-2025", "1 km", 1),
		blank,
	})
	require.NoError(t, err)

	opts, err := repo.Distinct(ctx)

	require.NoError(t, err)
	assert.Equal(t, []string{"DL1AB1234", "DL9ZZ0001"}, opts.Vehicles)
	assert.Equal(t, []string{"North"}, opts.Areas)
	assert.Equal(t, []string{"Water"}, opts.TankerTypes)
	assert.Equal(t, []string{"Acme", "Beta"}, opts.Transporters)
}

func TestReportRepository_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	repo := NewReportRepository(newTestDB(t))
	generatedAt := time.Date(2025, time.August, 6, 14, 30, 5, 0, time.UTC)

	saved, err := repo.Save(ctx, model.GeneratedReport{
		VerificationCode: "code-1",
		Title:            "Daily Distance Report",
		DateFrom:         day(2025, time.July, 1),
		DateTo:           day(2025, time.July, 31),
		Filter: model.TripFilter{
			DateFrom: day(2025, time.July, 1),
			DateTo:   day(2025, time.July, 31),
			Vehicles: []string{"DL1AB1234"},
		},
		GeneratedBy: "ops@example.com",
		GeneratedAt: generatedAt,
		FileName:    "daily-distance-report-01-07-2025.pdf",
		Content:     []byte("%PDF-1.3"),
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, saved.ID)

	full, err := repo.GetByCode(ctx, "code-1", true)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, full.ID)
	assert.Equal(t, []byte("%PDF-1.3"), full.Content)
	assert.Equal(t, []string{"DL1AB1234"}, full.Filter.Vehicles)
	assert.True(t, full.Filter.DateTo.Equal(day(2025, time.July, 31)))
	assert.True(t, full.GeneratedAt.Equal(generatedAt))
	assert.True(t, full.DateFrom.Equal(day(2025, time.July, 1)))

	meta, err := repo.GetByCode(ctx, "code-1", false)
	require.NoError(t, err)
	assert.Empty(t, meta.Content)
	assert.Equal(t, "daily-distance-report-01-07-2025.pdf", meta.FileName)

	_, err = repo.GetByCode(ctx, "missing", false)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
