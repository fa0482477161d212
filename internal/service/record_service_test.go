package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/fleetops/distance-report/internal/ingest"
	"github.com/fleetops/distance-report/internal/model"
)

// mockRecordStore is a test double for RecordStore.
// Set only the method fields your test needs.
type mockRecordStore struct {
	upsertMany func(ctx context.Context, records []model.TripRecord) (int, error)
	list       func(ctx context.Context, filter model.TripFilter) ([]model.TripRecord, error)
	get        func(ctx context.Context, id uuid.UUID) (*model.TripRecord, error)
	update     func(ctx context.Context, rec model.TripRecord) (*model.TripRecord, error)
	delete     func(ctx context.Context, id uuid.UUID) error
	distinct   func(ctx context.Context) (*model.FilterOptions, error)
}

func (m *mockRecordStore) UpsertMany(ctx context.Context, records []model.TripRecord) (int, error) {
	return m.upsertMany(ctx, records)
}
func (m *mockRecordStore) List(ctx context.Context, filter model.TripFilter) ([]model.TripRecord, error) {
	return m.list(ctx, filter)
}
func (m *mockRecordStore) Get(ctx context.Context, id uuid.UUID) (*model.TripRecord, error) {
	return m.get(ctx, id)
}
func (m *mockRecordStore) Update(ctx context.Context, rec model.TripRecord) (*model.TripRecord, error) {
	return m.update(ctx, rec)
}
func (m *mockRecordStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}
func (m *mockRecordStore) Distinct(ctx context.Context) (*model.FilterOptions, error) {
	return m.distinct(ctx)
}

var _ RecordStore = (*mockRecordStore)(nil)

func TestImport_storesParsedRecords(t *testing.T) {
	var upserted []model.TripRecord
	store := &mockRecordStore{upsertMany: func(_ context.Context, records []model.TripRecord) (int, error) {
		upserted = records
		return len(records), nil
	}}
	svc := NewRecordService(store, zerolog.Nop())
	body := "Vehicle No,Report Date,Trip Distance,Trip Count\n" +
		"DL1AB1234,05-07-2025,12.5 km,2\n" +
		",,,\n" +
		"DL1AB1234,31-02-2025,1 km,1\n" +
		"DL9ZZ0001,2025-07-06,4,1\n"

	result, err := svc.Import(context.Background(), "july.csv", strings.NewReader(body))

	require.NoError(t, err)
	assert.Equal(t, 1, result.Sheets)
	assert.Equal(t, 2, result.Parsed)
	assert.Equal(t, 2, result.Stored)
	assert.Equal(t, 1, result.Skipped[ingest.SkipBlank])
	assert.Equal(t, 1, result.Skipped[ingest.SkipMalformedDate])
	require.Len(t, upserted, 2)
	assert.Equal(t, "06-07-2025", upserted[1].ReportDate)
	assert.Equal(t, "4.00 km", upserted[1].TripDistance)
}

func TestImport_rejectsUnusableFiles(t *testing.T) {
	svc := NewRecordService(&mockRecordStore{}, zerolog.Nop())

	_, err := svc.Import(context.Background(), "notes.txt", strings.NewReader("hello"))
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Import(context.Background(), "data.csv", strings.NewReader("a,b\n1,2\n"))
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreate_normalizesInput(t *testing.T) {
	var saved model.TripRecord
	store := &mockRecordStore{
		upsertMany: func(_ context.Context, records []model.TripRecord) (int, error) {
			saved = records[0]
			return 1, nil
		},
		list: func(_ context.Context, f model.TripFilter) ([]model.TripRecord, error) {
			assert.Equal(t, []string{"DL1AB1234"}, f.Vehicles)
			assert.True(t, f.DateFrom.Equal(f.DateTo))
			rec := saved
			rec.ID = uuid.New()
			return []model.TripRecord{rec}, nil
		},
	}
	svc := NewRecordService(store, zerolog.Nop())

	rec, err := svc.Create(context.Background(), RecordInput{
		VehicleNumber: " DL1AB1234 ",
		ReportDate:    "5/7/25",
		TripDistance:  "12.346km",
		TripCount:     "1,204",
	})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, rec.ID)
	assert.Equal(t, "DL1AB1234", rec.VehicleNumber)
	assert.Equal(t, "05-07-2025", rec.ReportDate)
	assert.Equal(t, "12.35 km", rec.TripDistance)
	assert.Equal(t, 1204, rec.TripCount)
}

func TestCreate_rejectsInvalidInput(t *testing.T) {
	svc := NewRecordService(&mockRecordStore{}, zerolog.Nop())
	cases := map[string]RecordInput{
		"missing vehicle": {ReportDate: "05-07-2025"},
		"range date":      {VehicleNumber: "DL1", ReportDate: "01-07-2025 - 31-07-2025"},
		"bad date":        {VehicleNumber: "DL1", ReportDate: "yesterday"},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), input)
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestUpdate_mapsStoreErrors(t *testing.T) {
	id := uuid.New()
	input := RecordInput{VehicleNumber: "DL1", ReportDate: "05-07-2025"}

	store := &mockRecordStore{update: func(_ context.Context, rec model.TripRecord) (*model.TripRecord, error) {
		assert.Equal(t, id, rec.ID)
		return nil, gorm.ErrDuplicatedKey
	}}
	_, err := NewRecordService(store, zerolog.Nop()).Update(context.Background(), id, input)
	require.ErrorIs(t, err, ErrInvalidInput)

	store.update = func(context.Context, model.TripRecord) (*model.TripRecord, error) {
		return nil, gorm.ErrRecordNotFound
	}
	_, err = NewRecordService(store, zerolog.Nop()).Update(context.Background(), id, input)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDelete_missing(t *testing.T) {
	store := &mockRecordStore{delete: func(context.Context, uuid.UUID) error { return gorm.ErrRecordNotFound }}

	err := NewRecordService(store, zerolog.Nop()).Delete(context.Background(), uuid.New())

	require.ErrorIs(t, err, ErrNotFound)
}
