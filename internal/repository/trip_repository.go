package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fleetops/distance-report/internal/model"
	"github.com/fleetops/distance-report/internal/normalize"
)

const upsertBatchSize = 500

type tripRow struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	Area            string    `gorm:"not null;default:''"`
	VehicleNumber   string    `gorm:"not null;uniqueIndex:uq_trip_vehicle_date,priority:1"`
	TankerType      string    `gorm:"not null;default:''"`
	TransporterName string    `gorm:"not null;default:''"`
	ReportDate      string    `gorm:"not null;uniqueIndex:uq_trip_vehicle_date,priority:2"`
	ReportDay       time.Time `gorm:"type:date;not null;index:idx_trip_report_day"`
	TripDistance    string    `gorm:"not null;default:''"`
	TripCount       int       `gorm:"not null;default:0"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (tripRow) TableName() string {
	return "trip_records"
}

func (r tripRow) toModel() model.TripRecord {
	return model.TripRecord{
		ID:              r.ID,
		Area:            r.Area,
		VehicleNumber:   r.VehicleNumber,
		TankerType:      r.TankerType,
		TransporterName: r.TransporterName,
		ReportDate:      r.ReportDate,
		TripDistance:    r.TripDistance,
		TripCount:       r.TripCount,
	}
}

func newTripRow(rec model.TripRecord) (tripRow, error) {
	day, err := normalize.ParseCanonical(rec.ReportDate)
	if err != nil {
		return tripRow{}, fmt.Errorf("record %s: %w", rec.VehicleNumber, err)
	}
	id := rec.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	return tripRow{
		ID:              id,
		Area:            rec.Area,
		VehicleNumber:   rec.VehicleNumber,
		TankerType:      rec.TankerType,
		TransporterName: rec.TransporterName,
		ReportDate:      rec.ReportDate,
		ReportDay:       day,
		TripDistance:    rec.TripDistance,
		TripCount:       rec.TripCount,
	}, nil
}

type TripRepository struct {
	db *gorm.DB
}

func NewTripRepository(db *gorm.DB) *TripRepository {
	return &TripRepository{db: db}
}

// UpsertMany stores records keyed by (vehicle, report date). Later records in
// the batch win over earlier ones with the same key, and existing rows are
// overwritten in place. It returns the number of distinct keys written.
func (r *TripRepository) UpsertMany(ctx context.Context, records []model.TripRecord) (int, error) {
	rows := make([]tripRow, 0, len(records))
	index := make(map[string]int, len(records))
	for _, rec := range records {
		row, err := newTripRow(rec)
		if err != nil {
			return 0, err
		}
		key := row.VehicleNumber + "|" + row.ReportDate
		if pos, ok := index[key]; ok {
			row.ID = rows[pos].ID
			rows[pos] = row
			continue
		}
		index[key] = len(rows)
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "vehicle_number"}, {Name: "report_date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"area",
				"tanker_type",
				"transporter_name",
				"report_day",
				"trip_distance",
				"trip_count",
				"updated_at",
			}),
		}).
		CreateInBatches(&rows, upsertBatchSize).Error
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (r *TripRepository) List(ctx context.Context, filter model.TripFilter) ([]model.TripRecord, error) {
	query := r.db.WithContext(ctx).Model(&tripRow{})
	if !filter.DateFrom.IsZero() {
		query = query.Where("report_day >= ?", dayOf(filter.DateFrom))
	}
	if !filter.DateTo.IsZero() {
		query = query.Where("report_day <= ?", dayOf(filter.DateTo))
	}
	query = whereIn(query, "vehicle_number", filter.Vehicles)
	query = whereIn(query, "area", filter.Areas)
	query = whereIn(query, "tanker_type", filter.TankerTypes)
	query = whereIn(query, "transporter_name", filter.Transporters)

	var rows []tripRow
	if err := query.Order("vehicle_number ASC").Order("report_day ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	records := make([]model.TripRecord, len(rows))
	for i, row := range rows {
		records[i] = row.toModel()
	}
	return records, nil
}

func (r *TripRepository) Get(ctx context.Context, id uuid.UUID) (*model.TripRecord, error) {
	var row tripRow
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, err
	}
	rec := row.toModel()
	return &rec, nil
}

// Update replaces every field of an existing record. Moving a record onto a
// (vehicle, date) key owned by another record fails with gorm.ErrDuplicatedKey.
func (r *TripRepository) Update(ctx context.Context, rec model.TripRecord) (*model.TripRecord, error) {
	row, err := newTripRow(rec)
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var clash int64
		if err := tx.Model(&tripRow{}).
			Where("vehicle_number = ? AND report_date = ? AND id <> ?", row.VehicleNumber, row.ReportDate, row.ID).
			Count(&clash).Error; err != nil {
			return err
		}
		if clash > 0 {
			return gorm.ErrDuplicatedKey
		}

		result := tx.Model(&tripRow{}).Where("id = ?", row.ID).Updates(map[string]interface{}{
			"area":             row.Area,
			"vehicle_number":   row.VehicleNumber,
			"tanker_type":      row.TankerType,
			"transporter_name": row.TransporterName,
			"report_date":      row.ReportDate,
			"report_day":       row.ReportDay,
			"trip_distance":    row.TripDistance,
			"trip_count":       row.TripCount,
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	updated := row.toModel()
	return &updated, nil
}

func (r *TripRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&tripRow{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Distinct returns the non-empty values present for each filterable column.
func (r *TripRepository) Distinct(ctx context.Context) (*model.FilterOptions, error) {
	var (
		opts model.FilterOptions
		err  error
	)
	if opts.Vehicles, err = r.distinctColumn(ctx, "vehicle_number"); err != nil {
		return nil, err
	}
	if opts.Areas, err = r.distinctColumn(ctx, "area"); err != nil {
		return nil, err
	}
	if opts.TankerTypes, err = r.distinctColumn(ctx, "tanker_type"); err != nil {
		return nil, err
	}
	if opts.Transporters, err = r.distinctColumn(ctx, "transporter_name"); err != nil {
		return nil, err
	}
	return &opts, nil
}

func (r *TripRepository) distinctColumn(ctx context.Context, column string) ([]string, error) {
	values := []string{}
	err := r.db.WithContext(ctx).Raw(fmt.Sprintf(`
		SELECT DISTINCT %[1]s
		FROM trip_records
		WHERE %[1]s <> ''
		ORDER BY %[1]s ASC
	`, column)).Scan(&values).Error
	if err != nil {
		return nil, err
	}
	return values, nil
}

func whereIn(query *gorm.DB, column string, values []string) *gorm.DB {
	cleaned := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			cleaned = append(cleaned, v)
		}
	}
	if len(cleaned) == 0 {
		return query
	}
	return query.Where(column+" IN ?", cleaned)
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
