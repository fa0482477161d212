package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fleetops/distance-report/internal/model"
)

type reportRow struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	VerificationCode string    `gorm:"not null;uniqueIndex:uq_generated_report_code"`
	Title            string    `gorm:"not null"`
	DateFrom         time.Time `gorm:"type:date;not null"`
	DateTo           time.Time `gorm:"type:date;not null"`
	Filters          string    `gorm:"not null"`
	GeneratedBy      string    `gorm:"not null"`
	GeneratedAt      time.Time `gorm:"not null"`
	FileName         string    `gorm:"not null"`
	Content          []byte    `gorm:"not null"`
}

func (reportRow) TableName() string {
	return "generated_reports"
}

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) Save(ctx context.Context, report model.GeneratedReport) (*model.GeneratedReport, error) {
	filters, err := json.Marshal(report.Filter)
	if err != nil {
		return nil, fmt.Errorf("encode report filters: %w", err)
	}
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}

	row := reportRow{
		ID:               report.ID,
		VerificationCode: report.VerificationCode,
		Title:            report.Title,
		DateFrom:         dayOf(report.DateFrom),
		DateTo:           dayOf(report.DateTo),
		Filters:          string(filters),
		GeneratedBy:      report.GeneratedBy,
		GeneratedAt:      report.GeneratedAt,
		FileName:         report.FileName,
		Content:          report.Content,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

// GetByCode loads a generated report by its verification code. withContent
// controls whether the stored document bytes are read as well.
func (r *ReportRepository) GetByCode(ctx context.Context, code string, withContent bool) (*model.GeneratedReport, error) {
	query := r.db.WithContext(ctx).Where("verification_code = ?", code)
	if !withContent {
		query = query.Omit("content")
	}

	var row reportRow
	if err := query.Take(&row).Error; err != nil {
		return nil, err
	}

	var filter model.TripFilter
	if err := json.Unmarshal([]byte(row.Filters), &filter); err != nil {
		return nil, fmt.Errorf("decode filters of report %s: %w", row.VerificationCode, err)
	}
	return &model.GeneratedReport{
		ID:               row.ID,
		VerificationCode: row.VerificationCode,
		Title:            row.Title,
		DateFrom:         row.DateFrom,
		DateTo:           row.DateTo,
		Filter:           filter,
		GeneratedBy:      row.GeneratedBy,
		GeneratedAt:      row.GeneratedAt,
		FileName:         row.FileName,
		Content:          row.Content,
	}, nil
}
