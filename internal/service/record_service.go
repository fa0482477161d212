package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/fleetops/distance-report/internal/ingest"
	"github.com/fleetops/distance-report/internal/model"
	"github.com/fleetops/distance-report/internal/normalize"
)

type RecordStore interface {
	UpsertMany(ctx context.Context, records []model.TripRecord) (int, error)
	List(ctx context.Context, filter model.TripFilter) ([]model.TripRecord, error)
	Get(ctx context.Context, id uuid.UUID) (*model.TripRecord, error)
	Update(ctx context.Context, rec model.TripRecord) (*model.TripRecord, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Distinct(ctx context.Context) (*model.FilterOptions, error)
}

type RecordService struct {
	store    RecordStore
	ingester *ingest.Ingester
	log      zerolog.Logger
}

// RecordInput is a manually entered record. Values are normalized the same
// way spreadsheet cells are.
type RecordInput struct {
	Area            string
	VehicleNumber   string
	TankerType      string
	TransporterName string
	ReportDate      string
	TripDistance    string
	TripCount       string
}

type ImportResult struct {
	Sheets  int                       `json:"sheets"`
	Parsed  int                       `json:"parsed"`
	Stored  int                       `json:"stored"`
	Skipped map[ingest.SkipReason]int `json:"skipped"`
}

func NewRecordService(store RecordStore, log zerolog.Logger) *RecordService {
	return &RecordService{
		store:    store,
		ingester: ingest.NewIngester(),
		log:      log,
	}
}

// Import decodes an uploaded workbook, normalizes every recognizable row and
// upserts the result. Unusable rows are counted, not reported individually.
func (s *RecordService) Import(ctx context.Context, filename string, r io.Reader) (*ImportResult, error) {
	sheets, err := ingest.Decode(filename, r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	result := s.ingester.Ingest(sheets)
	if result.HeaderSheets == 0 {
		return nil, fmt.Errorf("%w: no sheet has vehicle and report date columns", ErrInvalidInput)
	}

	stored, err := s.store.UpsertMany(ctx, result.Records)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("file", filename).
		Int("sheets", result.Sheets).
		Int("parsed", len(result.Records)).
		Int("stored", stored).
		Int("context_rows", result.ContextRows).
		Msg("workbook imported")

	return &ImportResult{
		Sheets:  result.Sheets,
		Parsed:  len(result.Records),
		Stored:  stored,
		Skipped: result.Skipped,
	}, nil
}

func (s *RecordService) Create(ctx context.Context, input RecordInput) (*model.TripRecord, error) {
	rec, err := input.normalize()
	if err != nil {
		return nil, err
	}
	if _, err := s.store.UpsertMany(ctx, []model.TripRecord{rec}); err != nil {
		return nil, err
	}

	records, err := s.store.List(ctx, filterForKey(rec))
	if err != nil {
		return nil, err
	}
	for _, stored := range records {
		if stored.ReportDate == rec.ReportDate {
			return &stored, nil
		}
	}
	return nil, fmt.Errorf("record %s %s not found after save", rec.VehicleNumber, rec.ReportDate)
}

func (s *RecordService) Update(ctx context.Context, id uuid.UUID, input RecordInput) (*model.TripRecord, error) {
	rec, err := input.normalize()
	if err != nil {
		return nil, err
	}
	rec.ID = id

	updated, err := s.store.Update(ctx, rec)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return updated, nil
}

func (s *RecordService) Get(ctx context.Context, id uuid.UUID) (*model.TripRecord, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return rec, nil
}

func (s *RecordService) List(ctx context.Context, filter model.TripFilter) ([]model.TripRecord, error) {
	if err := validateRange(filter, false); err != nil {
		return nil, err
	}
	return s.store.List(ctx, filter)
}

func (s *RecordService) Delete(ctx context.Context, id uuid.UUID) error {
	return mapStoreError(s.store.Delete(ctx, id))
}

func (s *RecordService) Filters(ctx context.Context) (*model.FilterOptions, error) {
	return s.store.Distinct(ctx)
}

func (in RecordInput) normalize() (model.TripRecord, error) {
	vehicle := strings.TrimSpace(in.VehicleNumber)
	if vehicle == "" {
		return model.TripRecord{}, fmt.Errorf("%w: vehicle number is required", ErrInvalidInput)
	}
	if normalize.IsRange(in.ReportDate) {
		return model.TripRecord{}, fmt.Errorf("%w: report date must be a single day", ErrInvalidInput)
	}
	date, ok := normalize.Date(in.ReportDate)
	if !ok {
		return model.TripRecord{}, fmt.Errorf("%w: unrecognized report date %q", ErrInvalidInput, in.ReportDate)
	}
	return model.TripRecord{
		Area:            strings.TrimSpace(in.Area),
		VehicleNumber:   vehicle,
		TankerType:      strings.TrimSpace(in.TankerType),
		TransporterName: strings.TrimSpace(in.TransporterName),
		ReportDate:      date,
		TripDistance:    normalize.Distance(in.TripDistance),
		TripCount:       normalize.TripCount(in.TripCount),
	}, nil
}

func filterForKey(rec model.TripRecord) model.TripFilter {
	day, _ := normalize.ParseCanonical(rec.ReportDate)
	return model.TripFilter{DateFrom: day, DateTo: day, Vehicles: []string{rec.VehicleNumber}}
}

func mapStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: a record for this vehicle and date already exists", ErrInvalidInput)
	default:
		return err
	}
}

// validateRange checks the filter dates. required makes both bounds mandatory.
func validateRange(filter model.TripFilter, required bool) error {
	if required && (filter.DateFrom.IsZero() || filter.DateTo.IsZero()) {
		return fmt.Errorf("%w: dateFrom and dateTo are required", ErrInvalidInput)
	}
	if !filter.DateFrom.IsZero() && !filter.DateTo.IsZero() && dateOnly(filter.DateFrom).After(dateOnly(filter.DateTo)) {
		return fmt.Errorf("%w: dateFrom must be before or equal to dateTo", ErrInvalidInput)
	}
	return nil
}
