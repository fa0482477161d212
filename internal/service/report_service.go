package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/fleetops/distance-report/internal/config"
	"github.com/fleetops/distance-report/internal/model"
	"github.com/fleetops/distance-report/internal/normalize"
	"github.com/fleetops/distance-report/internal/summary"
)

type TripLister interface {
	List(ctx context.Context, filter model.TripFilter) ([]model.TripRecord, error)
}

type ReportStore interface {
	Save(ctx context.Context, report model.GeneratedReport) (*model.GeneratedReport, error)
	GetByCode(ctx context.Context, code string, withContent bool) (*model.GeneratedReport, error)
}

type PDFGenerator interface {
	Generate(req model.ReportRequest) ([]byte, error)
}

type ExcelGenerator interface {
	Generate(report model.ReportRequest) ([]byte, error)
}

type ReportService struct {
	trips   TripLister
	reports ReportStore
	pdf     PDFGenerator
	excel   ExcelGenerator
	title   string
	baseURL string
	log     zerolog.Logger

	now     func() time.Time
	newCode func() string
}

type GenerateReportInput struct {
	Title     string
	Filter    model.TripFilter
	Principal model.Principal
}

type GenerateReportResult struct {
	FileName         string
	ContentType      string
	Content          []byte
	VerificationCode string
	VerificationURL  string
}

func NewReportService(
	trips TripLister,
	reports ReportStore,
	pdf PDFGenerator,
	excel ExcelGenerator,
	cfg *config.Config,
	log zerolog.Logger,
) *ReportService {
	return &ReportService{
		trips:   trips,
		reports: reports,
		pdf:     pdf,
		excel:   excel,
		title:   cfg.Report.Title,
		baseURL: strings.TrimRight(cfg.Report.PublicBaseURL, "/"),
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
		newCode: uuid.NewString,
	}
}

// GeneratePDF renders the filtered records and stores the document under a
// fresh verification code. An empty selection never reaches the renderer.
func (s *ReportService) GeneratePDF(ctx context.Context, input GenerateReportInput) (*GenerateReportResult, error) {
	filter, err := s.prepareFilter(input.Filter)
	if err != nil {
		return nil, err
	}
	rows, err := s.trips.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoRecords
	}

	code := s.newCode()
	req := model.ReportRequest{
		Title:           s.titleOr(input.Title),
		DateFrom:        filter.DateFrom,
		DateTo:          filter.DateTo,
		GeneratedAt:     s.now(),
		GeneratedBy:     input.Principal.Identity(),
		VerificationURL: s.verifyURL(code),
		Rows:            rows,
	}

	content, err := s.pdf.Generate(req)
	if err != nil {
		s.log.Error().Err(err).Str("code", code).Int("rows", len(rows)).Msg("render pdf failed")
		return nil, fmt.Errorf("%w: %v", ErrReportGeneration, err)
	}

	fileName := buildFileName(filter.DateFrom, "pdf")
	_, err = s.reports.Save(ctx, model.GeneratedReport{
		VerificationCode: code,
		Title:            req.Title,
		DateFrom:         filter.DateFrom,
		DateTo:           filter.DateTo,
		Filter:           filter,
		GeneratedBy:      req.GeneratedBy,
		GeneratedAt:      req.GeneratedAt,
		FileName:         fileName,
		Content:          content,
	})
	if err != nil {
		return nil, fmt.Errorf("save generated report: %w", err)
	}

	s.log.Info().
		Str("code", code).
		Int("rows", len(rows)).
		Str("generated_by", req.GeneratedBy).
		Msg("pdf report generated")

	return &GenerateReportResult{
		FileName:         fileName,
		ContentType:      "application/pdf",
		Content:          content,
		VerificationCode: code,
		VerificationURL:  req.VerificationURL,
	}, nil
}

func (s *ReportService) ExportExcel(ctx context.Context, input GenerateReportInput) (*GenerateReportResult, error) {
	filter, err := s.prepareFilter(input.Filter)
	if err != nil {
		return nil, err
	}
	rows, err := s.trips.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoRecords
	}

	content, err := s.excel.Generate(model.ReportRequest{
		Title:       s.titleOr(input.Title),
		DateFrom:    filter.DateFrom,
		DateTo:      filter.DateTo,
		GeneratedAt: s.now(),
		GeneratedBy: input.Principal.Identity(),
		Rows:        rows,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReportGeneration, err)
	}
	return &GenerateReportResult{
		FileName:    buildFileName(filter.DateFrom, "xlsx"),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Content:     content,
	}, nil
}

// Verify recomputes a report summary from the live store using the filters
// saved when the report was generated.
func (s *ReportService) Verify(ctx context.Context, code string) (*model.VerificationSummary, error) {
	report, err := s.lookup(ctx, code, false)
	if err != nil {
		return nil, err
	}
	rows, err := s.trips.List(ctx, report.Filter)
	if err != nil {
		return nil, err
	}

	totals := summary.ByVehicle(rows)
	return &model.VerificationSummary{
		VerificationCode:    report.VerificationCode,
		FromDate:            normalize.FormatDate(report.DateFrom),
		ToDate:              normalize.FormatDate(report.DateTo),
		GenerationTime:      normalize.FormatDate(report.GeneratedAt) + " " + report.GeneratedAt.Format("15:04:05"),
		GeneratedBy:         report.GeneratedBy,
		TotalDistance:       totals.FormattedDistance(),
		TotalTrips:          totals.TotalTrips,
		TotalVehicleReports: len(totals.Vehicles),
		VehicleReports:      totals.Vehicles,
		Filters:             report.Filter,
		DownloadURL:         s.verifyURL(report.VerificationCode) + "/download",
	}, nil
}

func (s *ReportService) Download(ctx context.Context, code string) (*GenerateReportResult, error) {
	report, err := s.lookup(ctx, code, true)
	if err != nil {
		return nil, err
	}
	return &GenerateReportResult{
		FileName:         report.FileName,
		ContentType:      "application/pdf",
		Content:          report.Content,
		VerificationCode: report.VerificationCode,
	}, nil
}

func (s *ReportService) lookup(ctx context.Context, code string, withContent bool) (*model.GeneratedReport, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("%w: verification code is required", ErrInvalidInput)
	}
	report, err := s.reports.GetByCode(ctx, code, withContent)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return report, nil
}

func (s *ReportService) prepareFilter(filter model.TripFilter) (model.TripFilter, error) {
	if err := validateRange(filter, true); err != nil {
		return model.TripFilter{}, err
	}
	filter.DateFrom = dateOnly(filter.DateFrom)
	filter.DateTo = dateOnly(filter.DateTo)
	return filter, nil
}

func (s *ReportService) titleOr(title string) string {
	if title = strings.TrimSpace(title); title != "" {
		return title
	}
	return s.title
}

func (s *ReportService) verifyURL(code string) string {
	return s.baseURL + "/verify/" + code
}

func buildFileName(from time.Time, ext string) string {
	name := sanitizeFileName("daily-distance-report-" + normalize.FormatDate(from))
	return fmt.Sprintf("%s.%s", name, ext)
}

func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sanitizeFileName(input string) string {
	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z':
			result = append(result, r)
		case r >= 'A' && r <= 'Z':
			result = append(result, r)
		case r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-")
}
