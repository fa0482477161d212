package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fleetops/distance-report/internal/http/middleware"
	"github.com/fleetops/distance-report/internal/model"
	"github.com/fleetops/distance-report/internal/service"
)

type RecordServicer interface {
	Import(ctx context.Context, filename string, r io.Reader) (*service.ImportResult, error)
	Create(ctx context.Context, input service.RecordInput) (*model.TripRecord, error)
	Update(ctx context.Context, id uuid.UUID, input service.RecordInput) (*model.TripRecord, error)
	Get(ctx context.Context, id uuid.UUID) (*model.TripRecord, error)
	List(ctx context.Context, filter model.TripFilter) ([]model.TripRecord, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Filters(ctx context.Context) (*model.FilterOptions, error)
}

type ReportServicer interface {
	GeneratePDF(ctx context.Context, input service.GenerateReportInput) (*service.GenerateReportResult, error)
	ExportExcel(ctx context.Context, input service.GenerateReportInput) (*service.GenerateReportResult, error)
	Verify(ctx context.Context, code string) (*model.VerificationSummary, error)
	Download(ctx context.Context, code string) (*service.GenerateReportResult, error)
}

type Handler struct {
	records        RecordServicer
	reports        ReportServicer
	uploadMaxBytes int64
	log            zerolog.Logger
}

func NewHandler(records RecordServicer, reports ReportServicer, uploadMaxBytes int64, log zerolog.Logger) *Handler {
	return &Handler{records: records, reports: reports, uploadMaxBytes: uploadMaxBytes, log: log}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	router.GET("/healthz", h.health)
	router.GET("/verify/:code", h.verifyReport)
	router.GET("/verify/:code/download", h.downloadReport)

	protected := router.Group("/")
	protected.Use(authMiddleware)
	protected.POST("/records/upload", h.uploadRecords)
	protected.GET("/records", h.listRecords)
	protected.POST("/records", h.createRecord)
	protected.GET("/records/:id", h.getRecord)
	protected.PUT("/records/:id", h.updateRecord)
	protected.DELETE("/records/:id", h.deleteRecord)
	protected.GET("/records/filters", h.filterOptions)
	protected.POST("/reports/pdf", h.generatePDF)
	protected.POST("/reports/excel", h.exportExcel)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) uploadRecords(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.uploadMaxBytes)
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read file"})
		return
	}
	defer file.Close()

	result, err := h.records.Import(c.Request.Context(), header.Filename, file)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) listRecords(c *gin.Context) {
	filter, err := filterFromQuery(c)
	if err != nil {
		h.handleError(c, err)
		return
	}
	records, err := h.records.List(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	if records == nil {
		records = []model.TripRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"records": records, "total": len(records)})
}

// recordRequest accepts tripDistance and tripCount as either JSON numbers or
// strings; both go through the same normalization as spreadsheet cells.
type recordRequest struct {
	Area            string      `json:"area"`
	VehicleNumber   string      `json:"vehicleNumber" binding:"required"`
	TankerType      string      `json:"tankerType"`
	TransporterName string      `json:"transporterName"`
	ReportDate      string      `json:"reportDate" binding:"required"`
	TripDistance    interface{} `json:"tripDistance"`
	TripCount       interface{} `json:"tripCount"`
}

func (r recordRequest) toInput() service.RecordInput {
	return service.RecordInput{
		Area:            r.Area,
		VehicleNumber:   r.VehicleNumber,
		TankerType:      r.TankerType,
		TransporterName: r.TransporterName,
		ReportDate:      r.ReportDate,
		TripDistance:    rawText(r.TripDistance),
		TripCount:       rawText(r.TripCount),
	}
}

func (h *Handler) createRecord(c *gin.Context) {
	var req recordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec, err := h.records.Create(c.Request.Context(), req.toInput())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *Handler) getRecord(c *gin.Context) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	rec, err := h.records.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) updateRecord(c *gin.Context) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req recordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec, err := h.records.Update(c.Request.Context(), id, req.toInput())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) deleteRecord(c *gin.Context) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.records.Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) filterOptions(c *gin.Context) {
	opts, err := h.records.Filters(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, opts)
}

type reportRequest struct {
	Title        string   `json:"title"`
	DateFrom     string   `json:"dateFrom" binding:"required"`
	DateTo       string   `json:"dateTo" binding:"required"`
	Vehicles     []string `json:"vehicles"`
	Areas        []string `json:"areas"`
	TankerTypes  []string `json:"tankerTypes"`
	Transporters []string `json:"transporters"`
}

func (h *Handler) generatePDF(c *gin.Context) {
	h.export(c, h.reports.GeneratePDF)
}

func (h *Handler) exportExcel(c *gin.Context) {
	h.export(c, h.reports.ExportExcel)
}

func (h *Handler) export(c *gin.Context, run func(context.Context, service.GenerateReportInput) (*service.GenerateReportResult, error)) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	from, err := parseDate(req.DateFrom)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dateFrom"})
		return
	}
	to, err := parseDate(req.DateTo)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dateTo"})
		return
	}

	result, err := run(c.Request.Context(), service.GenerateReportInput{
		Title: req.Title,
		Filter: model.TripFilter{
			DateFrom:     from,
			DateTo:       to,
			Vehicles:     req.Vehicles,
			Areas:        req.Areas,
			TankerTypes:  req.TankerTypes,
			Transporters: req.Transporters,
		},
		Principal: principal,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	if result.VerificationCode != "" {
		c.Header("X-Verification-Code", result.VerificationCode)
	}
	sendFile(c, result)
}

func (h *Handler) verifyReport(c *gin.Context) {
	summary, err := h.reports.Verify(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) downloadReport(c *gin.Context) {
	result, err := h.reports.Download(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	sendFile(c, result)
}

func sendFile(c *gin.Context, result *service.GenerateReportResult) {
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, result.ContentType, result.Content)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNoRecords):
		c.JSON(http.StatusNotFound, gin.H{"error": service.ErrNoRecords.Error()})
	case errors.Is(err, service.ErrReportGeneration):
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("report generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": service.ErrReportGeneration.Error()})
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func filterFromQuery(c *gin.Context) (model.TripFilter, error) {
	var filter model.TripFilter
	if raw := c.Query("dateFrom"); raw != "" {
		from, err := parseDate(raw)
		if err != nil {
			return filter, fmt.Errorf("%w: invalid dateFrom", service.ErrInvalidInput)
		}
		filter.DateFrom = from
	}
	if raw := c.Query("dateTo"); raw != "" {
		to, err := parseDate(raw)
		if err != nil {
			return filter, fmt.Errorf("%w: invalid dateTo", service.ErrInvalidInput)
		}
		filter.DateTo = to
	}
	filter.Vehicles = queryList(c, "vehicles")
	filter.Areas = queryList(c, "areas")
	filter.TankerTypes = queryList(c, "tankerTypes")
	filter.Transporters = queryList(c, "transporters")
	return filter, nil
}

// queryList accepts both repeated keys and comma separated values.
func queryList(c *gin.Context, key string) []string {
	var out []string
	for _, raw := range c.QueryArray(key) {
		for _, item := range strings.Split(raw, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		"2006-01-02",
		"02-01-2006",
		time.RFC3339,
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}

func rawText(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
