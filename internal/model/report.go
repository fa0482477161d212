package model

import (
	"time"

	"github.com/google/uuid"
)

// ReportRequest is the renderer input. Rows are expected sorted by
// (VehicleNumber, ReportDate); the renderer does not re-sort.
type ReportRequest struct {
	Title           string
	DateFrom        time.Time
	DateTo          time.Time
	GeneratedAt     time.Time
	GeneratedBy     string
	VerificationURL string
	Rows            []TripRecord
}

type GeneratedReport struct {
	ID               uuid.UUID
	VerificationCode string
	Title            string
	DateFrom         time.Time
	DateTo           time.Time
	Filter           TripFilter
	GeneratedBy      string
	GeneratedAt      time.Time
	FileName         string
	Content          []byte
}

type VehicleReport struct {
	VehicleNumber   string `json:"vehicleNumber"`
	Area            string `json:"area"`
	TankerType      string `json:"tankerType"`
	TransporterName string `json:"transporterName"`
	TotalDistance   string `json:"totalDistance"`
	TotalTrips      int    `json:"totalTrips"`
}

type VerificationSummary struct {
	VerificationCode    string          `json:"verificationCode"`
	FromDate            string          `json:"fromDate"`
	ToDate              string          `json:"toDate"`
	GenerationTime      string          `json:"generationTime"`
	GeneratedBy         string          `json:"generatedBy"`
	TotalDistance       string          `json:"totalDistance"`
	TotalTrips          int             `json:"totalTrips"`
	TotalVehicleReports int             `json:"totalVehicleReports"`
	VehicleReports      []VehicleReport `json:"vehicleReports"`
	Filters             TripFilter      `json:"filters"`
	DownloadURL         string          `json:"downloadUrl"`
}
