package model

import (
	"time"

	"github.com/google/uuid"
)

// TripRecord is one vehicle's distance for one report day.
// (VehicleNumber, ReportDate) is unique in the store.
type TripRecord struct {
	ID              uuid.UUID `json:"id"`
	Area            string    `json:"area"`
	VehicleNumber   string    `json:"vehicleNumber"`
	TankerType      string    `json:"tankerType"`
	TransporterName string    `json:"transporterName"`
	ReportDate      string    `json:"reportDate"` // DD-MM-YYYY
	TripDistance    string    `json:"tripDistance"`
	TripCount       int       `json:"tripCount"`
}

type TripFilter struct {
	DateFrom     time.Time `json:"dateFrom"`
	DateTo       time.Time `json:"dateTo"`
	Vehicles     []string  `json:"vehicles,omitempty"`
	Areas        []string  `json:"areas,omitempty"`
	TankerTypes  []string  `json:"tankerTypes,omitempty"`
	Transporters []string  `json:"transporters,omitempty"`
}

type FilterOptions struct {
	Vehicles     []string `json:"vehicles"`
	Areas        []string `json:"areas"`
	TankerTypes  []string `json:"tankerTypes"`
	Transporters []string `json:"transporters"`
}
