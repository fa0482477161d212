package service

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrNoRecords        = errors.New("no data for selected filters")
	ErrReportGeneration = errors.New("report generation failed")
)
