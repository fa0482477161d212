// Package summary aggregates trip records the same way the PDF sub-header
// does, so exports and verification agree with the printed totals.
package summary

import (
	"github.com/shopspring/decimal"

	"github.com/fleetops/distance-report/internal/model"
	"github.com/fleetops/distance-report/internal/normalize"
)

type Summary struct {
	Vehicles      []model.VehicleReport
	TotalDistance decimal.Decimal
	TotalTrips    int
}

func (s Summary) FormattedDistance() string {
	return normalize.FormatKilometres(s.TotalDistance)
}

// ByVehicle groups rows per vehicle in order of first appearance. The
// descriptive fields of each group come from its first row.
func ByVehicle(rows []model.TripRecord) Summary {
	var (
		out       Summary
		index     = make(map[string]int)
		distances = make(map[string]decimal.Decimal)
	)
	out.TotalDistance = decimal.Zero

	for _, row := range rows {
		value := normalize.DistanceValue(row.TripDistance)
		out.TotalDistance = out.TotalDistance.Add(value)
		out.TotalTrips += row.TripCount

		pos, ok := index[row.VehicleNumber]
		if !ok {
			pos = len(out.Vehicles)
			index[row.VehicleNumber] = pos
			out.Vehicles = append(out.Vehicles, model.VehicleReport{
				VehicleNumber:   row.VehicleNumber,
				Area:            row.Area,
				TankerType:      row.TankerType,
				TransporterName: row.TransporterName,
			})
			distances[row.VehicleNumber] = decimal.Zero
		}
		distances[row.VehicleNumber] = distances[row.VehicleNumber].Add(value)
		out.Vehicles[pos].TotalTrips += row.TripCount
	}

	for i := range out.Vehicles {
		out.Vehicles[i].TotalDistance = normalize.FormatKilometres(distances[out.Vehicles[i].VehicleNumber])
	}
	if out.Vehicles == nil {
		out.Vehicles = []model.VehicleReport{}
	}
	return out
}
