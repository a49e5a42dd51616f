// Package report assembles the derived read-only views: admin dashboard
// statistics, the per-status fleet report, and the eco telemetry attached to
// both. Everything here is a deterministic function of aggregate counts the
// storage layer has already computed; nothing is cached.
package report

import (
	"fmt"
	"math"
	"time"

	"github.com/pedalpoint/bikerental-backend/booking"
)

const (
	// avgKmPerBooking is the assumed distance ridden per rental, used for
	// the eco telemetry shown on the dashboard.
	avgKmPerBooking = 10
	co2SavedPerKm   = 0.15
	ecoScorePerBkg  = 1.5
)

// EcoImpact is the sustainability telemetry derived from booking volume.
type EcoImpact struct {
	TotalKmRidden float64 `json:"totalKmRidden"`
	TotalCO2Saved float64 `json:"totalCo2SavedKg"`
	EcoScore      float64 `json:"ecoScore"`
}

// ComputeEcoImpact derives the eco telemetry from the total booking count.
// The score is capped at 100.
func ComputeEcoImpact(totalBookings int) EcoImpact {
	km := float64(totalBookings) * avgKmPerBooking
	return EcoImpact{
		TotalKmRidden: km,
		TotalCO2Saved: round2(km * co2SavedPerKm),
		EcoScore:      math.Min(100, float64(totalBookings)*ecoScorePerBkg),
	}
}

// SustainabilityRating maps an eco score onto the rating shown in reports.
func SustainabilityRating(score float64) string {
	switch {
	case score >= 75:
		return "Excellent"
	case score >= 50:
		return "Good"
	case score >= 25:
		return "Fair"
	default:
		return "Developing"
	}
}

// Stats is the aggregate block of the admin dashboard.
type Stats struct {
	TotalBookings     int     `json:"totalBookings"`
	TotalBikes        int     `json:"totalBikes"`
	TotalUsers        int     `json:"totalUsers"`
	TotalRevenue      float64 `json:"totalRevenue"`
	PendingBookings   int     `json:"pendingBookings"`
	ConfirmedBookings int     `json:"confirmedBookings"`
	CancelledBookings int     `json:"cancelledBookings"`
	EcoImpact
}

// BuildStats combines raw counts into the dashboard stats block.
func BuildStats(totalBookings, totalBikes, totalUsers int, totalRevenue float64, pending, confirmed, cancelled int) Stats {
	return Stats{
		TotalBookings:     totalBookings,
		TotalBikes:        totalBikes,
		TotalUsers:        totalUsers,
		TotalRevenue:      totalRevenue,
		PendingBookings:   pending,
		ConfirmedBookings: confirmed,
		CancelledBookings: cancelled,
		EcoImpact:         ComputeEcoImpact(totalBookings),
	}
}

// StatusLine is one row of the fleet summary grouped by status.
type StatusLine struct {
	Status   booking.Status `json:"status"`
	Bookings int            `json:"bookings"`
	Revenue  float64        `json:"revenue"`
}

// Report is the downloadable platform report.
type Report struct {
	GeneratedAt          time.Time    `json:"generatedAt"`
	FleetSummary         []StatusLine `json:"fleetSummary"`
	TotalCO2Saved        string       `json:"totalCo2Saved"`
	SustainabilityRating string       `json:"sustainabilityRating"`
}

// Build assembles the platform report from the per-status aggregation.
func Build(now time.Time, rows []booking.StatusAggregate) Report {
	lines := make([]StatusLine, 0, len(rows))
	total := 0
	for _, row := range rows {
		lines = append(lines, StatusLine{Status: row.Status, Bookings: row.Count, Revenue: row.Revenue})
		total += row.Count
	}
	eco := ComputeEcoImpact(total)
	return Report{
		GeneratedAt:          now,
		FleetSummary:         lines,
		TotalCO2Saved:        fmt.Sprintf("%.2f KG", eco.TotalCO2Saved),
		SustainabilityRating: SustainabilityRating(eco.EcoScore),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
