package storage

import (
	"fmt"
	"math"

	"channel-metrics-report/models"
)

func sampleReports() []*models.Report {
	return []*models.Report{
		{
			Name:       "regiones",
			Dimensions: []string{models.ColRegion},
			Rows: []*models.ChannelMetrics{
				{Dimensions: []string{"North"}, Source: "Email", Applications: 15, TotalTouchpoints: 150,
					UniqueOffers: 2, ConversionRate: 10, EngagementRate: 0},
				{Dimensions: []string{"South"}, Source: "Board", ListImpressions: 9,
					UniqueOffers: 1, ConversionRate: math.NaN(), EngagementRate: math.NaN()},
			},
		},
		{
			Name:       "ciudades",
			Dimensions: []string{models.ColCity, models.ColRegion},
			Rows: []*models.ChannelMetrics{
				{Dimensions: []string{"Oslo", "North"}, Source: "Email", Applications: 3, TotalTouchpoints: 4,
					TotalEngagements: 1, UniqueOffers: 1, ConversionRate: 75, EngagementRate: 25},
			},
		},
		{Name: "job_titles", Dimensions: []string{models.ColJobTitle}},
	}
}

func manyRowsReport(name string, n int) *models.Report {
	r := &models.Report{Name: name, Dimensions: []string{models.ColSector, models.ColCity, models.ColRegion}}
	for i := 0; i < n; i++ {
		r.Rows = append(r.Rows, &models.ChannelMetrics{
			Dimensions:       []string{fmt.Sprintf("S%d", i), "Oslo", "North"},
			Source:           "Email",
			Applications:     int64(n - i),
			TotalTouchpoints: 10,
			UniqueOffers:     1,
			ConversionRate:   float64(n-i) * 10,
		})
	}
	return r
}
