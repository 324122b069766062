package services

import (
	"fmt"

	"channel-metrics-report/models"
	"channel-metrics-report/utils"
)

// DefaultTopN is the number of rows kept per report.
const DefaultTopN = 25

// Definitions lists the reports in output order. Sheet names come from Name.
var Definitions = []models.ReportDefinition{
	{Name: "regiones", Dimensions: []string{models.ColRegion}},
	{Name: "ciudades", Dimensions: []string{models.ColCity, models.ColRegion}},
	{Name: "job_titles", Dimensions: []string{models.ColJobTitle}},
	{Name: "areas", Dimensions: []string{models.ColArea}},
	{Name: "sectores", Dimensions: []string{models.ColSector}},
	{Name: "jobtitle_region", Dimensions: []string{models.ColJobTitle, models.ColRegion}},
	{Name: "jobtitle_city", Dimensions: []string{models.ColJobTitle, models.ColCity, models.ColRegion}},
	{Name: "area_region", Dimensions: []string{models.ColArea, models.ColRegion}},
	{Name: "area_city", Dimensions: []string{models.ColArea, models.ColCity, models.ColRegion}},
	{Name: "sector_region", Dimensions: []string{models.ColSector, models.ColRegion}},
	{Name: "sector_city", Dimensions: []string{models.ColSector, models.ColCity, models.ColRegion}},
}

// ReportService builds every report definition from one cleaned Dataset.
type ReportService struct {
	logger  *utils.Logger
	topN    int
	workers int
}

// NewReportService creates a ReportService. topN <= 0 means DefaultTopN;
// workers <= 0 means sequential.
func NewReportService(logger *utils.Logger, topN, workers int) *ReportService {
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &ReportService{logger: logger, topN: topN, workers: workers}
}

// Build runs each definition against ds and returns the reports in definition
// order. ds must already be cleaned of records without a channel. The first
// aggregation error aborts the run.
func (s *ReportService) Build(ds *models.Dataset, defs []models.ReportDefinition) ([]*models.Report, error) {
	reports := make([]*models.Report, len(defs))
	errs := make([]error, len(defs))

	pool := utils.NewWorkerPool(s.workers)
	for i, def := range defs {
		i, def := i, def
		pool.Submit(func() {
			reports[i], errs[i] = s.buildOne(ds, def)
		})
	}
	pool.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("report %q: %w", defs[i].Name, err)
		}
	}
	return reports, nil
}

func (s *ReportService) buildOne(ds *models.Dataset, def models.ReportDefinition) (*models.Report, error) {
	s.logger.Debug("[reports] Processing: %s %v", def.Name, def.Dimensions)

	input, err := FilterNonNull(ds, def.RequiredColumns())
	if err != nil {
		return nil, err
	}

	rows, err := Aggregate(input, def.Dimensions)
	if err != nil {
		return nil, err
	}

	groups := len(rows)
	if len(rows) > s.topN {
		rows = rows[:s.topN]
	}

	s.logger.Info("[reports] %-16s %d records → %d groups, kept %d",
		def.Name, input.Len(), groups, len(rows))

	return &models.Report{
		Name:       def.Name,
		Dimensions: append([]string(nil), def.Dimensions...),
		Rows:       rows,
	}, nil
}

// FilterNonNull keeps the records where every named column is non-empty.
func FilterNonNull(ds *models.Dataset, cols []string) (*models.Dataset, error) {
	idx, err := columnIndexes(ds, cols)
	if err != nil {
		return nil, err
	}
	return ds.Filter(func(rec []string) bool {
		for _, i := range idx {
			if i >= len(rec) || rec[i] == "" {
				return false
			}
		}
		return true
	}), nil
}
