package models

// Input column names.
const (
	ColSource           = "Source"
	ColRegion           = "Region"
	ColCity             = "City"
	ColJobTitle         = "JobTitle"
	ColArea             = "Area"
	ColSector           = "Sector"
	ColOfferID          = "OfferId"
	ColListImpressions  = "ListImpressions"
	ColDetailViews      = "DetailViews"
	ColPageVisits       = "PageVisits"
	ColApplications     = "Applications"
	ColTotalEngagements = "TotalEngagements"
	ColTotalTouchpoints = "TotalTouchpoints"
)

// MetricColumns are summed per group, in output order.
var MetricColumns = []string{
	ColListImpressions,
	ColDetailViews,
	ColPageVisits,
	ColApplications,
	ColTotalEngagements,
	ColTotalTouchpoints,
}

// ChannelMetrics is one aggregated row: a dimension combination plus channel.
// ConversionRate and EngagementRate are NaN when TotalTouchpoints is zero.
type ChannelMetrics struct {
	Dimensions       []string
	Source           string
	ListImpressions  int64
	DetailViews      int64
	PageVisits       int64
	Applications     int64
	TotalEngagements int64
	TotalTouchpoints int64
	UniqueOffers     int
	ConversionRate   float64
	EngagementRate   float64
}

// Metrics returns the summed metrics in MetricColumns order.
func (m *ChannelMetrics) Metrics() []int64 {
	return []int64{
		m.ListImpressions,
		m.DetailViews,
		m.PageVisits,
		m.Applications,
		m.TotalEngagements,
		m.TotalTouchpoints,
	}
}

// ReportDefinition names one ranking and the columns it groups by.
type ReportDefinition struct {
	Name       string
	Dimensions []string
	// Required lists columns that must be non-null for a row to enter the
	// report. Empty means Dimensions.
	Required []string
}

// RequiredColumns returns the pre-filter columns of the definition.
func (d ReportDefinition) RequiredColumns() []string {
	if len(d.Required) > 0 {
		return d.Required
	}
	return d.Dimensions
}

// Report is a named, sorted and truncated ranking.
type Report struct {
	Name       string
	Dimensions []string
	Rows       []*ChannelMetrics
}

// Header returns the output column names of the report.
func (r *Report) Header() []string {
	h := make([]string, 0, len(r.Dimensions)+len(MetricColumns)+4)
	h = append(h, r.Dimensions...)
	h = append(h, ColSource)
	h = append(h, MetricColumns...)
	return append(h, "UniqueOffers", "ConversionRate", "EngagementRate")
}

// Summary holds the distinct-value counts printed after a run.
type Summary struct {
	LoadedRecords   int
	AnalysedRecords int
	Channels        int
	Offers          int
	Regions         int
	Cities          int
	JobTitles       int
	Areas           int
	Sectors         int
}
