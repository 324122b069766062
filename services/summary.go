package services

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"channel-metrics-report/models"
	"channel-metrics-report/utils"
)

// SummaryService computes and prints run-level counts and report tables.
type SummaryService struct {
	logger *utils.Logger
}

func NewSummaryService(logger *utils.Logger) *SummaryService {
	return &SummaryService{logger: logger}
}

// Generate counts distinct non-null values over the cleaned Dataset.
// loaded is the record count before cleaning.
func (s *SummaryService) Generate(loaded int, ds *models.Dataset) (*models.Summary, error) {
	sum := &models.Summary{
		LoadedRecords:   loaded,
		AnalysedRecords: ds.Len(),
	}

	targets := []struct {
		col string
		dst *int
	}{
		{models.ColSource, &sum.Channels},
		{models.ColOfferID, &sum.Offers},
		{models.ColRegion, &sum.Regions},
		{models.ColCity, &sum.Cities},
		{models.ColJobTitle, &sum.JobTitles},
		{models.ColArea, &sum.Areas},
		{models.ColSector, &sum.Sectors},
	}

	for _, t := range targets {
		idx, ok := ds.ColumnIndex(t.col)
		if !ok {
			return nil, fmt.Errorf("summary: %w: %s", ErrMissingColumn, t.col)
		}
		set := utils.NewValueSet()
		for row := range ds.Records {
			set.Add(ds.Cell(row, idx))
		}
		*t.dst = set.Size()
	}
	return sum, nil
}

// Print writes the run summary.
func (s *SummaryService) Print(w io.Writer, r *models.Summary) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n%s\n", sep)
	fmt.Fprintf(w, "  📊 RESUMEN\n")
	fmt.Fprintf(w, "%s\n", thin)
	fmt.Fprintf(w, "  Total registros analizados : %s\n", humanize.Comma(int64(r.AnalysedRecords)))
	fmt.Fprintf(w, "  Canales únicos (Source)    : %s\n", humanize.Comma(int64(r.Channels)))
	fmt.Fprintf(w, "  Ofertas únicas             : %s\n", humanize.Comma(int64(r.Offers)))
	fmt.Fprintf(w, "  Regiones únicas            : %s\n", humanize.Comma(int64(r.Regions)))
	fmt.Fprintf(w, "  Ciudades únicas            : %s\n", humanize.Comma(int64(r.Cities)))
	fmt.Fprintf(w, "  Job Titles únicos          : %s\n", humanize.Comma(int64(r.JobTitles)))
	fmt.Fprintf(w, "  Areas únicas               : %s\n", humanize.Comma(int64(r.Areas)))
	fmt.Fprintf(w, "  Sectores únicos            : %s\n", humanize.Comma(int64(r.Sectors)))
	if dropped := r.LoadedRecords - r.AnalysedRecords; dropped > 0 {
		fmt.Fprintf(w, "  (%s registros sin Source descartados)\n", humanize.Comma(int64(dropped)))
	}
	fmt.Fprintf(w, "%s\n\n", sep)
}

// PrintReport writes one report as an aligned table.
func (s *SummaryService) PrintReport(w io.Writer, r *models.Report) {
	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 80))
	fmt.Fprintf(w, "📊 TOP %d %s\n", len(r.Rows), strings.ToUpper(r.Name))
	fmt.Fprintf(w, "%s\n", strings.Repeat("=", 80))

	if len(r.Rows) == 0 {
		fmt.Fprintln(w, "   (Sin datos)")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, strings.Join(r.Header(), "\t")+"\t")
	for _, row := range r.Rows {
		cells := append([]string{}, row.Dimensions...)
		cells = append(cells, row.Source)
		for _, v := range row.Metrics() {
			cells = append(cells, humanize.Comma(v))
		}
		cells = append(cells,
			fmt.Sprint(row.UniqueOffers),
			FormatRate(row.ConversionRate),
			FormatRate(row.EngagementRate),
		)
		fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t")
	}
	_ = tw.Flush()
}

// FormatRate renders a rate with two decimals; the NaN sentinel renders empty.
func FormatRate(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return fmt.Sprintf("%.2f", f)
}
