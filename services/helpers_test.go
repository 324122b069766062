package services

import (
	"io"
	"strings"
	"testing"

	"channel-metrics-report/models"
	"channel-metrics-report/utils"
)

const testHeader = "Source,Region,City,JobTitle,Area,Sector,OfferId,ListImpressions,DetailViews,PageVisits,Applications,TotalEngagements,TotalTouchpoints"

func newTestLogger() *utils.Logger {
	l := utils.NewLogger()
	l.SetOutput(io.Discard)
	return l
}

// mustDataset parses header plus lines through the Loader.
func mustDataset(t *testing.T, lines ...string) *models.Dataset {
	t.Helper()
	body := testHeader + "\n" + strings.Join(lines, "\n") + "\n"
	ds, err := NewLoader(newTestLogger()).Read(strings.NewReader(body))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	return ds
}
