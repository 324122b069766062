package storage

import "channel-metrics-report/models"

// ReportWriter is the interface any report sink must satisfy. Write receives
// every report of a run, in output order. Discard removes what a successful
// Write produced, so a run that fails in a later sink leaves no output.
type ReportWriter interface {
	Write(reports []*models.Report) error
	Discard() error
	Close() error
}
