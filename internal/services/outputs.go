package services

import (
	"context"
	"fmt"
	"path/filepath"

	"sbtalks/internal/geo"
	"sbtalks/internal/kpi"
	"sbtalks/internal/log"
	"sbtalks/internal/master"
	"sbtalks/internal/report"
	"sbtalks/internal/tabular"
)

// Output file names under the report directory.
const (
	KPIFile        = "webinar_kpis.csv"
	ClientZipFile  = "client_zip_distribution.csv"
	CenterFile     = "nonclient_center_assignment.csv"
	NeverFile      = "never_attended.csv"
	UnresolvedFile = "unresolved_review.csv"
)

// WriteOutputs recomputes every derived output from the snapshot and writes
// them under dir. All writes are atomic, so an interrupted run leaves the
// previous reports intact.
func WriteOutputs(ctx context.Context, dir string, snap master.Snapshot, centers geo.CenterSet, zips geo.ZipIndex, unresolved []report.Unresolved, logger *log.Logger) error {
	logger = logger.WithComponent(log.ComponentReport)

	table := kpi.Compute(snap)
	if err := report.WriteKPIs(ctx, tabular.CSVFile{Path: filepath.Join(dir, KPIFile)}, table); err != nil {
		return fmt.Errorf("%s: %w", KPIFile, err)
	}

	agg := geo.Aggregate(snap, zips, centers)
	if err := report.WriteClientZips(ctx, tabular.CSVFile{Path: filepath.Join(dir, ClientZipFile)}, agg.Clients); err != nil {
		return fmt.Errorf("%s: %w", ClientZipFile, err)
	}
	if err := report.WriteCenterAssignments(ctx, tabular.CSVFile{Path: filepath.Join(dir, CenterFile)}, agg.NonClients); err != nil {
		return fmt.Errorf("%s: %w", CenterFile, err)
	}

	never := report.NeverAttended(snap)
	if err := report.WriteNeverAttended(ctx, tabular.CSVFile{Path: filepath.Join(dir, NeverFile)}, never); err != nil {
		return fmt.Errorf("%s: %w", NeverFile, err)
	}

	// A nil queue means report mode: no ingest happened, so the last run's
	// review queue must survive untouched. An ingest always passes a
	// non-nil (possibly empty) queue.
	if unresolved != nil {
		if err := report.WriteUnresolved(ctx, tabular.CSVFile{Path: filepath.Join(dir, UnresolvedFile)}, unresolved); err != nil {
			return fmt.Errorf("%s: %w", UnresolvedFile, err)
		}
	}

	logger.InfoContext(ctx, "Wrote run outputs",
		log.FieldOperation, log.OpReport,
		log.FieldPath, dir,
		"webinars", len(table.Webinars),
		"never_attended", len(never),
		log.FieldUnresolved, len(unresolved),
		"geo_skipped", agg.Skipped)
	return nil
}
