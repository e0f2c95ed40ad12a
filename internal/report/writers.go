package report

import (
	"context"
	"fmt"
	"strconv"

	"sbtalks/internal/core"
	"sbtalks/internal/geo"
	"sbtalks/internal/kpi"
	"sbtalks/internal/tabular"
)

func formatShare(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// WriteKPIs writes the per-webinar KPI rows and the cumulative row.
func WriteKPIs(ctx context.Context, sink tabular.Sink, table kpi.Table) error {
	header := []string{
		"webinar_id", "webinar_date", "total_audience", "attendees", "no_shows",
		"engagement_rate", "first_time", "repeat", "first_time_share",
		"repeat_rate", "clients", "non_clients", "client_share",
	}

	rows := make([][]string, 0, len(table.Webinars)+1)
	for _, r := range table.Rows() {
		rows = append(rows, []string{
			r.WebinarID,
			r.WebinarDate.String(),
			strconv.Itoa(r.TotalAudience),
			strconv.Itoa(r.Attendees),
			strconv.Itoa(r.NoShows),
			formatShare(r.EngagementRate),
			strconv.Itoa(r.FirstTime),
			strconv.Itoa(r.Repeat),
			formatShare(r.FirstTimeShare),
			formatShare(r.RepeatRate),
			strconv.Itoa(r.Clients),
			strconv.Itoa(r.NonClients),
			formatShare(r.ClientShare),
		})
	}

	if err := sink.WriteAll(ctx, header, rows); err != nil {
		return fmt.Errorf("write kpi table: %w", err)
	}
	return nil
}

// WriteClientZips writes the client attendee distribution by ZIP.
func WriteClientZips(ctx context.Context, sink tabular.Sink, buckets []geo.ZipBucket) error {
	header := []string{"zip", "lat", "lon", "count"}
	rows := make([][]string, 0, len(buckets))
	for _, b := range buckets {
		rows = append(rows, []string{
			b.Zip,
			strconv.FormatFloat(b.Lat, 'f', 6, 64),
			strconv.FormatFloat(b.Lon, 'f', 6, 64),
			strconv.Itoa(b.Count),
		})
	}
	if err := sink.WriteAll(ctx, header, rows); err != nil {
		return fmt.Errorf("write client zip distribution: %w", err)
	}
	return nil
}

// WriteCenterAssignments writes the non-client counts per assigned center.
func WriteCenterAssignments(ctx context.Context, sink tabular.Sink, buckets []geo.CenterBucket) error {
	header := []string{"center_name", "center_abbr", "count", "share"}
	rows := make([][]string, 0, len(buckets))
	for _, b := range buckets {
		rows = append(rows, []string{b.Center, b.Abbr, strconv.Itoa(b.Count), formatShare(b.Share)})
	}
	if err := sink.WriteAll(ctx, header, rows); err != nil {
		return fmt.Errorf("write center assignments: %w", err)
	}
	return nil
}

// WriteNeverAttended writes the people with no attended=true facts.
func WriteNeverAttended(ctx context.Context, sink tabular.Sink, people []core.Person) error {
	header := []string{"person_id", "email", "name", "client_flag", "zip"}
	rows := make([][]string, 0, len(people))
	for _, p := range people {
		rows = append(rows, []string{
			string(p.ID), p.Email, p.Name, strconv.FormatBool(p.Client), p.Zip,
		})
	}
	if err := sink.WriteAll(ctx, header, rows); err != nil {
		return fmt.Errorf("write never-attended report: %w", err)
	}
	return nil
}

// WriteUnresolved writes the review queue of records that could not be
// resolved to any identity.
func WriteUnresolved(ctx context.Context, sink tabular.Sink, entries []Unresolved) error {
	header := []string{"file", "webinar_id", "webinar_date", "name", "zip", "reason"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.File, e.WebinarID, e.WebinarDate.String(), e.Name, e.Zip, e.Reason,
		})
	}
	if err := sink.WriteAll(ctx, header, rows); err != nil {
		return fmt.Errorf("write unresolved review queue: %w", err)
	}
	return nil
}
