// Package services orchestrates the ingest pipeline: normalize the run's
// exports, resolve identities, merge into the masters, persist, report.
package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"sbtalks/internal/amqp"
	"sbtalks/internal/core"
	"sbtalks/internal/geo"
	"sbtalks/internal/log"
	"sbtalks/internal/master"
	"sbtalks/internal/match"
	"sbtalks/internal/normalize"
	"sbtalks/internal/report"
	"sbtalks/internal/storage"
	"sbtalks/internal/tabular"
)

// Publisher publishes run-completed events. The pipeline treats it as
// optional and fire-and-forget.
type Publisher interface {
	PublishRunCompleted(ctx context.Context, msg *amqp.RunCompletedMessage) error
}

// Input is one attendance export scheduled for a run.
type Input struct {
	File        string // display name for reports
	Source      tabular.Source
	Fingerprint string // SHA-256 of the export's raw bytes
	WebinarID   string
	WebinarDate core.Date
}

// RunResult is everything one run produced besides the persisted masters.
type RunResult struct {
	Summary    report.RunSummary
	Snapshot   master.Snapshot
	Unresolved []report.Unresolved
}

// Pipeline runs one ingest against a store and the static reference data.
type Pipeline struct {
	store     storage.Store
	centers   geo.CenterSet
	zips      geo.ZipIndex
	publisher Publisher
	logger    *log.Logger
	cacheSize int
}

// NewPipeline builds a pipeline. publisher may be nil to disable events;
// cacheSize <= 0 selects the matcher default.
func NewPipeline(store storage.Store, centers geo.CenterSet, zips geo.ZipIndex, publisher Publisher, logger *log.Logger, cacheSize int) *Pipeline {
	return &Pipeline{
		store:     store,
		centers:   centers,
		zips:      zips,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentPipeline),
		cacheSize: cacheSize,
	}
}

// Run ingests one CRM export and a set of attendance exports. Row-level
// problems are collected into the summary; only store or reference failures
// return an error. The masters are saved before any event is published, so
// a broker failure never loses a committed run.
func (p *Pipeline) Run(ctx context.Context, crmSource tabular.Source, inputs []Input) (*RunResult, error) {
	runID := uuid.NewString()
	logger := p.logger.With(log.FieldRunID, runID)

	old, err := p.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load masters: %w", err)
	}
	logger.InfoContext(ctx, "Loaded masters",
		log.FieldOperation, log.OpLoad,
		log.FieldPeople, len(old.People),
		log.FieldAttendance, len(old.Attendance))

	crm, crmMalformed, err := p.loadCRM(ctx, crmSource)
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "Loaded CRM snapshot", "clients", crm.Len(), log.FieldMalformed, len(crmMalformed))

	normalized, err := p.normalizeAll(ctx, inputs)
	if err != nil {
		return nil, err
	}

	matcher := match.New(crm, p.centers, p.zips, p.cacheSize)

	summary := report.RunSummary{RunID: runID, Malformed: len(crmMalformed)}
	// Non-nil even when empty: the review queue is rewritten every ingest
	// so it always reflects the latest run.
	var upserts []master.Upsert
	unresolved := []report.Unresolved{}

	for i, res := range normalized {
		in := inputs[i]
		fs := report.FileSummary{
			File:        in.File,
			WebinarID:   in.WebinarID,
			WebinarDate: in.WebinarDate,
			InputRows:   res.InputRows,
			Records:     len(res.Records),
			Malformed:   len(res.Malformed),
			Cancelled:   res.Cancelled,
		}

		emails := make(map[string]bool)
		for _, rec := range res.Records {
			if rec.Email != "" {
				emails[rec.Email] = true
			}

			person, err := matcher.Match(rec)
			if err != nil {
				if !errors.Is(err, core.ErrUnresolvedIdentity) {
					return nil, fmt.Errorf("match record in %s: %w", in.File, err)
				}
				fs.Unresolved++
				unresolved = append(unresolved, report.Unresolved{
					File:        in.File,
					WebinarID:   rec.WebinarID,
					WebinarDate: rec.WebinarDate,
					Name:        rec.Name,
					Zip:         rec.Zip,
					Reason:      err.Error(),
				})
				continue
			}

			key := core.AttendanceKey(person.ID, rec.WebinarID)
			upserts = append(upserts, master.Upsert{
				Person: person,
				Attendance: core.Attendance{
					Key:               key,
					PersonID:          person.ID,
					WebinarID:         rec.WebinarID,
					WebinarDate:       rec.WebinarDate,
					Attended:          rec.Attended,
					SourceFingerprint: in.Fingerprint,
				},
			})
		}

		fs.UniqueEmails = len(emails)
		summary.Files = append(summary.Files, fs)
		summary.Malformed += fs.Malformed
		summary.Unresolved += fs.Unresolved
	}

	next, delta := master.Merge(old, upserts)
	summary.Delta = delta

	if err := p.store.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("persist masters: %w", err)
	}
	logger.InfoContext(ctx, "Persisted masters",
		log.FieldOperation, log.OpPersist,
		log.FieldPeople, delta.PeopleAfter,
		log.FieldAttendance, delta.AttendanceAfter)

	report.LogSummary(p.logger, summary)
	p.publishRunCompleted(ctx, logger, summary, next)

	return &RunResult{Summary: summary, Snapshot: next, Unresolved: unresolved}, nil
}

func (p *Pipeline) loadCRM(ctx context.Context, src tabular.Source) (match.Snapshot, []normalize.RowIssue, error) {
	header, rows, err := src.ReadAll(ctx)
	if err != nil {
		return match.Snapshot{}, nil, fmt.Errorf("read crm export: %w", err)
	}
	clients, malformed := normalize.CRM(tabular.Records(header, rows), normalize.DefaultCRMColumns())
	return match.NewSnapshot(clients), malformed, nil
}

// normalizeAll reads and normalizes every export concurrently. Results
// come back in input order.
func (p *Pipeline) normalizeAll(ctx context.Context, inputs []Input) ([]normalize.Result, error) {
	results := make([]normalize.Result, len(inputs))
	g, gctx := errgroup.WithContext(ctx)

	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			header, rows, err := in.Source.ReadAll(gctx)
			if err != nil {
				return fmt.Errorf("read %s: %w", in.File, err)
			}
			results[i] = normalize.Attendance(
				tabular.Records(header, rows), in.WebinarID, in.WebinarDate,
				normalize.DefaultAttendanceColumns())
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (p *Pipeline) publishRunCompleted(ctx context.Context, logger *log.Logger, summary report.RunSummary, snap master.Snapshot) {
	if p.publisher == nil {
		return
	}

	webinars := make([]string, 0, len(summary.Files))
	seen := make(map[string]bool)
	for _, f := range summary.Files {
		if !seen[f.WebinarID] {
			seen[f.WebinarID] = true
			webinars = append(webinars, f.WebinarID)
		}
	}
	sort.Strings(webinars)

	msg := amqp.NewRunCompletedMessage(summary.RunID, webinars)
	msg.PeopleTotal = len(snap.People)
	msg.PeopleNew = summary.Delta.PeopleNew
	msg.AttendanceTotal = len(snap.Attendance)
	msg.AttendanceAdded = summary.Delta.AttendanceAdded

	if err := p.publisher.PublishRunCompleted(ctx, msg); err != nil {
		logger.WarnContext(ctx, "Failed to publish run completed event",
			log.FieldOperation, log.OpPublish,
			log.FieldError, err)
	}
}
