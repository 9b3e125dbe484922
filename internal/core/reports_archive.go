package core

import (
	"context"
	"time"

	"pedigreecore/internal/archive"
	"pedigreecore/internal/pedigree"
)

// ArchiveReport stores report in the configured archive.
func (s *Service) ArchiveReport(ctx context.Context, report pedigree.Report) (archive.Entry, error) {
	var entry archive.Entry
	err := s.run(ctx, "archive_report", func(ctx context.Context) error {
		if s.archive == nil {
			return ErrArchiveDisabled
		}
		var err error
		entry, err = s.archive.Save(ctx, report)
		return err
	}, "individual_id", report.Individual.ID)
	return entry, err
}

// ArchivedReports lists the stored reports of id, oldest first.
func (s *Service) ArchivedReports(ctx context.Context, id string) ([]archive.Entry, error) {
	var entries []archive.Entry
	err := s.run(ctx, "list_archived_reports", func(ctx context.Context) error {
		if s.archive == nil {
			return ErrArchiveDisabled
		}
		var err error
		entries, err = s.archive.List(ctx, id)
		return err
	}, "individual_id", id)
	return entries, err
}

// LoadArchivedReport reads one stored report by key.
func (s *Service) LoadArchivedReport(ctx context.Context, key string) (pedigree.Report, error) {
	var report pedigree.Report
	err := s.run(ctx, "load_archived_report", func(ctx context.Context) error {
		if s.archive == nil {
			return ErrArchiveDisabled
		}
		var err error
		report, err = s.archive.Load(ctx, key)
		return err
	}, "key", key)
	return report, err
}

// ArchivedReportURL returns a shareable link where the archive backend
// supports one.
func (s *Service) ArchivedReportURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	var url string
	err := s.run(ctx, "archived_report_url", func(ctx context.Context) error {
		if s.archive == nil {
			return ErrArchiveDisabled
		}
		var err error
		url, err = s.archive.URL(ctx, key, expiry)
		return err
	}, "key", key)
	return url, err
}
