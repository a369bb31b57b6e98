package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/angas/rotariff-go/hours"
)

type DownloadLogRow struct {
	Id         int64
	Date       string
	StartedAt  time.Time
	FinishedAt time.Time
	Outcome    string
	Message    string
	NoOfHours  int
}

func (d *Database) SaveDownloadLog(ctx context.Context, r DownloadLogRow) error {
	_, err := d.write.ExecContext(ctx, `
		INSERT INTO download_log (date, started_at, finished_at, outcome, message, no_of_hours)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.Date,
		r.StartedAt.UTC().Format(time.RFC3339),
		r.FinishedAt.UTC().Format(time.RFC3339),
		r.Outcome,
		r.Message,
		r.NoOfHours)
	if err != nil {
		return fmt.Errorf("saving download log entry: %w", err)
	}
	return nil
}

func (d *Database) GetRecentDownloads(ctx context.Context, limit int) ([]DownloadLogRow, error) {
	if limit < 1 {
		limit = 25
	}

	rows, err := d.read.QueryContext(ctx, `
		SELECT id, date, started_at, finished_at, outcome, message, no_of_hours
		FROM download_log
		ORDER BY id DESC
		LIMIT ?`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("fetching download log: %w", err)
	}
	defer rows.Close()

	var started, finished string
	var entries []DownloadLogRow
	for rows.Next() {
		var r DownloadLogRow
		err := rows.Scan(&r.Id, &r.Date, &started, &finished, &r.Outcome, &r.Message, &r.NoOfHours)
		if err != nil {
			d.logger.Error("error when scanning download log row", slog.Any("error", err))
			return nil, err
		}
		r.StartedAt, err = time.Parse(time.RFC3339, started)
		if err != nil {
			return nil, fmt.Errorf("parsing started_at: %w", err)
		}
		r.FinishedAt, err = time.Parse(time.RFC3339, finished)
		if err != nil {
			return nil, fmt.Errorf("parsing finished_at: %w", err)
		}
		entries = append(entries, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading download log rows: %w", err)
	}

	return entries, nil
}

func (d *Database) PurgeDownloadLog(ctx context.Context, retentionDays int) error {
	d.logger.Debug("purging download log")
	before := hours.FromTime(time.Now().Add(-24 * time.Hour * time.Duration(retentionDays)))
	_, err := d.write.ExecContext(ctx, `DELETE FROM download_log WHERE date < ?`, before.Date)
	if err != nil {
		return fmt.Errorf("purging download log: %w", err)
	}
	return nil
}
