package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/angas/rotariff-go/convert"
	"github.com/angas/rotariff-go/hours"
)

type HourlyPriceRow struct {
	When   hours.DateHour
	Price  float64
	Volume float64
}

// SaveDayPrices replaces all stored rows for the given date in one transaction,
// so a partially written day is never visible to readers.
func (d *Database) SaveDayPrices(ctx context.Context, date string, rows []HourlyPriceRow) error {
	tx, err := d.write.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction for %s: %w", date, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM hourly_price WHERE date = ?`, date); err != nil {
		tx.Rollback()
		return fmt.Errorf("clearing day %s: %w", date, err)
	}

	for _, row := range rows {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO hourly_price (date, hour, start, price, volume)
			VALUES (?, ?, ?, ?, ?)`,
			row.When.Date,
			row.When.Hour,
			row.When.IsoString(),
			convert.RoundFloat64(row.Price, 4),
			convert.RoundFloat64(row.Volume, 4))
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting price for %s: %w", row.When.String(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing day %s: %w", date, err)
	}

	return nil
}

func (d *Database) GetHourlyPricesForDay(ctx context.Context, date string) ([]HourlyPriceRow, error) {
	rows, err := d.read.QueryContext(ctx, `SELECT
		date, hour, price, volume
		FROM hourly_price
		WHERE date = ?
		ORDER BY hour ASC`,
		date)
	if err != nil {
		return nil, fmt.Errorf("fetching prices for %s: %w", date, err)
	}

	defer rows.Close()

	return d.scanHourlyPrices(rows)
}

func (d *Database) GetHourlyPricesFrom(ctx context.Context, dh hours.DateHour) ([]HourlyPriceRow, error) {
	rows, err := d.read.QueryContext(ctx, `SELECT
		date, hour, price, volume
		FROM hourly_price
		WHERE (date = ? AND hour >= ?) OR date > ?
		ORDER BY date, hour ASC`,
		dh.Date, dh.Hour, dh.Date)
	if err != nil {
		return nil, fmt.Errorf("fetching prices from %s: %w", dh.String(), err)
	}

	defer rows.Close()

	return d.scanHourlyPrices(rows)
}

// GetHourlyPriceDates returns the distinct dates with at least one stored
// price in the inclusive range [from, to].
func (d *Database) GetHourlyPriceDates(ctx context.Context, from, to string) ([]string, error) {
	rows, err := d.read.QueryContext(ctx, `SELECT DISTINCT date
		FROM hourly_price
		WHERE date >= ? AND date <= ?
		ORDER BY date ASC`,
		from, to)
	if err != nil {
		return nil, fmt.Errorf("fetching price dates: %w", err)
	}

	defer rows.Close()

	var dates []string
	for rows.Next() {
		var date string
		if err := rows.Scan(&date); err != nil {
			d.logger.Error("error when scanning price date", slog.Any("error", err))
			return nil, err
		}
		dates = append(dates, date)
	}

	return dates, rows.Err()
}

func (d *Database) GetLatestPriceDate(ctx context.Context) (string, error) {
	row := d.read.QueryRowContext(ctx, `SELECT MAX(date) FROM hourly_price`)

	var date sql.NullString
	if err := row.Scan(&date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("fetching latest price date: %w", err)
	}

	return date.String, nil
}

func (d *Database) PurgeHourlyPrice(ctx context.Context, retentionDays int) error {
	return d.purgeTable(ctx, "hourly_price", retentionDays)
}

func (d *Database) scanHourlyPrices(rows *sql.Rows) ([]HourlyPriceRow, error) {
	var prices []HourlyPriceRow
	for rows.Next() {
		var hp HourlyPriceRow
		if err := rows.Scan(&hp.When.Date, &hp.When.Hour, &hp.Price, &hp.Volume); err != nil {
			d.logger.Error("error when scanning hourly price row", slog.Any("error", err))
			return nil, err
		}
		prices = append(prices, hp)
	}
	return prices, rows.Err()
}
