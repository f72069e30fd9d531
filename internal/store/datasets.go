package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/cohortpulse/cohortpulse/internal/record"
)

// dateLayout is the storage format for dates; date-only precision is all the
// engine keys on.
const dateLayout = "2006-01-02"

// SaveDataset inserts a dataset and all of its claim rows in one
// transaction, returning the new dataset ID.
func (db *DB) SaveDataset(name string, claims []record.ClaimPayment) (int64, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.Exec(
		"INSERT INTO datasets (uploaded_at, name, row_count) VALUES (?, ?, ?)",
		time.Now().UTC().Format(time.RFC3339), name, len(claims),
	)
	if err != nil {
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.Prepare(`INSERT INTO claim_rows
		(dataset_id, claim_id, service_date, date_paid, billed_amount, amount_paid, payer, service_type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, c := range claims {
		if _, err := stmt.Exec(
			id, c.ClaimID,
			c.ServiceDate.Format(dateLayout), c.DatePaid.Format(dateLayout),
			c.BilledAmount, c.AmountPaid, c.Payer, c.ServiceType,
		); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// LatestDataset returns the most recently uploaded dataset, or nil if none
// exist.
func (db *DB) LatestDataset() (*Dataset, error) {
	row := db.conn.QueryRow(
		"SELECT id, uploaded_at, name, row_count FROM datasets ORDER BY id DESC LIMIT 1")
	return scanDataset(row)
}

func scanDataset(row *sql.Row) (*Dataset, error) {
	var d Dataset
	var uploadedAt string
	err := row.Scan(&d.ID, &uploadedAt, &d.Name, &d.RowCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	d.UploadedAt, _ = time.Parse(time.RFC3339, uploadedAt)
	return &d, nil
}

// LoadClaims returns all claim rows of a dataset in insertion order.
func (db *DB) LoadClaims(datasetID int64) ([]record.ClaimPayment, error) {
	rows, err := db.conn.Query(`SELECT claim_id, service_date, date_paid,
		billed_amount, amount_paid, payer, service_type
		FROM claim_rows WHERE dataset_id = ? ORDER BY id`, datasetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var claims []record.ClaimPayment
	for rows.Next() {
		var c record.ClaimPayment
		var service, paid string
		if err := rows.Scan(&c.ClaimID, &service, &paid,
			&c.BilledAmount, &c.AmountPaid, &c.Payer, &c.ServiceType); err != nil {
			return nil, err
		}
		c.ServiceDate, err = time.Parse(dateLayout, service)
		if err != nil {
			return nil, fmt.Errorf("claim %s: bad service_date %q: %w", c.ClaimID, service, err)
		}
		c.DatePaid, err = time.Parse(dateLayout, paid)
		if err != nil {
			return nil, fmt.Errorf("claim %s: bad date_paid %q: %w", c.ClaimID, paid, err)
		}
		claims = append(claims, c)
	}
	return claims, rows.Err()
}
