package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/domain"
)

type ReceiptRepository interface {
	Save(ctx context.Context, receipt *domain.Receipt) error
	GetByPNR(ctx context.Context, pnr string) (*domain.Receipt, error)
}

type PGReceiptRepository struct {
	db *pgxpool.Pool
}

func NewReceiptRepository(db *pgxpool.Pool) ReceiptRepository {
	return &PGReceiptRepository{db: db}
}

// Save stores the receipt and indexes each ticket by PNR. Saving the same
// payment again replaces the stored payload.
func (r *PGReceiptRepository) Save(ctx context.Context, receipt *domain.Receipt) error {
	payload, err := json.Marshal(receipt)
	if err != nil {
		return fmt.Errorf("encode receipt: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `INSERT INTO receipts (payment_id, flight_id, flight_number, passenger_email, total_paid, payload, issued_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (payment_id) DO UPDATE SET payload = EXCLUDED.payload, issued_at = EXCLUDED.issued_at`,
		receipt.PaymentID, receipt.FlightID, receipt.FlightNumber, receipt.Passenger.Email, receipt.TotalPaid, payload, receipt.IssuedAt); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, t := range receipt.Tickets {
		if t.PNR == "" {
			continue
		}
		batch.Queue(`INSERT INTO receipt_tickets (pnr, payment_id, booking_id, seat_number)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (pnr) DO NOTHING`, normalizePNR(t.PNR), receipt.PaymentID, t.BookingID, t.SeatNumber)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *PGReceiptRepository) GetByPNR(ctx context.Context, pnr string) (*domain.Receipt, error) {
	row := r.db.QueryRow(ctx, `SELECT r.payload FROM receipts r
		JOIN receipt_tickets t ON t.payment_id = r.payment_id
		WHERE t.pnr = $1`, normalizePNR(pnr))

	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrReceiptNotFound, pnr)
		}
		return nil, err
	}

	var receipt domain.Receipt
	if err := json.Unmarshal(payload, &receipt); err != nil {
		return nil, fmt.Errorf("decode receipt: %w", err)
	}
	return &receipt, nil
}

func normalizePNR(pnr string) string {
	return strings.ToUpper(strings.TrimSpace(pnr))
}
