package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tarasamar/internal/domain"
)

const dateLayout = "2006-01-02"

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
func valJSON(m map[string]any) (any, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// scanJSON decodes a JSON column. NULL and empty columns decode to nil.
func scanJSON(raw []byte) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// Repo implements the booking, activity and notification ports on MySQL.
// The DSN must set parseTime=true.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

/********** booking_requests **********/

func (r *Repo) InsertBooking(ctx context.Context, b domain.BookingRequest) error {
	_, err := r.db.ExecContext(ctx, insertBookingSQL,
		b.ID,
		b.Email,
		b.FullName,
		b.Phone,
		valStr(b.Message),
		valInt(b.PackageID),
		valStr(b.PackageName),
		valInt(b.Guests),
		valStr(b.SelectedDate),
		string(b.Status),
		b.CreatedAt.UTC(),
		b.UpdatedAt.UTC(),
	)
	return err
}

func (r *Repo) GetBooking(ctx context.Context, id string) (domain.BookingRequest, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx, getBookingSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.BookingRequest{}, domain.ErrNotFound
	}
	return b, err
}

func (r *Repo) UpdateBookingStatus(ctx context.Context, id string, status domain.BookingStatus, at time.Time) error {
	_, err := r.db.ExecContext(ctx, updateBookingStatusSQL, string(status), at.UTC(), id)
	return err
}

func (r *Repo) ListBookingsByEmail(ctx context.Context, email string, limit int) ([]domain.BookingRequest, error) {
	rows, err := r.db.QueryContext(ctx, listBookingsByEmailSQL, email, limit)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (r *Repo) ListBookings(ctx context.Context, limit int) ([]domain.BookingRequest, error) {
	rows, err := r.db.QueryContext(ctx, listBookingsSQL, limit)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

type scanner interface{ Scan(dest ...any) error }

func scanBooking(s scanner) (domain.BookingRequest, error) {
	var (
		b           domain.BookingRequest
		message     sql.NullString
		packageID   sql.NullInt64
		packageName sql.NullString
		guests      sql.NullInt64
		date        sql.NullTime
		status      string
	)
	if err := s.Scan(
		&b.ID,
		&b.Email,
		&b.FullName,
		&b.Phone,
		&message,
		&packageID,
		&packageName,
		&guests,
		&date,
		&status,
		&b.CreatedAt,
		&b.UpdatedAt,
	); err != nil {
		return domain.BookingRequest{}, err
	}
	if message.Valid {
		m := message.String
		b.Message = &m
	}
	if packageID.Valid {
		id := int(packageID.Int64)
		b.PackageID = &id
	}
	if packageName.Valid {
		n := packageName.String
		b.PackageName = &n
	}
	if guests.Valid {
		g := int(guests.Int64)
		b.Guests = &g
	}
	if date.Valid {
		d := date.Time.Format(dateLayout)
		b.SelectedDate = &d
	}
	b.Status = domain.BookingStatus(status)
	return b, nil
}

func collectBookings(rows *sql.Rows) ([]domain.BookingRequest, error) {
	defer rows.Close()
	out := []domain.BookingRequest{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

/********** activity_logs **********/

func (r *Repo) InsertActivity(ctx context.Context, e domain.ActivityLogEntry) error {
	meta, err := valJSON(e.Metadata)
	if err != nil {
		return fmt.Errorf("marshal activity metadata: %w", err)
	}
	_, err = r.db.ExecContext(ctx, insertActivitySQL,
		e.ID,
		valStr(e.UserID),
		valStr(e.Email),
		string(e.EventType),
		valStr(e.Description),
		meta,
		e.CreatedAt.UTC(),
	)
	return err
}

func (r *Repo) ListActivity(ctx context.Context, q domain.ActivityQuery) ([]domain.ActivityLogEntry, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if q.EventType == "" {
		rows, err = r.db.QueryContext(ctx, listActivitySQL, q.Limit)
	} else {
		rows, err = r.db.QueryContext(ctx, listActivityByTypeSQL, string(q.EventType), q.Limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.ActivityLogEntry{}
	for rows.Next() {
		var (
			e             domain.ActivityLogEntry
			userID, email sql.NullString
			eventType     string
			description   sql.NullString
			metaRaw       []byte
		)
		if err := rows.Scan(&e.ID, &userID, &email, &eventType, &description, &metaRaw, &e.CreatedAt); err != nil {
			return nil, err
		}
		if userID.Valid {
			s := userID.String
			e.UserID = &s
		}
		if email.Valid {
			s := email.String
			e.Email = &s
		}
		if description.Valid {
			s := description.String
			e.Description = &s
		}
		e.EventType = domain.EventType(eventType)
		meta, err := scanJSON(metaRaw)
		if err != nil {
			return nil, fmt.Errorf("decode activity %s metadata: %w", e.ID, err)
		}
		e.Metadata = meta
		out = append(out, e)
	}
	return out, rows.Err()
}

/********** notifications **********/

func (r *Repo) InsertNotification(ctx context.Context, n domain.Notification) error {
	data, err := valJSON(n.Data)
	if err != nil {
		return fmt.Errorf("marshal notification data: %w", err)
	}
	_, err = r.db.ExecContext(ctx, insertNotificationSQL,
		n.ID,
		n.Email,
		n.Type,
		n.Title,
		n.Message,
		data,
		n.CreatedAt.UTC(),
	)
	return err
}

func (r *Repo) GetNotification(ctx context.Context, id string) (domain.Notification, error) {
	n, err := scanNotification(r.db.QueryRowContext(ctx, getNotificationSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Notification{}, domain.ErrNotFound
	}
	return n, err
}

func (r *Repo) MarkNotificationRead(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, markNotificationReadSQL, at.UTC(), id)
	return err
}

func (r *Repo) ListNotifications(ctx context.Context, email string, limit int) ([]domain.Notification, error) {
	rows, err := r.db.QueryContext(ctx, listNotificationsSQL, email, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func scanNotification(s scanner) (domain.Notification, error) {
	var (
		n       domain.Notification
		dataRaw []byte
		readAt  sql.NullTime
	)
	if err := s.Scan(&n.ID, &n.Email, &n.Type, &n.Title, &n.Message, &dataRaw, &n.CreatedAt, &readAt); err != nil {
		return domain.Notification{}, err
	}
	data, err := scanJSON(dataRaw)
	if err != nil {
		return domain.Notification{}, fmt.Errorf("decode notification %s data: %w", n.ID, err)
	}
	n.Data = data
	if readAt.Valid {
		t := readAt.Time
		n.ReadAt = &t
	}
	return n, nil
}
