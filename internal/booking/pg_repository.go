package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool the repository uses; pgxmock satisfies it
// in tests.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type PgRepository struct {
	db DB
}

func NewPgRepository(db DB) *PgRepository {
	return &PgRepository{db: db}
}

const detailColumns = `
	a.id, a.user_id, a.doctor_id, a.date, a.time_label, a.reason, a.status, a.created_at, a.updated_at,
	u.first_name, u.last_name, u.email,
	d.name, d.phone, d.speciality, d.image_url
`

// Helpers

func scanUser(row pgx.Row) (*User, error) {
	var u User
	var firstName, lastName *string

	err := row.Scan(
		&u.ID,
		&u.AuthID,
		&firstName,
		&lastName,
		&u.Email,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	u.FirstName = firstName
	u.LastName = lastName
	return &u, nil
}

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	var email, imageURL *string

	err := row.Scan(
		&d.ID,
		&d.Name,
		&email,
		&d.Phone,
		&imageURL,
		&d.Speciality,
		&d.Bio,
		&d.Gender,
		&d.IsActive,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDoctorNotFound
		}
		return nil, err
	}

	d.Email = email
	d.ImageURL = imageURL
	return &d, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment

	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.DoctorID,
		&a.Date,
		&a.Time,
		&a.Reason,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	return &a, nil
}

func scanDetail(row pgx.Row) (*AppointmentDetail, error) {
	var d AppointmentDetail
	var u User
	var doc Doctor
	var doctorImageURL *string

	err := row.Scan(
		&d.ID,
		&d.UserID,
		&d.DoctorID,
		&d.Date,
		&d.Time,
		&d.Reason,
		&d.Status,
		&d.CreatedAt,
		&d.UpdatedAt,
		&u.FirstName,
		&u.LastName,
		&u.Email,
		&doc.Name,
		&doc.Phone,
		&doc.Speciality,
		&doctorImageURL,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	doc.ImageURL = doctorImageURL
	u.ID = d.UserID
	doc.ID = d.DoctorID
	d.User = &u
	d.Doctor = &doc
	return &d, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Interface methods

func (r *PgRepository) GetUserByAuthID(ctx context.Context, authID string) (*User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, auth_id, first_name, last_name, email, created_at, updated_at
		FROM users
		WHERE auth_id = $1
	`, authID)
	return scanUser(row)
}

func (r *PgRepository) GetDoctorByID(ctx context.Context, id string) (*Doctor, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, email, phone, image_url, speciality, bio, gender, is_active, created_at, updated_at
		FROM doctors
		WHERE id = $1
	`, id)
	return scanDoctor(row)
}

func (r *PgRepository) FindDoctorByNamePhone(ctx context.Context, name, phone string) (*Doctor, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, email, phone, image_url, speciality, bio, gender, is_active, created_at, updated_at
		FROM doctors
		WHERE name = $1 AND phone = $2
	`, name, phone)
	return scanDoctor(row)
}

func (r *PgRepository) CreateDoctor(ctx context.Context, d Doctor) (*Doctor, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO doctors (id, name, email, phone, image_url, speciality, bio, gender, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
		RETURNING id, name, email, phone, image_url, speciality, bio, gender, is_active, created_at, updated_at
	`, d.ID, d.Name, d.Email, d.Phone, d.ImageURL, d.Speciality, d.Bio, d.Gender, d.IsActive)
	return scanDoctor(row)
}

func (r *PgRepository) ListActiveDoctors(ctx context.Context) ([]Doctor, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, email, phone, image_url, speciality, bio, gender, is_active, created_at, updated_at
		FROM doctors
		WHERE is_active = true
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) ListBookedTimes(ctx context.Context, doctorID string, date time.Time) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT time_label
		FROM appointments
		WHERE doctor_id = $1
		  AND date = $2
		  AND status IN ('CONFIRMED', 'COMPLETED')
		ORDER BY time_label ASC
	`, doctorID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var times []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		times = append(times, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return times, nil
}

func (r *PgRepository) GetActiveAppointmentForSlot(ctx context.Context, doctorID string, date time.Time, timeLabel string) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, user_id, doctor_id, date, time_label, reason, status, created_at, updated_at
		FROM appointments
		WHERE doctor_id = $1
		  AND date = $2
		  AND time_label = $3
		  AND status IN ('CONFIRMED', 'COMPLETED')
		LIMIT 1
	`, doctorID, date, timeLabel)
	return scanAppointment(row)
}

func (r *PgRepository) CreateConfirmedAppointment(ctx context.Context, userID uuid.UUID, doctorID string, date time.Time, timeLabel, reason string) (*AppointmentDetail, error) {
	id := uuid.New()

	row := r.db.QueryRow(ctx, `
		INSERT INTO appointments (id, user_id, doctor_id, date, time_label, reason, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 'CONFIRMED', now(), now())
		RETURNING id, user_id, doctor_id, date, time_label, reason, status, created_at, updated_at
	`, id, userID, doctorID, date, timeLabel, reason)

	appt, err := scanAppointment(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlotTaken
		}
		return nil, err
	}

	return r.GetAppointmentDetail(ctx, appt.ID)
}

func (r *PgRepository) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to Status) (*AppointmentDetail, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		  AND status = $3
		RETURNING id, user_id, doctor_id, date, time_label, reason, status, created_at, updated_at
	`, id, to, from)

	appt, err := scanAppointment(row)
	if err != nil {
		return nil, err
	}

	return r.GetAppointmentDetail(ctx, appt.ID)
}

func (r *PgRepository) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, user_id, doctor_id, date, time_label, reason, status, created_at, updated_at
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) GetAppointmentDetail(ctx context.Context, id uuid.UUID) (*AppointmentDetail, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+detailColumns+`
		FROM appointments a
		JOIN users u ON u.id = a.user_id
		JOIN doctors d ON d.id = a.doctor_id
		WHERE a.id = $1
	`, id)
	return scanDetail(row)
}

func (r *PgRepository) ListUpcomingForUser(ctx context.Context, userID uuid.UUID, today time.Time) ([]AppointmentDetail, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+detailColumns+`
		FROM appointments a
		JOIN users u ON u.id = a.user_id
		JOIN doctors d ON d.id = a.doctor_id
		WHERE a.user_id = $1
		  AND a.date >= $2
		  AND a.status IN ('PENDING', 'CONFIRMED')
		ORDER BY a.date ASC, a.time_label ASC
	`, userID, today)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectDetails(rows)
}

func (r *PgRepository) ListPastForUser(ctx context.Context, userID uuid.UUID, today time.Time, limit int) ([]AppointmentDetail, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+detailColumns+`
		FROM appointments a
		JOIN users u ON u.id = a.user_id
		JOIN doctors d ON d.id = a.doctor_id
		WHERE a.user_id = $1
		  AND a.date < $2
		ORDER BY a.date DESC, a.time_label DESC
		LIMIT $3
	`, userID, today, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectDetails(rows)
}

func (r *PgRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]AppointmentDetail, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+detailColumns+`
		FROM appointments a
		JOIN users u ON u.id = a.user_id
		JOIN doctors d ON d.id = a.doctor_id
		WHERE a.user_id = $1
		ORDER BY a.date ASC, a.time_label ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectDetails(rows)
}

func (r *PgRepository) CountForUser(ctx context.Context, userID uuid.UUID) (total, completed int, err error) {
	row := r.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'COMPLETED')
		FROM appointments
		WHERE user_id = $1
	`, userID)

	if err := row.Scan(&total, &completed); err != nil {
		return 0, 0, err
	}
	return total, completed, nil
}

func collectDetails(rows pgx.Rows) ([]AppointmentDetail, error) {
	var result []AppointmentDetail
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
