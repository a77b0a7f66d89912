// Package postgres persists the insurance domain in PostgreSQL. Ownership
// scoping is enforced in every query; cascading deletes ride on the schema's
// foreign keys.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"vims/internal/insurance"
	"vims/internal/platform/postgres"
	id "vims/pkg/domain"
	"vims/pkg/platform/sentinel"
)

// Store is the PostgreSQL-backed insurance store.
type Store struct {
	db *sql.DB
}

// New constructs a PostgreSQL-backed insurance store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// ----------------------------------------------------------------- Owners

func (s *Store) CreateOwner(ctx context.Context, o *insurance.Owner) error {
	query := `
		INSERT INTO owners (id, user_id, full_name, address, phone, dob, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(o.ID), uuid.UUID(o.UserID), o.Name, o.Address, o.Phone, nullTime(o.DOB), o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert owner: %w", err)
	}
	return nil
}

func (s *Store) UpdateOwner(ctx context.Context, o *insurance.Owner) error {
	query := `
		UPDATE owners SET full_name = $3, address = $4, phone = $5, dob = $6
		WHERE id = $1 AND user_id = $2
	`
	res, err := s.db.ExecContext(ctx, query,
		uuid.UUID(o.ID), uuid.UUID(o.UserID), o.Name, o.Address, o.Phone, nullTime(o.DOB),
	)
	if err != nil {
		return fmt.Errorf("update owner: %w", err)
	}
	return requireRow(res, "owner")
}

func (s *Store) DeleteOwner(ctx context.Context, userID id.UserID, ownerID id.OwnerID) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM owners WHERE id = $1 AND user_id = $2`,
		uuid.UUID(ownerID), uuid.UUID(userID),
	)
	if err != nil {
		return fmt.Errorf("delete owner: %w", err)
	}
	return requireRow(res, "owner")
}

const ownerColumns = `id, user_id, full_name, address, phone, dob, created_at`

func (s *Store) FindOwner(ctx context.Context, userID id.UserID, ownerID id.OwnerID) (*insurance.Owner, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+ownerColumns+` FROM owners WHERE id = $1 AND user_id = $2`,
		uuid.UUID(ownerID), uuid.UUID(userID),
	)
	return scanOwner(row)
}

func (s *Store) ListOwners(ctx context.Context, userID id.UserID, search string) ([]*insurance.Owner, error) {
	query := `SELECT ` + ownerColumns + ` FROM owners WHERE user_id = $1`
	args := []any{uuid.UUID(userID)}
	if search != "" {
		query += ` AND full_name ILIKE '%' || $2 || '%'`
		args = append(args, search)
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list owners: %w", err)
	}
	defer rows.Close()

	var out []*insurance.Owner
	for rows.Next() {
		owner, err := scanOwner(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, owner)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOwner(row rowScanner) (*insurance.Owner, error) {
	var (
		o        insurance.Owner
		oid, uid uuid.UUID
		dob      sql.NullTime
	)
	err := row.Scan(&oid, &uid, &o.Name, &o.Address, &o.Phone, &dob, &o.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("owner not found: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan owner: %w", err)
	}
	o.ID = id.OwnerID(oid)
	o.UserID = id.UserID(uid)
	if dob.Valid {
		d := dob.Time
		o.DOB = &d
	}
	return &o, nil
}

// --------------------------------------------------------------- Vehicles

func (s *Store) CreateVehicle(ctx context.Context, v *insurance.Vehicle) error {
	query := `
		INSERT INTO vehicles (id, user_id, owner_id, title, vehicle_number, model_name, model_year, vehicle_type, vin, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(v.ID), uuid.UUID(v.UserID), uuid.UUID(v.OwnerID),
		v.Title, v.VehicleNumber, v.ModelName, v.ModelYear, v.VehicleType, v.VIN, v.CreatedAt,
	)
	if postgres.IsUniqueViolation(err) {
		return fmt.Errorf("vehicle number %q taken: %w", v.VehicleNumber, sentinel.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert vehicle: %w", err)
	}
	return nil
}

func (s *Store) UpdateVehicle(ctx context.Context, v *insurance.Vehicle) error {
	query := `
		UPDATE vehicles SET owner_id = $3, title = $4, vehicle_number = $5,
			model_name = $6, model_year = $7, vehicle_type = $8, vin = $9
		WHERE id = $1 AND user_id = $2
	`
	res, err := s.db.ExecContext(ctx, query,
		uuid.UUID(v.ID), uuid.UUID(v.UserID), uuid.UUID(v.OwnerID),
		v.Title, v.VehicleNumber, v.ModelName, v.ModelYear, v.VehicleType, v.VIN,
	)
	if postgres.IsUniqueViolation(err) {
		return fmt.Errorf("vehicle number %q taken: %w", v.VehicleNumber, sentinel.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("update vehicle: %w", err)
	}
	return requireRow(res, "vehicle")
}

func (s *Store) DeleteVehicle(ctx context.Context, userID id.UserID, vehicleID id.VehicleID) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM vehicles WHERE id = $1 AND user_id = $2`,
		uuid.UUID(vehicleID), uuid.UUID(userID),
	)
	if err != nil {
		return fmt.Errorf("delete vehicle: %w", err)
	}
	return requireRow(res, "vehicle")
}

const vehicleColumns = `id, user_id, owner_id, title, vehicle_number, model_name, model_year, vehicle_type, vin, created_at`

func (s *Store) FindVehicle(ctx context.Context, userID id.UserID, vehicleID id.VehicleID) (*insurance.Vehicle, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1 AND user_id = $2`,
		uuid.UUID(vehicleID), uuid.UUID(userID),
	)
	return scanVehicle(row)
}

func (s *Store) ListVehicles(ctx context.Context, userID id.UserID, ownerID *id.OwnerID) ([]*insurance.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE user_id = $1`
	args := []any{uuid.UUID(userID)}
	if ownerID != nil {
		query += ` AND owner_id = $2`
		args = append(args, uuid.UUID(*ownerID))
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()

	var out []*insurance.Vehicle
	for rows.Next() {
		vehicle, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, vehicle)
	}
	return out, rows.Err()
}

func scanVehicle(row rowScanner) (*insurance.Vehicle, error) {
	var (
		v             insurance.Vehicle
		vid, uid, oid uuid.UUID
	)
	err := row.Scan(&vid, &uid, &oid, &v.Title, &v.VehicleNumber, &v.ModelName, &v.ModelYear, &v.VehicleType, &v.VIN, &v.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("vehicle not found: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan vehicle: %w", err)
	}
	v.ID = id.VehicleID(vid)
	v.UserID = id.UserID(uid)
	v.OwnerID = id.OwnerID(oid)
	return &v, nil
}

// --------------------------------------------------------------- Policies

func (s *Store) CreatePolicy(ctx context.Context, p *insurance.Policy) error {
	query := `
		INSERT INTO policies (id, user_id, owner_id, vehicle_id, policy_number, policy_type, start_date, end_date, premium, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(p.ID), uuid.UUID(p.UserID), uuid.UUID(p.OwnerID), uuid.UUID(p.VehicleID),
		p.PolicyNumber, p.PolicyType, p.StartDate, p.EndDate, p.Premium, p.CreatedAt,
	)
	if postgres.IsUniqueViolation(err) {
		return fmt.Errorf("policy number %q taken: %w", p.PolicyNumber, sentinel.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert policy: %w", err)
	}
	return nil
}

func (s *Store) DeletePolicy(ctx context.Context, userID id.UserID, policyID id.PolicyID) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM policies WHERE id = $1 AND user_id = $2`,
		uuid.UUID(policyID), uuid.UUID(userID),
	)
	if err != nil {
		return fmt.Errorf("delete policy: %w", err)
	}
	return requireRow(res, "policy")
}

const policyColumns = `id, user_id, owner_id, vehicle_id, policy_number, policy_type, start_date, end_date, premium, created_at`

func (s *Store) FindPolicy(ctx context.Context, userID id.UserID, policyID id.PolicyID) (*insurance.Policy, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+policyColumns+` FROM policies WHERE id = $1 AND user_id = $2`,
		uuid.UUID(policyID), uuid.UUID(userID),
	)
	return scanPolicy(row)
}

func (s *Store) ListPolicies(ctx context.Context, userID id.UserID, ownerID *id.OwnerID) ([]*insurance.Policy, error) {
	query := `SELECT ` + policyColumns + ` FROM policies WHERE user_id = $1`
	args := []any{uuid.UUID(userID)}
	if ownerID != nil {
		query += ` AND owner_id = $2`
		args = append(args, uuid.UUID(*ownerID))
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list policies: %w", err)
	}
	defer rows.Close()

	var out []*insurance.Policy
	for rows.Next() {
		policy, err := scanPolicy(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, policy)
	}
	return out, rows.Err()
}

func (s *Store) MaxPolicyNumber(ctx context.Context) (string, error) {
	var max sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT max(policy_number) FROM policies`).Scan(&max)
	if err != nil {
		return "", fmt.Errorf("max policy number: %w", err)
	}
	return max.String, nil
}

func scanPolicy(row rowScanner) (*insurance.Policy, error) {
	var (
		p                  insurance.Policy
		pid, uid, oid, vid uuid.UUID
	)
	err := row.Scan(&pid, &uid, &oid, &vid, &p.PolicyNumber, &p.PolicyType, &p.StartDate, &p.EndDate, &p.Premium, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("policy not found: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan policy: %w", err)
	}
	p.ID = id.PolicyID(pid)
	p.UserID = id.UserID(uid)
	p.OwnerID = id.OwnerID(oid)
	p.VehicleID = id.VehicleID(vid)
	p.StartDate = insurance.DateOnly(p.StartDate)
	p.EndDate = insurance.DateOnly(p.EndDate)
	return &p, nil
}

// -------------------------------------------------------------- Accidents

func (s *Store) CreateAccident(ctx context.Context, a *insurance.Accident) error {
	query := `
		INSERT INTO accidents (id, policy_id, owner_id, vehicle_id, date_of_accident, location, description, policy_status, reported_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(a.ID), uuid.UUID(a.PolicyID), uuid.UUID(a.OwnerID), uuid.UUID(a.VehicleID),
		a.DateOfAccident, a.Location, a.Description, string(a.PolicyStatus), a.ReportedAt,
	)
	if postgres.IsUniqueViolation(err) {
		return fmt.Errorf("policy already has an accident: %w", sentinel.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert accident: %w", err)
	}
	return nil
}

const accidentColumns = `id, policy_id, owner_id, vehicle_id, date_of_accident, location, description, policy_status, reported_at`

func (s *Store) FindAccidentByPolicy(ctx context.Context, policyID id.PolicyID) (*insurance.Accident, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+accidentColumns+` FROM accidents WHERE policy_id = $1`,
		uuid.UUID(policyID),
	)
	return scanAccident(row)
}

func (s *Store) HasAccident(ctx context.Context, policyID id.PolicyID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM accidents WHERE policy_id = $1)`,
		uuid.UUID(policyID),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check accident: %w", err)
	}
	return exists, nil
}

func (s *Store) ListAccidents(ctx context.Context, userID id.UserID) ([]*insurance.Accident, error) {
	query := `
		SELECT a.id, a.policy_id, a.owner_id, a.vehicle_id, a.date_of_accident, a.location, a.description, a.policy_status, a.reported_at
		FROM accidents a
		JOIN policies p ON p.id = a.policy_id
		WHERE p.user_id = $1
		ORDER BY a.reported_at
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(userID))
	if err != nil {
		return nil, fmt.Errorf("list accidents: %w", err)
	}
	defer rows.Close()

	var out []*insurance.Accident
	for rows.Next() {
		accident, err := scanAccident(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, accident)
	}
	return out, rows.Err()
}

func scanAccident(row rowScanner) (*insurance.Accident, error) {
	var (
		a                  insurance.Accident
		aid, pid, oid, vid uuid.UUID
		status             string
	)
	err := row.Scan(&aid, &pid, &oid, &vid, &a.DateOfAccident, &a.Location, &a.Description, &status, &a.ReportedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("accident not found: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan accident: %w", err)
	}
	a.ID = id.AccidentID(aid)
	a.PolicyID = id.PolicyID(pid)
	a.OwnerID = id.OwnerID(oid)
	a.VehicleID = id.VehicleID(vid)
	a.DateOfAccident = insurance.DateOnly(a.DateOfAccident)
	a.PolicyStatus = insurance.PolicyStatus(status)
	return &a, nil
}

// --------------------------------------------------------------- Payments

func (s *Store) CreatePayment(ctx context.Context, p *insurance.Payment) error {
	query := `
		INSERT INTO payments (id, user_id, policy_id, accident_id, owner_id, vehicle_id, payment_ref, amount, payment_date, payment_method)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(p.ID), uuid.UUID(p.UserID), uuid.UUID(p.PolicyID), uuid.UUID(p.AccidentID),
		uuid.UUID(p.OwnerID), uuid.UUID(p.VehicleID), p.PaymentRef, p.Amount, p.PaymentDate, p.PaymentMethod,
	)
	if postgres.IsUniqueViolation(err) {
		return fmt.Errorf("payment rejected by uniqueness: %w", sentinel.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (s *Store) HasPayment(ctx context.Context, policyID id.PolicyID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM payments WHERE policy_id = $1)`,
		uuid.UUID(policyID),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check payment: %w", err)
	}
	return exists, nil
}

func (s *Store) ListPayments(ctx context.Context, userID id.UserID) ([]*insurance.Payment, error) {
	query := `
		SELECT id, user_id, policy_id, accident_id, owner_id, vehicle_id, payment_ref, amount, payment_date, payment_method
		FROM payments WHERE user_id = $1
		ORDER BY payment_date
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(userID))
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var out []*insurance.Payment
	for rows.Next() {
		var (
			p                        insurance.Payment
			pid, uid, plid, oid, vid uuid.UUID
			aid                      uuid.NullUUID
		)
		err := rows.Scan(&pid, &uid, &plid, &aid, &oid, &vid, &p.PaymentRef, &p.Amount, &p.PaymentDate, &p.PaymentMethod)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		p.ID = id.PaymentID(pid)
		p.UserID = id.UserID(uid)
		p.PolicyID = id.PolicyID(plid)
		p.AccidentID = id.AccidentID(aid.UUID)
		p.OwnerID = id.OwnerID(oid)
		p.VehicleID = id.VehicleID(vid)
		p.PaymentDate = insurance.DateOnly(p.PaymentDate)
		out = append(out, &p)
	}
	return out, rows.Err()
}

// ---------------------------------------------------------------- Counts

func (s *Store) Counts(ctx context.Context, userID id.UserID) (insurance.EntityCounts, error) {
	query := `
		SELECT
			(SELECT count(*) FROM owners WHERE user_id = $1),
			(SELECT count(*) FROM vehicles WHERE user_id = $1),
			(SELECT count(*) FROM policies WHERE user_id = $1),
			(SELECT count(*) FROM accidents a JOIN policies p ON p.id = a.policy_id WHERE p.user_id = $1),
			(SELECT count(*) FROM payments WHERE user_id = $1)
	`
	var c insurance.EntityCounts
	err := s.db.QueryRowContext(ctx, query, uuid.UUID(userID)).Scan(
		&c.Owners, &c.Vehicles, &c.Policies, &c.Accidents, &c.Payments,
	)
	if err != nil {
		return insurance.EntityCounts{}, fmt.Errorf("count entities: %w", err)
	}
	return c, nil
}

// ---------------------------------------------------------------- Helpers

func requireRow(res sql.Result, kind string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s not found: %w", kind, sentinel.ErrNotFound)
	}
	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
