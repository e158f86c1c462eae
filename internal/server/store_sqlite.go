package server

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// SQLiteStore implements Store and AdminStore on a single sqlite database.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func newToken() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (s *SQLiteStore) CreateParticipant(ctx context.Context, username, passwordHash, firstName, lastName string) (Participant, error) {
	p := Participant{
		ID:        uuid.NewString(),
		Username:  username,
		FirstName: firstName,
		LastName:  lastName,
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO participants (id, username, password_hash, first_name, last_name)
		VALUES (?, ?, ?, ?, ?)
		RETURNING created_at
	`, p.ID, username, passwordHash, firstName, lastName).Scan(&p.CreatedAt)
	if isUniqueViolation(err) {
		return Participant{}, ErrUsernameTaken
	}
	if err != nil {
		return Participant{}, err
	}
	return p, nil
}

func (s *SQLiteStore) ParticipantCredentials(ctx context.Context, username string) (string, string, error) {
	var id, passwordHash string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, password_hash FROM participants WHERE username = ?
	`, username).Scan(&id, &passwordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", ErrNotFound
	}
	return id, passwordHash, err
}

func (s *SQLiteStore) GetParticipant(ctx context.Context, id string) (Participant, error) {
	var p Participant
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, first_name, last_name, points, created_at
		FROM participants WHERE id = ?
	`, id).Scan(&p.ID, &p.Username, &p.FirstName, &p.LastName, &p.Points, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrNotFound
	}
	return p, err
}

func (s *SQLiteStore) ListParticipants(ctx context.Context) ([]Participant, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, first_name, last_name, points, created_at
		FROM participants ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []Participant
	for rows.Next() {
		var p Participant
		if err := rows.Scan(&p.ID, &p.Username, &p.FirstName, &p.LastName, &p.Points, &p.CreatedAt); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

func (s *SQLiteStore) AdjustPoints(ctx context.Context, id string, delta int) (int, error) {
	var total int
	err := s.db.QueryRowContext(ctx, `
		UPDATE participants SET points = MAX(0, points + ?)
		WHERE id = ?
		RETURNING points
	`, delta, id).Scan(&total)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return total, err
}

func (s *SQLiteStore) DeleteParticipant(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM participants WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) CreateParticipantSession(ctx context.Context, participantID string) (string, error) {
	token := newToken()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO participant_sessions (token, participant_id) VALUES (?, ?)
	`, token, participantID)
	return token, err
}

func (s *SQLiteStore) ParticipantFromSession(ctx context.Context, token string) (string, error) {
	var participantID string
	err := s.db.QueryRowContext(ctx, `
		SELECT participant_id FROM participant_sessions WHERE token = ?
	`, token).Scan(&participantID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", errNoSession
	}
	return participantID, err
}

func (s *SQLiteStore) ListLocations(ctx context.Context) ([]Location, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, lat, lng, points, description, image_url, qr_version
		FROM locations ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []Location
	for rows.Next() {
		var l Location
		if err := rows.Scan(&l.ID, &l.Name, &l.Lat, &l.Lng, &l.Points, &l.Description, &l.ImageURL, &l.QRVersion); err != nil {
			return nil, err
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

func (s *SQLiteStore) GetLocation(ctx context.Context, id int) (Location, error) {
	var l Location
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, lat, lng, points, description, image_url, qr_version
		FROM locations WHERE id = ?
	`, id).Scan(&l.ID, &l.Name, &l.Lat, &l.Lng, &l.Points, &l.Description, &l.ImageURL, &l.QRVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return l, ErrNotFound
	}
	return l, err
}

func (s *SQLiteStore) CreateLocation(ctx context.Context, req LocationRequest) (Location, error) {
	l := Location{
		Name:        req.Name,
		Lat:         req.Lat,
		Lng:         req.Lng,
		Points:      req.Points,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO locations (name, lat, lng, points, description, image_url)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id, qr_version
	`, req.Name, req.Lat, req.Lng, req.Points, req.Description, req.ImageURL).Scan(&l.ID, &l.QRVersion)
	if err != nil {
		return Location{}, err
	}
	return l, nil
}

func (s *SQLiteStore) UpdateLocation(ctx context.Context, id int, req LocationRequest) (Location, error) {
	l := Location{
		ID:          id,
		Name:        req.Name,
		Lat:         req.Lat,
		Lng:         req.Lng,
		Points:      req.Points,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	}
	err := s.db.QueryRowContext(ctx, `
		UPDATE locations SET name = ?, lat = ?, lng = ?, points = ?, description = ?, image_url = ?
		WHERE id = ?
		RETURNING qr_version
	`, req.Name, req.Lat, req.Lng, req.Points, req.Description, req.ImageURL, id).Scan(&l.QRVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return Location{}, ErrNotFound
	}
	if err != nil {
		return Location{}, err
	}
	return l, nil
}

// DeleteLocation refuses to delete a location with sub-events or check-in
// history; those rows reference it without cascade.
func (s *SQLiteStore) DeleteLocation(ctx context.Context, id int) error {
	var refs int
	err := s.db.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM sub_events WHERE location_id = ?)
		     + (SELECT COUNT(*) FROM checkins WHERE location_id = ?)
	`, id, id).Scan(&refs)
	if err != nil {
		return err
	}
	if refs > 0 {
		return ErrInUse
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM locations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) BumpLocationQRVersion(ctx context.Context, id int) (int, error) {
	var version int
	err := s.db.QueryRowContext(ctx, `
		UPDATE locations SET qr_version = qr_version + 1
		WHERE id = ?
		RETURNING qr_version
	`, id).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return version, err
}

func (s *SQLiteStore) ListSubEvents(ctx context.Context, locationID int) ([]SubEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, location_id, name, schedule, points, qr_version
		FROM sub_events WHERE location_id = ? ORDER BY id
	`, locationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subEvents []SubEvent
	for rows.Next() {
		var se SubEvent
		if err := rows.Scan(&se.ID, &se.LocationID, &se.Name, &se.Schedule, &se.Points, &se.QRVersion); err != nil {
			return nil, err
		}
		subEvents = append(subEvents, se)
	}
	return subEvents, rows.Err()
}

func (s *SQLiteStore) GetSubEvent(ctx context.Context, id string) (SubEvent, error) {
	var se SubEvent
	err := s.db.QueryRowContext(ctx, `
		SELECT id, location_id, name, schedule, points, qr_version
		FROM sub_events WHERE id = ?
	`, id).Scan(&se.ID, &se.LocationID, &se.Name, &se.Schedule, &se.Points, &se.QRVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return se, ErrNotFound
	}
	return se, err
}

func (s *SQLiteStore) CreateSubEvent(ctx context.Context, req SubEventRequest) (SubEvent, error) {
	se := SubEvent{
		ID:         req.ID,
		LocationID: req.LocationID,
		Name:       req.Name,
		Schedule:   req.Schedule,
		Points:     req.Points,
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO sub_events (id, location_id, name, schedule, points)
		VALUES (?, ?, ?, ?, ?)
		RETURNING qr_version
	`, req.ID, req.LocationID, req.Name, req.Schedule, req.Points).Scan(&se.QRVersion)
	if isUniqueViolation(err) {
		return SubEvent{}, ErrSlugTaken
	}
	if err != nil {
		return SubEvent{}, err
	}
	return se, nil
}

func (s *SQLiteStore) UpdateSubEvent(ctx context.Context, id string, req SubEventRequest) (SubEvent, error) {
	se := SubEvent{
		ID:         id,
		LocationID: req.LocationID,
		Name:       req.Name,
		Schedule:   req.Schedule,
		Points:     req.Points,
	}
	err := s.db.QueryRowContext(ctx, `
		UPDATE sub_events SET location_id = ?, name = ?, schedule = ?, points = ?
		WHERE id = ?
		RETURNING qr_version
	`, req.LocationID, req.Name, req.Schedule, req.Points, id).Scan(&se.QRVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return SubEvent{}, ErrNotFound
	}
	if err != nil {
		return SubEvent{}, err
	}
	return se, nil
}

func (s *SQLiteStore) DeleteSubEvent(ctx context.Context, id string) error {
	var refs int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sub_event_checkins WHERE sub_event_id = ?
	`, id).Scan(&refs)
	if err != nil {
		return err
	}
	if refs > 0 {
		return ErrInUse
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM sub_events WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) BumpSubEventQRVersion(ctx context.Context, id string) (int, error) {
	var version int
	err := s.db.QueryRowContext(ctx, `
		UPDATE sub_events SET qr_version = qr_version + 1
		WHERE id = ?
		RETURNING qr_version
	`, id).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return version, err
}

func (s *SQLiteStore) HasCheckin(ctx context.Context, participantID string, locationID int) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `
		SELECT 1 FROM checkins WHERE participant_id = ? AND location_id = ?
	`, participantID, locationID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// CreateCheckin records the check-in and awards points as one transaction.
// "Checked-in implies points were added, exactly once": the INSERT OR IGNORE
// on the composite key decides, and the points increment rides in the same
// commit.
func (s *SQLiteStore) CreateCheckin(ctx context.Context, participantID string, locationID, points int, method string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO checkins (participant_id, location_id, method)
		VALUES (?, ?, ?)
	`, participantID, locationID, method)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	if points > 0 {
		if _, err := tx.ExecContext(ctx, `
			UPDATE participants SET points = points + ? WHERE id = ?
		`, points, participantID); err != nil {
			return false, err
		}
	}
	return true, tx.Commit()
}

func (s *SQLiteStore) ListCheckins(ctx context.Context, participantID string) ([]Checkin, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT location_id, method, created_at
		FROM checkins WHERE participant_id = ? ORDER BY created_at
	`, participantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var checkins []Checkin
	for rows.Next() {
		var c Checkin
		if err := rows.Scan(&c.LocationID, &c.Method, &c.CreatedAt); err != nil {
			return nil, err
		}
		checkins = append(checkins, c)
	}
	return checkins, rows.Err()
}

func (s *SQLiteStore) HasSubEventCheckin(ctx context.Context, participantID, subEventID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `
		SELECT 1 FROM sub_event_checkins WHERE participant_id = ? AND sub_event_id = ?
	`, participantID, subEventID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// CreateSubEventCheckin records a sub-event completion. The bonus is paid
// only for the participant's first completion at the sub-event's parent
// location; the prior-completion count and the insert share one transaction
// so two simultaneous scans cannot both collect the bonus.
func (s *SQLiteStore) CreateSubEventCheckin(ctx context.Context, participantID, subEventID string, locationID, bonusPoints int) (bool, int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, 0, err
	}
	defer tx.Rollback()

	var prior int
	if err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sub_event_checkins
		WHERE participant_id = ? AND location_id = ?
	`, participantID, locationID).Scan(&prior); err != nil {
		return false, 0, err
	}
	awarded := 0
	if prior == 0 {
		awarded = bonusPoints
	}

	result, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO sub_event_checkins (participant_id, sub_event_id, location_id, points_awarded)
		VALUES (?, ?, ?, ?)
	`, participantID, subEventID, locationID, awarded)
	if err != nil {
		return false, 0, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, 0, err
	}
	if n == 0 {
		return false, 0, nil
	}

	if awarded > 0 {
		if _, err := tx.ExecContext(ctx, `
			UPDATE participants SET points = points + ? WHERE id = ?
		`, awarded, participantID); err != nil {
			return false, 0, err
		}
	}
	return true, awarded, tx.Commit()
}

func (s *SQLiteStore) ListSubEventCheckins(ctx context.Context, participantID string) ([]SubEventCheckin, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sub_event_id, location_id, points_awarded, created_at
		FROM sub_event_checkins WHERE participant_id = ? ORDER BY created_at
	`, participantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var checkins []SubEventCheckin
	for rows.Next() {
		var c SubEventCheckin
		if err := rows.Scan(&c.SubEventID, &c.LocationID, &c.PointsAwarded, &c.CreatedAt); err != nil {
			return nil, err
		}
		checkins = append(checkins, c)
	}
	return checkins, rows.Err()
}

func (s *SQLiteStore) EligiblePrizes(ctx context.Context) ([]Prize, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, weight, stock FROM prizes
		WHERE weight > 0 AND stock > 0
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prizes []Prize
	for rows.Next() {
		var p Prize
		if err := rows.Scan(&p.ID, &p.Name, &p.Weight, &p.Stock); err != nil {
			return nil, err
		}
		prizes = append(prizes, p)
	}
	return prizes, rows.Err()
}

// CreateSpin commits the spin record and the stock decrement together. The
// spins table is keyed by participant, so the INSERT OR IGNORE is the
// at-most-one-spin gate even under concurrent double-submission. A zero-row
// stock decrement means the prize sold out since the pool was read; the whole
// transaction rolls back and errStockConflict tells the engine to redraw.
func (s *SQLiteStore) CreateSpin(ctx context.Context, participantID string, prize Prize, claimCode string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO spins (participant_id, prize_id, prize, claim_code)
		VALUES (?, ?, ?, ?)
	`, participantID, prize.ID, prize.Name, claimCode)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	result, err = tx.ExecContext(ctx, `
		UPDATE prizes SET stock = stock - 1 WHERE id = ? AND stock > 0
	`, prize.ID)
	if err != nil {
		return false, err
	}
	n, err = result.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, errStockConflict
	}
	return true, tx.Commit()
}

func (s *SQLiteStore) GetSpin(ctx context.Context, participantID string) (Spin, error) {
	var sp Spin
	var claimed int
	var claimedAt sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT participant_id, prize, claim_code, claimed, claimed_at, created_at
		FROM spins WHERE participant_id = ?
	`, participantID).Scan(&sp.ParticipantID, &sp.Prize, &sp.ClaimCode, &claimed, &claimedAt, &sp.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return sp, ErrNotFound
	}
	if err != nil {
		return sp, err
	}
	sp.Claimed = claimed == 1
	if claimedAt.Valid {
		sp.ClaimedAt = &claimedAt.String
	}
	return sp, nil
}

func (s *SQLiteStore) SpinByClaimCode(ctx context.Context, code string) (ClaimInfo, error) {
	var info ClaimInfo
	var claimed int
	var claimedAt sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT sp.participant_id, TRIM(p.first_name || ' ' || p.last_name), sp.prize, sp.claimed, sp.claimed_at
		FROM spins sp
		JOIN participants p ON p.id = sp.participant_id
		WHERE sp.claim_code = ?
	`, code).Scan(&info.ParticipantID, &info.ParticipantName, &info.Prize, &claimed, &claimedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return info, ErrNotFound
	}
	if err != nil {
		return info, err
	}
	info.Claimed = claimed == 1
	if claimedAt.Valid {
		info.ClaimedAt = &claimedAt.String
	}
	return info, nil
}

// MarkClaimed flips claimed false->true once. Marking an already-claimed spin
// is not an error and leaves claimed_at untouched; the caller is told which
// case it hit so staff don't hand out the same prize twice.
func (s *SQLiteStore) MarkClaimed(ctx context.Context, participantID string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE spins
		SET claimed = 1, claimed_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		WHERE participant_id = ? AND claimed = 0
	`, participantID)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 1 {
		return false, nil
	}

	var one int
	err = s.db.QueryRowContext(ctx, `
		SELECT 1 FROM spins WHERE participant_id = ?
	`, participantID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
