package server

import (
	"context"
	"database/sql"
	"errors"
)

// AdminStore covers admin authentication. Sessions carry a fixed TTL; an
// expired session is indistinguishable from a missing one.
type AdminStore interface {
	AdminCredentials(ctx context.Context, username string) (adminID, passwordHash string, err error)
	CreateAdminSession(ctx context.Context, adminID string) (token string, err error)
	AdminFromSession(ctx context.Context, token string) (adminSession, error)
	DeleteAdminSession(ctx context.Context, token string) error
}

const adminSessionTTL = "+12 hours"

func (s *SQLiteStore) AdminCredentials(ctx context.Context, username string) (string, string, error) {
	var adminID, passwordHash string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, password_hash FROM admins WHERE username = ?
	`, username).Scan(&adminID, &passwordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", ErrNotFound
	}
	return adminID, passwordHash, err
}

// CreateAdminSession also garbage-collects expired sessions; login is the
// natural sweep point since the table only grows through it.
func (s *SQLiteStore) CreateAdminSession(ctx context.Context, adminID string) (string, error) {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM admin_sessions
		WHERE expires_at <= strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
	`)
	if err != nil {
		return "", err
	}

	token := newToken()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO admin_sessions (token, admin_id, expires_at)
		VALUES (?, ?, strftime('%Y-%m-%dT%H:%M:%fZ', 'now', ?))
	`, token, adminID, adminSessionTTL)
	return token, err
}

func (s *SQLiteStore) AdminFromSession(ctx context.Context, token string) (adminSession, error) {
	var sess adminSession
	err := s.db.QueryRowContext(ctx, `
		SELECT a.id, a.username
		FROM admin_sessions s
		JOIN admins a ON a.id = s.admin_id
		WHERE s.token = ? AND s.expires_at > strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
	`, token).Scan(&sess.AdminID, &sess.Username)
	if errors.Is(err, sql.ErrNoRows) {
		return adminSession{}, errNoAdminSession
	}
	return sess, err
}

func (s *SQLiteStore) DeleteAdminSession(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM admin_sessions WHERE token = ?`, token)
	return err
}

func (s *SQLiteStore) ListPrizes(ctx context.Context) ([]Prize, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, weight, stock FROM prizes ORDER BY id
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

func (s *SQLiteStore) CreatePrize(ctx context.Context, req PrizeRequest) (Prize, error) {
	p := Prize{Name: req.Name, Weight: req.Weight, Stock: req.Stock}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO prizes (name, weight, stock) VALUES (?, ?, ?)
		RETURNING id
	`, req.Name, req.Weight, req.Stock).Scan(&p.ID)
	if err != nil {
		return Prize{}, err
	}
	return p, nil
}

func (s *SQLiteStore) UpdatePrize(ctx context.Context, id int, req PrizeRequest) (Prize, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE prizes SET name = ?, weight = ?, stock = ? WHERE id = ?
	`, req.Name, req.Weight, req.Stock, id)
	if err != nil {
		return Prize{}, err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return Prize{}, ErrNotFound
	}
	return Prize{ID: id, Name: req.Name, Weight: req.Weight, Stock: req.Stock}, nil
}

func (s *SQLiteStore) DeletePrize(ctx context.Context, id int) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM prizes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

const defaultSpinThreshold = 300

func (s *SQLiteStore) SpinThreshold(ctx context.Context) (int, error) {
	var threshold int
	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM settings WHERE key = 'spin_threshold'
	`).Scan(&threshold)
	if errors.Is(err, sql.ErrNoRows) {
		return defaultSpinThreshold, nil
	}
	return threshold, err
}

func (s *SQLiteStore) SetSpinThreshold(ctx context.Context, threshold int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES ('spin_threshold', ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value
	`, threshold)
	return err
}

func (s *SQLiteStore) ListHeroCards(ctx context.Context) ([]HeroCard, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, subtitle, image_url, sort_order
		FROM hero_cards ORDER BY sort_order, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []HeroCard
	for rows.Next() {
		var c HeroCard
		if err := rows.Scan(&c.ID, &c.Title, &c.Subtitle, &c.ImageURL, &c.SortOrder); err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

func (s *SQLiteStore) CreateHeroCard(ctx context.Context, req HeroCardRequest) (HeroCard, error) {
	c := HeroCard{Title: req.Title, Subtitle: req.Subtitle, ImageURL: req.ImageURL, SortOrder: req.SortOrder}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO hero_cards (title, subtitle, image_url, sort_order)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`, req.Title, req.Subtitle, req.ImageURL, req.SortOrder).Scan(&c.ID)
	if err != nil {
		return HeroCard{}, err
	}
	return c, nil
}

func (s *SQLiteStore) UpdateHeroCard(ctx context.Context, id int, req HeroCardRequest) (HeroCard, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE hero_cards SET title = ?, subtitle = ?, image_url = ?, sort_order = ?
		WHERE id = ?
	`, req.Title, req.Subtitle, req.ImageURL, req.SortOrder, id)
	if err != nil {
		return HeroCard{}, err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return HeroCard{}, ErrNotFound
	}
	return HeroCard{ID: id, Title: req.Title, Subtitle: req.Subtitle, ImageURL: req.ImageURL, SortOrder: req.SortOrder}, nil
}

func (s *SQLiteStore) DeleteHeroCard(ctx context.Context, id int) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM hero_cards WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Stats(ctx context.Context) (StatsResponse, error) {
	var st StatsResponse
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM participants),
			(SELECT COUNT(*) FROM checkins),
			(SELECT COUNT(*) FROM spins),
			(SELECT COUNT(*) FROM spins WHERE claimed = 0)
	`).Scan(&st.Participants, &st.Checkins, &st.Spins, &st.UnclaimedPrizes)
	return st, err
}
