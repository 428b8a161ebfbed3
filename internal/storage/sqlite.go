package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/user/offer-scraper/internal/domain"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS portals (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS campaigns (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	portal_id INTEGER NOT NULL REFERENCES portals(id),
	api TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS offers (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	campaign_id INTEGER NOT NULL REFERENCES campaigns(id),
	offer_id TEXT NOT NULL,
	seller_id TEXT NOT NULL,
	seller_name TEXT,
	title TEXT,
	price INTEGER NOT NULL DEFAULT 0,
	currency TEXT,
	brand TEXT,
	type TEXT,
	model TEXT,
	body_style TEXT,
	production_year INTEGER,
	mileage INTEGER NOT NULL DEFAULT 0,
	engine_capacity INTEGER,
	power INTEGER,
	fuel_type TEXT,
	color TEXT,
	drivetrain TEXT,
	seat_count INTEGER,
	country TEXT,
	damaged TEXT,
	raw_location TEXT,
	city TEXT,
	region TEXT,
	anomalies TEXT NOT NULL DEFAULT '',
	UNIQUE (campaign_id, offer_id)
);
`

// SQLiteStore is an embedded offer sink, used for local runs and tests.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and applies the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// A single connection keeps ":memory:" databases alive and writes serialized.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() {
	s.db.Close()
}

func (s *SQLiteStore) CreateCampaign(ctx context.Context, portal domain.Portal, api string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO portals (name) VALUES (?)`, portal.String()); err != nil {
		return 0, fmt.Errorf("upserting portal %s: %w", portal, err)
	}
	var portalID int64
	if err := tx.QueryRowContext(ctx, `SELECT id FROM portals WHERE name = ?`, portal.String()).Scan(&portalID); err != nil {
		return 0, err
	}

	res, err := tx.ExecContext(ctx, `INSERT INTO campaigns (portal_id, api) VALUES (?, ?)`, portalID, api)
	if err != nil {
		return 0, fmt.Errorf("creating campaign: %w", err)
	}
	campaignID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	return campaignID, tx.Commit()
}

func (s *SQLiteStore) SaveOffer(ctx context.Context, campaignID int64, offer *domain.Offer) error {
	if err := validateOffer(offer); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := insertOfferSQL(func(int) string { return "?" })
	if _, err := tx.ExecContext(ctx, query, offerArgs(campaignID, offer)...); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateOffer, offer.OfferID)
		}
		return fmt.Errorf("inserting offer %s: %w", offer.OfferID, err)
	}

	return tx.Commit()
}

func (s *SQLiteStore) Stats(ctx context.Context) (*domain.Stats, error) {
	var st domain.Stats
	var minYear, maxYear, minPrice, maxPrice, minMileage, maxMileage sql.NullInt64
	err := s.db.QueryRowContext(ctx, statsSQL).Scan(
		&st.Campaigns, &st.Offers, &st.Portals,
		&minYear, &maxYear,
		&minPrice, &maxPrice,
		&minMileage, &maxMileage,
	)
	if err != nil {
		return nil, err
	}
	st.MinYear, st.MaxYear = nullable(minYear), nullable(maxYear)
	st.MinPrice, st.MaxPrice = nullable(minPrice), nullable(maxPrice)
	st.MinMileage, st.MaxMileage = nullable(minMileage), nullable(maxMileage)
	return &st, nil
}

// Offers returns the offers stored for a campaign, in insertion order.
func (s *SQLiteStore) Offers(ctx context.Context, campaignID int64) ([]domain.Offer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT offer_id, seller_id, price, mileage, anomalies FROM offers WHERE campaign_id = ? ORDER BY id`,
		campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offers []domain.Offer
	for rows.Next() {
		var o domain.Offer
		if err := rows.Scan(&o.OfferID, &o.SellerID, &o.Price, &o.Mileage, &o.Anomalies); err != nil {
			return nil, err
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}

func nullable(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	return &n.Int64
}
