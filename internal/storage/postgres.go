package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/offer-scraper/internal/domain"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS portals (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS campaigns (
	id BIGSERIAL PRIMARY KEY,
	portal_id BIGINT NOT NULL REFERENCES portals(id),
	api TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS offers (
	id BIGSERIAL PRIMARY KEY,
	campaign_id BIGINT NOT NULL REFERENCES campaigns(id),
	offer_id TEXT NOT NULL,
	seller_id TEXT NOT NULL,
	seller_name TEXT,
	title TEXT,
	price NUMERIC(14,2) NOT NULL DEFAULT 0,
	currency TEXT,
	brand TEXT,
	type TEXT,
	model TEXT,
	body_style TEXT,
	production_year INTEGER,
	mileage BIGINT NOT NULL DEFAULT 0,
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

CREATE INDEX IF NOT EXISTS idx_offers_brand ON offers(brand);
CREATE INDEX IF NOT EXISTS idx_offers_production_year ON offers(production_year);
`

const statsSQL = `
SELECT
	(SELECT COUNT(*) FROM campaigns),
	(SELECT COUNT(*) FROM offers),
	(SELECT COUNT(*) FROM portals),
	MIN(production_year), MAX(production_year),
	CAST(MIN(price) AS BIGINT), CAST(MAX(price) AS BIGINT),
	MIN(mileage), MAX(mileage)
FROM offers`

// PostgresStore is the offer sink backed by PostgreSQL.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	db, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PostgresStore) Close() {
	s.db.Close()
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// CreateCampaign finds or creates the portal row and opens a new campaign for it.
func (s *PostgresStore) CreateCampaign(ctx context.Context, portal domain.Portal, api string) (int64, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var portalID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO portals (name) VALUES ($1)
		 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id`,
		portal.String(),
	).Scan(&portalID)
	if err != nil {
		return 0, fmt.Errorf("upserting portal %s: %w", portal, err)
	}

	var campaignID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO campaigns (portal_id, api) VALUES ($1, $2) RETURNING id`,
		portalID, api,
	).Scan(&campaignID)
	if err != nil {
		return 0, fmt.Errorf("creating campaign: %w", err)
	}

	return campaignID, tx.Commit(ctx)
}

// SaveOffer writes one offer within its own transaction.
func (s *PostgresStore) SaveOffer(ctx context.Context, campaignID int64, offer *domain.Offer) error {
	if err := validateOffer(offer); err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := insertOfferSQL(func(i int) string { return fmt.Sprintf("$%d", i) })
	if _, err := tx.Exec(ctx, query, offerArgs(campaignID, offer)...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateOffer, offer.OfferID)
		}
		return fmt.Errorf("inserting offer %s: %w", offer.OfferID, err)
	}

	return tx.Commit(ctx)
}

func (s *PostgresStore) Stats(ctx context.Context) (*domain.Stats, error) {
	var st domain.Stats
	err := s.db.QueryRow(ctx, statsSQL).Scan(
		&st.Campaigns, &st.Offers, &st.Portals,
		&st.MinYear, &st.MaxYear,
		&st.MinPrice, &st.MaxPrice,
		&st.MinMileage, &st.MaxMileage,
	)
	if err == pgx.ErrNoRows {
		return &st, nil
	}
	return &st, err
}
