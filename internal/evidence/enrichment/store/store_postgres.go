package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"taxappeal/internal/evidence/models"
	"taxappeal/pkg/domain"
	"taxappeal/pkg/geo"
	"taxappeal/pkg/platform/sentinel"
	"taxappeal/pkg/platform/tx"
)

const selectEntry = `
SELECT pin, living_area, year_built, bedrooms, bathrooms, lot_size,
       address_line, city, state, zip, lat, lon,
       last_sale_price, last_sale_date, raw_payload, fetched_at
FROM enrichment_cache
WHERE pin = $1`

const upsertEntry = `
INSERT INTO enrichment_cache (
    pin, living_area, year_built, bedrooms, bathrooms, lot_size,
    address_line, city, state, zip, lat, lon,
    last_sale_price, last_sale_date, raw_payload, fetched_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
ON CONFLICT (pin) DO UPDATE SET
    living_area = EXCLUDED.living_area,
    year_built = EXCLUDED.year_built,
    bedrooms = EXCLUDED.bedrooms,
    bathrooms = EXCLUDED.bathrooms,
    lot_size = EXCLUDED.lot_size,
    address_line = EXCLUDED.address_line,
    city = EXCLUDED.city,
    state = EXCLUDED.state,
    zip = EXCLUDED.zip,
    lat = EXCLUDED.lat,
    lon = EXCLUDED.lon,
    last_sale_price = EXCLUDED.last_sale_price,
    last_sale_date = EXCLUDED.last_sale_date,
    raw_payload = EXCLUDED.raw_payload,
    fetched_at = EXCLUDED.fetched_at`

// PostgresStore persists entries in the enrichment_cache table. It joins a
// transaction carried by the context when there is one.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a PostgreSQL-backed store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Get loads the entry for pin.
func (s *PostgresStore) Get(ctx context.Context, pin domain.ParcelID) (*models.EnrichmentEntry, error) {
	var (
		storedPIN                  string
		livingArea, bathrooms, lot sql.NullFloat64
		yearBuilt, bedrooms        sql.NullInt64
		line, city, state, zip     sql.NullString
		lat, lon, lastSalePrice    sql.NullFloat64
		lastSaleDate               sql.NullTime
		raw                        []byte
		fetchedAt                  time.Time
	)
	err := tx.Conn(ctx, s.db).QueryRowContext(ctx, selectEntry, pin.String()).Scan(
		&storedPIN, &livingArea, &yearBuilt, &bedrooms, &bathrooms, &lot,
		&line, &city, &state, &zip, &lat, &lon,
		&lastSalePrice, &lastSaleDate, &raw, &fetchedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find enrichment entry: %w", err)
	}

	entry := &models.EnrichmentEntry{
		PIN:           pin,
		LivingArea:    floatPtr(livingArea),
		YearBuilt:     intPtr(yearBuilt),
		Bedrooms:      intPtr(bedrooms),
		Bathrooms:     floatPtr(bathrooms),
		LotSize:       floatPtr(lot),
		Address:       models.Address{Line: line.String, City: city.String, State: state.String, Zip: zip.String},
		LastSalePrice: floatPtr(lastSalePrice),
		FetchedAt:     fetchedAt,
	}
	if lat.Valid && lon.Valid {
		entry.Coordinates = &geo.Coordinates{Lat: lat.Float64, Lon: lon.Float64}
	}
	if lastSaleDate.Valid {
		t := lastSaleDate.Time
		entry.LastSaleDate = &t
	}
	if len(raw) > 0 {
		entry.RawPayload = json.RawMessage(raw)
	}
	return entry, nil
}

// Upsert inserts or replaces the entry for its PIN.
func (s *PostgresStore) Upsert(ctx context.Context, entry *models.EnrichmentEntry) error {
	if entry == nil {
		return fmt.Errorf("enrichment entry is required")
	}
	var lat, lon sql.NullFloat64
	if entry.Coordinates != nil {
		lat = sql.NullFloat64{Float64: entry.Coordinates.Lat, Valid: true}
		lon = sql.NullFloat64{Float64: entry.Coordinates.Lon, Valid: true}
	}
	var lastSaleDate sql.NullTime
	if entry.LastSaleDate != nil {
		lastSaleDate = sql.NullTime{Time: *entry.LastSaleDate, Valid: true}
	}
	var raw any
	if entry.HasFullPayload() {
		raw = string(entry.RawPayload)
	}

	_, err := tx.Conn(ctx, s.db).ExecContext(ctx, upsertEntry,
		entry.PIN.String(),
		nullFloat(entry.LivingArea),
		nullInt(entry.YearBuilt),
		nullInt(entry.Bedrooms),
		nullFloat(entry.Bathrooms),
		nullFloat(entry.LotSize),
		nullString(entry.Address.Line),
		nullString(entry.Address.City),
		nullString(entry.Address.State),
		nullString(entry.Address.Zip),
		lat, lon,
		nullFloat(entry.LastSalePrice),
		lastSaleDate,
		raw,
		entry.FetchedAt,
	)
	if err != nil {
		return fmt.Errorf("save enrichment entry: %w", err)
	}
	return nil
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
