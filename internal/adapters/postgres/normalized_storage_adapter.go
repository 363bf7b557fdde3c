package postgres

import (
	"auction-normalizer-service/internal/contextkeys"
	"auction-normalizer-service/internal/core/domain"
	"auction-normalizer-service/internal/core/port"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

type StorageConfig struct {
	MergePolicy domain.MergePolicy
}

// normColumn is one mutable column of boe_subastas_norm.
type normColumn struct {
	name string
	// cast is applied to the bind parameter, e.g. "::text::numeric".
	cast string
	// nullable columns take part in fill-forward merging.
	nullable bool
}

// normColumns is the write order of the mutable columns. Every one of them
// is part of the change-detection guard.
var normColumns = []normColumn{
	{name: "raw_id"},
	{name: "source_checksum"},
	{name: "identifier"},
	{name: "url", nullable: true},
	{name: "auction_type", nullable: true},
	{name: "auction_status_raw", nullable: true},
	{name: "auction_status", nullable: true},
	{name: "start_date", nullable: true},
	{name: "end_date", nullable: true},
	{name: "starting_price", cast: "::text::numeric", nullable: true},
	{name: "deposit_amount", cast: "::text::numeric", nullable: true},
	{name: "appraisal_value", cast: "::text::numeric", nullable: true},
	{name: "issuing_authority", nullable: true},
	{name: "province", nullable: true},
	{name: "municipality", nullable: true},
	{name: "schema_version"},
}

// NormalizedStorageAdapter writes normalized auctions with change detection.
type NormalizedStorageAdapter struct {
	db        DBTX
	policy    domain.MergePolicy
	upsertSQL string
}

func NewNormalizedStorageAdapter(db DBTX, cfg StorageConfig) *NormalizedStorageAdapter {
	policy := cfg.MergePolicy
	if policy == "" {
		policy = domain.MergeOverwrite
	}
	return &NormalizedStorageAdapter{
		db:        db,
		policy:    policy,
		upsertSQL: buildUpsertSQL(policy),
	}
}

// buildUpsertSQL renders the insert-or-update statement for a merge policy.
// The update branch only runs when some column would actually change, and
// normalized_at only moves in that branch.
func buildUpsertSQL(policy domain.MergePolicy) string {
	names := make([]string, 0, len(normColumns)+1)
	params := make([]string, 0, len(normColumns)+1)
	sets := make([]string, 0, len(normColumns)+1)
	guards := make([]string, 0, len(normColumns))

	names = append(names, "conflict_key")
	params = append(params, "$1")

	for i, c := range normColumns {
		names = append(names, c.name)
		params = append(params, fmt.Sprintf("$%d%s", i+2, c.cast))

		merged := "EXCLUDED." + c.name
		if policy == domain.MergeFillForward && c.nullable {
			merged = fmt.Sprintf("COALESCE(EXCLUDED.%s, t.%s)", c.name, c.name)
		}
		sets = append(sets, fmt.Sprintf("%s = %s", c.name, merged))
		guards = append(guards, fmt.Sprintf("t.%s IS DISTINCT FROM %s", c.name, merged))
	}
	sets = append(sets, "normalized_at = now()")

	return fmt.Sprintf(`
		INSERT INTO boe_subastas_norm AS t (%s, normalized_at)
		VALUES (%s, now())
		ON CONFLICT (conflict_key) DO UPDATE SET
			%s
		WHERE
			%s
		RETURNING (xmax = 0) AS inserted`,
		strings.Join(names, ", "),
		strings.Join(params, ", "),
		strings.Join(sets, ",\n\t\t\t"),
		strings.Join(guards, " OR\n\t\t\t"),
	)
}

func upsertArgs(rec *domain.NormalizedAuction) []any {
	var status *string
	if rec.Status != nil {
		s := string(*rec.Status)
		status = &s
	}
	return []any{
		rec.ConflictKey,
		rec.RawID,
		rec.SourceChecksum,
		rec.Identifier,
		rec.URL,
		rec.AuctionType,
		rec.StatusRaw,
		status,
		rec.StartDate,
		rec.EndDate,
		rec.StartingPrice,
		rec.DepositAmount,
		rec.AppraisalValue,
		rec.IssuingAuthority,
		rec.Province,
		rec.Municipality,
		rec.SchemaVersion,
	}
}

// Upsert writes rec and reports whether the row was inserted, updated or left alone.
func (a *NormalizedStorageAdapter) Upsert(ctx context.Context, rec *domain.NormalizedAuction) (domain.UpsertOutcome, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component":    "NormalizedStorageAdapter",
		"method":       "Upsert",
		"conflict_key": rec.ConflictKey,
		"merge_policy": string(a.policy),
	})

	if rec.ConflictKey == "" {
		return "", fmt.Errorf("normalized record for raw %d has no conflict key", rec.RawID)
	}

	var inserted bool
	err := a.db.QueryRow(ctx, a.upsertSQL, upsertArgs(rec)...).Scan(&inserted)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		repoLogger.Debug("Record unchanged", nil)
		return domain.OutcomeUnchanged, nil
	case err != nil:
		repoLogger.Error("Failed to upsert normalized record", err, nil)
		return "", fmt.Errorf("failed to upsert normalized record %s: %w", rec.ConflictKey, err)
	case inserted:
		repoLogger.Debug("Record inserted", nil)
		return domain.OutcomeInserted, nil
	default:
		repoLogger.Debug("Record updated", nil)
		return domain.OutcomeUpdated, nil
	}
}

const findByConflictKeySQL = `
	SELECT conflict_key, raw_id, source_checksum, identifier, url, auction_type,
	       auction_status_raw, auction_status, start_date, end_date,
	       starting_price::text, deposit_amount::text, appraisal_value::text,
	       issuing_authority, province, municipality, schema_version, normalized_at
	FROM boe_subastas_norm
	WHERE conflict_key = $1`

// FindByConflictKey returns the stored record, or nil when there is none.
func (a *NormalizedStorageAdapter) FindByConflictKey(ctx context.Context, conflictKey string) (*domain.NormalizedAuction, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component":    "NormalizedStorageAdapter",
		"method":       "FindByConflictKey",
		"conflict_key": conflictKey,
	})

	var (
		rec    domain.NormalizedAuction
		status *string
	)
	err := a.db.QueryRow(ctx, findByConflictKeySQL, conflictKey).Scan(
		&rec.ConflictKey, &rec.RawID, &rec.SourceChecksum, &rec.Identifier, &rec.URL, &rec.AuctionType,
		&rec.StatusRaw, &status, &rec.StartDate, &rec.EndDate,
		&rec.StartingPrice, &rec.DepositAmount, &rec.AppraisalValue,
		&rec.IssuingAuthority, &rec.Province, &rec.Municipality, &rec.SchemaVersion, &rec.NormalizedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		repoLogger.Error("Failed to load normalized record", err, nil)
		return nil, fmt.Errorf("failed to load normalized record %s: %w", conflictKey, err)
	}

	if status != nil {
		s := domain.AuctionStatus(*status)
		rec.Status = &s
	}
	return &rec, nil
}
