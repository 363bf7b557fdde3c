package postgres

import (
	"auction-normalizer-service/internal/contextkeys"
	"auction-normalizer-service/internal/core/domain"
	"auction-normalizer-service/internal/core/port"
	"context"
	"fmt"
	"time"
)

const (
	DefaultDetailSourceTag     = "BOE_DETAIL"
	DefaultIdentifierPattern   = `SUB-[A-Z0-9-]+`
	heuristicDateLabelPattern  = `Fecha\s+de\s+(inicio|conclusi[óo]n)`
	heuristicPriceLabelPattern = `(Importe\s+Subasta|Importe\s+Base|Valor\s+subasta)`
)

type BacklogConfig struct {
	// DetailSourceTag is the raw source tag the heuristic policy accepts.
	DetailSourceTag string
	// IdentifierPattern is a POSIX regex for the identifier token.
	IdentifierPattern string
	// SchemaVersion is the running schema version. Records skipped under this
	// version or a newer one, with an unchanged checksum, are not offered.
	SchemaVersion int
}

// RawBacklogAdapter selects raw records that still need normalization.
type RawBacklogAdapter struct {
	db  DBTX
	cfg BacklogConfig
}

func NewRawBacklogAdapter(db DBTX, cfg BacklogConfig) *RawBacklogAdapter {
	if cfg.DetailSourceTag == "" {
		cfg.DetailSourceTag = DefaultDetailSourceTag
	}
	if cfg.IdentifierPattern == "" {
		cfg.IdentifierPattern = DefaultIdentifierPattern
	}
	return &RawBacklogAdapter{db: db, cfg: cfg}
}

const rawColumns = `r.id, r.fuente, r.fetched_at, r.url, r.payload_raw, r.checksum`

// notSkipped hides raw records recorded in normalization_skips. The schema
// version placeholder differs per query.
func notSkipped(versionParam string) string {
	return `NOT EXISTS (
		SELECT 1 FROM normalization_skips s
		WHERE s.raw_id = r.id
		  AND s.checksum IS NOT DISTINCT FROM r.checksum
		  AND s.schema_version >= ` + versionParam + `
	)`
}

var selectByAbsenceSQL = `
	SELECT ` + rawColumns + `
	FROM boe_subastas_raw r
	WHERE NOT EXISTS (
		SELECT 1 FROM boe_subastas_norm n WHERE n.raw_id = r.id
	)
	  AND ` + notSkipped("$2") + `
	ORDER BY r.id ASC
	LIMIT $1`

var selectByChecksumSQL = `
	SELECT ` + rawColumns + `
	FROM boe_subastas_raw r
	WHERE r.checksum IS NOT NULL
	  AND NOT EXISTS (
		SELECT 1 FROM boe_subastas_norm n WHERE n.source_checksum = r.checksum
	)
	  AND ` + notSkipped("$2") + `
	ORDER BY r.id ASC
	LIMIT $1`

var selectByHeuristicSQL = `
	WITH pending AS (
		SELECT ` + rawColumns + `,
		       (regexp_match(r.payload_raw, '(' || $2 || ')'))[1] AS ident_guess
		FROM boe_subastas_raw r
		WHERE r.fuente = $3
	)
	SELECT r.id, r.fuente, r.fetched_at, r.url, r.payload_raw, r.checksum
	FROM pending r
	WHERE r.ident_guess IS NOT NULL
	  AND r.payload_raw ~* '` + heuristicDateLabelPattern + `'
	  AND r.payload_raw ~* '` + heuristicPriceLabelPattern + `'
	  AND NOT EXISTS (
		SELECT 1 FROM boe_subastas_norm n WHERE n.identifier = r.ident_guess
	)
	  AND ` + notSkipped("$4") + `
	ORDER BY r.id ASC
	LIMIT $1`

// SelectPending returns up to limit raw records in ascending id order.
func (a *RawBacklogAdapter) SelectPending(ctx context.Context, policy domain.SelectionPolicy, limit int) ([]domain.RawRecord, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "RawBacklogAdapter",
		"method":    "SelectPending",
		"policy":    string(policy),
		"limit":     limit,
	})

	var (
		query string
		args  []any
	)
	switch policy {
	case domain.SelectByAbsence:
		query, args = selectByAbsenceSQL, []any{limit, a.cfg.SchemaVersion}
	case domain.SelectByChecksum:
		query, args = selectByChecksumSQL, []any{limit, a.cfg.SchemaVersion}
	case domain.SelectByHeuristic:
		query, args = selectByHeuristicSQL, []any{limit, a.cfg.IdentifierPattern, a.cfg.DetailSourceTag, a.cfg.SchemaVersion}
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownSelectionPolicy, policy)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("backlog limit must be positive, got %d", limit)
	}

	rows, err := a.db.Query(ctx, query, args...)
	if err != nil {
		repoLogger.Error("Failed to query raw backlog", err, nil)
		return nil, fmt.Errorf("failed to query raw backlog: %w", err)
	}
	defer rows.Close()

	records := make([]domain.RawRecord, 0, limit)
	for rows.Next() {
		var (
			rec       domain.RawRecord
			source    *string
			fetchedAt *time.Time
			payload   *string
			checksum  *string
		)
		if err := rows.Scan(&rec.ID, &source, &fetchedAt, &rec.URL, &payload, &checksum); err != nil {
			repoLogger.Error("Failed to scan raw record", err, nil)
			return nil, fmt.Errorf("failed to scan raw record: %w", err)
		}
		rec.SourceTag = deref(source)
		rec.FetchedAt = fetchedAt
		rec.Payload = deref(payload)
		rec.Checksum = deref(checksum)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		repoLogger.Error("Error iterating raw backlog rows", err, nil)
		return nil, fmt.Errorf("failed to read raw backlog: %w", err)
	}

	repoLogger.Debug("Raw backlog selected", port.Fields{"count": len(records)})
	return records, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
