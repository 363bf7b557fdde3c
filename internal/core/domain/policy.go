package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// SelectionPolicy decides which raw records still need normalization.
type SelectionPolicy string

const (
	// SelectByAbsence picks raw records with no normalized row for their id.
	SelectByAbsence SelectionPolicy = "absence"
	// SelectByChecksum picks raw records whose checksum no normalized row carries.
	SelectByChecksum SelectionPolicy = "checksum"
	// SelectByHeuristic picks detail pages that look parseable and whose
	// identifier is not stored yet.
	SelectByHeuristic SelectionPolicy = "heuristic"
)

func ParseSelectionPolicy(s string) (SelectionPolicy, error) {
	p := SelectionPolicy(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case SelectByAbsence, SelectByChecksum, SelectByHeuristic:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSelectionPolicy, s)
}

// ConflictKeyStrategy decides what identifies a listing across re-scrapes.
type ConflictKeyStrategy string

const (
	ConflictByIdentifier ConflictKeyStrategy = "identifier"
	ConflictByRawID      ConflictKeyStrategy = "raw_id"
	ConflictByChecksum   ConflictKeyStrategy = "checksum"
)

func ParseConflictKeyStrategy(s string) (ConflictKeyStrategy, error) {
	k := ConflictKeyStrategy(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case ConflictByIdentifier, ConflictByRawID, ConflictByChecksum:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownConflictKey, s)
}

// Key builds the conflict key of rec. Prefixes keep keys of different
// strategies from colliding in the same column.
func (k ConflictKeyStrategy) Key(rec *NormalizedAuction) string {
	switch k {
	case ConflictByRawID:
		return "raw:" + strconv.FormatInt(rec.RawID, 10)
	case ConflictByChecksum:
		return "checksum:" + rec.SourceChecksum
	default:
		return "ident:" + rec.Identifier
	}
}

// MergePolicy decides what happens to stored values the new pass did not find.
type MergePolicy string

const (
	// MergeOverwrite replaces every column with the new pass, nulls included.
	MergeOverwrite MergePolicy = "overwrite"
	// MergeFillForward keeps a stored value when the new pass produced null.
	MergeFillForward MergePolicy = "fill_forward"
)

func ParseMergePolicy(s string) (MergePolicy, error) {
	m := MergePolicy(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case MergeOverwrite, MergeFillForward:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMergePolicy, s)
}
