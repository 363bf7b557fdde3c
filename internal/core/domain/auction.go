package domain

import "time"

type AuctionStatus string

const (
	StatusActive    AuctionStatus = "ACTIVE"
	StatusUpcoming  AuctionStatus = "UPCOMING"
	StatusClosed    AuctionStatus = "CLOSED"
	StatusCancelled AuctionStatus = "CANCELLED"
	StatusUnknown   AuctionStatus = "UNKNOWN"
)

// Canonical auction type labels. Unrecognised labels are stored as found.
const (
	AuctionTypeJudicial       = "judicial"
	AuctionTypeNotarial       = "notarial"
	AuctionTypeTaxAgency      = "tax_agency"
	AuctionTypeSocialSecurity = "social_security"
	AuctionTypeAdministrative = "administrative"
)

// FieldCandidates holds the raw strings pulled out of a payload before
// normalization. A nil field means no rule matched.
type FieldCandidates struct {
	CanonicalURL     *string
	Identifier       *string
	AuctionType      *string
	Status           *string
	StartDate        *string
	EndDate          *string
	StartingPrice    *string
	DepositAmount    *string
	AppraisalValue   *string
	IssuingAuthority *string
	Province         *string
	Municipality     *string
}

// NormalizedAuction is the canonical form of one auction listing.
// Money values are decimal strings with a '.' separator.
type NormalizedAuction struct {
	ConflictKey    string
	RawID          int64
	SourceChecksum string
	Identifier     string

	URL              *string
	AuctionType      *string
	StatusRaw        *string
	Status           *AuctionStatus
	StartDate        *time.Time
	EndDate          *time.Time
	StartingPrice    *string
	DepositAmount    *string
	AppraisalValue   *string
	IssuingAuthority *string
	Province         *string
	Municipality     *string

	SchemaVersion int
	NormalizedAt  *time.Time
}

// HasCoreFields reports whether start, end and starting price are all present.
func (a *NormalizedAuction) HasCoreFields() bool {
	return a.StartDate != nil && a.EndDate != nil && a.StartingPrice != nil
}

// UpsertOutcome is the result of writing one normalized record.
type UpsertOutcome string

const (
	OutcomeInserted  UpsertOutcome = "inserted"
	OutcomeUpdated   UpsertOutcome = "updated"
	OutcomeUnchanged UpsertOutcome = "unchanged"
)
