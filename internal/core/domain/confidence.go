package domain

import (
	"math"
	"strconv"
)

// MinValidSignals is the signal count at which a record is considered trustworthy.
const MinValidSignals = 2

type Confidence struct {
	Signals int
	Valid   bool
}

// Score counts the independent confidence signals of a record:
// a status, at least one date, and a finite starting price.
func Score(rec *NormalizedAuction) Confidence {
	if rec == nil {
		return Confidence{}
	}

	signals := 0
	if rec.Status != nil {
		signals++
	}
	if rec.StartDate != nil || rec.EndDate != nil {
		signals++
	}
	if rec.StartingPrice != nil {
		if v, err := strconv.ParseFloat(*rec.StartingPrice, 64); err == nil && !math.IsInf(v, 0) && !math.IsNaN(v) {
			signals++
		}
	}

	return Confidence{Signals: signals, Valid: signals >= MinValidSignals}
}

type Transition string

const (
	TransitionStable    Transition = "stable"
	TransitionDegraded  Transition = "degraded"
	TransitionRecovered Transition = "recovered"
)

// ClassifyTransition compares the persisted record (nil when none) with the new pass.
func ClassifyTransition(prev, next *NormalizedAuction) Transition {
	nextScore := Score(next)
	if !nextScore.Valid {
		return TransitionDegraded
	}
	if prev != nil && !Score(prev).Valid {
		return TransitionRecovered
	}
	return TransitionStable
}
