package domain

// FieldCoverage counts how many candidate records ended up with each field filled.
type FieldCoverage struct {
	AuctionType      int `json:"auction_type"`
	IssuingAuthority int `json:"issuing_authority"`
	Province         int `json:"province"`
	Municipality     int `json:"municipality"`
	AuctionStatus    int `json:"auction_status"`
	StartDate        int `json:"start_date"`
	EndDate          int `json:"end_date"`
	StartingPrice    int `json:"starting_price"`
	DepositAmount    int `json:"deposit_amount"`
	AppraisalValue   int `json:"appraisal_value"`
}

// Coverage is the terminal summary of one run.
type Coverage struct {
	Total     int           `json:"total"`
	Inserted  int           `json:"inserted"`
	Updated   int           `json:"updated"`
	Unchanged int           `json:"unchanged"`
	Skipped   int           `json:"skipped"`
	Errors    int           `json:"errors"`
	Degraded  int           `json:"degraded"`
	Recovered int           `json:"recovered"`
	Fields    FieldCoverage `json:"fields"`
}

// Processed is the number of records that produced a storage write.
func (c *Coverage) Processed() int {
	return c.Inserted + c.Updated
}

// CountFields adds the filled fields of rec to the per-field counters.
func (c *Coverage) CountFields(rec *NormalizedAuction) {
	if rec.AuctionType != nil {
		c.Fields.AuctionType++
	}
	if rec.IssuingAuthority != nil {
		c.Fields.IssuingAuthority++
	}
	if rec.Province != nil {
		c.Fields.Province++
	}
	if rec.Municipality != nil {
		c.Fields.Municipality++
	}
	if rec.Status != nil {
		c.Fields.AuctionStatus++
	}
	if rec.StartDate != nil {
		c.Fields.StartDate++
	}
	if rec.EndDate != nil {
		c.Fields.EndDate++
	}
	if rec.StartingPrice != nil {
		c.Fields.StartingPrice++
	}
	if rec.DepositAmount != nil {
		c.Fields.DepositAmount++
	}
	if rec.AppraisalValue != nil {
		c.Fields.AppraisalValue++
	}
}

// Record adds one upsert outcome to the counters.
func (c *Coverage) Record(outcome UpsertOutcome) {
	switch outcome {
	case OutcomeInserted:
		c.Inserted++
	case OutcomeUpdated:
		c.Updated++
	case OutcomeUnchanged:
		c.Unchanged++
	}
}
