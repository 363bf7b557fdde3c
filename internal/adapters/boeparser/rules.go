package boeparser

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRules []byte

// Field names accepted in a rules file.
const (
	FieldIdentifier       = "identifier"
	FieldAuctionType      = "auction_type"
	FieldStatus           = "status"
	FieldStartDate        = "start_date"
	FieldEndDate          = "end_date"
	FieldStartingPrice    = "starting_price"
	FieldDepositAmount    = "deposit_amount"
	FieldAppraisalValue   = "appraisal_value"
	FieldIssuingAuthority = "issuing_authority"
	FieldProvince         = "province"
	FieldMunicipality     = "municipality"
)

const (
	sourceText = "text"
	sourceRaw  = "raw"
)

// Rule is one step of a field cascade. Exactly one of Table or Regex is set.
type Rule struct {
	Table         string `yaml:"table"`
	Regex         string `yaml:"regex"`
	Source        string `yaml:"source"`
	CaseSensitive bool   `yaml:"case_sensitive"`

	re *regexp.Regexp
}

func (r Rule) String() string {
	if r.Table != "" {
		return "table:" + r.Table
	}
	return "regex:" + r.Regex
}

// RuleSet is a compiled rules file.
type RuleSet struct {
	Version           int               `yaml:"version"`
	IdentifierPattern string            `yaml:"identifier_pattern"`
	Fields            map[string][]Rule `yaml:"fields"`
	PriceTextPatterns []string          `yaml:"price_text_patterns"`

	identifier *regexp.Regexp
	priceText  []*regexp.Regexp
}

// DefaultRules returns the rules shipped with the binary.
func DefaultRules() (*RuleSet, error) {
	return ParseRules(defaultRules)
}

// LoadRules reads a rules file, or the built-in rules when path is empty.
func LoadRules(path string) (*RuleSet, error) {
	if path == "" {
		return DefaultRules()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read extraction rules %s: %w", path, err)
	}
	rs, err := ParseRules(data)
	if err != nil {
		return nil, fmt.Errorf("extraction rules %s: %w", path, err)
	}
	return rs, nil
}

// ParseRules decodes and compiles a rules document.
func ParseRules(data []byte) (*RuleSet, error) {
	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("failed to decode extraction rules: %w", err)
	}
	if err := rs.compile(); err != nil {
		return nil, err
	}
	return &rs, nil
}

func (rs *RuleSet) compile() error {
	if rs.IdentifierPattern == "" {
		return fmt.Errorf("identifier_pattern is required")
	}
	ident, err := regexp.Compile(`^(?:` + rs.IdentifierPattern + `)$`)
	if err != nil {
		return fmt.Errorf("invalid identifier_pattern: %w", err)
	}
	rs.identifier = ident

	for name, rules := range rs.Fields {
		if _, ok := fieldByName[name]; !ok {
			return fmt.Errorf("unknown field %q", name)
		}
		seenRegex := false
		for i := range rules {
			r := &rules[i]
			switch {
			case r.Table != "" && r.Regex != "":
				return fmt.Errorf("field %s rule %d: table and regex are mutually exclusive", name, i)
			case r.Table != "":
				if seenRegex {
					return fmt.Errorf("field %s rule %d: table rules must precede regex rules", name, i)
				}
			case r.Regex != "":
				seenRegex = true
				if r.Source == "" {
					r.Source = sourceText
				}
				if r.Source != sourceText && r.Source != sourceRaw {
					return fmt.Errorf("field %s rule %d: unknown source %q", name, i, r.Source)
				}
				pattern := r.Regex
				if !r.CaseSensitive {
					pattern = "(?i)" + pattern
				}
				re, err := regexp.Compile(pattern)
				if err != nil {
					return fmt.Errorf("field %s rule %d: %w", name, i, err)
				}
				if re.NumSubexp() < 1 {
					return fmt.Errorf("field %s rule %d: regex needs a capture group", name, i)
				}
				r.re = re
			default:
				return fmt.Errorf("field %s rule %d: table or regex is required", name, i)
			}
		}
	}

	rs.priceText = make([]*regexp.Regexp, 0, len(rs.PriceTextPatterns))
	for i, p := range rs.PriceTextPatterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return fmt.Errorf("price_text_patterns[%d]: %w", i, err)
		}
		if re.NumSubexp() < 1 {
			return fmt.Errorf("price_text_patterns[%d]: regex needs a capture group", i)
		}
		rs.priceText = append(rs.priceText, re)
	}
	return nil
}
