// README: Itinerary aggregate, activity type enum and parsing/normalisation rules.
package itinerary

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"roamly/internal/ai"
)

type ActivityType string

const (
	ActivityFood        ActivityType = "Food"
	ActivitySightseeing ActivityType = "Sightseeing"
	ActivityNature      ActivityType = "Nature"
	ActivityRelaxation  ActivityType = "Relaxation"
	ActivityCulture     ActivityType = "Culture"
	ActivityOther       ActivityType = "Other"
)

// ActivityTypes lists the closed set of activity tags in schema order.
var ActivityTypes = []ActivityType{
	ActivityFood,
	ActivitySightseeing,
	ActivityNature,
	ActivityRelaxation,
	ActivityCulture,
	ActivityOther,
}

const (
	MinCostEstimate = 1
	MaxCostEstimate = 5
)

// Vocabulary is the enum and cost range the provider schema must advertise.
func Vocabulary() ai.SchemaVocabulary {
	return ai.SchemaVocabulary{
		ActivityTypes: lo.Map(ActivityTypes, func(t ActivityType, _ int) string { return string(t) }),
		MinCost:       MinCostEstimate,
		MaxCost:       MaxCostEstimate,
	}
}

// ParseActivityType matches s case-insensitively against the known tags and
// falls back to ActivityOther.
func ParseActivityType(s string) ActivityType {
	s = strings.TrimSpace(s)
	match, ok := lo.Find(ActivityTypes, func(t ActivityType) bool {
		return strings.EqualFold(string(t), s)
	})
	if !ok {
		return ActivityOther
	}
	return match
}

type TripActivity struct {
	Time         string       `json:"time"`
	Activity     string       `json:"activity"`
	Description  string       `json:"description"`
	Location     string       `json:"location"`
	Type         ActivityType `json:"type"`
	CostEstimate int          `json:"costEstimate"`
}

type DayPlan struct {
	DayNumber  int            `json:"dayNumber"`
	Theme      string         `json:"theme"`
	Activities []TripActivity `json:"activities"`
}

// BudgetShare is a model-estimated share of the total budget. Shares are
// advisory and are not required to sum to 100.
type BudgetShare struct {
	Category   string  `json:"category"`
	Percentage float64 `json:"percentage"`
}

type TripItinerary struct {
	TripTitle       string        `json:"tripTitle"`
	Destination     string        `json:"destination"`
	Duration        string        `json:"duration"`
	Summary         string        `json:"summary"`
	Days            []DayPlan     `json:"days"`
	EstimatedBudget []BudgetShare `json:"estimatedBudget"`
}

var (
	ErrEmptyPrompt        = errors.New("empty prompt")
	ErrEmptyResponse      = errors.New("no response from model")
	ErrMalformedItinerary = errors.New("malformed itinerary")
	ErrNotFound           = errors.New("itinerary not found")
)

// wire* types distinguish missing keys from empty values.
type wireItinerary struct {
	TripTitle       *string       `json:"tripTitle"`
	Destination     *string       `json:"destination"`
	Duration        *string       `json:"duration"`
	Summary         *string       `json:"summary"`
	Days            []*wireDay    `json:"days"`
	EstimatedBudget []BudgetShare `json:"estimatedBudget"`
}

type wireDay struct {
	DayNumber  *int            `json:"dayNumber"`
	Theme      *string         `json:"theme"`
	Activities []*wireActivity `json:"activities"`
}

type wireActivity struct {
	Time         *string       `json:"time"`
	Activity     *string       `json:"activity"`
	Description  *string       `json:"description"`
	Location     *string       `json:"location"`
	Type         *ActivityType `json:"type"`
	CostEstimate *int          `json:"costEstimate"`
}

// Parse decodes a provider payload into a normalised itinerary. Markdown code
// fences around the JSON are tolerated. Any failure wraps ErrMalformedItinerary.
func Parse(raw string) (*TripItinerary, error) {
	cleaned := cleanJSONString(raw)
	if cleaned == "" {
		return nil, ErrEmptyResponse
	}

	var w wireItinerary
	if err := json.Unmarshal([]byte(cleaned), &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedItinerary, err)
	}

	var missing []string
	need := func(present bool, path string) {
		if !present {
			missing = append(missing, path)
		}
	}
	need(w.TripTitle != nil, "tripTitle")
	need(w.Destination != nil, "destination")
	need(w.Duration != nil, "duration")
	need(w.Summary != nil, "summary")
	need(len(w.Days) > 0, "days")
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrMalformedItinerary, strings.Join(missing, ", "))
	}

	days := make([]DayPlan, 0, len(w.Days))
	for d, wd := range w.Days {
		dp := fmt.Sprintf("days[%d]", d)
		if wd == nil {
			return nil, fmt.Errorf("%w: %s is null", ErrMalformedItinerary, dp)
		}
		need(wd.DayNumber != nil, dp+".dayNumber")
		need(wd.Theme != nil, dp+".theme")
		need(wd.Activities != nil, dp+".activities")
		if len(missing) > 0 {
			return nil, fmt.Errorf("%w: missing %s", ErrMalformedItinerary, strings.Join(missing, ", "))
		}
		if *wd.DayNumber < 1 {
			return nil, fmt.Errorf("%w: %s.dayNumber must be positive, got %d", ErrMalformedItinerary, dp, *wd.DayNumber)
		}

		acts := make([]TripActivity, 0, len(wd.Activities))
		for a, wa := range wd.Activities {
			ap := fmt.Sprintf("%s.activities[%d]", dp, a)
			if wa == nil {
				return nil, fmt.Errorf("%w: %s is null", ErrMalformedItinerary, ap)
			}
			need(wa.Time != nil, ap+".time")
			need(wa.Activity != nil, ap+".activity")
			need(wa.Description != nil, ap+".description")
			need(wa.Location != nil, ap+".location")
			need(wa.Type != nil, ap+".type")
			need(wa.CostEstimate != nil, ap+".costEstimate")
			if len(missing) > 0 {
				return nil, fmt.Errorf("%w: missing %s", ErrMalformedItinerary, strings.Join(missing, ", "))
			}
			acts = append(acts, TripActivity{
				Time:         *wa.Time,
				Activity:     *wa.Activity,
				Description:  *wa.Description,
				Location:     *wa.Location,
				Type:         *wa.Type,
				CostEstimate: *wa.CostEstimate,
			})
		}
		days = append(days, DayPlan{DayNumber: *wd.DayNumber, Theme: *wd.Theme, Activities: acts})
	}

	it := &TripItinerary{
		TripTitle:       *w.TripTitle,
		Destination:     *w.Destination,
		Duration:        *w.Duration,
		Summary:         *w.Summary,
		Days:            days,
		EstimatedBudget: w.EstimatedBudget,
	}
	it.normalize()
	return it, nil
}

// normalize enforces the enum and range rules in place. It is idempotent.
func (it *TripItinerary) normalize() {
	if it.EstimatedBudget == nil {
		it.EstimatedBudget = []BudgetShare{}
	}
	for d := range it.Days {
		day := &it.Days[d]
		if day.Activities == nil {
			day.Activities = []TripActivity{}
		}
		for a := range day.Activities {
			act := &day.Activities[a]
			act.Type = ParseActivityType(string(act.Type))
			act.CostEstimate = clampCost(act.CostEstimate)
		}
	}
}

func clampCost(v int) int {
	if v < MinCostEstimate {
		return MinCostEstimate
	}
	if v > MaxCostEstimate {
		return MaxCostEstimate
	}
	return v
}

// cleanJSONString removes markdown code blocks if present (e.g. ```json ... ```)
func cleanJSONString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```json")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")
	return strings.TrimSpace(input)
}
