// Package model defines the domain types shared across the advisory pipeline.
package model

import "encoding/json"

// Recommendation is the agronomic plan produced by the LLM. None of its
// sections are guaranteed to be present; consumers degrade to documented
// defaults when a section is missing.
type Recommendation struct {
	Watering      *Watering        `json:"watering,omitempty"`
	Fertilization []FertilizerPlan `json:"fertilization,omitempty"`
	Predictions   *Predictions     `json:"predictions,omitempty"`

	// Raw holds the model's reply verbatim when it could not be parsed
	// into the structured fields above.
	Raw string `json:"raw,omitempty"`
}

// Watering describes the irrigation plan. The LLM sometimes emits this
// section as a bare string instead of an object; UnmarshalJSON accepts both.
type Watering struct {
	Schedule    string `json:"schedule"`
	Description string `json:"description,omitempty"`
	ImagePrompt string `json:"imagePrompt,omitempty"`
}

func (w *Watering) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*w = Watering{Schedule: s}
		return nil
	}
	type watering Watering
	var obj watering
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*w = Watering(obj)
	return nil
}

// FertilizerPlan is one fertilization entry. Schedule is free text expected
// (but not guaranteed) to contain an application rate as "<n> kg/ha".
type FertilizerPlan struct {
	Type        string `json:"type"`
	Schedule    string `json:"schedule"`
	Description string `json:"description,omitempty"`
	ImagePrompt string `json:"imagePrompt,omitempty"`
}

// Predictions holds the model's outcome estimates as free text.
type Predictions struct {
	PeakGreenMass string `json:"peakGreenMass,omitempty"`
	YieldEstimate string `json:"yieldEstimate,omitempty"`
	Confidence    string `json:"confidence,omitempty"`
}

// DemoRecommendation returns the canned soybean plan served when no LLM is
// configured or the completion call fails.
func DemoRecommendation() *Recommendation {
	return &Recommendation{
		Watering: &Watering{
			Schedule:    "Week 1-2: Daily irrigation (25mm/day), Week 3-8: Every 2-3 days (20mm), Week 9-12: Reduce to 15mm every 3 days",
			Description: "Soybean water requirements peak during flowering and pod development",
			ImagePrompt: "Calendar showing watering schedule with water droplets for a soybean field",
		},
		Fertilization: []FertilizerPlan{
			{
				Type:        "NPK 10-20-10",
				Schedule:    "Apply 150 kg/ha at planting",
				Description: "Phosphorus critical for root development and nodulation",
				ImagePrompt: "Diagram showing NPK fertilizer application at field preparation",
			},
			{
				Type:        "Rhizobium Inoculant",
				Schedule:    "Seed treatment before planting",
				Description: "Enhances nitrogen fixation in root nodules",
				ImagePrompt: "Seeds being treated with bacterial inoculant",
			},
			{
				Type:        "Potassium Sulfate",
				Schedule:    "75 kg/ha at flowering stage (week 6)",
				Description: "Supports pod filling and grain quality",
				ImagePrompt: "Foliar application during soybean flowering",
			},
		},
		Predictions: &Predictions{
			PeakGreenMass: "Week 8-9 (full flowering to early pod development)",
			YieldEstimate: "2.5-3.0 tons/hectare based on optimal conditions",
			Confidence:    "High - based on 5 years of historical data",
		},
	}
}
