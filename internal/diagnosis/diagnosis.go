// Package diagnosis parses model output into structured Ayurvedic diagnoses
// and orchestrates retrieval, prompting and generation.
package diagnosis

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"ayurdiag/internal/llm"
)

// Doshas are the accepted values of Diagnosis.DominantDosha.
var Doshas = []string{"Vata", "Pitta", "Kapha"}

// List is a string list that also accepts a single JSON string.
type List []string

func (l *List) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		if one = strings.TrimSpace(one); one != "" {
			*l = List{one}
		} else {
			*l = List{}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	*l = many
	return nil
}

// Evidence lists what supports the dominant dosha.
type Evidence struct {
	SymptomsMatchingDosha List   `json:"symptoms_matching_dosha"`
	PulseIndication       string `json:"pulse_indication"`
	TongueIndication      string `json:"tongue_indication"`
}

// UnmarshalJSON accepts symptoms_matching_dosha as well as dosha-specific
// keys such as symptoms_matching_vata, merging them in key order.
func (e *Evidence) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	var out Evidence
	if v, ok := raw["pulse_indication"]; ok {
		if err := json.Unmarshal(v, &out.PulseIndication); err != nil {
			return fmt.Errorf("pulse_indication: %w", err)
		}
	}
	if v, ok := raw["tongue_indication"]; ok {
		if err := json.Unmarshal(v, &out.TongueIndication); err != nil {
			return fmt.Errorf("tongue_indication: %w", err)
		}
	}
	for _, key := range matchingKeys(raw) {
		var l List
		if err := json.Unmarshal(raw[key], &l); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		out.SymptomsMatchingDosha = append(out.SymptomsMatchingDosha, l...)
	}
	*e = out
	return nil
}

func matchingKeys(raw map[string]json.RawMessage) []string {
	var keys []string
	if _, ok := raw["symptoms_matching_dosha"]; ok {
		keys = append(keys, "symptoms_matching_dosha")
	}
	for _, d := range Doshas {
		k := "symptoms_matching_" + strings.ToLower(d)
		if _, ok := raw[k]; ok {
			keys = append(keys, k)
		}
	}
	return keys
}

func (e Evidence) empty() bool {
	return len(e.SymptomsMatchingDosha) == 0 && e.PulseIndication == "" && e.TongueIndication == ""
}

// Treatments groups recommendations by category.
type Treatments struct {
	Dietary            List `json:"dietary"`
	Herbs              List `json:"herbs"`
	AyurvedicMedicines List `json:"ayurvedic_medicines"`
	Therapies          List `json:"therapies"`
	Lifestyle          List `json:"lifestyle"`
}

func (t Treatments) empty() bool {
	return t.Dietary == nil && t.Herbs == nil && t.AyurvedicMedicines == nil && t.Therapies == nil && t.Lifestyle == nil
}

// Metadata records how a diagnosis was produced.
type Metadata struct {
	Symptoms      string    `json:"symptoms"`
	UseRAG        bool      `json:"use_rag"`
	Temperature   float64   `json:"temperature"`
	Model         string    `json:"model"`
	ContextLength int       `json:"context_length"`
	Sources       []string  `json:"sources,omitempty"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// Diagnosis is the structured model answer.
type Diagnosis struct {
	DominantDosha         string     `json:"dominant_dosha"`
	Imbalances            List       `json:"imbalances"`
	Diagnosis             string     `json:"diagnosis"`
	SupportingEvidence    Evidence   `json:"supporting_evidence"`
	RecommendedTreatments Treatments `json:"recommended_treatments"`
	Metadata              *Metadata  `json:"metadata,omitempty"`
}

// ParseError is returned when model output is not a valid diagnosis.
// Raw holds the model text for display.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse JSON response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse extracts and decodes the JSON object in text.
func Parse(text string) (*Diagnosis, error) {
	body := llm.ExtractJSON(text)
	var d Diagnosis
	if err := json.Unmarshal([]byte(body), &d); err != nil {
		return nil, &ParseError{Raw: text, Err: err}
	}
	if d.DominantDosha == "" && d.Diagnosis == "" && len(d.Imbalances) == 0 {
		return nil, &ParseError{Raw: text, Err: fmt.Errorf("no diagnostic fields in response")}
	}
	d.DominantDosha = normalizeDosha(d.DominantDosha)
	return &d, nil
}

func normalizeDosha(s string) string {
	s = strings.TrimSpace(s)
	for _, d := range Doshas {
		if strings.EqualFold(s, d) {
			return d
		}
	}
	return s
}

// Validation is the result of Validate.
type Validation struct {
	Valid           bool     `json:"valid"`
	MissingFields   []string `json:"missing_fields"`
	Recommendations []string `json:"recommendations"`
}

// Validate checks that d has every required field, a known dosha and the
// core treatment categories.
func Validate(d *Diagnosis) Validation {
	v := Validation{Valid: true, MissingFields: []string{}, Recommendations: []string{}}
	if d == nil {
		v.Valid = false
		v.MissingFields = []string{"dominant_dosha", "imbalances", "diagnosis", "supporting_evidence", "recommended_treatments"}
		return v
	}
	missing := func(field string, absent bool) {
		if absent {
			v.Valid = false
			v.MissingFields = append(v.MissingFields, field)
		}
	}
	missing("dominant_dosha", d.DominantDosha == "")
	missing("imbalances", d.Imbalances == nil)
	missing("diagnosis", d.Diagnosis == "")
	missing("supporting_evidence", d.SupportingEvidence.empty())
	missing("recommended_treatments", d.RecommendedTreatments.empty())

	if d.DominantDosha != "" && !slices.Contains(Doshas, d.DominantDosha) {
		v.Recommendations = append(v.Recommendations, "Invalid dosha value")
	}
	if !d.RecommendedTreatments.empty() {
		t := d.RecommendedTreatments
		for _, c := range []struct {
			name string
			l    List
		}{{"dietary", t.Dietary}, {"herbs", t.Herbs}, {"therapies", t.Therapies}, {"lifestyle", t.Lifestyle}} {
			if c.l == nil {
				v.Recommendations = append(v.Recommendations, "Missing "+c.name+" recommendations")
			}
		}
	}
	return v
}
