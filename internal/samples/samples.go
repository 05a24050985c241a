// Package samples provides a starter knowledge base and reference cases.
package samples

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

var texts = map[string]string{
	"vata_imbalance": `Vata dosha is composed of air and ether elements. When Vata is imbalanced,
it can cause symptoms such as anxiety, insomnia, dry skin, constipation,
joint pain, and irregular digestion. Vata imbalance is often aggravated by
cold, dry weather, irregular routines, and excessive travel.

Treatment for Vata imbalance includes warm, cooked foods, regular daily
routines, warm oil massage (Abhyanga), and grounding practices like yoga
and meditation. Herbs like Ashwagandha, Guggulu, and Haritaki are beneficial.
`,
	"pitta_imbalance": `Pitta dosha is composed of fire and water elements. Pitta imbalance
manifests as inflammation, heat, acidity, skin rashes, irritability,
and excessive thirst. Pitta is aggravated by hot weather, spicy foods,
and excessive stress.

Cooling treatments are essential for Pitta imbalance. This includes
cooling foods, avoiding spicy and sour tastes, and using herbs like
Amalaki, Guduchi, and Shatavari. Therapies like Shirodhara with
cooling oils are beneficial.
`,
	"kapha_imbalance": `Kapha dosha is composed of earth and water elements. Kapha imbalance
leads to weight gain, lethargy, congestion, slow digestion, and
excessive sleep. Kapha is aggravated by cold, damp weather and
heavy, sweet foods.

Treatment for Kapha imbalance includes stimulating practices, light
foods, regular exercise, and herbs like Trikatu, Guggulu, and
Punarnava. Therapies like Udvartana (dry massage) are beneficial.
`,
}

// Report describes the files written by Write.
type Report struct {
	Files      []string `json:"files"`
	TotalChars int      `json:"total_chars"`
}

// Write creates the sample documents in dir as <name>.txt, overwriting any
// existing files of the same name.
func Write(dir string) (Report, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Report{}, fmt.Errorf("create sample dir: %w", err)
	}
	names := make([]string, 0, len(texts))
	for name := range texts {
		names = append(names, name)
	}
	sort.Strings(names)

	var rep Report
	for _, name := range names {
		path := filepath.Join(dir, name+".txt")
		if err := os.WriteFile(path, []byte(texts[name]), 0o644); err != nil {
			return rep, fmt.Errorf("write %s: %w", path, err)
		}
		rep.Files = append(rep.Files, path)
		rep.TotalChars += len(texts[name])
	}
	return rep, nil
}

// Case is a symptom description with the dosha it should be attributed to.
type Case struct {
	Symptoms      string `json:"symptoms"`
	ExpectedDosha string `json:"expected_dosha"`
	Description   string `json:"description"`
}

// TestCases returns one classic presentation per dosha.
func TestCases() []Case {
	return []Case{
		{
			Symptoms:      "I have joint pain that worsens in cold weather, cracking sounds in my knees, constipation, and anxiety. I have trouble sleeping and my skin is very dry.",
			ExpectedDosha: "Vata",
			Description:   "Classic Vata imbalance symptoms",
		},
		{
			Symptoms:      "I frequently get heartburn and acid reflux, especially after eating spicy foods. I have a reddish complexion, feel hot often, and get irritated easily. I also have some skin rashes that worsen when I'm stressed.",
			ExpectedDosha: "Pitta",
			Description:   "Classic Pitta imbalance symptoms",
		},
		{
			Symptoms:      "I feel very tired and sluggish, have gained weight, and feel congested. I sleep too much and have slow digestion. I feel heavy and lethargic.",
			ExpectedDosha: "Kapha",
			Description:   "Classic Kapha imbalance symptoms",
		},
	}
}
