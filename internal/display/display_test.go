package display

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ayurdiag/internal/diagnosis"
)

func sample() *diagnosis.Diagnosis {
	return &diagnosis.Diagnosis{
		DominantDosha: "Pitta",
		Imbalances:    diagnosis.List{"Pitta in digestion"},
		Diagnosis:     "Amlapitta <acid>",
		SupportingEvidence: diagnosis.Evidence{
			SymptomsMatchingDosha: diagnosis.List{"heartburn"},
			PulseIndication:       "sharp",
		},
		RecommendedTreatments: diagnosis.Treatments{
			Dietary: diagnosis.List{"cooling foods"},
			Herbs:   diagnosis.List{"Amalaki"},
		},
		Metadata: &diagnosis.Metadata{
			Symptoms:      "secret symptoms",
			UseRAG:        true,
			Temperature:   0.2,
			Model:         "gemini-test",
			ContextLength: 120,
			Sources:       []string{"pitta.txt"},
			GeneratedAt:   time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC),
		},
	}
}

func TestDoshaClass(t *testing.T) {
	assert.Equal(t, "dosha-vata", DoshaClass("Vata"))
	assert.Equal(t, "dosha-kapha", DoshaClass(" kapha "))
	assert.Equal(t, "dosha-unknown", DoshaClass("Vata-Pitta"))
	assert.Equal(t, "dosha-unknown", DoshaClass(""))
}

func TestReport(t *testing.T) {
	html, err := Report(sample())
	require.NoError(t, err)
	out := string(html)

	assert.Contains(t, out, "Ayurvedic Diagnostic Report")
	assert.Contains(t, out, `class="dosha-pitta dosha-badge"`)
	assert.Contains(t, out, "Pitta Predominance")
	assert.Contains(t, out, "Amlapitta &lt;acid&gt;")
	assert.Contains(t, out, "<li>Pitta in digestion</li>")
	assert.Contains(t, out, "Pulse Indication")
	assert.NotContains(t, out, "Tongue Indication")
	assert.Contains(t, out, "Dietary Recommendations")
	assert.Contains(t, out, "Herbal Recommendations")
	assert.NotContains(t, out, "Lifestyle Recommendations")
	assert.Contains(t, out, "Important Disclaimer")
	assert.Contains(t, out, "<strong>model:</strong> gemini-test")
	assert.Contains(t, out, "Generated on: 2024-05-06 07:08:09")
	assert.NotContains(t, out, "secret symptoms")
}

func TestReportEmptySections(t *testing.T) {
	html, err := Report(&diagnosis.Diagnosis{DominantDosha: "Tridosha"})
	require.NoError(t, err)
	out := string(html)
	assert.Contains(t, out, "dosha-unknown")
	assert.Contains(t, out, "No items specified")
	assert.Contains(t, out, "No supporting evidence provided.")
	assert.Contains(t, out, "No treatment recommendations provided.")
	assert.Contains(t, out, "Not specified")
	assert.NotContains(t, out, "Analysis Details")

	_, err = Report(nil)
	assert.Error(t, err)
}

func TestSummary(t *testing.T) {
	html, err := Summary(sample())
	require.NoError(t, err)
	assert.Contains(t, string(html), "Quick Diagnosis Summary")
	assert.Contains(t, string(html), "dosha-pitta")
}

func TestError(t *testing.T) {
	html, err := Error(&diagnosis.ParseError{Raw: "<b>not json</b>", Err: errors.New("bad")})
	require.NoError(t, err)
	out := string(html)
	assert.Contains(t, out, "Diagnostic Error")
	assert.Contains(t, out, "failed to parse JSON response")
	assert.Contains(t, out, "&lt;b&gt;not json&lt;/b&gt;")

	html, err = Error(errors.New("quota"))
	require.NoError(t, err)
	assert.NotContains(t, string(html), "Raw content")
}

func TestBatchAndPage(t *testing.T) {
	results := []diagnosis.Result{
		diagnosis.NewResult("heartburn", sample(), nil),
		{Symptoms: "bad", Error: "failed", RawContent: "oops"},
	}
	body, err := Batch(results)
	require.NoError(t, err)
	out := string(body)
	assert.Contains(t, out, "<strong>1 of 2</strong>")
	assert.Contains(t, out, "Case 1: heartburn")
	assert.Contains(t, out, "Case 2: bad")
	assert.Contains(t, out, "oops")
	assert.Less(t, strings.Index(out, "Case 1"), strings.Index(out, "Case 2"))

	var buf bytes.Buffer
	require.NoError(t, Page(&buf, "Batch <Results>", body))
	page := buf.String()
	assert.True(t, strings.HasPrefix(page, "<!DOCTYPE html>"))
	assert.Contains(t, page, "<title>Batch &lt;Results&gt;</title>")
	assert.Contains(t, page, ".dosha-vata")
	assert.Contains(t, page, "Ayurvedic Diagnostic Report")
}
