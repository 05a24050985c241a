package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"ayurdiag/internal/diagnosis"
)

var (
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13")).Underline(true)
	badgeStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Padding(0, 1)
	doshaColors  = map[string]lipgloss.Color{
		"Vata":  lipgloss.Color("63"),
		"Pitta": lipgloss.Color("203"),
		"Kapha": lipgloss.Color("39"),
	}
)

// doshaBadge renders the dominant dosha on its colour.
func doshaBadge(dosha string) string {
	if dosha == "" {
		dosha = "Unknown"
	}
	color, ok := doshaColors[dosha]
	if !ok {
		color = lipgloss.Color("8")
	}
	return badgeStyle.Background(color).Render(dosha + " Predominance")
}

func renderDiagnosis(d *diagnosis.Diagnosis, width int) string {
	wrap := lipgloss.NewStyle().Width(width)
	var b strings.Builder
	section := func(title string) {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(title))
		b.WriteString("\n")
	}
	list := func(items []string) {
		if len(items) == 0 {
			b.WriteString(dimStyle.Render("  No items specified"))
			b.WriteString("\n")
			return
		}
		for _, it := range items {
			b.WriteString(wrap.Render("  • " + it))
			b.WriteString("\n")
		}
	}

	b.WriteString(doshaBadge(d.DominantDosha))
	b.WriteString("\n")
	diag := d.Diagnosis
	if diag == "" {
		diag = "Not specified"
	}
	b.WriteString(wrap.Render("Primary Diagnosis: " + diag))
	b.WriteString("\n")

	section("Identified Imbalances")
	list(d.Imbalances)

	section("Supporting Evidence")
	ev := d.SupportingEvidence
	if len(ev.SymptomsMatchingDosha) == 0 && ev.PulseIndication == "" && ev.TongueIndication == "" {
		b.WriteString(dimStyle.Render("  No supporting evidence provided."))
		b.WriteString("\n")
	} else {
		if len(ev.SymptomsMatchingDosha) > 0 {
			b.WriteString("Symptoms matching dosha:\n")
			list(ev.SymptomsMatchingDosha)
		}
		if ev.PulseIndication != "" {
			b.WriteString(wrap.Render("Pulse: " + ev.PulseIndication))
			b.WriteString("\n")
		}
		if ev.TongueIndication != "" {
			b.WriteString(wrap.Render("Tongue: " + ev.TongueIndication))
			b.WriteString("\n")
		}
	}

	t := d.RecommendedTreatments
	for _, c := range []struct {
		title string
		items diagnosis.List
	}{
		{"Dietary Recommendations", t.Dietary},
		{"Herbal Recommendations", t.Herbs},
		{"Ayurvedic Medicines", t.AyurvedicMedicines},
		{"Therapeutic Recommendations", t.Therapies},
		{"Lifestyle Recommendations", t.Lifestyle},
	} {
		if len(c.items) == 0 {
			continue
		}
		section(c.title)
		list(c.items)
	}

	if m := d.Metadata; m != nil {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(fmt.Sprintf("model=%s  rag=%t  temperature=%.2f  context=%d chars",
			m.Model, m.UseRAG, m.Temperature, m.ContextLength)))
		if len(m.Sources) > 0 {
			b.WriteString("\n")
			b.WriteString(dimStyle.Render("sources: " + strings.Join(m.Sources, ", ")))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(wrap.Render("This analysis is for educational purposes only and does not replace professional medical advice.")))
	return b.String()
}

func renderError(err error, width int) string {
	wrap := lipgloss.NewStyle().Width(width)
	out := errorStyle.Render("Diagnostic Error") + "\n" + wrap.Render(err.Error())
	var pe *diagnosis.ParseError
	if errors.As(err, &pe) && pe.Raw != "" {
		out += "\n\n" + sectionStyle.Render("Raw content") + "\n" + wrap.Render(pe.Raw)
	}
	return out
}
