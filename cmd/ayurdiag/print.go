package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"ayurdiag/internal/diagnosis"
)

var doshaColors = map[string]*color.Color{
	"Vata":  color.New(color.FgBlue, color.Bold),
	"Pitta": color.New(color.FgRed, color.Bold),
	"Kapha": color.New(color.FgCyan, color.Bold),
}

func doshaLabel(dosha string) string {
	if c, ok := doshaColors[dosha]; ok {
		return c.Sprint(dosha)
	}
	if dosha == "" {
		dosha = "Unknown"
	}
	return magenta(dosha)
}

func printDiagnosis(w io.Writer, d *diagnosis.Diagnosis) {
	fmt.Fprintf(w, "%s %s\n", bold("Dominant dosha:"), doshaLabel(d.DominantDosha))
	diag := d.Diagnosis
	if diag == "" {
		diag = "Not specified"
	}
	fmt.Fprintf(w, "%s %s\n", bold("Diagnosis:"), diag)

	list := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, cyan(title))
		for _, it := range items {
			fmt.Fprintf(w, "  • %s\n", it)
		}
	}
	list("Imbalances", d.Imbalances)
	ev := d.SupportingEvidence
	list("Symptoms matching dosha", ev.SymptomsMatchingDosha)
	if ev.PulseIndication != "" {
		fmt.Fprintf(w, "%s %s\n", bold("Pulse:"), ev.PulseIndication)
	}
	if ev.TongueIndication != "" {
		fmt.Fprintf(w, "%s %s\n", bold("Tongue:"), ev.TongueIndication)
	}

	t := d.RecommendedTreatments
	list("Dietary", t.Dietary)
	list("Herbs", t.Herbs)
	list("Ayurvedic medicines", t.AyurvedicMedicines)
	list("Therapies", t.Therapies)
	list("Lifestyle", t.Lifestyle)

	if v := diagnosis.Validate(d); !v.Valid || len(v.Recommendations) > 0 {
		fmt.Fprintln(w)
		for _, f := range v.MissingFields {
			fmt.Fprintln(w, yellow("missing field: "+f))
		}
		for _, r := range v.Recommendations {
			fmt.Fprintln(w, yellow(r))
		}
	}

	if m := d.Metadata; m != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, faint(fmt.Sprintf("model=%s rag=%t temperature=%.2f context=%d chars", m.Model, m.UseRAG, m.Temperature, m.ContextLength)))
		if len(m.Sources) > 0 {
			fmt.Fprintln(w, faint("sources: "+strings.Join(m.Sources, ", ")))
		}
	}
	fmt.Fprintln(w, faint("For educational purposes only; not a substitute for professional medical advice."))
}

func printError(w io.Writer, err error) {
	fmt.Fprintln(w, red("Diagnostic error:"), err)
	var pe *diagnosis.ParseError
	if errors.As(err, &pe) && pe.Raw != "" {
		fmt.Fprintln(w, faint("raw model output:"))
		fmt.Fprintln(w, indent(pe.Raw, "  "))
	}
}
