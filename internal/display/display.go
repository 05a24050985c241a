// Package display renders diagnoses as HTML.
package display

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"ayurdiag/internal/diagnosis"
)

var tmpl = template.Must(template.New("display").Parse(templates))

const timeLayout = "2006-01-02 15:04:05"

// Now is used when a diagnosis carries no generation time.
var Now = time.Now

type detail struct{ Key, Value string }

type category struct {
	Title string
	Items diagnosis.List
}

type reportView struct {
	D          *diagnosis.Diagnosis
	Dosha      string
	DoshaClass string
	Treatments []category
	Details    []detail
	Generated  string
}

// DoshaClass returns the badge CSS class for a dosha name.
func DoshaClass(dosha string) string {
	for _, d := range diagnosis.Doshas {
		if strings.EqualFold(strings.TrimSpace(dosha), d) {
			return "dosha-" + strings.ToLower(d)
		}
	}
	return "dosha-unknown"
}

func newReportView(d *diagnosis.Diagnosis) reportView {
	v := reportView{D: d, Dosha: d.DominantDosha, DoshaClass: DoshaClass(d.DominantDosha)}
	if v.Dosha == "" {
		v.Dosha = "Unknown"
	}
	t := d.RecommendedTreatments
	for _, c := range []category{
		{"Dietary Recommendations", t.Dietary},
		{"Herbal Recommendations", t.Herbs},
		{"Ayurvedic Medicines", t.AyurvedicMedicines},
		{"Therapeutic Recommendations", t.Therapies},
		{"Lifestyle Recommendations", t.Lifestyle},
	} {
		if len(c.Items) > 0 {
			v.Treatments = append(v.Treatments, c)
		}
	}
	generated := Now()
	if m := d.Metadata; m != nil {
		if !m.GeneratedAt.IsZero() {
			generated = m.GeneratedAt
		}
		v.Details = []detail{
			{"use_rag", fmt.Sprint(m.UseRAG)},
			{"temperature", fmt.Sprintf("%.2f", m.Temperature)},
			{"model", m.Model},
			{"context_length", fmt.Sprint(m.ContextLength)},
		}
		if len(m.Sources) > 0 {
			v.Details = append(v.Details, detail{"sources", strings.Join(m.Sources, ", ")})
		}
	}
	v.Generated = generated.Format(timeLayout)
	return v
}

func render(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}

// Report renders the full diagnostic report.
func Report(d *diagnosis.Diagnosis) (template.HTML, error) {
	if d == nil {
		return "", errors.New("nil diagnosis")
	}
	return render("report", newReportView(d))
}

// Summary renders the dominant dosha and diagnosis only.
func Summary(d *diagnosis.Diagnosis) (template.HTML, error) {
	if d == nil {
		return "", errors.New("nil diagnosis")
	}
	return render("summary", newReportView(d))
}

// Error renders an error panel. Parse failures include the raw model output.
func Error(err error) (template.HTML, error) {
	data := struct{ Message, Raw string }{Message: "Unknown error"}
	if err != nil {
		data.Message = err.Error()
		var pe *diagnosis.ParseError
		if errors.As(err, &pe) {
			data.Raw = pe.Raw
		}
	}
	return render("error", data)
}

// Result renders r as a report or, when it failed, an error panel.
func Result(r diagnosis.Result) (template.HTML, error) {
	if r.OK() {
		return Report(r.Diagnosis)
	}
	err := r.Err
	if err == nil {
		msg := r.Error
		if msg == "" {
			msg = "no diagnosis returned"
		}
		err = errors.New(msg)
		if r.RawContent != "" {
			err = &diagnosis.ParseError{Raw: r.RawContent, Err: err}
		}
	}
	return Error(err)
}

// Batch renders every result in order with a success count.
func Batch(results []diagnosis.Result) (template.HTML, error) {
	type batchCase struct {
		N        int
		Symptoms string
		Body     template.HTML
	}
	data := struct {
		Total, Succeeded int
		Cases            []batchCase
	}{Total: len(results)}
	for i, r := range results {
		body, err := Result(r)
		if err != nil {
			return "", err
		}
		if r.OK() {
			data.Succeeded++
		}
		data.Cases = append(data.Cases, batchCase{N: i + 1, Symptoms: r.Symptoms, Body: body})
	}
	return render("batch", data)
}

// Page writes body as a standalone HTML document with the report styles.
func Page(w io.Writer, title string, body template.HTML) error {
	data := struct {
		Title  string
		Styles template.CSS
		Body   template.HTML
	}{title, template.CSS(styles), body}
	if err := tmpl.ExecuteTemplate(w, "page", data); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}
