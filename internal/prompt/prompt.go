// Package prompt builds the model prompts for diagnosis and conversation.
package prompt

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

var diagnosticTmpl = template.Must(template.New("diagnostic").Parse(
	`You are an expert Ayurvedic physician with deep knowledge of traditional Ayurvedic principles, including the Tridosha theory (Vata, Pitta, Kapha), the seven Dhatus (tissues), and the various Srotas (channels).

Your task is to analyze patient symptoms and provide a comprehensive Ayurvedic diagnosis with treatment recommendations.

{{if .Context}}Relevant Ayurvedic knowledge:
{{.Context}}

{{end}}Please analyze the following patient symptoms and provide your assessment in the exact JSON format shown in the examples below:

Patient Symptoms: "{{.Symptoms}}"

Provide your analysis in the following JSON structure:
{{.Structure}}

Important guidelines:
1. Base your analysis on traditional Ayurvedic principles
2. Use the provided context from Ayurvedic texts when relevant
3. Be specific about dosha imbalances and their locations
4. Provide evidence-based recommendations
5. Include both Sanskrit and English terms where appropriate
6. Ensure all recommendations are safe and practical
7. Format the response as valid JSON only, without any additional text or markdown formatting

Examples of the expected format:
{{.Examples}}`))

var simpleTmpl = template.Must(template.New("simple").Parse(
	`You are an expert Ayurvedic physician. Analyze the following symptoms and provide a diagnosis in JSON format:

Patient Symptoms: "{{.Symptoms}}"

Provide your analysis as valid JSON only, using exactly this structure (name the dominant dosha as Vata, Pitta or Kapha):
{{.Structure}}`))

var chatTmpl = template.Must(template.New("chat").Parse(
	`You are Dr. Priya, a warm and knowledgeable Ayurvedic health assistant.
Answer questions about Ayurveda, the doshas (Vata, Pitta, Kapha), diet, herbs, daily routines and general wellbeing in a friendly, conversational tone.
Keep answers concise and practical. Do not produce JSON.
When a question describes symptoms, explain which dosha imbalance they may suggest and offer gentle dietary and lifestyle guidance.
Always remind the user to consult a qualified practitioner for serious or persistent symptoms.
{{if .Context}}
Use the following Ayurvedic knowledge where relevant:
{{.Context}}
{{end}}`))

type data struct {
	Symptoms  string
	Context   string
	Structure string
	Examples  string
}

func render(t *template.Template, d data) string {
	var buf bytes.Buffer
	if err := t.Execute(&buf, d); err != nil {
		panic(fmt.Sprintf("prompt template %s: %v", t.Name(), err))
	}
	return buf.String()
}

// Diagnostic builds the full diagnostic prompt. An empty context omits the
// knowledge block.
func Diagnostic(symptoms, context string) string {
	return render(diagnosticTmpl, data{
		Symptoms:  strings.TrimSpace(symptoms),
		Context:   strings.TrimSpace(context),
		Structure: jsonStructure,
		Examples:  fewShotExamples,
	})
}

// Simple builds the diagnostic prompt used when no context is available.
func Simple(symptoms string) string {
	return render(simpleTmpl, data{Symptoms: strings.TrimSpace(symptoms), Structure: jsonStructure})
}

// ChatSystem builds the system instruction for conversational mode.
func ChatSystem(context string) string {
	return render(chatTmpl, data{Context: strings.TrimSpace(context)})
}

var requiredElements = []string{"ayurvedic", "symptoms", "json", "dosha"}

// Validate reports the required elements missing from p, case-insensitively.
func Validate(p string) []string {
	lower := strings.ToLower(p)
	var missing []string
	for _, el := range requiredElements {
		if !strings.Contains(lower, el) {
			missing = append(missing, el)
		}
	}
	return missing
}

// Variations returns named prompt builders for experimentation.
func Variations() map[string]func(symptoms string) string {
	return map[string]func(string) string{
		"detailed": func(s string) string { return Diagnostic(s, "") },
		"simple":   Simple,
		"clinical": func(s string) string { return "As a clinical Ayurvedic practitioner, diagnose: " + s },
		"research": func(s string) string { return "Based on Ayurvedic research, analyze: " + s },
	}
}
