package prompt

import (
	"strconv"
	"strings"

	"github.com/healthlens/healthlens/internal/extract"
	"github.com/healthlens/healthlens/internal/metrics"
)

// PatientContext carries the optional demographic fields supplied with an
// upload. The core does not validate them; values pass into the prompt
// verbatim.
type PatientContext struct {
	Name       string `json:"name,omitempty"`
	Age        string `json:"age,omitempty"`
	Gender     string `json:"gender,omitempty"`
	Conditions string `json:"conditions,omitempty"`
}

// DegradedPlaceholder stands in for the report body when no strategy could
// read anything out of the document.
const DegradedPlaceholder = "No readable text could be extracted from the uploaded document."

const headings = `"Summary", "Positive findings", "Needs attention", "Critical findings", and "Next steps"`

// Builder assembles the instruction sent to the summary service. It never
// fabricates patient data: every value it emits originates from the patient
// context or the extracted report content.
type Builder struct{}

// Build produces the prompt for one request. Structured mode applies when
// metric parsing found something in a non-degraded extraction; otherwise the
// raw text (or the degraded placeholder) is embedded verbatim and the
// summarizer is confined to facts literally present in it.
func (Builder) Build(patient *PatientContext, extracted extract.Result, set *metrics.Set) string {
	if set != nil && set.Len() > 0 && !extracted.Degraded {
		return buildStructured(patient, set)
	}
	return buildFreeText(patient, extracted)
}

func buildStructured(patient *PatientContext, set *metrics.Set) string {
	var b strings.Builder
	b.WriteString("You are a careful assistant summarizing a clinical lab report for a patient in plain language.\n\n")
	writePatient(&b, patient)

	b.WriteString("Lab results:\n")
	for _, name := range set.Names() {
		v, _ := set.Get(name)
		b.WriteString(name)
		b.WriteString(": ")
		if v.Found {
			b.WriteString(strconv.FormatFloat(v.Number, 'f', -1, 64))
		} else {
			b.WriteString("not found")
		}
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	b.WriteString("Write a summary organized under exactly these headings: " + headings + ".\n")
	b.WriteString("Base every statement on the values listed above. Do not invent results, reference ranges, or diagnoses that are not supported by the listed values. ")
	b.WriteString("Use a comforting, practical tone and end on a hopeful note.")
	return b.String()
}

func buildFreeText(patient *PatientContext, extracted extract.Result) string {
	text := extracted.Text
	if extracted.Degraded || strings.TrimSpace(text) == "" {
		text = DegradedPlaceholder
	}

	var b strings.Builder
	b.WriteString("You are a careful assistant summarizing a clinical lab report for a patient in plain language.\n\n")
	writePatient(&b, patient)

	b.WriteString("The report text below is the only source of truth. Restrict yourself to facts literally present in it. ")
	b.WriteString("Do not infer, extrapolate, or invent values, metrics, or findings that the text does not state. ")
	b.WriteString("If the text contains no readable results, say so plainly.\n\n")
	b.WriteString("Report text:\n\"\"\"\n")
	b.WriteString(text)
	b.WriteString("\n\"\"\"\n\n")
	b.WriteString("Write a summary organized under exactly these headings: " + headings + ".\n")
	b.WriteString("Use a comforting, practical tone and end on a hopeful note.")
	return b.String()
}

func writePatient(b *strings.Builder, patient *PatientContext) {
	if patient == nil {
		return
	}
	var lines []string
	if v := strings.TrimSpace(patient.Name); v != "" {
		lines = append(lines, "Name: "+v)
	}
	if v := strings.TrimSpace(patient.Age); v != "" {
		lines = append(lines, "Age: "+v)
	}
	if v := strings.TrimSpace(patient.Gender); v != "" {
		lines = append(lines, "Gender: "+v)
	}
	if v := strings.TrimSpace(patient.Conditions); v != "" {
		lines = append(lines, "Known medical conditions: "+v)
	}
	if len(lines) == 0 {
		return
	}
	b.WriteString("Patient information:\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\n")
}
