// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package oracle

import (
	"bytes"
	"fmt"
	"text/template"
)

// keywordSystemPrompt frames the keyword-derivation calls.
const keywordSystemPrompt = "You are an expert in education policy research with deep knowledge of quantitative methods and education finance literature."

// summarySystemPrompt frames the note-summary calls. The vocabulary
// constraint is restated here because models follow system-level
// restrictions more reliably than prompt-body ones.
const summarySystemPrompt = "You are an expert research assistant specializing in education policy and quantitative social science. You must ONLY use keywords from the provided controlled vocabulary list. Do not create new keywords."

// keywordAbstractTmpl derives broad keywords from a title and abstract.
var keywordAbstractTmpl = template.Must(template.New("keyword-abstract").Parse(`You are analyzing an academic paper in education finance and policy.

[Title]: {{.Title}}
[Abstract]: {{.Text}}

Extract 8-12 relevant keywords or key phrases covering ALL aspects:
1. Methodological approaches (e.g., "regression discontinuity", "difference-in-differences", "fixed effects")
2. Policy topics (e.g., "school funding", "Title I", "charter schools")
3. Outcome measures (e.g., "student achievement", "graduation rates", "test scores")
4. Contextual factors (e.g., "socioeconomic status", "educational inequality")
5. Data types (e.g., "administrative data", "panel data", "survey data")

REQUIREMENTS:
- Use lowercase for all keywords
- Use standard academic terminology
- Prefer multi-word phrases when more precise
- Separate keywords with semicolons
- Only keywords, no explanations

Keywords:`))

// keywordMethodTmpl derives methodology-focused keywords from an
// extracted method section.
var keywordMethodTmpl = template.Must(template.New("keyword-method").Parse(`You are analyzing the METHODS section of an education policy research paper.

[Title]: {{.Title}}
[Methods Section]: {{.Text}}

Extract 6-10 keywords focusing on METHODOLOGY:
1. Statistical methods (e.g., "regression discontinuity design", "difference-in-differences", "instrumental variables", "propensity score matching")
2. Research design (e.g., "quasi-experimental design", "randomized controlled trial", "event study")
3. Data sources (e.g., "administrative data", "longitudinal data", "census data")
4. Analytical techniques (e.g., "fixed effects", "local polynomial regression", "synthetic control")

REQUIREMENTS:
- Use lowercase for all keywords
- Use precise methodological terminology
- Separate keywords with semicolons
- Only keywords, no explanations

Keywords:`))

// summaryTmpl produces the structured note body. The keyword
// instruction switches between the controlled-vocabulary constraint and
// free tagging depending on whether a vocabulary was loaded, and the
// requirement wording adapts to the text source.
var summaryTmpl = template.Must(template.New("summary").Parse(`Analyze the following {{if .FullText}}full-text academic paper{{else}}paper abstract{{end}} and provide a structured summary in English.

[Paper Title]: {{.Title}}
{{if .FullText}}[Full Text]:{{else}}[Abstract]:{{end}}
{{.Text}}

[Requirements - ALL IN ENGLISH]:
1. One-sentence summary (core contribution only)

{{if .Vocabulary}}2. Select 5-7 keywords from the CONTROLLED KEYWORD LIST below.
   - ONLY use keywords from this list
   - Choose the most relevant ones for this paper
   - Format each as [[keyword]]
   - If a perfect match doesn't exist, choose the closest related keyword

CONTROLLED KEYWORD LIST:
{{range .Vocabulary}}- {{.}}
{{end}}{{else}}2. Generate 5-7 relevant keywords for this paper.
   - Use lowercase
   - Format each as [[keyword]]
   - Focus on methodology, policy topics, and outcomes
{{end}}
{{if .FullText}}3. Research question(s)
4. Key findings (3-5 bullet points)
5. Methodology summary (data, analytical approach)
6. Significance and limitations of this study{{else}}3. Research question(s) (infer from abstract if not explicit)
4. Key findings (based on abstract)
5. Methodology (if mentioned in abstract)
6. Significance of this study{{end}}
`))

// renderKeywordPrompt selects the keyword template for the text source.
func renderKeywordPrompt(title, text string, kind SourceKind) (string, error) {
	tmpl := keywordAbstractTmpl
	if kind == SourceMethod {
		tmpl = keywordMethodTmpl
	}
	var buf bytes.Buffer
	err := tmpl.Execute(&buf, struct{ Title, Text string }{title, text})
	if err != nil {
		return "", fmt.Errorf("rendering keyword prompt: %w", err)
	}
	return buf.String(), nil
}

// renderSummaryPrompt builds the note-summary prompt.
func renderSummaryPrompt(title, text string, kind SourceKind, vocabulary []string) (string, error) {
	var buf bytes.Buffer
	err := summaryTmpl.Execute(&buf, struct {
		Title, Text string
		FullText    bool
		Vocabulary  []string
	}{title, text, kind == SourceFullText, vocabulary})
	if err != nil {
		return "", fmt.Errorf("rendering summary prompt: %w", err)
	}
	return buf.String(), nil
}
