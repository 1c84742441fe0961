package prompt

import (
	"strings"
)

// Section is one labeled block of the deterministic draft.
type Section struct {
	Title string
	Body  string
}

// CompositionBuilder builds the prompt that asks a model to phrase an
// answer from already-retrieved campus data.
type CompositionBuilder struct {
	question string
	current  string
	sections []Section
}

func NewCompositionBuilder(question, currentTime string, sections []Section) *CompositionBuilder {
	return &CompositionBuilder{
		question: question,
		current:  currentTime,
		sections: sections,
	}
}

func (b *CompositionBuilder) Build() string {
	var prompt strings.Builder

	b.writeCampusData(&prompt)
	b.writeTask(&prompt)
	b.writeGuidelines(&prompt)
	b.writeUserQuery(&prompt)

	return prompt.String()
}

func (b *CompositionBuilder) writeCampusData(prompt *strings.Builder) {
	prompt.WriteString("<campus_data>\n")
	if b.current != "" {
		prompt.WriteString("<current_time>")
		prompt.WriteString(b.current)
		prompt.WriteString("</current_time>\n")
	}
	for _, s := range b.sections {
		prompt.WriteString("<section title=\"")
		prompt.WriteString(s.Title)
		prompt.WriteString("\">\n")
		prompt.WriteString(s.Body)
		prompt.WriteString("\n</section>\n")
	}
	prompt.WriteString("</campus_data>\n\n")
}

func (b *CompositionBuilder) writeTask(prompt *strings.Builder) {
	prompt.WriteString("<task>\n")
	prompt.WriteString("Answer the student's question using only the campus data above.\n")
	prompt.WriteString("</task>\n\n")
}

func (b *CompositionBuilder) writeGuidelines(prompt *strings.Builder) {
	prompt.WriteString("<guidelines>\n")
	if len(b.sections) > 1 {
		prompt.WriteString("- Keep one section per title, in the order given, each starting with its title in bold: **Title**\n")
	}
	prompt.WriteString("- Do not add facts that are not in the campus data\n")
	prompt.WriteString("- Keep source attributions for knowledge base excerpts\n")
	prompt.WriteString("- If a section says information is unavailable, say so plainly\n")
	prompt.WriteString("- Be concise and friendly\n")
	prompt.WriteString("</guidelines>\n\n")
}

func (b *CompositionBuilder) writeUserQuery(prompt *strings.Builder) {
	prompt.WriteString("<user_question>\n")
	prompt.WriteString(b.question)
	prompt.WriteString("\n</user_question>\n\n")
	prompt.WriteString("Now write the answer:")
}
