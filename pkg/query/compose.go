package query

import (
	"fmt"
	"strings"

	"github.com/teslashibe/go-nyaya/pkg/law"
)

// Prompt fragments live here so wording changes are a single-file edit.

const promptPersona = `You are an expert legal assistant specializing in Indian law. Your task is to provide clear, accurate, and helpful explanations of Indian legal codes and procedures.`

const promptAudience = `**Audience:** Explain the concepts for a %s. Tailor the language, complexity, and depth of your explanation accordingly. For a layperson, use simple terms and avoid jargon. For a legal professional, you can be more technical and detailed.`

const promptFocus = `**Specific Focus:** The user is particularly interested in the **%s**. Please ensure your answer emphasizes this aspect.`

const promptLanguageEnglish = `**Output Language:** Write the entire response in English.`

const promptLanguageOther = `**Output Language:** The entire response MUST be in %s. Use simple, everyday %s vocabulary that a common reader can follow.`

const promptFormatting = `**Formatting:** Structure the response for clarity using markdown:
- Use headings (#, ##, ###) to organise sections.
- Use bullet lists (- ) for related points.
- Use numbered lists (1. ) for sequential steps or procedures.
- Use blockquotes (> ) when quoting the text of a statute or judgment.
- Use **bold** for key terms and section numbers.
- Use *italics* for case citations.`

const promptDirectives = `Your response **must** adhere to the following:
1. **Cite Specific Sections:** Every legal point, procedure, definition, or principle must cite the exact section number from the relevant legal code (e.g., Section 154 of BNSS, Section 52 of BSA). A response that makes a legal point without such a citation is non-compliant.
2. **Cite Case Law:** Where appropriate, support your explanation with relevant case law and its citation in italics (e.g., *Party A v. Party B*, (Year) SC XXX).`

// Compose builds the prompt for s. It is a pure function of its input;
// callers must Validate first.
func Compose(s State) string {
	var b strings.Builder

	b.WriteString(promptPersona)
	b.WriteString("\n\n")

	fmt.Fprintf(&b, promptAudience, s.Audience)
	b.WriteString("\n\n")

	b.WriteString("**Legal Context:** The query is specifically about the following Indian legal codes:\n")
	for _, l := range s.SelectedLaws {
		fmt.Fprintf(&b, "- %s (%s)\n", l.FullName(), l)
	}
	b.WriteString("Base your answer primarily on these selected laws.\n\n")

	if s.QueryFocus != "" && s.QueryFocus != law.DefaultFocus {
		fmt.Fprintf(&b, promptFocus, s.QueryFocus)
		b.WriteString("\n\n")
	}

	if s.OutputLanguage != "" && s.OutputLanguage != law.English {
		fmt.Fprintf(&b, promptLanguageOther, s.OutputLanguage, s.OutputLanguage)
	} else {
		b.WriteString(promptLanguageEnglish)
	}
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "**User's Query:**\n\"%s\"\n\n", s.Query)

	b.WriteString("**Your Response:**\nProvide a comprehensive answer.\n")
	b.WriteString(promptFormatting)
	b.WriteString("\n\n")
	b.WriteString(promptDirectives)
	b.WriteString("\n")

	return b.String()
}
