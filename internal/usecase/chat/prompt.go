package chat

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/origenlabs/origen/internal/domain"
)

// Bot identity woven into every generation prompt.
const (
	botName     = "ORIGEN"
	institution = "Universidad del Magdalena"
	inspiration = "Nacida de la unión entre la tecnología viva y la sabiduría de los pueblos indígenas de la Sierra Nevada de Santa Marta"
	mission     = "Responder preguntas sobre la cultura ancestral y tender puentes entre la memoria indígena y el aprendizaje actual"
)

var ancestralPeoples = []string{"Kogui", "Arhuaco", "Wiwa", "Kankuamo"}

const defaultDepartmentHint = "la dependencia correspondiente (por favor especifica tu consulta para orientarte mejor)"

// weakContextSimilarity marks retrieved fragments as supplementary guidance
// in the prompt when the best similarity falls below it.
const weakContextSimilarity = 0.35

var promptWhitespace = regexp.MustCompile(`\s+`)

// promptInput is the assembled state the prompt template renders from.
type promptInput struct {
	question        string
	context         string
	hasContext      bool
	allowGeneral    bool
	bestSimilarity  float64
	general         *domain.ClassificationResult
	keywordEvidence bool
	reasoningNotes  string
	history         []domain.ChatTurn
}

// buildPrompt renders the full generation prompt: identity, response rules,
// retrieved context, reasoning hints, recent history, knowledge-mode
// directives, and the question itself.
func (s *Service) buildPrompt(in promptInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Eres %s, inteligencia cultural de la %s. %s. Honras a los pueblos %s y actúas como puente entre tradición y modernidad.\n",
		botName, institution, inspiration, strings.Join(ancestralPeoples, ", "))
	fmt.Fprintf(&b, "Tu misión es %s.\n\n", mission)
	b.WriteString("Instrucciones de respuesta (breve y práctica):")
	b.WriteString("\n- Responde en 1 a 3 frases, máximo 60 palabras.")
	b.WriteString("\n- No inventes datos concretos; usa el contexto de abajo para fundamentar cuando sea pertinente.")
	b.WriteString("\n- Si el contexto es limitado o poco relevante, puedes complementar con conocimiento general, dejando clara cualquier inferencia y evitando afirmar datos específicos de la Universidad sin evidencia.")
	b.WriteString("\n- No cites fuentes, nombres de archivos ni documentos.")
	b.WriteString("\n- Sé claro y directo. Sin adornos innecesarios.\n\n")

	if in.context != "" {
		fmt.Fprintf(&b, "\nContexto:\n%s\n", in.context)
		if in.allowGeneral && !in.keywordEvidence && in.bestSimilarity < weakContextSimilarity {
			b.WriteString("\nNota: Los fragmentos anteriores tienen coincidencia limitada; úselos como guía complementaria sin asumir que contienen la respuesta completa.\n")
		}
	}

	if in.reasoningNotes != "" {
		fmt.Fprintf(&b, "\nNotas para razonar:\n%s\n", strings.TrimSpace(in.reasoningNotes))
	}

	if len(in.history) > 0 {
		b.WriteString("\nHistorial reciente (resumido):\n")
		for _, turn := range in.history {
			role := botName
			if turn.Role == "user" {
				role = "Usuario"
			}
			text := strings.ReplaceAll(strings.TrimSpace(turn.Content), "\n", " ")
			if runes := []rune(text); len(runes) > 200 {
				text = string(runes[:200]) + "..."
			}
			fmt.Fprintf(&b, "- %s: %s\n", role, text)
		}
	}

	if in.allowGeneral {
		if in.general != nil && in.general.Category != "" {
			fmt.Fprintf(&b, "\nTema amplio identificado: %s. Enlaza ese conocimiento universal con la visión ancestral sin perder la claridad.\n",
				in.general.Category)
		}
		if in.keywordEvidence {
			b.WriteString("\nHay coincidencias textuales en los documentos que debes priorizar; explica quién es la persona usando esos datos y complementa con contexto general solo si es necesario.\n")
		}
	}

	if !in.hasContext && s.isInstitutionRelated(in.question) {
		fmt.Fprintf(&b, "\nSi no cuentas con información suficiente, orienta al estudiante hacia %s.\n",
			s.suggestDepartment(in.question))
	}

	fmt.Fprintf(&b, "\nPregunta del usuario: %s\n", in.question)

	if !s.isInstitutionRelated(in.question) {
		b.WriteString("\nEsta pregunta no es específicamente sobre la universidad, pero como ORIGEN, responde con la sabiduría que combina conocimiento académico y ancestral, manteniendo siempre el respeto y la armonía.\n")
	}

	b.WriteString("\nResponde ahora siguiendo estrictamente las instrucciones de brevedad y precisión.")
	return b.String()
}

// isInstitutionRelated reports whether the question names the institution's
// own domain.
func (s *Service) isInstitutionRelated(question string) bool {
	lower := strings.ToLower(question)
	for _, kw := range s.params.InstitutionKeywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// suggestDepartment maps topic keywords to the office a student should be
// pointed at when no document context answers an institutional question.
// Keywords are checked in sorted order so the suggestion is deterministic.
func (s *Service) suggestDepartment(question string) string {
	lower := strings.ToLower(question)

	keywords := make([]string, 0, len(s.params.Departments))
	for kw := range s.params.Departments {
		keywords = append(keywords, kw)
	}
	sort.Strings(keywords)

	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return s.params.Departments[kw]
		}
	}
	return defaultDepartmentHint
}

// buildReasoningNotes distills short verification hints for the generator:
// the key terms to check and up to two context lines mentioning them.
func buildReasoningNotes(contextText string, keyTerms []string) string {
	if contextText == "" {
		return ""
	}

	var notes []string

	seen := make(map[string]struct{})
	var terms []string
	for _, term := range keyTerms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
		if len(terms) >= 6 {
			break
		}
	}
	if len(terms) > 0 {
		sample := terms
		if len(sample) > 5 {
			sample = sample[:5]
		}
		notes = append(notes, "- Palabras clave a verificar: "+strings.Join(sample, ", "))
	}

	var lines []string
	for _, line := range strings.Split(contextText, "\n") {
		line = strings.TrimSpace(promptWhitespace.ReplaceAllString(line, " "))
		if line != "" {
			lines = append(lines, line)
		}
	}

	var evidence []string
	for _, line := range lines {
		sample := strings.ToLower(line)
		matched := len(terms) == 0
		for _, term := range terms {
			if strings.Contains(sample, term) {
				matched = true
				break
			}
		}
		if matched {
			evidence = append(evidence, line)
		}
		if len(evidence) >= 2 {
			break
		}
	}
	if len(evidence) == 0 && len(lines) > 0 {
		evidence = append(evidence, lines[0])
	}

	var trimmed []string
	for _, item := range evidence {
		if runes := []rune(item); len(runes) > 220 {
			item = strings.TrimRight(string(runes[:217]), " ") + "..."
		}
		trimmed = append(trimmed, item)
	}
	if len(trimmed) > 0 {
		notes = append(notes, "- Evidencia relevante: "+strings.Join(trimmed, " | "))
	}

	return strings.Join(notes, "\n")
}
