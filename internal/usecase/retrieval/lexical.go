package retrieval

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/origenlabs/origen/internal/domain"
)

// Semantic search on short proper-noun questions ("Who is X?") routinely
// underperforms plain substring matching on the exact name. The lexical
// fallback is a deliberate second-chance lookup over the raw document text,
// triggered by the orchestrator when retrieval comes back weak. It is not a
// replacement for semantic search.

// keywordStopwords are interrogative and filler tokens excluded from name guesses.
var keywordStopwords = map[string]struct{}{
	"quien": {}, "quién": {}, "quienes": {}, "quiénes": {}, "que": {}, "qué": {},
	"cual": {}, "cuál": {}, "fue": {}, "es": {}, "son": {}, "del": {}, "de": {},
	"la": {}, "el": {}, "los": {}, "las": {}, "un": {}, "una": {}, "para": {},
	"sobre": {}, "en": {}, "lo": {}, "al": {}, "como": {}, "cómo": {}, "por": {},
	"porque": {}, "porqué": {}, "donde": {}, "dónde": {}, "cuando": {}, "cuándo": {},
	"se": {}, "su": {}, "sus": {}, "mi": {}, "mis": {}, "tu": {}, "tus": {},
	"y": {}, "o": {}, "pero": {}, "también": {}, "tambien": {}, "acerca": {},
	"persona": {},
}

var (
	interrogativePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:^|\s)qu[ií]en es\s+(.+)`),
		regexp.MustCompile(`(?:^|\s)qu[ií]en fue\s+(.+)`),
		regexp.MustCompile(`(?:^|\s)qu[ií]enes son\s+(.+)`),
		regexp.MustCompile(`(?:^|\s)who is\s+(.+)`),
		regexp.MustCompile(`(?:^|\s)who was\s+(.+)`),
	}
	punctuationRe   = regexp.MustCompile(`[¿¡?!]`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
	leadingArticle  = regexp.MustCompile(`^(el|la|los|las)\s+`)
	sentenceCut     = regexp.MustCompile(`[?.!]`)
	properNameRe    = regexp.MustCompile(`[A-ZÁÉÍÓÚÑ][\p{L}\p{N}_]+(?:\s+[A-ZÁÉÍÓÚÑ][\p{L}\p{N}_]+){0,2}`)
	significantToks = regexp.MustCompile(`[a-záéíóúñ]{3,}`)
)

// LexicalFallback scans the raw (pre-chunking) document text for candidate
// phrases extracted from the question: "who is X" style interrogatives,
// capitalized multi-word spans, and leading/trailing significant-token name
// guesses. Each match yields a whitespace-collapsed window prefixed with the
// source identifier. Returns the joined snippets and the key terms used.
func LexicalFallback(question string, docs []domain.Document, window, maxSnippets int) (string, []string) {
	if question == "" {
		return "", nil
	}

	normalized := punctuationRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(question)), " ")
	normalized = strings.TrimSpace(whitespaceRe.ReplaceAllString(normalized, " "))

	var candidates []string
	seen := make(map[string]struct{})
	addCandidate := func(phrase string) {
		if phrase == "" {
			return
		}
		if _, ok := seen[phrase]; ok {
			return
		}
		seen[phrase] = struct{}{}
		candidates = append(candidates, phrase)
	}

	termSet := make(map[string]struct{})
	addTerms := func(phrase string) {
		for _, tok := range strings.Fields(phrase) {
			if _, stop := keywordStopwords[tok]; stop || utf8.RuneCountInString(tok) < 3 {
				continue
			}
			termSet[tok] = struct{}{}
		}
	}

	// "Who is ..." style interrogatives
	for _, p := range interrogativePatterns {
		m := p.FindStringSubmatch(normalized)
		if m == nil {
			continue
		}
		fragment := strings.TrimSpace(sentenceCut.Split(m[1], 2)[0])
		fragment = leadingArticle.ReplaceAllString(fragment, "")
		addCandidate(fragment)
		addTerms(fragment)
	}

	// Capitalized spans in the original question
	for _, name := range properNameRe.FindAllString(punctuationRe.ReplaceAllString(question, " "), -1) {
		lower := strings.ToLower(strings.TrimSpace(name))
		addCandidate(lower)
		addTerms(lower)
	}

	// First and last significant tokens as name guesses
	tokens := make([]string, 0, 8)
	for _, tok := range significantToks.FindAllString(normalized, -1) {
		if _, stop := keywordStopwords[tok]; stop {
			continue
		}
		tokens = append(tokens, tok)
		termSet[tok] = struct{}{}
	}
	if len(tokens) >= 2 {
		addCandidate(strings.Join(tokens[:2], " "))
		addCandidate(strings.Join(tokens[len(tokens)-2:], " "))
	}

	keyTerms := make([]string, 0, len(termSet))
	for t := range termSet {
		keyTerms = append(keyTerms, t)
	}

	if len(candidates) == 0 {
		return "", keyTerms
	}

	var snippets []string
	for _, doc := range docs {
		contentLower := strings.ToLower(doc.Text)
		found := false
		for _, phrase := range candidates {
			idx := strings.Index(contentLower, phrase)
			if idx == -1 {
				continue
			}
			snippets = append(snippets, doc.ID+": "+snippetWindow(doc.Text, idx, window))
			found = true
			break
		}
		if !found && len(tokens) > 0 {
			core := tokens
			if len(core) > 3 {
				core = core[:3]
			}
			all := true
			for _, tok := range core {
				if !strings.Contains(contentLower, tok) {
					all = false
					break
				}
			}
			if all {
				if idx := strings.Index(contentLower, core[0]); idx != -1 {
					snippets = append(snippets, doc.ID+": "+snippetWindow(doc.Text, idx, window))
				}
			}
		}
		if len(snippets) >= maxSnippets {
			break
		}
	}

	if len(snippets) > maxSnippets {
		snippets = snippets[:maxSnippets]
	}
	return strings.Join(snippets, "\n"), keyTerms
}

// snippetWindow extracts a whitespace-collapsed window centered on idx,
// clamped to valid rune boundaries.
func snippetWindow(content string, idx, window int) string {
	start := idx - window/2
	if start < 0 {
		start = 0
	}
	end := idx + window
	if end > len(content) {
		end = len(content)
	}
	for start > 0 && !utf8.RuneStart(content[start]) {
		start--
	}
	for end < len(content) && !utf8.RuneStart(content[end]) {
		end++
	}
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(content[start:end], " "))
}
