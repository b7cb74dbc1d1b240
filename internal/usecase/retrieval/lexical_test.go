package retrieval

import (
	"strings"
	"testing"

	"github.com/origenlabs/origen/internal/domain"
)

func TestLexicalFallback_WhoIsQuestion(t *testing.T) {
	docs := []domain.Document{
		{ID: "historia.txt", Text: "La universidad fue fundada hace décadas. Carlos Vives es un cantante samario reconocido internacionalmente."},
	}

	snippets, terms := LexicalFallback("¿Quién es Carlos Vives?", docs, 220, 3)

	if snippets == "" {
		t.Fatal("expected a snippet for an exact name match")
	}
	if !strings.HasPrefix(snippets, "historia.txt: ") {
		t.Errorf("snippet missing source prefix: %q", snippets)
	}
	if !strings.Contains(strings.ToLower(snippets), "carlos vives") {
		t.Errorf("snippet does not cover the matched name: %q", snippets)
	}
	joined := strings.Join(terms, " ")
	if !strings.Contains(joined, "carlos") || !strings.Contains(joined, "vives") {
		t.Errorf("key terms = %v, want carlos and vives", terms)
	}
}

func TestLexicalFallback_EmptyQuestion(t *testing.T) {
	snippets, terms := LexicalFallback("", []domain.Document{{ID: "a", Text: "text"}}, 220, 3)
	if snippets != "" || terms != nil {
		t.Errorf("got %q / %v, want empty", snippets, terms)
	}
}

func TestLexicalFallback_NoMatchNoSnippets(t *testing.T) {
	docs := []domain.Document{{ID: "a.txt", Text: "contenido sin relación alguna"}}

	snippets, _ := LexicalFallback("¿Quién fue Zzyzx Qwerty?", docs, 220, 3)
	if snippets != "" {
		t.Errorf("got %q, want no snippets", snippets)
	}
}

func TestLexicalFallback_MaxSnippetsCap(t *testing.T) {
	doc := domain.Document{Text: "Carlos Vives nació en Santa Marta."}
	docs := []domain.Document{
		{ID: "a.txt", Text: doc.Text},
		{ID: "b.txt", Text: doc.Text},
		{ID: "c.txt", Text: doc.Text},
		{ID: "d.txt", Text: doc.Text},
	}

	snippets, _ := LexicalFallback("¿Quién es Carlos Vives?", docs, 220, 2)

	if got := len(strings.Split(snippets, "\n")); got != 2 {
		t.Errorf("got %d snippets, want 2", got)
	}
}

func TestLexicalFallback_CollapsesWhitespace(t *testing.T) {
	docs := []domain.Document{
		{ID: "a.txt", Text: "Carlos   Vives\n\nes  un   cantante"},
	}

	snippets, _ := LexicalFallback("Carlos Vives", docs, 220, 3)

	if snippets == "" {
		t.Fatal("expected a snippet")
	}
	if strings.Contains(snippets, "  ") || strings.Contains(snippets, "\n\n") {
		t.Errorf("whitespace not collapsed: %q", snippets)
	}
}
