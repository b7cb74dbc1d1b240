// Package classify implements the heuristic knowledge-source gate: it decides
// whether a question is open general knowledge or belongs to the institution's
// own domain. It is a coarse accumulative scorer, deterministic and monotonic
// in each signal, not a trained classifier.
package classify

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/origenlabs/origen/internal/domain"
)

// Scoring weights and thresholds.
const (
	categoryBaseWeight  = 0.8
	categoryHitWeight   = 0.15
	categoryHitCap      = 3
	prefixWeight        = 0.8
	connectorWeight     = 0.4
	weakContextWeight   = 0.5
	lengthBonus         = 0.2
	lengthBonusTokens   = 5
	similarityLowThresh = 0.32
	activationThreshold = 1.2
)

// generalPrefixes are interrogative openers typical of open-culture questions.
var generalPrefixes = []string{
	"¿qué es", "que es",
	"¿quién es", "quien es",
	"¿quién fue", "quien fue",
	"¿cuál es", "cual es",
	"¿cómo funciona", "como funciona",
	"¿por qué", "por que",
	"what is", "who is", "how does", "why is", "tell me about",
}

// categoryKeywords maps high-level topics to trigger terms, with and without
// accents since users type both.
var categoryKeywords = map[string][]string{
	"ciencia": {
		"átomo", "atomo", "física", "fisica", "biología", "biologia",
		"química", "quimica", "universo", "planeta", "ciencia", "energía",
		"energia", "teoría", "teoria", "gravedad", "evolución", "evolucion",
	},
	"historia": {
		"historia", "revolución", "revolucion", "guerra", "imperio", "presidente",
		"rey", "reina", "civilización", "civilizacion", "siglo", "batalla",
	},
	"tecnología": {
		"tecnología", "tecnologia", "programación", "programacion", "software",
		"internet", "inteligencia artificial", "algoritmo", "computadora",
		"smartphone", "robot", "criptomoneda",
	},
	"cultura": {
		"literatura", "mitología", "mitologia", "arte", "música", "musica",
		"película", "pelicula", "actor", "celebridad", "religión", "religion",
	},
	"deportes": {
		"fútbol", "futbol", "baloncesto", "nba", "mundial", "olímpico",
		"olimpico", "tenis", "selección", "seleccion", "deporte",
	},
}

// categoryOrder fixes the iteration order so equal-weight ties resolve the
// same way on every run.
var categoryOrder = []string{"ciencia", "historia", "tecnología", "cultura", "deportes"}

// generalConnectors are explanation-request words that nudge toward general
// knowledge without being decisive on their own.
var generalConnectors = []string{
	"explica", "describe", "resumen", "cuéntame", "cuentame", "dame datos",
	"información", "informacion", "detalles", "concepto",
}

var classifyWhitespace = regexp.MustCompile(`\s+`)

// Engine scores questions against fixed topical signals. Institution keywords
// short-circuit everything: a question naming the institution is never
// general knowledge no matter what else it contains.
type Engine struct {
	institutionKeywords []string
}

// NewEngine creates a classifier with the given domain-exclusion keywords.
func NewEngine(institutionKeywords []string) *Engine {
	lowered := make([]string, 0, len(institutionKeywords))
	for _, kw := range institutionKeywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			lowered = append(lowered, kw)
		}
	}
	return &Engine{institutionKeywords: lowered}
}

type categorySignal struct {
	category string
	weight   float64
	matches  []string
}

// Classify evaluates a question. bestSimilarity and hasContext describe the
// retrieval outcome for the same question; weak or absent context is itself a
// signal toward general knowledge.
func (e *Engine) Classify(question string, bestSimilarity float64, hasContext bool) domain.ClassificationResult {
	if strings.TrimSpace(question) == "" {
		return domain.ClassificationResult{Reason: "pregunta vacía"}
	}

	normalized := classifyWhitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(question)), " ")

	for _, kw := range e.institutionKeywords {
		if strings.Contains(normalized, kw) {
			return domain.ClassificationResult{Reason: "coincidencia con palabra clave institucional"}
		}
	}

	var score float64
	var reasons []string

	signal := bestCategorySignal(normalized)
	if signal != nil {
		score += signal.weight
		sample := signal.matches
		if len(sample) > 3 {
			sample = sample[:3]
		}
		reasons = append(reasons, fmt.Sprintf("palabras clave de %s: %s", signal.category, strings.Join(sample, ", ")))
	}

	if containsAny(normalized, generalPrefixes) {
		score += prefixWeight
		reasons = append(reasons, "prefijo interrogativo general")
	}
	if containsAny(normalized, generalConnectors) {
		score += connectorWeight
		reasons = append(reasons, "solicitud de explicación")
	}
	if !hasContext || bestSimilarity < similarityLowThresh {
		score += weakContextWeight
		reasons = append(reasons, "sin contexto relevante")
	}
	if len(strings.Fields(normalized)) >= lengthBonusTokens {
		score += lengthBonus
	}

	isGeneral := score >= activationThreshold
	confidence := score / 3
	if confidence > 1 {
		confidence = 1
	}

	category := "general"
	if signal != nil {
		category = signal.category
	}
	reason := "sin señales fuertes"
	if len(reasons) > 0 {
		reason = strings.Join(reasons, "; ")
	}

	return domain.ClassificationResult{
		IsGeneralKnowledge: isGeneral,
		Category:           category,
		Confidence:         confidence,
		Reason:             reason,
	}
}

// bestCategorySignal picks the category with the most distinct keyword hits,
// weighted by hit count with a cap. First category in fixed order wins ties.
func bestCategorySignal(normalized string) *categorySignal {
	var best *categorySignal
	for _, category := range categoryOrder {
		var matches []string
		for _, kw := range categoryKeywords[category] {
			if strings.Contains(normalized, kw) {
				matches = append(matches, kw)
			}
		}
		if len(matches) == 0 {
			continue
		}
		hits := len(matches)
		if hits > categoryHitCap {
			hits = categoryHitCap
		}
		weight := categoryBaseWeight + categoryHitWeight*float64(hits)
		if best == nil || weight > best.weight {
			best = &categorySignal{category: category, weight: weight, matches: matches}
		}
	}
	return best
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
