// Package chat orchestrates the answer pipeline: safety evaluation, semantic
// answer cache, context retrieval with lexical fallback, knowledge-source
// classification, prompt assembly, generation, and post-processing. Any step
// may short-circuit the rest; per-request failures degrade the pipeline
// instead of aborting it.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/origenlabs/origen/internal/domain"
	"github.com/origenlabs/origen/internal/metrics"
	"github.com/origenlabs/origen/internal/usecase/retrieval"
)

const (
	// answerPrefix marks every assistant reply with the bot identity.
	answerPrefix = "🏔️ "

	emptyQuestionReply = "Hermano/hermana, no has compartido tu inquietud. ¿En qué puedo ayudarte?"

	generationFailedReply = "No pude generar una respuesta en este momento. Por favor intenta de nuevo."

	genericDeclineReply = "No puedo responder esa solicitud. Por favor reformula tu pregunta con un enfoque académico/" +
		"informativo y sin incluir contenido sensible."

	safeContextHeader = "A continuación te comparto información general relevante basada en documentos disponibles:\n\n"

	keywordSnippetHeader = "Coincidencias por palabras clave:\n"

	alertNotifyTimeout = 5 * time.Second
)

// Answer modes.
const (
	ModeRAGOnly   = "rag_only"
	ModeHybrid    = "hybrid"
	ModeModelOnly = "model_only"
)

// Params holds orchestration tuning.
type Params struct {
	AnswerMode          string
	HybridMinSimilarity float64
	LexicalWindow       int
	LexicalMaxSnippets  int
	HistoryMaxTurns     int
	RefusalMarkers      []string
	InstitutionKeywords []string
	Departments         map[string]string
}

// Service is the answer orchestrator.
type Service struct {
	source     DocumentSource
	indexer    Indexer
	retriever  Retriever
	memory     Memory
	classifier Classifier
	safety     SafetyEvaluator
	generator  Generator
	notifier   domain.AlertNotifier
	history    History

	params Params
	logger *zap.Logger

	// docMu guards documents; reload swaps the slice wholesale.
	docMu     sync.RWMutex
	documents []domain.Document
}

// New creates the orchestrator. Documents are loaded lazily; call
// ReloadDocuments at startup to warm the set.
func New(
	source DocumentSource,
	indexer Indexer,
	retriever Retriever,
	memory Memory,
	classifier Classifier,
	safety SafetyEvaluator,
	generator Generator,
	notifier domain.AlertNotifier,
	history History,
	params Params,
	log *zap.Logger,
) *Service {
	return &Service{
		source:     source,
		indexer:    indexer,
		retriever:  retriever,
		memory:     memory,
		classifier: classifier,
		safety:     safety,
		generator:  generator,
		notifier:   notifier,
		history:    history,
		params:     params,
		logger:     log,
	}
}

// ReloadDocuments re-reads the knowledge directory and invalidates the index
// so the next question revalidates against the new document set.
func (s *Service) ReloadDocuments(ctx context.Context) (int, error) {
	docs, err := s.source.Load()
	if err != nil {
		return 0, err
	}

	s.docMu.Lock()
	s.documents = docs
	s.docMu.Unlock()

	s.indexer.Invalidate()
	s.logger.Info("Documents reloaded", zap.Int("documents", len(docs)))
	return len(docs), nil
}

// Ask answers one question. sessionID may be empty; history is only recorded
// and replayed for real sessions.
func (s *Service) Ask(ctx context.Context, sessionID, question string) (string, error) {
	log := s.logger
	question = strings.TrimSpace(question)
	if question == "" {
		return answerPrefix + emptyQuestionReply, nil
	}

	// 1. Safety evaluation short-circuits everything else.
	if decision := s.safety.Evaluate(question); decision.Triggered {
		return s.answerSafety(ctx, sessionID, question, decision), nil
	}

	recent := s.recentHistory(ctx, sessionID)

	// 2. Semantic answer cache.
	if answer, ok := s.answerFromMemory(ctx, question); ok {
		metrics.AnswerSourceTotal.WithLabelValues("memory").Inc()
		s.appendHistory(ctx, sessionID, question, answer)
		return answer, nil
	}

	// 3. Context retrieval, degraded to empty on any failure.
	docs := s.snapshotDocuments()
	result := s.searchContext(ctx, question, docs)

	bestSim := result.BestScore
	contextText := result.Context
	hasContext := strings.TrimSpace(contextText) != ""

	// 4. Lexical fallback when retrieval is weak.
	keywordEvidence := false
	var keywordTerms []string
	if !hasContext || bestSim < s.params.HybridMinSimilarity {
		snippets, terms := retrieval.LexicalFallback(question, docs, s.params.LexicalWindow, s.params.LexicalMaxSnippets)
		if snippets != "" {
			keywordEvidence = true
			keywordTerms = terms
			if contextText != "" {
				contextText += "\n---\n" + keywordSnippetHeader + snippets
			} else {
				contextText = keywordSnippetHeader + snippets
			}
			hasContext = true
			if floor := s.params.HybridMinSimilarity * 0.95; bestSim < floor {
				bestSim = floor
			}
			log.Debug("Lexical fallback merged into context", zap.Strings("key_terms", terms))
		}
	}

	reasoningNotes := buildReasoningNotes(contextText, keywordTerms)

	// Domain evidence outranks a general-knowledge guess.
	contextReliable := (hasContext && bestSim >= s.params.HybridMinSimilarity) || keywordEvidence

	// 5. Classification plus answer-mode fusion.
	clsResult := s.classifier.Classify(question, bestSim, hasContext)

	allowGeneral := false
	switch s.params.AnswerMode {
	case ModeModelOnly:
		allowGeneral = true
		hasContext = false
		contextText = ""
		contextReliable = false
	case ModeHybrid:
		allowGeneral = !contextReliable
	default: // rag_only keeps whatever context exists, however weak
	}

	var promptGeneral *domain.ClassificationResult
	if allowGeneral {
		g := clsResult
		if !g.IsGeneralKnowledge {
			g.IsGeneralKnowledge = true
			if g.Category == "" {
				g.Category = "general"
			}
			if g.Confidence == 0 {
				g.Confidence = 0.4
			}
			if g.Reason == "" {
				g.Reason = "sin señales claras"
			}
			g.Reason += " + fallback sin contexto"
		}
		promptGeneral = &g
	}

	log.Debug("Answer mode decided",
		zap.String("mode", s.params.AnswerMode),
		zap.Float64("best_similarity", bestSim),
		zap.Bool("context_reliable", contextReliable),
		zap.Bool("allow_general_knowledge", allowGeneral),
		zap.Bool("is_general", clsResult.IsGeneralKnowledge),
		zap.String("classifier_reason", clsResult.Reason))

	// 6. Generation.
	prompt := s.buildPrompt(promptInput{
		question:        question,
		context:         contextText,
		hasContext:      hasContext,
		allowGeneral:    allowGeneral,
		bestSimilarity:  bestSim,
		general:         promptGeneral,
		keywordEvidence: keywordEvidence,
		reasoningNotes:  reasoningNotes,
		history:         recent,
	})

	raw, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		log.Error("Generation failed", zap.Error(err))
		metrics.AnswerSourceTotal.WithLabelValues("fallback").Inc()
		raw = generationFailedReply
	} else {
		// 7. Refusal-marker substitution.
		raw = s.substituteRefusal(raw, result, log)
		switch {
		case contextReliable:
			metrics.AnswerSourceTotal.WithLabelValues("context").Inc()
		case allowGeneral:
			metrics.AnswerSourceTotal.WithLabelValues("general").Inc()
		default:
			metrics.AnswerSourceTotal.WithLabelValues("context").Inc()
		}
	}

	final := answerPrefix + strings.TrimSpace(raw)

	// 8. Cache the answer; negative answers are rejected by the cache itself.
	if err := s.memory.Insert(ctx, question, raw); err != nil {
		log.Warn("Failed to cache answer", zap.Error(err))
	}

	s.appendHistory(ctx, sessionID, question, final)
	return final, nil
}

// answerSafety formats the crisis reply, escalates when required, and records
// the exchange. It never consults cache, retrieval, or generation.
func (s *Service) answerSafety(ctx context.Context, sessionID, question string, decision domain.SafetyDecision) string {
	log := s.logger
	metrics.SafetyTriggersTotal.WithLabelValues(decision.Severity).Inc()
	metrics.AnswerSourceTotal.WithLabelValues("safety").Inc()
	log.Warn("Safety protocol triggered",
		zap.String("severity", decision.Severity),
		zap.Strings("matched_terms", decision.MatchedTerms),
		zap.Bool("alert_required", decision.AlertRequired))

	if decision.AlertRequired && s.notifier != nil {
		// Fire-and-forget: escalation failure never affects the answer.
		go func(sessionID string, d domain.SafetyDecision) {
			nctx, cancel := context.WithTimeout(context.Background(), alertNotifyTimeout)
			defer cancel()
			if err := s.notifier.NotifyAlert(nctx, sessionID, d.Severity, d.MatchedTerms); err != nil {
				s.logger.Error("Failed to send safety alert", zap.Error(err))
			}
		}(sessionID, decision)
	}

	var lines []string
	switch {
	case decision.Label != "":
		lines = append(lines, "Nivel de riesgo detectado: "+decision.Label)
	case decision.Severity != "":
		lines = append(lines, "Nivel de riesgo detectado: "+strings.ToUpper(decision.Severity))
	}
	if msg := strings.TrimSpace(decision.Message); msg != "" {
		lines = append(lines, msg)
	}
	if len(decision.Recommendations) > 0 {
		lines = append(lines, "Pasos sugeridos:")
		for _, step := range decision.Recommendations {
			lines = append(lines, "- "+step)
		}
	}
	if decision.AlertRequired {
		lines = append(lines, "🚨 Se ha activado una alerta para el equipo humano de apoyo.")
	}

	body := strings.TrimSpace(strings.Join(lines, "\n"))
	if body == "" {
		body = "Se han detectado señales de riesgo y se prioriza tu seguridad."
	}

	reply := answerPrefix + body
	s.appendHistory(ctx, sessionID, question, reply)
	return reply
}

// answerFromMemory consults the cache. A stale negative answer persisted by
// an older build is discarded here as well, not just at insertion.
func (s *Service) answerFromMemory(ctx context.Context, question string) (string, bool) {
	log := s.logger
	answer, score, hit, err := s.memory.Lookup(ctx, question)
	if err != nil {
		log.Warn("Answer cache lookup failed", zap.Error(err))
		return "", false
	}
	if !hit {
		return "", false
	}
	if s.memory.IsNegative(answer) {
		log.Debug("Discarding cached negative answer", zap.Float64("score", score))
		return "", false
	}
	log.Info("Answer served from cache", zap.Float64("score", score))
	return answerPrefix + strings.TrimSpace(answer), true
}

// searchContext builds the index and runs semantic search, treating every
// failure as an empty result.
func (s *Service) searchContext(ctx context.Context, question string, docs []domain.Document) domain.QueryResult {
	log := s.logger

	ix, err := s.indexer.GetOrBuild(ctx, docs)
	if err != nil {
		if errors.Is(err, domain.ErrIndexUnavailable) {
			log.Warn("Embedding index unavailable, continuing without context", zap.Error(err))
		} else {
			log.Error("Failed to build embedding index", zap.Error(err))
		}
		return domain.QueryResult{}
	}

	result, err := s.retriever.Search(ctx, question, ix)
	if err != nil {
		log.Warn("Context search failed, continuing without context", zap.Error(err))
		return domain.QueryResult{}
	}
	return result
}

// substituteRefusal replaces generator refusals with a safe fallback built
// from retrieved context, or a generic decline when none exists.
func (s *Service) substituteRefusal(raw string, result domain.QueryResult, log *zap.Logger) string {
	lower := strings.ToLower(raw)
	refused := false
	for _, marker := range s.params.RefusalMarkers {
		if marker != "" && strings.Contains(lower, strings.ToLower(marker)) {
			refused = true
			break
		}
	}
	if !refused {
		return raw
	}

	log.Warn("Generator refusal detected, substituting safe fallback")
	if result.HasRelevantContent && result.Context != "" {
		excerpt := result.Context
		if runes := []rune(excerpt); len(runes) > 800 {
			excerpt = string(runes[:800])
		}
		return safeContextHeader + excerpt
	}
	return genericDeclineReply
}

func (s *Service) snapshotDocuments() []domain.Document {
	s.docMu.RLock()
	defer s.docMu.RUnlock()
	return s.documents
}

func (s *Service) recentHistory(ctx context.Context, sessionID string) []domain.ChatTurn {
	if sessionID == "" {
		return nil
	}
	turns, err := s.history.Recent(ctx, sessionID, s.params.HistoryMaxTurns)
	if err != nil {
		s.logger.Warn("Failed to load session history", zap.Error(err))
		return nil
	}
	return turns
}

func (s *Service) appendHistory(ctx context.Context, sessionID, question, answer string) {
	if sessionID == "" {
		return
	}
	log := s.logger
	if err := s.history.Append(ctx, sessionID, "user", question); err != nil {
		log.Warn("Failed to record user turn", zap.Error(err))
		return
	}
	if err := s.history.Append(ctx, sessionID, "assistant", answer); err != nil {
		log.Warn("Failed to record assistant turn", zap.Error(err))
	}
}

// Status summarizes orchestrator readiness for the status endpoint.
type Status struct {
	DocumentsLoaded     int  `json:"documents_loaded"`
	GeneratorConfigured bool `json:"generator_configured"`
}

// ServiceStatus reports the current document count and generator readiness.
func (s *Service) ServiceStatus() Status {
	s.docMu.RLock()
	defer s.docMu.RUnlock()
	return Status{
		DocumentsLoaded:     len(s.documents),
		GeneratorConfigured: s.generator.IsConfigured(),
	}
}
