package domain

// SafetyDecision is the outcome of one safety evaluation. Produced fresh on
// every call; the machine keeps no state across requests.
type SafetyDecision struct {
	Triggered bool
	// Severity is the name of the matched level ("high", "moderate", "low").
	Severity string
	Label    string
	// Message is the level's response template with the resource list appended.
	Message         string
	MatchedTerms    []string
	Recommendations []string
	// AlertRequired is set only for the most severe level and obliges the
	// orchestrator to invoke the escalation notifier.
	AlertRequired bool
}
