// Package alerts records safety escalations for the human support team.
// Today the sink is the structured log stream, which downstream alerting
// watches; swapping in a paging integration only needs another
// domain.AlertNotifier.
package alerts

import (
	"context"

	"go.uber.org/zap"
)

// LogNotifier emits escalation events as structured log entries.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a log-backed escalation notifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// NotifyAlert implements domain.AlertNotifier.
func (n *LogNotifier) NotifyAlert(_ context.Context, sessionID, severity string, matchedTerms []string) error {
	n.logger.Error("SAFETY ALERT: human follow-up required",
		zap.String("session_id", sessionID),
		zap.String("severity", severity),
		zap.Strings("matched_terms", matchedTerms))
	return nil
}
