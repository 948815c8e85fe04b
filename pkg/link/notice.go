package link

import (
	"context"
	"time"

	"github.com/homeline-hub/homeline-go/pkg/eventlog"
	"github.com/homeline-hub/homeline-go/pkg/flow"
	"github.com/homeline-hub/homeline-go/pkg/issue"
)

const (
	// deprecatedYAMLKey is the platform-scoped notice raised when a
	// legacy YAML account was migrated successfully.
	deprecatedYAMLKey = "deprecated_yaml_" + Domain

	// importIssuePrefix prefixes integration-scoped notices for failed
	// legacy imports. The classified failure kind is appended.
	importIssuePrefix = "deprecated_yaml_import_issue_"
)

// ImportIssueKey returns the notice key for a failed legacy import.
// An empty kind yields the generic abandoned-import key.
func ImportIssueKey(kind flow.ErrorCode) string {
	return importIssuePrefix + string(kind)
}

// raiseImportNotice records the import deprecation notice. Success
// routes to the platform-wide channel as a warning; failure routes to
// the integration channel as an error keyed by the classified kind.
// No-op outside import mode. Raise failures are logged, never fatal.
func (s *Session) raiseImportNotice(ctx context.Context, success bool, kind flow.ErrorCode) {
	if s.mode != ModeImport {
		return
	}

	var n *issue.Issue
	if success {
		n = &issue.Issue{
			Scope:    issue.ScopePlatform,
			Key:      deprecatedYAMLKey,
			Severity: issue.SeverityWarning,
			BreaksIn: LegacyConfigRemovedIn,
			Placeholders: map[string]string{
				"domain":            Domain,
				"integration_title": IntegrationTitle,
			},
		}
	} else {
		n = &issue.Issue{
			Scope:    Domain,
			Key:      ImportIssueKey(kind),
			Severity: issue.SeverityError,
			BreaksIn: LegacyConfigRemovedIn,
		}
	}

	if err := s.issues.Raise(ctx, n); err != nil {
		s.logger.Warn("failed to raise import notice",
			"scope", n.Scope, "key", n.Key, "error", err)
		return
	}

	s.events.Log(eventlog.Event{
		Timestamp: time.Now(),
		FlowID:    s.id,
		Mode:      s.mode.String(),
		Category:  eventlog.CategoryIssue,
		Issue: &eventlog.IssueEvent{
			Scope:    n.Scope,
			Key:      n.Key,
			Severity: n.Severity,
		},
	})
}
