// Package audit appends a capped trail of mutating operations to the
// document.
package audit

import (
	"time"

	"github.com/google/uuid"

	"github.com/mercaplaza/mercaplaza/internal/document"
	"github.com/mercaplaza/mercaplaza/pkg/authz"
)

// MaxEntries bounds the audit trail; the oldest entries are dropped first.
const MaxEntries = 2500

// Record appends an entry for the given actor and action.
func Record(doc *document.Document, actor authz.Actor, action string, details map[string]any) {
	doc.AuditLog = append(doc.AuditLog, document.AuditEntry{
		ID:          uuid.New(),
		At:          time.Now().UTC(),
		ActorUserID: actor.UserID,
		ActorRole:   actor.Role,
		Action:      action,
		Details:     details,
	})
	if overflow := len(doc.AuditLog) - MaxEntries; overflow > 0 {
		doc.AuditLog = append([]document.AuditEntry(nil), doc.AuditLog[overflow:]...)
	}
}
