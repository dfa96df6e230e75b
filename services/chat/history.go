package chat

import (
	"sort"
	"time"

	"enrolla/models"
	"enrolla/services/intelligence"
)

// reconcileHistory orders a session's turns by best-effort timestamp and
// partitions them at the last assistant turn: everything up to and including
// it is settled context, everything after it is pending. Only user-authored
// pending turns contribute to the current round's combined utterance.
func reconcileHistory(messages []models.Message) (settled []intelligence.Turn, pending []string) {
	ordered := make([]models.Message, len(messages))
	copy(ordered, messages)
	sort.SliceStable(ordered, func(i, j int) bool {
		return effectiveTimestamp(ordered[i]).Before(effectiveTimestamp(ordered[j]))
	})

	lastAssistant := -1
	for i, m := range ordered {
		if m.Role == models.RoleAssistant {
			lastAssistant = i
		}
	}

	for i, m := range ordered {
		if i <= lastAssistant {
			if m.Role == models.RoleUser || m.Role == models.RoleAssistant {
				settled = append(settled, intelligence.Turn{Role: m.Role, Content: m.Body})
			}
			continue
		}
		if m.Role == models.RoleUser && m.Body != "" {
			pending = append(pending, m.Body)
		}
	}
	return settled, pending
}

// effectiveTimestamp prefers the channel-origin timestamp for user turns,
// since the channel can deliver messages to storage out of send order. A
// timestamp without an explicit zone is read as UTC; anything unparseable
// sorts to epoch zero.
func effectiveTimestamp(m models.Message) time.Time {
	if m.Role == models.RoleUser && m.WaTimestamp != "" {
		if ts, err := time.Parse(time.RFC3339, m.WaTimestamp); err == nil {
			return ts
		}
		if ts, err := time.ParseInLocation("2006-01-02T15:04:05", m.WaTimestamp, time.UTC); err == nil {
			return ts
		}
		return time.Time{}
	}
	return m.CreatedAt
}
