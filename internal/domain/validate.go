package domain

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError carries a field-to-message map for client-side input
// rejection. Requests that fail validation are never sent to the backend.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// FieldError returns the message for a field, or "" if the field is valid.
func (e *ValidationError) FieldError(field string) string {
	return e.Fields[field]
}

// ValidateCreateSessionData checks required fields before any network call.
// Values are trimmed before the emptiness check.
func ValidateCreateSessionData(data CreateSessionData) error {
	fields := map[string]string{}
	if strings.TrimSpace(data.Repo) == "" {
		fields["repo"] = "repository is required"
	}
	if strings.TrimSpace(data.TargetBranch) == "" {
		fields["targetBranch"] = "target branch is required"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// ValidatePromptContent rejects empty or whitespace-only prompt content.
func ValidatePromptContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return &ValidationError{Fields: map[string]string{"content": "message cannot be empty"}}
	}
	return nil
}
