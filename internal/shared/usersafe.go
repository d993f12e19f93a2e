package shared

import (
	"errors"
	"strings"
)

// userSafeRule pairs a predicate over the normalized error text with the
// message shown to end users. Rules are evaluated top to bottom; the first
// match wins, so more specific conditions must come before broader ones.
type userSafeRule struct {
	match   func(msg string) bool
	message string
}

func contains(substrings ...string) func(string) bool {
	return func(msg string) bool {
		for _, s := range substrings {
			if strings.Contains(msg, s) {
				return true
			}
		}
		return false
	}
}

// GenericErrorMessage is the fallback shown when no rule matches.
const GenericErrorMessage = "Something went wrong. Please try again."

var userSafeRules = []userSafeRule{
	{contains("row-level security", "permission denied", "not authorized", "forbidden"),
		"You don't have permission to perform this action."},
	{contains("duplicate key", "already exists", "already registered", "duplicate entry"),
		"A record with this value already exists."},
	{contains("violates foreign key", "is not present in table"),
		"A referenced record could not be found."},
	{contains("null value in column", "violates not-null", "required field"),
		"A required field is missing."},
	{contains("invalid input syntax", "malformed", "invalid uuid"),
		"Some of the entered data is not valid."},
	{contains("deadline exceeded", "timeout", "timed out"),
		"The request took too long. Please try again."},
	{contains("connection refused", "connection reset", "no such host", "network"),
		"Could not reach the server. Check your connection."},
	{contains("jwt", "token is expired", "session revoked", "unauthenticated"),
		"Your session has expired. Please sign in again."},
	{contains("too many requests", "rate limit"),
		"Too many requests. Please wait a moment and retry."},
	{contains("storage", "bucket", "object not found"),
		"File storage is unavailable right now."},
}

// UserSafeMessage maps an internal error onto a message safe to show end
// users. Raw backend text, schema names and stack traces never pass through;
// anything unclassified falls back to a generic message.
func UserSafeMessage(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrForbidden):
		return "You don't have permission to perform this action."
	case errors.Is(err, ErrDuplicate):
		return "A record with this value already exists."
	case errors.Is(err, ErrNotFound):
		return "The requested record could not be found."
	case errors.Is(err, ErrUnauthenticated), errors.Is(err, ErrSessionRevoked):
		return "Your session has expired. Please sign in again."
	}
	msg := strings.ToLower(err.Error())
	for _, rule := range userSafeRules {
		if rule.match(msg) {
			return rule.message
		}
	}
	return GenericErrorMessage
}
