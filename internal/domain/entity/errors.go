package entity

import "errors"

// Sentinel errors returned by entity validation and lookup methods.
// Usecase packages wrap these with fmt.Errorf("...: %w", err) and callers
// classify with errors.Is.
var (
	ErrNodeNotFound         = errors.New("entity: node not found")
	ErrNodeHasParent        = errors.New("entity: non-root node requires a parent")
	ErrInvalidNodeKind      = errors.New("entity: invalid node kind")
	ErrSubscriptionRequired = errors.New("entity: node kind requires a subscription")
	ErrInvalidUpdateInterval = errors.New("entity: update interval must be -2, -1, or a positive number of minutes")
	ErrInvalidCacheLimit    = errors.New("entity: cache limit must be DEFAULT, DISABLE, UNLIMITED, or a positive count")
	ErrInvalidFilterPath    = errors.New("entity: filter must be a shell command or an .xsl file")
	ErrDiscontinued         = errors.New("entity: subscription is discontinued")
	ErrEmptyRuleSet         = errors.New("entity: rule set has no rules")
	ErrUnknownRuleInfo      = errors.New("entity: unknown rule info id")
)
