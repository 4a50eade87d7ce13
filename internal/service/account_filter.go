package service

import (
	"fmt"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"

	"github.com/tophhie/pds-welcomer/internal/domain/model"
)

// AccountFilter decides whether a listing entry takes part in a dispatch run.
// Entries it rejects end as skipped_filtered without touching the record store.
type AccountFilter func(ref model.AccountRef) bool

// AllowAll is the default filter.
func AllowAll(model.AccountRef) bool { return true }

// AllowDIDs admits only the listed DIDs. An empty list admits everything.
func AllowDIDs(dids ...string) AccountFilter {
	allowed := make(map[string]struct{}, len(dids))
	for _, did := range dids {
		if did = strings.TrimSpace(did); did != "" {
			allowed[did] = struct{}{}
		}
	}
	if len(allowed) == 0 {
		return AllowAll
	}
	return func(ref model.AccountRef) bool {
		_, ok := allowed[ref.DID]
		return ok
	}
}

// JMESPathFilter compiles expr and admits entries for which it yields a truthy value.
// The expression sees {"did","head","rev","active"}. An evaluation error rejects the entry.
func JMESPathFilter(expr string) (AccountFilter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return AllowAll, nil
	}

	compiled, err := jmespath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile account filter %q: %w", expr, err)
	}

	return func(ref model.AccountRef) bool {
		out, err := compiled.Search(listingEntry(ref))
		if err != nil {
			return false
		}
		return truthy(out)
	}, nil
}

// AllOf admits an entry only when every non-nil filter admits it.
func AllOf(filters ...AccountFilter) AccountFilter {
	active := make([]AccountFilter, 0, len(filters))
	for _, f := range filters {
		if f != nil {
			active = append(active, f)
		}
	}
	if len(active) == 0 {
		return AllowAll
	}
	return func(ref model.AccountRef) bool {
		for _, f := range active {
			if !f(ref) {
				return false
			}
		}
		return true
	}
}

// NewAccountFilter builds the configured filter from an allow-list and an optional expression.
func NewAccountFilter(allowedDIDs []string, expr string) (AccountFilter, error) {
	exprFilter, err := JMESPathFilter(expr)
	if err != nil {
		return nil, err
	}
	return AllOf(AllowDIDs(allowedDIDs...), exprFilter), nil
}

func listingEntry(ref model.AccountRef) map[string]any {
	return map[string]any{
		"did":    ref.DID,
		"head":   ref.Head,
		"rev":    ref.Rev,
		"active": ref.Active,
	}
}

// truthy follows JMESPath falsiness: false, null, "", [] and {} are false.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}
