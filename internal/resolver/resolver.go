// Package resolver turns freeform recipient input into a deduplicated,
// validated, name-enriched recipient list. Names come from an external
// profile lookup when available, falling back to a heuristic derived
// from the address local-part.
package resolver

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"

	"github.com/ignite/outreach/internal/domain"
	"github.com/ignite/outreach/internal/pkg/logger"
)

// ErrEmptyInput is returned when the raw text argument is missing or blank.
var ErrEmptyInput = errors.New("no emails provided")

// NameLookup is the external profile lookup capability. Implementations
// must treat "no profile" as (name="", found=false), never as an error;
// transport failures are also reported as not-found.
type NameLookup interface {
	Lookup(ctx context.Context, email string) (name string, found bool)
}

// Result holds the classified output of one resolution run.
// Invalid entries keep their original casing and spacing.
type Result struct {
	Valid   []domain.ResolvedRecipient
	Invalid []string
}

var (
	splitRe = regexp.MustCompile(`[\n,;|]+`)
	emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	roleRe  = regexp.MustCompile(`^(admin|support|info|contact|hr|sales)@`)
)

// Resolver runs the recipient resolution pipeline.
type Resolver struct {
	lookup    NameLookup
	batchSize int
}

// New creates a Resolver. lookup may be nil, in which case every name
// comes from the local-part heuristic. batchSize bounds concurrent
// lookups per batch; batches run sequentially.
func New(lookup NameLookup, batchSize int) *Resolver {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &Resolver{lookup: lookup, batchSize: batchSize}
}

// Resolve classifies every token in rawText. Malformed tokens land in
// Invalid verbatim; duplicates (case-insensitive) are dropped silently.
// The only failure mode is blank input.
func (r *Resolver) Resolve(ctx context.Context, rawText string) (Result, error) {
	if strings.TrimSpace(rawText) == "" {
		return Result{}, ErrEmptyInput
	}

	var result Result
	seen := make(map[string]struct{})
	var candidates []string

	for _, token := range splitRe.Split(rawText, -1) {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		email := strings.ToLower(token)
		if _, dup := seen[email]; dup {
			continue
		}
		if emailRe.MatchString(email) {
			seen[email] = struct{}{}
			candidates = append(candidates, email)
		} else {
			result.Invalid = append(result.Invalid, token)
		}
	}

	result.Valid = r.resolveNames(ctx, candidates)

	logger.Info("recipient list resolved",
		"valid", len(result.Valid),
		"invalid", len(result.Invalid),
	)
	return result, nil
}

// resolveNames enriches candidates in bounded batches: members of a
// batch run concurrently, batches run one after another so the lookup
// dependency never sees more than batchSize in-flight calls.
func (r *Resolver) resolveNames(ctx context.Context, candidates []string) []domain.ResolvedRecipient {
	resolved := make([]domain.ResolvedRecipient, len(candidates))

	for start := 0; start < len(candidates); start += r.batchSize {
		end := start + r.batchSize
		if end > len(candidates) {
			end = len(candidates)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				resolved[i] = r.resolveOne(ctx, candidates[i])
			}(i)
		}
		wg.Wait()
	}

	return resolved
}

// resolveOne applies the lookup/heuristic fallback chain to one address.
func (r *Resolver) resolveOne(ctx context.Context, email string) domain.ResolvedRecipient {
	rec := domain.ResolvedRecipient{Email: email, Source: domain.SourceFallback}

	// Role accounts (admin@, support@, ...) never have personal profiles;
	// skip the lookup entirely.
	if r.lookup != nil && !roleRe.MatchString(email) {
		if name, found := r.lookup.Lookup(ctx, email); found {
			rec.Name = name
			rec.Source = domain.SourceOSINT
			return rec
		}
	}

	if name := extractNameFromEmail(email); name != "" {
		rec.Name = name
		rec.Source = domain.SourceHeuristic
	}
	return rec
}
