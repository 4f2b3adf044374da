// Package service contains the business logic layer of the application.
//
// Handlers parse HTTP and write responses; services enforce the rules
// (identity checks, tier gating, aggregation); repositories talk to the
// database. Services receive repository interfaces, never concrete storage
// types, so tests can run them against an in-memory database.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/Rohitkumar43/coditor/internal/apperror"
	"github.com/Rohitkumar43/coditor/internal/model"
	"github.com/Rohitkumar43/coditor/internal/repository"
)

// FreeTierLanguage is the only language available without a pro
// subscription.
const FreeTierLanguage = "javascript"

// MaxCodeLength bounds the stored source text (~100KB).
const MaxCodeLength = 100000

// statsWindow is the trailing activity window reported by UserStats.
const statsWindow = 24 * time.Hour

// ExecutionService records code run attempts and serves the reporting
// surfaces: paginated history and the per-user statistics summary.
type ExecutionService struct {
	executions repository.ExecutionRepository
	users      repository.UserRepository
	stars      repository.StarRepository
	snippets   repository.SnippetRepository
	logger     *slog.Logger

	// now is time.Now in production; tests pin it to exercise the 24h
	// window boundary exactly.
	now func() time.Time
}

// NewExecutionService creates an ExecutionService.
func NewExecutionService(
	executions repository.ExecutionRepository,
	users repository.UserRepository,
	stars repository.StarRepository,
	snippets repository.SnippetRepository,
	logger *slog.Logger,
) *ExecutionService {
	return &ExecutionService{
		executions: executions,
		users:      users,
		stars:      stars,
		snippets:   snippets,
		logger:     logger,
		now:        time.Now,
	}
}

// SaveExecution appends one immutable execution record for the caller.
//
// Rules, checked in order:
//   - caller must be authenticated (non-empty subject), else Unauthenticated
//   - non-pro callers may only record the free-tier language, else
//     TierRestricted; a caller with no user record yet counts as non-pro
//
// result carries the run outcome (output on success, error text on failure).
// On success exactly one record is appended with a server-assigned
// timestamp; a rejection writes nothing.
func (s *ExecutionService) SaveExecution(ctx context.Context, caller, language, code string, result model.RunResult) error {
	if caller == "" {
		return apperror.Unauthenticated("not authenticated")
	}

	language = strings.TrimSpace(language)
	if language == "" {
		return apperror.ValidationFailed("language", "language is required")
	}
	if len(code) > MaxCodeLength {
		return apperror.ValidationFailed("code",
			fmt.Sprintf("code must be %d characters or less", MaxCodeLength))
	}

	if language != FreeTierLanguage {
		user, err := s.users.GetUserBySubject(ctx, caller)
		if err != nil && !isNotFound(err) {
			return fmt.Errorf("checking pro status: %w", err)
		}
		if user == nil || !user.IsPro {
			return apperror.TierRestricted("pro subscription required to use this language")
		}
	}

	exec := &model.Execution{
		UserID:   caller,
		Language: language,
		Code:     code,
		Result:   result,
	}
	if err := s.executions.CreateExecution(ctx, exec); err != nil {
		s.logger.Error("failed to save execution",
			slog.String("userID", caller),
			slog.String("language", language),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("saving execution: %w", err)
	}

	s.logger.Info("execution recorded",
		slog.String("id", exec.ID),
		slog.String("userID", caller),
		slog.String("language", language),
		slog.Bool("succeeded", result.Succeeded()),
	)

	return nil
}

// ListUserExecutions returns one page of the user's executions, newest
// first, with an opaque continuation cursor.
//
// The user filter is applied inside the repository on every page, so a
// crafted cursor can never surface another user's records. A cursor past
// the end yields an empty page, not an error.
func (s *ExecutionService) ListUserExecutions(ctx context.Context, userID, cursor string, limit int) (*repository.ExecutionPage, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperror.ValidationFailed("userId", "user ID is required")
	}

	page, err := s.executions.PageExecutionsByUser(ctx, userID, repository.PageOptions{
		Cursor: cursor,
		Limit:  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("listing executions: %w", err)
	}

	return page, nil
}

// UserStats computes the usage summary for one user.
//
// The summary is a pure function of the store contents at call time; it is
// never persisted and may be recomputed concurrently without coordination.
//
// Tie-break rule: when several languages share the top count (for either
// favorite or most-starred language), the lexicographically smallest name
// wins. The Languages list is likewise sorted, so identical store contents
// always produce identical output.
func (s *ExecutionService) UserStats(ctx context.Context, userID string) (*model.UserStats, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperror.ValidationFailed("userId", "user ID is required")
	}

	// Full history, no pagination: this is an aggregate.
	executions, err := s.executions.ListExecutionsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading executions: %w", err)
	}

	stars, err := s.stars.ListStarsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading stars: %w", err)
	}

	// Frequency table over the languages of starred snippets. A star whose
	// snippet was deleted after starring resolves to nothing and is skipped;
	// it is not an error and contributes nothing to the tally.
	starredLanguages := make(map[string]int)
	for _, star := range stars {
		snippet, err := s.snippets.GetSnippetByID(ctx, star.SnippetID)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("resolving starred snippet %s: %w", star.SnippetID, err)
		}
		if snippet.Language != "" {
			starredLanguages[snippet.Language]++
		}
	}

	// Frequency table over all executions, plus the trailing-24h count.
	// The window is a strict comparison: a record created exactly at
	// now-24h is excluded.
	cutoff := s.now().Add(-statsWindow)
	languageStats := make(map[string]int)
	last24Hours := 0
	for _, e := range executions {
		languageStats[e.Language]++
		if e.CreatedAt.After(cutoff) {
			last24Hours++
		}
	}

	languages := make([]string, 0, len(languageStats))
	for lang := range languageStats {
		languages = append(languages, lang)
	}
	sort.Strings(languages)

	return &model.UserStats{
		TotalExecutions:     len(executions),
		LanguagesCount:      len(languages),
		Languages:           languages,
		Last24Hours:         last24Hours,
		FavoriteLanguage:    topLanguage(languageStats),
		LanguageStats:       languageStats,
		MostStarredLanguage: topLanguage(starredLanguages),
	}, nil
}

// topLanguage picks the language with the highest count, breaking ties by
// lexicographic order (smallest name wins). Returns model.NoLanguage for an
// empty table.
func topLanguage(counts map[string]int) string {
	best := model.NoLanguage
	bestCount := 0
	for lang, count := range counts {
		if count > bestCount || (count == bestCount && bestCount > 0 && lang < best) {
			best = lang
			bestCount = count
		}
	}
	return best
}

func isNotFound(err error) bool {
	return errors.Is(err, apperror.ErrNotFound)
}
