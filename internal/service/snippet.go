package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Rohitkumar43/coditor/internal/apperror"
	"github.com/Rohitkumar43/coditor/internal/model"
	"github.com/Rohitkumar43/coditor/internal/repository"
)

// Validation constants for snippets and comments.
const (
	MaxSnippetTitleLength = 100
	MaxCommentLength      = 10000
)

// SnippetService handles saved snippets, their stars, and their comments.
type SnippetService struct {
	snippets repository.SnippetRepository
	stars    repository.StarRepository
	comments repository.CommentRepository
	users    repository.UserRepository
	logger   *slog.Logger
}

// NewSnippetService creates a SnippetService.
func NewSnippetService(
	snippets repository.SnippetRepository,
	stars repository.StarRepository,
	comments repository.CommentRepository,
	users repository.UserRepository,
	logger *slog.Logger,
) *SnippetService {
	return &SnippetService{
		snippets: snippets,
		stars:    stars,
		comments: comments,
		users:    users,
		logger:   logger,
	}
}

// Create validates and saves a new snippet for the caller. The owner's
// display name is denormalized onto the snippet at creation time so listings
// render without a join.
func (s *SnippetService) Create(ctx context.Context, caller, title, language, code string) (*model.Snippet, error) {
	if caller == "" {
		return nil, apperror.Unauthenticated("not authenticated")
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "snippet title is required")
	}
	if len(title) > MaxSnippetTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("snippet title must be %d characters or less", MaxSnippetTitleLength))
	}
	if strings.TrimSpace(language) == "" {
		return nil, apperror.ValidationFailed("language", "language is required")
	}
	if len(code) > MaxCodeLength {
		return nil, apperror.ValidationFailed("code",
			fmt.Sprintf("code must be %d characters or less", MaxCodeLength))
	}

	// Resolve the author's display name. A caller who never hit the sync
	// webhook still gets to save; the name just stays empty.
	userName := ""
	if user, err := s.users.GetUserBySubject(ctx, caller); err == nil {
		userName = user.Name
	} else if !isNotFound(err) {
		return nil, fmt.Errorf("resolving snippet author: %w", err)
	}

	snippet := &model.Snippet{
		UserID:   caller,
		Title:    title,
		Language: strings.TrimSpace(language),
		Code:     code,
		UserName: userName,
	}
	if err := s.snippets.CreateSnippet(ctx, snippet); err != nil {
		s.logger.Error("failed to create snippet",
			slog.String("title", title),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating snippet: %w", err)
	}

	s.logger.Info("snippet created",
		slog.String("id", snippet.ID),
		slog.String("userID", caller),
	)

	return snippet, nil
}

// GetByID retrieves a snippet. Returns apperror.ErrNotFound if it does not
// exist.
func (s *SnippetService) GetByID(ctx context.Context, id string) (*model.Snippet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "snippet ID is required")
	}

	return s.snippets.GetSnippetByID(ctx, id)
}

// List retrieves snippets newest first with limit/offset pagination.
func (s *SnippetService) List(ctx context.Context, limit, offset int) ([]model.Snippet, error) {
	snippets, err := s.snippets.ListSnippets(ctx, repository.ListOptions{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		s.logger.Error("failed to list snippets", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing snippets: %w", err)
	}

	return snippets, nil
}

// Delete removes a snippet. Only the owner may delete it. Stars pointing at
// the snippet are intentionally left behind; the stats aggregator skips them.
func (s *SnippetService) Delete(ctx context.Context, caller, id string) error {
	if caller == "" {
		return apperror.Unauthenticated("not authenticated")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "snippet ID is required")
	}

	snippet, err := s.snippets.GetSnippetByID(ctx, id)
	if err != nil {
		return err
	}
	if snippet.UserID != caller {
		return apperror.Forbidden("only the owner can delete this snippet")
	}

	if err := s.snippets.DeleteSnippet(ctx, id); err != nil {
		return err
	}

	s.logger.Info("snippet deleted", slog.String("id", id))
	return nil
}

// ToggleStar stars or unstars the snippet for the caller. Returns true when
// the snippet ends up starred. The snippet must exist to be starred, but an
// existing star survives snippet deletion.
func (s *SnippetService) ToggleStar(ctx context.Context, caller, snippetID string) (bool, error) {
	if caller == "" {
		return false, apperror.Unauthenticated("not authenticated")
	}
	snippetID = strings.TrimSpace(snippetID)
	if snippetID == "" {
		return false, apperror.ValidationFailed("snippetId", "snippet ID is required")
	}

	if _, err := s.snippets.GetSnippetByID(ctx, snippetID); err != nil {
		return false, err
	}

	starred, err := s.stars.ToggleStar(ctx, caller, snippetID)
	if err != nil {
		return false, fmt.Errorf("toggling star: %w", err)
	}

	return starred, nil
}

// StarInfo returns the snippet's star count and whether the caller (if any)
// has starred it.
func (s *SnippetService) StarInfo(ctx context.Context, caller, snippetID string) (count int, starred bool, err error) {
	snippetID = strings.TrimSpace(snippetID)
	if snippetID == "" {
		return 0, false, apperror.ValidationFailed("snippetId", "snippet ID is required")
	}

	count, err = s.stars.CountSnippetStars(ctx, snippetID)
	if err != nil {
		return 0, false, fmt.Errorf("counting stars: %w", err)
	}

	if caller != "" {
		starred, err = s.stars.IsStarred(ctx, caller, snippetID)
		if err != nil {
			return 0, false, fmt.Errorf("checking star: %w", err)
		}
	}

	return count, starred, nil
}

// StarredSnippets resolves the caller's stars to snippets, newest star
// first. Stars whose snippet has been deleted are silently skipped.
func (s *SnippetService) StarredSnippets(ctx context.Context, caller string) ([]model.Snippet, error) {
	if caller == "" {
		return nil, apperror.Unauthenticated("not authenticated")
	}

	stars, err := s.stars.ListStarsByUser(ctx, caller)
	if err != nil {
		return nil, fmt.Errorf("listing stars: %w", err)
	}

	snippets := make([]model.Snippet, 0, len(stars))
	for _, star := range stars {
		snippet, err := s.snippets.GetSnippetByID(ctx, star.SnippetID)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("resolving starred snippet %s: %w", star.SnippetID, err)
		}
		snippets = append(snippets, *snippet)
	}

	return snippets, nil
}

// AddComment attaches a comment to a snippet for the caller.
func (s *SnippetService) AddComment(ctx context.Context, caller, snippetID, content string) (*model.Comment, error) {
	if caller == "" {
		return nil, apperror.Unauthenticated("not authenticated")
	}
	snippetID = strings.TrimSpace(snippetID)
	if snippetID == "" {
		return nil, apperror.ValidationFailed("snippetId", "snippet ID is required")
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperror.ValidationFailed("content", "comment content is required")
	}
	if len(content) > MaxCommentLength {
		return nil, apperror.ValidationFailed("content",
			fmt.Sprintf("comment must be %d characters or less", MaxCommentLength))
	}

	if _, err := s.snippets.GetSnippetByID(ctx, snippetID); err != nil {
		return nil, err
	}

	userName := ""
	if user, err := s.users.GetUserBySubject(ctx, caller); err == nil {
		userName = user.Name
	} else if !isNotFound(err) {
		return nil, fmt.Errorf("resolving comment author: %w", err)
	}

	comment := &model.Comment{
		SnippetID: snippetID,
		UserID:    caller,
		UserName:  userName,
		Content:   content,
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("creating comment: %w", err)
	}

	return comment, nil
}

// Comments lists a snippet's comments, newest first.
func (s *SnippetService) Comments(ctx context.Context, snippetID string) ([]model.Comment, error) {
	snippetID = strings.TrimSpace(snippetID)
	if snippetID == "" {
		return nil, apperror.ValidationFailed("snippetId", "snippet ID is required")
	}

	comments, err := s.comments.ListSnippetComments(ctx, snippetID)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}

	return comments, nil
}

// DeleteComment removes a comment. Only its author may delete it.
func (s *SnippetService) DeleteComment(ctx context.Context, caller, commentID string) error {
	if caller == "" {
		return apperror.Unauthenticated("not authenticated")
	}
	commentID = strings.TrimSpace(commentID)
	if commentID == "" {
		return apperror.ValidationFailed("id", "comment ID is required")
	}

	comment, err := s.comments.GetCommentByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != caller {
		return apperror.Forbidden("only the author can delete this comment")
	}

	return s.comments.DeleteComment(ctx, commentID)
}
