package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/snippetvault/snippetvault/internal/models"
	"github.com/snippetvault/snippetvault/pkg/logger"
	"github.com/snippetvault/snippetvault/pkg/metrics"
	"github.com/snippetvault/snippetvault/pkg/validator"
)

var (
	// ErrSnippetNotFound indicates the requested snippet does not exist.
	ErrSnippetNotFound = errors.New("snippet service: snippet not found")
)

// SnippetService owns durable CRUD and search over the snippet table. Every
// operation runs as a single statement against the shared connection pool.
type SnippetService struct {
	db    *gorm.DB
	audit *AuditService
	log   *zap.Logger
}

// NewSnippetService constructs a snippet service. The audit service is
// optional; when nil only structured log lines are emitted.
func NewSnippetService(db *gorm.DB, audit *AuditService) (*SnippetService, error) {
	if db == nil {
		return nil, errors.New("snippet service: db is required")
	}
	return &SnippetService{
		db:    db,
		audit: audit,
		log:   logger.WithModule("snippets"),
	}, nil
}

// SnippetInput carries the mutable snippet fields for Create and Update. The
// same validation rules apply to both operations.
type SnippetInput struct {
	Title       string   `json:"title" validate:"required,max=255"`
	CodeContent string   `json:"code_content" validate:"required"`
	Language    string   `json:"language" validate:"required,max=50"`
	Description *string  `json:"description"`
	Tags        []string `json:"tags" validate:"omitempty,dive,required"`
	IsFavorite  bool     `json:"is_favorite"`
}

func (in *SnippetInput) normalise() {
	in.Title = strings.TrimSpace(in.Title)
	in.CodeContent = strings.TrimSpace(in.CodeContent)
	in.Language = strings.TrimSpace(in.Language)

	if in.Description != nil {
		desc := strings.TrimSpace(*in.Description)
		if desc == "" {
			in.Description = nil
		} else {
			in.Description = &desc
		}
	}

	for i := range in.Tags {
		in.Tags[i] = strings.TrimSpace(in.Tags[i])
	}
}

// validate trims the input and reports every failing field at once. Nothing is
// persisted when validation fails.
func (in *SnippetInput) validate() error {
	in.normalise()
	return validator.ValidateStruct(in)
}

func (in *SnippetInput) apply(snippet *models.Snippet) {
	snippet.Title = in.Title
	snippet.CodeContent = in.CodeContent
	snippet.Language = in.Language
	snippet.Description = in.Description

	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	snippet.Tags = datatypes.JSONSlice[string](tags)
	snippet.IsFavorite = in.IsFavorite
}

// List retrieves snippets ordered by creation time descending. A non-empty
// search matches case-insensitive substrings of title or language, or an exact
// tag element.
func (s *SnippetService) List(ctx context.Context, search string) ([]models.Snippet, error) {
	start := time.Now()
	ctx = ensureContext(ctx)
	search = strings.TrimSpace(search)

	tx := s.db.WithContext(ctx).Model(&models.Snippet{})
	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		tx = tx.Where(
			s.db.Where("LOWER(title) LIKE ?", like).
				Or("LOWER(language) LIKE ?", like).
				Or(datatypes.JSONArrayQuery("tags").Contains(search)),
		)
	}

	var snippets []models.Snippet
	err := tx.Order("created_at DESC, id DESC").Find(&snippets).Error
	s.observe(ctx, "snippet.list", start, int64(len(snippets)), err, map[string]any{"search": search})
	if err != nil {
		return nil, err
	}
	return snippets, nil
}

// Get retrieves a snippet by identifier.
func (s *SnippetService) Get(ctx context.Context, id uint) (*models.Snippet, error) {
	start := time.Now()
	ctx = ensureContext(ctx)

	snippet, err := s.fetch(ctx, id)
	rows := int64(0)
	if snippet != nil {
		rows = 1
	}
	s.observe(ctx, "snippet.get", start, rows, err, map[string]any{"id": id})
	return snippet, err
}

// Create validates the input, persists a new snippet, and returns the stored
// row including the generated identifier and creation timestamp.
func (s *SnippetService) Create(ctx context.Context, input SnippetInput) (*models.Snippet, error) {
	start := time.Now()
	ctx = ensureContext(ctx)

	if err := input.validate(); err != nil {
		s.observe(ctx, "snippet.create", start, 0, err, nil)
		return nil, err
	}

	var snippet models.Snippet
	input.apply(&snippet)

	result := s.db.WithContext(ctx).Create(&snippet)
	s.observe(ctx, "snippet.create", start, result.RowsAffected, result.Error, map[string]any{"id": snippet.ID})
	if result.Error != nil {
		return nil, result.Error
	}
	return &snippet, nil
}

// Update fully replaces the mutable fields of an existing snippet. The
// identifier and creation timestamp are never altered. Concurrent updates are
// not coordinated; the last statement wins.
func (s *SnippetService) Update(ctx context.Context, id uint, input SnippetInput) (*models.Snippet, error) {
	start := time.Now()
	ctx = ensureContext(ctx)

	if err := input.validate(); err != nil {
		s.observe(ctx, "snippet.update", start, 0, err, map[string]any{"id": id})
		return nil, err
	}

	snippet, err := s.fetch(ctx, id)
	if err != nil {
		s.observe(ctx, "snippet.update", start, 0, err, map[string]any{"id": id})
		return nil, err
	}

	input.apply(snippet)

	result := s.db.WithContext(ctx).Save(snippet)
	s.observe(ctx, "snippet.update", start, result.RowsAffected, result.Error, map[string]any{"id": id})
	if result.Error != nil {
		return nil, result.Error
	}
	return snippet, nil
}

// Delete removes a snippet and returns the deleted row's snapshot.
func (s *SnippetService) Delete(ctx context.Context, id uint) (*models.Snippet, error) {
	start := time.Now()
	ctx = ensureContext(ctx)

	snippet, err := s.fetch(ctx, id)
	if err != nil {
		s.observe(ctx, "snippet.delete", start, 0, err, map[string]any{"id": id})
		return nil, err
	}

	result := s.db.WithContext(ctx).Delete(&models.Snippet{}, "id = ?", id)
	err = result.Error
	if err == nil && result.RowsAffected == 0 {
		// Row vanished between the fetch and the delete statement.
		err = ErrSnippetNotFound
	}
	s.observe(ctx, "snippet.delete", start, result.RowsAffected, err, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	return snippet, nil
}

func (s *SnippetService) fetch(ctx context.Context, id uint) (*models.Snippet, error) {
	var snippet models.Snippet
	if err := s.db.WithContext(ctx).First(&snippet, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSnippetNotFound
		}
		return nil, err
	}
	return &snippet, nil
}

// observe emits the structured audit line and persists the audit entry. Audit
// persistence failures are logged and never fail the business operation.
func (s *SnippetService) observe(ctx context.Context, action string, start time.Time, rows int64, opErr error, metadata map[string]any) {
	duration := time.Since(start)
	result := "success"
	if opErr != nil {
		result = "error"
	}

	fields := []zap.Field{
		zap.String("action", action),
		zap.String("result", result),
		zap.Duration("duration", duration),
		zap.Int64("rows", rows),
	}
	if opErr != nil {
		fields = append(fields, zap.Error(opErr))
		s.log.Warn("store operation", fields...)
	} else {
		s.log.Info("store operation", fields...)
	}

	metrics.SnippetOperations.WithLabelValues(action, result).Inc()

	if s.audit == nil {
		return
	}
	entry := AuditEntry{
		Action:   action,
		Resource: "snippet",
		Result:   result,
		Duration: duration,
		Rows:     rows,
		Metadata: metadata,
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.log.Warn("audit record failed", zap.String("action", action), zap.Error(err))
	}
}
