package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/snippetvault/snippetvault/internal/models"
	"github.com/snippetvault/snippetvault/internal/services"
	apperrors "github.com/snippetvault/snippetvault/pkg/errors"
	"github.com/snippetvault/snippetvault/pkg/response"
	"github.com/snippetvault/snippetvault/pkg/validator"
)

var errSnippetNotFound = apperrors.NewNotFound("Snippet not found")

// SnippetHandler exposes the snippet persistence service over REST.
type SnippetHandler struct {
	svc *services.SnippetService
}

// NewSnippetHandler constructs the handler once a service is supplied.
func NewSnippetHandler(svc *services.SnippetService) *SnippetHandler {
	return &SnippetHandler{svc: svc}
}

type snippetDTO struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	CodeContent string    `json:"code_content"`
	Language    string    `json:"language"`
	Description *string   `json:"description,omitempty"`
	Tags        []string  `json:"tags"`
	IsFavorite  bool      `json:"is_favorite"`
	CreatedAt   time.Time `json:"created_at"`
}

func mapSnippet(snippet *models.Snippet) snippetDTO {
	return snippetDTO{
		ID:          snippet.ID,
		Title:       snippet.Title,
		CodeContent: snippet.CodeContent,
		Language:    snippet.Language,
		Description: snippet.Description,
		Tags:        snippet.TagList(),
		IsFavorite:  snippet.IsFavorite,
		CreatedAt:   snippet.CreatedAt,
	}
}

// snippetRequest mirrors the JSON body accepted by Create and Update. Identity
// fields are deliberately absent; id and created_at are server-owned.
type snippetRequest struct {
	Title       string   `json:"title"`
	CodeContent string   `json:"code_content"`
	Language    string   `json:"language"`
	Description *string  `json:"description"`
	Tags        []string `json:"tags"`
	IsFavorite  *bool    `json:"is_favorite"`
}

func (r snippetRequest) toInput() services.SnippetInput {
	input := services.SnippetInput{
		Title:       r.Title,
		CodeContent: r.CodeContent,
		Language:    r.Language,
		Description: r.Description,
		Tags:        r.Tags,
	}
	if r.IsFavorite != nil {
		input.IsFavorite = *r.IsFavorite
	}
	return input
}

func parseSnippetID(c *gin.Context) (uint, bool) {
	raw := strings.TrimSpace(c.Param("id"))
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		response.Error(c, apperrors.NewBadRequest("snippet id must be a positive integer"))
		return 0, false
	}
	return uint(id), true
}

func (h *SnippetHandler) writeServiceError(c *gin.Context, err error) {
	var failures validator.ValidationErrors
	switch {
	case errors.As(err, &failures):
		response.ValidationFailed(c, failures)
	case errors.Is(err, services.ErrSnippetNotFound):
		response.Error(c, errSnippetNotFound)
	default:
		response.Error(c, apperrors.Wrap(err, "store operation failed"))
	}
}

// List handles GET /api/snippets with an optional search query parameter.
func (h *SnippetHandler) List(c *gin.Context) {
	snippets, err := h.svc.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	dtos := make([]snippetDTO, 0, len(snippets))
	for i := range snippets {
		dtos = append(dtos, mapSnippet(&snippets[i]))
	}

	response.List(c, http.StatusOK, dtos, len(dtos))
}

// Get handles GET /api/snippets/:id.
func (h *SnippetHandler) Get(c *gin.Context) {
	id, ok := parseSnippetID(c)
	if !ok {
		return
	}

	snippet, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, mapSnippet(snippet))
}

// Create handles POST /api/snippets.
func (h *SnippetHandler) Create(c *gin.Context) {
	var body snippetRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, apperrors.NewBadRequest("invalid snippet payload"))
		return
	}

	snippet, err := h.svc.Create(c.Request.Context(), body.toInput())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.SuccessWithMessage(c, http.StatusCreated, "Snippet created successfully", mapSnippet(snippet))
}

// Update handles PUT /api/snippets/:id.
func (h *SnippetHandler) Update(c *gin.Context) {
	id, ok := parseSnippetID(c)
	if !ok {
		return
	}

	var body snippetRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, apperrors.NewBadRequest("invalid snippet payload"))
		return
	}

	snippet, err := h.svc.Update(c.Request.Context(), id, body.toInput())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.SuccessWithMessage(c, http.StatusOK, "Snippet updated successfully", mapSnippet(snippet))
}

// Delete handles DELETE /api/snippets/:id and returns the deleted snapshot.
func (h *SnippetHandler) Delete(c *gin.Context) {
	id, ok := parseSnippetID(c)
	if !ok {
		return
	}

	snippet, err := h.svc.Delete(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.SuccessWithMessage(c, http.StatusOK, "Snippet deleted successfully", mapSnippet(snippet))
}
