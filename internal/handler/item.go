package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/yourorg/itemvault/internal/domain"
	"github.com/yourorg/itemvault/internal/observability/metrics"
	"github.com/yourorg/itemvault/internal/security/audit"
	"github.com/yourorg/itemvault/internal/security/middleware"
	"github.com/yourorg/itemvault/internal/service"
)

// ItemHandler handles the ownership-scoped item endpoints. Every route is
// mounted behind middleware.RequireAuth, so the claims in the context are
// always present and the owner id never comes from the request body.
type ItemHandler struct {
	itemService *service.ItemService
	auditLog    *audit.Logger
	logger      *slog.Logger
}

// NewItemHandler creates a new item handler
func NewItemHandler(itemService *service.ItemService, auditLog *audit.Logger, logger *slog.Logger) *ItemHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &ItemHandler{
		itemService: itemService,
		auditLog:    auditLog,
		logger:      logger,
	}
}

// CreateItemRequest represents an item creation body. Price and quantity stay
// raw so string-typed and malformed numbers normalize instead of failing.
type CreateItemRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       json.RawMessage `json:"price"`
	Quantity    json.RawMessage `json:"quantity"`
}

// UpdateItemRequest represents an item update body
type UpdateItemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ItemResponse is the wire representation of an item
type ItemResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	CreatedAt   string  `json:"created_at"`
}

func toItemResponse(item *domain.Item) ItemResponse {
	return ItemResponse{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Price:       item.Price,
		Quantity:    item.Quantity,
		CreatedAt:   item.CreatedAt.UTC().Truncate(time.Second).Format(time.RFC3339),
	}
}

func callerID(r *http.Request) string {
	return middleware.GetClaimsFromContext(r.Context()).UserID
}

// Create handles POST /items
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	owner := callerID(r)
	item, err := h.itemService.Create(r.Context(), owner, service.CreateItemInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
	})
	if err != nil {
		metrics.ObserveItemOperation("create", "failure")
		writeDomainError(w, err)
		return
	}

	metrics.ObserveItemOperation("create", "success")
	h.auditLog.LogItemMutation(r.Context(), owner, "create", item.ID, "success")

	writeJSON(w, http.StatusCreated, toItemResponse(item))
}

// List handles GET /items
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.itemService.List(r.Context(), callerID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toItemResponse(item))
	}

	writeJSON(w, http.StatusOK, out)
}

// Get handles GET /items/{id}
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.itemService.Get(r.Context(), callerID(r), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toItemResponse(item))
}

// Update handles PUT /items/{id}
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	owner := callerID(r)
	id := r.PathValue("id")

	item, err := h.itemService.Update(r.Context(), owner, id, req.Name, req.Description)
	if err != nil {
		metrics.ObserveItemOperation("update", "failure")
		writeDomainError(w, err)
		return
	}

	metrics.ObserveItemOperation("update", "success")
	h.auditLog.LogItemMutation(r.Context(), owner, "update", id, "success")

	writeJSON(w, http.StatusOK, toItemResponse(item))
}

// Delete handles DELETE /items/{id}
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner := callerID(r)
	id := r.PathValue("id")

	if err := h.itemService.Delete(r.Context(), owner, id); err != nil {
		metrics.ObserveItemOperation("delete", "failure")
		writeDomainError(w, err)
		return
	}

	metrics.ObserveItemOperation("delete", "success")
	h.auditLog.LogItemMutation(r.Context(), owner, "delete", id, "success")

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
