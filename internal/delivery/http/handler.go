package http

import (
	"errors"
	"html/template"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/carcompare/backend/internal/delivery/view"
	"github.com/carcompare/backend/internal/domain"
	"github.com/carcompare/backend/internal/usecase"
	"github.com/gin-gonic/gin"
)

// DefaultKeepAlive is how often an open event stream refreshes its session
const DefaultKeepAlive = 15 * time.Second

// Handler holds dependencies for HTTP handlers
type Handler struct {
	sessions  *usecase.SessionService
	selector  *usecase.SelectorService
	catalog   domain.CarsCatalog
	pages     *template.Template
	keepAlive time.Duration
}

// HandlerOption configures a Handler
type HandlerOption func(*Handler)

// WithKeepAlive sets the event stream keep-alive interval. It must be shorter
// than the session TTL for open pages to keep their sessions.
func WithKeepAlive(d time.Duration) HandlerOption {
	return func(h *Handler) {
		if d > 0 {
			h.keepAlive = d
		}
	}
}

// NewHandler creates a new HTTP handler
func NewHandler(sessions *usecase.SessionService, selector *usecase.SelectorService, catalog domain.CarsCatalog, opts ...HandlerOption) *Handler {
	h := &Handler{
		sessions:  sessions,
		selector:  selector,
		catalog:   catalog,
		pages:     template.Must(template.New("pages").Parse(pageTemplates)),
		keepAlive: DefaultKeepAlive,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// QueryRequest carries the current text of an input
type QueryRequest struct {
	Text string `json:"text"`
}

// PickRequest carries the suggestion the user chose
type PickRequest struct {
	Value string `json:"value" binding:"required"`
}

// ComparisonResponse is the comparison area of the page
type ComparisonResponse struct {
	Busy  bool                   `json:"busy"`
	State domain.ComparisonState `json:"state"`
	Cards []*view.Card           `json:"cards"`
	Error string                 `json:"error,omitempty"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "carcompare-backend",
		"version": "1.0.0",
	})
}

// Index serves the comparison page
func (h *Handler) Index(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := h.pages.ExecuteTemplate(c.Writer, "index", nil); err != nil {
		log.Printf("[HTTP] render index: %v", err)
	}
}

// CompareStateless compares ?a= and ?b= without a session and renders the cards as HTML
func (h *Handler) CompareStateless(c *gin.Context) {
	nameA := c.Query("a")
	nameB := c.Query("b")

	result, err := usecase.NewComparisonService(h.catalog).Compare(c.Request.Context(), nameA, nameB)

	status := http.StatusOK
	if err != nil {
		status = statusFor(err)
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	data := gin.H{
		"A":     nameA,
		"B":     nameB,
		"Cards": view.BuildCards(result),
		"Error": result.Message(),
	}
	if err := h.pages.ExecuteTemplate(c.Writer, "compare", data); err != nil {
		log.Printf("[HTTP] render compare: %v", err)
	}
}

// CreateSession opens a session for a new page
func (h *Handler) CreateSession(c *gin.Context) {
	session := h.sessions.Create()
	c.JSON(http.StatusCreated, gin.H{
		"id":        session.ID,
		"createdAt": session.CreatedAt,
	})
}

// CloseSession tears a session down
func (h *Handler) CloseSession(c *gin.Context) {
	if err := h.sessions.Close(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateQuery records a keystroke; suggestions arrive later on the event stream
func (h *Handler) UpdateQuery(c *gin.Context) {
	session, slot, ok := h.sessionSlot(c)
	if !ok {
		return
	}

	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if err := session.Suggestions().OnQueryChange(slot, req.Text); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

// PickSuggestion commits a suggestion into its input and returns the slot
func (h *Handler) PickSuggestion(c *gin.Context) {
	session, slot, ok := h.sessionSlot(c)
	if !ok {
		return
	}

	var req PickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if err := session.Suggestions().OnSuggestionPick(slot, req.Value); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session.Suggestions().Snapshot(slot))
}

// Blur schedules the slot's list to close
func (h *Handler) Blur(c *gin.Context) {
	session, slot, ok := h.sessionSlot(c)
	if !ok {
		return
	}

	if err := session.Suggestions().OnBlur(slot); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

// GetSlot returns the slot's text and suggestion list
func (h *Handler) GetSlot(c *gin.Context) {
	session, slot, ok := h.sessionSlot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, session.Suggestions().Snapshot(slot))
}

// Events streams suggestion list changes as server-sent events. The stream
// opens with the current state of both slots. While it stays open the session
// is kept alive and a comment line is sent every keep-alive interval.
func (h *Handler) Events(c *gin.Context) {
	id := c.Param("id")
	session, err := h.sessions.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}

	updates, err := session.Subscribe()
	if err != nil {
		respondError(c, err)
		return
	}
	defer session.Unsubscribe(updates)

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	for _, slot := range domain.Slots {
		state := session.Suggestions().Snapshot(slot)
		c.SSEvent("suggestions", domain.SuggestionUpdate{
			Slot:        slot,
			SlotName:    state.Slot,
			Suggestions: state.Suggestions,
		})
	}
	c.Writer.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			if !h.sessions.Touch(id) {
				return false
			}
			_, err := io.WriteString(w, ": keep-alive\n\n")
			return err == nil
		case update, ok := <-updates:
			if !ok {
				return false
			}
			c.SSEvent("suggestions", update)
			return true
		}
	})
}

// Compare runs the session's comparison with whatever the inputs hold
func (h *Handler) Compare(c *gin.Context) {
	session, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := session.Compare(c.Request.Context())
	if errors.Is(err, domain.ErrComparisonBusy) {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if err != nil {
		status = statusFor(err)
	}
	snap := session.Comparison().Snapshot()
	c.JSON(status, ComparisonResponse{
		Busy:  snap.Busy,
		State: domain.StateFor(err),
		Cards: view.BuildCards(result),
		Error: result.Message(),
	})
}

// GetComparison returns the comparison area as it currently stands
func (h *Handler) GetComparison(c *gin.Context) {
	session, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	snap := session.Comparison().Snapshot()
	c.JSON(http.StatusOK, ComparisonResponse{
		Busy:  snap.Busy,
		State: snap.State,
		Cards: view.BuildCards(snap.Result),
		Error: snap.Result.Message(),
	})
}

// ListMakes returns the makes for the selector; restricted plans get an empty list
func (h *Handler) ListMakes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"makes": h.selector.Makes(c.Request.Context())})
}

// ListModels returns the models of a make for the selector
func (h *Handler) ListModels(c *gin.Context) {
	makeName := c.Param("make")
	c.JSON(http.StatusOK, gin.H{
		"make":   makeName,
		"models": h.selector.Models(c.Request.Context(), makeName),
	})
}

// sessionSlot resolves :id and :slot, writing the error response itself on failure
func (h *Handler) sessionSlot(c *gin.Context) (*usecase.Session, domain.Slot, bool) {
	session, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return nil, 0, false
	}

	slot, err := domain.ParseSlot(c.Param("slot"))
	if err != nil {
		respondError(c, err)
		return nil, 0, false
	}

	return session, slot, true
}

// respondError writes err with its status. Comparison failures carry the user-facing message.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	message := err.Error()

	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrEmptyMatch),
		domain.IsNetworkError(err):
		message = domain.UserMessage(err)
	case errors.Is(err, domain.ErrComparisonBusy):
		message = "A comparison is already in progress"
	case errors.Is(err, domain.ErrSessionNotFound):
		message = "Session not found or expired"
	}

	if status >= http.StatusInternalServerError {
		log.Printf("[HTTP] %s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{"error": message})
}

// statusFor maps an error category to an HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidSlot):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrEmptyMatch), errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrComparisonBusy):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}
