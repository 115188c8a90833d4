package catalog

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// StoreKey is the echo context key holding the request's *Store.
const StoreKey = "catalogStore"

// StoreFrom returns the store attached to the request by the session
// middleware.
func StoreFrom(c echo.Context) (*Store, error) {
	store, ok := c.Get(StoreKey).(*Store)
	if !ok || store == nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "no catalog bound to request")
	}
	return store, nil
}

// Handlers provides HTTP handlers for catalog operations.
type Handlers struct{}

// NewHandlers creates a new catalog handlers instance.
func NewHandlers() *Handlers {
	return &Handlers{}
}

// RegisterRoutes registers catalog routes on an Echo group.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("", h.GetSnapshot)
	g.GET("/items", h.ListItems)
	g.POST("/items", h.AddItem)
	g.GET("/draft", h.GetDraft)
	g.PATCH("/draft", h.UpdateDraft)
	g.DELETE("/draft", h.ResetDraft)
	g.POST("/draft/submit", h.SubmitDraft)
	g.PUT("/dialog", h.SetDialog)
	g.PUT("/category", h.SetCategory)
	g.GET("/categories", h.ListCategories)
	g.GET("/icons", h.ListIcons)
}

// GetSnapshot returns the full catalog state.
// GET /api/v1/catalog
func (h *Handlers) GetSnapshot(c echo.Context) error {
	store, err := StoreFrom(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, store.Snapshot())
}

// ListItems returns the filtered view.
// GET /api/v1/catalog/items
func (h *Handlers) ListItems(c echo.Context) error {
	store, err := StoreFrom(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, store.FilteredView())
}

// AddItem commits the item described by the request body.
// POST /api/v1/catalog/items
func (h *Handlers) AddItem(c echo.Context) error {
	store, err := StoreFrom(c)
	if err != nil {
		return err
	}

	var patch DraftPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	item, err := store.Add(patch.Apply(NewDraft()))
	if err != nil {
		return addError(c, err)
	}
	return c.JSON(http.StatusCreated, item)
}

// GetDraft returns the draft being composed.
// GET /api/v1/catalog/draft
func (h *Handlers) GetDraft(c echo.Context) error {
	store, err := StoreFrom(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, store.Draft())
}

// UpdateDraft applies field edits to the draft.
// PATCH /api/v1/catalog/draft
func (h *Handlers) UpdateDraft(c echo.Context) error {
	store, err := StoreFrom(c)
	if err != nil {
		return err
	}

	var patch DraftPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return c.JSON(http.StatusOK, store.UpdateDraft(patch))
}

// ResetDraft discards the draft.
// DELETE /api/v1/catalog/draft
func (h *Handlers) ResetDraft(c echo.Context) error {
	store, err := StoreFrom(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, store.ResetDraft())
}

// SubmitDraft commits the current draft.
// POST /api/v1/catalog/draft/submit
func (h *Handlers) SubmitDraft(c echo.Context) error {
	store, err := StoreFrom(c)
	if err != nil {
		return err
	}

	item, err := store.Submit()
	if err != nil {
		return addError(c, err)
	}
	return c.JSON(http.StatusCreated, item)
}

type dialogRequest struct {
	Open *bool `json:"open"`
}

// SetDialog opens or dismisses the add dialog.
// PUT /api/v1/catalog/dialog
func (h *Handlers) SetDialog(c echo.Context) error {
	store, err := StoreFrom(c)
	if err != nil {
		return err
	}

	var req dialogRequest
	if err := c.Bind(&req); err != nil || req.Open == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "open is required")
	}

	if *req.Open {
		store.OpenDialog()
	} else {
		store.CloseDialog()
	}
	return c.JSON(http.StatusOK, map[string]any{
		"dialogOpen": store.DialogOpen(),
		"draft":      store.Draft(),
	})
}

type categoryRequest struct {
	Category *Filter `json:"category"`
}

// SetCategory switches the active category tab.
// PUT /api/v1/catalog/category
func (h *Handlers) SetCategory(c echo.Context) error {
	store, err := StoreFrom(c)
	if err != nil {
		return err
	}

	var req categoryRequest
	if err := c.Bind(&req); err != nil || req.Category == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "category must be \"all\" or a known category")
	}

	store.SetCategory(*req.Category)
	return c.JSON(http.StatusOK, map[string]any{
		"activeCategory": store.ActiveCategory(),
		"items":          store.FilteredView(),
	})
}

// ListCategories returns the category labels in tab order.
// GET /api/v1/catalog/categories
func (h *Handlers) ListCategories(c echo.Context) error {
	return c.JSON(http.StatusOK, Categories)
}

// ListIcons returns the placeholder icon for each media type.
// GET /api/v1/catalog/icons
func (h *Handlers) ListIcons(c echo.Context) error {
	return c.JSON(http.StatusOK, IconTable())
}

func addError(c echo.Context, err error) error {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": MessageTitleRequired,
			"field": verr.Field,
		})
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
