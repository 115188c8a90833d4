package catalog

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/samber/mo"
)

type pageData struct {
	Snapshot
	Categories []Category
	MediaTypes []MediaType
	Notice     *Notice
}

// Page renders the catalog grid as HTML.
type Page struct {
	tpl *template.Template
}

// NewPage parses index.html from fsys.
func NewPage(fsys fs.FS) (*Page, error) {
	tpl, err := template.New("index.html").Funcs(template.FuncMap{
		"icon":         IconFor,
		"fallbackIcon": func() string { return FallbackIcon },
		"opt":          func(o mo.Option[string]) string { return o.OrEmpty() },
	}).ParseFS(fsys, "index.html")
	if err != nil {
		return nil, fmt.Errorf("parse page template: %w", err)
	}
	return &Page{tpl: tpl}, nil
}

func (p *Page) render(c echo.Context, status int, snap Snapshot, notice *Notice) error {
	var buf bytes.Buffer
	err := p.tpl.Execute(&buf, pageData{
		Snapshot:   snap,
		Categories: Categories,
		MediaTypes: MediaTypes,
		Notice:     notice,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "render page").SetInternal(err)
	}
	return c.HTMLBlob(status, buf.Bytes())
}

// PageHandlers serves the browser page backed by the session's store.
type PageHandlers struct {
	page *Page
}

// NewPageHandlers creates page handlers rendering through page.
func NewPageHandlers(page *Page) *PageHandlers {
	return &PageHandlers{page: page}
}

// RegisterRoutes registers the page routes.
func (h *PageHandlers) RegisterRoutes(g *echo.Group) {
	g.GET("/", h.Index)
	g.POST("/items", h.SubmitForm)
	g.POST("/dialog", h.SetDialogForm)
}

// Index renders the grid. The category parameter switches the tab and
// dialog=open shows the add dialog. Both only change view state; closing
// the dialog discards the draft and therefore goes through POST /dialog.
// GET /
func (h *PageHandlers) Index(c echo.Context) error {
	store, err := StoreFrom(c)
	if err != nil {
		return err
	}

	if raw := c.QueryParam("category"); raw != "" {
		f, err := ParseFilter(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		store.SetCategory(f)
	}

	if c.QueryParam("dialog") == "open" {
		store.OpenDialog()
	}

	var notice *Notice
	if n, ok := store.TakeFlash(); ok {
		notice = &n
	}
	return h.page.render(c, http.StatusOK, store.Snapshot(), notice)
}

// SetDialogForm opens or dismisses the add dialog from the page.
// POST /dialog
func (h *PageHandlers) SetDialogForm(c echo.Context) error {
	store, err := StoreFrom(c)
	if err != nil {
		return err
	}

	switch c.FormValue("open") {
	case "true":
		store.OpenDialog()
	case "false":
		store.CloseDialog()
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "open must be true or false")
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

// SubmitForm copies the form into the draft and commits it.
// POST /items
func (h *PageHandlers) SubmitForm(c echo.Context) error {
	store, err := StoreFrom(c)
	if err != nil {
		return err
	}

	form, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}

	var patch DraftPatch
	if v, ok := formValue(form, "type"); ok {
		t, err := ParseMediaType(*v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		patch.Type = &t
	}
	if v, ok := formValue(form, "category"); ok {
		cat, err := ParseCategory(*v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		patch.Category = &cat
	}
	// The form carries the whole draft. Browsers post every rendered
	// input, so a blank optional field means unset.
	patch.Title, _ = formValue(form, "title")
	patch.Description = optionalFormValue(form, "description")
	patch.URL = optionalFormValue(form, "url")
	patch.Content = optionalFormValue(form, "content")
	patch.Thumbnail = optionalFormValue(form, "thumbnail")

	store.ResetDraft()
	store.UpdateDraft(patch)
	if _, err := store.Submit(); err != nil {
		store.OpenDialog()
		return h.page.render(c, http.StatusBadRequest, store.Snapshot(), &Notice{
			Level:   NoticeError,
			Message: MessageTitleRequired,
		})
	}
	store.SetFlash(Notice{Level: NoticeSuccess, Message: MessageAdded})
	return c.Redirect(http.StatusSeeOther, "/")
}

func formValue(form map[string][]string, key string) (*string, bool) {
	vals, ok := form[key]
	if !ok || len(vals) == 0 {
		return nil, false
	}
	v := vals[0]
	return &v, true
}

func optionalFormValue(form map[string][]string, key string) *string {
	v, ok := formValue(form, key)
	if !ok || *v == "" {
		return nil
	}
	return v
}
