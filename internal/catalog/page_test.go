package catalog

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediahub/mediahub/web"
)

func setupPage(t *testing.T, seed []Item) (*echo.Echo, *Store) {
	t.Helper()

	fsys, err := web.Templates()
	require.NoError(t, err)
	page, err := NewPage(fsys)
	require.NoError(t, err)

	store := NewStore(seed)
	e := echo.New()
	g := e.Group("", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(StoreKey, store)
			return next(c)
		}
	})
	NewPageHandlers(page).RegisterRoutes(g)
	return e, store
}

func getPage(t *testing.T, e *echo.Echo, target string) (*httptest.ResponseRecorder, *goquery.Document) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rec.Body.String()))
	require.NoError(t, err)
	return rec, doc
}

func postForm(e *echo.Echo, form url.Values) *httptest.ResponseRecorder {
	return postFormTo(e, "/items", form)
}

func postFormTo(e *echo.Echo, target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestPage_RendersAllCards(t *testing.T) {
	e, _ := setupPage(t, DefaultSeed())

	rec, doc := getPage(t, e, "/")
	require.Equal(t, http.StatusOK, rec.Code)

	cards := doc.Find("article.card")
	assert.Equal(t, 4, cards.Length())
	assert.Equal(t, "Мечеть Кул Шариф в Казани", strings.TrimSpace(cards.First().Find(".title").Text()))
	assert.Equal(t, "all", doc.Find("nav.tabs a.active").AttrOr("data-category", ""))
}

func TestPage_CategoryTab(t *testing.T) {
	e, store := setupPage(t, DefaultSeed())

	rec, doc := getPage(t, e, "/?category="+url.QueryEscape("Блюда"))
	require.Equal(t, http.StatusOK, rec.Code)

	cards := doc.Find("article.card")
	require.Equal(t, 2, cards.Length())
	cards.Each(func(_ int, s *goquery.Selection) {
		assert.Equal(t, "Блюда", s.AttrOr("data-category", ""))
	})
	assert.Equal(t, "Блюда", doc.Find("nav.tabs a.active").AttrOr("data-category", ""))
	assert.Equal(t, OnlyCategory(CategoryDish), store.ActiveCategory())

	rec, _ = getPage(t, e, "/?category=unknown")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPage_PlaceholderIcon(t *testing.T) {
	seed := []Item{{ID: "t", Category: CategoryAudio, Title: "Без обложки", Body: TextBody{}}}
	e, _ := setupPage(t, seed)

	_, doc := getPage(t, e, "/")

	card := doc.Find("article.card")
	require.Equal(t, 1, card.Length())
	assert.Equal(t, 0, card.Find("img.thumb").Length())
	assert.Equal(t, "FileText", card.Find(".placeholder").AttrOr("data-icon", ""))
}

func TestPage_EmptyState(t *testing.T) {
	e, _ := setupPage(t, nil)

	_, doc := getPage(t, e, "/")

	assert.Equal(t, 0, doc.Find("article.card").Length())
	assert.Equal(t, 1, doc.Find(".empty").Length())
	assert.Equal(t, FallbackIcon, doc.Find(".empty .placeholder").AttrOr("data-icon", ""))
}

func TestPage_DialogToggle(t *testing.T) {
	e, store := setupPage(t, DefaultSeed())

	_, doc := getPage(t, e, "/?dialog=open")
	_, open := doc.Find("dialog").Attr("open")
	assert.True(t, open)
	assert.True(t, store.DialogOpen())

	store.UpdateDraft(DraftPatch{Title: strPtr("черновик")})

	// a GET never dismisses the dialog or drops the draft
	getPage(t, e, "/?dialog=closed")
	assert.True(t, store.DialogOpen())
	assert.Equal(t, "черновик", store.Draft().Title.OrEmpty())

	rec := postFormTo(e, "/dialog", url.Values{"open": {"false"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.False(t, store.DialogOpen())
	assert.Equal(t, NewDraft(), store.Draft())

	_, doc = getPage(t, e, "/")
	_, open = doc.Find("dialog").Attr("open")
	assert.False(t, open)

	rec = postFormTo(e, "/dialog", url.Values{"open": {"maybe"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPage_SubmitForm(t *testing.T) {
	e, store := setupPage(t, DefaultSeed())

	rec := postForm(e, url.Values{
		"type":     {"image"},
		"category": {"Блюда"},
		"title":    {"Чак-чак"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))

	assert.Equal(t, 5, store.Len())
	assert.Equal(t, "Чак-чак", store.Items()[0].Title)
}

func TestPage_SubmitFormBlankOptionalFieldsStayUnset(t *testing.T) {
	e, store := setupPage(t, DefaultSeed())

	// the full field set a browser posts for the default image form
	rec := postForm(e, url.Values{
		"type":        {"image"},
		"category":    {"Блюда"},
		"title":       {"Чак-чак"},
		"description": {""},
		"url":         {""},
		"content":     {""},
		"thumbnail":   {""},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	item := store.Items()[0]
	assert.Equal(t, "Чак-чак", item.Title)
	assert.True(t, item.Description.IsAbsent())
	assert.True(t, item.Thumbnail.IsAbsent())
	assert.True(t, item.URL().IsAbsent())

	data, err := item.MarshalJSON()
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"description"`)
	assert.NotContains(t, string(data), `"url"`)
	assert.NotContains(t, string(data), `"thumbnail"`)
}

func TestPage_SubmitFormClearedFieldAfterFailure(t *testing.T) {
	e, store := setupPage(t, DefaultSeed())

	rec := postForm(e, url.Values{"type": {"link"}, "title": {""}, "url": {"https://kazan.ru"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postForm(e, url.Values{"type": {"link"}, "title": {"Казань"}, "url": {""}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.True(t, store.Items()[0].URL().IsAbsent())
}

func TestPage_SuccessNoticeAfterRedirect(t *testing.T) {
	e, _ := setupPage(t, DefaultSeed())

	rec := postForm(e, url.Values{"type": {"image"}, "category": {"Блюда"}, "title": {"Чак-чак"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	_, doc := getPage(t, e, rec.Header().Get(echo.HeaderLocation))
	assert.Equal(t, MessageAdded, strings.TrimSpace(doc.Find(".notice.success").Text()))

	// shown once
	_, doc = getPage(t, e, "/")
	assert.Equal(t, 0, doc.Find(".notice").Length())
}

func TestPage_FormFieldsFollowType(t *testing.T) {
	e, store := setupPage(t, DefaultSeed())

	_, doc := getPage(t, e, "/?dialog=open")
	assert.Equal(t, 0, doc.Find("input[name=thumbnail]").Length())
	_, urlDisabled := doc.Find("input[name=url]").Attr("disabled")
	assert.False(t, urlDisabled)
	_, contentDisabled := doc.Find("textarea[name=content]").Attr("disabled")
	assert.True(t, contentDisabled)

	textType := MediaTypeText
	store.UpdateDraft(DraftPatch{Type: &textType})
	_, doc = getPage(t, e, "/")
	_, urlDisabled = doc.Find("input[name=url]").Attr("disabled")
	assert.True(t, urlDisabled)
	_, hidden := doc.Find("[data-field=url]").Attr("hidden")
	assert.True(t, hidden)
	_, contentDisabled = doc.Find("textarea[name=content]").Attr("disabled")
	assert.False(t, contentDisabled)
}

func TestPage_SubmitFormTitleRequired(t *testing.T) {
	e, store := setupPage(t, DefaultSeed())

	rec := postForm(e, url.Values{
		"type":     {"text"},
		"category": {"Аудио"},
		"title":    {""},
		"content":  {"Текст"},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 4, store.Len())

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rec.Body.String()))
	require.NoError(t, err)
	assert.Equal(t, MessageTitleRequired, strings.TrimSpace(doc.Find(".notice.error").Text()))
	_, open := doc.Find("dialog").Attr("open")
	assert.True(t, open)
	assert.Equal(t, "Текст", doc.Find("textarea[name=content]").Text())
	assert.Equal(t, "text", doc.Find("select[name=type] option[selected]").AttrOr("value", ""))
}

func TestPage_SubmitFormUnknownType(t *testing.T) {
	e, store := setupPage(t, DefaultSeed())

	rec := postForm(e, url.Values{"type": {"podcast"}, "title": {"x"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 4, store.Len())
}
