package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/samber/lo"
	"github.com/samber/mo"
)

// MediaType identifies what kind of content an item carries.
type MediaType string

const (
	MediaTypeVideo MediaType = "video"
	MediaTypeAudio MediaType = "audio"
	MediaTypeImage MediaType = "image"
	MediaTypeText  MediaType = "text"
	MediaTypeLink  MediaType = "link"
)

// MediaTypes lists every media type in display order.
var MediaTypes = []MediaType{
	MediaTypeVideo,
	MediaTypeAudio,
	MediaTypeImage,
	MediaTypeText,
	MediaTypeLink,
}

// ParseMediaType converts a raw string into a MediaType.
func ParseMediaType(s string) (MediaType, error) {
	t := MediaType(s)
	if !lo.Contains(MediaTypes, t) {
		return "", fmt.Errorf("unknown media type %q", s)
	}
	return t, nil
}

// HasURL reports whether items of this type carry a url rather than
// inline content.
func (t MediaType) HasURL() bool {
	return t != MediaTypeText
}

// UnmarshalText rejects values outside the closed set.
func (t *MediaType) UnmarshalText(b []byte) error {
	v, err := ParseMediaType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Category is one of the fixed grouping labels.
type Category string

const (
	CategorySight Category = "Достопримечательность"
	CategoryAudio Category = "Аудио"
	CategoryDish  Category = "Блюда"
)

// Categories lists every category in tab order. The first entry is the
// draft default.
var Categories = []Category{
	CategorySight,
	CategoryAudio,
	CategoryDish,
}

// DefaultCategory returns the category a fresh draft starts with.
func DefaultCategory() Category {
	return Categories[0]
}

// ParseCategory converts a raw string into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !lo.Contains(Categories, c) {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// UnmarshalText rejects values outside the closed set.
func (c *Category) UnmarshalText(b []byte) error {
	v, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// FilterAll is the filter value that selects every category.
const FilterAll = "all"

// Filter is the active category selection: either "all" or one category.
type Filter struct {
	category mo.Option[Category]
}

// AllCategories returns the filter that matches every item.
func AllCategories() Filter {
	return Filter{category: mo.None[Category]()}
}

// OnlyCategory returns a filter matching a single category.
func OnlyCategory(c Category) Filter {
	return Filter{category: mo.Some(c)}
}

// ParseFilter accepts "all" or a category label.
func ParseFilter(s string) (Filter, error) {
	if s == FilterAll {
		return AllCategories(), nil
	}
	c, err := ParseCategory(s)
	if err != nil {
		return Filter{}, err
	}
	return OnlyCategory(c), nil
}

// Category returns the selected category, if the filter is not "all".
func (f Filter) Category() (Category, bool) {
	return f.category.Get()
}

// IsAll reports whether the filter selects every category.
func (f Filter) IsAll() bool {
	return f.category.IsAbsent()
}

// Matches reports whether an item passes the filter.
func (f Filter) Matches(item Item) bool {
	c, ok := f.category.Get()
	return !ok || item.Category == c
}

func (f Filter) String() string {
	if c, ok := f.category.Get(); ok {
		return string(c)
	}
	return FilterAll
}

func (f Filter) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *Filter) UnmarshalText(b []byte) error {
	v, err := ParseFilter(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// Body is the type-specific part of an item. Each media type has exactly
// one body shape, so a text item can never carry a url.
type Body interface {
	Type() MediaType
	isBody()
}

// VideoBody holds the embeddable video location.
type VideoBody struct {
	URL mo.Option[string]
}

// AudioBody holds the audio file location.
type AudioBody struct {
	URL mo.Option[string]
}

// ImageBody holds the full-size image location.
type ImageBody struct {
	URL mo.Option[string]
}

// LinkBody holds an external link.
type LinkBody struct {
	URL mo.Option[string]
}

// TextBody holds inline text.
type TextBody struct {
	Content mo.Option[string]
}

func (VideoBody) Type() MediaType { return MediaTypeVideo }
func (AudioBody) Type() MediaType { return MediaTypeAudio }
func (ImageBody) Type() MediaType { return MediaTypeImage }
func (LinkBody) Type() MediaType  { return MediaTypeLink }
func (TextBody) Type() MediaType  { return MediaTypeText }

func (VideoBody) isBody() {}
func (AudioBody) isBody() {}
func (ImageBody) isBody() {}
func (LinkBody) isBody()  {}
func (TextBody) isBody()  {}

// NewBody builds the body for t, keeping only the field that type uses.
func NewBody(t MediaType, url, content mo.Option[string]) Body {
	switch t {
	case MediaTypeVideo:
		return VideoBody{URL: url}
	case MediaTypeAudio:
		return AudioBody{URL: url}
	case MediaTypeLink:
		return LinkBody{URL: url}
	case MediaTypeText:
		return TextBody{Content: content}
	default:
		return ImageBody{URL: url}
	}
}

// Item is a committed catalog entry. Items are never modified after
// they are added.
type Item struct {
	ID          string
	Category    Category
	Title       string
	Description mo.Option[string]
	Thumbnail   mo.Option[string]
	Body        Body
}

// Type returns the media type carried by the item's body.
func (i Item) Type() MediaType {
	return i.Body.Type()
}

// URL returns the item's location for url-bearing types.
func (i Item) URL() mo.Option[string] {
	switch b := i.Body.(type) {
	case VideoBody:
		return b.URL
	case AudioBody:
		return b.URL
	case ImageBody:
		return b.URL
	case LinkBody:
		return b.URL
	}
	return mo.None[string]()
}

// Content returns inline text for text items.
func (i Item) Content() mo.Option[string] {
	if b, ok := i.Body.(TextBody); ok {
		return b.Content
	}
	return mo.None[string]()
}

// itemJSON is the flat wire form of an Item.
type itemJSON struct {
	ID          string    `json:"id"`
	Type        MediaType `json:"type"`
	Category    Category  `json:"category"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	URL         *string   `json:"url,omitempty"`
	Content     *string   `json:"content,omitempty"`
	Thumbnail   *string   `json:"thumbnail,omitempty"`
}

func (i Item) MarshalJSON() ([]byte, error) {
	return json.Marshal(itemJSON{
		ID:          i.ID,
		Type:        i.Type(),
		Category:    i.Category,
		Title:       i.Title,
		Description: optionPtr(i.Description),
		URL:         optionPtr(i.URL()),
		Content:     optionPtr(i.Content()),
		Thumbnail:   optionPtr(i.Thumbnail),
	})
}

// Draft is the item being composed in the add dialog. Every text field
// stays unset until the user touches it.
type Draft struct {
	Type        MediaType
	Category    Category
	Title       mo.Option[string]
	Description mo.Option[string]
	URL         mo.Option[string]
	Content     mo.Option[string]
	Thumbnail   mo.Option[string]
}

// NewDraft returns the empty draft the dialog starts from.
func NewDraft() Draft {
	return Draft{
		Type:     MediaTypeImage,
		Category: DefaultCategory(),
	}
}

// DraftPatch carries field edits. Nil fields are left unchanged.
type DraftPatch struct {
	Type        *MediaType `json:"type,omitempty"`
	Category    *Category  `json:"category,omitempty"`
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	URL         *string    `json:"url,omitempty"`
	Content     *string    `json:"content,omitempty"`
	Thumbnail   *string    `json:"thumbnail,omitempty"`
}

// Apply returns d with the patch's fields written over it.
func (p DraftPatch) Apply(d Draft) Draft {
	if p.Type != nil {
		d.Type = *p.Type
	}
	if p.Category != nil {
		d.Category = *p.Category
	}
	setOption(&d.Title, p.Title)
	setOption(&d.Description, p.Description)
	setOption(&d.URL, p.URL)
	setOption(&d.Content, p.Content)
	setOption(&d.Thumbnail, p.Thumbnail)
	return d
}

type draftJSON struct {
	Type        MediaType `json:"type"`
	Category    Category  `json:"category"`
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	URL         *string   `json:"url,omitempty"`
	Content     *string   `json:"content,omitempty"`
	Thumbnail   *string   `json:"thumbnail,omitempty"`
}

func (d Draft) MarshalJSON() ([]byte, error) {
	return json.Marshal(draftJSON{
		Type:        d.Type,
		Category:    d.Category,
		Title:       optionPtr(d.Title),
		Description: optionPtr(d.Description),
		URL:         optionPtr(d.URL),
		Content:     optionPtr(d.Content),
		Thumbnail:   optionPtr(d.Thumbnail),
	})
}

// Snapshot is a consistent read of a store for rendering.
type Snapshot struct {
	Items      []Item `json:"items"`
	View       []Item `json:"view"`
	Filter     Filter `json:"activeCategory"`
	Draft      Draft  `json:"draft"`
	DialogOpen bool   `json:"dialogOpen"`
}

func optionPtr(o mo.Option[string]) *string {
	if v, ok := o.Get(); ok {
		return &v
	}
	return nil
}

func setOption(dst *mo.Option[string], v *string) {
	if v != nil {
		*dst = mo.Some(*v)
	}
}
