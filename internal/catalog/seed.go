package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/samber/mo"
	"gopkg.in/yaml.v3"
)

// DefaultSeed returns the sample items every new catalog starts with.
func DefaultSeed() []Item {
	return []Item{
		{
			ID:          "1",
			Category:    CategorySight,
			Title:       "Мечеть Кул Шариф в Казани",
			Description: mo.Some("Величественная мечеть в сердце Казанского Кремля"),
			Thumbnail:   mo.Some("https://images.unsplash.com/photo-1604999333679-b86d54738315?w=400"),
			Body:        VideoBody{URL: mo.Some("https://www.youtube.com/embed/dQw4w9WgXcQ")},
		},
		{
			ID:          "2",
			Category:    CategoryAudio,
			Title:       "Новогодняя сказка",
			Description: mo.Some("Волшебная история для всей семьи"),
			Thumbnail:   mo.Some("https://images.unsplash.com/photo-1512389142860-9c449e58a543?w=400"),
			Body:        AudioBody{URL: mo.Some("https://example.com/novogodnyaya-skazka.mp3")},
		},
		{
			ID:          "3",
			Category:    CategoryDish,
			Title:       "Губадия",
			Description: mo.Some("Традиционный татарский новогодний пирог с многослойной начинкой"),
			Thumbnail:   mo.Some("https://images.unsplash.com/photo-1509440159596-0249088772ff?w=400"),
			Body:        ImageBody{},
		},
		{
			ID:          "4",
			Category:    CategoryDish,
			Title:       "Оливье",
			Description: mo.Some("Символ русского Нового года - салат с курицей и овощами"),
			Thumbnail:   mo.Some("https://images.unsplash.com/photo-1546069901-ba9599a7e63c?w=400"),
			Body:        ImageBody{},
		},
	}
}

// seedEntry is one item in a YAML seed file.
type seedEntry struct {
	ID          string  `yaml:"id"`
	Type        string  `yaml:"type"`
	Category    string  `yaml:"category"`
	Title       string  `yaml:"title"`
	Description *string `yaml:"description"`
	URL         *string `yaml:"url"`
	Content     *string `yaml:"content"`
	Thumbnail   *string `yaml:"thumbnail"`
}

type seedFile struct {
	Items []seedEntry `yaml:"items"`
}

// LoadSeedFile reads seed items from a YAML file, newest first.
func LoadSeedFile(path string) ([]Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes and validates YAML seed data.
func ParseSeed(data []byte) ([]Item, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}

	items := make([]Item, 0, len(f.Items))
	seen := make(map[string]struct{}, len(f.Items))
	var errs []error
	for i, e := range f.Items {
		item, err := e.toItem()
		if err != nil {
			errs = append(errs, fmt.Errorf("item %d: %w", i, err))
			continue
		}
		if _, dup := seen[item.ID]; dup {
			errs = append(errs, fmt.Errorf("item %d: duplicate id %q", i, item.ID))
			continue
		}
		seen[item.ID] = struct{}{}
		items = append(items, item)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return items, nil
}

func (e seedEntry) toItem() (Item, error) {
	if e.ID == "" {
		return Item{}, errors.New("missing id")
	}
	if strings.TrimSpace(e.Title) == "" {
		return Item{}, ErrTitleRequired
	}
	t, err := ParseMediaType(e.Type)
	if err != nil {
		return Item{}, err
	}
	c, err := ParseCategory(e.Category)
	if err != nil {
		return Item{}, err
	}
	return Item{
		ID:          e.ID,
		Category:    c,
		Title:       e.Title,
		Description: optionOf(e.Description),
		Thumbnail:   optionOf(e.Thumbnail),
		Body:        NewBody(t, optionOf(e.URL), optionOf(e.Content)),
	}, nil
}

func optionOf(v *string) mo.Option[string] {
	if v == nil {
		return mo.None[string]()
	}
	return mo.Some(*v)
}
