package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSeed(t *testing.T) {
	seed := DefaultSeed()
	require.Len(t, seed, 4)

	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(seed))
	counts := lo.CountValuesBy(seed, func(item Item) Category { return item.Category })
	assert.Equal(t, 2, counts[CategoryDish])
	assert.Equal(t, 1, counts[CategorySight])
	assert.Equal(t, 1, counts[CategoryAudio])

	assert.Equal(t, MediaTypeVideo, seed[0].Type())
	assert.Equal(t, MediaTypeAudio, seed[1].Type())
	assert.Equal(t, MediaTypeImage, seed[2].Type())
	assert.True(t, seed[2].URL().IsAbsent())
}

func TestDefaultSeed_FreshCopy(t *testing.T) {
	a := DefaultSeed()
	a[0].Title = "changed"
	assert.Equal(t, "Мечеть Кул Шариф в Казани", DefaultSeed()[0].Title)
}

func TestParseSeed(t *testing.T) {
	data := []byte(`
items:
  - id: a
    type: text
    category: Аудио
    title: Стих
    content: "Строка"
    url: https://ignored.example
  - id: b
    type: link
    category: Блюда
    title: Рецепт
    url: https://example.com/recipe
    thumbnail: ""
`)

	items, err := ParseSeed(data)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, TextBody{Content: mo.Some("Строка")}, items[0].Body)
	assert.Equal(t, CategoryAudio, items[0].Category)
	assert.True(t, items[0].Description.IsAbsent())

	assert.Equal(t, LinkBody{URL: mo.Some("https://example.com/recipe")}, items[1].Body)
	assert.Equal(t, mo.Some(""), items[1].Thumbnail)
}

func TestParseSeed_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{
			name: "unknown type",
			data: "items:\n  - {id: a, type: podcast, category: Аудио, title: x}\n",
			want: "unknown media type",
		},
		{
			name: "unknown category",
			data: "items:\n  - {id: a, type: image, category: Напитки, title: x}\n",
			want: "unknown category",
		},
		{
			name: "blank title",
			data: "items:\n  - {id: a, type: image, category: Аудио, title: \"  \"}\n",
			want: "title required",
		},
		{
			name: "duplicate id",
			data: "items:\n  - {id: a, type: image, category: Аудио, title: x}\n  - {id: a, type: image, category: Аудио, title: y}\n",
			want: "duplicate id",
		},
		{
			name: "missing id",
			data: "items:\n  - {type: image, category: Аудио, title: x}\n",
			want: "missing id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSeed([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("items:\n  - {id: z, type: video, category: Достопримечательность, title: Кремль}\n"), 0o600))

	items, err := LoadSeedFile(path)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Кремль", items[0].Title)

	_, err = LoadSeedFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadSeedFile_Example(t *testing.T) {
	items, err := LoadSeedFile("../../configs/seed.example.yaml")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, MediaTypeVideo, items[0].Type())
	assert.Equal(t, "Эчпочмак", items[1].Title)
	assert.True(t, items[1].URL().IsAbsent())
}
