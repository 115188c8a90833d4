package catalog

import "github.com/samber/lo"

// FallbackIcon is shown when the filtered view is empty.
const FallbackIcon = "Inbox"

var icons = map[MediaType]string{
	MediaTypeVideo: "Video",
	MediaTypeAudio: "Music",
	MediaTypeImage: "Image",
	MediaTypeText:  "FileText",
	MediaTypeLink:  "Link",
}

// IconFor returns the placeholder icon key for a media type.
func IconFor(t MediaType) string {
	return icons[t]
}

// IconTable returns the full type to icon mapping.
func IconTable() map[MediaType]string {
	return lo.Associate(MediaTypes, func(t MediaType) (MediaType, string) {
		return t, IconFor(t)
	})
}
