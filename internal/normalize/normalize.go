// Package normalize holds the pure text and image cleanup applied to every
// feed item before persistence. No I/O, no failure modes.
package normalize

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"NewsIngest/internal/domain"
)

var tagExpr = regexp.MustCompile(`<[^>]*>`)

// WordPress marks its post thumbnail with this class; when present it is a
// better pick than whatever <img> happens to come first in the body.
const featuredImageClass = "wp-post-image"

// CleanText strips markup tags and surrounding whitespace. Empty input stays
// empty.
func CleanText(raw string) string {
	if raw == "" {
		return ""
	}
	return strings.TrimSpace(tagExpr.ReplaceAllString(raw, ""))
}

// ExtractImage picks a representative image URL from the item, trying the
// declared metadata before falling back to scraping the HTML body:
// enclosure, then media:content, then media:thumbnail, then the first
// <img src> in the encoded content or description. First match wins;
// empty string when nothing matches.
func ExtractImage(item domain.FeedItem) string {
	for _, enc := range item.Enclosures {
		if enc.URL == "" {
			continue
		}
		if enc.Type == "" || strings.HasPrefix(enc.Type, "image") {
			return enc.URL
		}
	}

	if item.MediaContentURL != "" {
		return item.MediaContentURL
	}
	if item.MediaThumbnailURL != "" {
		return item.MediaThumbnailURL
	}

	if src := imageFromHTML(item.Content); src != "" {
		return src
	}
	return imageFromHTML(item.Description)
}

func imageFromHTML(html string) string {
	if !strings.Contains(html, "<img") {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	if src, ok := doc.Find("img." + featuredImageClass).First().Attr("src"); ok && src != "" {
		return src
	}

	src, _ := doc.Find("img").First().Attr("src")
	return src
}
