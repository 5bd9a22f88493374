package data

import (
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/ternarybob/atlasdash/internal/models"
)

var previewConverter = md.NewConverter("", true, nil)

// ContentPreview converts a content item's storage-format HTML body into a
// markdown preview, truncated to maxLen runes. Items without an expanded
// body preview as empty.
func ContentPreview(content *models.ConfluenceContent, maxLen int) string {
	if content == nil || content.Body == nil {
		return ""
	}
	html := content.Body.Storage.Value
	if html == "" {
		return ""
	}

	markdown, err := previewConverter.ConvertString(html)
	if err != nil {
		// Fall back to the raw value rather than hiding the content.
		markdown = html
	}
	markdown = strings.TrimSpace(markdown)

	if maxLen > 0 {
		runes := []rune(markdown)
		if len(runes) > maxLen {
			return strings.TrimSpace(string(runes[:maxLen])) + "..."
		}
	}
	return markdown
}
