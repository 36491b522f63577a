package attachment

import (
	"fmt"
	"strings"
)

// Classify routes a declared media type to its extraction category.
// Unknown or disallowed media types fail with ErrUnsupportedMediaType;
// classification itself has no side effects.
func Classify(mediaType MediaType) (Category, error) {
	switch MediaType(strings.ToLower(strings.TrimSpace(string(mediaType)))) {
	case MediaTypePlainText:
		return CategoryText, nil
	case MediaTypePDF:
		return CategoryDocument, nil
	case MediaTypePNG, MediaTypeJPEG:
		return CategoryImage, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedMediaType, mediaType)
	}
}
