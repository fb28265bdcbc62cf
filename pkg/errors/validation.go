package errors

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

var (
	hexColorRegex  = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	funcColorRegex = regexp.MustCompile(`^(rgb|rgba|hsl|hsla)\(\s*[-0-9.%,\s/]+\)$`)
	namedColorRe   = regexp.MustCompile(`^[a-zA-Z]+$`)
)

// ValidateColor checks that s is usable as an SVG paint value: a hex color,
// an rgb()/rgba()/hsl()/hsla() function, or a bare color keyword.
func ValidateColor(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return New(ErrCodeInvalidColor, "color cannot be empty")
	}
	if hexColorRegex.MatchString(s) || funcColorRegex.MatchString(s) || namedColorRe.MatchString(s) {
		return nil
	}
	return New(ErrCodeInvalidColor, "invalid color: %q", s)
}

// ValidateFills validates a fill registry. It must contain defaultFill and
// every value must be a valid color.
func ValidateFills(fills map[string]string) error {
	if _, ok := fills["defaultFill"]; !ok {
		return New(ErrCodeInvalidOptions, "fills must contain defaultFill")
	}
	for key, color := range fills {
		if key == "" {
			return New(ErrCodeInvalidOptions, "fill key cannot be empty")
		}
		if err := ValidateColor(color); err != nil {
			return Wrap(ErrCodeInvalidOptions, err, "fill %q", key)
		}
	}
	return nil
}

// ValidateRegionID rejects ids that cannot be used as a CSS class token.
func ValidateRegionID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "region id cannot be empty")
	}
	if len(id) > 64 {
		return New(ErrCodeInvalidInput, "region id too long (max 64 characters)")
	}
	for _, r := range id {
		if unicode.IsSpace(r) || unicode.IsControl(r) || strings.ContainsRune(`"'<>&.#`, r) {
			return New(ErrCodeInvalidInput, "region id contains invalid characters: %q", id)
		}
	}
	return nil
}

// ValidateDimensions checks canvas dimensions.
func ValidateDimensions(width, height float64) error {
	for _, v := range []float64{width, height} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return New(ErrCodeInvalidOptions, "canvas dimensions must be positive, got %gx%g", width, height)
		}
	}
	if width > 20000 || height > 20000 {
		return New(ErrCodeInvalidOptions, "canvas dimensions too large (max 20000)")
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// ValidatePath validates a local file path used as a topology or data source.
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}

	const maxPathLength = 1024
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "path contains invalid characters")
		}
	}
	return nil
}
