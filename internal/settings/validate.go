package settings

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	MinFontSize     = 6
	MaxFontSize     = 18
	MinPageMarginMM = 5
	MaxPageMarginMM = 50
	MaxItemsPerPage = 100
	MinCharsPerLine = 10
	MaxCharsPerLine = 200
	MinGridWidth    = 0.1
	MaxGridWidth    = 5
	MaxTitleLength  = 100
)

var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// ValidationError maps field names to messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid export settings: " + strings.Join(parts, "; ")
}

// Has reports whether field failed validation.
func (e *ValidationError) Has(field string) bool {
	_, ok := e.Fields[field]
	return ok
}

// Validate checks every field and reports all failures at once.
// It returns nil or a *ValidationError.
func (c *ExportConfiguration) Validate() error {
	errs := map[string]string{}

	title := strings.TrimSpace(c.Title)
	switch {
	case title == "":
		errs["title"] = "this field is required"
	case utf8.RuneCountInString(title) > MaxTitleLength:
		errs["title"] = fmt.Sprintf("ensure this value has at most %d characters", MaxTitleLength)
	}

	checkRange(errs, "header_font_size", c.HeaderFontSize, MinFontSize, MaxFontSize)
	checkRange(errs, "body_font_size", c.BodyFontSize, MinFontSize, MaxFontSize)
	checkRange(errs, "items_per_page", c.ItemsPerPage, 1, MaxItemsPerPage)
	checkRange(errs, "max_chars_per_line", c.MaxCharsPerLine, MinCharsPerLine, MaxCharsPerLine)

	if c.PageMarginMM < MinPageMarginMM {
		errs["page_margin_mm"] = fmt.Sprintf("ensure this value is greater than or equal to %d", MinPageMarginMM)
	} else if c.PageMarginMM > MaxPageMarginMM {
		errs["page_margin_mm"] = fmt.Sprintf("ensure this value is less than or equal to %d", MaxPageMarginMM)
	}

	if c.GridLineWidth < MinGridWidth || c.GridLineWidth > MaxGridWidth {
		errs["grid_line_width"] = fmt.Sprintf("ensure this value is between %.1f and %.1f", MinGridWidth, float64(MaxGridWidth))
	}

	if !hexColorPattern.MatchString(c.HeaderBackgroundColor) {
		errs["header_background_color"] = "enter a color in #RRGGBB format"
	}
	if !hexColorPattern.MatchString(c.GridLineColor) {
		errs["grid_line_color"] = "enter a color in #RRGGBB format"
	}

	if strings.TrimSpace(c.FontName) == "" {
		errs["font_name"] = "this field is required"
	} else if strings.ContainsAny(c.FontName, `/\`) {
		errs["font_name"] = "font name must not contain path separators"
	}

	if c.Logo != "" {
		for _, seg := range strings.Split(strings.ReplaceAll(c.Logo, `\`, "/"), "/") {
			if seg == ".." {
				errs["logo"] = "logo path must stay inside the media root"
				break
			}
		}
	}

	if !c.PageSize.Valid() {
		errs["page_size"] = fmt.Sprintf("%q is not one of the available choices", c.PageSize)
	}

	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Fields: errs}
}

func checkRange(errs map[string]string, field string, v, lo, hi int) {
	if v < lo {
		errs[field] = fmt.Sprintf("ensure this value is greater than or equal to %d", lo)
	} else if v > hi {
		errs[field] = fmt.Sprintf("ensure this value is less than or equal to %d", hi)
	}
}
