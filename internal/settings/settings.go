package settings

import (
	"context"
	"time"
)

// PageSize is a named paper format understood by the PDF renderer.
type PageSize string

const (
	PageA3     PageSize = "A3"
	PageA4     PageSize = "A4"
	PageA5     PageSize = "A5"
	PageLetter PageSize = "Letter"
	PageLegal  PageSize = "Legal"
)

// PageSizes lists the accepted page formats in display order.
var PageSizes = []PageSize{PageA4, PageA3, PageA5, PageLetter, PageLegal}

// Valid reports whether s is one of PageSizes.
func (s PageSize) Valid() bool {
	for _, known := range PageSizes {
		if s == known {
			return true
		}
	}
	return false
}

// Orientation selects portrait or landscape layout.
type Orientation int

const (
	Portrait Orientation = iota
	Landscape
)

func (o Orientation) String() string {
	if o == Landscape {
		return "landscape"
	}
	return "portrait"
}

// DefaultLogoKey is the media key checked for a logo when the record does not name one.
const DefaultLogoKey = "export_pdf/logo.png"

// ExportConfiguration is the persisted record controlling PDF appearance.
// Only one record is expected to be Active at a time.
type ExportConfiguration struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Active bool   `json:"active"`

	HeaderFontSize int     `json:"header_font_size"`
	BodyFontSize   int     `json:"body_font_size"`
	PageMarginMM   float64 `json:"page_margin_mm"`
	ItemsPerPage   int     `json:"items_per_page"`

	HeaderBackgroundColor string  `json:"header_background_color"`
	GridLineColor         string  `json:"grid_line_color"`
	GridLineWidth         float64 `json:"grid_line_width"`

	FontName string `json:"font_name"`
	Logo     string `json:"logo"`

	ShowHeader      bool `json:"show_header"`
	ShowLogo        bool `json:"show_logo"`
	ShowExportTime  bool `json:"show_export_time"`
	ShowPageNumbers bool `json:"show_page_numbers"`

	MaxCharsPerLine int      `json:"max_chars_per_line"`
	RTLSupport      bool     `json:"rtl_support"`
	PageSize        PageSize `json:"page_size"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New returns a record carrying the model defaults shown in the settings form.
func New(title string) *ExportConfiguration {
	return &ExportConfiguration{
		Title:                 title,
		HeaderFontSize:        10,
		BodyFontSize:          7,
		PageMarginMM:          15,
		ItemsPerPage:          10,
		HeaderBackgroundColor: "#F0F0F0",
		GridLineColor:         "#000000",
		GridLineWidth:         0.25,
		FontName:              "DejaVuSans",
		ShowHeader:            true,
		ShowLogo:              true,
		ShowExportTime:        true,
		ShowPageNumbers:       true,
		MaxCharsPerLine:       45,
		PageSize:              PageA4,
	}
}

func (c *ExportConfiguration) String() string {
	state := "Inactive"
	if c.Active {
		state = "Active"
	}
	return c.Title + " (" + state + ")"
}

// Provider fetches the active configuration. A nil record with a nil error
// means no single record is active, which is a normal state.
type Provider interface {
	Active(ctx context.Context) (*ExportConfiguration, error)
}

// Static is a Provider returning a fixed record (or none).
type Static struct {
	Config *ExportConfiguration
}

func (s Static) Active(ctx context.Context) (*ExportConfiguration, error) {
	return s.Config, nil
}
