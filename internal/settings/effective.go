package settings

// Fallbacks used when no active configuration exists.
const (
	FallbackHeaderFontSize  = 12
	FallbackBodyFontSize    = 7
	FallbackPageMarginMM    = 15.0
	FallbackHeaderColor     = "#D3D3D3"
	FallbackGridColor       = "#000000"
	FallbackGridLineWidth   = 0.25
	FallbackFontName        = "DejaVuSans"
	FallbackPortraitItems   = 20
	FallbackPortraitChars   = 40
	FallbackLandscapeItems  = 10
	FallbackLandscapeChars  = 60
	FallbackDefaultPageSize = PageA4
)

// Effective is the fully populated configuration one export works from.
// It is built once by Resolve and passed by value afterwards.
type Effective struct {
	Orientation Orientation
	Configured  bool
	Title       string

	HeaderFontSize int
	BodyFontSize   int
	PageMarginMM   float64
	ItemsPerPage   int

	HeaderBackgroundColor string
	GridLineColor         string
	GridLineWidth         float64

	FontName string
	LogoKey  string

	ShowHeader      bool
	ShowLogo        bool
	ShowExportTime  bool
	ShowPageNumbers bool

	MaxCharsPerLine int
	RTLSupport      bool
	PageSize        PageSize
}

// Resolve merges cfg with the hard-coded fallbacks for orientation o.
// A nil cfg yields the fallback values with every display toggle enabled.
func Resolve(cfg *ExportConfiguration, o Orientation) Effective {
	items, chars := FallbackPortraitItems, FallbackPortraitChars
	if o == Landscape {
		items, chars = FallbackLandscapeItems, FallbackLandscapeChars
	}

	if cfg == nil {
		return Effective{
			Orientation:           o,
			HeaderFontSize:        FallbackHeaderFontSize,
			BodyFontSize:          FallbackBodyFontSize,
			PageMarginMM:          FallbackPageMarginMM,
			ItemsPerPage:          items,
			HeaderBackgroundColor: FallbackHeaderColor,
			GridLineColor:         FallbackGridColor,
			GridLineWidth:         FallbackGridLineWidth,
			FontName:              FallbackFontName,
			LogoKey:               DefaultLogoKey,
			ShowHeader:            true,
			ShowLogo:              true,
			ShowExportTime:        true,
			ShowPageNumbers:       true,
			MaxCharsPerLine:       chars,
			PageSize:              FallbackDefaultPageSize,
		}
	}

	eff := Effective{
		Orientation:           o,
		Configured:            true,
		Title:                 cfg.Title,
		HeaderFontSize:        cfg.HeaderFontSize,
		BodyFontSize:          cfg.BodyFontSize,
		PageMarginMM:          cfg.PageMarginMM,
		ItemsPerPage:          cfg.ItemsPerPage,
		HeaderBackgroundColor: cfg.HeaderBackgroundColor,
		GridLineColor:         cfg.GridLineColor,
		GridLineWidth:         cfg.GridLineWidth,
		FontName:              cfg.FontName,
		LogoKey:               cfg.Logo,
		ShowHeader:            cfg.ShowHeader,
		ShowLogo:              cfg.ShowLogo,
		ShowExportTime:        cfg.ShowExportTime,
		ShowPageNumbers:       cfg.ShowPageNumbers,
		MaxCharsPerLine:       cfg.MaxCharsPerLine,
		RTLSupport:            cfg.RTLSupport,
		PageSize:              cfg.PageSize,
	}

	// Records read from the store are validated on save, but zero values
	// from older rows must still render.
	if eff.HeaderFontSize <= 0 {
		eff.HeaderFontSize = FallbackHeaderFontSize
	}
	if eff.BodyFontSize <= 0 {
		eff.BodyFontSize = FallbackBodyFontSize
	}
	if eff.PageMarginMM <= 0 {
		eff.PageMarginMM = FallbackPageMarginMM
	}
	if eff.ItemsPerPage <= 0 {
		eff.ItemsPerPage = items
	}
	if eff.MaxCharsPerLine <= 0 {
		eff.MaxCharsPerLine = chars
	}
	if eff.HeaderBackgroundColor == "" {
		eff.HeaderBackgroundColor = FallbackHeaderColor
	}
	if eff.GridLineColor == "" {
		eff.GridLineColor = FallbackGridColor
	}
	if eff.GridLineWidth <= 0 {
		eff.GridLineWidth = FallbackGridLineWidth
	}
	if eff.FontName == "" {
		eff.FontName = FallbackFontName
	}
	if eff.LogoKey == "" {
		eff.LogoKey = DefaultLogoKey
	}
	if !eff.PageSize.Valid() {
		eff.PageSize = FallbackDefaultPageSize
	}
	return eff
}
