package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	cfg := New("Default Settings")

	assert.Equal(t, 10, cfg.HeaderFontSize)
	assert.Equal(t, 7, cfg.BodyFontSize)
	assert.Equal(t, 15.0, cfg.PageMarginMM)
	assert.Equal(t, 10, cfg.ItemsPerPage)
	assert.True(t, cfg.ShowHeader)
	assert.True(t, cfg.ShowLogo)
	assert.True(t, cfg.ShowExportTime)
	assert.True(t, cfg.ShowPageNumbers)
	assert.False(t, cfg.Active)
	assert.NoError(t, cfg.Validate())
}

func TestString(t *testing.T) {
	cfg := New("Test Settings")
	assert.Equal(t, "Test Settings (Inactive)", cfg.String())

	cfg.Active = true
	assert.Equal(t, "Test Settings (Active)", cfg.String())
}

func TestValidateFontSizes(t *testing.T) {
	cfg := New("Invalid Font Size")
	cfg.HeaderFontSize = 5
	cfg.BodyFontSize = 20

	err := cfg.Validate()
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.Has("header_font_size"))
	assert.True(t, verr.Has("body_font_size"))
	assert.Len(t, verr.Fields, 2)
}

func TestValidatePageMargin(t *testing.T) {
	cfg := New("Invalid Margin")
	cfg.PageMarginMM = 3

	var verr *ValidationError
	require.ErrorAs(t, cfg.Validate(), &verr)
	assert.True(t, verr.Has("page_margin_mm"))
}

func TestValidateMisc(t *testing.T) {
	cfg := New("")
	cfg.HeaderBackgroundColor = "F0F0F0"
	cfg.GridLineColor = "#12345G"
	cfg.ItemsPerPage = 0
	cfg.FontName = "../fonts/evil"
	cfg.Logo = "../../etc/passwd"
	cfg.PageSize = "B5"
	cfg.GridLineWidth = 0

	var verr *ValidationError
	require.ErrorAs(t, cfg.Validate(), &verr)
	for _, field := range []string{
		"title", "header_background_color", "grid_line_color", "items_per_page",
		"font_name", "logo", "page_size", "grid_line_width",
	} {
		assert.True(t, verr.Has(field), field)
	}
	assert.Contains(t, verr.Error(), "invalid export settings: font_name")
}

func TestResolveWithoutConfiguration(t *testing.T) {
	portrait := Resolve(nil, Portrait)
	assert.False(t, portrait.Configured)
	assert.Equal(t, 7, portrait.BodyFontSize)
	assert.Equal(t, 12, portrait.HeaderFontSize)
	assert.Equal(t, 15.0, portrait.PageMarginMM)
	assert.Equal(t, 20, portrait.ItemsPerPage)
	assert.Equal(t, 40, portrait.MaxCharsPerLine)
	assert.Equal(t, DefaultLogoKey, portrait.LogoKey)
	assert.Equal(t, PageA4, portrait.PageSize)
	assert.True(t, portrait.ShowHeader && portrait.ShowLogo && portrait.ShowExportTime && portrait.ShowPageNumbers)

	landscape := Resolve(nil, Landscape)
	assert.Equal(t, Landscape, landscape.Orientation)
	assert.Equal(t, 10, landscape.ItemsPerPage)
	assert.Equal(t, 60, landscape.MaxCharsPerLine)
}

func TestResolveWithConfiguration(t *testing.T) {
	cfg := New("Configured")
	cfg.ItemsPerPage = 7
	cfg.ShowLogo = false
	cfg.RTLSupport = true
	cfg.Logo = "brand/acme.png"

	eff := Resolve(cfg, Landscape)
	assert.True(t, eff.Configured)
	assert.Equal(t, 7, eff.ItemsPerPage)
	assert.Equal(t, 45, eff.MaxCharsPerLine)
	assert.False(t, eff.ShowLogo)
	assert.True(t, eff.RTLSupport)
	assert.Equal(t, "brand/acme.png", eff.LogoKey)
}

func TestResolveFillsZeroValues(t *testing.T) {
	eff := Resolve(&ExportConfiguration{Title: "legacy row"}, Portrait)
	assert.Equal(t, FallbackBodyFontSize, eff.BodyFontSize)
	assert.Equal(t, FallbackPortraitItems, eff.ItemsPerPage)
	assert.Equal(t, FallbackHeaderColor, eff.HeaderBackgroundColor)
	assert.Equal(t, DefaultLogoKey, eff.LogoKey)
	assert.False(t, eff.ShowHeader)
}

func TestStaticProvider(t *testing.T) {
	cfg, err := Static{}.Active(context.Background())
	require.NoError(t, err)
	assert.Nil(t, cfg)

	want := New("x")
	got, err := Static{Config: want}.Active(context.Background())
	require.NoError(t, err)
	assert.Same(t, want, got)
}
