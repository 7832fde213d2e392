package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayName_KnownLabels(t *testing.T) {
	cases := map[string]string{
		"Common Rust":             "Roya común",
		"Gray Leaf Spot":          "Mancha gris",
		"Northern Leaf Blight":    "Tizón foliar del norte",
		"Phaeosphaeria Leaf Spot": "Mancha foliar Phaeosphaeria",
		"Southern Rust":           "Roya del sur",
		"Healthy":                 "Saludable",
	}
	for source, display := range cases {
		assert.Equal(t, display, DisplayName(source), source)
	}
}

func TestDisplayName_UnknownPassesThrough(t *testing.T) {
	assert.Equal(t, "Mystery Blight", DisplayName("Mystery Blight"))
}

func TestFolderToken_KnownLabels(t *testing.T) {
	cases := map[string]string{
		"Roya común":                  "Roya_comun",
		"Mancha gris":                 "Mancha_gris",
		"Tizón foliar del norte":      "Tizon_foliar_del_norte",
		"Mancha foliar Phaeosphaeria": "Mancha_foliar_Phaeosphaeria",
		"Roya del sur":                "Roya_del_sur",
		"Saludable":                   "Saludable",
	}
	for display, token := range cases {
		assert.Equal(t, token, FolderToken(display), display)
	}
}

func TestFolderToken_FallbackReplacesSpaces(t *testing.T) {
	assert.Equal(t, "Common_Rust", FolderToken("Common Rust"))
	assert.Equal(t, "Mystery_Blight_X", FolderToken("Mystery Blight X"))
}

func TestKnownDisplayNames_TableOrder(t *testing.T) {
	names := KnownDisplayNames()
	assert.Equal(t, []string{
		"Roya común",
		"Mancha gris",
		"Tizón foliar del norte",
		"Mancha foliar Phaeosphaeria",
		"Roya del sur",
		"Saludable",
	}, names)
}
