package models

import "strings"

// Disease is one entry of the authoritative disease table. Source is the
// label the classification server returns, Display the Spanish name shown
// to users, Token the folder-safe directory name used on disk.
type Disease struct {
	Source  string
	Display string
	Token   string
}

// Diseases lists every class the classifier can report, healthy included.
// Normalization, translation and statistics pre-seeding all derive from
// this one table.
var Diseases = []Disease{
	{Source: "Common Rust", Display: "Roya común", Token: "Roya_comun"},
	{Source: "Gray Leaf Spot", Display: "Mancha gris", Token: "Mancha_gris"},
	{Source: "Northern Leaf Blight", Display: "Tizón foliar del norte", Token: "Tizon_foliar_del_norte"},
	{Source: "Phaeosphaeria Leaf Spot", Display: "Mancha foliar Phaeosphaeria", Token: "Mancha_foliar_Phaeosphaeria"},
	{Source: "Southern Rust", Display: "Roya del sur", Token: "Roya_del_sur"},
	{Source: "Healthy", Display: "Saludable", Token: "Saludable"},
}

// DisplayName translates a classifier label to its display name.
// Unrecognized labels pass through unchanged.
func DisplayName(source string) string {
	for _, d := range Diseases {
		if d.Source == source {
			return d.Display
		}
	}
	return source
}

// FolderToken maps a disease label to the directory name used under
// Predictions/. Labels outside the table fall back to replacing spaces
// with underscores, which keeps the on-disk layout identical for data
// written by older builds.
func FolderToken(label string) string {
	for _, d := range Diseases {
		if d.Display == label {
			return d.Token
		}
	}
	return strings.ReplaceAll(label, " ", "_")
}

// KnownDisplayNames returns the display names in table order.
func KnownDisplayNames() []string {
	names := make([]string, len(Diseases))
	for i, d := range Diseases {
		names[i] = d.Display
	}
	return names
}

// DiseaseInfo is a catalog entry shown on the information pages.
type DiseaseInfo struct {
	Name                string `json:"name"`
	Description         string `json:"description"`
	DetailedDescription string `json:"detailedDescription"`
}
