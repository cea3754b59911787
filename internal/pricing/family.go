package pricing

import "strings"

// Families lists the material families we recognise, longest first so that
// "quartzite" wins over "quartz".
var Families = []string{
	"solid surface",
	"quartzite",
	"soapstone",
	"porcelain",
	"laminate",
	"granite",
	"marble",
	"quartz",
}

// DetectFamily returns the first family word contained in text, or "".
func DetectFamily(text string) string {
	normalized := NormalizeKey(text)
	if normalized == "" {
		return ""
	}
	for _, family := range Families {
		if strings.Contains(normalized, family) {
			return family
		}
	}
	return ""
}
