package compliance

import (
	"path/filepath"
	"strings"
)

// Document types recognised from upload file names.
const (
	DocCertificate = "certificate"
	DocInsurance   = "insurance"
	DocPolicy      = "policy"
	DocTax         = "tax"
	DocAudit       = "audit"
	DocLicense     = "license"
	DocOther       = "other"
)

var typeKeywords = []struct {
	docType  string
	keywords []string
}{
	{DocCertificate, []string{"iso", "certificate", "certification", "cert", "rohs", "fsc"}},
	{DocInsurance, []string{"insurance", "liability", "coverage"}},
	{DocTax, []string{"tax", "vat", "w9", "w-9"}},
	{DocAudit, []string{"audit", "inspection", "assessment"}},
	{DocLicense, []string{"license", "licence", "permit"}},
	{DocPolicy, []string{"policy", "conduct", "code", "ethics"}},
}

var categoryFor = map[string]string{
	DocCertificate: "Quality",
	DocInsurance:   "Financial",
	DocTax:         "Legal",
	DocAudit:       "Operational",
	DocLicense:     "Legal",
	DocPolicy:      "Ethics",
	DocOther:       "General",
}

// Analysis is what can be learned about an uploaded document without reading it.
type Analysis struct {
	DocumentType string `json:"documentType"`
	Category     string `json:"category"`
	Notes        string `json:"notes"`
}

// AnalyzeFileName infers the document type and category from a file name.
func AnalyzeFileName(name string) Analysis {
	base := strings.ToLower(strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)))
	tokens := strings.FieldsFunc(base, func(r rune) bool {
		return r == '_' || r == '-' || r == ' ' || r == '.'
	})
	for _, tk := range typeKeywords {
		for _, kw := range tk.keywords {
			if matchesKeyword(base, tokens, kw) {
				return Analysis{
					DocumentType: tk.docType,
					Category:     categoryFor[tk.docType],
					Notes:        "document type inferred from file name",
				}
			}
		}
	}
	return Analysis{
		DocumentType: DocOther,
		Category:     categoryFor[DocOther],
		Notes:        "document type could not be inferred; manual review required",
	}
}

func matchesKeyword(base string, tokens []string, kw string) bool {
	if strings.ContainsAny(kw, "-") {
		return strings.Contains(base, kw)
	}
	for _, t := range tokens {
		if strings.HasPrefix(t, kw) {
			return true
		}
	}
	return false
}
