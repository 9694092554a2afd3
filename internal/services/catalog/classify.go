package catalog

import (
	"strings"

	"github.com/ternarybob/barsi/internal/models"
)

// besstKeywords are matched case-insensitively against sector and industry. They
// cover the BESST groups (banks, electric utilities, sanitation, insurance and
// telecom) in English and Portuguese.
var besstKeywords = []string{
	// banks
	"bank", "banco", "financial services", "financeiro", "intermediários financeiros",
	// electric utilities
	"utilities", "utility", "electric", "energia elétrica", "energia eletrica", "elétrica", "eletrica",
	// sanitation
	"water", "sanitation", "saneamento", "água",
	// insurance
	"insurance", "seguro", "seguradora", "previdência",
	// telecom
	"telecom", "telecomunicações", "telecomunicacoes", "communication services",
}

// IsBESSTSector reports whether the entry's sector or industry falls in a BESST group.
// It is a pure string match over already-loaded metadata.
func IsBESSTSector(entry *models.CatalogEntry) bool {
	if entry == nil {
		return false
	}
	return matchesBESST(entry.Sector) || matchesBESST(entry.Industry)
}

func matchesBESST(s string) bool {
	if models.IsPlaceholder(s) {
		return false
	}
	s = strings.ToLower(s)
	for _, kw := range besstKeywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
