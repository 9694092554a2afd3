package catalog

import (
	"strings"

	"github.com/ternarybob/barsi/internal/models"
)

// SourceSeed marks entries that came from the built-in seed list.
const SourceSeed = "seed"

// seedEntries is the minimal universe used when every listing source comes back empty.
func seedEntries() []models.CatalogEntry {
	seed := []struct {
		code, name, sector, isin string
	}{
		{"PETR4", "Petrobras", "Petróleo, Gás e Biocombustíveis", "BRPETRACNPR6"},
		{"VALE3", "Vale", "Mineração", "BRVALEACNOR0"},
		{"ITUB4", "Itaú Unibanco", "Bancos", "BRITUBACNPR1"},
		{"BBDC4", "Bradesco", "Bancos", "BRBBDCACNPR8"},
		{"ABEV3", "Ambev", "Bebidas", "BRABEVACNOR1"},
	}

	entries := make([]models.CatalogEntry, 0, len(seed))
	for _, s := range seed {
		entries = append(entries, models.CatalogEntry{
			Ticker:   s.code + ".SA",
			Code:     s.code,
			Name:     s.name,
			Sector:   s.sector,
			Industry: models.PlaceholderSector,
			ISIN:     s.isin,
			Link:     "https://www.dadosdemercado.com.br/acoes/" + strings.ToLower(s.code),
			Currency: "BRL",
			Exchange: "B3",
			Country:  "Brazil",
			Source:   SourceSeed,
		})
	}
	return entries
}
