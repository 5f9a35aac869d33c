// internal/search/params/sanitizer.go
package params

import (
	"regexp"
	"strings"
)

// countryAliases maps common nicknames and demonyms to canonical country names.
// Unmapped values pass through unchanged.
var countryAliases = map[string]string{
	"brazilian":     "Brazil",
	"brasil":        "Brazil",
	"argentinian":   "Argentina",
	"argentine":     "Argentina",
	"french":        "France",
	"german":        "Germany",
	"spanish":       "Spain",
	"italian":       "Italy",
	"english":       "England",
	"dutch":         "Netherlands",
	"holland":       "Netherlands",
	"portuguese":    "Portugal",
	"belgian":       "Belgium",
	"croatian":      "Croatia",
	"uruguayan":     "Uruguay",
	"colombian":     "Colombia",
	"nigerian":      "Nigeria",
	"senegalese":    "Senegal",
	"ghanaian":      "Ghana",
	"ivorian":       "Ivory Coast",
	"japanese":      "Japan",
	"korean":        "South Korea",
	"usa":           "United States",
	"american":      "United States",
	"mexican":       "Mexico",
	"norwegian":     "Norway",
	"swedish":       "Sweden",
	"danish":        "Denmark",
	"polish":        "Poland",
	"serbian":       "Serbia",
	"moroccan":      "Morocco",
	"egyptian":      "Egypt",
	"cameroonian":   "Cameroon",
	"austrian":      "Austria",
	"swiss":         "Switzerland",
	"scottish":      "Scotland",
	"welsh":         "Wales",
	"irish":         "Ireland",
	"turkish":       "Turkey",
}

// clubAliases maps well-known club nicknames to canonical names.
var clubAliases = map[string]string{
	"man united":      "Manchester United",
	"man utd":         "Manchester United",
	"man city":        "Manchester City",
	"spurs":           "Tottenham Hotspur",
	"barca":           "FC Barcelona",
	"barcelona":       "FC Barcelona",
	"real":            "Real Madrid",
	"atletico":        "Atlético Madrid",
	"bayern":          "Bayern Munich",
	"dortmund":        "Borussia Dortmund",
	"bvb":             "Borussia Dortmund",
	"psg":             "Paris Saint-Germain",
	"juve":            "Juventus",
	"inter":           "Inter Milan",
	"milan":           "AC Milan",
	"ajax":            "Ajax",
	"porto":           "FC Porto",
	"benfica":         "SL Benfica",
	"sporting":        "Sporting CP",
	"wolves":          "Wolverhampton Wanderers",
	"gunners":         "Arsenal",
	"pool":            "Liverpool",
}

// leagueAliases maps informal league references to canonical names.
var leagueAliases = map[string]string{
	"epl":             "Premier League",
	"premiership":     "Premier League",
	"bpl":             "Premier League",
	"laliga":          "La Liga",
	"primera":         "La Liga",
	"serie a":         "Serie A",
	"seria a":         "Serie A",
	"calcio":          "Serie A",
	"buli":            "Bundesliga",
	"ligue un":        "Ligue 1",
	"efl championship": "Championship",
	"brasileirao":     "Brasileirão",
	"super lig":       "Süper Lig",
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// Sanitize normalizes a raw request in place: collapses whitespace, upper-cases
// position codes, and maps aliases to canonical names. It never rejects input.
func Sanitize(p *SearchParameters) {
	p.OriginalQuery = NormalizeText(p.OriginalQuery)
	p.ParsedIntent = NormalizeText(p.ParsedIntent)

	for i, pos := range p.Positions {
		p.Positions[i] = strings.ToUpper(strings.TrimSpace(pos))
	}
	p.Positions = dedupe(p.Positions)

	for i, nat := range p.Nationalities {
		p.Nationalities[i] = CanonicalCountry(nat)
	}
	p.Nationalities = dedupe(p.Nationalities)

	for i, lg := range p.Leagues {
		p.Leagues[i] = CanonicalLeague(lg)
	}
	p.Leagues = dedupe(p.Leagues)

	for i, club := range p.Clubs {
		p.Clubs[i] = CanonicalClub(club)
	}
	p.Clubs = dedupe(p.Clubs)

	for i, kw := range p.Keywords {
		p.Keywords[i] = strings.ToLower(NormalizeText(kw))
	}
	p.Keywords = dedupe(p.Keywords)

	p.TransferStatus = strings.ToLower(strings.TrimSpace(p.TransferStatus))
	p.PreferredFoot = strings.ToLower(strings.TrimSpace(p.PreferredFoot))
	p.Sort.Field = strings.ToLower(strings.TrimSpace(p.Sort.Field))
	p.Sort.Direction = strings.ToLower(strings.TrimSpace(p.Sort.Direction))
}

// NormalizeText trims and collapses internal whitespace.
func NormalizeText(s string) string {
	return whitespaceRe.ReplaceAllString(strings.TrimSpace(s), " ")
}

// CanonicalCountry maps an alias to its canonical country name, preserving
// unmapped values with normalized casing.
func CanonicalCountry(raw string) string {
	cleaned := NormalizeText(raw)
	if canonical, ok := countryAliases[strings.ToLower(cleaned)]; ok {
		return canonical
	}
	return titleCase(cleaned)
}

// CanonicalClub maps a club nickname to its canonical name.
func CanonicalClub(raw string) string {
	cleaned := NormalizeText(raw)
	if canonical, ok := clubAliases[strings.ToLower(cleaned)]; ok {
		return canonical
	}
	return cleaned
}

// CanonicalLeague maps an informal league reference to its canonical name.
func CanonicalLeague(raw string) string {
	cleaned := NormalizeText(raw)
	if canonical, ok := leagueAliases[strings.ToLower(cleaned)]; ok {
		return canonical
	}
	return cleaned
}

// CountryTokens returns the lowercase tokens (aliases and canonical names)
// that identify a nationality in free text, mapped to canonical names.
func CountryTokens() map[string]string {
	tokens := make(map[string]string, len(countryAliases)*2)
	for alias, canonical := range countryAliases {
		tokens[alias] = canonical
		tokens[strings.ToLower(canonical)] = canonical
	}
	return tokens
}

// LeagueTokens returns the lowercase tokens that identify a league in free
// text, mapped to canonical names.
func LeagueTokens(validLeagues map[string]bool) map[string]string {
	tokens := make(map[string]string, len(leagueAliases)+len(validLeagues))
	for alias, canonical := range leagueAliases {
		tokens[alias] = canonical
	}
	for name := range validLeagues {
		tokens[strings.ToLower(name)] = name
	}
	return tokens
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
		}
	}
	return strings.Join(words, " ")
}

func dedupe(values []string) []string {
	if len(values) == 0 {
		return values
	}
	seen := make(map[string]bool, len(values))
	result := values[:0]
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		result = append(result, v)
	}
	return result
}
