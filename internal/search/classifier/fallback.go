// internal/search/classifier/fallback.go
package classifier

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"scout-search/internal/models"
	"scout-search/internal/search/params"
)

// FallbackConfidence is fixed regardless of how many fields the extractor
// finds. The deterministic parse is trusted less than a classifier parse but
// its trust does not scale with field count.
const FallbackConfidence = 0.6

// Tolerances applied when free text implies a value without a bound direction.
const (
	singleAgeTolerance = 2
	heightToleranceCm  = 5
)

// positionPhrases are matched before single-word keywords; longer phrases win.
var positionPhrases = []struct {
	phrase    string
	positions []string
}{
	{"attacking midfielder", []string{"CAM"}},
	{"defensive midfielder", []string{"CDM"}},
	{"holding midfielder", []string{"CDM"}},
	{"central midfielder", []string{"CM"}},
	{"centre back", []string{"CB"}},
	{"center back", []string{"CB"}},
	{"centre-back", []string{"CB"}},
	{"center-back", []string{"CB"}},
	{"left back", []string{"LB"}},
	{"left-back", []string{"LB"}},
	{"right back", []string{"RB"}},
	{"right-back", []string{"RB"}},
	{"left winger", []string{"LW"}},
	{"right winger", []string{"RW"}},
	{"centre forward", []string{"CF", "ST"}},
	{"center forward", []string{"CF", "ST"}},
	{"box-to-box", []string{"CM"}},
	{"playmaker", []string{"CAM", "CM"}},
	{"goalkeeper", []string{"GK"}},
	{"goalie", []string{"GK"}},
	{"keeper", []string{"GK"}},
	{"striker", []string{"ST", "CF"}},
	{"forward", []string{"ST", "CF"}},
	{"winger", []string{"LW", "RW"}},
	{"midfielder", []string{"CM"}},
	{"defender", []string{"CB"}},
	{"fullback", []string{"LB", "RB"}},
	{"full-back", []string{"LB", "RB"}},
	{"wing-back", []string{"LWB", "RWB"}},
}

var (
	ageRangeRe   = regexp.MustCompile(`\b(?:between\s+)?(\d{2})\s*(?:-|–|to|and)\s*(\d{2})\s*(?:years?\s*old|yo)?\b`)
	ageUnderRe   = regexp.MustCompile(`\b(?:under|below|younger\s+than|max(?:imum)?\s+age)\s+(\d{2})\b`)
	ageOverRe    = regexp.MustCompile(`\b(?:over|above|older\s+than|min(?:imum)?\s+age)\s+(\d{2})\b`)
	ageSingleRe  = regexp.MustCompile(`\b(?:around\s+|aged?\s+)?(\d{2})\s*(?:years?\s*old|years?\s*of\s*age|yo|y/o)\b|\baround\s+(\d{2})\b|\baged?\s+(\d{2})\b`)
	heightCmRe   = regexp.MustCompile(`\b(?:(over|above|at\s+least|under|below)\s+)?(\d{3})\s*cm\b`)
	heightMRe    = regexp.MustCompile(`\b(?:(over|above|at\s+least|under|below)\s+)?(\d)[.,](\d{2})\s*m\b`)
	tokenSplitRe = regexp.MustCompile(`[^a-zà-ÿ0-9]+`)
)

// stopwords excluded from residual keyword extraction.
var fallbackStopwords = map[string]bool{
	"the": true, "and": true, "with": true, "for": true, "who": true,
	"can": true, "play": true, "plays": true, "player": true, "players": true,
	"under": true, "over": true, "between": true, "around": true, "aged": true,
	"age": true, "years": true, "year": true, "old": true, "than": true,
	"younger": true, "older": true, "above": true, "below": true, "least": true,
	"from": true, "looking": true, "find": true, "search": true, "want": true,
	"need": true, "good": true, "top": true, "best": true,
}

// FallbackParse extracts parameters from free text with deterministic
// pattern matching. It never fails; an empty query yields empty parameters.
func FallbackParse(freeText string) params.SearchParameters {
	text := strings.ToLower(params.NormalizeText(freeText))
	consumed := make(map[string]bool)

	p := params.SearchParameters{
		OriginalQuery: params.NormalizeText(freeText),
		Confidence:    FallbackConfidence,
	}

	p.Positions = extractPositions(text, consumed)
	p.Age = extractAge(text, consumed)
	p.Height = extractHeight(text)
	p.Nationalities = extractNationalities(text, consumed)
	p.Leagues = extractLeagues(text, consumed)
	p.TransferStatus = extractTransferStatus(text, consumed)
	p.Keywords = extractKeywords(text, consumed)
	p.ParsedIntent = buildIntent(&p)

	return p
}

func extractPositions(text string, consumed map[string]bool) []string {
	var positions []string
	seen := make(map[string]bool)

	remaining := text
	for _, entry := range positionPhrases {
		if strings.Contains(remaining, entry.phrase) {
			for _, pos := range entry.positions {
				if !seen[pos] {
					positions = append(positions, pos)
					seen[pos] = true
				}
			}
			remaining = strings.ReplaceAll(remaining, entry.phrase, " ")
			for _, word := range strings.Fields(entry.phrase) {
				consumed[word] = true
			}
		}
	}

	// Bare position codes like "cam" or "st" also count.
	for _, token := range strings.Fields(remaining) {
		code := strings.ToUpper(strings.Trim(token, ".,"))
		if models.ValidPositions[code] && !seen[code] {
			positions = append(positions, code)
			seen[code] = true
			consumed[strings.ToLower(code)] = true
		}
	}

	if len(positions) > params.MaxPositions {
		positions = positions[:params.MaxPositions]
	}
	return positions
}

func extractAge(text string, consumed map[string]bool) params.AgeRange {
	var age params.AgeRange

	if m := ageRangeRe.FindStringSubmatch(text); m != nil {
		min, _ := strconv.Atoi(m[1])
		max, _ := strconv.Atoi(m[2])
		if plausibleAge(min) && plausibleAge(max) && min <= max {
			age.Min = params.IntPtr(min)
			age.Max = params.IntPtr(max)
			consumed[m[1]] = true
			consumed[m[2]] = true
			return age
		}
	}

	if m := ageUnderRe.FindStringSubmatch(text); m != nil {
		if n, _ := strconv.Atoi(m[1]); plausibleAge(n) {
			age.Max = params.IntPtr(n)
			consumed[m[1]] = true
		}
	}
	if m := ageOverRe.FindStringSubmatch(text); m != nil {
		if n, _ := strconv.Atoi(m[1]); plausibleAge(n) {
			age.Min = params.IntPtr(n)
			consumed[m[1]] = true
		}
	}
	if age.Min != nil || age.Max != nil {
		return age
	}

	// A single implied age gets a symmetric tolerance band rather than an
	// exact match requirement.
	if m := ageSingleRe.FindStringSubmatch(text); m != nil {
		for _, group := range m[1:] {
			if group == "" {
				continue
			}
			if n, _ := strconv.Atoi(group); plausibleAge(n) {
				age.Min = params.IntPtr(clampAge(n - singleAgeTolerance))
				age.Max = params.IntPtr(clampAge(n + singleAgeTolerance))
				consumed[group] = true
			}
			break
		}
	}

	return age
}

func extractHeight(text string) params.HeightRange {
	var height params.HeightRange

	direction := ""
	cm := 0
	if m := heightCmRe.FindStringSubmatch(text); m != nil {
		direction = params.NormalizeText(m[1])
		cm, _ = strconv.Atoi(m[2])
	} else if m := heightMRe.FindStringSubmatch(text); m != nil {
		direction = params.NormalizeText(m[1])
		meters, _ := strconv.Atoi(m[2])
		fraction, _ := strconv.Atoi(m[3])
		cm = meters*100 + fraction
	}

	if cm < 140 || cm > 220 {
		return height
	}

	switch direction {
	case "over", "above", "at least":
		height.Min = params.IntPtr(cm)
	case "under", "below":
		height.Max = params.IntPtr(cm)
	default:
		height.Min = params.IntPtr(cm - heightToleranceCm)
		height.Max = params.IntPtr(cm + heightToleranceCm)
	}
	return height
}

func extractNationalities(text string, consumed map[string]bool) []string {
	tokens := params.CountryTokens()

	// Longest token first so "south korea" beats "korea".
	keys := make([]string, 0, len(tokens))
	for k := range tokens {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })

	var nationalities []string
	seen := make(map[string]bool)
	remaining := text
	for _, key := range keys {
		if containsWord(remaining, key) {
			canonical := tokens[key]
			if !seen[canonical] {
				nationalities = append(nationalities, canonical)
				seen[canonical] = true
			}
			remaining = strings.ReplaceAll(remaining, key, " ")
			for _, word := range strings.Fields(key) {
				consumed[word] = true
			}
		}
	}

	if len(nationalities) > params.MaxNationalities {
		nationalities = nationalities[:params.MaxNationalities]
	}
	return nationalities
}

func extractLeagues(text string, consumed map[string]bool) []string {
	tokens := params.LeagueTokens(models.ValidLeagues)

	keys := make([]string, 0, len(tokens))
	for k := range tokens {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })

	var leagues []string
	seen := make(map[string]bool)
	remaining := text
	for _, key := range keys {
		if strings.Contains(remaining, key) {
			canonical := tokens[key]
			if !seen[canonical] {
				leagues = append(leagues, canonical)
				seen[canonical] = true
			}
			remaining = strings.ReplaceAll(remaining, key, " ")
			for _, word := range strings.Fields(key) {
				consumed[word] = true
			}
		}
	}

	if len(leagues) > params.MaxLeagues {
		leagues = leagues[:params.MaxLeagues]
	}
	return leagues
}

func extractTransferStatus(text string, consumed map[string]bool) string {
	switch {
	case strings.Contains(text, "free agent") || strings.Contains(text, "free transfer"):
		consumed["free"] = true
		consumed["agent"] = true
		consumed["transfer"] = true
		return models.TransferAvailable
	case strings.Contains(text, "contract expiring") ||
		strings.Contains(text, "expiring contract") ||
		strings.Contains(text, "out of contract"):
		consumed["contract"] = true
		consumed["expiring"] = true
		return models.TransferContractEnding
	}
	return ""
}

// extractKeywords keeps residual tokens of length >2 that were not consumed
// by any structured extraction.
func extractKeywords(text string, consumed map[string]bool) []string {
	var keywords []string
	seen := make(map[string]bool)

	for _, token := range tokenSplitRe.Split(text, -1) {
		if len(token) <= 2 || seen[token] || consumed[token] || fallbackStopwords[token] {
			continue
		}
		if _, err := strconv.Atoi(token); err == nil {
			continue
		}
		keywords = append(keywords, token)
		seen[token] = true
		if len(keywords) == params.MaxKeywords {
			break
		}
	}
	return keywords
}

func buildIntent(p *params.SearchParameters) string {
	var parts []string
	if len(p.Positions) > 0 {
		parts = append(parts, "position "+strings.Join(p.Positions, "/"))
	}
	if p.Age.Min != nil && p.Age.Max != nil {
		parts = append(parts, "age "+strconv.Itoa(*p.Age.Min)+"-"+strconv.Itoa(*p.Age.Max))
	} else if p.Age.Max != nil {
		parts = append(parts, "age under "+strconv.Itoa(*p.Age.Max))
	} else if p.Age.Min != nil {
		parts = append(parts, "age over "+strconv.Itoa(*p.Age.Min))
	}
	if len(p.Nationalities) > 0 {
		parts = append(parts, "from "+strings.Join(p.Nationalities, ", "))
	}
	if len(p.Leagues) > 0 {
		parts = append(parts, "in "+strings.Join(p.Leagues, ", "))
	}
	if len(parts) == 0 {
		return "general player search"
	}
	return "players matching " + strings.Join(parts, ", ")
}

func plausibleAge(n int) bool {
	return n >= params.MinPlayerAge && n <= params.MaxPlayerAge
}

func clampAge(n int) int {
	if n < params.MinPlayerAge {
		return params.MinPlayerAge
	}
	if n > params.MaxPlayerAge {
		return params.MaxPlayerAge
	}
	return n
}

func containsWord(text, word string) bool {
	idx := strings.Index(text, word)
	if idx < 0 {
		return false
	}
	before := idx == 0 || !isLetter(text[idx-1])
	afterIdx := idx + len(word)
	after := afterIdx >= len(text) || !isLetter(text[afterIdx])
	return before && after
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
