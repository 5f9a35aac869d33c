// internal/models/player.go
package models

import "time"

// Player is a candidate record owned by the persistence collaborator.
// The search pipeline treats it as read-only input.
type Player struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Position       string     `json:"position"`
	Age            int        `json:"age"`
	Nationality    string     `json:"nationality"`
	Club           string     `json:"club"`
	MarketValue    int64      `json:"marketValue"` // currency minor units
	League         string     `json:"league"`
	HeightCm       int        `json:"heightCm"`
	PreferredFoot  string     `json:"preferredFoot,omitempty"`
	Goals          int        `json:"goals"`
	Assists        int        `json:"assists"`
	Appearances    int        `json:"appearances"`
	ContractExpiry *time.Time `json:"contractExpiry,omitempty"`
	DataQuality    float64    `json:"dataQuality,omitempty"`
}

// Transfer status values accepted in a search request.
const (
	TransferAvailable      = "available"
	TransferContractEnding = "contract_ending"
	TransferAny            = "any"
)

// ValidPositions is the closed set of position codes.
var ValidPositions = map[string]bool{
	"GK": true, "CB": true, "LB": true, "RB": true, "LWB": true, "RWB": true,
	"CDM": true, "CM": true, "CAM": true, "LM": true, "RM": true,
	"LW": true, "RW": true, "ST": true, "CF": true,
}

// ValidLeagues is the closed set of league names accepted as filters.
var ValidLeagues = map[string]bool{
	"Premier League":  true,
	"La Liga":         true,
	"Serie A":         true,
	"Bundesliga":      true,
	"Ligue 1":         true,
	"Serie B":         true,
	"Championship":    true,
	"Eredivisie":      true,
	"Primeira Liga":   true,
	"Süper Lig":       true,
	"MLS":             true,
	"Brasileirão":     true,
	"Liga MX":         true,
	"2. Bundesliga":   true,
	"Scottish Premiership": true,
}

// TopLeagues is the top-5 set used for partial league credit.
var TopLeagues = map[string]bool{
	"Premier League": true,
	"La Liga":        true,
	"Serie A":        true,
	"Bundesliga":     true,
	"Ligue 1":        true,
}

var ValidTransferStatus = map[string]bool{
	TransferAvailable:      true,
	TransferContractEnding: true,
	TransferAny:            true,
}

var ValidPreferredFoot = map[string]bool{
	"left": true, "right": true, "both": true,
}

var ValidSortFields = map[string]bool{
	"relevance": true, "age": true, "market_value": true, "name": true,
}

var ValidSortDirections = map[string]bool{
	"asc": true, "desc": true,
}
