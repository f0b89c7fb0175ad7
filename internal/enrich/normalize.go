package enrich

import (
	"regexp"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/poligraft/internal/model"
	"github.com/sells-group/poligraft/pkg/influence"
)

// maxTopIndustries caps Entity.TopIndustries.
const maxTopIndustries = 5

// Institutional names the recognizer reports that are too generic to link.
var suppressedNames = map[string]struct{}{
	"white house":          {},
	"house":                {},
	"senate":               {},
	"congress":             {},
	"assembly":             {},
	"supreme court":        {},
	"legislature":          {},
	"state senate":         {},
	"administration":       {},
	"obama administration": {},
	"republicans":          {},
	"republican party":     {},
	"democrats":            {},
	"democratic party":     {},
}

var (
	properNoun       = regexp.MustCompile(`^[A-Z0-9]`)
	placeholderIndus = regexp.MustCompile(`(?i)(unknown|listed or discovered)$`)
	lower            = cases.Lower(language.Und)
)

// Normalize converts recognizer matches into entities, preserving order.
// Matches without a proper-noun surface string and generic institutions are
// dropped. Entities are not de-duplicated.
func Normalize(matches []influence.Match) []model.Entity {
	var entities []model.Entity
	for _, m := range matches {
		if e, ok := normalizeMatch(m); ok {
			entities = append(entities, e)
		}
	}
	return entities
}

func normalizeMatch(m influence.Match) (model.Entity, bool) {
	var names []string
	for _, s := range m.MatchedText {
		if properNoun.MatchString(s) {
			names = append(names, s)
		}
	}
	if len(names) == 0 {
		return model.Entity{}, false
	}

	data := m.EntityData
	if _, ok := suppressedNames[lower.String(data.Name)]; ok {
		return model.Entity{}, false
	}

	e := model.Entity{
		TdataID:              data.ID,
		TdataName:            data.Name,
		TdataType:            data.Type,
		TdataSlug:            data.Slug,
		MatchedNames:         names,
		ContributorBreakdown: map[string]int{},
		RecipientBreakdown:   map[string]int{},
	}

	if cf := data.CampaignFinance; cf != nil {
		e.TdataCount = totalAmount(cf)
		if b := cf.ContributorLocalBreakdown; b != nil {
			addBreakdown(e.ContributorBreakdown, "in_state", b.InState, "out_of_state", b.OutOfState)
		}
		if b := cf.ContributorTypeBreakdown; b != nil {
			addBreakdown(e.ContributorBreakdown, "individual", b.Individual, "pac", b.PAC)
		}
		if b := cf.RecipientBreakdown; b != nil {
			addBreakdown(e.RecipientBreakdown, "dem", b.Dem, "rep", b.Rep)
		}
		e.TopIndustries = topIndustries(cf.TopIndustries)
	}

	if lb := data.Lobbying; lb != nil {
		for _, c := range lb.Clients {
			e.LobbyingClients = append(e.LobbyingClients, c.Name)
		}
		for _, i := range lb.TopIssues {
			e.LobbyingIssues = append(e.LobbyingIssues, i.Name)
		}
	}
	return e, true
}

// totalAmount sums money given by party and money received by type and
// location. Missing breakdowns count as zero.
func totalAmount(cf *influence.CampaignFinance) float64 {
	var total float64
	if b := cf.RecipientBreakdown; b != nil {
		total += float64(b.Dem) + float64(b.Rep)
	}
	if b := cf.ContributorTypeBreakdown; b != nil {
		total += float64(b.PAC) + float64(b.Individual)
	}
	if b := cf.ContributorLocalBreakdown; b != nil {
		total += float64(b.InState) + float64(b.OutOfState)
	}
	return total
}

// addBreakdown writes the whole-dollar percentage share of each side of a
// pair. Both shares are floored, so a nonzero pair can sum to 99.
func addBreakdown(dst map[string]int, firstKey string, first influence.Amount, secondKey string, second influence.Amount) {
	a, b := first.Int(), second.Int()
	sum := a + b
	if sum == 0 {
		sum = 1
	}
	dst[firstKey] = int(floorDiv(a*100, sum))
	dst[secondKey] = int(floorDiv(b*100, sum))
}

// floorDiv divides rounding toward negative infinity, unlike Go's /.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func topIndustries(industries []influence.Named) []string {
	var out []string
	seen := make(map[string]struct{}, maxTopIndustries)
	for _, ind := range industries {
		if len(out) >= maxTopIndustries {
			break
		}
		name := ind.Name
		if name == "Other" || name == "Administrative Use" || placeholderIndus.MatchString(name) {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
