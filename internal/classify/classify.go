package classify

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"tvcatalog/internal/language"
	"tvcatalog/internal/tvmaze"
)

// Category groups rules by the reason they exclude a show.
type Category string

const (
	CategoryNews      Category = "news"
	CategorySports    Category = "sports"
	CategoryGeography Category = "geography"
	CategoryBlocked   Category = "blocked"
)

// Field names the show attribute a rule inspects.
type Field string

const (
	FieldType        Field = "type"
	FieldGenre       Field = "genre"
	FieldName        Field = "name"
	FieldBroadcaster Field = "broadcaster"
	FieldCountry     Field = "country"
)

// Rule is one exclusion predicate.
type Rule struct {
	Name     string
	Category Category
	Field    Field
	Match    func(show *tvmaze.Show) bool
}

// Options tunes the rule table.
type Options struct {
	AllowedCountries         []string
	Conservative             bool
	BlockedNetworks          []string
	BlockedNetworkSubstrings []string
	ExtraNewsKeywords        []string
	ExtraSportsKeywords      []string
}

// Classifier evaluates the rule table. It is safe for concurrent use.
type Classifier struct {
	rules        []Rule
	allowed      map[string]struct{}
	conservative bool
}

// New builds a classifier from opts.
func New(opts Options) *Classifier {
	c := &Classifier{
		allowed:      make(map[string]struct{}),
		conservative: opts.Conservative,
	}
	countries := opts.AllowedCountries
	if len(countries) == 0 {
		countries = DefaultAllowedCountries
	}
	for _, code := range countries {
		if code = strings.ToUpper(strings.TrimSpace(code)); code != "" {
			c.allowed[code] = struct{}{}
		}
	}

	newsKeywords := append(slices.Clone(newsNameKeywords), opts.ExtraNewsKeywords...)
	sportsKeywords := append(slices.Clone(sportsNameKeywords), opts.ExtraSportsKeywords...)

	c.rules = []Rule{
		equalsRule("news:type", CategoryNews, FieldType, newsTypes),
		equalsRule("news:genre", CategoryNews, FieldGenre, newsTypes),
		containsRule("news:name", CategoryNews, FieldName, newsKeywords),
		equalsRule("sports:type", CategorySports, FieldType, sportsTypes),
		equalsRule("sports:genre", CategorySports, FieldGenre, sportsTypes),
		containsRule("sports:name", CategorySports, FieldName, sportsKeywords),
		containsRule("sports:network", CategorySports, FieldBroadcaster, sportsNetworks),
		{
			Name:     "geography:country",
			Category: CategoryGeography,
			Field:    FieldCountry,
			Match:    c.disallowedCountry,
		},
		{
			Name:     "geography:absent",
			Category: CategoryGeography,
			Field:    FieldCountry,
			Match:    c.absentCountry,
		},
	}
	if len(opts.BlockedNetworks) > 0 {
		c.rules = append(c.rules, equalsRule("blocked:network", CategoryBlocked, FieldBroadcaster, opts.BlockedNetworks))
	}
	if len(opts.BlockedNetworkSubstrings) > 0 {
		c.rules = append(c.rules, containsRule("blocked:network_substring", CategoryBlocked, FieldBroadcaster, opts.BlockedNetworkSubstrings))
	}
	return c
}

// Rules returns the rule table in evaluation order.
func (c *Classifier) Rules() []Rule {
	return slices.Clone(c.rules)
}

// Explain reports whether show is excluded and the name of the first rule
// that matched. A nil show is excluded.
func (c *Classifier) Explain(show *tvmaze.Show) (bool, string) {
	if show == nil {
		return true, "missing"
	}
	for _, rule := range c.rules {
		if rule.Match(show) {
			return true, rule.Name
		}
	}
	return false, ""
}

// IsExcluded reports whether any rule matches show.
func (c *Classifier) IsExcluded(show *tvmaze.Show) bool {
	excluded, _ := c.Explain(show)
	return excluded
}

func (c *Classifier) disallowedCountry(show *tvmaze.Show) bool {
	code := show.CountryCode()
	if code == "" {
		return false
	}
	_, ok := c.allowed[code]
	return !ok
}

// absentCountry applies only in conservative mode. English web-only
// originals stay allowed in both modes.
func (c *Classifier) absentCountry(show *tvmaze.Show) bool {
	if !c.conservative || show.CountryCode() != "" {
		return false
	}
	if show.WebOnly() && language.IsEnglish(show.Language) {
		return false
	}
	return true
}

func fieldValues(show *tvmaze.Show, field Field) []string {
	switch field {
	case FieldType:
		return []string{show.Type}
	case FieldGenre:
		return show.Genres
	case FieldName:
		return []string{show.Name}
	case FieldBroadcaster:
		var names []string
		for _, ch := range []*tvmaze.Channel{show.Network, show.WebChannel} {
			if ch != nil && ch.Name != "" {
				names = append(names, ch.Name)
			}
		}
		return names
	case FieldCountry:
		return []string{show.CountryCode()}
	}
	return nil
}

func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

func foldAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if f := fold(v); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func equalsRule(name string, category Category, field Field, values []string) Rule {
	wanted := foldAll(values)
	return Rule{
		Name:     name,
		Category: category,
		Field:    field,
		Match: func(show *tvmaze.Show) bool {
			for _, v := range fieldValues(show, field) {
				if slices.Contains(wanted, fold(v)) {
					return true
				}
			}
			return false
		},
	}
}

func containsRule(name string, category Category, field Field, needles []string) Rule {
	wanted := foldAll(needles)
	return Rule{
		Name:     name,
		Category: category,
		Field:    field,
		Match: func(show *tvmaze.Show) bool {
			for _, v := range fieldValues(show, field) {
				folded := fold(v)
				if folded == "" {
					continue
				}
				for _, needle := range wanted {
					if strings.Contains(folded, needle) {
						return true
					}
				}
			}
			return false
		},
	}
}
