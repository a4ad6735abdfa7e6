package classify

var newsTypes = []string{"news", "talk show"}

var newsNameKeywords = []string{
	"news",
	"tonight show",
	"late show",
	"late night",
	"daily show",
	"good morning",
	"today show",
	"meet the press",
	"face the nation",
	"60 minutes",
	"dateline",
	"20/20",
	"nightline",
	"the view",
	"live with",
	"the talk",
	"jimmy kimmel",
	"colbert",
	"seth meyers",
	"jimmy fallon",
	"kelly clarkson",
	"tamron hall",
	"sherri",
	"the five",
	"hannity",
	"tucker",
	"anderson cooper",
	"situation room",
}

var sportsTypes = []string{"sports"}

var sportsNameKeywords = []string{
	"nfl",
	"nba",
	"mlb",
	"nhl",
	"ncaa",
	"football",
	"basketball",
	"baseball",
	"hockey",
	"soccer",
	"premier league",
	"wrestling",
	"wwe",
	"aew",
	"ufc",
	"boxing",
	"golf",
	"tennis",
	"nascar",
	"formula 1",
	"grand prix",
	"olympic",
	"world cup",
	"sportscenter",
}

var sportsNetworks = []string{
	"espn",
	"fox sports",
	"fs1",
	"nbc sports",
	"cbs sports",
	"tnt sports",
	"nfl network",
	"nba tv",
	"mlb network",
	"nhl network",
	"golf channel",
	"tennis channel",
	"big ten network",
	"sec network",
	"acc network",
	"dazn",
	"sky sports",
	"bt sport",
	"tsn",
	"sportsnet",
	"bein sports",
}

// DefaultAllowedCountries are the broadcaster countries kept when no
// allow-list is configured.
var DefaultAllowedCountries = []string{"US", "GB", "CA", "AU", "IE", "NZ"}
