package config

const (
	defaultOutputDir         = "./"
	defaultStateDir          = "~/.local/share/tvcatalog"
	defaultLogDir            = "~/.local/share/tvcatalog/logs"
	defaultLogRetentionDays  = 30
	defaultTVMazeBaseURL     = "https://api.tvmaze.com"
	defaultTVMazeMinInterval = 150
	defaultTVMazeMaxRetries  = 5
	defaultTVMazeBackoffStep = 500
	defaultRequestTimeout    = 20
	defaultScheduleCountry   = "US"
	defaultUserAgent         = "tvcatalog/dev"
	defaultTMDBBaseURL       = "https://api.themoviedb.org/3"
	defaultTMDBLanguage      = "en-US"
	defaultCatalogID         = "tvmaze_weekly_schedule"
	defaultCatalogName       = "Recently Aired"
	defaultWindowDays        = 10
	defaultConcurrency       = 1
	defaultTMDBMaxPages      = 3
	defaultMaxCandidates     = 200
	defaultServerBind        = "127.0.0.1:7000"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

var defaultAllowedCountries = []string{"US", "GB", "CA", "AU", "IE", "NZ"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			StateDir:  defaultStateDir,
			LogDir:    defaultLogDir,
		},
		TVMaze: TVMaze{
			BaseURL:         defaultTVMazeBaseURL,
			MinIntervalMS:   defaultTVMazeMinInterval,
			MaxRetries:      defaultTVMazeMaxRetries,
			BackoffStepMS:   defaultTVMazeBackoffStep,
			RequestTimeout:  defaultRequestTimeout,
			ScheduleCountry: defaultScheduleCountry,
			UserAgent:       defaultUserAgent,
		},
		TMDB: TMDB{
			BaseURL:  defaultTMDBBaseURL,
			Language: defaultTMDBLanguage,
		},
		Catalog: Catalog{
			ID:         defaultCatalogID,
			Name:       defaultCatalogName,
			WindowDays: defaultWindowDays,
		},
		Filters: Filters{
			AllowedCountries: append([]string(nil), defaultAllowedCountries...),
		},
		Discovery: Discovery{
			Concurrency:    defaultConcurrency,
			EpisodesByDate: true,
			CrossProvider:  true,
			TMDBMaxPages:   defaultTMDBMaxPages,
			MaxCandidates:  defaultMaxCandidates,
		},
		Server: Server{
			Bind: defaultServerBind,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
