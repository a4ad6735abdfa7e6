package pipeline

import (
	"log/slog"
	"sync"

	"tvcatalog/internal/catalog"
	"tvcatalog/internal/classify"
	"tvcatalog/internal/logging"
	"tvcatalog/internal/tvmaze"
)

// screen applies the classifier and remembers which shows it excluded, so a
// run can report distinct exclusions across every discovery path.
type screen struct {
	classifier *classify.Classifier
	logger     *slog.Logger

	mu       sync.Mutex
	excluded map[int64]string
}

func newScreen(classifier *classify.Classifier, logger *slog.Logger) *screen {
	return &screen{
		classifier: classifier,
		logger:     logger,
		excluded:   make(map[int64]string),
	}
}

// admit reports whether show may enter the registry.
func (s *screen) admit(show *tvmaze.Show) bool {
	excluded, rule := s.classifier.Explain(show)
	if !excluded {
		return true
	}
	if show == nil {
		return false
	}
	s.mu.Lock()
	_, seen := s.excluded[show.ID]
	s.excluded[show.ID] = rule
	s.mu.Unlock()
	if !seen {
		s.logger.Debug("show excluded",
			logging.String(logging.FieldShowID, catalog.NamespacedID(show.ID)),
			logging.String("name", show.Name),
			logging.String("rule", rule),
			logging.String(logging.FieldEventType, "show_excluded"),
		)
	}
	return false
}

func (s *screen) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.excluded)
}

func (s *screen) byRule() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int)
	for _, rule := range s.excluded {
		out[rule]++
	}
	return out
}
