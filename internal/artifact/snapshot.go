package artifact

import (
	"github.com/tabeebchat/triage/internal/classifier"
	"github.com/tabeebchat/triage/internal/index"
	"github.com/tabeebchat/triage/internal/model"
	"github.com/tabeebchat/triage/internal/vectorizer"
)

// Snapshot is the immutable set of loaded artifacts serving all requests
// until replaced. It holds no mutable state; any number of goroutines may
// read it concurrently without locking.
type Snapshot struct {
	Vectorizer *vectorizer.Vectorizer
	Classifier *classifier.Classifier
	Index      *index.Index
	byLabel    map[string]model.Category
}

// Categories returns the ordered category set.
func (s *Snapshot) Categories() []model.Category {
	return s.Classifier.Categories()
}

// CategoryByLabel resolves an internal label to its category.
func (s *Snapshot) CategoryByLabel(label string) (model.Category, bool) {
	cat, ok := s.byLabel[label]
	return cat, ok
}
