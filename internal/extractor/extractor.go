package extractor

import (
	"log/slog"

	"github.com/contactsleuth/contactsleuth/internal/model"
)

// Extractor is the contract every extraction strategy implements.
//
// Design decision: an explicit registry of named instances rather than
// runtime type inspection. The contextual strategy looks other strategies up
// by name to re-run them inside weighted page regions.
type Extractor interface {
	// Name returns the strategy's name for registry lookup and logging.
	Name() string

	// Extract returns all facts found in the text. Confidence and type are
	// set by the strategy; the source URL is attached by the caller, which
	// knows which page the text came from.
	Extract(text string) []model.Fact
}

// Registry holds extraction strategies in registration order with lookup by
// name.
type Registry struct {
	order  []Extractor
	byName map[string]Extractor
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Extractor)}
}

// Register adds a strategy. Registering a second strategy under the same
// name replaces the lookup entry but keeps both in run order.
func (r *Registry) Register(e Extractor) {
	r.order = append(r.order, e)
	r.byName[e.Name()] = e
}

// Get returns the strategy registered under name, or nil.
func (r *Registry) Get(name string) Extractor {
	return r.byName[name]
}

// All returns the strategies in registration order.
func (r *Registry) All() []Extractor {
	return r.order
}

// safeExtract runs one strategy with panic isolation: a failing extractor
// yields zero facts and a log line, never aborting the page's extraction.
func safeExtract(e Extractor, text string, logger *slog.Logger) (facts []model.Fact) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Warn("extractor failed",
				"extractor", e.Name(),
				"panic", rec,
			)
			facts = nil
		}
	}()
	return e.Extract(text)
}
