package categorizer

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"fjacquet/expense-tracker/internal/logging"
	"fjacquet/expense-tracker/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed keywords.yaml
var defaultKeywordsYAML []byte

// KeywordSet is the keyword list of one category.
type KeywordSet struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

type keywordFile struct {
	Categories []KeywordSet `yaml:"categories"`
}

// ParseKeywordSets reads keyword sets from YAML. Category names must belong
// to the closed set.
func ParseKeywordSets(data []byte) ([]KeywordSet, error) {
	var f keywordFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("could not parse keyword sets: %w", err)
	}
	for i, set := range f.Categories {
		if !models.Category(set.Name).Valid() {
			return nil, fmt.Errorf("keyword set %d: unknown category %q", i, set.Name)
		}
		for j, kw := range set.Keywords {
			f.Categories[i].Keywords[j] = strings.ToLower(kw)
		}
	}
	return f.Categories, nil
}

// DefaultKeywordSets returns the built-in food, travel and friends sets.
func DefaultKeywordSets() []KeywordSet {
	sets, err := ParseKeywordSets(defaultKeywordsYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded keywords.yaml is invalid: %v", err))
	}
	return sets
}

// KeywordStrategy is the deterministic fallback classifier: case-insensitive
// substring matching against ordered keyword sets. It always produces a
// result; no match yields others with an empty subcategory.
type KeywordStrategy struct {
	sets   []KeywordSet
	logger logging.Logger
}

// NewKeywordStrategy uses sets, or the defaults when sets is nil.
func NewKeywordStrategy(sets []KeywordSet, logger logging.Logger) *KeywordStrategy {
	if sets == nil {
		sets = DefaultKeywordSets()
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &KeywordStrategy{sets: sets, logger: logger}
}

func (s *KeywordStrategy) Name() string {
	return "Keyword"
}

func (s *KeywordStrategy) Categorize(_ context.Context, description string) (models.CategoryResult, bool, error) {
	return s.Classify(description), true, nil
}

// Classify runs the keyword match without a context.
func (s *KeywordStrategy) Classify(description string) models.CategoryResult {
	lower := strings.ToLower(description)
	for _, set := range s.sets {
		for _, kw := range set.Keywords {
			if strings.Contains(lower, kw) {
				s.logger.Debug("Description categorized by keyword",
					logging.F(logging.FieldStrategy, s.Name()),
					logging.F("keyword", kw),
					logging.F(logging.FieldCategory, set.Name))
				return models.CategoryResult{Category: models.Category(set.Name), Source: s.Name()}
			}
		}
	}
	return models.CategoryResult{Category: models.CategoryOthers, Source: s.Name()}
}
