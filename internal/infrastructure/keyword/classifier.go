package keyword

import (
	"context"
	"regexp"
	"strings"

	"paperfetcher/internal/ports"
)

// Classifier is a cheap heuristic relevance filter usable in place of the LLM
// classifier: it matches bias/fairness terms that must co-occur with a
// language-model term.
type Classifier struct{}

var _ ports.RelevanceClassifier = (*Classifier)(nil)

// New builds the keyword classifier.
func New() *Classifier { return &Classifier{} }

var biasRe = regexp.MustCompile(`(?i)\bbias(ed)?\b|\bfairness\b|\bdebias|\bstereotyp|\bdiscriminat|\balignment\b|\btoxicity\b`)

var modelTerms = []string{
	"language model",
	"llm",
	"nlp",
	"gpt",
	"foundation model",
	"generative",
	"text generation",
	"chatbot",
}

// Classify never fails; absence of signal is simply a negative verdict.
func (c *Classifier) Classify(_ context.Context, title, abstract string) (bool, error) {
	text := strings.ToLower(title + " " + abstract)

	if biasRe.FindStringIndex(text) == nil {
		return false, nil
	}

	for _, term := range modelTerms {
		if strings.Contains(text, term) {
			return true, nil
		}
	}
	return false, nil
}
