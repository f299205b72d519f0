// Package detect implements the predicate bodies behind governance rules:
// lexical prompt-injection detection and repetition detection.
package detect

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed patterns.yaml
var embeddedPatterns []byte

// Alignment scoring constants.
const (
	baseAlignment      = 0.9
	indicatorPenalty   = 0.2
	adversarialPenalty = 0.0
)

// patternFile is the on-disk layout of patterns.yaml.
type patternFile struct {
	Patterns   []Pattern `yaml:"patterns"`
	SelfTest   []string  `yaml:"self_test"`
	Indicators []string  `yaml:"alignment_indicators"`
}

// Pattern is one adversarial signature.
type Pattern struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description"`
	Regex       string `yaml:"regex"`

	compiled *regexp.Regexp
}

// Match describes the pattern that flagged an input.
type Match struct {
	PatternID   string
	Description string
	Text        string
}

// SelfTestResult is the outcome of replaying one corpus entry.
type SelfTestResult struct {
	Input    string
	Detected bool
}

// SelfTestReport summarizes a replay of the self-test corpus.
type SelfTestReport struct {
	Results  []SelfTestResult
	Detected int
	Total    int
}

// Rate returns the detection rate as a percentage.
func (r SelfTestReport) Rate() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Detected) / float64(r.Total) * 100
}

// Adversarial detects prompt-injection attempts by lexical pattern matching.
// It is immutable after construction and safe for concurrent use.
type Adversarial struct {
	patterns   []Pattern
	selfTest   []string
	indicators []string
}

// NewAdversarial builds a detector from the patterns compiled into the binary.
func NewAdversarial() (*Adversarial, error) {
	return ParseAdversarial(embeddedPatterns)
}

// ParseAdversarial builds a detector from a YAML pattern document.
func ParseAdversarial(data []byte) (*Adversarial, error) {
	var file patternFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse adversarial patterns: %w", err)
	}
	if len(file.Patterns) == 0 {
		return nil, fmt.Errorf("adversarial pattern file defines no patterns")
	}

	for i := range file.Patterns {
		p := &file.Patterns[i]
		re, err := regexp.Compile("(?i)" + p.Regex)
		if err != nil {
			return nil, fmt.Errorf("failed to compile pattern %q: %w", p.ID, err)
		}
		p.compiled = re
	}

	indicators := make([]string, len(file.Indicators))
	for i, ind := range file.Indicators {
		indicators[i] = strings.ToLower(ind)
	}

	return &Adversarial{
		patterns:   file.Patterns,
		selfTest:   file.SelfTest,
		indicators: indicators,
	}, nil
}

// Detect returns the first pattern matching text.
func (a *Adversarial) Detect(text string) (Match, bool) {
	for _, p := range a.patterns {
		if loc := p.compiled.FindStringIndex(text); loc != nil {
			return Match{
				PatternID:   p.ID,
				Description: p.Description,
				Text:        text[loc[0]:loc[1]],
			}, true
		}
	}
	return Match{}, false
}

// PatternIDs returns the IDs of the loaded patterns in evaluation order.
func (a *Adversarial) PatternIDs() []string {
	ids := make([]string, len(a.patterns))
	for i, p := range a.patterns {
		ids[i] = p.ID
	}
	return ids
}

// SelfTest replays the built-in corpus of known-bad prompts.
func (a *Adversarial) SelfTest() SelfTestReport {
	report := SelfTestReport{
		Results: make([]SelfTestResult, 0, len(a.selfTest)),
		Total:   len(a.selfTest),
	}
	for _, input := range a.selfTest {
		_, hit := a.Detect(input)
		if hit {
			report.Detected++
		}
		report.Results = append(report.Results, SelfTestResult{Input: input, Detected: hit})
	}
	return report
}

// Alignment scores how well a fragment of output aligns with governance, in
// [0, 1]. Adversarial text scores 0; otherwise each violation indicator
// present lowers the score from 0.9.
func (a *Adversarial) Alignment(token string) float64 {
	if _, hit := a.Detect(token); hit {
		return adversarialPenalty
	}

	lower := strings.ToLower(token)
	score := baseAlignment
	for _, ind := range a.indicators {
		if strings.Contains(lower, ind) {
			score -= indicatorPenalty
		}
	}
	return min(1, max(0, score))
}
