package dataprocessing

import "strings"

// Default administrative tokens stripped before school names are joined.
var (
	DefaultPlatformStrip = []string{"縣立"}
	DefaultScoreStrip    = []string{"含垵湖分校"}
)

// Normalizer maps the school names of two sources onto a shared join key.
// Each side removes its own tokens by exact substring replacement.
type Normalizer struct {
	PlatformStrip []string
	ScoreStrip    []string
}

// NameChange records a name the normalizer rewrote.
type NameChange struct {
	Original   string
	Normalized string
}

// NewNormalizer builds a Normalizer, falling back to the default tokens
// for a side left empty.
func NewNormalizer(platformStrip, scoreStrip []string) *Normalizer {
	if len(platformStrip) == 0 {
		platformStrip = DefaultPlatformStrip
	}
	if len(scoreStrip) == 0 {
		scoreStrip = DefaultScoreStrip
	}
	return &Normalizer{PlatformStrip: platformStrip, ScoreStrip: scoreStrip}
}

// Platform normalizes a name taken from a usage platform export.
func (n *Normalizer) Platform(name string) string {
	return stripTokens(name, n.PlatformStrip)
}

// Score normalizes a name taken from the test-score export.
func (n *Normalizer) Score(name string) string {
	return stripTokens(name, n.ScoreStrip)
}

// PlatformChanges lists the platform names that normalization rewrote, in input order.
func (n *Normalizer) PlatformChanges(names []string) []NameChange {
	return collectChanges(names, n.Platform)
}

// ScoreChanges lists the test-score names that normalization rewrote, in input order.
func (n *Normalizer) ScoreChanges(names []string) []NameChange {
	return collectChanges(names, n.Score)
}

// NormalizeSchoolName strips every default token from name.
func NormalizeSchoolName(name string) string {
	return stripTokens(stripTokens(name, DefaultPlatformStrip), DefaultScoreStrip)
}

func stripTokens(name string, tokens []string) string {
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		name = strings.ReplaceAll(name, tok, "")
	}
	return name
}

func collectChanges(names []string, fn func(string) string) []NameChange {
	var changes []NameChange
	for _, name := range names {
		if norm := fn(name); norm != name {
			changes = append(changes, NameChange{Original: name, Normalized: norm})
		}
	}
	return changes
}
