package moderation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Category is one member of the fixed moderation category set.
type Category string

const (
	Harassment            Category = "harassment"
	HateSpeech            Category = "hate_speech"
	InappropriateLanguage Category = "inappropriate_language"
	Spam                  Category = "spam"
	Violence              Category = "violence"
	SexualContent         Category = "sexual_content"
)

// Categories is the closed category set reported on every check.
var Categories = []Category{Harassment, HateSpeech, InappropriateLanguage, Spam, Violence, SexualContent}

// ReasonUnavailable marks a result produced while the classifier was down.
const ReasonUnavailable = "Moderation service unavailable"

// FailPolicy decides what a classifier outage does to the request.
type FailPolicy int

const (
	// FailOpen lets the request through with a degraded marker.
	FailOpen FailPolicy = iota
	// FailClosed blocks the request.
	FailClosed
)

func ParseFailPolicy(s string) FailPolicy {
	if strings.EqualFold(strings.TrimSpace(s), "closed") {
		return FailClosed
	}
	return FailOpen
}

// Classifier produces raw per-category scores in [0,1]. Categories it does
// not cover may be omitted and are treated as 0.
type Classifier interface {
	Classify(ctx context.Context, text string) (map[Category]float64, error)
}

type Result struct {
	Flagged        bool
	Categories     map[Category]bool
	CategoryScores map[Category]float64
	Reason         string
	Degraded       bool
}

type Config struct {
	Thresholds map[Category]float64
	Policy     FailPolicy
	CacheSize  int
}

// DefaultThresholds flags any category at or above 0.5.
func DefaultThresholds() map[Category]float64 {
	t := make(map[Category]float64, len(Categories))
	for _, c := range Categories {
		t[c] = 0.5
	}
	return t
}

// Gate applies thresholds to classifier scores. It has no side effects
// beyond its result cache.
type Gate struct {
	classifier Classifier
	cfg        Config
	cache      *lru.Cache[string, Result]
}

func NewGate(classifier Classifier, cfg Config) *Gate {
	thresholds := DefaultThresholds()
	for c, v := range cfg.Thresholds {
		thresholds[c] = v
	}
	cfg.Thresholds = thresholds

	g := &Gate{classifier: classifier, cfg: cfg}
	if cfg.CacheSize > 0 {
		g.cache, _ = lru.New[string, Result](cfg.CacheSize)
	}
	return g
}

func (g *Gate) Policy() FailPolicy { return g.cfg.Policy }

// Check classifies text. Classifier errors are never returned: they are
// folded into a degraded result according to the fail policy.
func (g *Gate) Check(ctx context.Context, text string) Result {
	key := cacheKey(text)
	if g.cache != nil {
		if r, ok := g.cache.Get(key); ok {
			return r.clone()
		}
	}

	scores, err := g.classifier.Classify(ctx, text)
	if err != nil {
		return g.degraded()
	}

	res := g.decide(scores)
	if g.cache != nil {
		g.cache.Add(key, res.clone())
	}
	return res
}

func (g *Gate) decide(scores map[Category]float64) Result {
	res := Result{
		Categories:     make(map[Category]bool, len(Categories)),
		CategoryScores: make(map[Category]float64, len(Categories)),
	}
	var hit []string
	for _, c := range Categories {
		s := clamp(scores[c])
		res.CategoryScores[c] = s
		over := s >= g.cfg.Thresholds[c] && s > 0
		res.Categories[c] = over
		if over {
			hit = append(hit, string(c))
		}
	}
	if len(hit) > 0 {
		sort.Strings(hit)
		res.Flagged = true
		res.Reason = fmt.Sprintf("Content flagged for: %s", strings.Join(hit, ", "))
	}
	return res
}

func (g *Gate) degraded() Result {
	res := Result{
		Categories:     make(map[Category]bool, len(Categories)),
		CategoryScores: make(map[Category]float64, len(Categories)),
		Reason:         ReasonUnavailable,
		Degraded:       true,
		Flagged:        g.cfg.Policy == FailClosed,
	}
	for _, c := range Categories {
		res.Categories[c] = false
		res.CategoryScores[c] = 0
	}
	return res
}

func (r Result) clone() Result {
	out := r
	out.Categories = make(map[Category]bool, len(r.Categories))
	for k, v := range r.Categories {
		out.Categories[k] = v
	}
	out.CategoryScores = make(map[Category]float64, len(r.CategoryScores))
	for k, v := range r.CategoryScores {
		out.CategoryScores[k] = v
	}
	return out
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
