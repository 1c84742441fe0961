package moderation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIClassifier scores text with the OpenAI moderation endpoint. Categories
// the endpoint does not report (inappropriate language, spam) are scored by
// the local keyword classifier.
type OpenAIClassifier struct {
	client  openai.Client
	timeout time.Duration
	local   *KeywordClassifier
}

func NewOpenAIClassifier(apiKey string, timeout time.Duration, local *KeywordClassifier) *OpenAIClassifier {
	if local == nil {
		local = NewKeywordClassifier(nil)
	}
	return &OpenAIClassifier{
		client:  openai.NewClient(option.WithAPIKey(apiKey), option.WithMaxRetries(1)),
		timeout: timeout,
		local:   local,
	}
}

func (o *OpenAIClassifier) Classify(ctx context.Context, text string) (map[Category]float64, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	resp, err := o.client.Moderations.New(ctx, openai.ModerationNewParams{
		Input: openai.ModerationNewParamsInputUnion{OfString: openai.String(text)},
		Model: openai.ModerationModelOmniModerationLatest,
	})
	if err != nil {
		return nil, fmt.Errorf("openai moderation: %w", err)
	}
	if len(resp.Results) == 0 {
		return nil, errors.New("openai moderation: empty result")
	}

	r := resp.Results[0]
	s := r.CategoryScores
	scores := map[Category]float64{
		Harassment:    max(s.Harassment, s.HarassmentThreatening),
		HateSpeech:    max(s.Hate, s.HateThreatening),
		Violence:      max(s.Violence, s.ViolenceGraphic, s.SelfHarm, s.SelfHarmIntent, s.SelfHarmInstructions),
		SexualContent: max(s.Sexual, s.SexualMinors),
	}

	// The endpoint's own verdict wins over a low score.
	c := r.Categories
	raise(scores, Harassment, c.Harassment || c.HarassmentThreatening)
	raise(scores, HateSpeech, c.Hate || c.HateThreatening)
	raise(scores, Violence, c.Violence || c.ViolenceGraphic || c.SelfHarm || c.SelfHarmIntent || c.SelfHarmInstructions)
	raise(scores, SexualContent, c.Sexual || c.SexualMinors)

	local := o.local.Scores(text)
	scores[InappropriateLanguage] = local[InappropriateLanguage]
	scores[Spam] = local[Spam]
	return scores, nil
}

func raise(scores map[Category]float64, c Category, flagged bool) {
	if flagged && scores[c] < 1 {
		scores[c] = 1
	}
}
