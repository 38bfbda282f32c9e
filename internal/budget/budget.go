// Package budget estimates token counts and trims chat history so prompts fit
// the model's context window. The assistant supports several LLM backends with
// different tokenizers, so estimation uses a conservative character heuristic:
// 1 token ≈ 4 characters of English prose. This under-estimates on purpose to
// leave headroom for model-specific overhead.
package budget

import (
	"github.com/cloudwego/eino/schema"
)

const (
	// charsPerToken is the character-to-token ratio used for estimation.
	charsPerToken = 4

	// DefaultMaxContextTokens is the default input context budget in tokens.
	// Small enough to fit 8k-context models with room left for the response.
	DefaultMaxContextTokens = 6000
)

// Estimate returns a rough token count for s using the character heuristic.
func Estimate(s string) int {
	n := len(s) / charsPerToken
	if n == 0 && len(s) > 0 {
		return 1
	}
	return n
}

// EstimateMessages returns the estimated total token count for a slice of
// schema.Message values, summing role + content for each message.
func EstimateMessages(msgs []*schema.Message) int {
	total := 0
	for _, m := range msgs {
		// Per-message framing overhead, roughly 4 tokens in most chat APIs.
		total += 4
		total += Estimate(string(m.Role))
		total += Estimate(m.Content)
	}
	return total
}

// TrimHistory drops the oldest messages from history until fixed + history
// fits within maxTokens. fixed holds messages that must survive trimming (the
// system prompt with retrieved context and the current user message); history
// holds prior conversation turns.
//
// If fixed alone exceeds the budget the empty slice is returned; fixed
// messages are never dropped here, so callers should warn separately in that
// case.
func TrimHistory(fixed, history []*schema.Message, maxTokens int) []*schema.Message {
	if len(history) == 0 {
		return history
	}

	fixedTokens := EstimateMessages(fixed)

	// History is typically short (≤20 messages); a linear scan dropping the
	// oldest entry each round is clear and correct.
	for len(history) > 0 {
		if fixedTokens+EstimateMessages(history) <= maxTokens {
			break
		}
		history = history[1:]
	}
	return history
}
