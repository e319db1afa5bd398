// Package router decides the effective model tier for a prompt.
package router

import (
	"log"
	"strings"

	"codeloom/internal/models"
)

const (
	lengthThreshold = 150
	upgradeScore    = 3
)

// complexityKeywords each add two points when present in the prompt.
var complexityKeywords = []string{
	"architecture",
	"security",
	"realtime",
	"real-time",
	"microservice",
	"compiler",
	"interpreter",
	"mobile",
	"rust",
	"authentication",
	"authorization",
	"dashboard",
	"database",
	"websocket",
	"encryption",
	"distributed",
	"concurrency",
	"machine learning",
	"payment",
}

// Route returns the tier to actually call. Long or keyword-heavy prompts
// upgrade the fast tier to the reasoning tier; an explicitly requested
// reasoning tier is never downgraded. Pure apart from the decision log.
func Route(userText, requestedTier string) string {
	score := Score(userText)
	if score >= upgradeScore && requestedTier == models.TierFast {
		log.Printf("router: complexity score %d, upgrading %s -> %s", score, requestedTier, models.TierReasoning)
		return models.TierReasoning
	}
	return requestedTier
}

// Score computes the complexity score for a prompt: one point for length
// beyond the threshold, two per matched keyword.
func Score(userText string) int {
	score := 0
	if len(userText) > lengthThreshold {
		score++
	}
	lower := strings.ToLower(userText)
	for _, kw := range complexityKeywords {
		if strings.Contains(lower, kw) {
			score += 2
		}
	}
	return score
}
