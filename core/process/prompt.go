// ABOUTME: Prompt construction for the LLM batch processor
// ABOUTME: Builds the strict-JSON instruction prompts sent with each batch

package process

import (
	"encoding/json"
	"fmt"

	"business-digest-api/core/domain"
)

const systemPrompt = `You are a precise India business analyst. Use only the provided item fields (title, summary, source, link, published). Do not invent facts. When unsure, say "unclear". Return strict JSON only.`

const taskInstructions = `TASKS:
For each item, produce:
1. one_liner (<=22 words, factual, no adjectives without evidence).
2. bullets (array, <=2, each = what happened + why it matters to India or investors + numbers if present).
3. Classify each item into zero or more labels from: policy, markets, startups, infra, energy
   If none fit, use misc.
4. Extract auto_tags:
   - companies: up to 5 company names mentioned
   - sectors: up to 3 business sectors
   - financial_terms: up to 4 financial/business terms
   - entities: up to 3 other entities like exchanges, currencies, government bodies

Return exactly:
[{
 "title": "...",
 "source": "...",
 "link": "...",
 "published": "...",
 "one_liner": "...",
 "bullets": ["...", "..."],
 "labels": ["policy"],
 "auto_tags": {
   "companies": ["..."],
   "sectors": ["..."],
   "financial_terms": ["..."],
   "entities": ["..."]
 }
}]`

// buildUserPrompt renders the full batch prompt with the input items
// embedded as JSON.
func buildUserPrompt(items []domain.RawArticle) string {
	encoded, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		encoded = []byte("[]")
	}
	return fmt.Sprintf("INPUT JSON: %s\n\n%s", encoded, taskInstructions)
}

// buildSimplifiedPrompt renders the shorter retry prompt used after a
// parse failure. Only the leading items are included to keep the request
// small.
func buildSimplifiedPrompt(items []domain.RawArticle) string {
	encoded, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		encoded = []byte("[]")
	}
	return fmt.Sprintf(`Summarize these India business news items into JSON. For each item return: title, source, link, published, one_liner (max 22 words), bullets (max 2), labels (from: policy, markets, startups, infra, energy, misc), auto_tags (companies, sectors, financial_terms, entities).

Items: %s

Return JSON array.`, encoded)
}
