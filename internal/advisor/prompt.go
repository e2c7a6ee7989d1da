package advisor

import (
	"encoding/json"
	"fmt"
)

const systemPrompt = "You are an expert agricultural consultant. Provide concise, actionable recommendations."

// maxNDVISummaryBytes caps how much NDVI JSON goes into the prompt.
const maxNDVISummaryBytes = 500

const promptTemplate = `You are an expert agricultural consultant specializing in soybean cultivation in Tanzania.

Analyze the following data for a soybean farm:

HISTORICAL DATA:
%s

WEATHER HISTORY SUMMARY:
%s

NDVI DATA SUMMARY:
%s

Based on this analysis, provide:
1. Optimal watering schedule for the next growing season
2. Recommended fertilization plan (types, amounts, timing)
3. Expected outcomes and peak green mass predictions

Format your response as JSON with the following structure:
{
  "watering": {
    "schedule": "detailed schedule",
    "description": "brief explanation"
  },
  "fertilization": [
    {
      "type": "fertilizer name",
      "schedule": "timing and amounts",
      "description": "brief explanation"
    }
  ],
  "predictions": {
    "peakGreenMass": "expected peak",
    "yieldEstimate": "estimated yield",
    "confidence": "confidence level"
  }
}`

// BuildPrompt assembles the consultant prompt from the knowledge base text,
// the yearly weather summary and the NDVI summary.
func BuildPrompt(knowledgeBase, weatherSummary, ndviSummary string) string {
	return fmt.Sprintf(promptTemplate, knowledgeBase, weatherSummary, ndviSummary)
}

// SummarizeNDVI renders NDVI data for prompt inclusion, truncated to keep
// token usage bounded. Nil data yields a pending note.
func SummarizeNDVI(ndvi any) string {
	if ndvi == nil {
		return "NDVI data integration pending"
	}
	b, err := json.Marshal(ndvi)
	if err != nil {
		return "NDVI data integration pending"
	}
	if len(b) > maxNDVISummaryBytes {
		b = b[:maxNDVISummaryBytes]
	}
	return string(b)
}
