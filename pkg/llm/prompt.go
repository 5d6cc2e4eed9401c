package llm

import "fmt"

const earningsPromptTemplate = `Imagine you are a financial analyst tasked with analyzing the following data for the ticker %s. Your goal is to identify key financial results, successes, challenges, and future plans.

Start with a clear and engaging title.
Summarize the main financial results at the top, prioritizing clarity and relevance.
Highlight key successes and notable failures from the provided information, along with any insights into future plans or strategies.
If the data includes an earnings call, summarize the Q&A session by focusing on the most critical questions and answers.
Convert non-USD currencies to USD for consistency.
Provide additional context for the audience:

Brief overviews of countries (GDP, population, region) or companies (primary revenue sources, locations) mentioned.
Simplified explanations of complex financial terms as if explaining to a beginner.
Make the article engaging, clear, and easy to understand. You can use emojis to emphasize points but avoid using Markdown formatting.`

// EarningsPrompt is the analyst instruction followed by the call transcript.
func EarningsPrompt(ticker, transcript string) []Segment {
	return []Segment{
		TextSegment{Text: fmt.Sprintf(earningsPromptTemplate, ticker)},
		TextSegment{Text: transcript},
	}
}
