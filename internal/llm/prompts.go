package llm

import "strings"

// AnswerSystemPrompt is the instruction sent with every grounded question.
const AnswerSystemPrompt = "You are an expert at providing answers about stocks. Please answer my question provided.\n"

const extractionPromptTemplate = `You are an expert financial analyst with a deep understanding of the stock market.
Your task is to analyze the following article and extract any stock tickers (e.g., AAPL for Apple, TSLA for Tesla) mentioned or strongly implied based on company names or context. Focus only on publicly traded companies.

<article_text>
{{ARTICLE}}
</article_text>

Return the stock tickers in JSON format, where each ticker is provided along with a specific explanation in the following structure:
{
    "tickers": [
        {"ticker": "AAPL", "explanation": "Apple is mentioned in the article for its recent financial performance."},
        {"ticker": "TSLA", "explanation": "Tesla is referenced in the context of electric vehicles."}
    ]
}

Additional considerations:
1. If a company name is mentioned, map it to its ticker symbol if it is publicly traded.
2. Include only unique tickers. Avoid duplicates.
3. If no relevant tickers are found, return an empty list like this: { "tickers": [] }
4. Use reliable mapping of company names to tickers; do not make assumptions.

Provide the result strictly in JSON format with no additional text.`

// ExtractionPrompt embeds articleText verbatim in the ticker extraction instruction.
func ExtractionPrompt(articleText string) string {
	return strings.Replace(extractionPromptTemplate, "{{ARTICLE}}", articleText, 1)
}
