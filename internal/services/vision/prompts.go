package vision

import (
	"fmt"
	"strings"

	"github.com/Nandan222001/ask-anything/internal/domain"
)

const categoryVocabulary = "food, plant, animal, landmark, technology, vehicle, art, document, fashion, nature, household, other"

const analysisFormat = `Respond with a single JSON object and nothing else:
{
  "explanation": "<explanation text>",
  "category": "<one of: %s>",
  "tags": ["<3-5 short lowercase tags>"],
  "confidence": <number between 0 and 1>
}`

// buildAnalysisSystemPrompt собирает системный промпт под режим и язык ответа
func buildAnalysisSystemPrompt(mode domain.AnalysisMode, language string) string {
	var b strings.Builder

	if mode == domain.ModeDeveloper {
		b.WriteString("You are an expert technical analyst. Explain what is in the photo with precise terminology, ")
		b.WriteString("technical details, measurements and domain context where relevant. Assume a professional audience.")
	} else {
		b.WriteString("You are a friendly expert who explains what is in a photo. ")
		b.WriteString("Write a clear, engaging explanation a curious non-expert would enjoy.")
	}

	if language != "" {
		b.WriteString(fmt.Sprintf(" Answer in %s.", language))
	}

	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf(analysisFormat, categoryVocabulary))
	return b.String()
}

// defaultUserPrompt вопрос по умолчанию, когда пользователь ничего не спросил
const defaultUserPrompt = "What is in this photo? Explain it."

// buildChatSystemPrompt собирает системный промпт для чата по готовому объяснению
func buildChatSystemPrompt(chatCtx domain.ChatContext) string {
	var b strings.Builder

	if chatCtx.Mode == domain.ModeDeveloper {
		b.WriteString("You are an expert technical analyst answering follow-up questions about a photo. ")
	} else {
		b.WriteString("You are a friendly expert answering follow-up questions about a photo. ")
	}
	b.WriteString("Stay on topic of the photo and the explanation below. Answer in the language of the question.\n\n")
	b.WriteString(fmt.Sprintf("Category: %s\n", chatCtx.Category))
	b.WriteString(fmt.Sprintf("Explanation of the photo:\n%s", chatCtx.Explanation))
	return b.String()
}
