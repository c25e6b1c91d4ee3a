package domain

// AnalysisMode режим построения промпта для модели
type AnalysisMode string

const (
	ModeStandard  AnalysisMode = "standard"
	ModeDeveloper AnalysisMode = "developer"
)

// AnalysisRequest запрос на анализ изображения
type AnalysisRequest struct {
	ImageURL  string
	ImageHash string // входит в ключ кэша вместо самих байт
	Prompt    string
	Mode      AnalysisMode
	Language  string
}

// AnalysisResult результат анализа изображения (кэшируется как есть)
type AnalysisResult struct {
	Explanation  string   `json:"explanation"`
	Category     Category `json:"category"`
	Tags         Tags     `json:"tags"`
	Confidence   float64  `json:"confidence"`
	Model        string   `json:"model"`
	TokensUsed   int      `json:"tokens_used"`
	ProcessingMs int64    `json:"processing_ms"`
}

// ChatTurn одна реплика истории для модели
type ChatTurn struct {
	Role    MessageRole
	Content string
}

// ChatContext контекст диалога: исходное объяснение, в рамках которого идёт чат
type ChatContext struct {
	Explanation string
	Category    Category
	Mode        AnalysisMode
}

// ChatResult ответ модели в чат-режиме (без JSON-контракта, сырой текст)
type ChatResult struct {
	Response   string
	TokensUsed int
	Model      string
}
