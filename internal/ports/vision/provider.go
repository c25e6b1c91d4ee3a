package vision

import "context"

// Detail уровень детализации изображения для провайдера
type Detail string

const (
	DetailHigh Detail = "high"
	DetailLow  Detail = "low"
)

// ChatMessage реплика в формате провайдера
type ChatMessage struct {
	Role    string
	Content string
}

// AnalyzeParams параметры одного вызова анализа изображения
type AnalyzeParams struct {
	ImageURL     string
	SystemPrompt string
	UserPrompt   string
	Detail       Detail
	MaxTokens    int
}

// Reply сырой ответ провайдера
type Reply struct {
	Text       string
	TokensUsed int
	Model      string
}

// IProvider интерфейс vision-модели. Ядро работает с любым провайдером этой формы.
type IProvider interface {
	Analyze(ctx context.Context, params AnalyzeParams) (*Reply, error)
	Chat(ctx context.Context, messages []ChatMessage) (*Reply, error)
}

// BadRequestError признак caller-side ошибки провайдера (повод для одного ретрая
// с пониженной детализацией, не для фейла запроса целиком)
type BadRequestError struct {
	Err error
}

func (e *BadRequestError) Error() string { return e.Err.Error() }
func (e *BadRequestError) Unwrap() error { return e.Err }
