package explanations

// ListQuery параметры запроса списка объяснений
type ListQuery struct {
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=20"`
	Category  string `form:"category"`
	Search    string `form:"search"`
	Favorites bool   `form:"favorites"`
}

// SendMessageRequest тело запроса нового вопроса в чате
type SendMessageRequest struct {
	Text string `json:"text" binding:"required"`
}
