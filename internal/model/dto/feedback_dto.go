package dto

type CreateFeedbackRequest struct {
	Subject  string `json:"subject" binding:"required,max=200"`
	Message  string `json:"message" binding:"required,max=5000"`
	Category string `json:"category" binding:"omitempty,oneof=general bug suggestion content account"`
}

type RespondFeedbackRequest struct {
	Response string `json:"response" binding:"required,max=5000"`
}

type UpdateFeedbackStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending in_progress resolved"`
}

type FeedbackListQuery struct {
	Status   string `form:"status" binding:"omitempty,oneof=pending in_progress resolved"`
	Page     int    `form:"page,default=1" binding:"min=1"`
	PageSize int    `form:"page_size,default=20" binding:"min=1,max=100"`
}
