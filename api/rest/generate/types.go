package generate

type Request struct {
	TemplateType string            `json:"template_type" binding:"required"`
	Fields       map[string]string `json:"fields" binding:"required"`
}

type Response struct {
	Image          string `json:"image"`
	TemplateType   string `json:"template_type"`
	Cost           int    `json:"cost"`
	NotificationID string `json:"notification_id,omitempty"`
}
