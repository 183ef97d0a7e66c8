package models

// ResourceType — вид закрытого материала.
type ResourceType string

const (
	ResourceBlog   ResourceType = "blog"
	ResourceEvent  ResourceType = "event"
	ResourceCourse ResourceType = "course"
)

// Resource — материал (блог, событие, курс). PlanID равен nil для открытых материалов.
type Resource struct {
	ID       string       `json:"id"`
	Type     ResourceType `json:"type"`
	Title    string       `json:"title"`
	Content  string       `json:"content,omitempty"`
	PlanID   *string      `json:"planId,omitempty"`
	PlanName string       `json:"planName,omitempty"`
}

// Gated сообщает, что для доступа к материалу нужна подписка.
func (r *Resource) Gated() bool {
	return r.PlanID != nil && *r.PlanID != ""
}
