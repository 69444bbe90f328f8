package domain

// DeliveryLog 投递记录，一次渠道尝试写一条
type DeliveryLog struct {
	ID           int64
	RecipientID  int64
	Type         string
	SourceType   string
	SourceID     int64
	Channel      Channel
	Status       SendStatus
	ErrorMessage string
}

// Message 站内信，SYSTEM渠道的投递落库形态
type Message struct {
	ID          int64
	RecipientID int64
	Type        string
	Category    Category
	Title       string
	Content     string
	LinkURL     string
	ExtraData   map[string]string
	Read        bool
	Ctime       int64
}
