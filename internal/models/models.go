package models

import (
	"time"
)

const (
	DirectionOutbound = "outbound"
	DirectionInbound  = "inbound"
)

// Message is a WhatsApp message sent through the gateway or received on the webhook.
type Message struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ProviderID  string    `gorm:"type:varchar(255);index" json:"provider_id"`
	Direction   string    `gorm:"type:varchar(10);not null" json:"direction"`
	App         string    `gorm:"type:varchar(255)" json:"app,omitempty"`
	Source      string    `gorm:"type:varchar(50)" json:"source"`
	Destination string    `gorm:"type:varchar(50);index" json:"destination"`
	Type        string    `gorm:"type:varchar(50)" json:"type"`
	Content     string    `gorm:"type:text" json:"content"`
	Payload     string    `gorm:"type:text" json:"payload"` // raw message JSON
	Status      string    `gorm:"type:varchar(20)" json:"status"`
	Error       string    `gorm:"type:text" json:"error,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Message) TableName() string {
	return "messages"
}

// Contact is a WhatsApp user seen on the webhook or messaged by the gateway.
type Contact struct {
	Phone     string    `gorm:"primaryKey;type:varchar(50)" json:"phone"`
	Name      string    `gorm:"type:varchar(255)" json:"name"`
	Status    string    `gorm:"type:varchar(20)" json:"status"` // opt-in status or "blocked"
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Contact) TableName() string {
	return "contacts"
}

// Template is the local copy of a provider template, refreshed by template sync.
type Template struct {
	ID           string    `gorm:"primaryKey;type:varchar(255)" json:"id"`
	AppID        string    `gorm:"type:varchar(255);index" json:"app_id"`
	ElementName  string    `gorm:"type:varchar(255)" json:"element_name"`
	LanguageCode string    `gorm:"type:varchar(50)" json:"language_code"`
	Category     string    `gorm:"type:varchar(100)" json:"category"`
	TemplateType string    `gorm:"type:varchar(50)" json:"template_type"`
	Status       string    `gorm:"type:varchar(50)" json:"status"`
	Reason       string    `gorm:"type:text" json:"reason,omitempty"`
	Data         string    `gorm:"type:text" json:"data"`
	Meta         string    `gorm:"type:text" json:"meta"`
	ModifiedOn   int64     `json:"modified_on"` // provider epoch millis
	SyncedAt     time.Time `gorm:"autoUpdateTime" json:"synced_at"`
}

func (Template) TableName() string {
	return "templates"
}

// Media is a sample media upload and the handle id returned for it.
type Media struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	AppID      string    `gorm:"type:varchar(255);index" json:"app_id"`
	HandleID   string    `gorm:"type:text;not null" json:"handle_id"`
	Filename   string    `gorm:"type:varchar(255)" json:"filename"`
	MimeType   string    `gorm:"type:varchar(100)" json:"mime_type"`
	FileSize   int64     `json:"file_size"`
	UploadedAt time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
}

func (Media) TableName() string {
	return "media"
}
