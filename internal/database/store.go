package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gupshup-gateway/internal/models"
	"gupshup-gateway/pkg/gupshup"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// statusRank orders delivery statuses so late callbacks never move a message backwards.
var statusRank = map[string]int{
	"submitted":                     0,
	string(gupshup.StatusEnqueued):  1,
	string(gupshup.StatusSent):      2,
	string(gupshup.StatusDelivered): 3,
	string(gupshup.StatusRead):      4,
	string(gupshup.StatusFailed):    5,
	string(gupshup.StatusDeleted):   6,
}

// Store persists messages, contacts, templates and media handles.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// --- Messages ---

func (s *Store) RecordOutbound(ctx context.Context, msg *models.Message) error {
	msg.Direction = models.DirectionOutbound
	if msg.Status == "" {
		msg.Status = "submitted"
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return fmt.Errorf("record outbound message: %w", err)
		}
		return touchContact(tx, msg.Destination, "")
	})
}

// RecordInbound stores a received message and remembers the sender.
func (s *Store) RecordInbound(ctx context.Context, msg *models.Message, senderName string) error {
	msg.Direction = models.DirectionInbound
	if msg.Status == "" {
		msg.Status = "received"
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return fmt.Errorf("record inbound message: %w", err)
		}
		return touchContact(tx, msg.Source, senderName)
	})
}

// UpdateStatus applies a delivery status to the outbound message with the given
// provider id. A status that ranks below the stored one, or repeats it, leaves the
// row untouched and changed is false.
func (s *Store) UpdateStatus(ctx context.Context, providerID, status, reason string) (msg *models.Message, changed bool, err error) {
	var row models.Message
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("provider_id = ? AND direction = ?", providerID, models.DirectionOutbound).
			Order("id DESC").First(&row).Error; err != nil {
			return err
		}
		if statusRank[status] < statusRank[row.Status] {
			return nil
		}
		if status == row.Status && (reason == "" || reason == row.Error) {
			return nil
		}
		row.Status = status
		if reason != "" {
			row.Error = reason
		}
		changed = true
		return tx.Model(&row).Updates(map[string]any{"status": row.Status, "error": row.Error}).Error
	})
	if err != nil {
		return nil, false, err
	}
	return &row, changed, nil
}

// ListMessages returns the newest messages first. Non-positive limits use the default.
func (s *Store) ListMessages(ctx context.Context, limit int) ([]models.Message, error) {
	messages := []models.Message{}
	err := s.db.WithContext(ctx).Order("id DESC").Limit(clampLimit(limit)).Find(&messages).Error
	return messages, err
}

func (s *Store) GetMessage(ctx context.Context, id uint) (*models.Message, error) {
	var msg models.Message
	if err := s.db.WithContext(ctx).First(&msg, id).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// --- Contacts ---

func touchContact(tx *gorm.DB, phone, name string) error {
	if phone == "" {
		return nil
	}
	contact := models.Contact{Phone: phone, Name: name}
	update := []string{"updated_at"}
	if name != "" {
		update = append(update, "name")
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "phone"}},
		DoUpdates: clause.AssignmentColumns(update),
	}).Create(&contact).Error
}

func (s *Store) SetContactStatus(ctx context.Context, phone, status string) error {
	contact := models.Contact{Phone: phone, Status: status}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "phone"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
	}).Create(&contact).Error
}

func (s *Store) ListContacts(ctx context.Context) ([]models.Contact, error) {
	contacts := []models.Contact{}
	err := s.db.WithContext(ctx).Order("updated_at DESC").Find(&contacts).Error
	return contacts, err
}

// --- Templates ---

// SaveTemplates upserts the provider templates of an app and removes local copies of
// templates the provider no longer lists.
func (s *Store) SaveTemplates(ctx context.Context, appID string, templates []gupshup.Template) (int, error) {
	ids := make([]string, 0, len(templates))
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, t := range templates {
			if t.ID == "" {
				continue
			}
			row := templateRow(appID, t)
			if err := tx.Save(&row).Error; err != nil {
				return fmt.Errorf("save template %s: %w", t.ElementName, err)
			}
			ids = append(ids, row.ID)
		}
		stale := tx.Where("app_id = ?", appID)
		if len(ids) > 0 {
			stale = stale.Where("id NOT IN ?", ids)
		}
		return stale.Delete(&models.Template{}).Error
	})
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

func (s *Store) ListTemplates(ctx context.Context, appID string) ([]models.Template, error) {
	templates := []models.Template{}
	err := s.db.WithContext(ctx).Where("app_id = ?", appID).Order("element_name, language_code").Find(&templates).Error
	return templates, err
}

func templateRow(appID string, t gupshup.Template) models.Template {
	if t.AppID != "" {
		appID = t.AppID
	}
	return models.Template{
		ID:           t.ID,
		AppID:        appID,
		ElementName:  t.ElementName,
		LanguageCode: t.LanguageCode,
		Category:     t.Category,
		TemplateType: t.TemplateType,
		Status:       string(t.Status),
		Reason:       t.Reason,
		Data:         t.Data,
		Meta:         t.Meta,
		ModifiedOn:   int64(t.ModifiedOn),
	}
}

// --- Media ---

func (s *Store) SaveMedia(ctx context.Context, media *models.Media) error {
	return s.db.WithContext(ctx).Create(media).Error
}

func (s *Store) ListMedia(ctx context.Context, appID string) ([]models.Media, error) {
	media := []models.Media{}
	err := s.db.WithContext(ctx).Where("app_id = ?", appID).Order("id DESC").Find(&media).Error
	return media, err
}

// MessagePayload renders a message for the payload column.
func MessagePayload(msg gupshup.Message) string {
	data, err := json.Marshal(msg)
	if err != nil {
		return ""
	}
	return string(data)
}

// IsNotFound reports whether err means no matching row.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultListLimit
	case limit > maxListLimit:
		return maxListLimit
	default:
		return limit
	}
}
