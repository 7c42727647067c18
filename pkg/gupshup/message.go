package gupshup

import (
	"encoding/json"
	"fmt"
)

// MessageType is the discriminator of the outbound message union.
type MessageType string

const (
	MessageText       MessageType = "text"
	MessageImage      MessageType = "image"
	MessageFile       MessageType = "file"
	MessageAudio      MessageType = "audio"
	MessageVideo      MessageType = "video"
	MessageSticker    MessageType = "sticker"
	MessageList       MessageType = "list"
	MessageQuickReply MessageType = "quick_reply"
	MessageLocation   MessageType = "location"
	MessageContact    MessageType = "contact"
)

// Message is one of the outbound message variants. Each variant marshals to JSON with
// its "type" discriminator.
type Message interface {
	Type() MessageType
}

// --- Media Messages ---

type TextMessage struct {
	Text string `json:"text"`
}

type ImageMessage struct {
	OriginalURL string `json:"originalUrl"`
	PreviewURL  string `json:"previewUrl"`
	Caption     string `json:"caption,omitempty"`
}

type FileMessage struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

type AudioMessage struct {
	URL string `json:"url"`
}

type VideoMessage struct {
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
}

type StickerMessage struct {
	URL string `json:"url"`
}

// --- Interactive Messages ---

type ListMessage struct {
	Title         string       `json:"title"`
	Body          string       `json:"body"`
	MsgID         string       `json:"msgid,omitempty"`
	GlobalButtons []ListButton `json:"globalButtons"`
	Items         []ListItem   `json:"items"`
}

// ListButton opens the list. Type is always "text".
type ListButton struct {
	Type  string `json:"type"`
	Title string `json:"title"`
}

type ListItem struct {
	Title    string       `json:"title"`
	Subtitle string       `json:"subtitle"`
	Options  []ListOption `json:"options"`
}

type ListOption struct {
	Type         string `json:"type"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	PostbackText string `json:"postbackText,omitempty"`
}

type QuickReplyMessage struct {
	MsgID   string             `json:"msgid,omitempty"`
	Content QuickReplyContent  `json:"content"`
	Options []QuickReplyOption `json:"options"`
}

// QuickReplyContent is a text body with an optional header, or a media body. Type is
// "text", "image", "video" or "file"; URL is required for media and Filename for files.
type QuickReplyContent struct {
	Type     string `json:"type"`
	Header   string `json:"header,omitempty"`
	Text     string `json:"text"`
	Caption  string `json:"caption,omitempty"`
	URL      string `json:"url,omitempty"`
	Filename string `json:"filename,omitempty"`
}

type QuickReplyOption struct {
	Type         string `json:"type"`
	Title        string `json:"title"`
	PostbackText string `json:"postbackText"`
}

// --- Location & Contact ---

type LocationMessage struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
	Name      string  `json:"name"`
	Address   string  `json:"address"`
}

type ContactMessage struct {
	Contact Contact `json:"contact"`
}

type Contact struct {
	Addresses []ContactAddress `json:"addresses,omitempty"`
	Birthday  string           `json:"birthday,omitempty"`
	Emails    []ContactEmail   `json:"emails,omitempty"`
	Name      ContactName      `json:"name"`
	Org       *ContactOrg      `json:"org,omitempty"`
	Phones    []ContactPhone   `json:"phones,omitempty"`
	URLs      []ContactURL     `json:"urls,omitempty"`
}

// ContactAddress.Type is HOME or WORK.
type ContactAddress struct {
	City        string `json:"city"`
	Country     string `json:"country"`
	CountryCode string `json:"countryCode"`
	State       string `json:"state"`
	Street      string `json:"street"`
	Type        string `json:"type"`
	Zip         string `json:"zip"`
}

// ContactEmail.Type is Personal or Work.
type ContactEmail struct {
	Email string `json:"email"`
	Type  string `json:"type"`
}

type ContactName struct {
	FirstName     string `json:"firstName"`
	FormattedName string `json:"formattedName"`
	LastName      string `json:"lastName"`
}

type ContactOrg struct {
	Company    string `json:"company"`
	Department string `json:"department"`
	Title      string `json:"title"`
}

// ContactPhone.WaID is only sent for WORK numbers.
type ContactPhone struct {
	Phone string `json:"phone"`
	Type  string `json:"type"`
	WaID  string `json:"wa_id,omitempty"`
}

type ContactURL struct {
	URL  string `json:"url"`
	Type string `json:"type"`
}

func (TextMessage) Type() MessageType       { return MessageText }
func (ImageMessage) Type() MessageType      { return MessageImage }
func (FileMessage) Type() MessageType       { return MessageFile }
func (AudioMessage) Type() MessageType      { return MessageAudio }
func (VideoMessage) Type() MessageType      { return MessageVideo }
func (StickerMessage) Type() MessageType    { return MessageSticker }
func (ListMessage) Type() MessageType       { return MessageList }
func (QuickReplyMessage) Type() MessageType { return MessageQuickReply }
func (LocationMessage) Type() MessageType   { return MessageLocation }
func (ContactMessage) Type() MessageType    { return MessageContact }

func (m TextMessage) MarshalJSON() ([]byte, error) {
	type plain TextMessage
	return tagged(MessageText, plain(m))
}

func (m ImageMessage) MarshalJSON() ([]byte, error) {
	type plain ImageMessage
	return tagged(MessageImage, plain(m))
}

func (m FileMessage) MarshalJSON() ([]byte, error) {
	type plain FileMessage
	return tagged(MessageFile, plain(m))
}

func (m AudioMessage) MarshalJSON() ([]byte, error) {
	type plain AudioMessage
	return tagged(MessageAudio, plain(m))
}

func (m VideoMessage) MarshalJSON() ([]byte, error) {
	type plain VideoMessage
	return tagged(MessageVideo, plain(m))
}

func (m StickerMessage) MarshalJSON() ([]byte, error) {
	type plain StickerMessage
	return tagged(MessageSticker, plain(m))
}

func (m ListMessage) MarshalJSON() ([]byte, error) {
	type plain ListMessage
	return tagged(MessageList, plain(m))
}

func (m QuickReplyMessage) MarshalJSON() ([]byte, error) {
	type plain QuickReplyMessage
	return tagged(MessageQuickReply, plain(m))
}

func (m LocationMessage) MarshalJSON() ([]byte, error) {
	type plain LocationMessage
	return tagged(MessageLocation, plain(m))
}

func (m ContactMessage) MarshalJSON() ([]byte, error) {
	type plain ContactMessage
	return tagged(MessageContact, plain(m))
}

// tagged encodes v as a JSON object with "type" as its first member.
func tagged(kind MessageType, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	discriminator, err := json.Marshal(kind)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(body)+len(discriminator)+9)
	out = append(out, `{"type":`...)
	out = append(out, discriminator...)
	if len(body) > 2 {
		out = append(out, ',')
	}
	return append(out, body[1:]...), nil
}

// DecodeMessage parses a JSON message of any supported type.
func DecodeMessage(data []byte) (Message, error) {
	var head struct {
		Type MessageType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("gupshup: decode message: %w", err)
	}

	switch head.Type {
	case MessageText:
		return decodeAs[TextMessage](data)
	case MessageImage:
		return decodeAs[ImageMessage](data)
	case MessageFile:
		return decodeAs[FileMessage](data)
	case MessageAudio:
		return decodeAs[AudioMessage](data)
	case MessageVideo:
		return decodeAs[VideoMessage](data)
	case MessageSticker:
		return decodeAs[StickerMessage](data)
	case MessageList:
		return decodeAs[ListMessage](data)
	case MessageQuickReply:
		return decodeAs[QuickReplyMessage](data)
	case MessageLocation:
		return decodeAs[LocationMessage](data)
	case MessageContact:
		return decodeAs[ContactMessage](data)
	case "":
		return nil, fmt.Errorf("gupshup: decode message: missing type")
	default:
		return nil, fmt.Errorf("gupshup: decode message: unsupported type %q", head.Type)
	}
}

func decodeAs[T Message](data []byte) (Message, error) {
	var msg T
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("gupshup: decode %s message: %w", msg.Type(), err)
	}
	return msg, nil
}
