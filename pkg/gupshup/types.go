package gupshup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Millis is an epoch timestamp in milliseconds. The provider sends it as a JSON
// number, a numeric string or an RFC 3339 string depending on the endpoint.
type Millis int64

func (m *Millis) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*m = 0
		return nil
	}
	if data[0] != '"' {
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("gupshup: timestamp %s: %w", data, err)
		}
		return m.parse(n.String())
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("gupshup: timestamp %s: %w", data, err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*m = 0
		return nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		*m = Millis(t.UnixMilli())
		return nil
	}
	return m.parse(s)
}

func (m *Millis) parse(s string) error {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return fmt.Errorf("gupshup: timestamp %q: %w", s, err)
		}
		n = int64(f)
	}
	*m = Millis(n)
	return nil
}

// --- Templates ---

type TemplateCategory string

const (
	CategoryTransactional  TemplateCategory = "TRANSACTIONAL"
	CategoryMarketing      TemplateCategory = "MARKETING"
	CategoryOTP            TemplateCategory = "OTP"
	CategoryAuthentication TemplateCategory = "AUTHENTICATION"
	CategoryUtility        TemplateCategory = "UTILITY"
)

type TemplateType string

const (
	TemplateText     TemplateType = "TEXT"
	TemplateImage    TemplateType = "IMAGE"
	TemplateDocument TemplateType = "DOCUMENT"
	TemplateVideo    TemplateType = "VIDEO"
)

type TemplateStatus string

const (
	StatusApproved TemplateStatus = "APPROVED"
	StatusRejected TemplateStatus = "REJECTED"
	StatusPending  TemplateStatus = "PENDING"
)

// TemplateData is a template submission. Media templates (IMAGE, DOCUMENT, VIDEO)
// need ExampleMedia, a handle id from GetHandleIDForSampleMedia.
type TemplateData struct {
	ElementName                 string           `json:"elementName"`
	LanguageCode                string           `json:"languageCode"`
	Category                    TemplateCategory `json:"category"`
	TemplateType                TemplateType     `json:"templateType"`
	Vertical                    string           `json:"vertical,omitempty"`
	Content                     string           `json:"content"`
	Header                      string           `json:"header,omitempty"`
	Footer                      string           `json:"footer,omitempty"`
	Buttons                     []TemplateButton `json:"buttons,omitempty"`
	Example                     string           `json:"example,omitempty"`
	ExampleHeader               string           `json:"exampleHeader,omitempty"`
	ExampleMedia                string           `json:"exampleMedia,omitempty"`
	EnableSample                bool             `json:"enableSample,omitempty"`
	AllowTemplateCategoryChange bool             `json:"allowTemplateCategoryChange,omitempty"`
}

// TemplateButton.Type is QUICK_REPLY, URL or PHONE_NUMBER.
type TemplateButton struct {
	Type        string   `json:"type"`
	Text        string   `json:"text"`
	URL         string   `json:"url,omitempty"`
	PhoneNumber string   `json:"phone_number,omitempty"`
	Example     []string `json:"example,omitempty"`
}

// Validate checks the fields the provider rejects outright.
func (t TemplateData) Validate() error {
	var problems []string
	if strings.TrimSpace(t.ElementName) == "" {
		problems = append(problems, "elementName is required")
	}
	if strings.TrimSpace(t.LanguageCode) == "" {
		problems = append(problems, "languageCode is required")
	}
	if strings.TrimSpace(t.Content) == "" {
		problems = append(problems, "content is required")
	}
	switch t.Category {
	case CategoryTransactional, CategoryMarketing, CategoryOTP, CategoryAuthentication, CategoryUtility:
	default:
		problems = append(problems, fmt.Sprintf("unknown category %q", t.Category))
	}
	switch t.TemplateType {
	case TemplateText:
	case TemplateImage, TemplateDocument, TemplateVideo:
		if strings.TrimSpace(t.ExampleMedia) == "" {
			problems = append(problems, fmt.Sprintf("exampleMedia is required for %s templates", t.TemplateType))
		}
		if t.Header != "" {
			problems = append(problems, "header is only allowed on TEXT templates")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown templateType %q", t.TemplateType))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTemplate, strings.Join(problems, "; "))
	}
	return nil
}

// Template is a submitted template as returned by the provider.
type Template struct {
	ID             string         `json:"id"`
	AppID          string         `json:"appId"`
	ElementName    string         `json:"elementName"`
	LanguageCode   string         `json:"languageCode"`
	LanguagePolicy string         `json:"languagePolicy"`
	Category       string         `json:"category"`
	TemplateType   string         `json:"templateType"`
	Vertical       string         `json:"vertical"`
	Data           string         `json:"data"`
	Meta           string         `json:"meta"`
	ContainerMeta  string         `json:"containerMeta,omitempty"`
	Master         bool           `json:"master"`
	Namespace      string         `json:"namespace"`
	Status         TemplateStatus `json:"status"`
	Reason         string         `json:"reason,omitempty"`
	CreatedOn      Millis         `json:"createdOn"`
	ModifiedOn     Millis         `json:"modifiedOn"`
}

// TemplateMessage sends an approved template by id. Source and Destination address
// the message; Params fill the template placeholders in order.
type TemplateMessage struct {
	ID          string   `json:"id"`
	Params      []string `json:"params"`
	Source      string   `json:"source,omitempty"`
	Destination string   `json:"destination,omitempty"`
}

// --- Apps ---

type App struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Phone      string  `json:"phone"`
	NameSpace  string  `json:"nameSpace"`
	PartnerID  int64   `json:"partnerId"`
	Cap        float64 `json:"cap"`
	Healthy    bool    `json:"healthy"`
	Live       bool    `json:"live"`
	Stopped    bool    `json:"stopped"`
	CreatedOn  int64   `json:"createdOn"`
	ModifiedOn int64   `json:"modifiedOn"`
}

type AppLink struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Phone       string  `json:"phone"`
	CustomerID  string  `json:"customerId"`
	PartnerID   int64   `json:"partnerId"`
	Cap         float64 `json:"cap"`
	Healthy     bool    `json:"healthy"`
	Live        bool    `json:"live"`
	Stopped     bool    `json:"stopped"`
	CallbackURL string  `json:"callbackUrl,omitempty"`
	WalletID    string  `json:"walletId,omitempty"`
	CreatedOn   int64   `json:"createdOn"`
	ModifiedOn  int64   `json:"modifiedOn"`
}

// --- Reporting ---

type AppUsage struct {
	AppID               string  `json:"appId"`
	AppName             string  `json:"appName"`
	Date                string  `json:"date"`
	BIC                 float64 `json:"bic"`
	UIC                 float64 `json:"uic"`
	FEP                 float64 `json:"fep"`
	FTC                 float64 `json:"ftc"`
	GsFees              float64 `json:"gsFees"`
	WaFees              float64 `json:"waFees"`
	TotalFees           float64 `json:"totalFees"`
	IncomingMsg         int64   `json:"incomingMsg"`
	OutgoingMsg         int64   `json:"outgoingMsg"`
	OutgoingMediaMsgSKU int64   `json:"outgoingMediaMsgSKU"`
	TemplateMsg         int64   `json:"templateMsg"`
	TemplateMediaMsgSKU int64   `json:"templateMediaMsgSKU"`
	TotalMsg            int64   `json:"totalMsg"`
}

type AppDailyDiscount struct {
	AppID          string  `json:"appId"`
	PartnerID      int64   `json:"partnerId"`
	Day            int     `json:"day"`
	Month          int     `json:"month"`
	Year           int     `json:"year"`
	Discount       float64 `json:"discount"`
	DailyBill      float64 `json:"dailyBill"`
	CumulativeBill float64 `json:"cumulativeBill"`
	GsCap          float64 `json:"gsCap"`
	GsFees         float64 `json:"gsFees"`
}

type WalletBalance struct {
	Currency       string  `json:"currency"`
	CurrentBalance float64 `json:"currentBalance"`
	OverDraftLimit float64 `json:"overDraftLimit"`
}

type UserStatus struct {
	PhoneCode            string `json:"phoneCode"`
	Status               string `json:"status"`
	LastMessageTimeStamp int64  `json:"lastMessageTimeStamp"`
}

type Rating struct {
	CurrentLimit  string `json:"currentLimit"`
	OldLimit      string `json:"oldLimit"`
	Event         string `json:"event"`
	QualityRating string `json:"qualityRating,omitempty"`
	EventTime     int64  `json:"eventTime,omitempty"`
}

// --- Profile ---

type ProfileDetails struct {
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city"`
	State        string `json:"state"`
	Country      string `json:"country"`
	PinCode      string `json:"pinCode"`
	Desc         string `json:"desc"`
	ProfileEmail string `json:"profileEmail"`
	Vertical     string `json:"vertical"`
}

// --- Callback modes ---

// DLREvent selects which events the provider pushes to the app's callback URL.
type DLREvent string

const (
	DLRDelivered DLREvent = "DELIVERED"
	DLRRead      DLREvent = "READ"
	DLRSent      DLREvent = "SENT"
	DLRDeleted   DLREvent = "DELETED"
	DLROthers    DLREvent = "OTHERS"
	DLRTemplate  DLREvent = "TEMPLATE"
	DLRAccount   DLREvent = "ACCOUNT"
)

func (e DLREvent) Valid() bool {
	switch e {
	case DLRDelivered, DLRRead, DLRSent, DLRDeleted, DLROthers, DLRTemplate, DLRAccount:
		return true
	}
	return false
}
