package gupshup

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// GetAccessToken returns the app-level access token for appID.
func (c *PartnerClient) GetAccessToken(ctx context.Context, appID string) (string, error) {
	var token string
	if err := c.fetch(ctx, appPath(appID, "/token"), nil, "token.token", &token); err != nil {
		return "", err
	}
	return token, nil
}

// AppLink links an existing app to the partner account.
func (c *PartnerClient) AppLink(ctx context.Context, appName, apiKey string) (*AppLink, error) {
	form := url.Values{}
	form.Set("appName", appName)
	form.Set("apiKey", apiKey)

	var link AppLink
	if err := c.submit(ctx, http.MethodPost, "/account/api/appLink", form, "partnerApps", &link); err != nil {
		return nil, err
	}
	return &link, nil
}

// GetAllAppDetails lists the apps linked to the partner account.
func (c *PartnerClient) GetAllAppDetails(ctx context.Context) ([]App, error) {
	var apps []App
	if err := c.fetch(ctx, "/account/api/partnerApps", nil, "partnerAppsList", &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

func (c *PartnerClient) CheckHealth(ctx context.Context, appID string) (bool, error) {
	var healthy bool
	err := c.fetch(ctx, appPath(appID, "/health"), nil, "healthy", &healthy)
	return healthy, err
}

func (c *PartnerClient) GetWalletBalance(ctx context.Context, appID string) (*WalletBalance, error) {
	var balance WalletBalance
	if err := c.fetch(ctx, appPath(appID, "/wallet/balance"), nil, "walletResponse", &balance); err != nil {
		return nil, err
	}
	return &balance, nil
}

// CheckQualityRatingAndMessagingLimits reports the app's quality rating and messaging
// tier. The provider allows one request per app every 24 hours.
func (c *PartnerClient) CheckQualityRatingAndMessagingLimits(ctx context.Context, appID string) ([]Rating, error) {
	if !c.ratingsEnabled {
		return nil, notImplemented("CheckQualityRatingAndMessagingLimits")
	}
	var ratings []Rating
	if err := c.fetch(ctx, appPath(appID, "/ratings"), nil, "ratings", &ratings); err != nil {
		return nil, err
	}
	return ratings, nil
}

// --- Users ---

func (c *PartnerClient) GetUserStatus(ctx context.Context, appID, phone string) (*UserStatus, error) {
	query := url.Values{}
	query.Set("phone", phone)

	var status UserStatus
	if err := c.fetch(ctx, appPath(appID, "/userStatus"), query, "userStatus", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// BlockUser blocks phone, or unblocks it when blocked is false.
func (c *PartnerClient) BlockUser(ctx context.Context, appID, phone string, blocked bool) error {
	form := url.Values{}
	form.Set("phone", phone)
	form.Set("isBlocked", strconv.FormatBool(blocked))
	return c.submit(ctx, http.MethodPut, appPath(appID, "/block"), form, "", nil)
}

func (c *PartnerClient) OptinAppUser(ctx context.Context, appID, phone string) error {
	form := url.Values{}
	form.Set("phone", phone)
	return c.submit(ctx, http.MethodPut, appPath(appID, "/optin"), form, "", nil)
}

// --- Preferences ---

// ToggleTemplateMessaging enables or disables template (HSM) messaging for an app.
func (c *PartnerClient) ToggleTemplateMessaging(ctx context.Context, appID string, enabled bool) error {
	form := url.Values{}
	form.Set("isHSMEnabled", strconv.FormatBool(enabled))
	return c.submit(ctx, http.MethodPut, appPath(appID, "/appPreference"), form, "", nil)
}

// ToggleAutomatedOptinMessage enables or disables the provider's automated opt-in message.
func (c *PartnerClient) ToggleAutomatedOptinMessage(ctx context.Context, appID string, enabled bool) error {
	form := url.Values{}
	form.Set("enableOptinMessage", strconv.FormatBool(enabled))
	return c.submit(ctx, http.MethodPut, appPath(appID, "/optinMessagePreference"), form, "", nil)
}

func (c *PartnerClient) SetCallbackURL(ctx context.Context, appID, callbackURL string) error {
	form := url.Values{}
	form.Set("callbackUrl", callbackURL)
	return c.submit(ctx, http.MethodPut, appPath(appID, "/callbackUrl"), form, "", nil)
}

// UpdateCapping updates the provider fee cap of an app.
func (c *PartnerClient) UpdateCapping(ctx context.Context, appID string, limit float64) error {
	form := url.Values{}
	form.Set("cap", strconv.FormatFloat(limit, 'f', -1, 64))
	return c.submit(ctx, http.MethodPut, appPath(appID, "/capping"), form, "", nil)
}

// UpdateDLREvents selects the events delivered to the app's callback URL. Calling it
// with no modes deselects every event.
func (c *PartnerClient) UpdateDLREvents(ctx context.Context, appID string, modes ...DLREvent) error {
	form := url.Values{}
	if len(modes) > 0 {
		names := make([]string, 0, len(modes))
		for _, mode := range modes {
			if !mode.Valid() {
				return fmt.Errorf("%w: %q", ErrInvalidDLREvent, mode)
			}
			names = append(names, string(mode))
		}
		form.Set("modes", strings.Join(names, ","))
	}
	return c.submit(ctx, http.MethodPut, appPath(appID, "/callback/mode"), form, "", nil)
}

// --- Usage ---

// GetAppUsage returns the daily usage breakdown between from and to, inclusive.
func (c *PartnerClient) GetAppUsage(ctx context.Context, appID string, from, to time.Time) ([]AppUsage, error) {
	query := url.Values{}
	query.Set("from", formatDate(from))
	query.Set("to", formatDate(to))

	var usage []AppUsage
	if err := c.fetch(ctx, appPath(appID, "/usage"), query, "partnerAppUsageList", &usage); err != nil {
		return nil, err
	}
	return usage, nil
}

// GetAppDailyDiscount returns the daily discount and bill of an app for one month.
func (c *PartnerClient) GetAppDailyDiscount(ctx context.Context, appID string, year int, month time.Month) ([]AppDailyDiscount, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("gupshup partner: invalid month %d", month)
	}
	query := url.Values{}
	query.Set("month", formatMonth(month))
	query.Set("year", formatYear(year))

	var discounts []AppDailyDiscount
	if err := c.fetch(ctx, appPath(appID, "/discount"), query, "dailyAppDiscountList", &discounts); err != nil {
		return nil, err
	}
	return discounts, nil
}

func (c *PartnerClient) GetInboundMessageEventLogs(ctx context.Context, appID string, from, to time.Time) ([]byte, error) {
	return nil, notImplemented("GetInboundMessageEventLogs")
}

func (c *PartnerClient) GetOutboundMessageEventLogs(ctx context.Context, appID string, date time.Time) ([]byte, error) {
	return nil, notImplemented("GetOutboundMessageEventLogs")
}
