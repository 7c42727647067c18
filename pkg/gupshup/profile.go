package gupshup

import (
	"context"
	"io"
	"net/http"
	"net/url"
)

func (c *PartnerClient) GetProfileDetails(ctx context.Context, appID string) (*ProfileDetails, error) {
	var profile ProfileDetails
	if err := c.fetch(ctx, appPath(appID, "/business/profile"), nil, "profile", &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *PartnerClient) UpdateProfileDetails(ctx context.Context, appID string, profile ProfileDetails) error {
	return notImplemented("UpdateProfileDetails")
}

// GetAbout returns the business "about" text.
func (c *PartnerClient) GetAbout(ctx context.Context, appID string) (string, error) {
	var about string
	err := c.fetch(ctx, appPath(appID, "/business/profile/about"), nil, "about.message", &about)
	return about, err
}

func (c *PartnerClient) UpdateAbout(ctx context.Context, appID, about string) error {
	form := url.Values{}
	form.Set("about", about)
	return c.submit(ctx, http.MethodPut, appPath(appID, "/business/profile/about"), form, "", nil)
}

// GetProfilePicture returns the URL of the business profile photo.
func (c *PartnerClient) GetProfilePicture(ctx context.Context, appID string) (string, error) {
	var photo string
	err := c.fetch(ctx, appPath(appID, "/business/profile/photo"), nil, "message", &photo)
	return photo, err
}

func (c *PartnerClient) UpdateProfilePicture(ctx context.Context, appID string, photo io.Reader) error {
	return notImplemented("UpdateProfilePicture")
}

func (c *PartnerClient) RemoveProfilePicture(ctx context.Context, appID string) error {
	return c.remove(ctx, appPath(appID, "/business/profile/photo"))
}
