package gupshup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
)

// ApplyForTemplate submits a template for approval on an app.
func (c *PartnerClient) ApplyForTemplate(ctx context.Context, appID string, template TemplateData) (*Template, error) {
	if err := template.Validate(); err != nil {
		return nil, err
	}
	form, err := formValues(template)
	if err != nil {
		return nil, err
	}

	var created Template
	if err := c.submit(ctx, http.MethodPost, appPath(appID, "/templates"), form, "template", &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// GetHandleIDForSampleMedia uploads sample media and returns the handle id to use as
// TemplateData.ExampleMedia.
func (c *PartnerClient) GetHandleIDForSampleMedia(ctx context.Context, appID, filename string, file io.Reader, fileType string) (string, error) {
	if file == nil {
		return "", errors.New("gupshup partner: sample media file is required")
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("gupshup partner: build upload: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("gupshup partner: read sample media: %w", err)
	}
	if err := writer.WriteField("file_type", fileType); err != nil {
		return "", fmt.Errorf("gupshup partner: build upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("gupshup partner: build upload: %w", err)
	}

	resp, err := c.call(ctx, request{
		method:      http.MethodPost,
		path:        appPath(appID, "/upload/media"),
		body:        body,
		contentType: writer.FormDataContentType(),
	})
	if err != nil {
		return "", err
	}

	var handleID string
	if err := unwrap(resp, "handleId.message", &handleID); err != nil {
		return "", err
	}
	return handleID, nil
}

// GetTemplates lists the templates of an app, including rejection reasons.
func (c *PartnerClient) GetTemplates(ctx context.Context, appID string) ([]Template, error) {
	var templates []Template
	if err := c.fetch(ctx, appPath(appID, "/templates"), nil, "templates", &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// SendMessageWithTemplateID sends an approved template and returns the message id.
func (c *PartnerClient) SendMessageWithTemplateID(ctx context.Context, appID string, message TemplateMessage) (string, error) {
	if message.ID == "" {
		return "", errors.New("gupshup partner: template id is required")
	}
	if message.Params == nil {
		message.Params = []string{}
	}
	form, err := formValues(message)
	if err != nil {
		return "", err
	}

	var messageID string
	if err := c.submit(ctx, http.MethodPost, appPath(appID, "/template/msg"), form, "messageId", &messageID); err != nil {
		return "", err
	}
	return messageID, nil
}

// DeleteTemplate deletes every language of the template named elementName.
func (c *PartnerClient) DeleteTemplate(ctx context.Context, appID, elementName string) error {
	if elementName == "" {
		return errors.New("gupshup partner: element name is required")
	}
	return c.remove(ctx, appPath(appID, "/template/"+url.PathEscape(elementName)))
}
