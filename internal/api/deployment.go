package api

import (
	"github.com/tidwall/gjson"

	http "github.com/bogdanfinn/fhttp"

	"github.com/diogo/deploychat/internal/models"
)

// GetDeployment fetches the deployment descriptor and its association-id
// settings. Callers cache the result per session.
func (c *Client) GetDeployment() (*models.Deployment, error) {
	url := c.apiURL(models.PathDeployment, c.deploymentID)
	body, _, err := c.doRequest(http.MethodGet, url, nil, c.authHeaders(), "get deployment", models.CapabilitiesTimeout)
	if err != nil {
		return nil, err
	}

	parsed := gjson.ParseBytes(body)
	dep := &models.Deployment{
		ID:         c.deploymentID,
		Label:      parsed.Get("label").String(),
		ModelID:    parsed.Get("model.id").String(),
		ModelType:  parsed.Get("model.type").String(),
		PromptName: parsed.Get("model.prompt").String(),
		TargetName: parsed.Get("model.targetName").String(),
	}

	// Association-id settings live under the deployment settings resource.
	// Absence of the settings, or an error fetching them, just means no
	// correlation is available.
	settingsURL := c.apiURL(models.PathDeployment, c.deploymentID) + "settings/"
	settingsBody, _, err := c.doRequest(http.MethodGet, settingsURL, nil, c.authHeaders(), "get deployment settings", models.CapabilitiesTimeout)
	if err == nil {
		gjson.ParseBytes(settingsBody).Get("associationId.columnNames").ForEach(func(_, name gjson.Result) bool {
			dep.AssociationColumns = append(dep.AssociationColumns, name.String())
			return true
		})
	}

	return dep, nil
}

// HasChatSupport runs the capability query: whether the deployment
// exposes the chat-completions API.
func (c *Client) HasChatSupport() (bool, error) {
	url := c.apiURL(models.PathCapabilities, c.deploymentID)
	body, _, err := c.doRequest(http.MethodGet, url, nil, c.authHeaders(), "get capabilities", models.CapabilitiesTimeout)
	if err != nil {
		return false, err
	}

	supported := false
	gjson.ParseBytes(body).Get("data").ForEach(func(_, item gjson.Result) bool {
		if item.Get("name").String() == models.ChatCapabilityKey {
			supported = item.Get("supported").Bool()
			return false
		}
		return true
	})
	return supported, nil
}

// GetApplicationInfo fetches the custom application record this front end
// runs as. Used for the share dialog; returns an empty map when no app id
// is configured (local development fallback).
func (c *Client) GetApplicationInfo() (map[string]any, error) {
	if c.appID == "" {
		return map[string]any{}, nil
	}

	url := c.apiURL(models.PathApplication, c.appID)
	headers := map[string]string{
		"Content-Type":  "application/json; charset=UTF-8",
		"Authorization": "Bearer " + c.token,
	}
	body, _, err := c.doRequest(http.MethodGet, url, nil, headers, "get application info", models.ApplicationTimeout)
	if err != nil {
		return nil, err
	}

	info := make(map[string]any)
	gjson.ParseBytes(body).ForEach(func(key, value gjson.Result) bool {
		info[key.String()] = value.Value()
		return true
	})
	return info, nil
}
