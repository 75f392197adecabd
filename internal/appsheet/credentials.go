package appsheet

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"tapegen/internal/services"
)

// Credentials identifies an AppSheet application and its access key.
type Credentials struct {
	ApplicationID  string `json:"ApplicationId"`
	ApplicationKey string `json:"ApplicationKey"`
}

// LoadCredentials reads the JSON key file exported from the AppSheet editor.
func LoadCredentials(path string) (Credentials, error) {
	var creds Credentials
	path = strings.TrimSpace(path)
	if path == "" {
		return creds, services.Wrap(services.ErrConfiguration, "appsheet", "load credentials", "no credentials file given (use --api_key or TAPEGEN_APPSHEET_CREDENTIALS)", nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return creds, services.Wrap(services.ErrConfiguration, "appsheet", "load credentials", fmt.Sprintf("read %s", path), err)
	}
	if err := json.Unmarshal(data, &creds); err != nil {
		return creds, services.Wrap(services.ErrConfiguration, "appsheet", "load credentials", fmt.Sprintf("parse %s", path), err)
	}
	creds.ApplicationID = strings.TrimSpace(creds.ApplicationID)
	creds.ApplicationKey = strings.TrimSpace(creds.ApplicationKey)
	if creds.ApplicationID == "" || creds.ApplicationKey == "" {
		return creds, services.Wrap(services.ErrConfiguration, "appsheet", "load credentials", fmt.Sprintf("%s must define ApplicationId and ApplicationKey", path), nil)
	}
	return creds, nil
}
