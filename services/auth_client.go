// skill-exchange-system/services/auth_client.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// AuthClient talks to the external auth platform that owns sessions and
// the user directory. This service never verifies credentials itself.
type AuthClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

type SessionPrincipal struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

func NewAuthClient(baseURL, serviceToken string) *AuthClient {
	return &AuthClient{
		BaseURL: baseURL,
		Token:   serviceToken,
		Client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// ValidateSession calls /sessions/validate on the auth platform. A nil
// principal with nil error means the token is simply not a live session.
func (c *AuthClient) ValidateSession(ctx context.Context, sessionToken string) (*SessionPrincipal, error) {
	url := fmt.Sprintf("%s/sessions/validate", c.BaseURL)

	reqBody := map[string]interface{}{
		"session_token": sessionToken,
	}
	jsonData, _ := json.Marshal(reqBody)

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusNotFound {
		// Expired or unknown session — the caller stays anonymous.
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		log.Printf("AuthService /sessions/validate returned %d: %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("session validation failed: %d", resp.StatusCode)
	}

	var out SessionPrincipal
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}

	return &out, nil
}
