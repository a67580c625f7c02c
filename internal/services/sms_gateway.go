package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// SmsGatewayClient talks to the SMS provider's HTTP API. The provider issues
// short-lived bearer tokens; the client caches one and refreshes it shortly
// before expiry.
type SmsGatewayClient struct {
	baseURL  string
	username string
	password string
	sender   string
	client   *http.Client

	mu          sync.RWMutex
	token       string
	tokenExpiry time.Time
}

// NewSmsGatewayClient constructs the gateway client.
func NewSmsGatewayClient(baseURL, username, password, sender string) *SmsGatewayClient {
	return &SmsGatewayClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		sender:   sender,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

type gatewayAuthResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

func (c *SmsGatewayClient) getToken(ctx context.Context, force bool) (string, error) {
	if !force {
		c.mu.RLock()
		if c.token != "" && time.Now().Before(c.tokenExpiry) {
			t := c.token
			c.mu.RUnlock()
			return t, nil
		}
		c.mu.RUnlock()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock.
	if !force && c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	payload, _ := json.Marshal(map[string]string{
		"username": c.username,
		"password": c.password,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("sms auth request build: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("sms auth request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("sms auth failed: status %d", resp.StatusCode)
	}

	var authResp gatewayAuthResponse
	if err := json.Unmarshal(body, &authResp); err != nil {
		return "", fmt.Errorf("sms auth unmarshal: %w", err)
	}

	if authResp.Token == "" {
		return "", errors.New("sms auth: empty token")
	}

	c.token = authResp.Token
	if authResp.ExpiresIn > 0 {
		c.tokenExpiry = time.Now().Add(time.Duration(authResp.ExpiresIn)*time.Second - 30*time.Second)
	} else {
		c.tokenExpiry = time.Now().Add(55 * time.Minute)
	}

	return c.token, nil
}

type gatewaySendRequest struct {
	Recipients []string `json:"recipients"`
	Body       string   `json:"body"`
	Sender     string   `json:"sender"`
}

// Send delivers one SMS. A 401 from the provider forces one token refresh and
// a single retry.
func (c *SmsGatewayClient) Send(ctx context.Context, phone, body string) error {
	status, err := c.send(ctx, phone, body, false)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized {
		status, err = c.send(ctx, phone, body, true)
		if err != nil {
			return err
		}
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("sms send failed: status %d", status)
	}
	return nil
}

func (c *SmsGatewayClient) send(ctx context.Context, phone, body string, forceToken bool) (int, error) {
	token, err := c.getToken(ctx, forceToken)
	if err != nil {
		return 0, err
	}

	payload, err := json.Marshal(gatewaySendRequest{
		Recipients: []string{phone},
		Body:       body,
		Sender:     c.sender,
	})
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("sms send request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}
