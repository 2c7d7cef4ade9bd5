package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Gateway starts and verifies card payments. The order workflow never
// depends on it: a gateway failure cannot touch stock or order state.
type Gateway interface {
	Initialize(ctx context.Context, amount float64, email string) (*InitResult, error)
	Verify(ctx context.Context, reference string) (bool, error)
}

type InitResult struct {
	AuthorizationURL string `json:"authorizationUrl"`
	AccessCode       string `json:"accessCode"`
	Reference        string `json:"reference"`
}

// PaystackClient talks to the Paystack transaction API. Amounts are naira;
// the API wants kobo.
type PaystackClient struct {
	SecretKey string
	BaseURL   string
	HTTP      *http.Client
}

func NewPaystackClient(secretKey, baseURL string) *PaystackClient {
	return &PaystackClient{
		SecretKey: secretKey,
		BaseURL:   baseURL,
		HTTP:      &http.Client{Timeout: 15 * time.Second},
	}
}

type initRequest struct {
	Email  string `json:"email"`
	Amount int64  `json:"amount"`
}

type initResponse struct {
	Status bool `json:"status"`
	Data   struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
	Message string `json:"message"`
}

func (p *PaystackClient) Initialize(ctx context.Context, amount float64, email string) (*InitResult, error) {
	payload, err := json.Marshal(initRequest{
		Email:  email,
		Amount: int64(amount * 100),
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/transaction/initialize", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.SecretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body initResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK || !body.Status {
		return nil, fmt.Errorf("paystack initialize failed: %s", body.Message)
	}

	return &InitResult{
		AuthorizationURL: body.Data.AuthorizationURL,
		AccessCode:       body.Data.AccessCode,
		Reference:        body.Data.Reference,
	}, nil
}

type verifyResponse struct {
	Status bool `json:"status"`
	Data   struct {
		Status string `json:"status"`
	} `json:"data"`
	Message string `json:"message"`
}

func (p *PaystackClient) Verify(ctx context.Context, reference string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseURL+"/transaction/verify/"+reference, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Authorization", "Bearer "+p.SecretKey)

	resp, err := p.HTTP.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	var body verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, err
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("paystack verify failed: %s", body.Message)
	}

	return body.Status && body.Data.Status == "success", nil
}
