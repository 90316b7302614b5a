package tebex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mitaxdev/litescripts/pkg/config"
	pkgerrors "github.com/mitaxdev/litescripts/pkg/errors"
	"github.com/mitaxdev/litescripts/pkg/logger"
)

const defaultTimeout = 15 * time.Second

// maxErrorBodyBytes caps how much of a provider error payload we retain.
const maxErrorBodyBytes = 8 << 10

var (
	errSecretRequired = errors.New("tebex secret is required")
	errLoggerRequired = errors.New("tebex logger is required")
)

// BasketLine is one package entry sent to the provider when opening a basket.
type BasketLine struct {
	PackageID string          `json:"package_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Basket is the provider handle the caller redirects the buyer to.
type Basket struct {
	Ident       string
	CheckoutURL string
}

// CreateBasketParams names the checkout handoff inputs.
type CreateBasketParams struct {
	Username    string
	CompleteURL string
	CancelURL   string
	Lines       []BasketLine
}

type basketRequest struct {
	Username    string       `json:"username,omitempty"`
	CompleteURL string       `json:"complete_url,omitempty"`
	CancelURL   string       `json:"cancel_url,omitempty"`
	Packages    []BasketLine `json:"packages"`
}

type basketResponse struct {
	Data struct {
		Ident string `json:"ident"`
		Links struct {
			Checkout string `json:"checkout"`
		} `json:"links"`
	} `json:"data"`
}

// Client wraps the Tebex plugin API with centralized auth, logging, and error mapping.
type Client struct {
	httpClient *http.Client
	baseURL    string
	secret     string
	logger     *logger.Logger
}

// NewClient initializes the Tebex wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.TebexConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, errSecretRequired
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://plugin.tebex.io"
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		secret:     secret,
		logger:     logg,
	}

	logg.Info(ctx, "tebex client initialized")
	return c, nil
}

// BaseURL reports the resolved provider endpoint.
func (c *Client) BaseURL() string {
	if c == nil {
		return ""
	}
	return c.baseURL
}

// CreateBasket opens a basket with the provider and returns the hosted
// checkout handle. The call mutates nothing locally; failures surface as
// gateway errors carrying the provider's raw payload.
func (c *Client) CreateBasket(ctx context.Context, params CreateBasketParams) (*Basket, error) {
	if len(params.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "basket requires at least one line")
	}

	body, err := json.Marshal(basketRequest{
		Username:    params.Username,
		CompleteURL: params.CompleteURL,
		CancelURL:   params.CancelURL,
		Packages:    params.Lines,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding basket request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/baskets", bytes.NewReader(body))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building basket request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tebex-Secret", c.secret)

	c.log(ctx, "request", "create_basket", map[string]any{"lines": len(params.Lines)})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log(ctx, "error", "create_basket", map[string]any{"error": err.Error()})
		return nil, pkgerrors.Wrap(pkgerrors.CodeGateway, err, "tebex create basket failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		c.log(ctx, "error", "create_basket", map[string]any{
			"error":  fmt.Sprintf("provider returned status %d", resp.StatusCode),
			"status": resp.StatusCode,
		})
		return nil, pkgerrors.New(pkgerrors.CodeGateway, fmt.Sprintf("tebex create basket returned status %d", resp.StatusCode)).
			WithDetails(providerDetails(resp.StatusCode, raw))
	}

	var payload basketResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.log(ctx, "error", "create_basket", map[string]any{"error": err.Error()})
		return nil, pkgerrors.Wrap(pkgerrors.CodeGateway, err, "decoding basket response")
	}
	if payload.Data.Ident == "" || payload.Data.Links.Checkout == "" {
		return nil, pkgerrors.New(pkgerrors.CodeGateway, "basket response missing ident or checkout link")
	}

	c.log(ctx, "response", "create_basket", map[string]any{"basket_ident": payload.Data.Ident})
	return &Basket{
		Ident:       payload.Data.Ident,
		CheckoutURL: payload.Data.Links.Checkout,
	}, nil
}

// providerDetails keeps the raw provider payload available to callers without
// assuming it is valid JSON.
func providerDetails(status int, raw []byte) map[string]any {
	details := map[string]any{"provider_status": status}
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err == nil {
		details["provider_body"] = parsed
	} else if len(raw) > 0 {
		details["provider_body"] = string(raw)
	}
	return details
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = v
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("tebex %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("tebex %s", phase))
	}
}
