// Package payment orchestrates the two-phase protocol against the payment
// gateway: create an intent, then verify the gateway's response or abandon
// the order. The gateway client runs in live mode against the real API or in
// mock mode with a simulated flow; the contract is identical either way.
package payment

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	ModeLive = "live"
	ModeMock = "mock"
)

// Config is read from the environment at startup.
type Config struct {
	APIURL     string
	StoreID    string
	AuthKey    string
	WebhookKey string
	Mode       string
	Currency   string
}

func ConfigFromEnv() (Config, error) {
	cfg := Config{
		APIURL:     os.Getenv("GATEWAY_API_URL"),
		StoreID:    os.Getenv("GATEWAY_STORE_ID"),
		AuthKey:    os.Getenv("GATEWAY_AUTH_KEY"),
		WebhookKey: os.Getenv("GATEWAY_WEBHOOK_KEY"),
		Mode:       strings.ToLower(os.Getenv("GATEWAY_MODE")),
		Currency:   os.Getenv("GATEWAY_CURRENCY"),
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeMock
	}
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}
	if cfg.Mode == ModeLive && (cfg.APIURL == "" || cfg.StoreID == "" || cfg.AuthKey == "") {
		return Config{}, fmt.Errorf("gateway configuration missing for live mode")
	}
	return cfg, nil
}

// Intent is the gateway's reference the customer pays against.
type Intent struct {
	IntentRef string `json:"intent_ref"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Mode      string `json:"mode"`
}

// ResultStatus classifies a gateway outcome.
type ResultStatus string

const (
	ResultOK        ResultStatus = "ok"
	ResultCancelled ResultStatus = "cancelled"
	ResultFailed    ResultStatus = "failed"
)

// Result is the explicit outcome of a verification attempt, replacing
// success/failure callbacks with a value the coordinator can branch on.
type Result struct {
	Status     ResultStatus
	PaymentRef string
	Reason     string
}

type gatewayResponse struct {
	Order struct {
		Ref string `json:"ref"`
		URL string `json:"url"`
	} `json:"order"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Client talks to the gateway. In mock mode it never touches the network.
type Client struct {
	cfg  Config
	http *http.Client
	log  *zap.Logger
}

func NewClient(cfg Config, log *zap.Logger) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 15 * time.Second},
		log:  log,
	}
}

func (c *Client) Mode() string {
	return c.cfg.Mode
}

// CreateIntent registers the amount with the gateway and returns the opaque
// reference the payment UI needs.
func (c *Client) CreateIntent(ctx context.Context, amount int64, orderRef string) (*Intent, error) {
	if c.cfg.Mode == ModeMock {
		return &Intent{
			IntentRef: "mock-" + uuid.NewString(),
			Amount:    amount,
			Currency:  c.cfg.Currency,
			Mode:      ModeMock,
		}, nil
	}

	payload := map[string]interface{}{
		"method":  "create",
		"store":   c.cfg.StoreID,
		"authkey": c.cfg.AuthKey,
		"order": map[string]interface{}{
			"cartid":   orderRef,
			"amount":   amount,
			"currency": c.cfg.Currency,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Op: "create_intent", Reason: "gateway unreachable: " + err.Error(), Retryable: true}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, &Error{Op: "create_intent", Reason: fmt.Sprintf("gateway returned %d: %s", resp.StatusCode, raw)}
	}

	var gw gatewayResponse
	if err := json.Unmarshal(raw, &gw); err != nil {
		return nil, &Error{Op: "create_intent", Reason: "unparseable gateway response: " + err.Error()}
	}
	if gw.Error != nil {
		return nil, &Error{Op: "create_intent", Reason: gw.Error.Message}
	}
	if gw.Order.Ref == "" {
		return nil, &Error{Op: "create_intent", Reason: "gateway returned empty intent reference"}
	}
	c.log.Debug("gateway intent created", zap.String("intent_ref", gw.Order.Ref))

	return &Intent{
		IntentRef: gw.Order.Ref,
		Amount:    amount,
		Currency:  c.cfg.Currency,
		Mode:      ModeLive,
	}, nil
}

// VerifySignature checks the gateway's response signature for an intent. In
// mock mode every well-formed response verifies.
func (c *Client) VerifySignature(intentRef, paymentRef, signature string) Result {
	if intentRef == "" || paymentRef == "" {
		return Result{Status: ResultFailed, Reason: "missing payment reference"}
	}
	if c.cfg.Mode == ModeMock {
		return Result{Status: ResultOK, PaymentRef: paymentRef}
	}
	if !strings.EqualFold(Sign(c.cfg.WebhookKey, intentRef, paymentRef), signature) {
		return Result{Status: ResultFailed, Reason: "invalid payment signature"}
	}
	return Result{Status: ResultOK, PaymentRef: paymentRef}
}

// Sign computes the gateway's SHA-1 check value over its field list.
func Sign(key string, fields ...string) string {
	parts := append([]string{key}, fields...)
	h := sha1.Sum([]byte(strings.Join(parts, ":")))
	return hex.EncodeToString(h[:])
}
