package payments

import (
	"encoding/json"
	"fmt"

	"github.com/razorpay/razorpay-go"
)

// Gateway opens a remote payment-gateway transaction and returns its
// reference id. Amounts are in minor currency units (paise for INR).
type Gateway interface {
	OpenTransaction(amountMinorUnits int64, currency, receiptID string, metadata map[string]interface{}) (string, error)
}

// GatewayError carries the provider's diagnostics through to the client
// unmodified. Code and Description are only set when the provider returned
// a parseable error body.
type GatewayError struct {
	StatusCode  int
	Code        string
	Description string
	Err         error
}

func (e *GatewayError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("gateway error %s: %s", e.Code, e.Description)
	}
	return fmt.Sprintf("gateway error: %v", e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// RazorpayGateway implements Gateway against the Razorpay Orders API.
type RazorpayGateway struct {
	client *razorpay.Client
}

// NewRazorpayGateway builds the gateway adapter. The client is constructed
// once at process start and shared; the SDK is safe for concurrent use.
func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	return &RazorpayGateway{client: razorpay.NewClient(keyID, keySecret)}
}

func (g *RazorpayGateway) OpenTransaction(amountMinorUnits int64, currency, receiptID string, metadata map[string]interface{}) (string, error) {
	data := map[string]interface{}{
		"amount":   amountMinorUnits,
		"currency": currency,
		"receipt":  receiptID,
	}
	if len(metadata) > 0 {
		data["notes"] = metadata
	}

	body, err := g.client.Order.Create(data, nil)
	if err != nil {
		return "", wrapProviderError(err)
	}

	id, ok := body["id"].(string)
	if !ok || id == "" {
		return "", &GatewayError{Err: fmt.Errorf("gateway response missing order id")}
	}
	return id, nil
}

// wrapProviderError digs the Razorpay error code and description out of the
// SDK error, whose message is the provider's raw JSON body on API
// failures.
func wrapProviderError(err error) *GatewayError {
	var body struct {
		Error struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	}

	gerr := &GatewayError{Err: err}
	if jsonErr := json.Unmarshal([]byte(err.Error()), &body); jsonErr == nil {
		gerr.Code = body.Error.Code
		gerr.Description = body.Error.Description
		if body.Error.Code != "" {
			gerr.StatusCode = 400
		}
	}
	return gerr
}
