package registry

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/invoiceflow/backend/internal/domain/billing"
	"github.com/invoiceflow/backend/internal/infrastructure/config"
)

const findPartyPath = "/findById/party"

// DadataClient resolves tax ids to registered legal entities through the
// DaData suggestion API. All calls carry the configured timeout; callers
// treat every failure as "no match".
type DadataClient struct {
	client *resty.Client
	logger *zap.Logger
}

// NewDadataClient creates a new DadataClient from registry configuration
func NewDadataClient(cfg *config.RegistryConfig, logger *zap.Logger) *DadataClient {
	if logger == nil {
		logger = zap.NewNop()
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("Authorization", "Token "+cfg.APIKey)
	if cfg.SecretKey != "" {
		client.SetHeader("X-Secret", cfg.SecretKey)
	}

	return &DadataClient{
		client: client,
		logger: logger,
	}
}

// findPartyRequest is the request body for the party lookup
type findPartyRequest struct {
	Query string `json:"query"`
}

// findPartyResponse is the suggestion API response envelope
type findPartyResponse struct {
	Suggestions []partySuggestion `json:"suggestions"`
}

type partySuggestion struct {
	Value string    `json:"value"`
	Data  partyData `json:"data"`
}

type partyData struct {
	Inn     string       `json:"inn"`
	Kpp     string       `json:"kpp"`
	Ogrn    string       `json:"ogrn"`
	Address partyAddress `json:"address"`
}

type partyAddress struct {
	Value string `json:"value"`
}

// LookupByTaxID resolves a tax id to registered entity details.
// Returns (nil, nil) when the registry has no match.
func (c *DadataClient) LookupByTaxID(ctx context.Context, taxID string) (*billing.EntityInfo, error) {
	var result findPartyResponse

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(findPartyRequest{Query: taxID}).
		SetResult(&result).
		Post(findPartyPath)
	if err != nil {
		return nil, fmt.Errorf("registry request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("registry request failed: HTTP %d", resp.StatusCode())
	}

	if len(result.Suggestions) == 0 {
		return nil, nil
	}

	suggestion := result.Suggestions[0]
	c.logger.Debug("registry lookup resolved entity",
		zap.String("tax_id", taxID),
		zap.String("name", suggestion.Value))

	return &billing.EntityInfo{
		Name:     suggestion.Value,
		TaxID:    suggestion.Data.Inn,
		TaxSubID: suggestion.Data.Kpp,
		RegNum:   suggestion.Data.Ogrn,
		Address:  suggestion.Data.Address.Value,
	}, nil
}

// Ensure DadataClient implements billing.EntityLookup
var _ billing.EntityLookup = (*DadataClient)(nil)
