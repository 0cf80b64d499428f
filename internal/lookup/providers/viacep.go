package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/i474232898/cep-lookup/internal/lookup"
)

const DefaultViaCEPBaseURL = "https://viacep.com.br/ws"

// ViaCEPClient implements lookup.AddressClient against viacep.com.br.
type ViaCEPClient struct {
	baseURL string
	client  *http.Client
}

func NewViaCEPClient(client *http.Client, baseURL string) *ViaCEPClient {
	if baseURL == "" {
		baseURL = DefaultViaCEPBaseURL
	}
	return &ViaCEPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// viaCEPFlag accepts the "erro" marker both as a JSON boolean and as the
// string "true", which ViaCEP has used interchangeably.
type viaCEPFlag bool

func (f *viaCEPFlag) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch string(b) {
	case "true", `"true"`:
		*f = true
	case "false", `"false"`, "null", `""`:
		*f = false
	default:
		return fmt.Errorf("unexpected erro value %s", b)
	}
	return nil
}

type viaCEPPayload struct {
	CEP         string     `json:"cep"`
	Logradouro  string     `json:"logradouro"`
	Complemento string     `json:"complemento"`
	Bairro      string     `json:"bairro"`
	Localidade  string     `json:"localidade"`
	UF          string     `json:"uf"`
	IBGE        string     `json:"ibge"`
	DDD         string     `json:"ddd"`
	Erro        viaCEPFlag `json:"erro"`
}

func (c *ViaCEPClient) Resolve(ctx context.Context, code string) (lookup.AddressRecord, error) {
	u := fmt.Sprintf("%s/%s/json/", c.baseURL, url.PathEscape(code))

	resp, err := doRequest(ctx, c.client, nil, u)
	if err != nil {
		return lookup.AddressRecord{}, fmt.Errorf("%w: %w", lookup.ErrLookupFailed, err)
	}
	defer resp.Body.Close()

	var payload viaCEPPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return lookup.AddressRecord{}, fmt.Errorf("%w: decode viacep response: %v", lookup.ErrLookupFailed, err)
	}
	if payload.Erro {
		return lookup.AddressRecord{}, lookup.ErrNotFound
	}
	if payload.Localidade == "" {
		return lookup.AddressRecord{}, fmt.Errorf("%w: viacep response has no city", lookup.ErrLookupFailed)
	}

	return lookup.AddressRecord{
		PostalCode:   code,
		Street:       payload.Logradouro,
		Complement:   payload.Complemento,
		Neighborhood: payload.Bairro,
		City:         payload.Localidade,
		State:        payload.UF,
		IBGE:         payload.IBGE,
		DDD:          payload.DDD,
	}, nil
}
