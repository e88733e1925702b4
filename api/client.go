// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/blinklabs-io/linkboard/ledger"
	"github.com/blinklabs-io/linkboard/registry"
)

// APIError is returned by Client for non-2xx responses
type APIError struct {
	Receipt    *ledger.Receipt
	Message    string
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Client talks to a Server
type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	contentType string,
	body []byte,
	out any,
) error {
	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err != nil {
			return &APIError{
				StatusCode: resp.StatusCode,
				Message:    strings.TrimSpace(string(respBody)),
			}
		}
		return &APIError{
			Receipt:    errResp.Receipt,
			StatusCode: resp.StatusCode,
			Message:    errResp.Message,
		}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(respBody, out)
}

// Submit sends a signed transaction. A transaction that was processed and
// failed returns an *APIError carrying its receipt.
func (c *Client) Submit(
	ctx context.Context,
	tx *ledger.Transaction,
) (*ledger.Receipt, error) {
	data, err := tx.Encode()
	if err != nil {
		return nil, err
	}
	var ret ledger.Receipt
	if err := c.do(ctx, http.MethodPost, "/api/v1/transactions", "application/cbor", data, &ret); err != nil {
		return nil, err
	}
	return &ret, nil
}

func (c *Client) Account(
	ctx context.Context,
	address registry.Identity,
) (*ledger.AccountInfo, error) {
	var ret ledger.AccountInfo
	if err := c.do(ctx, http.MethodGet, "/api/v1/accounts/"+address.String(), "", nil, &ret); err != nil {
		return nil, err
	}
	return &ret, nil
}

func (c *Client) Registry(
	ctx context.Context,
	address registry.Identity,
) (*RegistryResponse, error) {
	var ret RegistryResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/registries/"+address.String(), "", nil, &ret); err != nil {
		return nil, err
	}
	return &ret, nil
}

func (c *Client) Registries(ctx context.Context) ([]registry.Identity, error) {
	var ret []registry.Identity
	if err := c.do(ctx, http.MethodGet, "/api/v1/registries", "", nil, &ret); err != nil {
		return nil, err
	}
	return ret, nil
}

func (c *Client) Transaction(
	ctx context.Context,
	hash ledger.TransactionHash,
) (*TransactionResponse, error) {
	var ret TransactionResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/transactions/"+hash.String(), "", nil, &ret); err != nil {
		return nil, err
	}
	return &ret, nil
}

// Transactions lists the newest transactions. A zero address lists every
// account.
func (c *Client) Transactions(
	ctx context.Context,
	address registry.Identity,
	count int,
) ([]TransactionResponse, error) {
	path := "/api/v1/transactions"
	if !address.IsZero() {
		path = "/api/v1/accounts/" + address.String() + "/transactions"
	}
	query := url.Values{}
	query.Set("count", strconv.Itoa(count))
	var ret []TransactionResponse
	if err := c.do(ctx, http.MethodGet, path+"?"+query.Encode(), "", nil, &ret); err != nil {
		return nil, err
	}
	return ret, nil
}

func (c *Client) Airdrop(
	ctx context.Context,
	address registry.Identity,
	amount uint64,
) (*ledger.AccountInfo, error) {
	body, err := json.Marshal(FaucetRequest{Address: address, Amount: amount})
	if err != nil {
		return nil, err
	}
	var ret ledger.AccountInfo
	if err := c.do(ctx, http.MethodPost, "/api/v1/faucet", "application/json", body, &ret); err != nil {
		return nil, err
	}
	return &ret, nil
}
