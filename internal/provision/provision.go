// Package provision talks to the cluster-local dispatcher service that
// allocates shared persistent volumes for pipeline runs.
package provision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/seqops/nflaunch/internal/logging"
)

const provisionPath = "/provision-storage"

// authScheme is the Authorization scheme the dispatcher expects.
const authScheme = "Latch-Execution-Token"

// VolumeHandle identifies a provisioned shared storage volume. The handle has
// no release call here; volume lifecycle is owned by the cluster service.
type VolumeHandle string

// Client requests storage volumes from the dispatcher.
type Client struct {
	dispatcherURL string
	token         string
	httpClient    *http.Client
	log           *logging.Logger
}

// NewClient creates a dispatcher client. token may be empty; Provision then
// fails with a ConfigurationError before any request is sent.
func NewClient(dispatcherURL, token string, log *logging.Logger) *Client {
	return &Client{
		dispatcherURL: dispatcherURL,
		token:         token,
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
		log: log,
	}
}

type provisionRequest struct {
	StorageGiB int `json:"storage_gib"`
}

type provisionResponse struct {
	Name string `json:"name"`
}

// Provision allocates a shared volume of the requested size and returns its
// handle. Each call allocates a new volume; the operation is not idempotent
// and is never retried.
func (c *Client) Provision(ctx context.Context, sizeGiB int) (VolumeHandle, error) {
	if c.token == "" {
		return "", &ConfigurationError{Missing: "execution token"}
	}

	body, err := json.Marshal(provisionRequest{StorageGiB: sizeGiB})
	if err != nil {
		return "", fmt.Errorf("failed to marshal provisioning request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.dispatcherURL+provisionPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create provisioning request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", authScheme+" "+c.token)

	c.log.Info("provisioning shared storage volume", map[string]interface{}{"storage_gib": sizeGiB})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach dispatcher: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return "", &ProvisioningError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var result provisionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &ProtocolError{Reason: "failed to decode response", Err: err}
	}
	if result.Name == "" {
		return "", &ProtocolError{Reason: "response has no volume name"}
	}

	c.log.Info("storage volume provisioned", map[string]interface{}{"volume": result.Name})

	return VolumeHandle(result.Name), nil
}
