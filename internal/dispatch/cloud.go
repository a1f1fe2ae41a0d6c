// internal/dispatch/cloud.go
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	stderrors "routing-engine/internal/common/errors"
	"routing-engine/internal/common/logger"
	"routing-engine/internal/models"
)

// CloudDispatcher forwards a request to the remote execution service.
type CloudDispatcher struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     logger.Logger
}

func NewCloudDispatcher(baseURL, apiKey string, timeout time.Duration, log logger.Logger) *CloudDispatcher {
	return &CloudDispatcher{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		log:     log.WithFields(map[string]interface{}{"venue": "cloud"}),
	}
}

func (d *CloudDispatcher) Dispatch(ctx context.Context, req models.Request) (Result, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"requestId": req.RequestID,
		"taskType":  req.TaskType,
		"content":   req.Content,
	})
	if err != nil {
		return Result{}, stderrors.NewDispatchFailedError("cloud", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/v1/execute", bytes.NewReader(payload))
	if err != nil {
		return Result{}, stderrors.NewDispatchFailedError("cloud", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if d.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+d.apiKey)
	}

	resp, err := d.client.Do(httpReq)
	if err != nil {
		return Result{}, stderrors.NewDispatchFailedError("cloud", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, stderrors.NewDispatchFailedError("cloud",
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, stderrors.NewDispatchFailedError("cloud", err)
	}

	var out struct {
		Output string `json:"output"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return Result{}, stderrors.NewDispatchFailedError("cloud", err)
	}

	return Result{Output: out.Output, Venue: "cloud"}, nil
}
