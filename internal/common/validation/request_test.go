// internal/common/validation/request_test.go
package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"routing-engine/internal/models"
)

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     models.Request
		wantErr bool
	}{
		{
			name: "valid request",
			req:  models.Request{TaskType: "code_completion", Content: "x := 1", CostPriority: 0.5},
		},
		{
			name: "empty content is allowed",
			req:  models.Request{TaskType: "syntax_checking"},
		},
		{
			name:    "missing task type",
			req:     models.Request{Content: "x"},
			wantErr: true,
		},
		{
			name:    "task type with spaces",
			req:     models.Request{TaskType: "code completion"},
			wantErr: true,
		},
		{
			name:    "task type starting with digit",
			req:     models.Request{TaskType: "1task"},
			wantErr: true,
		},
		{
			name:    "task type too long",
			req:     models.Request{TaskType: strings.Repeat("a", 129)},
			wantErr: true,
		},
		{
			name:    "cost priority below zero",
			req:     models.Request{TaskType: "code_completion", CostPriority: -0.1},
			wantErr: true,
		},
		{
			name:    "cost priority above one",
			req:     models.Request{TaskType: "code_completion", CostPriority: 1.1},
			wantErr: true,
		},
		{
			name: "cost priority boundaries are inclusive",
			req:  models.Request{TaskType: "code_completion", CostPriority: 1.0},
		},
		{
			name:    "oversized content",
			req:     models.Request{TaskType: "code_completion", Content: strings.Repeat("a", MaxContentBytes+1)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequest(tt.req)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
