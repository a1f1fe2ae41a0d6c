// internal/common/validation/request.go
package validation

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"routing-engine/internal/models"
)

// Task type names are snake_case identifiers, same shape as the catalog keys.
var taskTypePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// MaxContentBytes caps inbound payload size at the API boundary. The
// classifier applies its own bounded-scan limit on top of this.
const MaxContentBytes = 1 << 20

// ValidateRequest checks an inbound routing request before it reaches the
// engine. Content may be empty (classifies Low); the task type must at least
// look like an identifier so garbage input is rejected early instead of
// silently falling into the unknown-type default.
func ValidateRequest(req models.Request) error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.TaskType,
			validation.Required,
			validation.Length(1, 128),
			validation.Match(taskTypePattern),
		),
		validation.Field(&req.Content,
			validation.Length(0, MaxContentBytes),
		),
		validation.Field(&req.CostPriority,
			validation.Min(0.0),
			validation.Max(1.0),
		),
		validation.Field(&req.RequestID,
			validation.Length(0, 128),
		),
	)
}
