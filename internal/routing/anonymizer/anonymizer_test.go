// internal/routing/anonymizer/anonymizer_test.go
package anonymizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnonymize_Credentials(t *testing.T) {
	res := Anonymize("use api_key=sk-12345 to call the service")

	assert.NotContains(t, res.Content, "sk-12345")
	assert.Contains(t, res.Content, "[CREDENTIAL_1]")
	assert.Equal(t, 1, res.Replaced)
}

func TestAnonymize_MultipleKinds(t *testing.T) {
	content := "mail bob@example.com, password=hunter2, host 10.0.0.1"

	res := Anonymize(content)

	assert.NotContains(t, res.Content, "bob@example.com")
	assert.NotContains(t, res.Content, "hunter2")
	assert.NotContains(t, res.Content, "10.0.0.1")
	assert.Len(t, res.Mapping, 3)
}

func TestAnonymize_IdenticalSpansShareOnePlaceholder(t *testing.T) {
	res := Anonymize("bob@example.com wrote to bob@example.com")

	require.Len(t, res.Mapping, 1)
	assert.Equal(t, 2, res.Replaced)
}

func TestAnonymize_CleanContentUntouched(t *testing.T) {
	content := "refactor this function for readability"

	res := Anonymize(content)

	assert.Equal(t, content, res.Content)
	assert.Empty(t, res.Mapping)
}

func TestRestore_RoundTrip(t *testing.T) {
	original := "send results to alice@corp.io via https://hooks.corp.io/notify"

	res := Anonymize(original)
	require.NotEqual(t, original, res.Content)

	// A cloud response echoing the placeholders gets the originals back.
	response := "ok, notified " + res.Content
	restored := Restore(response, res.Mapping)

	assert.Contains(t, restored, "alice@corp.io")
	assert.NotContains(t, restored, "[EMAIL_1]")
}
