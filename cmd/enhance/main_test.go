package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentals/internal/config"
	"rentals/internal/model"
)

type recordingEnhancer struct {
	outcome model.Outcome
	got     map[string]any
}

func (r *recordingEnhancer) EnhanceDescription(_ context.Context, raw map[string]any) model.Outcome {
	r.got = raw
	return r.outcome
}

func runCmd(t *testing.T, enhancer *recordingEnhancer, args ...string) (string, error) {
	t.Helper()
	t.Setenv("GENERATION_PROVIDER", "openai")

	orig := buildEnhancer
	buildEnhancer = func(context.Context, *config.Config) (descriptionEnhancer, error) { return enhancer, nil }
	t.Cleanup(func() { buildEnhancer = orig })

	var out, errOut bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestEnhanceCommand_Success(t *testing.T) {
	enhancer := &recordingEnhancer{outcome: model.Succeeded(model.EnhancementResult{EnhancedDescription: "Lovely."})}

	out, err := runCmd(t, enhancer,
		"--address", "123 Main St",
		"--price", "2500",
		"--amenities", "Gym",
		"--description", "A nice apartment.",
	)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success": true, "data": {"enhancedDescription": "Lovely."}}`, out)
	assert.Equal(t, "123 Main St", enhancer.got["address"])
	assert.Equal(t, "2500", enhancer.got["price"])
}

func TestEnhanceCommand_Failure(t *testing.T) {
	enhancer := &recordingEnhancer{outcome: model.Failed(model.MessageInvalidInput)}

	out, err := runCmd(t, enhancer, "--price=-5")
	require.ErrorIs(t, err, errEnhancementFailed)
	assert.JSONEq(t, `{"success": false, "error": "Invalid input."}`, out)
}

func TestWriteOutcome_Pretty(t *testing.T) {
	var buf bytes.Buffer
	err := writeOutcome(&buf, model.Succeeded(model.EnhancementResult{EnhancedDescription: "x"}), true)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "\n  \"success\": true")
}
