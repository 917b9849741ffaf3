package lint

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyGate_AllowsCleanInput(t *testing.T) {
	gate, err := NewPolicyGate(context.Background())
	require.NoError(t, err)

	verdict, err := gate.Evaluate(context.Background(), PolicyInput{})
	require.NoError(t, err)
	assert.True(t, verdict.Allow)
	assert.Empty(t, verdict.Denials)
}

func TestPolicyGate_DeniesMissingFields(t *testing.T) {
	gate, err := NewPolicyGate(context.Background())
	require.NoError(t, err)

	verdict, err := gate.Evaluate(context.Background(), PolicyInput{MissingFields: []string{"title"}})
	require.NoError(t, err)
	assert.False(t, verdict.Allow)
	require.NotEmpty(t, verdict.Denials)
	assert.Contains(t, verdict.Denials[0], "title")
}

func TestPolicyGate_DeniesSensitivityDowngrade(t *testing.T) {
	gate, err := NewPolicyGate(context.Background())
	require.NoError(t, err)

	verdict, err := gate.Evaluate(context.Background(), PolicyInput{SensitivityDowngraded: true})
	require.NoError(t, err)
	assert.False(t, verdict.Allow)
}

func TestPolicyGate_DeniesTemperatureOverCeiling(t *testing.T) {
	gate, err := NewPolicyGate(context.Background())
	require.NoError(t, err)

	verdict, err := gate.Evaluate(context.Background(), PolicyInput{TemperatureExceedsCeiling: true})
	require.NoError(t, err)
	assert.False(t, verdict.Allow)
}
