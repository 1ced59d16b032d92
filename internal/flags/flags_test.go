package flags

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_Enabled(t *testing.T) {
	tests := []struct {
		name     string
		registry *Registry
		flag     string
		expected bool
	}{
		{
			name:     "known flag defaults when absent",
			registry: New(nil),
			flag:     FlagAutoRegister,
			expected: true,
		},
		{
			name:     "config overrides default",
			registry: New(map[string]bool{FlagAutoRegister: false}),
			flag:     FlagAutoRegister,
			expected: false,
		},
		{
			name:     "strict methods off by default",
			registry: New(map[string]bool{}),
			flag:     FlagStrictMethods,
			expected: false,
		},
		{
			name:     "extra flag from config is honored",
			registry: New(map[string]bool{"experimental": true}),
			flag:     "experimental",
			expected: true,
		},
		{
			name:     "unknown flag returns false",
			registry: New(nil),
			flag:     "unknown-flag",
			expected: false,
		},
		{
			name:     "nil registry returns false",
			registry: nil,
			flag:     FlagAutoRegister,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.registry.Enabled(tt.flag))
		})
	}
}

func TestRegistry_All(t *testing.T) {
	require.Equal(t, map[string]bool{
		FlagAutoRegister:  true,
		FlagStrictMethods: true,
	}, New(map[string]bool{FlagStrictMethods: true}).All())

	var nilRegistry *Registry
	require.Equal(t, map[string]bool{}, nilRegistry.All())
}

func TestNew_CopiesInput(t *testing.T) {
	input := map[string]bool{FlagStrictMethods: true}
	r := New(input)

	input[FlagStrictMethods] = false
	require.True(t, r.Enabled(FlagStrictMethods))

	all := r.All()
	all[FlagStrictMethods] = false
	require.True(t, r.Enabled(FlagStrictMethods), "All returns a copy")
}

func TestKnown(t *testing.T) {
	known := Known()
	require.Len(t, known, 2)
	require.Equal(t, FlagAutoRegister, known[0].Name)
	require.True(t, known[0].Default)
	require.Equal(t, FlagStrictMethods, known[1].Name)
	require.NotEmpty(t, known[1].Description)
}
