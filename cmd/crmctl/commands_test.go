package main

import (
	"testing"

	"propertycrm/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatuses(t *testing.T) {
	got, err := parseStatuses([]string{" New", "contacted", ""})
	require.NoError(t, err)
	assert.Equal(t, []domain.LeadStatus{domain.LeadNew, domain.LeadContacted}, got)

	got, err = parseStatuses(nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = parseStatuses([]string{"archived"})
	assert.ErrorContains(t, err, "archived")
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["auto-assign"])
	assert.True(t, names["rescore"])
	assert.True(t, names["migrate"])
	assert.NotNil(t, rescoreCmd.Flags().Lookup("status"))
}
