package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfig = `
{
  "schedules": [
    {
      "name": "porch",
      "periods": [
        { "start": "22:00", "end": "05:00" }
      ]
    },
    {
      "name": "office",
      "disabled": true,
      "periods": []
    }
  ]
}`

const invalidConfig = `
{
  "schedules": [
    {
      "name": "porch",
      "periods": [
        { "start": "22:00", "end": "05:00" }
      ]
    },
    {
      "name": "bad",
      "periods": [
        { "start": "08:00", "end": "10:00" },
        { "start": "09:00", "end": "11:00" }
      ]
    }
  ]
}`

func runApp(t *testing.T, contents string, args ...string) (string, error) {
	t.Helper()
	viper.Reset()

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0600))

	app := NewApp()
	app.now = func() time.Time { return time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC) }

	var out bytes.Buffer
	app.rootCmd.SetOut(&out)
	app.rootCmd.SetErr(&out)
	app.rootCmd.SetArgs(append(args, "--config", path))

	err := app.Execute()
	return out.String(), err
}

func Test_Check(t *testing.T) {

	t.Run("valid", func(t *testing.T) {
		out, err := runApp(t, validConfig, "check")
		require.NoError(t, err)
		assert.Contains(t, out, "porch: ok: 22:00:00-05:00:00")
		assert.Contains(t, out, "office: ok (disabled): no periods")
	})

	t.Run("invalid", func(t *testing.T) {
		out, err := runApp(t, invalidConfig, "check")
		require.ErrorIs(t, err, errInvalidConfig)
		assert.Contains(t, err.Error(), "1 of 2")
		assert.Contains(t, out, "porch: ok")
		assert.Contains(t, out, "bad: INVALID")
	})

	t.Run("bad date", func(t *testing.T) {
		_, err := runApp(t, validConfig, "check", "--date", "10/03/2024")
		assert.ErrorContains(t, err, "invalid --date")
	})

}

func Test_Contains(t *testing.T) {

	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{name: "inside before midnight", args: []string{"contains", "porch", "--at", "23:00"}, expected: "porch at 23:00:00: on\n"},
		{name: "inside after midnight", args: []string{"contains", "porch", "--at", "04:59:59"}, expected: "porch at 04:59:59: on\n"},
		{name: "end is exclusive", args: []string{"contains", "porch", "--at", "05:00"}, expected: "porch at 05:00:00: off\n"},
		{name: "defaults to now", args: []string{"contains", "porch"}, expected: "porch at 12:00:00: off\n"},
		{name: "empty schedule", args: []string{"contains", "office", "--at", "23:00"}, expected: "office at 23:00:00: off\n"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			out, err := runApp(t, validConfig, test.args...)
			require.NoError(t, err)
			assert.Equal(t, test.expected, out)
		})
	}

	t.Run("unknown schedule", func(t *testing.T) {
		_, err := runApp(t, validConfig, "contains", "garage", "--at", "23:00")
		assert.ErrorContains(t, err, "not found")
	})

	t.Run("bad time", func(t *testing.T) {
		_, err := runApp(t, validConfig, "contains", "porch", "--at", "25:00")
		assert.Error(t, err)
	})

}

func Test_Next(t *testing.T) {

	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{name: "before end", args: []string{"next", "porch", "--from", "2024-03-10T04:59:55Z"}, expected: "porch: 2024-03-10T05:00:00Z\n"},
		{name: "defaults to now", args: []string{"next", "porch"}, expected: "porch: 2024-03-10T22:00:00Z\n"},
		{name: "after last boundary", args: []string{"next", "porch", "--from", "2024-03-10T23:00:00Z"}, expected: "porch: 2024-03-11T05:00:00Z\n"},
		{name: "empty schedule", args: []string{"next", "office"}, expected: "office: never changes\n"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			out, err := runApp(t, validConfig, test.args...)
			require.NoError(t, err)
			assert.Equal(t, test.expected, out)
		})
	}

	t.Run("bad from", func(t *testing.T) {
		_, err := runApp(t, validConfig, "next", "porch", "--from", "tomorrow")
		assert.ErrorContains(t, err, "invalid --from")
	})

}

func Test_Next_FollowsLocalDaylightSaving(t *testing.T) {
	newYork, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	local := time.Local
	time.Local = newYork
	t.Cleanup(func() { time.Local = local })

	// 23:00 EDT the night before the clocks go back, porch turns off at 05:00 EST
	out, err := runApp(t, validConfig, "next", "porch", "--from", "2023-11-04T23:00:00-04:00")
	require.NoError(t, err)
	assert.Equal(t, "porch: 2023-11-05T05:00:00-05:00\n", out)
}
