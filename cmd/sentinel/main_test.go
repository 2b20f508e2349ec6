package main

import (
	"bytes"
	"testing"
)

// executeCommand runs the root command with args and returns its output.
// Flag variables persist between executions, so they are reset first.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cfgFile = ""
	envFile = defaultEnvFile
	verbose = false
	usageFlags.output = "text"
	routeFlags.intent = "compliance"
	routeFlags.familyMembers = 0
	routeFlags.tripCount = 0
	routeFlags.maxTokens = 0
	routeFlags.output = "text"

	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}
