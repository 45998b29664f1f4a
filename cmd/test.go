/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/moamenhredeen/oastest/internal/tester"
)

var (
	testSettings runSettings
	serverURL    string
	credentials  tester.Credentials
)

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test [openapi-spec]",
	Short: "Test an API against its OpenAPI document",
	Long: `Test an API by deriving scenarios from the examples of an OpenAPI document
and validating every response against the declared schemas.

The document may be a local file or an http(s) URL.

Examples:
  # Test against the only server the document declares
  oastest test api-spec.json

  # Choose a server and authenticate with an API key
  oastest test api-spec.yaml --server http://localhost:8080/v1 --api-key $API_KEY

  # Only operations tagged "pets", exported as JSON
  oastest test api-spec.yaml --tags pets -o json --output-file results.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := tester.Target{
			Name:        targetName(args[0]),
			Path:        args[0],
			Server:      serverURL,
			Credentials: credentials,
		}
		return runTargets(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), []tester.Target{target}, testSettings)
	},
}

// targetName derives a display name from a document location.
func targetName(location string) string {
	name := location
	if i := strings.LastIndexAny(name, `/\`); i >= 0 && i < len(name)-1 {
		name = name[i+1:]
	}
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	return name
}

// addRunFlags registers the flags shared by the test and batch commands.
func addRunFlags(cmd *cobra.Command, rs *runSettings) {
	cmd.Flags().StringVar(&rs.filter, "filter", "", "Filter operations by path pattern or operation ID")
	cmd.Flags().StringSliceVar(&rs.tags, "tags", []string{}, "Filter by OpenAPI tags (can be specified multiple times)")
	cmd.Flags().BoolVarP(&rs.verbose, "verbose", "v", false, "Show passing scenarios and warnings")
	cmd.Flags().IntVarP(&rs.concurrency, "concurrency", "c", tester.DefaultConcurrency, "Number of scenarios run in parallel")
	cmd.Flags().Float64VarP(&rs.rateLimit, "rate", "r", 0, "Max requests per second (0 = unlimited)")
	cmd.Flags().DurationVarP(&rs.timeout, "timeout", "t", 30*time.Second, "Request timeout")
	cmd.Flags().StringVarP(&rs.outputFormat, "output", "o", "text", "Output format: text, json, csv, pdf, docx")
	cmd.Flags().StringVar(&rs.outputFile, "output-file", "", "Write output to file (default: stdout)")
}

func init() {
	rootCmd.AddCommand(testCmd)

	testCmd.Flags().StringVar(&serverURL, "server", "", "Server URL, must match a server of the document")
	testCmd.Flags().StringVar(&credentials.APIKey, "api-key", "", "Credential for apiKey security schemes")
	testCmd.Flags().StringVar(&credentials.BearerToken, "bearer-token", "", "Credential for http bearer security schemes")
	testCmd.Flags().StringVar(&credentials.OAuthToken, "oauth-token", "", "Access token for oauth2 and openIdConnect security schemes")
	testCmd.Flags().StringVar(&credentials.BasicAuth, "basic-auth", "", "Credential for http basic security schemes, as user:password")
	addRunFlags(testCmd, &testSettings)
}
