package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/tendant/publitio-go/pkg/publitio"
)

// NewGetCommand creates the get command
func NewGetCommand() *cobra.Command {
	return newCallCommand(http.MethodGet, "get <path>", "Make a GET API call",
		`Make a GET API call, e.g. "publitio get /files/list -p limit=10".`)
}

// NewPutCommand creates the put command
func NewPutCommand() *cobra.Command {
	return newCallCommand(http.MethodPut, "put <path>", "Make a PUT API call",
		`Make a PUT API call, e.g. "publitio put /files/update/<file_id> -p title=Cat".`)
}

// NewDeleteCommand creates the delete command
func NewDeleteCommand() *cobra.Command {
	return newCallCommand(http.MethodDelete, "delete <path>", "Make a DELETE API call",
		`Make a DELETE API call, e.g. "publitio delete /files/delete/<file_id>".`)
}

func newCallCommand(method, use, short, long string) *cobra.Command {
	var rawParams []string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(rawParams)
			if err != nil {
				return err
			}

			client, _, err := NewClientFromFlags(cmd)
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}
			defer client.Close()

			resp, err := call(cmd.Context(), client, method, args[0], params)
			if err != nil {
				return fmt.Errorf("%s %s failed: %w", method, args[0], err)
			}
			return printResponse(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringArrayVarP(&rawParams, "param", "p", nil, "query parameter key=value (repeatable, order is kept)")

	return cmd
}

func call(ctx context.Context, client *publitio.Client, method, path string, params publitio.Params) (*publitio.Response, error) {
	switch method {
	case http.MethodGet:
		return client.Get(ctx, path, params...)
	case http.MethodPut:
		return client.Put(ctx, path, params...)
	case http.MethodDelete:
		return client.Delete(ctx, path, params...)
	default:
		return nil, fmt.Errorf("unsupported method: %s", method)
	}
}

// NewUploadCommand creates the upload command
func NewUploadCommand() *cobra.Command {
	var rawParams []string
	var filename string

	cmd := &cobra.Command{
		Use:   "upload <path> <source>",
		Short: "Upload a file to an upload endpoint",
		Long: `Upload a file to an endpoint such as /files/create or /watermarks/create.

The source can be a local path, file://path, "-" for standard input, or
s3://bucket/key to stream an object from S3 or an S3-compatible store.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, ref := args[0], args[1]

			params, err := parseParams(rawParams)
			if err != nil {
				return err
			}

			client, cfg, err := NewClientFromFlags(cmd)
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}
			defer client.Close()

			ctx := cmd.Context()
			sources, err := cfg.BuildSources(ctx)
			if err != nil {
				return err
			}

			rc, name, err := sources.Open(ctx, ref)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", ref, err)
			}
			defer rc.Close()

			if filename != "" {
				name = filename
			}
			if isVerbose(cmd) {
				fmt.Fprintf(cmd.ErrOrStderr(), "Uploading %s to %s as %s\n", ref, path, name)
			}

			resp, err := client.UploadFileNamed(ctx, path, name, rc, params...)
			if err != nil {
				return fmt.Errorf("upload failed: %w", err)
			}
			return printResponse(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringArrayVarP(&rawParams, "param", "p", nil, "query parameter key=value (repeatable, order is kept)")
	cmd.Flags().StringVar(&filename, "filename", "", "multipart filename (default: source base name)")

	return cmd
}

// NewSignCommand creates the sign command
func NewSignCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Print a freshly signed authentication query",
		Long:  `Print the api_key, api_timestamp, api_nonce and api_signature parameters for one request.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfigFromFlags(cmd)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if cfg.APIKey == "" || cfg.APISecret == "" {
				return publitio.ErrMissingCredentials
			}

			sq, err := publitio.NewSigner(cfg.APIKey, cfg.APISecret).Sign()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sq.Params().Encode())
			return nil
		},
	}

	return cmd
}

// printResponse writes the response data as indented JSON. A non-2xx status
// is reported as an error after the body is printed.
func printResponse(w io.Writer, resp *publitio.Response) error {
	out, err := json.MarshalIndent(resp.Data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format response: %w", err)
	}
	fmt.Fprintln(w, string(out))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("api returned status %d", resp.StatusCode)
	}
	return nil
}
