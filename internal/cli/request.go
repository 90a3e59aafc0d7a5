package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (c *CLI) getCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get ENDPOINT [KEY=VALUE...]",
		Short: "Send a cached GET request",
		Example: `  ensemblops get /lookup/symbol/homo_sapiens/BRCA2 expand=1
  ensemblops get /info/data`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			params, err := parseParams(args[1:])
			if err != nil {
				return err
			}
			rt, err := c.newRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { err = joinClose(err, rt.close(cmd.Context())) }()

			body, err := rt.client.Request(cmd.Context(), args[0], params)
			if err != nil {
				return err
			}
			return c.printJSON(body)
		},
	}
}

func (c *CLI) postCommand() *cobra.Command {
	var (
		field   string
		ids     []string
		data    string
		ordered bool
	)

	cmd := &cobra.Command{
		Use:   "post ENDPOINT [KEY=VALUE...]",
		Short: "Send a POST request, chunking identifier lists",
		Long: `Send a POST request. With --field and --ids the identifiers are split into
chunks, each chunk is posted under FIELD and the responses are merged: keyed
objects by identifier, or arrays in input order with --ordered. Other body
fields come from --data.`,
		Example: `  ensemblops post /lookup/id --field ids --ids ENSG00000139618,ENSG00000157764
  ensemblops post /vep/homo_sapiens/hgvs --field hgvs_notations --ordered --ids "ENST00000366667:c.803C>T"
  ensemblops post /sequence/id --data '{"ids":["ENSG00000139618"],"type":"genomic"}'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			params, err := parseParams(args[1:])
			if err != nil {
				return err
			}
			var extra map[string]any
			if data != "" {
				if err := json.Unmarshal([]byte(data), &extra); err != nil {
					return fmt.Errorf("--data: %w", err)
				}
			}
			if (field == "") != (len(ids) == 0) {
				return fmt.Errorf("--field and --ids must be given together")
			}

			rt, err := c.newRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { err = joinClose(err, rt.close(cmd.Context())) }()

			ctx := cmd.Context()
			var out any
			switch {
			case field == "":
				body, err := rt.client.RequestPost(ctx, args[0], extra, params)
				if err != nil {
					return err
				}
				return c.printJSON(body)
			case ordered:
				out, err = rt.client.BatchPostOrdered(ctx, args[0], field, ids, extra, params)
			default:
				out, err = rt.client.BatchPostKeyed(ctx, args[0], field, ids, extra, params)
			}
			if err != nil {
				return err
			}
			merged, err := json.Marshal(out)
			if err != nil {
				return err
			}
			return c.printJSON(merged)
		},
	}

	cmd.Flags().StringVar(&field, "field", "", "body field holding the identifier list")
	cmd.Flags().StringSliceVar(&ids, "ids", nil, "identifiers to post, comma separated")
	cmd.Flags().StringVar(&data, "data", "", "JSON object of additional body fields")
	cmd.Flags().BoolVar(&ordered, "ordered", false, "merge array responses in input order")
	return cmd
}

func (c *CLI) releaseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "release",
		Short: "Print the upstream release version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			rt, err := c.newRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { err = joinClose(err, rt.close(cmd.Context())) }()

			version := rt.client.Release(cmd.Context())
			_, err = fmt.Fprintf(c.out, "%s %s\n", rt.client.Server(), version)
			return err
		},
	}
}

// parseParams turns KEY=VALUE arguments into query parameters.
func parseParams(args []string) (map[string]string, error) {
	if len(args) == 0 {
		return nil, nil
	}
	params := make(map[string]string, len(args))
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("parameter %q: want KEY=VALUE", arg)
		}
		params[k] = v
	}
	return params, nil
}

func (c *CLI) printJSON(raw []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		// Not JSON; print as received.
		buf.Reset()
		buf.Write(raw)
	}
	buf.WriteByte('\n')
	_, err := c.out.Write(buf.Bytes())
	return err
}

func joinClose(err, closeErr error) error {
	if err != nil {
		return err
	}
	return closeErr
}
