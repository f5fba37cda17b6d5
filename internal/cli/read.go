package cli

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/lydakis/mcpchat/internal/config"
	"github.com/lydakis/mcpchat/internal/mcpclient"
)

func runReadCommand(args []string, cfg *config.Config, stdout, stderr io.Writer) int {
	if len(args) != 2 {
		fmt.Fprintln(stderr, "mcpchat: usage: mcpchat read <server> <uri>")
		return ExitUsageErr
	}
	server, uri := args[0], args[1]

	return withConnection(context.Background(), cfg, server, stderr, func(ctx context.Context, conn *mcpclient.Connection) int {
		raw := conn.ReadResource(ctx, uri)
		if raw == nil {
			fmt.Fprintf(stderr, "mcpchat: reading %q from server %q failed\n", uri, server)
			return ExitInternal
		}

		out, ok := renderResourcePayload(raw)
		if !ok {
			// Unknown shape: pass the payload through as-is.
			out = string(raw)
		}
		if !strings.HasSuffix(out, "\n") {
			out += "\n"
		}
		_, _ = io.WriteString(stdout, out)
		return ExitOK
	})
}

// renderResourcePayload extracts the text of a resources/read result.
// Blob contents are decoded when they hold valid base64; mixed content
// is concatenated in listing order.
func renderResourcePayload(raw json.RawMessage) (string, bool) {
	var payload struct {
		Contents []struct {
			Text string `json:"text"`
			Blob string `json:"blob"`
		} `json:"contents"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil || len(payload.Contents) == 0 {
		return "", false
	}

	var b strings.Builder
	for _, c := range payload.Contents {
		switch {
		case c.Text != "":
			b.WriteString(c.Text)
		case c.Blob != "":
			data, err := base64.StdEncoding.DecodeString(c.Blob)
			if err != nil {
				return "", false
			}
			b.Write(data)
		}
	}
	return b.String(), true
}
