package dial

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/papercomputeco/dialchat/pkg/llm"
)

const (
	requestBanner        = "=== REQUEST ==="
	requestRule          = "==============="
	responseBanner       = "=== RESPONSE ==="
	responseRule         = "================"
	streamResponseBanner = "=== RESPONSE (Streaming) ==="
	streamResponseRule   = "==========================="
)

func (c *Client) dumpRequest(req llm.ChatRequest) {
	if c.trace == nil {
		return
	}
	body, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return
	}
	fmt.Fprintf(c.trace, "%s\n%s\n%s\n", requestBanner, body, requestRule)
}

func (c *Client) dumpResponse(status int, body []byte) {
	if c.trace == nil {
		return
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		pretty.Reset()
		pretty.Write(body)
	}
	fmt.Fprintf(c.trace, "%s\nStatus Code: %d\n%s\n%s\n", responseBanner, status, pretty.Bytes(), responseRule)
}

func (c *Client) dumpStreamHeader(status int) {
	if c.trace == nil {
		return
	}
	fmt.Fprintf(c.trace, "%s\nStatus Code: %d\n", streamResponseBanner, status)
}

func (c *Client) dumpStreamFooter(extra string) {
	if c.trace == nil {
		return
	}
	fmt.Fprintf(c.trace, "%s%s\n", extra, streamResponseRule)
}
