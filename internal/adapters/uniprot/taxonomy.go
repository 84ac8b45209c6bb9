package uniprot

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

func (c *Client) taxonomyURL(format, query string) string {
	v := url.Values{}
	v.Set("format", format)
	v.Set("query", query)
	return c.cfg.BaseURL + "/taxonomy/stream?" + v.Encode()
}

// Descendants lists every strict descendant of root, one id per line on
// the wire.
func (c *Client) Descendants(ctx context.Context, root int64) ([]int64, error) {
	u := c.taxonomyURL("list", fmt.Sprintf("(ancestor:%d)", root))
	resp, err := c.get(ctx, u, "text/plain")
	if err != nil {
		return nil, err
	}

	var ids []int64
	sc := bufio.NewScanner(bytes.NewReader(resp.body))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		id, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse taxon id %q: %w", line, err)
		}
		ids = append(ids, id)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read taxon list: %w", err)
	}
	return ids, nil
}

// ScientificName looks up the display name of id.
func (c *Client) ScientificName(ctx context.Context, id int64) (string, error) {
	u := c.taxonomyURL("json", fmt.Sprintf("(tax_id:%d)", id))
	resp, err := c.get(ctx, u, "application/json")
	if err != nil {
		return "", err
	}

	var tj taxonomyJSON
	if err := json.Unmarshal(resp.body, &tj); err != nil {
		return "", fmt.Errorf("decode taxonomy: %w", err)
	}
	for _, r := range tj.Results {
		if r.TaxonID == id || r.TaxonID == 0 {
			return r.ScientificName, nil
		}
	}
	return "", nil
}
