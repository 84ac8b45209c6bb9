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

	"github.com/proteoparc/proteoparc/internal/domain"
	"github.com/proteoparc/proteoparc/internal/ports"
)

// Query renders the archive query text for scope, e.g.
//
//	((gene:TP53) AND (taxonomy_id:9606)) NOT (database:FusionGDB)
func (c *Client) Query(scope domain.Scope) string {
	var b strings.Builder
	b.WriteByte('(')
	if scope.Gene != "" {
		fmt.Fprintf(&b, "(gene:%s) AND ", scope.Gene)
	}
	fmt.Fprintf(&b, "(taxonomy_id:%d))", scope.TaxID)
	for _, db := range c.cfg.Exclude {
		fmt.Fprintf(&b, " NOT (database:%s)", db)
	}
	return b.String()
}

func (c *Client) searchURL(scope domain.Scope, format string) string {
	v := url.Values{}
	v.Set("compressed", "false")
	v.Set("format", format)
	v.Set("query", c.Query(scope))
	v.Set("size", strconv.Itoa(c.cfg.PageSize))
	return c.cfg.BaseURL + "/uniparc/search?" + v.Encode()
}

// Search follows the next-page links of the scope's query until the last
// page, handing each decoded page to visit.
func (c *Client) Search(ctx context.Context, scope domain.Scope, visit func(ports.Page) error) error {
	next := c.searchURL(scope, "json")
	for page := 1; next != ""; page++ {
		resp, err := c.get(ctx, next, "application/json")
		if err != nil {
			return err
		}

		var sj searchJSON
		if err := json.Unmarshal(resp.body, &sj); err != nil {
			return fmt.Errorf("decode page %d: %w", page, err)
		}
		records := make([]domain.RawRecord, len(sj.Results))
		for i, e := range sj.Results {
			records[i] = e.ToRecord()
		}

		p := ports.Page{Records: records, Total: totalResults(resp.header, len(records))}
		c.logger.Debug().
			Str("scope", scope.String()).
			Int("page", page).
			Int("records", len(records)).
			Int("total", p.Total).
			Msg("page fetched")

		if err := visit(p); err != nil {
			return err
		}
		next = nextLink(resp.header)
	}
	return nil
}

// SearchIDs walks the compact listing of the scope's query.
func (c *Client) SearchIDs(ctx context.Context, scope domain.Scope, visit func(ports.IDPage) error) error {
	next := c.searchURL(scope, "list")
	for next != "" {
		resp, err := c.get(ctx, next, "text/plain")
		if err != nil {
			return err
		}

		var ids []string
		sc := bufio.NewScanner(bytes.NewReader(resp.body))
		for sc.Scan() {
			if id := strings.TrimSpace(sc.Text()); id != "" {
				ids = append(ids, id)
			}
		}
		if err := sc.Err(); err != nil {
			return fmt.Errorf("read id list: %w", err)
		}

		if err := visit(ports.IDPage{IDs: ids, Total: totalResults(resp.header, len(ids))}); err != nil {
			return err
		}
		next = nextLink(resp.header)
	}
	return nil
}

// Entry fetches one full archive entry.
func (c *Client) Entry(ctx context.Context, id string) (domain.RawRecord, error) {
	u := c.cfg.BaseURL + "/uniparc/" + url.PathEscape(id) + "?format=json"
	resp, err := c.get(ctx, u, "application/json")
	if err != nil {
		return domain.RawRecord{}, err
	}

	var e entryJSON
	if err := json.Unmarshal(resp.body, &e); err != nil {
		return domain.RawRecord{}, fmt.Errorf("decode entry %s: %w", id, err)
	}
	return e.ToRecord(), nil
}
