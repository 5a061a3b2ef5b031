package foofind

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/psyvisions/foofind-web/internal/domain"
	"github.com/psyvisions/foofind-web/internal/domain/search/request"
	blockuc "github.com/psyvisions/foofind-web/internal/usecase/block"
)

// Search runs q with filters and returns the resolved page (1-based).
// Sub-query failures show up in SearchResult.Errors; the call fails only when
// no sub-query ran.
func (c *Client) Search(ctx context.Context, q string, f Filters, page int) (_ SearchResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	req, err := request.New(q, request.Filters{Type: f.Type, Src: f.Src, Size: f.Size}, page)
	if err != nil {
		return SearchResult{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	res, err := c.searchSvc.Search(ctx, req)
	if err != nil {
		return SearchResult{}, fmt.Errorf("search: %w", err)
	}
	return resolutionFromDomain(res), nil
}

// Related returns files related to the given phrases, one outcome per phrase kept.
func (c *Client) Related(ctx context.Context, phrases ...string) (_ []Outcome, err error) {
	start := time.Now()
	defer func() { c.obs.observe("related", start, err) }()

	rel, err := request.NewRelated(phrases)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	out, err := c.searchSvc.Related(ctx, rel)
	if err != nil {
		return nil, fmt.Errorf("related: %w", err)
	}
	items := make([]Outcome, len(out))
	for i, o := range out {
		items[i] = outcomeFromDomain(o)
	}
	return items, nil
}

// LocateServer returns the server holding the file. found is false when the
// daemon does not know exactly one matching document.
func (c *Client) LocateServer(ctx context.Context, fileID, name string) (server uint32, found bool, err error) {
	start := time.Now()
	defer func() { c.obs.observe("locate", start, err) }()

	server, found, err = c.searchSvc.LocateServer(ctx, fileID, name)
	if err != nil {
		return 0, false, fmt.Errorf("locate %s: %w", fileID, err)
	}
	return server, found, nil
}

// Block sets the blocked flag on documents and on the documents the files resolve to.
// A partial update returns the report together with an error wrapping ErrMaintenanceMismatch.
func (c *Client) Block(ctx context.Context, ids []uint64, files ...File) (BlockReport, error) {
	return c.setBlocked(ctx, "block", ids, files, true)
}

// Unblock clears the blocked flag. See Block.
func (c *Client) Unblock(ctx context.Context, ids []uint64, files ...File) (BlockReport, error) {
	return c.setBlocked(ctx, "unblock", ids, files, false)
}

func (c *Client) setBlocked(ctx context.Context, op string, ids []uint64, files []File, block bool) (_ BlockReport, err error) {
	start := time.Now()
	defer func() { c.obs.observe(op, start, err) }()

	if len(ids)+len(files) == 0 {
		return BlockReport{}, fmt.Errorf("%w: nothing to %s", domain.ErrInvalidRequest, op)
	}
	in := make([]blockuc.File, len(files))
	for i, f := range files {
		in[i] = blockuc.File{ID: f.ID, Name: f.Name}
	}

	rep, err := c.blockSvc.SetBlocked(ctx, ids, in, block)
	if err != nil && !errors.Is(err, domain.ErrMaintenanceMismatch) {
		return BlockReport{}, fmt.Errorf("%s: %w", op, err)
	}
	return reportFromDomain(rep), err
}
