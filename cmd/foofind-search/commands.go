package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/psyvisions/foofind-web/internal/domain"
	"github.com/psyvisions/foofind-web/internal/domain/search/category"
	"github.com/psyvisions/foofind-web/internal/domain/search/request"
	blockuc "github.com/psyvisions/foofind-web/internal/usecase/block"
)

// withApp wires the app, runs fn and prints its result as indented JSON.
// A non-nil result is printed even when fn also returns an error.
func withApp(cmd *cobra.Command, env string, fn func(ctx context.Context, a *app) (any, error)) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, env)
	if err != nil {
		return err
	}
	defer a.close()

	out, err := fn(ctx, a)
	if out != nil {
		if perr := printJSON(cmd.OutOrStdout(), out); perr != nil {
			return perr
		}
	}
	return err
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newSearchCmd(env *string) *cobra.Command {
	var (
		filters request.Filters
		page    int
	)
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run one search and print the resolved answer",
		Example: `  foofind-search search "ubuntu iso" --type software
  foofind-search search "ubuntu tpb" --src t --page 2`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := request.New(strings.Join(args, " "), filters, page)
			if err != nil {
				return err
			}
			return withApp(cmd, *env, func(ctx context.Context, a *app) (any, error) {
				return a.search.Search(ctx, req)
			})
		},
	}
	cmd.Flags().StringVarP(&filters.Type, "type", "t", "",
		"Content types, pipe-separated; one of: "+strings.Join(category.Names(), ", "))
	cmd.Flags().StringVarP(&filters.Src, "src", "s", "", "Source group tags (e.g. wt)")
	cmd.Flags().StringVar(&filters.Size, "size", "", "Size bucket 1-4 or \"min,max\" in bytes")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Result page")
	return cmd
}

func newRelatedCmd(env *string) *cobra.Command {
	return &cobra.Command{
		Use:   "related <phrase>...",
		Short: "Find files related to the given phrases",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rel, err := request.NewRelated(args)
			if err != nil {
				return err
			}
			return withApp(cmd, *env, func(ctx context.Context, a *app) (any, error) {
				return a.search.Related(ctx, rel)
			})
		},
	}
}

func newBlockCmd(env *string, block bool) *cobra.Command {
	var files []string
	use, short := "block", "Set the blocked flag on documents and files"
	if !block {
		use, short = "unblock", "Clear the blocked flag on documents and files"
	}
	cmd := &cobra.Command{
		Use:     use + " [doc-id]...",
		Short:   short,
		Example: "  foofind-search " + use + " 8589934601 --file '010000000200000003000000=My Movie.avi'",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseDocIDs(args)
			if err != nil {
				return err
			}
			parsed, err := parseFiles(files)
			if err != nil {
				return err
			}
			if len(ids)+len(parsed) == 0 {
				return fmt.Errorf("%w: nothing to %s", domain.ErrInvalidRequest, use)
			}
			return withApp(cmd, *env, func(ctx context.Context, a *app) (any, error) {
				rep, err := a.block.SetBlocked(ctx, ids, parsed, block)
				if err != nil && !errors.Is(err, domain.ErrMaintenanceMismatch) {
					return nil, err
				}
				// A mismatch still prints the report, then fails the command.
				return rep, err
			})
		},
	}
	cmd.Flags().StringArrayVarP(&files, "file", "f", nil, "External file id and display name as id=name (repeatable)")
	return cmd
}

func newLocateCmd(env *string) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "locate <file-id>",
		Short: "Print the server a file lives on",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, *env, func(ctx context.Context, a *app) (any, error) {
				shard, found, err := a.search.LocateServer(ctx, args[0], name)
				if err != nil {
					return nil, err
				}
				if !found {
					return nil, fmt.Errorf("%w: file %s is not on any server", domain.ErrNotFound, args[0])
				}
				return map[string]any{"id": args[0], "server": shard}, nil
			})
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Display name of the file")
	return cmd
}

// sourceView is the printed form of a source.
type sourceView struct {
	ID      uint32   `json:"id"`
	Domain  string   `json:"domain"`
	Groups  []string `json:"groups"`
	Blocked bool     `json:"blocked"`
}

func newSourcesCmd(env *string) *cobra.Command {
	var (
		group   string
		blocked bool
	)
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List known sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, *env, func(ctx context.Context, a *app) (any, error) {
				list, err := a.sources.List(ctx, group, blocked)
				if err != nil {
					return nil, err
				}
				out := make([]sourceView, len(list))
				for i, s := range list {
					out[i] = sourceView{ID: s.ID(), Domain: s.Domain(), Groups: s.Groups(), Blocked: s.Blocked()}
				}
				return out, nil
			})
		},
	}
	cmd.Flags().StringVarP(&group, "group", "g", "", "Only sources in this group tag (w, s, t, e, g)")
	cmd.Flags().BoolVar(&blocked, "blocked", false, "Only blocked sources")
	return cmd
}

func parseDocIDs(args []string) ([]uint64, error) {
	ids := make([]uint64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseUint(arg, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: document id %q: %v", domain.ErrInvalidRequest, arg, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseFiles(values []string) ([]blockuc.File, error) {
	files := make([]blockuc.File, 0, len(values))
	for _, v := range values {
		id, name, ok := strings.Cut(v, "=")
		if !ok || id == "" {
			return nil, fmt.Errorf("%w: file %q must be id=name", domain.ErrInvalidRequest, v)
		}
		files = append(files, blockuc.File{ID: id, Name: name})
	}
	return files, nil
}
