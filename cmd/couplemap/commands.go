package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"

	"github.com/couplemap/couplemap/internal/api"
	"github.com/couplemap/couplemap/internal/domain"
	"github.com/couplemap/couplemap/internal/geocode"
	"github.com/couplemap/couplemap/internal/mapsync"
)

type command func(ctx context.Context, a *app, args []string) error

var commands = map[string]command{
	"create":  cmdCreate,
	"join":    cmdJoin,
	"rotate":  cmdRotate,
	"code":    cmdCode,
	"folders": cmdFolders,
	"places":  cmdPlaces,
	"search":  cmdSearch,
	"save":    cmdSave,
	"delete":  cmdDelete,
}

// ---- couple -----------------------------------------------------------------

func cmdCreate(ctx context.Context, a *app, args []string) error {
	if len(args) != 0 {
		return usagef("create takes no arguments")
	}
	resp, err := a.client.CreateCouple(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Couple created. Share this code with your partner: %s\n", resp.InviteCode)
	return nil
}

func cmdJoin(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return usagef("usage: join CODE")
	}
	if _, err := a.client.JoinCouple(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Joined. Your places are shared from now on.")
	return nil
}

func cmdRotate(ctx context.Context, a *app, args []string) error {
	if len(args) != 0 {
		return usagef("rotate takes no arguments")
	}
	code, err := a.client.RotateCode(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "New invite code: %s\nYour partner must join again with it.\n", code)
	return nil
}

func cmdCode(_ context.Context, a *app, args []string) error {
	if len(args) != 0 {
		return usagef("code takes no arguments")
	}
	code, err := a.client.Credentials().Get()
	if err != nil {
		return err
	}
	if code == "" {
		return usagef("no invite code stored")
	}
	fmt.Fprintln(a.out, code)
	return nil
}

// ---- folders and places -----------------------------------------------------

func cmdFolders(ctx context.Context, a *app, args []string) error {
	if len(args) != 0 {
		return usagef("folders takes no arguments")
	}
	folders, err := a.store.Folders(ctx)
	if err != nil {
		return err
	}
	counts, err := a.store.FolderCounts(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "All\t\t%d\n", counts.Total)
	fmt.Fprintf(tw, "Unassigned\t\t%d\n", counts.Unassigned)
	for _, f := range folders {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", f.Name, f.Color, counts.ByFolder[f.ID], f.ID)
	}
	return tw.Flush()
}

// markerList is a Surface that keeps attached markers for printing.
type markerList map[uuid.UUID]mapsync.Marker

func (l markerList) Attach(m mapsync.Marker) { l[m.ID] = m }
func (l markerList) Detach(id uuid.UUID)     { delete(l, id) }

func cmdPlaces(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("places", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	folder := fs.String("folder", "", "only places in this folder (name or id)")
	unassigned := fs.Bool("unassigned", false, "only places without a folder")
	if err := fs.Parse(args); err != nil {
		return usagef("places: %v", err)
	}
	if *folder != "" && *unassigned {
		return usagef("places: -folder and -unassigned are exclusive")
	}

	switch {
	case *unassigned:
		a.store.SetFilter(mapsync.FilterUnassigned)
	case *folder != "":
		id, err := resolveFolder(ctx, a.store, *folder)
		if err != nil {
			return err
		}
		a.store.SetFilter(mapsync.FilterFolder(id))
	}

	visible, err := a.store.Visible(ctx)
	if err != nil {
		return err
	}
	folders, err := a.store.Folders(ctx)
	if err != nil {
		return err
	}
	markers := markerList{}
	mapsync.NewReconciler(markers).Reconcile(visible, folders)

	if len(visible) == 0 {
		fmt.Fprintln(a.out, "No places yet.")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, p := range visible {
		m := markers[p.ID]
		fmt.Fprintf(tw, "%s\t%.5f,%.5f\t%s %s\t%s\t%s\n",
			m.Title, m.Lat, m.Lng, m.Style, m.Color, strings.Join(p.Tags, " "), p.ID)
	}
	return tw.Flush()
}

// resolveFolder accepts a folder id or a folder name, case-insensitively.
func resolveFolder(ctx context.Context, store *mapsync.Store, ref string) (uuid.UUID, error) {
	folders, err := store.Folders(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	if id, err := uuid.Parse(ref); err == nil {
		for _, f := range folders {
			if f.ID == id {
				return id, nil
			}
		}
	}
	for _, f := range folders {
		if strings.EqualFold(f.Name, ref) {
			return f.ID, nil
		}
	}
	return uuid.Nil, usagef("no folder %q", ref)
}

func cmdDelete(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return usagef("usage: delete PLACE_ID")
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		return usagef("delete: %q is not a place id", args[0])
	}
	if err := a.store.DeletePlace(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted.")
	return nil
}

// ---- search and save --------------------------------------------------------

// search runs query through a debounced Searcher and waits for its result.
func (a *app) search(ctx context.Context, query string, limit int) ([]geocode.Candidate, error) {
	results := make(chan mapsync.SearchResult, 1)
	s := mapsync.NewSearcher(a.client, mapsync.SearcherConfig{Debounce: a.debounce, Limit: limit},
		func(r mapsync.SearchResult) {
			select {
			case results <- r:
			default:
			}
		})
	defer s.Close()

	s.Input(query)
	select {
	case r := <-results:
		return r.Candidates, r.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func cmdSearch(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	limit := fs.Int("limit", mapsync.DefaultLimit, "maximum number of results")
	if err := fs.Parse(args); err != nil {
		return usagef("search: %v", err)
	}
	query := strings.Join(fs.Args(), " ")
	if strings.TrimSpace(query) == "" {
		return usagef("usage: search QUERY")
	}

	candidates, err := a.search(ctx, query, *limit)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		fmt.Fprintln(a.out, "No places found.")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for i, c := range candidates {
		d := mapsync.DraftFromCandidate(c)
		fmt.Fprintf(tw, "%d.\t%s\t%s\t%s\n", i+1, d.Title, coords(d), c.DisplayName)
	}
	return tw.Flush()
}

func coords(d mapsync.Draft) string {
	if d.Lat == nil || d.Lng == nil {
		return "-"
	}
	return fmt.Sprintf("%.5f,%.5f", *d.Lat, *d.Lng)
}

func cmdSave(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("save", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	pick := fs.Int("pick", 1, "which search result to save, counting from 1")
	title := fs.String("title", "", "title instead of the result's name")
	memo := fs.String("memo", "", "memo instead of the result's address")
	tags := fs.String("tags", "", "comma-separated tags")
	folder := fs.String("folder", "", "folder name or id")
	visited := fs.String("visited", "", "visit date, YYYY-MM-DD")
	marker := fs.String("marker", "", "marker style")
	if err := fs.Parse(args); err != nil {
		return usagef("save: %v", err)
	}
	query := strings.Join(fs.Args(), " ")
	if strings.TrimSpace(query) == "" {
		return usagef("usage: save [flags] QUERY")
	}

	var folderID *uuid.UUID
	if *folder != "" {
		id, err := resolveFolder(ctx, a.store, *folder)
		if err != nil {
			return err
		}
		folderID = &id
	}

	candidates, err := a.search(ctx, query, mapsync.DefaultLimit)
	if err != nil {
		return err
	}
	if *pick < 1 || *pick > len(candidates) {
		return usagef("save: %d results for %q, cannot pick %d", len(candidates), query, *pick)
	}

	drafts := mapsync.NewDrafts(a.store)
	if _, err := drafts.Pick(candidates[*pick-1]); err != nil {
		return err
	}
	err = drafts.Edit(func(d *mapsync.Draft) {
		if *title != "" {
			d.Title = *title
		}
		if *memo != "" {
			d.Memo = *memo
		}
		if *tags != "" {
			d.Tags = strings.Split(*tags, ",")
		}
		if *marker != "" {
			d.MarkerStyle = domain.MarkerStyle(*marker)
		}
		d.FolderID = folderID
		d.VisitedAt = *visited
	})
	if err != nil {
		return err
	}

	place, err := drafts.Submit(ctx)
	if err != nil {
		return err
	}
	printSaved(a.out, place)
	return nil
}

func printSaved(w io.Writer, p api.Place) {
	fmt.Fprintf(w, "Saved %q (%s)\n", p.Title, p.ID)
}
