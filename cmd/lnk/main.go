package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/nikbrunner/lnk/internal/culler"
	"github.com/nikbrunner/lnk/internal/exporter"
	"github.com/nikbrunner/lnk/internal/importer"
	"github.com/nikbrunner/lnk/internal/linkding"
	"github.com/nikbrunner/lnk/internal/logger"
	"github.com/nikbrunner/lnk/internal/model"
	"github.com/nikbrunner/lnk/internal/picker"
	"github.com/nikbrunner/lnk/internal/search"
	"github.com/nikbrunner/lnk/internal/session"
	"github.com/nikbrunner/lnk/internal/storage"
	"github.com/nikbrunner/lnk/internal/tui"
	"github.com/sirupsen/logrus"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "help", "--help", "-h":
			printHelp()
			return
		case "login":
			if len(os.Args) < 4 {
				fmt.Fprintf(os.Stderr, "Usage: lnk login <url> <token>\n")
				os.Exit(1)
			}
			runLogin(os.Args[2], os.Args[3])
			return
		case "logout":
			runLogout()
			return
		case "add":
			if len(os.Args) < 3 {
				fmt.Fprintf(os.Stderr, "Usage: lnk add <url> [tag...]\n")
				os.Exit(1)
			}
			runAdd(os.Args[2], os.Args[3:])
			return
		case "list":
			runList(os.Args[2:])
			return
		case "tags":
			runTags(strings.Join(os.Args[2:], " "))
			return
		case "profile":
			runProfile()
			return
		case "import":
			if len(os.Args) < 3 {
				fmt.Fprintf(os.Stderr, "Usage: lnk import <file.html>\n")
				os.Exit(1)
			}
			runImport(os.Args[2])
			return
		case "export":
			// Export with optional path
			var outputPath string
			if len(os.Args) >= 3 {
				outputPath = os.Args[2]
			}
			runExport(outputPath)
			return
		case "cull":
			archive := len(os.Args) >= 3 && os.Args[2] == "--archive"
			runCull(archive)
			return
		default:
			// Treat as search query (join all remaining args)
			query := strings.Join(os.Args[1:], " ")
			runQuickSearch(query)
			return
		}
	}

	// No args - run full TUI
	runTUI()
}

func printHelp() {
	help := `lnk - terminal client for linkding

Usage:
  lnk                       Open interactive TUI
  lnk <query>               Search → select → open
  lnk login <url> <token>   Connect to a linkding server
  lnk logout                Forget the stored credentials
  lnk add <url> [tag...]    Bookmark a URL
  lnk list [view] [tag]     Print a view (default, archive, unread,
                            untagged, shared, bytag <tag>)
  lnk tags [filter]         List tags with bookmark counts
  lnk profile               Show the account preferences
  lnk import <file>         Import bookmarks from HTML
  lnk export [path]         Export bookmarks to HTML
  lnk cull [--archive]      Check for dead links, optionally archive them
  lnk help                  Show this help

TUI Keybindings:
  Navigation:
    j/k         Move down/up
    g/G         Jump to top/bottom
    1-6         All, archive, unread, untagged, shared, by tag
    t           Browse tags

  Actions:
    Enter       Open the action panel of a row
    o           Open bookmark in browser
    Y           Copy URL to clipboard
    /           Search
    r           Refresh

  Editing:
    n           Add bookmark (prefilled from clipboard)
    e           Edit
    a           Archive/unarchive
    u           Toggle unread
    s           Toggle shared
    d           Delete

  Other:
    p           Show profile
    L           Log out
    ?           Show help overlay
    q           Quit

Configuration:
  ~/.config/lnk/config.json
`
	fmt.Print(help)
}

// env is what every command needs: config, logger and session.
type env struct {
	cfg      *storage.Config
	log      *logrus.Logger
	closeLog func() error
	session  *session.Manager
}

// setup loads the config and opens the credentials store. The TUI logs to
// a file so the alternate screen stays clean; subcommands log to stderr.
func setup(logToFile bool) *env {
	configPath, err := storage.DefaultConfigFilePath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error getting config path: %v\n", err)
		os.Exit(1)
	}

	cfg, err := storage.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	logOpts := logger.Options{Level: cfg.LogLevel}
	if logToFile {
		logOpts.File = cfg.LogFile
		if logOpts.File == "" {
			if logOpts.File, err = storage.DefaultLogFilePath(); err != nil {
				fmt.Fprintf(os.Stderr, "Error getting log path: %v\n", err)
				os.Exit(1)
			}
		}
	}
	log, closeLog, err := logger.New(logOpts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.OpenStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening credentials store: %v\n", err)
		os.Exit(1)
	}

	mgr, err := session.New(store, session.Options{
		Timeout:    cfg.RequestTimeout(),
		CacheLimit: cfg.CacheLimit,
		LookupSize: cfg.LookupCacheSize,
		Logger:     log,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating session: %v\n", err)
		os.Exit(1)
	}

	return &env{cfg: cfg, log: log, closeLog: closeLog, session: mgr}
}

func (e *env) close() {
	if err := e.session.Close(); err != nil {
		e.log.WithError(err).Warn("close credentials store")
	}
	_ = e.closeLog()
}

// client restores the stored session or exits.
func (e *env) client() *linkding.Client {
	if err := e.session.Restore(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	client, err := e.session.Client()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return client
}

// interruptContext is cancelled on Ctrl+C.
func interruptContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// runTUI runs the full interactive TUI.
func runTUI() {
	e := setup(true)
	defer e.close()

	if err := e.session.Restore(); err != nil && !errors.Is(err, session.ErrNotLoggedIn) {
		e.log.WithError(err).Warn("restore session")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app := tui.NewApp(tui.AppParams{
		Session:  tui.FromManager(e.session),
		Context:  ctx,
		Logger:   e.log,
		PageSize: e.cfg.PageSize,
		Debounce: e.cfg.SearchDebounce(),
	})
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running app: %v\n", err)
		os.Exit(1)
	}
}

// runQuickSearch asks the server, ranks the matches and opens the pick.
func runQuickSearch(query string) {
	e := setup(false)
	defer e.close()
	client := e.client()

	ctx, cancel := interruptContext()
	defer cancel()

	page, err := client.ListBookmarks(ctx, model.ViewDefault, model.ListParams{Query: query, Limit: e.cfg.PageSize})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error searching bookmarks: %v\n", err)
		os.Exit(1)
	}

	results := search.Rank(page.Items, query)

	if len(results) == 0 {
		fmt.Printf("No bookmarks found for '%s'\n", query)
		return
	}

	if len(results) == 1 {
		// Single result - select it directly
		b := results[0].Bookmark
		fmt.Printf("Opening: %s\n", b.DisplayTitle())
		openOrReport(b.URL)
		return
	}

	// Multiple results - show picker
	program := tea.NewProgram(picker.New(results, query, page.Total))
	finalModel, err := program.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running picker: %v\n", err)
		os.Exit(1)
	}

	finalPicker := finalModel.(picker.Picker)
	selected := finalPicker.SelectedBookmark()
	if finalPicker.Cancelled() || selected == nil {
		return
	}

	switch finalPicker.Action() {
	case picker.ActionYank:
		if err := clipboard.WriteAll(selected.URL); err != nil {
			fmt.Fprintf(os.Stderr, "Error copying URL: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Copied: %s\n", selected.URL)
	default:
		openOrReport(selected.URL)
	}
}

func openOrReport(url string) {
	if err := tui.OpenURL(url); err != nil {
		fmt.Fprintf(os.Stderr, "Error opening browser: %v\n", err)
		os.Exit(1)
	}
}

// runLogin verifies and stores the credentials.
func runLogin(baseURL, token string) {
	e := setup(false)
	defer e.close()

	ctx, cancel := interruptContext()
	defer cancel()

	if err := e.session.Login(ctx, baseURL, token); err != nil {
		fmt.Fprintf(os.Stderr, "Error logging in: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Logged in to %s\n", linkding.NormalizeBaseURL(baseURL))
}

// runLogout deletes the stored credentials.
func runLogout() {
	e := setup(false)
	defer e.close()

	if err := e.session.Logout(); err != nil {
		fmt.Fprintf(os.Stderr, "Error logging out: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Logged out")
}

// runAdd bookmarks a URL unless the server already has it. Title,
// description and tags come from the server's scrape when not given.
func runAdd(rawURL string, tagArgs []string) {
	e := setup(false)
	defer e.close()
	client := e.client()

	ctx, cancel := interruptContext()
	defer cancel()

	url := model.NormalizeURL(rawURL)
	res, err := client.LookupByURL(ctx, url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error checking URL: %v\n", err)
		os.Exit(1)
	}
	if res.Exists() {
		fmt.Printf("Already bookmarked: %s (id %d)\n", res.Bookmark.DisplayTitle(), res.Bookmark.ID)
		return
	}

	draft := model.BookmarkDraft{URL: url, Tags: model.ParseTags(strings.Join(tagArgs, " "))}
	if res.Metadata != nil {
		draft.Title = res.Metadata.Title
		draft.Description = res.Metadata.Description
	}
	if len(draft.Tags) == 0 && len(res.SuggestedTags) > 0 {
		draft.Tags = res.SuggestedTags
	}

	created, err := client.CreateBookmark(ctx, draft)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error adding bookmark: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Added: %s\n", created.DisplayTitle())
	if len(created.Tags) > 0 {
		fmt.Printf("Tags:  %s\n", strings.Join(created.Tags, ", "))
	}
}

// runList prints every bookmark of one view.
func runList(args []string) {
	var name, tag string
	if len(args) > 0 {
		name = args[0]
	}
	view, err := model.ParseView(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if view == model.ViewByTag {
		if len(args) < 2 {
			fmt.Fprintf(os.Stderr, "Usage: lnk list bytag <tag>\n")
			os.Exit(1)
		}
		tag = strings.TrimPrefix(args[1], "#")
	}

	e := setup(false)
	defer e.close()
	client := e.client()

	ctx, cancel := interruptContext()
	defer cancel()

	items, err := fetchAll(ctx, client, view, tag, e.cfg.PageSize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing %s: %v\n", view, err)
		os.Exit(1)
	}
	if len(items) == 0 {
		fmt.Println("No bookmarks")
		return
	}
	for _, b := range items {
		fmt.Printf("%s\n  %s\n", b.DisplayTitle(), b.URL)
		if len(b.Tags) > 0 {
			fmt.Printf("  #%s\n", strings.Join(b.Tags, " #"))
		}
	}
}

// runTags lists tags, fuzzy filtered when a filter is given.
func runTags(filter string) {
	e := setup(false)
	defer e.close()
	client := e.client()

	ctx, cancel := interruptContext()
	defer cancel()

	tags, err := client.AllTags(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading tags: %v\n", err)
		os.Exit(1)
	}

	results := search.FilterTags(tags, filter)
	if len(results) == 0 {
		fmt.Println("No tags found")
		return
	}
	for _, r := range results {
		fmt.Printf("%-32s %d\n", r.Tag.Name, r.Tag.BookmarkCount)
	}
}

// runProfile prints the account preferences.
func runProfile() {
	e := setup(false)
	defer e.close()
	client := e.client()

	ctx, cancel := interruptContext()
	defer cancel()

	p, err := client.GetUserProfile(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading profile: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Server:          %s\n", client.BaseURL)
	if at, ok := e.session.ConnectedAt(); ok {
		fmt.Printf("Connected:       %s\n", humanize.Time(at))
	}
	fmt.Printf("Theme:           %s\n", p.Theme)
	fmt.Printf("Date display:    %s\n", p.BookmarkDateDisplay)
	fmt.Printf("Link target:     %s\n", p.BookmarkLinkTarget)
	fmt.Printf("Web archive:     %s\n", p.WebArchiveIntegration)
	fmt.Printf("Tag search:      %s\n", p.TagSearch)
	fmt.Printf("Sharing:         %t\n", p.EnableSharing)
	fmt.Printf("Public sharing:  %t\n", p.EnablePublicSharing)
	fmt.Printf("Favicons:        %t\n", p.EnableFavicons)
	fmt.Printf("Display URL:     %t\n", p.DisplayURL)
	fmt.Printf("Permanent notes: %t\n", p.PermanentNotes)
	fmt.Printf("Sort:            %s\n", p.SearchPreferences.Sort)
}

// runImport handles the import subcommand.
func runImport(filePath string) {
	e := setup(false)
	defer e.close()
	client := e.client()

	file, err := os.Open(filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening file: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	entries, err := importer.ParseHTMLBookmarks(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing HTML: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := interruptContext()
	defer cancel()

	sum, err := importer.Import(ctx, client, entries, e.log, func(done, total int) {
		fmt.Printf("\rImporting %d/%d", done, total)
	})
	fmt.Println()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Import stopped: %v\n", err)
	}

	fmt.Printf("Imported %d bookmarks", len(sum.Created))
	if sum.Skipped > 0 {
		fmt.Printf(" (%d already bookmarked)", sum.Skipped)
	}
	fmt.Println()
	for _, f := range sum.Failed {
		fmt.Printf("  failed: %s: %v\n", f.URL, f.Err)
	}
	if err != nil || len(sum.Failed) > 0 {
		os.Exit(1)
	}
}

// runExport handles the export subcommand.
func runExport(outputPath string) {
	e := setup(false)
	defer e.close()
	client := e.client()

	if outputPath == "" {
		var err error
		outputPath, err = exporter.DefaultExportPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting export path: %v\n", err)
			os.Exit(1)
		}
	}

	ctx, cancel := interruptContext()
	defer cancel()

	var bookmarks []model.Bookmark
	for _, view := range []model.View{model.ViewDefault, model.ViewArchive} {
		items, err := fetchAll(ctx, client, view, "", e.cfg.PageSize)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading bookmarks: %v\n", err)
			os.Exit(1)
		}
		bookmarks = append(bookmarks, items...)
	}

	if err := exporter.WriteFile(outputPath, bookmarks); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing export: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Exported %d bookmarks to %s\n", len(bookmarks), outputPath)
}

// runCull checks every unarchived bookmark and reports dead links.
func runCull(archive bool) {
	e := setup(false)
	defer e.close()
	client := e.client()

	ctx, cancel := interruptContext()
	defer cancel()

	bookmarks, err := fetchAll(ctx, client, model.ViewDefault, "", e.cfg.PageSize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading bookmarks: %v\n", err)
		os.Exit(1)
	}

	results := culler.CheckURLs(ctx, bookmarks, culler.Options{
		Concurrency:    e.cfg.CullConcurrency,
		Timeout:        e.cfg.CullTimeout(),
		ExcludeDomains: e.cfg.CullExcludeDomains,
		Logger:         e.log,
		OnProgress: func(done, total int) {
			fmt.Printf("\rChecking %d/%d", done, total)
		},
	})
	fmt.Println()

	for _, r := range results {
		if r.Status == culler.Healthy {
			continue
		}
		reason := r.Error
		if reason == "" {
			reason = fmt.Sprintf("HTTP %d", r.StatusCode)
		}
		fmt.Printf("%-11s %s (%s)\n", r.Status, r.Bookmark.URL, reason)
	}

	sum := culler.Summarize(results)
	fmt.Printf("%d healthy, %d dead, %d unreachable\n", sum.Healthy, sum.Dead, sum.Unreachable)

	if !archive || sum.Dead == 0 {
		return
	}
	n, err := culler.ArchiveDead(ctx, client, results, e.log)
	fmt.Printf("Archived %d dead bookmarks\n", n)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error archiving: %v\n", err)
		os.Exit(1)
	}
}

// fetchAll pages through one view until a short page.
func fetchAll(ctx context.Context, client *linkding.Client, view model.View, tagName string, pageSize int) ([]model.Bookmark, error) {
	var all []model.Bookmark
	offset := 0
	for {
		page, err := client.ListBookmarks(ctx, view, model.ListParams{TagName: tagName, Limit: pageSize, Offset: offset})
		if err != nil {
			return nil, err
		}
		all = append(all, page.Items...)
		if !page.HasMore() {
			return all, nil
		}
		offset = page.Next()
	}
}
