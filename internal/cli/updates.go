package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gitanomongolomon/gmm-site/internal/console"
	"github.com/gitanomongolomon/gmm-site/internal/domain"
	"github.com/gitanomongolomon/gmm-site/internal/events"
	"github.com/gitanomongolomon/gmm-site/internal/feed"
)

type draftFlags struct {
	title     string
	slug      string
	content   string
	imageURL  string
	imageFile string
}

var (
	updateDraft draftFlags
	bannerWatch bool
)

var updatesCmd = &cobra.Command{
	Use:   "updates",
	Short: "Author update posts",
}

var updatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List update posts",
	RunE:  runUpdatesList,
}

var updatesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Publish a new update post",
	RunE:  runUpdatesCreate,
}

var updatesEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit an update post; omitted flags keep their stored values",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpdatesEdit,
}

var updatesWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the post list on screen and redraw it on change",
	RunE:  runUpdatesWatch,
}

var updatesBannerCmd = &cobra.Command{
	Use:   "banner",
	Short: "Show whether the newest post is currently announced",
	RunE:  runUpdatesBanner,
}

var updatesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an update post",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpdatesDelete,
}

func init() {
	for _, cmd := range []*cobra.Command{updatesCreateCmd, updatesEditCmd} {
		cmd.Flags().StringVar(&updateDraft.title, "title", "", "post title")
		cmd.Flags().StringVar(&updateDraft.slug, "slug", "", "URL slug (derived from the title when omitted)")
		cmd.Flags().StringVar(&updateDraft.content, "content", "", "markdown body")
		cmd.Flags().StringVar(&updateDraft.imageURL, "image", "", "cover image URL")
		cmd.Flags().StringVar(&updateDraft.imageFile, "image-file", "", "upload this file as the cover image")
	}
	updatesBannerCmd.Flags().BoolVar(&bannerWatch, "watch", false, "keep checking every minute and on every published change")
	updatesCmd.AddCommand(updatesListCmd, updatesWatchCmd, updatesCreateCmd, updatesEditCmd, updatesDeleteCmd, updatesBannerCmd)
}

func newUpdateConsole() (*console.UpdateConsole, error) {
	client, err := newSessionClient()
	if err != nil {
		return nil, err
	}
	return console.NewUpdateConsole(client, 0, consoleLogger()), nil
}

func runUpdatesList(cmd *cobra.Command, args []string) error {
	updates, err := newUpdateConsole()
	if err != nil {
		return err
	}
	if err := updates.Refresh(cmd.Context()); err != nil {
		return err
	}
	return printUpdates(cmd.OutOrStdout(), updates.Posts())
}

func runUpdatesCreate(cmd *cobra.Command, args []string) error {
	updates, err := newUpdateConsole()
	if err != nil {
		return err
	}
	draft := console.NewDraft()
	applyDraftFlags(cmd, draft)
	post, err := updates.Save(cmd.Context(), draft)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "published update %d (%s)\n", post.ID, post.PathKey())
	return nil
}

func runUpdatesEdit(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid update id %q", args[0])
	}
	updates, err := newUpdateConsole()
	if err != nil {
		return err
	}
	if err := updates.Refresh(cmd.Context()); err != nil {
		return err
	}
	var current *domain.UpdatePost
	for _, p := range updates.Posts() {
		if p.ID == id {
			current = &p
			break
		}
	}
	if current == nil {
		return fmt.Errorf("update %d not found", id)
	}
	draft := console.EditDraft(*current)
	applyDraftFlags(cmd, draft)
	post, err := updates.Save(cmd.Context(), draft)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "saved update %d (%s)\n", post.ID, post.PathKey())
	return nil
}

func runUpdatesDelete(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid update id %q", args[0])
	}
	updates, err := newUpdateConsole()
	if err != nil {
		return err
	}
	err = updates.Delete(cmd.Context(), id, func() bool {
		return confirm(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("delete update %d?", id))
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted update %d\n", id)
	return nil
}

func runUpdatesWatch(cmd *cobra.Command, args []string) error {
	client, err := newSessionClient()
	if err != nil {
		return err
	}
	logger := consoleLogger()
	updates := console.NewUpdateConsole(client, 0, logger)
	updates.Start(cmd.Context())
	defer updates.Stop()

	view := liveView{
		watcher:    client,
		collection: events.CollectionUpdates,
		notify:     updates.Notify,
		ended:      updates.SessionEnded(),
		fingerprint: func() string {
			return updatesFingerprint(updates.Posts())
		},
		draw: func() error {
			fmt.Fprint(cmd.OutOrStdout(), "\033[H\033[2J")
			return printUpdates(cmd.OutOrStdout(), updates.Posts())
		},
		retry:  streamRetryDelay,
		logger: logger,
	}
	return endSession(cmd, view.run(cmd.Context(), cmd.ErrOrStderr()))
}

func runUpdatesBanner(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	logger := consoleLogger()
	watcher := console.NewBannerWatcher(client, console.BannerPollInterval, logger)
	out := cmd.OutOrStdout()
	if !bannerWatch {
		if err := watcher.Refresh(cmd.Context()); err != nil {
			return err
		}
		printBanner(out, watcher.State())
		return nil
	}

	watcher.Start(cmd.Context())
	defer watcher.Stop()
	view := liveView{
		collection: events.CollectionUpdates,
		notify:     watcher.Notify,
		ended:      watcher.SessionEnded(),
		fingerprint: func() string {
			return bannerFingerprint(watcher.State())
		},
		draw: func() error {
			fmt.Fprint(out, "\033[H\033[2J")
			printBanner(out, watcher.State())
			return nil
		},
		retry:  streamRetryDelay,
		logger: logger,
	}
	// The change stream is admin-only; without a session the banner relies on polling.
	if client.HasToken() {
		view.watcher = client
	}
	return endSession(cmd, view.run(cmd.Context(), cmd.ErrOrStderr()))
}

func printBanner(out io.Writer, state feed.Banner) {
	if state.Post == nil {
		fmt.Fprintln(out, "no updates published")
		return
	}
	fmt.Fprintf(out, "latest:   %d %s (%s)\n", state.Post.ID, state.Post.Title, state.Post.CreatedAt.Local().Format("2006-01-02 15:04"))
	fmt.Fprintf(out, "visible:  %t\n", state.Visible)
	if state.DownloadURL != "" {
		fmt.Fprintf(out, "download: %s\n", state.DownloadURL)
	}
}

func bannerFingerprint(state feed.Banner) string {
	if state.Post == nil {
		return ""
	}
	return fmt.Sprintf("%d:%t:%s:%s", state.Post.ID, state.Visible, state.Post.Title, state.DownloadURL)
}

func updatesFingerprint(posts []domain.UpdatePost) string {
	var b strings.Builder
	for _, p := range posts {
		fmt.Fprintf(&b, "%d:%s:%s;", p.ID, p.Slug, p.Title)
	}
	return b.String()
}

// applyDraftFlags copies the flags that were actually given onto d.
func applyDraftFlags(cmd *cobra.Command, d *console.Draft) {
	flags := cmd.Flags()
	if flags.Changed("title") {
		d.SetTitle(updateDraft.title)
	}
	if flags.Changed("slug") {
		d.SetSlug(updateDraft.slug)
	}
	if flags.Changed("content") {
		d.Content = updateDraft.content
	}
	if flags.Changed("image") {
		d.ImageURL = updateDraft.imageURL
	}
	if flags.Changed("image-file") {
		d.ImageFile = updateDraft.imageFile
	}
}

func printUpdates(w io.Writer, posts []domain.UpdatePost) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tSLUG\tTITLE")
	for _, p := range posts {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.ID, p.CreatedAt.Local().Format("2006-01-02 15:04"), p.Slug, truncate(p.Title, 60))
	}
	if len(posts) == 0 {
		fmt.Fprintln(tw, "(no updates)")
	}
	return tw.Flush()
}
