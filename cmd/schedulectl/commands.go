package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/maheshrc27/postsheet/internal/models"
	"github.com/maheshrc27/postsheet/internal/transfer"
	"github.com/maheshrc27/postsheet/pkg/client"
	"github.com/maheshrc27/postsheet/pkg/utils"
)

var (
	schedPlatform string
	schedTitle    string
	schedContent  string
	schedImage    string
	schedAt       string
	schedTags     string
	schedBoard    string
	fromDraft     bool

	statusPostID string

	connectAccount string
	disconnect     bool
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Schedule a post",
	Long: `Schedule a post for publication.

--at accepts RFC 3339 ("2030-01-01T09:00:00Z") or a local
"2006-01-02T15:04" timestamp. --draft fills empty fields from the
pending draft and consumes it.`,
	Args: cobra.NoArgs,
	RunE: runSchedule,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List scheduled posts known to the server",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a scheduled post",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var statusCmd = &cobra.Command{
	Use:   "status <id> <pending|published|failed>",
	Short: "Set the status of a post",
	Args:  cobra.ExactArgs(2),
	RunE:  runStatus,
}

var historyCmd = &cobra.Command{
	Use:   "history <id>",
	Short: "Show publish attempts for a post",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

var connectCmd = &cobra.Command{
	Use:   "connect <platform>",
	Short: "Mark a platform as connected",
	Args:  cobra.ExactArgs(1),
	RunE:  runConnect,
}

var connectionsCmd = &cobra.Command{
	Use:   "connections",
	Short: "Show platform connection state",
	Args:  cobra.NoArgs,
	RunE:  runConnections,
}

var draftCmd = &cobra.Command{
	Use:   "draft <content>",
	Short: "Stash content for the next schedule --draft",
	Args:  cobra.ExactArgs(1),
	RunE:  runDraft,
}

func init() {
	f := scheduleCmd.Flags()
	f.StringVarP(&schedPlatform, "platform", "p", "", "target platform")
	f.StringVar(&schedTitle, "title", "", "post title")
	f.StringVarP(&schedContent, "content", "c", "", "post body")
	f.StringVar(&schedImage, "image", "", "image URL or data URI")
	f.StringVar(&schedAt, "at", "", "publish time")
	f.StringVar(&schedTags, "hashtags", "", "hashtags")
	f.StringVar(&schedBoard, "board", "", "pinterest board name")
	f.BoolVar(&fromDraft, "draft", false, "use the pending draft")

	statusCmd.Flags().StringVar(&statusPostID, "post-id", "", "id assigned by the downstream platform")

	connectCmd.Flags().StringVar(&connectAccount, "account", "", "account display name")
	connectCmd.Flags().BoolVar(&disconnect, "disconnect", false, "mark as disconnected instead")

	draftCmd.Flags().StringVarP(&schedPlatform, "platform", "p", "", "target platform")
	draftCmd.Flags().StringVar(&schedTitle, "title", "", "post title")
	draftCmd.Flags().StringVar(&schedImage, "image", "", "image URL")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	fc, err := newFacade()
	if err != nil {
		return err
	}

	in := client.PostInput{
		Platform:  schedPlatform,
		Title:     schedTitle,
		Content:   schedContent,
		ImageURL:  schedImage,
		Hashtags:  schedTags,
		BoardName: schedBoard,
	}
	if fromDraft {
		d, ok, err := fc.TakeDraft()
		if err != nil {
			return err
		}
		if ok {
			in.Platform = firstNonEmpty(in.Platform, d.Platform)
			in.Title = firstNonEmpty(in.Title, d.Title)
			in.Content = firstNonEmpty(in.Content, d.Content)
			in.ImageURL = firstNonEmpty(in.ImageURL, d.ImageURL)
		}
	}
	if in.Platform == "" {
		return fmt.Errorf("--platform is required")
	}

	at, err := parseAt(schedAt)
	if err != nil {
		return err
	}
	in.PublishTime = at
	if note := platformNote(in.Platform); note != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), note)
	}

	post, err := fc.Schedule(cmd.Context(), in)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "scheduled %s for %s on %s\n", post.ID, post.PublishTime.Format(time.RFC3339), post.Platform)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	api, err := newAPIClient()
	if err != nil {
		return err
	}
	posts, err := api.List(cmd.Context())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPLATFORM\tPUBLISH\tSTATUS\tTITLE")
	for _, p := range posts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Platform, p.PublishTime.Format(time.RFC3339), p.Status, p.Title)
	}
	return w.Flush()
}

func runDelete(cmd *cobra.Command, args []string) error {
	if err := checkPostID(args[0]); err != nil {
		return err
	}
	fc, err := newFacade()
	if err != nil {
		return err
	}
	if err := fc.Delete(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	if err := checkPostID(args[0]); err != nil {
		return err
	}
	if !models.PostStatus(args[1]).Valid() {
		return fmt.Errorf("invalid status %q", args[1])
	}
	api, err := newAPIClient()
	if err != nil {
		return err
	}
	err = api.UpdateStatus(cmd.Context(), args[0], &transfer.StatusUpdate{
		Status:         args[1],
		PlatformPostID: statusPostID,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", args[0], args[1])
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	if err := checkPostID(args[0]); err != nil {
		return err
	}
	api, err := newAPIClient()
	if err != nil {
		return err
	}
	phs, err := api.History(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tPLATFORM\tCODE\tERROR")
	for _, ph := range phs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", ph.CreatedAt.Format(time.RFC3339), ph.Platform, ph.StatusCode, ph.ErrorMessage)
	}
	return w.Flush()
}

func runConnect(cmd *cobra.Command, args []string) error {
	fc, err := newFacade()
	if err != nil {
		return err
	}
	if err := fc.UpdateConnection(args[0], !disconnect, connectAccount); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s connected: %t\n", args[0], fc.ConnectionStatus(args[0]))
	return nil
}

func runConnections(cmd *cobra.Command, args []string) error {
	fc, err := newFacade()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PLATFORM\tCONNECTED\tACCOUNT")
	for _, c := range fc.Connections() {
		fmt.Fprintf(w, "%s\t%t\t%s\n", c.Platform, c.IsConnected, c.AccountName)
	}
	return w.Flush()
}

func runDraft(cmd *cobra.Command, args []string) error {
	fc, err := newFacade()
	if err != nil {
		return err
	}
	return fc.CopyContentToScheduler(client.Draft{
		Title:    schedTitle,
		Content:  args[0],
		ImageURL: schedImage,
		Platform: strings.ToLower(schedPlatform),
	})
}

func parseAt(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("--at is required")
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02T15:04", raw, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --at %q: %w", raw, err)
	}
	return t, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func checkPostID(id string) error {
	if !utils.IsPostID(id) {
		return fmt.Errorf("%q is not a post id", id)
	}
	return nil
}

func platformNote(platform string) string {
	if models.IsKnownPlatform(platform) {
		return ""
	}
	return fmt.Sprintf("note: %s has no dedicated sheet, the post is only recorded in the Posts ledger", platform)
}
