package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/gitanomongolomon/gmm-site/internal/console"
	"github.com/gitanomongolomon/gmm-site/internal/domain"
	"github.com/gitanomongolomon/gmm-site/internal/events"
)

var (
	ticketStatus string
	ticketSearch string
)

var ticketsCmd = &cobra.Command{
	Use:   "tickets",
	Short: "Triage support tickets",
}

var ticketsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tickets",
	RunE:  runTicketsList,
}

var ticketsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the ticket list on screen and redraw it on change",
	RunE:  runTicketsWatch,
}

func init() {
	for _, cmd := range []*cobra.Command{ticketsListCmd, ticketsWatchCmd} {
		cmd.Flags().StringVar(&ticketStatus, "status", "", "only show tickets in this status (open, resolved, archived)")
		cmd.Flags().StringVar(&ticketSearch, "search", "", "case-insensitive search over handle, description and category")
		ticketsCmd.AddCommand(cmd)
	}
	for _, action := range []domain.TicketAction{
		domain.TicketActionResolve,
		domain.TicketActionArchive,
		domain.TicketActionUnarchive,
		domain.TicketActionReopen,
		domain.TicketActionDelete,
	} {
		ticketsCmd.AddCommand(ticketActionCmd(action))
	}
}

func ticketActionCmd(action domain.TicketAction) *cobra.Command {
	return &cobra.Command{
		Use:   string(action) + " <id>",
		Short: strings.ToUpper(string(action[:1])) + string(action[1:]) + " a ticket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid ticket id %q", args[0])
			}
			tickets, err := newTicketConsole(cmd)
			if err != nil {
				return err
			}
			if err := tickets.Refresh(cmd.Context()); err != nil {
				return err
			}
			if err := tickets.Apply(cmd.Context(), id, action); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ticket %d: %s done\n", id, action)
			return nil
		},
	}
}

func newTicketConsole(cmd *cobra.Command) (*console.TicketConsole, error) {
	client, err := newSessionClient()
	if err != nil {
		return nil, err
	}
	confirmer := func(t domain.Ticket, action domain.TicketAction) bool {
		return confirm(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("%s ticket %d from %s?", action, t.ID, t.DiscordTag))
	}
	return console.NewTicketConsole(client, confirmer, console.TicketPollInterval, consoleLogger()), nil
}

func ticketFilter() (console.TicketFilter, error) {
	status := domain.TicketStatus(ticketStatus)
	if status != "" && !status.Valid() {
		return console.TicketFilter{}, fmt.Errorf("unknown status %q", ticketStatus)
	}
	return console.TicketFilter{Status: status, Query: ticketSearch}, nil
}

func runTicketsList(cmd *cobra.Command, args []string) error {
	filter, err := ticketFilter()
	if err != nil {
		return err
	}
	tickets, err := newTicketConsole(cmd)
	if err != nil {
		return err
	}
	if err := tickets.Refresh(cmd.Context()); err != nil {
		return err
	}
	return printTickets(cmd.OutOrStdout(), tickets.View(filter))
}

func runTicketsWatch(cmd *cobra.Command, args []string) error {
	filter, err := ticketFilter()
	if err != nil {
		return err
	}
	client, err := newSessionClient()
	if err != nil {
		return err
	}
	logger := consoleLogger()
	tickets := console.NewTicketConsole(client, nil, console.TicketPollInterval, logger)
	tickets.Start(cmd.Context())
	defer tickets.Stop()

	view := liveView{
		watcher:    client,
		collection: events.CollectionTickets,
		notify:     tickets.Notify,
		ended:      tickets.SessionEnded(),
		fingerprint: func() string {
			return ticketFingerprint(tickets.View(filter))
		},
		draw: func() error {
			fmt.Fprint(cmd.OutOrStdout(), "\033[H\033[2J")
			return printTickets(cmd.OutOrStdout(), tickets.View(filter))
		},
		retry:  streamRetryDelay,
		logger: logger,
	}
	return endSession(cmd, view.run(cmd.Context(), cmd.ErrOrStderr()))
}

// redraw calls draw whenever fingerprint changes until ctx is done.
func redraw(ctx context.Context, every time.Duration, fingerprint func() string, draw func() error) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	last := "\x00"
	for {
		if current := fingerprint(); current != last {
			if err := draw(); err != nil {
				return err
			}
			last = current
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func ticketFingerprint(tickets []domain.Ticket) string {
	var b strings.Builder
	for _, t := range tickets {
		fmt.Fprintf(&b, "%d:%s;", t.ID, t.Status)
	}
	return b.String()
}

func printTickets(w io.Writer, tickets []domain.Ticket) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tCATEGORY\tDISCORD\tCREATED\tFILES\tDESCRIPTION")
	for _, t := range tickets {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\t%s\n",
			t.ID, t.Status, t.Category, t.DiscordTag,
			t.CreatedAt.Local().Format("2006-01-02 15:04"),
			len(t.AttachmentURLs), truncate(t.Description, 60))
	}
	if len(tickets) == 0 {
		fmt.Fprintln(tw, "(no tickets)")
	}
	return tw.Flush()
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
