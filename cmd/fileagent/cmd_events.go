package main

import (
	"fmt"
	"strings"

	"fileagent/internal/ui"

	"github.com/spf13/cobra"
)

// eventsCmd inspects the calendar database
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect events stored by the agent patterns",
}

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored calendar events, most recently updated first",
	Args:  cobra.NoArgs,
	RunE:  runEventsList,
}

func init() {
	eventsCmd.AddCommand(eventsListCmd)
}

func runEventsList(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()
	out := cmd.OutOrStdout()

	store, err := openCalendar()
	if err != nil {
		return err
	}
	defer store.Close()

	events, err := store.List(ctx)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Fprintf(out, "No events stored in %s\n", store.Path())
		return nil
	}

	rows := make([][]string, 0, len(events))
	for _, ev := range events {
		rows = append(rows, []string{
			ev.Name,
			ev.Date,
			fmt.Sprintf("%g", ev.DurationMinutes),
			strings.Join(ev.Participants, ", "),
			ev.Link(),
		})
	}
	fmt.Fprintln(out, ui.Table([]string{"name", "date", "minutes", "participants", "link"}, rows))
	return nil
}
