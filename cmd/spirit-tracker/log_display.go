package main

import (
	"fmt"
	"strings"

	"github.com/tovenaar/spirit-tracker/internal/battlelog"
)

// displayEntries renders the battle log as a table.
func displayEntries(blog *battlelog.Log) {
	if len(blog.Entries) == 0 {
		fmt.Println("The battle log is empty. Add battles with 'spirit-tracker log add'.")
		return
	}

	fmt.Println()
	fmt.Println("Battle Log")
	fmt.Println("==========")
	fmt.Println()

	fmt.Printf("%-28s  %-8s  %-12s  %s\n", "Name", "Kind", "Winner", "Losses")
	fmt.Println(strings.Repeat("-", 72))

	blog.Each(func(key string, e *battlelog.Entry) {
		name := e.DisplayName
		if name == "" {
			name = key
		}
		winner := "-"
		if !e.Winner.IsShared() {
			winner = blog.PlayerName(e.Winner)
		}
		fmt.Printf("%-28s  %-8s  %-12s  %s\n", name, e.Kind, winner, lossSummary(blog, e))
	})

	fmt.Println()
	fmt.Printf("%d entries", len(blog.Entries))
	if e := blog.Get(blog.LastAdded); e != nil {
		fmt.Printf(" (last added: %s)", e.DisplayName)
	}
	fmt.Println()
	fmt.Println()
}

// lossSummary renders an entry's loss counters for the table.
func lossSummary(blog *battlelog.Log, e *battlelog.Entry) string {
	if e.IsShared {
		return fmt.Sprintf("%d (shared)", e.SharedTally.Losses)
	}
	parts := make([]string, 0, blog.PlayerCount())
	for seat := 0; seat < blog.PlayerCount(); seat++ {
		ref := battlelog.Seat(seat)
		parts = append(parts, fmt.Sprintf("%s %d", blog.PlayerName(ref), e.PlayerLosses(ref)))
	}
	return strings.Join(parts, ", ")
}
