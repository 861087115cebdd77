package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pfrederiksen/filgoal/internal/calendar"
	"github.com/pfrederiksen/filgoal/internal/match"
)

func main() {
	// Create sample matches for today
	date := match.Today(time.Now())
	matches := []match.Match{
		{
			ID:        "512001",
			League:    "الدوري المصري",
			HomeTeam:  match.Optional("الأهلي"),
			AwayTeam:  match.Optional("الزمالك"),
			HomeScore: match.NoScore,
			AwayScore: match.NoScore,
			Kickoff:   match.Optional("20:00"),
			Stadium:   match.Optional("استاد القاهرة"),
			Channel:   match.Optional("أون تايم سبورت"),
			URL:       match.BaseURL + "/matches/512001",
		},
		{
			ID:        "512002",
			League:    "الدوري الإنجليزي",
			HomeTeam:  match.Optional("ليفربول"),
			AwayTeam:  match.Optional("أرسنال"),
			HomeScore: match.NoScore,
			AwayScore: match.NoScore,
			Kickoff:   match.Optional("10:00 م"),
			URL:       match.BaseURL + "/matches/512002",
		},
	}

	// Generate .ics file
	icsContent := calendar.GenerateICS(matches, date)

	// Write to file (owner read/write only for security)
	filename := "test-filgoal-matches.ics"
	if err := os.WriteFile(filename, []byte(icsContent), 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generated calendar file: %s\n\n", filename)
	fmt.Println("Test it by:")
	fmt.Println("1. Open the .ics file with your calendar app (double-click)")
	fmt.Println("2. Or import it into Google Calendar, Apple Calendar, or Outlook")
	fmt.Println("\nFile contents preview:")
	fmt.Println("---")
	fmt.Println(icsContent)
}
