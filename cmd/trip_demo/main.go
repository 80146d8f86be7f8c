// README: Command-line demo; generates one itinerary and asks one grounded follow-up question.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"roamly/internal/ai"
	"roamly/internal/modules/chat"
	"roamly/internal/modules/itinerary"
	"roamly/internal/types"
)

func main() {
	prompt := flag.String("prompt", "3 days in Kyoto, love food and temples, moderate budget", "trip request")
	question := flag.String("ask", "What's a good dinner spot near me?", "follow-up chat question; empty skips chat")
	lat := flag.Float64("lat", 35.0116, "latitude bias for the chat")
	lng := flag.Float64("lng", 135.7681, "longitude bias for the chat")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Fatal().Msg("GEMINI_API_KEY environment variable not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	provider, err := ai.NewGeminiProvider(ctx, apiKey, "", itinerary.Vocabulary())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize itinerary provider")
	}
	defer provider.Close()

	fmt.Printf("User: %s\n\n", *prompt)
	trip, err := itinerary.NewService(provider, nil, log).Generate(ctx, *prompt)
	if err != nil {
		log.Fatal().Err(err).Msg("generation failed")
	}
	printTrip(trip)

	if *question == "" {
		return
	}

	chatProvider, err := ai.NewGeminiChatProvider(ctx, apiKey, "")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize chat provider")
	}
	session := chat.NewSession("demo", "demo", chatProvider, log)
	if err := session.Initialize(ctx, &types.Coordinates{Latitude: *lat, Longitude: *lng}); err != nil {
		log.Fatal().Err(err).Msg("chat initialize failed")
	}

	fmt.Printf("\nUser: %s\n", *question)
	msg, err := session.Send(ctx, *question)
	if err != nil {
		log.Fatal().Err(err).Msg("chat failed")
	}
	fmt.Printf("Roamly: %s\n", msg.Text)
	for _, link := range msg.GroundingLinks {
		fmt.Printf("  [%s] %s %s\n", link.Source, link.Title, link.URI)
	}
}

func printTrip(t *itinerary.TripItinerary) {
	fmt.Printf("%s (%s, %s)\n%s\n", t.TripTitle, t.Destination, t.Duration, t.Summary)
	for _, d := range t.Days {
		fmt.Printf("\nDay %d: %s\n", d.DayNumber, d.Theme)
		for _, a := range d.Activities {
			fmt.Printf("  %-9s %-28s %-12s %s\n", a.Time, a.Activity, a.Type, costLabel(a.CostEstimate))
		}
	}
	fmt.Println("\nBudget:")
	for _, b := range t.EstimatedBudget {
		fmt.Printf("  %-14s %5.1f%%\n", b.Category, b.Percentage)
	}
}

func costLabel(n int) string {
	return strings.Repeat("$", n)
}
