package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/poltracker/poltracker/internal/config"
	"github.com/poltracker/poltracker/internal/congress"
	"github.com/poltracker/poltracker/internal/states"
)

// One-shot roster tool: with no arguments prints every current senator,
// with a state code prints that state's delegation and partisan color.
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	client := congress.NewClient(cfg.CongressAPIKey)
	ctx := context.Background()

	if len(os.Args) > 1 {
		if err := printState(ctx, client, os.Args[1]); err != nil {
			log.Fatalf("State lookup failed: %v", err)
		}
		return
	}

	if err := printSenators(ctx, client); err != nil {
		log.Fatalf("Senator listing failed: %v", err)
	}
}

func printSenators(ctx context.Context, client *congress.Client) error {
	raw, err := client.CurrentMembers(ctx)
	if err != nil {
		return err
	}

	var members []congress.Member
	for i := range raw {
		if raw[i].IsSenator() {
			members = append(members, raw[i].Normalize())
		}
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].State != members[j].State {
			return members[i].State < members[j].State
		}
		return members[i].Name < members[j].Name
	})

	for _, m := range members {
		fmt.Printf("%-2s  %-10s  %s\n", m.State, m.Party, m.Name)
	}
	fmt.Printf("%d senators\n", len(members))
	return nil
}

func printState(ctx context.Context, client *congress.Client, arg string) error {
	code := strings.ToUpper(arg)
	name, ok := states.Name(code)
	if !ok {
		return fmt.Errorf("unknown state code %q", arg)
	}

	raw, err := client.MembersByState(ctx, code)
	if err != nil {
		return err
	}

	var members []congress.Member
	for i := range raw {
		if raw[i].IsSenator() {
			members = append(members, raw[i].Normalize())
		}
	}

	fmt.Printf("%s (%s): %s\n", name, code, states.Classify(members))
	for _, m := range members {
		fmt.Printf("  %-10s  %s\n", m.Party, m.Name)
	}
	return nil
}
