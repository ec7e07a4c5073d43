package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/lawnchairsociety/dungeongen/internal/smoke"
)

func main() {
	serverAddr := flag.String("addr", "localhost:8080", "Dungeon server address")
	verbose := flag.Bool("v", false, "Verbose output - show detailed actions for each test")
	flag.Parse()

	smoke.Verbose = *verbose

	fmt.Printf("Running smoke tests against %s\n", *serverAddr)
	fmt.Println("Make sure dungeond is running!")
	fmt.Println()

	results := smoke.RunAllTests(*serverAddr)
	smoke.PrintResults(results)

	for _, result := range results {
		if !result.Passed {
			os.Exit(1)
		}
	}
}
