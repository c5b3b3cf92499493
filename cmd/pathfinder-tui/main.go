package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dd0wney/cluso-pathfinder/pkg/pathfinder"
	"github.com/dd0wney/cluso-pathfinder/pkg/transport"
)

const defaultIsland = `
S1110
10101
11101
0011X
`

func main() {
	connect := flag.String("connect", "", "NNG address of a running server (e.g. tcp://127.0.0.1:40899); empty runs in-process")
	compress := flag.Bool("compress", false, "snappy-compress frames sent to -connect")
	islandFile := flag.String("island", "", "file holding the initial island, one row per line")
	demo := flag.Bool("demo", true, "seed the demo graph")
	flag.Parse()

	var b backend
	if *connect != "" {
		client, err := transport.Dial(*connect, transport.ClientOptions{Compress: *compress})
		if err != nil {
			log.Fatalf("Failed to connect to %s: %v", *connect, err)
		}
		defer client.Close()
		b = client
	} else {
		b = localBackend{pathfinder.New()}
	}

	if *demo {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := seedDemo(ctx, b)
		cancel()
		if err != nil {
			log.Fatalf("Failed to seed demo graph: %v", err)
		}
	}

	text := defaultIsland
	if *islandFile != "" {
		data, err := os.ReadFile(*islandFile)
		if err != nil {
			log.Fatalf("Failed to read island: %v", err)
		}
		text = string(data)
	}

	p := tea.NewProgram(initialModel(b, parseEditor(text)), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
