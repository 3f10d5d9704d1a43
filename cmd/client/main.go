package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"chorddfs/internal/chorderr"
	"chorddfs/internal/dhtclient"

	"github.com/peterh/liner"
)

func main() {
	// CLI flags
	addr := flag.String("addr", "bootstrap:8000", "Address of the DHT node (entry point)")
	timeout := flag.Duration("timeout", 5*time.Second, "Request timeout (e.g., 5s)")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)

	api := dhtclient.New(*timeout)
	currentAddr := *addr
	fmt.Printf("chorddfs interactive client. Connected to %s\n", currentAddr)
	fmt.Println("Available commands: save/get/delete/list/info/use/exit")

	// Setup liner shell
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	for {
		input, err := line.Prompt(fmt.Sprintf("chorddfs[%s]> ", currentAddr))
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				fmt.Println("Aborted")
				continue
			}
			break
		}
		line.AppendHistory(input)

		args := strings.Fields(strings.TrimSpace(input))
		if len(args) == 0 {
			continue
		}
		cmd := args[0]

		ctx, cancel := context.WithTimeout(context.Background(), *timeout)

		switch cmd {

		case "save":
			if len(args) < 3 {
				fmt.Println("Usage: save <name> <path-to-local-file>")
				cancel()
				continue
			}
			name, path := args[1], args[2]
			data, err := os.ReadFile(path)
			if err != nil {
				fmt.Printf("Save failed: cannot read %s: %v\n", path, err)
				cancel()
				continue
			}
			delay, err := api.Save(ctx, currentAddr, name, data)
			if err != nil {
				fmt.Printf("Save failed (%v) | latency=%s\n", err, delay)
			} else {
				fmt.Printf("Save succeeded (name=%s, bytes=%d) | latency=%s\n", name, len(data), delay)
			}

		case "get":
			if len(args) < 2 {
				fmt.Println("Usage: get <name> [path-to-local-file]")
				cancel()
				continue
			}
			name := args[1]
			data, delay, err := api.Get(ctx, currentAddr, name)
			switch {
			case err == nil:
				if len(args) >= 3 {
					if werr := os.WriteFile(args[2], data, 0o644); werr != nil {
						fmt.Printf("Get succeeded but failed to write %s: %v\n", args[2], werr)
						cancel()
						continue
					}
					fmt.Printf("Get succeeded (name=%s, bytes=%d, wrote %s) | latency=%s\n", name, len(data), args[2], delay)
				} else {
					fmt.Printf("Get succeeded (name=%s, bytes=%d) | latency=%s\n", name, len(data), delay)
				}
			case errors.Is(err, chorderr.ErrNotFound):
				fmt.Printf("File not found: %s | latency=%s\n", name, delay)
			default:
				fmt.Printf("Get failed: %v | latency=%s\n", err, delay)
			}

		case "delete":
			if len(args) < 2 {
				fmt.Println("Usage: delete <name>")
				cancel()
				continue
			}
			name := args[1]
			delay, err := api.Delete(ctx, currentAddr, name)
			switch {
			case err == nil:
				fmt.Printf("Delete succeeded (name=%s) | latency=%s\n", name, delay)
			case errors.Is(err, chorderr.ErrNotFound):
				fmt.Printf("File not found: %s | latency=%s\n", name, delay)
			default:
				fmt.Printf("Delete failed: %v | latency=%s\n", err, delay)
			}

		case "list":
			names, delay, err := api.List(ctx, currentAddr)
			if err != nil {
				fmt.Printf("List failed: %v | latency=%s\n", err, delay)
				cancel()
				continue
			}
			fmt.Printf("Locally stored files (count=%d) | latency=%s\n", len(names), delay)
			for _, n := range names {
				fmt.Printf("  - %s\n", n)
			}

		case "info":
			info, delay, err := api.Info(ctx, currentAddr)
			if err != nil {
				fmt.Printf("Info failed: %v | latency=%s\n", err, delay)
				cancel()
				continue
			}
			fmt.Println("Node info:")
			fmt.Printf("  Self:      %d (%s)\n", info.Self.ID, info.Self.Address)
			fmt.Printf("  Successor: %d (%s)\n", info.Successor.ID, info.Successor.Address)
			if info.Predecessor != nil {
				fmt.Printf("  Predecessor: %d (%s)\n", info.Predecessor.ID, info.Predecessor.Address)
			} else {
				fmt.Println("  Predecessor: (none)")
			}
			fmt.Printf("  Identifier bits: %d\n", info.MBits)
			fmt.Printf("Latency: %s\n", delay)

		case "use":
			if len(args) < 2 {
				fmt.Println("Usage: use <addr>")
				cancel()
				continue
			}
			currentAddr = args[1]
			fmt.Printf("Switched connection to %s\n", currentAddr)

		case "exit", "quit":
			fmt.Println("Bye!")
			cancel()
			return

		default:
			fmt.Printf("Unknown command: %s\n", cmd)
		}

		cancel()
	}
}
