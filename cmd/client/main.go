package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/saeidalz13/treasurehunt-backend/client"
	"github.com/saeidalz13/treasurehunt-backend/internal/config"
	mt "github.com/saeidalz13/treasurehunt-backend/models/treasure"
)

const connectTimeout = time.Second * 10

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		panic(err)
	}

	zerolog.SetGlobalLevel(cfg.LogLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	ns, err := client.NewNetworkSupport(cfg.ServerURL, cfg.PlayerName)
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	defer ns.Close()

	board := client.NewBoard(ns)
	gameOver := make(chan struct{})
	var once sync.Once

	ns.Incoming().Subscribe(func(msg string) {
		board.HandleIncoming(msg)
		fmt.Println(">", msg)
		if board.IsGameOver() {
			once.Do(func() { close(gameOver) })
		}
	})
	ns.ConnectedState().Subscribe(func(connected bool) {
		if !connected {
			fmt.Println("Disconnected. Type 'r' to reconnect.")
		}
	})

	lines := readLines()

	if err := enterGame(ns, lines); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}

	fmt.Println("Dig with row,col (0-9). 'p' prints the board, 'q' quits.")
	for {
		select {
		case <-gameOver:
			fmt.Print(board)
			fmt.Println("Score:", board.Score())
			return

		case line, ok := <-lines:
			if !ok || line == "q" {
				return
			}
			handleLine(ns, board, line)
		}
	}
}

func readLines() <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- strings.TrimSpace(scanner.Text())
		}
	}()
	return lines
}

// Lets the user host a new game or pick one of the open ones.
func enterGame(ns *client.NetworkSupport, lines <-chan string) error {
	browseCtx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	peers, err := ns.Browse(browseCtx)
	cancel()
	if err != nil {
		return err
	}

	fmt.Println("Open games:")
	for i, p := range peers {
		fmt.Printf("  %d) %s\n", i+1, p.DisplayName)
	}
	fmt.Println("Type 'h' to host or the number of a game to join.")

	for line := range lines {
		if line == "h" {
			ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
			defer cancel()
			return ns.Host(ctx)
		}

		n, err := strconv.Atoi(line)
		if err != nil || n < 1 || n > len(peers) {
			fmt.Println("Pick 'h' or a number between 1 and", len(peers))
			continue
		}

		fmt.Println("Details for your opponent:")
		details, ok := <-lines
		if !ok {
			break
		}

		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		return ns.ContactPeer(ctx, peers[n-1], client.Request{Details: details})
	}
	return nil
}

func handleLine(ns *client.NetworkSupport, board *client.Board, line string) {
	switch line {
	case "":
		return

	case "p":
		fmt.Print(board)
		return

	case "r":
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		if err := ns.Reconnect(ctx); err != nil {
			fmt.Println("Error:", err)
		}
		return
	}

	row, col, err := mt.ParseLocation(line, mt.GridSize)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	if err := board.Tap(row, col); err != nil {
		fmt.Println("Error:", err)
	}
}
