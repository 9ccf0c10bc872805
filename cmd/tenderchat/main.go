// Command tenderchat is a terminal chat panel against a tenderdesk server.
// It logs in, polls the API for the conversation list, the selected
// conversation's messages and the unread badge, and redraws on every change.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"tenderdesk/internal/chatsync"
	"tenderdesk/internal/client"
	"tenderdesk/internal/infra/obs"
)

func main() {
	var (
		serverURL  = flag.String("server", "http://localhost:8000", "tenderdesk server base URL")
		identifier = flag.String("user", "bidder@local", "login identifier (mail or userName)")
		password   = flag.String("password", "bidder1234", "login password")
		env        = flag.String("env", "prod", "log style (dev for colored output)")
	)
	flag.Parse()

	logger := obs.NewLogger(*env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := client.New(*serverURL)
	api.Logger = logger

	auth, err := api.Login(ctx, *identifier, *password)
	if err != nil {
		fmt.Fprintln(os.Stderr, "login failed:", err)
		os.Exit(1)
	}
	fmt.Printf("logged in as %s <%s>\n", auth.User.UserName, auth.User.Mail)

	session := chatsync.NewSession(api, auth.User.ID, chatsync.Config{Logger: logger})

	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		_ = session.Run(ctx)
	}()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-session.Updates():
				render(session.Snapshot())
			}
		}
	}()

	readInput(ctx, stop, session)
	<-runDone
}

// readInput consumes stdin lines until EOF or /quit. Plain lines are sent to
// the selected conversation; slash commands drive the panel.
func readInput(ctx context.Context, stop context.CancelFunc, session *chatsync.Session) {
	fmt.Println("commands: /select <n>  /new [workerId] [tenderId]  /quit  (anything else sends)")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit":
			stop()
			return
		case strings.HasPrefix(line, "/select"):
			arg := strings.TrimSpace(strings.TrimPrefix(line, "/select"))
			index, err := strconv.Atoi(arg)
			if err != nil || index < 1 {
				fmt.Println("usage: /select <n>")
				continue
			}
			snap := session.Snapshot()
			if index > len(snap.Chats) {
				fmt.Println("no such conversation")
				continue
			}
			if err := session.Select(ctx, snap.Chats[index-1].ID); err != nil {
				fmt.Println("select failed:", err)
			}
		case strings.HasPrefix(line, "/new"):
			fields := strings.Fields(strings.TrimPrefix(line, "/new"))
			var workerID, tenderID string
			if len(fields) > 0 {
				workerID = fields[0]
			}
			if len(fields) > 1 {
				tenderID = fields[1]
			}
			if _, err := session.StartChat(ctx, workerID, tenderID); err != nil {
				fmt.Println("start failed:", err)
			}
		default:
			if err := session.Send(ctx, line); err != nil {
				if errors.Is(err, chatsync.ErrNoSelection) {
					fmt.Println("select a conversation first (/select <n>)")
					continue
				}
				// The text is not echoed locally, so a failed send just
				// reports and the user can paste it again.
				fmt.Println("send failed:", err)
			}
		}
	}
	stop()
}

func render(snap chatsync.Snapshot) {
	fmt.Printf("\n=== chats (%d unread) ===\n", snap.Unread)
	for i, chat := range snap.Chats {
		marker := " "
		if snap.Selected != nil && snap.Selected.ID == chat.ID {
			marker = "*"
		}
		preview := chat.LastMessagePreview
		if preview == "" {
			preview = "(no messages)"
		}
		fmt.Printf("%s %d. [%s] %s\n", marker, i+1, chat.Status, preview)
	}
	if snap.Selected == nil {
		return
	}
	fmt.Println("--- messages ---")
	for _, message := range snap.Messages {
		fmt.Printf("%s %s: %s\n", message.CreatedAt.Local().Format(time.Kitchen), shortID(message.SenderUserID), message.Text)
	}
	fmt.Print("> ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
