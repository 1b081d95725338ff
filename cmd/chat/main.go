// Command chat is a terminal client for the assistant: it persists
// transcripts to the chat API when signed in (or the local store otherwise)
// and acquires replies through the Gemini model chain.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ranjankr/ranjanchat/backend/internal/auth"
	"github.com/ranjankr/ranjanchat/backend/internal/config"
	"github.com/ranjankr/ranjanchat/backend/internal/service/ai"
	"github.com/ranjankr/ranjanchat/backend/internal/service/remote"
	"github.com/ranjankr/ranjanchat/backend/internal/service/session"
	"github.com/ranjankr/ranjanchat/backend/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Signed-in sessions persist through the chat API; otherwise chats stay
	// in the local store.
	var store session.Store
	if cfg.Client.UserID != "" && cfg.Auth.Enabled() {
		tokens := auth.NewJWTProvider(cfg.Auth.JWTSecret, cfg.Client.UserID)
		store = remote.NewStore(remote.NewClient(cfg.Client.APIURL, tokens))
		log.Printf("[chat] syncing chats to %s as user %s", cfg.Client.APIURL, cfg.Client.UserID)
	} else {
		local := storage.New(filepath.Join(cfg.Storage.DataDir, "local"))
		defer local.Close()
		store = local
	}

	var responder session.Responder
	var aiSvc *ai.Service
	if cfg.AI.Enabled() {
		aiSvc, err = ai.NewService(ctx, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize AI service: %v", err)
		} else {
			responder = aiSvc
		}
	} else {
		log.Println("GEMINI_API_KEY not configured, replies are unavailable")
	}

	controller := session.New(store, responder)
	if err := controller.RefreshChats(ctx); err != nil {
		log.Printf("warning: failed to load saved chats: %v", err)
	}

	fmt.Println("Ranjan chat. Type a message, or /help for commands.")
	runLoop(ctx, controller, aiSvc)
}

func runLoop(ctx context.Context, controller *session.Controller, aiSvc *ai.Service) {
	scanner := bufio.NewScanner(os.Stdin)
	hinglishMode := false

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := runCommand(ctx, controller, aiSvc, line, &hinglishMode); quit {
				return
			}
			continue
		}

		reply, err := controller.SendMessage(ctx, line, hinglishMode)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}
		fmt.Println(reply.Text)
	}
}

func runCommand(ctx context.Context, controller *session.Controller, aiSvc *ai.Service, line string, hinglishMode *bool) bool {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "/help":
		fmt.Println(`/new            start a fresh chat
/list           list saved chats
/select <n>     open a saved chat
/save [title]   save the current chat with an optional title
/delete <n>     delete a saved chat
/hinglish       force Hinglish replies on or off
/english        reset the sticky Hinglish preference
/test           check which model is reachable
/quit           exit`)
	case "/new":
		controller.NewChat()
		fmt.Println("started a new chat")
	case "/list":
		for i, c := range controller.Chats() {
			fmt.Printf("%d. %s (%s)\n", i+1, c.Title, c.UpdatedAt.Local().Format("2006-01-02 15:04"))
		}
	case "/select":
		if c, ok := chatAt(controller, args); ok {
			if err := controller.SelectChat(ctx, c); err != nil {
				fmt.Printf("error: %v\n", err)
			}
		}
	case "/save":
		title := strings.TrimSpace(strings.TrimPrefix(line, "/save"))
		if title == "" {
			title = controller.SuggestedTitle()
			fmt.Printf("no title given, using %q\n", title)
		}
		saved, err := controller.SaveWithTitle(ctx, title)
		if err != nil {
			fmt.Printf("error: %v\n", err)
		} else {
			fmt.Printf("saved as %q\n", saved.Title)
		}
	case "/delete":
		if c, ok := chatAt(controller, args); ok {
			if err := controller.DeleteChat(ctx, c); err != nil {
				fmt.Printf("error: %v\n", err)
			}
		}
	case "/hinglish":
		*hinglishMode = !*hinglishMode
		fmt.Printf("hinglish mode: %v\n", *hinglishMode)
	case "/english":
		controller.ResetLanguagePreference()
		fmt.Println("language preference reset to English")
	case "/test":
		if aiSvc == nil {
			fmt.Println("AI service is not configured")
			break
		}
		name, err := aiSvc.SelfTest(ctx)
		if err != nil {
			fmt.Printf("no model reachable: %v\n", err)
		} else {
			fmt.Printf("API key is working with model: %s\n", name)
		}
	case "/quit", "/exit":
		return true
	default:
		fmt.Printf("unknown command %s, try /help\n", cmd)
	}
	return false
}

// chatAt resolves a 1-based list index argument to a chat id.
func chatAt(controller *session.Controller, args []string) (string, bool) {
	if len(args) == 0 {
		fmt.Println("usage: command <n>")
		return "", false
	}

	n, err := strconv.Atoi(args[0])
	chats := controller.Chats()
	if err != nil || n < 1 || n > len(chats) {
		fmt.Println("no such chat")
		return "", false
	}
	return chats[n-1].ID, true
}
