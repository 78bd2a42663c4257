package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/keshon/datastore"
	"golang.org/x/time/rate"

	"github.com/keshon/dispatchkit/internal/config"
	"github.com/keshon/dispatchkit/internal/discord"
	"github.com/keshon/dispatchkit/pkg/dispatch"
)

// blockedAuthorID is denied by the global check regardless of command.
const blockedAuthorID = "123456789"

func main() {
	log.Println("[INFO] Starting dispatchkit example bot...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Any setup error below is fatal: the dispatcher never starts serving.
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("[ERR] ", err)
	}

	reg, err := dispatch.NewRegistry(greetingGroup(), arithmeticGroup())
	if err != nil {
		log.Fatal("[ERR] ", err)
	}

	store, err := datastore.New(cfg.StoragePath)
	if err != nil {
		log.Fatal("[ERR] Failed to open datastore: ", err)
	}
	defer store.Close()

	bot, err := discord.NewBot(cfg.DiscordToken, store)
	if err != nil {
		log.Fatal("[ERR] ", err)
	}

	opts := dispatch.Options{
		Prefix:              cfg.Prefix,
		EditTimespan:        cfg.EditTimespan,
		OwnerIDs:            cfg.OwnerIDs,
		SkipChecksForOwners: cfg.SkipChecksForOwners,
		GlobalCheck: dispatch.Checks(
			blockAuthor(blockedAuthorID),
			dispatch.RateLimitCheck(rate.Limit(1), 5),
		),
		PreCommand: func(ctx context.Context, inv *dispatch.Invocation) {
			log.Printf("[INFO] Executing command %s...", inv.Command.Name)
		},
		PostCommand: func(ctx context.Context, inv *dispatch.Invocation) {
			log.Printf("[INFO] Executed command %s!", inv.Command.Name)
			bot.LogInvocation(inv)
		},
		OnError: onError,
		OnEvent: func(name string, raw any) {
			log.Printf("[INFO] Got an event in event handler: %s", name)
		},
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- bot.Start(ctx, reg, opts)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Printf("[INFO] Received signal %s, shutting down...", s)
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil {
			log.Println("[ERR] Discord bot error:", err)
		}
		cancel()
	}

	log.Println("[INFO] Bot exited cleanly")
}

// blockAuthor denies every command for one caller identity.
func blockAuthor(id string) dispatch.CheckFunc {
	return func(ctx context.Context, inv *dispatch.Invocation) dispatch.CheckResult {
		if inv.Event.AuthorID == id {
			return dispatch.Deny()
		}
		return dispatch.Allow()
	}
}

// onError customizes handling for command body failures and forwards every
// other class to the default handler to retain baseline behavior.
func onError(ctx context.Context, inv *dispatch.Invocation, err error) {
	var cmdErr *dispatch.CommandError
	if errors.As(err, &cmdErr) {
		log.Printf("[ERR] Error in command %s: %v", cmdErr.Command, cmdErr.Cause)
		return
	}
	dispatch.DefaultErrorHandler(ctx, inv, err)
}
