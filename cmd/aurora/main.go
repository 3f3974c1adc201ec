package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/aurora-mobile/aurora-auth/config"
	"github.com/aurora-mobile/aurora-auth/internal/domain/entity"
	"github.com/aurora-mobile/aurora-auth/internal/gateway"
	"github.com/aurora-mobile/aurora-auth/internal/infrastructure/cache"
	"github.com/aurora-mobile/aurora-auth/internal/session"
	"github.com/aurora-mobile/aurora-auth/pkg/helpers"
)

const usage = `usage: aurora <command> [args]

commands:
  status                          show the restored session state
  signup <email> <password> <name>  register and request a verification code
  verify <email> <code>           confirm the emailed code and sign in
  login <email> <password>        sign in with password
  logout                          drop the local session
  subscribe <months>              mark the account premium for N months
`

func main() {
	_ = godotenv.Load()
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-cli", cfg.Env)

	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("open cache: %v", err)
	}

	gw := gateway.NewHTTP(cfg.ProviderBaseURL, cfg.ServiceAPIKey, logger)
	mgr := session.NewManager(gw, store, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := mgr.Restore(ctx); err != nil {
		log.Fatalf("restore session: %v", err)
	}

	args := flag.Args()
	switch args[0] {
	case "status":
		printState(mgr)
	case "signup":
		if len(args) != 4 {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		if err := mgr.SignUp(ctx, args[1], args[2], args[3]); err != nil {
			log.Fatalf("signup: %v", err)
		}
		fmt.Printf("verification code sent to %s\n", args[1])
	case "verify":
		if len(args) != 3 {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		if err := mgr.VerifyCode(ctx, args[1], args[2]); err != nil {
			log.Fatalf("verify: %v", err)
		}
		printState(mgr)
	case "login":
		if len(args) != 3 {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		if err := mgr.Login(ctx, args[1], args[2]); err != nil {
			log.Fatalf("login: %v", err)
		}
		printState(mgr)
	case "logout":
		if err := mgr.Logout(ctx); err != nil {
			log.Fatalf("logout: %v", err)
		}
		fmt.Println("signed out")
	case "subscribe":
		if len(args) != 2 {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		var months int
		if _, err := fmt.Sscanf(args[1], "%d", &months); err != nil || months < 1 {
			log.Fatalf("subscribe: months must be a positive integer")
		}
		expiry := time.Now().UTC().AddDate(0, months, 0)
		if err := mgr.UpdateSubscription(ctx, entity.TierPremium, &expiry); err != nil {
			log.Fatalf("subscribe: %v", err)
		}
		printState(mgr)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func openStore(cfg *config.Config) (cache.Store, error) {
	switch cfg.CacheBackend {
	case "redis":
		rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		return cache.NewRedis(rdb, "cli"), nil
	default:
		return cache.OpenSQLite(cfg.CachePath)
	}
}

func printState(mgr *session.Manager) {
	st := mgr.Snapshot()
	fmt.Printf("state: %s\n", st.Status)
	if st.PendingEmail != "" {
		fmt.Printf("pending verification for %s\n", st.PendingEmail)
	}
	if st.User != nil {
		fmt.Printf("user: %s <%s>\n", st.User.FullName, st.User.Email)
		fmt.Printf("subscription: %s", st.User.Subscription)
		if st.User.SubscriptionExpiry != nil {
			fmt.Printf(" (expires %s)", st.User.SubscriptionExpiry.Format(time.RFC3339))
		}
		fmt.Println()
	}
}
