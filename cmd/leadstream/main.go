package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sadhaka-labs/leadstream/config"
	"github.com/sadhaka-labs/leadstream/internal/agents"
	"github.com/sadhaka-labs/leadstream/internal/approval"
	"github.com/sadhaka-labs/leadstream/internal/conversation"
	"github.com/sadhaka-labs/leadstream/internal/database"
	"github.com/sadhaka-labs/leadstream/internal/models"
	"github.com/sadhaka-labs/leadstream/internal/notify"
	"github.com/sadhaka-labs/leadstream/internal/pipeline"
	"github.com/sadhaka-labs/leadstream/internal/poster"
	"github.com/sadhaka-labs/leadstream/internal/youtube"
)

// app holds the wired components shared by the subcommands.
type app struct {
	cfg       *config.Config
	db        *database.DB
	leads     *database.LeadRepository
	threads   *database.ThreadRepository
	replies   *database.ReplyRepository
	resources *database.ResourceRepository
	fallback  *database.FallbackStore
	tracker   *conversation.Tracker
	backend   agents.Backend
	slack     *notify.SlackNotifier
}

func newApp(ctx context.Context) *app {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	db, err := database.NewDB(cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.CreateTables(ctx); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	var backend agents.Backend
	switch cfg.AIBackend {
	case "gemini":
		backend, err = agents.NewGeminiBackend(ctx, cfg.GeminiKey)
		if err != nil {
			log.Fatalf("Failed to create Gemini backend: %v", err)
		}
	default:
		backend = agents.NewAnthropicBackend(cfg.AnthropicKey)
	}

	a := &app{
		cfg:       cfg,
		db:        db,
		leads:     database.NewLeadRepository(db),
		threads:   database.NewThreadRepository(db),
		replies:   database.NewReplyRepository(db),
		resources: database.NewResourceRepository(db),
		fallback:  database.NewFallbackStore(cfg.FallbackDir),
		backend:   backend,
		slack:     notify.NewSlackNotifier(cfg.SlackToken, cfg.SlackChannel),
	}
	a.tracker = conversation.NewTracker(a.threads)
	return a
}

func (a *app) email() *notify.EmailNotifier {
	n, err := notify.NewEmailNotifier(a.cfg.SMTPHost, a.cfg.SMTPPort,
		a.cfg.EmailFrom, a.cfg.EmailPassword, a.cfg.EmailRecipients())
	if err != nil {
		log.Fatalf("Failed to create email notifier: %v", err)
	}
	return n
}

func main() {
	root := &cobra.Command{
		Use:   "leadstream",
		Short: "YouTube comment lead qualification and engagement pipeline",
	}

	root.AddCommand(runCmd(), draftCmd(), approveCmd(), postCmd(), importCmd(), digestCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Scrape comments, qualify leads, and open conversation threads",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a := newApp(ctx)
			defer a.db.Close()

			log.Println("🚀 Starting lead run...")

			scraper := youtube.NewClient(a.cfg.YouTubeAPIKey, a.cfg.QuotaLimit)
			runner := pipeline.NewRunner(
				a.cfg,
				scraper,
				pipeline.NewDedupIndex(a.leads),
				agents.NewQualifier(a.backend),
				a.leads,
				a.fallback,
				a.tracker,
				a.slack,
				conversation.ShouldCreateThread,
			)

			metrics, err := runner.Run(ctx)
			if err != nil {
				return err
			}
			log.Printf("✅ Run finished: %d stored, %d threads, %d quota units used",
				metrics.Stored, metrics.ThreadsCreated, metrics.QuotaUsed)
			return nil
		},
	}
}

func draftCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "draft",
		Short: "Generate reply drafts for active threads and email them for approval",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a := newApp(ctx)
			defer a.db.Close()

			responders, err := models.LoadResponders(a.cfg.RespondersPath)
			if err != nil {
				return fmt.Errorf("failed to load responders: %w", err)
			}
			if len(responders) == 0 {
				return fmt.Errorf("no responders configured in %s", a.cfg.RespondersPath)
			}

			threads, err := a.threads.GetActive(ctx)
			if err != nil {
				return err
			}

			generator := agents.NewReplyGenerator(a.backend, a.resources)
			mailer := a.email()

			drafted := 0
			for i, thread := range threads {
				if !agents.ShouldGenerateReplyForThread(thread) {
					continue
				}

				responder := responders[i%len(responders)]
				draft := generator.Generate(ctx, thread, responder)

				reply := models.NewPendingReply(thread.ID, "", draft.Text, responder.Name)
				reply.SuggestedResource = draft.SuggestedResource
				if err := a.replies.Create(ctx, reply); err != nil {
					// An open reply already exists for this thread.
					log.Printf("Skipping thread %s: %v", thread.ID, err)
					continue
				}

				if draft.EstimatedReadiness != thread.ReadinessScore {
					if err := a.tracker.UpdateReadiness(ctx, thread, draft.EstimatedReadiness); err != nil {
						log.Printf("Failed to update readiness for thread %s: %v", thread.ID, err)
					}
				}

				if err := mailer.SendApprovalRequest(reply, thread); err != nil {
					log.Printf("Failed to email approval request for reply %s: %v", reply.ID, err)
				}
				drafted++
			}

			log.Printf("✅ Drafted %d replies from %d active threads", drafted, len(threads))
			return nil
		},
	}
}

func approveCmd() *cobra.Command {
	var bodyFile string

	cmd := &cobra.Command{
		Use:   "approve <reply-id> [decision text]",
		Short: "Apply a reviewer decision to a drafted reply",
		Long: `Apply a reviewer decision to a drafted reply.

The decision text follows the email protocol: APPROVE, REJECT with an
optional reason, WAIT, or any other text to replace the draft and approve
it. The text comes from the arguments, --body-file, or stdin.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a := newApp(ctx)
			defer a.db.Close()

			body := strings.Join(args[1:], " ")
			if bodyFile != "" {
				data, err := os.ReadFile(bodyFile)
				if err != nil {
					return fmt.Errorf("failed to read body file: %w", err)
				}
				body = string(data)
			} else if body == "" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				body = string(data)
			}

			gate := approval.NewGate(a.replies)
			response := approval.ParseResponse(body)
			reply, err := gate.Apply(ctx, args[0], response)
			if err != nil {
				return err
			}

			log.Printf("✅ Reply %s is now %s", reply.ID, reply.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&bodyFile, "body-file", "", "file containing the decision email body")
	return cmd
}

func postCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "post",
		Short: "Post approved replies within the safety limits",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a := newApp(ctx)
			defer a.db.Close()

			platform := youtube.NewClient(a.cfg.YouTubeAPIKey, a.cfg.QuotaLimit)
			p := poster.NewPoster(platform, a.replies, a.threads, a.tracker, a.resources)

			posted, err := p.PostApproved(ctx)
			if err != nil {
				return err
			}
			log.Printf("✅ Posted %d replies", posted)
			return nil
		},
	}
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Replay locally saved fallback leads into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a := newApp(ctx)
			defer a.db.Close()

			imported, err := a.fallback.Import(ctx, a.leads)
			if err != nil {
				return err
			}
			log.Printf("✅ Imported %d leads", imported)
			return nil
		},
	}
}

func digestCmd() *cobra.Command {
	var hours int

	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Email a digest of recently stored leads",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a := newApp(ctx)
			defer a.db.Close()

			leads, err := a.leads.GetRecent(ctx, time.Duration(hours)*time.Hour)
			if err != nil {
				return err
			}
			if len(leads) == 0 {
				log.Println("No recent leads, skipping digest")
				return nil
			}

			if err := a.email().SendLeadDigest(leads); err != nil {
				return err
			}
			log.Printf("✅ Digest sent with %d leads", len(leads))
			return nil
		},
	}

	cmd.Flags().IntVar(&hours, "hours", 24, "lookback window in hours")
	return cmd
}
