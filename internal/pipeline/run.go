package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/sadhaka-labs/leadstream/config"
	"github.com/sadhaka-labs/leadstream/internal/models"
	"github.com/sadhaka-labs/leadstream/internal/youtube"
)

// Scraper is the comment source the run pulls from.
type Scraper interface {
	SearchChannels(ctx context.Context, term string, minSubscribers int64, max int) ([]youtube.Channel, error)
	RecentVideos(ctx context.Context, channelID string, daysBack, max int) ([]youtube.Video, error)
	VideoComments(ctx context.Context, video youtube.Video, max int) ([]*models.Comment, error)
	QuotaUsed() int
}

// Classifier annotates comments with qualifications.
type Classifier interface {
	QualifyBatch(ctx context.Context, comments []*models.Comment)
}

// LeadWriter persists qualified leads.
type LeadWriter interface {
	BatchCreate(ctx context.Context, leads []*models.Lead) (created, failed []*models.Lead)
}

// FallbackSaver takes leads that could not be persisted.
type FallbackSaver interface {
	Save(leads []*models.Lead) (string, error)
}

// ThreadCreator opens conversations for leads that warrant them.
type ThreadCreator interface {
	CreateThreadForLead(ctx context.Context, lead *models.Lead) (*models.ConversationThread, error)
}

// LeadNotifier receives run events. May be a nil Slack notifier.
type LeadNotifier interface {
	NotifyHighIntentLead(lead *models.Lead)
	NotifyRunSummary(scraped, qualified, stored, threads int)
	NotifyError(stage string, err error)
}

// Metrics are the per-run counters.
type Metrics struct {
	ChannelsFound   int
	VideosScanned   int
	Scraped         int
	LanguageSkipped int
	Prefiltered     int
	Duplicates      int
	Qualified       int
	Stored          int
	FallbackSaved   int
	ThreadsCreated  int
	QuotaUsed       int
}

// ErrNoLeadsStored marks a run that scraped comments but persisted nothing.
var ErrNoLeadsStored = errors.New("run scraped comments but stored no leads")

// Runner executes the full ingestion pipeline: scrape, language filter,
// prefilter, keyword detection, dedup, AI qualification, storage, thread
// creation.
type Runner struct {
	cfg       *config.Config
	scraper   Scraper
	language  *LanguageFilter
	prefilter *PreFilter
	keywords  *KeywordDetector
	dedup     *DedupIndex
	qualifier Classifier
	leads     LeadWriter
	fallback  FallbackSaver
	threads   ThreadCreator
	notifier  LeadNotifier

	// gate decides which qualified leads get a thread.
	gate func(*models.Lead) bool
}

func NewRunner(cfg *config.Config, scraper Scraper, dedup *DedupIndex, qualifier Classifier,
	leads LeadWriter, fallback FallbackSaver, threads ThreadCreator, notifier LeadNotifier,
	gate func(*models.Lead) bool) *Runner {
	return &Runner{
		cfg:       cfg,
		scraper:   scraper,
		language:  NewLanguageFilter(),
		prefilter: NewPreFilter(),
		keywords:  NewKeywordDetector(),
		dedup:     dedup,
		qualifier: qualifier,
		leads:     leads,
		fallback:  fallback,
		threads:   threads,
		notifier:  notifier,
		gate:      gate,
	}
}

// Run executes one end-to-end pipeline pass. Phase errors are contained
// where work can continue; a run that scraped comments but stored nothing
// returns ErrNoLeadsStored.
func (r *Runner) Run(ctx context.Context) (*Metrics, error) {
	m := &Metrics{}

	comments, err := r.scrape(ctx, m)
	if err != nil && !errors.Is(err, youtube.ErrQuotaExceeded) {
		r.notifier.NotifyError("scraping", err)
		return m, fmt.Errorf("scraping failed: %w", err)
	}
	m.Scraped = len(comments)
	if len(comments) == 0 {
		log.Println("No comments scraped, nothing to do")
		return m, nil
	}

	comments = r.filterLanguage(comments, m)
	comments, stats := r.prefilter.FilterBatch(comments)
	m.Prefiltered = stats.Total - stats.Passed
	log.Printf("Prefilter: %d/%d passed (%.0f%%)", stats.Passed, stats.Total, stats.PassRate()*100)

	r.keywords.DetectBatch(comments)

	unique, duplicates := r.dedup.Partition(ctx, comments)
	m.Duplicates = len(duplicates)

	r.qualifier.QualifyBatch(ctx, unique)

	leads := make([]*models.Lead, 0, len(unique))
	for _, c := range unique {
		if c.Qualification == nil {
			continue
		}
		leads = append(leads, models.NewLead(c))
	}
	m.Qualified = len(leads)

	created, failed := r.leads.BatchCreate(ctx, leads)
	m.Stored = len(created)

	if len(failed) > 0 {
		if _, err := r.fallback.Save(failed); err != nil {
			log.Printf("Failed to save fallback file: %v", err)
		} else {
			m.FallbackSaved = len(failed)
		}
	}

	for _, lead := range created {
		if lead.Qualification.Tier() == models.TierHigh {
			r.notifier.NotifyHighIntentLead(lead)
		}
		if !r.gate(lead) {
			continue
		}
		if _, err := r.threads.CreateThreadForLead(ctx, lead); err != nil {
			log.Printf("Failed to create thread for lead %s: %v", lead.ID, err)
			continue
		}
		m.ThreadsCreated++
	}

	m.QuotaUsed = r.scraper.QuotaUsed()
	r.notifier.NotifyRunSummary(m.Scraped, m.Qualified, m.Stored, m.ThreadsCreated)
	log.Printf("Run complete: scraped=%d qualified=%d stored=%d threads=%d quota=%d",
		m.Scraped, m.Qualified, m.Stored, m.ThreadsCreated, m.QuotaUsed)

	if m.Scraped > 0 && m.Stored == 0 && m.FallbackSaved == 0 {
		r.notifier.NotifyError("storage", ErrNoLeadsStored)
		return m, ErrNoLeadsStored
	}
	return m, nil
}

// scrape walks search terms, channels, and videos until done or the quota
// budget runs out. Quota exhaustion is a graceful stop, not a failure.
func (r *Runner) scrape(ctx context.Context, m *Metrics) ([]*models.Comment, error) {
	var comments []*models.Comment

	for _, term := range r.cfg.SearchTermsList() {
		channels, err := r.scraper.SearchChannels(ctx, term, int64(r.cfg.MinSubscriberCount), 10)
		if err != nil {
			if errors.Is(err, youtube.ErrQuotaExceeded) {
				log.Printf("Quota budget reached during channel search, stopping scrape")
				return comments, err
			}
			log.Printf("Channel search for %q failed: %v", term, err)
			continue
		}
		m.ChannelsFound += len(channels)

		for _, channel := range channels {
			videos, err := r.scraper.RecentVideos(ctx, channel.ID, r.cfg.DaysBack, r.cfg.MaxVideosPerChannel)
			if err != nil {
				if errors.Is(err, youtube.ErrQuotaExceeded) {
					return comments, err
				}
				log.Printf("Video listing for channel %s failed: %v", channel.Title, err)
				continue
			}
			m.VideosScanned += len(videos)

			for _, video := range videos {
				batch, err := r.scraper.VideoComments(ctx, video, r.cfg.MaxCommentsPerVideo)
				comments = append(comments, batch...)
				if err != nil {
					if errors.Is(err, youtube.ErrQuotaExceeded) {
						return comments, err
					}
					log.Printf("Comment fetch for video %s failed: %v", video.ID, err)
				}
			}
		}
	}

	return comments, nil
}

// filterLanguage drops comments in unsupported languages, annotating each
// with its detected language.
func (r *Runner) filterLanguage(comments []*models.Comment, m *Metrics) []*models.Comment {
	kept := comments[:0]
	for _, c := range comments {
		c.Language = r.language.Detect(c.Text)
		if !r.language.Supported(c.Language) {
			m.LanguageSkipped++
			continue
		}
		kept = append(kept, c)
	}
	log.Printf("Language filter: %d/%d kept", len(kept), len(comments))
	return kept
}
