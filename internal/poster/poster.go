package poster

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/sadhaka-labs/leadstream/internal/models"
)

// Safety bounds on automated posting. The daily cap and cooldown keep the
// account under platform spam heuristics.
const (
	maxPostsPerDay = 20
	postCooldown   = 60 * time.Second
	maxReplyLength = 10000
)

// CommentPoster posts a reply under a platform comment.
type CommentPoster interface {
	PostReply(ctx context.Context, parentCommentID, text string) error
}

// ReplyStore is the reply persistence surface the poster needs.
type ReplyStore interface {
	GetByStatus(ctx context.Context, status models.ApprovalStatus) ([]*models.PendingReply, error)
	Update(ctx context.Context, reply *models.PendingReply) error
	MarkPosted(ctx context.Context, id string, postedAt time.Time) error
}

// ThreadStore resolves the thread an approved reply belongs to.
type ThreadStore interface {
	GetByID(ctx context.Context, id string) (*models.ConversationThread, error)
}

// ThreadUpdater advances thread state after a successful post.
type ThreadUpdater interface {
	UpdateWithReply(ctx context.Context, thread *models.ConversationThread, ourReply, theirMessage string) error
	MarkResourceShared(ctx context.Context, thread *models.ConversationThread, resourceName string) error
}

// ResourceCounter records that a resource went out.
type ResourceCounter interface {
	IncrementTimesShared(ctx context.Context, name string) error
}

// Poster posts approved replies within the safety bounds.
type Poster struct {
	platform  CommentPoster
	replies   ReplyStore
	threads   ThreadStore
	tracker   ThreadUpdater
	resources ResourceCounter

	mu        sync.Mutex
	day       string
	postedDay int
	lastPost  time.Time
	now       func() time.Time
}

func NewPoster(platform CommentPoster, replies ReplyStore, threads ThreadStore, tracker ThreadUpdater, resources ResourceCounter) *Poster {
	return &Poster{
		platform:  platform,
		replies:   replies,
		threads:   threads,
		tracker:   tracker,
		resources: resources,
		now:       time.Now,
	}
}

// CanPost reports whether posting is currently allowed and, when it is not,
// why.
func (p *Poster) CanPost() (bool, string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.canPostLocked()
}

func (p *Poster) canPostLocked() (bool, string) {
	now := p.now()
	day := now.Format("2006-01-02")
	if day != p.day {
		p.day = day
		p.postedDay = 0
	}

	if p.postedDay >= maxPostsPerDay {
		return false, fmt.Sprintf("daily limit of %d posts reached", maxPostsPerDay)
	}
	if !p.lastPost.IsZero() {
		if wait := postCooldown - now.Sub(p.lastPost); wait > 0 {
			return false, fmt.Sprintf("cooldown active, %s remaining", wait.Round(time.Second))
		}
	}
	return true, ""
}

func (p *Poster) recordPost() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.postedDay++
	p.lastPost = p.now()
}

// PostApproved posts all approved replies, oldest first, stopping when a
// safety bound is hit. Returns the number posted.
func (p *Poster) PostApproved(ctx context.Context) (int, error) {
	approved, err := p.replies.GetByStatus(ctx, models.ReplyApproved)
	if err != nil {
		return 0, fmt.Errorf("failed to load approved replies: %w", err)
	}

	posted := 0
	for _, reply := range approved {
		ok, reason := p.CanPost()
		if !ok {
			log.Printf("Stopping post run: %s", reason)
			break
		}
		if err := p.PostOne(ctx, reply); err != nil {
			log.Printf("Failed to post reply %s: %v", reply.ID, err)
			continue
		}
		posted++
	}

	log.Printf("Posted %d/%d approved replies", posted, len(approved))
	return posted, nil
}

// PostOne posts a single approved reply and advances its thread. On platform
// failure the reply stays approved with a note, so the next run retries it.
func (p *Poster) PostOne(ctx context.Context, reply *models.PendingReply) error {
	if reply.Status != models.ReplyApproved {
		return fmt.Errorf("reply %s is %s, not approved", reply.ID, reply.Status)
	}

	thread, err := p.threads.GetByID(ctx, reply.ThreadID)
	if err != nil {
		return fmt.Errorf("failed to load thread for reply %s: %w", reply.ID, err)
	}
	if thread.Status.Terminal() {
		return fmt.Errorf("thread %s is %s, not posting", thread.ID, thread.Status)
	}

	parentID := CommentIDFromURL(thread.CommentURL)
	if parentID == "" {
		return fmt.Errorf("no comment ID in URL %q", thread.CommentURL)
	}

	text := Truncate(reply.DraftText)

	if err := p.platform.PostReply(ctx, parentID, text); err != nil {
		reply.Notes = fmt.Sprintf("post failed: %v", err)
		if updateErr := p.replies.Update(ctx, reply); updateErr != nil {
			log.Printf("Failed to record post failure on reply %s: %v", reply.ID, updateErr)
		}
		return fmt.Errorf("platform post failed: %w", err)
	}

	p.recordPost()

	if err := p.replies.MarkPosted(ctx, reply.ID, p.now()); err != nil {
		// The reply went out; the worst case here is a retry next run.
		log.Printf("Posted reply %s but failed to mark it: %v", reply.ID, err)
	}

	if err := p.tracker.UpdateWithReply(ctx, thread, text, reply.TheirLastMessage); err != nil {
		log.Printf("Posted reply %s but failed to advance thread: %v", reply.ID, err)
	}

	if reply.SuggestedResource != "" {
		if err := p.tracker.MarkResourceShared(ctx, thread, reply.SuggestedResource); err != nil {
			log.Printf("Failed to record shared resource on thread %s: %v", thread.ID, err)
		}
		if err := p.resources.IncrementTimesShared(ctx, reply.SuggestedResource); err != nil {
			log.Printf("Failed to bump share count for %q: %v", reply.SuggestedResource, err)
		}
	}

	log.Printf("Posted reply %s to thread %s (stage now %d)", reply.ID, thread.ID, thread.Stage)
	return nil
}

// Truncate enforces the platform length limit, marking the cut. The cut
// backs up to a rune boundary so the result is always valid UTF-8.
func Truncate(text string) string {
	if len(text) <= maxReplyLength {
		return text
	}
	cut := maxReplyLength - 3
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}

// CommentIDFromURL extracts the comment ID from a YouTube watch URL's lc
// parameter.
func CommentIDFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if lc := u.Query().Get("lc"); lc != "" {
		return lc
	}
	// Bare comment IDs are accepted as-is.
	if !strings.Contains(raw, "/") && raw != "" {
		return raw
	}
	return ""
}
