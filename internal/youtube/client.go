package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/sadhaka-labs/leadstream/internal/models"
)

// Data API v3 unit costs per endpoint.
const (
	costSearch         = 100
	costChannels       = 1
	costCommentThreads = 1
	costInsertComment  = 50
)

// ErrQuotaExceeded signals that the local quota budget is spent. Callers
// stop fetching and work with what they have.
var ErrQuotaExceeded = errors.New("youtube quota budget exhausted")

type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string

	mu         sync.Mutex
	quotaUsed  int
	quotaLimit int
}

func NewClient(apiKey string, quotaLimit int) *Client {
	if apiKey == "" {
		log.Fatal("YOUTUBE_API_KEY is required")
	}

	log.Printf("youtube client initialized (quota budget %d units)", quotaLimit)

	return &Client{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    "https://www.googleapis.com/youtube/v3",
		quotaLimit: quotaLimit,
	}
}

// QuotaUsed returns the units consumed so far.
func (c *Client) QuotaUsed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quotaUsed
}

// spend reserves quota units for one call, or fails when the budget would
// be exceeded.
func (c *Client) spend(units int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.quotaUsed+units > c.quotaLimit {
		return fmt.Errorf("%w: used %d of %d, need %d more", ErrQuotaExceeded, c.quotaUsed, c.quotaLimit, units)
	}
	c.quotaUsed += units
	return nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("YouTube API error (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}

// Channel is a YouTube channel with its subscriber count resolved.
type Channel struct {
	ID          string
	Title       string
	Subscribers int64
}

// Video is one upload on a channel.
type Video struct {
	ID          string
	Title       string
	PublishedAt time.Time
}

// SearchChannels finds channels matching the term with at least minSubscribers
// subscribers. One search plus one channels.list call.
func (c *Client) SearchChannels(ctx context.Context, term string, minSubscribers int64, max int) ([]Channel, error) {
	if err := c.spend(costSearch); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("type", "channel")
	params.Set("q", term)
	params.Set("maxResults", fmt.Sprintf("%d", max))

	var search struct {
		Items []struct {
			Snippet struct {
				ChannelID string `json:"channelId"`
				Title     string `json:"title"`
			} `json:"snippet"`
		} `json:"items"`
	}
	if err := c.get(ctx, "/search", params, &search); err != nil {
		return nil, err
	}
	if len(search.Items) == 0 {
		return nil, nil
	}

	if err := c.spend(costChannels); err != nil {
		return nil, err
	}

	ids := ""
	for i, item := range search.Items {
		if i > 0 {
			ids += ","
		}
		ids += item.Snippet.ChannelID
	}

	params = url.Values{}
	params.Set("part", "snippet,statistics")
	params.Set("id", ids)

	var channels struct {
		Items []struct {
			ID      string `json:"id"`
			Snippet struct {
				Title string `json:"title"`
			} `json:"snippet"`
			Statistics struct {
				SubscriberCount string `json:"subscriberCount"`
			} `json:"statistics"`
		} `json:"items"`
	}
	if err := c.get(ctx, "/channels", params, &channels); err != nil {
		return nil, err
	}

	var result []Channel
	for _, item := range channels.Items {
		var subs int64
		fmt.Sscanf(item.Statistics.SubscriberCount, "%d", &subs)
		if subs < minSubscribers {
			continue
		}
		result = append(result, Channel{ID: item.ID, Title: item.Snippet.Title, Subscribers: subs})
	}

	log.Printf("search %q: %d channels above %d subscribers", term, len(result), minSubscribers)
	return result, nil
}

// RecentVideos lists a channel's uploads from the last daysBack days.
func (c *Client) RecentVideos(ctx context.Context, channelID string, daysBack, max int) ([]Video, error) {
	if err := c.spend(costSearch); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("type", "video")
	params.Set("channelId", channelID)
	params.Set("order", "date")
	params.Set("publishedAfter", time.Now().AddDate(0, 0, -daysBack).Format(time.RFC3339))
	params.Set("maxResults", fmt.Sprintf("%d", max))

	var search struct {
		Items []struct {
			ID struct {
				VideoID string `json:"videoId"`
			} `json:"id"`
			Snippet struct {
				Title       string    `json:"title"`
				PublishedAt time.Time `json:"publishedAt"`
			} `json:"snippet"`
		} `json:"items"`
	}
	if err := c.get(ctx, "/search", params, &search); err != nil {
		return nil, err
	}

	var videos []Video
	for _, item := range search.Items {
		videos = append(videos, Video{
			ID:          item.ID.VideoID,
			Title:       item.Snippet.Title,
			PublishedAt: item.Snippet.PublishedAt,
		})
	}
	return videos, nil
}

// VideoComments fetches top-level comments on a video, newest first, paging
// until max comments or the quota budget runs out.
func (c *Client) VideoComments(ctx context.Context, video Video, max int) ([]*models.Comment, error) {
	var comments []*models.Comment
	pageToken := ""

	for len(comments) < max {
		if err := c.spend(costCommentThreads); err != nil {
			if errors.Is(err, ErrQuotaExceeded) {
				log.Printf("Quota exhausted mid-video, returning %d comments", len(comments))
				return comments, err
			}
			return comments, err
		}

		params := url.Values{}
		params.Set("part", "snippet")
		params.Set("videoId", video.ID)
		params.Set("order", "time")
		params.Set("textFormat", "plainText")
		params.Set("maxResults", "100")
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		var page struct {
			NextPageToken string `json:"nextPageToken"`
			Items         []struct {
				ID      string `json:"id"`
				Snippet struct {
					TopLevelComment struct {
						Snippet struct {
							AuthorDisplayName string    `json:"authorDisplayName"`
							TextDisplay       string    `json:"textDisplay"`
							LikeCount         int       `json:"likeCount"`
							PublishedAt       time.Time `json:"publishedAt"`
						} `json:"snippet"`
					} `json:"topLevelComment"`
				} `json:"snippet"`
			} `json:"items"`
		}
		if err := c.get(ctx, "/commentThreads", params, &page); err != nil {
			return comments, err
		}

		videoURL := "https://www.youtube.com/watch?v=" + video.ID
		for _, item := range page.Items {
			s := item.Snippet.TopLevelComment.Snippet
			comments = append(comments, &models.Comment{
				Author:      s.AuthorDisplayName,
				Platform:    "youtube",
				Text:        s.TextDisplay,
				VideoTitle:  video.Title,
				VideoURL:    videoURL,
				CommentURL:  videoURL + "&lc=" + item.ID,
				PublishedAt: s.PublishedAt,
				LikeCount:   s.LikeCount,
			})
			if len(comments) >= max {
				break
			}
		}

		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	return comments, nil
}

// PostReply posts a reply under the given top-level comment.
func (c *Client) PostReply(ctx context.Context, parentCommentID, text string) error {
	if err := c.spend(costInsertComment); err != nil {
		return err
	}

	payload := map[string]any{
		"snippet": map[string]any{
			"parentId":     parentCommentID,
			"textOriginal": text,
		},
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal reply: %w", err)
	}

	endpoint := c.baseURL + "/comments?part=snippet&key=" + url.QueryEscape(c.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("YouTube API error (status %d): %s", resp.StatusCode, string(body))
	}

	return nil
}
