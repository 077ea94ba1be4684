package xapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/buger/jsonparser"
)

const TweetsURL = "https://api.x.com/2/tweets"
const MediaUploadURL = "https://upload.twitter.com/1.1/media/upload.json"
const MeURL = "https://api.x.com/2/users/me"

const MaxTweetLength = 280

// Client performs the authenticated operations against the X API: create
// tweet, upload media, read the caller's profile. One network round trip
// per operation, no retries.
type Client struct {
	signer     *Signer
	httpClient *http.Client

	tweetsURL      string
	mediaUploadURL string
	meURL          string

	profileMutex sync.Mutex
	profile      *Profile
}

func NewClient(creds Credentials, proxyDSN string) (*Client, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	transport := &http.Transport{}
	if proxyDSN != "" {
		proxyURL, err := url.Parse(proxyDSN)
		if err != nil {
			return nil, fmt.Errorf("x client proxy dsn error: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	return &Client{
		signer: NewSigner(creds),
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		tweetsURL:      TweetsURL,
		mediaUploadURL: MediaUploadURL,
		meURL:          MeURL,
	}, nil
}

// SetEndpoints overrides the API endpoints. Used by tests to point the
// client at a local server.
func (c *Client) SetEndpoints(tweetsURL, mediaUploadURL, meURL string) {
	if tweetsURL != "" {
		c.tweetsURL = tweetsURL
	}
	if mediaUploadURL != "" {
		c.mediaUploadURL = mediaUploadURL
	}
	if meURL != "" {
		c.meURL = meURL
	}
}

func ValidateTweetText(text string) error {
	if strings.TrimSpace(text) == "" {
		return &ValidationError{Reason: "tweet text cannot be empty"}
	}
	if n := utf8.RuneCountInString(text); n > MaxTweetLength {
		return &ValidationError{Reason: fmt.Sprintf("tweet text is %d characters (max %d)", n, MaxTweetLength)}
	}
	return nil
}

// PostTweet creates one tweet. mediaID and replyToID are optional; media
// upload is a separate call the caller composes before this one.
func (c *Client) PostTweet(ctx context.Context, text, mediaID, replyToID string) (*PostResult, error) {
	if err := ValidateTweetText(text); err != nil {
		return nil, err
	}

	body := tweetBody{Text: text}
	if mediaID != "" {
		body.Media = &tweetMedia{MediaIDs: []string{mediaID}}
	}
	if replyToID != "" {
		body.Reply = &tweetReply{InReplyToTweetID: replyToID}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("post tweet: marshal body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.tweetsURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("post tweet: create request: %w", err)
	}
	// JSON bodies are not part of the signature base string, only the
	// oauth_* parameters are signed.
	req.Header.Set("Authorization", c.signer.AuthorizationHeader("POST", c.tweetsURL, nil))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	if err := classifyResponse("post tweet", resp); err != nil {
		return nil, err
	}

	id, err := jsonparser.GetString(resp.RawBody, "data", "id")
	if err != nil {
		return nil, fmt.Errorf("post tweet: cannot parse response: %w", err)
	}
	return &PostResult{TweetID: id, URL: c.tweetURL(id)}, nil
}

// UploadMedia posts the asset to the legacy upload endpoint and returns
// the media id for attaching to a tweet.
func (c *Client) UploadMedia(ctx context.Context, asset *MediaAsset) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="media"; filename="%s"`, asset.FileName))
	header.Set("Content-Type", asset.ContentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("media upload: build form: %w", err)
	}
	if _, err := part.Write(asset.Bytes); err != nil {
		return "", fmt.Errorf("media upload: build form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("media upload: build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.mediaUploadURL, &buf)
	if err != nil {
		return "", fmt.Errorf("media upload: create request: %w", err)
	}
	// Multipart file bodies are excluded from the signature base string.
	req.Header.Set("Authorization", c.signer.AuthorizationHeader("POST", c.mediaUploadURL, nil))
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.send(req)
	if err != nil {
		return "", err
	}
	if err := classifyResponse("media upload", resp); err != nil {
		return "", err
	}

	mediaID, err := jsonparser.GetString(resp.RawBody, "media_id_string")
	if err != nil {
		return "", fmt.Errorf("media upload: cannot parse response: %w", err)
	}
	return mediaID, nil
}

// GetMe fetches the authenticated user's profile. The result is cached in
// memory for the rest of the run, it never changes mid-process.
func (c *Client) GetMe(ctx context.Context) (*Profile, error) {
	c.profileMutex.Lock()
	if c.profile != nil {
		profile := *c.profile
		c.profileMutex.Unlock()
		return &profile, nil
	}
	c.profileMutex.Unlock()

	req, err := http.NewRequestWithContext(ctx, "GET", c.meURL, nil)
	if err != nil {
		return nil, fmt.Errorf("get me: create request: %w", err)
	}
	req.Header.Set("Authorization", c.signer.AuthorizationHeader("GET", c.meURL, nil))

	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	if err := classifyResponse("get me", resp); err != nil {
		return nil, err
	}

	me := meResponse{}
	if err := json.Unmarshal(resp.RawBody, &me); err != nil {
		return nil, fmt.Errorf("get me: cannot parse response: %w", err)
	}

	c.profileMutex.Lock()
	c.profile = &me.Data
	c.profileMutex.Unlock()

	profile := me.Data
	return &profile, nil
}

func (c *Client) tweetURL(id string) string {
	c.profileMutex.Lock()
	defer c.profileMutex.Unlock()
	if c.profile != nil && c.profile.Username != "" {
		return fmt.Sprintf("https://x.com/%s/status/%s", c.profile.Username, id)
	}
	return fmt.Sprintf("https://x.com/i/status/%s", id)
}

type apiResponse struct {
	StatusCode int
	Headers    http.Header
	RawBody    []byte
}

func (c *Client) send(req *http.Request) (*apiResponse, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error send request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error read response: %w", err)
	}

	return &apiResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		RawBody:    bodyBytes,
	}, nil
}

func classifyResponse(operation string, resp *apiResponse) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		return &AuthError{Operation: operation}
	case resp.StatusCode == http.StatusTooManyRequests:
		return &RateLimitError{Operation: operation, ResetAt: resp.Headers.Get("x-rate-limit-reset")}
	default:
		return &RemoteError{Operation: operation, Status: resp.StatusCode, Body: string(resp.RawBody)}
	}
}
