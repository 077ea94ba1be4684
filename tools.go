package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/grutapig/postx/mcp"
	"github.com/grutapig/postx/xapi"
)

type PostTweetParams struct {
	Text  string `json:"text"`
	Image string `json:"image,omitempty"`
}

type ThreadTweetParams struct {
	Text  string `json:"text"`
	Image string `json:"image,omitempty"`
}

type PostThreadParams struct {
	Tweets []ThreadTweetParams `json:"tweets"`
}

type tweetClient interface {
	GetMe(ctx context.Context) (*xapi.Profile, error)
	UploadMedia(ctx context.Context, asset *xapi.MediaAsset) (string, error)
	PostTweet(ctx context.Context, text, mediaID, replyToID string) (*xapi.PostResult, error)
}

type threadPoster interface {
	PostThread(ctx context.Context, items []xapi.ThreadItem) (*xapi.ThreadResult, error)
}

// PostTools implements the three MCP tools on top of the API client and
// the thread orchestrator.
type PostTools struct {
	client       tweetClient
	orchestrator threadPoster
	ledger       *LedgerService
	notifier     *TelegramNotifier
}

func NewPostTools(client tweetClient, orchestrator threadPoster, ledger *LedgerService, notifier *TelegramNotifier) *PostTools {
	return &PostTools{
		client:       client,
		orchestrator: orchestrator,
		ledger:       ledger,
		notifier:     notifier,
	}
}

func (t *PostTools) Tools() []mcp.Tool {
	imageProperty := map[string]any{
		"type":        "string",
		"description": "Optional local file path to an image to attach (jpeg, png, gif, webp; max 5MB)",
	}
	textProperty := map[string]any{
		"type":        "string",
		"description": "The tweet text (max 280 characters)",
	}

	return []mcp.Tool{
		{
			Name:        TOOL_POST_TWEET,
			Description: "Post a single tweet to X (Twitter), optionally with an image attachment",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"text":  textProperty,
					"image": imageProperty,
				},
				"required": []string{"text"},
			},
			Handler: t.handlePostTweet,
		},
		{
			Name:        TOOL_POST_THREAD,
			Description: "Post a thread of tweets to X (Twitter). Each tweet can optionally include an image. Max 25 tweets per thread.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"tweets": map[string]any{
						"type":        "array",
						"description": "Array of tweets to post as a thread (max 25). Each tweet has 'text' and optional 'image'.",
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"text":  textProperty,
								"image": imageProperty,
							},
							"required": []string{"text"},
						},
					},
				},
				"required": []string{"tweets"},
			},
			Handler: t.handlePostThread,
		},
		{
			Name:        TOOL_GET_ME,
			Description: "Get the authenticated X (Twitter) user's profile (id, name, username). Useful for verifying credentials.",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
			ReadOnly: true,
			Handler:  t.handleGetMe,
		},
	}
}

func (t *PostTools) handlePostTweet(ctx context.Context, arguments json.RawMessage) (string, error) {
	params := PostTweetParams{}
	if err := json.Unmarshal(arguments, &params); err != nil {
		return "", &xapi.ValidationError{Reason: fmt.Sprintf("invalid arguments: %v", err)}
	}

	// Warm the identity cache so the result URL carries the handle.
	if _, err := t.client.GetMe(ctx); err != nil {
		return "", err
	}

	requestID := uuid.NewString()

	var mediaID string
	if params.Image != "" {
		asset, err := xapi.LoadMediaAsset(params.Image)
		if err != nil {
			return "", err
		}
		id, err := t.client.UploadMedia(ctx, asset)
		if err != nil {
			t.record(requestID, TOOL_POST_TWEET, 0, 1, params.Text, nil, err)
			return "", err
		}
		mediaID = id
	}

	post, err := t.client.PostTweet(ctx, params.Text, mediaID, "")
	t.record(requestID, TOOL_POST_TWEET, 0, 1, params.Text, post, err)
	if err != nil {
		return "", err
	}

	t.notifier.Notify(fmt.Sprintf("Tweet posted: %s", post.URL))
	return fmt.Sprintf("Tweet posted!\nID: %s\nURL: %s", post.TweetID, post.URL), nil
}

func (t *PostTools) handlePostThread(ctx context.Context, arguments json.RawMessage) (string, error) {
	params := PostThreadParams{}
	if err := json.Unmarshal(arguments, &params); err != nil {
		return "", &xapi.ValidationError{Reason: fmt.Sprintf("invalid arguments: %v", err)}
	}

	if _, err := t.client.GetMe(ctx); err != nil {
		return "", err
	}

	items := make([]xapi.ThreadItem, len(params.Tweets))
	for i, tweet := range params.Tweets {
		items[i] = xapi.ThreadItem{Text: tweet.Text, ImagePath: tweet.Image}
	}

	result, err := t.orchestrator.PostThread(ctx, items)
	if err != nil {
		// Rejected upfront, nothing was attempted.
		return "", err
	}

	requestID := uuid.NewString()
	for i := range result.Posted {
		t.record(requestID, TOOL_POST_THREAD, i, len(items), items[i].Text, &result.Posted[i], nil)
	}
	if result.Err != nil {
		t.record(requestID, TOOL_POST_THREAD, result.FailedIndex, len(items), items[result.FailedIndex].Text, nil, result.Err)
	}

	var output strings.Builder
	if len(result.Posted) > 0 {
		fmt.Fprintf(&output, "Posted %d/%d tweets:\n", len(result.Posted), len(items))
		for i, post := range result.Posted {
			fmt.Fprintf(&output, "  %d. ID: %s - %s\n", i+1, post.TweetID, post.URL)
		}
	}

	if result.Err != nil {
		t.notifier.Notify(fmt.Sprintf("Thread failed after %d/%d tweets: %v", len(result.Posted), len(items), result.Err))
		// Partial success still reports as an error so the caller knows
		// the thread is incomplete; the posted prefix stays in the output.
		return output.String(), result.Err
	}

	t.notifier.Notify(fmt.Sprintf("Thread posted: %d tweets, starting at %s", len(result.Posted), result.Posted[0].URL))
	return output.String(), nil
}

func (t *PostTools) handleGetMe(ctx context.Context, arguments json.RawMessage) (string, error) {
	profile, err := t.client.GetMe(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Authenticated as:\n  Name: %s\n  Username: @%s\n  ID: %s", profile.Name, profile.Username, profile.ID), nil
}

func (t *PostTools) record(requestUUID, toolName string, threadIndex, threadSize int, text string, post *xapi.PostResult, attemptErr error) {
	if t.ledger == nil {
		return
	}
	if err := t.ledger.RecordAttempt(requestUUID, toolName, threadIndex, threadSize, text, post, attemptErr); err != nil {
		log.Printf("Ledger write error: %v", err)
	}
}
