package xapi

import (
	"context"
	"fmt"
	"time"
)

const MaxThreadLength = 25

// DefaultInterPostDelay paces consecutive posts so a thread does not burst
// the caller's rate limit. Not a correctness requirement.
const DefaultInterPostDelay = 500 * time.Millisecond

// ItemState tracks one thread item through the posting walk.
type ItemState int

const (
	StatePending ItemState = iota
	StateInFlight
	StateSucceeded
	StateFailed
)

func (s ItemState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateInFlight:
		return "in_flight"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ThreadResult reports every item attempted. Posted holds results in
// order, FailedIndex is the index of the first failure (-1 when the whole
// thread posted) and Err is the triggering error. Items after a failure
// are never attempted and stay pending.
type ThreadResult struct {
	Posted      []PostResult
	States      []ItemState
	FailedIndex int
	Err         error
}

// ThreadOrchestrator posts an ordered list of tweets as a reply chain.
// Each item replies to its predecessor, so the walk is strictly
// sequential: item i goes in flight only after item i-1 succeeded.
type ThreadOrchestrator struct {
	client *Client
	delay  time.Duration
}

func NewThreadOrchestrator(client *Client, delay time.Duration) *ThreadOrchestrator {
	if delay <= 0 {
		delay = DefaultInterPostDelay
	}
	return &ThreadOrchestrator{client: client, delay: delay}
}

// PostThread drives the items through the client, stopping at the first
// failure. The error return covers only upfront validation, before any
// network call; per-item failures are reported inside ThreadResult.
func (o *ThreadOrchestrator) PostThread(ctx context.Context, items []ThreadItem) (*ThreadResult, error) {
	if len(items) == 0 {
		return nil, &ValidationError{Reason: "thread must contain at least one tweet"}
	}
	if len(items) > MaxThreadLength {
		return nil, &ValidationError{Reason: fmt.Sprintf("thread exceeds maximum of %d tweets", MaxThreadLength)}
	}

	result := &ThreadResult{
		States:      make([]ItemState, len(items)),
		FailedIndex: -1,
	}

	replyTo := ""
	for i, item := range items {
		if i > 0 {
			select {
			case <-ctx.Done():
				result.States[i] = StateFailed
				result.FailedIndex = i
				result.Err = fmt.Errorf("tweet %d of %d failed: %w", i+1, len(items), ctx.Err())
				return result, nil
			case <-time.After(o.delay):
			}
		}

		result.States[i] = StateInFlight
		post, err := o.postItem(ctx, item, replyTo)
		if err != nil {
			result.States[i] = StateFailed
			result.FailedIndex = i
			result.Err = fmt.Errorf("tweet %d of %d failed: %w", i+1, len(items), err)
			return result, nil
		}

		result.States[i] = StateSucceeded
		result.Posted = append(result.Posted, *post)
		replyTo = post.TweetID
	}

	return result, nil
}

func (o *ThreadOrchestrator) postItem(ctx context.Context, item ThreadItem, replyTo string) (*PostResult, error) {
	var mediaID string
	if item.ImagePath != "" {
		asset, err := LoadMediaAsset(item.ImagePath)
		if err != nil {
			return nil, err
		}
		id, err := o.client.UploadMedia(ctx, asset)
		if err != nil {
			return nil, err
		}
		mediaID = id
	}
	return o.client.PostTweet(ctx, item.Text, mediaID, replyTo)
}
