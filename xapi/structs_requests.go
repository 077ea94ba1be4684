package xapi

// ThreadItem is one tweet of a thread request.
type ThreadItem struct {
	Text      string `json:"text"`
	ImagePath string `json:"image,omitempty"`
}

type tweetBody struct {
	Text  string      `json:"text"`
	Media *tweetMedia `json:"media,omitempty"`
	Reply *tweetReply `json:"reply,omitempty"`
}

type tweetMedia struct {
	MediaIDs []string `json:"media_ids"`
}

type tweetReply struct {
	InReplyToTweetID string `json:"in_reply_to_tweet_id"`
}
