package xapi

// PostResult is the outcome of one successfully created tweet.
type PostResult struct {
	TweetID string `json:"tweet_id"`
	URL     string `json:"url"`
}

// Profile is the authenticated account identity.
type Profile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

type meResponse struct {
	Data Profile `json:"data"`
}

// MediaAsset is a validated local image ready for upload.
type MediaAsset struct {
	Bytes       []byte
	ContentType string
	FileName    string
}
