// Package feed delivers announcements to the social feed.
package feed

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/dghubble/oauth1"
)

// Result describes a delivered post.
type Result struct {
	ID string
}

// TwitterClient posts statuses signed with OAuth1 user credentials.
type TwitterClient struct {
	BaseURL string
	Client  *http.Client
}

// NewTwitterClient creates a client signing requests with the given credentials.
// The credentials are passed through to the signer untouched.
func NewTwitterClient(consumerKey, consumerSecret, accessToken, accessSecret string) *TwitterClient {
	oauthConfig := oauth1.NewConfig(consumerKey, consumerSecret)
	token := oauth1.NewToken(accessToken, accessSecret)
	client := oauthConfig.Client(oauth1.NoContext, token)
	client.Timeout = 10 * time.Second

	return &TwitterClient{
		BaseURL: "https://api.twitter.com/1.1",
		Client:  client,
	}
}

// Publish posts the text to the feed and returns the delivered status id.
func (client *TwitterClient) Publish(text string) (Result, error) {
	response, err := client.Client.PostForm(
		client.BaseURL+"/statuses/update.json",
		url.Values{"status": {text}},
	)

	if err != nil {
		return Result{}, err
	}

	defer response.Body.Close()

	content, err := io.ReadAll(response.Body)

	if err != nil {
		return Result{}, err
	}

	if response.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("twitter api error: %d %s", response.StatusCode, string(content))
	}

	var status struct {
		IDStr string `json:"id_str"`
	}

	if err := json.Unmarshal(content, &status); err != nil {
		return Result{}, fmt.Errorf("twitter api returned unexpected response: %s", string(content))
	}

	if status.IDStr == "" {
		return Result{}, errors.New("twitter api returned no status id")
	}

	return Result{ID: status.IDStr}, nil
}
