package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"chirp/app/models"
)

// HTTPDirectory queries a hosted identity provider's user API.
type HTTPDirectory struct {
	baseURL string
	secret  string
	client  *http.Client
}

// NewHTTPDirectory creates a client for the directory at baseURL,
// authenticating with the backend secret. A nil client gets a default with
// a 10 second timeout.
func NewHTTPDirectory(baseURL, secret string, client *http.Client) *HTTPDirectory {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPDirectory{
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  secret,
		client:  client,
	}
}

// apiUser is the provider's wire representation of a user.
type apiUser struct {
	ID        string  `json:"id"`
	Username  *string `json:"username"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	ImageURL  string  `json:"image_url"`
}

func (u apiUser) toUser() *models.User {
	var parts []string
	if u.FirstName != nil && *u.FirstName != "" {
		parts = append(parts, *u.FirstName)
	}
	if u.LastName != nil && *u.LastName != "" {
		parts = append(parts, *u.LastName)
	}
	return &models.User{
		ID:       u.ID,
		Username: u.Username,
		FullName: models.StringPtr(strings.Join(parts, " ")),
		ImageURL: u.ImageURL,
	}
}

// GetUserList calls GET /v1/users with repeated user_id and username
// parameters. Any non-2xx response is an error; nothing is retried.
func (d *HTTPDirectory) GetUserList(ctx context.Context, params UserListParams) (*UserList, error) {
	q := url.Values{}
	for _, id := range params.UserIDs {
		q.Add("user_id", id)
	}
	for _, name := range params.Usernames {
		q.Add("username", name)
	}
	q.Set("limit", strconv.Itoa(effectiveLimit(params.Limit)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"/v1/users?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build directory request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if d.secret != "" {
		req.Header.Set("Authorization", "Bearer "+d.secret)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directory request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("directory returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var users []apiUser
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		return nil, fmt.Errorf("decode directory response: %w", err)
	}

	list := &UserList{Data: make([]*models.User, 0, len(users))}
	for _, u := range users {
		list.Data = append(list.Data, u.toUser())
	}
	return list, nil
}
