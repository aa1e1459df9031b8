package gmail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/omriShneor/meeting_assistant/internal/database"
	"github.com/omriShneor/meeting_assistant/internal/proposal"
)

// fakeGmail serves the three endpoints the worker uses.
type fakeGmail struct {
	mu       sync.Mutex
	messages map[string]string
	order    []string
	modified []string
	query    string
}

func (f *fakeGmail) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	path := strings.TrimPrefix(r.URL.Path, "/gmail/v1/users/me/messages")
	switch {
	case path == "" && r.Method == http.MethodGet:
		f.query = r.URL.Query().Get("q")
		list := &gmail.ListMessagesResponse{}
		for _, id := range f.order {
			list.Messages = append(list.Messages, &gmail.Message{Id: id})
		}
		_ = json.NewEncoder(w).Encode(list)

	case strings.HasSuffix(path, "/modify"):
		id := strings.TrimSuffix(strings.TrimPrefix(path, "/"), "/modify")
		var req gmail.ModifyMessageRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.RemoveLabelIds) == 1 && req.RemoveLabelIds[0] == "UNREAD" {
			f.modified = append(f.modified, id)
		}
		_ = json.NewEncoder(w).Encode(&gmail.Message{Id: id})

	default:
		id := strings.TrimPrefix(path, "/")
		raw, ok := f.messages[id]
		if !ok || r.URL.Query().Get("format") != "raw" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error": {"code": 404, "message": "not found"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(&gmail.Message{
			Id:  id,
			Raw: base64.URLEncoding.EncodeToString([]byte(raw)),
		})
	}
}

type fakeSubmitter struct {
	mu     sync.Mutex
	raw    []string
	nextID int64
}

func (f *fakeSubmitter) Submit(ctx context.Context, raw string) (*proposal.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.raw = append(f.raw, raw)
	if !strings.Contains(raw, "PM") {
		return nil, proposal.ErrExtractionFailed
	}
	f.nextID++
	return &proposal.Submission{Proposal: &proposal.Proposal{ID: f.nextID}, Notified: true}, nil
}

func newTestClient(t *testing.T, fake *fakeGmail) *Client {
	t.Helper()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	service, err := gmail.NewService(context.Background(),
		option.WithHTTPClient(server.Client()),
		option.WithEndpoint(server.URL+"/"),
	)
	require.NoError(t, err)
	return NewClientWithService(service)
}

func TestWorker_Poll(t *testing.T) {
	fake := &fakeGmail{
		messages: map[string]string{
			"m1": "Subject: Sync\r\n\r\nMeet at 2:00 PM with a@example.com\r\n",
			"m2": "Subject: Lunch\r\n\r\nno time given\r\n",
		},
		order: []string{"m1", "m2", "missing"},
	}
	client := newTestClient(t, fake)
	db := database.NewTestDB(t)
	submitter := &fakeSubmitter{}

	w := NewWorker(func(ctx context.Context) (*Client, error) { return client, nil },
		db, submitter, WorkerConfig{Query: "is:unread subject:meeting"}, nil)

	assert.Equal(t, 1, w.Poll(context.Background()))
	assert.Equal(t, "is:unread subject:meeting", fake.query)
	assert.Len(t, submitter.raw, 2)
	assert.Contains(t, submitter.raw[0], "Meet at 2:00 PM")
	assert.ElementsMatch(t, []string{"m1", "m2"}, fake.modified)

	for _, id := range []string{"m1", "m2"} {
		processed, err := db.IsEmailProcessed(id)
		require.NoError(t, err)
		assert.True(t, processed, id)
	}
	processed, err := db.IsEmailProcessed("missing")
	require.NoError(t, err)
	assert.False(t, processed, "fetch failures are retried on the next poll")

	// Second poll skips everything already processed.
	assert.Equal(t, 0, w.Poll(context.Background()))
	assert.Len(t, submitter.raw, 2)
}

func TestWorker_PollWithoutClient(t *testing.T) {
	submitter := &fakeSubmitter{}
	db := database.NewTestDB(t)

	w := NewWorker(func(ctx context.Context) (*Client, error) { return nil, nil }, db, submitter, WorkerConfig{}, nil)
	assert.Equal(t, 0, w.Poll(context.Background()))

	w = NewWorker(func(ctx context.Context) (*Client, error) { return nil, errors.New("no token") }, db, submitter, WorkerConfig{}, nil)
	assert.Equal(t, 0, w.Poll(context.Background()))
	assert.Empty(t, submitter.raw)
}

func TestWorker_StartStop(t *testing.T) {
	calls := make(chan struct{}, 1)
	w := NewWorker(func(ctx context.Context) (*Client, error) {
		select {
		case calls <- struct{}{}:
		default:
		}
		return nil, nil
	}, database.NewTestDB(t), &fakeSubmitter{}, WorkerConfig{}, nil)

	w.Start(context.Background())
	<-calls
	w.Stop()
}

func TestDecodeBase64(t *testing.T) {
	for _, enc := range []*base64.Encoding{base64.URLEncoding, base64.RawURLEncoding} {
		got, err := decodeBase64(enc.EncodeToString([]byte("Subject: hi?>\r\n\r\nbody")))
		require.NoError(t, err)
		assert.Equal(t, "Subject: hi?>\r\n\r\nbody", got)
	}

	_, err := decodeBase64("!!!")
	assert.Error(t, err)
}
