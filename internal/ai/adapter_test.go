package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"werewolf-toolbox/internal/models"
	"werewolf-toolbox/internal/player"
)

// fakeEndpoint serves a fixed chat-completion content and records the last request.
func fakeEndpoint(t *testing.T, status int, content string) (*httptest.Server, *chatRequest) {
	t.Helper()
	var last chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		_ = json.NewDecoder(r.Body).Decode(&last)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]string{"role": "assistant", "content": content}}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &last
}

func setupTestAdapter() *Adapter {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewAdapter(NewClient(5*time.Second), log)
}

func testRequest(baseURL string, valid []int, isSpeech bool) player.Request {
	players := []*models.Player{
		{ID: 1, Name: "Alice", Kind: models.KindAI, Role: models.RoleWerewolf, IsAlive: true,
			AI: &models.AIConfig{BaseURL: baseURL, APIKey: "test-key", Model: "test-model"}},
		{ID: 2, Name: "Bob", Kind: models.KindAI, Role: models.RoleWerewolf, IsAlive: true},
		{ID: 3, Name: "Charlie", Kind: models.KindAI, Role: models.RoleSeer, IsAlive: true},
	}
	state := models.NewGameState(players)
	state.SubPhase = models.SubWerewolfDiscuss
	return player.Request{Player: players[0], State: state, Prompt: "Discuss.", ValidTargets: valid, IsSpeech: isSpeech}
}

func TestDecideWithFencedJSON(t *testing.T) {
	// GIVEN an endpoint that wraps its JSON in prose and a code fence
	srv, last := fakeEndpoint(t, http.StatusOK, "Sure! ```json{\"thought\":\"x\",\"speech\":\"y\",\"action\":3}```")
	adapter := setupTestAdapter()

	// WHEN a speech request with 3 in the valid targets is resolved
	d := adapter.Decide(context.Background(), testRequest(srv.URL+"/v1", []int{0, 3}, true))

	// THEN the embedded object is used as-is
	assert.Equal(t, models.Decision{Action: 3, Speech: "y", Thought: "x"}, d)

	t.Run("the request carries model and both messages", func(t *testing.T) {
		assert.Equal(t, "test-model", last.Model)
		require.Len(t, last.Messages, 2)
		assert.Equal(t, "system", last.Messages[0].Role)
		assert.Equal(t, UserTurn, last.Messages[1].Content)
	})
}

func TestDecideFallbacks(t *testing.T) {
	adapter := setupTestAdapter()

	t.Run("invalid JSON yields the fallback with no thought", func(t *testing.T) {
		srv, _ := fakeEndpoint(t, http.StatusOK, "{not json at all")
		d := adapter.Decide(context.Background(), testRequest(srv.URL+"/v1", []int{2, 3}, true))
		assert.Equal(t, models.Decision{Action: 2, Speech: ErrorSpeech}, d)
	})

	t.Run("an HTTP error yields the fallback", func(t *testing.T) {
		srv, _ := fakeEndpoint(t, http.StatusInternalServerError, `{"action":3}`)
		d := adapter.Decide(context.Background(), testRequest(srv.URL+"/v1", []int{0, 3}, false))
		assert.Equal(t, models.Decision{Action: 0, Speech: ErrorSpeech}, d)
	})

	t.Run("missing credentials never touch the network", func(t *testing.T) {
		req := testRequest("", nil, true)
		req.Player.AI = nil
		d := adapter.Decide(context.Background(), req)
		assert.Equal(t, models.Decision{Action: 0, Speech: ErrorSpeech}, d)
	})

	t.Run("an out-of-range action is replaced but the thought survives", func(t *testing.T) {
		srv, _ := fakeEndpoint(t, http.StatusOK, `{"thought":"go for 9","speech":"","action":9}`)
		d := adapter.Decide(context.Background(), testRequest(srv.URL+"/v1", []int{0, 3}, false))
		assert.Equal(t, models.Decision{Action: 0, Speech: ErrorSpeech, Thought: "go for 9"}, d)
	})

	t.Run("speech is dropped outside speech sub-phases", func(t *testing.T) {
		srv, _ := fakeEndpoint(t, http.StatusOK, `{"thought":"","speech":"loud","action":"3"}`)
		d := adapter.Decide(context.Background(), testRequest(srv.URL+"/v1", []int{0, 3}, false))
		assert.Equal(t, models.Decision{Action: 3}, d)
	})
}

func TestExtractObject(t *testing.T) {
	cases := []struct {
		name, in, want string
		wantErr        bool
	}{
		{name: "bare object", in: `{"a":1}`, want: `{"a":1}`},
		{name: "nested object and trailing prose", in: `ok {"a":{"b":2}} then {"c":3}`, want: `{"a":{"b":2}}`},
		{name: "braces inside strings", in: `{"speech":"a } brace \" and {"}`, want: `{"speech":"a } brace \" and {"}`},
		{name: "unbalanced then balanced", in: `{ oops {"a":1}`, want: `{"a":1}`},
		{name: "no object", in: "just words", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractObject(tc.in)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrNoJSONObject)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	req := testRequest("http://unused", []int{0, 3}, true)
	req.State.History.Append(models.Entry{Day: 1, Category: models.CategoryAction, Message: "pack chose 3", Scope: models.ScopeRole(models.RoleWerewolf)})
	req.State.History.Append(models.Entry{Day: 1, Category: models.CategoryAction, Message: "seer saw 1", Scope: models.ScopeRole(models.RoleSeer)})
	req.State.History.Append(models.Entry{Day: 1, Category: models.CategoryThought, Message: "my own thought", Scope: models.ScopePlayer(1)})

	prompt := BuildPrompt(req)

	t.Run("werewolves see their pack", func(t *testing.T) {
		assert.Contains(t, prompt, "Your fellow werewolves are: 1(Alice), 2(Bob)")
		assert.Contains(t, prompt, "[SECRET] Your Werewolf teammates are: 1(Alice), 2(Bob)")
	})

	t.Run("only visible history is included", func(t *testing.T) {
		assert.Contains(t, prompt, "pack chose 3")
		assert.NotContains(t, prompt, "seer saw 1")
		assert.NotContains(t, prompt, "my own thought")
	})

	t.Run("targets and phase are listed", func(t *testing.T) {
		assert.Contains(t, prompt, "Valid targets (Player IDs): 0, 3")
		assert.Contains(t, prompt, "Phase: Night - WerewolfDiscuss (Day 1)")
		assert.True(t, strings.Contains(prompt, "Alive Players: 1(Alice), 2(Bob), 3(Charlie)"))
	})
}

func TestRoleDescriptionForNonWolves(t *testing.T) {
	assert.Contains(t, RoleDescription(models.RoleGuard, nil), "same player two nights in a row")
	assert.Contains(t, RoleDescription(models.RoleVillager, nil), "no special abilities")
}
