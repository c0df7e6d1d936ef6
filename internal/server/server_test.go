package server_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-resty/resty/v2"
	"github.com/gorilla/websocket"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"werewolf-toolbox/internal/config"
	"werewolf-toolbox/internal/models"
	"werewolf-toolbox/internal/server"
)

var targetsLine = regexp.MustCompile(`Valid targets \(Player IDs\): ([0-9, ]+) \(`)

// fakeChatEndpoint answers every prompt with the last valid target it lists.
func fakeChatEndpoint() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		action := 0
		if len(req.Messages) > 0 {
			if m := targetsLine.FindStringSubmatch(req.Messages[0].Content); m != nil {
				ids := strings.Split(m[1], ", ")
				action, _ = strconv.Atoi(strings.TrimSpace(ids[len(ids)-1]))
			}
		}
		content := fmt.Sprintf(`{"thought":"thinking it over","speech":"I am innocent","action":%d}`, action)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]string{"role": "assistant", "content": content}}},
		})
	}))
}

var _ = Describe("Server", func() {
	var client *resty.Client
	var baseURL string
	var cfg *config.GameConfig

	startServer := func() {
		log := logrus.New()
		log.SetOutput(io.Discard)

		ctx, cancel := context.WithCancel(context.Background())
		manager := server.NewManager(ctx, cfg, log, 1)
		httpServer := httptest.NewServer(server.NewRouter(manager, cfg.Server))
		baseURL = httpServer.URL
		DeferCleanup(func() {
			cancel()
			manager.Shutdown()
			httpServer.Close()
		})
	}

	createMatch := func() string {
		resp, err := client.R().Post(baseURL + "/api/matches")
		Expect(err).ToNot(HaveOccurred(), "creating a match should not fail")
		Expect(resp.StatusCode()).To(Equal(http.StatusCreated), "unexpected status creating a match: %s", resp.String())
		var body map[string]string
		Expect(json.Unmarshal(resp.Body(), &body)).To(Succeed())
		Expect(body).To(HaveKey("matchId"))
		return body["matchId"]
	}

	getView := func(id, viewer string) models.View {
		resp, err := client.R().SetQueryParam("viewer", viewer).Get(fmt.Sprintf("%s/api/matches/%s", baseURL, id))
		Expect(err).ToNot(HaveOccurred())
		Expect(resp.StatusCode()).To(Equal(http.StatusOK))
		var view models.View
		Expect(json.Unmarshal(resp.Body(), &view)).To(Succeed())
		return view
	}

	submit := func(id string, seat, action int) int {
		resp, err := client.R().
			SetBody(map[string]any{"playerId": seat, "action": action, "speech": "from the browser"}).
			Post(fmt.Sprintf("%s/api/matches/%s/actions", baseURL, id))
		Expect(err).ToNot(HaveOccurred())
		return resp.StatusCode()
	}

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		ai := fakeChatEndpoint()
		DeferCleanup(ai.Close)

		cfg = config.Default()
		cfg.Pacing = config.Pacing{}
		cfg.AI.BaseURL = ai.URL + "/v1"
		cfg.AI.APIKey = "test-key"
		cfg.AI.Timeout = 5 * time.Second
		cfg.MaxDays = 30
		cfg.HumanSeats = nil
		client = resty.New()
	})

	It("reports health", func() {
		startServer()
		resp, err := client.R().Get(baseURL + "/health")
		Expect(err).ToNot(HaveOccurred())
		Expect(resp.StatusCode()).To(Equal(http.StatusOK))
		Expect(resp.Header().Get("Access-Control-Allow-Origin")).To(Equal("*"))
	})

	Context("with an all-AI table", func() {
		var matchID string

		BeforeEach(func() {
			startServer()
			matchID = createMatch()
		})

		It("plays the match to the end", func() {
			Eventually(func() models.Phase {
				return getView(matchID, "god").Phase
			}).WithTimeout(20 * time.Second).WithPolling(50 * time.Millisecond).Should(Equal(models.PhaseGameOver))

			god := getView(matchID, "god")
			Expect(god.Winner).To(Or(Equal(models.TeamVillagers), Equal(models.TeamWerewolves)))
			Expect(god.Night).ToNot(BeNil(), "god view carries the night scratch")

			var thoughts int
			for _, e := range god.History {
				if e.Category == models.CategoryThought {
					thoughts++
				}
			}
			Expect(thoughts).To(BeNumerically(">", 0), "AI thoughts are logged for god view")

			seat := getView(matchID, "3")
			Expect(seat.Night).To(BeNil())
			for _, e := range seat.History {
				Expect(e.Category).ToNot(Equal(models.CategoryThought), "a player never sees thoughts")
			}
		})

		It("rejects a submit when no human is pending", func() {
			Expect(submit(matchID, 1, 0)).To(Equal(http.StatusConflict))
		})

		It("rejects an unknown viewer", func() {
			resp, err := client.R().SetQueryParam("viewer", "99").Get(fmt.Sprintf("%s/api/matches/%s", baseURL, matchID))
			Expect(err).ToNot(HaveOccurred())
			Expect(resp.StatusCode()).To(Equal(http.StatusBadRequest))
		})

		It("pushes snapshots over the websocket", func() {
			wsURL := "ws" + strings.TrimPrefix(baseURL, "http") + "/ws/" + matchID + "?viewer=god"
			conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
			Expect(err).ToNot(HaveOccurred())
			DeferCleanup(conn.Close)

			Expect(conn.SetReadDeadline(time.Now().Add(5 * time.Second))).To(Succeed())
			var msg struct {
				Type    string      `json:"type"`
				Payload models.View `json:"payload"`
			}
			Expect(conn.ReadJSON(&msg)).To(Succeed())
			Expect(msg.Type).To(Or(Equal(server.MessageState), Equal(server.MessageGameOver)))
			Expect(msg.Payload.Players).To(HaveLen(12))
		})
	})

	Context("with a human at seat 1", func() {
		var matchID string

		BeforeEach(func() {
			cfg.HumanSeats = []int{1}
			startServer()
			matchID = createMatch()
		})

		It("waits for the human and validates the answer", func() {
			Eventually(func() bool {
				return getView(matchID, "1").WaitingForHuman
			}).WithTimeout(20 * time.Second).WithPolling(20 * time.Millisecond).Should(BeTrue())

			view := getView(matchID, "1")
			Expect(view.CurrentPlayerID).To(Equal(1))
			Expect(view.ActionPrompt).ToNot(BeEmpty())
			Expect(view.Players[0].Role).ToNot(BeEmpty(), "a player always sees their own role")

			Expect(submit(matchID, 2, 0)).To(Equal(http.StatusForbidden), "another seat cannot answer for player 1")
			Expect(submit(matchID, 0, 0)).To(Equal(http.StatusBadRequest), "the answering seat must be named")
			Expect(submit(matchID, 1, 99)).To(Equal(http.StatusBadRequest))
			Expect(submit(matchID, 1, 0)).To(Equal(http.StatusOK))
		})

		It("refuses a websocket answer from a socket watching another seat", func() {
			Eventually(func() bool {
				return getView(matchID, "1").WaitingForHuman
			}).WithTimeout(20 * time.Second).WithPolling(20 * time.Millisecond).Should(BeTrue())

			wsURL := "ws" + strings.TrimPrefix(baseURL, "http") + "/ws/" + matchID + "?viewer=2"
			conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
			Expect(err).ToNot(HaveOccurred())
			DeferCleanup(conn.Close)

			Expect(conn.WriteJSON(map[string]any{"type": server.MessageSubmit, "payload": map[string]any{"action": 0}})).To(Succeed())

			Expect(conn.SetReadDeadline(time.Now().Add(5 * time.Second))).To(Succeed())
			var msg struct {
				Type    string          `json:"type"`
				Payload json.RawMessage `json:"payload"`
			}
			for msg.Type != server.MessageError {
				Expect(conn.ReadJSON(&msg)).To(Succeed())
			}
			Expect(string(msg.Payload)).To(ContainSubstring("another player"))
			Expect(getView(matchID, "1").WaitingForHuman).To(BeTrue(), "player 1 is still being waited on")
		})
	})

	It("returns 404 for an unknown match", func() {
		startServer()
		resp, err := client.R().Get(baseURL + "/api/matches/does-not-exist")
		Expect(err).ToNot(HaveOccurred())
		Expect(resp.StatusCode()).To(Equal(http.StatusNotFound))
		Expect(submit("does-not-exist", 1, 0)).To(Equal(http.StatusNotFound))
	})
})
