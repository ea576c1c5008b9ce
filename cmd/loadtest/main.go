// Package main provides a load generator for the realtime event stream.
//
// The first account sends chat messages to every other account over HTTP
// while each account holds websocket connections open; delivered
// chat.message frames are counted per connection.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"timebank/internal/middleware"
	"timebank/internal/notifications"
	"timebank/internal/seed"

	"github.com/gorilla/websocket"
)

// Metrics tracks the run results.
type Metrics struct {
	ConnectionsAttempted int64
	ConnectionsSuccess   int64
	ConnectionsFailed    int64
	MessagesSent         int64
	FramesReceived       int64
	Pongs                int64
	Errors               int64
}

var metrics Metrics

type account struct {
	email string
	token string
	id    uint
}

var httpClient = &http.Client{Timeout: 5 * time.Second}

func main() {
	host := flag.String("host", "localhost:8080", "API server host")
	emails := flag.String("emails", "", "comma separated accounts; the first one sends")
	password := flag.String("password", seed.DemoPassword, "password shared by the accounts")
	conns := flag.Int("conns", 4, "websocket connections per account")
	interval := flag.Duration("interval", 2*time.Second, "delay between send rounds")
	duration := flag.Duration("duration", 30*time.Second, "test duration")
	flag.Parse()

	middleware.ConfigureLogger(os.Stderr, "info", "text")
	log := middleware.Logger

	list := splitEmails(*emails)
	if len(list) < 2 {
		fmt.Fprintln(os.Stderr, "usage: loadtest -emails sender@example.com,peer@example.com[,...]")
		os.Exit(2)
	}

	accounts := make([]*account, 0, len(list))
	for _, email := range list {
		acc, err := login(*host, email, *password)
		if err != nil {
			log.Error("login failed", "email", email, "error", err)
			os.Exit(1)
		}
		accounts = append(accounts, acc)
	}
	log.Info("logged in", "accounts", len(accounts), "host", *host)

	sender := accounts[0]
	chatIDs := make([]uint, 0, len(accounts)-1)
	for _, peer := range accounts[1:] {
		id, err := openChat(*host, sender.token, peer.id)
		if err != nil {
			log.Error("open chat failed", "peer", peer.email, "error", err)
			os.Exit(1)
		}
		chatIDs = append(chatIDs, id)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for _, acc := range accounts {
		for range *conns {
			wg.Add(1)
			go runClient(*host, acc.token, stop, &wg)
			time.Sleep(20 * time.Millisecond)
		}
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(*interval)
		defer ticker.Stop()
		round := 0
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				round++
				for _, chatID := range chatIDs {
					if err := sendMessage(*host, sender.token, chatID, fmt.Sprintf("load round %d", round)); err != nil {
						atomic.AddInt64(&metrics.Errors, 1)
						continue
					}
					atomic.AddInt64(&metrics.MessagesSent, 1)
				}
			}
		}
	}()

	select {
	case <-time.After(*duration):
		log.Info("test duration reached")
	case <-interrupt:
		log.Info("interrupted")
	}

	close(stop)
	wg.Wait()
	printMetrics(os.Stdout, *conns)
}

func splitEmails(raw string) []string {
	var out []string
	for _, e := range strings.Split(raw, ",") {
		if e = strings.TrimSpace(e); e != "" {
			out = append(out, e)
		}
	}
	return out
}

func postJSON(target, token string, body any, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, target, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%s returned %d", target, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func login(host, email, password string) (*account, error) {
	var result struct {
		Token string `json:"token"`
		User  struct {
			ID uint `json:"id"`
		} `json:"user"`
	}
	err := postJSON(fmt.Sprintf("http://%s/api/auth/login", host), "",
		map[string]string{"email": email, "password": password}, &result)
	if err != nil {
		return nil, err
	}
	if result.Token == "" {
		return nil, errors.New("empty token")
	}
	return &account{email: email, token: result.Token, id: result.User.ID}, nil
}

func openChat(host, token string, peer uint) (uint, error) {
	var chat struct {
		ID uint `json:"id"`
	}
	err := postJSON(fmt.Sprintf("http://%s/api/chats", host), token, map[string]uint{"user_id": peer}, &chat)
	return chat.ID, err
}

func sendMessage(host, token string, chatID uint, text string) error {
	return postJSON(fmt.Sprintf("http://%s/api/chats/%d/messages", host, chatID), token,
		map[string]string{"text": text}, nil)
}

func runClient(host, token string, stop <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()
	atomic.AddInt64(&metrics.ConnectionsAttempted, 1)

	u := url.URL{Scheme: "ws", Host: host, Path: "/ws", RawQuery: "token=" + url.QueryEscape(token)}
	c, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		atomic.AddInt64(&metrics.ConnectionsFailed, 1)
		atomic.AddInt64(&metrics.Errors, 1)
		return
	}
	if resp != nil && resp.Body != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	defer func() { _ = c.Close() }()
	atomic.AddInt64(&metrics.ConnectionsSuccess, 1)

	go func() {
		for {
			_, raw, err := c.ReadMessage()
			if err != nil {
				return
			}
			if string(raw) == "pong" {
				atomic.AddInt64(&metrics.Pongs, 1)
				continue
			}
			var frame struct {
				Type string `json:"type"`
			}
			if json.Unmarshal(raw, &frame) == nil && frame.Type == notifications.KindChatMessage {
				atomic.AddInt64(&metrics.FramesReceived, 1)
			}
		}
	}()

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case <-ticker.C:
			if err := c.WriteMessage(websocket.TextMessage, []byte("ping")); err != nil {
				atomic.AddInt64(&metrics.Errors, 1)
				return
			}
		}
	}
}

func printMetrics(w *os.File, conns int) {
	sent := atomic.LoadInt64(&metrics.MessagesSent)
	received := atomic.LoadInt64(&metrics.FramesReceived)
	fmt.Fprintln(w, "Load test results")
	fmt.Fprintf(w, "  connections attempted:  %d\n", atomic.LoadInt64(&metrics.ConnectionsAttempted))
	fmt.Fprintf(w, "  connections successful: %d\n", atomic.LoadInt64(&metrics.ConnectionsSuccess))
	fmt.Fprintf(w, "  connections failed:     %d\n", atomic.LoadInt64(&metrics.ConnectionsFailed))
	fmt.Fprintf(w, "  messages sent:          %d\n", sent)
	fmt.Fprintf(w, "  chat frames received:   %d\n", received)
	// Each message reaches the sender's and the peer's connections.
	if expected := sent * int64(2*conns); expected > 0 {
		fmt.Fprintf(w, "  delivery ratio:         %.2f\n", float64(received)/float64(expected))
	}
	fmt.Fprintf(w, "  pongs:                  %d\n", atomic.LoadInt64(&metrics.Pongs))
	fmt.Fprintf(w, "  errors:                 %d\n", atomic.LoadInt64(&metrics.Errors))
}
