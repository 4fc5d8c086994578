package notify

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Remote relays messages through the backend's event endpoint so views in
// other processes hear about writes. Publishing posts the message;
// subscribing holds a text/event-stream open.
type Remote struct {
	base    string
	topic   string
	client  *http.Client
	timeout time.Duration
	retry   time.Duration
}

// NewRemote returns a Remote for baseURL and topic. A nil client uses
// http.DefaultClient; streams must not carry a client-wide timeout.
func NewRemote(baseURL, topic string, client *http.Client) *Remote {
	if client == nil {
		client = http.DefaultClient
	}
	if strings.TrimSpace(topic) == "" {
		topic = DefaultTopic
	}
	return &Remote{
		base:    strings.TrimRight(baseURL, "/"),
		topic:   topic,
		client:  client,
		timeout: 5 * time.Second,
		retry:   2 * time.Second,
	}
}

func (r *Remote) endpoint() string {
	return r.base + "/events/" + url.PathEscape(r.topic)
}

// Publish posts m in the background.
func (r *Remote) Publish(m Message) error {
	body, err := json.Marshal(m)
	if err != nil {
		return err
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		if err := r.post(ctx, body); err != nil {
			log.Printf("warn: publish %s: %v", r.topic, err)
		}
	}()
	return nil
}

func (r *Remote) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}

// Subscribe opens the event stream and reopens it after every drop until the
// returned cancel func runs. The channel closes only on cancel.
func (r *Remote) Subscribe() (<-chan Message, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan Message, 8)
	go func() {
		defer close(ch)
		for {
			err := r.stream(ctx, ch)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				log.Printf("warn: subscribe %s: %v; retrying in %s", r.topic, err, r.retry)
			}
			t := time.NewTimer(r.retry)
			select {
			case <-ctx.Done():
				t.Stop()
				return
			case <-t.C:
			}
		}
	}()
	return ch, cancel
}

func (r *Remote) stream(ctx context.Context, out chan<- Message) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")
	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		line := sc.Text()
		data, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		m, ok := Decode([]byte(strings.TrimSpace(data)))
		if !ok {
			continue
		}
		select {
		case out <- m:
		case <-ctx.Done():
			return nil
		default:
		}
	}
	return sc.Err()
}
