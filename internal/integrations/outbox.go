package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"timebank/internal/featureflags"
	"timebank/internal/middleware"
	"timebank/internal/observability"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

const (
	outboxBucket      = "outbox"
	defaultDrainBatch = 50
	maxMailAttempts   = 5
)

type outboxItem struct {
	ID       string    `json:"id"`
	Email    Email     `json:"email"`
	Attempts int       `json:"attempts"`
	QueuedAt time.Time `json:"queued_at"`
}

// Outbox persists mails in a bbolt file so callers never wait on the Mailer.
// A background loop drains it.
type Outbox struct {
	db     *bolt.DB
	mailer Mailer
	flags  *featureflags.Manager

	wg       sync.WaitGroup
	stopOnce sync.Once
	stop     chan struct{}
}

// OpenOutbox opens or creates the outbox file at path.
func OpenOutbox(path string, mailer Mailer, flags *featureflags.Manager) (*Outbox, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, err
		}
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open outbox: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(outboxBucket))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	o := &Outbox{db: db, mailer: mailer, flags: flags, stop: make(chan struct{})}
	o.refreshDepth()
	return o, nil
}

// Enqueue stores e for delivery. When email_notifications is off for userID
// the mail is dropped.
func (o *Outbox) Enqueue(ctx context.Context, userID uint, e Email) error {
	if o == nil {
		return nil
	}
	if !o.flags.Enabled(featureflags.EmailNotifications, userID) {
		return nil
	}
	item := outboxItem{ID: uuid.NewString(), Email: e, QueuedAt: time.Now().UTC()}
	payload, err := json.Marshal(item)
	if err != nil {
		return err
	}
	err = o.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(outboxBucket)).Put(itemKey(item), payload)
	})
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "outbox enqueue failed", "subject", e.Subject, "error", err)
		return fmt.Errorf("enqueue mail: %w", err)
	}
	o.refreshDepth()
	return nil
}

func itemKey(item outboxItem) []byte {
	return []byte(fmt.Sprintf("%020d_%s", item.QueuedAt.UnixNano(), item.ID))
}

// Drain delivers up to one batch in queue order and returns how many were
// sent. Failed mails stay queued until maxMailAttempts.
func (o *Outbox) Drain(ctx context.Context) (int, error) {
	type pending struct {
		key  []byte
		item outboxItem
	}
	var batch []pending
	err := o.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(outboxBucket)).Cursor()
		for k, v := c.First(); k != nil && len(batch) < defaultDrainBatch; k, v = c.Next() {
			var item outboxItem
			if err := json.Unmarshal(v, &item); err != nil {
				continue
			}
			batch = append(batch, pending{key: append([]byte(nil), k...), item: item})
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, p := range batch {
		if ctx.Err() != nil {
			break
		}
		sendErr := o.mailer.Send(ctx, p.item.Email)
		observability.MailDeliveriesTotal.WithLabelValues(observability.Result(sendErr)).Inc()

		err := o.db.Update(func(tx *bolt.Tx) error {
			b := tx.Bucket([]byte(outboxBucket))
			if sendErr == nil {
				return b.Delete(p.key)
			}
			p.item.Attempts++
			if p.item.Attempts >= maxMailAttempts {
				middleware.Logger.Error("dropping undeliverable mail",
					"subject", p.item.Email.Subject, "attempts", p.item.Attempts, "error", sendErr)
				return b.Delete(p.key)
			}
			payload, err := json.Marshal(p.item)
			if err != nil {
				return err
			}
			return b.Put(p.key, payload)
		})
		if err != nil {
			return sent, err
		}
		if sendErr == nil {
			sent++
		}
	}
	o.refreshDepth()
	return sent, nil
}

// Depth returns the number of queued mails.
func (o *Outbox) Depth() int {
	n := 0
	_ = o.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket([]byte(outboxBucket)).Stats().KeyN
		return nil
	})
	return n
}

func (o *Outbox) refreshDepth() {
	observability.OutboxDepth.Set(float64(o.Depth()))
}

// Start drains the outbox every interval until ctx is done or Close is called.
func (o *Outbox) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-o.stop:
				return
			case <-ticker.C:
				if _, err := o.Drain(ctx); err != nil {
					middleware.Logger.Error("outbox drain failed", "error", err)
				}
			}
		}
	}()
}

// Close stops the drain loop and closes the file.
func (o *Outbox) Close() error {
	if o == nil {
		return nil
	}
	o.stopOnce.Do(func() { close(o.stop) })
	o.wg.Wait()
	return o.db.Close()
}
