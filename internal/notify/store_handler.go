package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/gameswap-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	storeBatchSize     = 50
	storeFlushInterval = 5 * time.Second
)

// StoreHandler batches notifications into the notifications table. Rows are
// flushed every five seconds, when the buffer reaches 50 rows, and on Stop.
type StoreHandler struct {
	db       *gorm.DB
	mu       sync.Mutex
	buffer   []models.Notification
	ticker   *time.Ticker
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

func NewStoreHandler(db *gorm.DB) *StoreHandler {
	return newStoreHandler(db, storeFlushInterval)
}

func newStoreHandler(db *gorm.DB, interval time.Duration) *StoreHandler {
	h := &StoreHandler{
		db:     db,
		buffer: make([]models.Notification, 0, storeBatchSize),
		ticker: time.NewTicker(interval),
		done:   make(chan struct{}),
	}
	h.wg.Add(1)
	go h.flushLoop()
	return h
}

func (h *StoreHandler) flushLoop() {
	defer h.wg.Done()
	for {
		select {
		case <-h.ticker.C:
			h.Flush()
		case <-h.done:
			h.Flush()
			return
		}
	}
}

// Flush writes the buffered rows.
func (h *StoreHandler) Flush() {
	h.mu.Lock()
	if len(h.buffer) == 0 {
		h.mu.Unlock()
		return
	}
	batch := h.buffer
	h.buffer = make([]models.Notification, 0, storeBatchSize)
	h.mu.Unlock()

	if err := h.db.CreateInBatches(batch, storeBatchSize).Error; err != nil {
		slog.Error("failed to flush notifications to DB", "error", err, "count", len(batch))
	}
}

// Stop flushes what is left and ends the flush loop.
func (h *StoreHandler) Stop() {
	h.stopOnce.Do(func() {
		h.ticker.Stop()
		close(h.done)
		h.wg.Wait()
	})
}

// Handle is a Handler that queues n for persistence.
func (h *StoreHandler) Handle(_ context.Context, n Notification) error {
	row := models.Notification{
		ID:        uuid.New(),
		Event:     string(n.Event),
		Message:   n.Message,
		CreatedAt: n.At,
	}
	if n.SwapID != uuid.Nil {
		id := n.SwapID
		row.SwapID = &id
	}

	payload := map[string]interface{}{}
	if !n.ReturnDate.IsZero() {
		payload["return_date"] = n.ReturnDate.Format("2006-01-02")
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	row.Payload = datatypes.JSON(b)

	h.mu.Lock()
	h.buffer = append(h.buffer, row)
	needFlush := len(h.buffer) >= storeBatchSize
	h.mu.Unlock()

	// Full batches are written before Handle returns.
	if needFlush {
		h.Flush()
	}
	return nil
}

// PurgeOlderThan deletes persisted notifications created before cutoff.
func PurgeOlderThan(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	result := db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}
