package document

import (
	"sync"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/polancodf2024/consulta/pkg/logging"
)

// Cache keeps recently confirmed documents in memory, keyed by batch id,
// so pages can be fetched after the booking response was returned. Nothing
// here is durable; only the ledger persists.
type Cache struct {
	cache  *lru.Cache[uuid.UUID, *Document]
	mu     sync.RWMutex
	logger *logging.Logger
}

// NewCache builds a bounded document cache.
func NewCache(size int, logger *logging.Logger) (*Cache, error) {
	if logger == nil {
		logger = logging.Default()
	}
	c, err := lru.New[uuid.UUID, *Document](size)
	if err != nil {
		return nil, err
	}
	return &Cache{cache: c, logger: logger}, nil
}

// Put stores a freshly confirmed document.
func (c *Cache) Put(doc *Document) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Add(doc.BatchID, doc)
	c.logger.Debug("document cached", "batch_id", doc.BatchID, "pages", len(doc.Pages))
}

// Get returns the document for a batch, if it is still cached.
func (c *Cache) Get(id uuid.UUID) (*Document, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cache.Get(id)
}
