// Package catalog loads the static medical-service catalog and groups it
// by specialty for the browsing screen.
package catalog

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/polancodf2024/consulta/internal/observability/metrics"
	"github.com/polancodf2024/consulta/pkg/logging"
)

// Service is one catalog entry: code|display_name|category.
type Service struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// Display returns the browsing-screen label for the service.
func (s Service) Display() string {
	return s.Code + " - " + s.Name
}

// Catalog is the read-only service list, indexed for browsing and lookup.
type Catalog struct {
	services   []Service
	byCode     map[string]Service
	categories []string
	byCategory map[string][]Service
}

// Load reads the catalog file once. Lines that do not split into exactly
// three fields are skipped with a warning; they never abort the load.
func Load(path string, logger *logging.Logger, m *metrics.BookingMetrics) (*Catalog, error) {
	if logger == nil {
		logger = logging.Default()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	defer f.Close()

	c := &Catalog{
		byCode:     make(map[string]Service),
		byCategory: make(map[string][]Service),
	}

	scanner := bufio.NewScanner(f)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Split(line, "|")
		if len(parts) != 3 {
			logger.Warn("catalog: skipping malformed line",
				"path", path,
				"line", lineno,
				"fields", len(parts),
			)
			m.ObserveMalformedLine("catalog")
			continue
		}
		svc := Service{Code: parts[0], Name: parts[1], Category: parts[2]}
		if _, ok := c.byCategory[svc.Category]; !ok {
			c.categories = append(c.categories, svc.Category)
		}
		c.services = append(c.services, svc)
		c.byCode[svc.Code] = svc
		c.byCategory[svc.Category] = append(c.byCategory[svc.Category], svc)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}

	logger.Info("catalog loaded", "path", path, "services", len(c.services), "categories", len(c.categories))
	return c, nil
}

// Categories returns the specialties in first-appearance order.
func (c *Catalog) Categories() []string {
	out := make([]string, len(c.categories))
	copy(out, c.categories)
	return out
}

// Services returns the display strings for one category, in file order.
// Unknown categories yield an empty slice.
func (c *Catalog) Services(category string) []string {
	svcs := c.byCategory[category]
	out := make([]string, 0, len(svcs))
	for _, s := range svcs {
		out = append(out, s.Display())
	}
	return out
}

// GroupByCategory returns every category mapped to its display strings.
func (c *Catalog) GroupByCategory() map[string][]string {
	out := make(map[string][]string, len(c.categories))
	for _, cat := range c.categories {
		out[cat] = c.Services(cat)
	}
	return out
}

// Resolve looks a service up by code for batch validation.
func (c *Catalog) Resolve(code string) (Service, bool) {
	s, ok := c.byCode[code]
	return s, ok
}

// Len reports how many well-formed services were loaded.
func (c *Catalog) Len() int {
	return len(c.services)
}
