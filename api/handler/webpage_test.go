package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/serpscout/serpscout/cache"
	"github.com/serpscout/serpscout/config"
	"github.com/serpscout/serpscout/models"
	"github.com/serpscout/serpscout/ratelimit"
	"github.com/serpscout/serpscout/robots"
	"github.com/serpscout/serpscout/scraper"
	"github.com/serpscout/serpscout/structure"
)

// testRouter wires the webpage handler behind a gin engine. The scraper is
// real but never reached by cache-hit requests.
func testRouter(cc *cache.Cache) *gin.Engine {
	gin.SetMode(gin.TestMode)
	ps := scraper.NewPageScraper(
		config.BrowserConfig{},
		config.ScraperConfig{RespectRobots: false},
		robots.NewGate("", time.Second),
		ratelimit.New(time.Millisecond),
		structure.New(),
	)
	r := gin.New()
	r.POST("/scrape/webpage", Webpage(ps, cc))
	return r
}

const cachedReqBody = `{"url":"https://example.com/page","max_age_ms":60000}`

func seedCache(cc *cache.Cache) string {
	key := cache.Key("https://example.com/page", "text", "structured")
	cc.Set(key, &models.ScrapeResponse{Success: true, Content: "cached content"})
	return key
}

func TestWebpage_CacheHitDoesNotMutateStoredEntry(t *testing.T) {
	cc := cache.New(10)
	key := seedCache(cc)
	r := testRouter(cc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/scrape/webpage", strings.NewReader(cachedReqBody))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"cache_status":"hit"`) {
		t.Errorf("response not marked as hit: %s", w.Body.String())
	}

	// The served response is annotated on a copy; the stored entry must
	// keep its original fields.
	stored, hit := cc.Get(key, 60000)
	if !hit {
		t.Fatal("entry evicted by a read")
	}
	if stored.CacheStatus != "" {
		t.Errorf("stored CacheStatus = %q, want empty", stored.CacheStatus)
	}
	if stored.Timing.TotalMs != 0 {
		t.Errorf("stored Timing.TotalMs = %d, want 0", stored.Timing.TotalMs)
	}
}

func TestWebpage_ConcurrentCacheHits(t *testing.T) {
	// Concurrent hits on the same key must not race (run with -race).
	cc := cache.New(10)
	seedCache(cc)
	r := testRouter(cc)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				w := httptest.NewRecorder()
				req := httptest.NewRequest(http.MethodPost, "/scrape/webpage", strings.NewReader(cachedReqBody))
				req.Header.Set("Content-Type", "application/json")
				r.ServeHTTP(w, req)
				if w.Code != http.StatusOK {
					t.Errorf("status = %d", w.Code)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestWebpage_MalformedRequestRejected(t *testing.T) {
	cc := cache.New(10)
	r := testRouter(cc)

	for _, body := range []string{`{}`, `{"url":"not a url"}`, `not json`} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/scrape/webpage", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, w.Code)
		}
	}
}
