// Command vendorsim hosts mock versions of the three vendor backends for
// local development and load testing. Each vendor keeps its own catalog,
// wire format, latency band and failure rate.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/offerhub/internal/logging"
)

type product struct {
	price float64
	// stock nil means the vendor reports no inventory figure.
	stock *int
}

func units(n int) *int { return &n }

var (
	vendorOneCatalog = map[string]product{
		"ABC123": {price: 99.99, stock: units(10)},
		"XYZ789": {price: 149.50, stock: nil},
		"DEF456": {price: 75.00, stock: units(25)},
		"LMN101": {price: 200.00, stock: units(0)},
		"PQR202": {price: 50.00, stock: units(100)},
	}

	vendorTwoCatalog = map[string]product{
		"ABC123": {price: 105.50, stock: units(15)},
		"XYZ789": {price: 155.00, stock: units(8)},
		"DEF456": {price: 72.50, stock: nil},
		"LMN101": {price: 195.00, stock: units(5)},
		"PQR202": {price: 52.00, stock: units(75)},
		"GHI303": {price: 89.99, stock: units(0)},
		"JKL404": {price: 120.00, stock: units(50)},
	}

	vendorThreeCatalog = map[string]product{
		"ABC123": {price: 98.75, stock: units(30)},
		"XYZ789": {price: 160.00, stock: units(12)},
		"DEF456": {price: 74.25, stock: units(0)},
		"LMN101": {price: 210.00, stock: units(3)},
		"PQR202": {price: 49.50, stock: nil},
		"JKL404": {price: 125.00, stock: units(40)},
	}
)

// simulator drives the shared latency and failure behavior of one vendor.
type simulator struct {
	name        string
	catalog     map[string]product
	minDelay    time.Duration
	maxDelay    time.Duration
	failureRate float64
	log         *logging.Logger
}

// lookup simulates one backend call: sleep, maybe fail, then find the SKU.
// The bool reports whether the SKU is carried.
func (s *simulator) lookup(c *gin.Context, sku string) (product, bool) {
	delay := s.minDelay
	if s.maxDelay > s.minDelay {
		delay += time.Duration(rand.Int63n(int64(s.maxDelay - s.minDelay)))
	}
	time.Sleep(delay)

	if rand.Float64() < s.failureRate {
		s.log.Warn("simulated failure", map[string]interface{}{
			"vendor": s.name, "sku": sku,
		})
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service temporarily unavailable"})
		return product{}, false
	}

	p, ok := s.catalog[sku]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return product{}, false
	}
	return p, true
}

func nowStamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func vendorOneHandler(s *simulator) gin.HandlerFunc {
	return func(c *gin.Context) {
		sku := c.Param("sku")
		p, ok := s.lookup(c, sku)
		if !ok {
			return
		}

		status := "IN_STOCK"
		if p.stock != nil && *p.stock == 0 {
			status = "OUT_OF_STOCK"
		}
		c.JSON(http.StatusOK, gin.H{
			"product_id":          sku,
			"quantity":            p.stock,
			"unit_price":          p.price,
			"availability_status": status,
			"last_updated":        nowStamp(),
		})
	}
}

func vendorTwoHandler(s *simulator) gin.HandlerFunc {
	return func(c *gin.Context) {
		sku := c.Param("sku")
		p, ok := s.lookup(c, sku)
		if !ok {
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"sku":                sku,
			"stock_count":        p.stock,
			"price_amount":       p.price,
			"in_stock":           p.stock == nil || *p.stock > 0,
			"response_timestamp": nowStamp(),
		})
	}
}

func vendorThreeHandler(s *simulator) gin.HandlerFunc {
	return func(c *gin.Context) {
		sku := c.Param("sku")
		p, ok := s.lookup(c, sku)
		if !ok {
			return
		}

		statusCode := 1
		if p.stock != nil && *p.stock == 0 {
			statusCode = 0
		}
		c.JSON(http.StatusOK, gin.H{
			"item_code":       sku,
			"available_units": p.stock,
			"cost":            p.price,
			"status_code":     statusCode,
			"data_timestamp":  nowStamp(),
		})
	}
}

func main() {
	port := flag.Int("port", 9100, "listen port")
	failureRate := flag.Float64("failure-rate", 0.0, "per-call failure probability applied to every vendor")
	fast := flag.Bool("fast", false, "disable simulated latency")
	flag.Parse()

	log := logging.New(logging.Config{Level: "info", Format: "console"}, "vendorsim")

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	sims := []struct {
		sim     *simulator
		path    string
		handler func(*simulator) gin.HandlerFunc
	}{
		{&simulator{name: "vendor-one", catalog: vendorOneCatalog, minDelay: 100 * time.Millisecond, maxDelay: 300 * time.Millisecond, failureRate: *failureRate, log: log}, "/vendor-one/products/:sku", vendorOneHandler},
		{&simulator{name: "vendor-two", catalog: vendorTwoCatalog, minDelay: 200 * time.Millisecond, maxDelay: 500 * time.Millisecond, failureRate: *failureRate, log: log}, "/vendor-two/items/:sku", vendorTwoHandler},
		{&simulator{name: "vendor-three", catalog: vendorThreeCatalog, minDelay: 150 * time.Millisecond, maxDelay: 400 * time.Millisecond, failureRate: *failureRate, log: log}, "/vendor-three/inventory/:sku", vendorThreeHandler},
	}
	for _, entry := range sims {
		if *fast {
			entry.sim.minDelay = 0
			entry.sim.maxDelay = 0
		}
		engine.GET(entry.path, entry.handler(entry.sim))
	}

	addr := fmt.Sprintf(":%d", *port)
	log.Info("vendorsim listening", map[string]interface{}{
		"addr": addr, "failure_rate": *failureRate,
	})
	if err := engine.Run(addr); err != nil {
		fmt.Fprintf(os.Stderr, "vendorsim: %v\n", err)
		os.Exit(1)
	}
}
