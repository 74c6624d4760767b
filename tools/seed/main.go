package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

var (
	localities = []string{"Indiranagar", "Whitefield", "Koramangala", "HSR Layout", "Jayanagar", "Hebbal"}
	statuses   = []string{"New", "Contacted", "Visit Scheduled", "Closed"}
)

type seedLead struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
	Price       string `json:"price"`
	Status      string `json:"status"`
	Lat         string `json:"lat"`
	Lng         string `json:"lng"`
}

func randomLead(r *rand.Rand) seedLead {
	locality := localities[r.Intn(len(localities))]
	return seedLead{
		Name:        "Seed " + uuid.NewString()[:8],
		PhoneNumber: fmt.Sprintf("+91 9%09d", r.Intn(1_000_000_000)),
		Address:     fmt.Sprintf("%d %s, Bengaluru", 1+r.Intn(200), locality),
		Price:       fmt.Sprintf("%d", 500_000+r.Intn(200)*50_000),
		Status:      statuses[r.Intn(len(statuses))],
		Lat:         fmt.Sprintf("%.4f", 12.85+r.Float64()*0.2),
		Lng:         fmt.Sprintf("%.4f", 77.50+r.Float64()*0.2),
	}
}

func main() {
	targetURL := flag.String("url", "http://localhost:8080/api/leads/", "Lead collection URL")
	apiKey := flag.String("api-key", "", "API key of the broker the leads are created for")
	count := flag.Int("n", 100, "Number of leads to create")
	concurrency := flag.Int("c", 4, "Number of concurrent workers")
	rps := flag.Int("rps", 20, "Requests per second limit")
	flag.Parse()

	log.Printf("Seeding %d leads into %s", *count, *targetURL)
	log.Printf("Concurrency: %d, RPS: %d", *concurrency, *rps)

	var wg sync.WaitGroup
	var successCount, errorCount atomic.Int64
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	limiter := rate.NewLimiter(rate.Limit(*rps), *concurrency)
	jobs := make(chan struct{})

	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			client := &http.Client{Timeout: 5 * time.Second}
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))

			for range jobs {
				if err := limiter.Wait(ctx); err != nil {
					errorCount.Add(1)
					continue
				}

				payload, _ := json.Marshal(randomLead(r))
				req, err := http.NewRequestWithContext(ctx, http.MethodPost, *targetURL, bytes.NewReader(payload))
				if err != nil {
					errorCount.Add(1)
					continue
				}
				req.Header.Set("Content-Type", "application/json")
				req.Header.Set("Authorization", "Bearer "+*apiKey)

				resp, err := client.Do(req)
				if err != nil {
					errorCount.Add(1)
					continue
				}
				if resp.StatusCode == http.StatusCreated {
					successCount.Add(1)
				} else {
					errorCount.Add(1)
				}
				resp.Body.Close()
			}
		}(i)
	}

	for i := 0; i < *count; i++ {
		jobs <- struct{}{}
	}
	close(jobs)
	wg.Wait()

	log.Println("Seeding finished.")
	log.Printf("Created (201): %d", successCount.Load())
	log.Printf("Errors: %d", errorCount.Load())
}
