package jobs

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// ResultsSuffix names the list responses are pushed to, derived from the
// job queue name.
const ResultsSuffix = ":results"

// Worker pops jobs off a Redis list and runs them through the Handler.
// BRPop makes it safe to run several workers against one queue.
type Worker struct {
	rdb     *redis.Client
	queue   string
	handler *Handler
}

func NewWorker(rdb *redis.Client, queue string, handler *Handler) *Worker {
	return &Worker{rdb: rdb, queue: queue, handler: handler}
}

// Listen blocks processing jobs until the context is canceled.
func (w *Worker) Listen(ctx context.Context) error {
	log.Printf("[*] Worker listening on queue %q", w.queue)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		result, err := w.rdb.BRPop(ctx, 5*time.Second, w.queue).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("[!] Queue pop failed: %v", err)
			time.Sleep(time.Second)
			continue
		}

		// result[0] is the queue name, result[1] the payload.
		resp := w.handler.Process(ctx, []byte(result[1]))
		data, err := json.Marshal(resp)
		if err != nil {
			log.Printf("[!] Response marshal failed: %v", err)
			continue
		}
		if err := w.rdb.LPush(ctx, w.queue+ResultsSuffix, data).Err(); err != nil {
			log.Printf("[!] Result push failed: %v", err)
		}
	}
}

// Enqueue adds a job to the queue. Used by tests and embedding callers.
func Enqueue(ctx context.Context, rdb *redis.Client, queue string, job Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return rdb.LPush(ctx, queue, data).Err()
}
